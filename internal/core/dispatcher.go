package core

import (
	"context"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/keshon/botkit/internal/platform"
	"github.com/keshon/botkit/internal/storagetypes"
)

// StaffConfig is the process-wide staff identity set, constructed once at
// startup and passed by reference. Owners are implicitly admins.
type StaffConfig struct {
	Owners []string
	Admins []string
}

// IsOwner reports whether userID is a staff owner.
func (s StaffConfig) IsOwner(userID string) bool {
	return slices.Contains(s.Owners, userID)
}

// IsAdmin reports whether userID is staff (owner or admin).
func (s StaffConfig) IsAdmin(userID string) bool {
	return s.IsOwner(userID) || slices.Contains(s.Admins, userID)
}

// Dispatcher turns raw inbound messages into command executions: it resolves
// the execution tier from the matched prefix, the effective prefix set from
// guild configuration, and the target command from the registry, then hands
// off to the executor.
type Dispatcher struct {
	client   platform.Client
	registry *CommandRegistry
	guilds   *GuildConfigCache
	global   *storagetypes.GlobalConfig
	staff    StaffConfig
	executor *Executor
	log      zerolog.Logger

	ownerPrefix string
	adminPrefix string
}

// DispatcherConfig wires a Dispatcher.
type DispatcherConfig struct {
	Client      platform.Client
	Registry    *CommandRegistry
	Guilds      *GuildConfigCache
	Global      *storagetypes.GlobalConfig
	Staff       StaffConfig
	Executor    *Executor
	OwnerPrefix string
	AdminPrefix string
}

// NewDispatcher returns a dispatcher for the given wiring.
func NewDispatcher(cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		client:      cfg.Client,
		registry:    cfg.Registry,
		guilds:      cfg.Guilds,
		global:      cfg.Global,
		staff:       cfg.Staff,
		executor:    cfg.Executor,
		ownerPrefix: cfg.OwnerPrefix,
		adminPrefix: cfg.AdminPrefix,
		log:         log.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch examines one inbound message and, when it addresses a registered
// command the actor may reach, hands the invocation to the executor. Every
// other case is a silent no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, msg platform.Message) {
	if msg.Author.Bot || msg.Content == "" {
		return
	}
	if d.global != nil {
		if d.global.IsUserBanned(msg.Author.ID) || (msg.GuildID != "" && d.global.IsGuildBanned(msg.GuildID)) {
			return
		}
	}

	var guild *storagetypes.GuildConfig
	if msg.GuildID != "" {
		var err error
		guild, err = d.guilds.GetOrFetch(ctx, msg.GuildID)
		if err != nil {
			d.log.Error().Err(err).Str("guild", msg.GuildID).Msg("guild config unavailable")
			return
		}
		roleIDs := []string(nil)
		if msg.Member != nil {
			roleIDs = msg.Member.RoleIDs
		}
		if guild.IsIgnored(msg.Author.ID, msg.ChannelID, roleIDs) {
			return
		}
	}

	tier, prefix := d.resolvePrefix(msg, guild)
	if prefix == "" {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(msg.Content, prefix))
	if len(fields) == 0 {
		return
	}

	// admin and owner tiers bypass guild-level disablement
	enablementGuild := guild
	if tier != TierRegular {
		enablementGuild = nil
	}
	cmd, args, ok := d.registry.Resolve(fields[0], fields[1:], enablementGuild)
	if !ok {
		return
	}

	env := &CommandEnvironment{
		Client:      d.client,
		Message:     msg,
		GuildConfig: guild,
		Prefix:      prefix,
		Label:       cmd.FullLabel(),
		Args:        args,
		Tier:        tier,
	}
	if msg.GuildID != "" {
		if owner, err := d.client.GuildOwnerID(msg.GuildID); err == nil {
			env.GuildOwner = owner
		}
		if perms, err := d.client.MemberPermissions(msg.GuildID, msg.ChannelID, msg.Author.ID); err == nil {
			env.MemberPerms = perms
		}
	}

	d.executor.RunCommand(ctx, cmd, env)
}

// resolvePrefix determines the execution tier and matched prefix. Owner and
// admin prefixes are global overrides restricted to staff; the regular tier
// uses the guild's prefixes, falling back to the global defaults when the
// guild defines none.
func (d *Dispatcher) resolvePrefix(msg platform.Message, guild *storagetypes.GuildConfig) (ExecutionTier, string) {
	if d.ownerPrefix != "" && strings.HasPrefix(msg.Content, d.ownerPrefix) && d.staff.IsOwner(msg.Author.ID) {
		return TierOwner, d.ownerPrefix
	}
	if d.adminPrefix != "" && strings.HasPrefix(msg.Content, d.adminPrefix) && d.staff.IsAdmin(msg.Author.ID) {
		return TierAdmin, d.adminPrefix
	}

	var defaults []string
	if d.global != nil {
		defaults = d.global.Prefixes
	}
	prefixes := defaults
	if guild != nil {
		prefixes = guild.PrefixList(defaults)
	}
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(msg.Content, p) {
			return TierRegular, p
		}
	}
	return TierRegular, ""
}
