package core

import (
	"github.com/rs/zerolog"

	"github.com/keshon/botkit/internal/storagetypes"
	"github.com/keshon/botkit/pkg/collection"
)

// CommandRegistry stores commands by canonical label with an alias table in
// front. Every command's own label is also an alias of itself; alias
// collisions across commands keep the first registrant and are logged, never
// fatal.
type CommandRegistry struct {
	reg     *Registry[*Command]
	aliases *collection.Store[string, string] // alias → canonical label
	log     zerolog.Logger
}

// NewCommandRegistry returns an empty command registry.
func NewCommandRegistry(log zerolog.Logger) *CommandRegistry {
	return &CommandRegistry{
		reg:     NewRegistry[*Command]("command", log),
		aliases: collection.NewStore[string, string](),
		log:     log.With().Str("component", "command_registry").Logger(),
	}
}

// Register adds a command under its label and indexes all its aliases.
// Duplicate labels and invalid permission specs reject the command; alias
// collisions only drop the colliding alias.
func (r *CommandRegistry) Register(cmd *Command) error {
	if err := cmd.Permissions.Validate(); err != nil {
		return err
	}
	if err := r.reg.Add(cmd.Label, cmd); err != nil {
		return err
	}
	r.indexAlias(normalize(cmd.Label), normalize(cmd.Label))
	for _, alias := range cmd.Aliases {
		r.indexAlias(normalize(alias), normalize(cmd.Label))
	}
	return nil
}

func (r *CommandRegistry) indexAlias(alias, label string) {
	r.reg.mu.Lock()
	defer r.reg.mu.Unlock()
	if existing, ok := r.aliases.Get(alias); ok {
		if existing != label {
			r.log.Warn().
				Str("alias", alias).
				Str("kept", existing).
				Str("rejected", label).
				Msg("alias collision, first registrant wins")
		}
		return
	}
	r.aliases.Set(alias, label)
}

// Unregister removes a command and all aliases pointing at it.
func (r *CommandRegistry) Unregister(label string) bool {
	key := normalize(label)
	if !r.reg.Remove(key) {
		return false
	}
	r.reg.mu.Lock()
	defer r.reg.mu.Unlock()
	for _, alias := range r.aliases.Keys() {
		if target, _ := r.aliases.Get(alias); target == key {
			r.aliases.Delete(alias)
		}
	}
	return true
}

// Get returns the command registered under the canonical label, without
// alias indirection or enablement filtering.
func (r *CommandRegistry) Get(label string) (*Command, bool) {
	return r.reg.Get(label)
}

// Len returns the number of registered commands.
func (r *CommandRegistry) Len() int {
	return r.reg.Len()
}

// Commands returns all registered commands in registration order.
func (r *CommandRegistry) Commands() []*Command {
	return r.reg.Values()
}

// Resolve maps a label or alias to its command, walking into subcommands as
// long as the next argument token matches one (the matched token is
// consumed). A nil guild config skips guild-level enablement, which is how
// admin/owner tiers bypass guild disablement. Returns the resolved command,
// the remaining arguments, and whether resolution succeeded.
func (r *CommandRegistry) Resolve(label string, args []string, guild *storagetypes.GuildConfig) (*Command, []string, bool) {
	canonical, ok := r.lookupAlias(label)
	if !ok {
		return nil, args, false
	}
	cmd, ok := r.reg.Get(canonical)
	if !ok {
		return nil, args, false
	}
	if !cmd.Enabled || (cmd.Module != nil && !cmd.Module.Enabled) {
		return nil, args, false
	}
	if guild != nil {
		if cmd.Module != nil && guild.IsModuleDisabled(cmd.Module.Label) && !cmd.Module.ServerBypass {
			return nil, args, false
		}
		if guild.IsCommandDisabled(cmd.Label) && !cmd.ServerBypass {
			return nil, args, false
		}
	}
	// Subcommand matching takes priority over treating the token as an
	// argument; only this command's own registry is consulted.
	if cmd.HasSubCommands() && len(args) > 0 {
		if sub, rest, ok := cmd.SubCommands.Resolve(args[0], args[1:], guild); ok {
			return sub, rest, true
		}
	}
	return cmd, args, true
}

// ResolveFull walks a pre-split label chain (e.g. from a help lookup)
// through subcommand registries. No enablement filtering is applied.
func (r *CommandRegistry) ResolveFull(splitLabel []string) (*Command, bool) {
	if len(splitLabel) == 0 {
		return nil, false
	}
	canonical, ok := r.lookupAlias(splitLabel[0])
	if !ok {
		return nil, false
	}
	cmd, ok := r.reg.Get(canonical)
	if !ok {
		return nil, false
	}
	if len(splitLabel) == 1 {
		return cmd, true
	}
	if !cmd.HasSubCommands() {
		return nil, false
	}
	return cmd.SubCommands.ResolveFull(splitLabel[1:])
}

func (r *CommandRegistry) lookupAlias(alias string) (string, bool) {
	r.reg.mu.RLock()
	defer r.reg.mu.RUnlock()
	return r.aliases.Get(normalize(alias))
}
