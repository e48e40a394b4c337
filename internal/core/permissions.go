package core

import (
	"fmt"
	"slices"

	"github.com/keshon/botkit/internal/platform"
)

// Tier labels returned as rejection reasons by CanExecute.
const (
	ReasonServerMod     = "Server Mod"
	ReasonServerManager = "Server Manager"
	ReasonServerAdmin   = "Server Admin"
	ReasonServerOwner   = "Server Owner"
)

// IDPair is one needed/bypass rule pair. Satisfying any bypass entry grants
// access unconditionally; needed entries must all be satisfied.
type IDPair struct {
	Needed []string
	Bypass []string
}

// CommandPermissions is a command's layered permission rule set, immutable
// after registration. Evaluation order is fixed: bypass rules short-circuit
// before any needed rule runs.
type CommandPermissions struct {
	ServerMod     bool
	ServerManager bool
	ServerAdmin   bool
	ServerOwner   bool
	OwnerOnly     bool // admin-tier invocations must come from a staff owner

	Author   IDPair // permission names
	Users    IDPair // user IDs
	Roles    IDPair // role IDs
	Channels IDPair // channel IDs
	Guilds   IDPair // guild IDs
	Staff    IDPair // staff user IDs

	Custom func(env *CommandEnvironment) bool
}

// Validate checks that all author permission names belong to the platform
// vocabulary. Called at registration; a failure skips the command.
func (p *CommandPermissions) Validate() error {
	if p == nil {
		return nil
	}
	for _, name := range append(append([]string{}, p.Author.Needed...), p.Author.Bypass...) {
		if !platform.ValidPermission(name) {
			return fmt.Errorf("core: unknown permission name %q", name)
		}
	}
	return nil
}

// CanExecute evaluates the rule set against the invocation environment.
// Returns whether execution is allowed and, when not, the tier or permission
// label to report (empty when no specific label applies).
func (p *CommandPermissions) CanExecute(env *CommandEnvironment) (bool, string) {
	if p == nil {
		return true, ""
	}
	userID := env.Message.Author.ID

	// Direct-message-like execution: only the staff-needed list applies.
	if env.GuildConfig == nil {
		if len(p.Staff.Needed) > 0 && !slices.Contains(p.Staff.Needed, userID) {
			return false, ""
		}
		return true, ""
	}

	if p.bypassed(env) {
		return true, ""
	}

	// Tiered role checks, least to most specific.
	if env.GuildConfig.ModOnly || p.ServerMod {
		if !p.isServerMod(env) {
			return false, ReasonServerMod
		}
	}
	if p.ServerManager && !env.HasPerm(platform.PermManageGuild) {
		return false, ReasonServerManager
	}
	if p.ServerAdmin && !env.HasPerm(platform.PermAdministrator) {
		return false, ReasonServerAdmin
	}
	if p.ServerOwner && userID != env.GuildOwner {
		return false, ReasonServerOwner
	}

	for _, name := range p.Author.Needed {
		if !env.HasPerm(name) {
			return false, platform.PermissionDisplay(name)
		}
	}

	if len(p.Users.Needed) > 0 && !slices.Contains(p.Users.Needed, userID) {
		return false, ""
	}
	for _, role := range p.Roles.Needed {
		if !slices.Contains(env.RoleIDs(), role) {
			return false, ""
		}
	}
	if len(p.Channels.Needed) > 0 && !slices.Contains(p.Channels.Needed, env.Message.ChannelID) {
		return false, ""
	}
	if len(p.Guilds.Needed) > 0 && !slices.Contains(p.Guilds.Needed, env.Message.GuildID) {
		return false, ""
	}
	if len(p.Staff.Needed) > 0 && !slices.Contains(p.Staff.Needed, userID) {
		return false, ""
	}

	if p.Custom != nil {
		return p.Custom(env), ""
	}
	return true, ""
}

// bypassed reports whether any bypass rule matches; a match grants access
// with no further checks.
func (p *CommandPermissions) bypassed(env *CommandEnvironment) bool {
	userID := env.Message.Author.ID
	for _, name := range p.Author.Bypass {
		if env.HasPerm(name) {
			return true
		}
	}
	if slices.Contains(p.Users.Bypass, userID) {
		return true
	}
	for _, role := range p.Roles.Bypass {
		if slices.Contains(env.RoleIDs(), role) {
			return true
		}
	}
	if slices.Contains(p.Channels.Bypass, env.Message.ChannelID) {
		return true
	}
	if slices.Contains(p.Guilds.Bypass, env.Message.GuildID) {
		return true
	}
	if slices.Contains(p.Staff.Bypass, userID) {
		return true
	}
	return false
}

func (p *CommandPermissions) isServerMod(env *CommandEnvironment) bool {
	if env.HasPerm(platform.PermAdministrator) {
		return true
	}
	return env.GuildConfig.IsModerator(env.Message.Author.ID, env.RoleIDs())
}
