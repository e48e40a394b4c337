package core

import (
	"context"

	"github.com/keshon/botkit/internal/storagetypes"
)

// Module groups commands and listeners under one label that guild
// configuration can disable as a unit.
type Module struct {
	Label        string
	Description  string
	Category     string
	Enabled      bool
	ServerBypass bool // guild-level disablement does not apply
}

// Listener is a unit of work bound to a platform event. Its body runs with
// the resolved guild configuration of the event's guild, or nil when the
// event has no guild scope.
type Listener struct {
	Label        string
	Event        string
	Module       *Module
	Enabled      bool
	ServerBypass bool
	Execute      func(ctx context.Context, guild *storagetypes.GuildConfig, args ...any) error
}

// enabledFor reports whether the listener should run for the given guild
// config, applying global and guild-level disablement with bypass flags.
func (l *Listener) enabledFor(guild *storagetypes.GuildConfig) bool {
	if !l.Enabled {
		return false
	}
	if l.Module != nil && !l.Module.Enabled {
		return false
	}
	if guild == nil {
		return true
	}
	if l.Module != nil && guild.IsModuleDisabled(l.Module.Label) && !l.Module.ServerBypass {
		return false
	}
	if guild.IsListenerDisabled(l.Label) && !l.ServerBypass {
		return false
	}
	return true
}
