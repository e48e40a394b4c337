// Package storagetypes defines the persisted configuration aggregates shared
// by the storage backends and the dispatch core.
package storagetypes

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// GuildConfig is the per-guild configuration record. It is created on first
// access for a guild and mutated only through the guild cache, which persists
// before updating its cached copy.
type GuildConfig struct {
	GuildID         string    `json:"guild_id"`
	Prefixes        []string  `json:"prefixes"`
	Modules         []string  `json:"modules"`   // disabled module labels
	Commands        []string  `json:"commands"`  // disabled command labels
	Listeners       []string  `json:"listeners"` // disabled listener labels
	IgnoredUsers    []string  `json:"ignored_users"`
	IgnoredRoles    []string  `json:"ignored_roles"`
	IgnoredChannels []string  `json:"ignored_channels"`
	ModRoles        []string  `json:"mod_roles"`
	ModUsers        []string  `json:"mod_users"`
	ModOnly         bool      `json:"mod_only"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewGuildConfig returns a default config for a guild.
func NewGuildConfig(guildID string) *GuildConfig {
	now := time.Now()
	return &GuildConfig{
		GuildID:   guildID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PrefixList returns the guild's configured prefixes, or fallback if the
// guild defines none.
func (g *GuildConfig) PrefixList(fallback []string) []string {
	if len(g.Prefixes) > 0 {
		return g.Prefixes
	}
	return fallback
}

// IsModuleDisabled reports whether the module label is disabled in this guild.
func (g *GuildConfig) IsModuleDisabled(label string) bool {
	return containsFold(g.Modules, label)
}

// IsCommandDisabled reports whether the command label is disabled in this guild.
func (g *GuildConfig) IsCommandDisabled(label string) bool {
	return containsFold(g.Commands, label)
}

// IsListenerDisabled reports whether the listener label is disabled in this guild.
func (g *GuildConfig) IsListenerDisabled(label string) bool {
	return containsFold(g.Listeners, label)
}

// IsIgnored reports whether a message from userID in channelID with the given
// roles should be ignored entirely.
func (g *GuildConfig) IsIgnored(userID, channelID string, roleIDs []string) bool {
	if slices.Contains(g.IgnoredUsers, userID) {
		return true
	}
	if slices.Contains(g.IgnoredChannels, channelID) {
		return true
	}
	for _, r := range roleIDs {
		if slices.Contains(g.IgnoredRoles, r) {
			return true
		}
	}
	return false
}

// IsModerator reports whether the user counts as a guild moderator, by user
// ID or by any of their roles.
func (g *GuildConfig) IsModerator(userID string, roleIDs []string) bool {
	if slices.Contains(g.ModUsers, userID) {
		return true
	}
	for _, r := range roleIDs {
		if slices.Contains(g.ModRoles, r) {
			return true
		}
	}
	return false
}

// GlobalConfig is the process-wide configuration record: bans and default
// prefixes. Created once at startup and mutated through the storage contract.
type GlobalConfig struct {
	ID           string    `json:"id"`
	Prefixes     []string  `json:"prefixes"`
	BannedUsers  []string  `json:"banned_users"`
	BannedGuilds []string  `json:"banned_guilds"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewGlobalConfig returns a default global config with the given prefixes.
func NewGlobalConfig(prefixes ...string) *GlobalConfig {
	now := time.Now()
	return &GlobalConfig{
		ID:        "global",
		Prefixes:  prefixes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsUserBanned reports whether the user is banned bot-wide.
func (g *GlobalConfig) IsUserBanned(userID string) bool {
	return slices.Contains(g.BannedUsers, userID)
}

// IsGuildBanned reports whether the guild is banned bot-wide.
func (g *GlobalConfig) IsGuildBanned(guildID string) bool {
	return slices.Contains(g.BannedGuilds, guildID)
}

// ApplyGuildField sets one keyed field on a guild config. The keys mirror the
// storage contract's update operation; unknown keys are an error.
func ApplyGuildField(cfg *GuildConfig, key string, value any) error {
	switch key {
	case "prefixes":
		return assignStrings(&cfg.Prefixes, key, value)
	case "modules":
		return assignStrings(&cfg.Modules, key, value)
	case "commands":
		return assignStrings(&cfg.Commands, key, value)
	case "listeners":
		return assignStrings(&cfg.Listeners, key, value)
	case "ignored_users":
		return assignStrings(&cfg.IgnoredUsers, key, value)
	case "ignored_roles":
		return assignStrings(&cfg.IgnoredRoles, key, value)
	case "ignored_channels":
		return assignStrings(&cfg.IgnoredChannels, key, value)
	case "mod_roles":
		return assignStrings(&cfg.ModRoles, key, value)
	case "mod_users":
		return assignStrings(&cfg.ModUsers, key, value)
	case "mod_only":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("field %q wants bool, got %T", key, value)
		}
		cfg.ModOnly = b
		return nil
	default:
		return fmt.Errorf("unknown guild config field %q", key)
	}
}

// ApplyGlobalField sets one keyed field on the global config.
func ApplyGlobalField(cfg *GlobalConfig, key string, value any) error {
	switch key {
	case "prefixes":
		return assignStrings(&cfg.Prefixes, key, value)
	case "banned_users":
		return assignStrings(&cfg.BannedUsers, key, value)
	case "banned_guilds":
		return assignStrings(&cfg.BannedGuilds, key, value)
	default:
		return fmt.Errorf("unknown global config field %q", key)
	}
}

func assignStrings(dst *[]string, key string, value any) error {
	switch v := value.(type) {
	case []string:
		*dst = v
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("field %q wants strings, got %T", key, e)
			}
			out = append(out, s)
		}
		*dst = out
		return nil
	default:
		return fmt.Errorf("field %q wants []string, got %T", key, value)
	}
}

func containsFold(list []string, s string) bool {
	for _, e := range list {
		if strings.EqualFold(e, s) {
			return true
		}
	}
	return false
}
