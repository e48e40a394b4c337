package storagetypes

import (
	"reflect"
	"testing"
)

func TestGuildConfigQueries(t *testing.T) {
	cfg := NewGuildConfig("g1")
	cfg.Modules = []string{"Fun"}
	cfg.Commands = []string{"8ball"}
	cfg.Listeners = []string{"welcome"}
	cfg.IgnoredUsers = []string{"u-ignored"}
	cfg.IgnoredChannels = []string{"c-ignored"}
	cfg.IgnoredRoles = []string{"r-ignored"}
	cfg.ModUsers = []string{"u-mod"}
	cfg.ModRoles = []string{"r-mod"}

	if !cfg.IsModuleDisabled("fun") || !cfg.IsModuleDisabled("FUN") {
		t.Error("module disablement must be case-insensitive")
	}
	if cfg.IsModuleDisabled("music") {
		t.Error("unlisted module is not disabled")
	}
	if !cfg.IsCommandDisabled("8ball") || !cfg.IsListenerDisabled("Welcome") {
		t.Error("command/listener disablement lookups failed")
	}

	tests := []struct {
		name              string
		user, channel     string
		roles             []string
		ignored, moderator bool
	}{
		{"ignored user", "u-ignored", "c1", nil, true, false},
		{"ignored channel", "u1", "c-ignored", nil, true, false},
		{"ignored role", "u1", "c1", []string{"r-ignored"}, true, false},
		{"mod user", "u-mod", "c1", nil, false, true},
		{"mod role", "u1", "c1", []string{"r-mod"}, false, true},
		{"plain member", "u1", "c1", []string{"r1"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.IsIgnored(tt.user, tt.channel, tt.roles); got != tt.ignored {
				t.Errorf("IsIgnored = %v, want %v", got, tt.ignored)
			}
			if got := cfg.IsModerator(tt.user, tt.roles); got != tt.moderator {
				t.Errorf("IsModerator = %v, want %v", got, tt.moderator)
			}
		})
	}
}

func TestPrefixList(t *testing.T) {
	cfg := NewGuildConfig("g1")
	fallback := []string{"!"}
	if got := cfg.PrefixList(fallback); !reflect.DeepEqual(got, fallback) {
		t.Errorf("PrefixList = %v, want fallback", got)
	}
	cfg.Prefixes = []string{"?", ">"}
	if got := cfg.PrefixList(fallback); !reflect.DeepEqual(got, cfg.Prefixes) {
		t.Errorf("PrefixList = %v, want guild prefixes", got)
	}
}

func TestApplyGuildField(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr bool
		check   func(*GuildConfig) bool
	}{
		{
			name: "string slice", key: "prefixes", value: []string{"?"},
			check: func(c *GuildConfig) bool { return len(c.Prefixes) == 1 && c.Prefixes[0] == "?" },
		},
		{
			name: "decoded any slice", key: "mod_users", value: []any{"u1", "u2"},
			check: func(c *GuildConfig) bool { return reflect.DeepEqual(c.ModUsers, []string{"u1", "u2"}) },
		},
		{
			name: "bool field", key: "mod_only", value: true,
			check: func(c *GuildConfig) bool { return c.ModOnly },
		},
		{name: "wrong element type", key: "prefixes", value: []any{1, 2}, wantErr: true},
		{name: "wrong value type", key: "mod_only", value: "yes", wantErr: true},
		{name: "unknown key", key: "volume", value: 11, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewGuildConfig("g1")
			err := ApplyGuildField(cfg, tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyGuildField: %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("field not applied: %+v", cfg)
			}
		})
	}
}

func TestApplyGlobalField(t *testing.T) {
	cfg := NewGlobalConfig("!")
	if err := ApplyGlobalField(cfg, "banned_users", []string{"badguy"}); err != nil {
		t.Fatalf("ApplyGlobalField: %v", err)
	}
	if !cfg.IsUserBanned("badguy") || cfg.IsUserBanned("goodguy") {
		t.Error("ban list lookup failed")
	}
	if err := ApplyGlobalField(cfg, "volume", 11); err == nil {
		t.Error("unknown key must fail")
	}
}
