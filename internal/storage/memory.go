package storage

import (
	"context"
	"sync"
	"time"

	"github.com/keshon/botkit/internal/storagetypes"
)

// Memory is an in-process Backend for tests and ephemeral runs. Records
// are deep-copied on the way in and out so callers never share state with
// the store.
type Memory struct {
	mu       sync.RWMutex
	global   *storagetypes.GlobalConfig
	guilds   map[string]*storagetypes.GuildConfig
	prefixes []string
	closed   bool
}

// NewMemory returns an empty in-memory backend. defaultPrefixes seed the
// global config on init.
func NewMemory(defaultPrefixes ...string) *Memory {
	return &Memory{
		guilds:   make(map[string]*storagetypes.GuildConfig),
		prefixes: defaultPrefixes,
	}
}

func (m *Memory) Init(ctx context.Context) error {
	_, err := m.InitGlobalConfig(ctx)
	return err
}

func (m *Memory) InitGlobalConfig(ctx context.Context) (*storagetypes.GlobalConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.global == nil {
		m.global = storagetypes.NewGlobalConfig(m.prefixes...)
	}
	return copyGlobal(m.global), nil
}

func (m *Memory) InitGuild(ctx context.Context, guildID string) (*storagetypes.GuildConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if existing, ok := m.guilds[guildID]; ok {
		return copyGuild(existing), nil
	}
	cfg := storagetypes.NewGuildConfig(guildID)
	m.guilds[guildID] = cfg
	return copyGuild(cfg), nil
}

func (m *Memory) FetchGlobalConfig(ctx context.Context) (*storagetypes.GlobalConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.global == nil {
		return nil, nil
	}
	return copyGlobal(m.global), nil
}

func (m *Memory) FetchGuild(ctx context.Context, guildID string) (*storagetypes.GuildConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	cfg, ok := m.guilds[guildID]
	if !ok {
		return nil, nil
	}
	return copyGuild(cfg), nil
}

func (m *Memory) UpdateGlobalConfig(ctx context.Context, key string, value any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	if m.global == nil {
		return false, nil
	}
	if err := storagetypes.ApplyGlobalField(m.global, key, value); err != nil {
		return false, err
	}
	m.global.UpdatedAt = time.Now()
	return true, nil
}

func (m *Memory) UpdateGuild(ctx context.Context, key, guildID string, value any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	cfg, ok := m.guilds[guildID]
	if !ok {
		return false, nil
	}
	if err := storagetypes.ApplyGuildField(cfg, key, value); err != nil {
		return false, err
	}
	cfg.UpdatedAt = time.Now()
	return true, nil
}

func (m *Memory) SaveGlobalConfig(ctx context.Context, cfg *storagetypes.GlobalConfig) (*storagetypes.GlobalConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	cfg.UpdatedAt = time.Now()
	m.global = copyGlobal(cfg)
	return copyGlobal(m.global), nil
}

func (m *Memory) SaveGuild(ctx context.Context, guildID string, cfg *storagetypes.GuildConfig) (*storagetypes.GuildConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	cfg.GuildID = guildID
	cfg.UpdatedAt = time.Now()
	m.guilds[guildID] = copyGuild(cfg)
	return copyGuild(cfg), nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func copyGuild(cfg *storagetypes.GuildConfig) *storagetypes.GuildConfig {
	out := *cfg
	out.Prefixes = append([]string(nil), cfg.Prefixes...)
	out.Modules = append([]string(nil), cfg.Modules...)
	out.Commands = append([]string(nil), cfg.Commands...)
	out.Listeners = append([]string(nil), cfg.Listeners...)
	out.IgnoredUsers = append([]string(nil), cfg.IgnoredUsers...)
	out.IgnoredRoles = append([]string(nil), cfg.IgnoredRoles...)
	out.IgnoredChannels = append([]string(nil), cfg.IgnoredChannels...)
	out.ModRoles = append([]string(nil), cfg.ModRoles...)
	out.ModUsers = append([]string(nil), cfg.ModUsers...)
	return &out
}

func copyGlobal(cfg *storagetypes.GlobalConfig) *storagetypes.GlobalConfig {
	out := *cfg
	out.Prefixes = append([]string(nil), cfg.Prefixes...)
	out.BannedUsers = append([]string(nil), cfg.BannedUsers...)
	out.BannedGuilds = append([]string(nil), cfg.BannedGuilds...)
	return &out
}
