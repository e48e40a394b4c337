package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/keshon/botkit/internal/storage"
	"github.com/keshon/botkit/internal/storagetypes"
	"github.com/keshon/botkit/pkg/collection"
)

// GuildConfigCache is a read-through LRU over per-guild configuration.
// Misses fall back to the storage backend; a guild with no stored record is
// initialized with defaults, so callers always get a usable config. Only an
// unrecoverable initialization failure surfaces as an error.
type GuildConfigCache struct {
	mu      sync.Mutex
	backend storage.Backend
	cache   *collection.LRU[string, *storagetypes.GuildConfig]
	log     zerolog.Logger
}

// NewGuildConfigCache returns a cache holding at most capacity guild
// configs.
func NewGuildConfigCache(backend storage.Backend, capacity int, log zerolog.Logger) *GuildConfigCache {
	return &GuildConfigCache{
		backend: backend,
		cache:   collection.NewLRU[string, *storagetypes.GuildConfig](capacity),
		log:     log.With().Str("component", "guild_cache").Logger(),
	}
}

// GetOrFetch returns the guild's config, fetching from storage on a cache
// miss and initializing defaults when storage has no record or fails. Two
// concurrent misses for the same guild may both hit storage; the second
// cache write wins, which is benign for read-mostly configuration.
func (g *GuildConfigCache) GetOrFetch(ctx context.Context, guildID string) (*storagetypes.GuildConfig, error) {
	if cfg, ok := g.get(guildID); ok {
		return cfg, nil
	}
	cfg, err := g.backend.FetchGuild(ctx, guildID)
	if err != nil {
		g.log.Warn().Err(err).Str("guild", guildID).Msg("fetch failed, initializing defaults")
		cfg = nil
	}
	if cfg == nil {
		cfg, err = g.backend.InitGuild(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("init guild %s: %w", guildID, err)
		}
	}
	g.set(guildID, cfg)
	return cfg, nil
}

// Refresh evicts the cached copy and re-fetches from storage.
func (g *GuildConfigCache) Refresh(ctx context.Context, guildID string) (*storagetypes.GuildConfig, error) {
	g.Evict(guildID)
	return g.GetOrFetch(ctx, guildID)
}

// Evict drops the cached copy; the config stays re-fetchable from storage.
func (g *GuildConfigCache) Evict(guildID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache.Delete(guildID)
}

// UpdateField persists one keyed field change and then patches the cached
// copy. The cache is only updated after the write succeeds.
func (g *GuildConfigCache) UpdateField(ctx context.Context, guildID, key string, value any) (*storagetypes.GuildConfig, error) {
	written, err := g.backend.UpdateGuild(ctx, key, guildID, value)
	if err != nil {
		return nil, fmt.Errorf("update guild %s field %q: %w", guildID, key, err)
	}
	if !written {
		// no stored record yet; create one and retry once
		if _, err := g.backend.InitGuild(ctx, guildID); err != nil {
			return nil, fmt.Errorf("init guild %s: %w", guildID, err)
		}
		if _, err := g.backend.UpdateGuild(ctx, key, guildID, value); err != nil {
			return nil, fmt.Errorf("update guild %s field %q: %w", guildID, key, err)
		}
	}
	return g.Refresh(ctx, guildID)
}

// Save persists a whole config and replaces the cached copy.
func (g *GuildConfigCache) Save(ctx context.Context, guildID string, cfg *storagetypes.GuildConfig) (*storagetypes.GuildConfig, error) {
	saved, err := g.backend.SaveGuild(ctx, guildID, cfg)
	if err != nil {
		return nil, fmt.Errorf("save guild %s: %w", guildID, err)
	}
	g.set(guildID, saved)
	return saved, nil
}

// Len returns the number of cached configs.
func (g *GuildConfigCache) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cache.Len()
}

func (g *GuildConfigCache) get(guildID string) (*storagetypes.GuildConfig, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cache.Get(guildID)
}

func (g *GuildConfigCache) set(guildID string, cfg *storagetypes.GuildConfig) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache.Set(guildID, cfg)
}
