package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"

	"github.com/keshon/botkit/internal/storagetypes"
)

const (
	globalKey   = "global"
	guildPrefix = "guild:"
)

// JSONFile is a Backend persisted to a single JSON file through the
// datastore package (atomic writes, autosave, rotating backups).
type JSONFile struct {
	ds       *datastore.DataStore
	prefixes []string // defaults used when initializing the global config
	mu       sync.Mutex
	closed   bool
}

// NewJSONFile opens (or creates) a JSON-file backend at path. defaultPrefixes
// seed the global config on first run.
func NewJSONFile(path string, defaultPrefixes ...string) (*JSONFile, error) {
	ds, err := datastore.New(path)
	if err != nil {
		return nil, fmt.Errorf("open datastore: %w", err)
	}
	return &JSONFile{ds: ds, prefixes: defaultPrefixes}, nil
}

func (b *JSONFile) Init(ctx context.Context) error {
	_, err := b.InitGlobalConfig(ctx)
	return err
}

func (b *JSONFile) InitGlobalConfig(ctx context.Context) (*storagetypes.GlobalConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	var existing storagetypes.GlobalConfig
	if ok, err := b.decode(globalKey, &existing); err != nil {
		return nil, err
	} else if ok {
		return &existing, nil
	}
	cfg := storagetypes.NewGlobalConfig(b.prefixes...)
	b.ds.Add(globalKey, cfg)
	return cfg, nil
}

func (b *JSONFile) InitGuild(ctx context.Context, guildID string) (*storagetypes.GuildConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	var existing storagetypes.GuildConfig
	if ok, err := b.decode(guildPrefix+guildID, &existing); err != nil {
		return nil, err
	} else if ok {
		return &existing, nil
	}
	cfg := storagetypes.NewGuildConfig(guildID)
	b.ds.Add(guildPrefix+guildID, cfg)
	return cfg, nil
}

func (b *JSONFile) FetchGlobalConfig(ctx context.Context) (*storagetypes.GlobalConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	var cfg storagetypes.GlobalConfig
	ok, err := b.decode(globalKey, &cfg)
	if err != nil || !ok {
		return nil, err
	}
	return &cfg, nil
}

func (b *JSONFile) FetchGuild(ctx context.Context, guildID string) (*storagetypes.GuildConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	var cfg storagetypes.GuildConfig
	ok, err := b.decode(guildPrefix+guildID, &cfg)
	if err != nil || !ok {
		return nil, err
	}
	return &cfg, nil
}

func (b *JSONFile) UpdateGlobalConfig(ctx context.Context, key string, value any) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false, ErrClosed
	}
	var cfg storagetypes.GlobalConfig
	ok, err := b.decode(globalKey, &cfg)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := storagetypes.ApplyGlobalField(&cfg, key, value); err != nil {
		return false, err
	}
	cfg.UpdatedAt = time.Now()
	b.ds.Add(globalKey, &cfg)
	return true, nil
}

func (b *JSONFile) UpdateGuild(ctx context.Context, key, guildID string, value any) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false, ErrClosed
	}
	var cfg storagetypes.GuildConfig
	ok, err := b.decode(guildPrefix+guildID, &cfg)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := storagetypes.ApplyGuildField(&cfg, key, value); err != nil {
		return false, err
	}
	cfg.UpdatedAt = time.Now()
	b.ds.Add(guildPrefix+guildID, &cfg)
	return true, nil
}

func (b *JSONFile) SaveGlobalConfig(ctx context.Context, cfg *storagetypes.GlobalConfig) (*storagetypes.GlobalConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	cfg.UpdatedAt = time.Now()
	b.ds.Add(globalKey, cfg)
	return cfg, nil
}

func (b *JSONFile) SaveGuild(ctx context.Context, guildID string, cfg *storagetypes.GuildConfig) (*storagetypes.GuildConfig, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	cfg.GuildID = guildID
	cfg.UpdatedAt = time.Now()
	b.ds.Add(guildPrefix+guildID, cfg)
	return cfg, nil
}

func (b *JSONFile) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.ds.Close()
}

// decode reads a raw record and unmarshals it into out via a JSON
// round-trip; the datastore hands back map[string]any after a reload.
func (b *JSONFile) decode(key string, out any) (bool, error) {
	raw, exists := b.ds.Get(key)
	if !exists {
		return false, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return false, fmt.Errorf("marshal record %q: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("unmarshal record %q: %w", key, err)
	}
	return true, nil
}
