// Package storage defines the persistence contract the framework runs
// against and its replaceable back-ends. The core never touches a back-end
// directly; it goes through the guild config cache, which tolerates fetch
// failures by re-initializing defaults.
package storage

import (
	"context"
	"errors"

	"github.com/keshon/botkit/internal/storagetypes"
)

// ErrClosed is returned by back-ends used after Close.
var ErrClosed = errors.New("storage: backend closed")

// Backend is the persistence contract. Fetch operations return (nil, nil)
// when the record does not exist; Init operations return the existing
// record or create and persist a default one. Update operations set a
// single keyed field and report
// whether anything was written.
type Backend interface {
	Init(ctx context.Context) error
	InitGlobalConfig(ctx context.Context) (*storagetypes.GlobalConfig, error)
	InitGuild(ctx context.Context, guildID string) (*storagetypes.GuildConfig, error)
	FetchGlobalConfig(ctx context.Context) (*storagetypes.GlobalConfig, error)
	FetchGuild(ctx context.Context, guildID string) (*storagetypes.GuildConfig, error)
	UpdateGlobalConfig(ctx context.Context, key string, value any) (bool, error)
	UpdateGuild(ctx context.Context, key, guildID string, value any) (bool, error)
	SaveGlobalConfig(ctx context.Context, cfg *storagetypes.GlobalConfig) (*storagetypes.GlobalConfig, error)
	SaveGuild(ctx context.Context, guildID string, cfg *storagetypes.GuildConfig) (*storagetypes.GuildConfig, error)
	Close() error
}
