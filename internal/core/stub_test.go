package core

import (
	"context"
	"sync"

	"github.com/keshon/botkit/internal/platform"
	"github.com/keshon/botkit/internal/storagetypes"
)

// stubClient implements platform.Client for tests: it records outbound
// calls and lets a test fire subscribed events by hand.
type stubClient struct {
	mu        sync.Mutex
	sent      []string
	deleted   []string
	owner     string
	botPerms  []string
	userPerms []string

	subs   map[string]map[int]func(args ...any)
	nextID int
}

func newStubClient() *stubClient {
	return &stubClient{subs: make(map[string]map[int]func(args ...any))}
}

func (c *stubClient) Open(ctx context.Context) error { return nil }
func (c *stubClient) Close() error                   { return nil }
func (c *stubClient) BotUser() platform.User         { return platform.User{ID: "bot", Bot: true} }

func (c *stubClient) Send(ctx context.Context, channelID, content string) (*platform.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, content)
	return &platform.Message{ChannelID: channelID, Content: content}, nil
}

func (c *stubClient) EditMessage(ctx context.Context, channelID, messageID, content string) (*platform.Message, error) {
	return &platform.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func (c *stubClient) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, messageID)
	return nil
}

func (c *stubClient) GuildOwnerID(guildID string) (string, error) { return c.owner, nil }

func (c *stubClient) MemberPermissions(guildID, channelID, userID string) ([]string, error) {
	return c.userPerms, nil
}

func (c *stubClient) BotPermissions(guildID, channelID string) ([]string, error) {
	return c.botPerms, nil
}

func (c *stubClient) OnEvent(name string, fn func(args ...any)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subs[name] == nil {
		c.subs[name] = make(map[int]func(args ...any))
	}
	id := c.nextID
	c.nextID++
	c.subs[name][id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs[name], id)
	}
}

func (c *stubClient) OnReady(fn func()) { fn() }

// fire invokes every subscriber of an event synchronously.
func (c *stubClient) fire(name string, args ...any) {
	c.mu.Lock()
	fns := make([]func(args ...any), 0, len(c.subs[name]))
	for _, fn := range c.subs[name] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(args...)
	}
}

func (c *stubClient) sentMessages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func (c *stubClient) subCount(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs[name])
}

// stubBackend implements storage.Backend with per-method hooks so tests can
// inject failures and count calls. Unset hooks behave like an empty store.
type stubBackend struct {
	fetchGuild func(guildID string) (*storagetypes.GuildConfig, error)
	initGuild  func(guildID string) (*storagetypes.GuildConfig, error)
	update     func(key, guildID string, value any) (bool, error)

	fetchCalls int
	initCalls  int
}

func (b *stubBackend) Init(ctx context.Context) error { return nil }

func (b *stubBackend) InitGlobalConfig(ctx context.Context) (*storagetypes.GlobalConfig, error) {
	return storagetypes.NewGlobalConfig("!"), nil
}

func (b *stubBackend) InitGuild(ctx context.Context, guildID string) (*storagetypes.GuildConfig, error) {
	b.initCalls++
	if b.initGuild != nil {
		return b.initGuild(guildID)
	}
	return storagetypes.NewGuildConfig(guildID), nil
}

func (b *stubBackend) FetchGlobalConfig(ctx context.Context) (*storagetypes.GlobalConfig, error) {
	return nil, nil
}

func (b *stubBackend) FetchGuild(ctx context.Context, guildID string) (*storagetypes.GuildConfig, error) {
	b.fetchCalls++
	if b.fetchGuild != nil {
		return b.fetchGuild(guildID)
	}
	return nil, nil
}

func (b *stubBackend) UpdateGlobalConfig(ctx context.Context, key string, value any) (bool, error) {
	return false, nil
}

func (b *stubBackend) UpdateGuild(ctx context.Context, key, guildID string, value any) (bool, error) {
	if b.update != nil {
		return b.update(key, guildID, value)
	}
	return false, nil
}

func (b *stubBackend) SaveGlobalConfig(ctx context.Context, cfg *storagetypes.GlobalConfig) (*storagetypes.GlobalConfig, error) {
	return cfg, nil
}

func (b *stubBackend) SaveGuild(ctx context.Context, guildID string, cfg *storagetypes.GuildConfig) (*storagetypes.GuildConfig, error) {
	return cfg, nil
}

func (b *stubBackend) Close() error { return nil }
