// Package platform defines the chat-platform adapter contract the dispatch
// core runs against. The core never imports a concrete client; adapters
// (see platform/discord) translate their SDK's events and calls into these
// types.
package platform

import (
	"context"
	"time"
)

// User identifies an account on the platform.
type User struct {
	ID       string
	Username string
	Bot      bool
}

// Member is a user inside a guild, with their role membership.
type Member struct {
	User    User
	GuildID string
	RoleIDs []string
}

// Message is an inbound or outbound chat message snapshot. GuildID is empty
// for direct messages, and Member is nil outside guilds.
type Message struct {
	ID        string
	GuildID   string
	ChannelID string
	Content   string
	Author    User
	Member    *Member
	Timestamp time.Time
}

// Client is the adapter the core talks to. Outbound operations take a
// context; subscription callbacks are invoked on the adapter's own
// goroutines.
type Client interface {
	// Open connects and starts delivering events; Close disconnects.
	Open(ctx context.Context) error
	Close() error

	// BotUser returns the identity the client is connected as.
	BotUser() User

	Send(ctx context.Context, channelID, content string) (*Message, error)
	EditMessage(ctx context.Context, channelID, messageID, content string) (*Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error

	// GuildOwnerID returns the owning user of a guild.
	GuildOwnerID(guildID string) (string, error)

	// MemberPermissions returns the permission names the member holds in the
	// channel; BotPermissions does the same for the connected bot user.
	MemberPermissions(guildID, channelID, userID string) ([]string, error)
	BotPermissions(guildID, channelID string) ([]string, error)

	// OnEvent subscribes fn to a named platform event. The returned func
	// unsubscribes. Adapters deliver the raw event payload as args.
	OnEvent(name string, fn func(args ...any)) (unsubscribe func())

	// OnReady fires fn once the connection is established.
	OnReady(fn func())
}
