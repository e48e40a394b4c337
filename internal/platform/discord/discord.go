// Package discord implements the platform adapter contract over discordgo.
// Inbound gateway events are translated into adapter-neutral payloads and
// fanned out by event name; outbound sends go through an adaptive rate
// limiter with retry.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/botkit/internal/platform"
	"github.com/keshon/botkit/pkg/retrylimit"
)

// Client is the discordgo-backed platform adapter.
type Client struct {
	dg      *discordgo.Session
	limiter *retrylimit.AdaptiveLimiter
	log     zerolog.Logger

	mu     sync.RWMutex
	subs   map[string]map[int]func(args ...any)
	nextID int
	ready  []func()
	isUp   bool
}

// New creates a client for the given bot token.
func New(token string, log zerolog.Logger) (*Client, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &Client{
		dg:      dg,
		limiter: retrylimit.NewAdaptiveLimiter(10, 1, 25, 1, 0.5),
		log:     log.With().Str("component", "discord").Logger(),
		subs:    make(map[string]map[int]func(args ...any)),
	}, nil
}

// Open connects to the gateway and starts delivering events.
func (c *Client) Open(ctx context.Context) error {
	c.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	c.dg.AddHandler(func(s *discordgo.Session, e any) {
		c.route(e)
	})

	if err := c.dg.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	return c.dg.Close()
}

// BotUser returns the identity the client is connected as.
func (c *Client) BotUser() platform.User {
	u := c.dg.State.User
	if u == nil {
		return platform.User{}
	}
	return platform.User{ID: u.ID, Username: u.Username, Bot: true}
}

// Send delivers content to a channel, pacing and retrying through the
// adaptive limiter.
func (c *Client) Send(ctx context.Context, channelID, content string) (*platform.Message, error) {
	var sent *discordgo.Message
	err := retrylimit.WithRetry(ctx, func() error {
		m, err := c.dg.ChannelMessageSend(channelID, content)
		if err != nil {
			return classify(err)
		}
		sent = m
		return nil
	}, c.limiter)
	if err != nil {
		return nil, fmt.Errorf("send to %s: %w", channelID, err)
	}
	out := translateMessage(sent)
	return &out, nil
}

// EditMessage replaces a message's content.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) (*platform.Message, error) {
	var edited *discordgo.Message
	err := retrylimit.WithRetry(ctx, func() error {
		m, err := c.dg.ChannelMessageEdit(channelID, messageID, content)
		if err != nil {
			return classify(err)
		}
		edited = m
		return nil
	}, c.limiter)
	if err != nil {
		return nil, fmt.Errorf("edit %s in %s: %w", messageID, channelID, err)
	}
	out := translateMessage(edited)
	return &out, nil
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return retrylimit.WithRetry(ctx, func() error {
		if err := c.dg.ChannelMessageDelete(channelID, messageID); err != nil {
			return classify(err)
		}
		return nil
	}, c.limiter)
}

// GuildOwnerID returns the owner of a guild, preferring the state cache.
func (c *Client) GuildOwnerID(guildID string) (string, error) {
	guild, err := c.dg.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, err = c.dg.Guild(guildID)
		if err != nil {
			return "", fmt.Errorf("fetch guild %s: %w", guildID, err)
		}
	}
	return guild.OwnerID, nil
}

// MemberPermissions returns the permission names userID holds in the channel.
func (c *Client) MemberPermissions(guildID, channelID, userID string) ([]string, error) {
	perms, err := c.dg.UserChannelPermissions(userID, channelID)
	if err != nil {
		return nil, fmt.Errorf("permissions for %s in %s: %w", userID, channelID, err)
	}
	return permissionNames(perms), nil
}

// BotPermissions returns the permission names the bot holds in the channel.
func (c *Client) BotPermissions(guildID, channelID string) ([]string, error) {
	u := c.dg.State.User
	if u == nil {
		return nil, fmt.Errorf("bot user not resolved yet")
	}
	return c.MemberPermissions(guildID, channelID, u.ID)
}

// OnEvent subscribes fn to a named event; the returned func unsubscribes.
func (c *Client) OnEvent(name string, fn func(args ...any)) func() {
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

// OnReady fires fn once the gateway reports ready. If already connected, fn
// fires immediately.
func (c *Client) OnReady(fn func()) {
	c.mu.Lock()
	if c.isUp {
		c.mu.Unlock()
		fn()
		return
	}
	c.ready = append(c.ready, fn)
	c.mu.Unlock()
}

// route translates a raw gateway event into the adapter's payload
// convention and fans it out to subscribers.
func (c *Client) route(e any) {
	switch ev := e.(type) {
	case *discordgo.Ready:
		c.mu.Lock()
		c.isUp = true
		fns := c.ready
		c.ready = nil
		c.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
		c.emit("ready")
	case *discordgo.MessageCreate:
		c.emit("messageCreate", translateMessage(ev.Message))
	case *discordgo.MessageUpdate:
		c.emit("messageUpdate", translateMessage(ev.Message))
	case *discordgo.MessageDelete:
		c.emit("messageDelete", ev.GuildID, ev.ChannelID, ev.ID)
	case *discordgo.GuildCreate:
		c.emit("guildCreate", ev.ID)
	case *discordgo.GuildDelete:
		c.emit("guildDelete", ev.ID)
	case *discordgo.GuildMemberAdd:
		c.emit("guildMemberAdd", translateMember(ev.Member))
	case *discordgo.GuildMemberRemove:
		c.emit("guildMemberRemove", translateMember(ev.Member))
	case *discordgo.GuildBanAdd:
		c.emit("guildBanAdd", ev.GuildID, ev.User.ID)
	case *discordgo.MessageReactionAdd:
		c.emit("messageReactionAdd", ev.GuildID, ev.ChannelID, ev.MessageID, ev.UserID, ev.Emoji.Name)
	}
}

func (c *Client) emit(name string, args ...any) {
	c.mu.RLock()
	fns := make([]func(args ...any), 0, len(c.subs[name]))
	for _, fn := range c.subs[name] {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()
	for _, fn := range fns {
		fn(args...)
	}
}

func translateMessage(m *discordgo.Message) platform.Message {
	if m == nil {
		return platform.Message{}
	}
	out := platform.Message{
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		out.Author = platform.User{ID: m.Author.ID, Username: m.Author.Username, Bot: m.Author.Bot}
	}
	if m.Member != nil {
		out.Member = &platform.Member{
			User:    out.Author,
			GuildID: m.GuildID,
			RoleIDs: m.Member.Roles,
		}
	}
	return out
}

func translateMember(m *discordgo.Member) platform.Member {
	if m == nil {
		return platform.Member{}
	}
	out := platform.Member{GuildID: m.GuildID, RoleIDs: m.Roles}
	if m.User != nil {
		out.User = platform.User{ID: m.User.ID, Username: m.User.Username, Bot: m.User.Bot}
	}
	return out
}

// classify marks non-retryable REST failures as fatal so the retry loop
// gives up immediately; rate limits and server errors stay retryable.
func classify(err error) error {
	if rest, ok := err.(*discordgo.RESTError); ok && rest.Response != nil {
		code := rest.Response.StatusCode
		if code != 429 && code < 500 {
			return &retrylimit.Fatal{Err: err}
		}
	}
	return err
}
