package core

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/keshon/botkit/internal/platform"
	"github.com/keshon/botkit/internal/storagetypes"
	"github.com/keshon/botkit/internal/telemetry"
)

type dispatchRig struct {
	client     *stubClient
	dispatcher *Dispatcher
	registry   *CommandRegistry
	global     *storagetypes.GlobalConfig
	guilds     *GuildConfigCache

	// environments the test command actually ran with, in order
	ran []*CommandEnvironment
}

func newDispatchRig(t *testing.T) *dispatchRig {
	t.Helper()
	rig := &dispatchRig{
		client:   newStubClient(),
		registry: NewCommandRegistry(zerolog.Nop()),
		global:   storagetypes.NewGlobalConfig("!"),
		guilds:   NewGuildConfigCache(&stubBackend{}, 8, zerolog.Nop()),
	}

	ping := &Command{
		Label:   "ping",
		Enabled: true,
		Execute: func(ctx context.Context, env *CommandEnvironment) (*CommandResponse, error) {
			rig.ran = append(rig.ran, env)
			return &CommandResponse{Reply: "pong"}, nil
		},
	}
	if err := rig.registry.Register(ping); err != nil {
		t.Fatal(err)
	}

	executor := NewExecutor(telemetry.NewEmitter(64), zerolog.Nop())
	rig.dispatcher = NewDispatcher(DispatcherConfig{
		Client:      rig.client,
		Registry:    rig.registry,
		Guilds:      rig.guilds,
		Global:      rig.global,
		Staff:       StaffConfig{Owners: []string{"owner1"}, Admins: []string{"admin1"}},
		Executor:    executor,
		OwnerPrefix: "bot.",
		AdminPrefix: "bot!",
	}, zerolog.Nop())
	return rig
}

func guildMessage(userID, content string) platform.Message {
	return platform.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   content,
		Author:    platform.User{ID: userID},
	}
}

func TestDispatchRunsCommand(t *testing.T) {
	rig := newDispatchRig(t)
	rig.dispatcher.Dispatch(context.Background(), guildMessage("u1", "!ping extra args"))

	if len(rig.ran) != 1 {
		t.Fatalf("command ran %d times, want 1", len(rig.ran))
	}
	env := rig.ran[0]
	if env.Tier != TierRegular {
		t.Errorf("Tier = %v, want regular", env.Tier)
	}
	if env.Prefix != "!" {
		t.Errorf("Prefix = %q", env.Prefix)
	}
	if len(env.Args) != 2 || env.Args[0] != "extra" {
		t.Errorf("Args = %v", env.Args)
	}
	if env.GuildConfig == nil || env.GuildConfig.GuildID != "g1" {
		t.Error("guild config must be resolved for guild messages")
	}
	if got := rig.client.sentMessages(); len(got) != 1 || got[0] != "pong" {
		t.Errorf("sent = %v, want the command reply", got)
	}
}

func TestDispatchIgnoresNonCommands(t *testing.T) {
	rig := newDispatchRig(t)
	messages := []platform.Message{
		guildMessage("u1", "hello there"),        // no prefix
		guildMessage("u1", "!unknowncmd"),        // unregistered label
		guildMessage("u1", "!"),                  // prefix only
		{Author: platform.User{ID: "b", Bot: true}, Content: "!ping", ChannelID: "c1"}, // bot author
		{Author: platform.User{ID: "u1"}, Content: ""},                                 // empty
	}
	for _, msg := range messages {
		rig.dispatcher.Dispatch(context.Background(), msg)
	}
	if len(rig.ran) != 0 {
		t.Errorf("command ran %d times, want 0", len(rig.ran))
	}
}

func TestDispatchGlobalBans(t *testing.T) {
	rig := newDispatchRig(t)
	rig.global.BannedUsers = []string{"badguy"}
	rig.dispatcher.Dispatch(context.Background(), guildMessage("badguy", "!ping"))

	rig.global.BannedGuilds = []string{"g1"}
	rig.dispatcher.Dispatch(context.Background(), guildMessage("u1", "!ping"))

	if len(rig.ran) != 0 {
		t.Errorf("banned actors must never reach execution, ran %d", len(rig.ran))
	}
}

func TestDispatchIgnoredUser(t *testing.T) {
	rig := newDispatchRig(t)
	cfg, err := rig.guilds.GetOrFetch(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	cfg.IgnoredUsers = []string{"u1"}

	rig.dispatcher.Dispatch(context.Background(), guildMessage("u1", "!ping"))
	if len(rig.ran) != 0 {
		t.Error("ignored user must be dropped before resolution")
	}
}

func TestDispatchStaffPrefixes(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		content  string
		wantTier ExecutionTier
		wantRun  bool
	}{
		{"owner prefix by owner", "owner1", "bot.ping", TierOwner, true},
		{"admin prefix by admin", "admin1", "bot!ping", TierAdmin, true},
		{"admin prefix by owner", "owner1", "bot!ping", TierAdmin, true},
		{"owner prefix by admin", "admin1", "bot.ping", 0, false},
		{"owner prefix by regular user", "u1", "bot.ping", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newDispatchRig(t)
			rig.dispatcher.Dispatch(context.Background(), guildMessage(tt.userID, tt.content))
			if tt.wantRun != (len(rig.ran) == 1) {
				t.Fatalf("ran = %d, wantRun = %v", len(rig.ran), tt.wantRun)
			}
			if tt.wantRun && rig.ran[0].Tier != tt.wantTier {
				t.Errorf("Tier = %v, want %v", rig.ran[0].Tier, tt.wantTier)
			}
		})
	}
}

func TestDispatchStaffBypassesGuildDisablement(t *testing.T) {
	rig := newDispatchRig(t)
	cfg, err := rig.guilds.GetOrFetch(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Commands = []string{"ping"}

	rig.dispatcher.Dispatch(context.Background(), guildMessage("u1", "!ping"))
	if len(rig.ran) != 0 {
		t.Fatal("guild-disabled command must not run at the regular tier")
	}

	rig.dispatcher.Dispatch(context.Background(), guildMessage("owner1", "bot.ping"))
	if len(rig.ran) != 1 {
		t.Error("owner tier must bypass guild disablement")
	}
}

func TestDispatchGuildPrefixOverride(t *testing.T) {
	rig := newDispatchRig(t)
	cfg, err := rig.guilds.GetOrFetch(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Prefixes = []string{"?"}

	rig.dispatcher.Dispatch(context.Background(), guildMessage("u1", "!ping"))
	if len(rig.ran) != 0 {
		t.Fatal("global default prefix must not match when the guild overrides it")
	}
	rig.dispatcher.Dispatch(context.Background(), guildMessage("u1", "?ping"))
	if len(rig.ran) != 1 {
		t.Error("guild prefix must match")
	}
}

func TestDispatchDirectMessage(t *testing.T) {
	rig := newDispatchRig(t)
	rig.dispatcher.Dispatch(context.Background(), platform.Message{
		ID:        "m1",
		ChannelID: "dm1",
		Content:   "!ping",
		Author:    platform.User{ID: "u1"},
	})
	if len(rig.ran) != 1 {
		t.Fatalf("ran = %d, want 1", len(rig.ran))
	}
	if rig.ran[0].GuildConfig != nil {
		t.Error("direct messages carry no guild config")
	}
}
