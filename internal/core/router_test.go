package core

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/keshon/botkit/internal/storagetypes"
	"github.com/keshon/botkit/internal/telemetry"
)

type routerRig struct {
	client *stubClient
	router *EventRouter
	global *storagetypes.GlobalConfig
	guilds *GuildConfigCache
}

func newRouterRig() *routerRig {
	rig := &routerRig{
		client: newStubClient(),
		global: storagetypes.NewGlobalConfig("!"),
		guilds: NewGuildConfigCache(&stubBackend{}, 8, zerolog.Nop()),
	}
	executor := NewExecutor(telemetry.NewEmitter(64), zerolog.Nop())
	rig.router = NewEventRouter(rig.client, rig.guilds, rig.global, executor, zerolog.Nop())
	rig.router.SetExtractor("guildMemberAdd", func(args ...any) string {
		id, _ := args[0].(string)
		return id
	})
	return rig
}

func welcomeListener(ran *[]string) *Listener {
	return &Listener{
		Label:   "welcome",
		Event:   "guildMemberAdd",
		Enabled: true,
		Execute: func(ctx context.Context, guild *storagetypes.GuildConfig, args ...any) error {
			id := ""
			if guild != nil {
				id = guild.GuildID
			}
			*ran = append(*ran, id)
			return nil
		},
	}
}

func TestRouterDeliversEvents(t *testing.T) {
	rig := newRouterRig()
	var ran []string
	rig.router.RegisterListener(welcomeListener(&ran))

	if rig.client.subCount("guildMemberAdd") != 1 {
		t.Fatal("registration must subscribe the platform event")
	}

	rig.client.fire("guildMemberAdd", "g1")
	if len(ran) != 1 || ran[0] != "g1" {
		t.Fatalf("ran = %v, want one run with the resolved guild", ran)
	}
}

func TestRouterSharesSubscriptionPerEvent(t *testing.T) {
	rig := newRouterRig()
	var ran []string
	first := welcomeListener(&ran)
	second := welcomeListener(&ran)
	second.Label = "audit"
	rig.router.RegisterListener(first)
	rig.router.RegisterListener(second)

	if rig.client.subCount("guildMemberAdd") != 1 {
		t.Error("one platform subscription serves every listener of an event")
	}
	rig.client.fire("guildMemberAdd", "g1")
	if len(ran) != 2 {
		t.Errorf("ran = %d listeners, want 2", len(ran))
	}
}

func TestRouterBannedGuild(t *testing.T) {
	rig := newRouterRig()
	rig.global.BannedGuilds = []string{"g1"}
	var ran []string
	rig.router.RegisterListener(welcomeListener(&ran))

	rig.client.fire("guildMemberAdd", "g1")
	if len(ran) != 0 {
		t.Error("banned guild events must be dropped")
	}
	rig.client.fire("guildMemberAdd", "g2")
	if len(ran) != 1 {
		t.Error("other guilds still deliver")
	}
}

func TestRouterGuildDisablement(t *testing.T) {
	rig := newRouterRig()
	cfg, err := rig.guilds.GetOrFetch(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Listeners = []string{"welcome"}

	var ran []string
	l := welcomeListener(&ran)
	rig.router.RegisterListener(l)

	rig.client.fire("guildMemberAdd", "g1")
	if len(ran) != 0 {
		t.Fatal("guild-disabled listener must not run")
	}

	l.ServerBypass = true
	rig.client.fire("guildMemberAdd", "g1")
	if len(ran) != 1 {
		t.Error("server bypass ignores guild disablement")
	}
}

func TestRouterGloballyDisabledListener(t *testing.T) {
	rig := newRouterRig()
	var ran []string
	l := welcomeListener(&ran)
	l.Enabled = false
	rig.router.RegisterListener(l)

	rig.client.fire("guildMemberAdd", "g1")
	if len(ran) != 0 {
		t.Error("disabled listener must not run")
	}
}

func TestRouterUnregister(t *testing.T) {
	rig := newRouterRig()
	var ran []string
	rig.router.RegisterListener(welcomeListener(&ran))

	if !rig.router.UnregisterListener("welcome") {
		t.Fatal("UnregisterListener: not found")
	}
	if rig.client.subCount("guildMemberAdd") != 0 {
		t.Error("last listener leaving must drop the platform subscription")
	}
	rig.client.fire("guildMemberAdd", "g1")
	if len(ran) != 0 {
		t.Error("unregistered listener must not run")
	}
	if rig.router.UnregisterListener("welcome") {
		t.Error("second unregister should report absence")
	}
}

func TestRouterEventWithoutGuildScope(t *testing.T) {
	rig := newRouterRig()
	var ran []string
	l := welcomeListener(&ran)
	l.Event = "ready" // no extractor registered for it
	rig.router.RegisterListener(l)

	rig.client.fire("ready")
	if len(ran) != 1 || ran[0] != "" {
		t.Errorf("ran = %v, want one run with no guild", ran)
	}
}
