package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/keshon/botkit/internal/platform"
	"github.com/keshon/botkit/internal/storagetypes"
	"github.com/keshon/botkit/internal/telemetry"
)

func drainEvents(em *telemetry.Emitter) []telemetry.Event {
	var out []telemetry.Event
	for {
		select {
		case ev := <-em.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func execEnv(client platform.Client) *CommandEnvironment {
	return &CommandEnvironment{
		Client: client,
		Message: platform.Message{
			ID:        "m1",
			GuildID:   "g1",
			ChannelID: "c1",
			Author:    platform.User{ID: "u1"},
		},
		GuildConfig: storagetypes.NewGuildConfig("g1"),
	}
}

func TestExecutorReportsExecution(t *testing.T) {
	em := telemetry.NewEmitter(16)
	x := NewExecutor(em, zerolog.Nop())
	client := newStubClient()

	cmd := &Command{
		Label:   "ping",
		Enabled: true,
		Execute: func(ctx context.Context, env *CommandEnvironment) (*CommandResponse, error) {
			return &CommandResponse{Reply: "pong"}, nil
		},
	}
	x.RunCommand(context.Background(), cmd, execEnv(client))

	var exec *telemetry.CommandExecution
	for _, ev := range drainEvents(em) {
		if e, ok := ev.(telemetry.CommandExecution); ok {
			exec = &e
		}
	}
	if exec == nil {
		t.Fatal("no CommandExecution event emitted")
	}
	if !exec.Executed || !exec.Success {
		t.Errorf("Executed/Success = %v/%v, want true/true", exec.Executed, exec.Success)
	}
	if exec.FullLabel != "ping" || exec.GuildID != "g1" || exec.UserID != "u1" {
		t.Errorf("event fields = %+v", exec)
	}
	if exec.State != "noError" {
		t.Errorf("State = %q", exec.State)
	}
}

func TestExecutorReportsGatedStates(t *testing.T) {
	em := telemetry.NewEmitter(16)
	x := NewExecutor(em, zerolog.Nop())
	client := newStubClient()

	cmd := &Command{
		Label:   "kick",
		Enabled: true,
		Options: &CommandOptions{ArgsMin: 1},
		Execute: func(ctx context.Context, env *CommandEnvironment) (*CommandResponse, error) {
			t.Fatal("body must not run with missing args")
			return nil, nil
		},
	}
	x.RunCommand(context.Background(), cmd, execEnv(client))

	for _, ev := range drainEvents(em) {
		if e, ok := ev.(telemetry.CommandExecution); ok {
			if e.Executed {
				t.Error("gated invocation must report Executed=false")
			}
			if e.State != "invalidUsage" {
				t.Errorf("State = %q, want invalidUsage", e.State)
			}
			return
		}
	}
	t.Fatal("no CommandExecution event emitted")
}

func TestExecutorReportsCommandError(t *testing.T) {
	em := telemetry.NewEmitter(16)
	x := NewExecutor(em, zerolog.Nop())
	client := newStubClient()

	boom := errors.New("boom")
	cmd := &Command{
		Label:   "explode",
		Enabled: true,
		Execute: func(ctx context.Context, env *CommandEnvironment) (*CommandResponse, error) {
			return nil, boom
		},
	}
	x.RunCommand(context.Background(), cmd, execEnv(client))

	for _, ev := range drainEvents(em) {
		if e, ok := ev.(telemetry.CommandError); ok {
			if !errors.Is(e.Err, boom) {
				t.Errorf("Err = %v, want wrapped boom", e.Err)
			}
			if !strings.Contains(e.Err.Error(), `command "explode"`) {
				t.Errorf("Err = %v, want invocation context in the message", e.Err)
			}
			return
		}
	}
	t.Fatal("no CommandError event emitted")
}

func TestExecutorRecoversCommandPanic(t *testing.T) {
	em := telemetry.NewEmitter(16)
	x := NewExecutor(em, zerolog.Nop())
	client := newStubClient()

	cmd := &Command{
		Label:   "crash",
		Enabled: true,
		Execute: func(ctx context.Context, env *CommandEnvironment) (*CommandResponse, error) {
			panic("nope")
		},
	}
	x.RunCommand(context.Background(), cmd, execEnv(client)) // must not panic

	for _, ev := range drainEvents(em) {
		if e, ok := ev.(telemetry.CommandError); ok {
			if !strings.Contains(e.Err.Error(), "panicked") {
				t.Errorf("Err = %v", e.Err)
			}
			return
		}
	}
	t.Fatal("no CommandError event emitted for the panic")
}

func TestExecutorRunListener(t *testing.T) {
	em := telemetry.NewEmitter(16)
	x := NewExecutor(em, zerolog.Nop())
	guild := storagetypes.NewGuildConfig("g1")

	ok := &Listener{
		Label:   "welcome",
		Event:   "guildMemberAdd",
		Enabled: true,
		Execute: func(ctx context.Context, g *storagetypes.GuildConfig, args ...any) error {
			return nil
		},
	}
	x.RunListener(context.Background(), ok, guild)

	found := false
	for _, ev := range drainEvents(em) {
		if e, ok := ev.(telemetry.ListenerExecution); ok {
			found = true
			if !e.Success || e.Label != "welcome" || e.GuildID != "g1" {
				t.Errorf("event = %+v", e)
			}
		}
	}
	if !found {
		t.Fatal("no ListenerExecution event emitted")
	}

	failing := &Listener{
		Label:   "audit",
		Event:   "guildMemberAdd",
		Enabled: true,
		Execute: func(ctx context.Context, g *storagetypes.GuildConfig, args ...any) error {
			return errors.New("db gone")
		},
	}
	x.RunListener(context.Background(), failing, guild)

	for _, ev := range drainEvents(em) {
		if e, ok := ev.(telemetry.ListenerError); ok {
			if !strings.Contains(e.Err.Error(), "audit") {
				t.Errorf("Err = %v", e.Err)
			}
			return
		}
	}
	t.Fatal("no ListenerError event emitted")
}

func TestExecutorRecoversListenerPanic(t *testing.T) {
	em := telemetry.NewEmitter(16)
	x := NewExecutor(em, zerolog.Nop())

	l := &Listener{
		Label:   "crash",
		Event:   "ready",
		Enabled: true,
		Execute: func(ctx context.Context, g *storagetypes.GuildConfig, args ...any) error {
			panic("nope")
		},
	}
	x.RunListener(context.Background(), l, nil) // must not panic

	for _, ev := range drainEvents(em) {
		if e, ok := ev.(telemetry.ListenerError); ok {
			if !strings.Contains(e.Err.Error(), "panicked") {
				t.Errorf("Err = %v", e.Err)
			}
			return
		}
	}
	t.Fatal("no ListenerError event emitted for the panic")
}
