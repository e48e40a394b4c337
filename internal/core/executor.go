package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/keshon/botkit/internal/storagetypes"
	"github.com/keshon/botkit/internal/telemetry"
)

// Executor runs command and listener units, emits lifecycle telemetry, and
// isolates failures per invocation. Nothing that happens inside a unit body,
// panics included, ever reaches the event source.
type Executor struct {
	log       zerolog.Logger
	telemetry *telemetry.Emitter
}

// NewExecutor returns an executor reporting through em.
func NewExecutor(em *telemetry.Emitter, log zerolog.Logger) *Executor {
	return &Executor{
		log:       log.With().Str("component", "executor").Logger(),
		telemetry: em,
	}
}

// RunCommand processes one command invocation and reports its outcome.
func (x *Executor) RunCommand(ctx context.Context, cmd *Command, env *CommandEnvironment) {
	defer x.recoverCommand(cmd, env)

	x.telemetry.Emit(telemetry.Debug{
		Component: "executor",
		Message:   fmt.Sprintf("command %q began (tier %s)", cmd.FullLabel(), env.Tier),
	})

	res, err := cmd.process(ctx, env)
	if err != nil {
		x.log.Error().Err(err).Str("command", cmd.FullLabel()).Msg("command failed")
		x.telemetry.Emit(telemetry.CommandError{
			FullLabel: cmd.FullLabel(),
			GuildID:   env.Message.GuildID,
			UserID:    env.Message.Author.ID,
			Err:       err,
		})
		return
	}
	x.telemetry.Emit(telemetry.CommandExecution{
		Success:   res.Success,
		Executed:  res.Executed,
		FullLabel: cmd.FullLabel(),
		State:     res.State.String(),
		Tier:      res.Tier.String(),
		GuildID:   res.GuildID,
		ChannelID: res.ChannelID,
		UserID:    res.UserID,
		Timestamp: res.Timestamp,
	})
}

// RunListener invokes one listener for one event occurrence.
func (x *Executor) RunListener(ctx context.Context, l *Listener, guild *storagetypes.GuildConfig, args ...any) {
	defer x.recoverListener(l, guild)

	x.telemetry.Emit(telemetry.Debug{
		Component: "executor",
		Message:   fmt.Sprintf("listener %q began (%s)", l.Label, l.Event),
	})

	guildID := ""
	if guild != nil {
		guildID = guild.GuildID
	}
	if err := l.Execute(ctx, guild, args...); err != nil {
		x.log.Error().Err(err).Str("listener", l.Label).Str("event", l.Event).Msg("listener failed")
		x.telemetry.Emit(telemetry.ListenerError{
			EventName: l.Event,
			Label:     l.Label,
			GuildID:   guildID,
			Err:       fmt.Errorf("listener %q (%s): %w", l.Label, l.Event, err),
		})
		return
	}
	x.telemetry.Emit(telemetry.ListenerExecution{
		Success:   true,
		EventName: l.Event,
		Label:     l.Label,
		GuildID:   guildID,
	})
}

// RunHelp runs a command's help hook, falling back to its usage line.
func (x *Executor) RunHelp(ctx context.Context, cmd *Command, env *CommandEnvironment) {
	defer x.recoverCommand(cmd, env)

	if cmd.Help != nil {
		if err := cmd.Help(ctx, env); err != nil {
			x.telemetry.Emit(telemetry.CommandError{
				FullLabel: cmd.FullLabel(),
				GuildID:   env.Message.GuildID,
				UserID:    env.Message.Author.ID,
				Err:       fmt.Errorf("help for %q: %w", cmd.FullLabel(), err),
			})
		}
		return
	}
	cmd.sendUsage(ctx, env)
}

func (x *Executor) recoverCommand(cmd *Command, env *CommandEnvironment) {
	if r := recover(); r != nil {
		err := fmt.Errorf("command %q panicked: %v", cmd.FullLabel(), r)
		x.log.Error().Err(err).Msg("recovered panic")
		x.telemetry.Emit(telemetry.CommandError{
			FullLabel: cmd.FullLabel(),
			GuildID:   env.Message.GuildID,
			UserID:    env.Message.Author.ID,
			Err:       err,
		})
	}
}

func (x *Executor) recoverListener(l *Listener, guild *storagetypes.GuildConfig) {
	if r := recover(); r != nil {
		guildID := ""
		if guild != nil {
			guildID = guild.GuildID
		}
		err := fmt.Errorf("listener %q panicked: %v", l.Label, r)
		x.log.Error().Err(err).Msg("recovered panic")
		x.telemetry.Emit(telemetry.ListenerError{
			EventName: l.Event,
			Label:     l.Label,
			GuildID:   guildID,
			Err:       err,
		})
	}
}
