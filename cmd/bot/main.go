package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/keshon/botkit/internal/commands/general"
	"github.com/keshon/botkit/internal/config"
	"github.com/keshon/botkit/internal/core"
	"github.com/keshon/botkit/internal/logging"
	"github.com/keshon/botkit/internal/platform"
	"github.com/keshon/botkit/internal/platform/discord"
	"github.com/keshon/botkit/internal/storage"
	"github.com/keshon/botkit/internal/telemetry"
	"github.com/keshon/botkit/pkg/jobmgr"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFile)
	log.Info().Msg("starting botkit")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := storage.NewJSONFile(cfg.StoragePath, cfg.Prefix)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()

	global, err := backend.InitGlobalConfig(ctx)
	if err != nil {
		return fmt.Errorf("init global config: %w", err)
	}

	client, err := discord.New(cfg.Token, log)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	em := telemetry.NewEmitter(cfg.TelemetryBuffer)
	executor := core.NewExecutor(em, log)
	registry := core.NewCommandRegistry(log)
	modules := core.NewRegistry[*core.Module]("module", log)
	guilds := core.NewGuildConfigCache(backend, cfg.GuildCacheSize, log)

	dispatcher := core.NewDispatcher(core.DispatcherConfig{
		Client:      client,
		Registry:    registry,
		Guilds:      guilds,
		Global:      global,
		Staff:       core.StaffConfig{Owners: cfg.OwnerIDs, Admins: cfg.AdminIDs},
		Executor:    executor,
		OwnerPrefix: cfg.OwnerPrefix,
		AdminPrefix: cfg.AdminPrefix,
	}, log)

	router := core.NewEventRouter(client, guilds, global, executor, log)
	router.SetExtractor("guildCreate", func(args ...any) string {
		id, _ := args[0].(string)
		return id
	})
	router.SetExtractor("messageCreate", func(args ...any) string {
		if m, ok := args[0].(platform.Message); ok {
			return m.GuildID
		}
		return ""
	})

	cooldown := time.Duration(cfg.CooldownDefaultMs) * time.Millisecond
	mod, cmds, listeners := general.New(general.Deps{Registry: registry, Guilds: guilds}, cooldown)
	if err := modules.Add(mod.Label, mod); err != nil {
		return fmt.Errorf("register module %q: %w", mod.Label, err)
	}
	for _, cmd := range cmds {
		if err := registry.Register(cmd); err != nil {
			log.Warn().Err(err).Str("command", cmd.Label).Msg("command skipped")
		}
	}
	for _, l := range listeners {
		router.RegisterListener(l)
	}

	client.OnEvent("messageCreate", func(args ...any) {
		if m, ok := args[0].(platform.Message); ok {
			dispatcher.Dispatch(ctx, m)
		}
	})
	client.OnReady(func() {
		log.Info().Str("user", client.BotUser().Username).Msg("connected")
	})

	jobs := jobmgr.NewManager(ctx, func(s string) {
		log.Debug().Str("job", s).Msg("job status")
	})
	defer jobs.StopAll()

	if err := jobs.Start("telemetry-sink", func(ctx context.Context) error {
		return telemetrySink(ctx, em, log)
	}); err != nil {
		return err
	}
	if err := jobs.Start("cooldown-sweeper", func(ctx context.Context) error {
		return cooldownSweeper(ctx, registry)
	}); err != nil {
		return err
	}

	if err := client.Open(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	case <-ctx.Done():
	}

	if _, err := backend.SaveGlobalConfig(context.Background(), global); err != nil {
		log.Warn().Err(err).Msg("final save failed")
	}
	log.Info().Uint64("telemetry_dropped", em.Dropped()).Msg("exited cleanly")
	return nil
}

// telemetrySink drains the telemetry bus into the structured log.
func telemetrySink(ctx context.Context, em *telemetry.Emitter, log zerolog.Logger) error {
	sink := log.With().Str("component", "telemetry").Logger()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-em.Events():
			if !ok {
				return nil
			}
			logEvent(sink, ev)
		}
	}
}

func logEvent(log zerolog.Logger, ev telemetry.Event) {
	switch e := ev.(type) {
	case telemetry.CommandExecution:
		log.Info().
			Str("command", e.FullLabel).
			Str("state", e.State).
			Str("tier", e.Tier).
			Str("guild", e.GuildID).
			Str("user", e.UserID).
			Bool("executed", e.Executed).
			Bool("success", e.Success).
			Msg("command execution")
	case telemetry.CommandError:
		log.Error().Err(e.Err).
			Str("command", e.FullLabel).
			Str("guild", e.GuildID).
			Str("user", e.UserID).
			Msg("command error")
	case telemetry.ListenerExecution:
		log.Info().
			Str("listener", e.Label).
			Str("event", e.EventName).
			Str("guild", e.GuildID).
			Msg("listener execution")
	case telemetry.ListenerError:
		log.Error().Err(e.Err).
			Str("listener", e.Label).
			Str("event", e.EventName).
			Str("guild", e.GuildID).
			Msg("listener error")
	case telemetry.Debug:
		log.Debug().Str("source", e.Component).Msg(e.Message)
	default:
		log.Debug().Str("event", telemetry.Name(ev)).Msg("telemetry event")
	}
}

// cooldownSweeper periodically clears expired cooldown entries across the
// registered command tree.
func cooldownSweeper(ctx context.Context, registry *core.CommandRegistry) error {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, cmd := range registry.Commands() {
				sweepCommand(cmd)
			}
		}
	}
}

func sweepCommand(cmd *core.Command) {
	cmd.Cooldown.Sweep()
	if cmd.SubCommands == nil {
		return
	}
	for _, sub := range cmd.SubCommands.Commands() {
		sweepCommand(sub)
	}
}
