// Package general ships the builtin command set every deployment gets:
// ping, help, and uptime, plus a listener that warms guild configuration
// when the bot joins a guild.
package general

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/keshon/botkit/internal/core"
	"github.com/keshon/botkit/internal/storagetypes"
)

// Deps wires the builtin commands into the runtime.
type Deps struct {
	Registry *core.CommandRegistry
	Guilds   *core.GuildConfigCache
}

// New builds the general module with its commands and listeners. cooldown
// applies to the regular-tier commands.
func New(deps Deps, cooldown time.Duration) (*core.Module, []*core.Command, []*core.Listener) {
	mod := &core.Module{
		Label:        "general",
		Description:  "Builtin utility commands",
		Category:     "general",
		Enabled:      true,
		ServerBypass: true,
	}
	start := time.Now()

	ping := &core.Command{
		Label:       "ping",
		Description: "Check that the bot is responsive",
		Module:      mod,
		Enabled:     true,
		Cooldown:    core.NewCooldown(cooldown),
		Execute: func(ctx context.Context, env *core.CommandEnvironment) (*core.CommandResponse, error) {
			elapsed := time.Since(env.Message.Timestamp)
			return &core.CommandResponse{
				Reply: fmt.Sprintf("Pong! (%dms)", elapsed.Milliseconds()),
			}, nil
		},
	}

	uptime := &core.Command{
		Label:       "uptime",
		Aliases:     []string{"up"},
		Description: "Show how long the bot has been running",
		Module:      mod,
		Enabled:     true,
		Cooldown:    core.NewCooldown(cooldown),
		Execute: func(ctx context.Context, env *core.CommandEnvironment) (*core.CommandResponse, error) {
			return &core.CommandResponse{
				Reply: "Up for " + time.Since(start).Round(time.Second).String(),
			}, nil
		},
	}

	help := &core.Command{
		Label:       "help",
		Aliases:     []string{"h"},
		Description: "List commands, or show usage for one",
		Module:      mod,
		Enabled:     true,
		Options:     &core.CommandOptions{Usage: "help [command]"},
		Cooldown:    core.NewCooldown(cooldown),
		Execute: func(ctx context.Context, env *core.CommandEnvironment) (*core.CommandResponse, error) {
			if len(env.Args) > 0 {
				return helpFor(deps.Registry, env)
			}
			return helpIndex(deps.Registry, env), nil
		},
	}

	warm := &core.Listener{
		Label:        "guild-config-warm",
		Event:        "guildCreate",
		Module:       mod,
		Enabled:      true,
		ServerBypass: true,
		Execute: func(ctx context.Context, guild *storagetypes.GuildConfig, args ...any) error {
			// the router already resolved (and so initialized) the config;
			// nothing else to do for known guilds
			if guild != nil {
				return nil
			}
			id, _ := args[0].(string)
			if id == "" {
				return nil
			}
			_, err := deps.Guilds.GetOrFetch(ctx, id)
			return err
		},
	}

	return mod, []*core.Command{ping, uptime, help}, []*core.Listener{warm}
}

// helpIndex renders the visible command list grouped by module.
func helpIndex(reg *core.CommandRegistry, env *core.CommandEnvironment) *core.CommandResponse {
	byModule := map[string][]string{}
	for _, cmd := range reg.Commands() {
		if !cmd.Enabled || cmd.Options.IsHidden() {
			continue
		}
		label := "general"
		if cmd.Module != nil {
			label = cmd.Module.Label
		}
		entry := "`" + env.Prefix + cmd.Label + "`"
		if cmd.Description != "" {
			entry += " " + cmd.Description
		}
		byModule[label] = append(byModule[label], entry)
	}

	modules := make([]string, 0, len(byModule))
	for m := range byModule {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	var b strings.Builder
	b.WriteString("**Commands**\n")
	for _, m := range modules {
		b.WriteString("__" + m + "__\n")
		for _, entry := range byModule[m] {
			b.WriteString(entry + "\n")
		}
	}
	return &core.CommandResponse{Reply: b.String(), NoCooldown: true}
}

// helpFor renders one command's usage line, walking subcommand chains like
// "help ban soft".
func helpFor(reg *core.CommandRegistry, env *core.CommandEnvironment) (*core.CommandResponse, error) {
	cmd, ok := reg.ResolveFull(env.Args)
	if !ok {
		return &core.CommandResponse{
			Reply:      fmt.Sprintf("No command named `%s`.", strings.Join(env.Args, " ")),
			NoCooldown: true,
		}, nil
	}
	usage := ""
	if cmd.Options != nil {
		usage = cmd.Options.Usage
	}
	if usage == "" {
		usage = cmd.FullLabel()
	}
	reply := fmt.Sprintf("**%s**\nUsage: `%s%s`", cmd.FullLabel(), env.Prefix, usage)
	if cmd.Description != "" {
		reply = fmt.Sprintf("**%s**\n%s\nUsage: `%s%s`", cmd.FullLabel(), cmd.Description, env.Prefix, usage)
	}
	if cmd.HasSubCommands() {
		subs := make([]string, 0)
		for _, sub := range cmd.SubCommands.Commands() {
			subs = append(subs, sub.Label)
		}
		reply += "\nSubcommands: `" + strings.Join(subs, "`, `") + "`"
	}
	return &core.CommandResponse{Reply: reply, NoCooldown: true}, nil
}
