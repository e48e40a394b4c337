package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/keshon/botkit/internal/platform"
)

// Command is an executable unit of work bound to a label: its body plus the
// guards (options, permissions, cooldown) that decide whether the body runs.
type Command struct {
	Label        string
	Aliases      []string
	Description  string
	Module       *Module
	Parent       *Command
	Enabled      bool
	ServerBypass bool

	SubCommands *CommandRegistry // nil when the command has none
	Options     *CommandOptions
	Permissions *CommandPermissions
	Cooldown    *CommandCooldown
	BotPerms    []string // permission names the bot itself needs

	Execute func(ctx context.Context, env *CommandEnvironment) (*CommandResponse, error)
	Help    func(ctx context.Context, env *CommandEnvironment) error
}

// FullLabel returns the label chain from the root command down, e.g.
// "ban soft" for a subcommand.
func (c *Command) FullLabel() string {
	if c.Parent == nil {
		return c.Label
	}
	return c.Parent.FullLabel() + " " + c.Label
}

// HasSubCommands reports whether the command owns a subcommand registry.
func (c *Command) HasSubCommands() bool {
	return c.SubCommands != nil && c.SubCommands.Len() > 0
}

// process runs the guard sequence and, when every gate passes, the command
// body. Every terminal state resolves to an ExecutionResult; only an
// unhandled body failure also returns an error, wrapped with the invocation
// context for the executor to report.
func (c *Command) process(ctx context.Context, env *CommandEnvironment) (*ExecutionResult, error) {
	if c.Options.IsGuildOnly() && env.GuildConfig == nil {
		return env.newResult(StateNoError, false, false), nil
	}

	if res := c.checkBotPermissions(ctx, env); res != nil {
		return res, nil
	}

	if env.Tier == TierRegular {
		if res := c.checkActorPermissions(ctx, env); res != nil {
			return res, nil
		}
		if res := c.checkCooldown(ctx, env); res != nil {
			return res, nil
		}
	} else if c.Permissions != nil && c.Permissions.OwnerOnly && env.Tier != TierOwner {
		return env.newResult(StateInvalidPermissionsUser, false, false), nil
	}

	if !c.Options.HasCorrectArgs(env.Args) {
		if env.Tier == TierRegular {
			c.Cooldown.SetCooldown(env.Message.Author.ID)
		}
		if c.Options.ShouldSendInvalidUsageMessage(env.Args) {
			c.sendUsage(ctx, env)
		}
		return env.newResult(StateInvalidUsage, false, false), nil
	}

	if c.Options.ShouldDeleteCommand() {
		// best effort; a failed delete never blocks execution
		_ = env.Client.DeleteMessage(ctx, env.Message.ChannelID, env.Message.ID)
	}

	resp, err := c.Execute(ctx, env)
	if err != nil {
		if env.Tier == TierRegular {
			c.Cooldown.SetCooldown(env.Message.Author.ID)
		}
		res := env.newResult(StateNoError, true, false)
		wrapped := fmt.Errorf("command %q (guild %s, user %s): %w",
			c.FullLabel(), env.Message.GuildID, env.Message.Author.ID, err)
		res.Err = wrapped
		return res, wrapped
	}

	if env.Tier == TierRegular && c.Cooldown.ShouldSetCooldown(resp) {
		c.Cooldown.SetCooldown(env.Message.Author.ID)
	}
	if resp != nil && resp.Reply != "" {
		if _, err := env.Client.Send(ctx, env.Message.ChannelID, resp.Reply); err != nil {
			// reply delivery failures are reported, not fatal
			res := env.newResult(StateNoError, true, true)
			res.Response = resp
			return res, fmt.Errorf("command %q reply: %w", c.FullLabel(), err)
		}
	}

	res := env.newResult(StateNoError, true, true)
	res.Response = resp
	return res, nil
}

// checkBotPermissions rejects the invocation when the bot itself lacks a
// permission the command needs, notifying the channel.
func (c *Command) checkBotPermissions(ctx context.Context, env *CommandEnvironment) *ExecutionResult {
	if len(c.BotPerms) == 0 || env.GuildConfig == nil {
		return nil
	}
	held, err := env.Client.BotPermissions(env.Message.GuildID, env.Message.ChannelID)
	if err != nil {
		// adapter errors fall through to execution rather than blocking
		return nil
	}
	var missing []string
	for _, name := range c.BotPerms {
		found := false
		for _, h := range held {
			if h == name {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, platform.PermissionDisplay(name))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	msg := fmt.Sprintf("I need the following permissions to run this command: `%s`",
		strings.Join(missing, "`, `"))
	_, _ = env.Client.Send(ctx, env.Message.ChannelID, msg)
	return env.newResult(StateInvalidPermissionsBot, false, false)
}

func (c *Command) checkActorPermissions(ctx context.Context, env *CommandEnvironment) *ExecutionResult {
	allowed, reason := c.Permissions.CanExecute(env)
	if allowed {
		return nil
	}
	if c.Options.ShouldSendInvalidPermissionMessage() {
		msg := "You do not have permission to use this command."
		if reason != "" {
			msg = fmt.Sprintf("You need the `%s` permission to use this command.", reason)
		}
		_, _ = env.Client.Send(ctx, env.Message.ChannelID, msg)
	}
	return env.newResult(StateInvalidPermissionsUser, false, false)
}

func (c *Command) checkCooldown(ctx context.Context, env *CommandEnvironment) *ExecutionResult {
	remaining, notify, active := c.Cooldown.ShouldCooldown(env.Message.Author.ID)
	if !active {
		return nil
	}
	if notify {
		msg := fmt.Sprintf("This command is on cooldown for another %.1fs.", remaining.Seconds())
		_, _ = env.Client.Send(ctx, env.Message.ChannelID, msg)
	}
	return env.newResult(StateCooldown, false, false)
}

func (c *Command) sendUsage(ctx context.Context, env *CommandEnvironment) {
	usage := c.Options.Usage
	if usage == "" {
		usage = env.Prefix + c.FullLabel()
	}
	_, _ = env.Client.Send(ctx, env.Message.ChannelID, "Usage: `"+usage+"`")
}
