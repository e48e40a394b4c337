package core

import (
	"time"

	"github.com/keshon/botkit/internal/platform"
	"github.com/keshon/botkit/internal/storagetypes"
)

// ExecutionTier is the privilege level of an invocation, determined by which
// prefix matched.
type ExecutionTier int

const (
	TierRegular ExecutionTier = iota
	TierAdmin
	TierOwner
)

func (t ExecutionTier) String() string {
	switch t {
	case TierAdmin:
		return "admin"
	case TierOwner:
		return "owner"
	default:
		return "regular"
	}
}

// ExecutionState classifies the terminal state of an invocation. Gating
// outcomes are states, not errors.
type ExecutionState int

const (
	StateNoError ExecutionState = iota
	StateCooldown
	StateInvalidUsage
	StateInvalidPermissionsBot
	StateInvalidPermissionsUser
)

func (s ExecutionState) String() string {
	switch s {
	case StateCooldown:
		return "cooldown"
	case StateInvalidUsage:
		return "invalidUsage"
	case StateInvalidPermissionsBot:
		return "invalidPermissionsBot"
	case StateInvalidPermissionsUser:
		return "invalidPermissionsUser"
	default:
		return "noError"
	}
}

// CommandEnvironment is everything a command invocation runs with: the
// triggering message, the resolved guild configuration, the actor's resolved
// permission names, and the client for outbound calls. Built once by the
// dispatcher and treated as read-only afterwards.
type CommandEnvironment struct {
	Client      platform.Client
	Message     platform.Message
	GuildConfig *storagetypes.GuildConfig // nil outside guilds
	GuildOwner  string
	MemberPerms []string // actor's permission names in the channel, nil in DM
	Prefix      string
	Label       string
	Args        []string
	Tier        ExecutionTier
}

// RoleIDs returns the actor's role IDs, or nil outside guilds.
func (e *CommandEnvironment) RoleIDs() []string {
	if e.Message.Member == nil {
		return nil
	}
	return e.Message.Member.RoleIDs
}

// HasPerm reports whether the actor's resolved permissions include name.
func (e *CommandEnvironment) HasPerm(name string) bool {
	for _, p := range e.MemberPerms {
		if p == name {
			return true
		}
	}
	return false
}

// CommandResponse is what a command body hands back. Reply, when set, is
// sent to the triggering channel. NoCooldown marks the outcome as not
// arming the command's cooldown.
type CommandResponse struct {
	Reply      string
	NoCooldown bool
	Data       any
}

// ExecutionResult is the immutable snapshot of one invocation outcome. It is
// produced for every terminal state, gated or executed, and discarded after
// telemetry emission.
type ExecutionResult struct {
	Executed  bool
	State     ExecutionState
	Tier      ExecutionTier
	Success   bool
	Err       error
	GuildID   string
	ChannelID string
	UserID    string
	Input     string
	Timestamp time.Time
	Response  *CommandResponse
}

func (e *CommandEnvironment) newResult(state ExecutionState, executed, success bool) *ExecutionResult {
	return &ExecutionResult{
		Executed:  executed,
		State:     state,
		Tier:      e.Tier,
		Success:   success,
		GuildID:   e.Message.GuildID,
		ChannelID: e.Message.ChannelID,
		UserID:    e.Message.Author.ID,
		Input:     e.Message.Content,
		Timestamp: time.Now(),
	}
}
