package core

// CommandOptions are the declarative execution preconditions of a command.
// All methods are pure predicates over static configuration; they gate the
// execution state machine but never act themselves.
type CommandOptions struct {
	ArgsMin               int
	GuildOnly             bool
	Hidden                bool
	DeleteCommand         bool
	SendUsageMessage      bool
	SendPermissionMessage bool
	Usage                 string
}

// IsGuildOnly reports whether the command may only run inside guilds.
func (o *CommandOptions) IsGuildOnly() bool {
	return o != nil && o.GuildOnly
}

// HasCorrectArgs reports whether args meets the configured minimum count.
func (o *CommandOptions) HasCorrectArgs(args []string) bool {
	if o == nil {
		return true
	}
	return len(args) >= o.ArgsMin
}

// ShouldSendInvalidUsageMessage reports whether a usage notice is due for
// the given (insufficient) arguments.
func (o *CommandOptions) ShouldSendInvalidUsageMessage(args []string) bool {
	if o == nil {
		return false
	}
	return o.SendUsageMessage && !o.HasCorrectArgs(args)
}

// ShouldSendInvalidPermissionMessage reports whether a permission notice is
// due on rejection.
func (o *CommandOptions) ShouldSendInvalidPermissionMessage() bool {
	return o != nil && o.SendPermissionMessage
}

// ShouldDeleteCommand reports whether the triggering input is deleted before
// execution.
func (o *CommandOptions) ShouldDeleteCommand() bool {
	return o != nil && o.DeleteCommand
}

// IsHidden reports whether the command is omitted from help listings.
func (o *CommandOptions) IsHidden() bool {
	return o != nil && o.Hidden
}
