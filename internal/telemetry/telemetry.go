// Package telemetry carries execution outcomes out of the dispatch core as
// typed events over a channel. Emission never blocks: when no consumer keeps
// up, events are dropped and counted, so the dispatch loop keeps running
// whatever the observers do.
package telemetry

import (
	"sync/atomic"
	"time"
)

// Event is one telemetry signal. The concrete types below form the full set.
type Event interface {
	eventName() string
}

// CommandExecution reports a finished command invocation, successful or
// gated.
type CommandExecution struct {
	Success   bool
	Executed  bool
	FullLabel string
	State     string
	Tier      string
	GuildID   string
	ChannelID string
	UserID    string
	Timestamp time.Time
}

// CommandError reports an unhandled failure from a command body.
type CommandError struct {
	FullLabel string
	GuildID   string
	UserID    string
	Err       error
}

// ListenerExecution reports a finished listener invocation.
type ListenerExecution struct {
	Success   bool
	EventName string
	Label     string
	GuildID   string
}

// ListenerError reports an unhandled failure from a listener body.
type ListenerError struct {
	EventName string
	Label     string
	GuildID   string
	Err       error
}

// Debug is a low-severity framework signal.
type Debug struct {
	Component string
	Message   string
}

func (CommandExecution) eventName() string  { return "commandExecution" }
func (CommandError) eventName() string      { return "commandError" }
func (ListenerExecution) eventName() string { return "listenerExecution" }
func (ListenerError) eventName() string     { return "listenerError" }
func (Debug) eventName() string             { return "debug" }

// Name returns the wire name of an event.
func Name(e Event) string { return e.eventName() }

// Emitter fans telemetry out to a single consumer channel.
type Emitter struct {
	ch      chan Event
	dropped atomic.Uint64
}

// NewEmitter returns an emitter buffering up to size events.
func NewEmitter(size int) *Emitter {
	if size < 1 {
		size = 1
	}
	return &Emitter{ch: make(chan Event, size)}
}

// Emit publishes e without blocking; if the buffer is full the event is
// dropped and counted.
func (t *Emitter) Emit(e Event) {
	select {
	case t.ch <- e:
	default:
		t.dropped.Add(1)
	}
}

// Events returns the consumer channel.
func (t *Emitter) Events() <-chan Event {
	return t.ch
}

// Dropped returns how many events were discarded due to a full buffer.
func (t *Emitter) Dropped() uint64 {
	return t.dropped.Load()
}

// Close closes the consumer channel. Emit must not be called after Close.
func (t *Emitter) Close() {
	close(t.ch)
}
