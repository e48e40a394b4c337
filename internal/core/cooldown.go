package core

import (
	"sync"
	"time"

	"github.com/keshon/botkit/pkg/collection"
)

// cooldownEntries bounds per-actor state; stale actors fall off the LRU tail
// instead of accumulating forever.
const cooldownEntries = 1024

type cooldownEntry struct {
	last     time.Time
	notified bool
}

// CommandCooldown throttles a command per actor: after an allowed use inside
// the window, further uses are blocked until the window elapses, with at
// most one notice per blocked window.
type CommandCooldown struct {
	mu       sync.Mutex
	duration time.Duration
	entries  *collection.LRU[string, *cooldownEntry]
	now      func() time.Time
}

// NewCooldown returns a tracker with the given window. A non-positive
// duration disables throttling entirely.
func NewCooldown(duration time.Duration) *CommandCooldown {
	return &CommandCooldown{
		duration: duration,
		entries:  collection.NewLRU[string, *cooldownEntry](cooldownEntries),
		now:      time.Now,
	}
}

// Duration returns the configured window.
func (c *CommandCooldown) Duration() time.Duration {
	if c == nil {
		return 0
	}
	return c.duration
}

// ShouldCooldown reports whether actorID is currently blocked. When blocked
// it returns the remaining time and whether a notice is due; the notice
// fires at most once per blocked window.
func (c *CommandCooldown) ShouldCooldown(actorID string) (remaining time.Duration, notify bool, active bool) {
	if c == nil || c.duration <= 0 {
		return 0, false, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries.Get(actorID)
	if !ok {
		return 0, false, false
	}
	elapsed := c.now().Sub(entry.last)
	if elapsed >= c.duration {
		return 0, false, false
	}
	notify = !entry.notified
	entry.notified = true
	return c.duration - elapsed, notify, true
}

// SetCooldown stamps an allowed use for actorID and re-arms the notice.
func (c *CommandCooldown) SetCooldown(actorID string) {
	if c == nil || c.duration <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Set(actorID, &cooldownEntry{last: c.now()})
}

// ShouldSetCooldown decides whether an invocation outcome arms the cooldown.
// Nil responses (including failures) arm it; responses explicitly marked
// NoCooldown do not.
func (c *CommandCooldown) ShouldSetCooldown(resp *CommandResponse) bool {
	if c == nil || c.duration <= 0 {
		return false
	}
	return resp == nil || !resp.NoCooldown
}

// Sweep drops entries whose window has elapsed and returns how many were
// removed. Called periodically by the background sweeper.
func (c *CommandCooldown) Sweep() int {
	if c == nil || c.duration <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var stale []string
	now := c.now()
	c.entries.ForEach(func(actorID string, entry *cooldownEntry) {
		if now.Sub(entry.last) >= c.duration {
			stale = append(stale, actorID)
		}
	})
	for _, id := range stale {
		c.entries.Delete(id)
	}
	return len(stale)
}
