package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/keshon/botkit/internal/platform"
	"github.com/keshon/botkit/internal/storagetypes"
	"github.com/keshon/botkit/pkg/collection"
)

// GuildExtractor pulls a guild identifier out of a raw event payload, or
// returns "" for events with no guild scope. Registered per event name.
type GuildExtractor func(args ...any) string

// Handler owns the listener fan-out list for one platform event.
type Handler struct {
	Event     string
	extract   GuildExtractor
	listeners []*Listener
}

// Handle extracts the guild identifier from an event's payload.
func (h *Handler) Handle(args ...any) string {
	if h.extract == nil {
		return ""
	}
	return h.extract(args...)
}

// Listeners returns the bound listener list.
func (h *Handler) Listeners() []*Listener {
	return h.listeners
}

// EventRouter maps platform event names to handlers and fans each event out
// to that handler's listeners, applying guild-level disablement before
// invocation. Registration re-subscribes the underlying platform event at
// runtime; no restart is needed.
type EventRouter struct {
	mu         sync.RWMutex
	client     platform.Client
	guilds     *GuildConfigCache
	global     *storagetypes.GlobalConfig
	executor   *Executor
	handlers   *collection.Store[string, *Handler]
	extractors map[string]GuildExtractor
	unsubs     map[string]func()
	log        zerolog.Logger
}

// NewEventRouter returns a router that subscribes through client and runs
// listeners through executor.
func NewEventRouter(client platform.Client, guilds *GuildConfigCache, global *storagetypes.GlobalConfig, executor *Executor, log zerolog.Logger) *EventRouter {
	return &EventRouter{
		client:     client,
		guilds:     guilds,
		global:     global,
		executor:   executor,
		handlers:   collection.NewStore[string, *Handler](),
		extractors: make(map[string]GuildExtractor),
		unsubs:     make(map[string]func()),
		log:        log.With().Str("component", "event_router").Logger(),
	}
}

// SetExtractor registers the guild-ID extraction logic for an event name.
// Must be called before listeners for that event are registered.
func (r *EventRouter) SetExtractor(event string, fn GuildExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[event] = fn
	if h, ok := r.handlers.Get(event); ok {
		h.extract = fn
	}
}

// RegisterListener binds a listener to its event, creating the event's
// handler and platform subscription on first use.
func (r *EventRouter) RegisterListener(l *Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handlers.Get(l.Event)
	if !ok {
		h = &Handler{Event: l.Event, extract: r.extractors[l.Event]}
		r.handlers.Set(l.Event, h)
		event := l.Event
		r.unsubs[event] = r.client.OnEvent(event, func(args ...any) {
			r.dispatch(event, args...)
		})
	}
	h.listeners = append(h.listeners, l)
	r.log.Info().Str("event", l.Event).Str("listener", l.Label).Msg("listener registered")
}

// UnregisterListener removes a listener by label, dropping the platform
// subscription when an event has no listeners left.
func (r *EventRouter) UnregisterListener(label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := false
	for _, event := range r.handlers.Keys() {
		h, _ := r.handlers.Get(event)
		kept := h.listeners[:0]
		for _, l := range h.listeners {
			if l.Label == label {
				removed = true
				continue
			}
			kept = append(kept, l)
		}
		h.listeners = kept
		if len(h.listeners) == 0 {
			if unsub := r.unsubs[event]; unsub != nil {
				unsub()
			}
			delete(r.unsubs, event)
			r.handlers.Delete(event)
		}
	}
	return removed
}

// Handler returns the handler bound to an event name.
func (r *EventRouter) Handler(event string) (*Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers.Get(event)
}

// dispatch is the generic wrapper around every handler: resolve the guild
// config, short-circuit banned guilds, filter disabled listeners, and
// forward the rest to the executor.
func (r *EventRouter) dispatch(event string, args ...any) {
	r.mu.RLock()
	h, ok := r.handlers.Get(event)
	var listeners []*Listener
	if ok {
		listeners = append(listeners, h.listeners...)
	}
	r.mu.RUnlock()
	if !ok {
		return
	}

	ctx := context.Background()
	guildID := h.Handle(args...)

	var guild *storagetypes.GuildConfig
	if guildID != "" {
		if r.global != nil && r.global.IsGuildBanned(guildID) {
			return
		}
		var err error
		guild, err = r.guilds.GetOrFetch(ctx, guildID)
		if err != nil {
			r.log.Error().Err(err).Str("event", event).Str("guild", guildID).Msg("guild config unavailable")
			return
		}
	}

	for _, l := range listeners {
		if !l.enabledFor(guild) {
			continue
		}
		r.executor.RunListener(ctx, l, guild, args...)
	}
}
