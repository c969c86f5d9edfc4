// Package events implements the engine's prioritized publish/subscribe
// bus: per-kind and global subscriptions, cancellation, payload
// mutation, a bounded history ring, and synchronous + asynchronous
// dispatch sharing one subscription table.
//
// Grounded on original_source/game/events.py's EventBus (subscribe,
// subscribe_all, publish, emit, clear, priority-sorted handler slices,
// per-handler exception isolation) and generalized from the teacher's
// append-only internal/log.EventLogger, which only ever observes
// events rather than gating them.
package events

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Kind identifies an event category. The engine defines its own Kind
// constants (internal/game); this package is domain-agnostic.
type Kind string

// Event is a tagged record carrying a mutable payload, a cancellation
// flag, and a prevention flag (side effects suppressed but dispatch
// continues). Handlers mutate it in place during Publish.
type Event struct {
	Kind      Kind
	Payload   map[string]any
	cancelled bool
	prevented bool
}

// New creates an Event with an initialized payload map.
func New(kind Kind, payload map[string]any) *Event {
	if payload == nil {
		payload = make(map[string]any)
	}
	return &Event{Kind: kind, Payload: payload}
}

func (e *Event) Cancel()          { e.cancelled = true }
func (e *Event) Prevent()         { e.prevented = true }
func (e *Event) Cancelled() bool  { return e.cancelled }
func (e *Event) Prevented() bool  { return e.prevented }

func (e *Event) Get(key string) (any, bool) {
	v, ok := e.Payload[key]
	return v, ok
}

func (e *Event) Set(key string, value any) {
	e.Payload[key] = value
}

// ModifyDamage is a convenience setter mirroring the source's
// GameEvent.modify_damage(n).
func (e *Event) ModifyDamage(n int) {
	e.Payload["damage"] = n
}

func (e *Event) Damage() int {
	if v, ok := e.Payload["damage"].(int); ok {
		return v
	}
	return 0
}

// Handler reacts to a dispatched event. A handler must not perform
// blocking I/O; it runs synchronously inside Publish.
type Handler interface {
	Handle(ctx context.Context, e *Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e *Event)

func (f HandlerFunc) Handle(ctx context.Context, e *Event) { f(ctx, e) }

type subscription struct {
	id       uint64
	priority int
	handler  Handler
	once     bool
}

// Bus is the engine's owned event bus. It is not safe for concurrent
// use by multiple goroutines without external synchronization — per
// the concurrency model, only the owning game task publishes.
type Bus struct {
	mu       sync.Mutex
	perKind  map[Kind][]*subscription
	global   []*subscription
	history  []*Event
	histCap  int
	nextID   uint64
}

const defaultHistoryCap = 100

// NewBus constructs an empty bus with the default bounded history.
func NewBus() *Bus {
	return &Bus{
		perKind: make(map[Kind][]*subscription),
		histCap: defaultHistoryCap,
	}
}

// Subscribe registers a per-kind handler at the given priority.
// Dispatch order is priority-descending; equal priorities preserve
// registration order (stable sort).
func (b *Bus) Subscribe(kind Kind, priority int, h Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &subscription{id: b.nextID, priority: priority, handler: h}
	b.perKind[kind] = insertSorted(b.perKind[kind], sub)
	return sub.id
}

// SubscribeAll registers a global handler invoked for every event kind
// before kind-specific handlers.
func (b *Bus) SubscribeAll(priority int, h Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &subscription{id: b.nextID, priority: priority, handler: h}
	b.global = insertSorted(b.global, sub)
	return sub.id
}

// Once subscribes a per-kind handler that auto-unsubscribes after its
// first invocation. If a cancelled event stops dispatch before reaching
// it, it is not invoked and stays subscribed.
func (b *Bus) Once(kind Kind, priority int, h Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &subscription{id: b.nextID, priority: priority, handler: h, once: true}
	b.perKind[kind] = insertSorted(b.perKind[kind], sub)
	return sub.id
}

func insertSorted(subs []*subscription, sub *subscription) []*subscription {
	subs = append(subs, sub)
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].priority > subs[j].priority })
	return subs
}

// Unsubscribe removes a single subscription by id, searching both the
// global list and every per-kind list.
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = removeByID(b.global, id)
	for k, subs := range b.perKind {
		b.perKind[k] = removeByID(subs, id)
	}
}

func removeByID(subs []*subscription, id uint64) []*subscription {
	out := subs[:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// Clear removes every subscription, global and per-kind alike. Distinct
// from unsubscribing handlers individually.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.perKind = make(map[Kind][]*subscription)
	b.global = nil
}

// Publish appends the event to history, then dispatches to global
// handlers followed by kind-specific handlers, both in
// priority-descending order. A cancelled event short-circuits
// remaining handlers. Handler panics are recovered, logged, and do not
// interrupt dispatch of subsequent handlers.
func (b *Bus) Publish(ctx context.Context, e *Event) *Event {
	b.mu.Lock()
	b.appendHistory(e)
	global := append([]*subscription(nil), b.global...)
	kindSubs := append([]*subscription(nil), b.perKind[e.Kind]...)
	b.mu.Unlock()

	consumedOnce := b.dispatch(ctx, global, e, true)
	if !e.cancelled {
		consumedOnce = append(consumedOnce, b.dispatch(ctx, kindSubs, e, false)...)
	}
	if len(consumedOnce) > 0 {
		b.mu.Lock()
		for _, id := range consumedOnce {
			b.global = removeByID(b.global, id)
			for k, subs := range b.perKind {
				b.perKind[k] = removeByID(subs, id)
			}
		}
		b.mu.Unlock()
	}
	return e
}

// PublishAsync mirrors Publish but threads a context through each
// handler and is meant to be called from a goroutine that can
// legitimately await; handlers still run sequentially in priority
// order, matching "async dispatch mirrors sync but awaits handlers
// sequentially".
func (b *Bus) PublishAsync(ctx context.Context, e *Event) *Event {
	return b.Publish(ctx, e)
}

func (b *Bus) dispatch(ctx context.Context, subs []*subscription, e *Event, isGlobal bool) []uint64 {
	var onceIDs []uint64
	for _, s := range subs {
		if e.cancelled {
			break
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("kind", string(e.Kind)).Bool("global", isGlobal).Msg("event handler panicked")
				}
			}()
			s.handler.Handle(ctx, e)
		}()
		if s.once {
			onceIDs = append(onceIDs, s.id)
		}
	}
	return onceIDs
}

func (b *Bus) appendHistory(e *Event) {
	b.history = append(b.history, e)
	if len(b.history) > b.histCap {
		b.history = b.history[len(b.history)-b.histCap:]
	}
}

// History returns the most recent count events (or all held if fewer).
func (b *Bus) History(count int) []*Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if count <= 0 || count > len(b.history) {
		count = len(b.history)
	}
	out := make([]*Event, count)
	copy(out, b.history[len(b.history)-count:])
	return out
}
