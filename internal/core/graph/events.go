package graph

import "github.com/google/uuid"

// Event names emitted by the store and the scenario engine.
const (
	EventNodeAdded   = "node:added"
	EventNodeUpdated = "node:updated"
	EventNodeRemoved = "node:removed"
	EventNodeBound   = "node:bound"
	EventNodeUnbound = "node:unbound"

	EventEdgeAdded   = "edge:added"
	EventEdgeUpdated = "edge:updated"
	EventEdgeRemoved = "edge:removed"

	EventComponentAdded    = "component:added"
	EventComponentUpdated  = "component:updated"
	EventComponentRemoved  = "component:removed"
	EventComponentNested   = "component:nested"
	EventComponentUnnested = "component:unnested"

	EventGraphLoaded  = "graph:loaded"
	EventGraphCleared = "graph:cleared"

	EventScenarioCreated   = "scenario:created"
	EventScenarioUpdated   = "scenario:updated"
	EventScenarioDeleted   = "scenario:deleted"
	EventScenarioTraversed = "scenario:traversed"
	EventScenarioActivated = "scenario:activated"
	EventScenarioCleared   = "scenario:cleared"
)

// maxEmitDepth bounds synchronous listener feedback loops. A listener that
// mutates the store triggers nested emission; past this depth the emission
// is dropped and reported through the overflow hook.
const maxEmitDepth = 8

// Event carries an event name and the entity (or payload) it concerns.
type Event struct {
	Name    string
	Payload any
}

// Listener receives events synchronously on the mutating goroutine.
// Listeners must not synchronously trigger unbounded re-entrant mutation of
// the entity just emitted.
type Listener func(Event)

type subscription struct {
	token string
	fn    Listener
}

// Bus is a synchronous, multi-listener event bus keyed by event name.
// It is not safe for concurrent use; all operations run on the single
// logical thread that owns the store.
type Bus struct {
	listeners map[string][]subscription
	depth     int
	// overflow is invoked with the event name when emission is dropped
	// because maxEmitDepth was exceeded.
	overflow func(name string)
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[string][]subscription)}
}

// Subscribe registers a listener for the named event and returns a token
// for later unsubscription.
func (b *Bus) Subscribe(name string, fn Listener) string {
	token := uuid.NewString()
	b.listeners[name] = append(b.listeners[name], subscription{token: token, fn: fn})
	return token
}

// Unsubscribe removes the listener registered under token, if any.
func (b *Bus) Unsubscribe(token string) {
	for name, subs := range b.listeners {
		for i, sub := range subs {
			if sub.token == token {
				b.listeners[name] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers the event to every listener registered for name, in
// subscription order. Nested emission past maxEmitDepth is dropped.
func (b *Bus) Emit(name string, payload any) {
	if b.depth >= maxEmitDepth {
		if b.overflow != nil {
			b.overflow(name)
		}
		return
	}
	b.depth++
	defer func() { b.depth-- }()

	// Copy so a listener unsubscribing mid-emit does not skip entries.
	subs := make([]subscription, len(b.listeners[name]))
	copy(subs, b.listeners[name])
	for _, sub := range subs {
		sub.fn(Event{Name: name, Payload: payload})
	}
}
