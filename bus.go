package microbus

import (
	"sync"
	"sync/atomic"
)

// Bus is a thread-safe registry of named events and their subscribers.
// Handlers for one event are invoked synchronously, in subscription order,
// on the goroutine that calls Trigger. The zero value is not usable; create
// a Bus with New.
type Bus struct {
	mu  sync.RWMutex
	reg *registry

	triggered atomic.Uint64
	delivered atomic.Uint64
}

// New creates an empty event bus.
func New() *Bus {
	return &Bus{reg: newRegistry()}
}

// Subscribe registers a handler for an event name and returns its
// subscription id. The handler must be a non-variadic function returning
// nothing or a single error; its parameter types are the event's signature.
// The first subscriber fixes the signature for the name, and a later
// subscriber with a different signature is rejected with a SignatureError.
func (b *Bus) Subscribe(event string, fn any) (int, error) {
	inv, err := newInvoker(fn)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reg.add(event, inv)
}

// Unsubscribe removes a subscription. Unknown event names and unknown or
// already-removed ids are silent no-ops.
func (b *Bus) Unsubscribe(event string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reg.remove(event, id)
}

// Trigger invokes every handler currently subscribed to the event, in
// subscription order, passing the same argument values to each. Triggering
// an event with no subscribers is a no-op. Argument types that do not match
// the event's signature are rejected with a SignatureError.
//
// A handler error stops dispatch of the remaining handlers for this call and
// is returned wrapped in a HandlerError. A handler panic propagates to the
// caller.
//
// The bus read lock is held for the duration of the dispatch, so the handler
// set observed by one Trigger call cannot change mid-call; a concurrent
// Unsubscribe or Clear blocks until the dispatch finishes.
func (b *Bus) Trigger(event string, args ...any) error {
	return b.triggerPayload(event, newPayload(args))
}

// triggerPayload dispatches an already-materialized payload. It is the
// entry point the event loop uses so it need not know argument types.
func (b *Bus) triggerPayload(event string, p *payload) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entry, ok := b.reg.get(event)
	if !ok {
		return nil
	}
	if !p.conformsTo(entry.sig) {
		return &SignatureError{Event: event, Want: entry.sig, Got: p.signature()}
	}

	args := p.argValues(entry.sig)
	b.triggered.Add(1)
	for _, h := range entry.handlers {
		if err := h.inv.invoke(args); err != nil {
			return &HandlerError{Event: event, SubscriptionID: h.id, Err: err}
		}
		b.delivered.Add(1)
	}
	return nil
}

// Clear drops every subscription on the bus. Subscription ids are not
// reused afterward.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reg.clear()
}

// BusStats contains bus counters.
type BusStats struct {
	// EventsTriggered is the number of Trigger calls that found subscribers.
	EventsTriggered uint64

	// HandlersInvoked is the number of handler invocations that completed
	// without error.
	HandlersInvoked uint64

	// Subscriptions is the current number of subscriptions.
	Subscriptions int

	// EventNames is the current number of event names with subscribers.
	EventNames int
}

// Stats returns current bus statistics.
func (b *Bus) Stats() BusStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BusStats{
		EventsTriggered: b.triggered.Load(),
		HandlersInvoked: b.delivered.Load(),
		Subscriptions:   b.reg.count(),
		EventNames:      b.reg.countEvents(),
	}
}
