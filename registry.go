package microbus

// handlerEntry pairs a subscription id with its invoker.
// Within one event's list, entries are kept in subscription order, and that
// order is the dispatch order.
type handlerEntry struct {
	id  int
	inv *invoker
}

// eventEntry holds the fixed signature and the ordered subscriber list for
// one event name.
type eventEntry struct {
	sig      Signature
	handlers []handlerEntry
}

// registry maps event names to their subscriber lists and allocates
// subscription ids. It carries no lock of its own; the owning Bus guards it
// with its reader/writer lock.
type registry struct {
	events map[string]*eventEntry
	nextID int
}

// newRegistry creates an empty registry. Ids start at 0 and are never reused.
func newRegistry() *registry {
	return &registry{events: make(map[string]*eventEntry)}
}

// add appends an invoker to the tail of an event's list and allocates the
// next subscription id. The first subscriber for a name fixes its signature;
// a later subscriber with a different signature is rejected without
// consuming an id.
func (r *registry) add(event string, inv *invoker) (int, error) {
	entry, ok := r.events[event]
	if !ok {
		entry = &eventEntry{sig: inv.sig}
		r.events[event] = entry
	} else if !inv.sig.equal(entry.sig) {
		return 0, &SignatureError{Event: event, Want: entry.sig, Got: inv.sig}
	}

	id := r.nextID
	r.nextID++
	entry.handlers = append(entry.handlers, handlerEntry{id: id, inv: inv})
	return id, nil
}

// remove deletes the entry with the given id from an event's list.
// The event name itself is dropped as soon as its list empties.
func (r *registry) remove(event string, id int) bool {
	entry, ok := r.events[event]
	if !ok {
		return false
	}
	for i, h := range entry.handlers {
		if h.id == id {
			entry.handlers = append(entry.handlers[:i], entry.handlers[i+1:]...)
			if len(entry.handlers) == 0 {
				delete(r.events, event)
			}
			return true
		}
	}
	return false
}

// get returns the entry for an event name, if present.
func (r *registry) get(event string) (*eventEntry, bool) {
	entry, ok := r.events[event]
	return entry, ok
}

// clear drops every subscription. The id counter is not reset.
func (r *registry) clear() {
	r.events = make(map[string]*eventEntry)
}

// count returns the total number of subscriptions across all events.
func (r *registry) count() int {
	n := 0
	for _, entry := range r.events {
		n += len(entry.handlers)
	}
	return n
}

// countEvents returns the number of event names with at least one subscriber.
func (r *registry) countEvents() int {
	return len(r.events)
}
