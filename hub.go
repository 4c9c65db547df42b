package microbus

// Hub bundles one Bus and one Loop behind a single handle, for applications
// that want a ready-made pairing instead of wiring the two themselves.
// Every method forwards to the owned bus or loop; Hub adds no behavior of
// its own.
type Hub struct {
	bus  *Bus
	loop *Loop
}

// NewHub creates a bus and a loop and ties them together.
func NewHub(opts ...LoopOption) *Hub {
	return &Hub{
		bus:  New(),
		loop: NewLoop(opts...),
	}
}

// Bus returns the owned bus.
func (h *Hub) Bus() *Bus { return h.bus }

// Loop returns the owned loop.
func (h *Hub) Loop() *Loop { return h.loop }

// Subscribe registers a handler on the owned bus.
func (h *Hub) Subscribe(event string, fn any) (int, error) {
	return h.bus.Subscribe(event, fn)
}

// Unsubscribe removes a subscription from the owned bus.
func (h *Hub) Unsubscribe(event string, id int) {
	h.bus.Unsubscribe(event, id)
}

// Trigger dispatches an event synchronously on the owned bus.
func (h *Hub) Trigger(event string, args ...any) error {
	return h.bus.Trigger(event, args...)
}

// Clear drops every subscription on the owned bus.
func (h *Hub) Clear() {
	h.bus.Clear()
}

// Enqueue defers a trigger of the event on the owned bus to the owned loop.
func (h *Hub) Enqueue(event string, args ...any) error {
	return h.loop.Enqueue(h.bus, event, args...)
}

// Wait blocks until every previously enqueued task has finished executing.
func (h *Hub) Wait() {
	h.loop.Wait()
}

// Stop requests loop shutdown; queued tasks still drain.
func (h *Hub) Stop() {
	h.loop.Stop()
}

// Close stops the loop and waits for its worker to exit.
func (h *Hub) Close() {
	h.loop.Close()
}
