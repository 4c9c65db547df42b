// Package microbus provides an in-process publish/subscribe event bus and an
// optional single-worker event loop for deferred, serialized dispatch.
//
// # Event Bus
//
// A Bus maps event names to ordered lists of handlers. Handlers are plain
// functions; their parameter types form the event's signature, which the
// first subscriber fixes for that name:
//
//	bus := microbus.New()
//
//	id, err := bus.Subscribe("OnCalc", func(value float64, times int) {
//	    fmt.Println(value * float64(times))
//	})
//
//	err = bus.Trigger("OnCalc", 3.14159265, 4) // invokes the handler
//	bus.Unsubscribe("OnCalc", id)
//	err = bus.Trigger("OnCalc", 3.14159265, 8) // no subscribers: no-op
//
// Triggers run synchronously on the calling goroutine, in subscription
// order. Arguments are checked against the event signature at both
// subscribe and trigger time; a mismatch is a SignatureError, never a
// corrupted dispatch. Unknown event names and ids are silent no-ops.
//
// # Event Loop
//
// A Loop defers triggers to a dedicated worker goroutine. Tasks on one loop
// run strictly one at a time, in enqueue order, even across different buses:
//
//	loop := microbus.NewLoop()
//	defer loop.Close()
//
//	loop.Enqueue(bus, "OnFactorial", 15)
//	loop.Enqueue(bus, "OnFactorial", 16)
//	loop.Wait() // returns only after both tasks have finished executing
//
// Wait holds until the last dequeued task has completed, not merely until
// the queue is empty. Stop rejects further Enqueue calls but drains what was
// already queued; Close additionally waits for the worker to exit.
//
// A handler failure during a direct Trigger propagates to the caller. The
// same failure inside a loop task has no caller, so the worker recovers it,
// reports it through the loop's zerolog logger, and moves on to the next
// task.
//
// # Hub
//
// Hub owns one Bus and one Loop and forwards to them, for callers that want
// a single handle:
//
//	hub := microbus.NewHub()
//	defer hub.Close()
//
//	hub.Subscribe("OnNumber", func(n int) { fmt.Println(n) })
//	hub.Enqueue("OnNumber", 69)
//	hub.Wait()
//
// # Thread Safety
//
// All Bus, Loop, and Hub methods are safe for concurrent use. Each trigger's
// handler sequence is atomic with respect to Unsubscribe and Clear: the bus
// holds its read lock for the whole dispatch, and writers block until it is
// released. Concurrent triggers may interleave with each other.
package microbus
