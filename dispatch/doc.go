// Package dispatch provides panic-safe execution of queued event tasks.
//
// The event loop worker must outlive any single failing task: a handler that
// panics while being driven asynchronously has no caller to propagate to, so
// the Executor recovers the panic, captures the stack, and hands both back in
// a Result for the loop to report. Synchronous bus triggers do not go through
// this package; their panics propagate to the triggering caller.
package dispatch
