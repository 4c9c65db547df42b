package microbus

import (
	"github.com/rs/zerolog"

	"github.com/dshills/microbus/dispatch"
)

// LoopOption configures a Loop before its worker starts.
type LoopOption func(*Loop)

// WithQueueCapacity bounds the loop's task queue. When the queue is at
// capacity, Enqueue rejects with ErrQueueFull instead of growing. Values
// <= 0 leave the queue unbounded, which is the default; an unbounded queue
// trades backpressure for never rejecting a producer, so fast producers with
// a slow consumer will grow it without limit.
func WithQueueCapacity(n int) LoopOption {
	return func(l *Loop) {
		l.capacity = n
	}
}

// WithLogger sets the logger used to report task failures and panics.
// The default logs to stderr with timestamps; pass zerolog.Nop() to silence
// the loop entirely.
func WithLogger(logger zerolog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithPanicHandler sets a callback invoked, in addition to logging, when a
// task panics. A panic inside the callback itself is contained.
func WithPanicHandler(h dispatch.PanicHandler) LoopOption {
	return func(l *Loop) {
		l.panicHandler = h
	}
}
