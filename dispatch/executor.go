package dispatch

import (
	"runtime/debug"
	"time"
)

// Task is one queued unit of work. It is consumed exactly once.
type Task func() error

// PanicHandler is called when a task panics during execution.
// It receives the panic value and the stack trace.
type PanicHandler func(panicValue any, stack []byte)

// Result represents the outcome of a task execution.
type Result struct {
	// Err is the error returned by the task, if any.
	Err error

	// Panicked is true if the task panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// Stack is the stack trace at the point of panic.
	Stack []byte

	// Duration is how long the task took to execute.
	Duration time.Duration
}

// Failed reports whether the task returned an error or panicked.
func (r Result) Failed() bool {
	return r.Err != nil || r.Panicked
}

// Executor runs tasks with panic recovery and timing, so one failing task
// cannot take down the goroutine draining the queue.
type Executor struct {
	panicHandler PanicHandler
}

// Option configures an Executor.
type Option func(*Executor)

// WithPanicHandler sets the callback invoked when a task panics.
func WithPanicHandler(h PanicHandler) Option {
	return func(e *Executor) {
		e.panicHandler = h
	}
}

// NewExecutor creates an executor with the given options.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one task and returns its result. Panics are recovered and
// reported through the Result and the configured PanicHandler; a panic
// inside the PanicHandler itself is contained.
func (e *Executor) Execute(task Task) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()
			result.Panicked = true
			result.PanicValue = r
			result.Stack = stack

			if e.panicHandler != nil {
				func() {
					defer func() { _ = recover() }()
					e.panicHandler(r, stack)
				}()
			}
		}
	}()

	result.Err = task()
	return result
}
