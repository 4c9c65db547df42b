package microbus

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/microbus/dispatch"
)

// task is one deferred trigger: the destination bus, the event name, and the
// arguments materialized at enqueue time.
type task struct {
	bus   *Bus
	event string
	args  *payload
}

// Loop is a single-worker event loop. Tasks enqueued on one Loop execute in
// strict FIFO order on the loop's worker goroutine, never concurrently with
// each other, even when they target different buses.
//
// A task failure (handler error or panic) is logged and counted; it never
// terminates the worker. Create a Loop with NewLoop and release it with
// Close.
type Loop struct {
	mu       sync.Mutex
	work     *sync.Cond
	drained  *sync.Cond
	queue    []task
	inFlight int
	stopping bool
	done     chan struct{}

	capacity     int
	logger       zerolog.Logger
	panicHandler dispatch.PanicHandler
	exec         *dispatch.Executor

	enqueued  atomic.Uint64
	processed atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	rejected  atomic.Uint64
}

// NewLoop creates an event loop and starts its worker goroutine.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		done:   make(chan struct{}),
		logger: zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.work = sync.NewCond(&l.mu)
	l.drained = sync.NewCond(&l.mu)
	l.exec = dispatch.NewExecutor(dispatch.WithPanicHandler(l.panicHandler))

	go l.run()
	return l
}

// Enqueue appends an asynchronous trigger of the event on the given bus to
// the tail of the queue. Arguments are materialized once, here, and shared
// with the worker; the bus pointer held by the task keeps the bus reachable
// until the task has run.
//
// Enqueue never blocks beyond lock acquisition. After Stop it is rejected
// with ErrLoopStopped; on a bounded loop a full queue is rejected with
// ErrQueueFull.
func (l *Loop) Enqueue(bus *Bus, event string, args ...any) error {
	p := newPayload(args)

	l.mu.Lock()
	if l.stopping {
		l.mu.Unlock()
		l.rejected.Add(1)
		return ErrLoopStopped
	}
	if l.capacity > 0 && len(l.queue) >= l.capacity {
		l.mu.Unlock()
		l.rejected.Add(1)
		return ErrQueueFull
	}
	l.queue = append(l.queue, task{bus: bus, event: event, args: p})
	l.mu.Unlock()

	l.enqueued.Add(1)
	l.work.Signal()
	return nil
}

// Wait blocks until every previously enqueued task has finished executing.
// The condition is "queue empty AND no task in flight", so a task already
// handed to the worker but still running holds Wait open until it completes.
func (l *Loop) Wait() {
	l.mu.Lock()
	for len(l.queue) > 0 || l.inFlight > 0 {
		l.drained.Wait()
	}
	l.mu.Unlock()
}

// Stop requests shutdown and wakes the worker. Tasks already in the queue
// still drain; new Enqueue calls are rejected. Stop is idempotent and does
// not wait for the worker to exit; use Close for that.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopping = true
	l.mu.Unlock()
	l.work.Broadcast()
}

// Close stops the loop and blocks until the worker goroutine has exited.
// No task executes after Close returns.
func (l *Loop) Close() {
	l.Stop()
	<-l.done
}

// run is the worker loop: wait for work or stop, pop the head task, execute
// it outside the lock so producers can enqueue concurrently, then signal
// drain-waiters.
func (l *Loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		for !l.stopping && len(l.queue) == 0 {
			l.work.Wait()
		}
		if l.stopping && len(l.queue) == 0 {
			l.drained.Broadcast()
			l.mu.Unlock()
			return
		}

		t := l.queue[0]
		l.queue[0] = task{}
		l.queue = l.queue[1:]
		l.inFlight++
		l.mu.Unlock()

		res := l.exec.Execute(func() error {
			return t.bus.triggerPayload(t.event, t.args)
		})
		l.observe(t.event, res)

		l.mu.Lock()
		l.inFlight--
		if len(l.queue) == 0 && l.inFlight == 0 {
			l.drained.Broadcast()
		}
		l.mu.Unlock()
	}
}

// observe records the outcome of one task and reports failures.
func (l *Loop) observe(event string, res dispatch.Result) {
	l.processed.Add(1)
	switch {
	case res.Panicked:
		l.panicked.Add(1)
		l.logger.Error().
			Str("event", event).
			Interface("panic", res.PanicValue).
			Bytes("stack", res.Stack).
			Dur("duration", res.Duration).
			Msg("event task panicked")
	case res.Err != nil:
		l.failed.Add(1)
		l.logger.Error().
			Str("event", event).
			Err(res.Err).
			Dur("duration", res.Duration).
			Msg("event task failed")
	}
}

// LoopStats contains loop counters.
type LoopStats struct {
	// Enqueued is the number of tasks accepted by Enqueue.
	Enqueued uint64

	// Processed is the number of tasks executed, successfully or not.
	Processed uint64

	// Failed is the number of tasks whose trigger returned an error.
	Failed uint64

	// Panicked is the number of tasks that panicked.
	Panicked uint64

	// Rejected is the number of Enqueue calls refused (stopped loop or
	// full queue).
	Rejected uint64

	// QueueDepth is the current number of tasks waiting in the queue.
	QueueDepth int

	// InFlight is 1 while the worker is executing a task, 0 otherwise.
	InFlight int
}

// Stats returns current loop statistics.
func (l *Loop) Stats() LoopStats {
	l.mu.Lock()
	depth := len(l.queue)
	inFlight := l.inFlight
	l.mu.Unlock()

	return LoopStats{
		Enqueued:   l.enqueued.Load(),
		Processed:  l.processed.Load(),
		Failed:     l.failed.Load(),
		Panicked:   l.panicked.Load(),
		Rejected:   l.rejected.Load(),
		QueueDepth: depth,
		InFlight:   inFlight,
	}
}
