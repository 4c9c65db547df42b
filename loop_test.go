package microbus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoop(t *testing.T, opts ...LoopOption) *Loop {
	t.Helper()
	loop := NewLoop(append([]LoopOption{WithLogger(zerolog.Nop())}, opts...)...)
	t.Cleanup(loop.Close)
	return loop
}

func TestLoop_WaitCoversInFlightTask(t *testing.T) {
	bus := New()
	loop := newTestLoop(t)

	const n = 10
	var completed atomic.Int32
	_, err := bus.Subscribe("OnWork", func(int) {
		// Long enough that Wait is called while a task is mid-execution.
		time.Sleep(5 * time.Millisecond)
		completed.Add(1)
	})
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		require.NoError(t, loop.Enqueue(bus, "OnWork", i))
	}

	loop.Wait()
	assert.Equal(t, int32(n), completed.Load(),
		"Wait must return only after the last dequeued task has finished executing")
}

func TestLoop_FIFOAcrossBuses(t *testing.T) {
	busA := New()
	busB := New()
	loop := newTestLoop(t)

	var mu sync.Mutex
	var order []int
	record := func(n int) {
		mu.Lock()
		order = append(order, n)
		mu.Unlock()
	}
	_, err := busA.Subscribe("OnSeq", record)
	require.NoError(t, err)
	_, err = busB.Subscribe("OnSeq", record)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		bus := busA
		if i%2 == 1 {
			bus = busB
		}
		require.NoError(t, loop.Enqueue(bus, "OnSeq", i))
	}
	loop.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 20)
	for i, n := range order {
		assert.Equal(t, i, n, "tasks must execute in strict enqueue order")
	}
}

func TestLoop_ArgumentsMaterializedOnce(t *testing.T) {
	bus := New()
	loop := newTestLoop(t)

	var got []string
	var mu sync.Mutex
	_, err := bus.Subscribe("OnMessage", func(s string) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})
	require.NoError(t, err)

	// Mutating the variable after Enqueue must not affect the queued task.
	message := "first"
	require.NoError(t, loop.Enqueue(bus, "OnMessage", message))
	message = "second"
	require.NoError(t, loop.Enqueue(bus, "OnMessage", message))

	loop.Wait()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestLoop_StopDrainsQueuedTasks(t *testing.T) {
	bus := New()
	loop := NewLoop(WithLogger(zerolog.Nop()))

	var completed atomic.Int32
	_, err := bus.Subscribe("OnWork", func() {
		time.Sleep(2 * time.Millisecond)
		completed.Add(1)
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, loop.Enqueue(bus, "OnWork"))
	}
	loop.Stop()
	loop.Close()

	assert.Equal(t, int32(5), completed.Load(),
		"tasks enqueued before Stop must still execute")

	// Nothing runs after Close has returned.
	processed := loop.Stats().Processed
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, processed, loop.Stats().Processed)
}

func TestLoop_EnqueueAfterStopRejected(t *testing.T) {
	bus := New()
	loop := newTestLoop(t)

	loop.Stop()
	err := loop.Enqueue(bus, "OnWork")
	assert.ErrorIs(t, err, ErrLoopStopped)
	assert.Equal(t, uint64(1), loop.Stats().Rejected)
}

func TestLoop_PanicDoesNotKillWorker(t *testing.T) {
	bus := New()

	var panicValue atomic.Value
	loop := newTestLoop(t, WithPanicHandler(func(v any, stack []byte) {
		panicValue.Store(v)
	}))

	_, err := bus.Subscribe("OnBoom", func() { panic("task exploded") })
	require.NoError(t, err)
	var after atomic.Bool
	_, err = bus.Subscribe("OnAfter", func() { after.Store(true) })
	require.NoError(t, err)

	require.NoError(t, loop.Enqueue(bus, "OnBoom"))
	require.NoError(t, loop.Enqueue(bus, "OnAfter"))
	loop.Wait()

	assert.True(t, after.Load(), "worker must survive a panicking task")
	assert.Equal(t, "task exploded", panicValue.Load())

	stats := loop.Stats()
	assert.Equal(t, uint64(2), stats.Processed)
	assert.Equal(t, uint64(1), stats.Panicked)
}

func TestLoop_HandlerErrorCountedNotFatal(t *testing.T) {
	bus := New()
	loop := newTestLoop(t)

	_, err := bus.Subscribe("OnCalc", func(float64, int) {})
	require.NoError(t, err)

	// Signature mismatch surfaces when the task runs, is counted as a
	// failure, and does not stop the worker.
	require.NoError(t, loop.Enqueue(bus, "OnCalc", "pi", 4))
	require.NoError(t, loop.Enqueue(bus, "OnCalc", 3.14, 4))
	loop.Wait()

	stats := loop.Stats()
	assert.Equal(t, uint64(2), stats.Processed)
	assert.Equal(t, uint64(1), stats.Failed)
	assert.Zero(t, stats.Panicked)
}

func TestLoop_BoundedQueueRejectsWhenFull(t *testing.T) {
	bus := New()
	loop := newTestLoop(t, WithQueueCapacity(1))

	entered := make(chan struct{})
	release := make(chan struct{})
	_, err := bus.Subscribe("OnBlock", func() {
		entered <- struct{}{}
		<-release
	})
	require.NoError(t, err)

	// First task occupies the worker; it has been dequeued, so the queue
	// itself is empty again.
	require.NoError(t, loop.Enqueue(bus, "OnBlock"))
	<-entered

	// Second task fills the queue; the third must be rejected.
	require.NoError(t, loop.Enqueue(bus, "OnBlock"))
	err = loop.Enqueue(bus, "OnBlock")
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1, loop.Stats().QueueDepth)

	release <- struct{}{}
	<-entered
	release <- struct{}{}
	loop.Wait()
}

func TestLoop_WaitReturnsImmediatelyWhenIdle(t *testing.T) {
	loop := newTestLoop(t)

	done := make(chan struct{})
	go func() {
		loop.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on an idle loop")
	}
}

func TestLoop_CloseIdempotentStop(t *testing.T) {
	loop := NewLoop(WithLogger(zerolog.Nop()))
	loop.Stop()
	loop.Stop()
	loop.Close()
	loop.Wait() // drained loop: returns immediately
}
