package eventloop

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startLoop runs a new loop in the background, shutting it down on cleanup.
func startLoop(t *testing.T, opts ...LoopOption) *Loop {
	t.Helper()
	loop, err := New(opts...)
	require.NoError(t, err)
	started := make(chan struct{})
	require.NoError(t, loop.Submit(func() { close(started) }))
	go func() { _ = loop.Run(context.Background()) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = loop.Shutdown(ctx)
		<-loop.Done()
	})
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not start")
	}
	return loop
}

// recorder collects values from loop callbacks.
type recorder struct {
	values []any
	mu     sync.Mutex
}

func (r *recorder) add(v any) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

func (r *recorder) get() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.values...)
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting")
	}
}

// ===============================================
// Lifecycle
// ===============================================

func TestLoop_StateString(t *testing.T) {
	assert.Equal(t, "Awake", StateAwake.String())
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Sleeping", StateSleeping.String())
	assert.Equal(t, "Terminating", StateTerminating.String())
	assert.Equal(t, "Terminated", StateTerminated.String())
	assert.Equal(t, "Unknown", LoopState(99).String())
}

func TestLoop_RunTwice(t *testing.T) {
	loop := startLoop(t)
	assert.ErrorIs(t, loop.Run(context.Background()), ErrLoopAlreadyRunning)
}

func TestLoop_ShutdownBeforeRun(t *testing.T) {
	loop, err := New()
	require.NoError(t, err)
	require.NoError(t, loop.Shutdown(context.Background()))
	assert.Equal(t, StateTerminated, loop.State())
	assert.ErrorIs(t, loop.Run(context.Background()), ErrLoopTerminated)
	assert.ErrorIs(t, loop.Submit(func() {}), ErrLoopTerminated)
	_, err = loop.ScheduleTimer(0, func() {})
	assert.ErrorIs(t, err, ErrLoopTerminated)
	assert.ErrorIs(t, loop.Shutdown(context.Background()), ErrLoopTerminated)
	waitClosed(t, loop.Done())
}

func TestLoop_ContextCancel(t *testing.T) {
	loop, err := New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, StateTerminated, loop.State())
}

func TestLoop_ShutdownDrainsSubmittedTasks(t *testing.T) {
	loop, err := New()
	require.NoError(t, err)

	var (
		rec     recorder
		started = make(chan struct{})
		release = make(chan struct{})
	)
	require.NoError(t, loop.Submit(func() {
		close(started)
		<-release
		rec.add(1)
	}))
	require.NoError(t, loop.Submit(func() { rec.add(2) }))
	require.NoError(t, loop.Submit(func() { rec.add(3) }))

	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run(context.Background()) }()
	waitClosed(t, started)

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- loop.Shutdown(context.Background()) }()
	require.Eventually(t, func() bool { return loop.State() == StateTerminating }, 5*time.Second, time.Millisecond)

	assert.ErrorIs(t, loop.Submit(func() { rec.add(4) }), ErrLoopTerminated)
	close(release)

	require.NoError(t, <-shutdownErr)
	require.NoError(t, <-runErr)
	assert.Equal(t, []any{1, 2, 3}, rec.get())
	assert.Equal(t, StateTerminated, loop.State())
}

func TestLoop_ShutdownSkipsTimers(t *testing.T) {
	loop, err := New(WithTickBudget(1))
	require.NoError(t, err)

	var (
		rec     recorder
		started = make(chan struct{})
		release = make(chan struct{})
	)
	require.NoError(t, loop.Submit(func() {
		_, err := loop.ScheduleTimer(time.Millisecond, func() { rec.add(`timer`) })
		assert.NoError(t, err)
		close(started)
		<-release
		rec.add(1)
	}))
	require.NoError(t, loop.Submit(func() { rec.add(2) }))

	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run(context.Background()) }()
	waitClosed(t, started)

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- loop.Shutdown(context.Background()) }()
	require.Eventually(t, func() bool { return loop.State() == StateTerminating }, 5*time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)

	require.NoError(t, <-shutdownErr)
	require.NoError(t, <-runErr)
	assert.Equal(t, []any{1, 2}, rec.get())
}

func TestLoop_CloseFromTask(t *testing.T) {
	loop, err := New()
	require.NoError(t, err)
	var rec recorder
	require.NoError(t, loop.Submit(func() {
		rec.add(1)
		require.NoError(t, loop.Close())
	}))
	require.NoError(t, loop.Submit(func() { rec.add(2) }))
	require.NoError(t, loop.Run(context.Background()))
	assert.Equal(t, []any{1}, rec.get())
}

func TestLoop_NilCallback(t *testing.T) {
	loop, err := New()
	require.NoError(t, err)
	var typeErr *TypeError
	assert.ErrorAs(t, loop.Submit(nil), &typeErr)
	assert.ErrorAs(t, loop.ScheduleMicrotask(nil), &typeErr)
	_, err = loop.ScheduleTimer(0, nil)
	assert.ErrorAs(t, err, &typeErr)
	_, err = loop.ScheduleInterval(time.Millisecond, nil)
	assert.ErrorAs(t, err, &typeErr)
}

// ===============================================
// Ordering
// ===============================================

func TestLoop_SubmitOrder(t *testing.T) {
	loop := startLoop(t)
	var rec recorder
	done := make(chan struct{})
	for i := 1; i <= 3; i++ {
		require.NoError(t, loop.Submit(func() { rec.add(i) }))
	}
	require.NoError(t, loop.Submit(func() { close(done) }))
	waitClosed(t, done)
	assert.Equal(t, []any{1, 2, 3}, rec.get())
}

func TestLoop_MicrotasksRunBeforeSubmittedTasks(t *testing.T) {
	loop := startLoop(t)
	var rec recorder
	done := make(chan struct{})
	require.NoError(t, loop.Submit(func() {
		_ = loop.Submit(func() {
			rec.add(`task`)
			close(done)
		})
		_ = loop.ScheduleMicrotask(func() { rec.add(`microtask`) })
		rec.add(`current`)
	}))
	waitClosed(t, done)
	assert.Equal(t, []any{`current`, `microtask`, `task`}, rec.get())
}

func TestLoop_TimerOrdering(t *testing.T) {
	loop := startLoop(t)
	var rec recorder
	done := make(chan struct{})
	require.NoError(t, loop.Submit(func() {
		_, _ = loop.ScheduleTimer(30*time.Millisecond, func() {
			rec.add(30)
			close(done)
		})
		_, _ = loop.ScheduleTimer(10*time.Millisecond, func() { rec.add(10) })
		_, _ = loop.ScheduleTimer(20*time.Millisecond, func() { rec.add(20) })
		_, _ = loop.ScheduleTimer(0, func() { rec.add(0) })
	}))
	waitClosed(t, done)
	assert.Equal(t, []any{0, 10, 20, 30}, rec.get())
}

func TestLoop_TimerNotSynchronous(t *testing.T) {
	loop := startLoop(t)
	var rec recorder
	done := make(chan struct{})
	require.NoError(t, loop.Submit(func() {
		_, _ = loop.ScheduleTimer(0, func() {
			rec.add(`timer`)
			close(done)
		})
		rec.add(`after schedule`)
	}))
	waitClosed(t, done)
	assert.Equal(t, []any{`after schedule`, `timer`}, rec.get())
}

// ===============================================
// Timer cancellation
// ===============================================

func TestLoop_CancelTimer(t *testing.T) {
	loop := startLoop(t)
	var fired atomic.Bool
	done := make(chan struct{})
	require.NoError(t, loop.Submit(func() {
		id, err := loop.ScheduleTimer(10*time.Millisecond, func() { fired.Store(true) })
		assert.NoError(t, err)
		assert.NoError(t, loop.CancelTimer(id))
		assert.ErrorIs(t, loop.CancelTimer(id), ErrTimerNotFound)
		_, _ = loop.ScheduleTimer(40*time.Millisecond, func() { close(done) })
	}))
	waitClosed(t, done)
	assert.False(t, fired.Load())
}

func TestLoop_CancelTimerExpiredInSameTick(t *testing.T) {
	loop := startLoop(t)
	var (
		rec  recorder
		done = make(chan struct{})
	)
	require.NoError(t, loop.Submit(func() {
		var second TimerID
		_, err := loop.ScheduleTimer(5*time.Millisecond, func() {
			rec.add(`first`)
			assert.NoError(t, loop.CancelTimer(second))
		})
		require.NoError(t, err)
		second, err = loop.ScheduleTimer(5*time.Millisecond, func() { rec.add(`second`) })
		require.NoError(t, err)
		_, err = loop.ScheduleTimer(30*time.Millisecond, func() { close(done) })
		require.NoError(t, err)
		// both timers expire before the loop next checks them
		time.Sleep(20 * time.Millisecond)
	}))
	waitClosed(t, done)
	assert.Equal(t, []any{`first`}, rec.get())
}

func TestLoop_CancelTimerAfterRun(t *testing.T) {
	loop := startLoop(t)
	ran := make(chan TimerID, 1)
	require.NoError(t, loop.Submit(func() {
		var id TimerID
		id, _ = loop.ScheduleTimer(0, func() { ran <- id })
	}))
	var id TimerID
	select {
	case id = <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("timer did not run")
	}
	assert.ErrorIs(t, loop.CancelTimer(id), ErrTimerNotFound)
}

func TestLoop_CancelTimerUnknown(t *testing.T) {
	loop, err := New()
	require.NoError(t, err)
	assert.ErrorIs(t, loop.CancelTimer(12345), ErrTimerNotFound)
}

func TestLoop_IntervalCanceledFromCallback(t *testing.T) {
	loop := startLoop(t)
	var count atomic.Int32
	done := make(chan struct{})
	require.NoError(t, loop.Submit(func() {
		var id TimerID
		id, _ = loop.ScheduleInterval(5*time.Millisecond, func() {
			if count.Add(1) == 3 {
				assert.NoError(t, loop.CancelTimer(id))
				close(done)
			}
		})
	}))
	waitClosed(t, done)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(3), count.Load())
}

// ===============================================
// Panics and logging
// ===============================================

func TestLoop_PanicRecoveredAndLogged(t *testing.T) {
	var (
		buf    bytes.Buffer
		bufMu  sync.Mutex
		panics = make(chan PanicError, 1)
	)
	logger := NewLogger(writerFunc(func(p []byte) (int, error) {
		bufMu.Lock()
		defer bufMu.Unlock()
		return buf.Write(p)
	}), logiface.LevelInformational)
	loop := startLoop(t, WithLogger(logger), WithPanicHandler(func(err PanicError) { panics <- err }))

	done := make(chan struct{})
	require.NoError(t, loop.Submit(func() { panic(errors.New("boom")) }))
	require.NoError(t, loop.Submit(func() { close(done) }))
	waitClosed(t, done)

	select {
	case err := <-panics:
		assert.EqualError(t, errors.Unwrap(err), "boom")
	case <-time.After(5 * time.Second):
		t.Fatal("panic handler not called")
	}

	bufMu.Lock()
	defer bufMu.Unlock()
	assert.Contains(t, buf.String(), `eventloop: task panicked`)
	assert.Contains(t, buf.String(), `boom`)
}

func TestResolveLoopOptions(t *testing.T) {
	cfg, err := resolveLoopOptions([]LoopOption{nil, WithTickBudget(-1)})
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.tickBudget)
	assert.Nil(t, cfg.logger)

	logger := logiface.New[logiface.Event](logiface.WithWriter[logiface.Event](logiface.NewWriterFunc(func(event logiface.Event) error { return nil })))
	cfg, err = resolveLoopOptions([]LoopOption{WithTickBudget(3), WithLogger(logger)})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.tickBudget)
	assert.Same(t, logger, cfg.logger)
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
