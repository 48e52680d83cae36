// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

// Scheduler is the timer collaborator consumed by the rest of classkit.
// [Loop] is the canonical implementation.
//
// All callbacks run on a single goroutine, one at a time. Implementations
// must never invoke a callback synchronously from within the scheduling call.
type Scheduler interface {
	// ScheduleTimer runs fn once, after at least delay.
	ScheduleTimer(delay time.Duration, fn func()) (TimerID, error)

	// ScheduleInterval runs fn every interval, until canceled.
	ScheduleInterval(interval time.Duration, fn func()) (TimerID, error)

	// CancelTimer prevents a pending timer from firing (again).
	CancelTimer(id TimerID) error

	// Submit posts fn as a continuation, to run after the current task.
	Submit(fn func()) error

	// ScheduleMicrotask runs fn after the current task, before any other
	// submitted task or timer.
	ScheduleMicrotask(fn func()) error
}

// Loop is a single-goroutine, cooperative event loop, running submitted
// tasks, timers, and microtasks.
//
// Task priority ordering within each tick:
//  1. Expired timers (earliest deadline first, then scheduling order)
//  2. Submitted tasks (FIFO, bounded by the tick budget)
//  3. Microtasks, drained after every timer or task
//
// Thread Safety:
// All scheduling methods are safe to call from any goroutine.
type Loop struct {
	logger     *logiface.Logger[logiface.Event]
	onPanic    func(err PanicError)
	wake       chan struct{}
	done       chan struct{}
	stop       chan struct{}
	timerIndex map[TimerID]*timer
	tasks      []func()
	microtasks []func()
	timers     timerHeap
	state      loopState
	nextTimer  TimerID
	tickBudget int
	mu         sync.Mutex
	stopOnce   sync.Once
	abandon    bool // guarded by mu, set by Close
}

var _ Scheduler = (*Loop)(nil)

// New creates a new Loop. Run must be called to start processing.
func New(opts ...LoopOption) (*Loop, error) {
	cfg, err := resolveLoopOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Loop{
		logger:     cfg.logger,
		onPanic:    cfg.onPanic,
		tickBudget: cfg.tickBudget,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		stop:       make(chan struct{}),
		timerIndex: make(map[TimerID]*timer),
	}, nil
}

// State returns the current LoopState.
func (l *Loop) State() LoopState {
	return l.state.Load()
}

// Done is closed once the loop has terminated.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run processes tasks on the calling goroutine, until Shutdown, Close, or
// ctx is canceled. It returns ctx.Err() if ctx caused the exit.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.TryTransition(StateAwake, StateRunning) {
		if l.state.CanAcceptWork() {
			return ErrLoopAlreadyRunning
		}
		return ErrLoopTerminated
	}

	defer func() {
		l.state.Store(StateTerminated)
		l.mu.Lock()
		l.tasks = nil
		l.microtasks = nil
		l.timers = nil
		clear(l.timerIndex)
		l.mu.Unlock()
		close(l.done)
	}()

	var wait *time.Timer
	defer func() {
		if wait != nil {
			wait.Stop()
		}
	}()

	for {
		if l.abandoned() {
			return nil
		}

		l.tick()

		l.mu.Lock()
		pending := len(l.tasks) != 0 || len(l.microtasks) != 0
		next := l.timers.peek()
		l.mu.Unlock()

		if l.state.Load() == StateTerminating {
			if !pending {
				return nil
			}
			continue
		}

		if pending {
			continue
		}

		var timerC <-chan time.Time
		if next != nil {
			d := time.Until(next.when)
			if d <= 0 {
				continue
			}
			if wait == nil {
				wait = time.NewTimer(d)
			} else {
				wait.Reset(d)
			}
			timerC = wait.C
		}

		l.state.TryTransition(StateRunning, StateSleeping)

		select {
		case <-ctx.Done():
			l.state.TransitionAny([]LoopState{StateRunning, StateSleeping}, StateTerminating)
			return ctx.Err()
		case <-l.wake:
		case <-timerC:
		case <-l.stop:
		}

		if wait != nil && timerC != nil && !wait.Stop() {
			select {
			case <-wait.C:
			default:
			}
		}

		l.state.TryTransition(StateSleeping, StateRunning)
	}
}

// Shutdown stops accepting new work, runs already submitted tasks and
// microtasks, then terminates the loop. Timers do not run once Shutdown
// has been called, including those that expire while tasks drain. It blocks
// until the loop has terminated, or ctx is done.
//
// WARNING: Calling Shutdown from the loop goroutine will block until ctx is
// done. Use Close, or `go loop.Shutdown(ctx)`, from within tasks.
func (l *Loop) Shutdown(ctx context.Context) error {
	if l.state.TryTransition(StateAwake, StateTerminated) {
		l.stopOnce.Do(func() { close(l.stop) })
		close(l.done)
		return nil
	}
	if !l.state.TransitionAny([]LoopState{StateRunning, StateSleeping}, StateTerminating) &&
		l.state.Load() == StateTerminated {
		return ErrLoopTerminated
	}
	l.stopOnce.Do(func() { close(l.stop) })
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close terminates the loop without running queued work. Unlike Shutdown it
// does not wait for the loop goroutine, if called from it.
func (l *Loop) Close() error {
	l.mu.Lock()
	l.abandon = true
	l.mu.Unlock()
	if l.state.TryTransition(StateAwake, StateTerminated) {
		l.stopOnce.Do(func() { close(l.stop) })
		close(l.done)
		return nil
	}
	if !l.state.TransitionAny([]LoopState{StateRunning, StateSleeping}, StateTerminating) &&
		l.state.Load() == StateTerminated {
		return ErrLoopTerminated
	}
	l.stopOnce.Do(func() { close(l.stop) })
	return nil
}

// Submit queues fn to run on the loop goroutine, after the current task.
func (l *Loop) Submit(fn func()) error {
	if fn == nil {
		return errNilCallback
	}
	l.mu.Lock()
	if !l.state.CanAcceptWork() {
		l.mu.Unlock()
		return ErrLoopTerminated
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.doWakeup()
	return nil
}

// ScheduleMicrotask queues fn to run after the current task, ahead of
// submitted tasks and timers.
func (l *Loop) ScheduleMicrotask(fn func()) error {
	if fn == nil {
		return errNilCallback
	}
	l.mu.Lock()
	if !l.state.CanAcceptWork() {
		l.mu.Unlock()
		return ErrLoopTerminated
	}
	l.microtasks = append(l.microtasks, fn)
	l.mu.Unlock()
	l.doWakeup()
	return nil
}

// ScheduleTimer runs fn once, after at least delay. A delay <= 0 runs fn on
// the next tick.
func (l *Loop) ScheduleTimer(delay time.Duration, fn func()) (TimerID, error) {
	return l.addTimer(delay, 0, fn)
}

// ScheduleInterval runs fn every interval, until canceled via CancelTimer.
// Intervals are measured from the end of the previous run. An interval <= 0
// is treated as 1ms.
func (l *Loop) ScheduleInterval(interval time.Duration, fn func()) (TimerID, error) {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return l.addTimer(interval, interval, fn)
}

// CancelTimer cancels a pending timer, or stops a repeating one. It is safe
// to call from within the timer's own callback.
func (l *Loop) CancelTimer(id TimerID) error {
	l.mu.Lock()
	t, ok := l.timerIndex[id]
	if ok {
		delete(l.timerIndex, id)
		t.canceled.Store(true)
		if t.index >= 0 {
			heap.Remove(&l.timers, t.index)
		}
	}
	l.mu.Unlock()
	if !ok {
		return ErrTimerNotFound
	}
	l.logger.Trace().
		Uint64("timer_id", uint64(id)).
		Log("eventloop: timer canceled")
	return nil
}

func (l *Loop) addTimer(delay, interval time.Duration, fn func()) (TimerID, error) {
	if fn == nil {
		return 0, errNilCallback
	}
	if delay < 0 {
		delay = 0
	}
	l.mu.Lock()
	if !l.state.CanAcceptWork() {
		l.mu.Unlock()
		return 0, ErrLoopTerminated
	}
	l.nextTimer++
	t := &timer{
		id:       l.nextTimer,
		when:     time.Now().Add(delay),
		fn:       fn,
		interval: interval,
	}
	heap.Push(&l.timers, t)
	l.timerIndex[t.id] = t
	l.mu.Unlock()
	l.doWakeup()
	l.logger.Trace().
		Uint64("timer_id", uint64(t.id)).
		Dur("delay", delay).
		Bool("repeating", interval > 0).
		Log("eventloop: timer scheduled")
	return t.id, nil
}

func (l *Loop) doWakeup() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) abandoned() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.abandon
}

// tick runs one round of expired timers then submitted tasks. Timers are
// skipped once Shutdown has begun.
func (l *Loop) tick() {
	if l.state.Load() != StateTerminating {
		l.runTimers()
	}
	l.runTasks()
	l.drainMicrotasks()
}

func (l *Loop) runTimers() {
	now := time.Now()
	var expired []*timer
	l.mu.Lock()
	for {
		t := l.timers.peek()
		if t == nil || t.when.After(now) {
			break
		}
		heap.Pop(&l.timers)
		expired = append(expired, t)
	}
	l.mu.Unlock()

	// one-shot timers stay indexed until they run, so an earlier callback in
	// this batch may still cancel them
	for _, t := range expired {
		l.mu.Lock()
		if l.abandon || l.state.Load() == StateTerminating {
			l.mu.Unlock()
			return
		}
		if t.canceled.Load() {
			l.mu.Unlock()
			continue
		}
		if t.interval <= 0 {
			delete(l.timerIndex, t.id)
		}
		l.mu.Unlock()

		l.safeExecute(t.fn)
		l.drainMicrotasks()
		if t.interval > 0 {
			l.mu.Lock()
			if !t.canceled.Load() && l.state.CanAcceptWork() {
				t.when = time.Now().Add(t.interval)
				heap.Push(&l.timers, t)
			}
			l.mu.Unlock()
		}
	}
}

func (l *Loop) runTasks() {
	for i := 0; i < l.tickBudget; i++ {
		l.mu.Lock()
		if l.abandon || len(l.tasks) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		l.safeExecute(fn)
		l.drainMicrotasks()
	}
}

func (l *Loop) drainMicrotasks() {
	for {
		l.mu.Lock()
		if l.abandon || len(l.microtasks) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.microtasks[0]
		l.microtasks[0] = nil
		l.microtasks = l.microtasks[1:]
		l.mu.Unlock()

		l.safeExecute(fn)
	}
}

// safeExecute runs fn, recovering and logging any panic.
func (l *Loop) safeExecute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := PanicError{Value: r}
			l.logger.Err().
				Err(err).
				Str("panic", fmt.Sprint(r)).
				Log("eventloop: task panicked")
			if l.onPanic != nil {
				l.onPanic(err)
			}
		}
	}()
	fn()
}
