package mixin

import (
	"time"

	"github.com/joeycumines/go-classkit/eventloop"
)

// fakeScheduler is a deterministic eventloop.Scheduler, run manually.
type fakeScheduler struct {
	err    error
	timers map[eventloop.TimerID]*fakeTimer
	tasks  []func()
	order  []eventloop.TimerID
	next   eventloop.TimerID
}

type fakeTimer struct {
	fn       func()
	delay    time.Duration
	interval bool
}

var _ eventloop.Scheduler = (*fakeScheduler)(nil)

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{timers: make(map[eventloop.TimerID]*fakeTimer)}
}

func (f *fakeScheduler) ScheduleTimer(delay time.Duration, fn func()) (eventloop.TimerID, error) {
	return f.add(delay, fn, false)
}

func (f *fakeScheduler) ScheduleInterval(interval time.Duration, fn func()) (eventloop.TimerID, error) {
	return f.add(interval, fn, true)
}

func (f *fakeScheduler) add(delay time.Duration, fn func(), interval bool) (eventloop.TimerID, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	f.timers[f.next] = &fakeTimer{fn: fn, delay: delay, interval: interval}
	f.order = append(f.order, f.next)
	return f.next, nil
}

func (f *fakeScheduler) CancelTimer(id eventloop.TimerID) error {
	if _, ok := f.timers[id]; !ok {
		return eventloop.ErrTimerNotFound
	}
	delete(f.timers, id)
	return nil
}

func (f *fakeScheduler) Submit(fn func()) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, fn)
	return nil
}

func (f *fakeScheduler) ScheduleMicrotask(fn func()) error {
	return f.Submit(fn)
}

// runTasks runs submitted tasks, including any they submit, returning the
// number run.
func (f *fakeScheduler) runTasks() (n int) {
	for len(f.tasks) != 0 {
		task := f.tasks[0]
		f.tasks = f.tasks[1:]
		task()
		n++
	}
	return n
}

// fireTimers fires every pending timer once, in scheduling order.
func (f *fakeScheduler) fireTimers() (n int) {
	order := f.order
	f.order = nil
	for _, id := range order {
		t, ok := f.timers[id]
		if !ok {
			continue
		}
		if t.interval {
			f.order = append(f.order, id)
		} else {
			delete(f.timers, id)
		}
		t.fn()
		n++
	}
	return n
}

// testHost exposes Events and Options, like a class instance would.
type testHost struct {
	events  *Events
	options *Options
}

func (h *testHost) Events() *Events { return h.events }

func (h *testHost) Options() *Options { return h.options }
