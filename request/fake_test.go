package request

import (
	"errors"
	"time"

	"github.com/joeycumines/go-classkit/eventloop"
)

// fakeScheduler is a deterministic eventloop.Scheduler, run manually.
type fakeScheduler struct {
	timers map[eventloop.TimerID]fakeTimer
	tasks  []func()
	order  []eventloop.TimerID
	next   eventloop.TimerID
	// submitErr, if set, fails every Submit
	submitErr error
}

type fakeTimer struct {
	fn    func()
	delay time.Duration
}

var _ eventloop.Scheduler = (*fakeScheduler)(nil)

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{timers: make(map[eventloop.TimerID]fakeTimer)}
}

func (f *fakeScheduler) ScheduleTimer(delay time.Duration, fn func()) (eventloop.TimerID, error) {
	f.next++
	f.timers[f.next] = fakeTimer{fn: fn, delay: delay}
	f.order = append(f.order, f.next)
	return f.next, nil
}

func (f *fakeScheduler) ScheduleInterval(time.Duration, func()) (eventloop.TimerID, error) {
	return 0, errors.New(`fake: intervals unsupported`)
}

func (f *fakeScheduler) CancelTimer(id eventloop.TimerID) error {
	if _, ok := f.timers[id]; !ok {
		return eventloop.ErrTimerNotFound
	}
	delete(f.timers, id)
	return nil
}

func (f *fakeScheduler) Submit(fn func()) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.tasks = append(f.tasks, fn)
	return nil
}

func (f *fakeScheduler) ScheduleMicrotask(fn func()) error {
	return f.Submit(fn)
}

// runTasks runs submitted tasks, including any they submit.
func (f *fakeScheduler) runTasks() (n int) {
	for len(f.tasks) != 0 {
		task := f.tasks[0]
		f.tasks = f.tasks[1:]
		task()
		n++
	}
	return n
}

// fireTimers fires every pending timer, in scheduling order, returning their
// delays.
func (f *fakeScheduler) fireTimers() (delays []time.Duration) {
	order := f.order
	f.order = nil
	for _, id := range order {
		t, ok := f.timers[id]
		if !ok {
			continue
		}
		delete(f.timers, id)
		delays = append(delays, t.delay)
		t.fn()
	}
	return delays
}

// fakeTransport records calls, and holds the done callback of the last
// Send, for the test to complete.
type fakeTransport struct {
	openErr error
	sendErr error
	// sync, if set, completes with this, inline
	sync    *Completion
	done    func(c Completion)
	headers map[string]string
	method  string
	url     string
	body    string
	opens   int
	sends   int
	aborts  int
	async   bool
}

var _ Transport = (*fakeTransport)(nil)

func (f *fakeTransport) Open(method, url string, async bool) error {
	f.opens++
	if f.openErr != nil {
		return f.openErr
	}
	f.method, f.url, f.async = method, url, async
	f.headers = make(map[string]string)
	return nil
}

func (f *fakeTransport) SetHeader(name, value string) {
	f.headers[name] = value
}

func (f *fakeTransport) Send(body string, done func(c Completion)) error {
	f.sends++
	if f.sendErr != nil {
		return f.sendErr
	}
	f.body = body
	if f.sync != nil {
		done(*f.sync)
		return nil
	}
	f.done = done
	return nil
}

func (f *fakeTransport) Abort() {
	f.aborts++
}

// complete delivers c via the last done callback.
func (f *fakeTransport) complete(c Completion) {
	f.done(c)
}

// fakeTransports is a TransportFactory recording every handle created.
type fakeTransports struct {
	// setup is applied to each new handle, if non-nil
	setup   func(t *fakeTransport)
	handles []*fakeTransport
}

func (f *fakeTransports) factory() Transport {
	t := new(fakeTransport)
	if f.setup != nil {
		f.setup(t)
	}
	f.handles = append(f.handles, t)
	return t
}

func (f *fakeTransports) last() *fakeTransport {
	return f.handles[len(f.handles)-1]
}

// harness wires a Request to fakes.
type harness struct {
	scheduler  *fakeScheduler
	transports *fakeTransports
	config     *Config
}

func newHarness() *harness {
	h := harness{
		scheduler:  newFakeScheduler(),
		transports: new(fakeTransports),
	}
	h.config = &Config{
		Scheduler: h.scheduler,
		Transport: h.transports.factory,
	}
	return &h
}
