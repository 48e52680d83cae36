// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"errors"
	"time"

	"github.com/joeycumines/go-classkit/value"
)

// Delay calls fn once, with the given receiver and arguments, after delay.
func Delay(s Scheduler, delay time.Duration, fn *value.Func, this any, args ...any) (TimerID, error) {
	if fn == nil {
		return 0, errNilCallback
	}
	return s.ScheduleTimer(delay, func() { fn.Call(this, args...) })
}

// Periodical calls fn every interval, with the given receiver and arguments,
// until the returned timer is canceled.
func Periodical(s Scheduler, interval time.Duration, fn *value.Func, this any, args ...any) (TimerID, error) {
	if fn == nil {
		return 0, errNilCallback
	}
	return s.ScheduleInterval(interval, func() { fn.Call(this, args...) })
}

// Clear cancels a timer started by Delay or Periodical (or any other
// Scheduler method), ignoring unknown ids. It always returns the zero
// TimerID, so callers may write `id = eventloop.Clear(s, id)`.
func Clear(s Scheduler, id TimerID) TimerID {
	if id != 0 {
		if err := s.CancelTimer(id); err != nil && !errors.Is(err, ErrTimerNotFound) {
			return id
		}
	}
	return 0
}
