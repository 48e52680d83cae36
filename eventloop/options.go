// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"github.com/joeycumines/logiface"
)

// loopOptions holds configuration options for Loop creation.
type loopOptions struct {
	logger     *logiface.Logger[logiface.Event]
	onPanic    func(err PanicError)
	tickBudget int
}

// --- Loop Options ---

// LoopOption configures a Loop instance.
type LoopOption interface {
	applyLoop(*loopOptions) error
}

// loopOptionImpl implements LoopOption.
type loopOptionImpl struct {
	applyLoopFunc func(*loopOptions) error
}

func (l *loopOptionImpl) applyLoop(opts *loopOptions) error {
	return l.applyLoopFunc(opts)
}

// WithLogger sets the structured logger, used for panics recovered from
// tasks, and timer lifecycle at trace level. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithPanicHandler registers a callback, invoked on the loop goroutine after
// a task panic has been recovered (and logged).
func WithPanicHandler(fn func(err PanicError)) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		opts.onPanic = fn
		return nil
	}}
}

// WithTickBudget bounds the number of submitted tasks run per tick, before
// expired timers are checked again. Values <= 0 select the default (1024).
func WithTickBudget(n int) LoopOption {
	return &loopOptionImpl{func(opts *loopOptions) error {
		if n > 0 {
			opts.tickBudget = n
		}
		return nil
	}}
}

// resolveLoopOptions applies LoopOption instances to loopOptions.
func resolveLoopOptions(opts []LoopOption) (*loopOptions, error) {
	cfg := &loopOptions{
		tickBudget: 1024,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyLoop(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
