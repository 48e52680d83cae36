// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package mixin

// Chain is a FIFO queue of deferred follow-up tasks.
//
// The queue never drains itself: CallChain runs (exactly) the head task, as a
// continuation posted to the scheduler, and that task is responsible for
// calling CallChain again to advance the queue.
type Chain struct {
	runtime *Runtime
	tasks   []func()
}

// NewChain initializes an empty Chain.
func NewChain(runtime *Runtime) *Chain {
	return &Chain{runtime: runtime}
}

// Chain appends tasks to the queue. Nil tasks are ignored.
func (x *Chain) Chain(tasks ...func()) *Chain {
	for _, task := range tasks {
		if task != nil {
			x.tasks = append(x.tasks, task)
		}
	}
	return x
}

// CallChain removes the head task and posts it to the scheduler, so it runs
// after the caller's task returns. It is a no-op if the queue is empty.
//
// If the task cannot be posted, it is put back, and the error is returned.
func (x *Chain) CallChain() error {
	if len(x.tasks) == 0 {
		return nil
	}
	s := x.runtime.scheduler()
	if s == nil {
		return ErrNoScheduler
	}
	task := x.tasks[0]
	x.tasks[0] = nil
	x.tasks = x.tasks[1:]
	if err := s.Submit(task); err != nil {
		x.tasks = append([]func(){task}, x.tasks...)
		x.runtime.logger().Warning().
			Err(err).
			Log(`mixin: failed to post chain continuation`)
		return err
	}
	return nil
}

// ClearChain drops every task not yet dequeued. Tasks already posted by
// CallChain still run.
func (x *Chain) ClearChain() *Chain {
	x.tasks = nil
	return x
}

// Len returns the number of queued tasks.
func (x *Chain) Len() int {
	return len(x.tasks)
}
