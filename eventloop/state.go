// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloop

import (
	"sync/atomic"
)

// LoopState represents the current state of the event loop.
//
// State Machine:
//
//	StateAwake → StateRunning              [Run()]
//	StateRunning → StateSleeping           [waiting for work, via CAS]
//	StateSleeping → StateRunning           [woken, via CAS]
//	StateRunning|StateSleeping → StateTerminating [Shutdown()/Close()]
//	StateAwake → StateTerminated           [Shutdown()/Close() before Run()]
//	StateTerminating → StateTerminated     [Run() returns]
//	StateTerminated → (terminal)
type LoopState uint64

const (
	// StateAwake indicates the loop has been created but not started.
	StateAwake LoopState = iota
	// StateRunning indicates the loop is actively processing tasks.
	StateRunning
	// StateSleeping indicates the loop is blocked waiting for tasks or timers.
	StateSleeping
	// StateTerminating indicates shutdown has been requested but not completed.
	StateTerminating
	// StateTerminated indicates the loop has stopped.
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s LoopState) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateSleeping:
		return "Sleeping"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// loopState is the atomic holder for LoopState.
type loopState struct {
	v atomic.Uint64
}

func (s *loopState) Load() LoopState {
	return LoopState(s.v.Load())
}

// Store is only valid for irreversible states (Terminated).
func (s *loopState) Store(state LoopState) {
	s.v.Store(uint64(state))
}

func (s *loopState) TryTransition(from, to LoopState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}

// TransitionAny attempts to transition from any of validFrom to the target.
func (s *loopState) TransitionAny(validFrom []LoopState, to LoopState) bool {
	for _, from := range validFrom {
		if s.v.CompareAndSwap(uint64(from), uint64(to)) {
			return true
		}
	}
	return false
}

// CanAcceptWork returns true if the loop can accept new work.
func (s *loopState) CanAcceptWork() bool {
	state := s.Load()
	return state == StateAwake || state == StateRunning || state == StateSleeping
}
