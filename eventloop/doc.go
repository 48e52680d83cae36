// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package eventloop provides the cooperative, single-goroutine event loop
// that drives classkit's asynchronous model: one-shot and repeating timers,
// submitted continuations, and microtasks.
//
// # Architecture
//
// The [Scheduler] interface is the timer collaborator consumed by the mixin
// and request packages; [Loop] implements it. Every callback runs on the
// goroutine that called [Loop.Run], one at a time, so state owned by
// callbacks needs no locking.
//
// Task priority ordering within each tick:
//  1. Timer callbacks (earliest deadline first)
//  2. Submitted tasks ([Loop.Submit])
//  3. Microtasks (drained after every timer callback and task)
//
// Panics raised by callbacks are recovered, logged (see [WithLogger] and
// [NewLogger]), and reported to the optional [WithPanicHandler] callback.
//
// # Usage
//
//	loop, err := eventloop.New(
//	    eventloop.WithLogger(eventloop.NewLogger(os.Stderr, logiface.LevelInformational)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	loop.Submit(func() {
//	    loop.ScheduleTimer(100*time.Millisecond, func() {
//	        fmt.Println("Hello after 100ms")
//	        go loop.Shutdown(context.Background())
//	    })
//	})
//
//	if err := loop.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Cancellation
//
// [AbortController] and [AbortSignal] model explicit cancellation of an
// in-flight operation, as used by request exchanges.
package eventloop
