// Package reactorcore is the execution core of a deterministic reactor
// runtime: a scheduler that drives a fixed, precompiled graph of reactors,
// ports, actions, and reactions through superdense logical time, producing
// repeatable results even when physical actions arrive asynchronously from
// foreign threads.
//
// # Architecture
//
// A [Scheduler] consumes an immutable [Env] (the key-indexed tables of
// reactors, ports, and actions) and [ReactionGraph] (the level-assigned
// precedence graph, trigger maps, and startup/shutdown reaction sets),
// produced by an out-of-scope builder layer. [Scheduler.Run] then drives
// the Init -> Running -> Draining -> Done state machine: pop the
// minimum-tag event, advance logical time, run every ready reaction in
// increasing level order via a per-reaction [Context], apply port writes
// and newly scheduled events, clean up port state at the tag boundary, and
// repeat.
//
// # Superdense time
//
// Logical time is a [Tag]: an (offset, microstep) pair. [Tag.Delay] with a
// zero duration bumps the microstep only — this is what lets a zero-delay
// logical action reschedule itself without ever producing an unchanged
// tag. [Tag.Pre] is the inverse.
//
// # Concurrency
//
// The scheduler runs on a single controller thread and invokes the
// reactions of one precedence level one after another, in ascending key
// order; their port writes are buffered and applied only after the whole
// level has run, so no reaction observes a write made at its own level.
// Physical actions are scheduled from foreign
// threads exclusively through [SendContext], whose
// [ScheduleActionAsync]/[SendContext.ScheduleShutdown] never block the
// controller thread.
//
// # Usage
//
//	env := reactorcore.NewEnv(reactors, ports, actions, graph)
//	sched, err := reactorcore.NewScheduler(env,
//	    reactorcore.WithTimeout(3*time.Millisecond),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := sched.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error taxonomy
//
// The package provides the error family described in its spec's error
// handling design: [GraphCycleError], [DoubleSetError],
// [UndeclaredAccessError], [PastTagError], [AsyncAfterShutdownError],
// [PoisonedLockError], [PacingMissError], [ReactionPanickedError], and the
// aggregating [SchedError] returned from [Scheduler.Run]. All implement
// [error] and, where they wrap a cause, [errors.Unwrap].
package reactorcore
