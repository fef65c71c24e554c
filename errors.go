// Package reactorcore provides the taxonomy of errors the scheduler can
// raise, following spec.md §7. Each type carries the structured fields a
// diagnostic needs (tag, offending keys); the types that wrap a cause
// (PoisonedLockError, ReactionPanickedError, SchedError) implement Unwrap
// so the family composes with [errors.Is] and [errors.As].
package reactorcore

import (
	"errors"
	"fmt"
)

// GraphCycleError reports a cycle in the precedence graph, detected during
// level assignment before the scheduler starts running (spec.md §7,
// fatal). It carries, sorted by key, every reaction Kahn's algorithm could
// not assign a level to: those on a cycle and those downstream of one,
// recovering the original
// source's diagnostic quality (SPEC_FULL.md §3 "Cycle detection
// diagnostics").
type GraphCycleError struct {
	Cycle []ReactionKey
}

func (e *GraphCycleError) Error() string {
	return fmt.Sprintf("reactorcore: precedence graph has a cycle through reactions %v", e.Cycle)
}

// DoubleSetError reports that a port was written twice within one tag
// (spec.md §7, fatal within the tag).
type DoubleSetError struct {
	Port string
	Key  PortKey
}

func (e *DoubleSetError) Error() string {
	return fmt.Sprintf("reactorcore: port %q (key %d) set twice in the same tag", e.Port, e.Key)
}

// UndeclaredAccessError reports a reaction touching a port or action
// outside its declared trigger/use/effect/action sets (spec.md §7, fatal).
type UndeclaredAccessError struct {
	Reaction string
	Resource string
}

func (e *UndeclaredAccessError) Error() string {
	return fmt.Sprintf("reactorcore: reaction %q accessed undeclared resource %q", e.Reaction, e.Resource)
}

// PastTagError reports a scheduling call that would land at or before the
// current tag without a legitimate microstep bump (spec.md §7, fatal).
type PastTagError struct {
	Current  Tag
	Computed Tag
}

func (e *PastTagError) Error() string {
	return fmt.Sprintf("reactorcore: scheduled tag %s does not advance past current tag %s", e.Computed, e.Current)
}

// AsyncAfterShutdownError reports an asynchronous event posted after the
// scheduler reached Done. Non-fatal: the event is dropped and this is
// logged at debug level by the scheduler (spec.md §7).
type AsyncAfterShutdownError struct {
	Action ActionKey
}

func (e *AsyncAfterShutdownError) Error() string {
	return fmt.Sprintf("reactorcore: async schedule for action %d dropped, scheduler already shut down", e.Action)
}

// PoisonedLockError reports a worker thread panicking while holding a
// physical action's lock (spec.md §7, fatal: the scheduler shuts down).
type PoisonedLockError struct {
	Action ActionKey
	Cause  error
}

func (e *PoisonedLockError) Error() string {
	return fmt.Sprintf("reactorcore: lock for physical action %d poisoned: %v", e.Action, e.Cause)
}

func (e *PoisonedLockError) Unwrap() error { return e.Cause }

// PacingMissError reports the physical clock already past the next tag
// when the scheduler woke up to pace it. Non-fatal: recorded as lag and
// execution proceeds immediately (spec.md §7).
type PacingMissError struct {
	Tag Tag
	Lag int64 // nanoseconds the wall clock had already overshot the tag by
}

func (e *PacingMissError) Error() string {
	return fmt.Sprintf("reactorcore: pacing miss at tag %s, lagged by %dns", e.Tag, e.Lag)
}

// ReactionPanickedError wraps a panic recovered from a running reaction
// body. All reaction panics are caught at the level boundary and surfaced
// this way; they are fatal for the program (spec.md §7).
type ReactionPanickedError struct {
	Reaction string
	Tag      Tag
	Value    any
}

func (e *ReactionPanickedError) Error() string {
	return fmt.Sprintf("reactorcore: reaction %q panicked at tag %s: %v", e.Reaction, e.Tag, e.Value)
}

// Unwrap returns the underlying error if the panic value is an error,
// enabling errors.Is/errors.As through the cause chain.
func (e *ReactionPanickedError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// SchedError aggregates zero or more causes raised during scheduler-
// internal invariant checks (distinct from a single reaction's panic).
// It is the one typed error that propagates out of the scheduler's Run
// method (spec.md §7).
type SchedError struct {
	Errors []error
}

func (e *SchedError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("reactorcore: scheduler error: %v", e.Errors[0])
	}
	return fmt.Sprintf("reactorcore: scheduler error (%d causes): %v", len(e.Errors), e.Errors)
}

// Unwrap returns the aggregated causes for multi-error unwrapping
// (errors.Is/errors.As check against all of them).
func (e *SchedError) Unwrap() []error { return e.Errors }

// Is reports target as matching any SchedError, regardless of contents.
func (e *SchedError) Is(target error) bool {
	var t *SchedError
	return errors.As(target, &t)
}
