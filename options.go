// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactorcore

import (
	"time"

	"github.com/joeycumines/logiface"
)

// schedulerOptions holds configuration for Scheduler construction, per
// spec.md §4.9/§6's enumerated configuration surface.
type schedulerOptions struct {
	fastForward bool
	keepAlive   bool
	timeout     time.Duration
	hasTimeout  bool
	logger      *logiface.Logger[*schedEvent]
}

// SchedulerOption configures a Scheduler instance, following the teacher
// event loop's functional-options pattern (options.go: LoopOption /
// loopOptionImpl / resolveLoopOptions).
type SchedulerOption interface {
	applyScheduler(*schedulerOptions) error
}

type schedulerOptionImpl struct {
	applyFunc func(*schedulerOptions) error
}

func (o *schedulerOptionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applyFunc(opts)
}

// WithFastForward sets fast_forward: when true, logical time advances as
// fast as the CPU can and physical pacing is skipped (spec.md §4.9).
func WithFastForward(enabled bool) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.fastForward = enabled
		return nil
	}}
}

// WithKeepAlive sets keep_alive: when true the loop does not auto-exit
// when the event queue empties; it waits on the async inbox until
// shutdown is signalled or timeout elapses (spec.md §4.9).
func WithKeepAlive(enabled bool) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.keepAlive = enabled
		return nil
	}}
}

// WithTimeout sets timeout: the scheduler enqueues a terminal shutdown
// event at ZERO.delay(timeout) during startup (spec.md §4.9).
func WithTimeout(d time.Duration) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.timeout = d
		opts.hasTimeout = true
		return nil
	}}
}

// WithLogger attaches a structured logger (github.com/joeycumines/logiface)
// for tag-advance, PacingMiss, AsyncAfterShutdown, and ReactionPanicked
// diagnostics (SPEC_FULL.md §1.1). When omitted, the scheduler logs
// nothing, mirroring the teacher's DefaultLogger/NoOpLogger duality.
func WithLogger(logger *logiface.Logger[*schedEvent]) SchedulerOption {
	return &schedulerOptionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveSchedulerOptions applies SchedulerOption instances to a fresh
// schedulerOptions, nil options are skipped gracefully (teacher
// resolveLoopOptions convention).
func resolveSchedulerOptions(opts []SchedulerOption) (*schedulerOptions, error) {
	cfg := &schedulerOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
