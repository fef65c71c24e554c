package reactorcore

import (
	"context"
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
)

// Scheduler drives a reactor graph's Env from startup through steady-state
// to shutdown, enforcing tag order and level order (spec.md §4.9, C11).
// It is built from the teacher event loop's controller-thread design
// (loop.go in the teacher repo): a single goroutine owns the event queue
// and ready queue, foreign threads interact only through SendContext's
// async inbox.
type Scheduler struct {
	env  *Env
	opts *schedulerOptions

	state     *FastState
	keepAlive *KeepAlive
	origin    time.Time
	nowFn     func() time.Time

	queue       *EventQueue
	send        *sendSource
	shutdownRan bool
	lastTag     Tag

	numReactions int
}

// NewScheduler constructs a Scheduler for env, applying opts (spec.md §6
// "Configuration surface").
func NewScheduler(env *Env, opts ...SchedulerOption) (*Scheduler, error) {
	cfg, err := resolveSchedulerOptions(opts)
	if err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = NewDiscardLogger()
	}
	s := &Scheduler{
		env:          env,
		opts:         cfg,
		state:        NewFastState(),
		keepAlive:    NewKeepAlive(),
		nowFn:        time.Now,
		queue:        NewEventQueue(),
		numReactions: len(env.Graph.Reactions),
	}
	s.send = newSendSource(time.Time{}, s.keepAlive)
	s.send.nowFn = s.nowFn
	s.send.onDrop = func(err error) {
		s.log(logiface.LevelDebug).Err(err).Log("async event dropped after shutdown")
	}
	return s, nil
}

func (s *Scheduler) log(level logiface.Level) *logiface.Builder[*schedEvent] {
	return s.opts.logger.Build(level)
}

// newReactionSet builds an empty set sized for this scheduler's graph.
func (s *Scheduler) newReactionSet() *ReactionSet {
	return NewReactionSet(s.env.Graph.MaxLevel, s.numReactions)
}

func (s *Scheduler) reactionSetOf(lrs []levelReaction) *ReactionSet {
	rs := s.newReactionSet()
	for _, lr := range lrs {
		rs.Insert(lr.Level, lr.Key)
	}
	return rs
}

// Run executes the Init -> Running -> Draining -> Done state machine
// (spec.md §4.9). It returns *SchedError wrapping the first fatal cause
// encountered (GraphCycle is instead returned directly from the graph
// builder, long before Run is ever called). Cancelling ctx behaves like
// an immediate SendContext.ScheduleShutdown(0): the scheduler finishes
// the current tag, drains, and returns.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.state.TryTransition(StateInit, StateRunning) {
		return &SchedError{Errors: []error{fmt.Errorf("reactorcore: Run called twice")}}
	}

	s.origin = s.nowFn()
	s.send.origin = s.origin

	s.queue.Push(&ScheduledEvent{Tag: ZeroTag, Reactions: s.reactionSetOf(s.env.Graph.StartupReactions)})
	if s.opts.hasTimeout {
		timeoutTag := ZeroTag.Delay(s.opts.timeout)
		s.queue.Push(&ScheduledEvent{Tag: timeoutTag, Reactions: s.reactionSetOf(s.env.Graph.ShutdownReactions), Terminal: true})
	}

	s.log(logiface.LevelDebug).Log("scheduler running")

	if err := s.runLoop(ctx); err != nil {
		s.state.Store(StateDone)
		s.keepAlive.Shutdown()
		return err
	}

	if err := s.drain(); err != nil {
		s.state.Store(StateDone)
		s.keepAlive.Shutdown()
		return err
	}

	s.state.Store(StateDone)
	s.keepAlive.Shutdown()
	s.log(logiface.LevelDebug).Log("scheduler done")
	return nil
}

// runLoop implements the Running state's repeated steps 1-7 (spec.md
// §4.9) until the queue empties without keep_alive, or a terminal event
// executes.
func (s *Scheduler) runLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil // treated as a request to drain and stop, not an error
		}

		for _, e := range s.send.drain() {
			s.queue.Push(e)
		}

		t, ok := s.queue.PeekTag()
		if !ok {
			if !s.opts.keepAlive {
				return nil
			}
			// Wait in bounded slices so that a cancelled ctx is seen at
			// the top of the loop even when no event is ever posted.
			const keepAliveWaitSlice = 50 * time.Millisecond
			s.send.awaitEventOrShutdown(time.Now().Add(keepAliveWaitSlice), true)
			if s.keepAlive.IsShutdown() {
				return nil
			}
			continue
		}

		if !s.opts.fastForward {
			if interrupted := s.pace(t); interrupted {
				continue
			}
		}

		event, ok := s.queue.PopAllAt(t, s.env.Graph.MaxLevel, s.numReactions)
		if !ok {
			continue // not reached: PeekTag just returned t and only this goroutine touches the queue
		}

		if err := s.executeTag(event.Tag, event.Reactions); err != nil {
			return err
		}

		if event.Terminal {
			s.shutdownRan = true
			return nil
		}
	}
}

// pace blocks the controller thread until wall_clock() >= origin + t.offset
// (spec.md §4.9 "Running" step 4, §5 "Suspension points"), unless
// interrupted by a new asynchronous event — in which case it returns true
// so the caller re-merges the inbox and re-peeks before committing to a
// tag. If the wall clock has already passed the deadline, it records a
// *PacingMissError (spec.md §7: non-fatal) and returns immediately.
func (s *Scheduler) pace(t Tag) (interrupted bool) {
	deadline := t.ToWallClock(s.origin)
	now := s.nowFn()
	if !now.Before(deadline) {
		lag := now.Sub(deadline)
		if lag > 0 {
			s.log(logiface.LevelWarning).Err(&PacingMissError{Tag: t, Lag: int64(lag)}).Log("pacing miss")
		}
		return false
	}
	s.send.awaitEventOrShutdown(deadline, true)
	if s.keepAlive.IsShutdown() {
		return false
	}
	return s.send.hasPending()
}

// drain implements the Draining state (spec.md §4.9): if the terminal
// tag's own reaction set did not already include the shutdown reactions,
// run them now at current_tag.delay(0), where current_tag is the last
// tag actually executed by executeTag — not whatever tag (if any) still
// happens to sit at the head of the queue, which for a naturally-drained
// run (no timeout, keep_alive=false) is simply empty.
func (s *Scheduler) drain() error {
	s.state.Store(StateDraining)
	if s.shutdownRan {
		return nil
	}
	tag := s.lastTag.Delay(0)
	return s.executeTag(tag, s.reactionSetOf(s.env.Graph.ShutdownReactions))
}

// executeTag implements spec.md §4.9 "Executing a tag": reactions run in
// increasing level order, with per-level buffered mutations (port writes,
// newly scheduled events) merged back only after every reaction at that
// level has returned.
func (s *Scheduler) executeTag(tag Tag, ready *ReactionSet) error {
	s.lastTag = tag
	s.log(logiface.LevelDebug).Str("tag", tag.String()).Log("tag advance")

	var redirected *ReactionSet

	for l := 0; l <= ready.MaxLevel(); l++ {
		keys := ready.DrainLevel(l)
		if len(keys) == 0 {
			continue
		}

		type result struct {
			writes       []func() error
			writtenPorts []PortKey
			events       []*ScheduledEvent
		}
		results := make([]result, len(keys))

		for i, rk := range keys {
			r := s.env.Graph.Reactions[rk]
			ctx := newContext(s.env, r, tag, s.origin, s.nowFn, s.send)
			if err := s.runReactionBody(r, ctx, tag); err != nil {
				return err
			}
			w, wp, e := ctx.drain()
			results[i] = result{writes: w, writtenPorts: wp, events: e}
		}

		for _, res := range results {
			for _, w := range res.writes {
				if err := w(); err != nil {
					return &SchedError{Errors: []error{err}}
				}
			}
		}

		for i := range keys {
			for _, pk := range results[i].writtenPorts {
				for _, lr := range s.env.Graph.PortTriggers[pk] {
					switch {
					case lr.Level > l:
						// Still ahead of the cursor within this tag: safe to
						// fold into the level it belongs to.
						ready.Insert(lr.Level, lr.Key)
					default:
						// lr.Level <= l: that level already ran (or is
						// running) this tag, so the reaction cannot observe
						// the write within the current tag without breaking
						// level order (spec.md §4.9's "scheduled now" edge
						// case generalizes to triggers, not just actions).
						// Redirect it to the next representable tag instead
						// of silently dropping it.
						if redirected == nil {
							redirected = s.newReactionSet()
						}
						redirected.Insert(lr.Level, lr.Key)
					}
				}
			}
			for _, ev := range results[i].events {
				s.queue.Push(ev)
			}
		}
	}

	if redirected != nil && !redirected.Empty() {
		s.queue.Push(&ScheduledEvent{Tag: tag.Delay(0), Reactions: redirected})
	}

	for _, p := range s.env.Ports {
		p.Cleanup()
	}
	for _, a := range s.env.Actions {
		a.Store.DropOlderThanTag(tag)
	}
	return nil
}

// runReactionBody invokes r's body, converting a recovered panic into
// *ReactionPanickedError (spec.md §7: "reaction bodies may panic; such
// panics are caught at the level boundary, marked fatal for the program").
func (s *Scheduler) runReactionBody(r *Reaction, ctx *Context, tag Tag) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			perr := &ReactionPanickedError{Reaction: r.Name, Tag: tag, Value: rec}
			s.log(logiface.LevelError).Err(perr).Log("reaction panicked")
			err = &SchedError{Errors: []error{perr}}
		}
	}()
	if berr := r.Body(ctx); berr != nil {
		return &SchedError{Errors: []error{berr}}
	}
	return nil
}

// MakeSendContext returns a SendContext tied to this scheduler's inbox,
// usable before Run is called (the inbox exists independently of Running
// state) as long as the caller only posts events after Run begins. Events
// posted earlier wait in the inbox, but their tags are computed against
// the zero time instant, since Run has not yet captured the origin, and
// so do not correspond to any real logical time of the run.
func (s *Scheduler) MakeSendContext() *SendContext {
	return newSendContext(s.send)
}

// IsShutdown reports whether the scheduler has reached Done.
func (s *Scheduler) IsShutdown() bool { return s.keepAlive.IsShutdown() }

// State returns the scheduler's current lifecycle state.
func (s *Scheduler) State() SchedState { return s.state.Load() }
