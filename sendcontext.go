package reactorcore

import (
	"sync"
	"time"
)

// sendSource is the scheduler-owned state every SendContext splits off
// from: the keep-alive flag, the origin instant, and the multi-producer/
// single-consumer inbox (spec.md §4.8). Posting to the inbox never
// blocks; it is a mutex-protected slice with a condition variable rather
// than a bounded channel, so a burst of async schedules from many foreign
// threads can never back-pressure the callers (spec.md §4.8 "Posting
// never blocks the scheduler").
type sendSource struct {
	origin    time.Time
	keepAlive *KeepAlive

	mu      sync.Mutex
	cond    *sync.Cond
	pending []*ScheduledEvent
	lastTag Tag // last tag issued through nextAsyncTag, guards distinctness

	onDrop func(error)      // optional debug-level logging hook, set by the scheduler
	nowFn  func() time.Time // overridable clock, defaults to time.Now
}

func newSendSource(origin time.Time, keepAlive *KeepAlive) *sendSource {
	s := &sendSource{origin: origin, keepAlive: keepAlive, lastTag: ZeroTag}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// nextAsyncTag enforces spec.md §5 ordering guarantee 4: distinct async
// schedules always receive distinct, arrival-ordered tags, even when two
// callers compute the same wall-clock nanosecond (wall-clock resolution
// or fast-forwarded clocks make this common, not just theoretical).
// candidate is bumped to the previous issued tag's microstep successor
// whenever it would not strictly advance past it, preserving the order
// in which callers reached this method.
func (s *sendSource) nextAsyncTag(candidate Tag) Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !candidate.After(s.lastTag) {
		candidate = s.lastTag.Delay(0)
	}
	s.lastTag = candidate
	return candidate
}

// post appends an event and wakes any blocked consumer.
func (s *sendSource) post(e *ScheduledEvent) {
	s.mu.Lock()
	s.pending = append(s.pending, e)
	s.cond.Signal()
	s.mu.Unlock()
}

// drain removes and returns every currently pending event, for the
// scheduler's Running-state merge step (spec.md §4.9).
func (s *sendSource) drain() []*ScheduledEvent {
	s.mu.Lock()
	out := s.pending
	s.pending = nil
	s.mu.Unlock()
	return out
}

// hasPending reports whether an event is waiting in the inbox, under the
// same lock post() and drain() use — reading s.pending's length directly
// from another goroutine without it would race with post()'s append.
func (s *sendSource) hasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) > 0
}

// awaitEventOrShutdown blocks until an event is posted, the keep-alive
// flag is seen set, or (when hasDeadline) deadline passes. With a deadline
// it polls, rechecking the flag at least every few milliseconds; without
// one it waits on the inbox condition, which only post() signals, so the
// flag is then rechecked only after a post wakes it.
func (s *sendSource) awaitEventOrShutdown(deadline time.Time, hasDeadline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.pending) == 0 && !s.keepAlive.IsShutdown() {
		if hasDeadline && !time.Now().Before(deadline) {
			return
		}
		if hasDeadline {
			// sync.Cond has no timed wait; approximate with a short poll
			// interval bounded by the remaining deadline, which keeps the
			// wait cancellable by both a post and a deadline.
			s.mu.Unlock()
			sleep := time.Until(deadline)
			const pollInterval = 5 * time.Millisecond
			if sleep > pollInterval || sleep <= 0 {
				sleep = pollInterval
			}
			time.Sleep(sleep)
			s.mu.Lock()
			continue
		}
		s.cond.Wait()
	}
}

// SendContext is the thread-safe companion to Context for asynchronous
// scheduling from foreign threads (spec.md §4.8). Unlike Context it
// carries no reaction-declared access sets — any physical action ref the
// caller already holds may be scheduled through it.
type SendContext struct {
	source *sendSource
}

func newSendContext(s *sendSource) *SendContext {
	return &SendContext{source: s}
}

// IsShutdown reads the atomic shutdown flag (spec.md §4.8).
func (sc *SendContext) IsShutdown() bool { return sc.source.keepAlive.IsShutdown() }

// ScheduleShutdown posts a terminal event analogous to
// Context.ScheduleShutdown, computed from the physical clock rather than
// a frozen logical tag (spec.md §4.8).
func (sc *SendContext) ScheduleShutdown(graph *ReactionGraph, offset time.Duration) error {
	if sc.IsShutdown() {
		err := &AsyncAfterShutdownError{}
		if sc.source.onDrop != nil {
			sc.source.onDrop(err)
		}
		return err
	}
	base := TagFromWallClock(sc.source.physNow(), sc.source.origin)
	newTag := sc.source.nextAsyncTag(base.Delay(offset))
	rs := NewReactionSet(graph.MaxLevel, len(graph.Reactions))
	for _, lr := range graph.ShutdownReactions {
		rs.Insert(lr.Level, lr.Key)
	}
	sc.source.post(&ScheduledEvent{Tag: newTag, Reactions: rs, Terminal: true})
	return nil
}

// ScheduleActionAsync implements spec.md §4.8's schedule_action_async for
// a physical action: now_physical = wall_clock(); base =
// tag_from_physical(now_physical, origin); d = max(min_delay,
// extra_delay); new_tag = base.delay(d); the physical action's mutex is
// taken to push the value, then a ScheduledEvent carrying the action's
// trigger set is posted to the inbox.
//
// If the scheduler has already reached Done, the event is not posted;
// *AsyncAfterShutdownError is returned (spec.md §7: non-fatal, dropped
// and logged at debug level by the scheduler via the onDrop hook).
func ScheduleActionAsync[T any](sc *SendContext, graph *ReactionGraph, ref PhysicalActionRef[T], value T, extraDelay time.Duration) error {
	if sc.IsShutdown() {
		err := &AsyncAfterShutdownError{Action: ref.Key()}
		if sc.source.onDrop != nil {
			sc.source.onDrop(err)
		}
		return err
	}
	now := sc.source.physNow()
	base := TagFromWallClock(now, sc.source.origin)
	d := ref.MinDelay()
	if extraDelay > d {
		d = extraDelay
	}
	newTag := sc.source.nextAsyncTag(base.Delay(d))
	ref.action.push(newTag, value)
	rs := NewReactionSet(graph.MaxLevel, len(graph.Reactions))
	for _, lr := range graph.ActionTriggers[ref.Key()] {
		rs.Insert(lr.Level, lr.Key)
	}
	sc.source.post(&ScheduledEvent{Tag: newTag, Reactions: rs, Terminal: false})
	return nil
}

// physNow defaults to time.Now; overridden in tests via sendSource so
// scheduling can be exercised deterministically. It is a method on
// sendSource rather than a free variable to keep each scheduler instance
// independent.
func (s *sendSource) physNow() time.Time {
	if s.nowFn != nil {
		return s.nowFn()
	}
	return time.Now()
}
