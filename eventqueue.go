package reactorcore

import "container/heap"

// ScheduledEvent is a queued intention to fire a set of reactions at a
// future tag (spec.md §3 "ScheduledEvent"). terminal=true means "after
// these reactions run, stop the loop" (the Draining transition, spec.md
// §4.9).
type ScheduledEvent struct {
	Tag       Tag
	Reactions *ReactionSet
	Terminal  bool
}

// eventHeap is the container/heap-backed min-heap of ScheduledEvents,
// ordered by (Tag ascending, Terminal last at equal tag) per spec.md §3.
// Unlike the original Rust source — which orders a max-heap and inverts
// the comparator because Rust's BinaryHeap only pops the greatest element
// — Go's container/heap is a min-heap by construction, so Less expresses
// the natural ascending order directly (SPEC_FULL.md §3, resolved
// ambiguity on ScheduledEvent ordering).
type eventHeap []*ScheduledEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if c := h[i].Tag.Compare(h[j].Tag); c != 0 {
		return c < 0
	}
	// non-terminal sorts before terminal at the same tag
	return !h[i].Terminal && h[j].Terminal
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*ScheduledEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// EventQueue is the scheduler's min-heap of future ScheduledEvents
// (spec.md §3, §4.6).
type EventQueue struct {
	h eventHeap
}

// NewEventQueue constructs an empty queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	heap.Init(&q.h)
	return q
}

// Push inserts an event (spec.md §4.6).
func (q *EventQueue) Push(e *ScheduledEvent) {
	heap.Push(&q.h, e)
}

// PeekTag returns the tag of the minimum-tag event, if any (spec.md §4.6
// "peek_tag").
func (q *EventQueue) PeekTag() (Tag, bool) {
	if len(q.h) == 0 {
		return Tag{}, false
	}
	return q.h[0].Tag, true
}

// PopAllAt removes every event whose tag equals tag, merging their
// reaction sets and OR-ing their terminal flags into a single result
// (spec.md §4.6 "pop_all_at"). Returns ok=false if no event at that exact
// tag exists.
func (q *EventQueue) PopAllAt(tag Tag, maxLevel, numReactions int) (*ScheduledEvent, bool) {
	if len(q.h) == 0 || !q.h[0].Tag.Equal(tag) {
		return nil, false
	}
	merged := &ScheduledEvent{Tag: tag, Reactions: NewReactionSet(maxLevel, numReactions)}
	for len(q.h) > 0 && q.h[0].Tag.Equal(tag) {
		e := heap.Pop(&q.h).(*ScheduledEvent)
		merged.Reactions.Merge(e.Reactions)
		merged.Terminal = merged.Terminal || e.Terminal
	}
	return merged, true
}

// Len reports how many events are currently queued.
func (q *EventQueue) Len() int { return len(q.h) }
