package reactorcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_PeekTagReturnsMinimum(t *testing.T) {
	q := NewEventQueue()
	q.Push(&ScheduledEvent{Tag: NewTag(3*time.Millisecond, 0), Reactions: NewReactionSet(0, 1)})
	q.Push(&ScheduledEvent{Tag: NewTag(1*time.Millisecond, 0), Reactions: NewReactionSet(0, 1)})
	q.Push(&ScheduledEvent{Tag: NewTag(2*time.Millisecond, 0), Reactions: NewReactionSet(0, 1)})

	tag, ok := q.PeekTag()
	require.True(t, ok)
	assert.Equal(t, NewTag(1*time.Millisecond, 0), tag)
}

func TestEventQueue_PopAllAtMergesReactionsAndTerminal(t *testing.T) {
	q := NewEventQueue()
	tag := NewTag(5*time.Millisecond, 0)

	rsA := NewReactionSet(0, 10)
	rsA.Insert(0, 1)
	rsB := NewReactionSet(0, 10)
	rsB.Insert(0, 2)

	q.Push(&ScheduledEvent{Tag: tag, Reactions: rsA, Terminal: false})
	q.Push(&ScheduledEvent{Tag: tag, Reactions: rsB, Terminal: true})
	q.Push(&ScheduledEvent{Tag: NewTag(6*time.Millisecond, 0), Reactions: NewReactionSet(0, 10)})

	merged, ok := q.PopAllAt(tag, 0, 10)
	require.True(t, ok)
	assert.True(t, merged.Terminal)
	assert.True(t, merged.Reactions.Contains(0, 1))
	assert.True(t, merged.Reactions.Contains(0, 2))

	assert.Equal(t, 1, q.Len())
}

func TestEventQueue_PopAllAtMissReturnsFalse(t *testing.T) {
	q := NewEventQueue()
	q.Push(&ScheduledEvent{Tag: NewTag(time.Millisecond, 0), Reactions: NewReactionSet(0, 1)})
	_, ok := q.PopAllAt(NewTag(2*time.Millisecond, 0), 0, 1)
	assert.False(t, ok)
}

func TestEventQueue_TerminalSortsAfterNonTerminalAtSameTag(t *testing.T) {
	q := NewEventQueue()
	tag := NewTag(time.Millisecond, 0)
	q.Push(&ScheduledEvent{Tag: tag, Terminal: true, Reactions: NewReactionSet(0, 1)})
	q.Push(&ScheduledEvent{Tag: tag, Terminal: false, Reactions: NewReactionSet(0, 1)})

	assert.False(t, q.h[0].Terminal)
}
