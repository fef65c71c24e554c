package reactorcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendContext_ScheduleActionAsyncComputesTagFromWallClock(t *testing.T) {
	origin := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	keepAlive := NewKeepAlive()
	source := newSendSource(origin, keepAlive)
	called := origin.Add(40 * time.Millisecond)
	source.nowFn = func() time.Time { return called }

	a := NewPhysicalAction[int]("phys", 0, 10*time.Millisecond)
	r := &Reaction{Name: "sink", Key: 0, ActionTriggers: []ActionKey{0}, Body: noopBody}
	b := NewReactionGraphBuilder()
	b.AddReaction(r)
	g, err := b.Build()
	require.NoError(t, err)

	sc := newSendContext(source)
	ref := NewPhysicalActionRef(a)
	require.NoError(t, ScheduleActionAsync(sc, g, ref, 3, 0))

	events := source.drain()
	require.Len(t, events, 1)
	assert.Equal(t, NewTag(50*time.Millisecond, 0), events[0].Tag)
	assert.False(t, events[0].Terminal)

	v, ok := a.getCurrent(NewTag(50 * time.Millisecond, 0))
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestSendContext_ScheduleActionAsyncAfterShutdownDropped(t *testing.T) {
	origin := time.Now()
	keepAlive := NewKeepAlive()
	keepAlive.Shutdown()
	source := newSendSource(origin, keepAlive)

	a := NewPhysicalAction[int]("phys", 0, 0)
	g := &ReactionGraph{}
	sc := newSendContext(source)
	ref := NewPhysicalActionRef(a)

	err := ScheduleActionAsync(sc, g, ref, 1, 0)
	require.Error(t, err)
	var aas *AsyncAfterShutdownError
	assert.ErrorAs(t, err, &aas)
	assert.Empty(t, source.drain())
}

func TestSendContext_ScheduleActionAsyncDistinctTagsOnSameWallClockNanosecond(t *testing.T) {
	origin := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	keepAlive := NewKeepAlive()
	source := newSendSource(origin, keepAlive)
	same := origin.Add(40 * time.Millisecond)
	source.nowFn = func() time.Time { return same }

	a := NewPhysicalAction[int]("phys", 0, 0)
	g := &ReactionGraph{}
	sc := newSendContext(source)
	ref := NewPhysicalActionRef(a)

	require.NoError(t, ScheduleActionAsync(sc, g, ref, 1, 0))
	require.NoError(t, ScheduleActionAsync(sc, g, ref, 2, 0))

	events := source.drain()
	require.Len(t, events, 2)
	assert.True(t, events[0].Tag.Before(events[1].Tag), "two schedules computing the same wall-clock nanosecond must still get distinct, arrival-ordered tags")
}

func TestSendContext_IsShutdownReflectsKeepAlive(t *testing.T) {
	keepAlive := NewKeepAlive()
	source := newSendSource(time.Now(), keepAlive)
	sc := newSendContext(source)
	assert.False(t, sc.IsShutdown())
	keepAlive.Shutdown()
	assert.True(t, sc.IsShutdown())
}
