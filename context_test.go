package reactorcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(r *Reaction, ports map[PortKey]BasePort, actions map[ActionKey]BaseAction) *Env {
	b := NewReactionGraphBuilder()
	b.AddReaction(r)
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return NewEnv(map[ReactorKey]*Reactor{0: {Name: "r"}}, ports, actions, g)
}

func TestContext_GetSetPortRoundTrip(t *testing.T) {
	p := NewPort[int]("out", 0)
	r := &Reaction{Name: "emit", Key: 0, Effects: []PortKey{0}, Body: noopBody}
	env := newTestEnv(r, map[PortKey]BasePort{0: p}, nil)

	ctx := newContext(env, r, ZeroTag, time.Now(), time.Now, nil)
	require.NoError(t, SetPort(ctx, p, 99))

	writes, _, _ := ctx.drain()
	require.Len(t, writes, 1)
	require.NoError(t, writes[0]())

	v, ok := p.Get()
	require.True(t, ok)
	assert.Equal(t, 99, v)
}

func TestContext_SetPortUndeclaredEffectFails(t *testing.T) {
	p := NewPort[int]("out", 0)
	r := &Reaction{Name: "reader", Key: 0, Uses: []PortKey{0}, Body: noopBody}
	env := newTestEnv(r, map[PortKey]BasePort{0: p}, nil)

	ctx := newContext(env, r, ZeroTag, time.Now(), time.Now, nil)
	err := SetPort(ctx, p, 1)
	require.Error(t, err)
	var uae *UndeclaredAccessError
	assert.ErrorAs(t, err, &uae)
}

func TestContext_SetPortTwiceInOneReactionFails(t *testing.T) {
	p := NewPort[int]("out", 0)
	r := &Reaction{Name: "emit", Key: 0, Effects: []PortKey{0}, Body: noopBody}
	env := newTestEnv(r, map[PortKey]BasePort{0: p}, nil)

	ctx := newContext(env, r, ZeroTag, time.Now(), time.Now, nil)
	require.NoError(t, SetPort(ctx, p, 1))
	err := SetPort(ctx, p, 2)
	require.Error(t, err)
	var dse *DoubleSetError
	assert.ErrorAs(t, err, &dse)
}

func TestContext_GetPortUndeclaredUseFails(t *testing.T) {
	p := NewPort[int]("in", 0)
	r := &Reaction{Name: "blind", Key: 0, Body: noopBody}
	env := newTestEnv(r, map[PortKey]BasePort{0: p}, nil)

	ctx := newContext(env, r, ZeroTag, time.Now(), time.Now, nil)
	_, _, err := GetPort(ctx, p)
	require.Error(t, err)
}

func TestContext_ScheduleActionComputesDelayAndBuffersEvent(t *testing.T) {
	a := NewLogicalAction[int]("a", 0, 10*time.Millisecond)
	r := &Reaction{Name: "scheduler", Key: 0, ScheduledActions: []ActionKey{0}, Body: noopBody}
	env := newTestEnv(r, nil, map[ActionKey]BaseAction{0: a.Base()})

	tag := NewTag(5*time.Millisecond, 0)
	ctx := newContext(env, r, tag, time.Now(), time.Now, nil)
	ref := NewActionRef(a)

	require.NoError(t, ScheduleAction(ctx, ref, 7, 0))

	_, _, events := ctx.drain()
	require.Len(t, events, 1)
	assert.Equal(t, NewTag(15*time.Millisecond, 0), events[0].Tag)

	v, ok := a.getCurrent(NewTag(15 * time.Millisecond, 0))
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestContext_ScheduleActionZeroDelaySelfScheduleBumpsMicrostep(t *testing.T) {
	a := NewLogicalAction[int]("a", 0, 0)
	r := &Reaction{Name: "self", Key: 0, ScheduledActions: []ActionKey{0}, Body: noopBody}
	env := newTestEnv(r, nil, map[ActionKey]BaseAction{0: a.Base()})

	tag := NewTag(5*time.Millisecond, 2)
	ctx := newContext(env, r, tag, time.Now(), time.Now, nil)
	ref := NewActionRef(a)

	require.NoError(t, ScheduleAction(ctx, ref, 1, 0))
	_, _, events := ctx.drain()
	require.Len(t, events, 1)
	assert.Equal(t, NewTag(5*time.Millisecond, 3), events[0].Tag)
}

func TestContext_ScheduleShutdownEnqueuesTerminalEvent(t *testing.T) {
	shutdownReaction := &Reaction{Name: "shutdown", Key: 1, IsShutdown: true, Body: noopBody}
	r := &Reaction{Name: "requester", Key: 0, Body: noopBody}

	b := NewReactionGraphBuilder()
	b.AddReaction(r)
	b.AddReaction(shutdownReaction)
	g, err := b.Build()
	require.NoError(t, err)
	env := NewEnv(map[ReactorKey]*Reactor{0: {Name: "r"}}, nil, nil, g)

	ctx := newContext(env, r, NewTag(time.Millisecond, 0), time.Now(), time.Now, nil)
	ctx.ScheduleShutdown(2 * time.Millisecond)

	_, _, events := ctx.drain()
	require.Len(t, events, 1)
	assert.True(t, events[0].Terminal)
	assert.Equal(t, NewTag(3*time.Millisecond, 0), events[0].Tag)
	assert.True(t, events[0].Reactions.Contains(shutdownReaction.Level, shutdownReaction.Key))
}
