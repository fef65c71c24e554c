package reactorcore

import "time"

// Context is the per-reaction API surface (spec.md §3 "Reaction", §4.7).
// Each reaction invocation receives a fresh Context bound to the current
// tag; get_tag/get_logical_time are frozen snapshots identical for every
// reaction sharing the tag, while get_physical_time reads the wall clock
// at call time.
//
// All mutations performed through a Context — port writes, newly
// scheduled events, a requested shutdown — are buffered locally and
// merged into scheduler state only after the reaction body returns
// (spec.md §4.7 "Contract invariants"), so that reactions running in
// parallel at the same level never observe each other's effects within
// the tag.
type Context struct {
	env      *Env
	reaction *Reaction
	tag      Tag
	origin   time.Time
	physNow  func() time.Time

	writtenPorts map[PortKey]func() error
	events       []*ScheduledEvent
	sendSource   *sendSource
}

// newContext is called once per reaction, per tag, by the scheduler.
func newContext(env *Env, r *Reaction, tag Tag, origin time.Time, physNow func() time.Time, ss *sendSource) *Context {
	return &Context{
		env:          env,
		reaction:     r,
		tag:          tag,
		origin:       origin,
		physNow:      physNow,
		writtenPorts: make(map[PortKey]func() error),
		sendSource:   ss,
	}
}

// GetTag returns the frozen tag this Context was constructed for.
func (ctx *Context) GetTag() Tag { return ctx.tag }

// GetLogicalTime is an alias for GetTag().Offset.
func (ctx *Context) GetLogicalTime() time.Duration { return ctx.tag.Offset }

// GetElapsedLogicalTime returns the same value as GetLogicalTime, named to
// mirror spec.md's "get_elapsed_logical_time" — logical time is always
// measured from the origin, so elapsed and absolute coincide.
func (ctx *Context) GetElapsedLogicalTime() time.Duration { return ctx.tag.Offset }

// GetPhysicalTime reads the wall clock at call time (spec.md §4.7):
// monotonically non-decreasing within one tag, and always >= logical time
// once fast-forward is disabled.
func (ctx *Context) GetPhysicalTime() time.Time { return ctx.physNow() }

// GetElapsedPhysicalTime returns the duration since origin at call time.
func (ctx *Context) GetElapsedPhysicalTime() time.Duration { return ctx.physNow().Sub(ctx.origin) }

// Reactor returns the reactor record owning the running reaction.
func (ctx *Context) Reactor() *Reactor { return ctx.env.Reactors[ctx.reaction.Reactor] }

// BankInfo returns the owning reactor's bank placement (SPEC_FULL.md §3
// "Bank addressing").
func (ctx *Context) BankInfo() BankInfo { return ctx.Reactor().Bank }

// ScheduleShutdown enqueues a terminal event at GetTag().Delay(offset)
// whose reaction set is the graph's shutdown reactions (spec.md §4.7).
func (ctx *Context) ScheduleShutdown(offset time.Duration) {
	newTag := ctx.tag.Delay(offset)
	rs := NewReactionSet(ctx.env.Graph.MaxLevel, len(ctx.env.Graph.Reactions))
	for _, lr := range ctx.env.Graph.ShutdownReactions {
		rs.Insert(lr.Level, lr.Key)
	}
	ctx.events = append(ctx.events, &ScheduledEvent{Tag: newTag, Reactions: rs, Terminal: true})
}

// hasKey reports whether key appears in ks.
func hasKey[K comparable](ks []K, key K) bool {
	for _, k := range ks {
		if k == key {
			return true
		}
	}
	return false
}

// checkPortUse enforces spec.md §7 UndeclaredAccess for port reads;
// checkPortEffect below does the same for port writes.
func (ctx *Context) checkPortUse(key PortKey) error {
	if hasKey(ctx.reaction.Uses, key) || hasKey(ctx.reaction.Triggers, key) {
		return nil
	}
	return &UndeclaredAccessError{Reaction: ctx.reaction.Name, Resource: "port(use)"}
}

func (ctx *Context) checkPortEffect(key PortKey) error {
	if hasKey(ctx.reaction.Effects, key) {
		return nil
	}
	return &UndeclaredAccessError{Reaction: ctx.reaction.Name, Resource: "port(effect)"}
}

func (ctx *Context) checkActionUse(key ActionKey) error {
	if hasKey(ctx.reaction.ActionTriggers, key) || hasKey(ctx.reaction.ActionUses, key) {
		return nil
	}
	return &UndeclaredAccessError{Reaction: ctx.reaction.Name, Resource: "action(use)"}
}

func (ctx *Context) checkActionSchedule(key ActionKey) error {
	if hasKey(ctx.reaction.ScheduledActions, key) {
		return nil
	}
	return &UndeclaredAccessError{Reaction: ctx.reaction.Name, Resource: "action(schedule)"}
}

// GetPort reads a port's current-tag value. The calling reaction must
// have declared p as a trigger or use (spec.md §4.2, §7 UndeclaredAccess).
func GetPort[T any](ctx *Context, p *Port[T]) (T, bool, error) {
	if err := ctx.checkPortUse(p.Key()); err != nil {
		var zero T
		return zero, false, err
	}
	v, ok := p.Get()
	return v, ok, nil
}

// SetPort assigns v to p for the current tag. The calling reaction must
// have declared p as an effect; a second call for the same port within
// the same reaction invocation fails with *DoubleSetError, matching the
// single-assignment-per-tag discipline enforced again at merge time for
// writes coming from distinct reactions at the same level.
func SetPort[T any](ctx *Context, p *Port[T], v T) error {
	if err := ctx.checkPortEffect(p.Key()); err != nil {
		return err
	}
	if _, dup := ctx.writtenPorts[p.Key()]; dup {
		return &DoubleSetError{Port: p.Name(), Key: p.Key()}
	}
	ctx.writtenPorts[p.Key()] = func() error { return p.Set(v) }
	return nil
}

// GetActionValue returns the value scheduled exactly at the current tag
// for a logical action, or ok=false if it did not fire now (spec.md §4.7).
func GetActionValue[T any](ctx *Context, ref ActionRef[T]) (T, bool, error) {
	if err := ctx.checkActionUse(ref.Key()); err != nil {
		var zero T
		return zero, false, err
	}
	v, ok := ref.action.getCurrent(ctx.tag)
	return v, ok, nil
}

// GetPhysicalActionValue is the PhysicalActionRef counterpart of
// GetActionValue.
func GetPhysicalActionValue[T any](ctx *Context, ref PhysicalActionRef[T]) (T, bool, error) {
	if err := ctx.checkActionUse(ref.Key()); err != nil {
		var zero T
		return zero, false, err
	}
	v, ok := ref.action.getCurrent(ctx.tag)
	return v, ok, nil
}

// ScheduleAction implements spec.md §4.7 schedule_action for a logical
// action: d = max(min_delay, extraDelay); new_tag = tag.Delay(d); the
// value is pushed into the store immediately (it is only ever observed at
// a strictly future tag, so no buffering is required there), and a
// non-terminal ScheduledEvent carrying the action's trigger set is
// buffered for the scheduler to enqueue after this reaction returns.
//
// Returns *PastTagError if new_tag would not strictly advance past the
// current tag — except the legal case of a zero-delay self-schedule,
// which Tag.Delay(0) always advances via the microstep (spec.md §4.1,
// §4.7).
func ScheduleAction[T any](ctx *Context, ref ActionRef[T], value T, extraDelay time.Duration) error {
	if err := ctx.checkActionSchedule(ref.Key()); err != nil {
		return err
	}
	d := ref.MinDelay()
	if extraDelay > d {
		d = extraDelay
	}
	newTag := ctx.tag.Delay(d)
	if !newTag.After(ctx.tag) {
		return &PastTagError{Current: ctx.tag, Computed: newTag}
	}
	ref.action.push(newTag, value)
	rs := NewReactionSet(ctx.env.Graph.MaxLevel, len(ctx.env.Graph.Reactions))
	for _, lr := range ctx.env.Graph.ActionTriggers[ref.Key()] {
		rs.Insert(lr.Level, lr.Key)
	}
	ctx.events = append(ctx.events, &ScheduledEvent{Tag: newTag, Reactions: rs, Terminal: false})
	return nil
}

// MakeSendContext splits off a SendContext tied to the scheduler's
// thread-safe async inbox (spec.md §4.7 "make_send_context", §4.8).
func (ctx *Context) MakeSendContext() *SendContext {
	return newSendContext(ctx.sendSource)
}

// drain returns and clears this Context's buffered port writes, the keys
// of the ports actually written (spec.md §4.2: a port's downstream
// reactions are only triggered by a write that actually happened this
// tag, not merely by appearing in the reaction's declared effect set),
// and buffered events, for the scheduler to apply after the reaction
// body returns.
func (ctx *Context) drain() (writes []func() error, writtenPorts []PortKey, events []*ScheduledEvent) {
	for pk, w := range ctx.writtenPorts {
		writes = append(writes, w)
		writtenPorts = append(writtenPorts, pk)
	}
	events = ctx.events
	ctx.writtenPorts = nil
	ctx.events = nil
	return writes, writtenPorts, events
}
