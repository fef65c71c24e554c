package reactorcore

import "time"

// ActionKind discriminates the two variants of Action (spec.md §3).
type ActionKind int

const (
	// LogicalActionKind fires deterministically: its tag is computed
	// purely from the current tag, min_delay, and an extra delay.
	LogicalActionKind ActionKind = iota
	// PhysicalActionKind fires at a tag derived from wall-clock time at
	// the moment it is scheduled, from a foreign thread.
	PhysicalActionKind
)

func (k ActionKind) String() string {
	if k == PhysicalActionKind {
		return "physical"
	}
	return "logical"
}

// BaseAction is the type-erased, key-indexed record the scheduler and Env
// hold for every action regardless of its payload type T (spec.md §3
// "Action"). Startup and shutdown are not actions here: reactions flagged
// IsStartup fire at ZeroTag, and reactions flagged IsShutdown fire at the
// terminal tag (spec.md §4.9).
type BaseAction struct {
	Name     string
	Key      ActionKey
	Kind     ActionKind
	MinDelay time.Duration
	Store    BaseActionStore
}

// Action is the typed wrapper a builder constructs once per declared
// action, combining the type-erased record with a concrete ActionStore[T]
// for logical actions, or a PhysicalActionStore[T] for physical ones.
type Action[T any] struct {
	Name     string
	Key      ActionKey
	Kind     ActionKind
	MinDelay time.Duration

	logical  *ActionStore[T]
	physical *PhysicalActionStore[T]
}

// NewLogicalAction constructs a logical action with its own single-
// threaded store.
func NewLogicalAction[T any](name string, key ActionKey, minDelay time.Duration) *Action[T] {
	return &Action[T]{Name: name, Key: key, Kind: LogicalActionKind, MinDelay: minDelay, logical: NewActionStore[T]()}
}

// NewPhysicalAction constructs a physical action with a mutex-guarded
// store, safe to reach from foreign threads via SendContext.
func NewPhysicalAction[T any](name string, key ActionKey, minDelay time.Duration) *Action[T] {
	return &Action[T]{Name: name, Key: key, Kind: PhysicalActionKind, MinDelay: minDelay, physical: NewPhysicalActionStore[T]()}
}

// Base returns the type-erased record for this action, for registration
// in Env.Actions.
func (a *Action[T]) Base() BaseAction {
	var store BaseActionStore
	if a.Kind == PhysicalActionKind {
		store = a.physical
	} else {
		store = a.logical
	}
	return BaseAction{Name: a.Name, Key: a.Key, Kind: a.Kind, MinDelay: a.MinDelay, Store: store}
}

// getCurrent and push are the type-preserving accessors used by ActionRef
// and PhysicalActionRef, dispatching to whichever concrete store backs
// this action.
func (a *Action[T]) getCurrent(tag Tag) (T, bool) {
	if a.Kind == PhysicalActionKind {
		return a.physical.GetCurrent(tag)
	}
	return a.logical.GetCurrent(tag)
}

func (a *Action[T]) push(tag Tag, value T) {
	if a.Kind == PhysicalActionKind {
		a.physical.Push(tag, value)
		return
	}
	a.logical.Push(tag, value)
}

// ActionRef is the single-threaded handle a reaction body receives for a
// logical action (spec.md §4.4). It is not safe to share across
// goroutines; reaction bodies construct one with NewActionRef.
type ActionRef[T any] struct {
	action *Action[T]
}

// NewActionRef wraps a logical action for reaction-local use.
func NewActionRef[T any](a *Action[T]) ActionRef[T] { return ActionRef[T]{action: a} }

func (r ActionRef[T]) Key() ActionKey          { return r.action.Key }
func (r ActionRef[T]) MinDelay() time.Duration { return r.action.MinDelay }
func (r ActionRef[T]) Kind() ActionKind         { return r.action.Kind }

// PhysicalActionRef is the shareable, sendable handle for a physical
// action (spec.md §4.4): it may be cloned and handed to foreign threads,
// because all mutation goes through the action's mutex-guarded store.
type PhysicalActionRef[T any] struct {
	action *Action[T]
}

// NewPhysicalActionRef wraps a physical action for cross-goroutine use.
func NewPhysicalActionRef[T any](a *Action[T]) PhysicalActionRef[T] {
	return PhysicalActionRef[T]{action: a}
}

func (r PhysicalActionRef[T]) Key() ActionKey          { return r.action.Key }
func (r PhysicalActionRef[T]) MinDelay() time.Duration { return r.action.MinDelay }
func (r PhysicalActionRef[T]) Kind() ActionKind         { return r.action.Kind }

// Clone returns a copy of the ref safe to hand to another goroutine; since
// the underlying Action[T] is always accessed through its mutex-guarded
// store, cloning is just a value copy of the pointer.
func (r PhysicalActionRef[T]) Clone() PhysicalActionRef[T] { return r }
