package reactorcore

import "sync/atomic"

// SchedState is the scheduler-level state machine named in spec.md §4.9:
// Init -> Running -> Draining -> Done. Transitions only ever move forward;
// there is no return path, unlike the teacher event loop's Awake/Sleeping
// oscillation, because a reactor-graph run is a single bounded lifecycle.
type SchedState uint64

const (
	// StateInit: constructed, Run not yet called; Run captures the origin
	// and enqueues the startup event after leaving this state.
	StateInit SchedState = 0
	// StateRunning: draining the event queue at increasing tags.
	StateRunning SchedState = 1
	// StateDraining: the running loop has stopped (terminal event, empty
	// queue without keep_alive, or cancelled context); the shutdown
	// reactions run here unless a terminal event already ran them.
	StateDraining SchedState = 2
	// StateDone: Run is finishing; the shutdown flag is set and further
	// async posts are refused.
	StateDone SchedState = 3
)

func (s SchedState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateRunning:
		return "Running"
	case StateDraining:
		return "Draining"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// FastState is a lock-free state machine with cache-line padding, carried
// over from the teacher event loop's atomic CAS design (state.go in the
// teacher repo) and regeared to SchedState's four-stage lifecycle instead
// of the teacher's Awake/Sleeping/Running/Terminating oscillation.
type FastState struct { // betteralign:ignore
	_ [64]byte      // cache line padding before the value
	v atomic.Uint64 // state value
	_ [56]byte      // pad to complete a cache line (64 - 8 = 56)
}

// NewFastState creates a new state machine in StateInit.
func NewFastState() *FastState {
	s := &FastState{}
	s.v.Store(uint64(StateInit))
	return s
}

// Load returns the current state atomically.
func (s *FastState) Load() SchedState { return SchedState(s.v.Load()) }

// Store atomically stores a new state, bypassing transition validation;
// the scheduler uses it for the Draining and Done transitions.
func (s *FastState) Store(state SchedState) { s.v.Store(uint64(state)) }

// TryTransition attempts to atomically transition from one state to
// another, returning true on success.
func (s *FastState) TryTransition(from, to SchedState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}
