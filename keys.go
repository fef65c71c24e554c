package reactorcore

// Keys are dense, zero-based integer handles into the tables owned by an
// [Env]. They exist so the scheduler never holds owning references into the
// reactor graph: reactors, reactions, ports, and actions are addressed by
// key everywhere a cyclic data-flow graph would otherwise require shared
// mutable references.
type (
	// ReactorKey indexes into Env.Reactors.
	ReactorKey int

	// ReactionKey indexes into ReactionGraph.Reactions and every level-partitioned
	// structure (ReactionSet, ReactionGraph's level map).
	ReactionKey int

	// PortKey indexes into Env.Ports.
	PortKey int

	// ActionKey indexes into Env.Actions.
	ActionKey int
)

// invalidKey is the zero value of a "not present" key, used by maps that
// need an explicit absent marker distinct from a valid key 0. Callers
// should prefer comma-ok map lookups; this exists for fixed-size slices.
const invalidKey = -1

// reactorKeyValid reports whether k addresses a real slot.
func reactorKeyValid(k ReactorKey) bool { return k >= 0 }

// reactionKeyValid reports whether k addresses a real slot.
func reactionKeyValid(k ReactionKey) bool { return k >= 0 }

// portKeyValid reports whether k addresses a real slot.
func portKeyValid(k PortKey) bool { return k >= 0 }

// actionKeyValid reports whether k addresses a real slot.
func actionKeyValid(k ActionKey) bool { return k >= 0 }

// BankInfo identifies a reactor's position within a replicated bank of
// sibling reactors, recovered from the original boomerang source's bank
// addressing (see SPEC_FULL.md §3 "Bank addressing"). A reactor that is not
// part of a bank has Total == 0.
type BankInfo struct {
	Index int
	Total int
}

// Reactor is the runtime record for one reactor instance: a name for
// diagnostics, an opaque mutable state payload, and optional bank
// placement. State is only safe to mutate from within one of the
// reactor's own running reactions (spec.md §5 "Shared-resource policy").
type Reactor struct {
	Name  string
	State any
	Bank  BankInfo
}
