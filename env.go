package reactorcore

// Env is the immutable, key-indexed table set the builder hands to the
// scheduler at construction time (spec.md §3 "Lifecycles", §6 "Builder →
// Scheduler handshake"). Reactors, reactions, ports, and actions are
// created exclusively by the builder before the scheduler starts and are
// never mutated by the scheduler — only the payloads they point to
// (Reactor.State, Port values, ActionStore entries) change over time.
type Env struct {
	Reactors map[ReactorKey]*Reactor
	Ports    map[PortKey]BasePort
	Actions  map[ActionKey]BaseAction
	Graph    *ReactionGraph
}

// NewEnv assembles an Env from its four immutable tables. Callers (the
// out-of-scope builder layer, or tests standing in for it) are expected
// to have already validated key consistency (every key referenced by the
// graph has a corresponding table entry).
func NewEnv(reactors map[ReactorKey]*Reactor, ports map[PortKey]BasePort, actions map[ActionKey]BaseAction, graph *ReactionGraph) *Env {
	return &Env{Reactors: reactors, Ports: ports, Actions: actions, Graph: graph}
}
