package reactorcore

import "sort"

// ReactionBody is the uniform callable signature every reaction body
// implements (spec.md §6 "Reaction body signature"). Dispatch over
// reaction bodies is by table index, never by inheritance (spec.md §9
// "Dynamic dispatch over reaction bodies"). The reactor_state,
// ref/mut port handles, and action handles are closed over by the
// builder when it constructs the ReactionBody value; the core only ever
// calls it with a Context.
type ReactionBody func(ctx *Context) error

// Reaction is the runtime record for one declared reaction (spec.md §3
// "Reaction").
type Reaction struct {
	Name     string
	Key      ReactionKey
	Reactor  ReactorKey
	Level    int
	Body     ReactionBody

	Triggers []PortKey // ports that wake this reaction; action triggers are in ActionTriggers
	Uses     []PortKey
	Effects  []PortKey
	ActionTriggers []ActionKey
	ActionUses     []ActionKey
	ScheduledActions []ActionKey

	// IsStartup/IsShutdown flag a reaction as belonging to the built-in
	// startup/shutdown action sets (spec.md §3). These do not affect the
	// reaction's diagnostic Name.
	IsStartup  bool
	IsShutdown bool
}

// levelReaction pairs a reaction key with its precomputed level, as stored
// in the trigger maps (spec.md §3 "action_triggers", "port_triggers").
type levelReaction struct {
	Level int
	Key   ReactionKey
}

// ReactionGraph is the immutable-after-build precedence graph (spec.md
// §3, §6 "Builder → Scheduler handshake"). It never changes once the
// scheduler starts.
type ReactionGraph struct {
	Reactions map[ReactionKey]*Reaction

	ActionTriggers map[ActionKey][]levelReaction
	PortTriggers   map[PortKey][]levelReaction

	StartupReactions  []levelReaction
	ShutdownReactions []levelReaction

	ReactionUsePorts    map[ReactionKey][]PortKey
	ReactionEffectPorts map[ReactionKey][]PortKey
	ReactionActions     map[ReactionKey][]ActionKey

	MaxLevel int
}

// NewReactionGraphBuilder returns an empty builder; callers (the out-of-
// scope builder layer, or tests standing in for it) add reactions with
// AddReaction and finish with Build, which performs level assignment and
// cycle detection.
type ReactionGraphBuilder struct {
	reactions []*Reaction
	edges     map[ReactionKey][]ReactionKey // A -> B meaning A must run before B
}

func NewReactionGraphBuilder() *ReactionGraphBuilder {
	return &ReactionGraphBuilder{edges: make(map[ReactionKey][]ReactionKey)}
}

// AddReaction registers a reaction. Level is assigned by Build, not here;
// the Level field on the passed Reaction is ignored and overwritten.
func (b *ReactionGraphBuilder) AddReaction(r *Reaction) {
	b.reactions = append(b.reactions, r)
}

// AddPrecedence records that `before` must execute strictly before `after`
// whenever both fire at the same tag — either because of a declared data
// dependency (A writes a port B reads) or intra-reactor declaration order
// (spec.md §3 "Reaction" invariants).
func (b *ReactionGraphBuilder) AddPrecedence(before, after ReactionKey) {
	b.edges[before] = append(b.edges[before], after)
}

// Build assigns levels via Kahn's algorithm (topological sort by in-degree)
// and assembles the immutable ReactionGraph. It returns *GraphCycleError
// if the precedence graph is not a DAG (spec.md §7 "GraphCycle").
func (b *ReactionGraphBuilder) Build() (*ReactionGraph, error) {
	indegree := make(map[ReactionKey]int, len(b.reactions))
	for _, r := range b.reactions {
		indegree[r.Key] = 0
	}
	for _, outs := range b.edges {
		for _, to := range outs {
			indegree[to]++
		}
	}

	var queue []ReactionKey
	for _, r := range b.reactions {
		if indegree[r.Key] == 0 {
			queue = append(queue, r.Key)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	level := make(map[ReactionKey]int, len(b.reactions))
	visited := 0
	maxLevel := 0

	for len(queue) > 0 {
		// Process one full wavefront at a time so every member gets a
		// consistent level, matching spec.md §3's requirement that every
		// edge A->B implies A.level < B.level.
		next := make([]ReactionKey, 0)
		sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })
		for _, k := range queue {
			visited++
			for _, to := range b.edges[k] {
				if l := level[k] + 1; l > level[to] {
					level[to] = l
					if l > maxLevel {
						maxLevel = l
					}
				}
				indegree[to]--
				if indegree[to] == 0 {
					next = append(next, to)
				}
			}
		}
		queue = next
	}

	if visited != len(b.reactions) {
		var cyclic []ReactionKey
		for k, deg := range indegree {
			if deg > 0 {
				cyclic = append(cyclic, k)
			}
		}
		sort.Slice(cyclic, func(i, j int) bool { return cyclic[i] < cyclic[j] })
		return nil, &GraphCycleError{Cycle: cyclic}
	}

	g := &ReactionGraph{
		Reactions:           make(map[ReactionKey]*Reaction, len(b.reactions)),
		ActionTriggers:       make(map[ActionKey][]levelReaction),
		PortTriggers:         make(map[PortKey][]levelReaction),
		ReactionUsePorts:     make(map[ReactionKey][]PortKey),
		ReactionEffectPorts:  make(map[ReactionKey][]PortKey),
		ReactionActions:      make(map[ReactionKey][]ActionKey),
		MaxLevel:             maxLevel,
	}

	for _, r := range b.reactions {
		r.Level = level[r.Key]
		g.Reactions[r.Key] = r
		g.ReactionUsePorts[r.Key] = append(g.ReactionUsePorts[r.Key], r.Uses...)
		g.ReactionEffectPorts[r.Key] = append(g.ReactionEffectPorts[r.Key], r.Effects...)
		g.ReactionActions[r.Key] = append(g.ReactionActions[r.Key], r.ScheduledActions...)

		lr := levelReaction{Level: r.Level, Key: r.Key}
		for _, p := range r.Triggers {
			g.PortTriggers[p] = append(g.PortTriggers[p], lr)
		}
		for _, a := range r.ActionTriggers {
			g.ActionTriggers[a] = append(g.ActionTriggers[a], lr)
		}
		if r.IsStartup {
			g.StartupReactions = append(g.StartupReactions, lr)
		}
		if r.IsShutdown {
			g.ShutdownReactions = append(g.ShutdownReactions, lr)
		}
	}

	sortLevelReactions := func(s []levelReaction) {
		sort.Slice(s, func(i, j int) bool {
			if s[i].Level != s[j].Level {
				return s[i].Level < s[j].Level
			}
			return s[i].Key < s[j].Key
		})
	}
	for _, s := range g.PortTriggers {
		sortLevelReactions(s)
	}
	for _, s := range g.ActionTriggers {
		sortLevelReactions(s)
	}
	sortLevelReactions(g.StartupReactions)
	sortLevelReactions(g.ShutdownReactions)

	return g, nil
}

