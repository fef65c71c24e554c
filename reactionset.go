package reactorcore

import "math/bits"

// ReactionSet is a dense bitset over reaction keys, partitioned by level
// (spec.md §3 "ReactionSet", §4.5). Membership is idempotent: inserting an
// already-present reaction is a no-op, which is what guarantees a reaction
// triggered by two simultaneous signals still executes exactly once per
// tag (spec.md §8 property 9, "Idempotent triggering").
type ReactionSet struct {
	levels [][]uint64 // levels[l] is a bitset (one bit per reaction key) for level l
	width  int         // words per level, sized to the largest reaction key + 1
}

// NewReactionSet constructs an empty set sized for maxLevel+1 levels and
// reaction keys in [0, numReactions).
func NewReactionSet(maxLevel, numReactions int) *ReactionSet {
	width := (numReactions + 63) / 64
	if width == 0 {
		width = 1
	}
	levels := make([][]uint64, maxLevel+1)
	for i := range levels {
		levels[i] = make([]uint64, width)
	}
	return &ReactionSet{levels: levels, width: width}
}

// Insert adds (level, key) to the set; a no-op if already present.
func (s *ReactionSet) Insert(level int, key ReactionKey) {
	word, bit := int(key)/64, uint(int(key)%64)
	s.levels[level][word] |= 1 << bit
}

// Contains reports whether (level, key) is present.
func (s *ReactionSet) Contains(level int, key ReactionKey) bool {
	word, bit := int(key)/64, uint(int(key)%64)
	return s.levels[level][word]&(1<<bit) != 0
}

// DrainLevel returns every reaction key present at level l, in ascending
// key order, and clears that level (spec.md §4.5 "drain_level").
func (s *ReactionSet) DrainLevel(l int) []ReactionKey {
	var out []ReactionKey
	words := s.levels[l]
	for wi, w := range words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out = append(out, ReactionKey(wi*64+tz))
			w &= w - 1
		}
	}
	for i := range words {
		words[i] = 0
	}
	return out
}

// MaxLevel returns the highest level this set has storage for.
func (s *ReactionSet) MaxLevel() int { return len(s.levels) - 1 }

// Merge ORs other into s, level by level, preserving idempotency.
func (s *ReactionSet) Merge(other *ReactionSet) {
	for l := range s.levels {
		if l >= len(other.levels) {
			break
		}
		for w := range s.levels[l] {
			s.levels[l][w] |= other.levels[l][w]
		}
	}
}

// Empty reports whether no reaction key is present at any level.
func (s *ReactionSet) Empty() bool {
	for _, words := range s.levels {
		for _, w := range words {
			if w != 0 {
				return false
			}
		}
	}
	return true
}
