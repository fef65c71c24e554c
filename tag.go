package reactorcore

import (
	"fmt"
	"time"
)

// Tag is a coordinate in superdense logical time: a signed offset from the
// scheduler's origin instant, paired with a microstep that orders events
// simultaneous in wall-clock terms. Total order is lexicographic on
// (Offset, Microstep).
type Tag struct {
	Offset    time.Duration
	Microstep uint64
}

// ZeroTag is the program-start tag (0, 0).
var ZeroTag = Tag{}

// ForeverTag is a sentinel strictly greater than any tag a real program can
// reach; it is used only as a heap/compare bound, never scheduled.
var ForeverTag = Tag{Offset: time.Duration(1<<63 - 1), Microstep: ^uint64(0)}

// NewTag constructs a tag directly from an offset and microstep.
func NewTag(offset time.Duration, microstep uint64) Tag {
	return Tag{Offset: offset, Microstep: microstep}
}

// Compare returns -1, 0, or 1 as t sorts before, equal to, or after other.
func (t Tag) Compare(other Tag) int {
	switch {
	case t.Offset < other.Offset:
		return -1
	case t.Offset > other.Offset:
		return 1
	case t.Microstep < other.Microstep:
		return -1
	case t.Microstep > other.Microstep:
		return 1
	default:
		return 0
	}
}

// Before reports whether t sorts strictly before other.
func (t Tag) Before(other Tag) bool { return t.Compare(other) < 0 }

// After reports whether t sorts strictly after other.
func (t Tag) After(other Tag) bool { return t.Compare(other) > 0 }

// Equal reports whether t and other are the same tag.
func (t Tag) Equal(other Tag) bool { return t == other }

// maxMicrostep guards against silent wraparound; exceeding it is treated as
// a programming error per spec.md §4.1 ("Overflow of microstep ... aborts").
const maxMicrostep = ^uint64(0) - 1

// Delay advances the tag by duration d, per spec.md §3/§4.1:
//   - d == 0 bumps the microstep only, leaving Offset unchanged; this is
//     the mechanism by which a zero-delay logical action self-schedule
//     makes progress without ever producing an unchanged tag.
//   - d  > 0 resets the microstep to 0 and adds d to Offset.
//
// Delay panics if d < 0 or if bumping would overflow Microstep.
func (t Tag) Delay(d time.Duration) Tag {
	if d < 0 {
		panic(fmt.Sprintf("reactorcore: Tag.Delay called with negative duration %v", d))
	}
	if d == 0 {
		if t.Microstep >= maxMicrostep {
			panic("reactorcore: microstep overflow")
		}
		return Tag{Offset: t.Offset, Microstep: t.Microstep + 1}
	}
	return Tag{Offset: t.Offset + d, Microstep: 0}
}

// Pre computes the inverse of Delay: Pre(d) undoes a Delay(d) step.
// Pre(0) is Decrement: it moves one microstep back, borrowing one
// nanosecond from Offset when Microstep is already 0 (spec.md §3).
func (t Tag) Pre(d time.Duration) Tag {
	if d < 0 {
		panic(fmt.Sprintf("reactorcore: Tag.Pre called with negative duration %v", d))
	}
	if d == 0 {
		return t.Decrement()
	}
	return Tag{Offset: t.Offset - d, Microstep: 0}
}

// Decrement moves the tag back by one microstep, borrowing a nanosecond of
// Offset when Microstep is already 0.
func (t Tag) Decrement() Tag {
	if t.Microstep == 0 {
		return Tag{Offset: t.Offset - time.Nanosecond, Microstep: 0}
	}
	return Tag{Offset: t.Offset, Microstep: t.Microstep - 1}
}

// ToWallClock returns the absolute instant this tag denotes, given the
// scheduler's captured origin instant.
func (t Tag) ToWallClock(origin time.Time) time.Time {
	return origin.Add(t.Offset)
}

// TagFromWallClock computes the tag a physical event observed at instant
// now corresponds to, relative to origin, at microstep 0. Callers that need
// a distinct microstep (e.g. to break ties between events landing in the
// same nanosecond) bump it themselves via Delay(0).
func TagFromWallClock(now, origin time.Time) Tag {
	return Tag{Offset: now.Sub(origin), Microstep: 0}
}

// String renders the tag as "(offset, microstep)" for diagnostics and logs.
func (t Tag) String() string {
	return fmt.Sprintf("(%s, %d)", t.Offset, t.Microstep)
}
