package reactorcore

// Port is a typed, single-assignment value slot valid for exactly one tag
// (spec.md §3/§4.2). Its value resets to absent at the start of every tag
// and may be set at most once per tag, only by a reaction that declared the
// port as an effect.
type Port[T any] struct {
	name string
	key  PortKey

	hasValue bool
	value    T
}

// NewPort constructs a named, keyed port with no value present.
func NewPort[T any](name string, key PortKey) *Port[T] {
	return &Port[T]{name: name, key: key}
}

// Name returns the port's declared name, for diagnostics.
func (p *Port[T]) Name() string { return p.name }

// Key returns the port's dense handle into Env.Ports.
func (p *Port[T]) Key() PortKey { return p.key }

// Get returns the value set at the current tag, if any. Calling Get is
// only meaningful from a reaction that listed this port as a trigger or
// use; access-discipline enforcement (UndeclaredAccess) happens at the
// Context layer (context.go), not here — Port itself has no notion of
// "the current reaction".
func (p *Port[T]) Get() (T, bool) {
	return p.value, p.hasValue
}

// IsPresent reports whether a value was set at the current tag. Recovered
// from the original source's explicit is_present query (SPEC_FULL.md §3).
func (p *Port[T]) IsPresent() bool { return p.hasValue }

// Set assigns v as the port's value for the current tag. Returns
// *DoubleSetError if the port already holds a value this tag; callers
// (the Context layer) are expected to have already checked the calling
// reaction declares this port as an effect.
func (p *Port[T]) Set(v T) error {
	if p.hasValue {
		return &DoubleSetError{Port: p.name, Key: p.key}
	}
	p.value = v
	p.hasValue = true
	return nil
}

// Cleanup resets the port to absent. Invoked by the scheduler at the
// boundary between tags (spec.md §4.9 step 4), never by reaction code.
func (p *Port[T]) Cleanup() {
	var zero T
	p.value = zero
	p.hasValue = false
}

// BasePort is the type-erased view of a Port used by code that must hold
// a heterogeneous collection of ports (the scheduler's per-tag cleanup
// sweep, Env's port table) without knowing each port's T.
type BasePort interface {
	Name() string
	Key() PortKey
	IsPresent() bool
	Cleanup()
}

var _ BasePort = (*Port[struct{}])(nil)
