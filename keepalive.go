package reactorcore

import "sync"

// KeepAlive is a single atomic shutdown flag paired with a broadcast
// signal, shared between the controller thread and any foreign threads
// spawned by reactions (spec.md §3 "Lifecycles", §4.10 "Keep-alive").
// Foreign threads are expected to poll IsShutdown or to be joined by a
// shutdown reaction.
//
// It is built on sync.Cond with a rechecked predicate: Await returns at
// once when Shutdown has already fired, and otherwise blocks until the
// single Broadcast that the first Shutdown call performs, so both
// orderings of Shutdown and Await are handled uniformly.
type KeepAlive struct {
	mu       sync.Mutex
	cond     *sync.Cond
	shutdown bool
}

// NewKeepAlive constructs a signal in the not-shutdown state.
func NewKeepAlive() *KeepAlive {
	k := &KeepAlive{}
	k.cond = sync.NewCond(&k.mu)
	return k
}

// IsShutdown reports the current state.
func (k *KeepAlive) IsShutdown() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.shutdown
}

// Shutdown sets the flag and wakes every blocked waiter. Idempotent.
func (k *KeepAlive) Shutdown() {
	k.mu.Lock()
	if !k.shutdown {
		k.shutdown = true
		k.cond.Broadcast()
	}
	k.mu.Unlock()
}

// Await blocks until Shutdown has been called, returning immediately if
// it already has been.
func (k *KeepAlive) Await() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for !k.shutdown {
		k.cond.Wait()
	}
}
