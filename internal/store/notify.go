package store

import "sync"

// oneShot is an edge-triggered signal that fires exactly once: every current
// and future waiter observes the same close. Unlike the repeatable broadcast
// in the process package, a finished signal never rearms — a task settles
// once and is frozen forever, so there is no next edge to wait for.
type oneShot struct {
	mu   sync.Mutex
	ch   chan struct{}
	done bool
}

func newOneShot() *oneShot {
	return &oneShot{ch: make(chan struct{})}
}

func (o *oneShot) wait() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ch
}

// fire closes the channel on its first call; subsequent calls are no-ops,
// matching settle's own idempotence guarantee one layer up.
func (o *oneShot) fire() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return
	}
	o.done = true
	close(o.ch)
}
