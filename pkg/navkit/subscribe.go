package navkit

import "sync"

// Subscribe registers callback to run after every state change,
// regardless of origin. Subscribers receive no arguments; they re-read
// the current snapshot via State. The returned function removes exactly
// this registration; calling it twice is a no-op.
func (n *Navigator) Subscribe(callback func()) (unsubscribe func()) {
	return n.subs.add(callback)
}

// subscriberSet is an identity-unique set of zero-argument callbacks.
// Each registration gets its own id, so the same function value may be
// subscribed more than once and each registration removed independently.
type subscriberSet struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]func()
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{subs: make(map[uint64]func())}
}

func (s *subscriberSet) add(callback func()) func() {
	if callback == nil {
		return func() {}
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = callback
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// broadcast invokes all subscribers. Uses copy-before-notify so a
// subscriber may subscribe or unsubscribe during delivery.
func (s *subscriberSet) broadcast() {
	s.mu.Lock()
	callbacks := make([]func(), 0, len(s.subs))
	for _, cb := range s.subs {
		callbacks = append(callbacks, cb)
	}
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

func (s *subscriberSet) clear() {
	s.mu.Lock()
	s.subs = make(map[uint64]func())
	s.mu.Unlock()
}

func (s *subscriberSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
