package store

import (
	"slices"
	"sync"
)

// Subscription is a registered mutation callback.
type Subscription struct {
	id   uint64
	subs *subscriptions
	once sync.Once
}

// Unsubscribe stops further callbacks. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.subs.remove(s.id)
	})
}

type subscriptions struct {
	mu        sync.Mutex
	next      uint64
	callbacks map[uint64]func()
}

func newSubscriptions() *subscriptions {
	return &subscriptions{callbacks: make(map[uint64]func())}
}

func (s *subscriptions) add(fn func()) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.callbacks[s.next] = fn
	return &Subscription{id: s.next, subs: s}
}

func (s *subscriptions) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.callbacks, id)
}

func (s *subscriptions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}

// notify calls every registered callback once. Callbacks run without the
// lock held so they may subscribe, unsubscribe or read the store.
func (s *subscriptions) notify() {
	s.mu.Lock()
	ids := make([]uint64, 0, len(s.callbacks))
	for id := range s.callbacks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.callbacks[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
