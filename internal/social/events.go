package social

import "sync"

// InvalidationFunc is called with the identifier of a user whose social
// graph changed. Subscribers use it to drop derived state (cached feeds).
type InvalidationFunc func(userID string)

// EventBus is an in-process publish/subscribe channel for graph mutations.
// Subscriptions can be released, so long-lived components do not leak
// callbacks across restarts of their dependents.
type EventBus struct {
	mu   sync.RWMutex
	subs map[int]InvalidationFunc
	next int
}

// NewEventBus returns an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]InvalidationFunc)}
}

// Subscribe registers fn and returns a handle that can unsubscribe it.
// Callbacks run synchronously on Publish.
func (b *EventBus) Subscribe(fn InvalidationFunc) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = fn
	return &Subscription{bus: b, id: id}
}

// Publish invokes every subscriber with userID. Callbacks must not block;
// they run on the caller's goroutine.
func (b *EventBus) Publish(userID string) {
	b.mu.RLock()
	fns := make([]InvalidationFunc, 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(userID)
	}
}

// Subscription is a handle to a registered callback.
type Subscription struct {
	bus  *EventBus
	id   int
	once sync.Once
}

// Unsubscribe removes the callback. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
	})
}
