package social

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusPublishReachesAllSubscribers(t *testing.T) {
	bus := NewEventBus()

	var a, b []string
	bus.Subscribe(func(id string) { a = append(a, id) })
	bus.Subscribe(func(id string) { b = append(b, id) })

	bus.Publish("alice")

	assert.Equal(t, []string{"alice"}, a)
	assert.Equal(t, []string{"alice"}, b)
}

func TestEventBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	sub := bus.Subscribe(func(string) { calls++ })

	bus.Publish("alice")
	sub.Unsubscribe()
	bus.Publish("bob")

	assert.Equal(t, 1, calls)
}

func TestEventBusUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewEventBus()
	sub := bus.Subscribe(func(string) {})
	sub.Unsubscribe()
	sub.Unsubscribe()

	// A fresh subscription still works after double-unsubscribe.
	calls := 0
	bus.Subscribe(func(string) { calls++ })
	bus.Publish("alice")
	assert.Equal(t, 1, calls)
}

func TestEventBusConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewEventBus()

	var mu sync.Mutex
	seen := 0
	bus.Subscribe(func(string) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Publish("alice")
		}()
		go func() {
			defer wg.Done()
			sub := bus.Subscribe(func(string) {})
			sub.Unsubscribe()
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 8, seen)
}
