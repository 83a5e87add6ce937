// Package pubsub is a synchronous, keyed publish/subscribe bus. Handlers run
// on the publisher's goroutine, in subscription order, before Publish returns.
package pubsub

import (
	"sort"
	"sync"
)

// Handler receives one published message
type Handler[K comparable, V any] func(key K, msg V)

// Bus delivers messages published under a key to that key's subscribers and
// to every wildcard subscriber.
type Bus[K comparable, V any] struct {
	mu       sync.RWMutex
	nextID   uint64
	keyed    map[K]map[uint64]Handler[K, V]
	wildcard map[uint64]Handler[K, V]
}

// NewBus creates an empty bus
func NewBus[K comparable, V any]() *Bus[K, V] {
	return &Bus[K, V]{
		keyed:    make(map[K]map[uint64]Handler[K, V]),
		wildcard: make(map[uint64]Handler[K, V]),
	}
}

// Subscribe registers fn for messages published under key. The returned func
// removes the subscription and is safe to call more than once.
func (b *Bus[K, V]) Subscribe(key K, fn Handler[K, V]) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.keyed[key] == nil {
		b.keyed[key] = make(map[uint64]Handler[K, V])
	}
	b.keyed[key][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if subs := b.keyed[key]; subs != nil {
			delete(subs, id)
			if len(subs) == 0 {
				delete(b.keyed, key)
			}
		}
	}
}

// SubscribeAll registers fn for every message regardless of key
func (b *Bus[K, V]) SubscribeAll(fn Handler[K, V]) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.wildcard[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.wildcard, id)
	}
}

// Publish calls every matching handler. The subscriber set is snapshotted
// first so a handler may unsubscribe itself without deadlocking.
func (b *Bus[K, V]) Publish(key K, msg V) int {
	b.mu.RLock()
	handlers := collect(b.keyed[key], b.wildcard)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(key, msg)
	}
	return len(handlers)
}

// SubscriberCount returns the number of handlers registered for key,
// wildcard subscribers excluded
func (b *Bus[K, V]) SubscriberCount(key K) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.keyed[key])
}

// Clear drops every subscription
func (b *Bus[K, V]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keyed = make(map[K]map[uint64]Handler[K, V])
	b.wildcard = make(map[uint64]Handler[K, V])
}

// collect merges keyed and wildcard handlers in subscription order
func collect[K comparable, V any](sets ...map[uint64]Handler[K, V]) []Handler[K, V] {
	ids := make([]uint64, 0)
	merged := make(map[uint64]Handler[K, V])
	for _, set := range sets {
		for id, h := range set {
			ids = append(ids, id)
			merged[id] = h
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Handler[K, V], len(ids))
	for i, id := range ids {
		out[i] = merged[id]
	}
	return out
}
