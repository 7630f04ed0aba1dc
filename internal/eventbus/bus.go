// Package eventbus fans values out to in-process subscribers.
package eventbus

import (
	"sync"
	"sync/atomic"
)

// Bus delivers published values to every current subscriber.
//
// Publish never blocks: subscribers get buffered channels and a subscriber
// whose buffer is full misses the value.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    map[uint64]chan T
	seq     atomic.Uint64
	dropped atomic.Uint64
}

func New[T any]() *Bus[T] {
	return &Bus[T]{subs: map[uint64]chan T{}}
}

func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers a channel with the given buffer (8 when <= 0).
// The returned func unsubscribes and closes the channel; it is idempotent.
func (b *Bus[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan T, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			// Publish holds the read lock while sending, so closing under the
			// write lock cannot race a send.
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
}

// Dropped counts values that a full subscriber buffer missed.
func (b *Bus[T]) Dropped() uint64 { return b.dropped.Load() }
