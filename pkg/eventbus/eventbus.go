// Package eventbus provides a typed, in-memory publish/subscribe bus.
package eventbus

import (
	"errors"
	"sync"
)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("event bus closed")

const defaultBuffer = 8

// Bus fans events out to subscriber channels. Publish never blocks: when a subscriber's
// buffer is full its oldest undelivered event is discarded to make room.
type Bus[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]chan T
	nextID uint64
	buffer int
	closed bool
}

// New creates a bus whose subscribers get the given channel buffer.
func New[T any](buffer int) *Bus[T] {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bus[T]{subs: make(map[uint64]chan T), buffer: buffer}
}

// Subscribe registers a new subscriber. The returned cancel function unsubscribes and
// closes the channel; it is safe to call more than once.
func (b *Bus[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

// Publish delivers evt to every subscriber and returns how many received it.
func (b *Bus[T]) Publish(evt T) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}
	for _, ch := range b.subs {
		deliver(ch, evt)
	}
	return len(b.subs), nil
}

// Subscribers returns the number of live subscriptions.
func (b *Bus[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later publishes fail with ErrClosed.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

func (b *Bus[T]) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// deliver must be called with the bus lock held; that makes it the only sender on ch.
func deliver[T any](ch chan T, evt T) {
	for {
		select {
		case ch <- evt:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
