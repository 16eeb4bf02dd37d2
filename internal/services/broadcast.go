package services

import "sync"

const subscriberBuffer = 64

// broadcaster fans messages out to subscribers without ever blocking the
// publisher. Slow subscribers lose intermediate messages.
type broadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]chan T
	next   uint64
	closed bool
}

// subscribe registers a new subscriber whose channel starts with seed.
func (b *broadcaster[T]) subscribe(seed ...T) (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, subscriberBuffer)
	for _, msg := range seed {
		sendNonBlocking(ch, msg)
	}
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	if b.subs == nil {
		b.subs = make(map[uint64]chan T)
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

func (b *broadcaster[T]) publish(msg T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		sendNonBlocking(ch, msg)
	}
}

// publishLatest makes room in full subscriber buffers by dropping the oldest
// pending message, so msg is always delivered.
func (b *broadcaster[T]) publishLatest(msg T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		sendNonBlocking(ch, msg)
	}
}

func (b *broadcaster[T]) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

func sendNonBlocking[T any](ch chan<- T, msg T) {
	select {
	case ch <- msg:
	default:
	}
}
