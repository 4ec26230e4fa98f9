package broadcast

import (
	"context"
	"sync"
)

// MemoryBroadcaster fans messages out inside one process. A subscriber
// whose buffer is full misses the message and is dropped; its Receive
// channel is closed so the consumer can resubscribe.
// All methods are safe for concurrent use.
type MemoryBroadcaster[T any] struct {
	subscribers map[*subscriber[T]]struct{}
	bufferSize  int
	closed      bool
	done        chan struct{}
	mu          sync.RWMutex
	wg          sync.WaitGroup
}

var _ Broadcaster[struct{}] = (*MemoryBroadcaster[struct{}])(nil)

// NewMemoryBroadcaster creates a broadcaster whose subscribers buffer
// bufferSize messages each, at least one.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	return &MemoryBroadcaster[T]{
		subscribers: make(map[*subscriber[T]]struct{}),
		bufferSize:  max(bufferSize, 1),
		done:        make(chan struct{}),
	}
}

// Subscribe registers a subscriber that is removed when ctx is done. On a
// closed broadcaster it returns an already closed subscriber.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context, opts ...SubscribeOption[T]) Subscriber[T] {
	sub := newSubscriber(b.bufferSize, opts...)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		_ = sub.Close()
		return sub
	}
	b.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			select {
			case <-ctx.Done():
				b.unsubscribe(sub)
			case <-b.done:
			}
		}()
	}
	return sub
}

// Broadcast never blocks on a subscriber and always returns nil, except
// after Close.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	var slow []*subscriber[T]
	for sub := range b.subscribers {
		if !sub.send(msg) {
			slow = append(slow, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range slow {
		b.unsubscribe(sub)
	}
	return nil
}

// Subscribers returns the number of live subscriptions.
func (b *MemoryBroadcaster[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber and waits for the context watchers to
// exit. Later calls are no-ops.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	for sub := range b.subscribers {
		_ = sub.Close()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *MemoryBroadcaster[T]) unsubscribe(sub *subscriber[T]) {
	b.mu.Lock()
	delete(b.subscribers, sub)
	b.mu.Unlock()
	_ = sub.Close()
}
