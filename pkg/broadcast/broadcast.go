package broadcast

import (
	"context"
	"sync"
)

// Message wraps data of type T for type-safe broadcasting.
type Message[T any] struct {
	Data T
}

// Subscriber receives messages from a Broadcaster.
// Implementations must be safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns the channel messages arrive on. It is closed when the
	// subscriber or its broadcaster closes.
	Receive(ctx context.Context) <-chan Message[T]

	// Close releases the subscription. It is idempotent.
	Close() error
}

// Broadcaster sends messages to multiple subscribers. Slow consumers lose
// messages instead of blocking the sender.
type Broadcaster[T any] interface {
	// Subscribe registers a subscriber that lives until ctx is done or it is
	// closed.
	Subscribe(ctx context.Context, opts ...SubscribeOption[T]) Subscriber[T]

	// Broadcast delivers msg to every matching subscriber.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Close shuts down the broadcaster and closes all subscribers.
	Close() error
}

// SubscribeOption configures one subscription.
type SubscribeOption[T any] func(*subscriber[T])

// WithFilter delivers only messages for which keep returns true. Filtered
// messages never occupy the subscriber's buffer.
func WithFilter[T any](keep func(T) bool) SubscribeOption[T] {
	return func(s *subscriber[T]) {
		s.filter = keep
	}
}

// WithBufferSize overrides the broadcaster's buffer size for one
// subscriber.
func WithBufferSize[T any](n int) SubscribeOption[T] {
	return func(s *subscriber[T]) {
		if n > 0 {
			s.ch = make(chan Message[T], n)
		}
	}
}

type subscriber[T any] struct {
	ch     chan Message[T]
	filter func(T) bool
	closed bool
	mu     sync.RWMutex
}

func newSubscriber[T any](bufferSize int, opts ...SubscribeOption[T]) *subscriber[T] {
	s := &subscriber[T]{ch: make(chan Message[T], bufferSize)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *subscriber[T]) Receive(ctx context.Context) <-chan Message[T] {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

// send reports false when the subscriber is closed or its buffer is full.
// A message the filter rejects counts as delivered.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	if s.filter != nil && !s.filter(msg.Data) {
		return true
	}

	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
