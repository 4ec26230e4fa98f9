package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/tribehub/notify/pkg/logger"
)

// RedisBroadcaster relays messages through a Redis pub/sub channel so
// subscribers on every replica see messages broadcast on any of them.
// Messages travel as JSON; local delivery goes through a MemoryBroadcaster
// with the same slow-consumer semantics.
type RedisBroadcaster[T any] struct {
	client  redis.UniversalClient
	channel string
	local   *MemoryBroadcaster[T]
	pubsub  *redis.PubSub
	logger  *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

var _ Broadcaster[struct{}] = (*RedisBroadcaster[struct{}])(nil)

// RedisOption configures a RedisBroadcaster.
type RedisOption func(*redisOptions)

type redisOptions struct {
	bufferSize int
	logger     *slog.Logger
}

// WithRedisBufferSize sets the per-subscriber buffer. Defaults to 16.
func WithRedisBufferSize(n int) RedisOption {
	return func(o *redisOptions) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithRedisLogger sets the logger used for undecodable messages.
func WithRedisLogger(l *slog.Logger) RedisOption {
	return func(o *redisOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewRedisBroadcaster subscribes to channel and starts relaying. It
// returns once Redis has confirmed the subscription.
func NewRedisBroadcaster[T any](ctx context.Context, client redis.UniversalClient, channel string, opts ...RedisOption) (*RedisBroadcaster[T], error) {
	if client == nil {
		return nil, errors.New("broadcast: redis client is required")
	}
	if channel == "" {
		return nil, errors.New("broadcast: redis channel is required")
	}

	o := redisOptions{bufferSize: 16, logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("broadcast: subscribe to %s: %w", channel, err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b := &RedisBroadcaster[T]{
		client:  client,
		channel: channel,
		local:   NewMemoryBroadcaster[T](o.bufferSize),
		pubsub:  pubsub,
		logger:  o.logger.With(logger.Component("broadcast"), slog.String("redis_channel", channel)),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go b.relay(runCtx)
	return b, nil
}

func (b *RedisBroadcaster[T]) relay(ctx context.Context) {
	defer close(b.done)
	for msg := range b.pubsub.Channel() {
		b.deliver(ctx, msg.Payload)
	}
}

func (b *RedisBroadcaster[T]) deliver(ctx context.Context, payload string) {
	var data T
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		b.logger.WarnContext(ctx, "dropping undecodable broadcast", logger.Error(err))
		return
	}
	_ = b.local.Broadcast(ctx, Message[T]{Data: data})
}

// Subscribe registers a local subscriber.
func (b *RedisBroadcaster[T]) Subscribe(ctx context.Context, opts ...SubscribeOption[T]) Subscriber[T] {
	return b.local.Subscribe(ctx, opts...)
}

// Broadcast publishes msg to Redis. Local subscribers receive it when
// Redis echoes it back, the same way remote replicas do.
func (b *RedisBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}

	payload, err := json.Marshal(msg.Data)
	if err != nil {
		return errors.Join(ErrEncode, err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return errors.Join(ErrPublish, err)
	}
	return nil
}

// Close unsubscribes from Redis and closes local subscribers. The client
// is left open for its owner to close.
func (b *RedisBroadcaster[T]) Close() error {
	var err error
	b.once.Do(func() {
		err = b.pubsub.Close()
		<-b.done
		b.cancel()
		_ = b.local.Close()
	})
	return err
}
