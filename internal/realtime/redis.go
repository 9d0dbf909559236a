package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker relays updates through a Redis channel so that subscribers on
// every server instance see views tracked by any instance.
type RedisBroker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *zap.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

var _ Broker = (*RedisBroker)(nil)

func NewRedisBroker(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroker{client: client, channel: channel, hub: hub, logger: logger}
}

// Start subscribes to the channel and relays messages into the local hub
// until ctx is cancelled or Close is called. It returns once the
// subscription is confirmed by Redis.
func (b *RedisBroker) Start(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	b.mu.Lock()
	b.pubsub = pubsub
	b.done = make(chan struct{})
	b.mu.Unlock()

	go b.relay(ctx, pubsub, b.done)
	return nil
}

func (b *RedisBroker) relay(ctx context.Context, pubsub *redis.PubSub, done chan struct{}) {
	defer close(done)
	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var update ViewUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				b.logger.Warn("drop malformed view update", zap.String("payload", msg.Payload), zap.Error(err))
				continue
			}
			b.hub.dispatch(update)
		}
	}
}

func (b *RedisBroker) Publish(ctx context.Context, update ViewUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBroker) Subscribe(postID uint) *Subscription {
	return b.hub.Subscribe(postID)
}

// Close stops relaying and waits for the relay goroutine to exit.
func (b *RedisBroker) Close() error {
	b.mu.Lock()
	pubsub, done := b.pubsub, b.done
	b.pubsub = nil
	b.mu.Unlock()

	if pubsub == nil {
		return nil
	}
	err := pubsub.Close()
	<-done
	return err
}
