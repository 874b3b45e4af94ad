package events

import (
	"context"
	"encoding/json"
	"fmt"

	"pollstream/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Sink receives pre-serialized envelopes for local fan-out.
type Sink interface {
	BroadcastRaw(data []byte)
}

// RedisRelay carries poll events between instances over redis pub/sub. When
// the relay is active, mutations publish here instead of straight to the hub;
// every instance (including the publisher) receives the event through its
// subscription, so each envelope reaches each local subscriber exactly once.
type RedisRelay struct {
	client  *redis.Client
	sink    Sink
	logger  *logger.Logger
	pubsub  *redis.PubSub
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

func NewRedisRelay(client *redis.Client, sink Sink, l *logger.Logger) *RedisRelay {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisRelay{
		client: client,
		sink:   sink,
		logger: l,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (r *RedisRelay) Start() error {
	r.pubsub = r.client.Subscribe(r.ctx, ChannelPolls)
	if _, err := r.pubsub.Receive(r.ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", ChannelPolls, err)
	}
	r.running = true
	go r.listen()
	return nil
}

func (r *RedisRelay) Stop() error {
	r.cancel()
	r.running = false
	if r.pubsub != nil {
		return r.pubsub.Close()
	}
	return nil
}

func (r *RedisRelay) Publish(ctx context.Context, env Envelope) error {
	if !r.running {
		return fmt.Errorf("relay not started")
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return r.client.Publish(ctx, ChannelPolls, data).Err()
}

func (r *RedisRelay) listen() {
	ch := r.pubsub.Channel()
	for {
		select {
		case <-r.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg == nil {
				continue
			}
			r.sink.BroadcastRaw([]byte(msg.Payload))
		}
	}
}
