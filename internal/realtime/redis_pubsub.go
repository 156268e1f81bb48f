package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// FeedChannel is the Redis channel carrying video feed events.
	FeedChannel    = "videos:events"
	publishTimeout = 5 * time.Second
)

// redisPayload is the message published to Redis for cross-instance broadcast.
type redisPayload struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	At    int64           `json:"at"`
}

// RedisPubSub implements Publisher and Subscriber using Redis pub/sub.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge for feed events.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPubSub{client: client, logger: logger}
}

// PublishEvent publishes an event to the feed channel.
func (r *RedisPubSub) PublishEvent(event string, payload []byte) error {
	body, err := json.Marshal(redisPayload{Event: event, Data: payload, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, FeedChannel, body).Err()
}

// Subscribe subscribes to the feed channel and calls handler for each message.
// Returns a cancel function to stop the subscription.
func (r *RedisPubSub) Subscribe(handler func(event string, payload []byte)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, FeedChannel)
	if _, err = pubsub.Receive(ctx); err != nil {
		cancelCtx()
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p redisPayload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					r.logger.Warn("invalid feed payload", zap.Error(err))
					continue
				}
				handler(p.Event, p.Data)
			}
		}
	}()
	return cancelCtx, nil
}
