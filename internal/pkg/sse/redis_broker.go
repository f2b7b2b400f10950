package sse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBroker relays chat frames between API instances over Redis pub/sub.
type RedisBroker struct {
	client *redis.Client
	topic  string
	ready  chan struct{}
	logger zerolog.Logger
}

// NewRedisBroker creates a broker on topic.
func NewRedisBroker(client *redis.Client, topic string, logger zerolog.Logger) *RedisBroker {
	return &RedisBroker{
		client: client,
		topic:  topic,
		ready:  make(chan struct{}),
		logger: logger,
	}
}

// Ready is closed once the subscription is confirmed by Redis.
func (b *RedisBroker) Ready() <-chan struct{} { return b.ready }

// Publish sends an envelope to every instance.
func (b *RedisBroker) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run subscribes to the topic and hands every envelope to deliver until
// ctx is done.
func (b *RedisBroker) Run(ctx context.Context, deliver func(Envelope)) error {
	pubsub := b.client.Subscribe(ctx, b.topic)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	close(b.ready)
	b.logger.Info().Str("topic", b.topic).Msg("Chat broker subscribed")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn().Err(err).Msg("Discarding malformed chat envelope")
				continue
			}
			deliver(env)
		}
	}
}
