package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"guysocial/internal/common"
	"guysocial/internal/dbmysql"
)

// Bus is the boundary to the platform's realtime transport. Reconnect
// and backoff belong to the transport, not to subscribers.
type Bus interface {
	Subscribe(ctx context.Context, viewerID uint64) (Subscription, error)
}

// Subscription is one viewer session's push feed of inbound messages.
type Subscription interface {
	ID() string
	Events() <-chan *dbmysql.Message
	Close() error
}

// RedisBus implements the bus over redis pub/sub, one channel per
// receiving user.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func channelFor(userID uint64) string {
	return fmt.Sprintf("user:%d:messages", userID)
}

// PublishMessage pushes an inserted message to its receiver's channel.
func (b *RedisBus) PublishMessage(ctx context.Context, msg *dbmysql.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message event: %w", err)
	}
	if err := b.client.Publish(ctx, channelFor(msg.ReceiverID), data).Err(); err != nil {
		return common.NewDependencyError("realtime bus", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, viewerID uint64) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channelFor(viewerID))

	// Confirm the subscription before handing it out.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, common.NewDependencyError("realtime bus", err)
	}

	sub := &redisSubscription{
		id:     uuid.NewString(),
		pubsub: pubsub,
		out:    make(chan *dbmysql.Message, 32),
	}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	id     string
	pubsub *redis.PubSub
	out    chan *dbmysql.Message
}

func (s *redisSubscription) ID() string {
	return s.id
}

func (s *redisSubscription) Events() <-chan *dbmysql.Message {
	return s.out
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}

// pump decodes raw bus payloads into message events. Malformed
// payloads are logged and skipped, never fatal.
func (s *redisSubscription) pump() {
	defer close(s.out)
	for raw := range s.pubsub.Channel() {
		var msg dbmysql.Message
		if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
			log.Printf("Subscription %s: dropping malformed event: %v", s.id, err)
			continue
		}
		s.out <- &msg
	}
}
