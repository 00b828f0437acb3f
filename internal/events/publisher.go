// Package events publishes domain events to Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Channels the review service publishes on.
const (
	CandidateUpdated   = "EVENT_CANDIDATE_UPDATED"
	CandidatesImported = "EVENT_CANDIDATES_IMPORTED"
	CandidatesSeeded   = "EVENT_CANDIDATES_SEEDED"
)

// Publisher delivers an event payload to a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, event any) error
	Close() error
}

// RedisPublisher publishes JSON-encoded events with PUBLISH.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a Publisher backed by rdb. Closing the publisher
// closes the client.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", channel, err)
	}
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }

// Nop discards every event. It is used when REDIS_URL is not set.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }
