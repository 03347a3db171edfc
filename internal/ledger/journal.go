package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aigate-api/internal/shared"

	"github.com/redis/go-redis/v9"
)

// journalMaxLen caps the stream; trimming is approximate.
const journalMaxLen = 1_000_000

// UsageEvent is one debited request as seen by downstream consumers of the
// usage stream.
type UsageEvent struct {
	RequestID string `json:"request_id"`
	Principal string `json:"principal"`
	Endpoint  string `json:"endpoint"`
	Cost      uint64 `json:"cost"`
	Timestamp int64  `json:"timestamp"`
}

func newUsageEvent(charge shared.Charge) UsageEvent {
	return UsageEvent{
		RequestID: charge.RequestID,
		Principal: charge.Principal,
		Endpoint:  charge.Endpoint,
		Cost:      charge.Cost,
		Timestamp: time.Now().Unix(),
	}
}

// Journal records debits after the ledger accepted them.
type Journal interface {
	Append(ctx context.Context, event UsageEvent) error
}

// RedisJournal appends events to a Redis stream as a single JSON "data"
// field.
type RedisJournal struct {
	client *redis.Client
	stream string
}

func NewRedisJournal(client *redis.Client, stream string) *RedisJournal {
	if stream == "" {
		stream = shared.UsageStreamKey
	}
	return &RedisJournal{client: client, stream: stream}
}

func (j *RedisJournal) Append(ctx context.Context, event UsageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling usage event: %w", err)
	}
	return j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: j.stream,
		MaxLen: journalMaxLen,
		Approx: true,
		Values: map[string]any{"data": string(data)},
	}).Err()
}
