package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/jobwatch/internal/types"
)

// DefaultQueueKey is the Redis list holding fallback entries.
const DefaultQueueKey = "jobwatch:fallback"

// RedisQueue is the durable queue backend: a Redis list trimmed to the cap on
// every append, so the oldest entries fall off the left end.
type RedisQueue struct {
	client *redis.Client
	key    string
	cap    int
}

// NewRedisQueue parses redisURL, verifies connectivity, and returns a queue
// over the given list key.
func NewRedisQueue(ctx context.Context, redisURL, key string, cap int) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if key == "" {
		key = DefaultQueueKey
	}
	if cap <= 0 {
		cap = DefaultQueueCap
	}
	return &RedisQueue{client: client, key: key, cap: cap}, nil
}

// Append pushes the entry onto the right end and trims to the newest cap
// entries in one pipeline round trip.
func (q *RedisQueue) Append(ctx context.Context, entry types.QueueEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal queue entry: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.RPush(ctx, q.key, payload)
	pipe.LTrim(ctx, q.key, int64(-q.cap), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue append: %w", err)
	}
	return nil
}

// List returns entries oldest first. Entries that no longer unmarshal are
// skipped rather than failing the whole read.
func (q *RedisQueue) List(ctx context.Context) ([]types.QueueEntry, error) {
	raw, err := q.client.LRange(ctx, q.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("queue read: %w", err)
	}

	entries := make([]types.QueueEntry, 0, len(raw))
	for _, item := range raw {
		var entry types.QueueEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Len returns the queue length.
func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return int(n), nil
}

// Clear deletes the list.
func (q *RedisQueue) Clear(ctx context.Context) error {
	if err := q.client.Del(ctx, q.key).Err(); err != nil {
		return fmt.Errorf("queue clear: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
