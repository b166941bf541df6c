package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisTTL is how long an idle session survives before Redis expires
// it. Every Append refreshes the clock.
const DefaultRedisTTL = 24 * time.Hour

// RedisStore is a Store backed by Redis lists, for deployments that run more
// than one server instance against shared session state.
type RedisStore struct {
	client       *redis.Client
	maxExchanges int
	ttl          time.Duration
}

// NewRedisStore connects to Redis at addr. maxExchanges <= 0 falls back to
// DefaultMaxExchanges, ttl <= 0 to DefaultRedisTTL.
func NewRedisStore(addr, password string, db, maxExchanges int, ttl time.Duration) *RedisStore {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client, maxExchanges: maxExchanges, ttl: ttl}
}

// Ping verifies the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("session: redis ping: %w", err)
	}
	return nil
}

func exchangesKey(id string) string { return fmt.Sprintf("session:%s:exchanges", id) }
func markerKey(id string) string    { return fmt.Sprintf("session:%s", id) }

// Create allocates a new session id and sets its existence marker.
func (s *RedisStore) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.client.Set(ctx, markerKey(id), "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session: redis create: %w", err)
	}
	return id, nil
}

// History returns the formatted exchange history. A missing list reads as an
// empty one, so unknown ids come back as fresh sessions.
func (s *RedisStore) History(ctx context.Context, id string) (string, error) {
	raw, err := s.client.LRange(ctx, exchangesKey(id), 0, -1).Result()
	if err != nil {
		return "", fmt.Errorf("session: redis history: %w", err)
	}

	exchanges := make([]Exchange, 0, len(raw))
	for _, item := range raw {
		var e Exchange
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return "", fmt.Errorf("session: redis history decode: %w", err)
		}
		exchanges = append(exchanges, e)
	}
	return formatHistory(exchanges), nil
}

// Append pushes the exchange and trims the list to the newest maxExchanges
// in one transactional pipeline, refreshing the session TTL.
func (s *RedisStore) Append(ctx context.Context, id, userText, assistantText string) error {
	payload, err := json.Marshal(Exchange{User: userText, Assistant: assistantText})
	if err != nil {
		return fmt.Errorf("session: redis append encode: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, exchangesKey(id), payload)
	pipe.LTrim(ctx, exchangesKey(id), int64(-s.maxExchanges), -1)
	pipe.Set(ctx, markerKey(id), "1", s.ttl)
	pipe.Expire(ctx, exchangesKey(id), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session: redis append: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("session: redis close: %w", err)
	}
	return nil
}
