//go:build integration

package session

import (
	"context"
	"os"
	"testing"
	"time"
)

// Test_RedisStore_RoundTrip exercises the Redis backend against a live
// server. Run with:
//
//	REDIS_ADDR=localhost:6379 go test -tags=integration ./internal/session/
func Test_RedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	s := NewRedisStore(addr, os.Getenv("REDIS_PASSWORD"), 0, 2, time.Minute)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	id, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, q := range []string{"q1", "q2", "q3"} {
		if err := s.Append(ctx, id, q, "a-"+q); err != nil {
			t.Fatalf("append %s: %v", q, err)
		}
	}

	got, err := s.History(ctx, id)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := "User: q2\nAssistant: a-q2\nUser: q3\nAssistant: a-q3"
	if got != want {
		t.Errorf("history = %q, want the newest 2 exchanges", got)
	}

	if history, err := s.History(ctx, "unknown-session"); err != nil || history != "" {
		t.Errorf("unknown session: history=%q err=%v, want empty and nil", history, err)
	}
}
