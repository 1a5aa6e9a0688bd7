package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func TestRedisRateLimiterAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisRateLimiter
		if !l.Allow(ctx, "ana@x.com") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := &redisRateLimiter{client: &mockRedisEvaler{result: 1}, window: time.Minute, max: 3, prefix: "submit:rl:"}
		if l.Allow(ctx, "   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 2}
		l := &redisRateLimiter{client: mock, window: 2 * time.Minute, max: 3, prefix: "submit:rl:"}
		if !l.Allow(ctx, " Ana@X.com ") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "submit:rl:ana@x.com" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisSubmitAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := &redisRateLimiter{client: &mockRedisEvaler{result: 4}, window: time.Minute, max: 3, prefix: "submit:rl:"}
		if l.Allow(ctx, "ana@x.com") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisRateLimiter{client: &mockRedisEvaler{err: errors.New("redis down")}, window: time.Minute, max: 3, prefix: "submit:rl:"}
		if !l.Allow(ctx, "ana@x.com") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestMemoryRateLimiterSlidingWindow(t *testing.T) {
	l := NewMemoryRateLimiter(time.Minute, 2).(*memoryRateLimiter)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	if !l.Allow(ctx, "ana@x.com") || !l.Allow(ctx, "ANA@x.com ") {
		t.Fatalf("expected first two hits allowed")
	}
	if l.Allow(ctx, "ana@x.com") {
		t.Fatalf("expected third hit denied")
	}
	if !l.Allow(ctx, "bob@x.com") {
		t.Fatalf("expected other keys unaffected")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow(ctx, "ana@x.com") {
		t.Fatalf("expected hit allowed after window elapsed")
	}
}

func TestMemoryRateLimiterForgetsExpiredEmails(t *testing.T) {
	l := NewMemoryRateLimiter(time.Minute, 2).(*memoryRateLimiter)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if !l.Allow(ctx, email) {
			t.Fatalf("expected %s allowed", email)
		}
	}
	if len(l.hits) != 3 {
		t.Fatalf("expected 3 tracked emails, got %d", len(l.hits))
	}

	now = now.Add(45 * time.Second)
	if !l.Allow(ctx, "a@x.com") {
		t.Fatalf("expected a@x.com allowed")
	}

	now = now.Add(46 * time.Second)
	if !l.Allow(ctx, "d@x.com") {
		t.Fatalf("expected d@x.com allowed")
	}
	if len(l.hits) != 2 {
		t.Fatalf("expected only a@x.com and d@x.com tracked, got %v", l.hits)
	}
	if _, ok := l.hits["b@x.com"]; ok {
		t.Fatalf("expected expired b@x.com removed")
	}
}
