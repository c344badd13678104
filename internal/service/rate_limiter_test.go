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
	result     []interface{}
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

func redisReply(count, pttlMs int64) []interface{} {
	return []interface{}{count, pttlMs}
}

func TestMemoryRateLimiter_SlidingWindow(t *testing.T) {
	clock := newFakeClock()
	limiter := NewMemoryRateLimiter(time.Minute, 2, nil).(*memoryRateLimiter)
	limiter.now = clock.Now
	ctx := context.Background()

	if !limiter.Allow(ctx, "ip:1.2.3.4").Allowed {
		t.Fatalf("expected first hit allowed")
	}
	clock.Advance(15 * time.Second)
	if !limiter.Allow(ctx, "ip:1.2.3.4").Allowed {
		t.Fatalf("expected second hit allowed")
	}
	denied := limiter.Allow(ctx, "ip:1.2.3.4")
	if denied.Allowed {
		t.Fatalf("expected third hit denied")
	}
	if denied.RetryAfter != 45*time.Second {
		t.Fatalf("expected retry when oldest hit leaves the window, got %s", denied.RetryAfter)
	}
	if !limiter.Allow(ctx, "ip:5.6.7.8").Allowed {
		t.Fatalf("expected other key unaffected")
	}

	clock.Advance(46 * time.Second)
	if !limiter.Allow(ctx, "ip:1.2.3.4").Allowed {
		t.Fatalf("expected hit allowed after window")
	}
}

func TestIPKeyNormalizer(t *testing.T) {
	normalize := IPKeyNormalizer(64)
	cases := map[string]string{
		" IP:10.0.0.1 ":                "ip:10.0.0.1",
		"ip:::ffff:10.0.0.1":           "ip:10.0.0.1",
		"ip:2001:db8:1:2:aaaa::1":      "ip:2001:db8:1:2::/64",
		"ip:2001:DB8:1:2:bbbb:cccc::9": "ip:2001:db8:1:2::/64",
		"ip:not-an-ip":                 "ip:not-an-ip",
		"Email:User@Example.com":       "email:user@example.com",
		"   ":                          "",
	}
	for in, want := range cases {
		if got := normalize(in); got != want {
			t.Fatalf("normalize(%q) = %q, want %q", in, got, want)
		}
	}

	if got := IPKeyNormalizer(48)("ip:2001:db8:1:2::1"); got != "ip:2001:db8:1::/48" {
		t.Fatalf("expected /48 grouping, got %q", got)
	}
}

func TestRedisRateLimiterAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisRateLimiter
		if !l.Allow(ctx, "ip:10.0.0.1").Allowed {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		mock := &mockRedisEvaler{result: redisReply(1, 60000)}
		l := newRedisRateLimiter(mock, time.Minute, 3, RedisRateLimiterOptions{})
		if l.Allow(ctx, "   ").Allowed {
			t.Fatalf("expected empty key to be rejected")
		}
		if mock.lastScript != "" {
			t.Fatalf("expected no redis call for empty key")
		}
	})

	t.Run("allow within max with custom options", func(t *testing.T) {
		mock := &mockRedisEvaler{result: redisReply(2, 90000)}
		l := newRedisRateLimiter(mock, 2*time.Minute, 3, RedisRateLimiterOptions{
			Prefix:  "test:rl:",
			Timeout: time.Second,
		})
		if !l.Allow(ctx, " IP:2001:db8::7 ").Allowed {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "test:rl:ip:2001:db8::/64" {
			t.Fatalf("unexpected key, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != int64(120000) {
			t.Fatalf("expected window in milliseconds, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisAllowScript {
			t.Fatalf("expected script to match")
		}
		if l.timeout != time.Second {
			t.Fatalf("expected configured timeout, got %s", l.timeout)
		}
	})

	t.Run("deny reports remaining ttl", func(t *testing.T) {
		l := newRedisRateLimiter(&mockRedisEvaler{result: redisReply(4, 12500)}, time.Minute, 3, RedisRateLimiterOptions{})
		decision := l.Allow(ctx, "ip:10.0.0.1")
		if decision.Allowed {
			t.Fatalf("expected deny when count > max")
		}
		if decision.RetryAfter != 12500*time.Millisecond {
			t.Fatalf("expected retry from key ttl, got %s", decision.RetryAfter)
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := newRedisRateLimiter(&mockRedisEvaler{err: errors.New("redis down")}, time.Minute, 3, RedisRateLimiterOptions{})
		if !l.Allow(ctx, "ip:10.0.0.1").Allowed {
			t.Fatalf("expected fail-open on redis errors")
		}
	})

	t.Run("caller context bounds the call", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		mock := &mockRedisEvaler{err: context.Canceled}
		l := newRedisRateLimiter(mock, time.Minute, 3, RedisRateLimiterOptions{})
		if !l.Allow(cancelled, "ip:10.0.0.1").Allowed {
			t.Fatalf("expected fail-open when the request is gone")
		}
	})
}
