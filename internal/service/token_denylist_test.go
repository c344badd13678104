package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisKVClient struct {
	lastSetKey string
	lastSetVal interface{}
	lastSetTTL time.Duration
	lastExists []string

	setErr    error
	existsErr error
	existsN   int64
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetVal = value
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastExists = keys
	cmd := redis.NewIntCmd(ctx)
	if m.existsErr != nil {
		cmd.SetErr(m.existsErr)
		return cmd
	}
	cmd.SetVal(m.existsN)
	return cmd
}

func TestMemoryTokenDenylist_ExpiresEntries(t *testing.T) {
	clock := newFakeClock()
	list := NewMemoryTokenDenylist().(*memoryTokenDenylist)
	list.now = clock.Now
	ctx := context.Background()

	ok, err := list.IsRevoked(ctx, "missing")
	if err != nil || ok {
		t.Fatalf("expected missing jti false,nil; got %v,%v", ok, err)
	}

	if err := list.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	ok, err = list.IsRevoked(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("expected jti revoked, got %v,%v", ok, err)
	}

	clock.Advance(2 * time.Minute)
	ok, err = list.IsRevoked(ctx, "jti-1")
	if err != nil || ok {
		t.Fatalf("expected entry expired, got %v,%v", ok, err)
	}
}

func TestMemoryTokenDenylist_IgnoresEmptyOrExpired(t *testing.T) {
	list := NewMemoryTokenDenylist()
	ctx := context.Background()

	if err := list.Revoke(ctx, "", time.Minute); err != nil {
		t.Fatalf("empty jti should be no-op, got %v", err)
	}
	if err := list.Revoke(ctx, "jti-2", 0); err != nil {
		t.Fatalf("non-positive ttl should be no-op, got %v", err)
	}
	if ok, _ := list.IsRevoked(ctx, "jti-2"); ok {
		t.Fatalf("expected jti with zero ttl to be ignored")
	}
}

func TestRedisTokenDenylist_Basics(t *testing.T) {
	mock := &mockRedisKVClient{existsN: 1}
	list := &redisTokenDenylist{client: mock, prefix: "auth:denylist:"}
	ctx := context.Background()

	if err := list.Revoke(ctx, " j1 ", 5*time.Minute); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if mock.lastSetKey != "auth:denylist:j1" || mock.lastSetTTL != 5*time.Minute {
		t.Fatalf("unexpected set: %q %v", mock.lastSetKey, mock.lastSetTTL)
	}

	ok, err := list.IsRevoked(ctx, " j1 ")
	if err != nil || !ok {
		t.Fatalf("expected revoked true,nil; got %v,%v", ok, err)
	}
	if len(mock.lastExists) != 1 || mock.lastExists[0] != "auth:denylist:j1" {
		t.Fatalf("unexpected exists key: %+v", mock.lastExists)
	}
}

func TestRedisTokenDenylist_ErrorPaths(t *testing.T) {
	mock := &mockRedisKVClient{
		setErr:    errors.New("set failed"),
		existsErr: errors.New("exists failed"),
	}
	list := &redisTokenDenylist{client: mock, prefix: "auth:denylist:"}
	ctx := context.Background()

	if err := list.Revoke(ctx, "", time.Minute); err != nil {
		t.Fatalf("empty jti should be no-op, got %v", err)
	}
	if ok, err := list.IsRevoked(ctx, ""); err != nil || ok {
		t.Fatalf("empty jti should be false,nil; got %v,%v", ok, err)
	}
	if err := list.Revoke(ctx, "j2", time.Minute); err == nil {
		t.Fatalf("expected set error")
	}
	if _, err := list.IsRevoked(ctx, "j2"); err == nil {
		t.Fatalf("expected exists error")
	}
}
