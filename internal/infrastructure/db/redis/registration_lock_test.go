package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestLock(t *testing.T, ttl time.Duration) (*RegistrationLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRegistrationLock(client, ttl, zerolog.Nop()), mr
}

func TestRegistrationLock_AcquireAndRelease(t *testing.T) {
	lock, mr := newTestLock(t, time.Minute)
	ctx := context.Background()

	release, ok, err := lock.Acquire(ctx, "a@b.com")
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if !mr.Exists("register:a@b.com") {
		t.Fatal("expected lock key to exist")
	}
	if ttl := mr.TTL("register:a@b.com"); ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %v", ttl)
	}

	if _, ok, err := lock.Acquire(ctx, "a@b.com"); err != nil || ok {
		t.Fatalf("second acquire should be refused: ok=%v err=%v", ok, err)
	}
	if _, ok, err := lock.Acquire(ctx, "other@b.com"); err != nil || !ok {
		t.Fatalf("different email should not contend: ok=%v err=%v", ok, err)
	}

	release(ctx)
	if mr.Exists("register:a@b.com") {
		t.Fatal("expected lock key to be released")
	}
	if _, ok, err := lock.Acquire(ctx, "a@b.com"); err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
}

func TestRegistrationLock_ReleaseKeepsNewerHolder(t *testing.T) {
	lock, mr := newTestLock(t, time.Second)
	ctx := context.Background()

	staleRelease, ok, err := lock.Acquire(ctx, "a@b.com")
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}

	mr.FastForward(2 * time.Second)

	_, ok, err = lock.Acquire(ctx, "a@b.com")
	if err != nil || !ok {
		t.Fatalf("acquire after expiry: ok=%v err=%v", ok, err)
	}
	holder, _ := mr.Get("register:a@b.com")

	staleRelease(ctx)

	current, err := mr.Get("register:a@b.com")
	if err != nil || current != holder {
		t.Fatalf("stale release removed newer lock: value=%q err=%v", current, err)
	}
}

func TestRegistrationLock_DefaultTTL(t *testing.T) {
	lock, _ := newTestLock(t, 0)
	if lock.ttl != DefaultLockTTL {
		t.Fatalf("expected default ttl %v, got %v", DefaultLockTTL, lock.ttl)
	}
}

func TestRegistrationLock_ServerDown(t *testing.T) {
	lock, mr := newTestLock(t, time.Minute)
	mr.Close()

	if _, ok, err := lock.Acquire(context.Background(), "a@b.com"); err == nil || ok {
		t.Fatalf("expected error with redis down: ok=%v err=%v", ok, err)
	}
}
