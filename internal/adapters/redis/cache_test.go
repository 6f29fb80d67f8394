package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "ratecompass/internal/adapters/redis"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var out map[string]any
	if ok, err := c.Get(ctx, "reviews:c-1:42", &out); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := map[string]any{"count": 3.0, "results": []any{}}
	if err := c.Set(ctx, "reviews:c-1:42", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("ratecompass:reviews:c-1:42") {
		t.Fatalf("expected prefixed key, have %v", mr.Keys())
	}

	ok, err := c.Get(ctx, "reviews:c-1:42", &out)
	if !ok || err != nil || out["count"] != 3.0 {
		t.Fatalf("unexpected hit: ok=%v err=%v out=%+v", ok, err, out)
	}

	if err := c.Del(ctx, "reviews:c-1:42"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := c.Get(ctx, "reviews:c-1:42", &out); ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", map[string]any{"count": 1}, 30); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var out map[string]any
	if ok, _ := c.Get(ctx, "k", &out); ok {
		t.Fatalf("expected entry to expire")
	}
}
