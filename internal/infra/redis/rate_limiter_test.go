package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRedis struct {
	counts  map[string]int64
	expires map[string]time.Duration
	incrErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeRedis) Ping(context.Context) error { return nil }
func (f *fakeRedis) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (f *fakeRedis) Get(context.Context, string) (string, error) { return "", Nil }
func (f *fakeRedis) Incr(_ context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counts[key]++
	return f.counts[key], nil
}
func (f *fakeRedis) Expire(_ context.Context, key string, d time.Duration) error {
	f.expires[key] = d
	return nil
}
func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.counts, k)
	}
	return nil
}
func (f *fakeRedis) Close() error { return nil }

func TestRateLimiterAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit then denies", func(t *testing.T) {
		fr := newFakeRedis()
		rl := NewRateLimiter(fr)
		key := OrderKey(10)

		for i := 0; i < 3; i++ {
			ok, err := rl.Allow(ctx, key, 3, time.Minute)
			if err != nil {
				t.Fatalf("Allow %d: %v", i, err)
			}
			if !ok {
				t.Fatalf("request %d denied under the limit", i)
			}
		}
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if ok {
			t.Fatal("request over the limit allowed")
		}
	})

	t.Run("window expiry is set on the first hit only", func(t *testing.T) {
		fr := newFakeRedis()
		rl := NewRateLimiter(fr)
		key := OrderKey(10)

		if _, err := rl.Allow(ctx, key, 3, time.Minute); err != nil {
			t.Fatal(err)
		}
		if fr.expires[key] != time.Minute {
			t.Fatalf("expire = %v, want 1m", fr.expires[key])
		}
	})

	t.Run("keys are scoped per user", func(t *testing.T) {
		fr := newFakeRedis()
		rl := NewRateLimiter(fr)

		for i := 0; i < 3; i++ {
			if _, err := rl.Allow(ctx, OrderKey(10), 3, time.Minute); err != nil {
				t.Fatal(err)
			}
		}
		ok, err := rl.Allow(ctx, OrderKey(11), 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("other user denied: ok=%v err=%v", ok, err)
		}
	})

	t.Run("backend error propagates", func(t *testing.T) {
		fr := newFakeRedis()
		fr.incrErr = errors.New("connection refused")
		rl := NewRateLimiter(fr)
		if _, err := rl.Allow(ctx, OrderKey(10), 3, time.Minute); err == nil {
			t.Fatal("want error from backend")
		}
	})
}
