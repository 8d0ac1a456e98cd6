// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := net.JoinHostPort(envOr("VALKEY_HOST", "localhost"), envOr("VALKEY_PORT", "6379"))
	client, err := ConnectValkey(addr, os.Getenv("VALKEY_PASSWORD"), 15) // DB 15 for tests.
	if err != nil {
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type countingObserver struct {
	hits, misses map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{hits: map[string]int{}, misses: map[string]int{}}
}

func (o *countingObserver) Hit(key string) { o.hits[key]++ }
func (o *countingObserver) Miss(key string) { o.misses[key]++ }

type tree struct {
	Name     string `json:"name"`
	Children []tree `json:"children"`
}

func TestJSONCacheSetAndGet(t *testing.T) {
	obs := newCountingObserver()
	c := New(testValkeyClient(t), time.Minute, obs)
	ctx := context.Background()

	var got tree
	if c.Get(ctx, "tree", &got) {
		t.Fatal("expected cache miss")
	}

	want := tree{Name: "root", Children: []tree{{Name: "leaf"}}}
	c.Set(ctx, "tree", want)

	if !c.Get(ctx, "tree", &got) {
		t.Fatal("expected cache hit")
	}
	if got.Name != "root" || len(got.Children) != 1 || got.Children[0].Name != "leaf" {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if obs.hits["tree"] != 1 || obs.misses["tree"] != 1 {
		t.Errorf("observer: hits=%d misses=%d, want 1/1", obs.hits["tree"], obs.misses["tree"])
	}
}

func TestJSONCacheInvalidatePrefix(t *testing.T) {
	c := New(testValkeyClient(t), time.Minute, nil)
	ctx := context.Background()

	c.Set(ctx, HierarchyKey(true), []string{"a"})
	c.Set(ctx, HierarchyKey(false), []string{"b"})
	c.Set(ctx, KeyDashboard, map[string]int{"posts": 1})
	c.Set(ctx, "unrelated", 1)

	c.CategoriesChanged(ctx)

	var v any
	for _, key := range []string{HierarchyKey(true), HierarchyKey(false), KeyDashboard} {
		if c.Get(ctx, key, &v) {
			t.Errorf("expected miss for %q after invalidation", key)
		}
	}
	if !c.Get(ctx, "unrelated", &v) {
		t.Error("unrelated key should survive")
	}
}

func TestFetch(t *testing.T) {
	c := New(testValkeyClient(t), time.Minute, nil)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, "numbers", load)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %v", got)
		}
	}
	if calls != 1 {
		t.Errorf("load calls: got %d, want 1", calls)
	}
}

func TestFetchNilCache(t *testing.T) {
	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		return "fresh", nil
	}

	for i := 0; i < 2; i++ {
		got, err := Fetch(context.Background(), nil, "k", load)
		if err != nil || got != "fresh" {
			t.Fatalf("Fetch: got %q, %v", got, err)
		}
	}
	if calls != 2 {
		t.Errorf("load calls: got %d, want 2", calls)
	}
}

func TestFetchLoadError(t *testing.T) {
	boom := errors.New("store down")
	_, err := Fetch(context.Background(), nil, "k", func(context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestUnreachableValkeyDegradesToMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	obs := newCountingObserver()
	c := New(client, 0, obs)
	ctx := context.Background()

	c.Set(ctx, "k", 1)
	var v int
	if c.Get(ctx, "k", &v) {
		t.Fatal("expected miss")
	}
	if obs.misses["k"] != 1 {
		t.Errorf("misses: got %d, want 1", obs.misses["k"])
	}
	if c.ttl != DefaultTTL {
		t.Errorf("ttl: got %v, want %v", c.ttl, DefaultTTL)
	}
	c.CategoriesChanged(ctx)
}

func TestHierarchyKey(t *testing.T) {
	if HierarchyKey(true) == HierarchyKey(false) {
		t.Error("hierarchy keys must differ by includeEmpty")
	}
}
