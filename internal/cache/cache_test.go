package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_GetPutInvalidate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, _ := m.Get(ctx, "missing"); ok {
		t.Error("Get on empty store reported a hit")
	}

	if err := m.Put(ctx, "k", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := m.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if string(got) != "v1" {
		t.Errorf("Get = %q, want %q", got, "v1")
	}

	// Put replaces atomically
	if err := m.Put(ctx, "k", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	got, _, _ = m.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("Get after replace = %q, want %q", got, "v2")
	}

	if err := m.Invalidate(ctx, "k"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("Get after Invalidate reported a hit")
	}
}

func TestMemory_LazyEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	now := time.Now()
	m.now = func() time.Time { return now }

	if err := m.Put(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Within TTL: hit
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Fatal("expected hit within TTL")
	}

	// Past TTL: logically absent, evicted on read
	now = now.Add(2 * time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("expected miss after TTL expiry")
	}
	if m.Len() != 0 {
		t.Errorf("expired entry not evicted: Len = %d", m.Len())
	}
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestTier_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tier := NewTier[payload](TierSearch, NewMemory(), time.Minute)

	key := tier.Key("wireless earbuds", "abcd1234")

	if _, ok, _ := tier.Get(ctx, key); ok {
		t.Error("empty tier reported a hit")
	}

	want := payload{Name: "x", Count: 3}
	if err := tier.Put(ctx, key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := tier.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestTier_KeyIsDeterministicAndTierScoped(t *testing.T) {
	store := NewMemory()
	search := NewTier[payload](TierSearch, store, time.Minute)
	score := NewTier[payload](TierScore, store, time.Minute)

	if search.Key("q", "fp") != search.Key("q", "fp") {
		t.Error("same inputs produced different keys")
	}
	if search.Key("q", "fp") == score.Key("q", "fp") {
		t.Error("different tiers share a key")
	}
}

func TestTier_CorruptPayloadEvictedAsMiss(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	tier := NewTier[payload](TierSignal, store, time.Minute)

	key := tier.Key("q", "fp")
	if err := store.Put(ctx, key, []byte("{not json"), time.Minute); err != nil {
		t.Fatalf("seed corrupt payload: %v", err)
	}

	_, ok, err := tier.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get on corrupt payload: %v", err)
	}
	if ok {
		t.Error("corrupt payload reported as hit")
	}
	if store.Len() != 0 {
		t.Error("corrupt entry was not evicted")
	}
}
