package memory

import (
	"context"
	"testing"
	"time"

	"dugod-content-service/internal/domain"
)

func TestCacheRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(time.Minute)

	if err := cache.Set(ctx, "blackbox:questions", sampleQuestions()); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got []domain.Question
	found, err := cache.Get(ctx, "blackbox:questions", &got)
	if err != nil || !found {
		t.Fatalf("expected hit, found=%v err=%v", found, err)
	}
	if len(got) != 2 || got[0].Secret != "s1" {
		t.Fatalf("unexpected cached value %+v", got)
	}

	if err := cache.Invalidate(ctx, "blackbox:questions"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if found, _ := cache.Get(ctx, "blackbox:questions", &got); found {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(time.Minute)
	_ = cache.Set(ctx, "k", sampleQuestions())

	var first []domain.Question
	_, _ = cache.Get(ctx, "k", &first)
	first[0].Secret = "tampered"

	var second []domain.Question
	_, _ = cache.Get(ctx, "k", &second)
	if second[0].Secret != "s1" {
		t.Fatalf("cached value was mutated through a reader: %+v", second[0])
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCacheWithClock(time.Minute, func() time.Time { return now })
	_ = cache.Set(ctx, "k", 1)

	var v int
	if found, _ := cache.Get(ctx, "k", &v); !found || v != 1 {
		t.Fatalf("expected hit before expiry")
	}

	// TTL plus maximum jitter.
	now = now.Add(time.Minute + 6*time.Second + time.Millisecond)
	if found, _ := cache.Get(ctx, "k", &v); found {
		t.Fatalf("expected miss after ttl")
	}
}

func TestCacheWithoutTTLKeepsEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCacheWithClock(0, func() time.Time { return now })
	_ = cache.Set(ctx, "k", "v")

	now = now.Add(24 * time.Hour)
	var v string
	if found, _ := cache.Get(ctx, "k", &v); !found || v != "v" {
		t.Fatalf("expected entry to survive without ttl")
	}
}

func TestCacheDropsFillStartedBeforeInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(time.Minute)

	version, err := cache.Version(ctx, "k")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if err := cache.Invalidate(ctx, "k"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	stored, err := cache.SetIfVersion(ctx, "k", "stale", version)
	if err != nil || stored {
		t.Fatalf("expected stale fill to be dropped, stored=%v err=%v", stored, err)
	}
	var v string
	if found, _ := cache.Get(ctx, "k", &v); found {
		t.Fatalf("expected miss, got %q", v)
	}

	current, _ := cache.Version(ctx, "k")
	if current != version+1 {
		t.Fatalf("expected version %d, got %d", version+1, current)
	}
	stored, err = cache.SetIfVersion(ctx, "k", "fresh", current)
	if err != nil || !stored {
		t.Fatalf("expected fill at current version, stored=%v err=%v", stored, err)
	}
	if found, _ := cache.Get(ctx, "k", &v); !found || v != "fresh" {
		t.Fatalf("expected fresh value, found=%v v=%q", found, v)
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Question: "Capital of France?", Answer: "Paris", AnswerType: domain.AnswerExact, Secret: "s1", Order: 1, IsActive: true},
		{ID: "q2", Question: "Say anything", AnswerType: domain.AnswerAny, Secret: "s2", Order: 2, IsActive: true},
	}
}
