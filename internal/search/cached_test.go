package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-lore/pkg/interfaces"
)

type countingSearcher struct {
	calls   int
	err     error
	results []interfaces.Candidate
	indexed []interfaces.Candidate
}

func (s *countingSearcher) FindCandidates(context.Context, string, string) ([]interfaces.Candidate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *countingSearcher) IndexCandidate(_ context.Context, _ string, candidate interfaces.Candidate) error {
	s.indexed = append(s.indexed, candidate)
	return nil
}

func TestCachedReusesSuccessfulResults(t *testing.T) {
	inner := &countingSearcher{results: []interfaces.Candidate{{ID: "card-42", Title: "Dragon Lore"}}}
	cached := NewCached(inner, NewMemoryCache(time.Minute, time.Minute), time.Minute)
	ctx := context.Background()

	first, err := cached.FindCandidates(ctx, "proj-1", "Dragon")
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	second, err := cached.FindCandidates(ctx, "proj-1", "  dragon ")
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected one inner call, got %d", inner.calls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].ID != "card-42" {
		t.Fatalf("unexpected results %+v %+v", first, second)
	}

	second[0].Title = "mutated"
	third, _ := cached.FindCandidates(ctx, "proj-1", "dragon")
	if third[0].Title != "Dragon Lore" {
		t.Fatalf("cached slice was shared with caller")
	}

	if _, err := cached.FindCandidates(ctx, "proj-2", "dragon"); err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("expected scopes to be cached separately, got %d calls", inner.calls)
	}
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	inner := &countingSearcher{err: errors.New("boom")}
	cached := NewCached(inner, nil, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cached.FindCandidates(ctx, "proj-1", "dragon"); err == nil {
			t.Fatalf("expected error")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected failures to reach the collaborator every time, got %d", inner.calls)
	}
}

func TestCachedIndexInvalidatesScope(t *testing.T) {
	inner := &countingSearcher{results: []interfaces.Candidate{{ID: "card-42", Title: "Dragon Lore"}}}
	cached := NewCached(inner, nil, time.Minute)
	ctx := context.Background()

	_, _ = cached.FindCandidates(ctx, "proj-1", "dragon")
	if err := cached.IndexCandidate(ctx, "proj-1", interfaces.Candidate{ID: "card-43", Title: "Dragon Eggs"}); err != nil {
		t.Fatalf("IndexCandidate: %v", err)
	}
	_, _ = cached.FindCandidates(ctx, "proj-1", "dragon")
	if inner.calls != 2 {
		t.Fatalf("expected cache miss after indexing, got %d calls", inner.calls)
	}
	if len(inner.indexed) != 1 {
		t.Fatalf("expected candidate to be forwarded")
	}
}

func TestCachedOverBleveIndex(t *testing.T) {
	idx := NewIndex()
	defer idx.Close()
	cached := NewCached(idx, nil, time.Minute)
	ctx := context.Background()

	if err := cached.IndexCandidate(ctx, "proj-1", interfaces.Candidate{ID: "card-42", Title: "Dragon Lore"}); err != nil {
		t.Fatalf("IndexCandidate: %v", err)
	}
	got, err := cached.FindCandidates(ctx, "proj-1", "lore")
	if err != nil || len(got) != 1 {
		t.Fatalf("unexpected result %+v %v", got, err)
	}
}

func TestMemoryCacheProvider(t *testing.T) {
	cache := NewMemoryCache(time.Minute, time.Minute)
	ctx := context.Background()
	if value, err := cache.Get(ctx, "missing"); value != nil || err != nil {
		t.Fatalf("expected miss, got %v %v", value, err)
	}
	_ = cache.Set(ctx, "a", 1, 0)
	_ = cache.Set(ctx, "b", 2, time.Minute)
	if value, _ := cache.Get(ctx, "a"); value != 1 {
		t.Fatalf("expected stored value, got %v", value)
	}
	_ = cache.Delete(ctx, "a")
	if cache.Len() != 1 {
		t.Fatalf("expected one entry, got %d", cache.Len())
	}
	_ = cache.Clear(ctx)
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache")
	}
}
