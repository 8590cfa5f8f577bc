package search

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-lore/pkg/interfaces"
)

func seedIndex(t *testing.T, idx *Index, scopeID string, cards ...interfaces.Candidate) {
	t.Helper()
	for _, card := range cards {
		if err := idx.IndexCandidate(context.Background(), scopeID, card); err != nil {
			t.Fatalf("IndexCandidate(%s): %v", card.ID, err)
		}
	}
}

func TestIndexFindsByWordPrefix(t *testing.T) {
	idx := NewIndex()
	defer idx.Close()
	seedIndex(t, idx, "proj-1",
		interfaces.Candidate{ID: "card-42", Title: "Dragon Lore"},
		interfaces.Candidate{ID: "card-7", Title: "The Mountain"},
		interfaces.Candidate{ID: "card-9", Title: "Dragonfly Swamp"},
	)

	got, err := idx.FindCandidates(context.Background(), "proj-1", "drag")
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %+v", got)
	}
	ids := map[string]string{}
	for _, c := range got {
		ids[c.ID] = c.Title
	}
	if ids["card-42"] != "Dragon Lore" || ids["card-9"] != "Dragonfly Swamp" {
		t.Fatalf("unexpected hits %+v", got)
	}

	got, err = idx.FindCandidates(context.Background(), "proj-1", "the moun")
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 1 || got[0].ID != "card-7" {
		t.Fatalf("expected stop words to stay searchable, got %+v", got)
	}
}

func TestIndexScopesAreIsolated(t *testing.T) {
	idx := NewIndex()
	defer idx.Close()
	seedIndex(t, idx, "proj-1", interfaces.Candidate{ID: "card-42", Title: "Dragon Lore"})

	got, err := idx.FindCandidates(context.Background(), "proj-2", "dragon")
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no cross-scope hits, got %+v", got)
	}
}

func TestIndexBlankQueryReturnsNothing(t *testing.T) {
	idx := NewIndex()
	defer idx.Close()
	seedIndex(t, idx, "proj-1", interfaces.Candidate{ID: "card-42", Title: "Dragon Lore"})
	got, err := idx.FindCandidates(context.Background(), "proj-1", "  ?! ")
	if err != nil || got != nil {
		t.Fatalf("expected nil result, got %+v %v", got, err)
	}
}

func TestIndexReplaceAndRemove(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(WithLimit(5))
	defer idx.Close()
	seedIndex(t, idx, "proj-1", interfaces.Candidate{ID: "card-42", Title: "Dragon Lore"})
	seedIndex(t, idx, "proj-1", interfaces.Candidate{ID: "card-42", Title: "Wyvern Lore"})

	if got, _ := idx.FindCandidates(ctx, "proj-1", "dragon"); len(got) != 0 {
		t.Fatalf("expected replaced title to drop old terms, got %+v", got)
	}
	if got, _ := idx.FindCandidates(ctx, "proj-1", "wyv"); len(got) != 1 {
		t.Fatalf("expected new title to match, got %+v", got)
	}
	if err := idx.RemoveCandidate(ctx, "proj-1", "card-42"); err != nil {
		t.Fatalf("RemoveCandidate: %v", err)
	}
	if got, _ := idx.FindCandidates(ctx, "proj-1", "wyv"); len(got) != 0 {
		t.Fatalf("expected removed candidate to disappear, got %+v", got)
	}
}

func TestIndexRejectsMissingID(t *testing.T) {
	idx := NewIndex()
	defer idx.Close()
	err := idx.IndexCandidate(context.Background(), "proj-1", interfaces.Candidate{Title: "No id"})
	if !errors.Is(err, ErrCandidateIDRequired) {
		t.Fatalf("expected ErrCandidateIDRequired, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category")
	}
}

func TestIndexHonoursContextAndClose(t *testing.T) {
	idx := NewIndex()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := idx.FindCandidates(ctx, "proj-1", "dragon"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	err := idx.IndexCandidate(context.Background(), "proj-1", interfaces.Candidate{ID: "x", Title: "x"})
	if !errors.Is(err, ErrIndexClosed) {
		t.Fatalf("expected ErrIndexClosed, got %v", err)
	}
}
