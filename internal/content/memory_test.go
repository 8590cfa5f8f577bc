package content

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-lore/internal/identity"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.LoadContent(ctx, "card-42"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.SaveContent(ctx, "card-42", "Check @[The Mountain](entity:card-7)"); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}
	body, err := store.LoadContent(ctx, "card-42")
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	if body != "Check @[The Mountain](entity:card-7)" {
		t.Fatalf("unexpected body %q", body)
	}

	if err := store.PutCard(ctx, interfaces.Card{ID: "card-42", ScopeID: "proj-1", Title: "Dragon Lore"}); err != nil {
		t.Fatalf("PutCard: %v", err)
	}
	record, err := store.Get(ctx, "card-42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Body == "" || record.Title != "Dragon Lore" || record.ID != identity.DocumentUUID("card-42") {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestMemoryStoreRejectsBlankID(t *testing.T) {
	store := NewMemoryStore()
	err := store.SaveContent(context.Background(), "  ", "x")
	if !errors.Is(err, ErrDocumentIDRequired) || !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMemoryStoreFindCandidates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, card := range []interfaces.Card{
		{ID: "card-42", ScopeID: "proj-1", Title: "Dragon Lore"},
		{ID: "card-9", ScopeID: "proj-1", Title: "Ancient Dragons"},
		{ID: "card-7", ScopeID: "proj-1", Title: "The Mountain"},
		{ID: "card-1", ScopeID: "proj-2", Title: "Dragon Eggs"},
	} {
		if err := store.PutCard(ctx, card); err != nil {
			t.Fatalf("PutCard: %v", err)
		}
	}

	got, err := store.FindCandidates(ctx, "proj-1", "DRAGON")
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 2 || got[0].ID != "card-9" || got[1].ID != "card-42" {
		t.Fatalf("unexpected candidates %+v", got)
	}
	if got, _ := store.FindCandidates(ctx, "proj-1", "  "); got != nil {
		t.Fatalf("expected nil for blank query")
	}
}
