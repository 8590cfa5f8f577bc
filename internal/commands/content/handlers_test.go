package contentcmd

import (
	"context"
	"errors"
	"testing"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-lore/internal/commands/fixtures"
	"github.com/goliatone/go-lore/internal/content"
	"github.com/goliatone/go-lore/internal/markdown"
	"github.com/goliatone/go-lore/internal/search"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

type countingStore struct {
	interfaces.ContentStore
	saves int
}

func (s *countingStore) SaveContent(ctx context.Context, documentID, text string) error {
	s.saves++
	return s.ContentStore.SaveContent(ctx, documentID, text)
}

func TestNormalizeMigratesEditorMarkup(t *testing.T) {
	ctx := context.Background()
	mem := content.NewMemoryStore()
	if err := mem.SaveContent(ctx, "card-1", `<p>Hello <strong>world</strong> <span data-type="mention" data-id="card-42" data-label="Dragon Lore">@Dragon Lore</span></p>`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := &countingStore{ContentStore: mem}

	handler := NewNormalizeContentHandler(store, markdown.NewCodec(), nil)
	if err := handler.Execute(ctx, NormalizeContentCommand{DocumentID: "card-1"}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got, _ := mem.LoadContent(ctx, "card-1")
	want := "Hello **world** @[Dragon Lore](entity:card-42)"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if err := handler.Execute(ctx, NormalizeContentCommand{DocumentID: "card-1"}); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("expected canonical body to be left alone, saves=%d", store.saves)
	}
}

func TestNormalizeDryRunDoesNotSave(t *testing.T) {
	ctx := context.Background()
	mem := content.NewMemoryStore()
	_ = mem.SaveContent(ctx, "card-1", "<p>Hi</p>")
	store := &countingStore{ContentStore: mem}

	handler := NewNormalizeContentHandler(store, markdown.NewCodec(), nil)
	if err := handler.Execute(ctx, NormalizeContentCommand{DocumentID: "card-1", DryRun: true}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("expected no saves on dry run, got %d", store.saves)
	}
}

func TestNormalizeValidationAndMissingDocument(t *testing.T) {
	handler := NewNormalizeContentHandler(content.NewMemoryStore(), markdown.NewCodec(), nil)

	err := handler.Execute(context.Background(), NormalizeContentCommand{DocumentID: "  "})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	err = handler.Execute(context.Background(), NormalizeContentCommand{DocumentID: "missing"})
	if err == nil {
		t.Fatalf("expected missing document to fail")
	}
}

func TestIndexContentMakesCardSearchable(t *testing.T) {
	ctx := context.Background()
	idx := search.NewIndex()
	defer idx.Close()
	mem := content.NewMemoryStore()

	handler := NewIndexContentHandler(idx, mem, nil)
	msg := IndexContentCommand{ScopeID: "proj-1", DocumentID: "card-42", Title: "Dragon Lore"}
	if err := handler.Execute(ctx, msg); err != nil {
		t.Fatalf("execute: %v", err)
	}

	hits, err := idx.FindCandidates(ctx, "proj-1", "drag")
	if err != nil || len(hits) != 1 || hits[0].ID != "card-42" {
		t.Fatalf("expected indexed card, got %+v (%v)", hits, err)
	}
	doc, err := mem.Get(ctx, "card-42")
	if err != nil || doc.Title != "Dragon Lore" || doc.ScopeID != "proj-1" {
		t.Fatalf("expected card metadata stored, got %+v (%v)", doc, err)
	}

	if err := handler.Execute(ctx, IndexContentCommand{ScopeID: "proj-1", DocumentID: "card-43"}); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for missing title, got %v", err)
	}
}

func TestRegisterContentCommands(t *testing.T) {
	reg := fixtures.NewRecordingRegistry()
	idx := search.NewIndex()
	defer idx.Close()

	set, err := RegisterContentCommands(reg, Dependencies{
		Store:   content.NewMemoryStore(),
		Codec:   markdown.NewCodec(),
		Indexer: idx,
	}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(reg.Handlers) != 2 || reg.Handlers[0] != set.Normalize || reg.Handlers[1] != set.Index {
		t.Fatalf("unexpected registrations %#v", reg.Handlers)
	}

	withoutIndexer, err := RegisterContentCommands(nil, Dependencies{
		Store: content.NewMemoryStore(),
		Codec: markdown.NewCodec(),
	}, nil)
	if err != nil || withoutIndexer.Index != nil {
		t.Fatalf("expected no index handler without indexer, got %#v (%v)", withoutIndexer, err)
	}

	if _, err := RegisterContentCommands(nil, Dependencies{}, nil); err == nil {
		t.Fatalf("expected error without store")
	}

	failing := fixtures.NewRecordingRegistry()
	failing.Err = errors.New("registry closed")
	if _, err := RegisterContentCommands(failing, Dependencies{Store: content.NewMemoryStore(), Codec: markdown.NewCodec()}, nil); err == nil {
		t.Fatalf("expected registry error to propagate")
	}
}

func TestRegisterNormalizeCron(t *testing.T) {
	recorder := fixtures.NewCronRecorder()
	handler := NewNormalizeContentHandler(content.NewMemoryStore(), markdown.NewCodec(), nil)
	cfg := command.HandlerConfig{Expression: "@daily"}

	if err := RegisterNormalizeCron(recorder.Registrar(), handler, cfg, NormalizeContentCommand{DocumentID: "card-1"}); err != nil {
		t.Fatalf("register cron: %v", err)
	}
	if len(recorder.Registrations) != 1 || recorder.Registrations[0].Config.Expression != "@daily" {
		t.Fatalf("unexpected registrations %+v", recorder.Registrations)
	}
	if err := RegisterNormalizeCron(nil, handler, cfg, NormalizeContentCommand{}); err != nil {
		t.Fatalf("nil registrar should be a no-op, got %v", err)
	}
}
