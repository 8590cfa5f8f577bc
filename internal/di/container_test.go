package di_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
	"github.com/prometheus/client_golang/prometheus"

	contentcmd "github.com/goliatone/go-lore/internal/commands/content"
	"github.com/goliatone/go-lore/internal/content"
	"github.com/goliatone/go-lore/internal/di"
	"github.com/goliatone/go-lore/internal/runtimeconfig"
	"github.com/goliatone/go-lore/internal/search"
	"github.com/goliatone/go-lore/internal/suggestion"
	"github.com/goliatone/go-lore/pkg/testsupport"
)

func quietConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "none"
	return cfg
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := quietConfig()
	cfg.Storage.Provider = "redis"
	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected storage provider error, got %v", err)
	}
}

func TestContainerDefaultsWireMemoryStoreAndCachedIndex(t *testing.T) {
	c, err := di.NewContainer(quietConfig())
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if _, ok := c.ContentStore().(*content.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", c.ContentStore())
	}
	if _, ok := c.Searcher().(*search.Cached); !ok {
		t.Fatalf("expected cached searcher, got %T", c.Searcher())
	}
	if c.Metrics() != nil {
		t.Fatalf("expected metrics disabled by default")
	}

	ctx := context.Background()
	if err := c.Commands().Index.Execute(ctx, contentcmd.IndexContentCommand{
		ScopeID: "proj-1", DocumentID: "card-42", Title: "Dragon Lore",
	}); err != nil {
		t.Fatalf("index command: %v", err)
	}
	hits, err := c.Searcher().FindCandidates(ctx, "proj-1", "dra")
	if err != nil || len(hits) != 1 {
		t.Fatalf("expected indexed card to be searchable, got %+v (%v)", hits, err)
	}

	html, err := c.Renderer().RenderHTML("See @[Dragon Lore](entity:card-42)", c.Navigator("proj-1"))
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if !strings.Contains(string(html), `href="/projects/proj-1/cards/card-42"`) {
		t.Fatalf("expected path navigator link, got %s", html)
	}
}

func TestContainerSessionUsesConfiguredSearcher(t *testing.T) {
	cfg := quietConfig()
	cfg.Suggestion.Debounce = 0
	cfg.Suggestion.CacheTTL = 0
	cfg.Suggestion.Searcher = "store"

	c, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Commands().Index.Execute(ctx, contentcmd.IndexContentCommand{
		ScopeID: "proj-1", DocumentID: "card-7", Title: "The Mountain",
	}); err != nil {
		t.Fatalf("index command: %v", err)
	}

	done := make(chan suggestion.Snapshot, 4)
	session := c.NewSession("proj-1", suggestion.WithListener(func(s suggestion.Snapshot) {
		if s.State == suggestion.StateResolved {
			done <- s
		}
	}))
	defer session.Close()

	session.Search("mount")
	select {
	case snap := <-done:
		if len(snap.Candidates) != 1 || snap.Candidates[0].ID != "card-7" {
			t.Fatalf("unexpected candidates %+v", snap.Candidates)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session never resolved")
	}
}

func TestContainerURLKitNavigationAndMetrics(t *testing.T) {
	cfg := quietConfig()
	cfg.Metrics.Enabled = true
	cfg.Navigation.RouteConfig = &urlkit.Config{
		Groups: []urlkit.GroupConfig{{
			Name:    "frontend",
			BaseURL: "https://lore.example.com",
			Paths:   map[string]string{"card": "/projects/:scope/cards/:id"},
		}},
	}
	cfg.Navigation.Group = "frontend"

	registry := prometheus.NewRegistry()
	c, err := di.NewContainer(cfg, di.WithMetricsRegistry(registry))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	got, err := c.Navigator("proj-9").Locate("card-1")
	if err != nil || got != "https://lore.example.com/projects/proj-9/cards/card-1" {
		t.Fatalf("unexpected location %q (%v)", got, err)
	}

	c.Renderer().Render("[x](javascript:alert(1))", nil)
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, family := range families {
		if family.GetName() == "lore_render_sanitized_total" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected sanitizer counter to be registered")
	}
}

func TestContainerBunStoreWithCache(t *testing.T) {
	db, err := testsupport.NewSQLiteBunDB()
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer db.Close()

	cfg := quietConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.DSN = "unused"
	c, err := di.NewContainer(cfg, di.WithBunDB(db))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	store, ok := c.ContentStore().(*content.BunStore)
	if !ok {
		t.Fatalf("expected bun store, got %T", c.ContentStore())
	}
	ctx := context.Background()
	if err := store.SaveContent(ctx, "card-1", "<p>Hello <em>there</em></p>"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.Commands().Normalize.Execute(ctx, contentcmd.NormalizeContentCommand{DocumentID: "card-1"}); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	body, err := store.LoadContent(ctx, "card-1")
	if err != nil || body != "Hello *there*" {
		t.Fatalf("expected normalized body, got %q (%v)", body, err)
	}
}

func TestContainerConsoleLoggerWritesToConfiguredWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Level = "debug"
	c, err := di.NewContainer(cfg, di.WithLogWriter(&buf))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	c.Renderer().Render("[x](javascript:alert(1))", nil)
	if !strings.Contains(buf.String(), "render.sanitizer.url_rejected") {
		t.Fatalf("expected sanitizer log entry, got %q", buf.String())
	}
}
