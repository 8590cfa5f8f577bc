package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/goliatone/go-lore"
	"github.com/goliatone/go-lore/cmd/lore/internal/bootstrap"
	"github.com/goliatone/go-lore/internal/suggestion"
	"github.com/goliatone/go-lore/internal/validation"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand(strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(append([]string{"--log-provider", "none"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRenderCommandUsesFrontMatterScope(t *testing.T) {
	path := writeFile(t, "card.md", "---\ntitle: Dragons\nscope: proj-1\n---\nSee @[Dragon Lore](entity:card-42) and [bad](javascript:alert(1))\n")

	out, err := runCLI(t, "", "render", "--file", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `href="/projects/proj-1/cards/card-42"`) {
		t.Fatalf("expected scoped mention link, got %s", out)
	}
	if strings.Contains(out, "javascript") {
		t.Fatalf("expected unsafe link neutralized, got %s", out)
	}
	if strings.Contains(out, "title: Dragons") {
		t.Fatalf("expected front matter stripped, got %s", out)
	}
}

func TestRenderCommandTreeFromStdin(t *testing.T) {
	out, err := runCLI(t, "# Title\n\nHello **world**\n", "render", "--format", "tree")
	if err != nil {
		t.Fatalf("render tree: %v", err)
	}
	var tree map[string]any
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("expected JSON tree, got %q: %v", out, err)
	}
	if !strings.Contains(out, "world") {
		t.Fatalf("expected text in tree, got %s", out)
	}
}

func TestRenderCommandRejectsUnknownFormat(t *testing.T) {
	if _, err := runCLI(t, "text", "render", "--format", "pdf"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestConvertCommandTargets(t *testing.T) {
	cases := []struct {
		name  string
		input string
		to    string
		want  string
	}{
		{name: "editor markup to markdown", input: "<p>Hello <strong>world</strong></p>", to: "markdown", want: "Hello **world**"},
		{name: "markdown to editor", input: "Hello *there*", to: "editor", want: "<em>there</em>"},
		{name: "raw html", input: "# Heading", to: "html-raw", want: "<h1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := runCLI(t, tc.input, "convert", "--to", tc.to)
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			if !strings.Contains(out, tc.want) {
				t.Fatalf("expected %q in %q", tc.want, out)
			}
		})
	}
}

func TestConfigFileIsMerged(t *testing.T) {
	path := writeFile(t, "lore.yaml", "suggestion:\n  limit: 3\n  debounce: 50ms\nlogging:\n  level: debug\n")

	var out, errOut bytes.Buffer
	state := newApp(strings.NewReader(""), &out, &errOut)
	root := state.rootCommand()
	if err := root.PersistentFlags().Set("config", path); err != nil {
		t.Fatalf("set config flag: %v", err)
	}

	cfg, err := state.config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Suggestion.Limit != 3 || cfg.Suggestion.Debounce != 50*time.Millisecond {
		t.Fatalf("expected file values, got %+v", cfg.Suggestion)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected file log level over flag default, got %q", cfg.Logging.Level)
	}
	if !cfg.Render.Highlight {
		t.Fatalf("expected defaults kept for unset keys")
	}
}

func TestSuggestModelChoosesCandidate(t *testing.T) {
	cfg := lore.DefaultConfig()
	cfg.Logging.Provider = "none"
	cfg.Suggestion.Debounce = 0
	module, err := lore.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	ctx := context.Background()
	if err := module.IndexCard(ctx, interfaces.Card{ID: "card-42", ScopeID: "proj-1", Title: "Dragon Lore"}); err != nil {
		t.Fatalf("index card: %v", err)
	}

	m := newSuggestModel(module, "proj-1")
	defer m.session.Close()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("dra")})

	deadline := time.After(2 * time.Second)
	for m.snapshot.State != suggestion.StateResolved {
		msgs := make(chan tea.Msg, 1)
		go func() { msgs <- m.waitForSnapshot()() }()
		select {
		case msg := <-msgs:
			m.Update(msg)
		case <-deadline:
			t.Fatalf("timed out waiting for results, state %q", m.snapshot.State)
		}
	}
	if len(m.snapshot.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %+v", m.snapshot.Candidates)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.snapshot.Selected != 0 {
		t.Fatalf("expected selection to wrap on a single candidate, got %d", m.snapshot.Selected)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit command after choosing")
	}
	if m.chosen != "@[Dragon Lore](entity:card-42)" {
		t.Fatalf("unexpected token %q", m.chosen)
	}
	if !m.session.Closed() {
		t.Fatalf("expected session closed after choosing")
	}
	if !strings.Contains(m.View(), "Dragon Lore") {
		t.Fatalf("expected candidate in view")
	}
}

func TestSuggestModelEscapeCloses(t *testing.T) {
	cfg := lore.DefaultConfig()
	cfg.Logging.Provider = "none"
	module, err := lore.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	m := newSuggestModel(module, "proj-1")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil || !m.session.Closed() {
		t.Fatalf("expected escape to close the session and quit")
	}
	if m.chosen != "" {
		t.Fatalf("expected no token, got %q", m.chosen)
	}
}

func TestLoadCardsValidatesManifest(t *testing.T) {
	cfg := lore.DefaultConfig()
	cfg.Logging.Provider = "none"
	module, err := bootstrap.BuildModule(cfg, bootstrap.Options{})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	defer module.Close()

	ctx := context.Background()
	bad := writeFile(t, "bad.yaml", "cards:\n  - id: card-1\n")
	if _, err := loadCards(ctx, module, bad, "proj-1"); !errors.Is(err, validation.ErrManifestInvalid) {
		t.Fatalf("expected manifest validation error, got %v", err)
	}

	good := writeFile(t, "cards.yaml", "cards:\n  - id: card-42\n    title: Dragon Lore\n")
	count, err := loadCards(ctx, module, good, "proj-1")
	if err != nil || count != 1 {
		t.Fatalf("expected one card loaded, got %d, %v", count, err)
	}
	candidates, err := module.Container().Searcher().FindCandidates(ctx, "proj-1", "dragon")
	if err != nil || len(candidates) != 1 {
		t.Fatalf("expected indexed card under default scope, got %+v, %v", candidates, err)
	}
}

func TestLoadCardsFromDirectory(t *testing.T) {
	cfg := lore.DefaultConfig()
	cfg.Logging.Provider = "none"
	module, err := bootstrap.BuildModule(cfg, bootstrap.Options{})
	if err != nil {
		t.Fatalf("build module: %v", err)
	}
	defer module.Close()

	dir := t.TempDir()
	card := "---\ntitle: Dragon Lore\nid: card-42\n---\nDragons sleep here.\n"
	if err := os.WriteFile(filepath.Join(dir, "dragon.md"), []byte(card), 0o600); err != nil {
		t.Fatalf("write card: %v", err)
	}

	ctx := context.Background()
	count, err := loadCards(ctx, module, dir, "proj-1")
	if err != nil || count != 1 {
		t.Fatalf("expected one card, got %d, %v", count, err)
	}
	body, err := module.Store().LoadContent(ctx, "card-42")
	if err != nil || !strings.Contains(body, "Dragons sleep here.") {
		t.Fatalf("expected stored body, got %q, %v", body, err)
	}
}
