package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/internal/logging/console"
)

func TestConsoleLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("lore.content")
	logger = logging.WithFields(logger, map[string]any{"module": "lore.content"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"command": "lore.content.normalize",
	})
	logger = logger.WithContext(ctx)

	recordID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Info("content.store.saved",
		"record_id", recordID,
		"title", "Dragon Lore",
		"err", errors.New("none"),
	)

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26.535897Z INFO  [lore.content] content.store.saved command=lore.content.normalize err=none module=lore.content record_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999 title="Dragon Lore"`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &minLevel})

	logger := provider.GetLogger("lore.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Warn("included.warn", "foo", "bar")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "included.warn") {
		t.Fatalf("expected only the warn entry, got %q", buf.String())
	}
}

func TestConsoleLoggerKeepsUnpairedArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("").Info("odd", "key", 1, "dangling")
	if !strings.Contains(buf.String(), "arg2=dangling") || !strings.Contains(buf.String(), "key=1") {
		t.Fatalf("expected dangling argument kept, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		" DEBUG ": console.LevelDebug,
		"warning": console.LevelWarn,
		"":        console.LevelInfo,
	}
	for input, want := range cases {
		got, ok := console.ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", input, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}
