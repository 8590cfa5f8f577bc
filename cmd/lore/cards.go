package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-lore/cmd/lore/internal/bootstrap"
	"github.com/goliatone/go-lore/internal/markdown"
	"github.com/goliatone/go-lore/internal/validation"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

type cardFile struct {
	Cards []interfaces.Card `yaml:"cards"`
}

// loadCards indexes cards from a YAML manifest or a directory of card files.
// Directory bodies are stored alongside their metadata.
func loadCards(ctx context.Context, module *bootstrap.Module, path, scope string) (int, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = module.Container().Config.Markdown.ContentDir
	}
	if path == "" {
		return 0, fmt.Errorf("no cards source: pass --cards or set markdown.content_dir")
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("cards source: %w", err)
	}

	if info.IsDir() {
		return loadCardDirectory(ctx, module, path, scope)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read cards: %w", err)
	}
	if err := validation.ValidateCardManifest(data); err != nil {
		return 0, fmt.Errorf("cards %s: %w", path, err)
	}
	var manifest cardFile
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return 0, fmt.Errorf("decode cards %s: %w", path, err)
	}
	for _, card := range manifest.Cards {
		if card.ScopeID == "" {
			card.ScopeID = scope
		}
		if err := module.IndexCard(ctx, card); err != nil {
			return 0, err
		}
	}
	return len(manifest.Cards), nil
}

func loadCardDirectory(ctx context.Context, module *bootstrap.Module, dir, scope string) (int, error) {
	cfg := module.Container().Config.Markdown
	loader := markdown.NewLoader(os.DirFS(dir), markdown.LoaderConfig{
		Pattern:      cfg.Pattern,
		Recursive:    cfg.Recursive,
		DefaultScope: scope,
	})
	sources, err := loader.LoadDirectory(ctx, ".")
	if err != nil {
		return 0, err
	}
	for _, source := range sources {
		meta := source.FrontMatter
		if err := module.Store().SaveContent(ctx, meta.ID, source.Body); err != nil {
			return 0, err
		}
		card := interfaces.Card{ID: meta.ID, ScopeID: meta.Scope, Title: meta.Title}
		if err := module.IndexCard(ctx, card); err != nil {
			return 0, err
		}
	}
	return len(sources), nil
}
