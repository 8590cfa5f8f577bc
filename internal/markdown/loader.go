package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// LoaderConfig configures how card files are discovered on a filesystem.
type LoaderConfig struct {
	// Pattern limits discovered files to those matching the glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
	// DefaultScope is assigned to cards whose front matter names no scope.
	DefaultScope string
}

// Loader turns card files into Sources. Card ids default to the file name
// without extension when the front matter carries none.
type Loader struct {
	fs           fs.FS
	pattern      string
	recursive    bool
	defaultScope string
}

// NewLoader constructs a Loader over the provided filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}
	return &Loader{
		fs:           filesystem,
		pattern:      pattern,
		recursive:    cfg.Recursive,
		defaultScope: strings.TrimSpace(cfg.DefaultScope),
	}
}

// LoadFile reads and parses a single card file.
func (l *Loader) LoadFile(ctx context.Context, name string) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = path.Clean(name)
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}

	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("markdown loader %s: %w", name, err)
	}
	if strings.TrimSpace(meta.ID) == "" {
		meta.ID = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	if strings.TrimSpace(meta.Scope) == "" {
		meta.Scope = l.defaultScope
	}
	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = meta.ID
	}

	return &Source{
		Path:        name,
		FrontMatter: meta,
		Body:        string(body),
	}, nil
}

// LoadDirectory discovers card files under dir, sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := path.Clean(dir)
	var results []*Source

	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if !l.recursive && current != root {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !l.matchesPattern(current) {
			return nil
		}

		source, err := l.LoadFile(ctx, current)
		if err != nil {
			return err
		}
		results = append(results, source)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	return results, nil
}

func (l *Loader) matchesPattern(name string) bool {
	pattern := strings.ReplaceAll(l.pattern, "**/", "")
	target := name
	if !strings.Contains(pattern, "/") {
		target = path.Base(name)
	}
	match, err := path.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}
