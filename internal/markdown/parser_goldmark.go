package markdown

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-lore/pkg/interfaces"
)

// GoldmarkParser converts serialized text straight to HTML. Its output is
// not sanitized; display paths go through the render package.
type GoldmarkParser struct {
	defaults interfaces.ParseOptions
	engine   goldmark.Markdown
}

var _ interfaces.MarkdownParser = (*GoldmarkParser)(nil)

// NewGoldmarkParser builds a parser whose engine is configured once from
// defaults. Without extensions it enables GFM, linkify, task lists and
// mentions.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{
		defaults: defaults,
		engine:   newGoldmarkEngine(defaults),
	}
}

// Parse converts with the default options.
func (p *GoldmarkParser) Parse(source []byte) ([]byte, error) {
	return convert(p.engine, source)
}

// ParseWithOptions converts with a one-off engine built from opts.
func (p *GoldmarkParser) ParseWithOptions(source []byte, opts interfaces.ParseOptions) ([]byte, error) {
	return convert(newGoldmarkEngine(opts), source)
}

func convert(engine goldmark.Markdown, source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}

func newGoldmarkEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}
	return goldmark.New(
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
		goldmark.WithExtensions(extensionsFor(opts.Extensions)...),
	)
}

// newPortableEngine reads serialized text into a document tree. Only the
// constructs the tree can hold are enabled.
func newPortableEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			Mention,
		),
	)
}

var defaultExtensions = []goldmark.Extender{
	extension.GFM,
	extension.Linkify,
	extension.TaskList,
	Mention,
}

var extensionsByName = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"mention":       Mention,
	"mentions":      Mention,
}

// extensionsFor resolves extension names, ignoring unknown names and
// duplicates.
func extensionsFor(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return defaultExtensions
	}
	var out []goldmark.Extender
	for _, name := range names {
		ext, ok := extensionsByName[strings.ToLower(strings.TrimSpace(name))]
		if !ok || slices.Contains(out, ext) {
			continue
		}
		out = append(out, ext)
	}
	return out
}
