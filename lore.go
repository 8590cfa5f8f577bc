// Package lore wires the authoring and rendering pipeline: the document
// codec, the sanitizing renderer, suggestion sessions and their
// collaborators.
package lore

import (
	"context"
	"html/template"

	contentcmd "github.com/goliatone/go-lore/internal/commands/content"
	"github.com/goliatone/go-lore/internal/di"
	"github.com/goliatone/go-lore/internal/markdown"
	"github.com/goliatone/go-lore/internal/render"
	"github.com/goliatone/go-lore/internal/suggestion"
	"github.com/goliatone/go-lore/pkg/document"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// Codec exports the document codec.
type Codec = markdown.Codec

// Renderer exports the sanitizing renderer.
type Renderer = render.Renderer

// Node exports the display tree node produced by the renderer.
type Node = render.Node

// NodeLink is the display kind of an ordinary, permitted link.
const NodeLink = render.NodeLink

// Session exports the suggestion session.
type Session = suggestion.Session

// Snapshot exports the suggestion session state.
type Snapshot = suggestion.Snapshot

// Option customises container wiring.
type Option = di.Option

var (
	WithLoggerProvider  = di.WithLoggerProvider
	WithLogWriter       = di.WithLogWriter
	WithBunDB           = di.WithBunDB
	WithCache           = di.WithCache
	WithContentStore    = di.WithContentStore
	WithSearcher        = di.WithSearcher
	WithNavigator       = di.WithNavigator
	WithHighlighter     = di.WithHighlighter
	WithMetricsRegistry = di.WithMetricsRegistry
	WithClock           = di.WithClock
)

// Module is the entry point for host applications.
type Module struct {
	container *di.Container
}

// New validates cfg and builds the module.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying wiring.
func (m *Module) Container() *di.Container {
	return m.container
}

// Codec returns the document codec.
func (m *Module) Codec() *Codec {
	return m.container.Codec()
}

// Renderer returns the sanitizing renderer.
func (m *Module) Renderer() *Renderer {
	return m.container.Renderer()
}

// Store returns the persistence collaborator.
func (m *Module) Store() interfaces.ContentStore {
	return m.container.ContentStore()
}

// Navigator returns the navigator for scopeID.
func (m *Module) Navigator(scopeID string) interfaces.Navigator {
	return m.container.Navigator(scopeID)
}

// NewSession opens a suggestion session for scopeID.
func (m *Module) NewSession(scopeID string, opts ...suggestion.Option) *Session {
	return m.container.NewSession(scopeID, opts...)
}

// Render renders text for scopeID into a display tree.
func (m *Module) Render(scopeID, text string) *Node {
	return m.container.Renderer().Render(text, m.container.Navigator(scopeID))
}

// RenderHTML renders text for scopeID into sanitized HTML.
func (m *Module) RenderHTML(scopeID, text string) (template.HTML, error) {
	return m.container.Renderer().RenderHTML(text, m.container.Navigator(scopeID))
}

// LoadForEditor loads a stored body and prepares it for the editor.
func (m *Module) LoadForEditor(ctx context.Context, documentID string) (string, error) {
	body, err := m.container.ContentStore().LoadContent(ctx, documentID)
	if err != nil {
		return "", err
	}
	return m.container.Codec().PrepareForEditor(body), nil
}

// SaveFromEditor converts editor markup to portable text and stores it.
func (m *Module) SaveFromEditor(ctx context.Context, documentID, markup string) error {
	return m.container.ContentStore().SaveContent(ctx, documentID, m.container.Codec().FromEditor(markup))
}

// SaveDocument encodes doc and stores it.
func (m *Module) SaveDocument(ctx context.Context, documentID string, doc *document.Document) error {
	return m.container.ContentStore().SaveContent(ctx, documentID, m.container.Codec().Encode(doc))
}

// IndexCard records card metadata and makes it searchable.
func (m *Module) IndexCard(ctx context.Context, card interfaces.Card) error {
	return m.container.Commands().Index.Execute(ctx, contentcmd.IndexContentCommand{
		ScopeID:    card.ScopeID,
		DocumentID: card.ID,
		Title:      card.Title,
	})
}

// Normalize rewrites a stored body into canonical portable text.
func (m *Module) Normalize(ctx context.Context, documentID string) error {
	return m.container.Commands().Normalize.Execute(ctx, contentcmd.NormalizeContentCommand{DocumentID: documentID})
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	return m.container.Close()
}
