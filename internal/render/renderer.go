package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/internal/markdown"
	"github.com/goliatone/go-lore/internal/mention"
	"github.com/goliatone/go-lore/pkg/document"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

const (
	mentionLinkClass  = "mention mention-link"
	mentionBadgeClass = "mention mention-badge"
	defaultAnchor     = "section"
)

// Renderer turns serialized text into a safe display tree. It holds no
// per-render state and may be shared across goroutines.
type Renderer struct {
	codec       *markdown.Codec
	sanitizer   *Sanitizer
	highlighter interfaces.Highlighter
	logger      interfaces.Logger
	metrics     interfaces.RenderMetrics
	skipPolicy  bool
}

// RendererOption configures the renderer instance.
type RendererOption func(*Renderer)

// WithPolicyPass toggles the bluemonday pass in RenderHTML. It is on by
// default; the writer already escapes everything it emits.
func WithPolicyPass(enabled bool) RendererOption {
	return func(r *Renderer) {
		r.skipPolicy = !enabled
	}
}

// WithHighlighter overrides the syntax highlighter.
func WithHighlighter(h interfaces.Highlighter) RendererOption {
	return func(r *Renderer) {
		if h != nil {
			r.highlighter = h
		}
	}
}

// WithSanitizer overrides the URL sanitizer.
func WithSanitizer(s *Sanitizer) RendererOption {
	return func(r *Renderer) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

// WithCodec shares an existing codec instead of building one.
func WithCodec(codec *markdown.Codec) RendererOption {
	return func(r *Renderer) {
		if codec != nil {
			r.codec = codec
		}
	}
}

// WithLogger attaches a logger for sanitization diagnostics.
func WithLogger(logger interfaces.Logger) RendererOption {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(metrics interfaces.RenderMetrics) RendererOption {
	return func(r *Renderer) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

// NewRenderer constructs a renderer with a chroma highlighter unless one is
// supplied.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		sanitizer: NewSanitizer(),
		logger:    logging.NoOp(),
		metrics:   NoOpMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.codec == nil {
		r.codec = markdown.NewCodec(markdown.WithLogger(r.logger))
	}
	if r.highlighter == nil {
		r.highlighter = NewHighlighter()
	}
	return r
}

// Render parses text as portable serialization and returns the display tree.
// nav may be nil, in which case mentions render as inert badges.
func (r *Renderer) Render(text string, nav interfaces.Navigator) *Node {
	started := time.Now()
	defer func() {
		r.metrics.ObserveRenderDuration(time.Since(started))
	}()

	return r.RenderDocument(r.codec.ParsePortable(text), nav)
}

// RenderDocument renders an already parsed document.
func (r *Renderer) RenderDocument(doc *document.Document, nav interfaces.Navigator) *Node {
	root := &Node{Kind: NodeRoot}
	if doc == nil {
		return root
	}
	pass := &renderPass{renderer: r, nav: nav, anchors: map[string]int{}}
	root.Children = pass.blocks(doc.Blocks)
	return root
}

// renderPass carries the state of a single render call.
type renderPass struct {
	renderer *Renderer
	nav      interfaces.Navigator
	anchors  map[string]int
}

func (p *renderPass) blocks(blocks []document.Block) []*Node {
	out := make([]*Node, 0, len(blocks))
	for _, block := range blocks {
		if node := p.block(block); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func (p *renderPass) block(b document.Block) *Node {
	switch b.Kind {
	case document.BlockParagraph:
		return &Node{Kind: NodeParagraph, Children: p.inlines(b.Inlines)}
	case document.BlockHeading:
		children := p.inlines(b.Inlines)
		node := &Node{Kind: NodeHeading, Level: document.ClampHeading(b.Level), Children: children}
		node.Anchor = p.anchor(node.PlainText())
		return node
	case document.BlockBulletList, document.BlockOrderedList:
		node := &Node{Kind: NodeList, Ordered: b.Kind == document.BlockOrderedList}
		if node.Ordered {
			node.Start = b.Start
			if node.Start < 0 {
				node.Start = 1
			}
		}
		for _, item := range b.Items {
			node.Children = append(node.Children, &Node{Kind: NodeListItem, Children: p.blocks(item.Blocks)})
		}
		return node
	case document.BlockQuote:
		return &Node{Kind: NodeBlockquote, Children: p.blocks(b.Children)}
	case document.BlockCode:
		return p.codeBlock(b)
	case document.BlockTable:
		return p.table(b.Table)
	case document.BlockRule:
		return &Node{Kind: NodeRule}
	default:
		return nil
	}
}

func (p *renderPass) codeBlock(b document.Block) *Node {
	node := &Node{Kind: NodeCodeBlock, Language: strings.TrimSpace(b.Language)}
	for _, token := range p.renderer.highlighter.Highlight(b.Text, node.Language) {
		node.Children = append(node.Children, &Node{Kind: NodeCodeToken, Class: token.Class, Text: token.Text})
	}
	return node
}

func (p *renderPass) table(t *document.Table) *Node {
	if t == nil || t.Columns() == 0 {
		return nil
	}
	columns := t.Columns()
	node := &Node{Kind: NodeTable}
	node.Children = append(node.Children, p.tableRow(t.Header, columns, NodeTableHeaderCell))
	for _, row := range t.Rows {
		node.Children = append(node.Children, p.tableRow(row, columns, NodeTableCell))
	}
	return node
}

func (p *renderPass) tableRow(cells []document.Cell, columns int, kind NodeKind) *Node {
	row := &Node{Kind: NodeTableRow}
	for i := 0; i < columns; i++ {
		cell := &Node{Kind: kind}
		if i < len(cells) {
			cell.Children = p.inlines(cells[i].Inlines)
		}
		row.Children = append(row.Children, cell)
	}
	return row
}

// anchor derives a heading id, suffixing repeats within one render.
func (p *renderPass) anchor(text string) string {
	base, err := slug.Normalize(text)
	if err != nil || base == "" {
		base = defaultAnchor
	}
	seen := p.anchors[base]
	p.anchors[base] = seen + 1
	if seen == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(seen)
}

func (p *renderPass) inlines(inlines []document.Inline) []*Node {
	out := make([]*Node, 0, len(inlines))
	for _, in := range inlines {
		out = append(out, p.inline(in)...)
	}
	return out
}

func (p *renderPass) inline(in document.Inline) []*Node {
	switch in.Kind {
	case document.InlineText:
		if in.Text == "" {
			return nil
		}
		return []*Node{textNode(in.Text)}
	case document.InlineBold:
		return []*Node{{Kind: NodeStrong, Children: p.inlines(in.Children)}}
	case document.InlineItalic:
		return []*Node{{Kind: NodeEmphasis, Children: p.inlines(in.Children)}}
	case document.InlineStrike:
		return []*Node{{Kind: NodeStrike, Children: p.inlines(in.Children)}}
	case document.InlineCode:
		return []*Node{{Kind: NodeCode, Text: in.Text}}
	case document.InlineHardBreak:
		return []*Node{{Kind: NodeLineBreak}}
	case document.InlineMention:
		return []*Node{p.mention(in.ID, in.Label)}
	case document.InlineLink:
		return p.link(in)
	case document.InlineImage:
		return p.image(in)
	default:
		return nil
	}
}

func (p *renderPass) link(in document.Inline) []*Node {
	if id, ok := mention.ParseHref(in.URL); ok {
		label := strings.TrimPrefix(strings.TrimSpace(document.PlainText(in.Children)), string(mention.Trigger))
		return []*Node{p.mention(id, label)}
	}

	href, reason := p.renderer.sanitizer.LinkURL(in.URL)
	if reason == "" && isEntity(href) {
		// entity: with no usable id
		reason = ReasonMention
	}
	if reason != "" {
		p.rejected(reason, in.URL)
		return p.inlines(in.Children)
	}
	return []*Node{{Kind: NodeLink, Href: href, Title: in.Title, Children: p.inlines(in.Children)}}
}

func (p *renderPass) image(in document.Inline) []*Node {
	src, reason := p.renderer.sanitizer.ImageURL(in.URL)
	if reason != "" {
		p.rejected(reason, in.URL)
		if in.Alt == "" {
			return nil
		}
		return []*Node{textNode(in.Alt)}
	}
	return []*Node{{Kind: NodeImage, Src: src, Alt: in.Alt, Title: in.Title}}
}

// mention emits a navigable reference when the navigator resolves id to a
// permitted location, and an inert badge otherwise.
func (p *renderPass) mention(id, label string) *Node {
	label = strings.TrimSpace(label)
	if label == "" {
		label = id
	}
	if location, ok := p.locate(id); ok {
		return &Node{
			Kind:     NodeMentionLink,
			Href:     location,
			TargetID: id,
			Class:    mentionLinkClass,
			Children: []*Node{textNode(label)},
		}
	}
	return &Node{
		Kind:     NodeMentionBadge,
		TargetID: id,
		Class:    mentionBadgeClass,
		Children: []*Node{textNode(label)},
	}
}

func (p *renderPass) locate(id string) (string, bool) {
	if p.nav == nil {
		return "", false
	}
	location, err := p.nav.Locate(id)
	if err != nil {
		p.renderer.logger.Debug("render.mention.unresolved", "target_id", id, "error", err)
		return "", false
	}
	if strings.TrimSpace(location) == "" {
		return "", false
	}
	href, reason := p.renderer.sanitizer.LinkURL(location)
	if reason != "" || isEntity(href) {
		p.rejected(ReasonMention, location)
		return "", false
	}
	return href, true
}

func (p *renderPass) rejected(reason, raw string) {
	p.renderer.metrics.IncrementSanitized(reason)
	logging.WithFields(p.renderer.logger, map[string]any{
		"reason": reason,
		"url":    raw,
	}).Debug("render.sanitizer.url_rejected")
}

func isEntity(href string) bool {
	scheme, _ := urlScheme(normalizeURL(href))
	return scheme == mention.Scheme
}
