package markdown

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	nethtml "golang.org/x/net/html"

	"github.com/goliatone/go-lore/pkg/document"
)

// portableReader walks a goldmark AST and builds the document tree.
type portableReader struct {
	source []byte
}

func (r *portableReader) blocks(parent ast.Node) []document.Block {
	var out []document.Block
	for node := parent.FirstChild(); node != nil; node = node.NextSibling() {
		out = append(out, r.block(node)...)
	}
	return out
}

func (r *portableReader) block(node ast.Node) []document.Block {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		inlines := r.blockInlines(n)
		if len(inlines) == 0 {
			return nil
		}
		return []document.Block{document.Paragraph(inlines...)}
	case *ast.Heading:
		return []document.Block{document.Heading(n.Level, r.blockInlines(n)...)}
	case *ast.ThematicBreak:
		return []document.Block{document.Rule()}
	case *ast.FencedCodeBlock:
		return []document.Block{document.CodeBlock(string(n.Language(r.source)), r.lines(n.Lines()))}
	case *ast.CodeBlock:
		return []document.Block{document.CodeBlock("", r.lines(n.Lines()))}
	case *ast.Blockquote:
		return []document.Block{document.Quote(r.blocks(n)...)}
	case *ast.List:
		items := make([]document.ListItem, 0, n.ChildCount())
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			items = append(items, document.ListItem{Blocks: r.blocks(child)})
		}
		if n.IsOrdered() {
			return []document.Block{document.OrderedList(n.Start, items...)}
		}
		return []document.Block{document.BulletList(items...)}
	case *ast.HTMLBlock:
		return r.htmlBlock(n)
	case *east.Table:
		return []document.Block{r.table(n)}
	default:
		if node.HasChildren() {
			return r.blocks(node)
		}
		return nil
	}
}

// htmlBlock keeps raw markup as literal text, one hard break per line.
func (r *portableReader) htmlBlock(n *ast.HTMLBlock) []document.Block {
	raw := r.lines(n.Lines())
	if n.HasClosure() {
		closure := n.ClosureLine
		raw = strings.TrimRight(raw+"\n"+string(closure.Value(r.source)), "\n")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	inlines := make([]document.Inline, 0, len(lines)*2)
	for i, line := range lines {
		if i > 0 {
			inlines = append(inlines, document.HardBreak())
		}
		inlines = append(inlines, document.Text(strings.TrimSpace(line)))
	}
	return []document.Block{document.Paragraph(inlines...)}
}

func (r *portableReader) table(n *east.Table) document.Block {
	table := &document.Table{}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *east.TableHeader:
			table.Header = r.cells(row)
		case *east.TableRow:
			table.Rows = append(table.Rows, r.cells(row))
		}
	}
	return document.Block{Kind: document.BlockTable, Table: table}
}

func (r *portableReader) cells(row ast.Node) []document.Cell {
	cells := make([]document.Cell, 0, row.ChildCount())
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, document.Cell{Inlines: r.blockInlines(cell)})
	}
	return cells
}

func (r *portableReader) lines(lines *text.Segments) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(r.source))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (r *portableReader) inlines(parent ast.Node) []document.Inline {
	var out []document.Inline
	for node := parent.FirstChild(); node != nil; node = node.NextSibling() {
		out = append(out, r.inline(node)...)
	}
	return mergeText(out)
}

func (r *portableReader) blockInlines(parent ast.Node) []document.Inline {
	return trimEdges(r.inlines(parent))
}

func (r *portableReader) inline(node ast.Node) []document.Inline {
	switch n := node.(type) {
	case *ast.Text:
		out := []document.Inline{document.Text(unescapeText(string(n.Segment.Value(r.source))))}
		switch {
		case n.HardLineBreak():
			out = append(out, document.HardBreak())
		case n.SoftLineBreak():
			out = append(out, document.Text(" "))
		}
		return out
	case *ast.String:
		return []document.Inline{document.Text(string(n.Value))}
	case *ast.CodeSpan:
		return []document.Inline{document.Code(r.codeSpan(n))}
	case *ast.Emphasis:
		children := r.inlines(n)
		if n.Level >= 2 {
			return []document.Inline{document.Bold(children...)}
		}
		return []document.Inline{document.Italic(children...)}
	case *east.Strikethrough:
		return []document.Inline{document.Strike(r.inlines(n)...)}
	case *ast.Link:
		return []document.Inline{document.Link(
			unescapeText(string(n.Destination)),
			unescapeText(string(n.Title)),
			r.inlines(n)...,
		)}
	case *ast.Image:
		alt := document.PlainText(r.inlines(n))
		return []document.Inline{document.Image(
			unescapeText(string(n.Destination)),
			alt,
			unescapeText(string(n.Title)),
		)}
	case *ast.AutoLink:
		url := string(n.URL(r.source))
		label := string(n.Label(r.source))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(url), "mailto:") {
			url = "mailto:" + url
		}
		return []document.Inline{document.Link(url, "", document.Text(label))}
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			segment := n.Segments.At(i)
			b.Write(segment.Value(r.source))
		}
		return []document.Inline{document.Text(b.String())}
	case *MentionNode:
		return []document.Inline{document.Mention(n.ID, n.Label)}
	default:
		var out []document.Inline
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			out = append(out, r.inline(child)...)
		}
		return out
	}
}

func (r *portableReader) codeSpan(n *ast.CodeSpan) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(r.source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
	}
	return b.String()
}

// mergeText joins adjacent text runs so escapes and soft breaks do not
// fragment the tree.
func mergeText(in []document.Inline) []document.Inline {
	out := make([]document.Inline, 0, len(in))
	for _, inline := range in {
		if inline.Kind == document.InlineText {
			if inline.Text == "" {
				continue
			}
			if last := len(out) - 1; last >= 0 && out[last].Kind == document.InlineText {
				out[last].Text += inline.Text
				continue
			}
		}
		out = append(out, inline)
	}
	return out
}

// trimEdges drops trailing hard breaks and the whitespace that soft breaks
// leave at the end of a block.
func trimEdges(in []document.Inline) []document.Inline {
	for len(in) > 0 {
		last := len(in) - 1
		switch {
		case in[last].Kind == document.InlineHardBreak:
			in = in[:last]
		case in[last].Kind == document.InlineText && strings.TrimRight(in[last].Text, " ") != in[last].Text:
			in[last].Text = strings.TrimRight(in[last].Text, " ")
			if in[last].Text == "" {
				in = in[:last]
			}
		default:
			return in
		}
	}
	return in
}

var entityPattern = regexp.MustCompile(`^&(#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|[A-Za-z][A-Za-z0-9]{1,31});`)

// unescapeText resolves backslash escapes and character references in one
// pass, so an escaped ampersand is never read as an entity.
func unescapeText(raw string) string {
	if !strings.ContainsAny(raw, `\&`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw) && isASCIIPunct(raw[i+1]):
			b.WriteByte(raw[i+1])
			i++
		case c == '&':
			if ref := entityPattern.FindString(raw[i:]); ref != "" {
				if resolved := nethtml.UnescapeString(ref); resolved != ref {
					b.WriteString(resolved)
					i += len(ref) - 1
					continue
				}
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
