package markdown

import (
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-lore/pkg/document"
)

// MentionClass is the class attribute the editor puts on mention spans.
const MentionClass = "mention"

// knownElements are the tags that make text count as editor markup.
var knownElements = map[atom.Atom]struct{}{
	atom.P: {}, atom.Div: {}, atom.Span: {},
	atom.H1: {}, atom.H2: {}, atom.H3: {}, atom.H4: {}, atom.H5: {}, atom.H6: {},
	atom.Ul: {}, atom.Ol: {}, atom.Li: {},
	atom.Blockquote: {}, atom.Pre: {}, atom.Code: {},
	atom.Table: {}, atom.Thead: {}, atom.Tbody: {}, atom.Tfoot: {}, atom.Tr: {}, atom.Th: {}, atom.Td: {},
	atom.Strong: {}, atom.B: {}, atom.Em: {}, atom.I: {}, atom.U: {},
	atom.S: {}, atom.Del: {}, atom.Strike: {},
	atom.A: {}, atom.Sub: {}, atom.Sup: {},
	atom.Hr: {}, atom.Br: {}, atom.Img: {},
}

var voidElements = map[atom.Atom]struct{}{
	atom.Hr: {}, atom.Br: {}, atom.Img: {},
}

// isNativeMarkup reports whether text holds a balanced tag of a known
// element: an opening tag later closed by its matching end tag, or a void
// element. Stray "<", unknown tags, autolinks and unclosed tags do not count.
func isNativeMarkup(text string) bool {
	if !strings.Contains(text, "<") {
		return false
	}
	open := map[atom.Atom]int{}
	tokenizer := nethtml.NewTokenizerFragment(strings.NewReader(text), "div")
	for {
		switch tokenizer.Next() {
		case nethtml.ErrorToken:
			return false
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			token := tokenizer.Token()
			if _, known := knownElements[token.DataAtom]; !known {
				continue
			}
			if _, void := voidElements[token.DataAtom]; void {
				return true
			}
			open[token.DataAtom]++
		case nethtml.EndTagToken:
			token := tokenizer.Token()
			if open[token.DataAtom] > 0 {
				return true
			}
		}
	}
}

// nativeReader converts parsed editor markup into the document tree.
type nativeReader struct{}

func (r nativeReader) read(markup string) *document.Document {
	context := &nethtml.Node{Type: nethtml.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := nethtml.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return document.New(document.Paragraph(document.Text(strings.TrimSpace(markup))))
	}
	return document.New(r.blocks(nodes)...)
}

func (r nativeReader) blocks(nodes []*nethtml.Node) []document.Block {
	var out []document.Block
	var pending []*nethtml.Node

	flush := func() {
		if len(pending) == 0 {
			return
		}
		inlines := trimInlineEdges(r.inlines(pending))
		pending = nil
		if len(inlines) > 0 {
			out = append(out, document.Paragraph(inlines...))
		}
	}

	for _, node := range nodes {
		if node.Type == nethtml.ElementNode && isBlockElement(node) {
			flush()
			out = append(out, r.block(node)...)
			continue
		}
		if node.Type == nethtml.ElementNode && isDropped(node) {
			continue
		}
		pending = append(pending, node)
	}
	flush()
	return out
}

func children(node *nethtml.Node) []*nethtml.Node {
	var out []*nethtml.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		out = append(out, child)
	}
	return out
}

func isBlockElement(node *nethtml.Node) bool {
	switch node.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Blockquote, atom.Pre, atom.Table, atom.Hr,
		atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer, atom.Main, atom.Aside, atom.Nav:
		return true
	}
	return false
}

func isDropped(node *nethtml.Node) bool {
	switch node.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Iframe, atom.Object, atom.Noscript:
		return true
	}
	return false
}

func (r nativeReader) block(node *nethtml.Node) []document.Block {
	switch node.DataAtom {
	case atom.P:
		inlines := trimInlineEdges(r.inlines(children(node)))
		if len(inlines) == 0 {
			return nil
		}
		return []document.Block{document.Paragraph(inlines...)}
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(node.Data[1] - '0')
		return []document.Block{document.Heading(level, trimInlineEdges(r.inlines(children(node)))...)}
	case atom.Ul, atom.Ol:
		var items []document.ListItem
		for _, child := range children(node) {
			if child.Type != nethtml.ElementNode || child.DataAtom != atom.Li {
				continue
			}
			items = append(items, document.ListItem{Blocks: r.blocks(children(child))})
		}
		if node.DataAtom == atom.Ol {
			start := 1
			if value, ok := attr(node, "start"); ok {
				if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && parsed >= 0 {
					start = parsed
				}
			}
			return []document.Block{document.OrderedList(start, items...)}
		}
		return []document.Block{document.BulletList(items...)}
	case atom.Blockquote:
		return []document.Block{document.Quote(r.blocks(children(node))...)}
	case atom.Pre:
		return []document.Block{r.codeBlock(node)}
	case atom.Table:
		return []document.Block{r.table(node)}
	case atom.Hr:
		return []document.Block{document.Rule()}
	default:
		return r.blocks(children(node))
	}
}

func (r nativeReader) codeBlock(pre *nethtml.Node) document.Block {
	language := ""
	for child := pre.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode && child.DataAtom == atom.Code {
			if class, ok := attr(child, "class"); ok {
				for _, name := range strings.Fields(class) {
					if lang, found := strings.CutPrefix(name, "language-"); found {
						language = lang
						break
					}
				}
			}
		}
	}
	return document.CodeBlock(language, strings.TrimSuffix(textContent(pre), "\n"))
}

func (r nativeReader) table(node *nethtml.Node) document.Block {
	var rows [][]document.Cell
	var collect func(*nethtml.Node)
	collect = func(n *nethtml.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != nethtml.ElementNode {
				continue
			}
			switch child.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				collect(child)
			case atom.Tr:
				var cells []document.Cell
				for cell := child.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == nethtml.ElementNode && (cell.DataAtom == atom.Th || cell.DataAtom == atom.Td) {
						cells = append(cells, document.Cell{Inlines: r.cellInlines(cell)})
					}
				}
				rows = append(rows, cells)
			}
		}
	}
	collect(node)

	table := &document.Table{}
	if len(rows) > 0 {
		table.Header = rows[0]
		table.Rows = rows[1:]
	}
	return document.Block{Kind: document.BlockTable, Table: table}
}

// cellInlines flattens block content in a cell into a single line.
func (r nativeReader) cellInlines(cell *nethtml.Node) []document.Inline {
	var out []document.Inline
	for _, block := range r.blocks(children(cell)) {
		if len(out) > 0 {
			out = append(out, document.Text(" "))
		}
		out = append(out, block.Inlines...)
	}
	return trimInlineEdges(mergeText(out))
}

func (r nativeReader) inlines(nodes []*nethtml.Node) []document.Inline {
	var out []document.Inline
	for _, node := range nodes {
		out = append(out, r.inline(node)...)
	}
	return mergeText(collapseSpaces(out))
}

func (r nativeReader) inline(node *nethtml.Node) []document.Inline {
	switch node.Type {
	case nethtml.TextNode:
		return []document.Inline{document.Text(collapseWhitespace(node.Data))}
	case nethtml.ElementNode:
	default:
		return nil
	}

	if isDropped(node) {
		return nil
	}

	switch node.DataAtom {
	case atom.Strong, atom.B:
		return []document.Inline{document.Bold(r.inlines(children(node))...)}
	case atom.Em, atom.I:
		return []document.Inline{document.Italic(r.inlines(children(node))...)}
	case atom.S, atom.Del, atom.Strike:
		return []document.Inline{document.Strike(r.inlines(children(node))...)}
	case atom.Code:
		return []document.Inline{document.Code(textContent(node))}
	case atom.Br:
		return []document.Inline{document.HardBreak()}
	case atom.A:
		href, _ := attr(node, "href")
		title, _ := attr(node, "title")
		return []document.Inline{document.Link(strings.TrimSpace(href), title, r.inlines(children(node))...)}
	case atom.Img:
		src, _ := attr(node, "src")
		alt, _ := attr(node, "alt")
		title, _ := attr(node, "title")
		return []document.Inline{document.Image(strings.TrimSpace(src), alt, title)}
	case atom.Span:
		if kind, _ := attr(node, "data-type"); kind == "mention" {
			return []document.Inline{r.mention(node)}
		}
	}
	return r.inlines(children(node))
}

func (r nativeReader) mention(node *nethtml.Node) document.Inline {
	id, _ := attr(node, "data-id")
	label, ok := attr(node, "data-label")
	if !ok || label == "" {
		label = strings.TrimPrefix(strings.TrimSpace(textContent(node)), "@")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return document.Text(textContent(node))
	}
	return document.Mention(id, label)
}

func attr(node *nethtml.Node, key string) (string, bool) {
	for _, a := range node.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(node *nethtml.Node) string {
	var b strings.Builder
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == nethtml.ElementNode && n.DataAtom == atom.Br {
			b.WriteString("\n")
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return b.String()
}

func collapseWhitespace(value string) string {
	var b strings.Builder
	space := false
	for _, r := range value {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

// collapseSpaces removes the space a text run would repeat after another run
// already ended in one.
func collapseSpaces(in []document.Inline) []document.Inline {
	previousSpace := false
	for i := range in {
		if in[i].Kind != document.InlineText {
			previousSpace = in[i].Kind == document.InlineHardBreak
			continue
		}
		if previousSpace {
			in[i].Text = strings.TrimLeft(in[i].Text, " ")
		}
		previousSpace = strings.HasSuffix(in[i].Text, " ")
	}
	return in
}

func trimInlineEdges(in []document.Inline) []document.Inline {
	if len(in) > 0 && in[0].Kind == document.InlineText {
		in[0].Text = strings.TrimLeft(in[0].Text, " ")
		if in[0].Text == "" {
			in = in[1:]
		}
	}
	return trimEdges(in)
}

// nativeWriter renders the document tree as editor markup.
type nativeWriter struct{}

func (w nativeWriter) document(doc *document.Document) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	w.blocks(&b, doc.Blocks)
	return b.String()
}

func (w nativeWriter) blocks(b *strings.Builder, blocks []document.Block) {
	for _, block := range blocks {
		w.block(b, block)
	}
}

func (w nativeWriter) block(b *strings.Builder, block document.Block) {
	switch block.Kind {
	case document.BlockParagraph:
		b.WriteString("<p>")
		w.inlines(b, block.Inlines)
		b.WriteString("</p>")
	case document.BlockHeading:
		tag := "h" + strconv.Itoa(document.ClampHeading(block.Level))
		b.WriteString("<" + tag + ">")
		w.inlines(b, block.Inlines)
		b.WriteString("</" + tag + ">")
	case document.BlockBulletList:
		b.WriteString("<ul>")
		w.items(b, block.Items)
		b.WriteString("</ul>")
	case document.BlockOrderedList:
		if block.Start != 1 {
			b.WriteString(`<ol start="` + strconv.Itoa(block.Start) + `">`)
		} else {
			b.WriteString("<ol>")
		}
		w.items(b, block.Items)
		b.WriteString("</ol>")
	case document.BlockQuote:
		b.WriteString("<blockquote>")
		w.blocks(b, block.Children)
		b.WriteString("</blockquote>")
	case document.BlockCode:
		b.WriteString("<pre><code")
		if block.Language != "" {
			b.WriteString(` class="language-` + nethtml.EscapeString(block.Language) + `"`)
		}
		b.WriteString(">")
		b.WriteString(nethtml.EscapeString(block.Text))
		b.WriteString("</code></pre>")
	case document.BlockTable:
		w.table(b, block.Table)
	case document.BlockRule:
		b.WriteString("<hr>")
	}
}

func (w nativeWriter) items(b *strings.Builder, items []document.ListItem) {
	for _, item := range items {
		b.WriteString("<li>")
		w.blocks(b, item.Blocks)
		b.WriteString("</li>")
	}
}

func (w nativeWriter) table(b *strings.Builder, table *document.Table) {
	if table == nil || table.Columns() == 0 {
		return
	}
	b.WriteString("<table><tbody><tr>")
	for _, cell := range table.Header {
		b.WriteString("<th>")
		w.inlines(b, cell.Inlines)
		b.WriteString("</th>")
	}
	b.WriteString("</tr>")
	for _, row := range table.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			w.inlines(b, cell.Inlines)
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}

func (w nativeWriter) inlines(b *strings.Builder, inlines []document.Inline) {
	for _, in := range inlines {
		w.inline(b, in)
	}
}

func (w nativeWriter) inline(b *strings.Builder, in document.Inline) {
	switch in.Kind {
	case document.InlineText:
		b.WriteString(nethtml.EscapeString(in.Text))
	case document.InlineBold:
		w.wrap(b, "strong", in.Children)
	case document.InlineItalic:
		w.wrap(b, "em", in.Children)
	case document.InlineStrike:
		w.wrap(b, "s", in.Children)
	case document.InlineCode:
		b.WriteString("<code>" + nethtml.EscapeString(in.Text) + "</code>")
	case document.InlineLink:
		b.WriteString(`<a href="` + nethtml.EscapeString(in.URL) + `"`)
		if in.Title != "" {
			b.WriteString(` title="` + nethtml.EscapeString(in.Title) + `"`)
		}
		b.WriteString(">")
		w.inlines(b, in.Children)
		b.WriteString("</a>")
	case document.InlineImage:
		b.WriteString(`<img src="` + nethtml.EscapeString(in.URL) + `" alt="` + nethtml.EscapeString(in.Alt) + `"`)
		if in.Title != "" {
			b.WriteString(` title="` + nethtml.EscapeString(in.Title) + `"`)
		}
		b.WriteString(">")
	case document.InlineMention:
		b.WriteString(mentionSpan(in.ID, in.Label))
	case document.InlineHardBreak:
		b.WriteString("<br>")
	}
}

func (w nativeWriter) wrap(b *strings.Builder, tag string, children []document.Inline) {
	b.WriteString("<" + tag + ">")
	w.inlines(b, children)
	b.WriteString("</" + tag + ">")
}

func mentionSpan(id, label string) string {
	escapedLabel := nethtml.EscapeString(label)
	return `<span data-type="mention" data-id="` + nethtml.EscapeString(id) +
		`" data-label="` + escapedLabel + `" class="` + MentionClass + `">@` + escapedLabel + `</span>`
}
