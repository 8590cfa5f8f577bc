package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-lore/internal/mention"
	"github.com/goliatone/go-lore/pkg/document"
)

var (
	entityLike      = regexp.MustCompile(`^&(#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)
	orderedMarker   = regexp.MustCompile(`^([0-9]{1,9})([.)])`)
	lineStartMarker = "#>-+="
	blockOpeners    = "#>-+=*_`~<|"
	inlineSpecials  = "\\*_`[]~<|"
)

// portableWriter serializes a document tree into portable text.
type portableWriter struct{}

func (w portableWriter) document(doc *document.Document) string {
	if doc == nil || doc.IsEmpty() {
		return ""
	}
	return strings.TrimRight(w.blocks(doc.Blocks), "\n ")
}

func (w portableWriter) blocks(blocks []document.Block) string {
	parts := make([]string, 0, len(blocks))
	var previous *document.Block
	alternate := false
	for i := range blocks {
		block := blocks[i]
		if previous != nil && isList(block.Kind) && previous.Kind == block.Kind {
			alternate = !alternate
		} else {
			alternate = false
		}
		out := w.block(block, alternate)
		previous = &blocks[i]
		if out == "" {
			continue
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n\n")
}

func isList(kind document.BlockKind) bool {
	return kind == document.BlockBulletList || kind == document.BlockOrderedList
}

// block serializes one block. alternate switches list markers so two lists
// in a row are not merged when read back.
func (w portableWriter) block(b document.Block, alternate bool) string {
	switch b.Kind {
	case document.BlockParagraph:
		return w.inlineLine(b.Inlines, false)
	case document.BlockHeading:
		prefix := strings.Repeat("#", document.ClampHeading(b.Level))
		body := w.inlineLine(b.Inlines, true)
		if body == "" {
			return prefix
		}
		return prefix + " " + body
	case document.BlockBulletList:
		marker := "-"
		if alternate {
			marker = "*"
		}
		var items []string
		for _, item := range b.Items {
			items = append(items, w.listItem(marker+" ", item))
		}
		return strings.Join(items, "\n")
	case document.BlockOrderedList:
		delim := "."
		if alternate {
			delim = ")"
		}
		start := b.Start
		if start < 0 {
			start = 1
		}
		var items []string
		for i, item := range b.Items {
			items = append(items, w.listItem(strconv.Itoa(start+i)+delim+" ", item))
		}
		return strings.Join(items, "\n")
	case document.BlockQuote:
		inner := w.blocks(b.Children)
		if inner == "" {
			return ">"
		}
		return prefixLines(inner, "> ", ">")
	case document.BlockCode:
		return codeFence(b.Language, b.Text)
	case document.BlockTable:
		return w.table(b.Table)
	case document.BlockRule:
		return "---"
	default:
		return ""
	}
}

func (w portableWriter) listItem(marker string, item document.ListItem) string {
	indent := strings.Repeat(" ", len(marker))
	var b strings.Builder
	for i, child := range item.Blocks {
		out := w.block(child, false)
		if out == "" {
			continue
		}
		if b.Len() > 0 {
			if isList(child.Kind) && i > 0 && item.Blocks[i-1].Kind == document.BlockParagraph {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		b.WriteString(out)
	}
	body := b.String()
	if body == "" {
		return strings.TrimRight(marker, " ")
	}
	indented := prefixLines(body, indent, "")
	return marker + strings.TrimPrefix(indented, indent)
}

func prefixLines(text, prefix, emptyPrefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = emptyPrefix
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func codeFence(language, body string) string {
	fenceChar := "`"
	if strings.Contains(language, "`") {
		fenceChar = "~"
	}
	size := 3
	if run := longestRun(body, fenceChar[0]) + 1; run > size {
		size = run
	}
	fence := strings.Repeat(fenceChar, size)

	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(strings.TrimSpace(strings.ReplaceAll(language, "\n", " ")))
	b.WriteString("\n")
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString(fence)
	return b.String()
}

func longestRun(s string, c byte) int {
	longest, current := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			current++
			if current > longest {
				longest = current
			}
			continue
		}
		current = 0
	}
	return longest
}

func (w portableWriter) table(t *document.Table) string {
	columns := t.Columns()
	if columns == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, w.tableRow(t.Header, columns))

	separator := make([]string, columns)
	for i := range separator {
		separator[i] = "---"
	}
	lines = append(lines, "| "+strings.Join(separator, " | ")+" |")

	for _, row := range t.Rows {
		lines = append(lines, w.tableRow(row, columns))
	}
	return strings.Join(lines, "\n")
}

// tableRow pads short rows to the header width. Extra cells are kept; the
// reader ignores them.
func (w portableWriter) tableRow(cells []document.Cell, columns int) string {
	count := len(cells)
	if count < columns {
		count = columns
	}
	values := make([]string, count)
	for i := 0; i < len(cells); i++ {
		values[i] = escapePipes(w.inlineLine(cells[i].Inlines, true))
	}
	return "| " + strings.Join(values, " | ") + " |"
}

// escapePipes escapes every pipe not already escaped, including those in
// code spans and link targets, which would otherwise split the cell.
func escapePipes(value string) string {
	if !strings.Contains(value, "|") {
		return value
	}
	var b strings.Builder
	backslashes := 0
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '|' && backslashes%2 == 0 {
			b.WriteByte('\\')
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		b.WriteByte(c)
	}
	return b.String()
}

// inlineLine serializes inline content that lives on one logical line.
// singleLine turns hard breaks into spaces for headings and table cells.
func (w portableWriter) inlineLine(inlines []document.Inline, singleLine bool) string {
	state := &inlineState{lineStart: true, singleLine: singleLine}
	var b strings.Builder
	w.inlines(&b, inlines, state, "")
	out := b.String()
	for strings.HasSuffix(out, "\\\n") {
		out = strings.TrimSuffix(out, "\\\n")
	}
	return strings.TrimSpace(out)
}

type inlineState struct {
	lineStart  bool
	singleLine bool
}

func (w portableWriter) inlines(b *strings.Builder, inlines []document.Inline, state *inlineState, parent document.InlineKind) {
	for _, in := range inlines {
		w.inline(b, in, state, parent)
	}
}

func (w portableWriter) inline(b *strings.Builder, in document.Inline, state *inlineState, parent document.InlineKind) {
	switch in.Kind {
	case document.InlineText:
		w.text(b, in.Text, state)
	case document.InlineBold:
		w.delimited(b, "**", in, state)
	case document.InlineItalic:
		delim := "*"
		if parent == document.InlineBold || startsOrEndsWith(in.Children, document.InlineBold) {
			delim = "_"
		}
		w.delimited(b, delim, in, state)
	case document.InlineStrike:
		w.delimited(b, "~~", in, state)
	case document.InlineCode:
		if in.Text == "" {
			return
		}
		b.WriteString(codeSpan(in.Text))
		state.lineStart = false
	case document.InlineLink:
		if parent == document.InlineLink {
			w.inlines(b, in.Children, state, parent)
			return
		}
		b.WriteString("[")
		state.lineStart = false
		w.inlines(b, in.Children, state, document.InlineLink)
		b.WriteString("](")
		b.WriteString(destination(in.URL))
		b.WriteString(title(in.Title))
		b.WriteString(")")
	case document.InlineImage:
		b.WriteString("![")
		b.WriteString(escapeInline(in.Alt))
		b.WriteString("](")
		b.WriteString(destination(in.URL))
		b.WriteString(title(in.Title))
		b.WriteString(")")
		state.lineStart = false
	case document.InlineMention:
		token, err := mention.Encode(in.ID, mentionLabel(in.Label, state.singleLine))
		if err != nil {
			w.text(b, in.Label, state)
			return
		}
		b.WriteString(token)
		state.lineStart = false
	case document.InlineHardBreak:
		if state.singleLine {
			b.WriteString(" ")
			return
		}
		b.WriteString("\\\n")
		state.lineStart = true
	}
}

// mentionLabel keeps line breaks inside a label only where the reader can
// follow them: not on single-line constructs, and not where the next line
// would open a new block.
func mentionLabel(label string, singleLine bool) string {
	if !strings.ContainsAny(label, "\r\n") {
		return label
	}
	label = strings.ReplaceAll(label, "\r\n", "\n")
	label = strings.ReplaceAll(label, "\r", "\n")
	lines := strings.Split(label, "\n")
	if singleLine {
		return strings.Join(lines, " ")
	}
	var b strings.Builder
	b.WriteString(lines[0])
	for _, line := range lines[1:] {
		if opensBlock(line) {
			b.WriteString(" ")
		} else {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return b.String()
}

func opensBlock(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || len(line)-len(trimmed) >= 4 {
		return true
	}
	return strings.IndexByte(blockOpeners, trimmed[0]) >= 0 || orderedMarker.MatchString(trimmed)
}

// delimited wraps children in an emphasis delimiter, keeping surrounding
// whitespace outside the delimiters so they stay flanking.
func (w portableWriter) delimited(b *strings.Builder, delim string, in document.Inline, state *inlineState) {
	var inner strings.Builder
	innerState := &inlineState{lineStart: state.lineStart, singleLine: state.singleLine}
	w.inlines(&inner, in.Children, innerState, in.Kind)
	content := inner.String()
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		b.WriteString(content)
		return
	}
	lead := content[:strings.Index(content, trimmed)]
	trail := content[len(lead)+len(trimmed):]
	if lead != "" {
		b.WriteString(" ")
	}
	b.WriteString(delim)
	b.WriteString(trimmed)
	b.WriteString(delim)
	if trail != "" {
		b.WriteString(" ")
	}
	state.lineStart = false
}

func startsOrEndsWith(children []document.Inline, kind document.InlineKind) bool {
	if len(children) == 0 {
		return false
	}
	return children[0].Kind == kind || children[len(children)-1].Kind == kind
}

func (w portableWriter) text(b *strings.Builder, value string, state *inlineState) {
	value = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(value)
	if value == "" {
		return
	}
	escaped := escapeInline(value)
	if state.lineStart {
		escaped = escapeLineStart(escaped)
	}
	b.WriteString(escaped)
	state.lineStart = false
}

func escapeInline(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 8)
	for i := 0; i < len(value); i++ {
		c := value[i]
		if strings.IndexByte(inlineSpecials, c) >= 0 {
			b.WriteByte('\\')
			b.WriteByte(c)
			continue
		}
		if c == '&' && entityLike.MatchString(value[i:]) {
			b.WriteString(`\&`)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func escapeLineStart(value string) string {
	trimmed := strings.TrimLeft(value, " ")
	if trimmed == "" {
		return value
	}
	if strings.IndexByte(lineStartMarker, trimmed[0]) >= 0 {
		return `\` + trimmed
	}
	if m := orderedMarker.FindStringSubmatchIndex(trimmed); m != nil {
		return trimmed[:m[4]] + `\` + trimmed[m[4]:]
	}
	return trimmed
}

func codeSpan(value string) string {
	fence := strings.Repeat("`", longestRun(value, '`')+1)
	pad := strings.HasPrefix(value, "`") || strings.HasSuffix(value, "`") ||
		(strings.HasPrefix(value, " ") && strings.HasSuffix(value, " ") && strings.TrimSpace(value) != "")
	if pad {
		return fence + " " + value + " " + fence
	}
	return fence + value + fence
}

func destination(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return "<>"
	}
	if strings.ContainsAny(url, " ()<>\t\n") {
		replacer := strings.NewReplacer("\n", "", `\`, `\\`, "<", `\<`, ">", `\>`)
		return "<" + replacer.Replace(url) + ">"
	}
	return url
}

func title(value string) string {
	if value == "" {
		return ""
	}
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ")
	return ` "` + replacer.Replace(value) + `"`
}
