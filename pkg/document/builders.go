package document

// New wraps blocks into a document.
func New(blocks ...Block) *Document {
	return &Document{Blocks: blocks}
}

func Paragraph(inlines ...Inline) Block {
	return Block{Kind: BlockParagraph, Inlines: inlines}
}

// Heading builds a heading, clamping level into 1..MaxHeadingLevel.
func Heading(level int, inlines ...Inline) Block {
	return Block{Kind: BlockHeading, Level: ClampHeading(level), Inlines: inlines}
}

func BulletList(items ...ListItem) Block {
	return Block{Kind: BlockBulletList, Items: items}
}

func OrderedList(start int, items ...ListItem) Block {
	if start < 0 {
		start = 1
	}
	return Block{Kind: BlockOrderedList, Start: start, Items: items}
}

// Item builds a list item holding a single paragraph.
func Item(inlines ...Inline) ListItem {
	return ListItem{Blocks: []Block{Paragraph(inlines...)}}
}

func Quote(children ...Block) Block {
	return Block{Kind: BlockQuote, Children: children}
}

func CodeBlock(language, text string) Block {
	return Block{Kind: BlockCode, Language: language, Text: text}
}

func Rule() Block {
	return Block{Kind: BlockRule}
}

// TableBlock builds a table from plain cell strings.
func TableBlock(header []string, rows ...[]string) Block {
	table := &Table{Header: textCells(header)}
	for _, row := range rows {
		table.Rows = append(table.Rows, textCells(row))
	}
	return Block{Kind: BlockTable, Table: table}
}

func textCells(values []string) []Cell {
	cells := make([]Cell, 0, len(values))
	for _, value := range values {
		cell := Cell{}
		if value != "" {
			cell.Inlines = []Inline{Text(value)}
		}
		cells = append(cells, cell)
	}
	return cells
}

func Text(value string) Inline {
	return Inline{Kind: InlineText, Text: value}
}

func Bold(children ...Inline) Inline {
	return Inline{Kind: InlineBold, Children: children}
}

func Italic(children ...Inline) Inline {
	return Inline{Kind: InlineItalic, Children: children}
}

func Strike(children ...Inline) Inline {
	return Inline{Kind: InlineStrike, Children: children}
}

func Code(value string) Inline {
	return Inline{Kind: InlineCode, Text: value}
}

func Link(url, title string, children ...Inline) Inline {
	return Inline{Kind: InlineLink, URL: url, Title: title, Children: children}
}

func Image(src, alt, title string) Inline {
	return Inline{Kind: InlineImage, URL: src, Alt: alt, Title: title}
}

// Mention builds a reference to another document.
func Mention(id, label string) Inline {
	return Inline{Kind: InlineMention, ID: id, Label: label}
}

func HardBreak() Inline {
	return Inline{Kind: InlineHardBreak}
}

// ClampHeading maps any level into 1..MaxHeadingLevel.
func ClampHeading(level int) int {
	switch {
	case level < 1:
		return 1
	case level > MaxHeadingLevel:
		return MaxHeadingLevel
	default:
		return level
	}
}
