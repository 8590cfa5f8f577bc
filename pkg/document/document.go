// Package document models the editable rich-text tree that the editor works
// on. A Document is never persisted directly; it is always derived from or
// serialized down to portable text by the markdown codec.
package document

import "strings"

// BlockKind identifies the structural role of a block node.
type BlockKind string

const (
	BlockParagraph   BlockKind = "paragraph"
	BlockHeading     BlockKind = "heading"
	BlockBulletList  BlockKind = "bullet_list"
	BlockOrderedList BlockKind = "ordered_list"
	BlockQuote       BlockKind = "blockquote"
	BlockCode        BlockKind = "code_block"
	BlockTable       BlockKind = "table"
	BlockRule        BlockKind = "horizontal_rule"
)

// InlineKind identifies the role of an inline node.
type InlineKind string

const (
	InlineText      InlineKind = "text"
	InlineBold      InlineKind = "bold"
	InlineItalic    InlineKind = "italic"
	InlineStrike    InlineKind = "strike"
	InlineCode      InlineKind = "code"
	InlineLink      InlineKind = "link"
	InlineImage     InlineKind = "image"
	InlineMention   InlineKind = "mention"
	InlineHardBreak InlineKind = "hard_break"
)

// MaxHeadingLevel is the deepest heading the editor supports. Deeper
// headings found in input are clamped to it.
const MaxHeadingLevel = 3

// Document is the root of the tree.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// Block is a block-level node. Only the fields relevant to Kind are set.
type Block struct {
	Kind BlockKind `json:"kind"`
	// Level holds the heading level (1..MaxHeadingLevel).
	Level int `json:"level,omitempty"`
	// Start is the first number of an ordered list.
	Start int `json:"start,omitempty"`
	// Language is the optional info string of a code block.
	Language string `json:"language,omitempty"`
	// Text holds the literal body of a code block.
	Text     string     `json:"text,omitempty"`
	Inlines  []Inline   `json:"inlines,omitempty"`
	Items    []ListItem `json:"items,omitempty"`
	Children []Block    `json:"children,omitempty"`
	Table    *Table     `json:"table,omitempty"`
}

// ListItem groups the blocks of one list entry.
type ListItem struct {
	Blocks []Block `json:"blocks"`
}

// Table is a header row followed by data rows.
type Table struct {
	Header []Cell   `json:"header"`
	Rows   [][]Cell `json:"rows,omitempty"`
}

// Cell is a single table cell.
type Cell struct {
	Inlines []Inline `json:"inlines,omitempty"`
}

// Inline is an inline node. Only the fields relevant to Kind are set.
type Inline struct {
	Kind     InlineKind `json:"kind"`
	Text     string     `json:"text,omitempty"`
	Children []Inline   `json:"children,omitempty"`
	URL      string     `json:"url,omitempty"`
	Title    string     `json:"title,omitempty"`
	Alt      string     `json:"alt,omitempty"`
	// ID and Label are set on mentions.
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
}

// Columns returns the column count of the header row.
func (t *Table) Columns() int {
	if t == nil {
		return 0
	}
	return len(t.Header)
}

// IsEmpty reports whether the document carries no visible content.
func (d *Document) IsEmpty() bool {
	if d == nil {
		return true
	}
	for _, block := range d.Blocks {
		if !blockIsEmpty(block) {
			return false
		}
	}
	return true
}

func blockIsEmpty(b Block) bool {
	switch b.Kind {
	case BlockRule, BlockTable:
		return false
	case BlockCode:
		return strings.TrimSpace(b.Text) == "" && b.Language == ""
	case BlockBulletList, BlockOrderedList:
		for _, item := range b.Items {
			for _, child := range item.Blocks {
				if !blockIsEmpty(child) {
					return false
				}
			}
		}
		return true
	case BlockQuote:
		for _, child := range b.Children {
			if !blockIsEmpty(child) {
				return false
			}
		}
		return true
	default:
		return strings.TrimSpace(PlainText(b.Inlines)) == "" && !hasEmbedded(b.Inlines)
	}
}

func hasEmbedded(inlines []Inline) bool {
	found := false
	Walk(inlines, func(in Inline) bool {
		if in.Kind == InlineImage || in.Kind == InlineMention {
			found = true
			return false
		}
		return true
	})
	return found
}

// Walk visits inlines depth-first. Returning false from fn stops the walk.
func Walk(inlines []Inline, fn func(Inline) bool) bool {
	for _, in := range inlines {
		if !fn(in) {
			return false
		}
		if len(in.Children) > 0 && !Walk(in.Children, fn) {
			return false
		}
	}
	return true
}

// PlainText flattens inlines into their visible text. Mentions contribute
// their label, images their alt text.
func PlainText(inlines []Inline) string {
	var b strings.Builder
	writePlain(&b, inlines)
	return b.String()
}

func writePlain(b *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch in.Kind {
		case InlineText, InlineCode:
			b.WriteString(in.Text)
		case InlineMention:
			b.WriteString(in.Label)
		case InlineImage:
			b.WriteString(in.Alt)
		case InlineHardBreak:
			b.WriteString("\n")
		default:
			writePlain(b, in.Children)
		}
	}
}
