package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-lore/internal/mention"
)

// KindMention is the goldmark node kind for document references.
var KindMention = ast.NewNodeKind("Mention")

// MentionNode is an inline reference to another document. It is produced by
// the parser before link parsing runs, so the token never reaches the link or
// emphasis parsers.
type MentionNode struct {
	ast.BaseInline
	ID    string
	Label string
}

// NewMentionNode builds a mention node.
func NewMentionNode(id, label string) *MentionNode {
	return &MentionNode{ID: id, Label: label}
}

func (n *MentionNode) Kind() ast.NodeKind {
	return KindMention
}

func (n *MentionNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"ID":    n.ID,
		"Label": n.Label,
	}, nil)
}

type mentionParser struct{}

func (mentionParser) Trigger() []byte {
	return []byte{mention.Trigger}
}

func (mentionParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	token, ok := mention.Match(string(unread(block)))
	if !ok {
		return nil
	}
	block.Advance(token.End)
	return NewMentionNode(token.ID, token.Label)
}

// unread returns the rest of the inline source, across soft line breaks, so
// a label wrapped over several lines still matches. The reader position is
// left untouched.
func unread(block text.Reader) []byte {
	line, pos := block.Position()
	defer block.SetPosition(line, pos)

	var out []byte
	for {
		segment, _ := block.PeekLine()
		if segment == nil {
			return out
		}
		out = append(out, segment...)
		block.AdvanceLine()
	}
}

// mentionHTMLRenderer writes mentions the way the editor stores them. It is
// only used by the raw HTML parser; the document codec reads MentionNode
// directly.
type mentionHTMLRenderer struct{}

func (mentionHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMention, renderMention)
}

func renderMention(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*MentionNode)
	_, _ = w.WriteString(mentionSpan(n.ID, n.Label))
	return ast.WalkSkipChildren, nil
}

type mentionExtension struct{}

// Mention is the goldmark extension that recognizes @[label](entity:id).
var Mention goldmark.Extender = mentionExtension{}

func (mentionExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(mentionParser{}, 90),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(mentionHTMLRenderer{}, 500),
	))
}
