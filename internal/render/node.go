package render

import "strings"

// NodeKind identifies a display node. There is no kind that carries raw
// markup; every string field is plain text.
type NodeKind string

const (
	NodeRoot            NodeKind = "root"
	NodeParagraph       NodeKind = "paragraph"
	NodeHeading         NodeKind = "heading"
	NodeList            NodeKind = "list"
	NodeListItem        NodeKind = "list_item"
	NodeBlockquote      NodeKind = "blockquote"
	NodeCodeBlock       NodeKind = "code_block"
	NodeCodeToken       NodeKind = "code_token"
	NodeTable           NodeKind = "table"
	NodeTableRow        NodeKind = "table_row"
	NodeTableHeaderCell NodeKind = "table_header_cell"
	NodeTableCell       NodeKind = "table_cell"
	NodeRule            NodeKind = "rule"
	NodeText            NodeKind = "text"
	NodeStrong          NodeKind = "strong"
	NodeEmphasis        NodeKind = "emphasis"
	NodeStrike          NodeKind = "strike"
	NodeCode            NodeKind = "code"
	NodeLink            NodeKind = "link"
	NodeImage           NodeKind = "image"
	NodeMentionLink     NodeKind = "mention_link"
	NodeMentionBadge    NodeKind = "mention_badge"
	NodeLineBreak       NodeKind = "line_break"
)

// Node is one element of the safe display tree.
type Node struct {
	Kind     NodeKind `json:"kind"`
	Text     string   `json:"text,omitempty"`
	Level    int      `json:"level,omitempty"`
	Anchor   string   `json:"anchor,omitempty"`
	Ordered  bool     `json:"ordered,omitempty"`
	Start    int      `json:"start,omitempty"`
	Language string   `json:"language,omitempty"`
	Class    string   `json:"class,omitempty"`
	Href     string   `json:"href,omitempty"`
	Title    string   `json:"title,omitempty"`
	Src      string   `json:"src,omitempty"`
	Alt      string   `json:"alt,omitempty"`
	// TargetID is the referenced document id on mention nodes.
	TargetID string   `json:"target_id,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// PlainText concatenates the visible text below n.
func (n *Node) PlainText() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	switch n.Kind {
	case NodeText, NodeCodeToken, NodeCode:
		b.WriteString(n.Text)
	case NodeImage:
		b.WriteString(n.Alt)
	case NodeLineBreak:
		b.WriteString("\n")
	}
	for _, child := range n.Children {
		child.writeText(b)
	}
}

// Find returns the nodes of the given kind in document order.
func (n *Node) Find(kind NodeKind) []*Node {
	var out []*Node
	n.walk(func(node *Node) {
		if node.Kind == kind {
			out = append(out, node)
		}
	})
	return out
}

func (n *Node) walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.walk(fn)
	}
}

func textNode(value string) *Node {
	return &Node{Kind: NodeText, Text: value}
}
