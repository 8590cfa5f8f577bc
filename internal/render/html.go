package render

import (
	"html/template"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"

	"github.com/goliatone/go-lore/internal/mention"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy

	classPattern = regexp.MustCompile(`^[A-Za-z0-9_\- ]+$`)
	idPattern    = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
	relPattern   = regexp.MustCompile(`^noopener noreferrer$`)
)

// Policy returns the bluemonday policy applied after the HTML writer. It
// allows the elements and classes the writer emits and nothing else. External
// links keep rel="noopener noreferrer" and target="_blank"; relative links
// get neither.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowURLSchemes("http", "https", mention.Scheme)
		p.AllowRelativeURLs(true)
		p.RequireParseableURLs(true)
		p.RequireNoFollowOnLinks(false)
		p.RequireNoReferrerOnFullyQualifiedLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		p.AllowAttrs("rel").Matching(relPattern).OnElements("a")
		p.AllowAttrs("class").Matching(classPattern).OnElements("span", "code", "pre", "a")
		p.AllowAttrs("data-id").Matching(idPattern).OnElements("span", "a")
		p.AllowAttrs("id").Matching(idPattern).OnElements("h1", "h2", "h3")
		p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
		policy = p
	})
	return policy
}

// RenderHTML renders text and writes the tree as sanitized HTML.
func (r *Renderer) RenderHTML(text string, nav interfaces.Navigator) (template.HTML, error) {
	html, err := r.WriteHTML(r.Render(text, nav))
	if err != nil {
		return "", err
	}
	if r.skipPolicy {
		return template.HTML(html), nil
	}
	return template.HTML(Policy().Sanitize(html)), nil
}

// WriteHTML serializes a display tree. Every text value is escaped; the
// result has not been through the bluemonday pass.
func (r *Renderer) WriteHTML(root *Node) (string, error) {
	w := &htmlWriter{sanitizer: r.sanitizer}
	if root != nil {
		w.children(root)
	}
	if w.err != nil {
		return "", w.err
	}
	return w.b.String(), nil
}

type htmlWriter struct {
	b         strings.Builder
	sanitizer *Sanitizer
	err       error
}

func (w *htmlWriter) children(n *Node) {
	for _, child := range n.Children {
		w.node(child)
	}
}

func (w *htmlWriter) node(n *Node) {
	if w.err != nil {
		return
	}
	switch n.Kind {
	case NodeParagraph:
		w.element("p", nil, n)
	case NodeHeading:
		w.element("h"+strconv.Itoa(n.Level), attrs("id", n.Anchor), n)
	case NodeList:
		if !n.Ordered {
			w.element("ul", nil, n)
			return
		}
		var list map[string]string
		if n.Start != 1 {
			list = attrs("start", strconv.Itoa(n.Start))
		}
		w.element("ol", list, n)
	case NodeListItem:
		w.element("li", nil, n)
	case NodeBlockquote:
		w.element("blockquote", nil, n)
	case NodeCodeBlock:
		w.open("pre", nil)
		var code map[string]string
		if n.Language != "" {
			code = attrs("class", "language-"+n.Language)
		}
		w.element("code", code, n)
		w.close("pre")
	case NodeCodeToken:
		if n.Class == "" {
			w.text(n.Text)
			return
		}
		w.open("span", attrs("class", n.Class))
		w.text(n.Text)
		w.close("span")
	case NodeTable:
		w.open("table", nil)
		w.open("tbody", nil)
		w.children(n)
		w.close("tbody")
		w.close("table")
	case NodeTableRow:
		w.element("tr", nil, n)
	case NodeTableHeaderCell:
		w.element("th", nil, n)
	case NodeTableCell:
		w.element("td", nil, n)
	case NodeRule:
		w.void("hr", nil)
	case NodeText:
		w.text(n.Text)
	case NodeStrong:
		w.element("strong", nil, n)
	case NodeEmphasis:
		w.element("em", nil, n)
	case NodeStrike:
		w.element("s", nil, n)
	case NodeCode:
		w.open("code", nil)
		w.text(n.Text)
		w.close("code")
	case NodeLink:
		w.element("a", w.linkAttrs(n.Href, n.Title), n)
	case NodeImage:
		image := attrs("src", n.Src, "alt", n.Alt)
		if n.Title != "" {
			image["title"] = n.Title
		}
		w.void("img", image)
	case NodeMentionLink:
		link := w.linkAttrs(n.Href, "")
		link["class"] = n.Class
		link["data-id"] = n.TargetID
		w.element("a", link, n)
	case NodeMentionBadge:
		w.element("span", attrs("class", n.Class, "data-id", n.TargetID), n)
	case NodeLineBreak:
		w.void("br", nil)
	}
}

func (w *htmlWriter) linkAttrs(href, title string) map[string]string {
	out := attrs("href", href)
	if title != "" {
		out["title"] = title
	}
	if scheme, _ := urlScheme(normalizeURL(href)); scheme == "http" || scheme == "https" {
		out["rel"] = "noopener noreferrer"
		out["target"] = "_blank"
	}
	return out
}

func (w *htmlWriter) element(tag string, attributes map[string]string, n *Node) {
	w.open(tag, attributes)
	w.children(n)
	w.close(tag)
}

func (w *htmlWriter) open(tag string, attributes map[string]string) {
	w.b.WriteString("<" + tag)
	w.attributes(attributes)
	w.b.WriteString(">")
}

func (w *htmlWriter) void(tag string, attributes map[string]string) {
	w.open(tag, attributes)
}

func (w *htmlWriter) close(tag string) {
	w.b.WriteString("</" + tag + ">")
}

func (w *htmlWriter) attributes(attributes map[string]string) {
	if len(attributes) == 0 {
		return
	}
	if err := w.sanitizer.ValidateAttributes(attributes); err != nil {
		w.err = err
		return
	}
	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		w.b.WriteString(" " + key + `="` + nethtml.EscapeString(attributes[key]) + `"`)
	}
}

func (w *htmlWriter) text(value string) {
	w.b.WriteString(nethtml.EscapeString(value))
}

func attrs(pairs ...string) map[string]string {
	out := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[pairs[i]] = pairs[i+1]
	}
	return out
}
