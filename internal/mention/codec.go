// Package mention encodes and decodes the inline reference construct that
// links one document to another inside serialized text:
//
//	@[<label>](entity:<id>)
//
// The grammar is the on-disk contract shared with every tool that reads
// persisted content, so it must stay byte-compatible.
package mention

import (
	"regexp"
	"strings"
)

const (
	// Trigger starts a mention token and opens the suggestion popup in editors.
	Trigger = '@'
	// Scheme is the URL scheme that marks a link as a document reference.
	Scheme = "entity"
)

const pattern = `@\[([^\]]+)\]\(entity:([^)]+)\)`

var (
	tokenPattern   = regexp.MustCompile(pattern)
	anchoredPrefix = regexp.MustCompile(`^` + pattern)

	labelEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	labelUnescaper = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// Token is one decoded mention. Start and End are byte offsets into the
// scanned fragment bounding the whole token.
type Token struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Encode serializes a reference to document id with the given display label.
func Encode(id, label string) (string, error) {
	if err := validateLabel(label); err != nil {
		return "", err
	}
	if err := validateID(id); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(id) + len(label) + len(Scheme) + 6)
	b.WriteString("@[")
	b.WriteString(EscapeLabel(label))
	b.WriteString("](")
	b.WriteString(Href(id))
	b.WriteString(")")
	return b.String(), nil
}

// Decode returns every mention in fragment, leftmost first and
// non-overlapping. Text that only resembles a token is not consumed.
func Decode(fragment string) []Token {
	matches := tokenPattern.FindAllStringSubmatchIndex(fragment, -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]Token, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, tokenFrom(fragment, m))
	}
	return tokens
}

// Match reports whether s begins with a mention token and returns it.
func Match(s string) (Token, bool) {
	m := anchoredPrefix.FindStringSubmatchIndex(s)
	if m == nil {
		return Token{}, false
	}
	return tokenFrom(s, m), true
}

// Href returns the link target used for id.
func Href(id string) string {
	return Scheme + ":" + id
}

// ParseHref extracts the document id from an entity link target.
func ParseHref(href string) (string, bool) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(href), ":")
	if !ok || !strings.EqualFold(scheme, Scheme) || rest == "" {
		return "", false
	}
	return rest, true
}

// EscapeLabel neutralizes markup metacharacters in a label.
func EscapeLabel(label string) string {
	return labelEscaper.Replace(label)
}

// UnescapeLabel reverses EscapeLabel.
func UnescapeLabel(label string) string {
	return labelUnescaper.Replace(label)
}

func tokenFrom(s string, m []int) Token {
	return Token{
		Label: UnescapeLabel(s[m[2]:m[3]]),
		ID:    s[m[4]:m[5]],
		Start: m[0],
		End:   m[1],
	}
}
