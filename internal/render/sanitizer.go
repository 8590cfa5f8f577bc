package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	nethtml "golang.org/x/net/html"

	"github.com/goliatone/go-lore/internal/mention"
)

// Rejection reasons reported to metrics and logs.
const (
	ReasonLinkScheme  = "link_scheme"
	ReasonImageScheme = "image_scheme"
	ReasonMalformed   = "malformed_url"
	ReasonMention     = "mention_target"
)

var schemePattern = regexp.MustCompile(`^[a-z][a-z0-9+.\-]*$`)

// Sanitizer enforces the URL scheme allow-lists applied to rendered links and
// images. Scheme-less relative references are always accepted.
type Sanitizer struct {
	linkSchemes  map[string]struct{}
	imageSchemes map[string]struct{}
}

// NewSanitizer returns a sanitizer allowing http, https and entity links and
// http, https images.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		linkSchemes:  schemeSet("http", "https", mention.Scheme),
		imageSchemes: schemeSet("http", "https"),
	}
}

// NewSanitizerWithSchemes narrows the link allow-list. Schemes outside the
// default set are ignored; entity links are always allowed since mentions
// depend on them.
func NewSanitizerWithSchemes(schemes ...string) *Sanitizer {
	s := NewSanitizer()
	if len(schemes) == 0 {
		return s
	}
	narrowed := map[string]struct{}{mention.Scheme: {}}
	for _, scheme := range schemes {
		scheme = strings.ToLower(strings.TrimSpace(scheme))
		if _, ok := s.linkSchemes[scheme]; ok {
			narrowed[scheme] = struct{}{}
		}
	}
	s.linkSchemes = narrowed
	return s
}

func schemeSet(schemes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(schemes))
	for _, scheme := range schemes {
		set[scheme] = struct{}{}
	}
	return set
}

// LinkURL returns the URL to emit for a link, or a rejection reason.
func (s *Sanitizer) LinkURL(raw string) (string, string) {
	return s.check(raw, s.linkSchemes, ReasonLinkScheme)
}

// ImageURL returns the URL to emit for an image, or a rejection reason.
func (s *Sanitizer) ImageURL(raw string) (string, string) {
	return s.check(raw, s.imageSchemes, ReasonImageScheme)
}

// ValidateAttributes rejects inline event handlers like onload/onerror.
func (s *Sanitizer) ValidateAttributes(attrs map[string]string) error {
	for key := range attrs {
		lower := strings.ToLower(strings.TrimSpace(key))
		if strings.HasPrefix(lower, "on") {
			return fmt.Errorf("render: attribute %q not permitted", key)
		}
	}
	return nil
}

func (s *Sanitizer) check(raw string, allowed map[string]struct{}, reason string) (string, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ReasonMalformed
	}
	scheme, ok := urlScheme(normalizeURL(trimmed))
	if !ok {
		return "", ReasonMalformed
	}
	if scheme == "" {
		return trimmed, ""
	}
	if _, ok := allowed[scheme]; !ok {
		return "", reason
	}
	return trimmed, ""
}

// normalizeURL resolves character references and drops whitespace and
// control characters, which browsers ignore when reading a scheme.
func normalizeURL(raw string) string {
	resolved := nethtml.UnescapeString(raw)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '\u200b' || r == '\ufeff' {
			return -1
		}
		return r
	}, resolved)
}

// urlScheme returns the lower-cased scheme, or "" for relative references.
// ok is false when a colon appears before any path delimiter but the prefix
// is not a valid scheme.
func urlScheme(normalized string) (string, bool) {
	end := strings.IndexAny(normalized, "/?#")
	head := normalized
	if end >= 0 {
		head = normalized[:end]
	}
	colon := strings.IndexByte(head, ':')
	if colon < 0 {
		return "", true
	}
	scheme := strings.ToLower(head[:colon])
	if !schemePattern.MatchString(scheme) {
		return "", false
	}
	return scheme, true
}
