package render

import (
	"reflect"
	"strings"
	"testing"
)

func TestChromaHighlighterClassifiesKnownLanguage(t *testing.T) {
	h := NewHighlighter()
	tokens := h.Highlight("func main() {}\n", "go")
	if len(tokens) < 2 {
		t.Fatalf("expected several tokens, got %+v", tokens)
	}
	var joined strings.Builder
	classified := false
	for _, token := range tokens {
		joined.WriteString(token.Text)
		if token.Class != "" {
			classified = true
		}
	}
	if joined.String() != "func main() {}\n" {
		t.Fatalf("tokens must reproduce the source, got %q", joined.String())
	}
	if !classified {
		t.Fatalf("expected at least one classified token")
	}
	if !reflect.DeepEqual(tokens, h.Highlight("func main() {}\n", "go")) {
		t.Fatalf("expected deterministic output")
	}
}

func TestChromaHighlighterUnknownLanguageIsPlain(t *testing.T) {
	h := NewHighlighter()
	for _, lang := range []string{"", "no-such-language"} {
		tokens := h.Highlight("x = 1", lang)
		if len(tokens) != 1 || tokens[0].Class != "" || tokens[0].Text != "x = 1" {
			t.Fatalf("%q: expected single plain token, got %+v", lang, tokens)
		}
	}
	if tokens := h.Highlight("", "go"); len(tokens) != 0 {
		t.Fatalf("expected no tokens for empty code")
	}
}
