package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/goliatone/go-lore/pkg/interfaces"
)

// ChromaHighlighter tokenizes code with chroma lexers. It holds no mutable
// state and is safe for concurrent use.
type ChromaHighlighter struct{}

// NewHighlighter constructs the default highlighter.
func NewHighlighter() *ChromaHighlighter {
	return &ChromaHighlighter{}
}

var _ interfaces.Highlighter = (*ChromaHighlighter)(nil)

// Highlight classifies code using the lexer registered for language. Unknown
// or empty languages, and lexer failures, yield a single plain token.
func (h *ChromaHighlighter) Highlight(code, language string) []interfaces.HighlightToken {
	if code == "" {
		return nil
	}
	plain := []interfaces.HighlightToken{{Text: code}}

	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return plain
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return plain
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plain
	}

	var tokens []interfaces.HighlightToken
	for _, token := range iterator.Tokens() {
		if token.Value == "" {
			continue
		}
		class := tokenClass(token.Type)
		if last := len(tokens) - 1; last >= 0 && tokens[last].Class == class {
			tokens[last].Text += token.Value
			continue
		}
		tokens = append(tokens, interfaces.HighlightToken{Class: class, Text: token.Value})
	}
	if len(tokens) == 0 {
		return plain
	}
	return tokens
}

func tokenClass(tokenType chroma.TokenType) string {
	for _, candidate := range []chroma.TokenType{tokenType, tokenType.SubCategory(), tokenType.Category()} {
		if candidate == chroma.Text || candidate == chroma.Background {
			return ""
		}
		if class, ok := chroma.StandardTypes[candidate]; ok {
			return class
		}
	}
	return ""
}

// plainHighlighter is used when highlighting is disabled.
type plainHighlighter struct{}

func (plainHighlighter) Highlight(code, _ string) []interfaces.HighlightToken {
	if code == "" {
		return nil
	}
	return []interfaces.HighlightToken{{Text: code}}
}

// PlainHighlighter returns a highlighter that never classifies code.
func PlainHighlighter() interfaces.Highlighter {
	return plainHighlighter{}
}
