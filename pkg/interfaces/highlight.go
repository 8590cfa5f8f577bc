package interfaces

// HighlightToken is one classified run of source code.
type HighlightToken struct {
	// Class is a short CSS class name; empty for plain text.
	Class string `json:"class,omitempty"`
	Text  string `json:"text"`
}

// Highlighter tokenizes code for display. Output must be a pure function of
// (code, language); unknown languages yield a single plain token.
type Highlighter interface {
	Highlight(code, language string) []HighlightToken
}
