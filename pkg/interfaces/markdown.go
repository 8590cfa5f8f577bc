package interfaces

import "github.com/goliatone/go-lore/pkg/document"

// MarkdownParser converts Markdown bytes straight into HTML. It does not
// sanitize its output and must only be fed trusted input.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// DocumentCodec converts between serialized text and the editable document
// tree. None of the methods fail; unrecognized input degrades to text.
type DocumentCodec interface {
	Encode(doc *document.Document) string
	ParsePortable(text string) *document.Document
	ParseNative(markup string) *document.Document
	Parse(text string) *document.Document
	IsNativeMarkup(text string) bool
	RenderNative(doc *document.Document) string
	PrepareForEditor(text string) string
	FromEditor(markup string) string
}
