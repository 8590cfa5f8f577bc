package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/pkg/document"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// Codec converts between serialized text, editor markup and the document
// tree. A Codec is safe for concurrent use.
type Codec struct {
	engine goldmark.Markdown
	logger interfaces.Logger
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithLogger attaches a logger used for classification diagnostics.
func WithLogger(logger interfaces.Logger) CodecOption {
	return func(c *Codec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCodec builds a codec with its goldmark engine.
func NewCodec(opts ...CodecOption) *Codec {
	codec := &Codec{
		engine: newPortableEngine(),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(codec)
	}
	return codec
}

var _ interfaces.DocumentCodec = (*Codec)(nil)

// Encode serializes doc into portable text. Empty documents yield "".
func (c *Codec) Encode(doc *document.Document) string {
	return portableWriter{}.document(doc)
}

// ParsePortable reads serialized text. Unsupported constructs, including raw
// markup, degrade to literal text; whitespace-only input yields an empty
// document.
func (c *Codec) ParsePortable(input string) *document.Document {
	if strings.TrimSpace(input) == "" {
		return document.New()
	}
	source := []byte(input)
	root := c.engine.Parser().Parse(text.NewReader(source))
	reader := &portableReader{source: source}
	return document.New(reader.blocks(root)...)
}

// ParseNative reads editor markup.
func (c *Codec) ParseNative(markup string) *document.Document {
	if strings.TrimSpace(markup) == "" {
		return document.New()
	}
	return nativeReader{}.read(markup)
}

// IsNativeMarkup reports whether text is editor markup rather than portable
// text. Only a balanced tag of a known element qualifies.
func (c *Codec) IsNativeMarkup(input string) bool {
	return isNativeMarkup(input)
}

// Parse classifies input and reads it with the matching reader.
func (c *Codec) Parse(input string) *document.Document {
	if c.IsNativeMarkup(input) {
		c.logger.Debug("markdown.codec.native_detected", "length", len(input))
		return c.ParseNative(input)
	}
	return c.ParsePortable(input)
}

// RenderNative writes the editor markup for doc.
func (c *Codec) RenderNative(doc *document.Document) string {
	return nativeWriter{}.document(doc)
}

// PrepareForEditor returns markup the editor can load. Native markup passes
// through untouched.
func (c *Codec) PrepareForEditor(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	if c.IsNativeMarkup(input) {
		return input
	}
	return c.RenderNative(c.ParsePortable(input))
}

// FromEditor converts editor markup into portable text for persistence.
func (c *Codec) FromEditor(markup string) string {
	trimmed := strings.TrimSpace(markup)
	if trimmed == "" || trimmed == "<p></p>" {
		return ""
	}
	return c.Encode(c.ParseNative(markup))
}
