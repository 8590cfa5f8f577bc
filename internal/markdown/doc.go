// Package markdown converts between the portable serialized text that is
// persisted for every card body and the editable document tree.
//
// Two readers exist. ParsePortable reads serialized text with goldmark and a
// mention extension, so mention tokens are recognized before any link or
// emphasis parsing happens. ParseNative reads the editor's own markup. Parse
// classifies its input and picks one of them; the classification only
// treats text as native markup when it holds a balanced tag of a known
// element.
//
// GoldmarkParser is a plain Markdown to HTML converter kept for trusted
// sources such as local files; it performs no sanitization.
package markdown
