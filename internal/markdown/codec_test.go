package markdown

import (
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-lore/pkg/document"
)

func TestEncodeBlocks(t *testing.T) {
	codec := NewCodec()
	doc := document.New(
		document.Heading(1, document.Text("Title")),
		document.Paragraph(document.Text("Hello "), document.Bold(document.Text("world"))),
		document.BulletList(document.Item(document.Text("one")), document.Item(document.Text("two"))),
		document.OrderedList(3, document.Item(document.Text("three")), document.Item(document.Text("four"))),
		document.CodeBlock("go", "fmt.Println(1)"),
		document.Quote(document.Paragraph(document.Text("quoted"))),
		document.Rule(),
		document.Paragraph(document.Image("https://example.com/a.png", "map", "World map")),
	)

	want := strings.Join([]string{
		"# Title",
		"Hello **world**",
		"- one\n- two",
		"3. three\n4. four",
		"```go\nfmt.Println(1)\n```",
		"> quoted",
		"---",
		`![map](https://example.com/a.png "World map")`,
	}, "\n\n")

	if got := codec.Encode(doc); got != want {
		t.Fatalf("encode mismatch\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestEncodeEmptyDocumentYieldsEmptyString(t *testing.T) {
	codec := NewCodec()
	cases := []*document.Document{
		nil,
		document.New(),
		document.New(document.Paragraph(document.Text("   "))),
		document.New(document.Paragraph(), document.Paragraph(document.Text("\n"))),
	}
	for i, doc := range cases {
		if got := codec.Encode(doc); got != "" {
			t.Fatalf("case %d: expected empty output, got %q", i, got)
		}
	}
}

func TestEncodeMentionUsesTokenGrammar(t *testing.T) {
	codec := NewCodec()
	doc := document.New(document.Paragraph(
		document.Text("Check "),
		document.Mention("card-42", "Dragon Lore"),
		document.Text(" for details"),
	))
	want := "Check @[Dragon Lore](entity:card-42) for details"
	if got := codec.Encode(doc); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestEncodeUnencodableMentionDegradesToLabel(t *testing.T) {
	codec := NewCodec()
	doc := document.New(document.Paragraph(document.Mention("card-1", "a]b")))
	if got := codec.Encode(doc); got != `a\]b` {
		t.Fatalf("expected escaped label text, got %q", got)
	}
}

func TestEncodeEscapesMarkdownSyntax(t *testing.T) {
	codec := NewCodec()
	cases := []string{
		"# not a heading",
		"- not a list",
		"1. not a list",
		"*stars* and _underscores_",
		"[not](a link)",
		"a <b>tag</b>",
		"pipes | and ~tildes~",
		"&amp; stays literal",
		"back\\slash",
		"@[Fake](entity:x) token",
		"> not a quote",
	}
	for _, text := range cases {
		doc := document.New(document.Paragraph(document.Text(text)))
		encoded := codec.Encode(doc)
		back := codec.ParsePortable(encoded)
		if !reflect.DeepEqual(back, doc) {
			t.Fatalf("text %q did not survive round trip\nencoded: %q\nparsed: %#v", text, encoded, back)
		}
	}
}

func TestParsePortableReadsMentionsAsNodes(t *testing.T) {
	codec := NewCodec()
	doc := codec.ParsePortable("Check @[Dragon Lore](entity:card-42) for details")

	want := document.New(document.Paragraph(
		document.Text("Check "),
		document.Mention("card-42", "Dragon Lore"),
		document.Text(" for details"),
	))
	if !reflect.DeepEqual(doc, want) {
		t.Fatalf("unexpected document: %#v", doc)
	}
}

func TestParsePortableUnescapesMentionLabels(t *testing.T) {
	codec := NewCodec()
	doc := codec.ParsePortable("@[Tom &amp; Jerry](entity:c1)")
	inline := doc.Blocks[0].Inlines[0]
	if inline.Kind != document.InlineMention || inline.Label != "Tom & Jerry" {
		t.Fatalf("expected unescaped mention label, got %#v", inline)
	}
}

func TestParsePortableReadsMentionAcrossLineBreak(t *testing.T) {
	codec := NewCodec()
	doc := codec.ParsePortable("Check @[Dragon\nLore](entity:card-42) now")

	want := document.New(document.Paragraph(
		document.Text("Check "),
		document.Mention("card-42", "Dragon\nLore"),
		document.Text(" now"),
	))
	if !reflect.DeepEqual(doc, want) {
		t.Fatalf("unexpected document: %#v", doc)
	}
}

func TestMultiLineMentionLabelRoundTrip(t *testing.T) {
	codec := NewCodec()
	cases := []struct {
		name    string
		doc     *document.Document
		encoded string
		want    *document.Document
	}{
		{
			name:    "paragraph keeps the break",
			doc:     document.New(document.Paragraph(document.Text("see "), document.Mention("card-1", "a\nb"))),
			encoded: "see @[a\nb](entity:card-1)",
		},
		{
			name:    "heading joins lines",
			doc:     document.New(document.Heading(2, document.Mention("card-1", "a\nb"))),
			encoded: "## @[a b](entity:card-1)",
			want:    document.New(document.Heading(2, document.Mention("card-1", "a b"))),
		},
		{
			name:    "break before a block marker is joined",
			doc:     document.New(document.Paragraph(document.Mention("card-1", "a\n# b"))),
			encoded: "@[a # b](entity:card-1)",
			want:    document.New(document.Paragraph(document.Mention("card-1", "a # b"))),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := codec.Encode(tc.doc)
			if encoded != tc.encoded {
				t.Fatalf("want %q, got %q", tc.encoded, encoded)
			}
			want := tc.want
			if want == nil {
				want = tc.doc
			}
			if back := codec.ParsePortable(encoded); !reflect.DeepEqual(back, want) {
				t.Fatalf("unexpected document: %#v", back)
			}
		})
	}
}

func TestParsePortableWithoutMarkersIsOneParagraph(t *testing.T) {
	codec := NewCodec()
	doc := codec.ParsePortable("just some words\nacross two lines")
	if len(doc.Blocks) != 1 || doc.Blocks[0].Kind != document.BlockParagraph {
		t.Fatalf("expected single paragraph, got %#v", doc.Blocks)
	}
	if got := document.PlainText(doc.Blocks[0].Inlines); got != "just some words across two lines" {
		t.Fatalf("expected soft break to become a space, got %q", got)
	}
}

func TestParsePortableClampsDeepHeadings(t *testing.T) {
	codec := NewCodec()
	doc := codec.ParsePortable("##### Deep")
	if len(doc.Blocks) != 1 || doc.Blocks[0].Kind != document.BlockHeading {
		t.Fatalf("expected heading, got %#v", doc.Blocks)
	}
	if doc.Blocks[0].Level != 3 {
		t.Fatalf("expected level 3, got %d", doc.Blocks[0].Level)
	}
}

func TestParsePortableKeepsRawHTMLAsText(t *testing.T) {
	codec := NewCodec()
	doc := codec.ParsePortable("before <span onclick=\"x()\">hi</span> after")
	if len(doc.Blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(doc.Blocks))
	}
	got := document.PlainText(doc.Blocks[0].Inlines)
	if got != "before <span onclick=\"x()\">hi</span> after" {
		t.Fatalf("expected raw markup preserved as text, got %q", got)
	}

	block := codec.ParsePortable("<div>\n<script>alert(1)</script>\n</div>")
	if len(block.Blocks) != 1 || block.Blocks[0].Kind != document.BlockParagraph {
		t.Fatalf("expected html block to degrade into a paragraph, got %#v", block.Blocks)
	}
	if !strings.Contains(document.PlainText(block.Blocks[0].Inlines), "<script>") {
		t.Fatalf("expected literal markup text, got %#v", block.Blocks[0].Inlines)
	}
}

func TestParsePortableWhitespaceIsEmpty(t *testing.T) {
	codec := NewCodec()
	if doc := codec.ParsePortable(" \n\t "); len(doc.Blocks) != 0 {
		t.Fatalf("expected empty document, got %#v", doc.Blocks)
	}
}

func TestTableRoundTrip(t *testing.T) {
	codec := NewCodec()
	doc := document.New(document.TableBlock(
		[]string{"Name", "Role", "Home"},
		[]string{"Smaug", "Dragon", "Erebor"},
		[]string{"Bilbo", "Burglar", "Bag End"},
	))

	encoded := codec.Encode(doc)
	back := codec.ParsePortable(encoded)
	if len(back.Blocks) != 1 || back.Blocks[0].Kind != document.BlockTable {
		t.Fatalf("expected table block, got %#v", back.Blocks)
	}
	table := back.Blocks[0].Table
	if table.Columns() != 3 || len(table.Rows) != 2 {
		t.Fatalf("expected 3 columns and 2 rows, got %d and %d", table.Columns(), len(table.Rows))
	}
	if !reflect.DeepEqual(back, doc) {
		t.Fatalf("table did not round trip\nencoded:\n%s\ngot: %#v", encoded, back)
	}
}

func TestTableSeparatorMatchesHeader(t *testing.T) {
	codec := NewCodec()
	doc := document.New(document.TableBlock(
		[]string{"a", "b"},
		[]string{"1"},
		[]string{"1", "2", "3"},
	))
	lines := strings.Split(codec.Encode(doc), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %v", lines)
	}
	if lines[1] != "| --- | --- |" {
		t.Fatalf("expected separator sized to header, got %q", lines[1])
	}
	if lines[2] != "| 1 |  |" {
		t.Fatalf("expected short row padded, got %q", lines[2])
	}
}

func TestFencedCodeGrowsAroundBackticks(t *testing.T) {
	codec := NewCodec()
	doc := document.New(document.CodeBlock("md", "```\ninner\n```"))
	encoded := codec.Encode(doc)
	if !strings.HasPrefix(encoded, "````md\n") {
		t.Fatalf("expected longer fence, got %q", encoded)
	}
	if back := codec.ParsePortable(encoded); !reflect.DeepEqual(back, doc) {
		t.Fatalf("code block did not round trip: %#v", back)
	}
}

func TestPortableConversionIsIdempotent(t *testing.T) {
	codec := NewCodec()
	inputs := []string{
		"# Title\n\nSome *soft* and **strong** text with `code` and ~~gone~~.",
		"- a\n- b\n  - nested\n- c",
		"3. three\n4. four\n\n- bullets\n\n* more bullets",
		"> quote line one\n> line two\n>\n> second paragraph",
		"| h1 | h2 |\n| --- | --- |\n| a | b |\n| c |",
		"Line one  \nline two\\\nline three",
		"[link](https://example.com \"Title\") and ![img](/a.png)",
		"<https://example.com> autolink",
		"#### deep heading\n\n***\n\n```\nplain\n```",
		"Text with <em>html</em> inside\n\n<div>\nblock\n</div>",
		"Check @[Dragon Lore](entity:card-42) for details",
	}
	for _, input := range inputs {
		first := codec.Encode(codec.ParsePortable(input))
		second := codec.Encode(codec.ParsePortable(first))
		if first != second {
			t.Fatalf("conversion drifted for %q\nfirst:\n%s\nsecond:\n%s", input, first, second)
		}
		if !reflect.DeepEqual(codec.ParsePortable(first), codec.ParsePortable(second)) {
			t.Fatalf("structure drifted for %q", input)
		}
	}
}

func TestIsNativeMarkup(t *testing.T) {
	codec := NewCodec()
	cases := []struct {
		input string
		want  bool
	}{
		{"<p>Hello</p>", true},
		{"text <strong>bold</strong> text", true},
		{"line<br>break", true},
		{`<img src="a.png">`, true},
		{"<ul><li>one</li></ul>", true},
		{"a < b and c > d", false},
		{"<notatag>hi</notatag>", false},
		{"<div>never closed", false},
		{"<https://example.com>", false},
		{"<user@example.com>", false},
		{"plain **markdown**", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := codec.IsNativeMarkup(tc.input); got != tc.want {
			t.Fatalf("IsNativeMarkup(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseClassifiesInput(t *testing.T) {
	codec := NewCodec()

	native := codec.Parse("<p>Hi <strong>there</strong></p>")
	want := document.New(document.Paragraph(document.Text("Hi "), document.Bold(document.Text("there"))))
	if !reflect.DeepEqual(native, want) {
		t.Fatalf("expected native parse, got %#v", native)
	}

	portable := codec.Parse("Hi **there**")
	if !reflect.DeepEqual(portable, want) {
		t.Fatalf("expected portable parse, got %#v", portable)
	}
}

func TestParseNativeReadsEditorMarkup(t *testing.T) {
	codec := NewCodec()
	markup := `<h5>Deep</h5>` +
		`<p>See <span data-type="mention" data-id="card-9" data-label="Dragon Lore" class="mention">@Dragon Lore</span> now</p>` +
		`<ol start="2"><li><p>two</p></li></ol>` +
		`<pre><code class="language-go">x := 1
</code></pre>` +
		`<table><tbody><tr><th><p>a</p></th><th><p>b</p></th></tr><tr><td><p>1</p></td><td><p>2</p></td></tr></tbody></table>` +
		`<script>alert(1)</script><custom-tag>kept text</custom-tag>`

	doc := codec.ParseNative(markup)
	want := document.New(
		document.Heading(3, document.Text("Deep")),
		document.Paragraph(document.Text("See "), document.Mention("card-9", "Dragon Lore"), document.Text(" now")),
		document.OrderedList(2, document.Item(document.Text("two"))),
		document.CodeBlock("go", "x := 1"),
		document.TableBlock([]string{"a", "b"}, []string{"1", "2"}),
		document.Paragraph(document.Text("kept text")),
	)
	if !reflect.DeepEqual(doc, want) {
		t.Fatalf("unexpected native document\nwant: %#v\ngot:  %#v", want, doc)
	}
}

func TestRenderNativeMentionSpan(t *testing.T) {
	codec := NewCodec()
	doc := document.New(document.Paragraph(document.Mention("c1", `<Tom & "Jerry">`)))
	got := codec.RenderNative(doc)
	want := `<p><span data-type="mention" data-id="c1" data-label="&lt;Tom &amp; &#34;Jerry&#34;&gt;" class="mention">@&lt;Tom &amp; &#34;Jerry&#34;&gt;</span></p>`
	if got != want {
		t.Fatalf("unexpected markup\nwant: %s\ngot:  %s", want, got)
	}
}

func TestPrepareForEditor(t *testing.T) {
	codec := NewCodec()
	if got := codec.PrepareForEditor("  "); got != "" {
		t.Fatalf("expected empty output for blank input, got %q", got)
	}
	native := "<p>already <em>markup</em></p>"
	if got := codec.PrepareForEditor(native); got != native {
		t.Fatalf("expected native markup to pass through, got %q", got)
	}
	got := codec.PrepareForEditor("Hello **world**")
	if got != "<p>Hello <strong>world</strong></p>" {
		t.Fatalf("unexpected editor markup %q", got)
	}
}

func TestFromEditor(t *testing.T) {
	codec := NewCodec()
	for _, input := range []string{"", "  ", "<p></p>"} {
		if got := codec.FromEditor(input); got != "" {
			t.Fatalf("expected empty output for %q, got %q", input, got)
		}
	}
	markup := codec.PrepareForEditor("Check @[Dragon Lore](entity:card-42) for details")
	if got := codec.FromEditor(markup); got != "Check @[Dragon Lore](entity:card-42) for details" {
		t.Fatalf("expected editor round trip to restore text, got %q", got)
	}
}
