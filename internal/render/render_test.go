package render

import (
	"strings"
	"testing"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "empty",
			html:     "",
			expected: "",
		},
		{
			name:     "plain text",
			html:     "Hello World",
			expected: "Hello World",
		},
		{
			name:     "paragraphs",
			html:     "<p>First</p><p>Second</p>",
			expected: "First\nSecond",
		},
		{
			name:     "inline markup flattened",
			html:     "<p>Some <b>bold</b> and <a href=\"http://x\">linked</a> text</p>",
			expected: "Some bold and linked text",
		},
		{
			name:     "script dropped",
			html:     "<p>visible</p><script>alert(1)</script>",
			expected: "visible",
		},
		{
			name:     "whitespace collapsed",
			html:     "<p>too   \n\t many   spaces</p>",
			expected: "too many spaces",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLToText(tt.html); got != tt.expected {
				t.Errorf("HTMLToText(%q) = %q, want %q", tt.html, got, tt.expected)
			}
		})
	}
}

func TestHTMLToTextDeepNesting(t *testing.T) {
	// A pathologically nested fragment must not blow the stack.
	depth := 20000
	var b strings.Builder
	for i := 0; i < depth; i++ {
		b.WriteString("<div>")
	}
	b.WriteString("core")
	for i := 0; i < depth; i++ {
		b.WriteString("</div>")
	}

	got := HTMLToText(b.String())
	if !strings.Contains(got, "core") {
		t.Errorf("deeply nested content lost: %q", got)
	}
}

func TestHTMLToTextListItems(t *testing.T) {
	got := HTMLToText("<ul><li>one</li><li>two</li></ul>")
	if got != "one\ntwo" {
		t.Errorf("list rendering = %q", got)
	}
}
