package format

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitHTML(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   []string
	}{
		{"short text untouched", "<b>hi</b>", 100, []string{"<b>hi</b>"}},
		{"reopens tags", "<b>aaaa bbbb cccc</b>", 12,
			[]string{"<b>aaaa </b>", "<b>bbbb </b>", "<b>cccc</b>"}},
		{"never cuts an entity", "x &amp; y &amp; z", 6,
			[]string{"x ", "&amp; ", "y ", "&amp; ", "z"}},
		{"prefers and consumes newline", "<i>line one\nline two</i>", 16,
			[]string{"<i>line one</i>", "<i>line two</i>"}},
		{"keeps link attributes", `<a href="https://go.dev">gophers everywhere</a>`, 40,
			[]string{`<a href="https://go.dev">gophers eve</a>`, `<a href="https://go.dev">rywhere</a>`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitHTML(tt.in, tt.maxLen)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("SplitHTML mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplitHTML_ChunksStayWithinLimit(t *testing.T) {
	in := "<b>Jawaban:</b>\n" + strings.Repeat("<i>café</i> &lt;tag&gt; text\n", 300)
	chunks := SplitHTML(in, 200)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	var plain strings.Builder
	for i, c := range chunks {
		if len(c) > 200 {
			t.Fatalf("chunk %d is %d bytes", i, len(c))
		}
		if strings.Count(c, "<i>") != strings.Count(c, "</i>") {
			t.Fatalf("chunk %d has unbalanced tags: %q", i, c)
		}
		if strings.TrimSpace(PlainText(c)) == "" {
			t.Fatalf("chunk %d has no visible text: %q", i, c)
		}
		plain.WriteString(PlainText(c))
	}
	squash := func(s string) string { return strings.Join(strings.Fields(s), "") }
	if squash(plain.String()) != squash(PlainText(in)) {
		t.Fatal("splitting should not lose or duplicate text")
	}
}
