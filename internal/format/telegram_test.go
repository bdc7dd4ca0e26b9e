package format

import "testing"

func TestTelegramHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Paris is the capital.", "Paris is the capital."},
		{"emphasis", "**bold** and *it*", "<b>bold</b> and <i>it</i>"},
		{"strikethrough", "~~old~~ new", "<s>old</s> new"},
		{"escapes", "1 < 2 & 3 > 2", "1 &lt; 2 &amp; 3 &gt; 2"},
		{"inline code", "run `go test`", "run <code>go test</code>"},
		{"link", "[Go](https://go.dev)", `<a href="https://go.dev">Go</a>`},
		{"heading", "# Title\n\nBody", "<b>Title</b>\n\nBody"},
		{"bullets", "- a\n- b", "• a\n• b"},
		{"ordered", "1. one\n2. two", "1. one\n2. two"},
		{"paragraph then list", "Intro:\n\n- a", "Intro:\n\n• a"},
		{"paragraphs", "first\n\n\n\nsecond", "first\n\nsecond"},
		{"code block", "```go\nfmt.Println(\"hi\")\n```", `<pre><code class="language-go">fmt.Println("hi")</code></pre>`},
		{"raw supported tag", "<b>bold</b> text", "<b>bold</b> text"},
		{"raw unsupported tag", "<span>x</span>", "x"},
		{"inline spacing in list", "- **a** *b*", "• <b>a</b> <i>b</i>"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TelegramHTML(tt.in); got != tt.want {
				t.Fatalf("TelegramHTML(%q)\n got: %q\nwant: %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTelegramHTML_Linkify(t *testing.T) {
	got := TelegramHTML("see https://go.dev")
	want := `see <a href="https://go.dev">https://go.dev</a>`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("<b>Jawaban:</b>\nParis &amp; Rome<br>end")
	want := "Jawaban:\nParis & Rome\nend"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEscape(t *testing.T) {
	if got := Escape(`<a href="x">&`); got != `&lt;a href="x"&gt;&amp;` {
		t.Fatalf("unexpected escape: %q", got)
	}
}
