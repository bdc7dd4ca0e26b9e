package format

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

type openTag struct {
	name string
	raw  string
}

// htmlSplitter accumulates chunks of Telegram HTML. Tags still open at a cut
// are closed at the end of the chunk and reopened at the start of the next.
type htmlSplitter struct {
	maxLen  int
	chunks  []string
	buf     strings.Builder
	stack   []openTag
	visible bool // buf holds text beyond tags and whitespace
}

func (s *htmlSplitter) closers() string {
	var b strings.Builder
	for i := len(s.stack) - 1; i >= 0; i-- {
		b.WriteString("</" + s.stack[i].name + ">")
	}
	return b.String()
}

func (s *htmlSplitter) room() int {
	return s.maxLen - s.buf.Len() - len(s.closers())
}

func (s *htmlSplitter) flush() {
	s.buf.WriteString(s.closers())
	s.chunks = append(s.chunks, s.buf.String())
	s.buf.Reset()
	for _, t := range s.stack {
		s.buf.WriteString(t.raw)
	}
	s.visible = false
}

func (s *htmlSplitter) write(text string) {
	s.buf.WriteString(text)
	if strings.TrimSpace(text) != "" {
		s.visible = true
	}
}

func (s *htmlSplitter) text(text string) {
	for text != "" {
		room := s.room()
		if len(text) <= room {
			s.write(text)
			return
		}
		cut, next := textCut(text, room)
		if cut == 0 {
			if s.visible {
				s.flush()
				continue
			}
			// Not even one rune fits next to the reopened tags.
			_, size := utf8.DecodeRuneInString(text)
			cut, next = size, size
		}
		s.write(text[:cut])
		text = text[next:]
		s.flush()
	}
}

// SplitHTML cuts Telegram HTML into chunks of at most maxLen bytes. Cuts never
// fall inside a tag or an entity, prefer a newline in the second half of a
// chunk, and keep every chunk well formed.
func SplitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}
	s := &htmlSplitter{maxLen: maxLen}
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		switch tt {
		case html.TextToken:
			s.text(raw)
			continue
		case html.StartTagToken:
			name, _ := z.TagName()
			if len(raw)+len(name)+3 > s.room() && s.visible {
				s.flush()
			}
			s.buf.WriteString(raw)
			s.stack = append(s.stack, openTag{name: string(name), raw: raw})
		case html.EndTagToken:
			name, _ := z.TagName()
			s.buf.WriteString(raw)
			for i := len(s.stack) - 1; i >= 0; i-- {
				if s.stack[i].name == string(name) {
					s.stack = s.stack[:i]
					break
				}
			}
		default:
			if len(raw) > s.room() && s.visible {
				s.flush()
			}
			s.buf.WriteString(raw)
		}
	}
	if s.visible {
		s.buf.WriteString(s.closers())
		s.chunks = append(s.chunks, s.buf.String())
	}
	return s.chunks
}

// textCut returns where to end a chunk of text holding at most n bytes and
// where the remainder starts. It backs off out of UTF-8 sequences and
// entities, and consumes a newline it cuts at.
func textCut(text string, n int) (cut, next int) {
	if n <= 0 {
		return 0, 0
	}
	if n > len(text) {
		n = len(text)
	}
	for n > 0 && n < len(text) && !utf8.RuneStart(text[n]) {
		n--
	}
	if amp := strings.LastIndexByte(text[:n], '&'); amp >= 0 && !strings.Contains(text[amp:n], ";") {
		n = amp
	}
	if nl := strings.LastIndexByte(text[:n], '\n'); nl >= 0 && nl >= n/2 {
		return nl, nl + 1
	}
	return n, n
}
