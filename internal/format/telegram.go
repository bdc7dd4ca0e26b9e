// Package format converts model output into the HTML subset accepted by the
// Telegram Bot API.
package format

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	// Raw HTML is passed through to the sanitiser below, which keeps only
	// the tags Telegram understands.
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	extraBreaks = regexp.MustCompile(`\n{3,}`)
)

// Escape escapes s for use as Telegram HTML text.
func Escape(s string) string {
	return textEscaper.Replace(s)
}

// TelegramHTML renders Markdown (as produced by Gemini) into Telegram HTML.
// Unsupported constructs are flattened to text; all text is escaped.
func TelegramHTML(markdown string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return Escape(strings.TrimSpace(markdown))
	}
	doc, err := html.Parse(&buf)
	if err != nil {
		return Escape(strings.TrimSpace(markdown))
	}

	w := &writer{}
	w.walk(doc)
	out := extraBreaks.ReplaceAllString(w.sb.String(), "\n\n")
	return strings.TrimSpace(out)
}

// PlainText strips Telegram HTML back to text, for resending a message whose
// entities the platform rejected.
func PlainText(s string) string {
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return s
	}
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	for _, n := range nodes {
		collect(n)
	}
	return sb.String()
}

type writer struct {
	sb strings.Builder
}

func (w *writer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		// Layout whitespace between block elements.
		if isBlockContainer(n.Parent) && strings.TrimSpace(n.Data) == "" && strings.Contains(n.Data, "\n") {
			return
		}
		w.sb.WriteString(Escape(n.Data))
		return
	case html.ElementNode:
		w.element(n)
		return
	case html.CommentNode:
		return
	}
	w.children(n)
}

func (w *writer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *writer) wrap(tag string, n *html.Node) {
	w.sb.WriteString("<" + tag + ">")
	w.children(n)
	w.sb.WriteString("</" + tag + ">")
}

func (w *writer) element(n *html.Node) {
	switch n.DataAtom {
	case atom.Strong, atom.B:
		w.wrap("b", n)
	case atom.Em, atom.I:
		w.wrap("i", n)
	case atom.Del, atom.S, atom.Strike:
		w.wrap("s", n)
	case atom.U, atom.Ins:
		w.wrap("u", n)
	case atom.Code:
		w.sb.WriteString("<code>" + Escape(textContent(n)) + "</code>")
	case atom.Pre:
		w.pre(n)
	case atom.A:
		href := attr(n, "href")
		if href == "" {
			w.children(n)
			return
		}
		w.sb.WriteString(`<a href="` + attrEscaper.Replace(href) + `">`)
		w.children(n)
		w.sb.WriteString("</a>")
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.block()
		w.wrap("b", n)
		w.block()
	case atom.P, atom.Div:
		w.block()
		w.children(n)
		w.block()
	case atom.Blockquote:
		w.block()
		w.sb.WriteString("<blockquote>")
		w.children(n)
		w.trimTrailingBreaks()
		w.sb.WriteString("</blockquote>")
		w.block()
	case atom.Ul, atom.Ol:
		w.list(n)
	case atom.Br:
		w.sb.WriteByte('\n')
	case atom.Hr:
		w.block()
	case atom.Img:
		w.sb.WriteString(Escape(attr(n, "alt")))
	case atom.Script, atom.Style, atom.Head:
		// dropped
	default:
		w.children(n)
	}
}

func (w *writer) list(n *html.Node) {
	w.newline()
	ordered := n.DataAtom == atom.Ol
	idx := 1
	if start, err := strconv.Atoi(attr(n, "start")); err == nil {
		idx = start
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		w.newline()
		if ordered {
			w.sb.WriteString(strconv.Itoa(idx) + ". ")
			idx++
		} else {
			w.sb.WriteString("• ")
		}
		w.children(c)
		w.trimTrailingBreaks()
	}
	w.block()
}

func (w *writer) pre(n *html.Node) {
	w.block()
	lang := ""
	if code := n.FirstChild; code != nil && code.DataAtom == atom.Code {
		if class := attr(code, "class"); strings.HasPrefix(class, "language-") {
			lang = class
		}
	}
	body := Escape(strings.TrimRight(textContent(n), "\n"))
	if lang != "" {
		w.sb.WriteString(`<pre><code class="` + attrEscaper.Replace(lang) + `">` + body + "</code></pre>")
	} else {
		w.sb.WriteString("<pre>" + body + "</pre>")
	}
	w.block()
}

// block ensures the output ends with a blank line, unless it is empty.
func (w *writer) block() {
	s := w.sb.String()
	if s == "" {
		return
	}
	switch {
	case strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		w.sb.WriteByte('\n')
	default:
		w.sb.WriteString("\n\n")
	}
}

func (w *writer) newline() {
	s := w.sb.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		w.sb.WriteByte('\n')
	}
}

func (w *writer) trimTrailingBreaks() {
	s := w.sb.String()
	trimmed := strings.TrimRight(s, "\n")
	if len(trimmed) != len(s) {
		w.sb.Reset()
		w.sb.WriteString(trimmed)
	}
}

func isBlockContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return true
	}
	switch n.DataAtom {
	case atom.Html, atom.Body, atom.Ul, atom.Ol, atom.Li, atom.Blockquote:
		return true
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
