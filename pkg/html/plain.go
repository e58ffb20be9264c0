package html

import (
	"strings"

	xhtml "golang.org/x/net/html"
)

// blockClosers are the end tags that terminate a visual line.
var blockClosers = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true,
}

// PlainText strips markup from an HTML fragment while keeping its line
// structure: <br> and the end of every block element become a newline.
// A block element opening mid-line starts a new line too.
// Entities are decoded and non-breaking spaces become plain spaces.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	z := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return strings.ReplaceAll(b.String(), "\u00a0", " ")
		case xhtml.TextToken:
			b.Write(z.Text())
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			switch n := string(name); {
			case n == "br":
				b.WriteByte('\n')
			case blockClosers[n] && b.Len() > 0 && !strings.HasSuffix(b.String(), "\n"):
				// A block starting after inline content begins a new line,
				// which also covers paragraphs whose end tag was left out.
				b.WriteByte('\n')
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if n := string(name); n == "br" || blockClosers[n] {
				b.WriteByte('\n')
			}
		}
	}
}
