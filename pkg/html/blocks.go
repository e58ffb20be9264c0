package html

import (
	"strings"

	xhtml "golang.org/x/net/html"
)

// BlockKind classifies one indivisible unit of a fragment.
type BlockKind int

const (
	BlockText      BlockKind = iota // a run of character data
	BlockLineBreak                  // <br>
	BlockElement                    // any other element, kept as opaque markup
)

// Block is one indivisible unit of HTML. Raw is the exact input text, so
// joining the Raw of consecutive blocks gives back the input.
type Block struct {
	Kind BlockKind
	Raw  string
}

// Fragment is an HTML string cut into top-level blocks. When the input is a
// single root element the root is unwrapped: Open and Close hold its raw
// tags and Blocks are its children. Lead and Trail hold whitespace outside
// the root.
type Fragment struct {
	Lead   string
	Open   string
	Close  string
	Trail  string
	Blocks []Block
}

// Wrapped reports whether the fragment had a single root element.
func (f *Fragment) Wrapped() bool {
	return f.Open != ""
}

// Wrap re-applies the root element, if any, around inner.
func (f *Fragment) Wrap(inner string) string {
	if !f.Wrapped() {
		return inner
	}
	return f.Open + inner + f.Close
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// closesParagraph lists the start tags that end an open <p> without a
// matching </p>.
var closesParagraph = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "details": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"menu": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "ul": true,
}

// impliedEnd reports whether a start tag named next closes the open element
// named open, as HTML allows for paragraphs, list items and table cells.
func impliedEnd(open, next string) bool {
	switch open {
	case "p":
		return closesParagraph[next]
	case "li":
		return next == "li"
	case "dt", "dd":
		return next == "dt" || next == "dd"
	case "option":
		return next == "option"
	case "tr":
		return next == "tr"
	case "td", "th":
		return next == "td" || next == "th" || next == "tr"
	}
	return false
}

// node is one top-level token run: a text token, a void element, or an
// element from its start tag to the tag that closes it, explicitly or not.
type node struct {
	kind  BlockKind
	tag   string
	raw   strings.Builder
	open  string
	close string
	// closed is set when the element ended with its own end tag, which is
	// what makes a node eligible as a wrapping root.
	closed bool
}

func (n *node) whitespace() bool {
	return n.kind == BlockText && strings.TrimSpace(n.raw.String()) == ""
}

// topLevel tokenizes s and groups the tokens into top-level nodes. Open
// elements are tracked on a stack that honours implied end tags. End tags
// with no open element are kept as markup and otherwise ignored, so
// malformed nesting degrades into a larger opaque node rather than an error.
func topLevel(s string) []*node {
	var (
		nodes []*node
		cur   *node
		open  []string
	)
	z := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		// Raw must be copied before Text or TagName decode the buffer in place.
		raw := string(z.Raw())
		var name string
		switch tt {
		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			n, _ := z.TagName()
			name = string(n)
		}

		if cur != nil && tt == xhtml.StartTagToken {
			for len(open) > 0 && impliedEnd(open[len(open)-1], name) {
				open = open[:len(open)-1]
			}
			if len(open) == 0 {
				cur = nil
			}
		}

		if cur != nil {
			cur.raw.WriteString(raw)
			switch tt {
			case xhtml.StartTagToken:
				if !voidElements[name] {
					open = append(open, name)
				}
			case xhtml.EndTagToken:
				if i := lastIndex(open, name); i >= 0 {
					open = open[:i]
					if i == 0 {
						cur.close = raw
						cur.closed = true
						cur = nil
					}
				}
			}
			continue
		}

		n := &node{kind: BlockElement}
		n.raw.WriteString(raw)
		nodes = append(nodes, n)
		switch tt {
		case xhtml.TextToken:
			n.kind = BlockText
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			n.tag = name
			if name == "br" {
				n.kind = BlockLineBreak
			} else if tt == xhtml.StartTagToken && !voidElements[name] {
				n.open = raw
				cur = n
				open = append(open[:0], name)
			}
		}
		// Stray end tags, comments and doctypes stay opaque elements.
	}
	return nodes
}

func lastIndex(stack []string, name string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			return i
		}
	}
	return -1
}

// Parse splits an HTML fragment into blocks. A fragment made of exactly one
// element, optionally surrounded by whitespace, is unwrapped one level.
func Parse(s string) *Fragment {
	nodes := topLevel(s)

	root := -1
	for i, n := range nodes {
		if n.whitespace() {
			continue
		}
		if root >= 0 || n.kind != BlockElement || !n.closed {
			root = -1
			break
		}
		root = i
	}
	if root < 0 {
		return &Fragment{Blocks: foldWhitespace(nodes)}
	}

	f := &Fragment{}
	for _, n := range nodes[:root] {
		f.Lead += n.raw.String()
	}
	for _, n := range nodes[root+1:] {
		f.Trail += n.raw.String()
	}
	r := nodes[root]
	f.Open, f.Close = r.open, r.close
	all := r.raw.String()
	inner := all[len(r.open) : len(all)-len(r.close)]
	f.Blocks = foldWhitespace(topLevel(inner))
	return f
}

// foldWhitespace turns nodes into blocks, gluing whitespace-only text onto
// the previous block (or the next one at the start) so that whitespace never
// forms a part on its own.
func foldWhitespace(nodes []*node) []Block {
	blocks := make([]Block, 0, len(nodes))
	pending := ""
	for _, n := range nodes {
		raw := n.raw.String()
		if n.whitespace() {
			if len(blocks) > 0 {
				blocks[len(blocks)-1].Raw += raw
			} else {
				pending += raw
			}
			continue
		}
		blocks = append(blocks, Block{Kind: n.kind, Raw: pending + raw})
		pending = ""
	}
	if pending != "" {
		// Nothing but whitespace.
		blocks = append(blocks, Block{Kind: BlockText, Raw: pending})
	}
	return blocks
}
