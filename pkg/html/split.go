package html

import (
	"regexp"
	"strings"
)

// Measurer converts a height budget into a character budget. text.Metrics
// implements it.
type Measurer interface {
	MaxChars(budget float64) int
	OrphanChars() int
	TextLength(s string) int
}

// Splitter cuts HTML into parts whose estimated height fits a budget. Cuts
// fall between blocks, never inside an element's markup.
type Splitter struct {
	Measure Measurer
	// BreakLongText lets a text run that is too long for a whole part be cut
	// at a paragraph, sentence or word boundary. Without it such a run is
	// placed alone.
	BreakLongText bool
}

// NewSplitter returns a Splitter measuring with m. Long text runs are kept
// whole until BreakLongText is set.
func NewSplitter(m Measurer) *Splitter {
	return &Splitter{Measure: m}
}

// blockSize is the character proxy for a block's height. Every block counts
// for at least one character so that markup without text still takes room.
func (s *Splitter) blockSize(raw string) int {
	if n := s.Measure.TextLength(PlainText(raw)); n > 1 {
		return n
	}
	return 1
}

// TakeFirst returns the first part of src that fits budget and the rest of
// src, untouched apart from re-applying the root element. At least one block
// is always taken, however small the budget. Empty input gives two empty
// strings.
func (s *Splitter) TakeFirst(src string, budget float64) (first, rest string) {
	if src == "" {
		return "", ""
	}
	frag := Parse(src)
	maxChars := s.Measure.MaxChars(budget)
	orphan := s.Measure.OrphanChars()

	var head, tail strings.Builder
	used, taken := 0, 0
	for i, b := range frag.Blocks {
		size := s.blockSize(b.Raw)
		if used > 0 {
			next := used + size
			if next > maxChars {
				if s.BreakLongText && b.Kind == BlockText && size > maxChars {
					if h, t := s.cutText(b.Raw, maxChars-used); h != "" {
						head.WriteString(h)
						tail.WriteString(t)
						taken = i + 1
					}
				}
				break
			}
			// Leaving only a sliver of a line at the bottom of the part
			// looks worse than starting the next part early.
			if left := maxChars - next; left > 0 && left < orphan {
				break
			}
		} else if s.BreakLongText && b.Kind == BlockText && size > maxChars {
			if h, t := s.cutText(b.Raw, maxChars); h != "" {
				head.WriteString(h)
				tail.WriteString(t)
				taken = i + 1
				break
			}
		}
		head.WriteString(b.Raw)
		used += size
		taken = i + 1
	}
	for _, b := range frag.Blocks[taken:] {
		tail.WriteString(b.Raw)
	}

	if tail.Len() == 0 {
		return frag.Lead + frag.Wrap(head.String()) + frag.Trail, ""
	}
	return frag.Lead + frag.Wrap(head.String()), frag.Wrap(tail.String()) + frag.Trail
}

// Boundaries tried in order when a text run has to be cut. Each match ends
// after the whitespace, so the next part starts on a visible character.
var textBoundaries = []*regexp.Regexp{
	regexp.MustCompile(`\n[ \t\r]*\n\s*`),
	regexp.MustCompile(`[.!?。]\s+`),
	regexp.MustCompile(`\s+`),
}

// cutText splits raw character data at the coarsest boundary that keeps the
// head within room characters. It returns an empty head when no boundary
// fits. Boundaries are whitespace, so entity references are never cut.
func (s *Splitter) cutText(raw string, room int) (head, tail string) {
	if room < 1 {
		return "", raw
	}
	for _, re := range textBoundaries {
		best := 0
		for _, loc := range re.FindAllStringIndex(raw, -1) {
			end := loc[1]
			if end >= len(raw) {
				break
			}
			if s.Measure.TextLength(PlainText(raw[:end])) > room {
				break
			}
			best = end
		}
		if best > 0 {
			return raw[:best], raw[best:]
		}
	}
	return "", raw
}
