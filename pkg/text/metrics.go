package text

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const (
	DefaultFontSizePx   = 14.0
	DefaultLineHeight   = 1.6 // unitless multiplier
	DefaultCharsPerLine = 20  // tuned for narrow exam columns
)

// Metrics is the font model behind every height estimate. No real glyph
// measurement happens; a line holds CharsPerLine characters.
type Metrics struct {
	FontSizePx   float64 `yaml:"font_size_px" json:"fontSizePx"`
	LineHeight   float64 `yaml:"line_height" json:"lineHeight"`
	CharsPerLine int     `yaml:"chars_per_line" json:"charsPerLine"`
	// EastAsianWidth counts wide (CJK, Hangul) characters as two cells.
	EastAsianWidth bool `yaml:"east_asian_width" json:"eastAsianWidth"`
}

func DefaultMetrics() Metrics {
	return Metrics{
		FontSizePx:   DefaultFontSizePx,
		LineHeight:   DefaultLineHeight,
		CharsPerLine: DefaultCharsPerLine,
	}
}

// LinePx is the height of one rendered line in pixels.
func (m Metrics) LinePx() float64 {
	return m.FontSizePx * m.LineHeight
}

// TextLength is the character count used for line estimates.
func (m Metrics) TextLength(s string) int {
	if m.EastAsianWidth {
		return runewidth.StringWidth(s)
	}
	return utf8.RuneCountInString(s)
}

// charsPerLine guards against a zero or negative configuration.
func (m Metrics) charsPerLine() int {
	if m.CharsPerLine < 1 {
		return 1
	}
	return m.CharsPerLine
}

// WrappedLines is the number of rendered lines a single literal line of
// text takes. An empty line still occupies one line.
func (m Metrics) WrappedLines(line string) int {
	n := m.TextLength(line)
	cpl := m.charsPerLine()
	lines := (n + cpl - 1) / cpl
	if lines < 1 {
		return 1
	}
	return lines
}

// MaxChars converts a height budget into a character budget: the whole
// lines that fit (at least one) times CharsPerLine.
func (m Metrics) MaxChars(budget float64) int {
	lines := 1
	if lp := m.LinePx(); lp > 0 {
		if n := int(budget / lp); n > 1 {
			lines = n
		}
	}
	return lines * m.charsPerLine()
}

// OrphanChars is the leftover below which a part is closed early: one to
// one and a half lines worth of characters.
func (m Metrics) OrphanChars() int {
	cpl := m.charsPerLine()
	if t := cpl * 3 / 2; t > cpl {
		return t
	}
	return cpl
}
