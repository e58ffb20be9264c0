package text

import (
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontConfig holds the font files used by the preview renderer. The
// paginator never looks at real glyphs; only previews do.
type FontConfig struct {
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
}

// FontPath returns the font path for the given weight, falling back to the
// regular face.
func (fc FontConfig) FontPath(bold bool) string {
	if bold && fc.Bold != "" {
		return fc.Bold
	}
	return fc.Regular
}

// LoadFace loads a TrueType face at the given size. Without a usable path
// the fixed 7x13 bitmap face is returned, so previews always render.
func LoadFace(path string, sizePx float64) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}
	face, err := gg.LoadFontFace(path, sizePx)
	if err != nil {
		return basicfont.Face7x13, err
	}
	return face, nil
}

// MeasureText measures the width and height of text set in face.
func MeasureText(face font.Face, s string) (width, height float64) {
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	return dc.MeasureString(s)
}

// BreakTextIntoLines breaks text into lines that fit within maxWidth when
// set in face. Literal newlines always start a new line. A word wider than
// maxWidth gets a line of its own.
func BreakTextIntoLines(face font.Face, s string, maxWidth float64) []string {
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)

	lines := make([]string, 0)
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if w, _ := dc.MeasureString(candidate); w <= maxWidth || current == "" {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = word
		}
		lines = append(lines, current)
	}
	return lines
}
