package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

func TestLoadFaceFallback(t *testing.T) {
	face, err := LoadFace("", 14)
	require.NoError(t, err)
	assert.Equal(t, basicfont.Face7x13, face)

	face, err = LoadFace("does-not-exist.ttf", 14)
	assert.Error(t, err)
	assert.NotNil(t, face)
}

func TestFontPath(t *testing.T) {
	fc := FontConfig{Regular: "regular.ttf"}
	assert.Equal(t, "regular.ttf", fc.FontPath(true))
	fc.Bold = "bold.ttf"
	assert.Equal(t, "bold.ttf", fc.FontPath(true))
	assert.Equal(t, "regular.ttf", fc.FontPath(false))
}

func TestMeasureText(t *testing.T) {
	w, _ := MeasureText(basicfont.Face7x13, "abcd")
	assert.Equal(t, 28.0, w)
}

func TestBreakTextIntoLines(t *testing.T) {
	face := basicfont.Face7x13
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"fits", "aaa bbb", 49, []string{"aaa bbb"}},
		{"wraps", "aaa bbb ccc", 49, []string{"aaa bbb", "ccc"}},
		{"long word alone", "aaaaaaaaaa b", 21, []string{"aaaaaaaaaa", "b"}},
		{"newlines", "a\nb", 100, []string{"a", "b"}},
		{"empty", "", 100, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BreakTextIntoLines(face, tt.text, tt.width))
		})
	}
}
