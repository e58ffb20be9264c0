package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Diff is the outcome of comparing a rendered page with a reference image.
type Diff struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest 8-bit channel difference seen
	// Image marks differing pixels in red over a grey copy of the actual page.
	Image *image.RGBA
}

// Compare checks two page images pixel by pixel. Channel differences up to
// tolerance (0-255) are ignored.
func Compare(actual, expected image.Image, tolerance int) (*Diff, error) {
	ab, eb := actual.Bounds(), expected.Bounds()
	if ab != eb {
		return &Diff{}, fmt.Errorf("page sizes differ: actual=%v, expected=%v", ab, eb)
	}
	d := &Diff{
		Match:       true,
		TotalPixels: ab.Dx() * ab.Dy(),
		Image:       image.NewRGBA(ab),
	}
	for y := ab.Min.Y; y < ab.Max.Y; y++ {
		for x := ab.Min.X; x < ab.Max.X; x++ {
			a, e := actual.At(x, y), expected.At(x, y)
			diff := channelDiff(a, e)
			if diff > d.MaxDifference {
				d.MaxDifference = diff
			}
			if diff > tolerance {
				d.Match = false
				d.DifferentPixels++
				d.Image.Set(x, y, color.RGBA{255, 0, 0, 255})
				continue
			}
			d.Image.Set(x, y, color.GrayModel.Convert(a))
		}
	}
	return d, nil
}

func channelDiff(a, b color.Color) int {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return max(
		absDiff(ar, br),
		absDiff(ag, bg),
		absDiff(ab, bb),
		absDiff(aa, ba),
	)
}

// absDiff compares two 16-bit channels at 8-bit precision.
func absDiff(a, b uint32) int {
	d := int(a>>8) - int(b>>8)
	if d < 0 {
		return -d
	}
	return d
}

// LoadPNG reads a reference page.
func LoadPNG(path string) (image.Image, error) {
	img, err := gg.LoadPNG(path)
	if err != nil {
		return nil, fmt.Errorf("load reference %s: %w", path, err)
	}
	return img, nil
}
