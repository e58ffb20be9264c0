package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"paperflow/pkg/layout"
	"paperflow/pkg/paper"
	"paperflow/pkg/text"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

const (
	DPI            = 96.0
	MMToPx         = DPI / 25.4
	A4WidthMM      = 210.0
	A4HeightMM     = 297.0
	LetterWidthMM  = 215.9
	LetterHeightMM = 279.4
)

type PaperSize string

const (
	PaperA4     PaperSize = "A4"
	PaperLetter PaperSize = "Letter"
)

// Margins are in millimetres.
type Margins struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// Page describes the physical sheet. ColumnHeightPx, when set, replaces the
// height derived from paper size and margins.
type Page struct {
	Layout         paper.LayoutType `yaml:"layout"`
	Size           PaperSize        `yaml:"size"`
	Margins        Margins          `yaml:"margins"`
	ColumnGapPx    float64          `yaml:"column_gap_px"`
	ColumnHeightPx float64          `yaml:"column_height_px"`
}

type Engine struct {
	Metrics       text.Metrics `yaml:"metrics"`
	ItemGapPx     float64      `yaml:"item_gap_px"`
	BreakLongText bool         `yaml:"break_long_text"`
}

type Preview struct {
	Fonts text.FontConfig `yaml:"fonts"`
}

type Config struct {
	Page    Page    `yaml:"page"`
	Engine  Engine  `yaml:"engine"`
	Preview Preview `yaml:"preview"`
	Debug   bool    `yaml:"debug"`
}

// Default is an A4 sheet in two columns with 20mm margins.
func Default() Config {
	return Config{
		Page: Page{
			Layout:      paper.LayoutDouble,
			Size:        PaperA4,
			Margins:     Margins{Top: 20, Right: 20, Bottom: 20, Left: 20},
			ColumnGapPx: 20,
		},
		Engine: Engine{
			Metrics:   text.DefaultMetrics(),
			ItemGapPx: text.DefaultItemGap,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Page.Layout {
	case paper.LayoutSingle, paper.LayoutDouble:
	default:
		return fmt.Errorf("%w: layout %q", ErrInvalidConfig, c.Page.Layout)
	}
	switch c.Page.Size {
	case PaperA4, PaperLetter:
	default:
		return fmt.Errorf("%w: paper size %q", ErrInvalidConfig, c.Page.Size)
	}
	m := c.Engine.Metrics
	if m.FontSizePx <= 0 || m.LineHeight <= 0 {
		return fmt.Errorf("%w: font size and line height must be positive", ErrInvalidConfig)
	}
	if m.CharsPerLine < 1 {
		return fmt.Errorf("%w: chars per line must be at least 1", ErrInvalidConfig)
	}
	if c.Engine.ItemGapPx < 0 || c.Page.ColumnHeightPx < 0 || c.Page.ColumnGapPx < 0 {
		return fmt.Errorf("%w: negative length", ErrInvalidConfig)
	}
	if c.ContentHeightPx() <= 0 || c.ContentWidthPx() <= 0 {
		return fmt.Errorf("%w: margins leave no room on the page", ErrInvalidConfig)
	}
	return nil
}

// SheetPx is the sheet size in pixels at 96 dpi.
func (c Config) SheetPx() (width, height float64) {
	if c.Page.Size == PaperLetter {
		return LetterWidthMM * MMToPx, LetterHeightMM * MMToPx
	}
	return A4WidthMM * MMToPx, A4HeightMM * MMToPx
}

// ContentHeightPx is the printable height inside the margins.
func (c Config) ContentHeightPx() float64 {
	_, h := c.SheetPx()
	return h - (c.Page.Margins.Top+c.Page.Margins.Bottom)*MMToPx
}

// ContentWidthPx is the printable width inside the margins.
func (c Config) ContentWidthPx() float64 {
	w, _ := c.SheetPx()
	return w - (c.Page.Margins.Left+c.Page.Margins.Right)*MMToPx
}

// ColumnHeight is the height handed to the paginator.
func (c Config) ColumnHeight() float64 {
	if c.Page.ColumnHeightPx > 0 {
		return c.Page.ColumnHeightPx
	}
	return c.ContentHeightPx()
}

// ColumnWidth is the width of one column in the configured layout.
func (c Config) ColumnWidth() float64 {
	w := c.ContentWidthPx()
	if c.Page.Layout == paper.LayoutSingle {
		return w
	}
	return (w - c.Page.ColumnGapPx) / 2
}

// LayoutOptions builds paginator options from the engine section.
func (c Config) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.Metrics = c.Engine.Metrics
	opts.ItemGap = c.Engine.ItemGapPx
	opts.BreakLongText = c.Engine.BreakLongText
	return opts
}
