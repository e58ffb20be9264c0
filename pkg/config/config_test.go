package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperflow/pkg/paper"
	"paperflow/pkg/text"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paperflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, paper.LayoutDouble, cfg.Page.Layout)
	assert.Equal(t, text.DefaultMetrics(), cfg.Engine.Metrics)

	assert.InDelta(t, 971.34, cfg.ContentHeightPx(), 0.01)
	assert.InDelta(t, 642.52, cfg.ContentWidthPx(), 0.01)
	assert.InDelta(t, 311.26, cfg.ColumnWidth(), 0.01)
	assert.Equal(t, cfg.ContentHeightPx(), cfg.ColumnHeight())

	w, h := cfg.SheetPx()
	assert.InDelta(t, 793.7, w, 0.1)
	assert.InDelta(t, 1122.5, h, 0.1)
}

func TestColumnHeightOverride(t *testing.T) {
	cfg := Default()
	cfg.Page.ColumnHeightPx = 950
	assert.Equal(t, 950.0, cfg.ColumnHeight())

	cfg.Page.Layout = paper.LayoutSingle
	assert.Equal(t, cfg.ContentWidthPx(), cfg.ColumnWidth())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
page:
  layout: single
  size: Letter
  column_height_px: 800
engine:
  metrics:
    chars_per_line: 30
  break_long_text: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, paper.LayoutSingle, cfg.Page.Layout)
	assert.Equal(t, PaperLetter, cfg.Page.Size)
	assert.Equal(t, 800.0, cfg.ColumnHeight())
	assert.Equal(t, 30, cfg.Engine.Metrics.CharsPerLine)
	assert.Equal(t, text.DefaultFontSizePx, cfg.Engine.Metrics.FontSizePx, "unset keys keep defaults")
	assert.Equal(t, 20.0, cfg.Page.Margins.Top)

	opts := cfg.LayoutOptions()
	assert.True(t, opts.BreakLongText)
	assert.Equal(t, 30, opts.Metrics.CharsPerLine)
	assert.Equal(t, text.DefaultItemGap, opts.ItemGap)
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load("../../testdata/paperflow.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "page: [not, a, map]"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "page:\n  layout: triple\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"layout", func(c *Config) { c.Page.Layout = "triple" }},
		{"size", func(c *Config) { c.Page.Size = "B5" }},
		{"font size", func(c *Config) { c.Engine.Metrics.FontSizePx = 0 }},
		{"line height", func(c *Config) { c.Engine.Metrics.LineHeight = -1 }},
		{"chars per line", func(c *Config) { c.Engine.Metrics.CharsPerLine = 0 }},
		{"item gap", func(c *Config) { c.Engine.ItemGapPx = -1 }},
		{"column height", func(c *Config) { c.Page.ColumnHeightPx = -5 }},
		{"margins", func(c *Config) { c.Page.Margins = Margins{Top: 200, Bottom: 200} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
