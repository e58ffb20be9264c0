// Command paperflow paginates an exam paper and prints the resulting pages.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"paperflow/pkg/config"
	"paperflow/pkg/layout"
	"paperflow/pkg/logging"
	"paperflow/pkg/paper"
	"paperflow/pkg/render"
)

var version = "dev"

// pixelTolerance absorbs antialiasing noise between font rasterizers.
const pixelTolerance = 2

var errPagesDiffer = errors.New("pages differ from references")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath     string
	layoutType     string
	columnHeight   float64
	fontSize       float64
	lineHeight     float64
	charsPerLine   int
	eastAsianWidth bool
	breakLongText  bool
	format         string
	pngDir         string
	compareDir     string
	fontPath       string
	renumber       bool
	instruction    string
	debug          bool
	showVersion    bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var o options
	fs := pflag.NewFlagSet("paperflow", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVarP(&o.layoutType, "layout", "l", "", "Page layout: single or double (default from paper, then config)")
	fs.Float64Var(&o.columnHeight, "column-height", 0, "Column height in pixels (0 = derive from paper size)")
	fs.Float64Var(&o.fontSize, "font-size", 0, "Font size in pixels")
	fs.Float64Var(&o.lineHeight, "line-height", 0, "Line height multiplier")
	fs.IntVar(&o.charsPerLine, "chars-per-line", 0, "Characters per estimated line")
	fs.BoolVar(&o.eastAsianWidth, "east-asian-width", false, "Count wide characters as two")
	fs.BoolVar(&o.breakLongText, "break-long-text", false, "Allow long text runs to be cut at word boundaries")
	fs.StringVarP(&o.format, "format", "f", "summary", "Output format: json, yaml or summary")
	fs.StringVar(&o.pngDir, "png-dir", "", "Write a PNG preview of every page into this directory")
	fs.StringVar(&o.compareDir, "compare-dir", "", "Compare rendered pages with the PNGs in this directory")
	fs.StringVar(&o.fontPath, "font", "", "TrueType font for PNG previews")
	fs.BoolVar(&o.renumber, "renumber", false, "Number questions continuously and retitle passage groups")
	fs.StringVar(&o.instruction, "instruction", "다음 글을 읽고 물음에 답하시오.", "Group title text used with --renumber")
	fs.BoolVar(&o.debug, "debug", false, "Log every column advance")
	fs.BoolVarP(&o.showVersion, "version", "v", false, "Show version information")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: paperflow [flags] <paper.yaml|paper.json>\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	if o.showVersion {
		fmt.Fprintf(stdout, "paperflow version %s\n", version)
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}

	cfg, err := buildConfig(o, fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	log, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Sync() //nolint:errcheck

	if err := paginate(fs.Arg(0), o, cfg, log, stdout); err != nil {
		log.Error("paginate failed", zap.Error(err))
		return 1
	}
	return 0
}

// buildConfig layers explicitly set flags over the config file.
func buildConfig(o options, fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}
	if fs.Changed("layout") {
		cfg.Page.Layout = paper.LayoutType(o.layoutType)
	}
	if fs.Changed("column-height") {
		cfg.Page.ColumnHeightPx = o.columnHeight
	}
	if fs.Changed("font-size") {
		cfg.Engine.Metrics.FontSizePx = o.fontSize
	}
	if fs.Changed("line-height") {
		cfg.Engine.Metrics.LineHeight = o.lineHeight
	}
	if fs.Changed("chars-per-line") {
		cfg.Engine.Metrics.CharsPerLine = o.charsPerLine
	}
	if fs.Changed("east-asian-width") {
		cfg.Engine.Metrics.EastAsianWidth = o.eastAsianWidth
	}
	if fs.Changed("break-long-text") {
		cfg.Engine.BreakLongText = o.breakLongText
	}
	if fs.Changed("font") {
		cfg.Preview.Fonts.Regular = o.fontPath
	}
	if o.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func paginate(path string, o options, cfg config.Config, log *zap.Logger, stdout io.Writer) error {
	p, err := paper.Load(path)
	if err != nil {
		return err
	}
	// A layout set in the paper beats the config file but not the flag.
	if o.layoutType == "" && p.Layout != "" {
		cfg.Page.Layout = p.Layout
	}
	if o.renumber {
		p.QuestionGroups = paper.Renumber(p.QuestionGroups, o.instruction)
	}

	opts := cfg.LayoutOptions()
	opts.Logger = log
	height := cfg.ColumnHeight()
	res := layout.Paginate(p.QuestionGroups, cfg.Page.Layout, height, opts)
	log.Info("paginated",
		zap.String("paper", p.ID),
		zap.String("layout", string(res.Layout)),
		zap.Float64("columnHeight", height),
		zap.Int("pages", res.PageCount()))

	if err := writeResult(stdout, o.format, res); err != nil {
		return err
	}
	if o.pngDir == "" && o.compareDir == "" {
		return nil
	}
	if o.pngDir != "" && o.compareDir != "" && filepath.Clean(o.compareDir) == filepath.Clean(o.pngDir) {
		return errors.New("--png-dir and --compare-dir must differ")
	}
	r, err := render.NewRenderer(cfg, p.QuestionGroups)
	if err != nil {
		return err
	}
	pages := r.Render(res)
	if o.pngDir != "" {
		if err := writePNGs(o.pngDir, pages, log); err != nil {
			return err
		}
	}
	if o.compareDir != "" {
		return comparePages(o.compareDir, o.pngDir, pages, log)
	}
	return nil
}

func pageName(i int) string {
	return fmt.Sprintf("page-%03d.png", i+1)
}

func writeResult(w io.Writer, format string, res *layout.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(res)
	case "summary":
		return writeSummary(w, res)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeSummary(w io.Writer, res *layout.Result) error {
	fmt.Fprintf(w, "%s layout, %d page(s)\n", res.Layout, res.PageCount())
	page, col := -1, -1
	for _, pl := range res.Placements() {
		if pl.Page != page || pl.Column != col {
			page, col = pl.Page, pl.Column
			side := "page"
			if res.Layout == paper.LayoutDouble {
				side = [...]string{"left", "right"}[col]
			}
			fmt.Fprintf(w, "page %d %s\n", page+1, side)
		}
		it := pl.Item
		forced := ""
		if it.Forced {
			forced = " forced"
		}
		switch it.Kind {
		case layout.KindPassagePart:
			fmt.Fprintf(w, "  %-18s %s part %d/%d %7.1fpx%s\n", it.Kind, it.GroupID, it.PartNumber, it.TotalParts, it.EstHeight, forced)
		case layout.KindQuestionStemPart:
			fmt.Fprintf(w, "  %-18s %s q%d %7.1fpx%s\n", it.Kind, it.QuestionID, it.Number, it.EstHeight, forced)
		case layout.KindChoiceRange:
			fmt.Fprintf(w, "  %-18s %s [%d-%d] %7.1fpx%s\n", it.Kind, it.QuestionID, it.StartIndex, it.EndIndex, it.EstHeight, forced)
		case layout.KindQuestionRange:
			fmt.Fprintf(w, "  %-18s %s [%d-%d] %7.1fpx%s\n", it.Kind, it.GroupID, it.StartIndex, it.EndIndex, it.EstHeight, forced)
		case layout.KindAnswerArea:
			fmt.Fprintf(w, "  %-18s %s q%d %7.1fpx%s\n", it.Kind, it.QuestionID, it.Number, it.EstHeight, forced)
		}
	}
	return nil
}

func writePNGs(dir string, pages []image.Image, log *zap.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create png dir: %w", err)
	}
	for i, img := range pages {
		path := filepath.Join(dir, pageName(i))
		if err := render.SavePNG(path, img); err != nil {
			return err
		}
		log.Info("wrote preview", zap.String("path", path))
	}
	return nil
}

// comparePages checks every page against the reference of the same name in
// refDir. Diff images go next to the previews when diffDir is set.
func comparePages(refDir, diffDir string, pages []image.Image, log *zap.Logger) error {
	refs, err := filepath.Glob(filepath.Join(refDir, "page-[0-9][0-9][0-9].png"))
	if err != nil {
		return err
	}
	if len(refs) != len(pages) {
		return fmt.Errorf("%w: %d pages, %d references", errPagesDiffer, len(pages), len(refs))
	}
	failed := 0
	for i, img := range pages {
		ref, err := render.LoadPNG(filepath.Join(refDir, pageName(i)))
		if err != nil {
			return err
		}
		d, err := render.Compare(img, ref, pixelTolerance)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		if d.Match {
			continue
		}
		failed++
		log.Warn("page differs",
			zap.Int("page", i+1),
			zap.Int("pixels", d.DifferentPixels),
			zap.Int("maxDifference", d.MaxDifference))
		if diffDir != "" {
			path := filepath.Join(diffDir, fmt.Sprintf("page-%03d-diff.png", i+1))
			if err := render.SavePNG(path, d.Image); err != nil {
				return err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errPagesDiffer, failed, len(pages))
	}
	log.Info("pages match references", zap.Int("pages", len(pages)))
	return nil
}
