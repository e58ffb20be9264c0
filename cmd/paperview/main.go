// Command paperview shows paginated pages of an exam paper in a window.
package main

import (
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"paperflow/pkg/config"
	"paperflow/pkg/layout"
	"paperflow/pkg/logging"
	"paperflow/pkg/paper"
	"paperflow/pkg/render"
)

// settleDelay is how long the height slider must rest before the paper is
// paginated again.
const settleDelay = 150 * time.Millisecond

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <paper.yaml> [config.yaml]\n", os.Args[0])
		os.Exit(1)
	}
	p, err := paper.Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading paper: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Default()
	if len(os.Args) >= 3 {
		if cfg, err = config.Load(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if p.Layout != "" {
		cfg.Page.Layout = p.Layout
	}
	log, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	v := newViewer(p, cfg, log)
	v.run()
}

type viewer struct {
	paper *paper.Paper
	log   *zap.Logger

	mu    sync.Mutex
	cfg   config.Config
	pages []image.Image
	page  int
	// gen counts pagination runs. Only the newest run may store its pages.
	gen   uint64

	window fyne.Window
	img    *canvas.Image
	status *widget.Label
	settle *debouncer
}

func newViewer(p *paper.Paper, cfg config.Config, log *zap.Logger) *viewer {
	return &viewer{paper: p, cfg: cfg, log: log, settle: newDebouncer(settleDelay)}
}

// begin starts a pagination run and returns its generation together with a
// snapshot of the settings it should use.
func (v *viewer) begin() (uint64, config.Config) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	return v.gen, v.cfg
}

// store keeps pages from run gen unless a newer run has started since. It
// reports whether the pages were kept.
func (v *viewer) store(gen uint64, pages []image.Image) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return false
	}
	v.pages = pages
	if v.page >= len(pages) {
		v.page = len(pages) - 1
	}
	if v.page < 0 {
		v.page = 0
	}
	return true
}

// paginate lays the paper out with the current settings and renders every
// page. It runs off the UI goroutine, and runs overtaken by a newer one are
// dropped.
func (v *viewer) paginate() {
	gen, cfg := v.begin()

	opts := cfg.LayoutOptions()
	opts.Logger = v.log
	res := layout.Paginate(v.paper.QuestionGroups, cfg.Page.Layout, cfg.ColumnHeight(), opts)
	r, err := render.NewRenderer(cfg, v.paper.QuestionGroups)
	if err != nil {
		fyne.Do(func() { v.status.SetText("Render error: " + err.Error()) })
		return
	}
	pages := r.Render(res)
	if !v.store(gen, pages) {
		v.log.Debug("dropped stale pagination", zap.Uint64("generation", gen))
		return
	}
	v.log.Info("paginated", zap.Int("pages", len(pages)), zap.Float64("columnHeight", cfg.ColumnHeight()))
	fyne.Do(v.show)
}

func (v *viewer) show() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.pages) == 0 {
		v.status.SetText("No pages")
		return
	}
	v.img.Image = v.pages[v.page]
	v.img.Refresh()
	v.status.SetText(fmt.Sprintf("Page %d / %d  (%s, column %.0fpx)",
		v.page+1, len(v.pages), v.cfg.Page.Layout, v.cfg.ColumnHeight()))
}

func (v *viewer) turn(delta int) {
	v.mu.Lock()
	next := v.page + delta
	if next >= 0 && next < len(v.pages) {
		v.page = next
	}
	v.mu.Unlock()
	v.show()
}

func (v *viewer) run() {
	a := app.New()
	v.window = a.NewWindow("paperflow: " + v.paper.Title)
	v.window.Resize(fyne.NewSize(900, 1000))

	v.img = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	v.img.FillMode = canvas.ImageFillContain
	v.status = widget.NewLabel("Paginating...")

	prev := widget.NewButton("Previous", func() { v.turn(-1) })
	next := widget.NewButton("Next", func() { v.turn(1) })

	layoutSelect := widget.NewSelect([]string{string(paper.LayoutDouble), string(paper.LayoutSingle)}, nil)
	layoutSelect.SetSelected(string(v.cfg.Page.Layout))
	layoutSelect.OnChanged = func(s string) {
		v.mu.Lock()
		v.cfg.Page.Layout = paper.LayoutType(s)
		v.mu.Unlock()
		go v.paginate()
	}

	height := widget.NewSlider(200, v.cfg.ContentHeightPx())
	height.Step = 10
	height.SetValue(v.cfg.ColumnHeight())
	height.OnChanged = func(h float64) {
		v.mu.Lock()
		v.cfg.Page.ColumnHeightPx = h
		v.mu.Unlock()
		// Dragging fires many changes; only the last one is laid out.
		v.settle.Trigger(v.paginate)
	}

	controls := container.NewBorder(nil, nil,
		container.NewHBox(prev, next, layoutSelect), nil, height)
	content := container.NewBorder(controls, v.status, nil, nil, v.img)
	v.window.SetContent(content)

	go v.paginate()
	v.window.ShowAndRun()
	v.settle.Stop()
}
