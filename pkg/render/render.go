package render

import (
	"fmt"
	"image"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"paperflow/pkg/config"
	"paperflow/pkg/html"
	"paperflow/pkg/layout"
	"paperflow/pkg/paper"
	"paperflow/pkg/text"
)

const (
	boxPadding   = 6.0
	choiceIndent = 24.0
)

// Renderer draws paginated pages as images. It trusts the estimated heights
// carried by each item: every item gets exactly EstHeight pixels of its
// column and text that does not fit is cut off, which makes estimate errors
// easy to spot.
type Renderer struct {
	cfg     config.Config
	index   *paper.Index
	face    font.Face
	bold    font.Face
	linePx  float64
	sheetW  int
	sheetH  int
	marginX float64
	marginY float64
}

// NewRenderer prepares a renderer for pages paginated from groups.
func NewRenderer(cfg config.Config, groups []paper.ContentGroup) (*Renderer, error) {
	m := cfg.Engine.Metrics
	face, err := text.LoadFace(cfg.Preview.Fonts.FontPath(false), m.FontSizePx)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	bold, err := text.LoadFace(cfg.Preview.Fonts.FontPath(true), m.FontSizePx)
	if err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}
	w, h := cfg.SheetPx()
	return &Renderer{
		cfg:     cfg,
		index:   paper.NewIndex(groups),
		face:    face,
		bold:    bold,
		linePx:  m.LinePx(),
		sheetW:  int(w + 0.5),
		sheetH:  int(h + 0.5),
		marginX: cfg.Page.Margins.Left * config.MMToPx,
		marginY: cfg.Page.Margins.Top * config.MMToPx,
	}, nil
}

// Render draws every page of res, each with a "n / total" footer.
func (r *Renderer) Render(res *layout.Result) []image.Image {
	total := res.PageCount()
	out := make([]image.Image, 0, total)
	for i := 0; i < total; i++ {
		dc := r.newPage()
		if res.Layout == paper.LayoutSingle {
			r.drawSingle(dc, res.Single[i])
		} else {
			r.drawDouble(dc, res.Double[i])
		}
		r.drawFooter(dc, i+1, total)
		out = append(out, dc.Image())
	}
	return out
}

func (r *Renderer) newPage() *gg.Context {
	dc := gg.NewContext(r.sheetW, r.sheetH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	return dc
}

// RenderSingle draws one single-column page without a footer.
func (r *Renderer) RenderSingle(page layout.FlowPageSingle) image.Image {
	dc := r.newPage()
	r.drawSingle(dc, page)
	return dc.Image()
}

// RenderDouble draws one two-column page without a footer.
func (r *Renderer) RenderDouble(page layout.FlowPageDouble) image.Image {
	dc := r.newPage()
	r.drawDouble(dc, page)
	return dc.Image()
}

func (r *Renderer) drawSingle(dc *gg.Context, page layout.FlowPageSingle) {
	r.drawColumn(dc, page.Items, r.marginX, r.cfg.ContentWidthPx())
}

func (r *Renderer) drawDouble(dc *gg.Context, page layout.FlowPageDouble) {
	gap := r.cfg.Page.ColumnGapPx
	colW := (r.cfg.ContentWidthPx() - gap) / 2

	// Column rule.
	dc.SetRGB(0.8, 0.8, 0.8)
	dc.SetLineWidth(1)
	mid := r.marginX + colW + gap/2
	dc.DrawLine(mid, r.marginY, mid, r.marginY+r.cfg.ColumnHeight())
	dc.Stroke()

	r.drawColumn(dc, page.Left, r.marginX, colW)
	r.drawColumn(dc, page.Right, r.marginX+colW+gap, colW)
}

// footerBox is where drawFooter puts the page number: centred in the bottom
// margin. The returned x and y are the top left corner of the label.
func (r *Renderer) footerBox(label string) (x, y, w, h float64) {
	w, h = text.MeasureText(r.face, label)
	bottom := r.marginY + r.cfg.ContentHeightPx()
	return (float64(r.sheetW) - w) / 2, bottom + (float64(r.sheetH)-bottom-h)/2, w, h
}

func (r *Renderer) drawFooter(dc *gg.Context, n, total int) {
	label := fmt.Sprintf("%d / %d", n, total)
	x, y, _, h := r.footerBox(label)
	dc.SetFontFace(r.face)
	dc.SetRGB(0.3, 0.3, 0.3)
	dc.DrawStringAnchored(label, x, y+h/2, 0, 0.5)
}

func (r *Renderer) drawColumn(dc *gg.Context, items []layout.RenderItem, x, width float64) {
	y := r.marginY
	for _, it := range items {
		r.drawItem(dc, it, x, y, width)
		y += it.EstHeight
	}
}

func (r *Renderer) drawItem(dc *gg.Context, it layout.RenderItem, x, y, w float64) {
	h := it.EstHeight
	switch it.Kind {
	case layout.KindPassagePart:
		r.drawPassage(dc, it, x, y, w, h)
	case layout.KindQuestionStemPart:
		prefix := ""
		if it.IsFirstPart {
			prefix = strconv.Itoa(it.Number) + ". "
		}
		r.drawText(dc, r.face, prefix+html.PlainText(it.Content), x, y, w, h)
	case layout.KindChoiceRange:
		r.drawChoices(dc, it, x, y, w, h)
	case layout.KindQuestionRange:
		r.drawQuestions(dc, it, x, y, w, h)
	case layout.KindAnswerArea:
		if q, ok := r.index.Question(it.GroupID, it.QuestionID); ok {
			r.drawAnswerArea(dc, q.Type, x, y, w)
		}
	}
	if it.Forced {
		dc.SetRGB(0.9, 0.2, 0.2)
		dc.SetLineWidth(2)
		dc.DrawRectangle(x, y, w, h)
		dc.Stroke()
	}
}

func (r *Renderer) drawPassage(dc *gg.Context, it layout.RenderItem, x, y, w, h float64) {
	top := y
	if it.Title != "" {
		title := it.Title
		if it.TotalParts > 1 {
			title += fmt.Sprintf(" (%d/%d)", it.PartNumber, it.TotalParts)
		}
		r.drawText(dc, r.bold, title, x, y, w, r.linePx)
		top += r.linePx
	}
	bottom := y + h - boxPadding

	// Continued parts are drawn open at the edge where the passage goes on.
	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(1)
	dc.DrawLine(x, top, x, bottom)
	dc.DrawLine(x+w, top, x+w, bottom)
	if it.IsFirstPart {
		dc.DrawLine(x, top, x+w, top)
	}
	if it.IsLastPart {
		dc.DrawLine(x, bottom, x+w, bottom)
	}
	dc.Stroke()

	r.drawText(dc, r.face, html.PlainText(it.Content), x+boxPadding, top+boxPadding, w-2*boxPadding, bottom-top-boxPadding)
}

func (r *Renderer) drawChoices(dc *gg.Context, it layout.RenderItem, x, y, w, h float64) {
	q, ok := r.index.Question(it.GroupID, it.QuestionID)
	if !ok {
		return
	}
	bottom := y + h
	for i := it.StartIndex; i <= it.EndIndex && i < len(q.Choices); i++ {
		c := q.Choices[i]
		line := paper.ChoiceSymbol(c.Number) + " " + html.PlainText(c.Content)
		y += r.drawText(dc, r.face, line, x+choiceIndent, y, w-choiceIndent, bottom-y)
	}
}

func (r *Renderer) drawQuestions(dc *gg.Context, it layout.RenderItem, x, y, w, h float64) {
	g, ok := r.index.Group(it.GroupID)
	if !ok {
		return
	}
	bottom := y + h
	for i := it.StartIndex; i <= it.EndIndex && i < len(g.SubQuestions); i++ {
		q := &g.SubQuestions[i]
		stem := strconv.Itoa(q.Number) + ". " + html.PlainText(q.Content)
		y += r.drawText(dc, r.face, stem, x, y, w, bottom-y)
		if y >= bottom {
			return
		}
		if q.Type == paper.MultipleChoice {
			for _, c := range q.Choices {
				line := paper.ChoiceSymbol(c.Number) + " " + html.PlainText(c.Content)
				y += r.drawText(dc, r.face, line, x+choiceIndent, y, w-choiceIndent, bottom-y)
			}
			continue
		}
		y += r.drawAnswerArea(dc, q.Type, x, y, w)
	}
}

// drawAnswerArea draws the writing space for a question of type t and
// returns the height it used.
func (r *Renderer) drawAnswerArea(dc *gg.Context, t paper.QuestionType, x, y, w float64) float64 {
	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(1)
	switch t {
	case paper.ShortAnswer:
		dc.DrawLine(x+choiceIndent, y+r.linePx, x+choiceIndent+128, y+r.linePx)
		dc.Stroke()
		return r.linePx
	case paper.FillInBlank:
		dc.DrawLine(x+choiceIndent, y+r.linePx, x+choiceIndent+96, y+r.linePx)
		dc.Stroke()
		return r.linePx
	case paper.Essay:
		dc.DrawRectangle(x+choiceIndent, y+4, w-choiceIndent, 80)
		dc.Stroke()
		return 88
	}
	return 0
}

// drawText wraps s into width and draws as many lines as fit in maxH. It
// returns the height it used.
func (r *Renderer) drawText(dc *gg.Context, face font.Face, s string, x, y, width, maxH float64) float64 {
	dc.SetFontFace(face)
	dc.SetRGB(0.1, 0.1, 0.1)
	used := 0.0
	for _, line := range text.BreakTextIntoLines(face, s, width) {
		if used+r.linePx > maxH {
			break
		}
		dc.DrawStringAnchored(line, x, y+used+r.linePx/2, 0, 0.5)
		used += r.linePx
	}
	return used
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
