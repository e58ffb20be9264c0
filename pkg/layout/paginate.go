package layout

import (
	"math"

	"go.uber.org/zap"

	"paperflow/pkg/html"
	"paperflow/pkg/paper"
	"paperflow/pkg/text"
)

// Thresholds, in lines, that decide when a column is too full to use.
const (
	// Passages and continued stems need more than this to keep going in
	// the same column.
	continueLines = 2.0
	// A new stem part or choice range needs at least this much room.
	startLines = 1.2
)

// Options configures a pagination run. The zero Logger is replaced by a
// no-op logger.
type Options struct {
	Metrics       text.Metrics
	ItemGap       float64
	BreakLongText bool
	Logger        *zap.Logger
}

// DefaultOptions uses the default metrics and item gap and logs nothing.
func DefaultOptions() Options {
	return Options{
		Metrics: text.DefaultMetrics(),
		ItemGap: text.DefaultItemGap,
		Logger:  zap.NewNop(),
	}
}

// flow is the state of one run: pages of slots, one slot per column, and the
// height left in each slot of the current page.
type flow struct {
	height float64
	slots  int
	est    *text.Estimator
	split  *html.Splitter
	log    *zap.Logger

	pages     [][][]RenderItem
	current   [][]RenderItem
	remaining []float64
	side      int
}

func newFlow(slots int, height float64, opts Options) *flow {
	if height < 0 {
		height = 0
	}
	est := text.NewEstimator(opts.Metrics)
	est.ItemGap = opts.ItemGap
	split := html.NewSplitter(opts.Metrics)
	split.BreakLongText = opts.BreakLongText
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	f := &flow{height: height, slots: slots, est: est, split: split, log: log}
	f.reset()
	return f
}

func (f *flow) reset() {
	f.current = make([][]RenderItem, f.slots)
	f.remaining = make([]float64, f.slots)
	for i := range f.remaining {
		f.remaining[i] = f.height
	}
	f.side = 0
}

func (f *flow) lines(n float64) float64 {
	return n * f.est.Metrics.LinePx()
}

func (f *flow) avail() float64 {
	return f.remaining[f.side]
}

func (f *flow) empty() bool {
	return len(f.current[f.side]) == 0
}

// advance moves to the next column, starting a new page after the last one.
func (f *flow) advance() {
	if f.side < f.slots-1 {
		f.side++
		f.log.Debug("next column", zap.Int("page", len(f.pages)+1), zap.Int("column", f.side))
		return
	}
	f.pages = append(f.pages, f.current)
	f.reset()
	f.log.Debug("next page", zap.Int("page", len(f.pages)+1))
}

// place appends item to the active column. Anything taller than a column is
// clamped to the column height and marked forced; a forced item uses up the
// whole column.
func (f *flow) place(item RenderItem) {
	if item.EstHeight > f.height {
		item.EstHeight = f.height
		item.Forced = true
	}
	f.current[f.side] = append(f.current[f.side], item)
	f.remaining[f.side] -= item.EstHeight
	if item.Forced {
		f.remaining[f.side] = 0
		f.log.Debug("forced placement",
			zap.String("kind", string(item.Kind)),
			zap.String("group", item.GroupID),
			zap.String("question", item.QuestionID))
	}
}

// partHeight estimates an HTML part as placed, gap included.
func (f *flow) partHeight(content string) (h float64, forced bool) {
	plain := html.PlainText(content)
	h = math.Min(f.est.TextHeight(plain, f.height)+f.est.ItemGap, f.height)
	return h, f.est.FullTextHeight(plain) > f.height
}

// take pulls the next part of src for the active column. The splitter
// counts characters while the estimate counts wrapped lines, so the budget is
// shrunk while the estimate overshoots. ok is false when not even one block
// fits a column that already holds something.
func (f *flow) take(src string) (first, rest string, h float64, forced, ok bool) {
	avail := f.avail()
	budget := avail - f.est.ItemGap
	for {
		first, rest = f.split.TakeFirst(src, budget)
		h, forced = f.partHeight(first)
		if h <= avail || f.empty() {
			return first, rest, h, forced, true
		}
		if budget < f.est.Metrics.LinePx() {
			return first, rest, h, forced, false
		}
		budget -= math.Max(h-avail, f.est.Metrics.LinePx())
	}
}

// flowHTML places src as a run of parts, moving on whenever the active column
// has less than keep pixels left. build fills in the kind specific fields.
func (f *flow) flowHTML(src string, keep float64, build func(part int, content string, last bool) RenderItem) {
	part := 1
	for {
		if !f.empty() && f.avail() < keep {
			f.advance()
			continue
		}
		first, rest, h, forced, ok := f.take(src)
		if !ok {
			f.advance()
			continue
		}
		item := build(part, first, rest == "")
		item.EstHeight, item.Forced = h, forced
		f.place(item)
		if rest == "" {
			return
		}
		src = rest
		part++
		if f.avail() <= f.lines(continueLines) {
			f.advance()
		}
	}
}

func (f *flow) passage(g *paper.ContentGroup) {
	if g.Passage == nil {
		return
	}
	title := g.Title
	if title == "" {
		title = g.Passage.Title
	}
	f.flowHTML(g.Passage.Content, f.lines(continueLines), func(part int, content string, last bool) RenderItem {
		item := RenderItem{
			Kind:        KindPassagePart,
			GroupID:     g.ID,
			Content:     content,
			PartNumber:  part,
			IsFirstPart: part == 1,
			IsLastPart:  last,
		}
		if part == 1 {
			item.Title = title
		}
		return item
	})
}

func (f *flow) stem(g *paper.ContentGroup, q *paper.SubQuestion) {
	f.flowHTML(q.Content, f.lines(startLines), func(part int, content string, last bool) RenderItem {
		return RenderItem{
			Kind:        KindQuestionStemPart,
			GroupID:     g.ID,
			QuestionID:  q.ID,
			Number:      q.Number,
			Content:     content,
			IsFirstPart: part == 1,
			IsLastPart:  last,
		}
	})
}

// packChoices finds the longest run of choices from start that fits the
// active column. A first choice that cannot fit even an empty column is
// returned alone as forced.
func (f *flow) packChoices(choices []paper.Choice, start int) (end int, sum float64, forced bool) {
	avail := f.avail()
	end = start - 1
	for k := start; k < len(choices); k++ {
		h := f.est.ChoiceHeight(choices[k].Content)
		if sum+h+f.est.ItemGap > avail {
			if k == start && f.empty() {
				return start, f.height, true
			}
			break
		}
		sum += h
		end = k
	}
	return end, sum, false
}

func (f *flow) choices(g *paper.ContentGroup, q *paper.SubQuestion) {
	n := len(q.Choices)
	for ci := 0; ci < n; {
		if !f.empty() && f.avail() < f.lines(startLines) {
			f.advance()
			continue
		}
		end, sum, forced := f.packChoices(q.Choices, ci)
		if end < ci {
			f.advance()
			continue
		}
		f.place(RenderItem{
			Kind:       KindChoiceRange,
			GroupID:    g.ID,
			QuestionID: q.ID,
			StartIndex: ci,
			EndIndex:   end,
			EstHeight:  math.Min(sum+f.est.ItemGap, f.height),
			Forced:     forced,
		})
		ci = end + 1
		// The next choice did not fit, so it starts a new column.
		if ci < n {
			f.advance()
		}
	}
}

// questionRange places question qi as a single unit.
func (f *flow) questionRange(g *paper.ContentGroup, qi int) {
	q := &g.SubQuestions[qi]
	h := f.est.QuestionHeight(q)
	if h > f.avail() && !f.empty() {
		f.advance()
	}
	f.place(RenderItem{
		Kind:       KindQuestionRange,
		GroupID:    g.ID,
		QuestionID: q.ID,
		Number:     q.Number,
		StartIndex: qi,
		EndIndex:   qi,
		EstHeight:  h,
	})
}

// answerArea places the writing space of a question whose stem was flowed
// in parts.
func (f *flow) answerArea(g *paper.ContentGroup, q *paper.SubQuestion) {
	h := f.est.AnswerAreaHeight(q) + f.est.ItemGap
	if h > f.avail() && !f.empty() {
		f.advance()
	}
	f.place(RenderItem{
		Kind:       KindAnswerArea,
		GroupID:    g.ID,
		QuestionID: q.ID,
		Number:     q.Number,
		EstHeight:  h,
	})
}

func (f *flow) run(groups []paper.ContentGroup) [][][]RenderItem {
	for gi := range groups {
		g := &groups[gi]
		f.passage(g)
		for qi := range g.SubQuestions {
			q := &g.SubQuestions[qi]
			switch {
			case q.HasHeightOverride():
				// A manual height always moves as one piece.
				f.questionRange(g, qi)
			case q.Type == paper.MultipleChoice:
				f.stem(g, q)
				f.choices(g, q)
			case f.est.QuestionHeight(q) <= f.height:
				f.questionRange(g, qi)
			default:
				f.stem(g, q)
				f.answerArea(g, q)
			}
		}
	}
	for _, slot := range f.current {
		if len(slot) > 0 {
			f.pages = append(f.pages, f.current)
			break
		}
	}
	fillTotalParts(f.pages)
	return f.pages
}

// fillTotalParts records on every passage part how many parts its passage
// was split into.
func fillTotalParts(pages [][][]RenderItem) {
	counts := make(map[string]int)
	for _, page := range pages {
		for _, slot := range page {
			for _, it := range slot {
				if it.Kind == KindPassagePart {
					counts[it.GroupID]++
				}
			}
		}
	}
	for _, page := range pages {
		for _, slot := range page {
			for i := range slot {
				if slot[i].Kind == KindPassagePart {
					slot[i].TotalParts = counts[slot[i].GroupID]
				}
			}
		}
	}
}

// PaginateDouble flows groups into pages of two columns of columnHeight
// pixels each: left column first, then right, then the next page.
func PaginateDouble(groups []paper.ContentGroup, columnHeight float64, opts Options) []FlowPageDouble {
	pages := newFlow(2, columnHeight, opts).run(groups)
	out := make([]FlowPageDouble, len(pages))
	for i, p := range pages {
		out[i] = FlowPageDouble{Left: p[0], Right: p[1]}
	}
	return out
}

// PaginateSingle flows groups into single-column pages of pageHeight pixels.
func PaginateSingle(groups []paper.ContentGroup, pageHeight float64, opts Options) []FlowPageSingle {
	pages := newFlow(1, pageHeight, opts).run(groups)
	out := make([]FlowPageSingle, len(pages))
	for i, p := range pages {
		out[i] = FlowPageSingle{Items: p[0]}
	}
	return out
}

// Paginate runs the variant selected by layout. Anything but single is laid
// out in two columns.
func Paginate(groups []paper.ContentGroup, layout paper.LayoutType, height float64, opts Options) *Result {
	if layout == paper.LayoutSingle {
		return &Result{Layout: paper.LayoutSingle, Single: PaginateSingle(groups, height, opts)}
	}
	return &Result{Layout: paper.LayoutDouble, Double: PaginateDouble(groups, height, opts)}
}
