package text

import (
	"strings"

	"paperflow/pkg/html"
	"paperflow/pkg/paper"
)

// Default spacing constants, in pixels. These were tuned by eye against
// rendered papers and can be recalibrated freely.
const (
	DefaultItemGap       = 8.0  // breathing room below every placed item
	DefaultChoiceSpacing = 6.0  // per choice row
	DefaultChoicePadding = 8.0  // around the whole choice list
	DefaultShortAnswer   = 32.0 // underline row
	DefaultEssayArea     = 88.0 // boxed writing area
	DefaultFillInBlank   = 32.0 // "answer:" row
	DefaultSafetyMargin  = 12.0
)

// Estimator turns content into pixel heights without rendering anything.
// Results depend only on the input and the configured constants.
type Estimator struct {
	Metrics       Metrics
	ItemGap       float64
	ChoiceSpacing float64
	ChoicePadding float64
	ShortAnswer   float64
	EssayArea     float64
	FillInBlank   float64
	SafetyMargin  float64
}

// NewEstimator returns an Estimator for m with the default spacing constants.
func NewEstimator(m Metrics) *Estimator {
	return &Estimator{
		Metrics:       m,
		ItemGap:       DefaultItemGap,
		ChoiceSpacing: DefaultChoiceSpacing,
		ChoicePadding: DefaultChoicePadding,
		ShortAnswer:   DefaultShortAnswer,
		EssayArea:     DefaultEssayArea,
		FillInBlank:   DefaultFillInBlank,
		SafetyMargin:  DefaultSafetyMargin,
	}
}

// lineCount sums the wrapped lines of every literal line in plain.
func (e *Estimator) lineCount(plain string) int {
	total := 0
	for _, line := range strings.Split(plain, "\n") {
		total += e.Metrics.WrappedLines(line)
	}
	return total
}

// TextHeight estimates the height of plain text, never more than the whole
// lines that fit in containerHeight.
func (e *Estimator) TextHeight(plain string, containerHeight float64) float64 {
	lines := e.lineCount(plain)
	lp := e.Metrics.LinePx()
	if lp <= 0 {
		return 0
	}
	if maxLines := int(containerHeight / lp); lines > maxLines {
		lines = maxLines
	}
	if lines < 0 {
		lines = 0
	}
	return float64(lines) * lp
}

// FullTextHeight is TextHeight without the container cap. It tells whether
// a piece of text could ever fit a container.
func (e *Estimator) FullTextHeight(plain string) float64 {
	return float64(e.lineCount(plain)) * e.Metrics.LinePx()
}

// ChoiceHeight estimates one choice row. The whole choice is treated as a
// single paragraph.
func (e *Estimator) ChoiceHeight(content string) float64 {
	plain := html.PlainText(content)
	return float64(e.Metrics.WrappedLines(plain))*e.Metrics.LinePx() + e.ChoiceSpacing
}

// ChoicesHeight is the sum of ChoiceHeight over choices.
func (e *Estimator) ChoicesHeight(choices []paper.Choice) float64 {
	var sum float64
	for _, c := range choices {
		sum += e.ChoiceHeight(c.Content)
	}
	return sum
}

// QuestionHeight estimates a whole question as one unit. A manual height
// override is returned as is, plus the item gap.
func (e *Estimator) QuestionHeight(q *paper.SubQuestion) float64 {
	if q.HasHeightOverride() {
		return *q.Height + e.ItemGap
	}
	h := float64(e.lineCount(html.PlainText(q.Content))) * e.Metrics.LinePx()
	if q.Type == paper.MultipleChoice {
		h += e.ChoicesHeight(q.Choices) + e.ChoicePadding
	}
	return h + e.answerArea(q.Type) + e.SafetyMargin
}

// AnswerAreaHeight is the writing space below a question's stem when the
// stem is placed on its own, safety margin included. Multiple choice gets
// only the margin.
func (e *Estimator) AnswerAreaHeight(q *paper.SubQuestion) float64 {
	return e.answerArea(q.Type) + e.SafetyMargin
}

func (e *Estimator) answerArea(t paper.QuestionType) float64 {
	switch t {
	case paper.ShortAnswer:
		return e.ShortAnswer
	case paper.Essay:
		return e.EssayArea
	case paper.FillInBlank:
		return e.FillInBlank
	}
	return 0
}
