package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperflow/pkg/paper"
)

const linePx = DefaultFontSizePx * DefaultLineHeight

func TestTextHeight(t *testing.T) {
	e := NewEstimator(DefaultMetrics())
	tests := []struct {
		name      string
		plain     string
		container float64
		lines     int
	}{
		{"empty still takes a line", "", 1000, 1},
		{"short", "abc", 1000, 1},
		{"exactly one line", strings.Repeat("a", 20), 1000, 1},
		{"wraps", strings.Repeat("a", 45), 1000, 3},
		{"blank line counts", "a\n\nb", 1000, 3},
		{"capped by container", strings.Repeat("a", 200), 50, 2},
		{"zero container", "abc", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, float64(tt.lines)*linePx, e.TextHeight(tt.plain, tt.container), 1e-9)
		})
	}
}

func TestTextHeightIsMonotonic(t *testing.T) {
	e := NewEstimator(DefaultMetrics())
	prev := 0.0
	for n := 0; n < 300; n += 7 {
		h := e.TextHeight(strings.Repeat("가", n), 10000)
		require.GreaterOrEqual(t, h, prev, "length %d", n)
		prev = h
	}
}

func TestFullTextHeightIgnoresContainer(t *testing.T) {
	e := NewEstimator(DefaultMetrics())
	s := strings.Repeat("a", 200)
	assert.InDelta(t, 10*linePx, e.FullTextHeight(s), 1e-9)
	assert.Less(t, e.TextHeight(s, 50), e.FullTextHeight(s))
}

func TestEstimatesAreDeterministic(t *testing.T) {
	e := NewEstimator(DefaultMetrics())
	q := &paper.SubQuestion{Type: paper.Essay, Content: "<p>자신의 생각을 쓰시오.</p>"}
	assert.Equal(t, e.QuestionHeight(q), e.QuestionHeight(q))
	assert.Equal(t, e.TextHeight("같은 입력", 500), e.TextHeight("같은 입력", 500))
}

func TestChoiceHeight(t *testing.T) {
	e := NewEstimator(DefaultMetrics())
	assert.InDelta(t, linePx+DefaultChoiceSpacing, e.ChoiceHeight("abc"), 1e-9)
	assert.InDelta(t, 2*linePx+DefaultChoiceSpacing, e.ChoiceHeight(strings.Repeat("b", 30)), 1e-9)

	choices := []paper.Choice{{Content: "a"}, {Content: "b"}, {Content: "c"}}
	assert.InDelta(t, 3*(linePx+DefaultChoiceSpacing), e.ChoicesHeight(choices), 1e-9)
	assert.Zero(t, e.ChoicesHeight(nil))
}

func TestQuestionHeight(t *testing.T) {
	e := NewEstimator(DefaultMetrics())
	tests := []struct {
		name string
		q    paper.SubQuestion
		want float64
	}{
		{
			name: "short answer",
			q:    paper.SubQuestion{Type: paper.ShortAnswer, Content: "abc"},
			want: linePx + DefaultShortAnswer + DefaultSafetyMargin,
		},
		{
			name: "essay",
			q:    paper.SubQuestion{Type: paper.Essay, Content: "abc"},
			want: linePx + DefaultEssayArea + DefaultSafetyMargin,
		},
		{
			name: "fill in blank",
			q:    paper.SubQuestion{Type: paper.FillInBlank, Content: "abc"},
			want: linePx + DefaultFillInBlank + DefaultSafetyMargin,
		},
		{
			name: "multiple choice",
			q: paper.SubQuestion{Type: paper.MultipleChoice, Content: "q", Choices: []paper.Choice{
				{Number: 1, Content: "a"}, {Number: 2, Content: "b"},
			}},
			want: linePx + 2*(linePx+DefaultChoiceSpacing) + DefaultChoicePadding + DefaultSafetyMargin,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, e.QuestionHeight(&tt.q), 1e-9)
		})
	}
}

func TestQuestionHeightOverride(t *testing.T) {
	e := NewEstimator(DefaultMetrics())
	h := 800.0
	q := &paper.SubQuestion{Type: paper.Essay, Content: strings.Repeat("긴 지문 ", 500), Height: &h}
	assert.Equal(t, 800+DefaultItemGap, e.QuestionHeight(q))

	zero := 0.0
	q = &paper.SubQuestion{Type: paper.ShortAnswer, Content: "abc", Height: &zero}
	assert.InDelta(t, linePx+DefaultShortAnswer+DefaultSafetyMargin, e.QuestionHeight(q), 1e-9,
		"a zero height is not an override")
}

func TestAnswerAreaHeight(t *testing.T) {
	e := NewEstimator(DefaultMetrics())
	tests := []struct {
		typ  paper.QuestionType
		want float64
	}{
		{paper.MultipleChoice, DefaultSafetyMargin},
		{paper.ShortAnswer, DefaultShortAnswer + DefaultSafetyMargin},
		{paper.Essay, DefaultEssayArea + DefaultSafetyMargin},
		{paper.FillInBlank, DefaultFillInBlank + DefaultSafetyMargin},
	}
	for _, tt := range tests {
		q := &paper.SubQuestion{Type: tt.typ, Content: "<p>stem</p>"}
		assert.Equal(t, tt.want, e.AnswerAreaHeight(q), string(tt.typ))
		if tt.typ != paper.MultipleChoice {
			// The stem lines plus the answer area make up the whole question.
			stem := e.FullTextHeight("stem\n")
			assert.InDelta(t, e.QuestionHeight(q), stem+e.AnswerAreaHeight(q), 1e-9, string(tt.typ))
		}
	}
}

func TestMetrics(t *testing.T) {
	m := DefaultMetrics()
	assert.InDelta(t, 22.4, m.LinePx(), 1e-9)
	assert.Equal(t, 20, m.MaxChars(10), "at least one line")
	assert.Equal(t, 60, m.MaxChars(70))
	assert.Equal(t, 30, m.OrphanChars())

	m.CharsPerLine = 1
	assert.Equal(t, 1, m.OrphanChars())
	m.CharsPerLine = 0
	assert.Equal(t, 3, m.WrappedLines("abc"), "zero chars per line counts as one")
}

func TestEastAsianWidth(t *testing.T) {
	m := DefaultMetrics()
	assert.Equal(t, 3, m.TextLength("가나다"))
	m.EastAsianWidth = true
	assert.Equal(t, 6, m.TextLength("가나다"))
	assert.Equal(t, 3, m.TextLength("abc"))

	s := strings.Repeat("가", 15)
	assert.Equal(t, 2, m.WrappedLines(s))
}
