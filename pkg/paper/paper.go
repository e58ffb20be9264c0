package paper

import "fmt"

// QuestionType selects how a sub-question is laid out and how much answer
// space it reserves.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	ShortAnswer    QuestionType = "short-answer"
	Essay          QuestionType = "essay"
	FillInBlank    QuestionType = "fill-in-blank"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, ShortAnswer, Essay, FillInBlank:
		return true
	}
	return false
}

// LayoutType is the column arrangement of a page.
type LayoutType string

const (
	LayoutSingle LayoutType = "single"
	LayoutDouble LayoutType = "double"
)

type Choice struct {
	ID      string `yaml:"id" json:"id"`
	Number  int    `yaml:"number" json:"number"`
	Content string `yaml:"content" json:"content"`
}

type Passage struct {
	ID      string `yaml:"id" json:"id"`
	Title   string `yaml:"title,omitempty" json:"title,omitempty"`
	Content string `yaml:"content" json:"content"`
}

type SubQuestion struct {
	ID      string       `yaml:"id" json:"id"`
	Number  int          `yaml:"number" json:"number"`
	Type    QuestionType `yaml:"type" json:"type"`
	Content string       `yaml:"content" json:"content"`
	Choices []Choice     `yaml:"choices,omitempty" json:"choices,omitempty"`
	// Height is a manual override set when the rendered question was resized
	// by hand. When present it wins over any estimate.
	Height *float64 `yaml:"height,omitempty" json:"height,omitempty"`
	Points int      `yaml:"points,omitempty" json:"points,omitempty"`
}

// HasHeightOverride reports whether a usable manual height is set.
func (q *SubQuestion) HasHeightOverride() bool {
	return q.Height != nil && *q.Height > 0
}

// ContentGroup is one passage together with the questions that refer to it.
// A group without a passage is just a run of questions.
type ContentGroup struct {
	ID           string        `yaml:"id" json:"id"`
	Title        string        `yaml:"title,omitempty" json:"title,omitempty"`
	Passage      *Passage      `yaml:"passage,omitempty" json:"passage,omitempty"`
	SubQuestions []SubQuestion `yaml:"subQuestions" json:"subQuestions"`
}

// Paper is a whole exam paper as read from disk.
type Paper struct {
	ID             string         `yaml:"id" json:"id"`
	Title          string         `yaml:"title" json:"title"`
	Layout         LayoutType     `yaml:"layout,omitempty" json:"layout,omitempty"`
	QuestionGroups []ContentGroup `yaml:"questionGroups" json:"questionGroups"`
}

var choiceSymbols = []string{"①", "②", "③", "④", "⑤", "⑥", "⑦", "⑧", "⑨", "⑩"}

const choiceFallbackSymbol = "⑪"

// ChoiceSymbol returns the circled digit printed in front of choice n.
// Numbers outside 1..10 all share one fallback glyph.
func ChoiceSymbol(n int) string {
	if n < 1 || n > len(choiceSymbols) {
		return choiceFallbackSymbol
	}
	return choiceSymbols[n-1]
}

// Renumber assigns continuous question numbers across all groups and sets
// the "[start-end]" instruction title of every group that has a passage.
// It returns a copy; the input is left untouched.
func Renumber(groups []ContentGroup, instruction string) []ContentGroup {
	out := make([]ContentGroup, len(groups))
	next := 1
	for i, g := range groups {
		g.SubQuestions = append([]SubQuestion(nil), g.SubQuestions...)
		start := next
		for j := range g.SubQuestions {
			g.SubQuestions[j].Number = next
			next++
		}
		end := next - 1
		if g.Passage != nil && len(g.SubQuestions) > 0 {
			if start == end {
				g.Title = fmt.Sprintf("[%d] %s", start, instruction)
			} else {
				g.Title = fmt.Sprintf("[%d-%d] %s", start, end, instruction)
			}
		}
		out[i] = g
	}
	return out
}
