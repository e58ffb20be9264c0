package layout

import "paperflow/pkg/paper"

// ItemKind tags the variant held by a RenderItem.
type ItemKind string

const (
	KindPassagePart      ItemKind = "passage-part"
	KindQuestionStemPart ItemKind = "question-stem-part"
	KindChoiceRange      ItemKind = "choice-range"
	KindQuestionRange    ItemKind = "question-range"
	KindAnswerArea       ItemKind = "answer-area"
)

// RenderItem is one positioned unit of output. Which fields are meaningful
// depends on Kind:
//
//	passage-part:       GroupID, Title (first part only), Content, PartNumber,
//	                    TotalParts, IsFirstPart, IsLastPart
//	question-stem-part: GroupID, QuestionID, Number, Content, IsFirstPart,
//	                    IsLastPart
//	choice-range:       GroupID, QuestionID, StartIndex..EndIndex into Choices
//	question-range:     GroupID, StartIndex..EndIndex into SubQuestions,
//	                    QuestionID and Number of the first question
//	answer-area:        GroupID, QuestionID, Number; the writing space of a
//	                    question whose stem was placed in parts
//
// EstHeight is the height charged against the column when the item was
// placed. Renderers should not recompute it.
type RenderItem struct {
	Kind        ItemKind `json:"kind" yaml:"kind"`
	GroupID     string   `json:"groupId" yaml:"groupId"`
	QuestionID  string   `json:"questionId,omitempty" yaml:"questionId,omitempty"`
	Number      int      `json:"number,omitempty" yaml:"number,omitempty"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Content     string   `json:"content,omitempty" yaml:"content,omitempty"`
	PartNumber  int      `json:"partNumber,omitempty" yaml:"partNumber,omitempty"`
	TotalParts  int      `json:"totalParts,omitempty" yaml:"totalParts,omitempty"`
	IsFirstPart bool     `json:"isFirstPart,omitempty" yaml:"isFirstPart,omitempty"`
	IsLastPart  bool     `json:"isLastPart,omitempty" yaml:"isLastPart,omitempty"`
	StartIndex  int      `json:"startIndex" yaml:"startIndex"`
	EndIndex    int      `json:"endIndex" yaml:"endIndex"`
	EstHeight   float64  `json:"estHeight" yaml:"estHeight"`
	// Forced marks a unit taller than a whole column that was placed alone.
	Forced bool `json:"forced,omitempty" yaml:"forced,omitempty"`
}

type FlowPageDouble struct {
	Left  []RenderItem `json:"left" yaml:"left"`
	Right []RenderItem `json:"right" yaml:"right"`
}

type FlowPageSingle struct {
	Items []RenderItem `json:"items" yaml:"items"`
}

// Result holds the pages of one pagination run in either layout.
type Result struct {
	Layout paper.LayoutType `json:"layout" yaml:"layout"`
	Double []FlowPageDouble `json:"double,omitempty" yaml:"double,omitempty"`
	Single []FlowPageSingle `json:"single,omitempty" yaml:"single,omitempty"`
}

func (r *Result) PageCount() int {
	if r.Layout == paper.LayoutSingle {
		return len(r.Single)
	}
	return len(r.Double)
}

// Placement is a RenderItem together with where it landed. Column is 0 for
// the left (or only) column and 1 for the right one.
type Placement struct {
	Page   int
	Column int
	Item   RenderItem
}

// Placements lists every item in document order.
func (r *Result) Placements() []Placement {
	var out []Placement
	if r.Layout == paper.LayoutSingle {
		for p, page := range r.Single {
			for _, it := range page.Items {
				out = append(out, Placement{Page: p, Item: it})
			}
		}
		return out
	}
	for p, page := range r.Double {
		for _, it := range page.Left {
			out = append(out, Placement{Page: p, Column: 0, Item: it})
		}
		for _, it := range page.Right {
			out = append(out, Placement{Page: p, Column: 1, Item: it})
		}
	}
	return out
}
