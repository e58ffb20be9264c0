package paper

// Index resolves the ids carried by render items back to source content.
type Index struct {
	groups    map[string]*ContentGroup
	questions map[string]map[string]*SubQuestion
}

// NewIndex builds an index over groups. The index points into the slice, so
// the groups must not be modified while it is in use.
func NewIndex(groups []ContentGroup) *Index {
	idx := &Index{
		groups:    make(map[string]*ContentGroup, len(groups)),
		questions: make(map[string]map[string]*SubQuestion, len(groups)),
	}
	for i := range groups {
		g := &groups[i]
		idx.groups[g.ID] = g
		qs := make(map[string]*SubQuestion, len(g.SubQuestions))
		for j := range g.SubQuestions {
			qs[g.SubQuestions[j].ID] = &g.SubQuestions[j]
		}
		idx.questions[g.ID] = qs
	}
	return idx
}

// Group looks up a group by id.
func (idx *Index) Group(id string) (*ContentGroup, bool) {
	g, ok := idx.groups[id]
	return g, ok
}

// Question looks up a question by its group id and its own id. Question ids
// are only unique within a group.
func (idx *Index) Question(groupID, questionID string) (*SubQuestion, bool) {
	q, ok := idx.questions[groupID][questionID]
	return q, ok
}
