package paper

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPaper is wrapped by every validation failure.
var ErrInvalidPaper = errors.New("invalid paper")

// Load reads a paper from a YAML or JSON file and validates it.
func Load(path string) (*Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open paper: %w", err)
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Decode parses a paper document. JSON is accepted as a subset of YAML.
func Decode(r io.Reader) (*Paper, error) {
	var p Paper
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidPaper)
		}
		return nil, fmt.Errorf("decode paper: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the structural rules the paginator relies on. An empty
// layout is allowed and leaves the choice to the caller's configuration.
func (p *Paper) Validate() error {
	if p.Layout != "" && p.Layout != LayoutSingle && p.Layout != LayoutDouble {
		return fmt.Errorf("%w: unknown layout %q", ErrInvalidPaper, p.Layout)
	}
	return ValidateGroups(p.QuestionGroups)
}

// ValidateGroups checks ids, question types, choices and height overrides.
func ValidateGroups(groups []ContentGroup) error {
	seenGroups := make(map[string]bool, len(groups))
	for gi, g := range groups {
		if g.ID == "" {
			return fmt.Errorf("%w: group %d has no id", ErrInvalidPaper, gi)
		}
		if seenGroups[g.ID] {
			return fmt.Errorf("%w: duplicate group id %q", ErrInvalidPaper, g.ID)
		}
		seenGroups[g.ID] = true

		seenQuestions := make(map[string]bool, len(g.SubQuestions))
		for qi, q := range g.SubQuestions {
			if q.ID == "" {
				return fmt.Errorf("%w: group %q question %d has no id", ErrInvalidPaper, g.ID, qi)
			}
			if seenQuestions[q.ID] {
				return fmt.Errorf("%w: group %q has duplicate question id %q", ErrInvalidPaper, g.ID, q.ID)
			}
			seenQuestions[q.ID] = true
			if !q.Type.Valid() {
				return fmt.Errorf("%w: question %q has unknown type %q", ErrInvalidPaper, q.ID, q.Type)
			}
			if q.Type != MultipleChoice && len(q.Choices) > 0 {
				return fmt.Errorf("%w: question %q is %s but has choices", ErrInvalidPaper, q.ID, q.Type)
			}
			if q.Height != nil && *q.Height < 0 {
				return fmt.Errorf("%w: question %q has negative height", ErrInvalidPaper, q.ID)
			}
			for _, c := range q.Choices {
				if c.Number < 1 {
					return fmt.Errorf("%w: question %q choice %q has number %d", ErrInvalidPaper, q.ID, c.ID, c.Number)
				}
			}
		}
	}
	return nil
}
