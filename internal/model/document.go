package model

import (
	"encoding/json"
	"sort"
)

// Event is one paragraph of the extracted-events report. Its text is its identity.
type Event struct {
	Text  string  `json:"text"`
	Dates DateSet `json:"-"`
}

// Finding ("Befund") is the raw text of one source document
type Finding struct {
	Name  string  `json:"name"` // File name the finding was read from
	Text  string  `json:"-"`
	Dates DateSet `json:"-"`
}

// Document is a finding handed to the retrieval collaborator under a
// locally scoped identifier
type Document struct {
	ID   string
	Text string
}

// Span is a labeled token range retrieved from one finding for one column
type Span struct {
	BefundID string `json:"befund_id"`
	StartTok int    `json:"start_tok"`
	EndTok   int    `json:"end_tok"`
	Text     string `json:"text"`
	Label    string `json:"label"`
}

// LabelSet is an unordered set of column labels
type LabelSet map[string]struct{}

// NewLabelSet creates a set holding the given labels
func NewLabelSet(labels ...string) LabelSet {
	s := make(LabelSet, len(labels))
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Add inserts a label
func (s LabelSet) Add(label string) {
	s[label] = struct{}{}
}

// Has reports whether label is present
func (s LabelSet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// Sorted returns the labels in lexical order
func (s LabelSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON writes the set as a sorted array
func (s LabelSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON reads an array of labels
func (s *LabelSet) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*s = NewLabelSet(labels...)
	return nil
}

// MergedSegment is the consolidation of one or more overlapping spans
type MergedSegment struct {
	StartTok int      `json:"start_tok"`
	EndTok   int      `json:"end_tok"`
	Text     string   `json:"text"`
	Labels   LabelSet `json:"labels"`
}
