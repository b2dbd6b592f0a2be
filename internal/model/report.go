package model

import "time"

// EvidenceReport is the consolidated evidence of one case (an events report
// plus its findings)
type EvidenceReport struct {
	RunID       string          `json:"run_id"`
	Case        string          `json:"case"`
	Table       string          `json:"table,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Findings    []FindingInfo   `json:"findings"`
	Events      []EventEvidence `json:"events"`
	Skipped     []SkippedEvent  `json:"skipped,omitempty"` // Events dropped before alignment
}

// FindingInfo describes one finding and the interval derived for it
type FindingInfo struct {
	Name     string   `json:"name"`
	Dates    []string `json:"dates"`
	Interval Interval `json:"interval"`
}

// SkippedEvent records an event that never entered alignment
type SkippedEvent struct {
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// EventEvidence holds everything collected for one event
type EventEvidence struct {
	Event    Event             `json:"event"`
	Dates    []string          `json:"dates"`
	Interval Interval          `json:"interval"`
	Findings []FindingEvidence `json:"findings"` // Ordered by BefundID; empty when nothing overlapped
}

// FindingEvidence holds the merged segments of one (event, finding) pair.
// BefundID is scoped to the event: it is the finding's position among the
// findings selected for this event, not its global index.
type FindingEvidence struct {
	BefundID     string          `json:"befund_id"`
	FindingIndex int             `json:"finding_index"`
	FindingName  string          `json:"finding_name"`
	Segments     []MergedSegment `json:"segments"`
}

// HasEvidence reports whether any finding contributed segments
func (e EventEvidence) HasEvidence() bool {
	for _, f := range e.Findings {
		if len(f.Segments) > 0 {
			return true
		}
	}
	return false
}

// Segments returns the merged segments keyed by event-local befund id
func (e EventEvidence) Segments() map[string][]MergedSegment {
	out := make(map[string][]MergedSegment, len(e.Findings))
	for _, f := range e.Findings {
		out[f.BefundID] = f.Segments
	}
	return out
}

// SegmentCount returns the number of merged segments across all findings
func (r EvidenceReport) SegmentCount() int {
	n := 0
	for _, e := range r.Events {
		for _, f := range e.Findings {
			n += len(f.Segments)
		}
	}
	return n
}
