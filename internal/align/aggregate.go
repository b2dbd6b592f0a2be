package align

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/ppiankov/befundlink/internal/model"
)

// Retriever extracts labeled candidate spans from documents. The result is
// keyed by label, and every span carries the ID of the document it came from.
type Retriever interface {
	RetrieveForTable(ctx context.Context, columns []model.Column, docs []model.Document) (map[string][]model.Span, error)
}

// EventSpans holds the retrieved spans of one event, grouped by the
// event-local befund id
type EventSpans struct {
	// Selected maps befund id i to the global index of the finding
	Selected []int
	// ByBefund holds the spans of each selected finding
	ByBefund map[string][]model.Span
}

// BefundID returns the event-local id of the i-th selected finding
func BefundID(i int) string {
	return strconv.Itoa(i)
}

// Aggregator drives the retrieval collaborator for every event
type Aggregator struct {
	retriever Retriever
	table     model.TableSpec
}

// NewAggregator creates an aggregator collecting evidence for the table's columns
func NewAggregator(retriever Retriever, table model.TableSpec) *Aggregator {
	return &Aggregator{
		retriever: retriever,
		table:     table,
	}
}

// Collect gathers the spans of one event. row is the event's overlap matrix
// row. An event without overlapping findings yields an empty result and no
// retrieval call.
func (a *Aggregator) Collect(ctx context.Context, row []bool, findings []model.Finding) (*EventSpans, error) {
	if len(row) != len(findings) {
		return nil, fmt.Errorf("overlap row has %d cells for %d findings", len(row), len(findings))
	}

	result := &EventSpans{ByBefund: make(map[string][]model.Span)}
	var docs []model.Document
	issued := make(map[string]bool)
	for j, hit := range row {
		if !hit {
			continue
		}
		id := BefundID(len(result.Selected))
		result.Selected = append(result.Selected, j)
		docs = append(docs, model.Document{ID: id, Text: findings[j].Text})
		issued[id] = true
	}
	if len(docs) == 0 {
		return result, nil
	}

	byLabel, err := a.retriever.RetrieveForTable(ctx, a.table.Columns, docs)
	if err != nil {
		return nil, fmt.Errorf("retrieve for table: %w", err)
	}

	// The map key is the span's label; ids must match the issued form exactly
	for _, label := range a.labelOrder(byLabel) {
		for _, span := range byLabel[label] {
			switch span.Label {
			case "":
				span.Label = label
			case label:
			default:
				return nil, fmt.Errorf("%w: span labeled %q returned under %q", ErrMalformedSpan, span.Label, label)
			}
			if !issued[span.BefundID] {
				return nil, fmt.Errorf("%w: unknown befund_id %q", ErrMalformedSpan, span.BefundID)
			}
			result.ByBefund[span.BefundID] = append(result.ByBefund[span.BefundID], span)
		}
	}

	return result, nil
}

// Aggregate runs Collect for every row of the matrix
func (a *Aggregator) Aggregate(ctx context.Context, matrix Matrix, findings []model.Finding) ([]*EventSpans, error) {
	out := make([]*EventSpans, len(matrix))
	for i, row := range matrix {
		spans, err := a.Collect(ctx, row, findings)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		out[i] = spans
	}
	return out, nil
}

// labelOrder visits table columns first, then any extra labels sorted, so
// that span order within a finding is deterministic
func (a *Aggregator) labelOrder(byLabel map[string][]model.Span) []string {
	order := make([]string, 0, len(byLabel))
	known := make(map[string]bool, len(a.table.Columns))
	for _, name := range a.table.Labels() {
		known[name] = true
		if _, ok := byLabel[name]; ok {
			order = append(order, name)
		}
	}
	var extra []string
	for label := range byLabel {
		if !known[label] {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

// Consolidate merges the spans of every selected finding. Findings for which
// retrieval returned nothing are left out.
func (e *EventSpans) Consolidate(findings []model.Finding) ([]model.FindingEvidence, error) {
	var out []model.FindingEvidence
	for i, globalIdx := range e.Selected {
		id := BefundID(i)
		spans := e.ByBefund[id]
		if len(spans) == 0 {
			continue
		}
		segments, err := Merge(spans)
		if err != nil {
			return nil, fmt.Errorf("befund %s: %w", id, err)
		}
		out = append(out, model.FindingEvidence{
			BefundID:     id,
			FindingIndex: globalIdx,
			FindingName:  findings[globalIdx].Name,
			Segments:     segments,
		})
	}
	return out, nil
}
