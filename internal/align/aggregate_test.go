package align

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ppiankov/befundlink/internal/model"
)

type stubRetriever struct {
	calls  [][]model.Document
	result func(docs []model.Document) map[string][]model.Span
	err    error
}

func (s *stubRetriever) RetrieveForTable(ctx context.Context, columns []model.Column, docs []model.Document) (map[string][]model.Span, error) {
	s.calls = append(s.calls, docs)
	if s.err != nil {
		return nil, s.err
	}
	return s.result(docs), nil
}

var testTable = model.TableSpec{
	Name:    "tumor",
	Columns: []model.Column{{Name: "Diagnose"}, {Name: "Therapie"}},
}

func testFindings() []model.Finding {
	return []model.Finding{
		{Name: "a.txt", Text: "finding zero"},
		{Name: "b.txt", Text: "finding one"},
		{Name: "c.txt", Text: "finding two"},
	}
}

func TestAggregator_LocalBefundIDs(t *testing.T) {
	stub := &stubRetriever{
		result: func(docs []model.Document) map[string][]model.Span {
			return map[string][]model.Span{
				"Diagnose": {{BefundID: "1", StartTok: 0, EndTok: 1, Text: "d1"}},
				"Therapie": {{BefundID: "0", StartTok: 2, EndTok: 3, Text: "t0"}, {BefundID: "1", StartTok: 0, EndTok: 2, Text: "t1"}},
			}
		},
	}
	agg := NewAggregator(stub, testTable)

	got, err := agg.Collect(context.Background(), []bool{false, true, true}, testFindings())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(stub.calls) != 1 {
		t.Fatalf("Expected one retrieval call, got %d", len(stub.calls))
	}
	wantDocs := []model.Document{{ID: "0", Text: "finding one"}, {ID: "1", Text: "finding two"}}
	if !reflect.DeepEqual(stub.calls[0], wantDocs) {
		t.Errorf("Expected docs %+v, got %+v", wantDocs, stub.calls[0])
	}
	if !reflect.DeepEqual(got.Selected, []int{1, 2}) {
		t.Errorf("Expected selected [1 2], got %v", got.Selected)
	}

	if len(got.ByBefund["0"]) != 1 || got.ByBefund["0"][0].Label != "Therapie" {
		t.Errorf("Unexpected spans for befund 0: %+v", got.ByBefund["0"])
	}
	b1 := got.ByBefund["1"]
	if len(b1) != 2 {
		t.Fatalf("Expected 2 spans for befund 1, got %d", len(b1))
	}
	if b1[0].Label != "Diagnose" || b1[1].Label != "Therapie" {
		t.Errorf("Expected spans in column order, got %s then %s", b1[0].Label, b1[1].Label)
	}
}

func TestAggregator_NoOverlapSkipsRetrieval(t *testing.T) {
	stub := &stubRetriever{}
	agg := NewAggregator(stub, testTable)

	got, err := agg.Collect(context.Background(), []bool{false, false, false}, testFindings())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(stub.calls) != 0 {
		t.Errorf("Expected no retrieval call, got %d", len(stub.calls))
	}
	if len(got.Selected) != 0 || len(got.ByBefund) != 0 {
		t.Errorf("Expected empty evidence, got %+v", got)
	}
}

func TestAggregator_UnknownBefundID(t *testing.T) {
	tests := []string{"5", "1", "+0", "00", " 0", "", "-0"}

	for _, id := range tests {
		stub := &stubRetriever{
			result: func(docs []model.Document) map[string][]model.Span {
				return map[string][]model.Span{"Diagnose": {{BefundID: id, StartTok: 0, EndTok: 1}}}
			},
		}
		agg := NewAggregator(stub, testTable)

		_, err := agg.Collect(context.Background(), []bool{true, false, false}, testFindings())
		if !errors.Is(err, ErrMalformedSpan) {
			t.Errorf("befund_id %q: expected ErrMalformedSpan, got %v", id, err)
		}
	}
}

func TestAggregator_LabelMismatch(t *testing.T) {
	stub := &stubRetriever{
		result: func(docs []model.Document) map[string][]model.Span {
			return map[string][]model.Span{
				"Diagnose": {{BefundID: "0", StartTok: 0, EndTok: 1, Text: "x", Label: "Therapie"}},
			}
		},
	}
	agg := NewAggregator(stub, testTable)

	_, err := agg.Collect(context.Background(), []bool{true, false, false}, testFindings())
	if !errors.Is(err, ErrMalformedSpan) {
		t.Errorf("Expected ErrMalformedSpan for a span under a foreign label, got %v", err)
	}
}

func TestAggregator_RetrievalError(t *testing.T) {
	boom := errors.New("boom")
	agg := NewAggregator(&stubRetriever{err: boom}, testTable)

	_, err := agg.Aggregate(context.Background(), Matrix{{true, false, false}}, testFindings())
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped retrieval error, got %v", err)
	}
}

func TestAggregator_RowLengthMismatch(t *testing.T) {
	agg := NewAggregator(&stubRetriever{}, testTable)
	if _, err := agg.Collect(context.Background(), []bool{true}, testFindings()); err == nil {
		t.Error("Expected error for mismatched row length")
	}
}

func TestAggregate_IDsScopedPerEvent(t *testing.T) {
	stub := &stubRetriever{
		result: func(docs []model.Document) map[string][]model.Span {
			spans := make([]model.Span, len(docs))
			for i, d := range docs {
				spans[i] = model.Span{BefundID: d.ID, StartTok: 0, EndTok: 1, Text: d.Text}
			}
			return map[string][]model.Span{"Diagnose": spans}
		},
	}
	agg := NewAggregator(stub, testTable)
	findings := testFindings()

	all, err := agg.Aggregate(context.Background(), Matrix{
		{true, false, false},
		{false, false, true},
	}, findings)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	first := all[0].ByBefund["0"]
	second := all[1].ByBefund["0"]
	if len(first) != 1 || first[0].Text != "finding zero" {
		t.Errorf("Event 0 befund 0 should be finding zero, got %+v", first)
	}
	if len(second) != 1 || second[0].Text != "finding two" {
		t.Errorf("Event 1 befund 0 should be finding two, got %+v", second)
	}
}

func TestEventSpans_Consolidate(t *testing.T) {
	es := &EventSpans{
		Selected: []int{0, 2},
		ByBefund: map[string][]model.Span{
			"1": {
				{BefundID: "1", StartTok: 0, EndTok: 5, Text: "a", Label: "L1"},
				{BefundID: "1", StartTok: 3, EndTok: 8, Text: "bb", Label: "L2"},
			},
		},
	}

	got, err := es.Consolidate(testFindings())
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected only the befund with spans, got %d entries", len(got))
	}
	if got[0].BefundID != "1" || got[0].FindingIndex != 2 || got[0].FindingName != "c.txt" {
		t.Errorf("Unexpected finding evidence: %+v", got[0])
	}
	if len(got[0].Segments) != 1 || got[0].Segments[0].Text != "bb" {
		t.Errorf("Unexpected segments: %+v", got[0].Segments)
	}
}
