package align

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ppiankov/befundlink/internal/model"
)

func span(start, end int, text, label string) model.Span {
	return model.Span{StartTok: start, EndTok: end, Text: text, Label: label}
}

func TestMerge_OverlappingAndSeparate(t *testing.T) {
	spans := []model.Span{
		span(0, 5, "a", "L1"),
		span(3, 8, "bb", "L2"),
		span(10, 12, "c", "L3"),
	}

	got, err := Merge(spans)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(got))
	}

	first := got[0]
	if first.StartTok != 0 || first.EndTok != 8 || first.Text != "bb" {
		t.Errorf("Unexpected first segment: %+v", first)
	}
	if labels := first.Labels.Sorted(); !reflect.DeepEqual(labels, []string{"L1", "L2"}) {
		t.Errorf("Expected labels [L1 L2], got %v", labels)
	}

	second := got[1]
	if second.StartTok != 10 || second.EndTok != 12 || second.Text != "c" {
		t.Errorf("Unexpected second segment: %+v", second)
	}
	if labels := second.Labels.Sorted(); !reflect.DeepEqual(labels, []string{"L3"}) {
		t.Errorf("Expected labels [L3], got %v", labels)
	}
}

func TestMerge_Empty(t *testing.T) {
	got, err := Merge(nil)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil result, got %v", got)
	}
}

func TestMerge_TouchingRangesMerge(t *testing.T) {
	got, err := Merge([]model.Span{span(0, 5, "x", "A"), span(5, 7, "y", "B")})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(got) != 1 || got[0].EndTok != 7 {
		t.Errorf("Expected touching spans to merge into [0,7], got %+v", got)
	}
}

func TestMerge_AdjacentButNotTouchingStaySeparate(t *testing.T) {
	got, err := Merge([]model.Span{span(0, 5, "x", "A"), span(6, 7, "y", "A")})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 segments, got %d", len(got))
	}
}

func TestMerge_UnsortedInput(t *testing.T) {
	got, err := Merge([]model.Span{
		span(20, 25, "late", "C"),
		span(0, 4, "early", "A"),
		span(2, 6, "mid", "B"),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(got))
	}
	if got[0].StartTok != 0 || got[0].EndTok != 6 || got[0].Text != "early" {
		t.Errorf("Unexpected first segment: %+v", got[0])
	}
	if got[1].StartTok != 20 {
		t.Errorf("Expected second segment at 20, got %d", got[1].StartTok)
	}
}

func TestMerge_ContainedSpanAfterExtension(t *testing.T) {
	got, err := Merge([]model.Span{
		span(0, 3, "a", "A"),
		span(2, 20, "b", "B"),
		span(10, 12, "c", "C"),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected one segment, got %d", len(got))
	}
	if got[0].EndTok != 20 {
		t.Errorf("Expected end 20, got %d", got[0].EndTok)
	}
	if len(got[0].Labels) != 3 {
		t.Errorf("Expected 3 labels, got %v", got[0].Labels.Sorted())
	}
}

func TestMerge_LongestTextWins(t *testing.T) {
	tests := []struct {
		name  string
		spans []model.Span
		want  string
	}{
		{
			name:  "longer later text replaces",
			spans: []model.Span{span(0, 5, "short", "A"), span(1, 4, "much longer", "B")},
			want:  "much longer",
		},
		{
			name:  "equal length keeps first encountered",
			spans: []model.Span{span(0, 5, "abc", "A"), span(1, 4, "xyz", "B")},
			want:  "abc",
		},
		{
			name:  "tie on start keeps input order",
			spans: []model.Span{span(3, 5, "one", "A"), span(3, 9, "two", "B")},
			want:  "one",
		},
		{
			name:  "length counted in characters",
			spans: []model.Span{span(0, 5, "Größe", "A"), span(1, 4, "Groesse", "B")},
			want:  "Groesse",
		},
		{
			name:  "texts are never concatenated",
			spans: []model.Span{span(0, 5, "left", "A"), span(4, 9, "right", "B")},
			want:  "right",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(tt.spans)
			if err != nil {
				t.Fatalf("Merge failed: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("Expected one segment, got %d", len(got))
			}
			if got[0].Text != tt.want {
				t.Errorf("Expected text %q, got %q", tt.want, got[0].Text)
			}
		})
	}
}

func TestMerge_DuplicateLabelsCollapse(t *testing.T) {
	got, err := Merge([]model.Span{span(0, 5, "a", "A"), span(2, 6, "b", "A")})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(got[0].Labels) != 1 || !got[0].Labels.Has("A") {
		t.Errorf("Expected single label A, got %v", got[0].Labels.Sorted())
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	spans := []model.Span{span(10, 12, "c", "C"), span(0, 5, "a", "A")}
	if _, err := Merge(spans); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if spans[0].StartTok != 10 {
		t.Error("Expected input order to be preserved")
	}
}

func TestMerge_MalformedSpans(t *testing.T) {
	tests := []struct {
		name string
		span model.Span
	}{
		{"inverted range", span(8, 3, "x", "A")},
		{"negative start", span(-1, 3, "x", "A")},
		{"missing label", span(0, 3, "x", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge([]model.Span{span(0, 1, "ok", "A"), tt.span})
			if !errors.Is(err, ErrMalformedSpan) {
				t.Errorf("Expected ErrMalformedSpan, got %v", err)
			}
		})
	}
}

func TestMerge_Properties(t *testing.T) {
	inputs := [][]model.Span{
		{span(0, 5, "a", "L1"), span(3, 8, "bb", "L2"), span(10, 12, "c", "L3")},
		{span(5, 5, "a", "A"), span(5, 5, "b", "B"), span(5, 6, "c", "C")},
		{span(40, 50, "x", "A"), span(0, 1, "y", "B"), span(1, 2, "z", "C"), span(3, 39, "w", "D"), span(39, 40, "v", "E")},
		{span(0, 0, "a", "A"), span(2, 2, "b", "B"), span(4, 4, "c", "C")},
		{span(7, 9, "a", "A"), span(1, 3, "b", "A"), span(2, 8, "cc", "B"), span(12, 30, "d", "C"), span(13, 14, "e", "D")},
	}

	for n, spans := range inputs {
		got, err := Merge(spans)
		if err != nil {
			t.Fatalf("input %d: Merge failed: %v", n, err)
		}
		if len(got) < 1 || len(got) > len(spans) {
			t.Errorf("input %d: segment count %d outside [1, %d]", n, len(got), len(spans))
		}

		labels := make(map[string]bool)
		for i, seg := range got {
			if seg.StartTok > seg.EndTok {
				t.Errorf("input %d: segment %d has start > end", n, i)
			}
			if i > 0 && seg.StartTok <= got[i-1].EndTok {
				t.Errorf("input %d: segments %d and %d overlap or are unsorted", n, i-1, i)
			}
			for l := range seg.Labels {
				labels[l] = true
			}
		}

		want := make(map[string]bool)
		for _, s := range spans {
			want[s.Label] = true
		}
		if !reflect.DeepEqual(labels, want) {
			t.Errorf("input %d: label union %v, want %v", n, labels, want)
		}
	}
}

func TestMerge_Idempotent(t *testing.T) {
	inputs := [][]model.Span{
		{span(0, 5, "a", "L1"), span(3, 8, "bb", "L2"), span(10, 12, "c", "L3")},
		{span(7, 9, "a", "A"), span(1, 3, "b", "A"), span(2, 8, "cc", "B"), span(12, 30, "d", "C"), span(13, 14, "e", "D")},
		{span(0, 0, "a", "A")},
	}

	for n, spans := range inputs {
		once, err := Merge(spans)
		if err != nil {
			t.Fatalf("input %d: Merge failed: %v", n, err)
		}
		twice, err := Merge(SegmentsAsSpans(once))
		if err != nil {
			t.Fatalf("input %d: second Merge failed: %v", n, err)
		}
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("input %d: merge not idempotent:\n once  %+v\n twice %+v", n, once, twice)
		}
	}
}
