package align

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/ppiankov/befundlink/internal/model"
)

// ErrMalformedSpan is returned for spans with an inverted or negative token
// range, or without a label
var ErrMalformedSpan = errors.New("malformed span")

// Merge consolidates the spans of one (event, finding) pair. Spans are
// ordered by StartTok (stable), and every span starting at or before the
// running segment's end is absorbed into it: the end grows to cover it, its
// label joins the set, and its text replaces the segment text only when it
// is strictly longer.
func Merge(spans []model.Span) ([]model.MergedSegment, error) {
	if len(spans) == 0 {
		return []model.MergedSegment{}, nil
	}
	for i, s := range spans {
		if err := validateSpan(s); err != nil {
			return nil, fmt.Errorf("span %d: %w", i, err)
		}
	}

	sorted := make([]model.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTok < sorted[j].StartTok
	})

	var merged []model.MergedSegment
	current := openSegment(sorted[0])
	for _, s := range sorted[1:] {
		if s.StartTok <= current.EndTok {
			if s.EndTok > current.EndTok {
				current.EndTok = s.EndTok
			}
			current.Labels.Add(s.Label)
			if utf8.RuneCountInString(s.Text) > utf8.RuneCountInString(current.Text) {
				current.Text = s.Text
			}
			continue
		}
		merged = append(merged, current)
		current = openSegment(s)
	}
	merged = append(merged, current)

	return merged, nil
}

// SegmentsAsSpans expands merged segments back into one span per label, in
// sorted label order
func SegmentsAsSpans(segments []model.MergedSegment) []model.Span {
	var spans []model.Span
	for _, seg := range segments {
		for _, label := range seg.Labels.Sorted() {
			spans = append(spans, model.Span{
				StartTok: seg.StartTok,
				EndTok:   seg.EndTok,
				Text:     seg.Text,
				Label:    label,
			})
		}
	}
	return spans
}

func openSegment(s model.Span) model.MergedSegment {
	return model.MergedSegment{
		StartTok: s.StartTok,
		EndTok:   s.EndTok,
		Text:     s.Text,
		Labels:   model.NewLabelSet(s.Label),
	}
}

func validateSpan(s model.Span) error {
	switch {
	case s.StartTok < 0:
		return fmt.Errorf("%w: negative start_tok %d", ErrMalformedSpan, s.StartTok)
	case s.StartTok > s.EndTok:
		return fmt.Errorf("%w: start_tok %d > end_tok %d", ErrMalformedSpan, s.StartTok, s.EndTok)
	case s.Label == "":
		return fmt.Errorf("%w: missing label", ErrMalformedSpan)
	}
	return nil
}
