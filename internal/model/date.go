package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used throughout
const DateLayout = "2006-01-02"

// ErrMalformedDate reports a date value that is not a valid calendar date
var ErrMalformedDate = errors.New("malformed date")

// DateSet is an unordered collection of calendar dates found in one text unit
type DateSet []time.Time

// ParseDateSet parses ISO dates (YYYY-MM-DD) into a DateSet
func ParseDateSet(values ...string) (DateSet, error) {
	set := make(DateSet, 0, len(values))
	for _, v := range values {
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedDate, v)
		}
		set = append(set, d)
	}
	return set, nil
}

// MustParseDateSet is ParseDateSet for literals known to be valid
func MustParseDateSet(values ...string) DateSet {
	set, err := ParseDateSet(values...)
	if err != nil {
		panic(err)
	}
	return set
}

// Bounds returns the earliest and latest date. ok is false for an empty set.
func (s DateSet) Bounds() (minDate, maxDate time.Time, ok bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	minDate, maxDate = s[0], s[0]
	for _, d := range s[1:] {
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}
	return minDate, maxDate, true
}

// Strings returns the dates as sorted ISO strings
func (s DateSet) Strings() []string {
	out := make([]string, len(s))
	for i, d := range s {
		out[i] = d.Format(DateLayout)
	}
	sort.Strings(out)
	return out
}

// Interval is a closed date range. The zero value (both ends null) means the
// unit carried no temporal evidence.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an interval from two dates, swapping them if needed so
// that Start <= End
func NewInterval(start, end time.Time) Interval {
	if end.Before(start) {
		start, end = end, start
	}
	return Interval{Start: start, End: end}
}

// IsNull reports whether the interval is the "no evidence" sentinel
func (iv Interval) IsNull() bool {
	return iv.Start.IsZero() || iv.End.IsZero()
}

func (iv Interval) String() string {
	if iv.IsNull() {
		return "(null, null)"
	}
	return fmt.Sprintf("(%s, %s)", iv.Start.Format(DateLayout), iv.End.Format(DateLayout))
}

type intervalJSON struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// MarshalJSON renders the interval as ISO strings, or nulls for the sentinel
func (iv Interval) MarshalJSON() ([]byte, error) {
	var out intervalJSON
	if !iv.IsNull() {
		start := iv.Start.Format(DateLayout)
		end := iv.End.Format(DateLayout)
		out.Start, out.End = &start, &end
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the format written by MarshalJSON
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var in intervalJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Start == nil || in.End == nil {
		*iv = Interval{}
		return nil
	}
	bounds, err := ParseDateSet(*in.Start, *in.End)
	if err != nil {
		return fmt.Errorf("parse interval: %w", err)
	}
	*iv = NewInterval(bounds[0], bounds[1])
	return nil
}
