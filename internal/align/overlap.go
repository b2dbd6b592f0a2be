package align

import "github.com/ppiankov/befundlink/internal/model"

// Matrix is indexed [event][finding]; a cell is true when the two intervals
// intersect
type Matrix [][]bool

// Overlaps is the closed-interval intersection test. Touching boundaries
// count. A null interval on either side never overlaps.
func Overlaps(a, b model.Interval) bool {
	if a.IsNull() || b.IsNull() {
		return false
	}
	return !a.Start.After(b.End) && !b.Start.After(a.End)
}

// ComputeMatrix evaluates Overlaps for every (event, finding) pair. The result
// always has len(events) rows of len(findings) cells.
func ComputeMatrix(events, findings []model.Interval) Matrix {
	m := make(Matrix, len(events))
	for i, ev := range events {
		row := make([]bool, len(findings))
		for j, f := range findings {
			row[j] = Overlaps(ev, f)
		}
		m[i] = row
	}
	return m
}

// Overlapping returns, in ascending order, the indexes of the findings that
// overlap event i
func (m Matrix) Overlapping(i int) []int {
	var idx []int
	for j, hit := range m[i] {
		if hit {
			idx = append(idx, j)
		}
	}
	return idx
}

// Count returns the number of overlapping pairs
func (m Matrix) Count() int {
	n := 0
	for _, row := range m {
		for _, hit := range row {
			if hit {
				n++
			}
		}
	}
	return n
}
