package align

import (
	"testing"

	"github.com/ppiankov/befundlink/internal/model"
)

func interval(start, end string) model.Interval {
	return model.Interval{Start: day(start), End: day(end)}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b model.Interval
		want bool
	}{
		{"nested", interval("2021-01-01", "2021-12-31"), interval("2021-03-01", "2021-04-01"), true},
		{"partial", interval("2021-01-01", "2021-01-10"), interval("2020-09-05", "2021-01-05"), true},
		{"touching end to start", interval("2021-01-05", "2021-01-10"), interval("2020-12-01", "2021-01-05"), true},
		{"single days equal", interval("2021-01-05", "2021-01-05"), interval("2021-01-05", "2021-01-05"), true},
		{"disjoint", interval("2021-01-01", "2021-01-10"), interval("2021-01-11", "2021-02-01"), false},
		{"null left", model.Interval{}, interval("2021-01-01", "2021-01-10"), false},
		{"null right", interval("2021-01-01", "2021-01-10"), model.Interval{}, false},
		{"both null", model.Interval{}, model.Interval{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %s, %s", tt.a, tt.b)
			}
		})
	}
}

func TestComputeMatrix_Shape(t *testing.T) {
	events := []model.Interval{
		interval("2021-01-01", "2021-01-10"),
		interval("2022-01-01", "2022-01-10"),
		{},
	}
	findings := []model.Interval{
		interval("2020-09-05", "2021-01-05"),
		interval("2021-12-01", "2022-03-01"),
	}

	m := ComputeMatrix(events, findings)
	if len(m) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(m))
	}
	want := [][]bool{
		{true, false},
		{false, true},
		{false, false},
	}
	for i := range want {
		if len(m[i]) != 2 {
			t.Fatalf("Expected 2 cells in row %d, got %d", i, len(m[i]))
		}
		for j := range want[i] {
			if m[i][j] != want[i][j] {
				t.Errorf("cell [%d][%d] = %v, want %v", i, j, m[i][j], want[i][j])
			}
		}
	}
	if m.Count() != 2 {
		t.Errorf("Expected 2 overlapping pairs, got %d", m.Count())
	}
	if got := m.Overlapping(1); len(got) != 1 || got[0] != 1 {
		t.Errorf("Expected event 1 to overlap finding 1, got %v", got)
	}
}

func TestComputeMatrix_Empty(t *testing.T) {
	m := ComputeMatrix(nil, []model.Interval{interval("2021-01-01", "2021-01-02")})
	if len(m) != 0 {
		t.Errorf("Expected no rows, got %d", len(m))
	}

	m = ComputeMatrix([]model.Interval{interval("2021-01-01", "2021-01-02")}, nil)
	if len(m) != 1 || len(m[0]) != 0 {
		t.Errorf("Expected one empty row, got %v", m)
	}
}

// An event interval of (null, null) is normally filtered out before
// alignment; if one slips through it matches nothing.
func TestComputeMatrix_NullEventMatchesNothing(t *testing.T) {
	findings := []model.Interval{
		interval("2021-01-01", "2021-01-02"),
		interval("1990-01-01", "2030-01-01"),
		{},
	}
	m := ComputeMatrix([]model.Interval{{}}, findings)
	for j, hit := range m[0] {
		if hit {
			t.Errorf("Expected no overlap for null event with finding %d", j)
		}
	}
}

func TestScenario_ClampedFindingOverlapsEvent(t *testing.T) {
	event := EventInterval(model.MustParseDateSet("2021-01-01", "2021-01-10"))
	finding := FindingInterval(model.MustParseDateSet("2020-01-01", "2021-01-05"))

	if finding.String() != "(2020-09-05, 2021-01-05)" {
		t.Fatalf("Unexpected finding interval %s", finding)
	}
	if !Overlaps(event, finding) {
		t.Error("Expected event and clamped finding to overlap")
	}
}
