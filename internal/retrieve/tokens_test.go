package retrieve

import "testing"

func TestLocateExcerpt(t *testing.T) {
	tokens := Tokenize("Histologie: Adenokarzinom des Kolons, G2. Keine Lymphknoten befallen.")

	tests := []struct {
		name      string
		excerpt   string
		wantStart int
		wantEnd   int
		wantOK    bool
	}{
		{"exact", "Adenokarzinom des Kolons", 1, 3, true},
		{"case and punctuation insensitive", "adenokarzinom des kolons g2", 1, 4, true},
		{"single token", "Keine", 5, 5, true},
		{"not verbatim", "Karzinom des Magens", 0, 0, false},
		{"empty", "  ...  ", 0, 0, false},
		{"longer than document", "a b c d e f g h i j", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := LocateExcerpt(tokens, tt.excerpt)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && (start != tt.wantStart || end != tt.wantEnd) {
				t.Errorf("Expected [%d,%d], got [%d,%d]", tt.wantStart, tt.wantEnd, start, end)
			}
		})
	}
}
