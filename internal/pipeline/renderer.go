package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/befundlink/internal/model"
)

// Renderer writes evidence reports
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// FormatText renders the plain-text evidence block consumed by the prompt
// layer. Labels are sorted so the output is stable.
func (r *Renderer) FormatText(report *model.EvidenceReport) string {
	var sb strings.Builder

	for i, ev := range report.Events {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Event: %s\n", ev.Event.Text)
		if !ev.HasEvidence() {
			continue
		}

		sb.WriteString("Weitere Informationen aus Befunden:\n")
		segments := ev.Segments()
		for _, id := range befundOrder(segments) {
			if len(segments[id]) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "-Befund ID: %s\n", id)
			for _, seg := range segments[id] {
				fmt.Fprintf(&sb, "    Text: %s, evtl relevant für: %s\n", seg.Text, strings.Join(seg.Labels.Sorted(), ", "))
			}
		}
	}

	return sb.String()
}

// befundOrder sorts befund ids numerically ("2" before "10")
func befundOrder(segments map[string][]model.MergedSegment) []string {
	ids := make([]string, 0, len(segments))
	for id := range segments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids
}

// RenderText writes the evidence block to path
func (r *Renderer) RenderText(report *model.EvidenceReport, path string) error {
	return writeFile(path, []byte(r.FormatText(report)))
}

// RenderJSON writes the full report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.EvidenceReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderSummary prints a short overview of the report
func (r *Renderer) RenderSummary(w io.Writer, report *model.EvidenceReport) {
	withEvidence := 0
	for _, ev := range report.Events {
		if ev.HasEvidence() {
			withEvidence++
		}
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Case: %s\n", report.Case)
	fmt.Fprintf(w, "  Run:  %s\n", report.RunID)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Findings:              %d\n", len(report.Findings))
	fmt.Fprintf(w, "  Events aligned:        %d\n", len(report.Events))
	fmt.Fprintf(w, "  Events with evidence:  %d\n", withEvidence)
	fmt.Fprintf(w, "  Events skipped:        %d\n", len(report.Skipped))
	fmt.Fprintf(w, "  Merged segments:       %d\n", report.SegmentCount())
	fmt.Fprintf(w, "\n")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
