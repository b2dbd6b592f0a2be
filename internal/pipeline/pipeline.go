package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/befundlink/internal/align"
	"github.com/ppiankov/befundlink/internal/ingest"
	"github.com/ppiankov/befundlink/internal/model"
)

// Case is one events report together with its findings directory
type Case struct {
	Name        string
	EventsPath  string
	FindingsDir string
}

// CaseFromDir builds the conventional case layout: <dir>/events.txt and <dir>/befunde/
func CaseFromDir(dir string) Case {
	return Case{
		Name:        filepath.Base(filepath.Clean(dir)),
		EventsPath:  filepath.Join(dir, "events.txt"),
		FindingsDir: filepath.Join(dir, "befunde"),
	}
}

// Pipeline aligns events with findings and consolidates their evidence
type Pipeline struct {
	aggregator  *align.Aggregator
	table       model.TableSpec
	clampMonths int
	logger      *slog.Logger
	now         func() time.Time
	newRunID    func() string
}

// NewPipeline creates a pipeline collecting evidence for table through
// retriever. A zero ClampMonths (an unset config) uses align.DefaultClampMonths.
func NewPipeline(cfg *model.Config, table model.TableSpec, retriever align.Retriever, logger *slog.Logger) *Pipeline {
	clamp := cfg.Alignment.ClampMonths
	if clamp <= 0 {
		clamp = align.DefaultClampMonths
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Pipeline{
		aggregator:  align.NewAggregator(retriever, table),
		table:       table,
		clampMonths: clamp,
		logger:      logger,
		now:         time.Now,
		newRunID:    uuid.NewString,
	}
}

// RunCase loads a case from disk and aligns it
func (p *Pipeline) RunCase(ctx context.Context, c Case) (*model.EvidenceReport, error) {
	events, err := ingest.LoadEvents(c.EventsPath)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	findings, err := ingest.LoadFindings(c.FindingsDir)
	if err != nil {
		return nil, fmt.Errorf("load findings: %w", err)
	}

	p.logger.Debug("case loaded", "case", c.Name, "events", len(events), "findings", len(findings))
	return p.Align(ctx, c.Name, events, findings)
}

// Align runs the alignment over already loaded events and findings.
// Events without dates are recorded as skipped; events without overlapping
// findings are kept with empty evidence.
func (p *Pipeline) Align(ctx context.Context, name string, events []model.Event, findings []model.Finding) (*model.EvidenceReport, error) {
	report := &model.EvidenceReport{
		RunID:       p.newRunID(),
		Case:        name,
		Table:       p.table.Name,
		GeneratedAt: p.now().UTC(),
		Findings:    make([]model.FindingInfo, len(findings)),
		Events:      []model.EventEvidence{},
	}

	dated, undated := ingest.SplitDated(events)
	for _, ev := range undated {
		p.logger.Info("skipping event without dates", "case", name, "event", preview(ev.Text))
		report.Skipped = append(report.Skipped, model.SkippedEvent{Text: ev.Text, Reason: "no dates"})
	}

	findingIntervals := make([]model.Interval, len(findings))
	for j, f := range findings {
		findingIntervals[j] = align.ClampedInterval(f.Dates, p.clampMonths)
		report.Findings[j] = model.FindingInfo{
			Name:     f.Name,
			Dates:    f.Dates.Strings(),
			Interval: findingIntervals[j],
		}
		if findingIntervals[j].IsNull() {
			p.logger.Debug("finding without dates", "case", name, "finding", f.Name)
		}
	}

	eventIntervals := make([]model.Interval, len(dated))
	for i, ev := range dated {
		eventIntervals[i] = align.EventInterval(ev.Dates)
	}

	matrix := align.ComputeMatrix(eventIntervals, findingIntervals)
	p.logger.Debug("overlap matrix computed", "case", name, "events", len(dated), "findings", len(findings), "pairs", matrix.Count())

	collected, err := p.aggregator.Aggregate(ctx, matrix, findings)
	if err != nil {
		return nil, err
	}

	for i, ev := range dated {
		spans := collected[i]
		evidence := model.EventEvidence{
			Event:    ev,
			Dates:    ev.Dates.Strings(),
			Interval: eventIntervals[i],
			Findings: []model.FindingEvidence{},
		}

		if len(spans.Selected) == 0 {
			p.logger.Info("no overlapping findings for event", "case", name, "event", preview(ev.Text), "interval", eventIntervals[i].String())
			report.Events = append(report.Events, evidence)
			continue
		}

		consolidated, err := spans.Consolidate(findings)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		if consolidated != nil {
			evidence.Findings = consolidated
		}
		report.Events = append(report.Events, evidence)
	}

	return report, nil
}

// preview shortens event text for log lines
func preview(text string) string {
	const limit = 60
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "…"
}
