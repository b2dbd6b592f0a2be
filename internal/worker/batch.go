package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ppiankov/befundlink/internal/model"
	"github.com/ppiankov/befundlink/internal/pipeline"
)

// CaseRunner aligns one case
type CaseRunner interface {
	RunCase(ctx context.Context, c pipeline.Case) (*model.EvidenceReport, error)
}

// CaseJob runs one case through a CaseRunner
type CaseJob struct {
	Case   pipeline.Case
	Runner CaseRunner
}

// Execute runs the case
func (j *CaseJob) Execute(ctx context.Context) Result {
	report, err := j.Runner.RunCase(ctx, j.Case)
	return &CaseResult{
		Case:   j.Case,
		Report: report,
		Error:  err,
	}
}

// CaseResult is the outcome of one case
type CaseResult struct {
	Case   pipeline.Case
	Report *model.EvidenceReport
	Error  error
}

func (r *CaseResult) GetError() error {
	return r.Error
}

// BatchProcessor aligns many cases concurrently. Each case itself runs
// sequentially.
type BatchProcessor struct {
	runner      CaseRunner
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(runner CaseRunner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessCases runs the cases and returns one result per case, in input order
func (b *BatchProcessor) ProcessCases(ctx context.Context, cases []pipeline.Case) []*CaseResult {
	jobs := make([]Job, len(cases))
	for i, c := range cases {
		jobs[i] = &CaseJob{Case: c, Runner: b.runner}
	}

	results := NewPool(b.concurrency).Run(ctx, jobs)

	out := make([]*CaseResult, len(results))
	for i, r := range results {
		if cr, ok := r.(*CaseResult); ok {
			out[i] = cr
			continue
		}
		out[i] = &CaseResult{Case: cases[i], Error: r.GetError()}
	}
	return out
}

// ProcessDir discovers the cases below root and runs them
func (b *BatchProcessor) ProcessDir(ctx context.Context, root string) ([]*CaseResult, error) {
	cases, err := DiscoverCases(root)
	if err != nil {
		return nil, fmt.Errorf("discover cases: %w", err)
	}
	return b.ProcessCases(ctx, cases), nil
}

// DiscoverCases returns every direct sub-directory of root that holds an
// events.txt, sorted by name
func DiscoverCases(root string) ([]pipeline.Case, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "events.txt")); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	cases := make([]pipeline.Case, len(names))
	for i, name := range names {
		cases[i] = pipeline.CaseFromDir(filepath.Join(root, name))
	}
	return cases, nil
}
