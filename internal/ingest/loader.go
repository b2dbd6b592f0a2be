// Package ingest reads events reports and finding documents from disk and
// attaches the dates mentioned in them.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/befundlink/internal/model"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// findingExtensions lists the file types read as findings
var findingExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
}

// ParseEvents splits an events report into paragraphs, one event each
func ParseEvents(report string) []model.Event {
	report = strings.ReplaceAll(report, "\r\n", "\n")

	var events []model.Event
	for _, p := range paragraphBreak.Split(report, -1) {
		text := strings.TrimSpace(p)
		if text == "" {
			continue
		}
		events = append(events, model.Event{Text: text, Dates: FindDates(text)})
	}
	return events
}

// LoadEvents reads an events report file
func LoadEvents(path string) ([]model.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return ParseEvents(string(data)), nil
}

// SplitDated separates events with at least one date from those without
func SplitDated(events []model.Event) (dated, undated []model.Event) {
	for _, ev := range events {
		if len(ev.Dates) == 0 {
			undated = append(undated, ev)
			continue
		}
		dated = append(dated, ev)
	}
	return dated, undated
}

// LoadFindings reads every supported document of dir in lexical file order.
// HTML documents are reduced to their visible text.
func LoadFindings(dir string) ([]model.Finding, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read findings dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if findingExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	findings := make([]model.Finding, 0, len(names))
	for _, name := range names {
		f, err := LoadFinding(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// LoadFinding reads one finding document
func LoadFinding(path string) (model.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Finding{}, fmt.Errorf("read finding: %w", err)
	}

	text := string(data)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		text, err = HTMLText(text)
		if err != nil {
			return model.Finding{}, fmt.Errorf("parse finding %s: %w", filepath.Base(path), err)
		}
	}
	text = strings.TrimSpace(text)

	return model.Finding{
		Name:  filepath.Base(path),
		Text:  text,
		Dates: FindDates(text),
	}, nil
}
