package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/befundlink/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	tablePath   string
	eventsPath  string
	befundeDir  string
	outText     string
	outJSON     string
	timeout     time.Duration
	noCache     bool
	provider    string
	llmModel    string
	clampMonths int
)

// alignCmd represents the align command
var alignCmd = &cobra.Command{
	Use:   "align <case-dir>",
	Short: "Align one case and write its evidence block",
	Long: `Align reads a case directory:
- <case-dir>/events.txt   the extracted events report (one event per paragraph)
- <case-dir>/befunde/     the findings (.txt, .md, .html)

For every dated event it selects the temporally overlapping findings,
retrieves labeled excerpts for the table's columns and merges overlapping
excerpts into consolidated segments.

Example:
  befundlink align ./patient-1 --table tables/tumor.yaml
  befundlink align ./patient-1 --table tumor.yaml --out evidence.txt --json evidence.json
  befundlink align ./patient-1 --table tumor.yaml --provider openai --model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAlign,
}

func init() {
	rootCmd.AddCommand(alignCmd)

	alignCmd.Flags().StringVar(&tablePath, "table", "", "table specification (YAML)")
	alignCmd.Flags().StringVar(&eventsPath, "events", "", "events report (default: <case-dir>/events.txt)")
	alignCmd.Flags().StringVar(&befundeDir, "befunde", "", "findings directory (default: <case-dir>/befunde)")
	alignCmd.Flags().StringVar(&outText, "out", "", "output evidence text path (default: <case-dir>/evidence.txt)")
	alignCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: <case-dir>/evidence.json when output.write_json is set)")
	alignCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall timeout")
	alignCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the retrieval cache (force fresh retrieval)")
	alignCmd.Flags().StringVar(&provider, "provider", "keyword", "retrieval provider (keyword, openai, anthropic, ollama)")
	alignCmd.Flags().StringVar(&llmModel, "model", "gpt-4o-mini", "model name for LLM retrieval")
	alignCmd.Flags().IntVar(&clampMonths, "clamp-months", 4, "how far a finding's interval may reach back from its latest date")
	_ = alignCmd.MarkFlagRequired("table")
}

func runAlign(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	applyFlagOverrides(cmd)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	logger := newLogger(os.Stderr, cfg.Output.Verbose)

	c := pipeline.CaseFromDir(dir)
	if eventsPath != "" {
		c.EventsPath = eventsPath
	}
	if befundeDir != "" {
		c.FindingsDir = befundeDir
	}

	p, retriever, err := buildPipeline(cfg, tablePath, logger)
	if err != nil {
		return err
	}

	logger.Debug("aligning case", "case", c.Name, "events", c.EventsPath, "befunde", c.FindingsDir)
	report, err := p.RunCase(ctx, c)
	if err != nil {
		return fmt.Errorf("align failed: %w", err)
	}
	logCacheStats(logger, retriever)

	textPath := outText
	if textPath == "" {
		textPath = filepath.Join(dir, "evidence.txt")
	}
	jsonPath := outJSON
	if jsonPath == "" && cfg.Output.WriteJSON {
		jsonPath = filepath.Join(dir, "evidence.json")
	}

	renderer := pipeline.NewRenderer()
	if err := renderer.RenderText(report, textPath); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	logger.Info("wrote evidence", "path", textPath)

	if jsonPath != "" {
		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		logger.Info("wrote report", "path", jsonPath)
	}

	renderer.RenderSummary(os.Stderr, report)
	return nil
}
