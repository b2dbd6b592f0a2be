package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/befundlink/internal/pipeline"
	"github.com/ppiankov/befundlink/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <root-dir>",
	Short: "Align every case below a directory in parallel",
	Long: `Batch aligns every sub-directory of <root-dir> that contains an
events.txt. Cases run concurrently; each case writes
<output-dir>/<case>/evidence.txt (and evidence.json).

Example:
  befundlink batch ./patients --table tumor.yaml
  befundlink batch ./patients --table tumor.yaml --concurrency 8 --output-dir ./evidence`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&tablePath, "table", "", "table specification (YAML)")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of cases processed concurrently")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./befundlink-evidence", "output directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the retrieval cache (force fresh retrieval)")
	batchCmd.Flags().StringVar(&provider, "provider", "keyword", "retrieval provider (keyword, openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "model", "gpt-4o-mini", "model name for LLM retrieval")
	_ = batchCmd.MarkFlagRequired("table")

	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("concurrency"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	root := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
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

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  befundlink batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Root:        %s\n", root)
	fmt.Fprintf(os.Stderr, "  Workers:     %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:  %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Retrieval:   %s\n", cfg.Retrieval.Provider)
	fmt.Fprintf(os.Stderr, "\n")

	p, retriever, err := buildPipeline(cfg, tablePath, logger)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	results, err := processor.ProcessDir(ctx, root)
	if err != nil {
		return fmt.Errorf("process dir: %w", err)
	}
	logCacheStats(logger, retriever)
	if len(results) == 0 {
		return fmt.Errorf("no cases found below %s (expected <case>/events.txt)", root)
	}

	renderer := pipeline.NewRenderer()
	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			logger.Error("case failed", "case", r.Case.Name, "error", r.Error)
			continue
		}

		caseDir := filepath.Join(outputDir, r.Case.Name)
		if err := renderer.RenderText(r.Report, filepath.Join(caseDir, "evidence.txt")); err != nil {
			failed++
			logger.Error("write evidence failed", "case", r.Case.Name, "error", err)
			continue
		}
		if cfg.Output.WriteJSON {
			if err := renderer.RenderJSON(r.Report, filepath.Join(caseDir, "evidence.json")); err != nil {
				logger.Warn("write report failed", "case", r.Case.Name, "error", err)
			}
		}
		succeeded++
		logger.Info("case done", "case", r.Case.Name, "events", len(r.Report.Events), "segments", r.Report.SegmentCount())
	}

	fmt.Fprintf(os.Stderr, "\n✓ %d cases aligned, %d failed\n", succeeded, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(results))
	}
	return nil
}
