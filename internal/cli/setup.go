package cli

import (
	"fmt"
	"log/slog"

	"github.com/ppiankov/befundlink/internal/align"
	"github.com/ppiankov/befundlink/internal/cache"
	"github.com/ppiankov/befundlink/internal/model"
	"github.com/ppiankov/befundlink/internal/pipeline"
	"github.com/ppiankov/befundlink/internal/retrieve"
	"github.com/ppiankov/befundlink/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// applyFlagOverrides copies explicitly set command flags into viper. align
// and batch share flag variables, so the flags are not bound directly.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("provider") {
		viper.Set("retrieval.provider", provider)
	}
	if flags.Changed("model") {
		viper.Set("retrieval.model", llmModel)
	}
	if flags.Changed("clamp-months") {
		viper.Set("alignment.clamp_months", clampMonths)
	}
}

// buildPipeline wires retriever, cache and limiter into a pipeline
func buildPipeline(cfg *model.Config, tablePath string, logger *slog.Logger) (*pipeline.Pipeline, align.Retriever, error) {
	table, err := model.LoadTableSpec(tablePath)
	if err != nil {
		return nil, nil, err
	}

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	retriever, err := retrieve.Build(cfg, limiter, store)
	if err != nil {
		return nil, nil, fmt.Errorf("build retriever: %w", err)
	}

	logger.Debug("pipeline ready",
		"table", table.Name,
		"columns", len(table.Columns),
		"retriever", retrieve.Identity(cfg.Retrieval),
		"cache", cfg.Cache.Enabled,
		"clamp_months", cfg.Alignment.ClampMonths)

	return pipeline.NewPipeline(cfg, table, retriever, logger), retriever, nil
}

// logCacheStats reports retrieval cache usage when the retriever is cached
func logCacheStats(logger *slog.Logger, r align.Retriever) {
	cached, ok := r.(*retrieve.CachedRetriever)
	if !ok {
		return
	}
	hits, misses := cached.Stats()
	logger.Info("retrieval cache", "hits", hits, "misses", misses)
}
