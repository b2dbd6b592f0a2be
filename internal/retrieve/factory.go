// Package retrieve provides the collaborators that turn finding texts into
// labeled candidate spans.
package retrieve

import (
	"fmt"
	"strings"

	"github.com/ppiankov/befundlink/internal/align"
	"github.com/ppiankov/befundlink/internal/cache"
	"github.com/ppiankov/befundlink/internal/model"
	"github.com/ppiankov/befundlink/internal/worker"
)

// DefaultOllamaURL is the OpenAI-compatible endpoint of a local Ollama
const DefaultOllamaURL = "http://localhost:11434/v1"

// NewRetriever creates the base retriever named by cfg.Provider
func NewRetriever(cfg model.RetrievalConfig) (align.Retriever, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "keyword":
		return NewKeywordRetriever(cfg.Window), nil

	case "openai":
		return NewOpenAIRetriever(cfg)

	case "ollama":
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultOllamaURL
		}
		if cfg.APIKey == "" {
			cfg.APIKey = "ollama"
		}
		return NewOpenAIRetriever(cfg)

	case "anthropic", "claude":
		return NewAnthropicRetriever(cfg)

	default:
		return nil, fmt.Errorf("unknown retrieval provider: %s (supported: keyword, openai, anthropic, ollama)", cfg.Provider)
	}
}

// Identity describes what a cached answer depends on
func Identity(cfg model.RetrievalConfig) string {
	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case "", "keyword":
		return fmt.Sprintf("keyword/window=%d", cfg.Window)
	default:
		return provider + "/" + cfg.Model
	}
}

// Build assembles the full retriever stack from configuration: the base
// retriever, rate limiting for remote providers and the result cache.
// limiter and store may be nil.
func Build(cfg *model.Config, limiter *worker.Limiter, store cache.Cache) (align.Retriever, error) {
	base, err := NewRetriever(cfg.Retrieval)
	if err != nil {
		return nil, err
	}

	r := base
	if _, local := base.(*KeywordRetriever); !local && limiter != nil {
		r = NewLimitedRetriever(r, limiter, strings.ToLower(cfg.Retrieval.Provider))
	}
	if cfg.Cache.Enabled && store != nil {
		r = NewCachedRetriever(r, store, Identity(cfg.Retrieval), cfg.Cache.DiskTTL)
	}
	return r, nil
}
