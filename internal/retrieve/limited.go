package retrieve

import (
	"context"
	"fmt"

	"github.com/ppiankov/befundlink/internal/align"
	"github.com/ppiankov/befundlink/internal/model"
	"github.com/ppiankov/befundlink/internal/worker"
)

// LimitedRetriever waits on a shared limiter before every call
type LimitedRetriever struct {
	inner   align.Retriever
	limiter *worker.Limiter
	key     string
}

// NewLimitedRetriever wraps inner; calls are limited per key
func NewLimitedRetriever(inner align.Retriever, limiter *worker.Limiter, key string) *LimitedRetriever {
	return &LimitedRetriever{inner: inner, limiter: limiter, key: key}
}

func (r *LimitedRetriever) RetrieveForTable(ctx context.Context, columns []model.Column, docs []model.Document) (map[string][]model.Span, error) {
	if err := r.limiter.Wait(ctx, r.key); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.inner.RetrieveForTable(ctx, columns, docs)
}
