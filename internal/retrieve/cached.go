package retrieve

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ppiankov/befundlink/internal/align"
	"github.com/ppiankov/befundlink/internal/cache"
	"github.com/ppiankov/befundlink/internal/model"
)

// CachedRetriever memoizes another retriever's results. Entries are keyed
// by the retriever identity, the columns and the documents.
type CachedRetriever struct {
	inner    align.Retriever
	store    cache.Cache
	identity string
	ttl      time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedRetriever wraps inner. identity must change whenever the inner
// retriever would answer differently (provider, model, window).
func NewCachedRetriever(inner align.Retriever, store cache.Cache, identity string, ttl time.Duration) *CachedRetriever {
	return &CachedRetriever{
		inner:    inner,
		store:    store,
		identity: identity,
		ttl:      ttl,
	}
}

func (r *CachedRetriever) RetrieveForTable(ctx context.Context, columns []model.Column, docs []model.Document) (map[string][]model.Span, error) {
	key := requestKey(r.identity, columns, docs)

	var cached map[string][]model.Span
	if cache.GetJSON(r.store, key, &cached) {
		r.hits.Add(1)
		return cached, nil
	}
	r.misses.Add(1)

	result, err := r.inner.RetrieveForTable(ctx, columns, docs)
	if err != nil {
		return nil, err
	}
	// A failed write only costs a future cache miss
	_ = cache.SetJSON(r.store, key, result, r.ttl)

	return result, nil
}

// Stats returns cache hits and misses so far
func (r *CachedRetriever) Stats() (hits, misses int64) {
	return r.hits.Load(), r.misses.Load()
}

func requestKey(identity string, columns []model.Column, docs []model.Document) string {
	parts := []string{identity}
	for _, c := range columns {
		parts = append(parts, "col", c.Name)
		parts = append(parts, c.Keywords...)
	}
	for _, d := range docs {
		parts = append(parts, "doc", d.ID, d.Text)
	}
	return cache.Key("retrieval", parts...)
}
