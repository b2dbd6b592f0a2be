package retrieve

import (
	"context"
	"strings"

	"github.com/ppiankov/befundlink/internal/model"
)

// KeywordRetriever is an offline retriever. Every token starting with one of
// a column's keywords yields a span of Window tokens on either side.
// Columns without keywords match on their own name.
type KeywordRetriever struct {
	Window int
}

// NewKeywordRetriever creates a keyword retriever with the given context window
func NewKeywordRetriever(window int) *KeywordRetriever {
	if window < 0 {
		window = 0
	}
	return &KeywordRetriever{Window: window}
}

func (r *KeywordRetriever) RetrieveForTable(ctx context.Context, columns []model.Column, docs []model.Document) (map[string][]model.Span, error) {
	out := make(map[string][]model.Span)

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tokens := Tokenize(doc.Text)
		normalized := make([]string, len(tokens))
		for i, t := range tokens {
			normalized[i] = normalizeToken(t)
		}

		for _, col := range columns {
			keywords := columnKeywords(col)
			for i, tok := range normalized {
				if tok == "" || !matchesAny(tok, keywords) {
					continue
				}
				start := max(0, i-r.Window)
				end := min(len(tokens)-1, i+r.Window)
				out[col.Name] = append(out[col.Name], model.Span{
					BefundID: doc.ID,
					StartTok: start,
					EndTok:   end,
					Text:     spanText(tokens, start, end),
					Label:    col.Name,
				})
			}
		}
	}

	return out, nil
}

func columnKeywords(col model.Column) []string {
	source := col.Keywords
	if len(source) == 0 {
		source = []string{col.Name}
	}
	var keywords []string
	for _, k := range source {
		if n := normalizeToken(strings.TrimSpace(k)); n != "" {
			keywords = append(keywords, n)
		}
	}
	return keywords
}

func matchesAny(token string, keywords []string) bool {
	for _, k := range keywords {
		if strings.HasPrefix(token, k) {
			return true
		}
	}
	return false
}
