package retrieve

import (
	"strings"
	"unicode"
)

// Tokenize splits text into whitespace-delimited tokens. Token indexes are
// the coordinates of Span.StartTok and Span.EndTok (both inclusive).
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// normalizeToken lowercases a token and strips surrounding punctuation
func normalizeToken(tok string) string {
	return strings.ToLower(strings.TrimFunc(tok, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}))
}

// spanText joins the tokens of the inclusive range [start, end]
func spanText(tokens []string, start, end int) string {
	return strings.Join(tokens[start:end+1], " ")
}

// LocateExcerpt finds the first occurrence of excerpt in tokens, comparing
// normalized tokens. It returns the inclusive token range.
func LocateExcerpt(tokens []string, excerpt string) (start, end int, ok bool) {
	var needle []string
	for _, t := range Tokenize(excerpt) {
		if n := normalizeToken(t); n != "" {
			needle = append(needle, n)
		}
	}
	if len(needle) == 0 || len(needle) > len(tokens) {
		return 0, 0, false
	}

	hay := make([]string, len(tokens))
	for i, t := range tokens {
		hay[i] = normalizeToken(t)
	}

	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for k, n := range needle {
			if hay[i+k] != n {
				match = false
				break
			}
		}
		if match {
			return i, i + len(needle) - 1, true
		}
	}
	return 0, 0, false
}
