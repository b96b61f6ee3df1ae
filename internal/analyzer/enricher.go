// Package analyzer scores and labels articles. Sentiment, category and summary
// come from an Enricher chosen once at construction; importance is rule based.
package analyzer

import (
	"context"
	"strings"
	"unicode/utf8"
)

const (
	sentimentInputChars = 512
	categoryInputChars  = 512
	summaryInputChars   = 1000

	summaryMinWords      = 50
	summaryFallbackWords = 150
	summaryErrorWords    = 100

	// SummaryMaxLength and SummaryMinLength bound model summaries, in tokens.
	SummaryMaxLength = 150
	SummaryMinLength = 50

	ellipsis = "..."
)

// Enricher produces the model-dependent enrichment fields.
type Enricher interface {
	Name() string
	Sentiment(ctx context.Context, text string) float64
	Category(ctx context.Context, title, content string) string
	Summary(ctx context.Context, text string) string
}

// truncateRunes keeps at most n characters of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// firstWords returns s when it has at most n words, else its first n words
// followed by an ellipsis.
func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		return strings.Join(words[:n], " ") + ellipsis
	}
	return s
}

// countPresent counts how many of words occur in text as substrings.
func countPresent(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
