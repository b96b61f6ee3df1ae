package analyzer

import (
	"context"
	"strings"

	"github.com/abhijeet6401/newslet/internal/domain"
)

// Heuristic is the keyword-based Enricher. It has no external dependencies and
// is also the per-call fallback of the Model enricher.
type Heuristic struct{}

// NewHeuristic returns the keyword enricher.
func NewHeuristic() Heuristic { return Heuristic{} }

func (Heuristic) Name() string { return "heuristic" }

// Sentiment is (pos-neg)/(pos+neg) over the listed words present in text,
// or 0 when none are.
func (Heuristic) Sentiment(_ context.Context, text string) float64 {
	return keywordSentiment(text)
}

// Category returns the first category whose keywords appear, else General.
func (Heuristic) Category(_ context.Context, title, content string) string {
	return keywordCategory(title, content)
}

// Summary returns text verbatim up to 150 words, else its first 150 words.
func (Heuristic) Summary(_ context.Context, text string) string {
	return firstWords(text, summaryFallbackWords)
}

func keywordSentiment(text string) float64 {
	lower := strings.ToLower(text)
	pos := countPresent(lower, positiveWords)
	neg := countPresent(lower, negativeWords)
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

func keywordCategory(title, content string) string {
	text := strings.ToLower(title + " " + content)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return domain.CategoryGeneral
}
