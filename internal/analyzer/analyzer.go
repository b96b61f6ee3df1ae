package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhijeet6401/newslet/internal/domain"
	"github.com/abhijeet6401/newslet/internal/logger"
)

const defaultSummaryChars = 200

// Analyzer fills the enrichment fields of articles.
type Analyzer struct {
	enricher Enricher
	log      logger.Logger
}

// New returns an Analyzer using enricher, or the Heuristic when nil.
func New(enricher Enricher, log logger.Logger) *Analyzer {
	if enricher == nil {
		enricher = NewHeuristic()
	}
	return &Analyzer{enricher: enricher, log: logger.Ensure(log)}
}

// Info describes the active implementation of each function.
func (a *Analyzer) Info() map[string]string {
	info := map[string]string{
		"enricher":   a.enricher.Name(),
		"sentiment":  "Keyword-based fallback",
		"summarizer": "Text truncation fallback",
		"classifier": "Keyword-based fallback",
		"importance": "Rule-based",
	}
	if m, ok := a.enricher.(*Model); ok {
		names := m.capability.Models()
		info["sentiment"] = names.Sentiment
		info["summarizer"] = names.Summarizer
		info["classifier"] = names.Classifier
	}
	return info
}

// Analyze returns art with sentiment, importance, category and summary set.
// It never fails: an unusable article comes back with default enrichment.
func (a *Analyzer) Analyze(ctx context.Context, art domain.Article) (out domain.Article) {
	defer func() {
		if r := recover(); r != nil {
			a.log.ErrorObj("article analysis panicked", "analyze_error", map[string]any{
				"url":   art.URL,
				"error": fmt.Sprint(r),
			})
			out = fallbackArticle(art)
		}
	}()

	if strings.TrimSpace(art.Title) == "" {
		a.log.WarnObj("article has no title, using defaults", "analyze_error", map[string]any{
			"url": art.URL,
		})
		return fallbackArticle(art)
	}

	fullText := strings.TrimSpace(art.Title + ". " + art.Content)

	art.SentimentScore = clamp(a.enricher.Sentiment(ctx, fullText), -1, 1)
	art.ImportanceScore = ImportanceScore(art.Title, art.Content)
	art.Category = a.enricher.Category(ctx, art.Title, art.Content)
	if !domain.IsCategory(art.Category) {
		art.Category = domain.CategoryGeneral
	}
	art.Summary = a.enricher.Summary(ctx, fullText)
	return art
}

// AnalyzeAll analyzes articles one at a time, in order.
func (a *Analyzer) AnalyzeAll(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	for i, art := range articles {
		a.log.InfoObj("analyzing article", "analyze_article", map[string]any{
			"index": i + 1,
			"total": len(articles),
			"title": truncateRunes(art.Title, 50),
		})
		out = append(out, a.Analyze(ctx, art))
	}
	return out
}

// fallbackArticle applies default enrichment with the clipped content as summary.
func fallbackArticle(art domain.Article) domain.Article {
	art = art.WithDefaults()
	art.Summary = truncateRunes(art.Content, defaultSummaryChars) + ellipsis
	return art
}
