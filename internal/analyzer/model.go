package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhijeet6401/newslet/internal/domain"
	"github.com/abhijeet6401/newslet/internal/logger"
)

// Capability is the external model service. Implementations must be safe for
// sequential use from a single run.
type Capability interface {
	// Sentiment returns the top label (positive, negative or neutral) and its confidence.
	Sentiment(ctx context.Context, text string) (label string, score float64, err error)
	// Classify ranks labels against text, best first.
	Classify(ctx context.Context, text string, labels []string) ([]string, error)
	// Summarize produces an abstractive summary bounded by maxLen/minLen tokens.
	Summarize(ctx context.Context, text string, maxLen, minLen int) (string, error)
	// Ping reports whether the service is usable.
	Ping(ctx context.Context) error
	// Models names the backing model per function.
	Models() ModelNames
}

// ModelNames identifies the model behind each capability function.
type ModelNames struct {
	Sentiment  string `json:"sentiment"`
	Classifier string `json:"classifier"`
	Summarizer string `json:"summarizer"`
}

// Model is the capability-backed Enricher. A failed call falls back to the
// keyword rules for that call only.
type Model struct {
	capability Capability
	fallback   Heuristic
	log        logger.Logger
}

// NewModel wraps capability.
func NewModel(capability Capability, log logger.Logger) *Model {
	return &Model{capability: capability, log: logger.Ensure(log)}
}

func (m *Model) Name() string { return "model" }

func (m *Model) Sentiment(ctx context.Context, text string) float64 {
	if text == "" {
		return 0
	}
	label, score, err := m.capability.Sentiment(ctx, truncateRunes(text, sentimentInputChars))
	if err != nil {
		m.log.WarnObj("sentiment capability failed, using keywords", "sentiment_fallback", map[string]any{
			"error": err.Error(),
		})
		return m.fallback.Sentiment(ctx, text)
	}
	return signedSentiment(label, score)
}

func (m *Model) Category(ctx context.Context, title, content string) string {
	text := truncateRunes(title+". "+content, categoryInputChars)
	labels, err := m.capability.Classify(ctx, text, domain.Categories)
	if err == nil && len(labels) == 0 {
		err = fmt.Errorf("classifier returned no labels")
	}
	if err != nil {
		m.log.WarnObj("category capability failed, using keywords", "category_fallback", map[string]any{
			"error": err.Error(),
		})
		return m.fallback.Category(ctx, title, content)
	}
	if !domain.IsCategory(labels[0]) {
		return domain.CategoryGeneral
	}
	return labels[0]
}

func (m *Model) Summary(ctx context.Context, text string) string {
	if len(strings.Fields(text)) <= summaryMinWords {
		return m.fallback.Summary(ctx, text)
	}
	summary, err := m.capability.Summarize(ctx, truncateRunes(text, summaryInputChars), SummaryMaxLength, SummaryMinLength)
	if err == nil && strings.TrimSpace(summary) == "" {
		err = fmt.Errorf("summarizer returned empty text")
	}
	if err != nil {
		m.log.WarnObj("summary capability failed, truncating", "summary_fallback", map[string]any{
			"error": err.Error(),
		})
		return firstWords(text, summaryErrorWords)
	}
	return strings.TrimSpace(summary)
}

// signedSentiment maps a classifier label to +score, -score or 0.
func signedSentiment(label string, score float64) float64 {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "positive"):
		return clamp(score, -1, 1)
	case strings.Contains(l, "negative"):
		return clamp(-score, -1, 1)
	default:
		return 0
	}
}

// Select picks the Enricher for the process lifetime. A nil or unreachable
// capability yields the Heuristic.
func Select(ctx context.Context, capability Capability, log logger.Logger) Enricher {
	log = logger.Ensure(log)
	if capability == nil {
		log.InfoObj("no model capability configured, using keyword analysis", "enricher_selected", map[string]any{
			"enricher": "heuristic",
		})
		return NewHeuristic()
	}
	if err := capability.Ping(ctx); err != nil {
		log.WarnObj("model capability unavailable, using keyword analysis", "enricher_selected", map[string]any{
			"enricher": "heuristic",
			"error":    err.Error(),
		})
		return NewHeuristic()
	}
	log.InfoObj("model capability available", "enricher_selected", map[string]any{
		"enricher": "model",
		"models":   capability.Models(),
	})
	return NewModel(capability, log)
}
