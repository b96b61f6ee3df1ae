package publishers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abhijeet6401/newslet/internal/domain"
	"github.com/abhijeet6401/newslet/internal/logger"
)

// Event types emitted by the pipeline.
const (
	EventArticleStored = "article.stored"
	EventRunFinished   = "run.finished"
)

func knownEventType(typ string) bool {
	return typ == EventArticleStored || typ == EventRunFinished
}

// Logger is the structured logger publishers write to.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger { return logger.Ensure(log) }

// RunSummary describes a finished pipeline run.
type RunSummary struct {
	Phase        string   `json:"phase"`
	Sources      []string `json:"sources"`
	ArticleCount int      `json:"article_count"`
	Error        string   `json:"error,omitempty"`
}

// Event is the payload delivered to every publisher.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	RunID      string          `json:"run_id"`
	Source     string          `json:"source,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Article    *domain.Article `json:"article,omitempty"`
	Run        *RunSummary     `json:"run,omitempty"`
}

// NewArticleEvent wraps a stored article.
func NewArticleEvent(runID string, art domain.Article, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       EventArticleStored,
		RunID:      runID,
		Source:     art.Source,
		OccurredAt: at.UTC(),
		Article:    &art,
	}
}

// NewRunEvent reports the outcome of a run.
func NewRunEvent(runID string, summary RunSummary, at time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       EventRunFinished,
		RunID:      runID,
		OccurredAt: at.UTC(),
		Run:        &summary,
	}
}

// attributes are copied onto queue messages for subscription filtering.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{"event_type": e.Type, "run_id": e.RunID}
	if e.Source != "" {
		attrs["source"] = e.Source
	}
	return attrs
}

// Publisher delivers events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
