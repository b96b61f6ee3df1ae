// Package runner drives one pipeline run at a time: collect, extract,
// optionally fetch bodies, analyze, save, snapshot and publish.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abhijeet6401/newslet/internal/domain"
	"github.com/abhijeet6401/newslet/internal/extractor"
	"github.com/abhijeet6401/newslet/internal/logger"
	"github.com/abhijeet6401/newslet/internal/snapshot"
	"github.com/abhijeet6401/newslet/pkg/providers"
	"github.com/abhijeet6401/newslet/pkg/publishers"
)

// ErrAlreadyRunning is returned by Start while another run is active.
var ErrAlreadyRunning = errors.New("scraping is already in progress")

// Collector returns the raw entries of one source. It never fails.
type Collector interface {
	Collect(ctx context.Context, sourceID string, daysBack int) []domain.RawEntry
	Provider(sourceID string) (providers.Provider, bool)
}

// ContentFetcher fills in empty article bodies.
type ContentFetcher interface {
	Enrich(ctx context.Context, cfg providers.Provider, articles []domain.Article) []domain.Article
}

// Analyzer enriches articles in order.
type Analyzer interface {
	AnalyzeAll(ctx context.Context, articles []domain.Article) []domain.Article
}

// Store persists analyzed articles.
type Store interface {
	SaveAll(ctx context.Context, articles []domain.Article) int
	Get(ctx context.Context, url string) (domain.Article, error)
}

// EventPublisher receives pipeline events.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) error
	Len() int
}

// Request selects what a run scrapes.
type Request struct {
	Sources  []string `json:"sources"`
	DaysBack int      `json:"days_back"`
}

// Deps wires a Runner. Content, Events, History and SnapshotDir are optional.
type Deps struct {
	Collector   Collector
	Content     ContentFetcher
	Analyzer    Analyzer
	Store       Store
	Events      EventPublisher
	History     *History
	SnapshotDir string
	SourceDelay time.Duration
	Log         logger.Logger
}

// Handle tracks one run.
type Handle struct {
	id     string
	status atomic.Pointer[Status]
	done   chan struct{}
}

func (h *Handle) ID() string { return h.id }

// Status returns the latest snapshot of the run.
func (h *Handle) Status() Status { return *h.status.Load() }

// Done is closed when the run finishes.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the run finishes or ctx ends.
func (h *Handle) Wait(ctx context.Context) (Status, error) {
	select {
	case <-h.done:
		return h.Status(), nil
	case <-ctx.Done():
		return h.Status(), ctx.Err()
	}
}

func (h *Handle) set(st Status) { h.status.Store(&st) }

// Runner starts runs and remembers the most recent one.
type Runner struct {
	deps    Deps
	log     logger.Logger
	active  atomic.Bool
	current atomic.Pointer[Handle]
	now     func() time.Time
	sleep   func(context.Context, time.Duration)
}

// New validates deps and returns a Runner.
func New(deps Deps) (*Runner, error) {
	if deps.Collector == nil || deps.Analyzer == nil || deps.Store == nil {
		return nil, errors.New("runner requires a collector, analyzer and store")
	}
	return &Runner{
		deps:  deps,
		log:   logger.Ensure(deps.Log),
		now:   time.Now,
		sleep: sleepCtx,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Start launches a run in the background. The run ignores cancellation of
// ctx; only outbound calls carry their own timeouts.
func (r *Runner) Start(ctx context.Context, req Request) (*Handle, error) {
	if len(req.Sources) == 0 {
		return nil, errors.New("at least one source is required")
	}
	if req.DaysBack < 0 {
		return nil, fmt.Errorf("days_back must not be negative, got %d", req.DaysBack)
	}
	if !r.active.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}

	started := r.now()
	h := &Handle{id: uuid.NewString(), done: make(chan struct{})}
	h.set(Status{
		RunID:     h.id,
		Phase:     PhaseRunning,
		Message:   "Starting scraper...",
		Sources:   req.Sources,
		DaysBack:  req.DaysBack,
		StartedAt: &started,
	})
	r.current.Store(h)

	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(h.done)
		defer r.active.Store(false)
		r.run(runCtx, h, req)
	}()
	return h, nil
}

// Status reports the current or most recent run, falling back to history.
func (r *Runner) Status() Status {
	if h := r.current.Load(); h != nil {
		return h.Status()
	}
	if r.deps.History != nil {
		if st, ok, err := r.deps.History.Latest(); err == nil && ok {
			return st
		}
	}
	return IdleStatus()
}

// Runs lists persisted runs, newest first.
func (r *Runner) Runs(limit int) ([]Status, error) {
	if r.deps.History == nil {
		return nil, nil
	}
	return r.deps.History.List(limit)
}

func (r *Runner) run(ctx context.Context, h *Handle, req Request) {
	st := h.Status()
	log := r.log.With("run_id", h.id)

	defer func() {
		if p := recover(); p != nil {
			st = r.fail(h, st, fmt.Errorf("run panicked: %v", p))
			log.ErrorObj("run failed", "run_error", map[string]any{"error": st.Error})
		}
		r.finish(ctx, st)
	}()

	log.InfoObj("run started", "run_start", map[string]any{
		"sources":   req.Sources,
		"days_back": req.DaysBack,
	})

	articles := r.scrape(ctx, h, &st, req, log)

	if r.deps.SnapshotDir != "" {
		name, err := snapshot.Write(r.deps.SnapshotDir, articles, r.now())
		if err != nil {
			log.WarnObj("snapshot not written", "snapshot_error", map[string]any{"error": err.Error()})
		} else {
			st.Snapshot = name
		}
	}

	st = st.with(ProgressAnalyzing, "Analyzing articles...")
	h.set(st)
	analyzed := r.deps.Analyzer.AnalyzeAll(ctx, articles)

	st = st.with(ProgressSaving, "Saving to database...")
	h.set(st)
	saved := r.deps.Store.SaveAll(ctx, analyzed)
	r.publishStored(ctx, h.id, analyzed, log)

	finished := r.now()
	st.Phase = PhaseCompleted
	st.ArticleCount = len(analyzed)
	st.SavedCount = saved
	st.FinishedAt = &finished
	st = st.with(ProgressDone, fmt.Sprintf("Successfully processed %d articles", len(analyzed)))
	h.set(st)

	log.InfoObj("run completed", "run_done", map[string]any{
		"articles": len(analyzed),
		"saved":    saved,
		"duration": finished.Sub(*st.StartedAt).String(),
	})
}

// scrape collects every source in order, pausing between sources, and returns
// normalized articles deduplicated by URL.
func (r *Runner) scrape(ctx context.Context, h *Handle, st *Status, req Request, log logger.Logger) []domain.Article {
	var out []domain.Article
	seen := map[string]bool{}
	total := len(req.Sources)

	for i, source := range req.Sources {
		if i > 0 {
			r.sleep(ctx, r.deps.SourceDelay)
		}
		*st = st.with(i*ProgressScrapeEnd/total, fmt.Sprintf("Scraping %s...", source))
		h.set(*st)

		scrapedAt := r.now().UTC()
		var batch []domain.Article
		for _, entry := range r.deps.Collector.Collect(ctx, source, req.DaysBack) {
			art, err := extractor.Normalize(entry, scrapedAt)
			if err != nil {
				log.DebugObj("entry skipped", "extract_skip", map[string]any{
					"source": source,
					"link":   entry.Link,
					"error":  err.Error(),
				})
				continue
			}
			if seen[art.URL] {
				continue
			}
			seen[art.URL] = true
			batch = append(batch, art)
		}

		if r.deps.Content != nil && len(batch) > 0 {
			if cfg, ok := r.deps.Collector.Provider(source); ok {
				batch = r.deps.Content.Enrich(ctx, cfg, batch)
			}
		}
		out = append(out, batch...)
	}

	*st = st.with(ProgressScrapeEnd, fmt.Sprintf("Scraped %d articles", len(out)))
	h.set(*st)
	return out
}

// publishStored emits one event per article as it reads back from the store,
// skipping rows that were not saved.
func (r *Runner) publishStored(ctx context.Context, runID string, articles []domain.Article, log logger.Logger) {
	if r.deps.Events == nil || r.deps.Events.Len() == 0 {
		return
	}
	for _, art := range articles {
		stored, err := r.deps.Store.Get(ctx, art.URL)
		if err != nil {
			continue
		}
		if err := r.deps.Events.Publish(ctx, publishers.NewArticleEvent(runID, stored, r.now())); err != nil {
			log.DebugObj("article event not fully delivered", "publish_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
		}
	}
}

func (r *Runner) fail(h *Handle, st Status, err error) Status {
	finished := r.now()
	st.Phase = PhaseError
	st.Progress = 0
	st.Message = "Error: " + err.Error()
	st.Error = err.Error()
	st.FinishedAt = &finished
	h.set(st)
	return st
}

// finish records the run in history and announces it.
func (r *Runner) finish(ctx context.Context, st Status) {
	if r.deps.History != nil {
		if err := r.deps.History.Put(st); err != nil {
			r.log.WarnObj("run history not saved", "history_error", map[string]any{
				"run_id": st.RunID,
				"error":  err.Error(),
			})
		}
	}
	if r.deps.Events != nil && r.deps.Events.Len() > 0 {
		evt := publishers.NewRunEvent(st.RunID, publishers.RunSummary{
			Phase:        string(st.Phase),
			Sources:      st.Sources,
			ArticleCount: st.ArticleCount,
			Error:        st.Error,
		}, r.now())
		_ = r.deps.Events.Publish(ctx, evt)
	}
}
