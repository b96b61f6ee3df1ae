package crawler

import (
	"context"
	"time"

	"github.com/abhijeet6401/newslet/internal/domain"
	"github.com/abhijeet6401/newslet/internal/logger"
	"github.com/abhijeet6401/newslet/pkg/providers"
)

// Collector resolves a source id to its provider and fetcher. It never fails:
// unknown sources and fetch errors are logged and yield no entries.
type Collector struct {
	sources  *providers.SourceRegistry
	fetchers providers.FetcherRegistry
	log      logger.Logger
	now      func() time.Time
}

// NewCollector wires a Collector. Nil arguments fall back to the built-in
// sources and fetchers.
func NewCollector(sources *providers.SourceRegistry, fetchers providers.FetcherRegistry, log logger.Logger) *Collector {
	if sources == nil {
		sources = providers.DefaultSources()
	}
	if fetchers == nil {
		fetchers = providers.DefaultFetcherRegistry(nil, nil)
	}
	return &Collector{sources: sources, fetchers: fetchers, log: logger.Ensure(log), now: time.Now}
}

// Provider returns the configuration for sourceID.
func (c *Collector) Provider(sourceID string) (providers.Provider, bool) {
	return c.sources.ByID(sourceID)
}

// Collect returns the raw entries of sourceID from the last daysBack days.
func (c *Collector) Collect(ctx context.Context, sourceID string, daysBack int) []domain.RawEntry {
	cfg, ok := c.sources.ByID(sourceID)
	if !ok {
		c.log.WarnObj("no scraping method available for source", "source_unknown", map[string]any{
			"source": sourceID,
		})
		return nil
	}
	if !cfg.EnabledValue() {
		c.log.InfoObj("source disabled, skipping", "source_disabled", map[string]any{
			"source": cfg.ID,
		})
		return nil
	}

	fetcher, err := c.fetchers.FetcherFor(cfg)
	if err != nil {
		c.log.ErrorObj("no fetcher for source", "fetcher_missing", map[string]any{
			"source": cfg.ID,
			"error":  err.Error(),
		})
		return nil
	}

	var since time.Time
	if daysBack > 0 {
		since = c.now().AddDate(0, 0, -daysBack)
	}

	c.log.InfoObj("scraping source", "source_start", map[string]any{
		"source":    cfg.ID,
		"type":      cfg.Type,
		"days_back": daysBack,
	})

	entries, err := fetcher.Fetch(ctx, cfg, since)
	if err != nil {
		c.log.ErrorObj("source fetch failed", "source_error", map[string]any{
			"source": cfg.ID,
			"error":  err.Error(),
		})
		return nil
	}

	c.log.InfoObj("source scraped", "source_done", map[string]any{
		"source":  cfg.ID,
		"entries": len(entries),
	})
	return entries
}
