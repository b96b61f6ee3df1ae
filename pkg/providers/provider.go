package providers

import (
	"context"
	"strings"
	"time"

	"github.com/abhijeet6401/newslet/internal/domain"
	"github.com/abhijeet6401/newslet/pkg/httpclient"
)

const (
	// ProviderTypeFeed reads an RSS/Atom/JSON feed and falls back to page scraping.
	ProviderTypeFeed = "feed"
	// ProviderTypeSitemap reads a Google News sitemap, following sitemap indexes.
	ProviderTypeSitemap = "sitemap"

	// maxPageEntries bounds the number of headlines taken from a scraped page.
	maxPageEntries = 20
)

// HTTPClient is the outbound client fetchers use.
type HTTPClient = httpclient.Client

// Provider describes one news source.
type Provider struct {
	ID             string            `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	Type           string            `json:"type" yaml:"type"`
	FeedURL        string            `json:"feed_url" yaml:"feed_url"`
	PageURL        string            `json:"page_url" yaml:"page_url"`
	BaseURL        string            `json:"base_url" yaml:"base_url"`
	Strategy       string            `json:"strategy" yaml:"strategy"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	RequestDelayMs int               `json:"request_delay_ms" yaml:"request_delay_ms"`
	Enabled        *bool             `json:"enabled" yaml:"enabled"`
}

// RequestDelay is the pause between consecutive requests to this provider.
func (p Provider) RequestDelay() time.Duration {
	if p.RequestDelayMs <= 0 {
		return 0
	}
	return time.Duration(p.RequestDelayMs) * time.Millisecond
}

// EnabledValue returns the enabled flag defaulting to true.
func (p Provider) EnabledValue() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

// Headers returns the request headers configured for the provider.
func Headers(p Provider) map[string]string {
	out := map[string]string{
		"Accept": "application/rss+xml, application/atom+xml, application/xml, text/html;q=0.9, */*;q=0.8",
	}
	for k, v := range p.Headers {
		out[k] = v
	}
	return out
}

// Fetcher pulls raw entries for a provider. Entries known to be older than
// since are dropped; entries without any timestamp are kept.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Provider, since time.Time) ([]domain.RawEntry, error)
}

// FetcherRegistry resolves the fetcher responsible for a provider.
type FetcherRegistry interface {
	FetcherFor(cfg Provider) (Fetcher, error)
}

// withinWindow applies the lookback filter: published, else updated, else keep.
func withinWindow(published, updated *time.Time, since time.Time) bool {
	if since.IsZero() {
		return true
	}
	switch {
	case published != nil && !published.IsZero():
		return !published.Before(since)
	case updated != nil && !updated.IsZero():
		return !updated.Before(since)
	default:
		return true
	}
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
