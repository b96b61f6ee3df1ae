package providers

import (
	"fmt"
	"sync"
	"time"

	"github.com/abhijeet6401/newslet/pkg/httpclient"
)

type fetcherRegistry struct {
	fetchers map[string]Fetcher
	mu       sync.RWMutex
}

// NewFetcherRegistry builds a registry for the provided fetcher implementations,
// keyed by the provider type each one serves.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{
		fetchers: make(map[string]Fetcher, len(fetchers)),
	}

	for _, f := range fetchers {
		if f == nil {
			continue
		}
		reg.fetchers[normalizeID(f.ID())] = f
	}

	return reg
}

// FetcherFor selects the fetcher for the given provider based on its type.
func (r *fetcherRegistry) FetcherFor(cfg Provider) (Fetcher, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("provider id is empty")
	}

	typ := normalizeID(cfg.Type)
	if typ == "" {
		typ = ProviderTypeFeed
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.fetchers[typ]; ok {
		return f, nil
	}

	return nil, fmt.Errorf("no fetcher registered for provider %q type %q", cfg.ID, cfg.Type)
}

// DefaultHTTPClient returns a tuned client for provider fetchers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(10 * time.Second) }

// DefaultFetcherRegistry wires up the feed and sitemap fetchers.
func DefaultFetcherRegistry(client HTTPClient, strategies *StrategyRegistry) FetcherRegistry {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if strategies == nil {
		strategies = DefaultStrategies()
	}

	return NewFetcherRegistry(
		NewFeedFetcher(client, strategies),
		NewSitemapFetcher(client),
	)
}
