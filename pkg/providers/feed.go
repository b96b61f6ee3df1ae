package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/abhijeet6401/newslet/internal/domain"
)

// feedFetcher reads a syndication feed and, when it yields nothing, scrapes
// the provider's listing page with the configured strategy.
type feedFetcher struct {
	client     HTTPClient
	strategies *StrategyRegistry
}

// NewFeedFetcher builds the fetcher for feed providers.
func NewFeedFetcher(client HTTPClient, strategies *StrategyRegistry) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if strategies == nil {
		strategies = DefaultStrategies()
	}
	return &feedFetcher{client: client, strategies: strategies}
}

// ID returns the provider type served by this fetcher.
func (f *feedFetcher) ID() string {
	return ProviderTypeFeed
}

// Fetch returns feed entries inside the lookback window, else page headlines.
// A feed error is only reported when the page fallback fails as well.
func (f *feedFetcher) Fetch(ctx context.Context, cfg Provider, since time.Time) ([]domain.RawEntry, error) {
	var feedErr error
	if strings.TrimSpace(cfg.FeedURL) != "" {
		entries, err := f.fetchFeed(ctx, cfg, since)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		feedErr = err
	}

	if strings.TrimSpace(cfg.PageURL) == "" {
		if feedErr != nil {
			return nil, feedErr
		}
		return nil, nil
	}

	entries, err := f.fetchPage(ctx, cfg)
	if err != nil {
		return nil, errors.Join(feedErr, err)
	}
	return entries, nil
}

func (f *feedFetcher) fetchFeed(ctx context.Context, cfg Provider, since time.Time) ([]domain.RawEntry, error) {
	body, err := fetchBody(ctx, f.client, cfg.FeedURL, "feed", cfg.ID, Headers(cfg))
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s feed: %w", cfg.ID, err)
	}

	entries := make([]domain.RawEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if !withinWindow(item.PublishedParsed, item.UpdatedParsed, since) {
			continue
		}
		entries = append(entries, domain.RawEntry{
			Source:      cfg.ID,
			Title:       strings.TrimSpace(item.Title),
			Link:        ResolveURL(item.Link, firstNonEmpty(cfg.BaseURL, feed.Link)),
			Published:   item.PublishedParsed,
			Updated:     item.UpdatedParsed,
			Content:     item.Content,
			Description: item.Description,
			Summary:     itemSummary(item),
		})
	}
	return entries, nil
}

// itemSummary reads the iTunes summary extension when a feed carries one.
func itemSummary(item *gofeed.Item) string {
	if item.ITunesExt != nil && item.ITunesExt.Summary != "" {
		return item.ITunesExt.Summary
	}
	return ""
}

func (f *feedFetcher) fetchPage(ctx context.Context, cfg Provider) ([]domain.RawEntry, error) {
	strategyName := firstNonEmpty(cfg.Strategy, StrategyHeadline)
	strategy, ok := f.strategies.Lookup(strategyName)
	if !ok {
		return nil, fmt.Errorf("provider %q references unknown page strategy %q", cfg.ID, strategyName)
	}

	body, err := fetchBody(ctx, f.client, cfg.PageURL, "page", cfg.ID, Headers(cfg))
	if err != nil {
		return nil, err
	}

	return parsePage(body, strategy, cfg.ID, firstNonEmpty(cfg.BaseURL, cfg.PageURL))
}
