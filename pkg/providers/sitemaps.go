package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/abhijeet6401/newslet/internal/domain"
)

type googleNewsSitemap struct {
	URLs []googleNewsURL `xml:"url"`
}

type googleNewsURL struct {
	Loc     string           `xml:"loc"`
	LastMod string           `xml:"lastmod"`
	News    googleNewsDetail `xml:"news"`
}

type sitemapIndex struct {
	Sitemaps []sitemapIndexEntry `xml:"sitemap"`
}

type sitemapIndexEntry struct {
	Loc string `xml:"loc"`
}

type googleNewsDetail struct {
	PublicationDate string `xml:"publication_date"`
	Keywords        string `xml:"keywords"`
	Title           string `xml:"title"`
}

// parseGoogleNewsSitemap parses the XML data into a slice of googleNewsURL structs.
func parseGoogleNewsSitemap(data []byte) ([]googleNewsURL, error) {
	var sitemap googleNewsSitemap
	if err := xml.Unmarshal(data, &sitemap); err != nil {
		return nil, err
	}
	return sitemap.URLs, nil
}

// parseSitemapIndex parses an XML sitemap index file and returns the nested sitemap URLs.
func parseSitemapIndex(data []byte) ([]string, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, entry := range index.Sitemaps {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

// entriesFromSitemap turns sitemap urls into raw entries inside the lookback window.
// Keywords stand in for the description since sitemaps carry no body text.
func entriesFromSitemap(providerID string, urls []googleNewsURL, since time.Time) []domain.RawEntry {
	entries := make([]domain.RawEntry, 0, len(urls))
	for _, entry := range urls {
		loc := strings.TrimSpace(entry.Loc)
		title := strings.TrimSpace(entry.News.Title)
		if loc == "" || title == "" {
			continue
		}

		published := parsePublicationDate(entry.News.PublicationDate)
		updated := parsePublicationDate(entry.LastMod)
		if !withinWindow(published, updated, since) {
			continue
		}

		entries = append(entries, domain.RawEntry{
			Source:      providerID,
			Title:       title,
			Link:        loc,
			Published:   published,
			Updated:     updated,
			Description: strings.Join(parseKeywords(entry.News.Keywords), ", "),
		})
	}
	return entries
}

// parseKeywords splits a comma-separated string of keywords into a slice of trimmed strings.
func parseKeywords(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	if len(keywords) == 0 {
		return nil
	}
	return keywords
}

// parsePublicationDate accepts the W3C datetime forms sitemaps use.
func parsePublicationDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// sitemapFetcher implements Fetcher for Google News sitemap providers.
type sitemapFetcher struct {
	client HTTPClient
}

// NewSitemapFetcher builds a Fetcher for Google News sitemap providers.
func NewSitemapFetcher(client HTTPClient) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &sitemapFetcher{client: client}
}

// ID returns the provider type served by this fetcher.
func (f *sitemapFetcher) ID() string {
	return ProviderTypeSitemap
}

// Fetch retrieves entries from a Google News sitemap provider.
func (f *sitemapFetcher) Fetch(ctx context.Context, cfg Provider, since time.Time) ([]domain.RawEntry, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeSitemap) {
		return nil, fmt.Errorf("sitemap fetcher received incompatible provider type %q", cfg.Type)
	}
	if strings.TrimSpace(cfg.FeedURL) == "" {
		return nil, fmt.Errorf("provider %q feed_url is empty", cfg.ID)
	}

	urls, err := f.fetchURLs(ctx, cfg, cfg.FeedURL, Headers(cfg), nil)
	if err != nil {
		return nil, err
	}

	return entriesFromSitemap(cfg.ID, urls, since), nil
}

// fetchURLs resolves the given sitemap URL into url entries, following sitemap indexes if necessary.
func (f *sitemapFetcher) fetchURLs(ctx context.Context, cfg Provider, url string, headers map[string]string, visited map[string]struct{}) ([]googleNewsURL, error) {
	if visited == nil {
		visited = make(map[string]struct{})
	}
	if _, seen := visited[url]; seen {
		return nil, nil
	}
	visited[url] = struct{}{}

	raw, err := fetchBody(ctx, f.client, url, "sitemap", cfg.ID, headers)
	if err != nil {
		return nil, err
	}

	urls, err := parseGoogleNewsSitemap(raw)
	if err != nil {
		return nil, fmt.Errorf("decode google news sitemap: %w", err)
	}
	if len(urls) > 0 {
		return urls, nil
	}

	indexURLs, err := parseSitemapIndex(raw)
	if err != nil {
		return nil, fmt.Errorf("decode sitemap index: %w", err)
	}

	var all []googleNewsURL
	for _, indexURL := range indexURLs {
		nested, err := f.fetchURLs(ctx, cfg, indexURL, headers, visited)
		if err != nil {
			return nil, err
		}
		all = append(all, nested...)
	}
	return all, nil
}
