package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// sourcesFile represents the structure of the sources configuration file.
type sourcesFile struct {
	Sources []Provider `json:"sources" yaml:"sources"`
}

// SourceRegistry holds the known providers keyed by id.
type SourceRegistry struct {
	mu        sync.RWMutex
	providers []Provider
	idx       map[string]Provider
}

// DefaultSources returns the built-in financial news providers.
func DefaultSources() *SourceRegistry {
	reg, err := NewSourceRegistry([]Provider{
		{
			ID:       "yahoo",
			Name:     "Yahoo Finance",
			Type:     ProviderTypeFeed,
			FeedURL:  "https://finance.yahoo.com/news/rssindex",
			PageURL:  "https://finance.yahoo.com/news/",
			BaseURL:  "https://finance.yahoo.com",
			Strategy: StrategyHeadline,
		},
		{
			ID:       "reuters",
			Name:     "Reuters",
			Type:     ProviderTypeFeed,
			FeedURL:  "https://feeds.reuters.com/reuters/businessNews",
			PageURL:  "https://www.reuters.com/business/",
			BaseURL:  "https://www.reuters.com",
			Strategy: StrategyStory,
		},
		{
			ID:       "marketwatch",
			Name:     "MarketWatch",
			Type:     ProviderTypeFeed,
			FeedURL:  "https://feeds.marketwatch.com/marketwatch/realtimeheadlines",
			PageURL:  "https://www.marketwatch.com/newsviewer",
			BaseURL:  "https://www.marketwatch.com",
			Strategy: StrategyHeadline,
		},
		{
			ID:      "cnbc",
			Name:    "CNBC",
			Type:    ProviderTypeFeed,
			FeedURL: "https://www.cnbc.com/id/100003114/device/rss/rss.html",
		},
		{
			ID:      "benzinga",
			Name:    "Benzinga",
			Type:    ProviderTypeFeed,
			FeedURL: "https://www.benzinga.com/feed",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("built-in sources invalid: %v", err))
	}
	return reg
}

// NewSourceRegistry sanitizes and validates the given providers.
func NewSourceRegistry(providers []Provider) (*SourceRegistry, error) {
	reg := &SourceRegistry{
		providers: make([]Provider, 0, len(providers)),
		idx:       make(map[string]Provider, len(providers)),
	}

	for i := range providers {
		cfg := sanitizeProvider(providers[i])
		if err := validateProvider(cfg); err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", cfg.ID)
		}
		reg.providers = append(reg.providers, cfg)
		reg.idx[cfg.ID] = cfg
	}

	return reg, nil
}

// LoadSources loads the source registry from a YAML/JSON file.
func LoadSources(path string) (*SourceRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	file, err := parseSourcesFile(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(file.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	return NewSourceRegistry(file.Sources)
}

// parseSourcesFile decodes the file by extension, trying each known format when unknown.
func parseSourcesFile(data []byte, ext string) (sourcesFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	known := false
	for _, d := range decoders {
		if ext == d.ext {
			known = true
		}
	}

	for _, d := range decoders {
		if known && ext != d.ext {
			continue
		}
		var file sourcesFile
		if err := d.fn(data, &file); err == nil {
			return file, nil
		}
	}

	return sourcesFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

// sanitizeProvider trims and normalizes the provider fields.
func sanitizeProvider(cfg Provider) Provider {
	cfg.ID = normalizeID(cfg.ID)
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}
	cfg.Type = normalizeID(cfg.Type)
	if cfg.Type == "" {
		cfg.Type = ProviderTypeFeed
	}
	cfg.FeedURL = strings.TrimSpace(cfg.FeedURL)
	cfg.PageURL = strings.TrimSpace(cfg.PageURL)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Strategy = normalizeID(cfg.Strategy)
	if cfg.PageURL != "" && cfg.Strategy == "" {
		cfg.Strategy = StrategyHeadline
	}
	cfg.Headers = sanitizeHeaders(cfg.Headers)
	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	return cfg
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateProvider checks that required fields are present.
func validateProvider(cfg Provider) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case ProviderTypeFeed:
		if cfg.FeedURL == "" && cfg.PageURL == "" {
			return fmt.Errorf("feed_url or page_url is required for source %q", cfg.ID)
		}
	case ProviderTypeSitemap:
		if cfg.FeedURL == "" {
			return fmt.Errorf("feed_url is required for sitemap source %q", cfg.ID)
		}
	default:
		return fmt.Errorf("type %q not supported for source %q", cfg.Type, cfg.ID)
	}
	for field, raw := range map[string]string{"feed_url": cfg.FeedURL, "page_url": cfg.PageURL, "base_url": cfg.BaseURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%s for source %q must be an http(s) url", field, cfg.ID)
		}
	}
	return nil
}

// ByID returns the provider by id.
func (r *SourceRegistry) ByID(id string) (Provider, bool) {
	if r == nil {
		return Provider{}, false
	}

	id = normalizeID(id)
	if id == "" {
		return Provider{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns all configured providers in file order.
func (r *SourceRegistry) All() []Provider {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// EnabledIDs returns the ids of enabled providers, sorted.
func (r *SourceRegistry) EnabledIDs() []string {
	var ids []string
	for _, p := range r.All() {
		if p.EnabledValue() {
			ids = append(ids, p.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
