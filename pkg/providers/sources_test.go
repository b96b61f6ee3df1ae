package providers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSources(t *testing.T) {
	reg := DefaultSources()
	for _, id := range []string{"yahoo", "reuters", "marketwatch", "cnbc", "benzinga"} {
		if _, ok := reg.ByID(id); !ok {
			t.Errorf("missing default source %q", id)
		}
	}
	reuters, _ := reg.ByID("Reuters")
	if reuters.Strategy != StrategyStory {
		t.Errorf("reuters strategy = %q", reuters.Strategy)
	}
	if got := len(reg.EnabledIDs()); got != 5 {
		t.Errorf("enabled = %d", got)
	}
}

func TestLoadSourcesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	t.Setenv("FE_SITEMAP", "https://www.financialexpress.com/news-sitemap.xml")
	data := `
sources:
  - id: " FinancialExpress "
    type: sitemap
    feed_url: ${FE_SITEMAP}
  - id: blog
    page_url: https://blog.example.com/
    headers:
      X-Key: " abc "
      Empty: ""
  - id: muted
    feed_url: https://muted.example.com/rss
    enabled: false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadSources(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	fe, ok := reg.ByID("financialexpress")
	if !ok || fe.FeedURL != "https://www.financialexpress.com/news-sitemap.xml" {
		t.Fatalf("env not expanded or id not normalized: %+v", fe)
	}
	blog, _ := reg.ByID("blog")
	if blog.Type != ProviderTypeFeed || blog.Strategy != StrategyHeadline {
		t.Errorf("defaults not applied: %+v", blog)
	}
	if len(blog.Headers) != 1 || blog.Headers["X-Key"] != "abc" {
		t.Errorf("headers not sanitized: %v", blog.Headers)
	}
	ids := reg.EnabledIDs()
	if len(ids) != 2 || ids[0] != "blog" || ids[1] != "financialexpress" {
		t.Errorf("enabled ids = %v", ids)
	}
}

func TestNewSourceRegistryValidation(t *testing.T) {
	tests := []struct {
		name string
		in   []Provider
	}{
		{"missing id", []Provider{{FeedURL: "https://a"}}},
		{"no urls", []Provider{{ID: "a"}}},
		{"bad scheme", []Provider{{ID: "a", FeedURL: "ftp://a"}}},
		{"sitemap without feed", []Provider{{ID: "a", Type: ProviderTypeSitemap, PageURL: "https://a"}}},
		{"unknown type", []Provider{{ID: "a", Type: "imap", FeedURL: "https://a"}}},
		{"duplicate", []Provider{{ID: "a", FeedURL: "https://a"}, {ID: "A", FeedURL: "https://b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSourceRegistry(tt.in); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFetcherRegistryByType(t *testing.T) {
	reg := DefaultFetcherRegistry(newStubClient(nil), nil)

	f, err := reg.FetcherFor(Provider{ID: "x", Type: "SITEMAP"})
	if err != nil || f.ID() != ProviderTypeSitemap {
		t.Fatalf("sitemap fetcher not found: %v", err)
	}
	f, err = reg.FetcherFor(Provider{ID: "x"})
	if err != nil || f.ID() != ProviderTypeFeed {
		t.Fatalf("empty type should default to feed: %v", err)
	}
	if _, err := reg.FetcherFor(Provider{ID: "x", Type: "imap"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if _, err := reg.FetcherFor(Provider{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}
