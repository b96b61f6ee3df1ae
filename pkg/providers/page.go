package providers

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/abhijeet6401/newslet/internal/domain"
)

const (
	StrategyHeadline = "headline"
	StrategyStory    = "story"
)

// PageStrategy turns a parsed listing page into candidate entries.
// Links may be relative; the caller resolves them.
type PageStrategy interface {
	Name() string
	Extract(doc *goquery.Document) []domain.RawEntry
}

// StrategyRegistry maps strategy names to implementations so new sites only
// need a config entry, or a new strategy registered at startup.
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies map[string]PageStrategy
}

// NewStrategyRegistry builds a registry holding the given strategies.
func NewStrategyRegistry(strategies ...PageStrategy) *StrategyRegistry {
	r := &StrategyRegistry{strategies: make(map[string]PageStrategy, len(strategies))}
	for _, s := range strategies {
		r.Register(s)
	}
	return r
}

// DefaultStrategies returns the built-in headline and story strategies.
func DefaultStrategies() *StrategyRegistry {
	return NewStrategyRegistry(NewHeadlineStrategy(), NewStoryStrategy())
}

// Register adds or replaces a strategy.
func (r *StrategyRegistry) Register(s PageStrategy) {
	if s == nil {
		return
	}
	name := normalizeID(s.Name())
	if name == "" {
		return
	}
	r.mu.Lock()
	r.strategies[name] = s
	r.mu.Unlock()
}

// Lookup returns the strategy registered under name.
func (r *StrategyRegistry) Lookup(name string) (PageStrategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[normalizeID(name)]
	return s, ok
}

// headlineStrategy picks h3/h4 elements whose class looks like a headline and
// pairs each with the link inside it or wrapping it.
type headlineStrategy struct {
	class *regexp.Regexp
}

// NewHeadlineStrategy suits listing pages such as Yahoo Finance and MarketWatch.
func NewHeadlineStrategy() PageStrategy {
	return &headlineStrategy{class: regexp.MustCompile(`(?i)title|headline`)}
}

func (s *headlineStrategy) Name() string { return StrategyHeadline }

func (s *headlineStrategy) Extract(doc *goquery.Document) []domain.RawEntry {
	c := newCollector()
	doc.Find("h3, h4").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !s.class.MatchString(sel.AttrOr("class", "")) {
			return true
		}
		link := sel.Find("a").First()
		if link.Length() == 0 {
			link = sel.Closest("a")
		}
		return c.add(sel.Text(), link.AttrOr("href", ""))
	})
	return c.entries
}

// storyStrategy picks story/article containers and pairs the first heading
// with the first link inside each.
type storyStrategy struct {
	class *regexp.Regexp
}

// NewStoryStrategy suits card-based pages such as Reuters.
func NewStoryStrategy() PageStrategy {
	return &storyStrategy{class: regexp.MustCompile(`(?i)story|article`)}
}

func (s *storyStrategy) Name() string { return StrategyStory }

func (s *storyStrategy) Extract(doc *goquery.Document) []domain.RawEntry {
	c := newCollector()
	doc.Find("div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !s.class.MatchString(sel.AttrOr("class", "")) {
			return true
		}
		heading := sel.Find("h2, h3, h4").First()
		link := sel.Find("a").First()
		if heading.Length() == 0 || link.Length() == 0 {
			return true
		}
		return c.add(heading.Text(), link.AttrOr("href", ""))
	})
	return c.entries
}

// collector dedupes links and stops at maxPageEntries.
type collector struct {
	seen    map[string]struct{}
	entries []domain.RawEntry
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

// add records a candidate and reports whether iteration should continue.
func (c *collector) add(title, href string) bool {
	title = strings.Join(strings.Fields(title), " ")
	href = strings.TrimSpace(href)
	if title == "" || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return true
	}
	if _, dup := c.seen[href]; dup {
		return true
	}
	c.seen[href] = struct{}{}
	c.entries = append(c.entries, domain.RawEntry{Title: title, Link: href})
	return len(c.entries) < maxPageEntries
}

// parsePage parses HTML and runs the strategy, resolving links against base.
func parsePage(body []byte, strategy PageStrategy, providerID, base string) ([]domain.RawEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", providerID, err)
	}

	entries := strategy.Extract(doc)
	for i := range entries {
		entries[i].Source = providerID
		entries[i].Link = ResolveURL(entries[i].Link, base)
	}
	return entries, nil
}
