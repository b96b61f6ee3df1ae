// Package extractor normalizes raw feed and page entries into articles.
package extractor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/abhijeet6401/newslet/internal/domain"
)

// ErrIncompleteEntry marks an entry without a title or link.
var ErrIncompleteEntry = errors.New("entry is missing title or link")

// Normalize builds an Article from entry with enrichment fields at their
// defaults. Content comes from the richest field available: the content
// block, else the description, else the summary.
func Normalize(entry domain.RawEntry, scrapedAt time.Time) (domain.Article, error) {
	title := StripHTML(entry.Title)
	link := strings.TrimSpace(entry.Link)
	if title == "" || link == "" {
		return domain.Article{}, fmt.Errorf("normalize %s entry %q: %w", entry.Source, entry.Title, ErrIncompleteEntry)
	}

	art := domain.Article{
		Title:         title,
		URL:           link,
		Source:        strings.TrimSpace(entry.Source),
		PublishedDate: publishedDate(entry),
		ScrapedDate:   scrapedAt.UTC(),
		Content:       StripHTML(richest(entry)),
	}
	return art.WithDefaults(), nil
}

func richest(entry domain.RawEntry) string {
	for _, v := range []string{entry.Content, entry.Description, entry.Summary} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func publishedDate(entry domain.RawEntry) *time.Time {
	for _, t := range []*time.Time{entry.Published, entry.Updated} {
		if t != nil && !t.IsZero() {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// StripHTML returns the visible text of an HTML fragment with entities
// decoded and whitespace collapsed.
func StripHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}
	doc.Find("script, style, noscript").Remove()
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
