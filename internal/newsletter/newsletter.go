// Package newsletter renders analyzed articles as html, csv, json or markdown.
package newsletter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/abhijeet6401/newslet/internal/domain"
)

// Supported output formats.
const (
	FormatHTML     = "html"
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "md"
)

const (
	highImportance     = 0.7
	mediumImportance   = 0.5
	sentimentThreshold = 0.1
	topStories         = 3
	summaryClip        = 300
	unknownSource      = "Unknown"
)

// ErrUnsupportedFormat is returned for any format other than the supported ones.
var ErrUnsupportedFormat = errors.New("unsupported newsletter format")

// Formats lists the accepted format names.
func Formats() []string {
	return []string{FormatHTML, FormatCSV, FormatJSON, FormatMarkdown}
}

// ValidFormat reports whether format can be rendered.
func ValidFormat(format string) bool {
	return slices.Contains(Formats(), format)
}

// DefaultTitle is used when the caller gives none.
func DefaultTitle(now time.Time) string {
	return "Financial Newsletter - " + now.Format("January 2006")
}

// Render produces the newsletter document for articles.
func Render(articles []domain.Article, title, format string, now time.Time) ([]byte, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle(now)
	}
	switch format {
	case FormatHTML:
		return renderHTML(articles, title, now)
	case FormatCSV:
		return renderCSV(articles)
	case FormatJSON:
		return renderJSON(articles, title, now)
	case FormatMarkdown:
		return renderMarkdown(articles, title, now)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Filename names a newsletter generated at now.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("newsletter_%s.%s", now.Format("20060102_150405"), format)
}

// Write stores content under dir and returns the file name.
func Write(dir, format string, content []byte, now time.Time) (string, error) {
	if !ValidFormat(format) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create newsletter dir: %w", err)
	}
	name := Filename(format, now)
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		return "", fmt.Errorf("write newsletter %s: %w", name, err)
	}
	return name, nil
}

// digest holds the figures shared by every format.
type digest struct {
	Total            int
	AverageSentiment float64
	SentimentLabel   string
	HighImportance   int
	Positive         int
	Negative         int
	Sources          []string
	Top              []domain.Article
}

func summarize(articles []domain.Article) digest {
	d := digest{Total: len(articles), SentimentLabel: sentimentLabel(0)}
	seen := map[string]bool{}
	var sum float64
	for _, a := range articles {
		sum += a.SentimentScore
		if a.ImportanceScore > highImportance {
			d.HighImportance++
		}
		if a.SentimentScore > sentimentThreshold {
			d.Positive++
		}
		if a.SentimentScore < -sentimentThreshold {
			d.Negative++
		}
		src := a.Source
		if src == "" {
			src = unknownSource
		}
		if !seen[src] {
			seen[src] = true
			d.Sources = append(d.Sources, src)
		}
	}
	slices.Sort(d.Sources)
	if d.Sources == nil {
		d.Sources = []string{}
	}
	if len(articles) > 0 {
		d.AverageSentiment = sum / float64(len(articles))
		d.SentimentLabel = sentimentLabel(d.AverageSentiment)
	}
	sorted := byImportance(articles)
	d.Top = sorted[:min(topStories, len(sorted))]
	return d
}

// byImportance returns a copy sorted by importance, highest first. Ties keep
// their input order.
func byImportance(articles []domain.Article) []domain.Article {
	out := slices.Clone(articles)
	slices.SortStableFunc(out, func(a, b domain.Article) int {
		switch {
		case a.ImportanceScore > b.ImportanceScore:
			return -1
		case a.ImportanceScore < b.ImportanceScore:
			return 1
		default:
			return 0
		}
	})
	return out
}

// categoryGroup is one section of articles sharing a category.
type categoryGroup struct {
	Name     string
	Articles []domain.Article
}

// groupByCategory keeps categories in first-seen order.
func groupByCategory(articles []domain.Article) []categoryGroup {
	var groups []categoryGroup
	idx := map[string]int{}
	for _, a := range articles {
		cat := a.Category
		if cat == "" {
			cat = domain.CategoryGeneral
		}
		i, ok := idx[cat]
		if !ok {
			i = len(groups)
			idx[cat] = i
			groups = append(groups, categoryGroup{Name: cat})
		}
		groups[i].Articles = append(groups[i].Articles, a)
	}
	return groups
}

func sentimentLabel(score float64) string {
	switch {
	case score > sentimentThreshold:
		return "positive"
	case score < -sentimentThreshold:
		return "negative"
	default:
		return "neutral"
	}
}

func importanceLabel(score float64) string {
	switch {
	case score > highImportance:
		return "High"
	case score > mediumImportance:
		return "Medium"
	default:
		return "Standard"
	}
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// clip shortens s to n characters, marking the cut with an ellipsis.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func articleSummary(a domain.Article) string {
	if a.Summary != "" {
		return a.Summary
	}
	return a.Content
}
