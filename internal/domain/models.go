package domain

import "time"

// Domain contains core models shared by the pipeline stages.

// Enrichment defaults applied before analysis and on whole-article failure.
const (
	DefaultSentiment  = 0.0
	DefaultImportance = 0.5
	CategoryGeneral   = "General"
)

// Category labels.
const (
	CategoryMarketNews  = "Market News"
	CategoryEarnings    = "Company Earnings"
	CategoryEconomic    = "Economic Indicators"
	CategoryCentralBank = "Central Bank Policy"
	CategoryCrypto      = "Cryptocurrency"
	CategoryCommodities = "Commodities"
	CategoryMergers     = "Mergers & Acquisitions"
	CategoryIPO         = "IPO News"
	CategoryRegulatory  = "Regulatory News"
)

// Categories is the closed label set used by both classifiers, in
// keyword-table priority order.
var Categories = []string{
	CategoryMarketNews,
	CategoryEarnings,
	CategoryEconomic,
	CategoryCentralBank,
	CategoryCrypto,
	CategoryCommodities,
	CategoryMergers,
	CategoryIPO,
	CategoryRegulatory,
}

// IsCategory reports whether label is one of Categories or General.
func IsCategory(label string) bool {
	if label == CategoryGeneral {
		return true
	}
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// RawEntry is a feed item or page headline before normalization.
type RawEntry struct {
	Source      string
	Title       string
	Link        string
	Published   *time.Time
	Updated     *time.Time
	Content     string
	Description string
	Summary     string
}

// Article is one normalized news item with its enrichment metadata.
type Article struct {
	Title           string     `json:"title"`
	URL             string     `json:"url"`
	Source          string     `json:"source"`
	PublishedDate   *time.Time `json:"published_date"`
	ScrapedDate     time.Time  `json:"scraped_date"`
	Content         string     `json:"content"`
	SentimentScore  float64    `json:"sentiment_score"`
	ImportanceScore float64    `json:"importance_score"`
	Category        string     `json:"category"`
	Summary         string     `json:"summary"`
}

// WithDefaults returns a copy with enrichment fields reset to their defaults.
func (a Article) WithDefaults() Article {
	a.SentimentScore = DefaultSentiment
	a.ImportanceScore = DefaultImportance
	a.Category = CategoryGeneral
	a.Summary = ""
	return a
}
