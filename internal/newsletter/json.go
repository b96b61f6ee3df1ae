package newsletter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhijeet6401/newslet/internal/domain"
)

type jsonMetadata struct {
	Title         string   `json:"title"`
	GeneratedDate string   `json:"generated_date"`
	TotalArticles int      `json:"total_articles"`
	Sources       []string `json:"sources"`
}

type jsonStatistics struct {
	AverageSentiment       float64 `json:"average_sentiment"`
	HighImportanceCount    int     `json:"high_importance_count"`
	PositiveSentimentCount int     `json:"positive_sentiment_count"`
	NegativeSentimentCount int     `json:"negative_sentiment_count"`
}

type jsonNewsletter struct {
	Metadata   jsonMetadata     `json:"metadata"`
	Statistics jsonStatistics   `json:"statistics"`
	Articles   []domain.Article `json:"articles"`
}

func renderJSON(articles []domain.Article, title string, now time.Time) ([]byte, error) {
	d := summarize(articles)
	doc := jsonNewsletter{
		Metadata: jsonMetadata{
			Title:         title,
			GeneratedDate: now.Format(time.RFC3339),
			TotalArticles: d.Total,
			Sources:       d.Sources,
		},
		Statistics: jsonStatistics{
			AverageSentiment:       d.AverageSentiment,
			HighImportanceCount:    d.HighImportance,
			PositiveSentimentCount: d.Positive,
			NegativeSentimentCount: d.Negative,
		},
		Articles: byImportance(articles),
	}
	if doc.Articles == nil {
		doc.Articles = []domain.Article{}
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return out, nil
}
