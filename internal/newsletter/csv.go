package newsletter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/abhijeet6401/newslet/internal/domain"
)

var csvHeader = []string{
	"Title", "Source", "Published Date", "URL", "Category",
	"Sentiment Score", "Importance Score", "Summary",
}

func renderCSV(articles []domain.Article) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range byImportance(articles) {
		published := ""
		if a.PublishedDate != nil {
			published = a.PublishedDate.Format(time.RFC3339)
		}
		record := []string{
			a.Title,
			a.Source,
			published,
			a.URL,
			a.Category,
			strconv.FormatFloat(a.SentimentScore, 'f', -1, 64),
			strconv.FormatFloat(a.ImportanceScore, 'f', -1, 64),
			a.Summary,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %s: %w", a.URL, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
