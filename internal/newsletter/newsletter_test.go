package newsletter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/abhijeet6401/newslet/internal/domain"
)

var genTime = time.Date(2024, 3, 15, 14, 5, 9, 0, time.UTC)

func sampleArticles() []domain.Article {
	pub := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	return []domain.Article{
		{Title: "Oil climbs", URL: "https://x/oil", Source: "reuters", PublishedDate: &pub, SentimentScore: 0.5, ImportanceScore: 0.6, Category: domain.CategoryCommodities, Summary: "Crude, rose \"sharply\""},
		{Title: "Fed holds <rates>", URL: "https://x/fed", Source: "yahoo", SentimentScore: -0.3, ImportanceScore: 0.9, Category: domain.CategoryCentralBank, Summary: strings.Repeat("s", 400)},
		{Title: "Gold flat", URL: "https://x/gold", Source: "yahoo", SentimentScore: 0.05, ImportanceScore: 0.75, Category: domain.CategoryCommodities, Summary: "Flat."},
	}
}

func TestRenderHTMLEmptyList(t *testing.T) {
	out, err := Render(nil, "Weekly", FormatHTML, genTime)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := string(out)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Executive Summary",
		"<strong>0 articles</strong>",
		"<strong>neutral</strong>",
		"<strong>0.00</strong>",
		`<div class="stat-number">0</div>`,
		"</html>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(doc, `<div class="category-section">`) {
		t.Errorf("empty newsletter should have no category sections")
	}
}

func TestRenderHTMLContent(t *testing.T) {
	out, err := Render(sampleArticles(), "Weekly <Digest>", FormatHTML, genTime)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := string(out)
	for _, want := range []string{
		"Weekly &lt;Digest&gt;",
		"Generated on March 15, 2024",
		"Fed holds &lt;rates&gt;",
		"REUTERS",
		"March 14, 2024",
		"Commodities (2 articles)",
		"Central Bank Policy (1 articles)",
		"High Priority",
		"Medium Priority",
		"sentiment-positive",
		"sentiment-negative",
		"sentiment-neutral",
		strings.Repeat("s", 300) + "...",
		"<strong>2 high-priority articles</strong>",
		"analyzed from 2 sources",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(doc, strings.Repeat("s", 301)) {
		t.Errorf("summary not clipped")
	}
	if strings.Index(doc, "Commodities (2 articles)") > strings.Index(doc, "Central Bank Policy (1 articles)") {
		t.Errorf("categories should keep first-seen order")
	}
}

func TestRenderCSVRoundTrip(t *testing.T) {
	articles := sampleArticles()
	out, err := Render(articles, "", FormatCSV, genTime)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != len(articles)+1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "Title,Source,Published Date,URL,Category,Sentiment Score,Importance Score,Summary" {
		t.Fatalf("header = %v", rows[0])
	}

	byURL := map[string]domain.Article{}
	for _, a := range articles {
		byURL[a.URL] = a
	}
	wantOrder := []string{"https://x/fed", "https://x/gold", "https://x/oil"}
	for i, row := range rows[1:] {
		if row[3] != wantOrder[i] {
			t.Fatalf("row %d url = %s, want %s", i, row[3], wantOrder[i])
		}
		src := byURL[row[3]]
		sentiment, _ := strconv.ParseFloat(row[5], 64)
		importance, _ := strconv.ParseFloat(row[6], 64)
		if sentiment != src.SentimentScore || importance != src.ImportanceScore {
			t.Fatalf("scores for %s = %v %v", row[3], sentiment, importance)
		}
		if row[7] != src.Summary {
			t.Fatalf("summary for %s = %q", row[3], row[7])
		}
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(sampleArticles(), "", FormatJSON, genTime)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var doc struct {
		Metadata struct {
			Title         string   `json:"title"`
			TotalArticles int      `json:"total_articles"`
			Sources       []string `json:"sources"`
		} `json:"metadata"`
		Statistics struct {
			AverageSentiment       float64 `json:"average_sentiment"`
			HighImportanceCount    int     `json:"high_importance_count"`
			PositiveSentimentCount int     `json:"positive_sentiment_count"`
			NegativeSentimentCount int     `json:"negative_sentiment_count"`
		} `json:"statistics"`
		Articles []domain.Article `json:"articles"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Metadata.Title != "Financial Newsletter - March 2024" {
		t.Fatalf("title = %q", doc.Metadata.Title)
	}
	if doc.Metadata.TotalArticles != 3 || strings.Join(doc.Metadata.Sources, ",") != "reuters,yahoo" {
		t.Fatalf("metadata = %+v", doc.Metadata)
	}
	st := doc.Statistics
	if st.HighImportanceCount != 2 || st.PositiveSentimentCount != 1 || st.NegativeSentimentCount != 1 {
		t.Fatalf("statistics = %+v", st)
	}
	if diff := st.AverageSentiment - 0.25/3; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("average = %v", st.AverageSentiment)
	}
	if doc.Articles[0].URL != "https://x/fed" {
		t.Fatalf("articles not sorted by importance")
	}
}

func TestRenderJSONEmpty(t *testing.T) {
	out, err := Render(nil, "Empty", FormatJSON, genTime)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(out, []byte(`"articles": []`)) || !bytes.Contains(out, []byte(`"sources": []`)) {
		t.Fatalf("empty lists should encode as []: %s", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := Render(sampleArticles(), "Weekly", FormatMarkdown, genTime)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc := string(out)
	for _, want := range []string{
		"# Weekly",
		"| Metric         | Value |",
		"| Total Articles | 3     |",
		"## Commodities (2 articles)",
		"### [Oil climbs](https://x/oil)",
		"**REUTERS** · March 14, 2024 · Positive · Medium Priority",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("missing %q in\n%s", want, doc)
		}
	}
}

func TestRenderUnsupportedFormatWritesNothing(t *testing.T) {
	dir := t.TempDir()
	if _, err := Render(sampleArticles(), "x", "xml", genTime); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Write(dir, "xml", []byte("<x/>"), genTime); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat from Write, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("no file should be written, found %d", len(entries))
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	name, err := Write(dir+"/out", FormatCSV, []byte("a,b\n"), genTime)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if name != "newsletter_20240315_140509.csv" {
		t.Fatalf("name = %q", name)
	}
	data, err := os.ReadFile(dir + "/out/" + name)
	if err != nil || string(data) != "a,b\n" {
		t.Fatalf("content = %q, %v", data, err)
	}
}
