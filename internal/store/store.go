// Package store persists analyzed articles in SQLite, one row per URL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abhijeet6401/newslet/internal/domain"
	"github.com/abhijeet6401/newslet/internal/logger"
)

// DefaultLimit caps Query when no limit is given.
const DefaultLimit = 50

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02 15:04:05.000000"

// ErrNotFound is returned by Get when no article has the URL.
var ErrNotFound = errors.New("article not found")

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	title            TEXT NOT NULL,
	content          TEXT,
	url              TEXT UNIQUE,
	source           TEXT,
	published_date   DATETIME,
	scraped_date     DATETIME DEFAULT CURRENT_TIMESTAMP,
	sentiment_score  REAL DEFAULT 0,
	importance_score REAL DEFAULT 0,
	category         TEXT,
	summary          TEXT
);
CREATE INDEX IF NOT EXISTS idx_articles_importance ON articles(importance_score DESC, published_date DESC);
CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);
`

const articleColumns = "title, content, url, source, published_date, scraped_date, sentiment_score, importance_score, category, summary"

// Filter narrows Query results.
type Filter struct {
	MinImportance float64
	Source        string
	Limit         int
}

// Stats summarizes the stored articles.
type Stats struct {
	TotalArticles     int            `json:"total_articles"`
	TotalSources      int            `json:"total_sources"`
	SourceBreakdown   map[string]int `json:"source_breakdown"`
	AverageSentiment  float64        `json:"average_sentiment"`
	AverageImportance float64        `json:"average_importance"`
}

// Store is a SQLite-backed article table.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

// Open creates the database file and schema when missing.
func Open(path string, log logger.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{db: db, log: logger.Ensure(log)}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save inserts art, replacing any row with the same URL.
func (s *Store) Save(ctx context.Context, art domain.Article) error {
	if strings.TrimSpace(art.URL) == "" {
		return errors.New("article url is empty")
	}
	if strings.TrimSpace(art.Title) == "" {
		return fmt.Errorf("article %s has no title", art.URL)
	}
	if art.Category == "" {
		art.Category = domain.CategoryGeneral
	}
	scraped := art.ScrapedDate
	if scraped.IsZero() {
		scraped = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		art.Title,
		art.Content,
		art.URL,
		art.Source,
		formatTime(art.PublishedDate),
		scraped.UTC().Format(timeLayout),
		art.SentimentScore,
		art.ImportanceScore,
		art.Category,
		art.Summary,
	)
	if err != nil {
		return fmt.Errorf("save article %s: %w", art.URL, err)
	}
	return nil
}

// SaveAll writes each article independently and returns how many were stored.
// Failed rows are logged and skipped.
func (s *Store) SaveAll(ctx context.Context, articles []domain.Article) int {
	saved := 0
	for _, art := range articles {
		if err := s.Save(ctx, art); err != nil {
			s.log.WarnObj("article not saved", "store_skip", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
			continue
		}
		saved++
	}
	return saved
}

// Query returns articles ordered by importance then publication date, newest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]domain.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles WHERE importance_score >= ?"
	args := []any{f.MinImportance}

	if src := strings.TrimSpace(f.Source); src != "" {
		query += " AND source = ?"
		args = append(args, src)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	query += " ORDER BY importance_score DESC, published_date DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var out []domain.Article
	for rows.Next() {
		art, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, art)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return out, nil
}

// Get returns the article stored under url.
func (s *Store) Get(ctx context.Context, url string) (domain.Article, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE url = ?", url)
	art, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, ErrNotFound
	}
	return art, err
}

// Stats reports totals and averages. Averages cover rows with positive
// sentiment only.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{SourceBreakdown: map[string]int{}}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT source) FROM articles",
	).Scan(&st.TotalArticles, &st.TotalSources); err != nil {
		return st, fmt.Errorf("count articles: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT COALESCE(source, ''), COUNT(*) FROM articles GROUP BY source")
	if err != nil {
		return st, fmt.Errorf("count by source: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var src string
		var n int
		if err := rows.Scan(&src, &n); err != nil {
			return st, fmt.Errorf("scan source count: %w", err)
		}
		st.SourceBreakdown[src] = n
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("iterate source counts: %w", err)
	}

	var avgSentiment, avgImportance sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		"SELECT AVG(sentiment_score), AVG(importance_score) FROM articles WHERE sentiment_score > 0",
	).Scan(&avgSentiment, &avgImportance); err != nil {
		return st, fmt.Errorf("average scores: %w", err)
	}
	st.AverageSentiment = avgSentiment.Float64
	st.AverageImportance = avgImportance.Float64
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(sc scanner) (domain.Article, error) {
	var art domain.Article
	var content, source, category, summary sql.NullString
	var published, scraped sql.NullString
	var sentimentScore, importanceScore sql.NullFloat64
	err := sc.Scan(&art.Title, &content, &art.URL, &source, &published, &scraped,
		&sentimentScore, &importanceScore, &category, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return art, err
	}
	if err != nil {
		return art, fmt.Errorf("scan article: %w", err)
	}

	art.Content = content.String
	art.Source = source.String
	art.Category = category.String
	if art.Category == "" {
		art.Category = domain.CategoryGeneral
	}
	art.Summary = summary.String
	art.SentimentScore = sentimentScore.Float64
	art.ImportanceScore = importanceScore.Float64
	art.PublishedDate = parseTime(published)
	if t := parseTime(scraped); t != nil {
		art.ScrapedDate = *t
	}
	return art, nil
}

func formatTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

// parseTime accepts our layout and the SQLite CURRENT_TIMESTAMP form.
func parseTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	for _, layout := range []string{timeLayout, time.DateTime, time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, v.String, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}
