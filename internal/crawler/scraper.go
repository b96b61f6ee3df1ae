package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/abhijeet6401/newslet/internal/domain"
	"github.com/abhijeet6401/newslet/internal/logger"
	"github.com/abhijeet6401/newslet/pkg/httpclient"
	"github.com/abhijeet6401/newslet/pkg/providers"
)

const (
	maxHTMLBodyBytes  = 1 << 20 // 1 MiB
	maxArticleWorkers = 10
)

// contentSelectors are tried in order; the first match supplies the body.
var contentSelectors = []string{
	"article",
	".article-body",
	".story-body",
	".content",
	`[data-module="ArticleBody"]`,
	".caas-body",
}

// Scraper fills in article bodies by fetching each article page.
type Scraper struct {
	client  httpclient.Client
	log     logger.Logger
	workers int
}

// NewScraper creates a new Scraper with the given HTTP client and logger.
func NewScraper(client httpclient.Client, log logger.Logger, workers int) *Scraper {
	if client == nil {
		client = providers.DefaultHTTPClient()
	}
	if workers <= 0 || workers > maxArticleWorkers {
		workers = maxArticleWorkers
	}
	return &Scraper{client: client, log: logger.Ensure(log), workers: workers}
}

// Enrich fetches page text for articles whose content is empty. Articles that
// fail to scrape are returned unchanged.
func (s *Scraper) Enrich(ctx context.Context, cfg providers.Provider, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles) // default to originals so partial results are returned on cancel

	var pending []int
	for i, art := range articles {
		if strings.TrimSpace(art.Content) == "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return out
	}

	workerCount := min(len(pending), s.workers)

	var limiter <-chan time.Time
	if delay := cfg.RequestDelay(); delay > 0 {
		ticker := time.NewTicker(delay)
		limiter = ticker.C
		defer ticker.Stop()
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go s.articleWorker(ctx, cfg, limiter, jobCh, out, &wg, workerID)
	}

	for _, idx := range pending {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()

	return out
}

// articleWorker processes article indexes from the job channel, respecting the
// rate limiter. Each index is owned by exactly one worker.
func (s *Scraper) articleWorker(
	ctx context.Context,
	cfg providers.Provider,
	limiter <-chan time.Time,
	jobCh <-chan int,
	out []domain.Article,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			continue
		}

		if limiter != nil {
			select {
			case <-ctx.Done():
				continue
			case <-limiter:
			}
		}

		art := out[idx]
		text, err := s.fetchContent(ctx, cfg, art.URL, workerID)
		if err != nil {
			s.log.WarnObj("article content scrape failed", "content_error", map[string]any{
				"worker_id": workerID,
				"source":    cfg.ID,
				"url":       art.URL,
				"error":     err.Error(),
			})
			continue
		}
		out[idx].Content = text
	}
}

// fetchContent downloads the article page and extracts its body text.
func (s *Scraper) fetchContent(ctx context.Context, cfg providers.Provider, url string, workerID int) (string, error) {
	s.log.DebugObj("scraping article content", "content_start", map[string]any{
		"worker_id": workerID,
		"source":    cfg.ID,
		"url":       url,
	})

	resp, err := s.client.Get(ctx, url, providers.Headers(cfg))
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return "", fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		s.log.InfoObj("html body truncated", "truncation", map[string]any{
			"worker_id": workerID,
			"source":    cfg.ID,
			"url":       url,
			"original":  len(body),
			"kept":      maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	text, err := extractContent(body)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("no article text found")
	}
	return text, nil
}

// extractContent returns the text of the first matching content container,
// else all paragraph text joined by spaces.
func extractContent(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style").Remove()

	for _, sel := range contentSelectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if text := collapse(node.Text()); text != "" {
				return text, nil
			}
		}
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := collapse(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, " "), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
