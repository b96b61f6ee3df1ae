package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhijeet6401/newslet/internal/analyzer"
	"github.com/abhijeet6401/newslet/internal/domain"
	"github.com/abhijeet6401/newslet/internal/runner"
	"github.com/abhijeet6401/newslet/internal/snapshot"
	"github.com/abhijeet6401/newslet/internal/store"
	"github.com/abhijeet6401/newslet/pkg/providers"
)

type blockingCollector struct {
	release chan struct{}
}

func (c *blockingCollector) Collect(_ context.Context, source string, _ int) []domain.RawEntry {
	if c.release != nil {
		<-c.release
	}
	return []domain.RawEntry{{
		Source:  source,
		Title:   "Stocks rally on strong earnings",
		Link:    "https://example.com/" + source,
		Content: "Shares surge after record profit.",
	}}
}

func (c *blockingCollector) Provider(source string) (providers.Provider, bool) {
	return providers.Provider{ID: source}, true
}

type testEnv struct {
	srv    *Server
	store  *store.Store
	runner *runner.Runner
	dir    string
}

func newEnv(t *testing.T, collector runner.Collector) *testEnv {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "news.db"), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	an := analyzer.New(analyzer.NewHeuristic(), nil)
	r, err := runner.New(runner.Deps{
		Collector:   collector,
		Analyzer:    an,
		Store:       st,
		SnapshotDir: filepath.Join(dir, "snapshots"),
	})
	if err != nil {
		t.Fatalf("runner.New: %v", err)
	}

	srv := New(Options{
		Runner:        r,
		Store:         st,
		NewsletterDir: filepath.Join(dir, "newsletters"),
		SnapshotDir:   filepath.Join(dir, "snapshots"),
		AnalyzerInfo:  an.Info(),
		Defaults: Defaults{
			Sources:       []string{"yahoo"},
			DaysBack:      7,
			MinImportance: 0.5,
			MaxArticles:   20,
			Format:        "html",
		},
	})
	srv.now = func() time.Time { return time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC) }
	return &testEnv{srv: srv, store: st, runner: r, dir: dir}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v\n%s", method, path, err, rec.Body.String())
		}
	}
	return rec, out
}

func seed(t *testing.T, st *store.Store) {
	t.Helper()
	pub := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	arts := []domain.Article{
		{Title: "Fed holds rates", URL: "https://a/1", Source: "reuters", PublishedDate: &pub, ScrapedDate: pub, ImportanceScore: 0.9, SentimentScore: 0.2, Category: domain.CategoryCentralBank, Summary: "Held."},
		{Title: "Gold edges up", URL: "https://a/2", Source: "yahoo", ScrapedDate: pub, ImportanceScore: 0.6, Category: domain.CategoryCommodities, Summary: "Up."},
		{Title: "Minor note", URL: "https://a/3", Source: "yahoo", ScrapedDate: pub, ImportanceScore: 0.3, Category: domain.CategoryGeneral, Summary: "Meh."},
	}
	if n := st.SaveAll(context.Background(), arts); n != len(arts) {
		t.Fatalf("seeded %d of %d", n, len(arts))
	}
}

func TestHealth(t *testing.T) {
	env := newEnv(t, &blockingCollector{})
	rec, body := env.do(t, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("health = %d %v", rec.Code, body)
	}
	info, ok := body["analyzer"].(map[string]any)
	if !ok || info["enricher"] == nil {
		t.Fatalf("analyzer info missing: %v", body["analyzer"])
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newEnv(t, &blockingCollector{})
	rec, body := env.do(t, http.MethodGet, "/api/nope", "")
	if rec.Code != http.StatusNotFound || body["success"] != false {
		t.Fatalf("unknown route = %d %v", rec.Code, body)
	}
}

func TestScrapeLifecycle(t *testing.T) {
	collector := &blockingCollector{release: make(chan struct{})}
	env := newEnv(t, collector)

	rec, body := env.do(t, http.MethodPost, "/api/scrape", `{"sources":["yahoo"],"days_back":3}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("scrape = %d %v", rec.Code, body)
	}
	if id, _ := body["run_id"].(string); id == "" || body["days_back"] != float64(3) {
		t.Fatalf("scrape body = %v", body)
	}

	rec, body = env.do(t, http.MethodPost, "/api/scrape", "")
	if rec.Code != http.StatusConflict || body["success"] != false {
		t.Fatalf("second scrape = %d %v", rec.Code, body)
	}

	_, body = env.do(t, http.MethodGet, "/api/status", "")
	st := body["status"].(map[string]any)
	if st["status"] != string(runner.PhaseRunning) {
		t.Fatalf("status while running = %v", st)
	}

	close(collector.release)
	deadline := time.Now().Add(10 * time.Second)
	for env.runner.Status().Running() {
		if time.Now().After(deadline) {
			t.Fatal("run did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}

	_, body = env.do(t, http.MethodGet, "/api/status", "")
	st = body["status"].(map[string]any)
	if st["status"] != string(runner.PhaseCompleted) || st["progress"] != float64(runner.ProgressDone) {
		t.Fatalf("final status = %v", st)
	}

	_, body = env.do(t, http.MethodGet, "/api/snapshots/latest", "")
	if body["count"] != float64(1) {
		t.Fatalf("snapshot = %v", body)
	}
}

func TestScrapeRejectsBadBody(t *testing.T) {
	env := newEnv(t, &blockingCollector{})
	rec, _ := env.do(t, http.MethodPost, "/api/scrape", `{"days_back":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative days_back = %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPost, "/api/scrape", `{"unknown":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field = %d", rec.Code)
	}
}

func TestArticlesAndStats(t *testing.T) {
	env := newEnv(t, &blockingCollector{})
	seed(t, env.store)

	_, body := env.do(t, http.MethodGet, "/api/articles?min_importance=0.5", "")
	if body["count"] != float64(2) {
		t.Fatalf("articles = %v", body)
	}
	first := body["articles"].([]any)[0].(map[string]any)
	if first["url"] != "https://a/1" {
		t.Fatalf("first article = %v", first)
	}

	_, body = env.do(t, http.MethodGet, "/api/articles?source=yahoo&limit=1", "")
	if body["count"] != float64(1) {
		t.Fatalf("filtered articles = %v", body)
	}

	rec, _ := env.do(t, http.MethodGet, "/api/articles?limit=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit = %d", rec.Code)
	}

	_, body = env.do(t, http.MethodGet, "/api/stats", "")
	stats := body["stats"].(map[string]any)
	if stats["total_articles"] != float64(3) || stats["total_sources"] != float64(2) {
		t.Fatalf("stats = %v", stats)
	}
}

func TestGenerateAndDownload(t *testing.T) {
	env := newEnv(t, &blockingCollector{})

	rec, body := env.do(t, http.MethodPost, "/api/newsletter/generate", `{"format":"html"}`)
	if rec.Code != http.StatusNotFound || body["message"] != "No articles found matching criteria" {
		t.Fatalf("empty generate = %d %v", rec.Code, body)
	}

	rec, _ = env.do(t, http.MethodPost, "/api/newsletter/generate", `{"format":"pdf"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad format = %d", rec.Code)
	}

	seed(t, env.store)
	rec, body = env.do(t, http.MethodPost, "/api/newsletter/generate", `{"title":"Weekly","min_importance":0.5,"max_articles":5,"format":"csv"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate = %d %v", rec.Code, body)
	}
	name, _ := body["filename"].(string)
	if name != "newsletter_20240305_093000.csv" || body["article_count"] != float64(2) {
		t.Fatalf("generate body = %v", body)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "newsletters", name)); err != nil {
		t.Fatalf("newsletter not written: %v", err)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/newsletter/download/"+name, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("download = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "Title,Source,Published Date,URL") {
		t.Fatalf("download body = %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, name) {
		t.Fatalf("Content-Disposition = %q", cd)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/newsletter/download/newsletter_missing.html", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing download = %d", rec.Code)
	}
}

func TestSafeFilename(t *testing.T) {
	cases := map[string]bool{
		"newsletter_20240305_093000.html": true,
		"":                                false,
		"../etc/passwd":                   false,
		"newsletter_..html":               false,
		`newsletter_a\b.html`:             false,
		"notes.txt":                       false,
	}
	for name, want := range cases {
		if got := safeFilename(name); got != want {
			t.Errorf("safeFilename(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLatestSnapshotMissing(t *testing.T) {
	env := newEnv(t, &blockingCollector{})
	rec, _ := env.do(t, http.MethodGet, "/api/snapshots/latest", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing snapshot = %d", rec.Code)
	}

	if _, err := snapshot.Write(filepath.Join(env.dir, "snapshots"), nil, time.Now()); err != nil {
		t.Fatalf("snapshot.Write: %v", err)
	}
	rec, body := env.do(t, http.MethodGet, "/api/snapshots/latest", "")
	if rec.Code != http.StatusOK || body["count"] != float64(0) {
		t.Fatalf("empty snapshot = %d %v", rec.Code, body)
	}
}

func TestRunsEmpty(t *testing.T) {
	env := newEnv(t, &blockingCollector{})
	_, body := env.do(t, http.MethodGet, "/api/runs", "")
	runs, ok := body["runs"].([]any)
	if !ok || len(runs) != 0 {
		t.Fatalf("runs = %v", body)
	}
}
