package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abhijeet6401/newslet/internal/newsletter"
	"github.com/abhijeet6401/newslet/internal/runner"
	"github.com/abhijeet6401/newslet/internal/snapshot"
	"github.com/abhijeet6401/newslet/internal/store"
)

const (
	defaultArticleLimit = 50
	defaultRunLimit     = 20
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, "healthy", map[string]any{
		"timestamp": s.now().UTC(),
		"analyzer":  s.opts.AnalyzerInfo,
	})
}

type scrapeRequest struct {
	Sources  []string `json:"sources"`
	DaysBack *int     `json:"days_back"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var body scrapeRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := runner.Request{Sources: body.Sources, DaysBack: s.opts.Defaults.DaysBack}
	if len(req.Sources) == 0 {
		req.Sources = s.opts.Defaults.Sources
	}
	if body.DaysBack != nil {
		req.DaysBack = *body.DaysBack
	}

	h, err := s.opts.Runner.Start(r.Context(), req)
	switch {
	case errors.Is(err, runner.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, "Scraping already in progress")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, "Scraping started", map[string]any{
		"run_id":    h.ID(),
		"sources":   req.Sources,
		"days_back": req.DaysBack,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.opts.Runner.Status()
	writeJSON(w, http.StatusOK, st.Message, map[string]any{"status": st})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultRunLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := s.opts.Runner.Runs(limit)
	if err != nil {
		s.log.ErrorObj("list runs failed", "runs_error", map[string]any{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []runner.Status{}
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"runs": runs, "count": len(runs)})
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultArticleLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	minImp, err := floatParam(r, "min_importance", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	arts, err := s.opts.Store.Query(r.Context(), store.Filter{
		MinImportance: minImp,
		Source:        strings.TrimSpace(r.URL.Query().Get("source")),
		Limit:         limit,
	})
	if err != nil {
		s.log.ErrorObj("query articles failed", "articles_error", map[string]any{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to load articles")
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"articles": nonNil(arts), "count": len(arts)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.opts.Store.Stats(r.Context())
	if err != nil {
		s.log.ErrorObj("stats failed", "stats_error", map[string]any{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{"stats": st})
}

type generateRequest struct {
	Title         string   `json:"title"`
	MinImportance *float64 `json:"min_importance"`
	MaxArticles   *int     `json:"max_articles"`
	Format        string   `json:"format"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	d := s.opts.Defaults
	format := strings.ToLower(strings.TrimSpace(body.Format))
	if format == "" {
		format = d.Format
	}
	if !newsletter.ValidFormat(format) {
		writeError(w, http.StatusBadRequest, "Unsupported format: "+format)
		return
	}
	minImp := d.MinImportance
	if body.MinImportance != nil {
		minImp = *body.MinImportance
	}
	maxArts := d.MaxArticles
	if body.MaxArticles != nil {
		maxArts = *body.MaxArticles
	}
	if maxArts <= 0 {
		writeError(w, http.StatusBadRequest, "max_articles must be positive")
		return
	}

	arts, err := s.opts.Store.Query(r.Context(), store.Filter{MinImportance: minImp, Limit: maxArts})
	if err != nil {
		s.log.ErrorObj("query articles failed", "newsletter_error", map[string]any{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to load articles")
		return
	}
	if len(arts) == 0 {
		writeError(w, http.StatusNotFound, "No articles found matching criteria")
		return
	}

	now := s.now()
	title := strings.TrimSpace(body.Title)
	if title == "" {
		title = newsletter.DefaultTitle(now)
	}
	content, err := newsletter.Render(arts, title, format, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name, err := newsletter.Write(s.opts.NewsletterDir, format, content, now)
	if err != nil {
		s.log.ErrorObj("write newsletter failed", "newsletter_error", map[string]any{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to write newsletter")
		return
	}

	s.log.InfoObj("newsletter generated", "newsletter_generated", map[string]any{
		"file":     name,
		"format":   format,
		"articles": len(arts),
	})
	writeJSON(w, http.StatusOK, "Newsletter generated successfully", map[string]any{
		"filename":      name,
		"format":        format,
		"article_count": len(arts),
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if !safeFilename(name) {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	f, err := os.Open(filepath.Join(s.opts.NewsletterDir, name))
	if errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to open file")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap, err := snapshot.Latest(s.opts.SnapshotDir)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		writeError(w, http.StatusNotFound, "No snapshot found")
		return
	}
	if err != nil {
		s.log.ErrorObj("load snapshot failed", "snapshot_error", map[string]any{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot")
		return
	}
	writeJSON(w, http.StatusOK, "", map[string]any{
		"file":     snap.File,
		"articles": nonNil(snap.Articles),
		"count":    len(snap.Articles),
	})
}

// safeFilename accepts a bare newsletter file name with no path components.
func safeFilename(name string) bool {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return strings.HasPrefix(name, "newsletter_")
}

func intParam(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return n, nil
}

func floatParam(r *http.Request, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(key + " must be a number")
	}
	return f, nil
}
