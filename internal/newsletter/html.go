package newsletter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/abhijeet6401/newslet/internal/domain"
)

//go:embed templates/newsletter.html.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(
	template.New("newsletter.html.tmpl").Funcs(template.FuncMap{
		"upper":      strings.ToUpper,
		"date":       formatDate,
		"clip":       func(s string) string { return clip(s, summaryClip) },
		"summary":    articleSummary,
		"importance": importanceLabel,
		"sentiment":  sentimentLabel,
		"title":      titleCase,
		"score1":     func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"score2":     func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"lower":      strings.ToLower,
	}).ParseFS(templateFS, "templates/newsletter.html.tmpl"),
)

type htmlView struct {
	Title     string
	Generated string
	Digest    digest
	Groups    []categoryGroup
}

func renderHTML(articles []domain.Article, title string, now time.Time) ([]byte, error) {
	view := htmlView{
		Title:     title,
		Generated: now.Format("January 2, 2006"),
		Digest:    summarize(articles),
		Groups:    groupByCategory(articles),
	}
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
