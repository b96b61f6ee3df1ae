package newsletter

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/abhijeet6401/newslet/internal/domain"
)

const headlineWidth = 60

func renderMarkdown(articles []domain.Article, title string, now time.Time) ([]byte, error) {
	d := summarize(articles)
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n_Generated on %s_\n\n", title, now.Format("January 2, 2006"))

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "This newsletter covers **%d articles**. The overall market sentiment appears **%s** (average %.2f). **%d high-priority articles** require immediate attention.\n\n",
		d.Total, d.SentimentLabel, d.AverageSentiment, d.HighImportance)

	writeTable(&b, []string{"Metric", "Value"}, [][]string{
		{"Total Articles", fmt.Sprint(d.Total)},
		{"Positive", fmt.Sprint(d.Positive)},
		{"Negative", fmt.Sprint(d.Negative)},
		{"High Priority", fmt.Sprint(d.HighImportance)},
		{"Sources", fmt.Sprint(len(d.Sources))},
	})

	if len(d.Top) > 0 {
		b.WriteString("\n### Top Stories\n\n")
		rows := make([][]string, 0, len(d.Top))
		for _, a := range d.Top {
			rows = append(rows, []string{
				runewidth.Truncate(escapeCell(a.Title), headlineWidth, "..."),
				fmt.Sprintf("%.1f", a.ImportanceScore),
			})
		}
		writeTable(&b, []string{"Headline", "Importance"}, rows)
	}

	for _, g := range groupByCategory(articles) {
		fmt.Fprintf(&b, "\n## %s (%d articles)\n\n", g.Name, len(g.Articles))
		for _, a := range g.Articles {
			writeArticle(&b, a)
		}
	}
	return b.Bytes(), nil
}

func writeArticle(b *bytes.Buffer, a domain.Article) {
	fmt.Fprintf(b, "### [%s](%s)\n\n", a.Title, a.URL)
	meta := []string{"**" + strings.ToUpper(a.Source) + "**"}
	if date := formatDate(a.PublishedDate); date != "" {
		meta = append(meta, date)
	}
	meta = append(meta,
		titleCase(sentimentLabel(a.SentimentScore)),
		importanceLabel(a.ImportanceScore)+" Priority",
	)
	fmt.Fprintf(b, "%s\n\n", strings.Join(meta, " · "))
	if s := clip(articleSummary(a), summaryClip); s != "" {
		fmt.Fprintf(b, "%s\n\n", s)
	}
}

// writeTable pads cells by display width so wide characters stay aligned.
func writeTable(b *bytes.Buffer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	line := func(cells []string) {
		b.WriteString("|")
		for i, cell := range cells {
			b.WriteString(" " + runewidth.FillRight(cell, widths[i]) + " |")
		}
		b.WriteString("\n")
	}

	line(header)
	b.WriteString("|")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2) + "|")
	}
	b.WriteString("\n")
	for _, row := range rows {
		line(row)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
