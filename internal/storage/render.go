package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rohmanhakim/magnet-resolver/internal/orchestrator"
)

// renderMarkdown lays a batch out as a results table. Output depends only on
// the summary and generatedAt, so reruns over the same data are byte-identical.
func renderMarkdown(summary orchestrator.BatchSummary, generatedAt time.Time) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Magnet report\n\n")
	fmt.Fprintf(&b, "- Source: <%s>\n", summary.SourceURL)
	if summary.RunID != "" {
		fmt.Fprintf(&b, "- Run: `%s`\n", summary.RunID)
	}
	fmt.Fprintf(&b, "- Generated: %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Candidates: %d (cached %d, fetched %d, found %d, errors %d, timeouts %d)\n\n",
		len(summary.Candidates),
		summary.Cached,
		summary.Fetched,
		summary.Found,
		summary.Errors,
		summary.Timeouts,
	)

	if len(summary.Results) > 0 {
		b.WriteString("| # | Title | Status | Magnet |\n")
		b.WriteString("|---|---|---|---|\n")
		for i, result := range summary.Results {
			magnet := "-"
			if result.Found {
				magnet = "[link](" + result.Identifier + ")"
			} else if result.ErrorDetail != "" {
				magnet = escapeCell(result.ErrorDetail)
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, escapeCell(result.Title), result.Status, magnet)
		}
		b.WriteString("\n")
	}

	if len(summary.NotAttempted) > 0 {
		b.WriteString("## Not attempted\n\n")
		for _, title := range summary.NotAttempted {
			fmt.Fprintf(&b, "- %s\n", title)
		}
		b.WriteString("\n")
	}

	return []byte(b.String())
}

func renderHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
		Title: "Magnet report",
	})
	return markdown.ToHTML(md, p, renderer)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
