package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rohmanhakim/magnet-resolver/internal/orchestrator"
)

// WriteSummary renders the per-title results table followed by the batch
// totals and any titles the batch never reached.
func WriteSummary(w io.Writer, summary orchestrator.BatchSummary) error {
	if len(summary.Results) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"#", "Title", "Status", "Magnet"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignLeft
		})

		data := make([][]string, 0, len(summary.Results))
		for i, result := range summary.Results {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				result.Title,
				string(result.Status),
				shortMagnet(result.Identifier),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w,
		"📊 %d candidates: %d cached, %d fetched, %d found, %d errors, %d timeouts in %s\n",
		len(summary.Candidates),
		summary.Cached,
		summary.Fetched,
		summary.Found,
		summary.Errors,
		summary.Timeouts,
		summary.Duration.Round(100*time.Millisecond),
	); err != nil {
		return err
	}

	if len(summary.NotAttempted) == 0 {
		return nil
	}
	reason := "deadline reached"
	if summary.Canceled {
		reason = "canceled"
	}
	if _, err := fmt.Fprintf(w, "Not attempted (%s):\n", reason); err != nil {
		return err
	}
	for _, title := range summary.NotAttempted {
		if _, err := fmt.Fprintf(w, "  - %s\n", title); err != nil {
			return err
		}
	}
	return nil
}

const magnetPreviewRunes = 48

// shortMagnet keeps the table narrow; the full link is on the result line.
func shortMagnet(link string) string {
	if link == "" {
		return "-"
	}
	runes := []rune(link)
	if len(runes) <= magnetPreviewRunes {
		return link
	}
	return string(runes[:magnetPreviewRunes]) + "…"
}
