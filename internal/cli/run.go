package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/rohmanhakim/magnet-resolver/internal/report"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
	"github.com/rohmanhakim/magnet-resolver/pkg/hashutil"
	"github.com/rohmanhakim/magnet-resolver/pkg/timeutil"
	"github.com/rohmanhakim/magnet-resolver/pkg/urlutil"
)

// runList resolves every title on a list page. Per-title failures are part
// of the output; only a list that cannot be read fails the command.
func runList(ctx context.Context, a *app, listUrl url.URL, stdout io.Writer, stderr io.Writer) error {
	if !urlutil.HostAllowed(listUrl, a.cfg.AllowedListHosts()) {
		return fmt.Errorf("list host %q is not allowed (allowed: %s)",
			listUrl.Hostname(), strings.Join(a.cfg.AllowedListHosts(), ", "))
	}

	progress := report.NewProgressWriter(stdout)
	summary, err := a.orchestrator.ResolveList(ctx, listUrl, progress)
	if err != nil {
		return err
	}

	if err := report.WriteSummary(stderr, summary); err != nil {
		return err
	}

	if dir := a.cfg.ReportDir(); dir != "" {
		// failures are recorded by the sink; a missing report does not fail the batch
		if result, writeErr := a.reportSink.Write(dir, summary, hashutil.HashAlgoSHA256); writeErr == nil {
			fmt.Fprintf(stderr, "Report written to %s\n", result.MarkdownPath())
		}
	}

	return progress.Err()
}

// runSingle resolves one title within the per-item budget.
func runSingle(ctx context.Context, a *app, title string, quality string, stdout io.Writer) error {
	itemCtx := context.WithoutCancel(ctx)
	result, err := timeutil.RunWithTimeout(ctx, a.cfg.ItemTimeout(), func() resolver.FetchResult {
		return a.resolver.Resolve(itemCtx, title, quality)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		result = resolver.TimeoutResult(title, a.cfg.ItemTimeout())
	}
	return report.WriteSingle(stdout, result)
}
