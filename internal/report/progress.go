package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/rohmanhakim/magnet-resolver/internal/orchestrator"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
)

/*
ProgressWriter streams a batch as plain text lines.

Result lines carry the MOVIE_RESULT prefix followed by one JSON object;
every other line is informational and may change wording between releases.
*/
type ProgressWriter struct {
	mu  sync.Mutex
	out io.Writer
	err error
}

func NewProgressWriter(out io.Writer) *ProgressWriter {
	return &ProgressWriter{out: out}
}

// Err returns the first write error, if any.
func (p *ProgressWriter) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *ProgressWriter) OnProgress(progress orchestrator.Progress) {
	switch progress.Phase {
	case orchestrator.PhaseListLoaded:
		if progress.Total == 0 {
			p.println("No movie posters found.")
			return
		}
		p.printf("Found %d movies to process\n", progress.Total)
	case orchestrator.PhaseCacheCheck:
		if progress.Index == 1 {
			p.println("🔍 First pass: Checking cache for all movies...")
		}
		p.printf("Checking cache %d/%d: %s\n", progress.Index, progress.Total, progress.Title)
	case orchestrator.PhaseCacheCheckDone:
		p.printf("✅ Cache check complete: %d cached, %d need fetching\n", progress.Index, progress.Total)
		if progress.Total == 0 {
			p.println("🎉 All movies were cached! No online fetching needed.")
			return
		}
		p.printf("🌐 Second pass: Fetching %d movies online...\n", progress.Total)
	case orchestrator.PhaseFetching:
		p.printf("Processing movie %d/%d: %s\n", progress.Index, progress.Total, progress.Title)
	case orchestrator.PhaseDeadlineReached:
		p.printf("Total timeout reached. Processed %d of %d uncached movies.\n", progress.Index, progress.Total)
	}
}

func (p *ProgressWriter) OnResult(result resolver.FetchResult) {
	line, err := ResultLine(result)
	if err != nil {
		p.fail(err)
		return
	}
	p.println(line)

	switch result.Status {
	case resolver.StatusTimeout:
		p.printf("⏰ Timeout for %s (%s)\n", result.Title, result.ErrorDetail)
	case resolver.StatusError:
		p.printf("🔥 Error for %s: %s\n", result.Title, result.ErrorDetail)
	}
}

func (p *ProgressWriter) println(line string) {
	p.printf("%s\n", line)
}

func (p *ProgressWriter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return
	}
	if _, err := fmt.Fprintf(p.out, format, args...); err != nil {
		p.err = err
	}
}

func (p *ProgressWriter) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}
