package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/orchestrator"
	"github.com/rohmanhakim/magnet-resolver/internal/report"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
	"github.com/rohmanhakim/magnet-resolver/pkg/urlutil"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if strings.TrimSpace(req.LetterboxdURL) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Letterboxd URL is required"})
		return
	}
	listUrl, ok := urlutil.ParseHTTPURL(req.LetterboxdURL)
	if !ok || !urlutil.HostAllowed(listUrl, s.allowedHosts) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Please provide a valid Letterboxd URL"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)
	_ = rc.Flush()

	ctx, cancel := context.WithTimeout(r.Context(), s.listTimeout)
	defer cancel()

	events := make(chan streamEvent)
	stop := make(chan struct{})
	defer close(stop)

	type outcome struct {
		summary orchestrator.BatchSummary
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		listener := &streamListener{events: events, stop: stop}
		summary, err := s.lists.ResolveList(ctx, listUrl, listener)
		done <- outcome{summary: summary, err: err}
	}()

	send := func(event streamEvent) bool {
		if err := writeEvent(w, event); err != nil {
			s.logger.Debug().Err(err).Msg("stream write failed")
			return false
		}
		return rc.Flush() == nil
	}

	for {
		select {
		case event := <-events:
			if !send(event) {
				return
			}
		case out := <-done:
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				send(timeoutEvent(s.listTimeout))
				return
			}
			if out.err != nil {
				s.logger.Warn().Err(out.err).Str("url", listUrl.String()).Msg("list resolution failed")
				send(streamEvent{Type: EventError, Message: listFailureMessage(out.err)})
				return
			}
			send(streamEvent{Type: EventComplete, Summary: totalsOf(out.summary)})
			return
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				send(timeoutEvent(s.listTimeout))
			}
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event streamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

func timeoutEvent(budget time.Duration) streamEvent {
	return streamEvent{Type: EventError, Message: "Request timed out after " + budget.String() + "."}
}

func listFailureMessage(err error) string {
	var extractionErr *orchestrator.ExtractionError
	if errors.As(err, &extractionErr) {
		return "Failed to process Letterboxd list: " + string(extractionErr.Cause)
	}
	return "Failed to process Letterboxd list."
}

func totalsOf(summary orchestrator.BatchSummary) *batchTotals {
	notAttempted := summary.NotAttempted
	if notAttempted == nil {
		notAttempted = []string{}
	}
	return &batchTotals{
		RunID:           summary.RunID,
		Candidates:      len(summary.Candidates),
		Cached:          summary.Cached,
		Fetched:         summary.Fetched,
		Found:           summary.Found,
		Errors:          summary.Errors,
		Timeouts:        summary.Timeouts,
		NotAttempted:    notAttempted,
		DeadlineReached: summary.DeadlineReached,
	}
}

// streamListener hands orchestrator events to the handler goroutine, which
// owns the ResponseWriter. Once the handler has returned, events are dropped.
type streamListener struct {
	events chan<- streamEvent
	stop   <-chan struct{}
}

func (l *streamListener) OnProgress(progress orchestrator.Progress) {
	l.forward(streamEvent{
		Type:       EventProgress,
		Current:    progress.Index,
		Total:      progress.Total,
		MovieTitle: progress.Title,
		Phase:      string(progress.Phase),
	})
}

func (l *streamListener) OnResult(result resolver.FetchResult) {
	movie := report.FromFetchResult(result)
	l.forward(streamEvent{Type: EventMovieFound, Movie: &movie})
}

func (l *streamListener) forward(event streamEvent) {
	select {
	case l.events <- event:
	case <-l.stop:
	}
}
