package orchestrator

import (
	"context"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
)

// Candidate is one title taken from a list page. Position is 1-based
// document order.
type Candidate struct {
	Title    string
	Position int
}

type Phase string

const (
	// Total is the number of candidates found on the page.
	PhaseListLoaded Phase = "list_loaded"
	// Index/Total/Title describe the candidate being looked up.
	PhaseCacheCheck Phase = "cache_check"
	// Index is the number of hits, Total the number of titles left to fetch.
	PhaseCacheCheckDone Phase = "cache_check_done"
	// Index/Total/Title describe the title being fetched.
	PhaseFetching Phase = "fetching"
	// Index is the number of titles fetched before the budget ran out.
	PhaseDeadlineReached Phase = "deadline_reached"
)

type Progress struct {
	Phase Phase
	Index int
	Total int
	Title string
}

// Listener receives events in the order they happen, on the caller's goroutine.
type Listener interface {
	OnProgress(progress Progress)
	OnResult(result resolver.FetchResult)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Progress func(progress Progress)
	Result   func(result resolver.FetchResult)
}

func (l ListenerFuncs) OnProgress(progress Progress) {
	if l.Progress != nil {
		l.Progress(progress)
	}
}

func (l ListenerFuncs) OnResult(result resolver.FetchResult) {
	if l.Result != nil {
		l.Result(result)
	}
}

// ItemResolver resolves a single title. *resolver.Resolver implements it.
type ItemResolver interface {
	Resolve(ctx context.Context, title string, qualityHint string) resolver.FetchResult
}

// BatchSummary is the terminal record of one list resolution.
type BatchSummary struct {
	RunID      string
	SourceURL  string
	Candidates []Candidate
	// Results holds every emitted result in emission order.
	Results      []resolver.FetchResult
	Cached       int
	Fetched      int
	Found        int
	Errors       int
	Timeouts     int
	NotAttempted []string
	// DeadlineReached is set when the global budget stopped the fetch phase.
	DeadlineReached bool
	// Canceled is set when the caller stopped the batch.
	Canceled bool
	Duration time.Duration
}

func (s *BatchSummary) add(result resolver.FetchResult) {
	s.Results = append(s.Results, result)
	switch result.Status {
	case resolver.StatusCached:
		s.Cached++
	case resolver.StatusFetched:
		s.Fetched++
	case resolver.StatusError:
		s.Errors++
	case resolver.StatusTimeout:
		s.Timeouts++
	}
	if result.Found {
		s.Found++
	}
}

func (s BatchSummary) Stats() metadata.BatchStats {
	return metadata.BatchStats{
		Candidates:   len(s.Candidates),
		Cached:       s.Cached,
		Fetched:      s.Fetched,
		Found:        s.Found,
		Errors:       s.Errors,
		Timeouts:     s.Timeouts,
		NotAttempted: len(s.NotAttempted),
	}
}

type BatchParam struct {
	candidateLimit  int
	globalDeadline  time.Duration
	itemTimeout     time.Duration
	listLoadTimeout time.Duration
	listSettleDelay time.Duration
}

func NewBatchParam(
	candidateLimit int,
	globalDeadline time.Duration,
	itemTimeout time.Duration,
	listLoadTimeout time.Duration,
	listSettleDelay time.Duration,
) BatchParam {
	return BatchParam{
		candidateLimit:  candidateLimit,
		globalDeadline:  globalDeadline,
		itemTimeout:     itemTimeout,
		listLoadTimeout: listLoadTimeout,
		listSettleDelay: listSettleDelay,
	}
}

func (p BatchParam) ItemTimeout() time.Duration {
	return p.itemTimeout
}
