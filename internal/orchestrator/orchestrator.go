package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/magnet-resolver/internal/docquery"
	"github.com/rohmanhakim/magnet-resolver/internal/fetcher"
	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
	"github.com/rohmanhakim/magnet-resolver/pkg/timeutil"
)

/*
 Orchestrator is the sole control-plane authority of a batch.

 Phases:
 - Extract: load the list page once and take up to candidateLimit titles.
 - Partition: look every title up in the cache, without fetching. Hits are
   emitted right away in list order; misses queue up in list order.
 - Fetch: resolve the queue one title at a time. Before each title the
   caller's context and the global deadline are checked; once either
   stops the phase, the remaining titles are reported as not attempted
   and never emitted. Each title races its own timer; when the timer wins
   a timeout result is emitted and the late result is dropped.

 Ordering guarantees:
 - Exactly one result per attempted candidate.
 - Cache hits come first in discovery order, then fetch results in fetch order.

 Metadata emission is observational only and MUST NOT influence
 continuation or termination.
*/

type Orchestrator struct {
	metadataSink   metadata.MetadataSink
	batchFinalizer metadata.BatchFinalizer
	pageFetcher    fetcher.PageFetcher
	store          resolver.CacheStore
	itemResolver   ItemResolver
	param          BatchParam
	newRunId       func() string
}

func NewOrchestrator(
	metadataSink metadata.MetadataSink,
	batchFinalizer metadata.BatchFinalizer,
	pageFetcher fetcher.PageFetcher,
	store resolver.CacheStore,
	itemResolver ItemResolver,
	param BatchParam,
) *Orchestrator {
	return &Orchestrator{
		metadataSink:   metadataSink,
		batchFinalizer: batchFinalizer,
		pageFetcher:    pageFetcher,
		store:          store,
		itemResolver:   itemResolver,
		param:          param,
		newRunId:       uuid.NewString,
	}
}

func (o *Orchestrator) ResolveList(
	ctx context.Context,
	sourceUrl url.URL,
	listener Listener,
) (BatchSummary, error) {
	startTime := time.Now()
	summary := BatchSummary{
		RunID:     o.newRunId(),
		SourceURL: sourceUrl.String(),
	}

	candidates, err := o.extract(ctx, sourceUrl)
	if err != nil {
		return summary, err
	}
	summary.Candidates = candidates
	listener.OnProgress(Progress{Phase: PhaseListLoaded, Total: len(candidates)})

	if len(candidates) > 0 {
		uncached := o.partition(ctx, candidates, listener, &summary)
		if len(uncached) > 0 {
			o.fetchPhase(ctx, uncached, listener, &summary)
		}
	}

	summary.Duration = time.Since(startTime)
	o.batchFinalizer.RecordFinalBatchStats(summary.SourceURL, summary.Stats(), summary.Duration)
	return summary, nil
}

func (o *Orchestrator) extract(ctx context.Context, sourceUrl url.URL) ([]Candidate, error) {
	fetchParam := fetcher.NewFetchParam(sourceUrl, o.param.listLoadTimeout).
		WithSettleDelay(o.param.listSettleDelay)

	page, fetchErr := o.pageFetcher.Fetch(ctx, fetchParam)
	if fetchErr != nil {
		extractionErr := &ExtractionError{
			Message:   fetchErr.Error(),
			Retryable: true,
			Cause:     ErrCauseListFetchFailed,
			SourceURL: sourceUrl.String(),
			Err:       fetchErr,
		}
		o.recordExtractionError(extractionErr, "")
		return nil, extractionErr
	}

	doc, parseErr := docquery.Parse(page.Body())
	if parseErr != nil {
		extractionErr := &ExtractionError{
			Message:   parseErr.Error(),
			Retryable: false,
			Cause:     ErrCauseListUnparsable,
			SourceURL: sourceUrl.String(),
			Err:       parseErr,
		}
		o.recordExtractionError(extractionErr, docquery.Excerpt(page.Body(), docquery.DefaultExcerptRunes))
		return nil, extractionErr
	}

	refs := docquery.ExtractCandidates(doc, o.param.candidateLimit)
	candidates := make([]Candidate, 0, len(refs))
	for i, ref := range refs {
		candidates = append(candidates, Candidate{
			Title:    ref.Title,
			Position: i + 1,
		})
	}
	return candidates, nil
}

// partition emits cache hits and returns the misses in list order.
func (o *Orchestrator) partition(
	ctx context.Context,
	candidates []Candidate,
	listener Listener,
	summary *BatchSummary,
) []Candidate {
	var uncached []Candidate
	for i, candidate := range candidates {
		listener.OnProgress(Progress{
			Phase: PhaseCacheCheck,
			Index: i + 1,
			Total: len(candidates),
			Title: candidate.Title,
		})

		entry, ok := o.store.Lookup(ctx, o.store.Key(candidate.Title))
		if !ok {
			uncached = append(uncached, candidate)
			continue
		}
		o.emit(listener, summary, resolver.FetchResult{
			Title:      candidate.Title,
			Identifier: entry.Identifier,
			Found:      entry.Found(),
			Status:     resolver.StatusCached,
		}, 0)
	}

	listener.OnProgress(Progress{
		Phase: PhaseCacheCheckDone,
		Index: summary.Cached,
		Total: len(uncached),
	})
	return uncached
}

func (o *Orchestrator) fetchPhase(
	ctx context.Context,
	uncached []Candidate,
	listener Listener,
	summary *BatchSummary,
) {
	phaseStart := time.Now()
	// the in-flight item is allowed to finish; cancellation is checked between items
	itemCtx := context.WithoutCancel(ctx)

	for i, candidate := range uncached {
		if ctx.Err() != nil {
			summary.Canceled = true
			summary.NotAttempted = titlesOf(uncached[i:])
			return
		}
		if time.Since(phaseStart) >= o.param.globalDeadline {
			summary.DeadlineReached = true
			summary.NotAttempted = titlesOf(uncached[i:])
			listener.OnProgress(Progress{
				Phase: PhaseDeadlineReached,
				Index: i,
				Total: len(uncached),
			})
			return
		}

		listener.OnProgress(Progress{
			Phase: PhaseFetching,
			Index: i + 1,
			Total: len(uncached),
			Title: candidate.Title,
		})

		itemStart := time.Now()
		result, err := timeutil.RunWithTimeout(itemCtx, o.param.itemTimeout, func() resolver.FetchResult {
			return o.itemResolver.Resolve(itemCtx, candidate.Title, "")
		})
		if err != nil {
			o.recordTimeout(candidate.Title, err)
			result = resolver.TimeoutResult(candidate.Title, o.param.itemTimeout)
		}
		o.emit(listener, summary, result, time.Since(itemStart))
	}
}

func (o *Orchestrator) emit(listener Listener, summary *BatchSummary, result resolver.FetchResult, duration time.Duration) {
	summary.add(result)
	o.metadataSink.RecordItemOutcome(result.Title, string(result.Status), duration)
	listener.OnResult(result)
}

func (o *Orchestrator) recordExtractionError(err *ExtractionError, excerpt string) {
	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, err.SourceURL),
	}
	if excerpt != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrExcerpt, excerpt))
	}
	o.metadataSink.RecordError(
		time.Now(),
		"orchestrator",
		"Orchestrator.ResolveList",
		mapExtractionErrorToMetadataCause(err),
		err.Error(),
		attrs,
	)
}

func (o *Orchestrator) recordTimeout(title string, err error) {
	detail := fmt.Sprintf("no result within %v", o.param.itemTimeout)
	if !errors.Is(err, timeutil.ErrTimedOut) {
		detail = err.Error()
	}
	o.metadataSink.RecordError(
		time.Now(),
		"orchestrator",
		"Orchestrator.fetchPhase",
		metadata.CauseTimeout,
		detail,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrTitle, title),
		},
	)
}

func titlesOf(candidates []Candidate) []string {
	titles := make([]string, 0, len(candidates))
	for _, c := range candidates {
		titles = append(titles, c.Title)
	}
	return titles
}
