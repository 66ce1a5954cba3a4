package orchestrator_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/fetcher"
	"github.com/rohmanhakim/magnet-resolver/internal/magnetcache"
	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/internal/orchestrator"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
	"github.com/rohmanhakim/magnet-resolver/pkg/hashutil"
)

func listPage(titles ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><ul class="poster-list">`)
	for _, title := range titles {
		fmt.Fprintf(&b, `<li class="poster-container"><div class="film-poster"><img alt=%q src="p.jpg"></div></li>`, title)
	}
	b.WriteString(`</ul></body></html>`)
	return b.String()
}

// listFetcher serves a single list page.
type listFetcher struct {
	body  string
	err   failure.ClassifiedError
	calls int
	last  fetcher.FetchParam
}

func (f *listFetcher) Fetch(ctx context.Context, param fetcher.FetchParam) (fetcher.Page, failure.ClassifiedError) {
	f.calls++
	f.last = param
	if f.err != nil {
		return fetcher.Page{}, f.err
	}
	return fetcher.NewPageForTest(param.URL(), []byte(f.body), 200, "text/html"), nil
}

type scripted struct {
	delay  time.Duration
	result resolver.FetchResult
}

// scriptedResolver answers per title after an optional delay.
type scriptedResolver struct {
	mu     sync.Mutex
	script map[string]scripted
	calls  []string
}

func newScriptedResolver() *scriptedResolver {
	return &scriptedResolver{script: map[string]scripted{}}
}

func (r *scriptedResolver) on(title string, delay time.Duration, status resolver.Status, link string) {
	r.script[title] = scripted{
		delay: delay,
		result: resolver.FetchResult{
			Title:      title,
			Identifier: link,
			Found:      link != "",
			Status:     status,
		},
	}
}

func (r *scriptedResolver) Resolve(ctx context.Context, title string, qualityHint string) resolver.FetchResult {
	r.mu.Lock()
	r.calls = append(r.calls, title)
	s, ok := r.script[title]
	r.mu.Unlock()

	if !ok {
		return resolver.FetchResult{Title: title, Status: resolver.StatusFetched}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.result
}

func (r *scriptedResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// recordingListener keeps every event.
type recordingListener struct {
	mu       sync.Mutex
	results  []resolver.FetchResult
	progress []orchestrator.Progress
	onResult func(resolver.FetchResult)
}

func (l *recordingListener) OnProgress(p orchestrator.Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress = append(l.progress, p)
}

func (l *recordingListener) OnResult(r resolver.FetchResult) {
	l.mu.Lock()
	l.results = append(l.results, r)
	hook := l.onResult
	l.mu.Unlock()
	if hook != nil {
		hook(r)
	}
}

func (l *recordingListener) resultCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.results)
}

func (l *recordingListener) titles() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	titles := make([]string, 0, len(l.results))
	for _, r := range l.results {
		titles = append(titles, r.Title)
	}
	return titles
}

func (l *recordingListener) phases(phase orchestrator.Phase) []orchestrator.Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []orchestrator.Progress
	for _, p := range l.progress {
		if p.Phase == phase {
			out = append(out, p)
		}
	}
	return out
}

// spyFinalizer counts terminal records.
type spyFinalizer struct {
	metadata.NoopSink
	mu     sync.Mutex
	calls  int
	stats  metadata.BatchStats
	errors []metadata.ErrorCause
	attrs  [][]metadata.Attribute
}

func (s *spyFinalizer) RecordFinalBatchStats(sourceUrl string, stats metadata.BatchStats, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.stats = stats
}

func (s *spyFinalizer) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, cause)
	s.attrs = append(s.attrs, attrs)
}

func newTestStore() *magnetcache.Store {
	return magnetcache.NewStore(&metadata.NoopSink{}, magnetcache.NewMemoryKV(), "memory", hashutil.HashAlgoMD5, time.Second)
}

func seed(store *magnetcache.Store, title string, link string) {
	_ = store.Save(context.Background(), store.Key(title), magnetcache.CacheEntry{Query: title, Identifier: link}, time.Hour)
}
