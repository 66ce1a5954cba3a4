package server_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/orchestrator"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
	"github.com/rohmanhakim/magnet-resolver/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeSingle struct {
	mu     sync.Mutex
	delay  time.Duration
	result resolver.FetchResult
	title  string
	hint   string
}

func (f *fakeSingle) Resolve(ctx context.Context, title string, qualityHint string) resolver.FetchResult {
	f.mu.Lock()
	f.title = title
	f.hint = qualityHint
	delay := f.delay
	result := f.result
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	result.Title = title
	return result
}

// fakeLists replays a fixed script of events.
type fakeLists struct {
	progress []orchestrator.Progress
	results  []resolver.FetchResult
	summary  orchestrator.BatchSummary
	err      error
	block    bool
	gotUrl   url.URL
}

func (f *fakeLists) ResolveList(ctx context.Context, sourceUrl url.URL, listener orchestrator.Listener) (orchestrator.BatchSummary, error) {
	f.gotUrl = sourceUrl
	for _, p := range f.progress {
		listener.OnProgress(p)
	}
	for _, r := range f.results {
		listener.OnResult(r)
	}
	if f.block {
		<-ctx.Done()
	}
	return f.summary, f.err
}

func newTestServer(single server.SingleResolver, lists server.ListResolver) *server.Server {
	return server.New(zerolog.Nop(), "127.0.0.1:0", single, lists, []string{"letterboxd.com"})
}

// readEvents parses "data: {...}" frames from an event stream body.
func readEvents(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		event := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		events = append(events, event)
	}
	return events
}
