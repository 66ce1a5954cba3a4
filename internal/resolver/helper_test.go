package resolver_test

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/fetcher"
	"github.com/rohmanhakim/magnet-resolver/internal/magnetcache"
	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
	"github.com/rohmanhakim/magnet-resolver/pkg/hashutil"
)

const testTemplate = "https://search.example/search/{query}/0/99/0"

// fakeFetcher serves canned bodies and counts calls.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   []url.URL
	body    string
	err     failure.ClassifiedError
	release chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, param fetcher.FetchParam) (fetcher.Page, failure.ClassifiedError) {
	f.mu.Lock()
	f.calls = append(f.calls, param.URL())
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if f.err != nil {
		return fetcher.Page{}, f.err
	}
	return fetcher.NewPageForTest(param.URL(), []byte(f.body), 200, "text/html"), nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestStore() *magnetcache.Store {
	return magnetcache.NewStore(&metadata.NoopSink{}, magnetcache.NewMemoryKV(), "memory", hashutil.HashAlgoMD5, time.Second)
}

const pageWithMagnet = `<html><body><table>
<tr><td><a href="/torrent/1">Inception (2010) 1080p</a></td><td><a href="magnet:?xt=urn:btih:AAA">get</a></td></tr>
<tr><td><a href="/torrent/2">Inception (2010) 720p</a></td><td><a href="magnet:?xt=urn:btih:BBB">get</a></td></tr>
</table></body></html>`

const pageWithoutMagnet = `<html><body><h2>No hits. Try adding an asterisk</h2></body></html>`
