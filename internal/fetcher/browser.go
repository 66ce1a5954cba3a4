package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/pkg/failure"
	"golang.org/x/sync/semaphore"
)

/*
BrowserFetcher loads pages in headless Chrome so client-rendered markup is
present in the returned body.

- One browser process is started lazily on first use and shared.
- Every fetch opens its own tab; the tab closes when the fetch returns.
- Open tabs are bounded by a weighted semaphore. A caller that abandoned a
  fetch still holds its tab until the load timeout fires, so the bound keeps
  abandoned loads from piling up.
*/
type BrowserFetcher struct {
	metadataSink metadata.MetadataSink
	userAgent    string
	tabs         *semaphore.Weighted
	execPath     string

	once       sync.Once
	initErr    error
	browserCtx context.Context

	// guards cancel, which an abandoned fetch may still be setting in start
	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewBrowserFetcher(
	metadataSink metadata.MetadataSink,
	userAgent string,
	maxTabs int,
) *BrowserFetcher {
	if maxTabs < 1 {
		maxTabs = 1
	}
	return &BrowserFetcher{
		metadataSink: metadataSink,
		userAgent:    userAgent,
		tabs:         semaphore.NewWeighted(int64(maxTabs)),
	}
}

// WithExecPath pins the Chrome binary instead of searching the usual locations.
func (b *BrowserFetcher) WithExecPath(path string) *BrowserFetcher {
	b.execPath = path
	return b
}

func (b *BrowserFetcher) start() error {
	b.once.Do(func() {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.UserAgent(b.userAgent),
			chromedp.DisableGPU,
			chromedp.NoSandbox,
			chromedp.WindowSize(1280, 1024),
		)
		if b.execPath != "" {
			opts = append(opts, chromedp.ExecPath(b.execPath))
		}

		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// the first Run launches the browser process
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			b.initErr = err
			return
		}

		b.browserCtx = browserCtx
		b.mu.Lock()
		b.cancel = func() {
			browserCancel()
			allocCancel()
		}
		b.mu.Unlock()
	})
	return b.initErr
}

func (b *BrowserFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
) (Page, failure.ClassifiedError) {
	callerMethod := "BrowserFetcher.Fetch"
	startTime := time.Now()

	page, err := b.performFetch(ctx, fetchParam)

	var statusCode int
	if err == nil {
		statusCode = page.Code()
	}
	b.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		time.Since(startTime),
		page.SizeByte(),
	)

	if err != nil {
		recordFetchError(b.metadataSink, callerMethod, fetchParam.fetchUrl, err)
		return Page{}, err
	}
	return page, nil
}

func (b *BrowserFetcher) performFetch(ctx context.Context, fetchParam FetchParam) (Page, failure.ClassifiedError) {
	if err := b.start(); err != nil {
		return Page{}, &FetchError{
			Message:   fmt.Sprintf("failed to start browser: %v", err),
			Retryable: false,
			Cause:     ErrCauseBrowserFailure,
		}
	}

	budget := fetchParam.loadTimeout + fetchParam.settleDelay
	loadCtx := ctx
	if fetchParam.loadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	if err := b.tabs.Acquire(loadCtx, 1); err != nil {
		return Page{}, contextFailure(loadCtx, "no browser tab became available")
	}
	defer b.tabs.Release(1)

	tabCtx, closeTab := chromedp.NewContext(b.browserCtx)
	defer closeTab()
	if deadline, ok := loadCtx.Deadline(); ok {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithDeadline(tabCtx, deadline)
		defer cancel()
	}
	stop := context.AfterFunc(loadCtx, closeTab)
	defer stop()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(fetchParam.fetchUrl.String()))
	if err != nil {
		return Page{}, b.classifyRunError(loadCtx, tabCtx, fetchParam.fetchUrl, err)
	}

	statusCode := 0
	contentType := ""
	if resp != nil {
		statusCode = int(resp.Status)
		contentType = resp.MimeType
	}
	if statusErr := classifyStatus(statusCode); statusErr != nil {
		return Page{}, statusErr
	}
	if contentType != "" && !isHTMLContent(contentType) {
		return Page{}, &FetchError{
			Message:   fmt.Sprintf("non-HTML content type: %s", contentType),
			Retryable: false,
			Cause:     ErrCauseContentTypeInvalid,
		}
	}

	actions := []chromedp.Action{
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if fetchParam.settleDelay > 0 {
		actions = append(actions, chromedp.Sleep(fetchParam.settleDelay))
	}
	var outerHTML string
	actions = append(actions, chromedp.OuterHTML("html", &outerHTML, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return Page{}, b.classifyRunError(loadCtx, tabCtx, fetchParam.fetchUrl, err)
	}

	return Page{
		url:         fetchParam.fetchUrl,
		body:        []byte(outerHTML),
		statusCode:  statusCode,
		contentType: "text/html",
	}, nil
}

func (b *BrowserFetcher) classifyRunError(loadCtx, tabCtx context.Context, fetchUrl url.URL, err error) *FetchError {
	if loadCtx.Err() != nil {
		return contextFailure(loadCtx, fmt.Sprintf("page load of %s aborted: %v", fetchUrl.String(), err))
	}
	if tabCtx.Err() != nil {
		return &FetchError{
			Message:   fmt.Sprintf("page load timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	}
	return &FetchError{
		Message:   fmt.Sprintf("page load failed: %v", err),
		Retryable: true,
		Cause:     ErrCauseBrowserFailure,
	}
}

// Close shuts the browser down. Fetches after Close fail.
func (b *BrowserFetcher) Close() {
	b.once.Do(func() {
		b.initErr = fmt.Errorf("browser fetcher closed")
	})
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
