package fetcher

import (
	"net/url"
	"time"
)

type FetchParam struct {
	fetchUrl    url.URL
	loadTimeout time.Duration
	settleDelay time.Duration
}

func NewFetchParam(fetchUrl url.URL, loadTimeout time.Duration) FetchParam {
	return FetchParam{
		fetchUrl:    fetchUrl,
		loadTimeout: loadTimeout,
	}
}

// WithSettleDelay asks the fetcher to wait after the document loaded so
// client-side rendering can finish. Fetchers without a renderer ignore it.
func (p FetchParam) WithSettleDelay(d time.Duration) FetchParam {
	p.settleDelay = d
	return p
}

func (p FetchParam) URL() url.URL {
	return p.fetchUrl
}

func (p FetchParam) LoadTimeout() time.Duration {
	return p.loadTimeout
}

func (p FetchParam) SettleDelay() time.Duration {
	return p.settleDelay
}

// Page is the raw outcome of a successful page load.
type Page struct {
	url         url.URL
	body        []byte
	statusCode  int
	contentType string
}

func (p *Page) URL() url.URL {
	return p.url
}

func (p *Page) Body() []byte {
	return p.body
}

func (p *Page) Code() int {
	return p.statusCode
}

func (p *Page) ContentType() string {
	return p.contentType
}

func (p *Page) SizeByte() int {
	return len(p.body)
}

// NewPageForTest creates a Page for testing purposes.
// This allows test packages to construct Page values without
// accessing unexported fields directly.
func NewPageForTest(
	pageUrl url.URL,
	body []byte,
	statusCode int,
	contentType string,
) Page {
	return Page{
		url:         pageUrl,
		body:        body,
		statusCode:  statusCode,
		contentType: contentType,
	}
}
