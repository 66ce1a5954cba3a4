package cmd_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	cmd "github.com/rohmanhakim/magnet-resolver/internal/cli"
)

func init() {
	color.NoColor = true
}

// sourceSite serves a list page and search result pages from one host.
type sourceSite struct {
	mu       sync.Mutex
	server   *httptest.Server
	list     []string
	magnets  map[string]string
	searches []string
}

func newSourceSite(t *testing.T, list []string, magnets map[string]string) *sourceSite {
	t.Helper()
	site := &sourceSite{list: list, magnets: magnets}
	mux := http.NewServeMux()
	mux.HandleFunc("/list/", site.serveList)
	mux.HandleFunc("/search/", site.serveSearch)
	site.server = httptest.NewServer(mux)
	t.Cleanup(site.server.Close)
	return site
}

func (s *sourceSite) serveList(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString(`<html><body><ul>`)
	for _, title := range s.list {
		fmt.Fprintf(&b, `<li class="poster-container"><img alt="Poster for %s"></li>`, title)
	}
	b.WriteString(`</ul></body></html>`)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (s *sourceSite) serveSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/search/"), "/", 2)[0]
	s.mu.Lock()
	s.searches = append(s.searches, query)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if magnet, ok := s.magnets[query]; ok {
		fmt.Fprintf(w, `<html><body><a href="%s">get</a></body></html>`, magnet)
		return
	}
	_, _ = w.Write([]byte(`<html><body><h2>No hits.</h2></body></html>`))
}

func (s *sourceSite) searchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.searches)
}

func (s *sourceSite) baseArgs() []string {
	return []string{
		"--fetcher", "http",
		"--cache-backend", "memory",
		"--search-url-template", s.server.URL + "/search/{query}/0/99/0",
		"--allowed-list-hosts", "127.0.0.1",
		"--log-level", "error",
		"--log-format", "json",
	}
}

// execute runs a fresh command tree and captures both streams.
func execute(args ...string) (string, string, error) {
	root := cmd.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
