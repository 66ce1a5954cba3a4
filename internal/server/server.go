package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/orchestrator"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
	"github.com/rs/zerolog"
)

const (
	DefaultSingleTimeout = 30 * time.Second
	DefaultListTimeout   = 180 * time.Second
)

// SingleResolver resolves one title. *resolver.Resolver implements it.
type SingleResolver interface {
	Resolve(ctx context.Context, title string, qualityHint string) resolver.FetchResult
}

// ListResolver runs one batch. *orchestrator.Orchestrator implements it.
type ListResolver interface {
	ResolveList(ctx context.Context, sourceUrl url.URL, listener orchestrator.Listener) (orchestrator.BatchSummary, error)
}

// Server exposes the resolver over HTTP. All requests share one
// SingleResolver, so concurrent requests for the same query join a single
// fetch.
type Server struct {
	logger        zerolog.Logger
	addr          string
	httpServer    *http.Server
	mux           *http.ServeMux
	single        SingleResolver
	lists         ListResolver
	allowedHosts  []string
	singleTimeout time.Duration
	listTimeout   time.Duration

	mu         sync.RWMutex
	actualAddr string
}

func New(
	logger zerolog.Logger,
	addr string,
	single SingleResolver,
	lists ListResolver,
	allowedHosts []string,
) *Server {
	s := &Server{
		logger:        logger,
		addr:          addr,
		mux:           http.NewServeMux(),
		single:        single,
		lists:         lists,
		allowedHosts:  allowedHosts,
		singleTimeout: DefaultSingleTimeout,
		listTimeout:   DefaultListTimeout,
	}
	s.mux.HandleFunc("GET /healthz", HealthzHandler)
	s.mux.HandleFunc("POST /api/magnet/single", s.handleSingle)
	s.mux.HandleFunc("POST /api/magnet/list", s.handleList)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// WithTimeouts overrides the overall per-request bounds.
func (s *Server) WithTimeouts(single time.Duration, list time.Duration) *Server {
	s.singleTimeout = single
	s.listTimeout = list
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured address and serves in a background goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.actualAddr = listener.Addr().String()
	s.mu.Unlock()

	s.logger.Info().Str("address", s.actualAddr).Msg("HTTP server starting to listen")

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Error during HTTP server shutdown.")
		return err
	}
	s.logger.Info().Msg("HTTP server stopped.")
	return nil
}

// Addr returns the address actually bound by Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.actualAddr == "" {
		return s.addr
	}
	return s.actualAddr
}

func HealthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
