package cmd

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rohmanhakim/magnet-resolver/internal/config"
	"github.com/rohmanhakim/magnet-resolver/internal/fetcher"
	"github.com/rohmanhakim/magnet-resolver/internal/magnetcache"
	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/rohmanhakim/magnet-resolver/internal/orchestrator"
	"github.com/rohmanhakim/magnet-resolver/internal/resolver"
	"github.com/rohmanhakim/magnet-resolver/internal/storage"
	"github.com/rohmanhakim/magnet-resolver/pkg/limiter"
	"github.com/rs/zerolog"
)

// app holds the wired components of one process.
type app struct {
	cfg          config.Config
	logger       zerolog.Logger
	recorder     *metadata.Recorder
	store        *magnetcache.Store
	pageFetcher  fetcher.PageFetcher
	closeFetcher func()
	resolver     *resolver.Resolver
	orchestrator *orchestrator.Orchestrator
	reportSink   storage.LocalSink
}

func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	logger, err := metadata.NewLogger(logOut, cfg.LogLevel(), cfg.LogFormat())
	if err != nil {
		return nil, err
	}
	recorder := metadata.NewRecorder(logger, uuid.NewString())

	store := magnetcache.Open(ctx, cfg, &recorder)

	var pageFetcher fetcher.PageFetcher
	closeFetcher := func() {}
	switch cfg.Fetcher() {
	case config.FetcherBrowser:
		browser := fetcher.NewBrowserFetcher(&recorder, cfg.UserAgent(), cfg.MaxBrowserTabs())
		pageFetcher = browser
		closeFetcher = browser.Close
	default:
		pageFetcher = fetcher.NewHtmlFetcher(&recorder, cfg.UserAgent())
	}

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())

	itemResolver := resolver.NewResolver(
		&recorder,
		store,
		pageFetcher,
		rateLimiter,
		resolver.NewResolveParam(cfg.SearchUrlTemplate(), cfg.PageLoadTimeout(), cfg.CacheTtl()),
	)

	batchOrchestrator := orchestrator.NewOrchestrator(
		&recorder,
		&recorder,
		pageFetcher,
		store,
		itemResolver,
		orchestrator.NewBatchParam(
			cfg.CandidateLimit(),
			cfg.GlobalDeadline(),
			cfg.ItemTimeout(),
			cfg.PageLoadTimeout(),
			cfg.ListSettleDelay(),
		),
	)

	logger.Debug().
		Str("run_id", recorder.RunId()).
		Str("fetcher", cfg.Fetcher()).
		Str("cache_backend", store.Backend()).
		Msg("components wired")

	return &app{
		cfg:          cfg,
		logger:       logger,
		recorder:     &recorder,
		store:        store,
		pageFetcher:  pageFetcher,
		closeFetcher: closeFetcher,
		resolver:     itemResolver,
		orchestrator: batchOrchestrator,
		reportSink:   storage.NewLocalSink(&recorder),
	}, nil
}

func (a *app) Close() {
	a.closeFetcher()
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close cache")
	}
}
