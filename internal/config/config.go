package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/build"
	"github.com/rohmanhakim/magnet-resolver/pkg/hashutil"
	"github.com/rohmanhakim/magnet-resolver/pkg/urlutil"
)

const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

const (
	CacheBackendRedis    = "redis"
	CacheBackendSQLite   = "sqlite"
	CacheBackendPostgres = "postgres"
	CacheBackendMySQL    = "mysql"
	CacheBackendMemory   = "memory"
	CacheBackendNone     = "none"
)

const (
	DefaultSearchURLTemplate = "https://thepiratebay.org/search/{query}/0/99/0"
	DefaultSQLiteFile        = "magnet-cache.db"
)

type Config struct {
	//===============
	// Search source
	//===============
	// URL of the search page; {query} is replaced by the path-escaped query.
	searchUrlTemplate string
	// Page fetcher implementation: http or browser.
	fetcher string
	// User agent sent with every page request.
	userAgent string
	// Maximum time a single page load may take.
	pageLoadTimeout time.Duration
	// Extra wait after the list page loaded, for lazily rendered posters. Browser only.
	listSettleDelay time.Duration
	// Upper bound of concurrently open browser tabs, abandoned ones included.
	maxBrowserTabs int

	//===============
	// Batch budget
	//===============
	// Maximum number of titles taken from a list page.
	candidateLimit int
	// Wall-clock budget of the whole fetch phase.
	globalDeadline time.Duration
	// Budget of one item in the fetch phase.
	itemTimeout time.Duration

	//===============
	// Cache
	//===============
	cacheBackend  string
	redisAddr     string
	redisPassword string
	redisDb       int
	// Connection string for sql backends; sqlite falls back to DefaultSQLiteFile.
	cacheDsn       string
	cacheTtl       time.Duration
	cacheKeyDigest hashutil.HashAlgo
	// Bound of one cache backend call.
	cacheOpTimeout time.Duration

	//===============
	// Politeness
	//===============
	// Minimum, fixed waiting time enforced between two search requests to the same host.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// Hosts a list URL may point at. Empty means any host.
	allowedListHosts []string

	//===============
	// Output
	//===============
	logLevel   string
	logFormat  string
	serverAddr string
	// Directory receiving batch reports. Empty disables reports.
	reportDir string
}

// WithDefault creates a new Config with default values for all fields.
func WithDefault() *Config {
	defaultConfig := Config{
		searchUrlTemplate: DefaultSearchURLTemplate,
		fetcher:           FetcherBrowser,
		userAgent:         build.DefaultUserAgent(),
		pageLoadTimeout:   10 * time.Second,
		listSettleDelay:   3 * time.Second,
		maxBrowserTabs:    4,
		candidateLimit:    20,
		globalDeadline:    120 * time.Second,
		itemTimeout:       15 * time.Second,
		cacheBackend:      CacheBackendRedis,
		redisAddr:         "localhost:6379",
		redisPassword:     "",
		redisDb:           0,
		cacheDsn:          "",
		cacheTtl:          24 * time.Hour,
		cacheKeyDigest:    hashutil.HashAlgoMD5,
		cacheOpTimeout:    2 * time.Second,
		baseDelay:         0,
		jitter:            0,
		randomSeed:        time.Now().UnixNano(),
		allowedListHosts:  []string{"letterboxd.com"},
		logLevel:          "info",
		logFormat:         "console",
		serverAddr:        ":8080",
		reportDir:         "",
	}
	return &defaultConfig
}

func (c *Config) WithSearchUrlTemplate(template string) *Config {
	c.searchUrlTemplate = template
	return c
}

func (c *Config) WithFetcher(kind string) *Config {
	c.fetcher = kind
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithPageLoadTimeout(timeout time.Duration) *Config {
	c.pageLoadTimeout = timeout
	return c
}

func (c *Config) WithListSettleDelay(delay time.Duration) *Config {
	c.listSettleDelay = delay
	return c
}

func (c *Config) WithMaxBrowserTabs(tabs int) *Config {
	c.maxBrowserTabs = tabs
	return c
}

func (c *Config) WithCandidateLimit(limit int) *Config {
	c.candidateLimit = limit
	return c
}

func (c *Config) WithGlobalDeadline(deadline time.Duration) *Config {
	c.globalDeadline = deadline
	return c
}

func (c *Config) WithItemTimeout(timeout time.Duration) *Config {
	c.itemTimeout = timeout
	return c
}

func (c *Config) WithCacheBackend(backend string) *Config {
	c.cacheBackend = backend
	return c
}

func (c *Config) WithRedisAddr(addr string) *Config {
	c.redisAddr = addr
	return c
}

func (c *Config) WithRedisPassword(password string) *Config {
	c.redisPassword = password
	return c
}

func (c *Config) WithRedisDb(db int) *Config {
	c.redisDb = db
	return c
}

func (c *Config) WithCacheDsn(dsn string) *Config {
	c.cacheDsn = dsn
	return c
}

func (c *Config) WithCacheTtl(ttl time.Duration) *Config {
	c.cacheTtl = ttl
	return c
}

func (c *Config) WithCacheKeyDigest(algo hashutil.HashAlgo) *Config {
	c.cacheKeyDigest = algo
	return c
}

func (c *Config) WithCacheOpTimeout(timeout time.Duration) *Config {
	c.cacheOpTimeout = timeout
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithAllowedListHosts(hosts []string) *Config {
	c.allowedListHosts = hosts
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithLogFormat(format string) *Config {
	c.logFormat = format
	return c
}

func (c *Config) WithServerAddr(addr string) *Config {
	c.serverAddr = addr
	return c
}

func (c *Config) WithReportDir(dir string) *Config {
	c.reportDir = dir
	return c
}

func (c *Config) Build() (Config, error) {
	if !strings.Contains(c.searchUrlTemplate, urlutil.QueryPlaceholder) {
		return Config{}, fmt.Errorf("%w: searchUrlTemplate must contain %s", ErrInvalidConfig, urlutil.QueryPlaceholder)
	}
	if c.fetcher != FetcherHTTP && c.fetcher != FetcherBrowser {
		return Config{}, fmt.Errorf("%w: unknown fetcher %q", ErrInvalidConfig, c.fetcher)
	}

	durations := map[string]time.Duration{
		"pageLoadTimeout": c.pageLoadTimeout,
		"globalDeadline":  c.globalDeadline,
		"itemTimeout":     c.itemTimeout,
		"cacheTtl":        c.cacheTtl,
		"cacheOpTimeout":  c.cacheOpTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return Config{}, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, d)
		}
	}
	if c.listSettleDelay < 0 || c.baseDelay < 0 || c.jitter < 0 {
		return Config{}, fmt.Errorf("%w: delays cannot be negative", ErrInvalidConfig)
	}

	if c.candidateLimit <= 0 {
		return Config{}, fmt.Errorf("%w: candidateLimit must be positive, got %d", ErrInvalidConfig, c.candidateLimit)
	}
	if c.maxBrowserTabs <= 0 {
		return Config{}, fmt.Errorf("%w: maxBrowserTabs must be positive, got %d", ErrInvalidConfig, c.maxBrowserTabs)
	}

	switch c.cacheBackend {
	case CacheBackendRedis, CacheBackendSQLite, CacheBackendMemory, CacheBackendNone:
	case CacheBackendPostgres, CacheBackendMySQL:
		if c.cacheDsn == "" {
			return Config{}, fmt.Errorf("%w: cacheDsn is required for the %s backend", ErrInvalidConfig, c.cacheBackend)
		}
	default:
		return Config{}, fmt.Errorf("%w: unknown cacheBackend %q", ErrInvalidConfig, c.cacheBackend)
	}

	if !hashutil.IsSupported(c.cacheKeyDigest) {
		return Config{}, fmt.Errorf("%w: unknown cacheKeyDigest %q", ErrInvalidConfig, c.cacheKeyDigest)
	}

	hosts := make([]string, 0, len(c.allowedListHosts))
	for _, h := range c.allowedListHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	c.allowedListHosts = hosts

	return *c, nil
}

func (c Config) SearchUrlTemplate() string {
	return c.searchUrlTemplate
}

func (c Config) Fetcher() string {
	return c.fetcher
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) PageLoadTimeout() time.Duration {
	return c.pageLoadTimeout
}

func (c Config) ListSettleDelay() time.Duration {
	return c.listSettleDelay
}

func (c Config) MaxBrowserTabs() int {
	return c.maxBrowserTabs
}

func (c Config) CandidateLimit() int {
	return c.candidateLimit
}

func (c Config) GlobalDeadline() time.Duration {
	return c.globalDeadline
}

func (c Config) ItemTimeout() time.Duration {
	return c.itemTimeout
}

func (c Config) CacheBackend() string {
	return c.cacheBackend
}

func (c Config) RedisAddr() string {
	return c.redisAddr
}

func (c Config) RedisPassword() string {
	return c.redisPassword
}

func (c Config) RedisDb() int {
	return c.redisDb
}

func (c Config) CacheDsn() string {
	return c.cacheDsn
}

func (c Config) CacheTtl() time.Duration {
	return c.cacheTtl
}

func (c Config) CacheKeyDigest() hashutil.HashAlgo {
	return c.cacheKeyDigest
}

func (c Config) CacheOpTimeout() time.Duration {
	return c.cacheOpTimeout
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) AllowedListHosts() []string {
	hosts := make([]string, len(c.allowedListHosts))
	copy(hosts, c.allowedListHosts)
	return hosts
}

func (c Config) LogLevel() string {
	return c.logLevel
}

func (c Config) LogFormat() string {
	return c.logFormat
}

func (c Config) ServerAddr() string {
	return c.serverAddr
}

func (c Config) ReportDir() string {
	return c.reportDir
}
