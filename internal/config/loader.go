package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rohmanhakim/magnet-resolver/pkg/hashutil"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "MAGNET_RESOLVER"

// Key names as they appear in config files. Flags use the kebab-case form,
// environment variables the upper snake-case form with EnvPrefix.
const (
	KeySearchUrlTemplate = "searchUrlTemplate"
	KeyFetcher           = "fetcher"
	KeyUserAgent         = "userAgent"
	KeyPageLoadTimeout   = "pageLoadTimeout"
	KeyListSettleDelay   = "listSettleDelay"
	KeyMaxBrowserTabs    = "maxBrowserTabs"
	KeyCandidateLimit    = "candidateLimit"
	KeyGlobalDeadline    = "globalDeadline"
	KeyItemTimeout       = "itemTimeout"
	KeyCacheBackend      = "cacheBackend"
	KeyRedisAddr         = "redisAddr"
	KeyRedisPassword     = "redisPassword"
	KeyRedisDb           = "redisDb"
	KeyCacheDsn          = "cacheDsn"
	KeyCacheTtl          = "cacheTtl"
	KeyCacheKeyDigest    = "cacheKeyDigest"
	KeyCacheOpTimeout    = "cacheOpTimeout"
	KeyBaseDelay         = "baseDelay"
	KeyJitter            = "jitter"
	KeyRandomSeed        = "randomSeed"
	KeyAllowedListHosts  = "allowedListHosts"
	KeyLogLevel          = "logLevel"
	KeyLogFormat         = "logFormat"
	KeyServerAddr        = "serverAddr"
	KeyReportDir         = "reportDir"
)

var allKeys = []string{
	KeySearchUrlTemplate, KeyFetcher, KeyUserAgent, KeyPageLoadTimeout,
	KeyListSettleDelay, KeyMaxBrowserTabs, KeyCandidateLimit, KeyGlobalDeadline,
	KeyItemTimeout, KeyCacheBackend, KeyRedisAddr, KeyRedisPassword, KeyRedisDb,
	KeyCacheDsn, KeyCacheTtl, KeyCacheKeyDigest, KeyCacheOpTimeout, KeyBaseDelay,
	KeyJitter, KeyRandomSeed, KeyAllowedListHosts, KeyLogLevel, KeyLogFormat,
	KeyServerAddr, KeyReportDir,
}

// FlagName converts a config key into its command-line flag name,
// e.g. itemTimeout -> item-timeout.
func FlagName(key string) string {
	return strings.ToLower(splitCamel(key, "-"))
}

// EnvName converts a config key into its environment variable,
// e.g. itemTimeout -> MAGNET_RESOLVER_ITEM_TIMEOUT.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(splitCamel(key, "_"))
}

func splitCamel(key string, sep string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// WithConfigFile reads a YAML, JSON or TOML file on top of the defaults.
func WithConfigFile(path string) (Config, error) {
	return Load(path, nil)
}

// Load merges, lowest to highest precedence: defaults, the config file
// (when path is not empty), MAGNET_RESOLVER_* environment variables and
// the flags of flags that were explicitly set.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	for _, key := range allKeys {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
	}

	if flags != nil {
		for _, key := range allKeys {
			flag := flags.Lookup(FlagName(key))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
			}
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
			}
			return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	d := WithDefault()
	v.SetDefault(KeySearchUrlTemplate, d.searchUrlTemplate)
	v.SetDefault(KeyFetcher, d.fetcher)
	v.SetDefault(KeyUserAgent, d.userAgent)
	v.SetDefault(KeyPageLoadTimeout, d.pageLoadTimeout)
	v.SetDefault(KeyListSettleDelay, d.listSettleDelay)
	v.SetDefault(KeyMaxBrowserTabs, d.maxBrowserTabs)
	v.SetDefault(KeyCandidateLimit, d.candidateLimit)
	v.SetDefault(KeyGlobalDeadline, d.globalDeadline)
	v.SetDefault(KeyItemTimeout, d.itemTimeout)
	v.SetDefault(KeyCacheBackend, d.cacheBackend)
	v.SetDefault(KeyRedisAddr, d.redisAddr)
	v.SetDefault(KeyRedisPassword, d.redisPassword)
	v.SetDefault(KeyRedisDb, d.redisDb)
	v.SetDefault(KeyCacheDsn, d.cacheDsn)
	v.SetDefault(KeyCacheTtl, d.cacheTtl)
	v.SetDefault(KeyCacheKeyDigest, string(d.cacheKeyDigest))
	v.SetDefault(KeyCacheOpTimeout, d.cacheOpTimeout)
	v.SetDefault(KeyBaseDelay, d.baseDelay)
	v.SetDefault(KeyJitter, d.jitter)
	v.SetDefault(KeyRandomSeed, int64(0))
	v.SetDefault(KeyAllowedListHosts, d.allowedListHosts)
	v.SetDefault(KeyLogLevel, d.logLevel)
	v.SetDefault(KeyLogFormat, d.logFormat)
	v.SetDefault(KeyServerAddr, d.serverAddr)
	v.SetDefault(KeyReportDir, d.reportDir)
}

func fromViper(v *viper.Viper) (Config, error) {
	builder := WithDefault().
		WithSearchUrlTemplate(v.GetString(KeySearchUrlTemplate)).
		WithFetcher(strings.ToLower(v.GetString(KeyFetcher))).
		WithUserAgent(v.GetString(KeyUserAgent)).
		WithPageLoadTimeout(v.GetDuration(KeyPageLoadTimeout)).
		WithListSettleDelay(v.GetDuration(KeyListSettleDelay)).
		WithMaxBrowserTabs(v.GetInt(KeyMaxBrowserTabs)).
		WithCandidateLimit(v.GetInt(KeyCandidateLimit)).
		WithGlobalDeadline(v.GetDuration(KeyGlobalDeadline)).
		WithItemTimeout(v.GetDuration(KeyItemTimeout)).
		WithCacheBackend(strings.ToLower(v.GetString(KeyCacheBackend))).
		WithRedisAddr(v.GetString(KeyRedisAddr)).
		WithRedisPassword(v.GetString(KeyRedisPassword)).
		WithRedisDb(v.GetInt(KeyRedisDb)).
		WithCacheDsn(v.GetString(KeyCacheDsn)).
		WithCacheTtl(v.GetDuration(KeyCacheTtl)).
		WithCacheKeyDigest(hashutil.HashAlgo(strings.ToLower(v.GetString(KeyCacheKeyDigest)))).
		WithCacheOpTimeout(v.GetDuration(KeyCacheOpTimeout)).
		WithBaseDelay(v.GetDuration(KeyBaseDelay)).
		WithJitter(v.GetDuration(KeyJitter)).
		WithAllowedListHosts(v.GetStringSlice(KeyAllowedListHosts)).
		WithLogLevel(v.GetString(KeyLogLevel)).
		WithLogFormat(v.GetString(KeyLogFormat)).
		WithServerAddr(v.GetString(KeyServerAddr)).
		WithReportDir(v.GetString(KeyReportDir))

	// zero keeps the time-based seed from WithDefault
	if seed := v.GetInt64(KeyRandomSeed); seed != 0 {
		builder = builder.WithRandomSeed(seed)
	}

	return builder.Build()
}

// RegisterFlags defines one flag per config key, named by FlagName, with
// the built-in default shown in help output. Load only honours the flags
// the user actually set.
func RegisterFlags(flags *pflag.FlagSet) {
	d := WithDefault()
	flags.String(FlagName(KeySearchUrlTemplate), d.searchUrlTemplate, "search page URL; {query} is replaced by the path-escaped query")
	flags.String(FlagName(KeyFetcher), d.fetcher, "page fetcher: browser (renders scripts) or http")
	flags.String(FlagName(KeyUserAgent), d.userAgent, "user agent sent with every fetch")
	flags.Duration(FlagName(KeyPageLoadTimeout), d.pageLoadTimeout, "budget for loading a single page")
	flags.Duration(FlagName(KeyListSettleDelay), d.listSettleDelay, "wait after a list page loads before reading it (browser fetcher)")
	flags.Int(FlagName(KeyMaxBrowserTabs), d.maxBrowserTabs, "maximum concurrently open browser tabs")
	flags.Int(FlagName(KeyCandidateLimit), d.candidateLimit, "maximum titles taken from a list page")
	flags.Duration(FlagName(KeyGlobalDeadline), d.globalDeadline, "budget for the fetch phase of a batch")
	flags.Duration(FlagName(KeyItemTimeout), d.itemTimeout, "budget for resolving one title")
	flags.String(FlagName(KeyCacheBackend), d.cacheBackend, "cache backend: redis, sqlite, postgres, mysql, memory or none")
	flags.String(FlagName(KeyRedisAddr), d.redisAddr, "redis address")
	flags.String(FlagName(KeyRedisPassword), d.redisPassword, "redis password")
	flags.Int(FlagName(KeyRedisDb), d.redisDb, "redis database number")
	flags.String(FlagName(KeyCacheDsn), d.cacheDsn, "data source name for sql cache backends")
	flags.Duration(FlagName(KeyCacheTtl), d.cacheTtl, "lifetime of a cached result")
	flags.String(FlagName(KeyCacheKeyDigest), string(d.cacheKeyDigest), "cache key digest: md5, sha256 or blake3")
	flags.Duration(FlagName(KeyCacheOpTimeout), d.cacheOpTimeout, "budget for a single cache operation")
	flags.Duration(FlagName(KeyBaseDelay), d.baseDelay, "minimum delay between fetches to the same host")
	flags.Duration(FlagName(KeyJitter), d.jitter, "random extra delay added to base delay")
	flags.Int64(FlagName(KeyRandomSeed), 0, "jitter seed (0 for current time)")
	flags.StringSlice(FlagName(KeyAllowedListHosts), d.allowedListHosts, "hosts accepted as list URLs")
	flags.String(FlagName(KeyLogLevel), d.logLevel, "log level: debug, info, warn or error")
	flags.String(FlagName(KeyLogFormat), d.logFormat, "log format: console or json")
	flags.String(FlagName(KeyServerAddr), d.serverAddr, "listen address of the serve command")
	flags.String(FlagName(KeyReportDir), d.reportDir, "directory for batch reports (empty disables them)")
}
