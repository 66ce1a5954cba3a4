package magnetcache

import (
	"context"
	"fmt"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/config"
	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
)

// Open builds the Store for the configured backend.
//
// A backend that cannot be reached at startup does not stop the program:
// the failure is recorded and the store runs without a cache (sql) or keeps
// retrying on every call (redis, whose client reconnects on its own).
func Open(ctx context.Context, cfg config.Config, metadataSink metadata.MetadataSink) *Store {
	kv, backend := openKV(ctx, cfg, metadataSink)
	return NewStore(metadataSink, kv, backend, cfg.CacheKeyDigest(), cfg.CacheOpTimeout())
}

func openKV(ctx context.Context, cfg config.Config, metadataSink metadata.MetadataSink) (KV, string) {
	backend := cfg.CacheBackend()
	probeCtx, cancel := context.WithTimeout(ctx, startupTimeout(cfg))
	defer cancel()

	switch backend {
	case config.CacheBackendMemory:
		return NewMemoryKV(), backend

	case config.CacheBackendNone:
		return NoopKV{}, backend

	case config.CacheBackendRedis:
		kv := NewRedisKV(RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword(),
			DB:       cfg.RedisDb(),
		})
		if err := kv.Ping(probeCtx); err != nil {
			recordStartupFailure(metadataSink, backend, fmt.Errorf("%w; lookups will miss until it is reachable", err))
		}
		return kv, backend

	case config.CacheBackendSQLite, config.CacheBackendPostgres, config.CacheBackendMySQL:
		dsn := cfg.CacheDsn()
		if dsn == "" && backend == config.CacheBackendSQLite {
			dsn = config.DefaultSQLiteFile
		}
		kv, err := NewSQLKV(probeCtx, SQLDialect(backend), dsn, DefaultTableName)
		if err != nil {
			recordStartupFailure(metadataSink, backend, fmt.Errorf("%w; caching disabled for this run", err))
			return NoopKV{}, config.CacheBackendNone
		}
		if _, err := kv.PurgeExpired(probeCtx); err != nil {
			recordStartupFailure(metadataSink, backend, fmt.Errorf("failed to purge expired entries: %w", err))
		}
		return kv, backend
	}

	recordStartupFailure(metadataSink, backend, fmt.Errorf("unknown cache backend %q; caching disabled", backend))
	return NoopKV{}, config.CacheBackendNone
}

func startupTimeout(cfg config.Config) time.Duration {
	// a cold database connection takes longer than a single op
	return 5 * cfg.CacheOpTimeout()
}

func recordStartupFailure(metadataSink metadata.MetadataSink, backend string, err error) {
	metadataSink.RecordError(
		time.Now(),
		"magnetcache",
		"Open",
		metadata.CauseStorageFailure,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrBackend, backend),
		},
	)
}
