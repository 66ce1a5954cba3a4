package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rohmanhakim/magnet-resolver/internal/magnetcache"
	"github.com/rohmanhakim/magnet-resolver/internal/metadata"
	"github.com/spf13/cobra"
)

func newCacheCommand(opts *options) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect cached results.",
	}

	keyCmd := &cobra.Command{
		Use:   "key <title>",
		Short: "Print the cache key of a title.",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(c, opts)
			if err != nil {
				return err
			}
			store := magnetcache.NewStore(&metadata.NoopSink{}, magnetcache.NoopKV{}, "none", cfg.CacheKeyDigest(), cfg.CacheOpTimeout())
			_, err = fmt.Fprintln(c.OutOrStdout(), store.Key(cacheQuery(args[0], opts)))
			return err
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <title>",
		Short: "Print the cached result of a title, if any.",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(c, opts)
			if err != nil {
				return err
			}
			a, err := newApp(c.Context(), cfg, c.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			key := a.store.Key(cacheQuery(args[0], opts))
			entry, ok := a.store.Lookup(c.Context(), key)
			if !ok {
				_, err := fmt.Fprintf(c.OutOrStdout(), "%s: not cached\n", key)
				return err
			}
			return writeCachedEntry(c, key, entry)
		},
	}

	cacheCmd.AddCommand(keyCmd, getCmd)
	return cacheCmd
}

// cacheQuery matches the key the resolver uses for the same title and flags.
func cacheQuery(title string, opts *options) string {
	return searchTitle(title, opts.year) + " " + opts.quality
}

type cachedEntryView struct {
	Key        string  `json:"key"`
	Query      string  `json:"query"`
	MagnetLink *string `json:"magnetLink"`
	SearchURL  string  `json:"searchUrl,omitempty"`
	FetchedAt  string  `json:"fetchedAt,omitempty"`
}

func writeCachedEntry(c *cobra.Command, key magnetcache.CacheKey, entry magnetcache.CacheEntry) error {
	view := cachedEntryView{
		Key:       key.String(),
		Query:     entry.Query,
		SearchURL: entry.SearchURL,
	}
	if entry.Found() {
		link := entry.Identifier
		view.MagnetLink = &link
	}
	if !entry.FetchedAt.IsZero() {
		view.FetchedAt = entry.FetchedAt.UTC().Format(time.RFC3339)
	}
	encoder := json.NewEncoder(c.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(view)
}
