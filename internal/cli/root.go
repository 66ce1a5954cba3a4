package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rohmanhakim/magnet-resolver/internal/config"
	"github.com/rohmanhakim/magnet-resolver/pkg/urlutil"
	"github.com/spf13/cobra"
)

// options holds the flags that are not config keys.
type options struct {
	cfgFile string
	quality string
	year    string
}

// NewRootCommand builds the command tree. Each call returns an independent
// tree, so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "magnet-resolver <title | list-url>",
		Short: "Resolve movie titles into magnet links.",
		Long: `magnet-resolver looks up magnet links for movie titles on a search page,
caching every answer so repeated lookups stay fast.

Given a title, it resolves that one title. Given a list URL, it reads up to
candidate-limit titles from the list, answers the cached ones right away and
fetches the rest one at a time within a global deadline. Each result is
printed as a MOVIE_RESULT line carrying one JSON object.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
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

			input := strings.TrimSpace(args[0])
			if listUrl, ok := urlutil.ParseHTTPURL(input); ok {
				return runList(c.Context(), a, listUrl, c.OutOrStdout(), c.ErrOrStderr())
			}
			return runSingle(c.Context(), a, searchTitle(input, opts.year), opts.quality, c.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file path (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&opts.quality, "quality", "", "quality hint appended to the search, e.g. 1080p (title mode)")
	rootCmd.PersistentFlags().StringVar(&opts.year, "year", "", "release year appended to the title (title mode)")
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newServeCommand(opts),
		newCacheCommand(opts),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute runs the command tree until it finishes or the process is interrupted.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(c *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.cfgFile, c.Flags())
	if err != nil {
		return config.Config{}, fmt.Errorf("error initializing config: %w", err)
	}
	return cfg, nil
}

// searchTitle appends the year, when given, the way the search page expects it.
func searchTitle(title string, year string) string {
	year = strings.TrimSpace(year)
	if year == "" {
		return title
	}
	return title + " " + year
}
