package cmd

import (
	"fmt"

	"github.com/rohmanhakim/magnet-resolver/internal/build"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(c.OutOrStdout(), build.Summary())
			return err
		},
	}
}
