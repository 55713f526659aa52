// Command vaultkeeper is a thin CLI over the content-addressed archival
// storage engine: archive create/extract/list, storage validate, and
// cache stats/clear. It contains flag parsing and wiring only; every
// behavior lives in the internal packages it assembles.
//
// Logging:
//   - Base logger is created here with output format and level
//   - Logger is passed to all components via dependency injection
//   - No global slog configuration (no slog.SetDefault)
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"vaultkeeper/internal/logging"
)

var version = "dev"

func main() {
	// Base handler emits everything; ComponentFilterHandler does the actual
	// level filtering, so --verbose can raise it at runtime after every
	// subcommand has already closed over the shared logger.
	baseHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	filterHandler := logging.NewComponentFilterHandler(baseHandler, slog.LevelInfo)
	logger := slog.New(filterHandler)

	rootCmd := &cobra.Command{
		Use:           "vaultkeeper",
		Short:         "Content-addressed archival storage engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			filterHandler.SetDefaultLevel(slog.LevelDebug)
		}
		return nil
	}

	rootCmd.AddCommand(
		newArchiveCmd(logger),
		newStorageCmd(logger),
		newCacheCmd(logger),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				cmd.Println(version)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}
