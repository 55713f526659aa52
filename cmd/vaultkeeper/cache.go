package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"vaultkeeper/internal/hashcache"
)

func newCacheCmd(logger *slog.Logger) *cobra.Command {
	var algorithm string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the file-hash cache",
	}
	cmd.PersistentFlags().StringVar(&algorithm, "algorithm", "sha256", "hash algorithm the cache is scoped to")

	cmd.AddCommand(newCacheStatsCmd(logger, &algorithm), newCacheClearCmd(logger))
	return cmd
}

func newCacheStatsCmd(logger *slog.Logger, algorithm *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <cache-file>",
		Short: "Print the number of entries and every cached entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := parseAlgorithm(*algorithm)
			if err != nil {
				return newUsageError("%w", err)
			}
			c := hashcache.Load(args[0], hashcache.Config{Algorithm: alg, Logger: logger})
			cmd.Printf("entries: %d\n", c.Len())
			for _, e := range c.Entries() {
				cmd.Printf("%s  %s  %d bytes  modified %s\n", e.Hash, e.Path, e.FileSize, e.ModificationTime.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}
}

func newCacheClearCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <cache-file>",
		Short: "Delete a persisted hash-cache sidecar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := os.Remove(path); err != nil {
				if os.IsNotExist(err) {
					cmd.Println("nothing to clear")
					return nil
				}
				return fmt.Errorf("clear cache %s: %w", path, err)
			}
			logger.Info("hash cache cleared", "path", path)
			return nil
		},
	}
}
