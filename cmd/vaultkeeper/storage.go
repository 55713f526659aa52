package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"vaultkeeper/internal/storageconfig"
)

func newStorageCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect and validate storage policy configuration",
	}
	cmd.AddCommand(newStorageValidateCmd(logger))
	return cmd
}

func newStorageValidateCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <policy.yaml>",
		Short: "Load a storage policy and report how its locations resolve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := storageconfig.Load(args[0])
			if err != nil {
				return fmt.Errorf("load policy: %w", err)
			}

			resolved, err := storageconfig.Resolve(policy, pathExists)
			if err != nil {
				return fmt.Errorf("resolve policy: %w", err)
			}

			if resolved.Primary.Path != "" {
				cmd.Printf("primary:  %s (%s)\n", resolved.Primary.Path, resolved.Primary.Label)
			} else {
				cmd.Println("primary:  (none)")
			}
			for _, m := range resolved.Mirrors {
				cmd.Printf("mirror:   %s (%s)\n", m.Path, m.Label)
			}
			for _, g := range resolved.Glaciers {
				cmd.Printf("glacier:  %s (%s)\n", g.Path, g.Label)
			}
			for _, w := range resolved.Warnings {
				cmd.Printf("warning:  %s\n", w)
				logger.Warn(w)
			}
			return nil
		},
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
