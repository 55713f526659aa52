package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"vaultkeeper/internal/archive"
	"vaultkeeper/internal/chunkid"
	"vaultkeeper/internal/chunkstore"
	"vaultkeeper/internal/detect"
	"vaultkeeper/internal/hashcache"
	"vaultkeeper/internal/orgstore"
	"vaultkeeper/internal/registry"
)

func newArchiveCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Create, extract, and list content-addressed archives",
	}
	cmd.AddCommand(
		newArchiveCreateCmd(logger),
		newArchiveExtractCmd(logger),
		newArchiveListCmd(),
	)
	return cmd
}

// openStore opens an unvalidated chunk store with a git-style (depth 2)
// layout rooted at dir, creating
// it if necessary. A fuller deployment drives internal/storageconfig
// instead; this direct path is for pointing the CLI at a single store
// location without a policy document.
func openStore(dir string) (*chunkstore.Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newUsageError("create store directory %q: %w", dir, err)
	}
	return chunkstore.New(chunkstore.Config{
		Organization: orgstore.NewGitStyle(2),
		Retrieval:    chunkstore.NewFileRetrieval(dir, 0),
		Existence:    chunkstore.NewFileExistence(dir),
		Sidecars:     chunkstore.NewSidecarStore(dir, 0),
	}), nil
}

func newArchiveCreateCmd(logger *slog.Logger) *cobra.Command {
	var (
		storeDir     string
		manifestPath string
		algorithm    string
		ignoreGlobs  []string
		cacheFile    string
		skipHidden   bool
	)

	cmd := &cobra.Command{
		Use:   "create <root-dir>",
		Short: "Walk root-dir, write its content to the chunk store, and save a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			if manifestPath == "" {
				return newUsageError("--manifest is required")
			}
			alg, err := parseAlgorithm(algorithm)
			if err != nil {
				return newUsageError("%w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			runID := uuid.NewString()
			log := logger.With("component", "cmd.archive.create", "run_id", runID)

			store, err := openStore(storeDir)
			if err != nil {
				return err
			}

			if err := registry.RegisterDefaultFileTypes(registry.Global()); err != nil {
				return fmt.Errorf("register default file types: %w", err)
			}

			var hc *hashcache.Cache
			if cacheFile != "" {
				hc = hashcache.Load(cacheFile, hashcache.Config{Algorithm: alg, Logger: logger})
			}

			builder := archive.NewBuilder(archive.BuilderConfig{
				Store:      store,
				Algorithm:  alg,
				HashCache:  hc,
				Classifier: detect.New(registry.Global()),
			})

			opts := archive.Options{
				SkipHidden: skipHidden,
			}
			if len(ignoreGlobs) > 0 {
				opts.Ignore = archive.NewGlobIgnoreMatcher(ignoreGlobs)
			}

			var walkErr error
			walker := archive.NewWalker(opts, builder.ProcessEntry(ctx, root), func(path string, err error) bool {
				log.Warn("walk error", "path", path, "error", err)
				walkErr = err
				return true
			})

			log.Info("archiving", "root", root)
			if err := walker.Walk(root); err != nil {
				return fmt.Errorf("walk %s: %w", root, err)
			}

			if err := archive.SaveManifest(manifestPath, builder.Manifest()); err != nil {
				return fmt.Errorf("save manifest: %w", err)
			}

			if hc != nil {
				if err := hc.Save(cacheFile); err != nil {
					log.Warn("hash cache save failed", "error", err)
				}
			}

			stats := walker.Stats()
			log.Info("archive complete",
				"files", stats.FileCount, "total_size", stats.TotalSize,
				"directories", stats.PerTypeCount[archive.EntryDirectory],
				"symlinks", stats.PerTypeCount[archive.EntrySymlink])

			if walkErr != nil {
				log.Warn("archive completed with non-fatal walk errors")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storeDir, "store", ".vaultkeeper/store", "chunk store directory")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "path to write the archive manifest (required)")
	cmd.Flags().StringVar(&algorithm, "algorithm", "sha256", "hash algorithm: sha256, sha1, md5, crc32, blake2b-256")
	cmd.Flags().StringSliceVar(&ignoreGlobs, "ignore", nil, "doublestar glob pattern to exclude (repeatable)")
	cmd.Flags().StringVar(&cacheFile, "cache-file", "", "file-hash cache sidecar to read and update")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "skip dotfiles and dot-directories")

	return cmd
}

func newArchiveExtractCmd(logger *slog.Logger) *cobra.Command {
	var storeDir string

	cmd := &cobra.Command{
		Use:   "extract <manifest> <dest-dir>",
		Short: "Reconstruct a directory tree from a manifest and its chunk store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath, destRoot := args[0], args[1]

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			m, err := archive.LoadManifest(manifestPath)
			if err != nil {
				return fmt.Errorf("load manifest %s: %w", manifestPath, err)
			}

			store, err := openStore(storeDir)
			if err != nil {
				return err
			}

			logger.With("component", "cmd.archive.extract").Info("extracting",
				"manifest", manifestPath, "dest", destRoot, "entries", len(m.Entries))

			if err := archive.Extract(ctx, store, m, destRoot); err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storeDir, "store", ".vaultkeeper/store", "chunk store directory")
	return cmd
}

func newArchiveListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <manifest>",
		Short: "Print the entries recorded in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := archive.LoadManifest(args[0])
			if err != nil {
				return fmt.Errorf("load manifest %s: %w", args[0], err)
			}
			for _, e := range m.Entries {
				if e.Hash != "" {
					cmd.Printf("%-9s %10d  %s  %s\n", e.Type, e.Size, e.Hash, e.Path)
				} else {
					cmd.Printf("%-9s %10d  %s  %s\n", e.Type, e.Size, "-", e.Path)
				}
			}
			return nil
		},
	}
}

func parseAlgorithm(s string) (chunkid.HashAlgorithm, error) {
	switch chunkid.HashAlgorithm(s) {
	case chunkid.SHA256, chunkid.SHA1, chunkid.MD5, chunkid.CRC32, chunkid.Blake2b256:
		return chunkid.HashAlgorithm(s), nil
	default:
		return "", fmt.Errorf("unknown hash algorithm %q", s)
	}
}
