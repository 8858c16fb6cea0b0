package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dealsearch/dealsearch/internal/catalog"
	"github.com/dealsearch/dealsearch/internal/embed"
	"github.com/dealsearch/dealsearch/internal/output"
	"github.com/dealsearch/dealsearch/internal/store"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the catalog embedding index",
	}
	cmd.AddCommand(newIndexBuildCmd())
	cmd.AddCommand(newIndexWatchCmd())
	return cmd
}

func newIndexBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Load the catalog snapshots and (re)build the embedding cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			cfg := loadConfig()

			records, err := loadRecords(cfg)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			embedder := embed.NewStaticEmbedder()
			defer embedder.Close()

			texts := make([]string, len(records))
			for i, r := range records {
				texts[i] = r.EmbeddingText()
			}

			cache := store.NewEmbeddingCache(cfg.Embeddings.CachePath)
			hash := store.HashTexts(texts)

			if _, err := cache.Load(hash, embedder.Dimensions()); err == nil {
				out.Status("", fmt.Sprintf("embedding cache already up to date (%d records)", len(records)))
				return nil
			}

			matrix, err := cache.LoadOrBuild(cmd.Context(), texts, embedder)
			if err != nil {
				return fmt.Errorf("build embedding cache: %w", err)
			}

			slog.Info("index_build_complete",
				slog.Int("records", len(records)),
				slog.Int("dim", matrix.Dim),
				slog.String("cache_path", cfg.Embeddings.CachePath))
			out.Success(fmt.Sprintf("indexed %d records into %s", len(records), cfg.Embeddings.CachePath))
			return nil
		},
	}
}

// newIndexWatchCmd watches the two catalog snapshot files and rebuilds the
// embedding cache whenever they change. Optional: the CLI works fine without
// ever running this (see internal/catalog.Watcher doc comment).
func newIndexWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the catalog snapshots and rebuild the embedding cache on change",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())
			cfg := loadConfig()

			rebuild := func(ctx context.Context) error {
				records, err := loadRecords(cfg)
				if err != nil {
					return fmt.Errorf("load catalog: %w", err)
				}

				embedder := embed.NewStaticEmbedder()
				defer embedder.Close()

				texts := make([]string, len(records))
				for i, r := range records {
					texts[i] = r.EmbeddingText()
				}

				cache := store.NewEmbeddingCache(cfg.Embeddings.CachePath)
				matrix, err := cache.LoadOrBuild(ctx, texts, embedder)
				if err != nil {
					return fmt.Errorf("build embedding cache: %w", err)
				}

				slog.Info("index_rebuilt_on_change",
					slog.Int("records", len(records)),
					slog.Int("dim", matrix.Dim))
				out.Status("", fmt.Sprintf("rebuilt index for %d records", len(records)))
				return nil
			}

			w, err := catalog.NewWatcher(cfg.Catalog.OffersPath, cfg.Catalog.ProductsPath, 500*time.Millisecond, rebuild)
			if err != nil {
				return fmt.Errorf("start catalog watcher: %w", err)
			}

			out.Status("", fmt.Sprintf("watching %s and %s for changes (ctrl-c to stop)",
				cfg.Catalog.OffersPath, cfg.Catalog.ProductsPath))
			err = w.Run(cmd.Context())
			if err != nil && cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
}
