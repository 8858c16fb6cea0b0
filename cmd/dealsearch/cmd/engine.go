package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/dealsearch/dealsearch/internal/catalog"
	"github.com/dealsearch/dealsearch/internal/config"
	"github.com/dealsearch/dealsearch/internal/embed"
	"github.com/dealsearch/dealsearch/internal/store"
	"github.com/dealsearch/dealsearch/pkg/search"
)

// loadConfig loads the layered config from the current directory, falling
// back to hardcoded defaults if no config file is present or parseable —
// the CLI should still work in a directory with no .dealsearch.yaml.
func loadConfig() *config.Config {
	cfg, err := config.Load(".")
	if err != nil {
		return config.NewConfig()
	}
	return cfg
}

// loadRecords opens the two catalog snapshots named in cfg and joins them
// into the flat Record set (spec §4.1).
func loadRecords(cfg *config.Config) ([]*catalog.Record, error) {
	offersFile, err := os.Open(cfg.Catalog.OffersPath)
	if err != nil {
		return nil, fmt.Errorf("open offers snapshot: %w", err)
	}
	defer offersFile.Close()

	productsFile, err := os.Open(cfg.Catalog.ProductsPath)
	if err != nil {
		return nil, fmt.Errorf("open products snapshot: %w", err)
	}
	defer productsFile.Close()

	_, _, records, err := catalog.Load(offersFile, productsFile)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// buildEngine loads the catalog and its embedding matrix (from cache when
// available, rebuilding otherwise) and assembles a ready-to-query Engine.
func buildEngine(ctx context.Context, cfg *config.Config) (*search.Engine, error) {
	records, err := loadRecords(cfg)
	if err != nil {
		return nil, err
	}

	staticEmbedder := embed.NewStaticEmbedder()
	queryEmbedder := embed.NewCachedEmbedder(staticEmbedder, cfg.Embeddings.QueryCacheSize)

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.EmbeddingText()
	}

	cache := store.NewEmbeddingCache(cfg.Embeddings.CachePath)
	matrix, err := cache.LoadOrBuild(ctx, texts, staticEmbedder)
	if err != nil {
		return nil, fmt.Errorf("build embedding matrix: %w", err)
	}

	return search.NewFromConfig(records, matrix.Vectors, queryEmbedder, cfg), nil
}
