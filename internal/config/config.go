// Package config loads layered configuration for the deal retrieval engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the complete dealsearch configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Catalog    CatalogConfig    `yaml:"catalog" json:"catalog"`
	Ranking    RankingConfig    `yaml:"ranking" json:"ranking"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Server     ServerConfig     `yaml:"server" json:"server"`
}

// CatalogConfig configures where the two input snapshots live.
type CatalogConfig struct {
	OffersPath   string `yaml:"offers_path" json:"offers_path"`
	ProductsPath string `yaml:"products_path" json:"products_path"`
}

// RankingConfig holds the ranker's weights and adaptive cutoff tunables,
// mirroring the constants named in spec §4.6. search.NewFromConfig reads
// only TopK, StreamBatchSize, and MultiQueryCutoffFactor; the weights,
// FuzzyMatchFloor, OfferNameBoost, SemanticOnlyDiscount, and Workers are
// loaded and validated but not applied — internal/rank uses its own fixed
// constants for those.
type RankingConfig struct {
	// KeywordWeight, FuzzyWeight, SemanticWeight must sum to 1.0.
	KeywordWeight  float64 `yaml:"keyword_weight" json:"keyword_weight"`
	FuzzyWeight    float64 `yaml:"fuzzy_weight" json:"fuzzy_weight"`
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`

	// FuzzyMatchFloor is the minimum partial_ratio (0-100) before a record
	// is considered fuzzy-matched at all (spec §4.4 default: 60).
	FuzzyMatchFloor float64 `yaml:"fuzzy_match_floor" json:"fuzzy_match_floor"`

	// OfferNameBoost multiplies a deal's score when its offer name matches
	// the query (spec §4.6 step 4, default: 1.2).
	OfferNameBoost float64 `yaml:"offer_name_boost" json:"offer_name_boost"`

	// SemanticOnlyDiscount multiplies composite score when semantic is the
	// sole contributing scorer (spec §4.6 step 2b, default: 0.5).
	SemanticOnlyDiscount float64 `yaml:"semantic_only_discount" json:"semantic_only_discount"`

	// TopK is the default result count returned by Search (spec §6 default: 40).
	TopK int `yaml:"top_k" json:"top_k"`

	// StreamBatchSize is how many results SearchStream emits per batch
	// (spec §5, default: 5).
	StreamBatchSize int `yaml:"stream_batch_size" json:"stream_batch_size"`

	// MultiQueryCutoffFactor overrides the adaptive cutoff factor used when
	// merging multi-query results (spec §4.8 default: 0.45).
	MultiQueryCutoffFactor float64 `yaml:"multi_query_cutoff_factor" json:"multi_query_cutoff_factor"`

	// Workers is the number of scorer workers in the fan-out pool (spec §5,
	// default: 3 — one per scorer).
	Workers int `yaml:"workers" json:"workers"`
}

// EmbeddingsConfig configures the embedding backend and its disk cache.
type EmbeddingsConfig struct {
	// Dimensions is the embedding vector width (spec §3 default: 384).
	Dimensions int `yaml:"dimensions" json:"dimensions"`

	// CachePath is where the embedding matrix cache file is persisted
	// (spec §6 binary cache format).
	CachePath string `yaml:"cache_path" json:"cache_path"`

	// QueryCacheSize bounds the in-memory LRU cache of query embeddings.
	QueryCacheSize int `yaml:"query_cache_size" json:"query_cache_size"`
}

// ServerConfig configures ambient process behavior.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// defaultCachePath returns ~/.dealsearch/embeddings.cache, falling back to
// the temp directory if the home directory can't be resolved.
func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".dealsearch", "embeddings.cache")
	}
	return filepath.Join(home, ".dealsearch", "embeddings.cache")
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Catalog: CatalogConfig{
			OffersPath:   "offers.json",
			ProductsPath: "products.json",
		},
		Ranking: RankingConfig{
			KeywordWeight:          0.50,
			FuzzyWeight:            0.25,
			SemanticWeight:         0.25,
			FuzzyMatchFloor:        60,
			OfferNameBoost:         1.2,
			SemanticOnlyDiscount:   0.5,
			TopK:                   40,
			StreamBatchSize:        5,
			MultiQueryCutoffFactor: 0.45,
			Workers:                3,
		},
		Embeddings: EmbeddingsConfig{
			Dimensions:     384,
			CachePath:      defaultCachePath(),
			QueryCacheSize: 1000,
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// Load builds a Config from, in order of increasing precedence:
//  1. hardcoded defaults,
//  2. a `.dealsearch.yaml` (or `.yml`) file in dir,
//  3. DEALSEARCH_* environment variables.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".dealsearch.yaml", ".dealsearch.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAML(path)
		}
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero fields from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Catalog.OffersPath != "" {
		c.Catalog.OffersPath = other.Catalog.OffersPath
	}
	if other.Catalog.ProductsPath != "" {
		c.Catalog.ProductsPath = other.Catalog.ProductsPath
	}
	if other.Ranking.KeywordWeight != 0 {
		c.Ranking.KeywordWeight = other.Ranking.KeywordWeight
	}
	if other.Ranking.FuzzyWeight != 0 {
		c.Ranking.FuzzyWeight = other.Ranking.FuzzyWeight
	}
	if other.Ranking.SemanticWeight != 0 {
		c.Ranking.SemanticWeight = other.Ranking.SemanticWeight
	}
	if other.Ranking.FuzzyMatchFloor != 0 {
		c.Ranking.FuzzyMatchFloor = other.Ranking.FuzzyMatchFloor
	}
	if other.Ranking.OfferNameBoost != 0 {
		c.Ranking.OfferNameBoost = other.Ranking.OfferNameBoost
	}
	if other.Ranking.SemanticOnlyDiscount != 0 {
		c.Ranking.SemanticOnlyDiscount = other.Ranking.SemanticOnlyDiscount
	}
	if other.Ranking.TopK != 0 {
		c.Ranking.TopK = other.Ranking.TopK
	}
	if other.Ranking.StreamBatchSize != 0 {
		c.Ranking.StreamBatchSize = other.Ranking.StreamBatchSize
	}
	if other.Ranking.MultiQueryCutoffFactor != 0 {
		c.Ranking.MultiQueryCutoffFactor = other.Ranking.MultiQueryCutoffFactor
	}
	if other.Ranking.Workers != 0 {
		c.Ranking.Workers = other.Ranking.Workers
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.CachePath != "" {
		c.Embeddings.CachePath = other.Embeddings.CachePath
	}
	if other.Embeddings.QueryCacheSize != 0 {
		c.Embeddings.QueryCacheSize = other.Embeddings.QueryCacheSize
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies DEALSEARCH_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DEALSEARCH_KEYWORD_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Ranking.KeywordWeight = f
		}
	}
	if v := os.Getenv("DEALSEARCH_FUZZY_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Ranking.FuzzyWeight = f
		}
	}
	if v := os.Getenv("DEALSEARCH_SEMANTIC_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Ranking.SemanticWeight = f
		}
	}
	if v := os.Getenv("DEALSEARCH_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Ranking.TopK = n
		}
	}
	if v := os.Getenv("DEALSEARCH_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("DEALSEARCH_EMBEDDING_CACHE_PATH"); v != "" {
		c.Embeddings.CachePath = v
	}
}

// Validate checks invariants the ranker depends on.
func (c *Config) Validate() error {
	sum := c.Ranking.KeywordWeight + c.Ranking.FuzzyWeight + c.Ranking.SemanticWeight
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("ranking weights must sum to 1.0, got %.4f", sum)
	}
	if c.Ranking.TopK <= 0 {
		return fmt.Errorf("ranking.top_k must be positive, got %d", c.Ranking.TopK)
	}
	if c.Embeddings.Dimensions <= 0 {
		return fmt.Errorf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}
	if c.Ranking.Workers <= 0 {
		return fmt.Errorf("ranking.workers must be positive, got %d", c.Ranking.Workers)
	}
	return nil
}

// WriteYAML persists the config to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
