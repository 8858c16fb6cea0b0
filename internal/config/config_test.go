package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 40, cfg.Ranking.TopK)
	assert.Equal(t, 384, cfg.Embeddings.Dimensions)
	assert.InDelta(t, 1.0, cfg.Ranking.KeywordWeight+cfg.Ranking.FuzzyWeight+cfg.Ranking.SemanticWeight, 0.001)
}

func TestLoad_NoFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Ranking.TopK, cfg.Ranking.TopK)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlContent := "ranking:\n  top_k: 10\n  keyword_weight: 0.6\n  fuzzy_weight: 0.2\n  semantic_weight: 0.2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dealsearch.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Ranking.TopK)
	assert.InDelta(t, 0.6, cfg.Ranking.KeywordWeight, 0.0001)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dealsearch.yaml"), []byte("ranking:\n  top_k: 10\n"), 0o644))
	t.Setenv("DEALSEARCH_TOP_K", "5")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Ranking.TopK)
}

func TestValidate_RejectsBadWeights(t *testing.T) {
	cfg := NewConfig()
	cfg.Ranking.KeywordWeight = 0.9
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_RejectsNonPositiveTopK(t *testing.T) {
	cfg := NewConfig()
	cfg.Ranking.TopK = 0
	assert.Error(t, cfg.Validate())
}

func TestWriteYAML_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := NewConfig()
	cfg.Ranking.TopK = 15
	require.NoError(t, cfg.WriteYAML(path))

	reloaded := NewConfig()
	require.NoError(t, reloaded.loadYAML(path))
	assert.Equal(t, 15, reloaded.Ranking.TopK)
}
