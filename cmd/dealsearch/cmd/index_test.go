package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexBuildCmd_CreatesEmbeddingCache(t *testing.T) {
	dir := t.TempDir()
	writeFixtureCatalog(t, dir)
	chdir(t, dir)

	cachePath := filepath.Join(dir, "embeddings.cache")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dealsearch.yaml"),
		[]byte("embeddings:\n  cache_path: "+cachePath+"\n"), 0o644))

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"index", "build"})

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	err := rootCmd.Execute()
	require.NoError(t, err)

	_, statErr := os.Stat(cachePath)
	assert.NoError(t, statErr)
}

func TestIndexBuildCmd_SecondRunIsUpToDate(t *testing.T) {
	dir := t.TempDir()
	writeFixtureCatalog(t, dir)
	chdir(t, dir)

	cachePath := filepath.Join(dir, "embeddings.cache")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dealsearch.yaml"),
		[]byte("embeddings:\n  cache_path: "+cachePath+"\n"), 0o644))

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"index", "build"})
	require.NoError(t, rootCmd.Execute())

	rootCmd2 := NewRootCmd()
	rootCmd2.SetArgs([]string{"index", "build"})
	buf := &bytes.Buffer{}
	rootCmd2.SetOut(buf)
	rootCmd2.SetErr(buf)
	require.NoError(t, rootCmd2.Execute())
	assert.Contains(t, buf.String(), "already up to date")
}
