// Package embed provides dense-vector embedding generation for deal and
// product text (spec §3, §4.2).
package embed

import (
	"context"
	"math"
)

// StaticDimensions is the embedding dimension produced by StaticEmbedder,
// matching the shape invariant of spec §3 (every record's embedding vector
// has the same fixed length, here 384).
const StaticDimensions = 384

// DefaultQueryCacheSize is the default number of query embeddings kept in
// an embed.CachedEmbedder's LRU.
const DefaultQueryCacheSize = 1000

// Embedder generates unit-normalized dense vector embeddings for text.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the embedder's identifier, used as part of
	// CachedEmbedder's query-cache key. The on-disk embedding cache hash
	// (store.HashTexts) covers the record texts only.
	ModelName() string

	// Available reports whether the embedder is ready to serve requests.
	Available(ctx context.Context) bool

	// Close releases any resources held by the embedder.
	Close() error
}

// normalizeVector scales v to unit length. A zero vector is returned
// unchanged, since it has no direction to normalize to.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
