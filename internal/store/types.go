// Package store provides the disk-backed embedding cache for the deal
// catalog's dense vectors (spec §4.2, §6).
package store

import "fmt"

// ErrDimensionMismatch indicates a cache file was built with an embedder of
// a different output dimension than the one currently in use.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("embedding cache dimension mismatch: expected %d, got %d (rebuild the cache)", e.Expected, e.Got)
}

// ErrHashMismatch indicates the cache file's content hash does not match
// the catalog currently being indexed, meaning the cache is stale.
type ErrHashMismatch struct{}

func (e ErrHashMismatch) Error() string {
	return "embedding cache content hash does not match current catalog"
}

// Matrix is a row-major in-memory embedding matrix: Vectors[i] is the
// unit-normalized embedding of record i.
type Matrix struct {
	Dim     int
	Vectors [][]float32
}

// Row returns the embedding vector for record index i.
func (m *Matrix) Row(i int) []float32 {
	return m.Vectors[i]
}

// Len returns the number of rows (records) in the matrix.
func (m *Matrix) Len() int {
	return len(m.Vectors)
}
