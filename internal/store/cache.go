package store

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"

	"github.com/dealsearch/dealsearch/internal/embed"
)

// magicHeader prefixes the cache file so a truncated or foreign file is
// rejected before the record/dim fields are even trusted.
var magicHeader = [4]byte{'D', 'S', 'E', '1'}

// EmbeddingCache persists the embedding matrix for a catalog snapshot to a
// single binary file keyed by a content hash over the per-record embedding
// texts (spec §4.2, §6): the 4-byte magicHeader, then record_count (u32),
// dim (u32), a 32-byte SHA-256 hash, then the row-major float32 matrix, all
// little-endian.
type EmbeddingCache struct {
	path  string
	group singleflight.Group
}

// NewEmbeddingCache returns a cache backed by the file at path.
func NewEmbeddingCache(path string) *EmbeddingCache {
	return &EmbeddingCache{path: path}
}

// HashTexts computes the cache key for an ordered slice of per-record
// embedding texts, joined by '\n' per spec. The same catalog, re-loaded in
// the same order, always produces the same hash.
func HashTexts(texts []string) [32]byte {
	h := sha256.New()
	for i, t := range texts {
		if i > 0 {
			h.Write([]byte{'\n'})
		}
		h.Write([]byte(t))
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Load reads the cache file and returns its matrix if its stored hash
// matches want. A missing file, dimension mismatch, or hash mismatch all
// return a non-nil error so the caller can fall back to rebuilding;
// ErrHashMismatch and ErrDimensionMismatch are distinguishable via errors.As.
func (c *EmbeddingCache) Load(want [32]byte, dim int) (*Matrix, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read embedding cache magic: %w", err)
	}
	if magic != magicHeader {
		return nil, fmt.Errorf("embedding cache has unrecognized header")
	}

	recordCount, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read embedding cache record count: %w", err)
	}
	gotDim, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("read embedding cache dim: %w", err)
	}
	if int(gotDim) != dim {
		return nil, ErrDimensionMismatch{Expected: dim, Got: int(gotDim)}
	}

	var gotHash [32]byte
	if _, err := io.ReadFull(r, gotHash[:]); err != nil {
		return nil, fmt.Errorf("read embedding cache hash: %w", err)
	}
	if gotHash != want {
		return nil, ErrHashMismatch{}
	}

	vectors := make([][]float32, recordCount)
	row := make([]byte, int(gotDim)*4)
	for i := range vectors {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, fmt.Errorf("read embedding cache row %d: %w", i, err)
		}
		vec := make([]float32, gotDim)
		for j := range vec {
			bits := binary.LittleEndian.Uint32(row[j*4 : j*4+4])
			vec[j] = math.Float32frombits(bits)
		}
		vectors[i] = vec
	}

	return &Matrix{Dim: int(gotDim), Vectors: vectors}, nil
}

// Save atomically writes m to the cache file under hash, via a temp file
// plus rename so a crash mid-write never leaves a partially-written cache
// in place.
func (c *EmbeddingCache) Save(hash [32]byte, m *Matrix) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create embedding cache directory: %w", err)
	}

	lockPath := c.path + ".lock"
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquire embedding cache lock: %w", err)
	}
	defer fl.Unlock()

	tmpPath := c.path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp embedding cache file: %w", err)
	}

	w := bufio.NewWriter(f)
	if _, err := w.Write(magicHeader[:]); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := writeUint32(w, uint32(len(m.Vectors))); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := writeUint32(w, uint32(m.Dim)); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if _, err := w.Write(hash[:]); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	row := make([]byte, m.Dim*4)
	for _, vec := range m.Vectors {
		for j, v := range vec {
			binary.LittleEndian.PutUint32(row[j*4:j*4+4], math.Float32bits(v))
		}
		if _, err := w.Write(row); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush embedding cache: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync embedding cache: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close embedding cache: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename embedding cache into place: %w", err)
	}
	return nil
}

// LoadOrBuild returns the embedding matrix for texts, reusing the on-disk
// cache when its hash matches and rebuilding (via embedder) otherwise.
// Concurrent calls for the same cache collapse into a single rebuild via
// singleflight, so a cold start under parallel load embeds the catalog
// exactly once.
func (c *EmbeddingCache) LoadOrBuild(ctx context.Context, texts []string, embedder embed.Embedder) (*Matrix, error) {
	hash := HashTexts(texts)
	dim := embedder.Dimensions()

	if m, err := c.Load(hash, dim); err == nil {
		return m, nil
	}

	v, err, _ := c.group.Do(c.path, func() (interface{}, error) {
		// Re-check: another caller may have rebuilt while we waited for
		// the singleflight slot.
		if m, err := c.Load(hash, dim); err == nil {
			return m, nil
		}

		start := time.Now()
		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed catalog for cache rebuild: %w", err)
		}
		m := &Matrix{Dim: dim, Vectors: vectors}

		if err := c.Save(hash, m); err != nil {
			slog.Warn("failed to persist embedding cache", slog.String("error", err.Error()))
		}
		slog.Info("rebuilt embedding cache",
			slog.Int("records", len(texts)),
			slog.Int("dim", dim),
			slog.Duration("elapsed", time.Since(start)))
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Matrix), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}
