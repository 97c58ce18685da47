// Package bolt persists the vector index in a single bbolt file.
// Vectors are scanned exhaustively at query time; a day of email is a
// few hundred chunks, far below where an ANN structure would pay off.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorStore = (*VectorStore)(nil)

var (
	bucketVectors = []byte("vectors")
	bucketChunks  = []byte("chunks")
)

// VectorStore stores embeddings and their chunks in two buckets keyed
// by entry ID.
type VectorStore struct {
	db   *bbolt.DB
	path string
}

// NewVectorStore opens (or creates) the index file at path. The index
// is a derived cache: an unreadable file is discarded and recreated
// empty so the caller rebuilds from records, rather than surfacing the
// corruption. A lock timeout is the exception, since the file may be a
// healthy index held by another process.
func NewVectorStore(path string) (*VectorStore, error) {
	if path == "" {
		return nil, fmt.Errorf("index path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("open index: %w", err)
		}
		if rmErr := os.Remove(path); rmErr != nil {
			return nil, fmt.Errorf("open index: %w", err)
		}
		db, err = openDB(path)
		if err != nil {
			return nil, fmt.Errorf("open index: %w", err)
		}
	}

	return &VectorStore{db: db, path: path}, nil
}

// openDB opens the bbolt file and ensures both buckets exist.
func openDB(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketVectors); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketChunks); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Add stores entries, overwriting any with the same ID.
func (s *VectorStore) Add(_ context.Context, entries []driven.VectorEntry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		vectors := tx.Bucket(bucketVectors)
		chunks := tx.Bucket(bucketChunks)

		for _, e := range entries {
			if err := vectors.Put([]byte(e.ID), encodeVector(e.Embedding)); err != nil {
				return err
			}
			data, err := json.Marshal(e.Chunk)
			if err != nil {
				return fmt.Errorf("marshal chunk %s: %w", e.ID, err)
			}
			if err := chunks.Put([]byte(e.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Search scans every stored vector and returns the k nearest chunks by
// cosine similarity, best first.
func (s *VectorStore) Search(_ context.Context, embedding []float32, k int) ([]driven.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	var hits []driven.ScoredChunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		vectors := tx.Bucket(bucketVectors)
		chunks := tx.Bucket(bucketChunks)

		return vectors.ForEach(func(id, raw []byte) error {
			stored, err := decodeVector(raw)
			if err != nil {
				return fmt.Errorf("decode vector %s: %w", id, err)
			}

			data := chunks.Get(id)
			if data == nil {
				return fmt.Errorf("chunk missing for vector %s", id)
			}

			var hit driven.ScoredChunk
			if err := json.Unmarshal(data, &hit.Chunk); err != nil {
				return fmt.Errorf("unmarshal chunk %s: %w", id, err)
			}
			hit.Score = cosineSimilarity(embedding, stored)
			hits = append(hits, hit)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored entries. A vector/chunk bucket
// mismatch reports as an error so callers treat the file as corrupt.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	var nVectors, nChunks int
	err := s.db.View(func(tx *bbolt.Tx) error {
		nVectors = tx.Bucket(bucketVectors).Stats().KeyN
		nChunks = tx.Bucket(bucketChunks).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	if nVectors != nChunks {
		return 0, fmt.Errorf("index inconsistent: %d vectors, %d chunks", nVectors, nChunks)
	}
	return nVectors, nil
}

// Reset drops all stored entries.
func (s *VectorStore) Reset(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketVectors, bucketChunks} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database file.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// encodeVector packs a vector as little-endian float32 bits.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("vector length %d not a multiple of 4", len(raw))
	}
	v := make([]float32, len(raw)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return v, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
