package driven

import (
	"context"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

// VectorEntry pairs a chunk with its embedding for indexing.
type VectorEntry struct {
	ID        string
	Embedding []float32
	Chunk     domain.Chunk
}

// ScoredChunk is a search hit with its similarity score.
type ScoredChunk struct {
	Chunk domain.Chunk
	Score float64
}

// VectorStore handles persisted vector similarity search over chunks.
// The on-disk form is opaque and written/read as a unit; a missing or
// corrupt store surfaces as an error from Open-time methods only, never
// as a partial result.
type VectorStore interface {
	// Add indexes entries, replacing any entry with the same ID.
	Add(ctx context.Context, entries []VectorEntry) error

	// Search returns the k nearest chunks by cosine similarity,
	// best first. k greater than the corpus size is truncated.
	Search(ctx context.Context, embedding []float32, k int) ([]ScoredChunk, error)

	// Count returns the number of indexed entries.
	Count(ctx context.Context) (int, error)

	// Reset removes all entries.
	Reset(ctx context.Context) error

	// Close releases the underlying storage.
	Close() error
}
