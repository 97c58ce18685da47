package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
)

func testVectorStore(t *testing.T) *VectorStore {
	t.Helper()
	store, err := NewVectorStore(filepath.Join(t.TempDir(), "index", "emails.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntries(n int) []driven.VectorEntry {
	var entries []driven.VectorEntry
	for i := 0; i < n; i++ {
		entries = append(entries, driven.VectorEntry{
			ID:        fmt.Sprintf("hash%d-0", i),
			Embedding: []float32{float32(i), 1, 0},
			Chunk: domain.Chunk{
				Text: fmt.Sprintf("chunk %d", i),
				Metadata: domain.ChunkMetadata{
					ContentHash: fmt.Sprintf("hash%d", i),
					Subject:     fmt.Sprintf("Subject %d", i),
				},
			},
		})
	}
	return entries
}

func TestVectorStore_AddAndCount(t *testing.T) {
	store := testVectorStore(t)
	ctx := context.Background()

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty store, got %d", n)
	}

	if err := store.Add(ctx, sampleEntries(4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err = store.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 entries, got %d", n)
	}
}

func TestVectorStore_SearchRanksBySimilarity(t *testing.T) {
	store := testVectorStore(t)
	ctx := context.Background()

	entries := []driven.VectorEntry{
		{ID: "a", Embedding: []float32{1, 0, 0}, Chunk: domain.Chunk{Text: "exact"}},
		{ID: "b", Embedding: []float32{0.7, 0.7, 0}, Chunk: domain.Chunk{Text: "close"}},
		{ID: "c", Embedding: []float32{0, 0, 1}, Chunk: domain.Chunk{Text: "orthogonal"}},
	}
	if err := store.Add(ctx, entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Chunk.Text != "exact" {
		t.Errorf("expected exact match first, got %q", hits[0].Chunk.Text)
	}
	if hits[1].Chunk.Text != "close" {
		t.Errorf("expected close match second, got %q", hits[1].Chunk.Text)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("hits not sorted best first")
	}
}

func TestVectorStore_SearchKLargerThanStore(t *testing.T) {
	store := testVectorStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, sampleEntries(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, err := store.Search(ctx, []float32{1, 1, 0}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected all 2 entries, got %d", len(hits))
	}
}

func TestVectorStore_Reset(t *testing.T) {
	store := testVectorStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, sampleEntries(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty store after reset, got %d", n)
	}
}

func TestVectorStore_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.db")
	ctx := context.Background()

	store, err := NewVectorStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Add(ctx, sampleEntries(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := NewVectorStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reopened.Close()

	n, err := reopened.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected persisted entries to survive reopen, got %d", n)
	}

	hits, err := reopened.Search(ctx, []float32{1, 1, 0}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits[0].Chunk.Metadata.ContentHash == "" {
		t.Error("expected chunk metadata to survive reopen")
	}
}

func TestVectorStore_RoundTripEmbedding(t *testing.T) {
	raw := encodeVector([]float32{0.5, -1.25, 3})
	decoded, err := decodeVector(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float32{0.5, -1.25, 3}
	for i := range want {
		if decoded[i] != want[i] {
			t.Errorf("decoded[%d] = %f, want %f", i, decoded[i], want[i])
		}
	}

	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated vector")
	}
}

func TestNewVectorStore_RequiresPath(t *testing.T) {
	if _, err := NewVectorStore(""); err == nil {
		t.Error("expected error for empty path")
	}
}

// A truncated or garbage index file must not wedge the store: the file
// is a derived cache, so open discards it and starts empty.
func TestNewVectorStore_RecreatesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.db")
	if err := os.WriteFile(path, []byte("this is not a bolt database"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store, err := NewVectorStore(path)
	if err != nil {
		t.Fatalf("expected corrupt file to be recreated, got %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty recreated store, got %d entries", n)
	}

	// The recreated store is fully usable for a rebuild.
	if err := store.Add(ctx, sampleEntries(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hits, err := store.Search(ctx, []float32{1, 1, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("expected 2 hits after rebuild, got %d", len(hits))
	}
}
