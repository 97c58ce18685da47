package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
	"github.com/mailsage-labs/mailsage-core/internal/textproc"
)

// StoreOpener opens (or creates) the persisted vector store. Opening is
// deferred so a missing or corrupt on-disk index never fails startup.
type StoreOpener func() (driven.VectorStore, error)

// RetrievalIndex builds and queries the vector index over chunked email
// text. The persisted index is a derived cache: any load failure only
// triggers a rebuild from the records, never an error to the caller.
type RetrievalIndex struct {
	cfg      domain.Config
	embedder driven.EmbeddingService
	chunker  driven.Chunker
	open     StoreOpener
	logger   *slog.Logger

	mu    sync.Mutex
	store driven.VectorStore
	ready bool
}

// RetrievalIndexConfig holds dependencies for RetrievalIndex.
type RetrievalIndexConfig struct {
	Config      domain.Config
	Embedder    driven.EmbeddingService
	Chunker     driven.Chunker
	StoreOpener StoreOpener
	Logger      *slog.Logger
}

// NewRetrievalIndex creates a retrieval index.
func NewRetrievalIndex(cfg RetrievalIndexConfig) *RetrievalIndex {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrievalIndex{
		cfg:      cfg.Config,
		embedder: cfg.Embedder,
		chunker:  cfg.Chunker,
		open:     cfg.StoreOpener,
		logger:   logger,
	}
}

// LoadOrBuild makes the index ready: a previously persisted index is
// reused when present, otherwise the index is rebuilt from records.
// Returns the number of chunks available. Never returns a load error;
// only an embedding failure during rebuild surfaces.
func (x *RetrievalIndex) LoadOrBuild(ctx context.Context, records []*domain.EmailRecord) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.ready {
		n, err := x.store.Count(ctx)
		if err != nil {
			x.logger.Warn("failed to count indexed chunks", "error", err)
		}
		return n, nil
	}

	store := x.ensureStore()
	if store == nil {
		return 0, nil
	}

	n, err := store.Count(ctx)
	if err != nil {
		x.logger.Warn("persisted index unreadable, rebuilding", "error", err)
		if resetErr := store.Reset(ctx); resetErr != nil {
			x.logger.Error("failed to reset index", "error", resetErr)
			return 0, nil
		}
		n = 0
	}

	if n > 0 {
		x.logger.Info("loaded persisted index", "chunks", n)
		x.ready = true
		return n, nil
	}

	return x.build(ctx, records)
}

// Build rebuilds the index from records unconditionally, replacing any
// persisted state.
func (x *RetrievalIndex) Build(ctx context.Context, records []*domain.EmailRecord) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	store := x.ensureStore()
	if store == nil {
		return 0, nil
	}
	if err := store.Reset(ctx); err != nil {
		x.logger.Error("failed to reset index", "error", err)
		return 0, nil
	}
	x.ready = false
	return x.build(ctx, records)
}

// build chunks, embeds and indexes records. Caller holds the lock and
// has ensured the store.
func (x *RetrievalIndex) build(ctx context.Context, records []*domain.EmailRecord) (int, error) {
	chunks := x.allChunks(records)
	if len(chunks) == 0 {
		x.logger.Warn("no chunks to index", "records", len(records))
		return 0, nil
	}

	x.logger.Info("building index", "records", len(records), "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := x.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	entries := make([]driven.VectorEntry, 0, len(chunks))
	for i, c := range chunks {
		if i >= len(embeddings) || embeddings[i] == nil {
			continue
		}
		entries = append(entries, driven.VectorEntry{
			ID:        fmt.Sprintf("%s-%d", c.Metadata.ContentHash, i),
			Embedding: embeddings[i],
			Chunk:     c,
		})
	}

	if err := x.store.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("index chunks: %w", err)
	}

	x.ready = true
	x.logger.Info("index built", "chunks", len(entries))
	return len(entries), nil
}

// Search returns the k chunks nearest to the query text, best first.
// An unready or empty index yields no results, not an error.
func (x *RetrievalIndex) Search(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	x.mu.Lock()
	store, ready := x.store, x.ready
	x.mu.Unlock()

	if store == nil || !ready || k <= 0 {
		return nil, nil
	}

	embedding, err := x.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := store.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	chunks := make([]domain.Chunk, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
	}
	return chunks, nil
}

// AllChunks enumerates every chunk for the records deterministically,
// independent of the persisted index state.
func (x *RetrievalIndex) AllChunks(records []*domain.EmailRecord) []domain.Chunk {
	return x.allChunks(records)
}

func (x *RetrievalIndex) allChunks(records []*domain.EmailRecord) []domain.Chunk {
	var chunks []domain.Chunk
	for _, rec := range records {
		recChunks, err := x.chunkRecord(rec)
		if err != nil {
			x.logger.Warn("skipping record", "content_hash", rec.ContentHash, "error", err)
			continue
		}
		chunks = append(chunks, recChunks...)
	}
	return chunks
}

// chunkRecord renders one record as header-prefixed text and splits it
// into overlapping windows sharing the record's metadata.
func (x *RetrievalIndex) chunkRecord(rec *domain.EmailRecord) ([]domain.Chunk, error) {
	body := textproc.CleanHTML(rec.Body)

	text := fmt.Sprintf("From: %s\nSender Email: %s\nDate: %s\nSubject: %s\n\n%s",
		rec.From, rec.SenderEmail, rec.Date, rec.Subject, body)

	results := x.chunker.Chunk(text, driven.ChunkOptions{
		MaxChunkSize: x.cfg.ChunkSize,
		Overlap:      x.cfg.ChunkOverlap,
	})
	if len(results) == 0 {
		return nil, fmt.Errorf("record produced no chunks")
	}

	preview := textproc.Truncate(body, x.cfg.BodyPreviewLen)

	meta := domain.ChunkMetadata{
		ContentHash: rec.ContentHash,
		From:        rec.From,
		SenderEmail: rec.SenderEmail,
		Date:        rec.Date,
		Subject:     rec.Subject,
		BodyPreview: preview,
	}

	chunks := make([]domain.Chunk, len(results))
	for i, r := range results {
		chunks[i] = domain.Chunk{Text: r.Content, Metadata: meta}
	}
	return chunks, nil
}

// ensureStore opens the vector store once. Caller holds the lock.
func (x *RetrievalIndex) ensureStore() driven.VectorStore {
	if x.store != nil {
		return x.store
	}
	store, err := x.open()
	if err != nil {
		x.logger.Error("vector store unavailable", "error", err)
		return nil
	}
	x.store = store
	return store
}

// Close releases the underlying store.
func (x *RetrievalIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.store == nil {
		return nil
	}
	err := x.store.Close()
	x.store = nil
	x.ready = false
	return err
}

// Deduplicate keeps the first chunk seen per content hash, preserving
// order. Chunks without a content hash are dropped.
func Deduplicate(chunks []domain.Chunk) []domain.Chunk {
	seen := make(map[string]bool)
	var unique []domain.Chunk
	for _, c := range chunks {
		hash := c.Metadata.ContentHash
		if hash == "" || seen[hash] {
			continue
		}
		seen[hash] = true
		unique = append(unique, c)
	}
	return unique
}
