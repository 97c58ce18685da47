package mocks

import (
	"context"
	"math"
	"sort"

	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
)

// MockVectorStore is an in-memory mock implementation of VectorStore
type MockVectorStore struct {
	entries map[string]driven.VectorEntry
	order   []string

	// CountErr, when set, makes the next Count fail (simulates a
	// corrupt persisted index)
	CountErr error
	// AddErr, when set, makes Add fail
	AddErr error

	// ResetCalls counts calls to Reset
	ResetCalls int
}

// NewMockVectorStore creates a new MockVectorStore
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{
		entries: make(map[string]driven.VectorEntry),
	}
}

func (m *MockVectorStore) Add(ctx context.Context, entries []driven.VectorEntry) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	for _, e := range entries {
		if _, ok := m.entries[e.ID]; !ok {
			m.order = append(m.order, e.ID)
		}
		m.entries[e.ID] = e
	}
	return nil
}

func (m *MockVectorStore) Search(ctx context.Context, embedding []float32, k int) ([]driven.ScoredChunk, error) {
	var hits []driven.ScoredChunk
	for _, id := range m.order {
		e := m.entries[id]
		hits = append(hits, driven.ScoredChunk{
			Chunk: e.Chunk,
			Score: cosine(embedding, e.Embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *MockVectorStore) Count(ctx context.Context) (int, error) {
	if m.CountErr != nil {
		err := m.CountErr
		m.CountErr = nil
		return 0, err
	}
	return len(m.entries), nil
}

func (m *MockVectorStore) Reset(ctx context.Context) error {
	m.ResetCalls++
	m.entries = make(map[string]driven.VectorEntry)
	m.order = nil
	return nil
}

func (m *MockVectorStore) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
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
