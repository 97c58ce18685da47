// Package memory provides in-process implementations of driven ports,
// used when no external backing service is configured.
package memory

import (
	"context"
	"sync"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// TranscriptStore keeps the conversation transcript in process memory.
// It is owned by a single assistant instance; the mutex guards against
// concurrent HTTP callers sharing that instance.
type TranscriptStore struct {
	mu      sync.Mutex
	entries []domain.TranscriptEntry
}

// NewTranscriptStore creates an empty in-memory transcript store.
func NewTranscriptStore() *TranscriptStore {
	return &TranscriptStore{}
}

// Append adds one turn to the end of the transcript.
func (s *TranscriptStore) Append(_ context.Context, entry domain.TranscriptEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// List returns all turns, oldest first.
func (s *TranscriptStore) List(_ context.Context) ([]domain.TranscriptEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TranscriptEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Trim drops the oldest turns until at most max remain.
func (s *TranscriptStore) Trim(_ context.Context, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if max >= 0 && len(s.entries) > max {
		s.entries = append([]domain.TranscriptEntry(nil), s.entries[len(s.entries)-max:]...)
	}
	return nil
}

// Clear removes all turns.
func (s *TranscriptStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}
