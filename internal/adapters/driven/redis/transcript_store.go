package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TranscriptStore = (*TranscriptStore)(nil)

// transcriptKey is the Redis list holding the conversation, oldest
// entry first.
const transcriptKey = "mailsage:transcript"

// TranscriptStore implements driven.TranscriptStore on a Redis list,
// so the conversation survives process restarts.
type TranscriptStore struct {
	client *redis.Client
	key    string
}

// NewTranscriptStore creates a Redis-backed TranscriptStore. An empty
// keySuffix uses the default shared transcript; a suffix isolates one
// conversation per deployment.
func NewTranscriptStore(client *redis.Client, keySuffix string) *TranscriptStore {
	key := transcriptKey
	if keySuffix != "" {
		key = transcriptKey + ":" + keySuffix
	}
	return &TranscriptStore{client: client, key: key}
}

// Append pushes one turn onto the end of the transcript.
func (s *TranscriptStore) Append(ctx context.Context, entry domain.TranscriptEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript entry: %w", err)
	}

	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("failed to append transcript entry: %w", err)
	}
	return nil
}

// List returns all turns, oldest first. Entries that fail to decode
// are skipped rather than poisoning the whole transcript.
func (s *TranscriptStore) List(ctx context.Context) ([]domain.TranscriptEntry, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list transcript: %w", err)
	}

	var entries []domain.TranscriptEntry
	for _, item := range items {
		var entry domain.TranscriptEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Trim drops the oldest turns so at most max remain.
func (s *TranscriptStore) Trim(ctx context.Context, max int) error {
	if max <= 0 {
		return s.Clear(ctx)
	}

	if err := s.client.LTrim(ctx, s.key, int64(-max), -1).Err(); err != nil {
		return fmt.Errorf("failed to trim transcript: %w", err)
	}
	return nil
}

// Clear erases the transcript.
func (s *TranscriptStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear transcript: %w", err)
	}
	return nil
}
