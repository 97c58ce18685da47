package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
)

// ConversationMemory is the bounded transcript of prior question/answer
// turns, rendered as text for the reference-resolution prompt.
type ConversationMemory struct {
	store      driven.TranscriptStore
	maxEntries int
	logger     *slog.Logger
}

// NewConversationMemory creates a memory over the given transcript store.
// maxEntries bounds transcript growth: the oldest turns are evicted once
// the bound is exceeded. maxEntries <= 0 disables the bound.
func NewConversationMemory(store driven.TranscriptStore, maxEntries int, logger *slog.Logger) *ConversationMemory {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversationMemory{
		store:      store,
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// Append records one completed question/answer turn.
func (m *ConversationMemory) Append(ctx context.Context, question, answer string) error {
	entry := domain.TranscriptEntry{Question: question, Answer: answer}
	if err := m.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("append transcript entry: %w", err)
	}

	if m.maxEntries > 0 {
		if err := m.store.Trim(ctx, m.maxEntries); err != nil {
			m.logger.Warn("failed to trim transcript", "error", err)
		}
	}
	return nil
}

// Render returns the chronological transcript as human-readable text,
// or the empty string when there is no history.
func (m *ConversationMemory) Render(ctx context.Context) string {
	entries, err := m.store.List(ctx)
	if err != nil {
		m.logger.Warn("failed to load transcript", "error", err)
		return ""
	}
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	for _, e := range entries {
		b.WriteString("Human: ")
		b.WriteString(e.Question)
		b.WriteString("\nAssistant: ")
		b.WriteString(e.Answer)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Clear erases the transcript.
func (m *ConversationMemory) Clear(ctx context.Context) error {
	return m.store.Clear(ctx)
}
