package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
)

// MessageStore normalizes, deduplicates and persists fetched email
// records per calendar day. It is the system-of-record for raw data:
// the retrieval index is always reconstructible from what it holds.
//
// Lookup order for a day is: in-process cache, persisted day file,
// mail-fetch collaborator. Fetch failures degrade to an empty record
// set so the pipeline continues with "no emails found" semantics.
type MessageStore struct {
	fetcher driven.MailFetcher
	records driven.RecordStore
	logger  *slog.Logger

	mu        sync.Mutex
	cached    []*domain.EmailRecord
	cachedDay domain.Day
}

// NewMessageStore creates a message store over the given collaborators.
func NewMessageStore(fetcher driven.MailFetcher, records driven.RecordStore, logger *slog.Logger) *MessageStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageStore{
		fetcher: fetcher,
		records: records,
		logger:  logger,
	}
}

// GetOrFetch returns the records for a day, fetching and persisting
// them on first access. It never returns an error: transport and
// persistence failures are logged and absorbed.
func (s *MessageStore) GetOrFetch(ctx context.Context, day domain.Day) []*domain.EmailRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cachedDay == day && s.cached != nil {
		s.logger.Debug("using cached emails", "day", day, "count", len(s.cached))
		return s.cached
	}

	if s.records.Exists(day) {
		loaded, err := s.records.Load(ctx, day)
		if err == nil {
			s.logger.Info("loaded emails from store", "day", day, "count", len(loaded))
			s.cached = loaded
			s.cachedDay = day
			return loaded
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("failed to load persisted emails, refetching", "day", day, "error", err)
		}
	}

	records, err := s.fetch(ctx, day)
	if err != nil {
		s.logger.Error("failed to fetch emails", "day", day, "error", err)
		records = nil
	}
	s.cached = records
	s.cachedDay = day
	return records
}

// Refresh bypasses the cache and day file, fetching the day's messages
// anew from the mailbox. Unlike GetOrFetch it surfaces the fetch error,
// for callers (CLI, background refresher) that report it.
func (s *MessageStore) Refresh(ctx context.Context, day domain.Day) ([]*domain.EmailRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.fetch(ctx, day)
	if err != nil {
		return nil, err
	}
	s.cached = records
	s.cachedDay = day
	return records, nil
}

// fetch pulls the day's messages from the mailbox, normalizes them and
// persists the full set. Caller holds the lock.
func (s *MessageStore) fetch(ctx context.Context, day domain.Day) ([]*domain.EmailRecord, error) {
	since, err := time.ParseInLocation("2006-01-02", day.String(), time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid day %q: %w", day, err)
	}

	s.logger.Info("fetching emails", "day", day)

	fetched, err := s.fetcher.FetchSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetch since %s: %w", day, err)
	}
	if len(fetched) == 0 {
		return nil, nil
	}

	for _, rec := range fetched {
		rec.Normalize()
	}

	if err := s.records.Save(ctx, day, fetched); err != nil {
		s.logger.Warn("failed to persist emails", "day", day, "error", err)
	}

	s.logger.Info("fetched emails", "day", day, "count", len(fetched))
	return fetched, nil
}
