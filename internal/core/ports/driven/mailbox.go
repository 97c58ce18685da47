package driven

import (
	"context"
	"time"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

// MailFetcher retrieves messages from a mailbox.
// Implementations return records with raw header values; normalization
// (date formatting, content hashing) is the caller's responsibility.
type MailFetcher interface {
	// FetchSince fetches all messages received on or after the given time.
	// May fail on transport or authentication errors.
	FetchSince(ctx context.Context, since time.Time) ([]*domain.EmailRecord, error)
}

// RecordStore persists fetched email records, one collection per
// calendar day. The day file is the system-of-record for raw data.
type RecordStore interface {
	// Load reads the records persisted for a day.
	// Returns domain.ErrNotFound if no file exists for the day.
	Load(ctx context.Context, day domain.Day) ([]*domain.EmailRecord, error)

	// Save persists the full record set for a day, replacing any
	// previous set atomically (write temp, rename).
	Save(ctx context.Context, day domain.Day, records []*domain.EmailRecord) error

	// Exists reports whether a persisted file exists for the day.
	Exists(day domain.Day) bool
}

// TranscriptStore persists conversation question/answer turns in order.
type TranscriptStore interface {
	// Append adds one turn to the end of the transcript.
	Append(ctx context.Context, entry domain.TranscriptEntry) error

	// List returns all turns, oldest first.
	List(ctx context.Context) ([]domain.TranscriptEntry, error)

	// Trim drops the oldest turns until at most max remain.
	Trim(ctx context.Context, max int) error

	// Clear removes all turns.
	Clear(ctx context.Context) error
}
