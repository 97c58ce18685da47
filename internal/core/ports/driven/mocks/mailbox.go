package mocks

import (
	"context"
	"time"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

// MockMailFetcher is a mock implementation of MailFetcher for testing
type MockMailFetcher struct {
	records []*domain.EmailRecord
	err     error

	// FetchCalls counts calls to FetchSince
	FetchCalls int
}

// NewMockMailFetcher creates a new MockMailFetcher
func NewMockMailFetcher() *MockMailFetcher {
	return &MockMailFetcher{}
}

// SetRecords sets the records returned by FetchSince
func (m *MockMailFetcher) SetRecords(records []*domain.EmailRecord) {
	m.records = records
}

// SetError makes FetchSince fail with err
func (m *MockMailFetcher) SetError(err error) {
	m.err = err
}

func (m *MockMailFetcher) FetchSince(ctx context.Context, since time.Time) ([]*domain.EmailRecord, error) {
	m.FetchCalls++
	if m.err != nil {
		return nil, m.err
	}
	// Return copies so callers can't mutate the fixtures.
	out := make([]*domain.EmailRecord, len(m.records))
	for i, r := range m.records {
		clone := *r
		out[i] = &clone
	}
	return out, nil
}

// MockRecordStore is an in-memory mock implementation of RecordStore
type MockRecordStore struct {
	days map[domain.Day][]*domain.EmailRecord

	// LoadErr, when set, makes Load fail
	LoadErr error
	// SaveErr, when set, makes Save fail
	SaveErr error
}

// NewMockRecordStore creates a new MockRecordStore
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		days: make(map[domain.Day][]*domain.EmailRecord),
	}
}

func (m *MockRecordStore) Load(ctx context.Context, day domain.Day) ([]*domain.EmailRecord, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	records, ok := m.days[day]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return records, nil
}

func (m *MockRecordStore) Save(ctx context.Context, day domain.Day, records []*domain.EmailRecord) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.days[day] = records
	return nil
}

func (m *MockRecordStore) Exists(day domain.Day) bool {
	_, ok := m.days[day]
	return ok
}
