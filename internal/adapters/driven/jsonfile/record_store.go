// Package jsonfile persists email records as one JSON file per
// calendar day under a data directory.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore stores each day's records in data/emails_<day>.json.
// Writes go through a temp file and rename so a crashed write never
// leaves a truncated day file behind.
type RecordStore struct {
	dir string
}

// NewRecordStore creates a record store rooted at dir, creating the
// directory if needed.
func NewRecordStore(dir string) (*RecordStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &RecordStore{dir: dir}, nil
}

// Load reads the records persisted for a day. A missing day file maps
// to domain.ErrNotFound.
func (s *RecordStore) Load(_ context.Context, day domain.Day) ([]*domain.EmailRecord, error) {
	data, err := os.ReadFile(s.path(day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read day file: %w", err)
	}

	var records []*domain.EmailRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse day file: %w", err)
	}
	return records, nil
}

// Save persists the records for a day, replacing any previous file.
func (s *RecordStore) Save(_ context.Context, day domain.Day, records []*domain.EmailRecord) error {
	if records == nil {
		records = []*domain.EmailRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "emails_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(day)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace day file: %w", err)
	}
	return nil
}

// Exists reports whether a day file is present.
func (s *RecordStore) Exists(day domain.Day) bool {
	_, err := os.Stat(s.path(day))
	return err == nil
}

func (s *RecordStore) path(day domain.Day) string {
	return filepath.Join(s.dir, fmt.Sprintf("emails_%s.json", day))
}
