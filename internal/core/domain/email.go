package domain

import (
	"crypto/md5"
	"encoding/hex"
	"net/mail"
	"time"
)

// EmailRecord represents a normalized email message fetched from a mailbox.
// Records are immutable after creation and persisted one JSON array per
// calendar day.
type EmailRecord struct {
	UID         string `json:"uid"`
	From        string `json:"from"`
	SenderEmail string `json:"sender_email"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Date        string `json:"date"` // normalized local timestamp, "2006-01-02 15:04:05"
	ContentHash string `json:"content_hash"`
}

// Normalize fills in derived fields on a freshly fetched record:
// the local-time Date string and the deduplication ContentHash.
func (r *EmailRecord) Normalize() {
	r.Date = NormalizeDate(r.Date)
	r.ContentHash = ContentHash(r.UID, r.From, r.Date, r.Subject)
}

// ContentHash derives the stable deduplication key for a message.
// The message UID wins when present; otherwise the hash falls back to a
// composite of sender, date and subject. Identical inputs always produce
// the identical hash.
func ContentHash(uid, from, date, subject string) string {
	sum := [16]byte{}
	if uid != "" {
		sum = md5.Sum([]byte(uid))
	} else {
		sum = md5.Sum([]byte(from + date + subject))
	}
	return hex.EncodeToString(sum[:])
}

// NormalizeDate parses an RFC 5322 date header and renders it in local
// time as "2006-01-02 15:04:05". Unparseable input is returned unchanged
// rather than dropped, so the raw header is never lost.
func NormalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := mail.ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// Day identifies one calendar day of mail, the storage granularity for
// fetched records.
type Day string

// DayOf returns the Day for a point in time.
func DayOf(t time.Time) Day {
	return Day(t.Format("2006-01-02"))
}

// Today returns the current calendar day.
func Today() Day {
	return DayOf(time.Now())
}

// String returns the ISO date form of the day.
func (d Day) String() string {
	return string(d)
}
