// Package imap fetches email over IMAP using go-imap v2.
package imap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MailFetcher = (*Fetcher)(nil)

// Fetcher implements MailFetcher against an IMAP mailbox. Each fetch
// opens a fresh connection and logs out when done; the pipeline fetches
// at most a handful of times per day, so connection reuse buys nothing.
type Fetcher struct {
	settings domain.MailboxSettings
	logger   *slog.Logger
}

// NewFetcher creates an IMAP fetcher for the configured mailbox.
func NewFetcher(settings domain.MailboxSettings, logger *slog.Logger) (*Fetcher, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: mailbox host, username and password are required", domain.ErrInvalidInput)
	}
	if settings.Port == 0 {
		settings.Port = 993
	}
	if settings.Folder == "" {
		settings.Folder = "INBOX"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{settings: settings, logger: logger}, nil
}

// FetchSince returns every message received on or after since.
func (f *Fetcher) FetchSince(ctx context.Context, since time.Time) ([]*domain.EmailRecord, error) {
	client, err := f.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select(f.settings.Folder, nil).Wait(); err != nil {
		return nil, fmt.Errorf("%w: selecting %s: %v", domain.ErrMailboxUnavailable, f.settings.Folder, err)
	}

	searchData, err := client.UIDSearch(&imap.SearchCriteria{Since: since}, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("%w: searching messages: %v", domain.ErrMailboxUnavailable, err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	var records []*domain.EmailRecord
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			f.logger.Warn("failed to collect message, skipping", "error", err)
			continue
		}

		records = append(records, f.recordFromBuffer(buf, bodySection))
	}

	if err := fetchCmd.Close(); err != nil {
		return records, fmt.Errorf("%w: fetching messages: %v", domain.ErrMailboxUnavailable, err)
	}

	f.logger.Info("fetched messages", "folder", f.settings.Folder, "count", len(records))
	return records, nil
}

// connect dials the server over TLS and authenticates.
func (f *Fetcher) connect(_ context.Context) (*imapclient.Client, error) {
	addr := fmt.Sprintf("%s:%d", f.settings.Host, f.settings.Port)

	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to %s: %v", domain.ErrMailboxUnavailable, addr, err)
	}

	if err := client.Login(f.settings.Username, f.settings.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("%w: authentication failed for %s: %v",
			domain.ErrMailboxUnavailable, f.settings.Username, err)
	}
	return client, nil
}

// recordFromBuffer maps one fetched message to an EmailRecord. The raw
// date header is kept as-is; normalization happens downstream.
func (f *Fetcher) recordFromBuffer(buf *imapclient.FetchMessageBuffer, section *imap.FetchItemBodySection) *domain.EmailRecord {
	rec := &domain.EmailRecord{}

	if buf.Envelope != nil {
		rec.Subject = buf.Envelope.Subject
		if !buf.Envelope.Date.IsZero() {
			rec.Date = buf.Envelope.Date.Format(time.RFC1123Z)
		}

		// Message-ID is the stable identity; the numeric UID changes
		// when the mailbox is rebuilt.
		rec.UID = buf.Envelope.MessageID
		if rec.UID == "" {
			rec.UID = fmt.Sprintf("imap-uid-%d", buf.UID)
		}

		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			rec.SenderEmail = from.Addr()
			if from.Name != "" {
				rec.From = fmt.Sprintf("%s <%s>", from.Name, from.Addr())
			} else {
				rec.From = from.Addr()
			}
		}
	}

	if raw := buf.FindBodySection(section); raw != nil {
		rec.Body = extractBody(raw)
	}
	return rec
}

// extractBody parses a raw RFC 2822 message and returns the text/plain
// part, falling back to text/html, falling back to the raw bytes.
func extractBody(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}
	defer mr.Close()

	var textBody, htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := header.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			textBody = string(body)
		case strings.HasPrefix(contentType, "text/html"):
			htmlBody = string(body)
		}
	}

	if textBody != "" {
		return textBody
	}
	if htmlBody != "" {
		return htmlBody
	}
	return string(raw)
}
