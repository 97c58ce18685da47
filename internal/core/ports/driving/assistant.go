package driving

import (
	"context"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

// AssistantService answers natural-language questions about a mailbox.
// It is the driving port consumed by the HTTP and CLI shells.
type AssistantService interface {
	// AnswerQuestion runs the full question-answering pipeline and
	// returns the answer. Collaborator failures are absorbed: the
	// returned result always carries a caller-facing answer string,
	// never an error from a generation call.
	AnswerQuestion(ctx context.Context, question string) *domain.AnswerResult

	// FetchToday fetches and persists today's emails, returning the count.
	FetchToday(ctx context.Context) (int, error)

	// BuildIndex rebuilds the retrieval index from today's records,
	// returning the number of chunks indexed.
	BuildIndex(ctx context.Context) (int, error)

	// Summarize produces a bullet summary of today's emails.
	Summarize(ctx context.Context, bullets int) (string, error)

	// CheckSender reports whether mail arrived today from a sender
	// whose name or address matches the query, with the matches.
	CheckSender(ctx context.Context, query string) (bool, []*domain.EmailRecord, error)

	// ClearMemory erases the conversation transcript.
	ClearMemory(ctx context.Context) error
}
