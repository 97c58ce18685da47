package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driven"
	"github.com/mailsage-labs/mailsage-core/internal/core/ports/driving"
	"github.com/mailsage-labs/mailsage-core/internal/textproc"
)

// Ensure Assistant implements AssistantService
var _ driving.AssistantService = (*Assistant)(nil)

// noEmailsContext is the context block used when the mailbox is empty.
const noEmailsContext = "No emails found."

// errorAnswer is the single caller-facing answer used whenever a
// generation call fails. The underlying error is logged, never surfaced.
const errorAnswer = "Sorry - something went wrong while answering your question. Please try again."

const contextDelimiter = "================================================================================"

// Assistant runs the four-stage question-answering pipeline:
//
//  1. ResolveReferences - rewrite the question as self-contained using
//     the conversation transcript
//  2. AnalyzeQuery      - obtain a retrieval directive and parse it
//  3. RetrieveEmails    - choose ALL-scope enumeration or similarity
//     search and assemble the context block
//  4. GenerateAnswer    - synthesize the answer from the context
//
// Stages run strictly in order with no branching back. Exactly three
// generation calls are made per question; retrieval makes none.
type Assistant struct {
	cfg       domain.Config
	store     *MessageStore
	index     *RetrievalIndex
	memory    *ConversationMemory
	parser    *AnalysisParser
	generator driven.Generator
	logger    *slog.Logger
}

// AssistantConfig holds dependencies for Assistant.
type AssistantConfig struct {
	Config    domain.Config
	Store     *MessageStore
	Index     *RetrievalIndex
	Memory    *ConversationMemory
	Generator driven.Generator
	Logger    *slog.Logger
}

// NewAssistant creates the pipeline orchestrator. It exclusively owns
// the given index and memory for its lifetime.
func NewAssistant(cfg AssistantConfig) *Assistant {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		cfg:       cfg.Config,
		store:     cfg.Store,
		index:     cfg.Index,
		memory:    cfg.Memory,
		parser:    NewAnalysisParser(),
		generator: cfg.Generator,
		logger:    logger,
	}
}

// AnswerQuestion runs the pipeline for one question. Generation
// failures at any stage yield the uniform error answer; the result is
// never nil and never carries an error.
func (a *Assistant) AnswerQuestion(ctx context.Context, question string) *domain.AnswerResult {
	result := &domain.AnswerResult{Question: question}

	a.logger.Info("answering question", "question", question)

	// Stage 1: resolve references against the transcript.
	transcript := a.memory.Render(ctx)
	resolved, err := a.resolveReferences(ctx, question, transcript)
	if err != nil {
		a.logger.Error("reference resolution failed", "error", err)
		result.Answer = errorAnswer
		return result
	}
	result.ResolvedQuestion = resolved

	// Stage 2: analyze retrieval intent.
	directive, err := a.analyzeQuery(ctx, resolved)
	if err != nil {
		a.logger.Error("query analysis failed", "error", err)
		result.Answer = errorAnswer
		return result
	}

	// Stage 3: retrieve emails per the directive. No generation call.
	contextBlock, retrieved := a.retrieveEmails(ctx, resolved, directive)
	result.EmailsRetrieved = retrieved
	result.ScopeUsed = directive.Scope

	// Stage 4: synthesize the answer.
	answer, err := a.generateAnswer(ctx, question, resolved, contextBlock, retrieved, directive.Scope)
	if err != nil {
		a.logger.Error("answer generation failed", "error", err)
		result.Answer = errorAnswer
		return result
	}
	result.Answer = answer

	if err := a.memory.Append(ctx, question, answer); err != nil {
		a.logger.Warn("failed to record turn", "error", err)
	}

	a.logger.Info("question answered",
		"resolved", resolved,
		"scope", directive.Scope,
		"emails_retrieved", retrieved,
	)
	return result
}

// resolveReferences asks the generator for a self-contained restatement
// of the question. An empty completion falls back to the original.
func (a *Assistant) resolveReferences(ctx context.Context, question, transcript string) (string, error) {
	if transcript == "" {
		transcript = "(no prior conversation)"
	}

	out, err := a.generator.Generate(ctx, fmt.Sprintf(resolvePromptTemplate, transcript, question))
	if err != nil {
		return "", err
	}

	resolved := strings.TrimSpace(out)
	if resolved == "" {
		resolved = question
	}
	return resolved, nil
}

// analyzeQuery asks the generator for a retrieval directive and parses
// it. Parsing never fails; only the generation call can.
func (a *Assistant) analyzeQuery(ctx context.Context, resolved string) (domain.AnalysisDirective, error) {
	out, err := a.generator.Generate(ctx, fmt.Sprintf(analysisPromptTemplate, resolved))
	if err != nil {
		return domain.AnalysisDirective{}, err
	}
	return a.parser.Parse(out), nil
}

// retrieveEmails obtains today's records and assembles the context
// block. All failures here degrade to an empty context; the pipeline
// always proceeds to answer generation.
func (a *Assistant) retrieveEmails(ctx context.Context, resolved string, directive domain.AnalysisDirective) (string, int) {
	records := a.store.GetOrFetch(ctx, domain.Today())
	if len(records) == 0 {
		return noEmailsContext, 0
	}

	if _, err := a.index.LoadOrBuild(ctx, records); err != nil {
		a.logger.Warn("index unavailable, answering without search", "error", err)
	}

	var chunks []domain.Chunk
	if directive.Scope == domain.ScopeAll {
		chunks = Deduplicate(a.index.AllChunks(records))
		if len(chunks) > a.cfg.MaxContextEmails {
			chunks = chunks[:a.cfg.MaxContextEmails]
		}
	} else {
		k := a.cfg.RelevantK
		if directive.NeedsCount {
			k = a.cfg.CountK
		}
		if k > len(records) {
			k = len(records)
		}

		found, err := a.index.Search(ctx, resolved, k)
		if err != nil {
			a.logger.Warn("similarity search failed", "error", err)
		}
		chunks = Deduplicate(found)
	}

	return a.formatContext(chunks), len(chunks)
}

// formatContext renders chunks as the numbered, delimited block the
// answer prompt consumes.
func (a *Assistant) formatContext(chunks []domain.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's date: %s\n", domain.Today())
	fmt.Fprintf(&b, "Total emails: %d\n\n", len(chunks))
	b.WriteString(contextDelimiter + "\n\n")

	for i, c := range chunks {
		fmt.Fprintf(&b, "EMAIL #%d:\n%s\n", i+1, c.Text)
		b.WriteString(contextDelimiter + "\n\n")
	}
	return b.String()
}

// generateAnswer makes the final synthesis call.
func (a *Assistant) generateAnswer(ctx context.Context, question, resolved, contextBlock string, retrieved int, scope domain.Scope) (string, error) {
	prompt := fmt.Sprintf(answerPromptTemplate, question, resolved, retrieved, scope, contextBlock)
	out, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(out)
	if answer == "" {
		answer = "No answer generated."
	}
	return answer, nil
}

// FetchToday fetches and persists today's emails, returning the count.
func (a *Assistant) FetchToday(ctx context.Context) (int, error) {
	records, err := a.store.Refresh(ctx, domain.Today())
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// BuildIndex rebuilds the retrieval index from today's records.
func (a *Assistant) BuildIndex(ctx context.Context) (int, error) {
	records := a.store.GetOrFetch(ctx, domain.Today())
	return a.index.Build(ctx, records)
}

// Summarize produces a bullet summary of today's emails.
func (a *Assistant) Summarize(ctx context.Context, bullets int) (string, error) {
	if bullets <= 0 {
		bullets = 5
	}

	records := a.store.GetOrFetch(ctx, domain.Today())
	if len(records) == 0 {
		return "No emails to summarize.", nil
	}

	var b strings.Builder
	for _, rec := range records {
		preview := textproc.Truncate(rec.Body, a.cfg.BodyPreviewLen)
		fmt.Fprintf(&b, "- From: %s | Subject: %s | %s\n", rec.From, rec.Subject, preview)
	}

	out, err := a.generator.Generate(ctx, fmt.Sprintf(summaryPromptTemplate, bullets, b.String()))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// CheckSender reports whether mail arrived today from a sender whose
// display name or address contains the query, case-insensitively.
func (a *Assistant) CheckSender(ctx context.Context, query string) (bool, []*domain.EmailRecord, error) {
	if strings.TrimSpace(query) == "" {
		return false, nil, domain.ErrInvalidInput
	}

	needle := strings.ToLower(query)
	var matches []*domain.EmailRecord
	for _, rec := range a.store.GetOrFetch(ctx, domain.Today()) {
		if strings.Contains(strings.ToLower(rec.From), needle) ||
			strings.Contains(strings.ToLower(rec.SenderEmail), needle) {
			matches = append(matches, rec)
		}
	}
	return len(matches) > 0, matches, nil
}

// ClearMemory erases the conversation transcript.
func (a *Assistant) ClearMemory(ctx context.Context) error {
	return a.memory.Clear(ctx)
}
