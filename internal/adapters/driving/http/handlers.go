package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

// AskRequest is the body for POST /api/v1/ask
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse mirrors the pipeline result for one question
type AskResponse struct {
	Question         string `json:"question"`
	ResolvedQuestion string `json:"resolved_question"`
	Answer           string `json:"answer"`
	EmailsRetrieved  int    `json:"emails_retrieved"`
	ScopeUsed        string `json:"scope_used"`
}

// CountResponse reports a count of processed items
type CountResponse struct {
	Count int `json:"count"`
}

// SummarizeRequest is the body for POST /api/v1/summarize
type SummarizeRequest struct {
	Bullets int `json:"bullets"`
}

// SummarizeResponse carries the generated summary
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// SenderResponse reports whether a sender wrote today
type SenderResponse struct {
	Found   bool                  `json:"found"`
	Count   int                   `json:"count"`
	Matches []*domain.EmailRecord `json:"matches,omitempty"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady verifies the configured backends respond. A missing
// backend is skipped, not failed: the in-memory transcript store has
// nothing to ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Pinger{
		"generator": s.generator,
		"redis":     s.redis,
	}

	for name, p := range checks {
		if p == nil {
			continue
		}
		if err := p.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "backend", name, "error", err)
			writeError(w, http.StatusServiceUnavailable, name+" unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Pipeline endpoints

// handleAsk runs one question through the pipeline. Pipeline-internal
// failures still produce 200 with the fallback answer; only a bad
// request errors.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	result := s.assistant.AnswerQuestion(r.Context(), req.Question)

	writeJSON(w, http.StatusOK, AskResponse{
		Question:         result.Question,
		ResolvedQuestion: result.ResolvedQuestion,
		Answer:           result.Answer,
		EmailsRetrieved:  result.EmailsRetrieved,
		ScopeUsed:        string(result.ScopeUsed),
	})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	count, err := s.assistant.FetchToday(r.Context())
	if err != nil {
		s.logger.Error("fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, "mailbox fetch failed")
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}

func (s *Server) handleBuildIndex(w http.ResponseWriter, r *http.Request) {
	count, err := s.assistant.BuildIndex(r.Context())
	if err != nil {
		s.logger.Error("index build failed", "error", err)
		writeError(w, http.StatusInternalServerError, "index build failed")
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if r.Body != nil {
		// An empty body means default bullet count
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	summary, err := s.assistant.Summarize(r.Context(), req.Bullets)
	if err != nil {
		s.logger.Error("summarize failed", "error", err)
		writeError(w, http.StatusInternalServerError, "summarize failed")
		return
	}
	writeJSON(w, http.StatusOK, SummarizeResponse{Summary: summary})
}

func (s *Server) handleCheckSender(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	found, matches, err := s.assistant.CheckSender(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "query parameter q is required")
			return
		}
		s.logger.Error("sender check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "sender check failed")
		return
	}

	writeJSON(w, http.StatusOK, SenderResponse{
		Found:   found,
		Count:   len(matches),
		Matches: matches,
	})
}

func (s *Server) handleClearMemory(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.ClearMemory(r.Context()); err != nil {
		s.logger.Error("clear memory failed", "error", err)
		writeError(w, http.StatusInternalServerError, "clear memory failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Response helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
