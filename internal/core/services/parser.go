package services

import (
	"strings"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

// AnalysisParser extracts a structured retrieval directive from the
// free-text output of the query-analysis generation call.
//
// The grammar is line-oriented. Recognized lines:
//
//	SCOPE: ALL | RELEVANT
//	SEARCH_TERMS: comma, separated, keywords
//	NEEDS_COUNT: YES | NO
//	INFO_TYPE: what the user wants
//
// Unrecognized lines are ignored. Parse is total: any input, including
// empty or garbled text, yields a valid directive with defaults.
type AnalysisParser struct{}

// NewAnalysisParser creates a new parser.
func NewAnalysisParser() *AnalysisParser {
	return &AnalysisParser{}
}

// Parse scans the analysis text and returns the directive it describes.
func (p *AnalysisParser) Parse(text string) domain.AnalysisDirective {
	directive := domain.DefaultDirective()

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "SCOPE":
			if strings.Contains(strings.ToUpper(value), "ALL") {
				directive.Scope = domain.ScopeAll
			}
		case "SEARCH_TERMS":
			directive.SearchTerms = splitTerms(value)
		case "NEEDS_COUNT":
			if strings.Contains(strings.ToUpper(value), "YES") {
				directive.NeedsCount = true
			}
		case "INFO_TYPE":
			if value != "" {
				directive.InfoType = value
			}
		}
	}

	return directive
}

// splitTerms splits a comma-separated keyword list, dropping empties.
func splitTerms(value string) []string {
	if value == "" {
		return nil
	}
	var terms []string
	for _, term := range strings.Split(value, ",") {
		term = strings.TrimSpace(term)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}
