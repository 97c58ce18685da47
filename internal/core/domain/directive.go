package domain

// Scope determines whether retrieval enumerates the whole corpus or
// returns only semantically close matches.
type Scope string

const (
	ScopeAll      Scope = "ALL"
	ScopeRelevant Scope = "RELEVANT"
)

// AnalysisDirective is the structured interpretation of a user's
// retrieval intent, parsed from free-text model output.
type AnalysisDirective struct {
	Scope       Scope    `json:"scope"`
	SearchTerms []string `json:"search_terms"`
	NeedsCount  bool     `json:"needs_count"`
	InfoType    string   `json:"info_type"`
}

// DefaultDirective returns the directive used when analysis text carries
// no recognizable directive lines.
func DefaultDirective() AnalysisDirective {
	return AnalysisDirective{
		Scope:    ScopeRelevant,
		InfoType: "general",
	}
}
