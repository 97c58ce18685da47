package services

import (
	"testing"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

func TestAnalysisParser_Parse(t *testing.T) {
	parser := NewAnalysisParser()

	tests := []struct {
		name           string
		input          string
		wantScope      domain.Scope
		wantTerms      []string
		wantNeedsCount bool
		wantInfoType   string
	}{
		{
			name:           "all scope with count",
			input:          "SCOPE: ALL\nNEEDS_COUNT: YES\n",
			wantScope:      domain.ScopeAll,
			wantTerms:      nil,
			wantNeedsCount: true,
			wantInfoType:   "general",
		},
		{
			name:           "full directive",
			input:          "SCOPE: RELEVANT\nSEARCH_TERMS: license, renewal\nNEEDS_COUNT: NO\nINFO_TYPE: links",
			wantScope:      domain.ScopeRelevant,
			wantTerms:      []string{"license", "renewal"},
			wantNeedsCount: false,
			wantInfoType:   "links",
		},
		{
			name:         "empty input yields defaults",
			input:        "",
			wantScope:    domain.ScopeRelevant,
			wantInfoType: "general",
		},
		{
			name:         "garbage yields defaults",
			input:        "the model rambled about something\nentirely unrelated",
			wantScope:    domain.ScopeRelevant,
			wantInfoType: "general",
		},
		{
			name:         "all token matched anywhere in value",
			input:        "SCOPE: the user wants all emails",
			wantScope:    domain.ScopeAll,
			wantInfoType: "general",
		},
		{
			name:         "case insensitive keys",
			input:        "scope: all\nneeds_count: yes",
			wantScope:    domain.ScopeAll,
			wantInfoType: "general",
			wantNeedsCount: true,
		},
		{
			name:         "duplicate lines last wins",
			input:        "INFO_TYPE: senders\nINFO_TYPE: links",
			wantScope:    domain.ScopeRelevant,
			wantInfoType: "links",
		},
		{
			name:         "surrounding prose ignored",
			input:        "Here is my analysis:\nSCOPE: ALL\nHope that helps!",
			wantScope:    domain.ScopeAll,
			wantInfoType: "general",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parser.Parse(tt.input)

			if d.Scope != tt.wantScope {
				t.Errorf("Scope = %s, want %s", d.Scope, tt.wantScope)
			}
			if d.NeedsCount != tt.wantNeedsCount {
				t.Errorf("NeedsCount = %v, want %v", d.NeedsCount, tt.wantNeedsCount)
			}
			if d.InfoType != tt.wantInfoType {
				t.Errorf("InfoType = %q, want %q", d.InfoType, tt.wantInfoType)
			}
			if len(d.SearchTerms) != len(tt.wantTerms) {
				t.Fatalf("SearchTerms = %v, want %v", d.SearchTerms, tt.wantTerms)
			}
			for i, term := range tt.wantTerms {
				if d.SearchTerms[i] != term {
					t.Errorf("SearchTerms[%d] = %q, want %q", i, d.SearchTerms[i], term)
				}
			}
		})
	}
}

func TestAnalysisParser_NeverPanics(t *testing.T) {
	parser := NewAnalysisParser()

	inputs := []string{
		":",
		":::::",
		"SCOPE:",
		"SEARCH_TERMS: ,,,",
		"NEEDS_COUNT:\nSCOPE\nINFO_TYPE:",
		"\n\n\n",
	}
	for _, in := range inputs {
		d := parser.Parse(in)
		if d.Scope != domain.ScopeAll && d.Scope != domain.ScopeRelevant {
			t.Errorf("invalid scope %q for input %q", d.Scope, in)
		}
	}
}
