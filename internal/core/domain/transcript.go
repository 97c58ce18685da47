package domain

// TranscriptEntry is one question/answer turn of a conversation.
type TranscriptEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnswerResult is the terminal output of one pipeline run.
type AnswerResult struct {
	Question         string `json:"question"`
	ResolvedQuestion string `json:"resolved_question"`
	Answer           string `json:"answer"`
	EmailsRetrieved  int    `json:"emails_retrieved"`
	ScopeUsed        Scope  `json:"scope_used"`
}
