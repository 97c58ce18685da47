package domain

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama"
)

// Config is the immutable pipeline configuration. One value is built at
// startup and passed to constructors; services never read ambient state.
type Config struct {
	// Chunking
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`

	// Retrieval
	RelevantK        int `json:"relevant_k"`         // k for RELEVANT-scope searches
	CountK           int `json:"count_k"`            // k when the question needs a count
	MaxContextEmails int `json:"max_context_emails"` // cap on ALL-scope context
	BodyPreviewLen   int `json:"body_preview_len"`

	// Conversation memory
	MaxTranscriptEntries int `json:"max_transcript_entries"`

	// Storage
	DataDir   string `json:"data_dir"`   // day-keyed email JSON files
	IndexPath string `json:"index_path"` // persisted vector index
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		ChunkSize:            500,
		ChunkOverlap:         100,
		RelevantK:            20,
		CountK:               50,
		MaxContextEmails:     50,
		BodyPreviewLen:       200,
		MaxTranscriptEntries: 50,
		DataDir:              "data",
		IndexPath:            "index/emails.db",
	}
}
