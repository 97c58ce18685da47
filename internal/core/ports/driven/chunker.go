package driven

// Chunker splits email text into searchable chunks
type Chunker interface {
	// Chunk splits content into chunks
	Chunk(content string, opts ChunkOptions) []ChunkResult
}

// ChunkOptions configures chunking behavior
type ChunkOptions struct {
	MaxChunkSize int // Maximum characters per chunk
	Overlap      int // Character overlap between chunks
}

// ChunkResult represents a chunk with position info
type ChunkResult struct {
	Content   string
	StartChar int
	EndChar   int
	Position  int
}

// DefaultChunkOptions returns sensible defaults
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		MaxChunkSize: 500,
		Overlap:      100,
	}
}
