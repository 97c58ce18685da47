package domain

// Chunk is a bounded slice of one email's text plus metadata, the unit
// stored in the retrieval index. Many chunks may share one ContentHash.
type Chunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata carries the identifying fields of the email a chunk was
// cut from.
type ChunkMetadata struct {
	ContentHash string `json:"content_hash"`
	From        string `json:"from"`
	SenderEmail string `json:"sender_email"`
	Date        string `json:"date"`
	Subject     string `json:"subject"`
	BodyPreview string `json:"body_preview"`
}
