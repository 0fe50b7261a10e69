package model

// ChunkMetadata carries the position of a chunk within its source document.
type ChunkMetadata struct {
	Category    string `json:"category"`
	SourceName  string `json:"source_name"`
	ChunkIndex  int    `json:"chunk_index"`
	ChunkLength int    `json:"chunk_length"`
	TotalChunks int    `json:"total_chunks"`
}

// DocumentChunk is the atomic unit of semantic retrieval: a bounded
// excerpt of a source document with its embedding. Chunks are immutable
// once embedded.
type DocumentChunk struct {
	ChunkID   string        `json:"chunk_id"`
	Text      string        `json:"text"`
	Source    string        `json:"source"`
	Metadata  ChunkMetadata `json:"metadata"`
	Embedding []float32     `json:"embedding,omitempty"`
}
