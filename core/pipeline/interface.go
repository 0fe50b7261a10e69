package pipeline

// ChunkFunc is a function that splits a document text into chunk texts.
type ChunkFunc func(text string) ([]string, error)

// Embedder generates embedding vectors for texts. Implementations must be
// safe for concurrent use once constructed.
type Embedder interface {
	// ModelName returns the name of the loaded embedding model.
	ModelName() string
	// Embed generates an embedding for a single text.
	Embed(text string) ([]float32, error)
	// EmbedBatch generates embeddings for a batch of texts in one pass.
	EmbedBatch(texts []string) ([][]float32, error)
	// Close releases the underlying model session.
	Close() error
}
