package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/medassist-io/graphrag/core/pipeline"
	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/model"
	"github.com/panjf2000/ants/v2"
)

// Document is a raw document handed to the store for ingestion.
type Document struct {
	Text       string
	Category   string
	SourceName string
}

// Stats describes the current state of the store.
type Stats struct {
	TotalChunks      int            `json:"total_chunks"`
	ModelName        string         `json:"model_name"`
	ChunkSize        int            `json:"chunk_size"`
	OverlapSize      int            `json:"overlap_size"`
	VectorDimension  int            `json:"vector_dimension"`
	TypeDistribution map[string]int `json:"type_distribution"`
	MinLength        int            `json:"min_length"`
	MaxLength        int            `json:"max_length"`
	AvgLength        float64        `json:"avg_length"`
	TotalCharacters  int            `json:"total_characters"`
	Status           string         `json:"status"`
}

// Store holds document chunks and their embeddings in memory and answers
// semantic similarity searches over them. All exported methods are safe for
// concurrent use.
type Store struct {
	mu           sync.RWMutex
	chunks       []model.DocumentChunk
	chunkCounter int

	chunker          pipeline.ChunkFunc
	embedder         pipeline.Embedder
	chunkConfig      model.ChunkerConfig
	ingestionWorkers int
	logger           *slog.Logger
}

// New creates a store around the given chunker and embedder.
func New(chunker pipeline.ChunkFunc, embedder pipeline.Embedder, chunkConfig model.ChunkerConfig, logger *slog.Logger) *Store {
	return &Store{
		chunker:          chunker,
		embedder:         embedder,
		chunkConfig:      chunkConfig,
		ingestionWorkers: 4,
		logger:           logger,
	}
}

// IngestDocument chunks one document and appends the chunks to the store.
// Embeddings are generated separately with GenerateEmbeddings.
func (s *Store) IngestDocument(ctx context.Context, doc Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return 0, nil
	}

	texts, err := s.chunker(doc.Text)
	if err != nil {
		return 0, helper.NewError("chunk document", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, text := range texts {
		s.chunks = append(s.chunks, model.DocumentChunk{
			ChunkID: fmt.Sprintf("%s_%d", doc.Category, s.chunkCounter),
			Text:    text,
			Source:  doc.SourceName,
			Metadata: model.ChunkMetadata{
				Category:    doc.Category,
				SourceName:  doc.SourceName,
				ChunkIndex:  i,
				ChunkLength: len([]rune(text)),
				TotalChunks: len(texts),
			},
		})
		s.chunkCounter++
	}

	s.logger.Info("Ingested document",
		slog.String("source", doc.SourceName),
		slog.String("category", doc.Category),
		slog.Int("chunks", len(texts)))

	return len(texts), nil
}

// IngestDocuments chunks a batch of documents on a worker pool. A failing
// document is logged and skipped; the count of successfully ingested
// documents is returned.
func (s *Store) IngestDocuments(ctx context.Context, docs []Document) (int, error) {
	pool, err := ants.NewPool(s.ingestionWorkers)
	if err != nil {
		return 0, helper.NewError("create ingestion pool", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var processedMu sync.Mutex
	processed := 0

	for _, doc := range docs {
		doc := doc
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if _, err := s.IngestDocument(ctx, doc); err != nil {
				s.logger.Error("Failed to ingest document",
					slog.String("source", doc.SourceName),
					slog.String("error", err.Error()))
				return
			}
			processedMu.Lock()
			processed++
			processedMu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			s.logger.Error("Failed to submit document",
				slog.String("source", doc.SourceName),
				slog.String("error", submitErr.Error()))
		}
	}
	wg.Wait()

	s.logger.Info("Document ingestion finished",
		slog.Int("documents", processed),
		slog.Int("chunks", s.Len()))

	return processed, nil
}

// GenerateEmbeddings embeds all chunks that do not have a vector yet, in
// batches of batchSize.
func (s *Store) GenerateEmbeddings(ctx context.Context, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 32
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.chunks) == 0 {
		return helper.NewError("generate embeddings", fmt.Errorf("no chunks to embed"))
	}

	var pending []int
	for i := range s.chunks {
		if s.chunks[i].Embedding == nil {
			pending = append(pending, i)
		}
	}

	// Stage all vectors first so a mid-batch failure leaves the store
	// untouched; the swap below is all or nothing.
	staged := make([][]float32, 0, len(pending))
	for start := 0; start < len(pending); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}

		texts := make([]string, 0, end-start)
		for _, idx := range pending[start:end] {
			texts = append(texts, s.chunks[idx].Text)
		}

		embeddings, err := s.embedder.EmbedBatch(texts)
		if err != nil {
			return helper.NewError("generate embeddings", err)
		}
		staged = append(staged, embeddings...)
	}

	for i, idx := range pending {
		s.chunks[idx].Embedding = staged[i]
	}

	s.logger.Info("Generated embeddings", slog.Int("chunks", len(pending)))
	return nil
}

// Search embeds the query and returns the chunks most similar to it. The
// embeddings are L2-normalized by the model, so the dot product is the
// cosine similarity.
func (s *Store) Search(ctx context.Context, query string, opts model.SearchOptions) ([]model.SemanticMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}

	queryEmbedding, err := s.embedder.Embed(query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.chunks) == 0 {
		s.logger.Warn("Search on empty vector store", slog.String("query", query))
		return []model.SemanticMatch{}, nil
	}

	matches := make([]model.SemanticMatch, 0, len(s.chunks))
	for i := range s.chunks {
		chunk := s.chunks[i]
		if chunk.Embedding == nil {
			continue
		}
		if opts.CategoryFilter != "" && chunk.Metadata.Category != opts.CategoryFilter {
			continue
		}
		score := dotProduct(queryEmbedding, chunk.Embedding)
		if score < opts.MinScore {
			continue
		}
		matches = append(matches, model.SemanticMatch{Chunk: &chunk, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}
	return matches, nil
}

// Chunks returns a copy of all chunks in the store.
func (s *Store) Chunks() []model.DocumentChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]model.DocumentChunk, len(s.chunks))
	copy(copied, s.chunks)
	return copied
}

// Len returns the number of chunks in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Clear removes all chunks from the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.chunkCounter = 0
	s.logger.Info("Vector store cleared")
}

// Statistics summarizes the store contents.
func (s *Store) Statistics() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalChunks:      len(s.chunks),
		ModelName:        s.embedder.ModelName(),
		ChunkSize:        s.chunkConfig.MaxChunkSize,
		OverlapSize:      s.chunkConfig.OverlapTokens,
		TypeDistribution: map[string]int{},
		Status:           "empty",
	}
	if len(s.chunks) == 0 {
		return stats
	}

	embedded := true
	stats.MinLength = len([]rune(s.chunks[0].Text))
	for _, chunk := range s.chunks {
		length := len([]rune(chunk.Text))
		if length < stats.MinLength {
			stats.MinLength = length
		}
		if length > stats.MaxLength {
			stats.MaxLength = length
		}
		stats.TotalCharacters += length
		stats.TypeDistribution[chunk.Metadata.Category]++

		if chunk.Embedding == nil {
			embedded = false
		} else if stats.VectorDimension == 0 {
			stats.VectorDimension = len(chunk.Embedding)
		}
	}
	stats.AvgLength = float64(stats.TotalCharacters) / float64(len(s.chunks))
	if embedded {
		stats.Status = "ready"
	} else {
		stats.Status = "vectors_not_generated"
	}
	return stats
}

func dotProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return float64(sum)
}
