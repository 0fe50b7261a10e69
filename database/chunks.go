package database

import (
	"context"
	"fmt"
	"time"

	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/model"
	loadSql "github.com/medassist-io/graphrag/sql"
	"github.com/pgvector/pgvector-go"
)

// ChunksDBHandlerFunctions defines the interface for chunk database
// operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(chunk *model.DocumentChunk) error
	SelectChunk(chunkID string) (*model.DocumentChunk, error)
	SelectChunksBySimilarity(embedding []float32, limit int, minScore float64, category string) ([]model.SemanticMatch, error)
	DeleteAllChunks() error
	CountChunks() (int64, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL
// functions. If force is true, it will reload the SQL functions even if they
// already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table with the given embedding dimension.
// If the table already exists, it does not create it again. It also creates
// the vector index.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init chunks table", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts or replaces a chunk together with its embedding.
func (h *ChunksDBHandler) InsertChunk(chunk *model.DocumentChunk) error {
	embeddingVector := pgvector.NewVector(chunk.Embedding)

	_, err := h.db.Instance.Exec(
		`SELECT insert_chunk($1, $2, $3, $4, $5, $6, $7)`,
		chunk.ChunkID,
		chunk.Text,
		chunk.Source,
		chunk.Metadata.Category,
		chunk.Metadata.ChunkIndex,
		chunk.Metadata.TotalChunks,
		embeddingVector,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}

// SelectChunk retrieves a chunk by its chunk ID. A missing chunk is
// reported as (nil, nil). The embedding column is not read back.
func (h *ChunksDBHandler) SelectChunk(chunkID string) (*model.DocumentChunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT chunk_id, content, source, category, chunk_index, total_chunks FROM select_chunk($1)`,
		chunkID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, helper.NewError("rows error", err)
		}
		return nil, nil
	}

	chunk := &model.DocumentChunk{}
	err = rows.Scan(
		&chunk.ChunkID,
		&chunk.Text,
		&chunk.Source,
		&chunk.Metadata.Category,
		&chunk.Metadata.ChunkIndex,
		&chunk.Metadata.TotalChunks,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}
	chunk.Metadata.SourceName = chunk.Source
	chunk.Metadata.ChunkLength = len([]rune(chunk.Text))

	return chunk, nil
}

// SelectChunksBySimilarity retrieves the chunks closest to the embedding by
// cosine similarity. An empty category matches all chunks.
func (h *ChunksDBHandler) SelectChunksBySimilarity(embedding []float32, limit int, minScore float64, category string) ([]model.SemanticMatch, error) {
	embeddingVector := pgvector.NewVector(embedding)

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3, $4)`,
		embeddingVector,
		limit,
		minScore,
		category,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var matches []model.SemanticMatch
	for rows.Next() {
		chunk := &model.DocumentChunk{}
		var similarity float64
		err := rows.Scan(
			&chunk.ChunkID,
			&chunk.Text,
			&chunk.Source,
			&chunk.Metadata.Category,
			&chunk.Metadata.ChunkIndex,
			&chunk.Metadata.TotalChunks,
			&similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunk.Metadata.SourceName = chunk.Source
		chunk.Metadata.ChunkLength = len([]rune(chunk.Text))

		matches = append(matches, model.SemanticMatch{
			Chunk: chunk,
			Score: similarity,
		})
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return matches, nil
}

// DeleteAllChunks removes all persisted chunks.
func (h *ChunksDBHandler) DeleteAllChunks() error {
	_, err := h.db.Instance.Exec(`SELECT delete_all_chunks()`)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// CountChunks returns the number of persisted chunks.
func (h *ChunksDBHandler) CountChunks() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_chunks()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}
