package vectorstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/model"
)

// snapshotVersion is the current on-disk format version. Snapshots with a
// different version are rejected on load.
const snapshotVersion = "2.0"

// SnapshotHeader describes the snapshot contents and the configuration it
// was written with.
type SnapshotHeader struct {
	SnapshotID      string    `json:"snapshot_id"`
	Version         string    `json:"version"`
	ModelName       string    `json:"model_name"`
	ChunkSize       int       `json:"chunk_size"`
	OverlapSize     int       `json:"overlap_size"`
	TotalChunks     int       `json:"total_chunks"`
	VectorDimension int       `json:"vector_dimension"`
	CreatedAt       time.Time `json:"created_at"`
}

type snapshot struct {
	Metadata SnapshotHeader        `json:"metadata"`
	Chunks   []model.DocumentChunk `json:"chunks"`
}

type snapshotSummary struct {
	Summary          SnapshotHeader `json:"summary"`
	TypeDistribution map[string]int `json:"data_type_distribution"`
	SampleChunks     []chunkPreview `json:"sample_chunks"`
}

type chunkPreview struct {
	ChunkID     string `json:"chunk_id"`
	TextPreview string `json:"text_preview"`
	Source      string `json:"source"`
	Category    string `json:"category"`
}

// SaveSnapshot writes all chunks and their embeddings to path, plus a
// human-readable summary sidecar next to it.
func (s *Store) SaveSnapshot(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.chunks) == 0 {
		return helper.NewError("save snapshot", fmt.Errorf("no chunks to save"))
	}

	dimension := 0
	for _, chunk := range s.chunks {
		if chunk.Embedding != nil {
			dimension = len(chunk.Embedding)
			break
		}
	}

	data := snapshot{
		Metadata: SnapshotHeader{
			SnapshotID:      uuid.New().String(),
			Version:         snapshotVersion,
			ModelName:       s.embedder.ModelName(),
			ChunkSize:       s.chunkConfig.MaxChunkSize,
			OverlapSize:     s.chunkConfig.OverlapTokens,
			TotalChunks:     len(s.chunks),
			VectorDimension: dimension,
			CreatedAt:       time.Now().UTC(),
		},
		Chunks: s.chunks,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return helper.NewError("create snapshot directory", err)
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return helper.NewError("encode snapshot", err)
	}
	if err := os.WriteFile(path, encoded, 0640); err != nil {
		return helper.NewError("write snapshot", err)
	}

	if err := s.writeSummary(summaryPath(path), data); err != nil {
		return err
	}

	s.logger.Info("Saved snapshot",
		slog.String("path", path),
		slog.Int("chunks", len(s.chunks)),
		slog.String("snapshot_id", data.Metadata.SnapshotID))

	return nil
}

// LoadSnapshot replaces the store contents with the chunks from path. The
// snapshot must have been written with the same format version, embedding
// model and chunk configuration.
func (s *Store) LoadSnapshot(path string) error {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return helper.NewError("read snapshot", err)
	}

	var data snapshot
	if err := json.Unmarshal(encoded, &data); err != nil {
		return helper.NewError("decode snapshot", err)
	}

	if data.Metadata.Version != snapshotVersion {
		return helper.NewError("load snapshot", fmt.Errorf(
			"version mismatch: snapshot has %q, expected %q", data.Metadata.Version, snapshotVersion))
	}
	if data.Metadata.ModelName != s.embedder.ModelName() {
		return helper.NewError("load snapshot", fmt.Errorf(
			"model mismatch: snapshot was embedded with %q, store uses %q", data.Metadata.ModelName, s.embedder.ModelName()))
	}
	if data.Metadata.ChunkSize != s.chunkConfig.MaxChunkSize {
		return helper.NewError("load snapshot", fmt.Errorf(
			"chunk size mismatch: snapshot has %d, store uses %d", data.Metadata.ChunkSize, s.chunkConfig.MaxChunkSize))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = data.Chunks
	s.chunkCounter = len(data.Chunks)

	s.logger.Info("Loaded snapshot",
		slog.String("path", path),
		slog.Int("chunks", len(s.chunks)),
		slog.String("model", data.Metadata.ModelName))

	return nil
}

func (s *Store) writeSummary(path string, data snapshot) error {
	distribution := map[string]int{}
	for _, chunk := range data.Chunks {
		distribution[chunk.Metadata.Category]++
	}

	previews := make([]chunkPreview, 0, 5)
	for _, chunk := range data.Chunks {
		if len(previews) == 5 {
			break
		}
		preview := chunk.Text
		if len([]rune(preview)) > 200 {
			preview = string([]rune(preview)[:200]) + "..."
		}
		previews = append(previews, chunkPreview{
			ChunkID:     chunk.ChunkID,
			TextPreview: preview,
			Source:      chunk.Metadata.SourceName,
			Category:    chunk.Metadata.Category,
		})
	}

	summary := snapshotSummary{
		Summary:          data.Metadata,
		TypeDistribution: distribution,
		SampleChunks:     previews,
	}

	encoded, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return helper.NewError("encode snapshot summary", err)
	}
	if err := os.WriteFile(path, encoded, 0640); err != nil {
		return helper.NewError("write snapshot summary", err)
	}
	return nil
}

func summaryPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".summary.json"
}
