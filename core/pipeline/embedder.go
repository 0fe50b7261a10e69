package pipeline

import (
	"errors"
	"fmt"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/medassist-io/graphrag/helper"
)

// defaultModelCandidates are tried in order of stability; the first model
// that loads wins. The medical-domain model comes last because its download
// is the least reliable.
var defaultModelCandidates = []string{
	"sentence-transformers/all-mpnet-base-v2",
	"sentence-transformers/all-MiniLM-L6-v2",
	"sentence-transformers/paraphrase-MiniLM-L6-v2",
	"NeuML/pubmedbert-base-embeddings",
}

// HugotEmbedder generates sentence embeddings with a local ONNX model.
type HugotEmbedder struct {
	modelName string
	session   *hugot.Session
	pipeline  *pipelines.FeatureExtractionPipeline
}

// NewEmbedder loads the given sentence transformer model, downloading it
// first if needed.
func NewEmbedder(modelName string, onnxFilePath string) (*HugotEmbedder, error) {
	modelPath, err := helper.PrepareModel(modelName, onnxFilePath)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return &HugotEmbedder{
		modelName: modelName,
		session:   session,
		pipeline:  sentencePipeline,
	}, nil
}

// DefaultEmbedder tries the candidate models in order and returns the first
// one that loads.
func DefaultEmbedder() (*HugotEmbedder, error) {
	var errs []error
	for _, modelName := range defaultModelCandidates {
		embedder, err := NewEmbedder(modelName, "onnx/model.onnx")
		if err == nil {
			return embedder, nil
		}
		errs = append(errs, fmt.Errorf("model %s: %w", modelName, err))
	}
	return nil, helper.NewError("load embedding model", errors.Join(errs...))
}

// ModelName returns the name of the loaded model.
func (e *HugotEmbedder) ModelName() string {
	return e.modelName
}

// Embed generates an embedding for a single text.
func (e *HugotEmbedder) Embed(text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch([]string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for a batch of texts in one pass.
func (e *HugotEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	result, err := e.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}
	return result.Embeddings, nil
}

// Close releases the model session.
func (e *HugotEmbedder) Close() error {
	return e.session.Destroy()
}
