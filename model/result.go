package model

import "time"

// Graph search strategy tags.
const (
	StrategyEmptyResult     = "empty_result"
	StrategyError           = "error"
	StrategyGeneralGraph    = "general_graph"
	StrategyDiseaseSpecific = "disease_specific"

	// StrategySpecializedPrefix is combined with the detected intent when a
	// non-general intent drove the context lookup.
	StrategySpecializedPrefix = "specialized_"
)

// Fusion method tags produced by the hybrid coordinator.
const (
	FusionGraphFirst    = "graph_first"
	FusionSemanticFirst = "semantic_first"
	FusionBalanced      = "balanced"
	FusionFallback      = "fallback"

	// FusionTruncatedSuffix is appended when the fused context was cut to
	// the character budget.
	FusionTruncatedSuffix = "_truncated"
)

// SemanticMatch pairs a retrieved chunk with its cosine similarity score.
type SemanticMatch struct {
	Chunk *DocumentChunk `json:"chunk"`
	Score float64        `json:"score"`
}

// GraphSearchResult is the per-query output of the graph entity retriever.
// It is never persisted.
type GraphSearchResult struct {
	Entities       []*GraphNode    `json:"entities"`
	Relations      []GraphRelation `json:"relations"`
	ContextText    string          `json:"context_text"`
	RelevanceScore float64         `json:"relevance_score"`
	Keywords       []string        `json:"search_keywords"`
	Strategy       string          `json:"search_strategy"`
	Elapsed        time.Duration   `json:"retrieval_time"`
}

// HybridSearchResult is the fused output of one hybrid retrieval call,
// consumed by the answer-generation layer.
type HybridSearchResult struct {
	SemanticResults []SemanticMatch      `json:"semantic_results"`
	GraphResults    []*GraphSearchResult `json:"graph_results"`
	FusedContext    string               `json:"combined_context"`
	FinalScore      float64              `json:"final_score"`
	Strategy        string               `json:"search_strategy"`
	FusionMethod    string               `json:"fusion_method"`
	Elapsed         time.Duration        `json:"total_retrieval_time"`
}
