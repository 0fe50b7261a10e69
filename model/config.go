package model

// QueryType is the hybrid coordinator's own classification of a query.
// It is deliberately independent of the graph retriever's Intent: the two
// classifiers feed different decisions (fusion weighting vs. targeted graph
// lookup) and are never reconciled.
type QueryType string

const (
	QueryTypeKnowledge  QueryType = "knowledge_based"
	QueryTypeFactual    QueryType = "factual"
	QueryTypeContextual QueryType = "contextual"
	QueryTypeGeneral    QueryType = "general"
)

// Weights is a (semantic, graph) weight pair used for score fusion.
type Weights struct {
	Semantic float64 `json:"semantic"`
	Graph    float64 `json:"graph"`
}

// QueryTypeKeywords holds the coordinator's keyword lists, checked in
// priority order knowledge_based > factual > contextual.
type QueryTypeKeywords struct {
	Knowledge  []string
	Factual    []string
	Contextual []string
}

// DefaultQueryTypeKeywords returns the classifier keyword lists the
// coordinator ships with.
func DefaultQueryTypeKeywords() *QueryTypeKeywords {
	return &QueryTypeKeywords{
		Knowledge:  []string{"what is", "how to", "how do", "how does", "why", "mechanism", "definition"},
		Factual:    []string{"symptom", "treatment", "diagnos", "test", "medication", "risk", "complication", "screening"},
		Contextual: []string{"case", "experience", "story", "situation", "example"},
	}
}

// SearchOptions configures one semantic search call.
type SearchOptions struct {
	TopK           int
	CategoryFilter string
	MinScore       float64
}

// EngineConfig configures the hybrid fusion coordinator.
type EngineConfig struct {
	// DefaultWeights is the weight pair for general queries; it is the only
	// mutable entry of the per-type table and can be replaced at runtime.
	DefaultWeights Weights
	// TypeWeights overrides the built-in per-type weight table when set.
	TypeWeights map[QueryType]Weights
	// MaxSemanticResults bounds the semantic result list.
	MaxSemanticResults int
	// MaxGraphResults bounds the graph result list.
	MaxGraphResults int
	// ContextBudget is the hard character limit of the fused context.
	ContextBudget int
	// Keywords configures the query type classifier.
	Keywords *QueryTypeKeywords
}

// DefaultEngineConfig returns the coordinator defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultWeights:     Weights{Semantic: 0.6, Graph: 0.4},
		MaxSemanticResults: 5,
		MaxGraphResults:    3,
		ContextBudget:      2000,
		Keywords:           DefaultQueryTypeKeywords(),
	}
}

// ChunkerConfig configures domain-aware text chunking.
type ChunkerConfig struct {
	// MaxChunkSize is the character budget per chunk.
	MaxChunkSize int
	// OverlapTokens is the number of trailing whitespace tokens carried
	// into the next chunk.
	OverlapTokens int
	// ProtectedPatterns match clinically atomic statements that must not be
	// split across chunks.
	ProtectedPatterns []string
}

// DefaultChunkerConfig returns the chunker defaults used by the engine.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxChunkSize:  512,
		OverlapTokens: 50,
		ProtectedPatterns: []string{
			`(?i)gestational diabetes mellitus[^.。]*[.。]`,
			`(?i)blood glucose (?:monitoring|control|management)[^.。]*[.。]`,
			`(?i)insulin (?:therapy|injection|treatment)[^.。]*[.。]`,
			`(?i)prenatal (?:nutrition|care|management)[^.。]*[.。]`,
			`(?i)perinatal complication[^.。]*[.。]`,
			`妊娠期糖尿病[^。]*。`,
		},
	}
}
