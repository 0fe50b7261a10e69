package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/medassist-io/graphrag/core/graph"
	"github.com/medassist-io/graphrag/core/vectorstore"
	"github.com/medassist-io/graphrag/metrics"
	"github.com/medassist-io/graphrag/model"
)

// minSemanticScore filters weak chunk matches before fusion.
const minSemanticScore = 0.3

// Engine coordinates the vector store and the graph retriever into one
// hybrid retrieval call: both paths run concurrently, their scores are
// fused with per-query-type weights and their contexts merged under a
// fixed character budget.
type Engine struct {
	vectors *vectorstore.Store
	graph   *graph.Retriever
	config  model.EngineConfig

	weightsMu sync.RWMutex
	weights   map[model.QueryType]model.Weights

	metrics metrics.Recorder
	logger  *slog.Logger
}

// Stats aggregates the state of both retrieval paths.
type Stats struct {
	Vector  vectorstore.Stats                 `json:"vector_store"`
	Graph   model.GraphStats                  `json:"knowledge_graph"`
	Weights map[model.QueryType]model.Weights `json:"fusion_weights"`
}

// NewEngine creates a hybrid engine. A nil recorder disables metrics.
func NewEngine(vectors *vectorstore.Store, graphRetriever *graph.Retriever, config model.EngineConfig, recorder metrics.Recorder, logger *slog.Logger) *Engine {
	if config.Keywords == nil {
		config.Keywords = model.DefaultQueryTypeKeywords()
	}
	if config.MaxSemanticResults <= 0 {
		config.MaxSemanticResults = 5
	}
	if config.MaxGraphResults <= 0 {
		config.MaxGraphResults = 3
	}
	if config.ContextBudget <= 0 {
		config.ContextBudget = 2000
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if config.DefaultWeights.Semantic == 0 && config.DefaultWeights.Graph == 0 {
		config.DefaultWeights = model.Weights{Semantic: 0.6, Graph: 0.4}
	}

	weights := map[model.QueryType]model.Weights{
		model.QueryTypeKnowledge:  {Semantic: 0.3, Graph: 0.7},
		model.QueryTypeFactual:    {Semantic: 0.2, Graph: 0.8},
		model.QueryTypeContextual: {Semantic: 0.7, Graph: 0.3},
		model.QueryTypeGeneral:    config.DefaultWeights,
	}
	for queryType, override := range config.TypeWeights {
		weights[queryType] = override
	}

	return &Engine{
		vectors: vectors,
		graph:   graphRetriever,
		config:  config,
		weights: weights,
		metrics: recorder,
		logger:  logger,
	}
}

// ClassifyQueryType buckets a query for weight selection. The keyword
// lists are checked in priority order; the first list with a hit wins.
func (e *Engine) ClassifyQueryType(query string) model.QueryType {
	queryLower := strings.ToLower(query)

	for _, keyword := range e.config.Keywords.Knowledge {
		if strings.Contains(queryLower, keyword) {
			return model.QueryTypeKnowledge
		}
	}
	for _, keyword := range e.config.Keywords.Factual {
		if strings.Contains(queryLower, keyword) {
			return model.QueryTypeFactual
		}
	}
	for _, keyword := range e.config.Keywords.Contextual {
		if strings.Contains(queryLower, keyword) {
			return model.QueryTypeContextual
		}
	}
	return model.QueryTypeGeneral
}

// Retrieve runs both retrieval paths concurrently and fuses the results.
// A failing path degrades to empty results instead of aborting the call.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int) *model.HybridSearchResult {
	start := time.Now()
	if topK <= 0 {
		topK = e.config.MaxSemanticResults
	}

	queryType := e.ClassifyQueryType(query)
	weights := e.currentWeights(queryType)

	var (
		wg          sync.WaitGroup
		semantic    []model.SemanticMatch
		semanticErr error
		graphResult *model.GraphSearchResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		semantic, semanticErr = e.vectors.Search(ctx, query, model.SearchOptions{
			TopK:     topK,
			MinScore: minSemanticScore,
		})
	}()
	go func() {
		defer wg.Done()
		graphResult = e.graph.Retrieve(ctx, query, topK)
	}()
	wg.Wait()

	if semanticErr != nil {
		e.logger.Error("Semantic retrieval failed",
			slog.String("query", query),
			slog.String("error", semanticErr.Error()))
		semantic = nil
	}
	if len(semantic) > e.config.MaxSemanticResults {
		semantic = semantic[:e.config.MaxSemanticResults]
	}

	graphResults := []*model.GraphSearchResult{graphResult}
	if len(graphResults) > e.config.MaxGraphResults {
		graphResults = graphResults[:e.config.MaxGraphResults]
	}
	usable := usableGraphResults(graphResults)

	finalScore := e.fuseScores(semantic, usable, weights)
	fusedContext, fusionMethod, truncated := fuseContexts(queryType, semantic, usable, e.config.ContextBudget)
	if truncated {
		fusionMethod += model.FusionTruncatedSuffix
	}

	strategy := searchStrategy(queryType, len(semantic) > 0, len(usable) > 0)

	result := &model.HybridSearchResult{
		SemanticResults: semantic,
		GraphResults:    graphResults,
		FusedContext:    fusedContext,
		FinalScore:      finalScore,
		Strategy:        strategy,
		FusionMethod:    fusionMethod,
		Elapsed:         time.Since(start),
	}

	e.metrics.ObserveRetrieval(strategy, fusionMethod, result.Elapsed, finalScore)
	e.logger.Info("Hybrid retrieval finished",
		slog.String("query_type", string(queryType)),
		slog.String("strategy", strategy),
		slog.String("fusion_method", fusionMethod),
		slog.Int("semantic_results", len(semantic)),
		slog.Float64("final_score", finalScore))

	return result
}

// UpdateWeights replaces the weight pair of general queries. The pair is
// normalized to sum to one; a non-positive sum is rejected unchanged.
func (e *Engine) UpdateWeights(weights model.Weights) error {
	sum := weights.Semantic + weights.Graph
	if sum <= 0 {
		return errors.New("weights must have a positive sum")
	}

	e.weightsMu.Lock()
	defer e.weightsMu.Unlock()
	e.weights[model.QueryTypeGeneral] = model.Weights{
		Semantic: weights.Semantic / sum,
		Graph:    weights.Graph / sum,
	}
	return nil
}

// Statistics reports the state of both retrieval paths and the live
// weight table.
func (e *Engine) Statistics(ctx context.Context) (Stats, error) {
	graphStats, err := e.graph.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}

	e.weightsMu.RLock()
	weights := make(map[model.QueryType]model.Weights, len(e.weights))
	for queryType, pair := range e.weights {
		weights[queryType] = pair
	}
	e.weightsMu.RUnlock()

	return Stats{
		Vector:  e.vectors.Statistics(),
		Graph:   graphStats,
		Weights: weights,
	}, nil
}

func (e *Engine) currentWeights(queryType model.QueryType) model.Weights {
	e.weightsMu.RLock()
	defer e.weightsMu.RUnlock()
	if weights, ok := e.weights[queryType]; ok {
		return weights
	}
	return e.weights[model.QueryTypeGeneral]
}

// fuseScores combines both paths into one relevance estimate: the mean of
// the top three semantic scores, a graph average weighted by entity count,
// a quality bonus when both paths contributed, capped at one.
func (e *Engine) fuseScores(semantic []model.SemanticMatch, graphResults []*model.GraphSearchResult, weights model.Weights) float64 {
	semanticComponent := 0.0
	if len(semantic) > 0 {
		top := semantic
		if len(top) > 3 {
			top = top[:3]
		}
		for _, match := range top {
			semanticComponent += match.Score
		}
		semanticComponent /= float64(len(top))
	}

	graphComponent := 0.0
	if len(graphResults) > 0 {
		weightSum := 0.0
		for _, result := range graphResults {
			entityCount := len(result.Entities)
			if entityCount > 5 {
				entityCount = 5
			}
			entityWeight := float64(entityCount)/5.0 + 0.2
			graphComponent += result.RelevanceScore * entityWeight
			weightSum += entityWeight
		}
		graphComponent /= weightSum
	}

	final := semanticComponent*weights.Semantic + graphComponent*weights.Graph

	switch {
	case len(semantic) > 0 && len(graphResults) > 0:
		final *= 1.2
	case len(semantic) >= 3, len(graphResults) > 0 && len(graphResults[0].Entities) >= 2:
		final *= 1.1
	}

	if final > 1.0 {
		final = 1.0
	}
	return final
}

// usableGraphResults drops sentinel results so fusion only ever sees
// contexts worth merging.
func usableGraphResults(results []*model.GraphSearchResult) []*model.GraphSearchResult {
	usable := make([]*model.GraphSearchResult, 0, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		if result.Strategy == model.StrategyEmptyResult || result.Strategy == model.StrategyError {
			continue
		}
		if strings.TrimSpace(result.ContextText) == "" {
			continue
		}
		usable = append(usable, result)
	}
	return usable
}

func searchStrategy(queryType model.QueryType, hasSemantic, hasGraph bool) string {
	switch {
	case hasSemantic && hasGraph:
		return "hybrid_" + string(queryType)
	case hasSemantic:
		return "semantic_only_" + string(queryType)
	case hasGraph:
		return "graph_only_" + string(queryType)
	default:
		return "no_results"
	}
}
