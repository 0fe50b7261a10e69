package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medassist-io/graphrag/model"
)

const noGraphInformation = "No relevant graph information found"

// Retriever resolves query keywords against the knowledge graph and builds
// a scored, textual context. It is contractually non-throwing: Retrieve
// always returns a result, degrading to a sentinel on failure, so a broken
// graph backend can never abort the hybrid pipeline.
type Retriever struct {
	store  Store
	vocab  *model.Vocabulary
	logger *slog.Logger
}

// NewRetriever creates a retriever over the given store. A nil vocabulary
// selects the built-in gestational diabetes vocabulary.
func NewRetriever(store Store, vocab *model.Vocabulary, logger *slog.Logger) *Retriever {
	if vocab == nil {
		vocab = model.DefaultVocabulary()
	}
	return &Retriever{
		store:  store,
		vocab:  vocab,
		logger: logger,
	}
}

// Retrieve runs the full pipeline: keyword extraction, entity resolution,
// context expansion and relevance scoring. Errors surface as a sentinel
// result with strategy "error" and the cause embedded in the context text.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) *model.GraphSearchResult {
	start := time.Now()
	if topK <= 0 {
		topK = 5
	}

	keywords, intent := ExtractKeywords(query, r.vocab)
	if len(keywords) == 0 {
		for _, field := range strings.Fields(query) {
			if len([]rune(field)) > 1 {
				keywords = append(keywords, field)
			}
		}
	}
	r.logger.Debug("Graph retrieval",
		slog.String("query", query),
		slog.Any("keywords", keywords),
		slog.String("intent", string(intent)))

	entities, err := r.resolveEntities(ctx, keywords)
	if err != nil {
		return r.errorResult(query, keywords, err, start)
	}
	if len(entities) == 0 {
		return &model.GraphSearchResult{
			Entities:    []*model.GraphNode{},
			Relations:   []model.GraphRelation{},
			ContextText: noGraphInformation,
			Keywords:    keywords,
			Strategy:    model.StrategyEmptyResult,
			Elapsed:     time.Since(start),
		}
	}

	relations, contextText, err := r.buildContext(ctx, entities, intent)
	if err != nil {
		return r.errorResult(query, keywords, err, start)
	}

	score := CalculateRelevance(query, entities, relations, intent, r.vocab)

	strategy := model.StrategyGeneralGraph
	if intent != model.IntentGeneral {
		strategy = model.StrategySpecializedPrefix + string(intent)
	}

	if len(entities) > topK {
		entities = entities[:topK]
	}

	result := &model.GraphSearchResult{
		Entities:       entities,
		Relations:      relations,
		ContextText:    contextText,
		RelevanceScore: score,
		Keywords:       keywords,
		Strategy:       strategy,
		Elapsed:        time.Since(start),
	}

	r.logger.Info("Graph retrieval finished",
		slog.Int("entities", len(result.Entities)),
		slog.Int("relations", len(result.Relations)),
		slog.Float64("relevance", score),
		slog.String("strategy", strategy))

	return result
}

// DiseaseContext is the direct lookup path for callers that already know
// the exact disease name. It bypasses keyword extraction and ranking and
// returns a fixed top relevance. A nil result means the disease is not in
// the graph.
func (r *Retriever) DiseaseContext(ctx context.Context, diseaseName string) *model.GraphSearchResult {
	start := time.Now()

	profile, err := r.store.DiseaseProfile(ctx, diseaseName)
	if err != nil {
		r.logger.Error("Disease lookup failed",
			slog.String("disease", diseaseName),
			slog.String("error", err.Error()))
		return nil
	}
	if profile == nil {
		return nil
	}

	parts := []string{fmt.Sprintf("[Disease Profile] %s", profile.Name)}
	if len(profile.Symptoms) > 0 {
		parts = append(parts, "Main symptoms: "+strings.Join(limit(profile.Symptoms, 8), ", "))
	}
	if len(profile.Treatments) > 0 {
		parts = append(parts, "Treatments: "+strings.Join(limit(profile.Treatments, 5), ", "))
	}
	if len(profile.RiskFactors) > 0 {
		parts = append(parts, "Risk factors: "+strings.Join(limit(profile.RiskFactors, 5), ", "))
	}
	if len(profile.Diagnostics) > 0 {
		parts = append(parts, "Diagnostic methods: "+strings.Join(limit(profile.Diagnostics, 5), ", "))
	}
	if len(profile.Complications) > 0 {
		parts = append(parts, "Possible complications: "+strings.Join(limit(profile.Complications, 5), ", "))
	}

	return &model.GraphSearchResult{
		Entities: []*model.GraphNode{{
			ID:         "disease_" + profile.Name,
			Name:       profile.Name,
			Category:   model.NodeTypeDisease,
			Properties: profile.Properties,
		}},
		Relations:      []model.GraphRelation{},
		ContextText:    strings.Join(parts, "\n"),
		RelevanceScore: 1.0,
		Keywords:       []string{diseaseName},
		Strategy:       model.StrategyDiseaseSpecific,
		Elapsed:        time.Since(start),
	}
}

// Stats reports the aggregate counts of the underlying store.
func (r *Retriever) Stats(ctx context.Context) (model.GraphStats, error) {
	return r.store.Stats(ctx)
}

func (r *Retriever) errorResult(query string, keywords []string, err error, start time.Time) *model.GraphSearchResult {
	r.logger.Error("Graph retrieval failed",
		slog.String("query", query),
		slog.String("error", err.Error()))
	return &model.GraphSearchResult{
		Entities:    []*model.GraphNode{},
		Relations:   []model.GraphRelation{},
		ContextText: fmt.Sprintf("Graph retrieval failed: %v", err),
		Keywords:    keywords,
		Strategy:    model.StrategyError,
		Elapsed:     time.Since(start),
	}
}

func limit(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
