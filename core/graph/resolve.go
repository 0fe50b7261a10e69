package graph

import (
	"context"
	"sort"
	"strings"

	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/model"
)

// maxResolvedEntities bounds the candidate set after ranking.
const maxResolvedEntities = 20

// resolveEntities turns keywords into graph entities: exact lookup, fuzzy
// lookup, and expansion lookups for keywords with a vocabulary expansion
// entry. Candidates are de-duplicated by store identity and ranked.
func (r *Retriever) resolveEntities(ctx context.Context, keywords []string) ([]*model.GraphNode, error) {
	var candidates []*model.GraphNode

	for _, keyword := range keywords {
		exact, err := r.store.FindEntities(ctx, keyword, false)
		if err != nil {
			return nil, helper.NewError("find entities", err)
		}
		candidates = append(candidates, exact...)

		fuzzy, err := r.store.FindEntities(ctx, keyword, true)
		if err != nil {
			return nil, helper.NewError("find entities", err)
		}
		candidates = append(candidates, fuzzy...)

		if !r.isVocabularyKeyword(keyword) {
			continue
		}
		for _, expansion := range r.vocab.Expansions[strings.ToLower(keyword)] {
			expanded, err := r.store.FindEntities(ctx, expansion, true)
			if err != nil {
				return nil, helper.NewError("find expanded entities", err)
			}
			candidates = append(candidates, expanded...)
		}
	}

	unique := make([]*model.GraphNode, 0, len(candidates))
	seen := map[string]bool{}
	for _, candidate := range candidates {
		if seen[candidate.ID] {
			continue
		}
		seen[candidate.ID] = true
		unique = append(unique, candidate)
	}

	ranked := rankEntities(unique, keywords, r.vocab.RankedCategories)
	if len(ranked) > maxResolvedEntities {
		ranked = ranked[:maxResolvedEntities]
	}
	return ranked, nil
}

func (r *Retriever) isVocabularyKeyword(keyword string) bool {
	for _, list := range r.vocab.Keywords {
		for _, entry := range list {
			if strings.EqualFold(entry, keyword) {
				return true
			}
		}
	}
	return false
}

// rankEntities orders candidates by a deterministic relevance sum: exact
// name match 10, keyword contained in name 5, name contained in keyword 3,
// high-value category 2, plus 1 per keyword found in a string property.
func rankEntities(entities []*model.GraphNode, keywords []string, rankedCategories []model.NodeType) []*model.GraphNode {
	important := map[model.NodeType]bool{}
	for _, category := range rankedCategories {
		important[category] = true
	}

	scores := make(map[*model.GraphNode]float64, len(entities))
	for _, entity := range entities {
		nameLower := strings.ToLower(entity.Name)
		score := 0.0

		for _, keyword := range keywords {
			keywordLower := strings.ToLower(keyword)
			switch {
			case keywordLower == nameLower:
				score += 10
			case strings.Contains(nameLower, keywordLower):
				score += 5
			case strings.Contains(keywordLower, nameLower):
				score += 3
			}
		}

		if important[entity.Category] {
			score += 2
		}

		for _, value := range entity.Properties {
			if value.Kind != model.PropertyString {
				continue
			}
			valueLower := strings.ToLower(value.Str)
			for _, keyword := range keywords {
				if strings.Contains(valueLower, strings.ToLower(keyword)) {
					score++
				}
			}
		}

		scores[entity] = score
	}

	ranked := make([]*model.GraphNode, len(entities))
	copy(ranked, entities)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})
	return ranked
}
