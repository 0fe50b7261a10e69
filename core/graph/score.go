package graph

import (
	"strings"
	"unicode"

	"github.com/medassist-io/graphrag/model"
)

// CalculateRelevance scores a graph retrieval result against its query.
// The score is a deterministic sum of entity, type, relation and context
// contributions, boosted by a quality multiplier and clamped to [0.1, 1.0]
// whenever at least one entity resolved; zero entities always score 0.
func CalculateRelevance(query string, entities []*model.GraphNode, relations []model.GraphRelation, intent model.Intent, vocab *model.Vocabulary) float64 {
	if len(entities) == 0 {
		return 0
	}

	queryLower := strings.ToLower(query)
	strippedQuery := stripPunctuation(queryLower)
	queryWords := wordSet(queryLower)

	entityScore := 0.0
	for _, entity := range entities {
		nameLower := strings.ToLower(entity.Name)

		if strings.Contains(queryLower, nameLower) || (strippedQuery != "" && strings.Contains(nameLower, strippedQuery)) {
			entityScore += 0.4
		}

		for _, term := range vocab.CoreTerms {
			termLower := strings.ToLower(term)
			if strings.Contains(nameLower, termLower) && strings.Contains(queryLower, termLower) {
				entityScore += 0.3
			}
		}

		shared := 0
		for word := range wordSet(nameLower) {
			if queryWords[word] {
				shared++
			}
		}
		entityScore += float64(shared) * 0.1
	}

	expected := map[model.NodeType]bool{}
	for _, category := range vocab.ExpectedCategories(intent) {
		expected[category] = true
	}
	typeScore := 0.0
	typeMatchCount := 0
	for _, entity := range entities {
		if expected[entity.Category] {
			typeMatchCount++
			typeScore += 0.2
		}
	}

	relationScore := float64(len(relations)) * 0.03
	if relationScore > 0.2 {
		relationScore = 0.2
	}

	contextScore := 0.0
	for _, entity := range entities {
		if len(entity.Properties) == 0 {
			continue
		}
		if _, ok := entity.Properties["description"]; ok {
			contextScore += 0.15
		} else {
			contextScore += 0.05
		}
	}
	if contextScore > 0.25 {
		contextScore = 0.25
	}

	diseaseBonus := 0.0
	primaryLower := strings.ToLower(vocab.PrimaryDisease)
	for _, entity := range entities {
		if strings.Contains(strings.ToLower(entity.Name), primaryLower) {
			diseaseBonus = 0.2
			break
		}
	}

	total := entityScore + typeScore + relationScore + contextScore + diseaseBonus

	multiplier := 1.0
	if len(entities) >= 3 && len(relations) >= 5 {
		multiplier = 1.1
	} else if typeMatchCount >= 2 {
		multiplier = 1.05
	}

	final := total * multiplier
	if final > 0 {
		if final < 0.1 {
			final = 0.1
		}
		if final > 1.0 {
			final = 1.0
		}
	}
	return final
}

func stripPunctuation(text string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(stripped)
}

func wordSet(text string) map[string]bool {
	words := map[string]bool{}
	for _, word := range wordRegexp.FindAllString(text, -1) {
		words[word] = true
	}
	return words
}
