package retrieval

import (
	"fmt"
	"strings"

	"github.com/medassist-io/graphrag/model"
)

const (
	// supplementScore gates semantic chunks appended after graph context.
	supplementScore = 0.6
	// balancedScore gates semantic chunks in the balanced layout.
	balancedScore = 0.4
	// coreGraphScore gates the leading graph block in the balanced layout.
	coreGraphScore = 0.5
	// supplementLength truncates semantic supplements in the graph-first
	// layout.
	supplementLength = 300

	truncationMarker = "\n...(content truncated)"
)

// fuseContexts merges both context sources into one prompt-ready text.
// The layout depends on the query type: factual queries lead with graph
// knowledge, contextual queries lead with document chunks, everything
// else gets the balanced layout. The result never exceeds budget
// characters, marker included.
func fuseContexts(queryType model.QueryType, semantic []model.SemanticMatch, graphResults []*model.GraphSearchResult, budget int) (string, string, bool) {
	var parts []string
	method := model.FusionBalanced

	switch {
	case queryType == model.QueryTypeFactual && len(graphResults) > 0:
		method = model.FusionGraphFirst
		parts = graphFirstParts(semantic, graphResults)
	case queryType == model.QueryTypeContextual && len(semantic) > 0:
		method = model.FusionSemanticFirst
		parts = semanticFirstParts(semantic, graphResults)
	default:
		parts = balancedParts(semantic, graphResults)
	}

	if len(parts) == 0 {
		return fallbackContext(semantic, graphResults), model.FusionFallback, false
	}

	fused := strings.Join(parts, "\n\n")
	fused, truncated := truncateContext(fused, budget)
	return fused, method, truncated
}

func graphFirstParts(semantic []model.SemanticMatch, graphResults []*model.GraphSearchResult) []string {
	var parts []string
	for i, result := range graphResults {
		parts = append(parts, fmt.Sprintf("[Knowledge Graph %d]\n%s", i+1, result.ContextText))
	}

	var docs []string
	for _, match := range semantic {
		if match.Score <= supplementScore {
			continue
		}
		docs = append(docs, truncateRunes(match.Chunk.Text, supplementLength))
		if len(docs) == 2 {
			break
		}
	}
	if len(docs) > 0 {
		parts = append(parts, "[Related Documents]\n"+strings.Join(docs, "\n"))
	}
	return parts
}

func semanticFirstParts(semantic []model.SemanticMatch, graphResults []*model.GraphSearchResult) []string {
	items := make([]string, 0, len(semantic))
	for i, match := range semantic {
		items = append(items, fmt.Sprintf("%d. (relevance: %.3f) %s", i+1, match.Score, match.Chunk.Text))
	}

	parts := []string{"[Related Knowledge]\n" + strings.Join(items, "\n")}
	for _, result := range graphResults {
		parts = append(parts, "[Supplementary Information]\n"+result.ContextText)
	}
	return parts
}

func balancedParts(semantic []model.SemanticMatch, graphResults []*model.GraphSearchResult) []string {
	var parts []string

	if len(graphResults) > 0 && graphResults[0].RelevanceScore > coreGraphScore {
		parts = append(parts, "[Core Knowledge]\n"+graphResults[0].ContextText)
	}

	var docs []string
	for _, match := range semantic {
		if match.Score <= balancedScore {
			continue
		}
		docs = append(docs, fmt.Sprintf("%d. %s (source: %s)", len(docs)+1, match.Chunk.Text, match.Chunk.Source))
		if len(docs) == 3 {
			break
		}
	}
	if len(docs) > 0 {
		parts = append(parts, "[Related Documents]\n"+strings.Join(docs, "\n"))
	}

	if len(graphResults) > 1 {
		for _, result := range graphResults[1:] {
			parts = append(parts, "[Supplementary Information]\n"+result.ContextText)
		}
	}
	return parts
}

// fallbackContext explains an empty fusion instead of returning nothing.
func fallbackContext(semantic []model.SemanticMatch, graphResults []*model.GraphSearchResult) string {
	switch {
	case len(semantic) > 0:
		return fmt.Sprintf("Found %d related documents, but relevance is low", len(semantic))
	case len(graphResults) > 0:
		return "Related concepts found in the knowledge graph, but information is limited"
	default:
		return "No directly relevant information found."
	}
}

// truncateContext enforces the character budget. The truncation marker
// counts against the budget so the returned text never exceeds it.
func truncateContext(text string, budget int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= budget {
		return text, false
	}

	marker := []rune(truncationMarker)
	cut := budget - len(marker)
	if cut < 0 {
		cut = 0
		marker = marker[:budget]
	}
	return string(runes[:cut]) + string(marker), true
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
