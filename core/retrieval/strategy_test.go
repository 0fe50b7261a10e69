package retrieval

import (
	"strings"
	"testing"

	"github.com/medassist-io/graphrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkMatch(text, source string, score float64) model.SemanticMatch {
	return model.SemanticMatch{
		Chunk: &model.DocumentChunk{Text: text, Source: source},
		Score: score,
	}
}

func graphResult(contextText string, relevance float64) *model.GraphSearchResult {
	return &model.GraphSearchResult{
		ContextText:    contextText,
		RelevanceScore: relevance,
		Strategy:       model.StrategyGeneralGraph,
	}
}

func TestFuseContexts(t *testing.T) {
	t.Run("Factual queries lead with graph blocks", func(t *testing.T) {
		semantic := []model.SemanticMatch{
			chunkMatch("High relevance chunk about insulin.", "guide", 0.9),
			chunkMatch("Weak chunk.", "guide", 0.4),
		}
		graphResults := []*model.GraphSearchResult{graphResult("[Disease] GDM\nSymptoms: Polyuria", 0.9)}

		fused, method, truncated := fuseContexts(model.QueryTypeFactual, semantic, graphResults, 2000)
		assert.Equal(t, model.FusionGraphFirst, method)
		assert.False(t, truncated)
		assert.True(t, strings.HasPrefix(fused, "[Knowledge Graph 1]"))
		assert.Contains(t, fused, "[Related Documents]")
		assert.Contains(t, fused, "High relevance chunk")
		assert.NotContains(t, fused, "Weak chunk")
	})

	t.Run("Graph-first supplements are truncated and capped at two", func(t *testing.T) {
		long := strings.Repeat("x", 400)
		semantic := []model.SemanticMatch{
			chunkMatch(long, "a", 0.9),
			chunkMatch("second", "b", 0.8),
			chunkMatch("third", "c", 0.7),
		}
		graphResults := []*model.GraphSearchResult{graphResult("graph context", 0.9)}

		fused, _, _ := fuseContexts(model.QueryTypeFactual, semantic, graphResults, 5000)
		assert.Contains(t, fused, strings.Repeat("x", supplementLength))
		assert.NotContains(t, fused, strings.Repeat("x", supplementLength+1))
		assert.Contains(t, fused, "second")
		assert.NotContains(t, fused, "third")
	})

	t.Run("Contextual queries lead with ranked documents", func(t *testing.T) {
		semantic := []model.SemanticMatch{
			chunkMatch("First chunk.", "a", 0.812),
			chunkMatch("Second chunk.", "b", 0.5),
		}
		graphResults := []*model.GraphSearchResult{graphResult("graph context", 0.4)}

		fused, method, _ := fuseContexts(model.QueryTypeContextual, semantic, graphResults, 2000)
		assert.Equal(t, model.FusionSemanticFirst, method)
		assert.Contains(t, fused, "[Related Knowledge]")
		assert.Contains(t, fused, "1. (relevance: 0.812) First chunk.")
		assert.Contains(t, fused, "[Supplementary Information]\ngraph context")
	})

	t.Run("Balanced layout gates the graph block on relevance", func(t *testing.T) {
		semantic := []model.SemanticMatch{chunkMatch("A useful chunk.", "doc", 0.7)}

		strongGraph := []*model.GraphSearchResult{graphResult("strong graph", 0.8)}
		fused, method, _ := fuseContexts(model.QueryTypeGeneral, semantic, strongGraph, 2000)
		assert.Equal(t, model.FusionBalanced, method)
		assert.Contains(t, fused, "[Core Knowledge]\nstrong graph")
		assert.Contains(t, fused, "1. A useful chunk. (source: doc)")

		weakGraph := []*model.GraphSearchResult{graphResult("weak graph", 0.3)}
		fused, _, _ = fuseContexts(model.QueryTypeGeneral, semantic, weakGraph, 2000)
		assert.NotContains(t, fused, "weak graph")
	})

	t.Run("Balanced layout caps documents at three", func(t *testing.T) {
		semantic := []model.SemanticMatch{
			chunkMatch("one", "a", 0.9),
			chunkMatch("two", "b", 0.8),
			chunkMatch("three", "c", 0.7),
			chunkMatch("four", "d", 0.6),
		}

		fused, _, _ := fuseContexts(model.QueryTypeGeneral, semantic, nil, 2000)
		assert.Contains(t, fused, "3. three")
		assert.NotContains(t, fused, "four")
	})

	t.Run("Nothing qualifying falls back to a sentence", func(t *testing.T) {
		weak := []model.SemanticMatch{
			chunkMatch("one", "a", 0.2),
			chunkMatch("two", "b", 0.1),
		}

		fused, method, truncated := fuseContexts(model.QueryTypeGeneral, weak, nil, 2000)
		assert.Equal(t, model.FusionFallback, method)
		assert.False(t, truncated)
		assert.Equal(t, "Found 2 related documents, but relevance is low", fused)

		fused, method, _ = fuseContexts(model.QueryTypeGeneral, nil, nil, 2000)
		assert.Equal(t, model.FusionFallback, method)
		assert.Equal(t, "No directly relevant information found.", fused)
	})
}

func TestTruncateContext(t *testing.T) {
	t.Run("Within budget stays untouched", func(t *testing.T) {
		text, truncated := truncateContext("short", 2000)
		assert.False(t, truncated)
		assert.Equal(t, "short", text)
	})

	t.Run("Over budget is cut with the marker inside the budget", func(t *testing.T) {
		graphResults := []*model.GraphSearchResult{graphResult(strings.Repeat("y", 3000), 0.9)}

		fused, method, truncated := fuseContexts(model.QueryTypeFactual, nil, graphResults, 2000)
		require.True(t, truncated)
		assert.Equal(t, model.FusionGraphFirst, method)
		assert.LessOrEqual(t, len([]rune(fused)), 2000)
		assert.True(t, strings.HasSuffix(fused, truncationMarker))
	})

	t.Run("Multi-byte runes count as single characters", func(t *testing.T) {
		text, truncated := truncateContext(strings.Repeat("妊", 100), 50)
		assert.True(t, truncated)
		assert.LessOrEqual(t, len([]rune(text)), 50)
	})
}
