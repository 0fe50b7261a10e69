package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/medassist-io/graphrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGraph() *MemoryStore {
	store := NewMemoryStore()

	store.AddNode(model.GraphNode{
		ID:       "d1",
		Name:     "Gestational Diabetes Mellitus",
		Category: model.NodeTypeDisease,
		Properties: model.Properties{
			"description": model.StringValue("Glucose intolerance first recognized during pregnancy"),
		},
	})
	store.AddNode(model.GraphNode{ID: "s1", Name: "Polyuria", Category: model.NodeTypeSymptom})
	store.AddNode(model.GraphNode{ID: "s2", Name: "Polydipsia", Category: model.NodeTypeSymptom})
	store.AddNode(model.GraphNode{ID: "s3", Name: "Fatigue", Category: model.NodeTypeSymptom})
	store.AddNode(model.GraphNode{ID: "t1", Name: "Insulin Therapy", Category: model.NodeTypeTreatment})
	store.AddNode(model.GraphNode{ID: "t2", Name: "Diet Therapy", Category: model.NodeTypeTreatment})
	store.AddNode(model.GraphNode{ID: "m1", Name: "OGTT", Category: model.NodeTypeDiagnosticMethod})
	store.AddNode(model.GraphNode{ID: "r1", Name: "Obesity", Category: model.NodeTypeRiskFactor})
	store.AddNode(model.GraphNode{ID: "c1", Name: "Macrosomia", Category: model.NodeTypeComplication})

	disease := "Gestational Diabetes Mellitus"
	store.AddRelation(model.GraphRelation{Source: disease, Type: model.RelationHasSymptom, Target: "Polyuria"})
	store.AddRelation(model.GraphRelation{Source: disease, Type: model.RelationHasSymptom, Target: "Polydipsia"})
	store.AddRelation(model.GraphRelation{Source: disease, Type: model.RelationHasSymptom, Target: "Fatigue"})
	store.AddRelation(model.GraphRelation{Source: disease, Type: model.RelationTreatedBy, Target: "Insulin Therapy"})
	store.AddRelation(model.GraphRelation{Source: disease, Type: model.RelationTreatedBy, Target: "Diet Therapy"})
	store.AddRelation(model.GraphRelation{Source: disease, Type: model.RelationDiagnosedBy, Target: "OGTT"})
	store.AddRelation(model.GraphRelation{Source: disease, Type: model.RelationHasRiskFactor, Target: "Obesity"})
	store.AddRelation(model.GraphRelation{Source: disease, Type: model.RelationCanCause, Target: "Macrosomia"})

	return store
}

func TestRetrieve(t *testing.T) {
	retriever := NewRetriever(newTestGraph(), nil, testLogger())

	t.Run("Symptom query uses the specialized strategy", func(t *testing.T) {
		result := retriever.Retrieve(context.Background(), "What are the symptoms of gestational diabetes?", 5)
		require.NotNil(t, result)

		assert.Equal(t, "specialized_symptom", result.Strategy)
		assert.NotEmpty(t, result.Entities)
		assert.NotEmpty(t, result.Relations)
		assert.Contains(t, result.Keywords, "gestational diabetes")
		assert.Contains(t, result.ContextText, "Symptoms:")
		assert.Contains(t, result.ContextText, "Polyuria")
		assert.Greater(t, result.RelevanceScore, 0.5)
	})

	t.Run("General query enumerates neighbors", func(t *testing.T) {
		result := retriever.Retrieve(context.Background(), "Tell me about gestational diabetes", 5)
		require.NotNil(t, result)

		assert.Equal(t, model.StrategyGeneralGraph, result.Strategy)
		assert.Contains(t, result.ContextText, "[Disease] Gestational Diabetes Mellitus")
		assert.Contains(t, result.ContextText, "Related:")
		assert.NotEmpty(t, result.Relations)
	})

	t.Run("Entities are capped to topK", func(t *testing.T) {
		result := retriever.Retrieve(context.Background(), "therapy", 1)
		require.NotNil(t, result)
		assert.LessOrEqual(t, len(result.Entities), 1)
	})

	t.Run("Unresolvable query yields the empty sentinel", func(t *testing.T) {
		result := retriever.Retrieve(context.Background(), "quantum entanglement propulsion", 5)
		require.NotNil(t, result)

		assert.Equal(t, model.StrategyEmptyResult, result.Strategy)
		assert.Equal(t, noGraphInformation, result.ContextText)
		assert.Empty(t, result.Entities)
		assert.Zero(t, result.RelevanceScore)
	})

	t.Run("Cancelled context yields the error sentinel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := retriever.Retrieve(ctx, "gestational diabetes", 5)
		require.NotNil(t, result)
		assert.Equal(t, model.StrategyError, result.Strategy)
		assert.Contains(t, result.ContextText, "Graph retrieval failed")
	})

	t.Run("Store failure yields the error sentinel", func(t *testing.T) {
		failing := NewRetriever(&failingStore{}, nil, testLogger())

		result := failing.Retrieve(context.Background(), "gestational diabetes", 5)
		require.NotNil(t, result)
		assert.Equal(t, model.StrategyError, result.Strategy)
		assert.Contains(t, result.ContextText, "backend unavailable")
	})
}

func TestDiseaseContext(t *testing.T) {
	store := newTestGraph()
	retriever := NewRetriever(store, nil, testLogger())

	t.Run("Known disease builds a full profile", func(t *testing.T) {
		result := retriever.DiseaseContext(context.Background(), "Gestational Diabetes Mellitus")
		require.NotNil(t, result)

		assert.Equal(t, model.StrategyDiseaseSpecific, result.Strategy)
		assert.InDelta(t, 1.0, result.RelevanceScore, 0.001)
		assert.Contains(t, result.ContextText, "[Disease Profile] Gestational Diabetes Mellitus")
		assert.Contains(t, result.ContextText, "Main symptoms: Polyuria, Polydipsia, Fatigue")
		assert.Contains(t, result.ContextText, "Treatments: Insulin Therapy, Diet Therapy")
		assert.Contains(t, result.ContextText, "Risk factors: Obesity")
		assert.Contains(t, result.ContextText, "Diagnostic methods: OGTT")
		assert.Contains(t, result.ContextText, "Possible complications: Macrosomia")

		require.Len(t, result.Entities, 1)
		assert.Equal(t, "disease_Gestational Diabetes Mellitus", result.Entities[0].ID)
	})

	t.Run("Symptom listing is capped", func(t *testing.T) {
		for i := 0; i < 12; i++ {
			name := fmt.Sprintf("Symptom %d", i)
			store.AddNode(model.GraphNode{ID: fmt.Sprintf("sx%d", i), Name: name, Category: model.NodeTypeSymptom})
			store.AddRelation(model.GraphRelation{
				Source: "Gestational Diabetes Mellitus",
				Type:   model.RelationHasSymptom,
				Target: name,
			})
		}

		result := retriever.DiseaseContext(context.Background(), "Gestational Diabetes Mellitus")
		require.NotNil(t, result)
		assert.NotContains(t, result.ContextText, "Symptom 9")
	})

	t.Run("Unknown disease returns nil", func(t *testing.T) {
		result := retriever.DiseaseContext(context.Background(), "Common Cold")
		assert.Nil(t, result)
	})

	t.Run("Non-disease node returns nil", func(t *testing.T) {
		result := retriever.DiseaseContext(context.Background(), "Polyuria")
		assert.Nil(t, result)
	})
}

func TestRetrieverStats(t *testing.T) {
	retriever := NewRetriever(newTestGraph(), nil, testLogger())

	stats, err := retriever.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), stats.NodeCount)
	assert.Equal(t, int64(8), stats.RelationCount)
}

// failingStore errors on every lookup.
type failingStore struct{}

var errBackend = errors.New("backend unavailable")

func (s *failingStore) FindEntities(ctx context.Context, name string, fuzzy bool) ([]*model.GraphNode, error) {
	return nil, errBackend
}

func (s *failingStore) Neighbors(ctx context.Context, name string) (*model.GraphNode, []model.Neighbor, error) {
	return nil, nil, errBackend
}

func (s *failingStore) IntentNeighbors(ctx context.Context, name string, relations []model.RelationType, targetCategory model.NodeType) ([]model.Neighbor, error) {
	return nil, errBackend
}

func (s *failingStore) DiseaseProfile(ctx context.Context, name string) (*model.DiseaseProfile, error) {
	return nil, errBackend
}

func (s *failingStore) Stats(ctx context.Context) (model.GraphStats, error) {
	return model.GraphStats{}, errBackend
}
