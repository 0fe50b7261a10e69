package database

import (
	"context"
	"testing"

	"github.com/medassist-io/graphrag/core/graph"
	"github.com/medassist-io/graphrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ graph.Store = (*GraphStore)(nil)

func setupGraphStore(t *testing.T) *GraphStore {
	t.Helper()
	database := initDB(t)

	store, err := NewGraphStore(database, true)
	require.NoError(t, err)

	_, err = database.Instance.Exec(`DELETE FROM relations`)
	require.NoError(t, err)
	_, err = database.Instance.Exec(`DELETE FROM nodes`)
	require.NoError(t, err)

	nodes := []*model.GraphNode{
		{Name: "Gestational Diabetes Mellitus", Category: model.NodeTypeDisease,
			Properties: model.Properties{"description": model.StringValue("Glucose intolerance in pregnancy")}},
		{Name: "Polyuria", Category: model.NodeTypeSymptom},
		{Name: "Fatigue", Category: model.NodeTypeSymptom},
		{Name: "Insulin Therapy", Category: model.NodeTypeTreatment},
		{Name: "OGTT", Category: model.NodeTypeDiagnosticMethod},
		{Name: "Obesity", Category: model.NodeTypeRiskFactor},
		{Name: "Macrosomia", Category: model.NodeTypeComplication},
	}
	for _, node := range nodes {
		require.NoError(t, store.AddNode(node))
	}

	disease := "Gestational Diabetes Mellitus"
	relations := []*model.GraphRelation{
		{Source: disease, Type: model.RelationHasSymptom, Target: "Polyuria"},
		{Source: disease, Type: model.RelationHasSymptom, Target: "Fatigue"},
		{Source: disease, Type: model.RelationTreatedBy, Target: "Insulin Therapy"},
		{Source: disease, Type: model.RelationDiagnosedBy, Target: "OGTT"},
		{Source: disease, Type: model.RelationHasRiskFactor, Target: "Obesity"},
		{Source: disease, Type: model.RelationCanCause, Target: "Macrosomia"},
	}
	for _, relation := range relations {
		require.NoError(t, store.AddRelation(relation))
	}

	return store
}

func TestGraphStoreFindEntities(t *testing.T) {
	store := setupGraphStore(t)
	ctx := context.Background()

	t.Run("Exact lookup", func(t *testing.T) {
		entities, err := store.FindEntities(ctx, "polyuria", false)
		assert.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, "Polyuria", entities[0].Name)
	})

	t.Run("Fuzzy lookup", func(t *testing.T) {
		entities, err := store.FindEntities(ctx, "diabetes", true)
		assert.NoError(t, err)
		require.Len(t, entities, 1)
		assert.Equal(t, "Gestational Diabetes Mellitus", entities[0].Name)
	})

	t.Run("Missing entity yields empty result", func(t *testing.T) {
		entities, err := store.FindEntities(ctx, "unknown", false)
		assert.NoError(t, err)
		assert.Empty(t, entities)
	})
}

func TestGraphStoreNeighbors(t *testing.T) {
	store := setupGraphStore(t)
	ctx := context.Background()

	t.Run("Neighbors of the disease node", func(t *testing.T) {
		center, neighbors, err := store.Neighbors(ctx, "Gestational Diabetes Mellitus")
		assert.NoError(t, err)
		require.NotNil(t, center)
		assert.Equal(t, model.NodeTypeDisease, center.Category)
		assert.Len(t, neighbors, 6)
	})

	t.Run("Incoming edges count as neighbors", func(t *testing.T) {
		center, neighbors, err := store.Neighbors(ctx, "Polyuria")
		assert.NoError(t, err)
		require.NotNil(t, center)
		require.Len(t, neighbors, 1)
		assert.Equal(t, "Gestational Diabetes Mellitus", neighbors[0].Name)
	})

	t.Run("Missing center yields nil without error", func(t *testing.T) {
		center, neighbors, err := store.Neighbors(ctx, "Unknown")
		assert.NoError(t, err)
		assert.Nil(t, center)
		assert.Empty(t, neighbors)
	})
}

func TestGraphStoreIntentNeighbors(t *testing.T) {
	store := setupGraphStore(t)
	ctx := context.Background()

	t.Run("Relation filter selects symptoms", func(t *testing.T) {
		neighbors, err := store.IntentNeighbors(ctx, "Gestational Diabetes Mellitus",
			[]model.RelationType{model.RelationHasSymptom}, model.NodeTypeSymptom)
		assert.NoError(t, err)

		names := make([]string, 0, len(neighbors))
		for _, neighbor := range neighbors {
			names = append(names, neighbor.Name)
		}
		assert.ElementsMatch(t, []string{"Polyuria", "Fatigue"}, names)
	})

	t.Run("Category match qualifies without relation match", func(t *testing.T) {
		neighbors, err := store.IntentNeighbors(ctx, "Gestational Diabetes Mellitus",
			[]model.RelationType{model.RelationRecommends}, model.NodeTypeTreatment)
		assert.NoError(t, err)
		require.Len(t, neighbors, 1)
		assert.Equal(t, "Insulin Therapy", neighbors[0].Name)
	})
}

func TestGraphStoreDiseaseProfile(t *testing.T) {
	store := setupGraphStore(t)
	ctx := context.Background()

	t.Run("Profile aggregates outgoing edges", func(t *testing.T) {
		profile, err := store.DiseaseProfile(ctx, "Gestational Diabetes Mellitus")
		assert.NoError(t, err)
		require.NotNil(t, profile)

		assert.ElementsMatch(t, []string{"Polyuria", "Fatigue"}, profile.Symptoms)
		assert.Equal(t, []string{"Insulin Therapy"}, profile.Treatments)
		assert.Equal(t, []string{"OGTT"}, profile.Diagnostics)
		assert.Equal(t, []string{"Obesity"}, profile.RiskFactors)
		assert.Equal(t, []string{"Macrosomia"}, profile.Complications)
	})

	t.Run("Non-disease node yields nil profile", func(t *testing.T) {
		profile, err := store.DiseaseProfile(ctx, "Polyuria")
		assert.NoError(t, err)
		assert.Nil(t, profile)
	})
}

func TestGraphStoreStats(t *testing.T) {
	store := setupGraphStore(t)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.NodeCount)
	assert.Equal(t, int64(6), stats.RelationCount)
}

func TestGraphStoreWithRetriever(t *testing.T) {
	store := setupGraphStore(t)
	retriever := graph.NewRetriever(store, nil, testDBLogger())

	result := retriever.Retrieve(context.Background(), "What are the symptoms of gestational diabetes?", 5)
	require.NotNil(t, result)
	assert.Equal(t, "specialized_symptom", result.Strategy)
	assert.Contains(t, result.ContextText, "Polyuria")
	assert.Greater(t, result.RelevanceScore, 0.5)
}
