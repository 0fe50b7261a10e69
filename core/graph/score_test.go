package graph

import (
	"testing"

	"github.com/medassist-io/graphrag/model"
	"github.com/stretchr/testify/assert"
)

func TestCalculateRelevance(t *testing.T) {
	vocab := model.DefaultVocabulary()

	t.Run("No entities scores zero", func(t *testing.T) {
		score := CalculateRelevance("anything", nil, nil, model.IntentGeneral, vocab)
		assert.Zero(t, score)
	})

	t.Run("Strong match is clamped to one", func(t *testing.T) {
		entities := []*model.GraphNode{
			{
				ID:       "d1",
				Name:     "Gestational Diabetes Mellitus",
				Category: model.NodeTypeDisease,
				Properties: model.Properties{
					"description": model.StringValue("Glucose intolerance first recognized in pregnancy"),
				},
			},
			{ID: "s1", Name: "Polyuria", Category: model.NodeTypeSymptom},
		}
		relations := make([]model.GraphRelation, 6)

		score := CalculateRelevance("What are the symptoms of gestational diabetes?", entities, relations, model.IntentSymptom, vocab)
		assert.InDelta(t, 1.0, score, 0.001)
	})

	t.Run("Weak match is clamped up to the floor", func(t *testing.T) {
		entities := []*model.GraphNode{
			{ID: "f1", Name: "Oatmeal", Category: model.NodeTypeFood},
		}
		relations := make([]model.GraphRelation, 1)

		score := CalculateRelevance("unrelated query", entities, relations, model.IntentGeneral, vocab)
		assert.InDelta(t, 0.1, score, 0.001)
	})

	t.Run("Expected category adds type weight", func(t *testing.T) {
		entities := []*model.GraphNode{
			{ID: "s1", Name: "Polyuria", Category: model.NodeTypeSymptom},
		}

		symptomScore := CalculateRelevance("unrelated", entities, nil, model.IntentSymptom, vocab)
		dietScore := CalculateRelevance("unrelated", entities, nil, model.IntentDiet, vocab)
		assert.Greater(t, symptomScore, dietScore)
	})

	t.Run("Primary disease earns the bonus", func(t *testing.T) {
		withDisease := []*model.GraphNode{
			{ID: "d1", Name: "Gestational Diabetes Mellitus", Category: model.NodeTypeFood},
		}
		withoutDisease := []*model.GraphNode{
			{ID: "f1", Name: "Oatmeal", Category: model.NodeTypeFood},
		}

		high := CalculateRelevance("unrelated", withDisease, nil, model.IntentDiet, vocab)
		low := CalculateRelevance("unrelated", withoutDisease, nil, model.IntentDiet, vocab)
		assert.Greater(t, high, low)
	})

	t.Run("Relation contribution is capped", func(t *testing.T) {
		entities := []*model.GraphNode{
			{ID: "f1", Name: "Oatmeal", Category: model.NodeTypeFood},
		}

		some := CalculateRelevance("unrelated", entities, make([]model.GraphRelation, 7), model.IntentGeneral, vocab)
		many := CalculateRelevance("unrelated", entities, make([]model.GraphRelation, 70), model.IntentGeneral, vocab)
		assert.InDelta(t, some, many, 0.001)
	})
}

func TestRankEntities(t *testing.T) {
	keywords := []string{"gestational diabetes"}
	entities := []*model.GraphNode{
		{ID: "f1", Name: "Oatmeal", Category: model.NodeTypeFood},
		{ID: "d1", Name: "Gestational Diabetes", Category: model.NodeTypeDisease},
		{ID: "d2", Name: "Gestational Diabetes Mellitus", Category: model.NodeTypeDisease},
	}

	ranked := rankEntities(entities, keywords, model.DefaultVocabulary().RankedCategories)

	// Exact name match outranks the containment match, unrelated goes last.
	assert.Equal(t, "d1", ranked[0].ID)
	assert.Equal(t, "d2", ranked[1].ID)
	assert.Equal(t, "f1", ranked[2].ID)
}

func TestRankEntitiesPropertyHits(t *testing.T) {
	keywords := []string{"insulin"}
	entities := []*model.GraphNode{
		{ID: "t1", Name: "Diet Therapy", Category: model.NodeTypeTreatment},
		{
			ID:       "t2",
			Name:     "Glucose Control",
			Category: model.NodeTypeTreatment,
			Properties: model.Properties{
				"description": model.StringValue("Achieved with insulin when diet fails"),
				"dosage":      model.NumberValue(4),
			},
		},
	}

	ranked := rankEntities(entities, keywords, model.DefaultVocabulary().RankedCategories)
	assert.Equal(t, "t2", ranked[0].ID)
}
