package database

import (
	"testing"

	"github.com/medassist-io/graphrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodesDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewNodesDBHandler", func(t *testing.T) {
		nodesDbHandler, err := NewNodesDBHandler(database, true)
		assert.NoError(t, err, "Expected NewNodesDBHandler to not return an error")
		require.NotNil(t, nodesDbHandler, "Expected NewNodesDBHandler to return a non-nil instance")
		require.NotNil(t, nodesDbHandler.db, "Expected NewNodesDBHandler to have a non-nil database instance")
	})

	t.Run("Invalid call NewNodesDBHandler with nil database", func(t *testing.T) {
		_, err := NewNodesDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating NodesDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil")
	})
}

func TestNodesInsert(t *testing.T) {
	database := initDB(t)

	nodesDbHandler, err := NewNodesDBHandler(database, true)
	require.NoError(t, err)

	t.Run("Insert node", func(t *testing.T) {
		node := &model.GraphNode{
			Name:     "Gestational Diabetes Mellitus",
			Category: model.NodeTypeDisease,
			Properties: model.Properties{
				"description": model.StringValue("Glucose intolerance in pregnancy"),
			},
		}

		err := nodesDbHandler.InsertNode(node)
		assert.NoError(t, err, "Expected Insert to not return an error")
		assert.NotEmpty(t, node.ID, "Expected inserted node to have an ID")
	})

	t.Run("Insert duplicate node updates in place", func(t *testing.T) {
		first := &model.GraphNode{Name: "Polyuria", Category: model.NodeTypeSymptom}
		require.NoError(t, nodesDbHandler.InsertNode(first))

		second := &model.GraphNode{
			Name:     "Polyuria",
			Category: model.NodeTypeSymptom,
			Properties: model.Properties{
				"description": model.StringValue("Excessive urination"),
			},
		}
		require.NoError(t, nodesDbHandler.InsertNode(second))

		assert.Equal(t, first.ID, second.ID, "Expected upsert to keep the node ID")

		stored, err := nodesDbHandler.SelectNodeByName("Polyuria")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "Excessive urination", stored.Properties["description"].Str)
	})
}

func TestNodesSelect(t *testing.T) {
	database := initDB(t)

	nodesDbHandler, err := NewNodesDBHandler(database, true)
	require.NoError(t, err)

	insulin := &model.GraphNode{Name: "Insulin Therapy", Category: model.NodeTypeTreatment}
	require.NoError(t, nodesDbHandler.InsertNode(insulin))

	t.Run("Select node by name is case-insensitive", func(t *testing.T) {
		node, err := nodesDbHandler.SelectNodeByName("insulin therapy")
		assert.NoError(t, err)
		require.NotNil(t, node, "Expected node to be found case-insensitively")
		assert.Equal(t, "Insulin Therapy", node.Name)
		assert.Equal(t, model.NodeTypeTreatment, node.Category)
	})

	t.Run("Select missing node returns nil without error", func(t *testing.T) {
		node, err := nodesDbHandler.SelectNodeByName("Unknown Node")
		assert.NoError(t, err)
		assert.Nil(t, node)
	})

	t.Run("Search nodes by substring", func(t *testing.T) {
		nodes, err := nodesDbHandler.SearchNodes("insulin", 10)
		assert.NoError(t, err)
		require.NotEmpty(t, nodes, "Expected search to find the insulin node")
		assert.Equal(t, "Insulin Therapy", nodes[0].Name)
	})

	t.Run("Select nodes by category", func(t *testing.T) {
		nodes, err := nodesDbHandler.SelectNodesByCategory(model.NodeTypeTreatment, 10)
		assert.NoError(t, err)
		assert.NotEmpty(t, nodes)
		for _, node := range nodes {
			assert.Equal(t, model.NodeTypeTreatment, node.Category)
		}
	})
}

func TestNodesDeleteAndCount(t *testing.T) {
	database := initDB(t)

	nodesDbHandler, err := NewNodesDBHandler(database, true)
	require.NoError(t, err)

	node := &model.GraphNode{Name: "Temporary Node", Category: model.NodeTypeMedicalConcept}
	require.NoError(t, nodesDbHandler.InsertNode(node))

	before, err := nodesDbHandler.CountNodes()
	require.NoError(t, err)
	assert.Greater(t, before, int64(0))

	var id int
	require.NoError(t, database.Instance.QueryRow(
		`SELECT id FROM nodes WHERE name = $1`, "Temporary Node").Scan(&id))

	require.NoError(t, nodesDbHandler.DeleteNode(id))

	after, err := nodesDbHandler.CountNodes()
	require.NoError(t, err)
	assert.Equal(t, before-1, after, "Expected count to drop by one after delete")

	deleted, err := nodesDbHandler.SelectNodeByName("Temporary Node")
	require.NoError(t, err)
	assert.Nil(t, deleted)
}
