package database

import (
	"context"

	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/model"
)

// searchLimit bounds fuzzy lookups; the retriever trims further anyway.
const searchLimit = 20

// GraphStore is the Postgres-backed knowledge graph. It satisfies the graph
// retriever's read-only store contract and additionally exposes the write
// path used by graph loaders.
type GraphStore struct {
	nodes     *NodesDBHandler
	relations *RelationsDBHandler
}

// NewGraphStore creates the node and relation handlers on one connection.
// If force is true, the SQL functions are reloaded even if present.
func NewGraphStore(db *helper.Database, force bool) (*GraphStore, error) {
	nodes, err := NewNodesDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("new nodes handler", err)
	}

	relations, err := NewRelationsDBHandler(db, force)
	if err != nil {
		return nil, helper.NewError("new relations handler", err)
	}

	return &GraphStore{
		nodes:     nodes,
		relations: relations,
	}, nil
}

// AddNode inserts or updates a node.
func (s *GraphStore) AddNode(node *model.GraphNode) error {
	return s.nodes.InsertNode(node)
}

// AddRelation inserts a relation between two existing nodes.
func (s *GraphStore) AddRelation(relation *model.GraphRelation) error {
	return s.relations.InsertRelation(relation)
}

// FindEntities implements graph.Store.
func (s *GraphStore) FindEntities(ctx context.Context, name string, fuzzy bool) ([]*model.GraphNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if fuzzy {
		return s.nodes.SearchNodes(name, searchLimit)
	}

	node, err := s.nodes.SelectNodeByName(name)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}
	return []*model.GraphNode{node}, nil
}

// Neighbors implements graph.Store.
func (s *GraphStore) Neighbors(ctx context.Context, name string) (*model.GraphNode, []model.Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	center, err := s.nodes.SelectNodeByName(name)
	if err != nil {
		return nil, nil, err
	}
	if center == nil {
		return nil, nil, nil
	}

	neighbors, err := s.relations.SelectNeighbors(name)
	if err != nil {
		return nil, nil, err
	}
	return center, neighbors, nil
}

// IntentNeighbors implements graph.Store. A neighbor qualifies when its
// relation type is wanted or when its category matches the target.
func (s *GraphStore) IntentNeighbors(ctx context.Context, name string, relations []model.RelationType, targetCategory model.NodeType) ([]model.Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	center, err := s.nodes.SelectNodeByName(name)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, nil
	}

	all, err := s.relations.SelectNeighbors(name)
	if err != nil {
		return nil, err
	}

	wanted := map[model.RelationType]bool{}
	for _, relation := range relations {
		wanted[relation] = true
	}

	var neighbors []model.Neighbor
	for _, neighbor := range all {
		if !wanted[neighbor.Relation] && (targetCategory == "" || neighbor.Category != targetCategory) {
			continue
		}
		neighbors = append(neighbors, neighbor)
	}
	return neighbors, nil
}

// DiseaseProfile implements graph.Store. Only outgoing edges contribute to
// the profile buckets.
func (s *GraphStore) DiseaseProfile(ctx context.Context, name string) (*model.DiseaseProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	center, err := s.nodes.SelectNodeByName(name)
	if err != nil {
		return nil, err
	}
	if center == nil || center.Category != model.NodeTypeDisease {
		return nil, nil
	}

	outgoing, err := s.relations.SelectOutgoingRelations(name)
	if err != nil {
		return nil, err
	}

	profile := &model.DiseaseProfile{
		Name:       center.Name,
		Properties: center.Properties,
	}
	for _, edge := range outgoing {
		switch edge.Relation {
		case model.RelationHasSymptom:
			profile.Symptoms = append(profile.Symptoms, edge.Name)
		case model.RelationHasRiskFactor:
			profile.RiskFactors = append(profile.RiskFactors, edge.Name)
		case model.RelationTreatedBy:
			profile.Treatments = append(profile.Treatments, edge.Name)
		case model.RelationDiagnosedBy:
			profile.Diagnostics = append(profile.Diagnostics, edge.Name)
		case model.RelationCanCause:
			profile.Complications = append(profile.Complications, edge.Name)
		}
	}
	return profile, nil
}

// Stats implements graph.Store.
func (s *GraphStore) Stats(ctx context.Context) (model.GraphStats, error) {
	if err := ctx.Err(); err != nil {
		return model.GraphStats{}, err
	}

	nodeCount, err := s.nodes.CountNodes()
	if err != nil {
		return model.GraphStats{}, err
	}
	relationCount, err := s.relations.CountRelations()
	if err != nil {
		return model.GraphStats{}, err
	}
	return model.GraphStats{
		NodeCount:     nodeCount,
		RelationCount: relationCount,
	}, nil
}
