package graph

import (
	"context"

	"github.com/medassist-io/graphrag/model"
)

// Store is the read-only view of the medical knowledge graph the retriever
// works against. The retrieval path never mutates the graph; population is
// the job of the external extraction pipeline.
type Store interface {
	// FindEntities looks an entity up by name. With fuzzy set, the match is
	// a case-insensitive substring match; otherwise names must be equal.
	FindEntities(ctx context.Context, name string, fuzzy bool) ([]*model.GraphNode, error)

	// Neighbors returns the entity with the given name and its 1-hop
	// neighborhood in both directions. A nil center means the entity does
	// not exist.
	Neighbors(ctx context.Context, name string) (*model.GraphNode, []model.Neighbor, error)

	// IntentNeighbors returns the neighbors of the named entity reachable
	// through one of the given relation types, or whose category equals
	// targetCategory when set.
	IntentNeighbors(ctx context.Context, name string, relations []model.RelationType, targetCategory model.NodeType) ([]model.Neighbor, error)

	// DiseaseProfile fetches the directly linked context of a disease node
	// in one pass. A nil profile means the disease is not in the graph.
	DiseaseProfile(ctx context.Context, name string) (*model.DiseaseProfile, error)

	// Stats reports aggregate node and relation counts.
	Stats(ctx context.Context) (model.GraphStats, error)
}
