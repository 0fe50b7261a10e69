package graph

import (
	"context"
	"strings"
	"sync"

	"github.com/medassist-io/graphrag/model"
)

// MemoryStore is an in-memory Store used for tests and small, file-backed
// deployments. Loading happens through AddNode/AddRelation before the store
// is handed to a retriever; the Store interface itself stays read-only.
type MemoryStore struct {
	mu        sync.RWMutex
	nodes     map[string]*model.GraphNode
	byName    map[string]string
	relations []model.GraphRelation
}

// NewMemoryStore creates an empty in-memory graph store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:  map[string]*model.GraphNode{},
		byName: map[string]string{},
	}
}

// AddNode inserts or replaces a node.
func (s *MemoryStore) AddNode(node model.GraphNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := node
	s.nodes[node.ID] = &copied
	s.byName[strings.ToLower(node.Name)] = node.ID
}

// AddRelation inserts a directed relation between two node names.
func (s *MemoryStore) AddRelation(relation model.GraphRelation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations = append(s.relations, relation)
}

// FindEntities implements Store.
func (s *MemoryStore) FindEntities(ctx context.Context, name string, fuzzy bool) ([]*model.GraphNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	nameLower := strings.ToLower(name)
	var matches []*model.GraphNode
	for _, node := range s.nodes {
		nodeName := strings.ToLower(node.Name)
		if fuzzy {
			if strings.Contains(nodeName, nameLower) {
				matches = append(matches, cloneNode(node))
			}
		} else if nodeName == nameLower {
			matches = append(matches, cloneNode(node))
		}
	}
	return matches, nil
}

// Neighbors implements Store.
func (s *MemoryStore) Neighbors(ctx context.Context, name string) (*model.GraphNode, []model.Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	center := s.lookupByName(name)
	if center == nil {
		return nil, nil, nil
	}

	var neighbors []model.Neighbor
	seen := map[string]bool{}
	for _, relation := range s.relations {
		var neighborName string
		switch {
		case strings.EqualFold(relation.Source, center.Name):
			neighborName = relation.Target
		case strings.EqualFold(relation.Target, center.Name):
			neighborName = relation.Source
		default:
			continue
		}
		if seen[neighborName] {
			continue
		}
		seen[neighborName] = true

		category := model.NodeType("")
		if neighbor := s.lookupByName(neighborName); neighbor != nil {
			category = neighbor.Category
		}
		neighbors = append(neighbors, model.Neighbor{
			Name:     neighborName,
			Category: category,
			Relation: relation.Type,
		})
	}
	return cloneNode(center), neighbors, nil
}

// IntentNeighbors implements Store.
func (s *MemoryStore) IntentNeighbors(ctx context.Context, name string, relations []model.RelationType, targetCategory model.NodeType) ([]model.Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	center := s.lookupByName(name)
	if center == nil {
		return nil, nil
	}

	wanted := map[model.RelationType]bool{}
	for _, relation := range relations {
		wanted[relation] = true
	}

	var neighbors []model.Neighbor
	seen := map[string]bool{}
	for _, relation := range s.relations {
		var neighborName string
		switch {
		case strings.EqualFold(relation.Source, center.Name):
			neighborName = relation.Target
		case strings.EqualFold(relation.Target, center.Name):
			neighborName = relation.Source
		default:
			continue
		}

		neighbor := s.lookupByName(neighborName)
		category := model.NodeType("")
		if neighbor != nil {
			category = neighbor.Category
		}
		if !wanted[relation.Type] && (targetCategory == "" || category != targetCategory) {
			continue
		}
		if seen[neighborName] {
			continue
		}
		seen[neighborName] = true
		neighbors = append(neighbors, model.Neighbor{
			Name:     neighborName,
			Category: category,
			Relation: relation.Type,
		})
	}
	return neighbors, nil
}

// DiseaseProfile implements Store.
func (s *MemoryStore) DiseaseProfile(ctx context.Context, name string) (*model.DiseaseProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	center := s.lookupByName(name)
	if center == nil || center.Category != model.NodeTypeDisease {
		return nil, nil
	}

	profile := &model.DiseaseProfile{
		Name:       center.Name,
		Properties: center.Properties,
	}
	for _, relation := range s.relations {
		if !strings.EqualFold(relation.Source, center.Name) {
			continue
		}
		switch relation.Type {
		case model.RelationHasSymptom:
			profile.Symptoms = append(profile.Symptoms, relation.Target)
		case model.RelationHasRiskFactor:
			profile.RiskFactors = append(profile.RiskFactors, relation.Target)
		case model.RelationTreatedBy:
			profile.Treatments = append(profile.Treatments, relation.Target)
		case model.RelationDiagnosedBy:
			profile.Diagnostics = append(profile.Diagnostics, relation.Target)
		case model.RelationCanCause:
			profile.Complications = append(profile.Complications, relation.Target)
		}
	}
	return profile, nil
}

// Stats implements Store.
func (s *MemoryStore) Stats(ctx context.Context) (model.GraphStats, error) {
	if err := ctx.Err(); err != nil {
		return model.GraphStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.GraphStats{
		NodeCount:     int64(len(s.nodes)),
		RelationCount: int64(len(s.relations)),
	}, nil
}

func (s *MemoryStore) lookupByName(name string) *model.GraphNode {
	if id, ok := s.byName[strings.ToLower(name)]; ok {
		return s.nodes[id]
	}
	return nil
}

func cloneNode(node *model.GraphNode) *model.GraphNode {
	copied := *node
	return &copied
}
