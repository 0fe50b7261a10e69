package graph

import (
	"context"

	"github.com/medassist-io/graphrag/model"
)

// TraversalResult is one entity reached during multi-hop traversal.
type TraversalResult struct {
	Name     string
	Category model.NodeType
	Distance int
	// Path holds the entity names from the source to this entity.
	Path []string
}

// BFS walks the graph breadth-first from a source entity, following edges
// of the given relation types up to maxHops. An empty relation list follows
// every edge. The source itself is the first result.
func BFS(ctx context.Context, store Store, sourceName string, maxHops int, relations []model.RelationType) ([]*TraversalResult, error) {
	center, _, err := store.Neighbors(ctx, sourceName)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, nil
	}

	wanted := relationSet(relations)
	visited := map[string]bool{center.Name: true}
	queue := []*TraversalResult{{
		Name:     center.Name,
		Category: center.Category,
		Path:     []string{center.Name},
	}}

	var results []*TraversalResult
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		results = append(results, current)

		if current.Distance >= maxHops {
			continue
		}

		_, neighbors, err := store.Neighbors(ctx, current.Name)
		if err != nil {
			return nil, err
		}
		for _, neighbor := range neighbors {
			if len(wanted) > 0 && !wanted[neighbor.Relation] {
				continue
			}
			if visited[neighbor.Name] {
				continue
			}
			visited[neighbor.Name] = true

			path := make([]string, len(current.Path), len(current.Path)+1)
			copy(path, current.Path)
			path = append(path, neighbor.Name)

			queue = append(queue, &TraversalResult{
				Name:     neighbor.Name,
				Category: neighbor.Category,
				Distance: current.Distance + 1,
				Path:     path,
			})
		}
	}

	return results, nil
}

// DFS walks the graph depth-first from a source entity with the same
// semantics as BFS.
func DFS(ctx context.Context, store Store, sourceName string, maxHops int, relations []model.RelationType) ([]*TraversalResult, error) {
	center, _, err := store.Neighbors(ctx, sourceName)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, nil
	}

	visited := map[string]bool{}
	var results []*TraversalResult
	err = dfsRecursive(ctx, store, center.Name, center.Category, 0, maxHops,
		[]string{center.Name}, relationSet(relations), visited, &results)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func dfsRecursive(
	ctx context.Context,
	store Store,
	name string,
	category model.NodeType,
	distance int,
	maxHops int,
	path []string,
	wanted map[model.RelationType]bool,
	visited map[string]bool,
	results *[]*TraversalResult,
) error {
	visited[name] = true

	pathCopy := make([]string, len(path))
	copy(pathCopy, path)
	*results = append(*results, &TraversalResult{
		Name:     name,
		Category: category,
		Distance: distance,
		Path:     pathCopy,
	})

	if distance >= maxHops {
		return nil
	}

	_, neighbors, err := store.Neighbors(ctx, name)
	if err != nil {
		return err
	}
	for _, neighbor := range neighbors {
		if len(wanted) > 0 && !wanted[neighbor.Relation] {
			continue
		}
		if visited[neighbor.Name] {
			continue
		}

		newPath := make([]string, len(path), len(path)+1)
		copy(newPath, path)
		newPath = append(newPath, neighbor.Name)

		err := dfsRecursive(ctx, store, neighbor.Name, neighbor.Category,
			distance+1, maxHops, newPath, wanted, visited, results)
		if err != nil {
			return err
		}
	}
	return nil
}

func relationSet(relations []model.RelationType) map[model.RelationType]bool {
	wanted := make(map[model.RelationType]bool, len(relations))
	for _, relation := range relations {
		wanted[relation] = true
	}
	return wanted
}
