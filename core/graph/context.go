package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/model"
)

const (
	// maxContextEntities bounds how many resolved entities get expanded.
	maxContextEntities = 5
	// maxNeighborsPerEntity bounds the neighbor listing per entity.
	maxNeighborsPerEntity = 5
	// maxRenderedProperties bounds the property listing per entity.
	maxRenderedProperties = 3
)

// intentSections labels the targeted context block per intent.
var intentSections = map[model.Intent]string{
	model.IntentSymptom:    "Symptoms",
	model.IntentTreatment:  "Treatments",
	model.IntentDiagnosis:  "Diagnostic methods",
	model.IntentRisk:       "Risk factors",
	model.IntentCause:      "Causes",
	model.IntentPrevention: "Prevention",
	model.IntentDiet:       "Recommended foods",
}

// buildContext expands the top entities into a textual context. For a
// non-general intent it tries the targeted lookup first and falls back to
// generic 1-hop neighbor enumeration when that comes back empty. Each
// rendered edge is also materialized as a GraphRelation.
func (r *Retriever) buildContext(ctx context.Context, entities []*model.GraphNode, intent model.Intent) ([]model.GraphRelation, string, error) {
	var relations []model.GraphRelation
	var parts []string
	processed := map[string]bool{}

	lookup, hasLookup := r.vocab.IntentLookups[intent]

	for _, entity := range entities {
		if len(processed) == maxContextEntities {
			break
		}
		if processed[entity.ID] {
			continue
		}
		processed[entity.ID] = true

		if intent != model.IntentGeneral && hasLookup {
			neighbors, err := r.store.IntentNeighbors(ctx, entity.Name, lookup.Relations, lookup.TargetCategory)
			if err != nil {
				return nil, "", helper.NewError("intent neighbors", err)
			}
			if len(neighbors) > 0 {
				if len(neighbors) > maxNeighborsPerEntity {
					neighbors = neighbors[:maxNeighborsPerEntity]
				}
				names := make([]string, 0, len(neighbors))
				for _, neighbor := range neighbors {
					names = append(names, neighbor.Name)
					relations = append(relations, model.GraphRelation{
						Source: entity.Name,
						Type:   neighbor.Relation,
						Target: neighbor.Name,
					})
				}
				parts = append(parts, fmt.Sprintf("[%s] %s\n%s: %s",
					entity.Category, entity.Name, intentSections[intent], strings.Join(names, ", ")))
				continue
			}
		}

		center, neighbors, err := r.store.Neighbors(ctx, entity.Name)
		if err != nil {
			return nil, "", helper.NewError("entity neighbors", err)
		}
		if center == nil {
			continue
		}

		parts = append(parts, renderEntity(entity))

		if len(neighbors) == 0 {
			continue
		}
		if len(neighbors) > maxNeighborsPerEntity {
			neighbors = neighbors[:maxNeighborsPerEntity]
		}
		edges := make([]string, 0, len(neighbors))
		for _, neighbor := range neighbors {
			edges = append(edges, fmt.Sprintf("%s %s", neighbor.Relation, neighbor.Name))
			relations = append(relations, model.GraphRelation{
				Source: entity.Name,
				Type:   neighbor.Relation,
				Target: neighbor.Name,
			})
		}
		parts = append(parts, "Related: "+strings.Join(edges, ", "))
	}

	return relations, strings.Join(parts, "\n\n"), nil
}

// renderEntity formats an entity header with up to three of its properties.
func renderEntity(entity *model.GraphNode) string {
	info := fmt.Sprintf("[%s] %s", entity.Category, entity.Name)
	if len(entity.Properties) == 0 {
		return info
	}

	keys := make([]string, 0, len(entity.Properties))
	for key := range entity.Properties {
		if key == "id" || key == "name" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	props := make([]string, 0, maxRenderedProperties)
	for _, key := range keys {
		if len(props) == maxRenderedProperties {
			break
		}
		value := entity.Properties[key].String()
		if value == "" {
			continue
		}
		props = append(props, fmt.Sprintf("%s: %s", key, value))
	}
	if len(props) > 0 {
		info += "\nProperties: " + strings.Join(props, ", ")
	}
	return info
}
