package model

// NodeType is the closed set of entity categories in the medical graph.
type NodeType string

const (
	NodeTypeMedicalConcept   NodeType = "MedicalConcept"
	NodeTypeDisease          NodeType = "Disease"
	NodeTypeSymptom          NodeType = "Symptom"
	NodeTypeRiskFactor       NodeType = "RiskFactor"
	NodeTypeDiagnosticMethod NodeType = "DiagnosticMethod"
	NodeTypeTreatment        NodeType = "Treatment"
	NodeTypeComplication     NodeType = "Complication"
	NodeTypeFood             NodeType = "Food"
	NodeTypeGuideline        NodeType = "Guideline"
)

// RelationType is the closed vocabulary of edge types in the medical graph.
type RelationType string

const (
	RelationIsA                RelationType = "IS_A"
	RelationHasSymptom         RelationType = "HAS_SYMPTOM"
	RelationHasRiskFactor      RelationType = "HAS_RISK_FACTOR"
	RelationDiagnosedBy        RelationType = "DIAGNOSED_BY"
	RelationTreatedBy          RelationType = "TREATED_BY"
	RelationCanCause           RelationType = "CAN_CAUSE"
	RelationRecommendedFor     RelationType = "RECOMMENDED_FOR"
	RelationContraindicatedFor RelationType = "CONTRAINDICATED_FOR"
	RelationRecommends         RelationType = "RECOMMENDS"
)

// GraphNode represents a named entity in the external property graph.
// Nodes are read-only from the retriever's point of view.
type GraphNode struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Category   NodeType   `json:"category"`
	Properties Properties `json:"properties,omitempty"`
}

// GraphRelation represents a typed, directed edge between two entities,
// identified by their display names.
type GraphRelation struct {
	Source     string       `json:"source"`
	Type       RelationType `json:"relation_type"`
	Target     string       `json:"target"`
	Properties Properties   `json:"properties,omitempty"`
}

// Neighbor is a single edge rendered from the perspective of a center
// entity during context expansion.
type Neighbor struct {
	Name     string       `json:"name"`
	Category NodeType     `json:"category"`
	Relation RelationType `json:"relation"`
}

// DiseaseProfile aggregates the directly linked context of a disease node
// fetched in a single pass.
type DiseaseProfile struct {
	Name          string     `json:"name"`
	Properties    Properties `json:"properties,omitempty"`
	Symptoms      []string   `json:"symptoms"`
	RiskFactors   []string   `json:"risk_factors"`
	Treatments    []string   `json:"treatments"`
	Diagnostics   []string   `json:"diagnostics"`
	Complications []string   `json:"complications"`
}

// GraphStats holds aggregate counts reported by a graph store.
type GraphStats struct {
	NodeCount     int64 `json:"node_count"`
	RelationCount int64 `json:"relation_count"`
}
