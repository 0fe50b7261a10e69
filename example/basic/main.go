package main

import (
	"context"
	"fmt"
	"log"

	"github.com/medassist-io/graphrag"
	"github.com/medassist-io/graphrag/core/pipeline"
	"github.com/medassist-io/graphrag/core/vectorstore"
	"github.com/medassist-io/graphrag/model"
)

var documents = []vectorstore.Document{
	{
		Text: "Gestational diabetes mellitus is glucose intolerance first recognized during pregnancy. " +
			"Common symptoms include polyuria, polydipsia, fatigue and blurred vision. " +
			"Many women have no symptoms at all, which is why routine screening matters.",
		Category:   "symptoms",
		SourceName: "clinical_overview",
	},
	{
		Text: "Treatment starts with medical nutrition therapy and moderate exercise. " +
			"Insulin therapy is added when diet and exercise fail to keep blood glucose in range. " +
			"Blood glucose monitoring four times daily guides therapy adjustments.",
		Category:   "treatment",
		SourceName: "treatment_guide",
	},
	{
		Text: "The oral glucose tolerance test between 24 and 28 weeks of pregnancy is the standard screening. " +
			"A fasting plasma glucose of 5.1 mmol/L or higher is diagnostic.",
		Category:   "diagnostics",
		SourceName: "screening_guide",
	},
}

func seedGraph(g *graphrag.GraphRAG) error {
	disease := "Gestational Diabetes Mellitus"
	entities := []model.GraphNode{
		{ID: "d1", Name: disease, Category: model.NodeTypeDisease,
			Properties: model.Properties{"description": model.StringValue("Glucose intolerance first recognized during pregnancy")}},
		{ID: "s1", Name: "Polyuria", Category: model.NodeTypeSymptom},
		{ID: "s2", Name: "Polydipsia", Category: model.NodeTypeSymptom},
		{ID: "s3", Name: "Fatigue", Category: model.NodeTypeSymptom},
		{ID: "t1", Name: "Insulin Therapy", Category: model.NodeTypeTreatment},
		{ID: "t2", Name: "Medical Nutrition Therapy", Category: model.NodeTypeTreatment},
		{ID: "dx1", Name: "OGTT", Category: model.NodeTypeDiagnosticMethod},
		{ID: "r1", Name: "Obesity", Category: model.NodeTypeRiskFactor},
		{ID: "c1", Name: "Macrosomia", Category: model.NodeTypeComplication},
	}
	for _, entity := range entities {
		if err := g.AddEntity(entity); err != nil {
			return err
		}
	}

	relations := []model.GraphRelation{
		{Source: disease, Type: model.RelationHasSymptom, Target: "Polyuria"},
		{Source: disease, Type: model.RelationHasSymptom, Target: "Polydipsia"},
		{Source: disease, Type: model.RelationHasSymptom, Target: "Fatigue"},
		{Source: disease, Type: model.RelationTreatedBy, Target: "Insulin Therapy"},
		{Source: disease, Type: model.RelationTreatedBy, Target: "Medical Nutrition Therapy"},
		{Source: disease, Type: model.RelationDiagnosedBy, Target: "OGTT"},
		{Source: disease, Type: model.RelationHasRiskFactor, Target: "Obesity"},
		{Source: disease, Type: model.RelationCanCause, Target: "Macrosomia"},
	}
	for _, relation := range relations {
		if err := g.AddRelation(relation); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	ctx := context.Background()

	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		log.Fatalf("Failed to load embedding model: %v", err)
	}

	g, err := graphrag.NewInMemoryGraphRAG(embedder, graphrag.Config{})
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer g.Close()

	if err := seedGraph(g); err != nil {
		log.Fatalf("Failed to seed knowledge graph: %v", err)
	}

	if _, err := g.IngestDocuments(ctx, documents); err != nil {
		log.Fatalf("Failed to ingest documents: %v", err)
	}
	if err := g.GenerateEmbeddings(ctx, 32); err != nil {
		log.Fatalf("Failed to generate embeddings: %v", err)
	}

	queries := []string{
		"What are the common symptoms of gestational diabetes?",
		"What is gestational diabetes mellitus?",
		"Share an example of how insulin therapy is managed during pregnancy",
	}
	for _, query := range queries {
		result := g.HybridSearch(ctx, query, 5)
		fmt.Printf("\nQuery: %s\n", query)
		fmt.Printf("Strategy: %s (fusion: %s, score: %.3f)\n", result.Strategy, result.FusionMethod, result.FinalScore)
		fmt.Printf("Context:\n%s\n", result.FusedContext)
	}

	profile := g.DiseaseContext(ctx, "Gestational Diabetes Mellitus")
	if profile != nil {
		fmt.Printf("\nDisease profile:\n%s\n", profile.ContextText)
	}

	stats, err := g.Statistics(ctx)
	if err != nil {
		log.Fatalf("Failed to read statistics: %v", err)
	}
	fmt.Printf("\nChunks: %d, graph nodes: %d, graph relations: %d\n",
		stats.Vector.TotalChunks, stats.Graph.NodeCount, stats.Graph.RelationCount)
}
