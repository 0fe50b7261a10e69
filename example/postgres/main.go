package main

import (
	"context"
	"fmt"
	"log"

	"github.com/medassist-io/graphrag"
	"github.com/medassist-io/graphrag/core/pipeline"
	"github.com/medassist-io/graphrag/core/vectorstore"
	"github.com/medassist-io/graphrag/database"
	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/model"
)

// embeddingDim matches the all-MiniLM-L6-v2 model.
const embeddingDim = 384

func main() {
	ctx := context.Background()

	// Start a throwaway pgvector-enabled Postgres container. In production
	// the configuration comes from GRAPHRAG_DB_* environment variables via
	// helper.NewDatabaseConfiguration.
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start Postgres container: %v", err)
	}
	defer teardown(ctx)

	dbConfig := &helper.DatabaseConfiguration{
		Host:         "localhost",
		Port:         dbPort,
		User:         "postgres",
		Password:     "postgres",
		Name:         "graphrag_test",
		SSLMode:      "disable",
		MaxOpenConns: 10,
	}

	embedder, err := pipeline.NewEmbedder("sentence-transformers/all-MiniLM-L6-v2", "onnx/model.onnx")
	if err != nil {
		log.Fatalf("Failed to load embedding model: %v", err)
	}

	g, err := graphrag.NewGraphRAG(dbConfig, embedder, graphrag.Config{EmbeddingDim: embeddingDim}, false)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer g.Close()

	// Graph data goes straight into the nodes and relations tables.
	disease := "Gestational Diabetes Mellitus"
	entities := []model.GraphNode{
		{Name: disease, Category: model.NodeTypeDisease},
		{Name: "Polyuria", Category: model.NodeTypeSymptom},
		{Name: "Insulin Therapy", Category: model.NodeTypeTreatment},
		{Name: "OGTT", Category: model.NodeTypeDiagnosticMethod},
	}
	for _, entity := range entities {
		if err := g.AddEntity(entity); err != nil {
			log.Fatalf("Failed to insert entity %s: %v", entity.Name, err)
		}
	}
	relations := []model.GraphRelation{
		{Source: disease, Type: model.RelationHasSymptom, Target: "Polyuria"},
		{Source: disease, Type: model.RelationTreatedBy, Target: "Insulin Therapy"},
		{Source: disease, Type: model.RelationDiagnosedBy, Target: "OGTT"},
	}
	for _, relation := range relations {
		if err := g.AddRelation(relation); err != nil {
			log.Fatalf("Failed to insert relation: %v", err)
		}
	}

	docs := []vectorstore.Document{
		{
			Text: "Common symptoms of gestational diabetes include polyuria, polydipsia and fatigue. " +
				"Insulin therapy is started when diet fails to control blood glucose.",
			Category:   "symptoms",
			SourceName: "clinical_overview",
		},
		{
			Text: "The oral glucose tolerance test between 24 and 28 weeks of pregnancy " +
				"is the standard screening for gestational diabetes.",
			Category:   "diagnostics",
			SourceName: "screening_guide",
		},
	}
	if _, err := g.IngestDocuments(ctx, docs); err != nil {
		log.Fatalf("Failed to ingest documents: %v", err)
	}
	if err := g.GenerateEmbeddings(ctx, 32); err != nil {
		log.Fatalf("Failed to generate embeddings: %v", err)
	}

	// Persist the embedded chunks and search them through pgvector.
	persisted, err := g.PersistChunks(ctx)
	if err != nil {
		log.Fatalf("Failed to persist chunks: %v", err)
	}
	fmt.Printf("Persisted %d chunks to Postgres\n", persisted)

	matches, err := g.PersistedSearch(ctx, "screening for gestational diabetes", model.SearchOptions{TopK: 3})
	if err != nil {
		log.Fatalf("Failed to search persisted chunks: %v", err)
	}
	for i, match := range matches {
		fmt.Printf("%d. (%.3f) %s\n", i+1, match.Score, match.Chunk.Text)
	}

	// Switch the vector index to IVFFlat and back, for example after a bulk
	// load where IVFFlat builds faster.
	if err := g.ChangeIndexType(ctx, "ivfflat", database.IndexOptions{Lists: 100}); err != nil {
		log.Fatalf("Failed to switch index: %v", err)
	}
	if err := g.ChangeIndexType(ctx, "hnsw", database.IndexOptions{}); err != nil {
		log.Fatalf("Failed to switch index back: %v", err)
	}

	result := g.HybridSearch(ctx, "What are the symptoms of gestational diabetes?", 5)
	fmt.Printf("\nHybrid strategy: %s (score: %.3f)\n", result.Strategy, result.FinalScore)
	fmt.Printf("Context:\n%s\n", result.FusedContext)
}
