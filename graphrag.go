package graphrag

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/medassist-io/graphrag/core/graph"
	"github.com/medassist-io/graphrag/core/pipeline"
	"github.com/medassist-io/graphrag/core/retrieval"
	"github.com/medassist-io/graphrag/core/vectorstore"
	"github.com/medassist-io/graphrag/database"
	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/metrics"
	"github.com/medassist-io/graphrag/model"
	loadSql "github.com/medassist-io/graphrag/sql"
)

// defaultEmbeddingDim matches the first default embedder candidate
// (all-mpnet-base-v2).
const defaultEmbeddingDim = 768

// Config bundles the tunable parts of a GraphRAG instance. The zero value
// falls back to the package defaults.
type Config struct {
	// Chunker configures domain-aware document chunking.
	Chunker model.ChunkerConfig
	// Engine configures the hybrid fusion coordinator.
	Engine model.EngineConfig
	// Vocabulary drives intent classification and keyword extraction.
	Vocabulary *model.Vocabulary
	// EmbeddingDim is the vector dimension of the persisted chunks table.
	EmbeddingDim int
	// Metrics receives retrieval and ingestion observations.
	Metrics metrics.Recorder
	// Logger replaces the default pretty stdout logger.
	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Chunker.MaxChunkSize == 0 {
		c.Chunker = model.DefaultChunkerConfig()
	}
	if c.Engine.ContextBudget == 0 {
		c.Engine = model.DefaultEngineConfig()
	}
	if c.Vocabulary == nil {
		c.Vocabulary = model.DefaultVocabulary()
	}
	if c.EmbeddingDim == 0 {
		c.EmbeddingDim = defaultEmbeddingDim
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Nop{}
	}
	if c.Logger == nil {
		opts := helper.PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				Level: slog.LevelInfo,
			},
		}
		c.Logger = slog.New(helper.NewPrettyHandler(os.Stdout, opts))
	}
}

// GraphRAG is the top-level handle to the hybrid medical retrieval engine.
// It combines the in-memory vector store, the knowledge graph retriever and
// the fusion coordinator, optionally backed by a Postgres database for
// persisted chunks and graph data.
type GraphRAG struct {
	DB       *helper.Database
	Vectors  *vectorstore.Store
	Graph    *graph.Retriever
	Engine   *retrieval.Engine
	Chunks   *database.ChunksDBHandler
	embedder pipeline.Embedder
	store    graph.Store
	memory   *graph.MemoryStore
	graphDB  *database.GraphStore
	metrics  metrics.Recorder
	log      *slog.Logger
}

// NewGraphRAG creates a Postgres-backed instance. The graph lives in the
// nodes and relations tables and chunks can be persisted with pgvector
// similarity search. force reloads the stored functions even when they
// already exist.
func NewGraphRAG(dbConfig *helper.DatabaseConfiguration, embedder pipeline.Embedder, config Config, force bool) (*GraphRAG, error) {
	config.applyDefaults()

	db, err := helper.NewDatabase("graphrag", dbConfig, config.Logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}
	if err := loadSql.Init(db.Instance); err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	graphDB, err := database.NewGraphStore(db, force)
	if err != nil {
		return nil, helper.NewError("create graph store", err)
	}
	chunks, err := database.NewChunksDBHandler(db, config.EmbeddingDim, force)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	g, err := assemble(embedder, config, graphDB)
	if err != nil {
		return nil, err
	}
	g.DB = db
	g.Chunks = chunks
	g.graphDB = graphDB
	return g, nil
}

// NewInMemoryGraphRAG creates an instance without a database. The graph is
// held in memory and chunk persistence is unavailable; snapshots still work.
func NewInMemoryGraphRAG(embedder pipeline.Embedder, config Config) (*GraphRAG, error) {
	config.applyDefaults()

	memory := graph.NewMemoryStore()
	g, err := assemble(embedder, config, memory)
	if err != nil {
		return nil, err
	}
	g.memory = memory
	return g, nil
}

func assemble(embedder pipeline.Embedder, config Config, store graph.Store) (*GraphRAG, error) {
	if embedder == nil {
		return nil, helper.NewError("create engine", fmt.Errorf("embedder is nil"))
	}

	chunker, err := pipeline.DomainChunker(config.Chunker)
	if err != nil {
		return nil, helper.NewError("create chunker", err)
	}

	vectors := vectorstore.New(chunker, embedder, config.Chunker, config.Logger)
	retriever := graph.NewRetriever(store, config.Vocabulary, config.Logger)
	engine := retrieval.NewEngine(vectors, retriever, config.Engine, config.Metrics, config.Logger)

	return &GraphRAG{
		Vectors:  vectors,
		Graph:    retriever,
		Engine:   engine,
		embedder: embedder,
		store:    store,
		metrics:  config.Metrics,
		log:      config.Logger,
	}, nil
}

// AddEntity inserts or replaces a graph node in the active backend.
func (g *GraphRAG) AddEntity(node model.GraphNode) error {
	if g.graphDB != nil {
		return g.graphDB.AddNode(&node)
	}
	g.memory.AddNode(node)
	return nil
}

// AddRelation inserts a directed relation between two entity names. Both
// entities must already exist when the graph is database-backed.
func (g *GraphRAG) AddRelation(relation model.GraphRelation) error {
	if g.graphDB != nil {
		return g.graphDB.AddRelation(&relation)
	}
	g.memory.AddRelation(relation)
	return nil
}

// IngestDocument chunks one document into the vector store.
func (g *GraphRAG) IngestDocument(ctx context.Context, doc vectorstore.Document) (int, error) {
	chunks, err := g.Vectors.IngestDocument(ctx, doc)
	if err != nil {
		return 0, err
	}
	g.metrics.ObserveIngestion(1, chunks)
	return chunks, nil
}

// IngestDocuments chunks a batch of documents on a worker pool.
func (g *GraphRAG) IngestDocuments(ctx context.Context, docs []vectorstore.Document) (int, error) {
	before := g.Vectors.Len()
	processed, err := g.Vectors.IngestDocuments(ctx, docs)
	if err != nil {
		return 0, err
	}
	g.metrics.ObserveIngestion(processed, g.Vectors.Len()-before)
	return processed, nil
}

// GenerateEmbeddings embeds all chunks that do not have a vector yet.
func (g *GraphRAG) GenerateEmbeddings(ctx context.Context, batchSize int) error {
	return g.Vectors.GenerateEmbeddings(ctx, batchSize)
}

// PersistChunks writes all embedded chunks of the vector store into the
// pgvector-backed chunks table. Requires a database-backed instance.
func (g *GraphRAG) PersistChunks(ctx context.Context) (int, error) {
	if g.Chunks == nil {
		return 0, helper.NewError("persist chunks", fmt.Errorf("no database configured"))
	}

	persisted := 0
	for _, chunk := range g.Vectors.Chunks() {
		if err := ctx.Err(); err != nil {
			return persisted, err
		}
		if chunk.Embedding == nil {
			continue
		}
		chunk := chunk
		if err := g.Chunks.InsertChunk(&chunk); err != nil {
			return persisted, helper.NewError(fmt.Sprintf("persist chunk %s", chunk.ChunkID), err)
		}
		persisted++
	}

	g.log.Info("Persisted chunks", slog.Int("chunks", persisted))
	return persisted, nil
}

// SemanticSearch runs a similarity search over the in-memory vector store.
func (g *GraphRAG) SemanticSearch(ctx context.Context, query string, opts model.SearchOptions) ([]model.SemanticMatch, error) {
	return g.Vectors.Search(ctx, query, opts)
}

// PersistedSearch runs a pgvector similarity search over the persisted
// chunks table. Requires a database-backed instance.
func (g *GraphRAG) PersistedSearch(ctx context.Context, query string, opts model.SearchOptions) ([]model.SemanticMatch, error) {
	if g.Chunks == nil {
		return nil, helper.NewError("persisted search", fmt.Errorf("no database configured"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embedding, err := g.embedder.Embed(query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	return g.Chunks.SelectChunksBySimilarity(embedding, opts.TopK, opts.MinScore, opts.CategoryFilter)
}

// GraphSearch runs the graph entity retriever alone. It never returns an
// error; failures surface as a sentinel result.
func (g *GraphRAG) GraphSearch(ctx context.Context, query string, topK int) *model.GraphSearchResult {
	return g.Graph.Retrieve(ctx, query, topK)
}

// DiseaseContext builds a structured context block for one disease, or nil
// when the disease is not in the graph.
func (g *GraphRAG) DiseaseContext(ctx context.Context, diseaseName string) *model.GraphSearchResult {
	return g.Graph.DiseaseContext(ctx, diseaseName)
}

// HybridSearch runs semantic and graph retrieval concurrently and fuses the
// results into one context.
func (g *GraphRAG) HybridSearch(ctx context.Context, query string, topK int) *model.HybridSearchResult {
	return g.Engine.Retrieve(ctx, query, topK)
}

// UpdateWeights replaces the fusion weights for general queries. The pair is
// normalized to sum to one.
func (g *GraphRAG) UpdateWeights(weights model.Weights) error {
	return g.Engine.UpdateWeights(weights)
}

// Statistics reports the state of the vector store, the graph and the
// current fusion weights.
func (g *GraphRAG) Statistics(ctx context.Context) (retrieval.Stats, error) {
	return g.Engine.Statistics(ctx)
}

// BFSTraversal walks the graph breadth-first from an entity.
func (g *GraphRAG) BFSTraversal(ctx context.Context, sourceName string, maxHops int, relations []model.RelationType) ([]*graph.TraversalResult, error) {
	return graph.BFS(ctx, g.store, sourceName, maxHops, relations)
}

// DFSTraversal walks the graph depth-first from an entity.
func (g *GraphRAG) DFSTraversal(ctx context.Context, sourceName string, maxHops int, relations []model.RelationType) ([]*graph.TraversalResult, error) {
	return graph.DFS(ctx, g.store, sourceName, maxHops, relations)
}

// SaveSnapshot writes the vector store contents to path.
func (g *GraphRAG) SaveSnapshot(path string) error {
	return g.Vectors.SaveSnapshot(path)
}

// LoadSnapshot replaces the vector store contents with a snapshot written by
// the same model and chunk configuration.
func (g *GraphRAG) LoadSnapshot(path string) error {
	return g.Vectors.LoadSnapshot(path)
}

// ChangeIndexType switches the persisted vector index between HNSW and
// IVFFlat. Requires a database-backed instance.
func (g *GraphRAG) ChangeIndexType(ctx context.Context, indexType string, opts database.IndexOptions) error {
	if g.Chunks == nil {
		return helper.NewError("change index type", fmt.Errorf("no database configured"))
	}
	return g.Chunks.ChangeIndexType(ctx, indexType, opts)
}

// Close releases the embedding model session and the database connection.
func (g *GraphRAG) Close() error {
	var firstErr error
	if g.embedder != nil {
		if err := g.embedder.Close(); err != nil {
			firstErr = helper.NewError("close embedder", err)
		}
	}
	if g.DB != nil {
		if err := g.DB.Close(); err != nil && firstErr == nil {
			firstErr = helper.NewError("close database", err)
		}
	}
	return firstErr
}
