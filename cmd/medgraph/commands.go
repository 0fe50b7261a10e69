package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/medassist-io/graphrag"
	"github.com/medassist-io/graphrag/core/pipeline"
	"github.com/medassist-io/graphrag/core/vectorstore"
	"github.com/medassist-io/graphrag/helper"
	"github.com/medassist-io/graphrag/metrics"
	"github.com/medassist-io/graphrag/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// graphFile is the on-disk format of a knowledge graph dump.
type graphFile struct {
	Entities  []model.GraphNode     `json:"entities"`
	Relations []model.GraphRelation `json:"relations"`
}

// documentFile is one document of an ingestion input file.
type documentFile struct {
	Text       string `json:"text"`
	Category   string `json:"category"`
	SourceName string `json:"source_name"`
}

func newInstance(recorder metrics.Recorder) (*graphrag.GraphRAG, error) {
	embedder, err := pipeline.NewEmbedder(modelName, "onnx/model.onnx")
	if err != nil {
		return nil, helper.NewError("load embedding model", err)
	}

	g, err := graphrag.NewInMemoryGraphRAG(embedder, graphrag.Config{Metrics: recorder})
	if err != nil {
		return nil, err
	}

	if graphPath != "" {
		if err := loadGraph(g, graphPath); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func loadGraph(g *graphrag.GraphRAG, path string) error {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return helper.NewError("read graph file", err)
	}
	var file graphFile
	if err := json.Unmarshal(encoded, &file); err != nil {
		return helper.NewError("decode graph file", err)
	}

	for _, entity := range file.Entities {
		if err := g.AddEntity(entity); err != nil {
			return helper.NewError(fmt.Sprintf("add entity %s", entity.Name), err)
		}
	}
	for _, relation := range file.Relations {
		if err := g.AddRelation(relation); err != nil {
			return helper.NewError(fmt.Sprintf("add relation %s -> %s", relation.Source, relation.Target), err)
		}
	}
	return nil
}

func newIngestCommand() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "ingest <documents.json>",
		Short: "Chunk and embed documents, then write a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := os.ReadFile(args[0])
			if err != nil {
				return helper.NewError("read documents file", err)
			}
			var files []documentFile
			if err := json.Unmarshal(encoded, &files); err != nil {
				return helper.NewError("decode documents file", err)
			}

			g, err := newInstance(nil)
			if err != nil {
				return err
			}
			defer g.Close()

			docs := make([]vectorstore.Document, 0, len(files))
			for _, file := range files {
				docs = append(docs, vectorstore.Document{
					Text:       file.Text,
					Category:   file.Category,
					SourceName: file.SourceName,
				})
			}

			ctx := cmd.Context()
			processed, err := g.IngestDocuments(ctx, docs)
			if err != nil {
				return err
			}
			if err := g.GenerateEmbeddings(ctx, batchSize); err != nil {
				return err
			}
			if err := g.SaveSnapshot(snapshotPath); err != nil {
				return err
			}

			fmt.Printf("Ingested %d documents into %s\n", processed, snapshotPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 32, "embedding batch size")
	return cmd
}

func newSearchCommand() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid search against the snapshot and graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newInstance(nil)
			if err != nil {
				return err
			}
			defer g.Close()

			if err := g.LoadSnapshot(snapshotPath); err != nil {
				return err
			}

			result := g.HybridSearch(cmd.Context(), args[0], topK)
			fmt.Printf("Strategy: %s (fusion: %s, score: %.3f, took %s)\n",
				result.Strategy, result.FusionMethod, result.FinalScore, result.Elapsed.Round(time.Millisecond))
			fmt.Printf("\n%s\n", result.FusedContext)
			return nil
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 5, "number of semantic results to fuse")
	return cmd
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print vector store and graph statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newInstance(nil)
			if err != nil {
				return err
			}
			defer g.Close()

			if err := g.LoadSnapshot(snapshotPath); err != nil {
				return err
			}

			stats, err := g.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return helper.NewError("encode statistics", err)
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
}

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve hybrid search over HTTP with Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := prometheus.NewRegistry()
			g, err := newInstance(metrics.NewPrometheus(registry))
			if err != nil {
				return err
			}
			defer g.Close()

			if err := g.LoadSnapshot(snapshotPath); err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
				query := r.URL.Query().Get("q")
				if query == "" {
					http.Error(w, "missing query parameter q", http.StatusBadRequest)
					return
				}
				result := g.HybridSearch(r.Context(), query, 5)
				w.Header().Set("Content-Type", "application/json")
				if err := json.NewEncoder(w).Encode(result); err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
				}
			})

			fmt.Printf("Listening on %s\n", addr)
			server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			return server.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
