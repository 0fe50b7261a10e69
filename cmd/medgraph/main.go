package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	modelName    string
	snapshotPath string
	graphPath    string
)

func main() {
	root := &cobra.Command{
		Use:   "medgraph",
		Short: "Hybrid medical retrieval over documents and a knowledge graph",
		Long: "medgraph combines semantic search over embedded document chunks with\n" +
			"a medical knowledge graph and fuses both into one retrieval context.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&modelName, "model",
		"sentence-transformers/all-MiniLM-L6-v2", "sentence transformer model for embeddings")
	root.PersistentFlags().StringVar(&snapshotPath, "snapshot",
		"medgraph_snapshot.json", "path of the vector store snapshot")
	root.PersistentFlags().StringVar(&graphPath, "graph",
		"", "path of the knowledge graph JSON file")

	root.AddCommand(newIngestCommand())
	root.AddCommand(newSearchCommand())
	root.AddCommand(newStatsCommand())
	root.AddCommand(newServeCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
