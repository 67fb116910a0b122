package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/internal/config"
)

var version = "0.1.0-dev"

func main() {
	// .env first so CODEATLAS_* overrides are visible to the config load.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Printf("warning: config load: %v", err)
		cfg = &config.Config{}
	}

	rootCmd := buildRootCmd(cfg)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// buildRootCmd creates the root cobra command with all subcommands.
func buildRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codeatlas",
		Short: "CodeAtlas — interactive code structure and call-graph analyzer",
		Long: `CodeAtlas statically analyzes a source project into a hierarchical
code graph (folders, files, classes, functions) with per-function complexity
scores and resolved call relationships, then streams the graph as bounded
batches of renderable elements for interactive visualization.`,
		Version: version,
	}

	rootCmd.AddCommand(buildAnalyzeCmd(cfg))
	rootCmd.AddCommand(buildProcessCmd(cfg))
	rootCmd.AddCommand(buildCompletionCmd())

	return rootCmd
}
