package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/internal/analyzer"
	"github.com/codeatlas/codeatlas/internal/cache"
	"github.com/codeatlas/codeatlas/internal/config"
	"github.com/codeatlas/codeatlas/internal/types"
	"github.com/codeatlas/codeatlas/internal/util"
	"github.com/codeatlas/codeatlas/internal/walker"
)

func buildAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var (
		singleFile bool
		output     string
		force      bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <path>",
		Short: "Analyze a project (or single file) into a code graph",
		Long: `Walk a project tree, parse every included source file, and emit the
resulting code graph as JSON: {"nodes": ..., "warnings": [...], "errors": [...]}.
With --file, analyze just one source file instead of a whole project.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			opts := analyzerOptions(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a := analyzer.New(opts)
			start := time.Now()

			var graph *types.CodeGraph
			var err error

			if singleFile {
				graph, err = a.AnalyzeFile(ctx, path)
			} else {
				graph, err = analyzeProjectCached(ctx, a, cfg, opts.Rules, path, force, noCache)
			}
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			fmt.Fprintf(os.Stderr, "analyzed %s in %s (%d nodes, %d warnings)\n",
				path, time.Since(start).Round(time.Millisecond), graph.Nodes.CountNodes(), len(graph.Warnings))

			return writeGraph(graph, output)
		},
	}

	cmd.Flags().BoolVar(&singleFile, "file", false, "Analyze a single file instead of a project tree")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the graph to a file instead of stdout")
	cmd.Flags().BoolVar(&force, "force", false, "Ignore any cached result")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip reading and writing the cache")
	return cmd
}

// analyzeProjectCached consults the on-disk cache keyed by project name and
// content hash before running the analyzer, and stores fresh results.
func analyzeProjectCached(ctx context.Context, a *analyzer.Analyzer, cfg *config.Config, rules walker.Rules, path string, force, noCache bool) (*types.CodeGraph, error) {
	if noCache {
		return a.AnalyzeProject(ctx, path)
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = config.DefaultCacheDir()
	}
	gc := cache.New(cacheDir)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	projectName := filepath.Base(absPath)

	hash, hashErr := projectHash(path, rules)
	if hashErr == nil && !force && gc.Exists(projectName, hash) {
		if graph, err := gc.Load(projectName, hash); err == nil {
			fmt.Fprintln(os.Stderr, "loaded graph from cache (use --force to re-analyze)")
			return graph, nil
		}
	}

	graph, err := a.AnalyzeProject(ctx, path)
	if err != nil {
		return nil, err
	}

	if hashErr == nil {
		if err := gc.Save(projectName, hash, graph); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache save failed: %v\n", err)
		}
	}
	return graph, nil
}

// projectHash hashes the content of every included file in walk order.
func projectHash(path string, rules walker.Rules) (string, error) {
	files, err := walker.Walk(path, rules)
	if err != nil {
		return "", err
	}
	chunks := make([][]byte, 0, 2*len(files))
	for _, f := range files {
		content, err := os.ReadFile(f.Path)
		if err != nil {
			return "", err
		}
		chunks = append(chunks, []byte(f.RelPath), content)
	}
	return util.ContentHash(chunks...), nil
}

func analyzerOptions(cfg *config.Config) analyzer.Options {
	opts := analyzer.DefaultOptions()
	if len(cfg.ExcludeDirs) > 0 {
		opts.Rules.ExcludeDirs = cfg.ExcludeDirs
	}
	if len(cfg.ExcludeGlobs) > 0 {
		opts.Rules.ExcludeGlobs = cfg.ExcludeGlobs
	}
	if cfg.MaxFileSize > 0 {
		opts.Rules.MaxFileSize = cfg.MaxFileSize
	}
	if cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}
	return opts
}

func writeGraph(graph *types.CodeGraph, output string) error {
	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(graph)
}
