package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeatlas/codeatlas/internal/config"
	"github.com/codeatlas/codeatlas/internal/processor"
	"github.com/codeatlas/codeatlas/internal/types"
)

func buildProcessCmd(cfg *config.Config) *cobra.Command {
	var (
		chunkSize    int
		maxNodes     int
		depthCeiling int
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "process <graph.json>",
		Short: "Stream a code graph as batched render elements",
		Long: `Read a code graph produced by 'codeatlas analyze' (use "-" for stdin)
and stream it as newline-delimited JSON events: progress, batches of flattened
nodes and edges, and a final completed (or failed) event. Very large graphs
degrade gracefully instead of failing: detail beyond the depth ceiling is
replaced with summary nodes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := readGraph(args[0])
			if err != nil {
				return err
			}

			budget := processor.DefaultBudget()
			if cfg.ChunkSize > 0 {
				budget.ChunkSize = cfg.ChunkSize
			}
			if cfg.MaxNodes > 0 {
				budget.MaxNodes = cfg.MaxNodes
			}
			if cfg.DepthCeiling > 0 {
				budget.DepthCeiling = cfg.DepthCeiling
			}
			if cfg.Timeout() > 0 {
				budget.Timeout = cfg.Timeout()
			}
			if chunkSize > 0 {
				budget.ChunkSize = chunkSize
			}
			if maxNodes > 0 {
				budget.MaxNodes = maxNodes
			}
			if depthCeiling > 0 {
				budget.DepthCeiling = depthCeiling
			}
			if timeout > 0 {
				budget.Timeout = timeout
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			enc := json.NewEncoder(os.Stdout)
			for ev := range processor.Process(ctx, graph, budget) {
				if err := enc.Encode(ev); err != nil {
					return fmt.Errorf("write event: %w", err)
				}
				if ev.Type == processor.EventFailed {
					return fmt.Errorf("processing failed: %s", ev.Reason)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Max elements per batch (default 1000)")
	cmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "Node-count ceiling before degraded mode (default 10000)")
	cmd.Flags().IntVar(&depthCeiling, "depth-ceiling", 0, "Degraded mode: summarize detail below this depth (default 3)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Wall-clock budget (default 30s)")
	return cmd
}

func readGraph(path string) (*types.CodeGraph, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open graph: %w", err)
		}
		defer f.Close()
		r = f
	}

	var graph types.CodeGraph
	if err := json.NewDecoder(r).Decode(&graph); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return &graph, nil
}
