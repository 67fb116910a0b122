// Package processor flattens a Code Graph into renderable elements,
// streamed in bounded batches.
//
// The run is an explicit state machine: Idle → Validating → Transforming →
// Streaming → Completed, with Failed reachable from validation (malformed
// input) or from budget exhaustion that degraded mode cannot absorb. Batches
// go out on an unbuffered channel, so a consumer that stops pulling pauses
// the processor instead of growing a buffer.
package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeatlas/codeatlas/internal/types"
)

// Stage names for progress events.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageValidating   Stage = "validating"
	StageTransforming Stage = "transforming"
	StageStreaming    Stage = "streaming"
	StageCompleted    Stage = "completed"
	StageFailed       Stage = "failed"
)

// EventType discriminates ProcessingEvents.
type EventType string

const (
	EventProgress  EventType = "progress"
	EventBatch     EventType = "batch"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

// Event is one entry of the ordered processing stream.
type Event struct {
	Type     EventType            `json:"type"`
	Stage    Stage                `json:"stage,omitempty"`
	Percent  int                  `json:"percent,omitempty"`
	Elements []types.GraphElement `json:"elements,omitempty"`
	Summary  *Summary             `json:"summary,omitempty"`
	Reason   string               `json:"reason,omitempty"`
}

// Summary accompanies the Completed event.
type Summary struct {
	Nodes          int           `json:"nodes"`
	Edges          int           `json:"edges"`
	Batches        int           `json:"batches"`
	Degraded       bool          `json:"degraded"`
	DegradedReason string        `json:"degraded_reason,omitempty"`
	Elapsed        time.Duration `json:"elapsed"`
}

// Budget bounds a processing run.
type Budget struct {
	ChunkSize    int           // max elements per batch
	MaxNodes     int           // node-count ceiling before degraded mode
	DepthCeiling int           // degraded mode: functions at or beyond this depth are summarized; root = depth 1
	Timeout      time.Duration // overall wall-clock budget; 0 disables
}

// DefaultBudget returns the default processing budget.
func DefaultBudget() Budget {
	return Budget{
		ChunkSize:    1000,
		MaxNodes:     10000,
		DepthCeiling: 3,
		Timeout:      30 * time.Second,
	}
}

func (b Budget) withDefaults() Budget {
	if b.ChunkSize <= 0 {
		b.ChunkSize = 1000
	}
	if b.MaxNodes <= 0 {
		b.MaxNodes = 10000
	}
	if b.DepthCeiling <= 0 {
		b.DepthCeiling = 3
	}
	return b
}

// Process transforms graph into a stream of events. The returned channel
// closes when the run completes, fails, or the context is cancelled.
// Cancellation is checked between batches, never mid-batch; everything
// emitted before a cancel is a valid prefix of the full run.
func Process(ctx context.Context, graph *types.CodeGraph, budget Budget) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		run(ctx, graph, budget.withDefaults(), out)
	}()
	return out
}

// run drives the state machine on the producer goroutine.
func run(ctx context.Context, graph *types.CodeGraph, budget Budget, out chan<- Event) {
	start := time.Now()

	emit := func(ev Event) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !emit(Event{Type: EventProgress, Stage: StageValidating, Percent: 0}) {
		return
	}

	totalNodes, totalEdges, err := validate(graph)
	if err != nil {
		emit(Event{Type: EventFailed, Stage: StageFailed, Reason: err.Error()})
		return
	}
	total := totalNodes + totalEdges

	st := &runState{
		budget:   budget,
		start:    start,
		total:    total,
		out:      out,
		ctx:      ctx,
		degraded: false,
	}
	if totalNodes > budget.MaxNodes {
		st.degrade(fmt.Sprintf("node count %d exceeds ceiling %d", totalNodes, budget.MaxNodes))
	}

	if !emit(Event{Type: EventProgress, Stage: StageTransforming, Percent: 0}) {
		return
	}

	if ok := st.transform(graph.Nodes); !ok {
		if st.failed != "" {
			emit(Event{Type: EventFailed, Stage: StageFailed, Reason: st.failed})
		}
		return
	}
	if ok := st.flush(); !ok {
		if st.failed != "" {
			emit(Event{Type: EventFailed, Stage: StageFailed, Reason: st.failed})
		}
		return
	}

	emit(Event{Type: EventCompleted, Stage: StageCompleted, Summary: &Summary{
		Nodes:          st.nodes,
		Edges:          st.edges,
		Batches:        st.batches,
		Degraded:       st.degraded,
		DegradedReason: st.degradedReason,
		Elapsed:        time.Since(start),
	}})
}

// runState carries the mutable state of one processing run.
type runState struct {
	budget Budget
	start  time.Time
	total  int
	out    chan<- Event
	ctx    context.Context

	batch          []types.GraphElement
	nodes          int
	edges          int
	batches        int
	degraded       bool
	degradedReason string
	failed         string
}

func (st *runState) degrade(reason string) {
	if !st.degraded {
		st.degraded = true
		st.degradedReason = reason
	}
}

// add queues one element, flushing when the chunk fills.
func (st *runState) add(el types.GraphElement) bool {
	st.batch = append(st.batch, el)
	if el.Kind == types.ElementEdge {
		st.edges++
	} else {
		st.nodes++
	}
	if len(st.batch) >= st.budget.ChunkSize {
		return st.flush()
	}
	return true
}

// flush emits the pending batch plus a progress event, then re-checks the
// wall-clock budget. Exceeding it once switches to degraded mode; exceeding
// twice the budget while already degraded fails the run.
func (st *runState) flush() bool {
	if len(st.batch) == 0 {
		return true
	}
	elements := st.batch
	st.batch = nil
	st.batches++

	select {
	case st.out <- Event{Type: EventBatch, Stage: StageStreaming, Elements: elements}:
	case <-st.ctx.Done():
		return false
	}

	percent := 0
	if st.total > 0 {
		percent = (st.nodes + st.edges) * 100 / st.total
		if percent > 100 {
			percent = 100
		}
	}
	select {
	case st.out <- Event{Type: EventProgress, Stage: StageStreaming, Percent: percent}:
	case <-st.ctx.Done():
		return false
	}

	if st.budget.Timeout > 0 {
		elapsed := time.Since(st.start)
		if st.degraded && elapsed > 2*st.budget.Timeout {
			st.failed = fmt.Sprintf("budget exhausted: %s elapsed in degraded mode", elapsed.Round(time.Millisecond))
			return false
		}
		if elapsed > st.budget.Timeout {
			st.degrade(fmt.Sprintf("wall-clock budget %s exceeded", st.budget.Timeout))
		}
	}
	return true
}

// transform flattens the tree depth-first. In degraded mode, function
// subtrees at or beyond the depth ceiling collapse into one summary node on
// their parent, whatever kind that parent is. Depth is counted from 1 at
// the root so the ceiling reads as "structural levels kept".
func (st *runState) transform(root *types.CodeGraphNode) bool {
	return st.transformNode(root, "", "", 1)
}

func (st *runState) transformNode(node *types.CodeGraphNode, parentID, folder string, depth int) bool {
	if node.Kind == types.KindFolder {
		folder = node.SourcePath
	}
	id := elementID(node, parentID, folder)

	el := types.GraphElement{
		ID:       id,
		Kind:     types.ElementNode,
		ParentID: parentID,
		Name:     node.Name,
		NodeKind: node.Kind,
	}
	if node.Complexity != nil {
		el.Level = node.Complexity.Level
	}
	if !st.add(el) {
		return false
	}

	for _, call := range node.Calls {
		if !st.add(types.GraphElement{
			ID:     fmt.Sprintf("e:%s->%s:%s", id, targetID(call.Target), call.Label),
			Kind:   types.ElementEdge,
			Source: id,
			Target: targetID(call.Target),
			Label:  call.Label,
		}) {
			return false
		}
	}

	omitted := 0
	for _, child := range node.Children {
		if st.degraded && child.Kind == types.KindFunction && depth+1 >= st.budget.DepthCeiling {
			omitted += countFunctions(child)
			continue
		}
		if !st.transformNode(child, id, folder, depth+1) {
			return false
		}
	}
	if omitted > 0 {
		if !st.add(types.GraphElement{
			ID:       id + "#omitted",
			Kind:     types.ElementNode,
			ParentID: id,
			Name:     fmt.Sprintf("%d functions omitted", omitted),
			NodeKind: types.KindFunction,
		}) {
			return false
		}
	}
	return true
}

// elementID builds a stable ID from the node's position: folders by path,
// files under their folder, classes with '@', functions chained with '#'
// then '.'. The distinct class separator keeps a class and a module-level
// function sharing a name (legal in Python and JS) from colliding.
func elementID(node *types.CodeGraphNode, parentID, folder string) string {
	switch node.Kind {
	case types.KindFolder:
		return "n:" + node.SourcePath
	case types.KindFile:
		return "n:" + folder + "/" + node.Name
	case types.KindClass:
		return parentID + "@" + node.Name
	default: // function
		// First '#' starts the function chain (off a file or class ID);
		// nested functions extend it with '.'.
		if strings.Contains(parentID, "#") {
			return parentID + "." + node.Name
		}
		return parentID + "#" + node.Name
	}
}

// targetID mirrors elementID for a resolved call target tuple.
func targetID(t types.CallTarget) string {
	base := "n:" + t.Folder() + "/" + t.File()
	if t.Class() != "" {
		return base + "@" + t.Class() + "#" + t.Function()
	}
	return base + "#" + t.Function()
}

func countFunctions(node *types.CodeGraphNode) int {
	count := 0
	node.Walk(func(n *types.CodeGraphNode, _ int) {
		if n.Kind == types.KindFunction {
			count++
		}
	})
	return count
}

