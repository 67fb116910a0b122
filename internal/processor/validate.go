package processor

import (
	"fmt"

	"github.com/codeatlas/codeatlas/internal/types"
)

// allowedChildren constrains the containment tree's shape: folders hold
// folders and files, files hold classes and functions, classes and
// functions hold functions.
var allowedChildren = map[types.NodeKind]map[types.NodeKind]bool{
	types.KindFolder:   {types.KindFolder: true, types.KindFile: true},
	types.KindFile:     {types.KindClass: true, types.KindFunction: true},
	types.KindClass:    {types.KindFunction: true},
	types.KindFunction: {types.KindFunction: true},
}

// validate checks the graph's structural shape before any transformation.
// The graph may have crossed a process or serialization boundary, so none
// of the construction-time invariants are assumed. Returns the node and
// edge counts on success.
func validate(graph *types.CodeGraph) (nodes, edges int, err error) {
	if graph == nil || graph.Nodes == nil {
		return 0, 0, fmt.Errorf("graph has no root node")
	}
	if graph.Nodes.Kind != types.KindFolder {
		return 0, 0, fmt.Errorf("root node kind %q, want folder", graph.Nodes.Kind)
	}

	err = validateNode(graph.Nodes, &nodes, &edges)
	if err != nil {
		return 0, 0, err
	}
	return nodes, edges, nil
}

func validateNode(node *types.CodeGraphNode, nodes, edges *int) error {
	if !node.Kind.Valid() {
		return fmt.Errorf("node %q: unrecognized kind %q", node.Name, node.Kind)
	}
	if node.Name == "" {
		return fmt.Errorf("node of kind %q has empty name", node.Kind)
	}
	*nodes++

	if node.Kind != types.KindFunction {
		if len(node.Calls) > 0 {
			return fmt.Errorf("node %q: calls on non-function kind %q", node.Name, node.Kind)
		}
		if node.Complexity != nil {
			return fmt.Errorf("node %q: complexity on non-function kind %q", node.Name, node.Kind)
		}
	}

	for _, call := range node.Calls {
		if call.Target.Function() == "" {
			return fmt.Errorf("node %q: call target with empty function component", node.Name)
		}
		if call.Target.File() == "" || call.Target.Folder() == "" {
			return fmt.Errorf("node %q: call target with empty location components", node.Name)
		}
		*edges++
	}

	allowed := allowedChildren[node.Kind]
	for _, child := range node.Children {
		if !child.Kind.Valid() {
			return fmt.Errorf("node %q: child with unrecognized kind %q", node.Name, child.Kind)
		}
		if !allowed[child.Kind] {
			return fmt.Errorf("node %q: %q cannot contain %q", node.Name, node.Kind, child.Kind)
		}
		if err := validateNode(child, nodes, edges); err != nil {
			return err
		}
	}
	return nil
}
