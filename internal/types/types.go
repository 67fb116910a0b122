package types

import "encoding/json"

// NodeKind identifies which structural unit a CodeGraphNode represents.
type NodeKind string

const (
	KindFolder   NodeKind = "folder"
	KindFile     NodeKind = "file"
	KindClass    NodeKind = "class"
	KindFunction NodeKind = "function"
)

// Valid reports whether the kind is one of the four structural kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case KindFolder, KindFile, KindClass, KindFunction:
		return true
	}
	return false
}

// ComplexityLevel buckets a cyclomatic score for presentation.
type ComplexityLevel string

const (
	LevelLow    ComplexityLevel = "low"
	LevelMedium ComplexityLevel = "medium"
	LevelHigh   ComplexityLevel = "high"
)

// LevelForCyclomatic maps a cyclomatic score to its presentation level.
// Thresholds are fixed: 1-5 low, 6-10 medium, 11+ high.
func LevelForCyclomatic(cyclomatic int) ComplexityLevel {
	switch {
	case cyclomatic <= 5:
		return LevelLow
	case cyclomatic <= 10:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// ComplexityInfo holds the computed complexity metrics for one function body.
type ComplexityInfo struct {
	Cyclomatic int             `json:"cyclomatic"`
	Cognitive  int             `json:"cognitive"`
	Level      ComplexityLevel `json:"level"`
}

// DefaultComplexity is the safe substitute when a function body cannot be scored.
func DefaultComplexity() ComplexityInfo {
	return ComplexityInfo{Cyclomatic: 1, Cognitive: 0, Level: LevelLow}
}

// CallTarget is the fully qualified location of a resolved call:
// [folder, file, class-or-empty, function]. The class slot is "" for
// module-level functions; the other three slots are never empty.
type CallTarget [4]string

// Folder, File, Class, Function accessors for the four tuple slots.
func (t CallTarget) Folder() string   { return t[0] }
func (t CallTarget) File() string     { return t[1] }
func (t CallTarget) Class() string    { return t[2] }
func (t CallTarget) Function() string { return t[3] }

// CallRelationship is one resolved call edge layered over the containment tree.
type CallRelationship struct {
	Target CallTarget `json:"target"`
	Label  string     `json:"label"`
}

// CallSite is an unresolved call expression collected during parsing.
// It exists only between pass 1 (structure) and pass 2 (resolution) and is
// never serialized.
type CallSite struct {
	Name        string // callee identifier (method or function name)
	Receiver    string // receiver/object identifier for attribute calls, "" for plain calls
	IsAttribute bool   // true for obj.method(...)-shaped calls
}

// CodeGraphNode is one structural unit of the containment tree.
// Kind determines which fields are meaningful: SourcePath on folders and
// files, StartLine on classes and functions, Calls and Complexity on
// functions only.
type CodeGraphNode struct {
	Name       string             `json:"name"`
	Kind       NodeKind           `json:"kind"`
	Children   []*CodeGraphNode   `json:"children,omitempty"`
	Calls      []CallRelationship `json:"calls,omitempty"`
	Complexity *ComplexityInfo    `json:"complexity,omitempty"`
	SourcePath string             `json:"source_path,omitempty"`
	StartLine  int                `json:"start_line,omitempty"`

	// Sites carries collected call expressions from pass 1 to pass 2.
	// Cleared once resolution replaces them with Calls.
	Sites []CallSite `json:"-"`
}

// MarshalJSON keeps the calls field present (as []) on function nodes even
// when no calls were detected, and absent on every other kind; likewise
// children is always present on file nodes so a parse-failed file reads as
// an explicit empty list. Downstream consumers distinguish "empty" from
// "meaningless" by presence.
func (n *CodeGraphNode) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name       string              `json:"name"`
		Kind       NodeKind            `json:"kind"`
		Children   *[]*CodeGraphNode   `json:"children,omitempty"`
		Calls      *[]CallRelationship `json:"calls,omitempty"`
		Complexity *ComplexityInfo     `json:"complexity,omitempty"`
		SourcePath string              `json:"source_path,omitempty"`
		StartLine  int                 `json:"start_line,omitempty"`
	}
	w := wire{
		Name:       n.Name,
		Kind:       n.Kind,
		Complexity: n.Complexity,
		SourcePath: n.SourcePath,
		StartLine:  n.StartLine,
	}
	if n.Kind == KindFile || len(n.Children) > 0 {
		children := n.Children
		if children == nil {
			children = []*CodeGraphNode{}
		}
		w.Children = &children
	}
	if n.Kind == KindFunction {
		calls := n.Calls
		if calls == nil {
			calls = []CallRelationship{}
		}
		w.Calls = &calls
	}
	return json.Marshal(w)
}

// Walk visits the node and its subtree in depth-first declaration order.
// The visitor receives each node with its containment depth (root = 0).
func (n *CodeGraphNode) Walk(visit func(node *CodeGraphNode, depth int)) {
	n.walk(visit, 0)
}

func (n *CodeGraphNode) walk(visit func(*CodeGraphNode, int), depth int) {
	visit(n, depth)
	for _, child := range n.Children {
		child.walk(visit, depth+1)
	}
}

// CountNodes returns the number of nodes in the subtree, including n itself.
func (n *CodeGraphNode) CountNodes() int {
	count := 0
	n.Walk(func(*CodeGraphNode, int) { count++ })
	return count
}

// CodeGraph is the serializable result of one analysis run. The field names
// nodes/warnings/errors are load-bearing for external renderers; fields may
// be added but not renamed.
type CodeGraph struct {
	Nodes    *CodeGraphNode `json:"nodes"`
	Warnings []string       `json:"warnings"`
	Errors   []string       `json:"errors"`
}

// ElementKind tags a flattened GraphElement as a node or an edge.
type ElementKind string

const (
	ElementNode ElementKind = "node"
	ElementEdge ElementKind = "edge"
)

// GraphElement is one flattened renderable record produced by the processor.
// Payload is deliberately minimal: full source paths and numeric complexity
// scores stay out of this representation to keep per-element size small.
type GraphElement struct {
	ID       string          `json:"id"`
	Kind     ElementKind     `json:"kind"`
	ParentID string          `json:"parent_id,omitempty"`
	Name     string          `json:"name,omitempty"`
	NodeKind NodeKind        `json:"node_kind,omitempty"`
	Level    ComplexityLevel `json:"level,omitempty"`
	Source   string          `json:"source,omitempty"`
	Target   string          `json:"target,omitempty"`
	Label    string          `json:"label,omitempty"`
}
