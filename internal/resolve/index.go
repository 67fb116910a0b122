// Package resolve maps call sites collected during parsing to fully
// qualified targets using a project-wide symbol index.
//
// The index follows a build-then-freeze pattern: per-file contributions are
// merged in file-system traversal order while single-threaded, then the
// index freezes and resolution workers read it concurrently without locking.
package resolve

import (
	"github.com/codeatlas/codeatlas/internal/types"
)

// Ref locates one function declaration in the project.
type Ref struct {
	Folder   string
	File     string
	Class    string // "" for module-level functions
	Function string
	Seq      int // global first-seen order; ambiguity tie-break
}

// Target returns the 4-tuple call target for this declaration.
func (r Ref) Target() types.CallTarget {
	return types.CallTarget{r.Folder, r.File, r.Class, r.Function}
}

// Index maps unqualified function names to every known declaration.
// Writes happen single-threaded before Freeze; reads after Freeze are safe
// from any number of goroutines.
type Index struct {
	byName map[string][]Ref
	seq    int
	frozen bool
}

// NewIndex creates an empty, unfrozen index.
func NewIndex() *Index {
	return &Index{byName: make(map[string][]Ref)}
}

// AddFile registers every function in the file subtree, walking classes for
// their methods and functions for their nested functions. Call order across
// files fixes the tie-break sequence, so callers must add files in traversal
// order.
func (ix *Index) AddFile(folder string, file *types.CodeGraphNode) {
	if ix.frozen {
		panic("resolve: AddFile after Freeze")
	}
	fileName := file.Name
	for _, child := range file.Children {
		switch child.Kind {
		case types.KindClass:
			for _, member := range child.Children {
				if member.Kind == types.KindFunction {
					ix.addFunction(folder, fileName, child.Name, member)
				}
			}
		case types.KindFunction:
			ix.addFunction(folder, fileName, "", child)
		}
	}
}

func (ix *Index) addFunction(folder, fileName, class string, fn *types.CodeGraphNode) {
	if fn.Name == "" {
		return
	}
	ix.byName[fn.Name] = append(ix.byName[fn.Name], Ref{
		Folder:   folder,
		File:     fileName,
		Class:    class,
		Function: fn.Name,
		Seq:      ix.seq,
	})
	ix.seq++

	// Nested functions are addressable by name too; their class slot stays
	// that of the enclosing scope.
	for _, nested := range fn.Children {
		if nested.Kind == types.KindFunction {
			ix.addFunction(folder, fileName, class, nested)
		}
	}
}

// Freeze marks the index read-only.
func (ix *Index) Freeze() {
	ix.frozen = true
}

// Frozen reports whether the index has been frozen.
func (ix *Index) Frozen() bool {
	return ix.frozen
}

// Lookup returns all declarations of name in first-seen order.
func (ix *Index) Lookup(name string) []Ref {
	return ix.byName[name]
}

// Size returns the number of indexed declarations.
func (ix *Index) Size() int {
	return ix.seq
}
