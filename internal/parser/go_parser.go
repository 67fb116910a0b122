package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codeatlas/codeatlas/internal/types"
)

// parseGo extracts type declarations and functions from Go source. Struct
// and interface types become class nodes; methods attach to the class node
// matching their receiver type when one exists in the same file.
func parseGo(root *sitter.Node, code []byte, result *FileResult) {
	classByName := make(map[string]*types.CodeGraphNode)

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "type_declaration":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() != "type_spec" {
					continue
				}
				cls := extractGoTypeSpec(spec, code)
				if cls == nil {
					continue
				}
				result.Node.Children = append(result.Node.Children, cls)
				classByName[cls.Name] = cls
			}

		case "function_declaration":
			name := ""
			if id := child.ChildByFieldName("name"); id != nil {
				name = id.Content(code)
			}
			body := child.ChildByFieldName("body")
			result.Node.Children = append(result.Node.Children, newFunctionNode(name, child, body, code, "go", result))

		case "method_declaration":
			name := ""
			if id := child.ChildByFieldName("name"); id != nil {
				name = id.Content(code)
			}
			body := child.ChildByFieldName("body")
			fn := newFunctionNode(name, child, body, code, "go", result)

			if cls, ok := classByName[goReceiverType(child, code)]; ok {
				cls.Children = append(cls.Children, fn)
			} else {
				result.Node.Children = append(result.Node.Children, fn)
			}
		}
	}
}

// extractGoTypeSpec returns a class node for struct and interface types,
// nil for aliases and other type forms.
func extractGoTypeSpec(spec *sitter.Node, code []byte) *types.CodeGraphNode {
	name := ""
	isClasslike := false
	for i := 0; i < int(spec.ChildCount()); i++ {
		child := spec.Child(i)
		switch child.Type() {
		case "type_identifier":
			if name == "" {
				name = child.Content(code)
			}
		case "struct_type", "interface_type":
			isClasslike = true
		}
	}
	if name == "" || !isClasslike {
		return nil
	}
	return &types.CodeGraphNode{
		Name:      name,
		Kind:      types.KindClass,
		StartLine: int(spec.StartPoint().Row) + 1,
	}
}

// goReceiverType returns the bare receiver type name of a method
// declaration, with any pointer star stripped.
func goReceiverType(method *sitter.Node, code []byte) string {
	recv := method.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := 0; i < int(recv.ChildCount()); i++ {
		child := recv.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		if t := child.ChildByFieldName("type"); t != nil {
			return strings.TrimPrefix(t.Content(code), "*")
		}
	}
	return ""
}
