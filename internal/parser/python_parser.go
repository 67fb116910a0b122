package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codeatlas/codeatlas/internal/types"
)

// parsePython extracts classes and functions from a Python module in
// declaration order.
func parsePython(root *sitter.Node, code []byte, result *FileResult) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "class_definition":
			result.Node.Children = append(result.Node.Children, extractPythonClass(child, code, result))
		case "function_definition":
			result.Node.Children = append(result.Node.Children, extractPythonFunction(child, code, result))
		case "decorated_definition":
			if inner := decoratedPythonInner(child); inner != nil {
				if inner.Type() == "class_definition" {
					result.Node.Children = append(result.Node.Children, extractPythonClass(inner, code, result))
				} else {
					result.Node.Children = append(result.Node.Children, extractPythonFunction(inner, code, result))
				}
			}
		}
	}
}

// decoratedPythonInner unwraps a decorated_definition to the class or
// function it decorates.
func decoratedPythonInner(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "class_definition" || child.Type() == "function_definition" {
			return child
		}
	}
	return nil
}

func extractPythonClass(node *sitter.Node, code []byte, result *FileResult) *types.CodeGraphNode {
	cls := &types.CodeGraphNode{
		Kind:      types.KindClass,
		StartLine: int(node.StartPoint().Row) + 1,
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if cls.Name == "" {
				cls.Name = child.Content(code)
			}
		case "block":
			for j := 0; j < int(child.ChildCount()); j++ {
				stmt := child.Child(j)
				switch stmt.Type() {
				case "function_definition":
					cls.Children = append(cls.Children, extractPythonFunction(stmt, code, result))
				case "decorated_definition":
					if inner := decoratedPythonInner(stmt); inner != nil && inner.Type() == "function_definition" {
						cls.Children = append(cls.Children, extractPythonFunction(inner, code, result))
					}
				}
			}
		}
	}
	return cls
}

func extractPythonFunction(node *sitter.Node, code []byte, result *FileResult) *types.CodeGraphNode {
	name := ""
	var body *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if name == "" {
				name = child.Content(code)
			}
		case "block":
			body = child
		}
	}

	fn := newFunctionNode(name, node, body, code, "python", result)

	// Nested defs become children of the enclosing function.
	if body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			stmt := body.Child(i)
			if stmt.Type() == "function_definition" {
				fn.Children = append(fn.Children, extractPythonFunction(stmt, code, result))
			}
		}
	}
	return fn
}
