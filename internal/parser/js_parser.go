package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codeatlas/codeatlas/internal/types"
)

// parseJS extracts classes and functions from JavaScript/TypeScript source,
// including arrow functions bound with const/let and declarations wrapped in
// export statements.
func parseJS(root *sitter.Node, code []byte, result *FileResult) {
	for i := 0; i < int(root.ChildCount()); i++ {
		extractJSStatement(root.Child(i), code, result, result.Node)
	}
}

func extractJSStatement(stmt *sitter.Node, code []byte, result *FileResult, parent *types.CodeGraphNode) {
	switch stmt.Type() {
	case "export_statement":
		for i := 0; i < int(stmt.ChildCount()); i++ {
			extractJSStatement(stmt.Child(i), code, result, parent)
		}

	case "class_declaration":
		parent.Children = append(parent.Children, extractJSClass(stmt, code, result))

	case "function_declaration":
		name := ""
		if id := stmt.ChildByFieldName("name"); id != nil {
			name = id.Content(code)
		}
		body := stmt.ChildByFieldName("body")
		parent.Children = append(parent.Children, newFunctionNode(name, stmt, body, code, "javascript", result))

	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(stmt.ChildCount()); i++ {
			decl := stmt.Child(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			value := decl.ChildByFieldName("value")
			if value == nil {
				continue
			}
			if value.Type() != "arrow_function" && value.Type() != "function_expression" {
				continue
			}
			name := ""
			if id := decl.ChildByFieldName("name"); id != nil {
				name = id.Content(code)
			}
			body := value.ChildByFieldName("body")
			parent.Children = append(parent.Children, newFunctionNode(name, decl, body, code, "javascript", result))
		}
	}
}

func extractJSClass(node *sitter.Node, code []byte, result *FileResult) *types.CodeGraphNode {
	cls := &types.CodeGraphNode{
		Kind:      types.KindClass,
		StartLine: int(node.StartPoint().Row) + 1,
	}
	if id := node.ChildByFieldName("name"); id != nil {
		cls.Name = id.Content(code)
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		if member.Type() != "method_definition" {
			continue
		}
		name := ""
		if id := member.ChildByFieldName("name"); id != nil {
			name = id.Content(code)
		}
		fnBody := member.ChildByFieldName("body")
		cls.Children = append(cls.Children, newFunctionNode(name, member, fnBody, code, "javascript", result))
	}
	return cls
}
