package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codeatlas/codeatlas/internal/types"
)

// Node types whose subtrees belong to a nested function, per language.
// Call sites inside them are attributed to the nested function node, not to
// the enclosing one.
var callBoundaries = map[string]map[string]bool{
	"go": {
		"func_literal": true,
	},
	"python": {
		"function_definition": true,
		"lambda":              true,
	},
	"javascript": jsCallBoundaries,
	"typescript": jsCallBoundaries,
	"tsx":        jsCallBoundaries,
}

var jsCallBoundaries = map[string]bool{
	"function_declaration": true,
	"function_expression":  true,
	"arrow_function":       true,
	"method_definition":    true,
}

// collectCallSites walks a function body and returns every call expression
// in source order, with the callee name and receiver (for attribute calls).
func collectCallSites(body *sitter.Node, code []byte, language string) []types.CallSite {
	boundaries := callBoundaries[language]
	var sites []types.CallSite

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if boundaries[child.Type()] {
				continue
			}
			if site, ok := extractCallSite(child, code, language); ok {
				sites = append(sites, site)
			}
			walk(child)
		}
	}
	walk(body)
	return sites
}

func extractCallSite(n *sitter.Node, code []byte, language string) (types.CallSite, bool) {
	switch language {
	case "go", "javascript", "typescript", "tsx":
		if n.Type() != "call_expression" {
			return types.CallSite{}, false
		}
	case "python":
		if n.Type() != "call" {
			return types.CallSite{}, false
		}
	default:
		return types.CallSite{}, false
	}

	fn := n.ChildByFieldName("function")
	if fn == nil {
		return types.CallSite{}, false
	}

	switch fn.Type() {
	case "identifier":
		return types.CallSite{Name: fn.Content(code)}, true

	case "attribute": // python obj.method(...)
		obj := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")
		if attr == nil {
			return types.CallSite{}, false
		}
		site := types.CallSite{Name: attr.Content(code), IsAttribute: true}
		if obj != nil && obj.Type() == "identifier" {
			site.Receiver = obj.Content(code)
		}
		return site, true

	case "selector_expression": // go pkg.Fn(...) / recv.Method(...)
		operand := fn.ChildByFieldName("operand")
		field := fn.ChildByFieldName("field")
		if field == nil {
			return types.CallSite{}, false
		}
		site := types.CallSite{Name: field.Content(code), IsAttribute: true}
		if operand != nil && operand.Type() == "identifier" {
			site.Receiver = operand.Content(code)
		}
		return site, true

	case "member_expression": // js obj.method(...)
		obj := fn.ChildByFieldName("object")
		prop := fn.ChildByFieldName("property")
		if prop == nil {
			return types.CallSite{}, false
		}
		site := types.CallSite{Name: prop.Content(code), IsAttribute: true}
		if obj != nil && obj.Type() == "identifier" {
			site.Receiver = obj.Content(code)
		}
		return site, true
	}

	return types.CallSite{}, false
}
