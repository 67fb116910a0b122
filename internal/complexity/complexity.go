// Package complexity scores a single function body's control flow.
//
// Cyclomatic complexity is 1 plus the number of decision points: conditional
// branches, loops, exception handlers, pattern-match arms, and boolean
// short-circuit operators. Cognitive complexity uses the same base but each
// structural branch nested inside N other branches contributes 1+N instead of
// a flat 1; short-circuit operators always contribute a flat 1 and do not
// deepen nesting.
package complexity

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codeatlas/codeatlas/internal/types"
)

// rules describes which syntax-tree node types count as decision points for
// one language grammar.
type rules struct {
	branches      map[string]bool // structural branches; increment nesting
	boundaries    map[string]bool // nested function definitions; not descended into
	shortCircuit  map[string]bool // operator token types inside a binary expression
	binaryExprTyp string          // node type holding short-circuit operators, "" if dedicated node
	booleanOpTyp  string          // dedicated boolean-operator node type, "" if none
}

var languageRules = map[string]*rules{
	"go": {
		branches: map[string]bool{
			"if_statement":       true,
			"for_statement":      true,
			"expression_case":    true,
			"type_case":          true,
			"communication_case": true,
		},
		boundaries: map[string]bool{
			"func_literal": true,
		},
		binaryExprTyp: "binary_expression",
		shortCircuit:  map[string]bool{"&&": true, "||": true},
	},
	"python": {
		branches: map[string]bool{
			"if_statement":           true,
			"elif_clause":            true,
			"for_statement":          true,
			"while_statement":        true,
			"except_clause":          true,
			"conditional_expression": true,
			"case_clause":            true,
		},
		boundaries: map[string]bool{
			"function_definition": true,
			"lambda":              true,
		},
		booleanOpTyp: "boolean_operator",
	},
	"javascript": jsRules,
	"typescript": jsRules,
	"tsx":        jsRules,
}

var jsRules = &rules{
	branches: map[string]bool{
		"if_statement":       true,
		"for_statement":      true,
		"for_in_statement":   true,
		"while_statement":    true,
		"do_statement":       true,
		"catch_clause":       true,
		"ternary_expression": true,
		"switch_case":        true,
	},
	boundaries: map[string]bool{
		"function_declaration": true,
		"function_expression":  true,
		"arrow_function":       true,
		"method_definition":    true,
	},
	binaryExprTyp: "binary_expression",
	shortCircuit:  map[string]bool{"&&": true, "||": true, "??": true},
}

// Analyze computes complexity metrics for the given function body subtree.
// It is a pure function of the subtree; unsupported languages and nil bodies
// score as the safe default.
func Analyze(body *sitter.Node, code []byte, language string) types.ComplexityInfo {
	r, ok := languageRules[language]
	if !ok || body == nil {
		return types.DefaultComplexity()
	}

	cyclomatic := 1
	cognitive := 1
	walk(body, r, 0, &cyclomatic, &cognitive)

	return types.ComplexityInfo{
		Cyclomatic: cyclomatic,
		Cognitive:  cognitive,
		Level:      types.LevelForCyclomatic(cyclomatic),
	}
}

func walk(n *sitter.Node, r *rules, depth int, cyclomatic, cognitive *int) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		typ := child.Type()

		// Nested function literals are scored on their own nodes, not here.
		if r.boundaries[typ] {
			continue
		}

		switch {
		case r.branches[typ]:
			*cyclomatic++
			*cognitive += 1 + depth
			walk(child, r, depth+1, cyclomatic, cognitive)
		case typ == r.booleanOpTyp && r.booleanOpTyp != "":
			*cyclomatic++
			*cognitive++
			walk(child, r, depth, cyclomatic, cognitive)
		case typ == r.binaryExprTyp && r.binaryExprTyp != "" && hasShortCircuitOp(child, r):
			*cyclomatic++
			*cognitive++
			walk(child, r, depth, cyclomatic, cognitive)
		default:
			walk(child, r, depth, cyclomatic, cognitive)
		}
	}
}

// hasShortCircuitOp checks the anonymous operator children of a binary
// expression for a short-circuit operator token.
func hasShortCircuitOp(n *sitter.Node, r *rules) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if r.shortCircuit[n.Child(i).Type()] {
			return true
		}
	}
	return false
}
