package parser

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/codeatlas/codeatlas/internal/complexity"
	"github.com/codeatlas/codeatlas/internal/types"
	"github.com/codeatlas/codeatlas/internal/util"
	ts "github.com/codeatlas/codeatlas/pkg/treesitter"
	sitter "github.com/smacker/go-tree-sitter"
)

// Parser turns a single source file into a file-level CodeGraphNode subtree:
// classes and functions in declaration order, call sites collected on each
// function node for later resolution.
type Parser struct {
	tsParser *ts.Parser
}

// New creates a code parser.
func New() (*Parser, error) {
	p, err := ts.New("go")
	if err != nil {
		return nil, fmt.Errorf("init tree-sitter: %w", err)
	}
	return &Parser{tsParser: p}, nil
}

// FileResult is the outcome of parsing one file. Warnings carry recoverable
// per-function issues (e.g. a body the complexity scorer could not handle).
type FileResult struct {
	Node     *types.CodeGraphNode
	Warnings []string
}

// ParseFile parses a source file into its file node. relPath is the
// project-relative path stored on the node. A syntax tree that cannot be
// built returns an error; the caller degrades the file to an empty node.
func (p *Parser) ParseFile(ctx context.Context, relPath string, content []byte) (*FileResult, error) {
	language := util.LanguageFromPath(relPath)
	if !ts.Supported(language) {
		return nil, fmt.Errorf("unsupported language for %s", relPath)
	}

	tree, err := p.tsParser.Parse(ctx, content, language)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", relPath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parse %s: malformed source", relPath)
	}

	fileNode := &types.CodeGraphNode{
		Name:       filepath.Base(relPath),
		Kind:       types.KindFile,
		SourcePath: relPath,
	}
	result := &FileResult{Node: fileNode}

	switch language {
	case "go":
		parseGo(root, content, result)
	case "python":
		parsePython(root, content, result)
	case "javascript", "typescript", "tsx":
		parseJS(root, content, result)
	}

	return result, nil
}

// newFunctionNode builds a function node: start line, collected call sites,
// and a complexity score. The score falls back to the safe default when the
// calculator panics on a body shape it cannot handle.
func newFunctionNode(name string, decl, body *sitter.Node, code []byte, language string, result *FileResult) *types.CodeGraphNode {
	fn := &types.CodeGraphNode{
		Name:      name,
		Kind:      types.KindFunction,
		StartLine: int(decl.StartPoint().Row) + 1,
	}
	if body != nil {
		fn.Sites = collectCallSites(body, code, language)
	}
	fn.Complexity = scoreFunction(name, body, code, language, result)
	return fn
}

func scoreFunction(name string, body *sitter.Node, code []byte, language string, result *FileResult) (info *types.ComplexityInfo) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[parser] complexity scoring failed for %s: %v", name, r)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("complexity calculation failed for function %q, using default", name))
			safe := types.DefaultComplexity()
			info = &safe
		}
	}()
	scored := complexity.Analyze(body, code, language)
	return &scored
}
