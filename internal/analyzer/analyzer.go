// Package analyzer builds the hierarchical Code Graph for a project.
//
// Analysis runs in two passes. Pass 1 walks the project, parses each
// included file into its structural subtree (parallelized across files),
// and merges per-file contributions into the symbol index in traversal
// order. Pass 2 resolves call sites against the frozen index. Resolution
// never starts before the index is complete; forward references across
// files depend on that ordering.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codeatlas/codeatlas/internal/parser"
	"github.com/codeatlas/codeatlas/internal/resolve"
	"github.com/codeatlas/codeatlas/internal/types"
	"github.com/codeatlas/codeatlas/internal/util"
	"github.com/codeatlas/codeatlas/internal/walker"
)

// ErrProjectUnavailable is returned when the project root is unreadable or
// matches no files at all. It is fatal; no partial graph accompanies it.
var ErrProjectUnavailable = errors.New("project unavailable")

// Options configure an analysis run.
type Options struct {
	Rules   walker.Rules
	Workers int // parallel parse workers; 0 means NumCPU
}

// DefaultOptions returns the default analyzer configuration.
func DefaultOptions() Options {
	return Options{
		Rules:   walker.DefaultRules(),
		Workers: runtime.NumCPU(),
	}
}

// Analyzer produces Code Graphs from project trees or single files.
type Analyzer struct {
	opts Options
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Analyzer{opts: opts}
}

// fileParse is the pass-1 outcome for one file, kept in walk order.
type fileParse struct {
	file     walker.File
	node     *types.CodeGraphNode
	warnings []string
	skipped  bool // cancellation hit before this file was parsed
}

// AnalyzeProject walks rootPath and returns the project's Code Graph.
// Per-file parse failures degrade the file to an empty node and are
// aggregated into warnings; only an unusable root aborts the run.
// Cancellation is honored between files: already-parsed files stay in the
// graph, unparsed ones are dropped, and the truncation is recorded as a
// warning.
func (a *Analyzer) AnalyzeProject(ctx context.Context, rootPath string) (*types.CodeGraph, error) {
	files, err := walker.Walk(rootPath, a.opts.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProjectUnavailable, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no included source files under %s", ErrProjectUnavailable, rootPath)
	}

	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProjectUnavailable, err)
	}

	parses := a.parseAll(ctx, files)
	return a.assemble(ctx, filepath.Base(absRoot), parses)
}

// AnalyzeFile analyzes a single file instead of a whole project. The graph
// root is a folder node containing just that file; calls resolve against
// the file's own symbols only.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*types.CodeGraph, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProjectUnavailable, err)
	}
	if !util.IsSupportedFile(path) {
		return nil, fmt.Errorf("%w: unsupported file type %s (supported: %s)",
			ErrProjectUnavailable, path, strings.Join(util.SupportedExtensions(), " "))
	}

	file := walker.File{
		Path:     path,
		RelPath:  filepath.Base(path),
		Language: util.LanguageFromPath(path),
		Size:     int64(len(content)),
	}

	p, err := parser.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProjectUnavailable, err)
	}

	fp := fileParse{file: file}
	res, perr := p.ParseFile(ctx, file.RelPath, content)
	if perr != nil {
		fp.node = emptyFileNode(file.RelPath)
		fp.warnings = []string{perr.Error()}
	} else {
		fp.node = res.Node
		fp.warnings = res.Warnings
	}

	return a.assemble(ctx, filepath.Base(filepath.Dir(path)), []fileParse{fp})
}

// parseAll runs pass 1: bounded parallel parsing with one parser per
// worker. Results land in walk order regardless of completion order.
func (a *Analyzer) parseAll(ctx context.Context, files []walker.File) []fileParse {
	parses := make([]fileParse, len(files))
	indexes := make(chan int)

	var g errgroup.Group
	for w := 0; w < a.opts.Workers; w++ {
		g.Go(func() error {
			p, err := parser.New()
			if err != nil {
				return err
			}
			for i := range indexes {
				parses[i] = parseOne(ctx, p, files[i])
			}
			return nil
		})
	}

feed:
	for i := range files {
		select {
		case indexes <- i:
		case <-ctx.Done():
			for j := i; j < len(files); j++ {
				parses[j] = fileParse{file: files[j], skipped: true}
			}
			break feed
		}
	}
	close(indexes)

	if err := g.Wait(); err != nil {
		log.Printf("[analyzer] worker error: %v", err)
	}
	return parses
}

func parseOne(ctx context.Context, p *parser.Parser, file walker.File) fileParse {
	fp := fileParse{file: file}

	if ctx.Err() != nil {
		fp.skipped = true
		return fp
	}

	content, err := os.ReadFile(file.Path)
	if err != nil {
		fp.node = emptyFileNode(file.RelPath)
		fp.warnings = []string{fmt.Sprintf("read %s: %v", file.RelPath, err)}
		return fp
	}

	res, err := p.ParseFile(ctx, file.RelPath, content)
	if err != nil {
		fp.node = emptyFileNode(file.RelPath)
		fp.warnings = []string{err.Error()}
		return fp
	}

	fp.node = res.Node
	fp.warnings = res.Warnings
	return fp
}

// emptyFileNode stands in for a file that could not be read or parsed. It
// keeps the file visible in the graph with no structural children.
func emptyFileNode(relPath string) *types.CodeGraphNode {
	return &types.CodeGraphNode{
		Name:       filepath.Base(relPath),
		Kind:       types.KindFile,
		SourcePath: relPath,
	}
}

// assemble merges pass-1 results into the containment tree and symbol index
// (in walk order), freezes the index, then runs pass 2 resolution.
func (a *Analyzer) assemble(ctx context.Context, rootName string, parses []fileParse) (*types.CodeGraph, error) {
	graph := &types.CodeGraph{
		Warnings: []string{},
		Errors:   []string{},
	}

	root := &types.CodeGraphNode{
		Name:       rootName,
		Kind:       types.KindFolder,
		SourcePath: ".",
	}
	tb := newTreeBuilder(root)
	ix := resolve.NewIndex()

	parsed, skipped := 0, 0
	langFiles := make(map[string]int)
	for _, fp := range parses {
		if fp.skipped {
			skipped++
			continue
		}
		parsed++
		langFiles[fp.file.Language]++
		folder := util.FolderOf(fp.file.RelPath)
		tb.attach(folder, fp.node)
		ix.AddFile(folder, fp.node)
		graph.Warnings = append(graph.Warnings, fp.warnings...)
	}
	ix.Freeze()
	sortFolders(root)

	if skipped > 0 {
		graph.Warnings = append(graph.Warnings,
			fmt.Sprintf("analysis cancelled: %d of %d files processed", parsed, parsed+skipped))
	}

	log.Printf("[analyzer] pass 1 done: %d files (%s), %d symbols indexed",
		parsed, languageBreakdown(langFiles), ix.Size())

	resolveCalls(ctx, root, ix)
	graph.Nodes = root
	return graph, nil
}

// languageBreakdown renders a per-language file count like "go 3, python 7",
// in stable language order.
func languageBreakdown(counts map[string]int) string {
	langs := make([]string, 0, len(counts))
	for l := range counts {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	parts := make([]string, 0, len(langs))
	for _, l := range langs {
		parts = append(parts, fmt.Sprintf("%s %d", l, counts[l]))
	}
	return strings.Join(parts, ", ")
}

// resolveCalls is pass 2: every function node's collected call sites become
// CallRelationships or are dropped. Files resolve in parallel; the frozen
// index is read-only. Function nodes always end with a non-nil Calls slice.
func resolveCalls(ctx context.Context, root *types.CodeGraphNode, ix *resolve.Index) {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	var perFolder func(node *types.CodeGraphNode, folder string)
	perFolder = func(node *types.CodeGraphNode, folder string) {
		for _, child := range node.Children {
			switch child.Kind {
			case types.KindFolder:
				perFolder(child, child.SourcePath)
			case types.KindFile:
				file := child
				g.Go(func() error {
					if ctx.Err() != nil {
						return nil
					}
					resolveFile(file, folder, ix)
					return nil
				})
			}
		}
	}
	perFolder(root, root.SourcePath)
	_ = g.Wait()
}

func resolveFile(file *types.CodeGraphNode, folder string, ix *resolve.Index) {
	var walkFns func(node *types.CodeGraphNode, class string)
	walkFns = func(node *types.CodeGraphNode, class string) {
		for _, child := range node.Children {
			switch child.Kind {
			case types.KindClass:
				walkFns(child, child.Name)
			case types.KindFunction:
				origin := resolve.Origin{Folder: folder, File: file.Name, Class: class}
				child.Calls = resolveSites(child.Sites, origin, ix)
				child.Sites = nil
				walkFns(child, class)
			}
		}
	}
	walkFns(file, "")
}

func resolveSites(sites []types.CallSite, origin resolve.Origin, ix *resolve.Index) []types.CallRelationship {
	calls := make([]types.CallRelationship, 0, len(sites))
	seen := make(map[string]bool, len(sites))
	for _, site := range sites {
		rel, ok := resolve.Resolve(site, origin, ix)
		if !ok {
			continue
		}
		key := strings.Join(rel.Target[:], "\x00") + "\x00" + rel.Label
		if seen[key] {
			continue
		}
		seen[key] = true
		calls = append(calls, rel)
	}
	return calls
}

// treeBuilder places file nodes under their folder chain, creating folder
// nodes on demand. Folders sort before being finalized so output is stable
// no matter the parse completion order.
type treeBuilder struct {
	root    *types.CodeGraphNode
	folders map[string]*types.CodeGraphNode
}

func newTreeBuilder(root *types.CodeGraphNode) *treeBuilder {
	return &treeBuilder{
		root:    root,
		folders: map[string]*types.CodeGraphNode{".": root},
	}
}

// attach adds a file node under the folder at relative path folder.
func (tb *treeBuilder) attach(folder string, file *types.CodeGraphNode) {
	node := tb.folderNode(folder)
	node.Children = append(node.Children, file)
}

func (tb *treeBuilder) folderNode(folder string) *types.CodeGraphNode {
	if node, ok := tb.folders[folder]; ok {
		return node
	}
	parent := tb.folderNode(parentFolder(folder))
	node := &types.CodeGraphNode{
		Name:       filepath.Base(folder),
		Kind:       types.KindFolder,
		SourcePath: folder,
	}
	parent.Children = append(parent.Children, node)
	tb.folders[folder] = node
	return node
}

func parentFolder(folder string) string {
	parent := filepath.ToSlash(filepath.Dir(folder))
	if parent == "" || parent == "/" {
		return "."
	}
	return parent
}

// sortFolders orders each folder's children: subfolders and files by name,
// folders first. Class and function children keep declaration order.
func sortFolders(node *types.CodeGraphNode) {
	if node.Kind != types.KindFolder {
		return
	}
	sort.SliceStable(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.Kind != b.Kind {
			return a.Kind == types.KindFolder
		}
		return a.Name < b.Name
	})
	for _, child := range node.Children {
		sortFolders(child)
	}
}
