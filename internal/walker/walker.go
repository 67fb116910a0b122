// Package walker enumerates a project's included source files.
//
// Inclusion is driven by the extension filter plus gitignore-style exclusion
// globs; the project's own .gitignore is honored when present. Enumeration
// order is lexical, which downstream components rely on for deterministic
// output.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/codeatlas/codeatlas/internal/util"
)

// Rules control which files the walk includes.
type Rules struct {
	ExcludeDirs  []string // directory names skipped outright
	ExcludeGlobs []string // gitignore-style patterns applied to relative paths
	MaxFileSize  int64    // bytes; 0 disables the limit
}

// DefaultRules returns the default inclusion rules.
func DefaultRules() Rules {
	return Rules{
		ExcludeDirs: []string{
			".git", "node_modules", "__pycache__",
			"dist", "build", "vendor",
		},
		ExcludeGlobs: []string{"*.min.js", "*.bundle.js"},
		MaxFileSize:  5 * 1024 * 1024,
	}
}

// File is one included source file.
type File struct {
	Path     string // absolute
	RelPath  string // project-relative, slash-separated
	Language string
	Size     int64
}

// Walk enumerates included files under rootPath in lexical order.
// An unreadable or non-directory root is an error; per-file access problems
// are skipped silently.
func Walk(rootPath string, rules Rules) ([]File, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", rootPath, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot access %q: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", absRoot)
	}

	matcher := buildMatcher(absRoot, rules)
	excludeDirSet := make(map[string]bool, len(rules.ExcludeDirs))
	for _, d := range rules.ExcludeDirs {
		excludeDirSet[d] = true
	}

	var files []File
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}

		relPath := util.RelativePath(absRoot, path)

		if d.IsDir() {
			if path != absRoot && excludeDirSet[d.Name()] {
				return filepath.SkipDir
			}
			if path != absRoot && matcher != nil && matcher.MatchesPath(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !util.IsSupportedFile(path) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(relPath) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if rules.MaxFileSize > 0 && fi.Size() > rules.MaxFileSize {
			return nil
		}

		files = append(files, File{
			Path:     path,
			RelPath:  relPath,
			Language: util.LanguageFromPath(path),
			Size:     fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", absRoot, err)
	}

	return files, nil
}

// buildMatcher compiles the exclusion globs together with the project's
// .gitignore, when one exists, into a single matcher.
func buildMatcher(absRoot string, rules Rules) *ignore.GitIgnore {
	lines := append([]string{}, rules.ExcludeGlobs...)

	gitignorePath := filepath.Join(absRoot, ".gitignore")
	if data, err := os.ReadFile(gitignorePath); err == nil {
		lines = append(lines, strings.Split(string(data), "\n")...)
	}

	if len(lines) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(lines...)
}
