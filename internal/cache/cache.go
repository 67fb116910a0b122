// Package cache persists Code Graphs on disk, keyed by project name plus a
// content hash of the included files. The analyzer's determinism makes the
// cache sound: unchanged content always reproduces the identical graph.
package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codeatlas/codeatlas/internal/types"
)

// GraphCache handles persisting and loading analysis results.
type GraphCache struct {
	CacheDir string
}

// New creates a cache manager rooted at cacheDir.
func New(cacheDir string) *GraphCache {
	return &GraphCache{CacheDir: cacheDir}
}

// Entry is the serializable cached analysis result.
type Entry struct {
	ProjectName string
	ContentHash string
	Graph       *types.CodeGraph
}

// Save writes a cached graph to disk.
func (c *GraphCache) Save(projectName, contentHash string, graph *types.CodeGraph) error {
	if err := os.MkdirAll(c.CacheDir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	f, err := os.Create(c.cachePath(projectName, contentHash))
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer f.Close()

	entry := &Entry{ProjectName: projectName, ContentHash: contentHash, Graph: graph}
	if err := gob.NewEncoder(f).Encode(entry); err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	return nil
}

// Load reads a cached graph. Returns an error when no entry exists for the
// given key, which callers treat as a miss.
func (c *GraphCache) Load(projectName, contentHash string) (*types.CodeGraph, error) {
	f, err := os.Open(c.cachePath(projectName, contentHash))
	if err != nil {
		return nil, fmt.Errorf("open cache file: %w", err)
	}
	defer f.Close()

	var entry Entry
	if err := gob.NewDecoder(f).Decode(&entry); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	return entry.Graph, nil
}

// Exists returns true if a cache entry exists for the key.
func (c *GraphCache) Exists(projectName, contentHash string) bool {
	_, err := os.Stat(c.cachePath(projectName, contentHash))
	return err == nil
}

// Delete removes every cache entry for the project, regardless of hash.
func (c *GraphCache) Delete(projectName string) error {
	matches, err := filepath.Glob(filepath.Join(c.CacheDir, projectName+"-*.gob"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *GraphCache) cachePath(projectName, contentHash string) string {
	return filepath.Join(c.CacheDir, fmt.Sprintf("%s-%s.gob", projectName, contentHash))
}
