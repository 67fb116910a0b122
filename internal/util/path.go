package util

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
)

// RelativePath returns the relative path from base to target, or target
// unchanged when no relative form exists.
func RelativePath(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

// FolderOf returns the project-relative directory of a relative file path,
// with "." for files at the project root. Always slash-separated.
func FolderOf(relPath string) string {
	dir := filepath.ToSlash(filepath.Dir(relPath))
	if dir == "" {
		return "."
	}
	return dir
}

// ContentHash returns a short hex digest of the given byte chunks, in order.
// Used to key cached analysis results by file content.
func ContentHash(chunks ...[]byte) string {
	h := sha256.New()
	for _, c := range chunks {
		h.Write(c)
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}
