package util

import (
	"path/filepath"
	"sort"
	"strings"
)

// Extensions the analyzer can parse into a syntax tree.
var languageExtensions = map[string]string{
	".go":  "go",
	".py":  "python",
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".ts":  "typescript",
	".tsx": "tsx",
}

// LanguageFromPath returns the language name for a file path.
// Returns empty string if the extension is unsupported.
func LanguageFromPath(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	return languageExtensions[ext]
}

// IsSupportedFile reports whether the file has a parseable extension.
func IsSupportedFile(filePath string) bool {
	return LanguageFromPath(filePath) != ""
}

// SupportedExtensions returns all parseable file extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(languageExtensions))
	for ext := range languageExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
