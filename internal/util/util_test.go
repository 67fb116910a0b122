package util

import "testing"

func TestLanguageFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"app.py", "python"},
		{"index.js", "javascript"},
		{"component.jsx", "javascript"},
		{"lib.mjs", "javascript"},
		{"server.ts", "typescript"},
		{"view.tsx", "tsx"},
		{"SHOUT.PY", "python"},
		{"deep/nested/mod.py", "python"},
		{"readme.md", ""},
		{"noext", ""},
		{"archive.tar.gz", ""},
	}
	for _, tt := range tests {
		if got := LanguageFromPath(tt.path); got != tt.want {
			t.Errorf("LanguageFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIsSupportedFile(t *testing.T) {
	if !IsSupportedFile("a.py") {
		t.Error("a.py should be supported")
	}
	if IsSupportedFile("a.rb") {
		t.Error("a.rb should not be supported")
	}
}

func TestSupportedExtensionsSorted(t *testing.T) {
	exts := SupportedExtensions()
	if len(exts) != 7 {
		t.Fatalf("len = %d, want 7: %v", len(exts), exts)
	}
	for i := 1; i < len(exts); i++ {
		if exts[i-1] >= exts[i] {
			t.Errorf("extensions not sorted: %v", exts)
		}
	}
}

func TestFolderOf(t *testing.T) {
	tests := []struct {
		relPath string
		want    string
	}{
		{"app.py", "."},
		{"pkg/mod.py", "pkg"},
		{"pkg/sub/mod.py", "pkg/sub"},
	}
	for _, tt := range tests {
		if got := FolderOf(tt.relPath); got != tt.want {
			t.Errorf("FolderOf(%q) = %q, want %q", tt.relPath, got, tt.want)
		}
	}
}

func TestContentHash(t *testing.T) {
	h1 := ContentHash([]byte("a"), []byte("b"))
	h2 := ContentHash([]byte("a"), []byte("b"))
	h3 := ContentHash([]byte("a"), []byte("c"))

	if h1 != h2 {
		t.Error("same content should hash the same")
	}
	if h1 == h3 {
		t.Error("different content should hash differently")
	}
	if len(h1) != 16 {
		t.Errorf("hash length = %d, want 16", len(h1))
	}
}
