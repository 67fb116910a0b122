package treesitter

import (
	"context"
	"testing"
)

func TestParseGo(t *testing.T) {
	p, err := New("go")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	code := []byte("package main\n\nfunc main() {}\n")
	tree, err := p.Parse(context.Background(), code, "go")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.Type() != "source_file" {
		t.Errorf("root type = %q, want source_file", root.Type())
	}
	if root.HasError() {
		t.Error("valid code should parse without errors")
	}
}

func TestParseSwitchesLanguage(t *testing.T) {
	p, err := New("go")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tree, err := p.Parse(context.Background(), []byte("def f():\n    pass\n"), "python")
	if err != nil {
		t.Fatalf("Parse python: %v", err)
	}
	defer tree.Close()

	if tree.RootNode().Type() != "module" {
		t.Errorf("python root type = %q, want module", tree.RootNode().Type())
	}
	if p.Language() != "python" {
		t.Errorf("Language() = %q after switch", p.Language())
	}
}

func TestParseDetectsSyntaxErrors(t *testing.T) {
	p, err := New("python")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tree, err := p.Parse(context.Background(), []byte("def broken(:\n"), "python")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	if !tree.RootNode().HasError() {
		t.Error("malformed code should produce an error node")
	}
}

func TestNewUnsupportedLanguage(t *testing.T) {
	if _, err := New("cobol"); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestSupported(t *testing.T) {
	for _, lang := range []string{"go", "python", "javascript", "typescript", "tsx"} {
		if !Supported(lang) {
			t.Errorf("Supported(%q) = false", lang)
		}
	}
	if Supported("ruby") || Supported("") {
		t.Error("unsupported languages reported as supported")
	}
}
