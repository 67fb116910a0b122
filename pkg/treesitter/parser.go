package treesitter

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser wraps go-tree-sitter with multi-language support. It is safe for
// concurrent use; each Parse call holds the internal lock for the duration
// of the parse.
type Parser struct {
	mu       sync.Mutex
	parser   *sitter.Parser
	langName string
	cache    map[string]*sitter.Language
}

// New creates a Parser initialized for the given language.
func New(language string) (*Parser, error) {
	p := &Parser{
		parser: sitter.NewParser(),
		cache:  make(map[string]*sitter.Language),
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.setLanguageLocked(language); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse parses source code and returns a tree-sitter Tree. If language
// differs from the current one the parser switches grammars first.
// The caller owns the returned tree and must Close it.
func (p *Parser) Parse(ctx context.Context, code []byte, language string) (*sitter.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if language != "" && language != p.langName {
		if err := p.setLanguageLocked(language); err != nil {
			return nil, err
		}
	}

	tree, err := p.parser.ParseCtx(ctx, nil, code)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tree, nil
}

// Language returns the current language name.
func (p *Parser) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.langName
}

// Supported reports whether a tree-sitter grammar is available for language.
func Supported(language string) bool {
	switch language {
	case "go", "python", "javascript", "typescript", "tsx":
		return true
	}
	return false
}

func (p *Parser) setLanguageLocked(language string) error {
	lang, err := p.getLanguage(language)
	if err != nil {
		return err
	}
	p.parser.SetLanguage(lang)
	p.langName = language
	return nil
}

func (p *Parser) getLanguage(name string) (*sitter.Language, error) {
	if lang, ok := p.cache[name]; ok {
		return lang, nil
	}

	var lang *sitter.Language
	switch name {
	case "go":
		lang = golang.GetLanguage()
	case "python":
		lang = python.GetLanguage()
	case "javascript":
		lang = javascript.GetLanguage()
	case "typescript":
		lang = typescript.GetLanguage()
	case "tsx":
		lang = tsx.GetLanguage()
	default:
		return nil, fmt.Errorf("unsupported language: %s", name)
	}

	p.cache[name] = lang
	return lang, nil
}
