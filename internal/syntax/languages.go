package syntax

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Dialect names a grammar the pipeline can parse script source with.
type Dialect string

const (
	TSX        Dialect = "tsx"
	TypeScript Dialect = "typescript"
	JavaScript Dialect = "javascript"
)

// DefaultDialects is the order used when nothing is known about the source.
// TSX accepts element tags and type annotations, which covers the script
// region of a component file.
var DefaultDialects = []Dialect{TSX, TypeScript, JavaScript}

// extToDialects maps file extensions to the order in which grammars are tried.
var extToDialects = map[string][]Dialect{
	".ts":  {TypeScript, TSX, JavaScript},
	".mts": {TypeScript, TSX, JavaScript},
	".cts": {TypeScript, TSX, JavaScript},
	".tsx": {TSX, TypeScript, JavaScript},
	".js":  {JavaScript, TSX, TypeScript},
	".mjs": {JavaScript, TSX, TypeScript},
	".cjs": {JavaScript, TSX, TypeScript},
	".jsx": {JavaScript, TSX, TypeScript},
}

// Lazily initialized on first call via sync.Once.
var (
	dialectToGrammar map[Dialect]*sitter.Language
	grammarsOnce     sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		dialectToGrammar = map[Dialect]*sitter.Language{
			TSX:        tsx.GetLanguage(),
			TypeScript: ts.GetLanguage(),
			JavaScript: javascript.GetLanguage(),
		}
	})
}

// DialectsForPath returns the grammar order for a file path based on its
// extension. Unknown extensions (including component files) get
// DefaultDialects.
func DialectsForPath(path string) []Dialect {
	ext := strings.ToLower(filepath.Ext(path))
	if ds, ok := extToDialects[ext]; ok {
		return ds
	}
	return DefaultDialects
}

// GrammarFor returns the tree-sitter Language for a dialect.
// Returns (nil, false) if the dialect is not supported.
func GrammarFor(d Dialect) (*sitter.Language, bool) {
	initGrammars()
	l, ok := dialectToGrammar[d]
	return l, ok
}
