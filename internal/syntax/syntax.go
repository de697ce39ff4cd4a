// Package syntax parses script modules with tree-sitter and prints them back
// to text after leading statements have been spliced in.
//
// A Module keeps the original source bytes alongside the concrete syntax
// tree. Its top-level statement list is exposed as Items: original items
// print verbatim from their source span, synthesized items (ImportDecl)
// print through the declaration printer. Untouched code is therefore
// reproduced byte for byte.
package syntax

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrParse is returned when no dialect yields an error-free tree.
var ErrParse = errors.New("syntax: parse failed")

// Item is one top-level entry of a module's statement list.
type Item interface {
	item()
}

// SourceItem is a top-level node taken from the parsed source. Its span
// starts where the previous item ended, so leading whitespace and line
// breaks travel with the node that follows them.
type SourceItem struct {
	Kind  string
	Start uint32
	End   uint32
}

func (SourceItem) item() {}

// Module is a parsed script module. Not safe for concurrent use.
type Module struct {
	Items []Item

	src     []byte
	tree    *sitter.Tree
	dialect Dialect
	// eol terminates printed declarations.
	eol string
}

// Parse parses src with each dialect in order and returns the first
// error-free result. A tree containing ERROR or MISSING nodes counts as a
// failure for that dialect. When every dialect fails the returned error
// wraps ErrParse. With no dialects given, DefaultDialects is used.
func Parse(ctx context.Context, src []byte, dialects ...Dialect) (*Module, error) {
	if len(dialects) == 0 {
		dialects = DefaultDialects
	}

	tried := make([]string, 0, len(dialects))
	for _, d := range dialects {
		lang, ok := GrammarFor(d)
		if !ok {
			return nil, fmt.Errorf("syntax: unknown dialect %q", d)
		}
		tried = append(tried, string(d))

		tree, err := parseWith(ctx, lang, src)
		if err != nil {
			return nil, fmt.Errorf("syntax: %s: %w", d, err)
		}
		if tree.RootNode().HasError() {
			tree.Close()
			continue
		}
		return newModule(tree, src, d), nil
	}
	return nil, fmt.Errorf("%w (tried %s)", ErrParse, strings.Join(tried, ", "))
}

// parseWith creates a parser per call so Parse is goroutine-safe.
func parseWith(ctx context.Context, lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)
	return parser.ParseCtx(ctx, nil, src)
}

func newModule(tree *sitter.Tree, src []byte, d Dialect) *Module {
	m := &Module{src: src, tree: tree, dialect: d, eol: lineBreakOf(src)}

	root := tree.RootNode()
	var prev uint32
	count := int(root.ChildCount())
	for i := 0; i < count; i++ {
		child := root.Child(i)
		end := child.EndByte()
		if i == count-1 {
			end = uint32(len(src))
		}
		m.Items = append(m.Items, SourceItem{Kind: child.Type(), Start: prev, End: end})
		prev = end
	}
	if count == 0 && len(src) > 0 {
		m.Items = append(m.Items, SourceItem{Kind: "trivia", Start: 0, End: uint32(len(src))})
	}
	return m
}

// Root returns the program node.
func (m *Module) Root() *sitter.Node { return m.tree.RootNode() }

// Source returns the bytes the module was parsed from.
func (m *Module) Source() []byte { return m.src }

// Dialect returns the grammar that produced the tree.
func (m *Module) Dialect() Dialect { return m.dialect }

// Close releases the tree-sitter tree.
func (m *Module) Close() {
	if m.tree != nil {
		m.tree.Close()
		m.tree = nil
	}
}

// Prepend inserts items as new leading statements, keeping the relative
// order of the existing ones. A leading "#!" line and the comments above the
// first statement (triple-slash directives, pragmas) stay on top. A line
// break that follows them stays ahead of the inserted items and sets the line
// ending the items are printed with.
func (m *Module) Prepend(items ...Item) {
	if len(items) == 0 {
		return
	}
	at := 0
	for at < len(m.Items) {
		si, ok := m.Items[at].(SourceItem)
		if !ok || (si.Kind != "hash_bang_line" && si.Kind != "comment") {
			break
		}
		at++
	}
	if at < len(m.Items) {
		if si, ok := m.Items[at].(SourceItem); ok {
			if n := leadingLineBreak(m.src[si.Start:si.End]); n > 0 && int(n) < int(si.End-si.Start) {
				brk := SourceItem{Kind: "trivia", Start: si.Start, End: si.Start + n}
				m.eol = string(m.src[brk.Start:brk.End])
				si.Start += n
				m.Items = append(m.Items[:at], append([]Item{brk, si}, m.Items[at+1:]...)...)
				at++
			}
		}
	}
	out := make([]Item, 0, len(m.Items)+len(items))
	out = append(out, m.Items[:at]...)
	out = append(out, items...)
	out = append(out, m.Items[at:]...)
	m.Items = out
}

func leadingLineBreak(b []byte) uint32 {
	switch {
	case len(b) >= 2 && b[0] == '\r' && b[1] == '\n':
		return 2
	case len(b) >= 1 && b[0] == '\n':
		return 1
	}
	return 0
}

// lineBreakOf returns the first line break used in src, "\n" when none.
func lineBreakOf(src []byte) string {
	for i, c := range src {
		if c == '\n' {
			if i > 0 && src[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}

// Serialize prints the statement list back to source text. Output is
// deterministic for a given item list.
func (m *Module) Serialize() string {
	var b strings.Builder
	b.Grow(len(m.src) + 64*len(m.Items))
	for _, it := range m.Items {
		switch it := it.(type) {
		case SourceItem:
			b.Write(m.src[it.Start:it.End])
		case *ImportDecl:
			s := b.String()
			if s != "" && !strings.HasSuffix(s, "\n") {
				b.WriteString(m.eol)
			}
			b.WriteString(it.String())
			b.WriteString(m.eol)
		}
	}
	return b.String()
}
