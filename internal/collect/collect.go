// Package collect walks a parsed module and records the named imports it
// already declares and the bare identifiers it uses as call targets or
// component tags.
//
// The walk is syntactic. A local binding that shadows a recognized name is
// not told apart from the global one, so `const useState = x; useState()`
// still counts useState as used.
package collect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/autoimport/internal/syntax"
)

// Binding is a named import already present in the source.
type Binding struct {
	Name string
	From string
}

// Usage is the result of walking one module.
type Usage struct {
	// Existing lists top-level named imports in source order.
	Existing []Binding
	// Used lists identifiers in order of first use.
	Used []string

	existing map[Binding]bool
	used     map[string]bool
}

// HasImport reports whether name is imported by name from the given module.
func (u *Usage) HasImport(name, from string) bool {
	return u.existing[Binding{Name: name, From: from}]
}

// IsUsed reports whether name appeared as a call target or recognized tag.
func (u *Usage) IsUsed(name string) bool {
	return u.used[name]
}

func (u *Usage) addImport(b Binding) {
	u.Existing = append(u.Existing, b)
	u.existing[b] = true
}

func (u *Usage) addUse(name string) {
	if u.used[name] {
		return
	}
	u.used[name] = true
	u.Used = append(u.Used, name)
}

// Collect scans the top-level import declarations of mod, then walks the
// whole tree for usages. isComponent decides which element tag names count;
// a nil isComponent ignores tags entirely.
func Collect(mod *syntax.Module, isComponent func(string) bool) *Usage {
	u := &Usage{
		existing: make(map[Binding]bool),
		used:     make(map[string]bool),
	}
	src := mod.Source()
	root := mod.Root()

	scanImports(u, root, src)
	scanUsage(u, root, src, isComponent)
	return u
}

// scanImports records named specifiers of top-level import statements.
// Default, namespace and type-only imports bind nothing a call can use at
// runtime and are skipped.
func scanImports(u *Usage, root *sitter.Node, src []byte) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "import_statement" || hasKeyword(stmt, "type", "typeof") {
			continue
		}
		source := stmt.ChildByFieldName("source")
		if source == nil {
			continue
		}
		from := syntax.UnquoteString(source.Content(src))

		for j := 0; j < int(stmt.NamedChildCount()); j++ {
			clause := stmt.NamedChild(j)
			if clause.Type() != "import_clause" {
				continue
			}
			for k := 0; k < int(clause.NamedChildCount()); k++ {
				named := clause.NamedChild(k)
				if named.Type() != "named_imports" {
					continue
				}
				for s := 0; s < int(named.NamedChildCount()); s++ {
					spec := named.NamedChild(s)
					if spec.Type() != "import_specifier" || hasKeyword(spec, "type", "typeof") {
						continue
					}
					if local := localName(spec, src); local != "" {
						u.addImport(Binding{Name: local, From: from})
					}
				}
			}
		}
	}
}

// localName returns the binding a specifier introduces: the alias when
// present, otherwise the imported name.
func localName(spec *sitter.Node, src []byte) string {
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		return alias.Content(src)
	}
	if name := spec.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
		return name.Content(src)
	}
	return ""
}

// hasKeyword reports whether one of n's anonymous children is a keyword in kws.
func hasKeyword(n *sitter.Node, kws ...string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			continue
		}
		for _, kw := range kws {
			if c.Type() == kw {
				return true
			}
		}
	}
	return false
}

func scanUsage(u *Usage, root *sitter.Node, src []byte, isComponent func(string) bool) {
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "call_expression":
			fn := n.ChildByFieldName("function")
			args := n.ChildByFieldName("arguments")
			// A template argument means a tagged template, not a call.
			if fn != nil && fn.Type() == "identifier" && (args == nil || args.Type() != "template_string") {
				u.addUse(fn.Content(src))
			}
		case "jsx_opening_element", "jsx_self_closing_element":
			name := n.ChildByFieldName("name")
			if name != nil && name.Type() == "identifier" && isComponent != nil {
				if tag := name.Content(src); isComponent(tag) {
					u.addUse(tag)
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
}
