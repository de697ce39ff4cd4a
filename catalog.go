package autoimport

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidCatalog is returned by NewCatalog for malformed entries.
var ErrInvalidCatalog = errors.New("autoimport: invalid catalog")

// Entry maps an identifier to the module it is imported from. Component
// entries are also matched as element tag names.
type Entry struct {
	Name      string `json:"name" yaml:"name"`
	From      string `json:"from" yaml:"from"`
	Component bool   `json:"component,omitempty" yaml:"component,omitempty"`
}

// Catalog is an ordered, immutable set of entries. Declaration order fixes
// the order of synthesized imports.
type Catalog struct {
	entries []Entry
	byName  map[string]int
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// NewCatalog validates entries and builds a Catalog. Names must be plain
// identifiers and unique; every entry needs a module specifier.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		switch {
		case e.Name == "":
			return nil, fmt.Errorf("%w: entry %d: empty name", ErrInvalidCatalog, i)
		case !identRe.MatchString(e.Name):
			return nil, fmt.Errorf("%w: entry %d: %q is not an identifier", ErrInvalidCatalog, i, e.Name)
		case e.From == "":
			return nil, fmt.Errorf("%w: entry %d (%s): empty module specifier", ErrInvalidCatalog, i, e.Name)
		}
		if prev, dup := c.byName[e.Name]; dup {
			return nil, fmt.Errorf("%w: %s listed twice (entries %d and %d)", ErrInvalidCatalog, e.Name, prev, i)
		}
		c.byName[e.Name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on error.
func MustCatalog(entries ...Entry) *Catalog {
	c, err := NewCatalog(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the Nuxt auto-import table.
func DefaultCatalog() *Catalog {
	return MustCatalog(
		Entry{Name: "defineNuxtComponent", From: "#imports"},
		Entry{Name: "useState", From: "#imports"},
		Entry{Name: "useRuntimeConfig", From: "#imports"},
		Entry{Name: "useFetch", From: "#imports"},
		Entry{Name: "NuxtLink", From: "#components", Component: true},
		Entry{Name: "Suspense", From: "#components", Component: true},
		Entry{Name: "NuxtLayout", From: "#components", Component: true},
		Entry{Name: "NuxtPage", From: "#components", Component: true},
	)
}

// Entries returns a copy of the entries in declaration order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Lookup returns the entry for name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// IsComponent reports whether name is a component entry.
func (c *Catalog) IsComponent(name string) bool {
	e, ok := c.Lookup(name)
	return ok && e.Component
}

// Modules returns the distinct module specifiers in order of first
// appearance.
func (c *Catalog) Modules() []string {
	seen := make(map[string]bool)
	var mods []string
	for _, e := range c.entries {
		if !seen[e.From] {
			seen[e.From] = true
			mods = append(mods, e.From)
		}
	}
	return mods
}
