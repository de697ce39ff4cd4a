package autoimport

import "github.com/jward/autoimport/internal/syntax"

// splice prepends one import declaration per group and prints the module.
func splice(mod *syntax.Module, groups []ImportGroup) string {
	if len(groups) == 0 {
		return mod.Serialize()
	}
	decls := make([]syntax.Item, 0, len(groups))
	for _, g := range groups {
		names := make([]string, len(g.Names))
		copy(names, g.Names)
		decls = append(decls, &syntax.ImportDecl{Names: names, From: g.From})
	}
	mod.Prepend(decls...)
	return mod.Serialize()
}
