package autoimport

import "github.com/jward/autoimport/internal/collect"

// ImportGroup is one import declaration to add: the names, in catalog
// order, that are used but not yet imported from From.
type ImportGroup struct {
	From  string   `json:"from"`
	Names []string `json:"names"`
}

// synthesize computes the missing imports. A name is needed when it is used
// and not already imported from the exact module its entry names; importing
// it from some other module does not count. Groups are ordered by their
// first needed entry, so output depends only on catalog order.
func synthesize(cat *Catalog, u *collect.Usage) []ImportGroup {
	var groups []ImportGroup
	index := make(map[string]int)
	for _, e := range cat.entries {
		if !u.IsUsed(e.Name) || u.HasImport(e.Name, e.From) {
			continue
		}
		i, ok := index[e.From]
		if !ok {
			i = len(groups)
			index[e.From] = i
			groups = append(groups, ImportGroup{From: e.From})
		}
		groups[i].Names = append(groups[i].Names, e.Name)
	}
	return groups
}
