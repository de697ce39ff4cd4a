// Package autoimport rewrites Nuxt sources so that auto-imported
// composables and components are imported explicitly. It is built on
// tree-sitter: a script is parsed into a concrete syntax tree, call targets
// and element tags are matched against a [Catalog], and one import
// declaration per module specifier is inserted for every name that is used
// but not yet imported.
//
// # Pipeline
//
// A single [Engine.Transform] call runs four steps:
//
//  1. Parse: the source is parsed with the TSX, TypeScript and JavaScript
//     grammars in turn. A source no grammar accepts is returned unchanged.
//
//  2. Collect: top-level named imports and the bare identifiers used as
//     call targets or component tags are recorded.
//
//  3. Synthesize: catalog entries that are used but not imported from
//     their exact module are grouped by module, in catalog order.
//
//  4. Splice: the groups are prepended as import declarations and the
//     module is printed. Untouched code is reproduced byte for byte.
//
// The transformation is idempotent: running it on its own output changes
// nothing.
//
// # Usage
//
// Transform a string:
//
//	e, err := autoimport.New()
//	if err != nil { ... }
//	res := e.Transform(ctx, "const s = useState('k')")
//	fmt.Print(res.Output)
//
// Rewrite a project in place:
//
//	r := autoimport.NewRunner(e, autoimport.RunOptions{Verbose: true})
//	summary, err := r.Run(ctx, "src")
//
// # Files
//
// The [Runner] discovers files with git ls-files when possible and falls
// back to a directory walk. Component files (".vue" by default) have only
// their first <script setup> region rewritten; script files (".ts" by
// default) are rewritten whole. Files are processed in parallel and a
// failure on one file never stops the others.
package autoimport
