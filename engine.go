package autoimport

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jward/autoimport/internal/collect"
	"github.com/jward/autoimport/internal/syntax"
)

// Engine rewrites script source so that every catalog identifier it uses
// is imported explicitly. An Engine holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	catalog  *Catalog
	dialects []syntax.Dialect
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog replaces the default Nuxt catalog.
func WithCatalog(c *Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithLogger sets the logger used for diagnostics. The default discards
// everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithDialects sets the grammar order Transform tries. TransformPath
// ignores it and picks the order from the file extension.
func WithDialects(dialects ...syntax.Dialect) Option {
	return func(e *Engine) {
		e.dialects = dialects
	}
}

// New creates an Engine. Without WithCatalog it uses DefaultCatalog.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		dialects: syntax.DefaultDialects,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = DefaultCatalog()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	for _, d := range e.dialects {
		if _, ok := syntax.GrammarFor(d); !ok {
			return nil, fmt.Errorf("autoimport: unknown dialect %q", d)
		}
	}
	return e, nil
}

// Catalog returns the catalog the engine matches against.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Result is the outcome of one Transform call.
type Result struct {
	Original string
	Output   string
	// Changed is Original != Output.
	Changed bool
	// Added lists the declarations that were inserted, in output order.
	Added []ImportGroup
	// ParseFailed is set when the source could not be parsed; Output then
	// equals Original.
	ParseFailed bool
}

// Transform parses src, finds catalog identifiers that are used but not
// imported, and returns src with the missing import declarations added as
// leading statements. Unparsable input comes back unchanged.
func (e *Engine) Transform(ctx context.Context, src string) Result {
	return e.transform(ctx, src, e.dialects)
}

// TransformPath is Transform with the grammar order chosen from path's
// extension.
func (e *Engine) TransformPath(ctx context.Context, path, src string) Result {
	return e.transform(ctx, src, syntax.DialectsForPath(path))
}

func (e *Engine) transform(ctx context.Context, src string, dialects []syntax.Dialect) Result {
	res := Result{Original: src, Output: src}

	mod, err := syntax.Parse(ctx, []byte(src), dialects...)
	if err != nil {
		if errors.Is(err, syntax.ErrParse) {
			res.ParseFailed = true
		}
		e.logger.Debug("leaving source unchanged", zap.Error(err))
		return res
	}
	defer mod.Close()

	usage := collect.Collect(mod, e.catalog.IsComponent)
	groups := synthesize(e.catalog, usage)
	if len(groups) == 0 {
		return res
	}

	res.Output = splice(mod, groups)
	res.Changed = res.Output != res.Original
	if res.Changed {
		res.Added = groups
	}
	e.logger.Debug("synthesized imports",
		zap.String("dialect", string(mod.Dialect())),
		zap.Int("groups", len(groups)),
		zap.Strings("used", usage.Used),
	)
	return res
}

// TransformString adapts Transform to a plain text-to-text function.
func (e *Engine) TransformString(src string) string {
	return e.Transform(context.Background(), src).Output
}
