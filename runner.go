package autoimport

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunOptions configures a Runner.
type RunOptions struct {
	// DryRun reports files that would change without writing them.
	DryRun bool
	// Verbose reports every written file.
	Verbose bool
	// Workers bounds concurrent file processing. Zero means runtime.NumCPU().
	Workers int
	// TemplateExtensions lists component-file extensions whose first
	// script-setup region is rewritten. Defaults to ".vue".
	TemplateExtensions []string
	// ScriptExtensions lists extensions rewritten as whole files.
	// Defaults to ".ts".
	ScriptExtensions []string
	// Reporter receives per-file lines. Nil discards them.
	Reporter *Reporter
	// Logger receives diagnostics. Nil discards them.
	Logger *zap.Logger
}

// Summary counts file outcomes for one run.
type Summary struct {
	Files       int
	Unchanged   int
	Skipped     int
	WouldUpdate int
	Updated     int
	Failed      int
}

// Changed reports whether any file was, or in a dry run would have been,
// rewritten.
func (s Summary) Changed() bool {
	return s.WouldUpdate+s.Updated > 0
}

func (s *Summary) add(st Status) {
	s.Files++
	switch st {
	case StatusUnchanged:
		s.Unchanged++
	case StatusSkipped:
		s.Skipped++
	case StatusWouldUpdate:
		s.WouldUpdate++
	case StatusUpdated:
		s.Updated++
	case StatusFailed:
		s.Failed++
	}
}

// Runner discovers files under a directory and rewrites them in parallel.
type Runner struct {
	engine *Engine
	opts   RunOptions

	templates map[string]bool
	scripts   map[string]bool
}

// NewRunner creates a Runner that applies engine to every matching file.
func NewRunner(engine *Engine, opts RunOptions) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if len(opts.TemplateExtensions) == 0 {
		opts.TemplateExtensions = []string{".vue"}
	}
	if len(opts.ScriptExtensions) == 0 {
		opts.ScriptExtensions = []string{".ts"}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{
		engine:    engine,
		opts:      opts,
		templates: extSet(opts.TemplateExtensions),
		scripts:   extSet(opts.ScriptExtensions),
	}
}

func extSet(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m[ext] = true
	}
	return m
}

// kindOf classifies path. ok is false for files the runner ignores.
func (r *Runner) kindOf(path string) (template bool, ok bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case r.templates[ext]:
		return true, true
	case r.scripts[ext]:
		return false, true
	}
	return false, false
}

// Run discovers files under root and processes each one. Per-file failures
// are reported and counted but never stop the run; only discovery errors
// and context cancellation are returned.
func (r *Runner) Run(ctx context.Context, root string) (Summary, error) {
	paths, err := r.ListFiles(root)
	if err != nil {
		return Summary{}, err
	}
	r.opts.Logger.Debug("discovered files", zap.String("root", root), zap.Int("files", len(paths)))
	return r.ProcessFiles(ctx, paths)
}

// ProcessFiles processes the given paths with at most Workers running at
// once. Completion order is not defined; each result depends only on its
// own file.
func (r *Runner) ProcessFiles(ctx context.Context, paths []string) (Summary, error) {
	var (
		mu      sync.Mutex
		summary Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.processFile(gctx, path)
			if err != nil {
				r.opts.Logger.Warn("file failed", zap.String("path", path), zap.Error(err))
			}
			mu.Lock()
			summary.add(res.Status)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, fmt.Errorf("autoimport: run: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("autoimport: run: %w", err)
	}
	return summary, nil
}

func (r *Runner) processFile(ctx context.Context, path string) (FileResult, error) {
	template, ok := r.kindOf(path)
	if !ok {
		return FileResult{Path: path, Status: StatusSkipped}, nil
	}
	opts := FileOptions{
		DryRun:   r.opts.DryRun,
		Verbose:  r.opts.Verbose,
		Reporter: r.opts.Reporter,
	}
	if template {
		return ProcessTemplateFile(ctx, path, r.transformRegion, opts)
	}
	return ProcessScriptFile(ctx, path, r.engine.TransformPath, opts)
}

// transformRegion handles the script region of a component file. The
// region's language is not tied to the file extension, so the engine's
// default grammar order applies.
func (r *Runner) transformRegion(ctx context.Context, _, src string) Result {
	return r.engine.Transform(ctx, src)
}

// Rewrite returns what the runner would write for path given its content,
// without touching the filesystem. ok is false when path is not a
// recognized kind or a component file has no script-setup region.
func (r *Runner) Rewrite(ctx context.Context, path, content string) (out string, res Result, ok bool) {
	template, ok := r.kindOf(path)
	if !ok {
		return content, Result{Original: content, Output: content}, false
	}
	if template {
		return RewriteTemplate(ctx, path, content, r.transformRegion)
	}
	res = r.engine.TransformPath(ctx, path, content)
	return res.Output, res, true
}

// skipDirs are never descended into by the filesystem walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
}

// ListFiles returns the files under root the runner would process, sorted.
// If root is inside a git repository, uses git ls-files to respect
// .gitignore. Falls back to a filesystem walk (skipping hidden dirs,
// node_modules, vendor and dist) otherwise.
func (r *Runner) ListFiles(root string) ([]string, error) {
	paths, err := r.gitListFiles(root)
	if err != nil {
		r.opts.Logger.Debug("git ls-files unavailable, walking", zap.Error(err))
		paths, err = r.walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root. Output is NUL-separated so paths are never
// quoted.
func (r *Runner) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "-z", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, name := range strings.Split(stdout.String(), "\x00") {
		if name == "" {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(name))
		if _, ok := r.kindOf(path); ok {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem.
func (r *Runner) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := r.kindOf(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("autoimport: walk %s: %w", root, err)
	}
	return paths, nil
}
