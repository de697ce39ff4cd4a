package autoimport

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
)

// TransformFunc rewrites one script region. path is the file the region
// came from.
type TransformFunc func(ctx context.Context, path, src string) Result

// Status is what happened to one file.
type Status int

const (
	StatusUnchanged Status = iota
	StatusSkipped
	StatusWouldUpdate
	StatusUpdated
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusWouldUpdate:
		return "would-update"
	case StatusUpdated:
		return "updated"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// FileResult describes the outcome for one file.
type FileResult struct {
	Path   string
	Status Status
	Added  []ImportGroup
}

// Reporter writes the per-file lines users see. Safe for concurrent use;
// each line is written atomically.
type Reporter struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewReporter returns a Reporter writing status lines to out and failures
// to errOut. Nil writers discard.
func NewReporter(out, errOut io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Reporter{out: out, err: errOut}
}

func (r *Reporter) printf(w io.Writer, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// Infof writes a status line.
func (r *Reporter) Infof(format string, args ...any) {
	if r == nil {
		return
	}
	r.printf(r.out, format, args...)
}

// Errorf writes a failure line.
func (r *Reporter) Errorf(format string, args ...any) {
	if r == nil {
		return
	}
	r.printf(r.err, format, args...)
}

// FileOptions controls writing and reporting for a single file.
type FileOptions struct {
	// DryRun reports files that would change without writing them.
	DryRun bool
	// Verbose reports every file that was written.
	Verbose bool
	// Reporter receives the user-facing lines. Nil discards them.
	Reporter *Reporter
}

// scriptSetupRe matches the first <script setup ...>...</script> region.
// Group 1 is the region body.
var scriptSetupRe = regexp.MustCompile(`(?s)<script\s+setup[^>]*>(.*?)</script>`)

// ScriptSetupRegion returns the byte offsets of the first script-setup
// body in content. ok is false when the file has none.
func ScriptSetupRegion(content string) (start, end int, ok bool) {
	loc := scriptSetupRe.FindStringSubmatchIndex(content)
	if loc == nil {
		return 0, 0, false
	}
	return loc[2], loc[3], true
}

// RewriteTemplate applies fn to the first script-setup region of a
// component file's content and splices the result back in. Everything
// outside the region body, including the opening tag and its attributes,
// is kept byte for byte; later regions are ignored. found is false when
// content has no region.
func RewriteTemplate(ctx context.Context, path, content string, fn TransformFunc) (out string, res Result, found bool) {
	start, end, ok := ScriptSetupRegion(content)
	if !ok {
		return content, Result{Original: content, Output: content}, false
	}
	res = fn(ctx, path, content[start:end])
	if !res.Changed {
		return content, res, true
	}
	return content[:start] + res.Output + content[end:], res, true
}

// ProcessTemplateFile rewrites the first script-setup region of a
// component file on disk. A file without one is StatusSkipped.
func ProcessTemplateFile(ctx context.Context, path string, fn TransformFunc, opts FileOptions) (FileResult, error) {
	res := FileResult{Path: path}

	content, mode, err := readFile(path, opts)
	if err != nil {
		res.Status = StatusFailed
		return res, err
	}

	updated, tr, found := RewriteTemplate(ctx, path, content, fn)
	switch {
	case !found:
		res.Status = StatusSkipped
		return res, nil
	case !tr.Changed:
		res.Status = StatusUnchanged
		return res, nil
	}
	res.Added = tr.Added
	return finish(res, path, updated, mode, opts)
}

// ProcessScriptFile transforms a whole script file.
func ProcessScriptFile(ctx context.Context, path string, fn TransformFunc, opts FileOptions) (FileResult, error) {
	res := FileResult{Path: path}

	content, mode, err := readFile(path, opts)
	if err != nil {
		res.Status = StatusFailed
		return res, err
	}

	tr := fn(ctx, path, content)
	if !tr.Changed {
		res.Status = StatusUnchanged
		return res, nil
	}
	res.Added = tr.Added
	return finish(res, path, tr.Output, mode, opts)
}

func readFile(path string, opts FileOptions) (string, os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		opts.Reporter.Errorf("Failed to read %s: %v\n", path, err)
		return "", 0, fmt.Errorf("autoimport: read %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		opts.Reporter.Errorf("Failed to read %s: %v\n", path, err)
		return "", 0, fmt.Errorf("autoimport: read %s: %w", path, err)
	}
	return string(data), info.Mode().Perm(), nil
}

// finish writes or reports a changed file.
func finish(res FileResult, path, content string, mode os.FileMode, opts FileOptions) (FileResult, error) {
	if opts.DryRun {
		opts.Reporter.Infof("Would update: %s\n", path)
		res.Status = StatusWouldUpdate
		return res, nil
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		opts.Reporter.Errorf("Failed to write %s: %v\n", path, err)
		res.Status = StatusFailed
		return res, fmt.Errorf("autoimport: write %s: %w", path, err)
	}
	if opts.Verbose {
		opts.Reporter.Infof("Updated: %s\n", path)
	}
	res.Status = StatusUpdated
	return res, nil
}
