package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jward/autoimport"
	"github.com/jward/autoimport/internal/config"
)

var (
	flagConfig  string
	flagTarget  string
	flagDryRun  bool
	flagVerbose bool
	flagCheck   bool
	flagWorkers int
)

// errChangesNeeded makes --check exit non-zero without printing an error.
var errChangesNeeded = errors.New("files need explicit imports")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errChangesNeeded) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "autoimport",
	Short: "Replace framework auto-imports with explicit imports",
	Long: "autoimport walks a source tree and adds explicit import declarations for every " +
		"auto-imported function or component a script uses. Component files only have their " +
		"first <script setup> region rewritten.",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runRewrite,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./.autoimport.{yaml,toml,json} if present)")

	rootCmd.Flags().StringVarP(&flagTarget, "target", "t", "src", "directory to rewrite")
	rootCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "d", false, "report files that would change without writing them")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "report every updated file and enable debug logging")
	rootCmd.Flags().BoolVar(&flagCheck, "check", false, "like --dry-run, but exit 1 when any file would change")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 0, "files processed concurrently (default: number of CPUs)")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadConfig resolves configuration relative to the working directory,
// letting the flags of cmd override file and environment values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.Load(flagConfig, wd, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the diagnostic logger. Verbose runs log at debug level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = cfg.Log.Format
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	if cfg.Log.Format == "console" {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// newCatalog returns the configured catalog, or the Nuxt default when the
// configuration lists none.
func newCatalog(cfg *config.Config) (*autoimport.Catalog, error) {
	if len(cfg.Catalog) == 0 {
		return autoimport.DefaultCatalog(), nil
	}
	entries := make([]autoimport.Entry, 0, len(cfg.Catalog))
	for _, e := range cfg.Catalog {
		entries = append(entries, autoimport.Entry{Name: e.Name, From: e.From, Component: e.Component})
	}
	return autoimport.NewCatalog(entries...)
}

// setup loads config and builds the engine and runner shared by commands.
func setup(cmd *cobra.Command) (*config.Config, *autoimport.Runner, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	cat, err := newCatalog(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	engine, err := autoimport.New(autoimport.WithCatalog(cat), autoimport.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating engine: %w", err)
	}
	runner := autoimport.NewRunner(engine, autoimport.RunOptions{
		DryRun:             cfg.DryRunEffective(),
		Verbose:            cfg.Verbose,
		Workers:            cfg.Workers,
		TemplateExtensions: cfg.TemplateExtensions,
		ScriptExtensions:   cfg.ScriptExtensions,
		Reporter:           autoimport.NewReporter(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		Logger:             logger,
	})
	return cfg, runner, logger, nil
}

func runRewrite(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg, runner, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	targetDir, err := resolveTargetDir(cfg.Target)
	if err != nil {
		return err
	}
	if cfg.File != "" {
		logger.Debug("loaded config", zap.String("file", cfg.File))
	}

	summary, err := runner.Run(cmd.Context(), targetDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s in %s\n", formatSummary(summary, cfg.DryRunEffective()),
		time.Since(start).Round(time.Millisecond))

	if cfg.Check && summary.Changed() {
		return errChangesNeeded
	}
	return nil
}

// resolveTargetDir returns the absolute path of the directory to rewrite.
func resolveTargetDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
