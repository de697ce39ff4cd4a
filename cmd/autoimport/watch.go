package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/autoimport"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rewrite the target once, then keep rewriting files as they are saved",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&flagTarget, "target", "t", "src", "directory to watch")
	watchCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "report every updated file and enable debug logging")
	watchCmd.Flags().IntVar(&flagWorkers, "workers", 0, "files processed concurrently (default: number of CPUs)")
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", autoimport.DefaultDebounce, "quiet period before a batch of saved files is processed")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, runner, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	targetDir, err := resolveTargetDir(cfg.Target)
	if err != nil {
		return err
	}

	summary, err := runner.Run(cmd.Context(), targetDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), formatSummary(summary, cfg.DryRunEffective()))

	return runner.Watch(cmd.Context(), targetDir, autoimport.WatchOptions{
		Debounce: flagDebounce,
		OnStart: func() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n", targetDir)
		},
		OnBatch: func(_ []string, s autoimport.Summary) {
			if s.Changed() || s.Failed > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), formatSummary(s, cfg.DryRunEffective()))
			}
		},
	})
}
