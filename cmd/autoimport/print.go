package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagStdinPath string

var printCmd = &cobra.Command{
	Use:   "print [file]",
	Short: "Print a file with explicit imports added, without writing it",
	Long: "Rewrites one file in memory and prints the result to stdout. With no argument the " +
		"content is read from stdin and --stdin-path decides how it is treated.",
	Args: cobra.MaximumNArgs(1),
	RunE: runPrint,
}

func init() {
	printCmd.Flags().StringVar(&flagStdinPath, "stdin-path", "stdin.ts", "file name used to classify stdin content")
}

func runPrint(cmd *cobra.Command, args []string) error {
	_, runner, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	path := flagStdinPath
	var data []byte
	if len(args) == 1 {
		path = args[0]
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	out, _, ok := runner.Rewrite(cmd.Context(), path, string(data))
	if !ok {
		logger.Debug("nothing to rewrite", zap.String("path", path))
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}
