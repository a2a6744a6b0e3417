package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	blockdupes "github.com/mattkeenan/blockdupes/pkg"
)

var (
	// Version information (set by ldflags during build)
	version = "dev"
)

// Exit statuses
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfigError = 2
)

func main() {
	ctx, cancel := setupSignalHandler()
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// execute runs the command line and returns the process exit status
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "bdupes: %v\n", err)
		if blockdupes.IsConfigurationError(err) {
			fmt.Fprintf(stderr, "Try 'bdupes --help' for more information.\n")
			return exitConfigError
		}
		return exitFailure
	}
	return exitOK
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "bdupes [flags] [dir...]",
		Short: "Find duplicate files by block-incremental hashing",
		Long: `bdupes - find duplicate files across directory trees.

Files are compared pairwise one block at a time; a comparison stops at the
first block whose hash differs, so most non-duplicates cost a single block
of I/O. Directories given as arguments replace --scandirs.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := buildSettings(cmd, opts, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd.OutOrStdout(), opts.output, settings)
		},
	}

	opts.register(cmd.Flags())
	return cmd
}

// run finds duplicates and writes the report. An interrupted run still
// reports the groups completed before the interruption.
func run(ctx context.Context, stdout io.Writer, outputPath string, settings *blockdupes.Settings) error {
	blockdupes.SetVerboseLevel(settings.VerboseLevel)
	blockdupes.SetDebugFlags(settings.Debug)

	out := stdout
	if outputPath != "" && outputPath != "-" {
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	result, runErr := blockdupes.FindDuplicates(ctx, settings)
	if result == nil {
		return runErr
	}

	if err := blockdupes.WriteReport(out, settings.Format, blockdupes.NewReport(result)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if n := len(result.ScanErrors); n > 0 {
		blockdupes.VerboseLog(1, "%d paths could not be scanned", n)
	}
	return runErr
}
