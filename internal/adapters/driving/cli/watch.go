package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Sync every batch file dropped into a directory",
	Long: `Watches DIR for new or rewritten .json and .jsonl batch files and syncs
each one once it has stopped changing. Hidden files are ignored.

A failing batch is reported and the watch continues. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requirePipeline(ctx); err != nil {
		return err
	}
	if batchSource == nil {
		return errors.New("batch source not configured")
	}

	paths, errs, err := batchSource.Watch(ctx, args[0])
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s for batch files...\n", args[0])

	for {
		select {
		case <-ctx.Done():
			return nil

		case path, ok := <-paths:
			if !ok {
				return nil
			}
			report, err := syncFile(ctx, path)
			if report != nil {
				if outErr := outputReport(cmd, path, report); outErr != nil {
					return outErr
				}
			}
			if err != nil {
				logger.Error("Sync of %s failed: %v", path, err)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}
