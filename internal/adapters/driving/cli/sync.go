package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var syncJSON bool

var syncCmd = &cobra.Command{
	Use:   "sync FILE...",
	Short: "Sync crawled batch files into the version history",
	Long: `Reads each batch file (.json or .jsonl), normalises its records and
appends a new version for every document whose content changed.

Files are processed in order. The first store error aborts the run unless
sync.continue_on_error is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requirePipeline(ctx); err != nil {
		return err
	}
	if batchSource == nil {
		return errors.New("batch source not configured")
	}

	for _, path := range args {
		report, err := syncFile(ctx, path)
		if report != nil {
			if outErr := outputReport(cmd, path, report); outErr != nil {
				return outErr
			}
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
	}
	return nil
}

// syncFile reads, normalises and processes one batch file.
func syncFile(ctx context.Context, path string) (*domain.SyncReport, error) {
	docs, err := batchSource.ReadBatch(ctx, path)
	if err != nil {
		return nil, err
	}
	if normaliser != nil {
		for i := range docs {
			docs[i] = normaliser.Normalise(docs[i])
		}
	}
	return versionSync.ProcessWithReport(ctx, docs)
}

func outputReport(cmd *cobra.Command, path string, report *domain.SyncReport) error {
	if syncJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	styles := newReportStyles()
	cmd.Println(styles.Title.Render(path))
	for i := range report.Results {
		r := &report.Results[i]
		line := fmt.Sprintf("  %-9s %s", r.Outcome, r.URL)
		switch {
		case r.Outcome == domain.OutcomeInserted && r.Version > 0:
			line += fmt.Sprintf(" (v%d, %s)", r.Version, r.Reason)
		case r.Err != nil:
			line += fmt.Sprintf(" (%v)", r.Err)
		case r.Reason != "":
			line += fmt.Sprintf(" (%s)", r.Reason)
		}
		cmd.Println(styles.outcome(r.Outcome).Render(line))
	}

	summary := fmt.Sprintf("%d documents: %d inserted, %d skipped, %d failed, %d errors in %s",
		len(report.Results),
		report.Count(domain.OutcomeInserted), report.Count(domain.OutcomeSkipped),
		report.Count(domain.OutcomeFailed), report.Count(domain.OutcomeError),
		report.Duration.Round(time.Millisecond))
	if report.SessionID != "" {
		summary += " (session " + report.SessionID + ")"
	}
	cmd.Println(styles.Muted.Render(summary))
	cmd.Println()
	return nil
}
