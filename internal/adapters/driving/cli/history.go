package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

var (
	historyDiff string
	historyJSON bool
)

var historyCmd = &cobra.Command{
	Use:   "history URL",
	Short: "Show the stored versions of a document",
	Long: `Lists every stored version of URL, newest first.

With --diff FROM:TO, prints the descriptive fields that differ between two
versions instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyDiff, "diff", "", "compare two versions, as FROM:TO")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := requirePipeline(ctx); err != nil {
		return err
	}
	if historyService == nil {
		return errors.New("history service not configured")
	}
	url := args[0]

	if historyDiff != "" {
		from, to, err := parseDiffRange(historyDiff)
		if err != nil {
			return err
		}
		fields, err := historyService.Diff(ctx, url, from, to)
		if err != nil {
			return fmt.Errorf("diff failed: %w", err)
		}
		return outputDiff(cmd, from, to, fields)
	}

	versions, err := historyService.History(ctx, url)
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}
	return outputHistory(cmd, url, versions)
}

// parseDiffRange parses "FROM:TO" into two version numbers.
func parseDiffRange(s string) (from, to int, err error) {
	left, right, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: diff range %q, expected FROM:TO", domain.ErrInvalidInput, s)
	}
	from, err = strconv.Atoi(strings.TrimSpace(left))
	if err != nil || from < 1 {
		return 0, 0, fmt.Errorf("%w: version %q", domain.ErrInvalidInput, left)
	}
	to, err = strconv.Atoi(strings.TrimSpace(right))
	if err != nil || to < 1 {
		return 0, 0, fmt.Errorf("%w: version %q", domain.ErrInvalidInput, right)
	}
	return from, to, nil
}

func outputDiff(cmd *cobra.Command, from, to int, fields []string) error {
	if historyJSON {
		if fields == nil {
			fields = []string{}
		}
		data, err := json.MarshalIndent(map[string]any{
			"from":           from,
			"to":             to,
			"changed_fields": fields,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal diff: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(fields) == 0 {
		cmd.Printf("No differences between v%d and v%d.\n", from, to)
		return nil
	}
	cmd.Printf("Changed between v%d and v%d:\n", from, to)
	for _, f := range fields {
		cmd.Printf("  %s\n", f)
	}
	return nil
}

func outputHistory(cmd *cobra.Command, url string, versions []domain.VersionRecord) error {
	if historyJSON {
		data, err := json.MarshalIndent(versions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	styles := newReportStyles()
	cmd.Println(styles.Title.Render(url))
	for i := range versions {
		v := &versions[i]
		updated := "-"
		if v.UpdatedAt != nil && *v.UpdatedAt != "" {
			updated = *v.UpdatedAt
		}
		cmd.Printf("  v%-3d updated %-10s  %s  %s\n", v.Version, updated, shortHash(v.ContentHash), v.Status)
		if v.CreatedAt != "" {
			cmd.Println(styles.Muted.Render("       recorded " + v.CreatedAt))
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
