package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// Colour palette shared by command output.
var (
	colourPrimary = lipgloss.Color("#7C3AED") // Purple
	colourMuted   = lipgloss.Color("#6C7086") // Medium gray
	colourSuccess = lipgloss.Color("#A6E3A1") // Green
	colourWarning = lipgloss.Color("#F9E2AF") // Yellow
	colourError   = lipgloss.Color("#F38BA8") // Red
)

// reportStyles renders the sync and history reports.
type reportStyles struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Inserted lipgloss.Style
	Skipped  lipgloss.Style
	Failed   lipgloss.Style
	Error    lipgloss.Style
}

func newReportStyles() reportStyles {
	return reportStyles{
		Title:    lipgloss.NewStyle().Foreground(colourPrimary).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(colourMuted),
		Inserted: lipgloss.NewStyle().Foreground(colourSuccess),
		Skipped:  lipgloss.NewStyle().Foreground(colourMuted),
		Failed:   lipgloss.NewStyle().Foreground(colourWarning),
		Error:    lipgloss.NewStyle().Foreground(colourError).Bold(true),
	}
}

// outcome returns the style for a document outcome.
func (s reportStyles) outcome(o domain.Outcome) lipgloss.Style {
	switch o {
	case domain.OutcomeInserted:
		return s.Inserted
	case domain.OutcomeFailed:
		return s.Failed
	case domain.OutcomeError:
		return s.Error
	default:
		return s.Skipped
	}
}
