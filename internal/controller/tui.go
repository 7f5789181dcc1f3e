package controller

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/mouse-blink/portyp/internal/model"
)

// ErrPromptAborted is returned when the user aborts the overwrite prompt.
var ErrPromptAborted = errors.New("prompt aborted")

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	statusWidth = 12
)

var statusStyles = map[m.Status]lipgloss.Style{
	m.StatusCreated:     dimStyle,
	m.StatusCopied:      dimStyle,
	m.StatusTransformed: okStyle,
	m.StatusSkipped:     warnStyle,
	m.StatusFailed:      failStyle,
}

// TUI implements UI for interactive terminals.
type TUI struct {
	input  io.Reader
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(input io.Reader, output io.Writer) *TUI {
	return &TUI{input: input, output: output}
}

// ConfirmOverwrite runs a Bubble Tea yes/no prompt.
func (t *TUI) ConfirmOverwrite(target m.Path) (bool, error) {
	question := fmt.Sprintf("The target folder %s already exists. Overwrite?", target)

	program := tea.NewProgram(newConfirmModel(question), tea.WithInput(t.input), tea.WithOutput(t.output))

	final, err := program.Run()
	if err != nil {
		return false, err
	}

	result, ok := final.(confirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected prompt model %T", final)
	}

	if result.cancelled {
		return false, ErrPromptAborted
	}

	return result.selection, nil
}

// Start prints the run header.
func (t *TUI) Start(info RunInfo) error {
	_, _ = fmt.Fprintf(t.output, "%s %s %s %s\n",
		titleStyle.Render("portyp"),
		pathStyle.Render(string(info.Source)),
		dimStyle.Render("→"),
		pathStyle.Render(string(info.Target)),
	)
	_, _ = fmt.Fprintf(t.output, "%s\n\n", dimStyle.Render(fmt.Sprintf("local packages: %s · max depth %d", info.PackageStore, info.MaxDepth)))

	return nil
}

// Close finalizes the UI.
func (t *TUI) Close() {}

// DisplayOutcome prints a styled line for one entry.
func (t *TUI) DisplayOutcome(outcome m.Outcome) {
	style, ok := statusStyles[outcome.Status]
	if !ok {
		style = dimStyle
	}

	status := style.Width(statusWidth).Render(string(outcome.Status))

	switch outcome.Status {
	case m.StatusFailed:
		_, _ = fmt.Fprintf(t.output, "%s%s\n%s\n", status, outcome.Entry.Rel, failStyle.UnsetBold().Render(fmt.Sprintf("  %v", outcome.Err)))
	case m.StatusTransformed:
		_, _ = fmt.Fprintf(t.output, "%s%s %s\n", status, outcome.Entry.Rel, dimStyle.Render(fmt.Sprintf("(%d import(s) rewritten)", outcome.Rewrites)))
	default:
		_, _ = fmt.Fprintf(t.output, "%s%s\n", status, outcome.Entry.Rel)
	}
}

// DisplaySummary prints the summary tables and a colored verdict.
func (t *TUI) DisplaySummary(summary m.Summary) {
	_, _ = fmt.Fprintf(t.output, "\n%s\n%s", titleStyle.Render("Summary"), renderSummaryTables(summary))

	verdict := okStyle.Render(summaryVerdict(summary))
	if summary.HasFailures() {
		verdict = failStyle.Render(summaryVerdict(summary))
	}

	_, _ = fmt.Fprintf(t.output, "%s\n", verdict)
}
