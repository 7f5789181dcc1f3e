package controller

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/mouse-blink/portyp/internal/model"
)

// SimpleUI implements UI with plain text written through the cobra command.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// ConfirmOverwrite reads a y/N answer from the command input. End of input
// counts as no.
func (s *SimpleUI) ConfirmOverwrite(target m.Path) (bool, error) {
	s.printf("The target folder %s already exists. Overwrite? [y/N]: ", target)

	answer, err := bufio.NewReader(s.cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	return isAffirmative(answer), nil
}

// Start prints what the run is about to do.
func (s *SimpleUI) Start(info RunInfo) error {
	s.printf("Mirroring %s -> %s\n", info.Source, info.Target)
	s.printf("Local packages: %s (max depth %d)\n", info.PackageStore, info.MaxDepth)

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {}

// DisplayOutcome prints one line per processed entry.
func (s *SimpleUI) DisplayOutcome(outcome m.Outcome) {
	s.printf("%s\n", formatOutcome(outcome))
}

// DisplaySummary prints the status counts, the copied packages and every failure.
func (s *SimpleUI) DisplaySummary(summary m.Summary) {
	s.printf("\n%s", renderSummaryTables(summary))
	s.printf("%s\n", summaryVerdict(summary))
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func isAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func formatOutcome(outcome m.Outcome) string {
	switch outcome.Status {
	case m.StatusFailed:
		return fmt.Sprintf("%-11s %s: %v", outcome.Status, outcome.Entry.Rel, outcome.Err)
	case m.StatusTransformed:
		return fmt.Sprintf("%-11s %s (%d import(s) rewritten)", outcome.Status, outcome.Entry.Rel, outcome.Rewrites)
	default:
		return fmt.Sprintf("%-11s %s", outcome.Status, outcome.Entry.Rel)
	}
}

// summaryStatuses fixes the row order of the status table.
var summaryStatuses = []m.Status{
	m.StatusCreated,
	m.StatusCopied,
	m.StatusTransformed,
	m.StatusSkipped,
	m.StatusFailed,
}

func renderSummaryTables(summary m.Summary) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Status", "Entries"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, status := range summaryStatuses {
		table.Append([]string{string(status), fmt.Sprintf("%d", summary.Counts[status])})
	}

	table.SetFooter([]string{"Total", fmt.Sprintf("%d", summary.Total())})
	table.Render()

	if len(summary.Packages) > 0 {
		buf.WriteString("\n")

		packages := tablewriter.NewWriter(&buf)
		packages.SetHeader([]string{"Package", "Files", "Size", "Destination"})
		packages.SetBorder(false)
		packages.SetCenterSeparator("")

		for _, pkg := range summary.Packages {
			packages.Append([]string{
				"@local/" + pkg.Key.String(),
				fmt.Sprintf("%d", pkg.Files),
				formatBytes(pkg.Bytes),
				string(pkg.Destination),
			})
		}

		packages.Render()
	}

	if summary.HasFailures() {
		buf.WriteString("\n")

		failures := tablewriter.NewWriter(&buf)
		failures.SetHeader([]string{"Failed entry", "Error"})
		failures.SetBorder(false)
		failures.SetCenterSeparator("")
		failures.SetAutoWrapText(false)

		for _, f := range summary.Failures {
			failures.Append([]string{string(f.Entry.Rel), fmt.Sprintf("%v", f.Err)})
		}

		failures.Render()
	}

	return buf.String()
}
