// Package controller provides the user-facing side of a portyp run: the
// overwrite confirmation prompt, per-entry progress and the final summary.
package controller

import (
	m "github.com/mouse-blink/portyp/internal/model"
)

// RunInfo describes a run before it starts.
type RunInfo struct {
	Source       m.Path
	Target       m.Path
	PackageStore m.Path
	MaxDepth     int
}

// UI defines how a run talks to the user.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	// ConfirmOverwrite asks whether an existing target may be written into.
	ConfirmOverwrite(target m.Path) (bool, error)
	Start(info RunInfo) error
	Close()
	DisplayOutcome(outcome m.Outcome)
	DisplaySummary(summary m.Summary)
}
