package domain

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/portyp/internal/controller"
	m "github.com/mouse-blink/portyp/internal/model"
)

const examplesDir = "../../examples"

func examplePath(elem ...string) string {
	return filepath.Join(append([]string{examplesDir}, elem...)...)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// copyExampleDir copies an example tree so tests can modify it freely.
func copyExampleDir(t *testing.T, src, dst string) {
	t.Helper()

	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		return os.WriteFile(target, data, info.Mode().Perm())
	})
	require.NoError(t, err)
}

// treeDigests maps every path under root to a SHA-256 digest, or "dir".
func treeDigests(t *testing.T, root string) map[string]string {
	t.Helper()

	digests := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			digests[filepath.ToSlash(rel)] = "dir"
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		digests[filepath.ToSlash(rel)] = fmt.Sprintf("%x", sha256.Sum256(data))

		return nil
	})
	require.NoError(t, err)

	return digests
}

func readString(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

// recordingUI answers the overwrite prompt with a fixed value and keeps
// everything it is asked to display.
type recordingUI struct {
	answer     bool
	confirmErr error
	asked      int
	started    bool
	closed     bool
	outcomes   []m.Outcome
	summaries  []m.Summary
}

var _ controller.UI = (*recordingUI)(nil)

func (u *recordingUI) ConfirmOverwrite(m.Path) (bool, error) {
	u.asked++
	return u.answer, u.confirmErr
}

func (u *recordingUI) Start(controller.RunInfo) error {
	u.started = true
	return nil
}

func (u *recordingUI) Close() { u.closed = true }

func (u *recordingUI) DisplayOutcome(o m.Outcome) { u.outcomes = append(u.outcomes, o) }

func (u *recordingUI) DisplaySummary(s m.Summary) { u.summaries = append(u.summaries, s) }

func (u *recordingUI) outcomeFor(rel string) (m.Outcome, bool) {
	for _, o := range u.outcomes {
		if filepath.ToSlash(string(o.Entry.Rel)) == rel {
			return o, true
		}
	}

	return m.Outcome{}, false
}
