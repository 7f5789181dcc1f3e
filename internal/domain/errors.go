package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mouse-blink/portyp/internal/adapter"
	m "github.com/mouse-blink/portyp/internal/model"
)

var (
	// ErrIO wraps open, create and copy failures of a single entry.
	ErrIO = errors.New("i/o error")

	// ErrManifestMissing means a referenced package has no readable manifest.
	ErrManifestMissing = adapter.ErrManifestMissing

	// ErrManifestMalformed means a package manifest cannot be used.
	ErrManifestMalformed = adapter.ErrManifestMalformed

	// ErrTargetConflict means the target exists and overwriting was declined.
	ErrTargetConflict = errors.New("target already exists")

	// ErrSourceRoot means the project root cannot be traversed.
	ErrSourceRoot = errors.New("invalid source root")
)

// DirectiveError is a failed `@local` import inside a source file.
type DirectiveError struct {
	Line int
	Key  m.PackageKey
	Err  error
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("line %d: @local/%s: %v", e.Line, e.Key, e.Err)
}

func (e *DirectiveError) Unwrap() error {
	return e.Err
}

// FileError aggregates every failed directive of one source file.
type FileError struct {
	Path       m.Path
	Directives []*DirectiveError
}

func (e *FileError) Error() string {
	parts := make([]string, 0, len(e.Directives))
	for _, d := range e.Directives {
		parts = append(parts, d.Error())
	}

	return fmt.Sprintf("%s: %d import(s) could not be materialized: %s", e.Path, len(e.Directives), strings.Join(parts, "; "))
}

// Unwrap exposes the directive errors to errors.Is and errors.As.
func (e *FileError) Unwrap() []error {
	errs := make([]error, 0, len(e.Directives))
	for _, d := range e.Directives {
		errs = append(errs, d)
	}

	return errs
}

func ioError(op string, path m.Path, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
