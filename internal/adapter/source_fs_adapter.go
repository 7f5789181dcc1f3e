// Package adapter contains the infrastructure adapters used by the portyp
// pipeline: filesystem access and package manifest decoding.
package adapter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	m "github.com/mouse-blink/portyp/internal/model"
)

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when mirroring projects. It hides direct `os` access so the
// pipeline can run against an in-memory filesystem in tests.
//
//nolint:interfacebloat // A richer interface keeps pipeline logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Walk traverses root in lexical order, parents before children, and never
	// descends below maxDepth (root is depth 0). Entries at maxDepth are still
	// visited.
	Walk(root m.Path, maxDepth int, fn WalkFunc) error

	// FileInfo returns metadata for a path without following symlinks.
	FileInfo(path m.Path) (os.FileInfo, error)

	// ResolveLinks follows symlinks at path until it names a non-link entry.
	ResolveLinks(path m.Path) (m.Path, error)

	// Exists reports whether path exists.
	Exists(path m.Path) (bool, error)

	// Open opens a file for reading.
	Open(path m.Path) (afero.File, error)

	// Create creates or truncates a file for writing, creating parent
	// directories as needed.
	Create(path m.Path, perm os.FileMode) (afero.File, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path m.Path, perm os.FileMode) error

	// CopyFile copies src to dst byte for byte and returns the bytes written.
	CopyFile(src, dst m.Path) (int64, error)

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// WalkFunc is called for every visited path. depth is the number of path
// elements between the walk root and path.
type WalkFunc func(path m.Path, info os.FileInfo, depth int, err error) error

// maxLinkHops bounds symlink chains followed by ResolveLinks.
const maxLinkHops = 40

// ErrSkipDir can be returned by a WalkFunc to skip the current directory.
var ErrSkipDir = filepath.SkipDir

// LocalSourceFSAdapter implements SourceFSAdapter on top of an afero.Fs.
type LocalSourceFSAdapter struct {
	fs afero.Fs
}

// NewLocalSourceFSAdapter constructs an adapter backed by the real filesystem.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return NewSourceFSAdapter(afero.NewOsFs())
}

// NewSourceFSAdapter constructs an adapter backed by the given filesystem.
func NewSourceFSAdapter(fs afero.Fs) *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{fs: fs}
}

// Walk iterates over entries under root up to maxDepth.
func (a *LocalSourceFSAdapter) Walk(root m.Path, maxDepth int, fn WalkFunc) error {
	rootStr := filepath.Clean(string(root))

	return afero.Walk(a.fs, rootStr, func(path string, info os.FileInfo, err error) error {
		depth := pathDepth(rootStr, path)

		if err != nil {
			return fn(m.Path(path), info, depth, err)
		}

		if depth > maxDepth {
			if info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if err := fn(m.Path(path), info, depth, nil); err != nil {
			return err
		}

		if info.IsDir() && depth == maxDepth && path != rootStr {
			return filepath.SkipDir
		}

		return nil
	})
}

// FileInfo returns metadata for path, using Lstat when the filesystem supports it.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	if lstater, ok := a.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(string(path))

		return info, err
	}

	return a.fs.Stat(string(path))
}

// ResolveLinks returns path with its final element resolved through any
// chain of symlinks. Filesystems without link support return path unchanged.
func (a *LocalSourceFSAdapter) ResolveLinks(path m.Path) (m.Path, error) {
	lstater, ok := a.fs.(afero.Lstater)
	if !ok {
		return path, nil
	}

	reader, ok := a.fs.(afero.LinkReader)
	if !ok {
		return path, nil
	}

	current := filepath.Clean(string(path))

	for range maxLinkHops {
		info, _, err := lstater.LstatIfPossible(current)
		if err != nil {
			return "", err
		}

		if info.Mode()&os.ModeSymlink == 0 {
			return m.Path(current), nil
		}

		target, err := reader.ReadlinkIfPossible(current)
		if err != nil {
			return "", err
		}

		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}

		current = filepath.Clean(target)
	}

	return "", fmt.Errorf("%s: too many levels of symbolic links", path)
}

// Exists reports whether path exists.
func (a *LocalSourceFSAdapter) Exists(path m.Path) (bool, error) {
	return afero.Exists(a.fs, string(path))
}

// Open opens a file for reading.
func (a *LocalSourceFSAdapter) Open(path m.Path) (afero.File, error) {
	return a.fs.Open(string(path))
}

// Create creates or truncates path, creating its parent directories first.
func (a *LocalSourceFSAdapter) Create(path m.Path, perm os.FileMode) (afero.File, error) {
	if err := a.fs.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return nil, err
	}

	// #nosec G304 - path is derived from the user-selected target tree
	return a.fs.OpenFile(string(path), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
}

// MkdirAll creates a directory and any missing parents.
func (a *LocalSourceFSAdapter) MkdirAll(path m.Path, perm os.FileMode) error {
	return a.fs.MkdirAll(string(path), perm)
}

// CopyFile copies a single file, preserving its permission bits.
func (a *LocalSourceFSAdapter) CopyFile(src, dst m.Path) (written int64, err error) {
	info, err := a.fs.Stat(string(src))
	if err != nil {
		return 0, err
	}

	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", src)
	}

	// #nosec G304 - src is a project or package file chosen by the walker
	sourceFile, err := a.fs.Open(string(src))
	if err != nil {
		return 0, err
	}

	defer func() { _ = sourceFile.Close() }()

	destFile, err := a.Create(dst, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	written, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return written, err
	}

	if written != info.Size() {
		return written, fmt.Errorf("short copy of %s: wrote %d of %d bytes", src, written, info.Size())
	}

	return written, nil
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}

	return strings.Count(rel, string(filepath.Separator)) + 1
}
