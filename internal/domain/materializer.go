package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mouse-blink/portyp/internal/adapter"
	m "github.com/mouse-blink/portyp/internal/model"
)

// Materializer copies resolved packages into the target tree.
type Materializer interface {
	// Materialize copies the package into <target>/<packagesDir>/<name>/<version>
	// unless it was already copied during this run. A copy that lacks the
	// entrypoint is an error and is not registered.
	Materialize(loc m.PackageLocation) (m.MaterializedPackage, error)

	// Packages lists the completed copies in the order they finished.
	Packages() []m.MaterializedPackage
}

type materializer struct {
	fsAdapter   adapter.SourceFSAdapter
	targetRoot  m.Path
	packagesDir string
	maxDepth    int
	// done only holds packages whose every file was copied; a failed copy
	// is retried on the next request.
	done   map[m.PackageKey]m.MaterializedPackage
	order  []m.PackageKey
	logger *log.Logger
}

// NewMaterializer constructs a Materializer writing under targetRoot.
func NewMaterializer(fsAdapter adapter.SourceFSAdapter, targetRoot m.Path, packagesDir string, maxDepth int, logger *log.Logger) Materializer {
	return &materializer{
		fsAdapter:   fsAdapter,
		targetRoot:  targetRoot,
		packagesDir: packagesDir,
		maxDepth:    maxDepth,
		done:        make(map[m.PackageKey]m.MaterializedPackage),
		logger:      logger,
	}
}

func (mt *materializer) Materialize(loc m.PackageLocation) (m.MaterializedPackage, error) {
	if pkg, ok := mt.done[loc.Key]; ok {
		mt.logger.Debug("package already materialized", "package", loc.Key.String())

		return pkg, nil
	}

	dest := mt.fsAdapter.JoinPath(string(mt.targetRoot), mt.packagesDir, loc.Key.Name, loc.Key.Version)
	pkg := m.MaterializedPackage{Key: loc.Key, Destination: dest}
	copied := make(map[m.Path]bool)

	// Locally developed packages are usually symlinked into the store.
	root, err := mt.fsAdapter.ResolveLinks(loc.Root)
	if err != nil {
		return m.MaterializedPackage{}, fmt.Errorf("materialize %s: %w", loc.Key, ioError("resolve", loc.Root, err))
	}

	err = mt.fsAdapter.Walk(root, mt.maxDepth, func(path m.Path, info os.FileInfo, _ int, err error) error {
		if err != nil {
			return ioError("read", path, err)
		}

		rel, err := mt.fsAdapter.RelPath(root, path)
		if err != nil {
			return ioError("resolve", path, err)
		}

		target := mt.fsAdapter.JoinPath(string(dest), string(rel))

		switch {
		case info.IsDir():
			if err := mt.fsAdapter.MkdirAll(target, 0o755); err != nil {
				return ioError("create directory", target, err)
			}
		case info.Mode().IsRegular():
			written, err := mt.fsAdapter.CopyFile(path, target)
			if err != nil {
				return ioError("copy", path, err)
			}

			pkg.Files++
			pkg.Bytes += written
			copied[rel] = true
		default:
			mt.logger.Debug("skipping non-regular package entry", "path", path, "mode", info.Mode().String())
		}

		return nil
	})
	if err != nil {
		return m.MaterializedPackage{}, fmt.Errorf("materialize %s: %w", loc.Key, err)
	}

	// Only files copied by this walk count; the target may predate the run.
	entrypoint := m.Path(filepath.Clean(filepath.FromSlash(strings.ReplaceAll(loc.Entrypoint, `\`, "/"))))
	if !copied[entrypoint] {
		return m.MaterializedPackage{}, fmt.Errorf("materialize %s: %w: entrypoint %s was not copied (not a regular file or deeper than max depth %d)",
			loc.Key, ErrIO, loc.Entrypoint, mt.maxDepth)
	}

	mt.done[loc.Key] = pkg
	mt.order = append(mt.order, loc.Key)

	mt.logger.Info("materialized package", "package", loc.Key.String(), "files", pkg.Files, "dest", dest)

	return pkg, nil
}

func (mt *materializer) Packages() []m.MaterializedPackage {
	packages := make([]m.MaterializedPackage, 0, len(mt.order))
	for _, key := range mt.order {
		packages = append(packages, mt.done[key])
	}

	return packages
}
