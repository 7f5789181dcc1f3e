package domain

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mouse-blink/portyp/internal/adapter"
	m "github.com/mouse-blink/portyp/internal/model"
)

// Resolver locates local packages inside the package store.
type Resolver interface {
	Resolve(key m.PackageKey) (m.PackageLocation, error)
}

type resolution struct {
	loc m.PackageLocation
	err error
}

type resolver struct {
	fsAdapter adapter.SourceFSAdapter
	manifests adapter.ManifestReader
	store     m.Path
	cache     map[m.PackageKey]resolution
	logger    *log.Logger
}

// NewResolver constructs a Resolver for the store rooted at store. Results,
// failures included, are cached for the resolver's lifetime.
func NewResolver(fsAdapter adapter.SourceFSAdapter, manifests adapter.ManifestReader, store m.Path, logger *log.Logger) Resolver {
	return &resolver{
		fsAdapter: fsAdapter,
		manifests: manifests,
		store:     store,
		cache:     make(map[m.PackageKey]resolution),
		logger:    logger,
	}
}

// Resolve returns the package root <store>/<name>/<version> and the
// entrypoint declared in its manifest.
func (r *resolver) Resolve(key m.PackageKey) (m.PackageLocation, error) {
	if cached, ok := r.cache[key]; ok {
		return cached.loc, cached.err
	}

	loc, err := r.resolve(key)
	r.cache[key] = resolution{loc: loc, err: err}

	return loc, err
}

func (r *resolver) resolve(key m.PackageKey) (m.PackageLocation, error) {
	if !validPathElement(key.Name) || !validPathElement(key.Version) {
		return m.PackageLocation{}, fmt.Errorf("%w: %q is not a valid local package reference", ErrManifestMissing, key.String())
	}

	root := r.fsAdapter.JoinPath(string(r.store), key.Name, key.Version)

	manifest, err := r.manifests.Read(root)
	if err != nil {
		return m.PackageLocation{}, err
	}

	entrypoint := manifest.Package.Entrypoint
	if !validEntrypoint(entrypoint) {
		return m.PackageLocation{}, fmt.Errorf("%w: entrypoint %q escapes the package root", ErrManifestMalformed, entrypoint)
	}

	r.logger.Debug("resolved package", "package", key.String(), "root", root, "entrypoint", entrypoint)

	return m.PackageLocation{
		Key:        key,
		Root:       root,
		Entrypoint: entrypoint,
	}, nil
}

func validPathElement(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func validEntrypoint(entrypoint string) bool {
	if strings.HasPrefix(entrypoint, "/") || strings.HasPrefix(entrypoint, `\`) {
		return false
	}

	for _, part := range strings.FieldsFunc(entrypoint, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}

	return true
}
