package adapter

import (
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	m "github.com/mouse-blink/portyp/internal/model"
)

// ManifestFile is the name of the manifest inside every package root.
const ManifestFile = "typst.toml"

var (
	// ErrManifestMissing means the manifest file could not be opened.
	ErrManifestMissing = errors.New("package manifest missing")

	// ErrManifestMalformed means the manifest could not be decoded or lacks
	// the entrypoint field.
	ErrManifestMalformed = errors.New("package manifest malformed")
)

// Manifest is the subset of typst.toml that portyp consumes.
type Manifest struct {
	Package PackageSection `toml:"package"`
}

// PackageSection is the [package] table of a manifest.
type PackageSection struct {
	Name       string `toml:"name"`
	Version    string `toml:"version"`
	Entrypoint string `toml:"entrypoint"`
}

// ManifestReader loads package manifests.
type ManifestReader interface {
	Read(packageRoot m.Path) (Manifest, error)
}

type tomlManifestReader struct {
	fsAdapter SourceFSAdapter
}

// NewManifestReader constructs a ManifestReader that reads typst.toml through
// the given filesystem adapter.
func NewManifestReader(fsAdapter SourceFSAdapter) ManifestReader {
	return &tomlManifestReader{fsAdapter: fsAdapter}
}

// Read opens <packageRoot>/typst.toml and decodes it.
func (r *tomlManifestReader) Read(packageRoot m.Path) (Manifest, error) {
	path := r.fsAdapter.JoinPath(string(packageRoot), ManifestFile)

	f, err := r.fsAdapter.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %s: %w", ErrManifestMissing, path, err)
	}

	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %s: %w", ErrManifestMissing, path, err)
	}

	return DecodeManifest(string(path), data)
}

// DecodeManifest parses manifest content. source is only used in errors.
func DecodeManifest(source string, data []byte) (Manifest, error) {
	var manifest Manifest
	if _, err := toml.Decode(string(data), &manifest); err != nil {
		return Manifest{}, fmt.Errorf("%w: %s: %w", ErrManifestMalformed, source, err)
	}

	if manifest.Package.Entrypoint == "" {
		return Manifest{}, fmt.Errorf("%w: %s: [package] has no entrypoint", ErrManifestMalformed, source)
	}

	return manifest, nil
}
