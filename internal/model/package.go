package model

// WildcardSymbols is the symbol clause used when an import names no symbols.
const WildcardSymbols = "*"

// PackageKey identifies a local package.
type PackageKey struct {
	Name    string
	Version string
}

// String renders the key the way it appears inside an import directive.
func (k PackageKey) String() string {
	return k.Name + ":" + k.Version
}

// ImportDirective is a parsed `#import "@local/<name>:<version>"` line.
type ImportDirective struct {
	Name    string
	Version string
	// Symbols is either WildcardSymbols or the trimmed, comma-separated list.
	Symbols string
}

// Key returns the package identity referenced by the directive.
func (d ImportDirective) Key() PackageKey {
	return PackageKey{Name: d.Name, Version: d.Version}
}

// PackageLocation is a resolved package inside the package store.
type PackageLocation struct {
	Key        PackageKey
	Root       Path
	Entrypoint string // relative to Root, read from the manifest
}

// MaterializedPackage is a package copied into the target tree.
type MaterializedPackage struct {
	Key         PackageKey
	Destination Path
	Files       int
	Bytes       int64
}
