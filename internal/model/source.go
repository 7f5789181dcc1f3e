// Package model defines the data structures shared by the portyp pipeline.
package model

// Path represents a file system path.
type Path string

// EntryKind classifies a path found while walking a project.
type EntryKind string

const (
	// KindDirectory is a directory mirrored into the target tree.
	KindDirectory EntryKind = "directory"

	// KindSourceFile is a Typst source file whose imports are rewritten.
	KindSourceFile EntryKind = "source"

	// KindOpaqueFile is any other file; it is copied byte for byte.
	KindOpaqueFile EntryKind = "opaque"
)

// SourceEntry is one path produced by the walker.
type SourceEntry struct {
	Rel    Path // relative to the project root, "." for the root itself
	Source Path
	Target Path
	Kind   EntryKind
	Depth  int // root is 0
}
