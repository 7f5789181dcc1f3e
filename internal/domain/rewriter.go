package domain

import (
	"fmt"
	"path"
	"strings"

	m "github.com/mouse-blink/portyp/internal/model"
)

// RewriteImport renders the project-rooted import for a materialized package:
// `#import "/<packagesDir>/<name>/<version>/<entrypoint>": <symbols>`.
func RewriteImport(loc m.PackageLocation, directive m.ImportDirective, packagesDir string) string {
	// Typst paths always use forward slashes.
	target := "/" + path.Join(packagesDir, loc.Key.Name, loc.Key.Version, strings.ReplaceAll(loc.Entrypoint, `\`, "/"))

	return fmt.Sprintf(`#import "%s": %s`, target, directive.Symbols)
}

// FailureMarker is written in place of an import whose package could not be
// copied. Compiling the output then stops at that line.
func FailureMarker(directive m.ImportDirective) string {
	return fmt.Sprintf(`#panic("portyp: could not materialize @local/%s")`, directive.Key())
}
