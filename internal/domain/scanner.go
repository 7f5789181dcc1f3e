// Package domain implements the portyp pipeline: scanning Typst sources for
// `@local` package imports, resolving and copying those packages into the
// project, and mirroring the project tree into the target directory.
package domain

import (
	"regexp"
	"strings"

	m "github.com/mouse-blink/portyp/internal/model"
)

// localImportPattern matches `#import "@local/<name>:<version>"[: <symbols>]`.
// Groups: name, version, full symbol clause, symbol list.
var localImportPattern = regexp.MustCompile(`^\s*#import\s+"@local/([^\s:]+):(\w+\.\w+\.\w+)"\s*(:\s*(.*?))?\s*$`)

// ScanLine parses a line as a local package import. ok is false for every
// line that is not one, including relative and @preview imports.
func ScanLine(line string) (directive m.ImportDirective, ok bool) {
	match := localImportPattern.FindStringSubmatch(line)
	if match == nil {
		return m.ImportDirective{}, false
	}

	symbols := strings.TrimSpace(match[4])
	if match[3] == "" || symbols == "" {
		symbols = m.WildcardSymbols
	}

	return m.ImportDirective{
		Name:    match[1],
		Version: match[2],
		Symbols: symbols,
	}, true
}
