package domain

import (
	"bufio"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mouse-blink/portyp/internal/adapter"
	m "github.com/mouse-blink/portyp/internal/model"
)

// LineTerminator ends every line written by the Transformer.
const LineTerminator = "\n"

// maxLineSize bounds a single source line.
const maxLineSize = 4 * 1024 * 1024

// Transformer rewrites the `@local` imports of one source file into its
// mirrored destination.
type Transformer interface {
	// Transform returns the number of rewritten imports. When some imports
	// fail the rest of the file is still written and the error is a *FileError.
	Transform(src, dst m.Path) (int, error)
}

type transformer struct {
	fsAdapter    adapter.SourceFSAdapter
	resolver     Resolver
	materializer Materializer
	packagesDir  string
	logger       *log.Logger
}

// NewTransformer constructs a Transformer.
func NewTransformer(fsAdapter adapter.SourceFSAdapter, resolver Resolver, materializer Materializer, packagesDir string, logger *log.Logger) Transformer {
	return &transformer{
		fsAdapter:    fsAdapter,
		resolver:     resolver,
		materializer: materializer,
		packagesDir:  packagesDir,
		logger:       logger,
	}
}

func (t *transformer) Transform(src, dst m.Path) (rewrites int, err error) {
	info, err := t.fsAdapter.FileInfo(src)
	if err != nil {
		return 0, ioError("stat", src, err)
	}

	in, err := t.fsAdapter.Open(src)
	if err != nil {
		return 0, ioError("open", src, err)
	}

	defer func() { _ = in.Close() }()

	out, err := t.fsAdapter.Create(dst, info.Mode().Perm())
	if err != nil {
		return 0, ioError("create", dst, err)
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = ioError("close", dst, closeErr)
		}
	}()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	writer := bufio.NewWriter(out)

	var failed []*DirectiveError

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line, dirErr := t.transformLine(strings.TrimSuffix(scanner.Text(), "\r"), lineNo)
		if dirErr != nil {
			failed = append(failed, dirErr)
		} else if line.rewritten {
			rewrites++
		}

		if _, err := writer.WriteString(line.text + LineTerminator); err != nil {
			return rewrites, ioError("write", dst, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return rewrites, ioError("read", src, err)
	}

	if err := writer.Flush(); err != nil {
		return rewrites, ioError("write", dst, err)
	}

	if len(failed) > 0 {
		return rewrites, &FileError{Path: src, Directives: failed}
	}

	return rewrites, nil
}

type outputLine struct {
	text      string
	rewritten bool
}

func (t *transformer) transformLine(line string, lineNo int) (outputLine, *DirectiveError) {
	directive, ok := ScanLine(line)
	if !ok {
		return outputLine{text: line}, nil
	}

	loc, err := t.resolver.Resolve(directive.Key())
	if err == nil {
		_, err = t.materializer.Materialize(loc)
	}

	if err != nil {
		t.logger.Warn("could not materialize import", "line", lineNo, "package", directive.Key().String(), "err", err)

		return outputLine{text: FailureMarker(directive)}, &DirectiveError{Line: lineNo, Key: directive.Key(), Err: err}
	}

	rewritten := RewriteImport(loc, directive, t.packagesDir)
	t.logger.Debug("rewrote import", "line", lineNo, "from", strings.TrimSpace(line), "to", rewritten)

	return outputLine{text: rewritten, rewritten: true}, nil
}
