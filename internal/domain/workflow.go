package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gobwas/glob"

	"github.com/mouse-blink/portyp/internal/adapter"
	"github.com/mouse-blink/portyp/internal/controller"
	m "github.com/mouse-blink/portyp/internal/model"
)

// RunArgs are the inputs of a single run.
type RunArgs struct {
	Source          m.Path
	Target          m.Path
	PackageStore    m.Path
	PackagesDir     string
	SourceExtension string
	MaxDepth        int
	Overwrite       bool
	Exclude         []string
}

// Workflow mirrors a project into a self-contained copy.
type Workflow interface {
	// Run returns a fatal error only when the run cannot start (bad source
	// root, declined overwrite, invalid patterns). Entry failures are
	// reported in the summary instead.
	Run(args RunArgs) (m.Summary, error)
}

type workflow struct {
	fsAdapter adapter.SourceFSAdapter
	manifests adapter.ManifestReader
	ui        controller.UI
	logger    *log.Logger
}

// NewWorkflow creates a new Workflow instance with the provided adapters.
func NewWorkflow(fsAdapter adapter.SourceFSAdapter, manifests adapter.ManifestReader, ui controller.UI, logger *log.Logger) Workflow {
	return &workflow{
		fsAdapter: fsAdapter,
		manifests: manifests,
		ui:        ui,
		logger:    logger,
	}
}

// run holds the state owned by one call to Run.
type run struct {
	args           RunArgs
	targetInSource bool
	excludes       []glob.Glob
	transformer    Transformer
	summary        m.Summary
}

func (w *workflow) Run(args RunArgs) (m.Summary, error) {
	args, err := w.normalize(args)
	if err != nil {
		return m.Summary{}, err
	}

	excludes, err := compileExcludes(args.Exclude)
	if err != nil {
		return m.Summary{}, err
	}

	if err := w.checkSource(args.Source); err != nil {
		return m.Summary{}, err
	}

	if err := w.checkTarget(args); err != nil {
		return m.Summary{}, err
	}

	resolver := NewResolver(w.fsAdapter, w.manifests, args.PackageStore, w.logger)
	materializer := NewMaterializer(w.fsAdapter, args.Target, args.PackagesDir, args.MaxDepth, w.logger)

	r := &run{
		args:           args,
		targetInSource: isWithin(args.Target, args.Source),
		excludes:       excludes,
		transformer:    NewTransformer(w.fsAdapter, resolver, materializer, args.PackagesDir, w.logger),
		summary:        m.NewSummary(),
	}

	if err := w.ui.Start(controller.RunInfo{
		Source:       args.Source,
		Target:       args.Target,
		PackageStore: args.PackageStore,
		MaxDepth:     args.MaxDepth,
	}); err != nil {
		return m.Summary{}, fmt.Errorf("start ui: %w", err)
	}

	defer w.ui.Close()

	err = w.fsAdapter.Walk(args.Source, args.MaxDepth, func(path m.Path, info os.FileInfo, depth int, err error) error {
		return w.visit(r, path, info, depth, err)
	})
	if err != nil {
		return r.summary, fmt.Errorf("%w: %w", ErrSourceRoot, err)
	}

	r.summary.Packages = materializer.Packages()
	w.ui.DisplaySummary(r.summary)

	return r.summary, nil
}

func (w *workflow) normalize(args RunArgs) (RunArgs, error) {
	source, err := filepath.Abs(string(args.Source))
	if err != nil {
		return args, fmt.Errorf("%w: %w", ErrSourceRoot, err)
	}

	target, err := filepath.Abs(string(args.Target))
	if err != nil {
		return args, fmt.Errorf("%w: resolve target: %w", ErrIO, err)
	}

	// The root is followed so a linked project is walked; entries below it
	// are not.
	resolved, err := w.fsAdapter.ResolveLinks(m.Path(source))
	if err != nil {
		return args, fmt.Errorf("%w: %w", ErrSourceRoot, err)
	}

	source = string(resolved)

	if source == target {
		return args, fmt.Errorf("%w: source and target are the same directory", ErrSourceRoot)
	}

	args.Source = m.Path(source)
	args.Target = m.Path(target)

	if args.PackagesDir == "" {
		args.PackagesDir = "pckgs"
	}

	if args.SourceExtension == "" {
		args.SourceExtension = ".typ"
	}

	return args, nil
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}

		globs = append(globs, g)
	}

	return globs, nil
}

func (w *workflow) checkSource(source m.Path) error {
	info, err := w.fsAdapter.FileInfo(source)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceRoot, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrSourceRoot, source)
	}

	return nil
}

// checkTarget asks before writing into an existing target. Nothing has been
// written when it returns an error.
func (w *workflow) checkTarget(args RunArgs) error {
	exists, err := w.fsAdapter.Exists(args.Target)
	if err != nil {
		return ioError("stat", args.Target, err)
	}

	if !exists || args.Overwrite {
		return nil
	}

	ok, err := w.ui.ConfirmOverwrite(args.Target)
	if err != nil {
		return fmt.Errorf("%w: confirmation failed: %w", ErrTargetConflict, err)
	}

	if !ok {
		return fmt.Errorf("%w: %s (overwrite declined)", ErrTargetConflict, args.Target)
	}

	return nil
}

func (w *workflow) visit(r *run, path m.Path, info os.FileInfo, depth int, walkErr error) error {
	rel, err := w.fsAdapter.RelPath(r.args.Source, path)
	if err != nil {
		return err
	}

	entry := m.SourceEntry{
		Rel:    rel,
		Source: path,
		Target: w.fsAdapter.JoinPath(string(r.args.Target), string(rel)),
		Depth:  depth,
	}

	if walkErr != nil {
		if depth == 0 && info == nil {
			return walkErr
		}

		w.record(r, m.Outcome{Entry: entry, Status: m.StatusFailed, Err: ioError("read", path, walkErr)})

		return nil
	}

	// The target may live inside the source tree; never mirror it into itself.
	if r.targetInSource && isWithin(path, r.args.Target) {
		w.logger.Debug("skipping target directory inside source", "path", path)

		return skipEntry(info)
	}

	entry.Kind = classify(info, r.args.SourceExtension)

	if depth > 0 && r.excluded(rel) {
		w.record(r, m.Outcome{Entry: entry, Status: m.StatusSkipped})

		return skipEntry(info)
	}

	if !info.IsDir() && !info.Mode().IsRegular() {
		w.logger.Warn("skipping non-regular file", "path", path, "mode", info.Mode().String())
		w.record(r, m.Outcome{Entry: entry, Status: m.StatusSkipped})

		return nil
	}

	outcome := w.dispatch(r, entry)
	w.record(r, outcome)

	if outcome.Status == m.StatusFailed && entry.Kind == m.KindDirectory {
		return adapter.ErrSkipDir
	}

	return nil
}

func (w *workflow) dispatch(r *run, entry m.SourceEntry) m.Outcome {
	outcome := m.Outcome{Entry: entry}

	switch entry.Kind {
	case m.KindDirectory:
		if err := w.fsAdapter.MkdirAll(entry.Target, 0o755); err != nil {
			outcome.Status, outcome.Err = m.StatusFailed, ioError("create directory", entry.Target, err)
		} else {
			outcome.Status = m.StatusCreated
		}
	case m.KindSourceFile:
		rewrites, err := r.transformer.Transform(entry.Source, entry.Target)
		outcome.Rewrites = rewrites

		if err != nil {
			outcome.Status, outcome.Err = m.StatusFailed, err
		} else {
			outcome.Status = m.StatusTransformed
		}
	default:
		if _, err := w.fsAdapter.CopyFile(entry.Source, entry.Target); err != nil {
			outcome.Status, outcome.Err = m.StatusFailed, ioError("copy", entry.Source, err)
		} else {
			outcome.Status = m.StatusCopied
		}
	}

	return outcome
}

func (w *workflow) record(r *run, outcome m.Outcome) {
	if outcome.Status == m.StatusFailed {
		w.logger.Error("entry failed", "path", outcome.Entry.Rel, "err", outcome.Err)
	} else {
		w.logger.Debug("entry processed", "path", outcome.Entry.Rel, "status", outcome.Status)
	}

	r.summary.Record(outcome)
	w.ui.DisplayOutcome(outcome)
}

func (r *run) excluded(rel m.Path) bool {
	slashRel := filepath.ToSlash(string(rel))
	base := filepath.Base(string(rel))

	for _, g := range r.excludes {
		if g.Match(slashRel) || g.Match(base) {
			return true
		}
	}

	return false
}

func classify(info os.FileInfo, sourceExt string) m.EntryKind {
	switch {
	case info.IsDir():
		return m.KindDirectory
	case strings.EqualFold(filepath.Ext(info.Name()), sourceExt):
		return m.KindSourceFile
	default:
		return m.KindOpaqueFile
	}
}

func skipEntry(info os.FileInfo) error {
	if info != nil && info.IsDir() {
		return adapter.ErrSkipDir
	}

	return nil
}

func isWithin(path, dir m.Path) bool {
	rel, err := filepath.Rel(string(dir), string(path))
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
