// Package cmd provides the root command and CLI setup for portyp.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mouse-blink/portyp/internal/adapter"
	"github.com/mouse-blink/portyp/internal/config"
	"github.com/mouse-blink/portyp/internal/controller"
	"github.com/mouse-blink/portyp/internal/domain"
	m "github.com/mouse-blink/portyp/internal/model"
)

// newWorkflow builds the workflow for a run. Tests replace it.
var newWorkflow = func(ui controller.UI, logger *log.Logger) domain.Workflow {
	fsAdapter := adapter.NewLocalSourceFSAdapter()

	return domain.NewWorkflow(fsAdapter, adapter.NewManifestReader(fsAdapter), ui, logger)
}

// newUI picks the UI for the command output. Tests replace it.
var newUI = func(cmd *cobra.Command) controller.UI {
	return controller.NewUI(cmd, controller.IsTTY(cmd.OutOrStdout()))
}

var configFlag string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

const rootLongDescription = `portyp makes a Typst project self-contained.

It mirrors <source> into <target>. Every .typ file is scanned for imports of
locally installed packages such as

  #import "@local/letter:1.0.0": *

Each referenced package is copied once into <target>/pckgs/<name>/<version>
and the import is rewritten to the project-rooted path

  #import "/pckgs/letter/1.0.0/lib.typ": *

All other files are copied byte for byte. The local package store is
discovered from $XDG_DATA_HOME (or ~/.local/share) on Linux,
~/Library/Application Support on macOS and %APPDATA% on Windows.

Settings can also come from .portyp.yaml or PORTYP_* environment variables.

Exit status is 0 on success, 1 when some entries failed and 2 when the run
could not start.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "portyp <source> <target>",
		Short:         "Copy local Typst packages into a project and rewrite their imports",
		Long:          rootLongDescription,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	cmd.Flags().StringVar(&configFlag, "config", "", "config file (default .portyp.yaml in the working or home directory)")
	cmd.Flags().BoolP("overwrite", "y", false, "write into an existing target without asking")
	cmd.Flags().Int("max-depth", config.DefaultMaxDepth, "maximum directory depth to traverse")
	cmd.Flags().String("packages-dir", config.DefaultPackagesDir, "folder inside the target that receives copied packages")
	cmd.Flags().String("package-store", "", "local package store (default derived from the operating system)")
	cmd.Flags().StringArrayP("exclude", "x", nil, "skip entries matching a glob (can be repeated)")
	cmd.Flags().BoolP("verbose", "v", false, "enable debug logging")

	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFlag, Flags: cmd.Flags()})
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	logger.Debug("configuration loaded", "store", cfg.PackageStore, "max_depth", cfg.MaxDepth, "packages_dir", cfg.PackagesDir)

	summary, err := newWorkflow(newUI(cmd), logger).Run(domain.RunArgs{
		Source:          m.Path(args[0]),
		Target:          m.Path(args[1]),
		PackageStore:    cfg.Store(),
		PackagesDir:     cfg.PackagesDir,
		SourceExtension: cfg.SourceExtension,
		MaxDepth:        cfg.MaxDepth,
		Overwrite:       cfg.Overwrite,
		Exclude:         cfg.Exclude,
	})
	if err != nil {
		return &ExitError{Code: ExitFatal, Err: err}
	}

	if summary.HasFailures() {
		return &ExitError{
			Code: ExitEntryFailures,
			Err:  fmt.Errorf("%d of %d entries failed", len(summary.Failures), summary.Total()),
		}
	}

	return nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Prefix: "portyp",
		Level:  level,
	})
}

// Execute runs the root command and exits with its status.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	os.Exit(exitCode(err))
}
