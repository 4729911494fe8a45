package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/autoreqs/pkg/errors"
	"github.com/matzehuels/autoreqs/pkg/integrations/pypi"
	"github.com/matzehuels/autoreqs/pkg/manifest"
	"github.com/matzehuels/autoreqs/pkg/pipeline"
	"github.com/matzehuels/autoreqs/pkg/report"
)

// syncOptions holds the flags shared by scan, update and upgrade.
type syncOptions struct {
	dryRun   bool
	format   string
	manifest string
	python   string
	offline  bool
	indexURL string
}

func (c *CLI) scanCommand() *cobra.Command {
	return c.syncCommand(pipeline.CommandScan,
		"Scan a project and sync requirements.txt with its imports",
		`Scan walks the project, collects third-party imports and brings
requirements.txt in line: missing packages are added with the installed
version (or the latest release on PyPI), unused ones are removed.`)
}

func (c *CLI) updateCommand() *cobra.Command {
	return c.syncCommand(pipeline.CommandUpdate,
		"Update requirements.txt after code changes",
		`Update performs the same reconciliation as scan. Use it after adding or
removing imports to refresh requirements.txt.`)
}

func (c *CLI) upgradeCommand() *cobra.Command {
	return c.syncCommand(pipeline.CommandUpgrade,
		"Sync requirements.txt and re-pin existing requirements",
		`Upgrade reconciles like update and additionally moves every pinned
requirement to the installed version, or to the latest release on PyPI when
the package is not installed. Unpinned requirements stay unpinned.`)
}

func (c *CLI) syncCommand(name, short, long string) *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   name + " <path>",
		Short: short,
		Long:  long,
		Example: fmt.Sprintf(`  %[1]s %[2]s .
  %[1]s %[2]s ./service --dry-run
  %[1]s %[2]s . --format json --offline`, appName, name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd, name, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show changes without writing the manifest")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(report.FormatText), "output format: text, json, yaml")
	cmd.Flags().StringVar(&opts.manifest, "manifest", manifest.DefaultFileName, "manifest file name at the project root")
	cmd.Flags().StringVar(&opts.python, "python", "", "python interpreter to inspect (default: project venv, $AUTOREQS_PYTHON, python3)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "never query the package index")
	cmd.Flags().StringVar(&opts.indexURL, "index-url", pypi.DefaultBaseURL, "PyPI JSON API root")

	return cmd
}

func (c *CLI) runSync(cmd *cobra.Command, command, path string, opts syncOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	prog := newProgress(c.Logger)
	var spin *spinner
	if !opts.offline && c.Logger.GetLevel() > LogDebug && interactive(cmd.ErrOrStderr()) {
		spin = newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Resolving imports...")
		c.Logger.SetOutput(spin)
		spin.start()
	}
	result, err := c.newRunner().Execute(cmd.Context(), pipeline.Options{
		Command:          command,
		Path:             path,
		ManifestFilename: opts.manifest,
		Python:           opts.python,
		IndexURL:         opts.indexURL,
		Offline:          opts.offline,
		DryRun:           opts.dryRun,
	})
	if spin != nil {
		spin.stop()
		c.Logger.SetOutput(cmd.ErrOrStderr())
	}
	if errors.Is(err, errors.ErrCodeNoSources) {
		printInfo(out, "No Python files found in target directory.")
		return nil
	}
	if err != nil {
		return err
	}
	rep := result.Report
	prog.done(fmt.Sprintf("Reconciled %d imports from %d files", len(rep.Imports), rep.Files))

	data, err := report.Render(rep, format)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	if format != report.FormatText {
		return nil
	}

	if len(rep.Skipped) > 0 {
		printNewline(out)
		printWarning(out, "Skipped %d unparsable %s", len(rep.Skipped), pluralize(len(rep.Skipped), "file"))
		for _, file := range rep.Skipped {
			printDetail(out, "%s", file)
		}
	}
	if rep.Written {
		printNewline(out)
		printSuccess(out, "Manifest written")
		printFile(out, rep.Manifest)
	}
	return nil
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
