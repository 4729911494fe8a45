package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autoreqs/pkg/cache"
	"github.com/matzehuels/autoreqs/pkg/config"
	"github.com/matzehuels/autoreqs/pkg/integrations/pypi"
	"github.com/matzehuels/autoreqs/pkg/manifest"
	"github.com/matzehuels/autoreqs/pkg/project"
	"github.com/matzehuels/autoreqs/pkg/pyenv"
	"github.com/matzehuels/autoreqs/pkg/reconcile"
	"github.com/matzehuels/autoreqs/pkg/report"
	"github.com/matzehuels/autoreqs/pkg/resolver"
	"github.com/matzehuels/autoreqs/pkg/scanner"
	"github.com/matzehuels/autoreqs/pkg/stdlib"
)

// Environment is what a run knows about the project's Python installation.
type Environment struct {
	Python     string // "3.12", empty when no interpreter answered
	Classifier *stdlib.Classifier
	Installed  pyenv.Registry
	Mapping    pyenv.Mapping
}

// EnvironmentLoader inspects the Python environment for the project at root.
type EnvironmentLoader func(ctx context.Context, root, python string, logger *log.Logger) (*Environment, error)

// LoadEnvironment finds and queries an interpreter, then snapshots its
// site-packages.
func LoadEnvironment(ctx context.Context, root, python string, logger *log.Logger) (*Environment, error) {
	path, err := pyenv.Find(root, python)
	if err != nil {
		return nil, err
	}
	interp, err := pyenv.Query(ctx, path, logger)
	if err != nil {
		return nil, err
	}
	installed, mapping := pyenv.LoadRegistry(interp.SitePackages...)
	return &Environment{
		Python:     interp.Version.String(),
		Classifier: interp.Classifier(),
		Installed:  installed,
		Mapping:    mapping,
	}, nil
}

// Runner executes sync runs. The cache memoizes index responses for the
// lifetime of the runner.
type Runner struct {
	Cache           cache.Cache
	Logger          *log.Logger
	LoadEnvironment EnvironmentLoader
	HTTPClient      *http.Client // nil selects integrations.NewHTTPClient
}

// Result is the outcome of a run.
type Result struct {
	Report   report.Report
	Manifest manifest.Manifest // manifest contents after reconciliation
}

// NewRunner creates a runner. A nil cache disables memoization; a nil logger
// selects log.Default().
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger, LoadEnvironment: LoadEnvironment}
}

// Execute performs one run. Path errors are returned with
// errors.ErrCodeInvalidPath; a tree without Python files is returned with
// errors.ErrCodeNoSources before anything is scanned or written.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	root, err := project.Validate(opts.Path)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("scanning repository", "path", root)

	cfg := config.Load(root, r.Logger)

	scanStart := time.Now()
	scanned, err := scanner.New(cfg.Exclude, r.Logger).Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	r.Logger.Debug("scanned sources",
		"files", scanned.Files,
		"imports", len(scanned.Imports),
		"skipped", len(scanned.Skipped),
		"duration", time.Since(scanStart))

	env := r.environment(ctx, root, opts.Python)

	manifestPath := filepath.Join(root, opts.ManifestFilename)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	var index *pypi.Client
	if !opts.Offline {
		index = pypi.NewClient(r.Cache, opts.IndexURL).WithLogger(r.Logger)
		if r.HTTPClient != nil {
			index.SetHTTPClient(r.HTTPClient)
		}
	}

	res := resolver.New(env.Mapping, nil, r.Logger)
	in := reconcile.Input{
		Imports:   scanned.Names(),
		Installed: env.Installed,
		Manifest:  m,
		Upgrade:   opts.Upgrade(),
	}
	if index != nil {
		res.Index = index
		in.LatestVersion = index.LatestVersion
	}
	rec := &reconcile.Reconciler{
		Stdlib:   env.Classifier,
		Local:    project.NewDetector(root),
		Resolver: res,
		Logger:   r.Logger,
	}
	changes := rec.Run(ctx, in)

	result := &Result{
		Report: report.Report{
			Command:  opts.Command,
			Root:     root,
			Manifest: manifestPath,
			Python:   env.Python,
			Files:    scanned.Files,
			Skipped:  scanned.Skipped,
			Imports:  scanned.Names(),
			Changes:  changes,
			DryRun:   opts.DryRun,
		},
		Manifest: m,
	}

	if opts.DryRun {
		return result, nil
	}
	if err := manifest.Write(manifestPath, m); err != nil {
		return nil, err
	}
	result.Report.Written = true
	r.Logger.Debug("wrote manifest", "path", manifestPath, "entries", len(m))
	return result, nil
}

// environment inspects the interpreter, degrading to the embedded stdlib
// list and an empty registry when none is usable.
func (r *Runner) environment(ctx context.Context, root, python string) *Environment {
	load := r.LoadEnvironment
	if load == nil {
		load = LoadEnvironment
	}
	env, err := load(ctx, root, python, r.Logger)
	if err != nil || env == nil {
		r.Logger.Warn("python environment unavailable, using built-in stdlib list", "err", err)
		env = &Environment{}
	}
	if env.Classifier == nil {
		env.Classifier = &stdlib.Classifier{Logger: r.Logger}
	}
	if env.Installed == nil {
		env.Installed = pyenv.Registry{}
	}
	return env
}
