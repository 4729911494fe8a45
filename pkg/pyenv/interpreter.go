package pyenv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autoreqs/pkg/errors"
	"github.com/matzehuels/autoreqs/pkg/stdlib"
)

// EnvPython names the environment variable consulted for an interpreter
// when the project has no virtual environment.
const EnvPython = "AUTOREQS_PYTHON"

const queryScript = `import json, site, sys, sysconfig
p = sysconfig.get_paths()
dirs = [d for d in sys.path if d.endswith(("site-packages", "dist-packages"))]
for d in (p.get("purelib"), p.get("platlib")):
    if d and d not in dirs:
        dirs.append(d)
print(json.dumps({
    "version": "%d.%d" % sys.version_info[:2],
    "stdlib": p.get("stdlib", ""),
    "purelib": p.get("purelib", ""),
    "platlib": p.get("platlib", ""),
    "site_packages": dirs,
    "stdlib_names": sorted(getattr(sys, "stdlib_module_names", ())),
    "builtins": sorted(sys.builtin_module_names),
}))
`

const originScript = `import importlib.util, sys
spec = importlib.util.find_spec(sys.argv[1])
print(spec.origin if spec is not None and spec.origin else "")
`

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 -- the interpreter path comes from discovery or an explicit flag.
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Interpreter describes a queried Python interpreter.
type Interpreter struct {
	Path         string
	Version      stdlib.Version
	Paths        stdlib.Paths
	SitePackages []string
	StdlibNames  map[string]bool // empty before Python 3.10
	Builtins     map[string]bool

	run    runFunc
	logger *log.Logger
}

type queryResult struct {
	Version      string   `json:"version"`
	Stdlib       string   `json:"stdlib"`
	Purelib      string   `json:"purelib"`
	Platlib      string   `json:"platlib"`
	SitePackages []string `json:"site_packages"`
	StdlibNames  []string `json:"stdlib_names"`
	Builtins     []string `json:"builtins"`
}

// Find locates a Python interpreter for the project at root. An explicit
// path wins; otherwise the project's .venv or venv interpreter, then
// $AUTOREQS_PYTHON, then python3 and python on PATH.
func Find(root, explicit string) (string, error) {
	if explicit != "" {
		path, err := exec.LookPath(explicit)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInterpreterNotFound, err, "python interpreter %q not usable", explicit)
		}
		return path, nil
	}
	for _, venv := range []string{".venv", "venv"} {
		if path := venvPython(filepath.Join(root, venv)); path != "" {
			return path, nil
		}
	}
	if env := os.Getenv(EnvPython); env != "" {
		if path, err := exec.LookPath(env); err == nil {
			return path, nil
		}
	}
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errors.New(errors.ErrCodeInterpreterNotFound, "no python interpreter found")
}

func venvPython(dir string) string {
	candidates := []string{filepath.Join(dir, "bin", "python3"), filepath.Join(dir, "bin", "python")}
	if runtime.GOOS == "windows" {
		candidates = []string{filepath.Join(dir, "Scripts", "python.exe")}
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Query runs the interpreter at path once and records what it reports.
func Query(ctx context.Context, path string, logger *log.Logger) (*Interpreter, error) {
	return query(ctx, path, execRun, logger)
}

func query(ctx context.Context, path string, run runFunc, logger *log.Logger) (*Interpreter, error) {
	if logger == nil {
		logger = log.Default()
	}
	out, err := run(ctx, path, "-c", queryScript)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInterpreterNotFound, err, "query python interpreter %s", path)
	}
	var res queryResult
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode interpreter report")
	}
	version, err := stdlib.ParseVersion(res.Version)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "interpreter version")
	}
	interp := &Interpreter{
		Path:         path,
		Version:      version,
		Paths:        stdlib.Paths{Stdlib: res.Stdlib, Purelib: res.Purelib, Platlib: res.Platlib},
		SitePackages: res.SitePackages,
		StdlibNames:  toSet(res.StdlibNames),
		Builtins:     toSet(res.Builtins),
		run:          run,
		logger:       logger,
	}
	logger.Debug("python interpreter", "path", path, "version", version, "site_packages", len(res.SitePackages))
	return interp, nil
}

// Origin reports where name would be imported from, or "" when the module
// cannot be found. Isolated mode keeps the working directory off sys.path.
func (i *Interpreter) Origin(ctx context.Context, name string) (string, error) {
	out, err := i.run(ctx, i.Path, "-I", "-c", originScript, name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Classifier returns a stdlib classifier backed by this interpreter's
// module names and origin lookups.
func (i *Interpreter) Classifier() *stdlib.Classifier {
	c := &stdlib.Classifier{
		Version:  i.Version,
		Builtins: i.Builtins,
		Paths:    i.Paths,
		Locator:  i,
		Logger:   i.logger,
	}
	if len(i.StdlibNames) > 0 {
		c.Names = i.StdlibNames
	}
	return c
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
