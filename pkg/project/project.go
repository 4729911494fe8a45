package project

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/autoreqs/pkg/errors"
	"github.com/matzehuels/autoreqs/pkg/integrations"
	"github.com/matzehuels/autoreqs/pkg/scanner"
)

// Validate resolves path to an absolute directory. A missing path yields
// ErrCodeInvalidPath; a tree without Python sources yields ErrCodeNoSources
// alongside the resolved path.
func Validate(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "path '%s' is invalid", path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "path '%s' does not exist", path)
	}
	if !info.IsDir() {
		return "", errors.New(errors.ErrCodeInvalidPath, "path '%s' is not a directory", path)
	}
	ok, err := scanner.HasSources(abs)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "walk '%s'", path)
	}
	if !ok {
		return abs, errors.New(errors.ErrCodeNoSources, "no Python files found in target directory")
	}
	return abs, nil
}

// Detector answers local-module queries for one project root.
type Detector struct {
	Root string
	// Name is the normalized distribution name from pyproject.toml, if any.
	Name string
}

// NewDetector returns a Detector for root, reading the project name from
// pyproject.toml when present.
func NewDetector(root string) *Detector {
	return &Detector{Root: root, Name: integrations.NormalizePkgName(PyprojectName(root))}
}

// IsLocal reports whether name is provided by the project itself.
func (d *Detector) IsLocal(name string) bool {
	if d.Name != "" && integrations.NormalizePkgName(name) == d.Name {
		return true
	}
	return IsLocalModule(d.Root, name) || IsLocalModule(filepath.Join(d.Root, "src"), name)
}

// IsLocalModule reports whether root contains a directory or a .py file
// named name.
func IsLocalModule(root, name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if info, err := os.Stat(filepath.Join(root, name)); err == nil && info.IsDir() {
		return true
	}
	if info, err := os.Stat(filepath.Join(root, name+".py")); err == nil && !info.IsDir() {
		return true
	}
	return false
}

// PyprojectName returns the distribution name declared in root's
// pyproject.toml under [project] or [tool.poetry], or "".
func PyprojectName(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return ""
	}
	var pyproject struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return ""
	}
	if pyproject.Project.Name != "" {
		return pyproject.Project.Name
	}
	return pyproject.Tool.Poetry.Name
}
