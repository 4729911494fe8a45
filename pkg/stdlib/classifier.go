package stdlib

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
)

// OriginLocator finds where a module would be loaded from, the way
// importlib.util.find_spec reports spec.origin. An empty origin means the
// module could not be located.
type OriginLocator interface {
	Origin(ctx context.Context, name string) (string, error)
}

// OriginFunc adapts a function to the OriginLocator interface.
type OriginFunc func(ctx context.Context, name string) (string, error)

// Origin calls f(ctx, name).
func (f OriginFunc) Origin(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// Paths are the interpreter install directories relevant to classification.
type Paths struct {
	Stdlib  string
	Purelib string
	Platlib string
}

// Classifier decides stdlib membership. The zero value classifies against
// the embedded list for DefaultVersion and never performs origin lookups.
type Classifier struct {
	Version  Version
	Names    map[string]bool // interpreter-reported stdlib names; nil selects the embedded list
	Builtins map[string]bool // sys.builtin_module_names
	Paths    Paths
	Locator  OriginLocator
	Logger   *log.Logger

	embedded map[string]bool
}

// IsStdlib reports whether name belongs to the standard library.
func (c *Classifier) IsStdlib(ctx context.Context, name string) bool {
	if name == "" || strings.HasPrefix(name, "_") {
		return true
	}
	if LegacyNames[name] {
		return true
	}
	if c.Builtins[name] || c.names()[name] {
		return true
	}
	return c.originIsStdlib(ctx, name)
}

func (c *Classifier) names() map[string]bool {
	if c.Names != nil {
		return c.Names
	}
	if c.embedded == nil {
		c.embedded = ModuleNames(c.Version)
	}
	return c.embedded
}

func (c *Classifier) originIsStdlib(ctx context.Context, name string) bool {
	if c.Locator == nil || c.Paths.Stdlib == "" {
		return false
	}
	origin, err := c.Locator.Origin(ctx, name)
	if err != nil {
		c.logger().Debug("origin lookup failed", "module", name, "err", err)
		return false
	}
	if origin == "" {
		return false
	}
	return UnderStdlib(origin, c.Paths)
}

func (c *Classifier) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// UnderStdlib reports whether origin lies inside paths.Stdlib and outside any
// third-party package directory. Comparison is case-insensitive and treats
// backslashes as slashes.
func UnderStdlib(origin string, paths Paths) bool {
	o := normPath(origin)
	stdlib := normPath(paths.Stdlib)
	if stdlib == "" || !hasPathPrefix(o, stdlib) {
		return false
	}
	if strings.Contains(o, "/site-packages/") || strings.Contains(o, "/dist-packages/") {
		return false
	}
	for _, third := range []string{paths.Purelib, paths.Platlib} {
		if t := normPath(third); t != "" && hasPathPrefix(o, t) {
			return false
		}
	}
	return true
}

func normPath(p string) string {
	return strings.TrimSuffix(strings.ToLower(strings.ReplaceAll(p, "\\", "/")), "/")
}

func hasPathPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
