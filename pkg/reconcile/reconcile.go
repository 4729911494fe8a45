package reconcile

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autoreqs/pkg/integrations"
	"github.com/matzehuels/autoreqs/pkg/manifest"
	"github.com/matzehuels/autoreqs/pkg/observability"
)

// StdlibClassifier decides whether a module belongs to the standard library.
type StdlibClassifier interface {
	IsStdlib(ctx context.Context, name string) bool
}

// LocalDetector decides whether a module is provided by the project itself.
type LocalDetector interface {
	IsLocal(name string) bool
}

// NameResolver maps an import name to a normalized distribution name.
type NameResolver interface {
	Resolve(ctx context.Context, importName string) string
}

// InstalledLookup is implemented by resolvers that can answer from the
// installed environment alone. Imports already covered by the manifest are
// checked through it so an in-sync run makes no index requests.
type InstalledLookup interface {
	Lookup(importName string) (dist string, ok bool)
}

// VersionFunc looks up a version for a distribution that is not installed,
// typically the latest release on the package index.
type VersionFunc func(ctx context.Context, name string) (string, bool)

// Input is one reconciliation request. Manifest is modified in place.
type Input struct {
	Imports       []string
	Installed     map[string]string
	Manifest      manifest.Manifest
	LatestVersion VersionFunc
	Upgrade       bool
}

// Addition is a requirement added to the manifest.
type Addition struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Import  string `json:"import" yaml:"import"`
}

// Upgrade is a pinned requirement moved to another version.
type Upgrade struct {
	Name string `json:"name" yaml:"name"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Changes lists what Run did to the manifest. Every list is sorted by name.
type Changes struct {
	Missing    []Addition `json:"missing" yaml:"missing"`
	Unused     []string   `json:"unused" yaml:"unused"`
	Unresolved []string   `json:"unresolved" yaml:"unresolved"`
	Upgraded   []Upgrade  `json:"upgraded" yaml:"upgraded"`
}

// Empty reports whether the manifest was left untouched.
func (c Changes) Empty() bool {
	return len(c.Missing) == 0 && len(c.Unused) == 0 && len(c.Upgraded) == 0
}

// Reconciler holds the classification and resolution collaborators. Stdlib
// and Local may be nil; Resolver nil resolves every name to its normalized
// form.
type Reconciler struct {
	Stdlib   StdlibClassifier
	Local    LocalDetector
	Resolver NameResolver
	Logger   *log.Logger
}

// Run reconciles in.Imports against in.Manifest.
func (r *Reconciler) Run(ctx context.Context, in Input) Changes {
	start := time.Now()
	if in.Manifest == nil {
		in.Manifest = make(manifest.Manifest)
	}
	observability.Sync().OnReconcileStart(ctx, len(in.Imports), len(in.Manifest))

	imports := r.external(ctx, in.Imports)
	wanted := make(map[string]bool, len(imports))
	added := make(map[string]bool)
	var changes Changes

	for _, norm := range sortedKeys(imports) {
		name := imports[norm]
		wanted[norm] = true
		if dist, ok := r.lookup(ctx, name, norm); ok {
			wanted[dist] = true
			if _, ok := in.Manifest[dist]; ok {
				continue
			}
		}
		if _, ok := in.Manifest[norm]; ok {
			continue
		}
		resolved := r.resolve(ctx, name, norm)
		wanted[resolved] = true
		if _, ok := in.Manifest[resolved]; ok {
			continue
		}

		version := r.version(ctx, in, resolved, norm)
		if version == "" {
			r.logger().Warn("could not find version", "import", name, "package", resolved)
			changes.Unresolved = append(changes.Unresolved, norm)
			continue
		}
		in.Manifest[resolved] = version
		added[resolved] = true
		changes.Missing = append(changes.Missing, Addition{Name: resolved, Version: version, Import: name})
	}

	for _, key := range in.Manifest.Names() {
		if !wanted[key] {
			delete(in.Manifest, key)
			changes.Unused = append(changes.Unused, key)
		}
	}

	if in.Upgrade {
		for _, key := range in.Manifest.Names() {
			current := in.Manifest[key]
			if current == "" || added[key] {
				continue
			}
			target := r.version(ctx, in, key, key)
			if target == "" || target == current {
				continue
			}
			in.Manifest[key] = target
			changes.Upgraded = append(changes.Upgraded, Upgrade{Name: key, From: current, To: target})
		}
	}

	sort.Slice(changes.Missing, func(i, j int) bool { return changes.Missing[i].Name < changes.Missing[j].Name })
	observability.Sync().OnReconcileComplete(ctx, len(changes.Missing), len(changes.Unused), len(changes.Unresolved), time.Since(start))
	return changes
}

// external returns the third-party imports keyed by normalized name. The
// first spelling in sorted order is kept for messages.
func (r *Reconciler) external(ctx context.Context, imports []string) map[string]string {
	sorted := append([]string(nil), imports...)
	sort.Strings(sorted)

	out := make(map[string]string)
	for _, name := range sorted {
		if name == "" || strings.HasPrefix(name, "_") {
			continue
		}
		norm := integrations.NormalizePkgName(name)
		if _, seen := out[norm]; seen {
			continue
		}
		if r.Stdlib != nil && r.Stdlib.IsStdlib(ctx, name) {
			continue
		}
		if r.Local != nil && r.Local.IsLocal(name) {
			continue
		}
		out[norm] = name
	}
	return out
}

// lookup returns the distribution the installed environment attributes to
// name. Resolvers without InstalledLookup are asked in full.
func (r *Reconciler) lookup(ctx context.Context, name, norm string) (string, bool) {
	if r.Resolver == nil {
		return "", false
	}
	l, ok := r.Resolver.(InstalledLookup)
	if !ok {
		return r.resolve(ctx, name, norm), true
	}
	dist, ok := l.Lookup(name)
	if !ok {
		return "", false
	}
	if dist = integrations.NormalizePkgName(dist); dist == "" {
		return "", false
	}
	return dist, true
}

func (r *Reconciler) resolve(ctx context.Context, name, norm string) string {
	if r.Resolver == nil {
		return norm
	}
	if resolved := integrations.NormalizePkgName(r.Resolver.Resolve(ctx, name)); resolved != "" {
		return resolved
	}
	return norm
}

func (r *Reconciler) version(ctx context.Context, in Input, resolved, norm string) string {
	if v := in.Installed[resolved]; v != "" {
		return v
	}
	if v := in.Installed[norm]; v != "" {
		return v
	}
	if in.LatestVersion == nil {
		return ""
	}
	if v, ok := in.LatestVersion(ctx, resolved); ok {
		return v
	}
	return ""
}

func (r *Reconciler) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
