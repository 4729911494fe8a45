// Package resolver maps Python import names to distribution names.
//
// The installed environment's import mapping is authoritative: "yaml"
// resolves to "pyyaml" when PyYAML is installed. Names the mapping does not
// know fall back to their normalized form, optionally probed against the
// package index.
//
// The index probe is optimistic. A failed or unreachable lookup counts as
// "exists", and even a negative answer keeps the normalized name; the probe
// only informs logging. A misspelled or private import therefore resolves to
// a name that may not exist on the index, and the version lookup that follows
// is what filters it out.
package resolver

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autoreqs/pkg/integrations"
)

// Mapping looks up the distribution that provides an import name.
type Mapping interface {
	Lookup(importName string) (dist string, ok bool)
}

// Index confirms a distribution name exists on the package index.
type Index interface {
	Exists(ctx context.Context, name string) bool
}

// Resolver resolves import names. Mapping and Index are optional.
type Resolver struct {
	Mapping Mapping
	Index   Index
	Logger  *log.Logger
}

// New returns a Resolver over the given mapping and index.
func New(mapping Mapping, index Index, logger *log.Logger) *Resolver {
	return &Resolver{Mapping: mapping, Index: index, Logger: logger}
}

// Lookup answers from the installed mapping alone and never touches the
// index. ok is false when no installed distribution provides importName.
func (r *Resolver) Lookup(importName string) (dist string, ok bool) {
	if r.Mapping == nil {
		return "", false
	}
	dist, ok = r.Mapping.Lookup(importName)
	if !ok {
		return "", false
	}
	return integrations.NormalizePkgName(dist), true
}

// Resolve returns the normalized distribution name for importName.
func (r *Resolver) Resolve(ctx context.Context, importName string) string {
	if dist, ok := r.Lookup(importName); ok {
		if dist != integrations.NormalizePkgName(importName) {
			r.logger().Debug("resolved via installed mapping", "import", importName, "dist", dist)
		}
		return dist
	}
	name := integrations.NormalizePkgName(importName)
	if r.Index != nil && !r.Index.Exists(ctx, name) {
		r.logger().Debug("not found on package index", "name", name)
	}
	return name
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
