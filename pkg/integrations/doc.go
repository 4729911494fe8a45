// Package integrations provides HTTP clients for package index APIs.
//
// The [Client] type carries the shared HTTP behavior: a short default
// timeout, default headers, observability hooks, and per-run memoization
// through [cache.Cache]. Index-specific clients live in subpackages:
//
//   - [pypi]: Python Package Index JSON API
//
// Index lookups are treated as best effort. Clients make a single attempt per
// lookup and report failures through [ErrNotFound] and [ErrNetwork]; callers
// decide which default a failure degrades to.
//
// [pypi]: github.com/matzehuels/autoreqs/pkg/integrations/pypi
// [cache.Cache]: github.com/matzehuels/autoreqs/pkg/cache.Cache
package integrations
