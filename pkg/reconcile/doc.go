// Package reconcile diffs discovered imports against a manifest.
//
// [Reconciler.Run] filters out stdlib, local and private (underscore) names,
// normalizes the rest, and mutates the manifest in place:
//
//   - each normalized import that is not yet covered by a manifest entry is
//     resolved to its distribution name and added with a version taken from
//     the installed registry (resolved name first, then the normalized
//     import) or, failing that, the version callback. Names without any
//     version are reported as unresolved and never added.
//   - each manifest entry that is neither a normalized import nor the
//     resolved distribution of one is removed and reported as unused.
//
// An entry counts as covered when either the normalized import or its
// resolved distribution is a manifest key, so an "import yaml" kept as
// "pyyaml" stays stable across runs.
//
// With Input.Upgrade set, pinned entries that survive are re-pinned to the
// installed version, or the callback's version when not installed.
package reconcile
