// Package scanner discovers the top-level modules a Python source tree imports.
//
// Every .py file under the root is parsed into a concrete syntax tree with
// tree-sitter and only import statements are inspected, so names that appear
// in comments or string literals are never reported. A file that fails to
// parse contributes nothing and does not abort the walk.
//
// Extraction rules:
//
//	import a.b.c, d as e      -> a, d
//	from x.y import z         -> x
//	from .pkg.mod import z    -> pkg
//	from . import z           -> (nothing)
//	from __future__ import z  -> __future__
package scanner
