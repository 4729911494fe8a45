// Package stdlib decides whether a Python module name belongs to the
// interpreter's standard library.
//
// A [Classifier] applies, in order:
//
//  1. empty and underscore-prefixed names are stdlib;
//  2. legacy Python 2 module names ([LegacyNames]) are stdlib;
//  3. the authoritative name list for the interpreter version: the
//     interpreter-reported sys.stdlib_module_names and builtin names when
//     available, otherwise the embedded list for [Classifier.Version];
//  4. the module's origin, located through an [OriginLocator], lies under the
//     stdlib directory and not under a third-party package directory.
//
// Any failure in step 4 yields false, so unknown names surface as external
// dependencies for review instead of being dropped.
package stdlib
