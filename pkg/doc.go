// Package pkg provides the libraries behind autoreqs, a tool that keeps a
// Python project's requirements.txt in sync with what its code imports.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. Discovery - [scanner] (imports from source), [stdlib] (standard library
//     membership), [project] (local modules), [pyenv] (installed packages)
//  2. Resolution - [resolver] (import name to distribution) and
//     [integrations/pypi] (remote index)
//  3. Reconciliation - [reconcile] (the diff) and [manifest] (the file codec)
//  4. Orchestration - [pipeline], with [config], [report], [cache],
//     [errors] and [observability] in support
//
// # Architecture
//
// The data flow of one run:
//
//	project tree
//	     ↓
//	[scanner] distinct top-level import names
//	     ↓
//	[stdlib] + [project] drop stdlib and local names
//	     ↓
//	[resolver] + [pyenv] distribution names and installed versions
//	     ↓
//	[reconcile] missing / unused against [manifest]
//	     ↓
//	requirements.txt and a [report]
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Command: pipeline.CommandUpdate,
//	    Path:    ".",
//	    DryRun:  true,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, add := range result.Report.Changes.Missing {
//	    fmt.Printf("%s==%s\n", add.Name, add.Version)
//	}
//
// The building blocks can be used on their own:
//
//	res, _ := scanner.Scan(ctx, ".", nil)
//	c := &stdlib.Classifier{Version: stdlib.Version{Major: 3, Minor: 12}}
//	for _, name := range res.Names() {
//	    if !c.IsStdlib(ctx, name) {
//	        fmt.Println(name)
//	    }
//	}
//
// [scanner]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/scanner
// [stdlib]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/stdlib
// [project]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/project
// [pyenv]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/pyenv
// [resolver]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/resolver
// [integrations/pypi]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/integrations/pypi
// [reconcile]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/reconcile
// [manifest]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/manifest
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/config
// [report]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/report
// [cache]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/autoreqs/pkg/observability
package pkg
