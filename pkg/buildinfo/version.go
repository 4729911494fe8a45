// Package buildinfo exposes the version of the autoreqs binary.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/autoreqs/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/autoreqs/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/autoreqs/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/autoreqs
package buildinfo

import "fmt"

// Stamped at link time. Unstamped builds report "dev".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information as printed by `autoreqs --version`.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}

// UserAgent identifies autoreqs to package indexes.
func UserAgent() string {
	return "autoreqs/" + Version + " (+https://github.com/matzehuels/autoreqs)"
}
