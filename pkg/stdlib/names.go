package stdlib

import (
	"bufio"
	_ "embed"
	"strings"
	"sync"
)

//go:embed modules.txt
var modulesTxt string

// LegacyNames are Python 2 module names that were renamed or removed in
// Python 3. Old code and vendored libraries still import them, and they must
// never be mistaken for PyPI packages.
var LegacyNames = map[string]bool{
	"Queue":            true,
	"StringIO":         true,
	"ConfigParser":     true,
	"cPickle":          true,
	"SocketServer":     true,
	"SimpleHTTPServer": true,
	"BaseHTTPServer":   true,
	"UserDict":         true,
	"UserList":         true,
	"UserString":       true,
	"whichdb":          true,
	"dbhash":           true,
	"commands":         true,
	"copy_reg":         true,
	"dummy_thread":     true,
	"dummy_threading":  true,
	"repr":             true,
	"urlparse":         true,
	"urllib2":          true,
	"htmlentitydefs":   true,
	"httplib":          true,
}

type moduleEntry struct {
	name    string
	added   Version
	removed Version
}

var (
	entriesOnce sync.Once
	entries     []moduleEntry
)

func embeddedEntries() []moduleEntry {
	entriesOnce.Do(func() {
		scanner := bufio.NewScanner(strings.NewReader(modulesTxt))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			fields := strings.Fields(line)
			entry := moduleEntry{name: fields[0]}
			for _, field := range fields[1:] {
				switch {
				case strings.HasPrefix(field, "+"):
					entry.added, _ = ParseVersion(field[1:])
				case strings.HasPrefix(field, "-"):
					entry.removed, _ = ParseVersion(field[1:])
				}
			}
			entries = append(entries, entry)
		}
	})
	return entries
}

// ModuleNames returns the embedded top-level stdlib module names available in
// Python version v. A zero version selects DefaultVersion.
func ModuleNames(v Version) map[string]bool {
	if v.IsZero() {
		v = DefaultVersion
	}
	names := make(map[string]bool)
	for _, entry := range embeddedEntries() {
		if !entry.added.IsZero() && v.Less(entry.added) {
			continue
		}
		if !entry.removed.IsZero() && !v.Less(entry.removed) {
			continue
		}
		names[entry.name] = true
	}
	return names
}
