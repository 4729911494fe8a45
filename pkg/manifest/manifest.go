// Package manifest reads and writes requirements.txt style manifests.
//
// A manifest maps normalized distribution names to an exact version; an
// empty version stands for a bare, unconstrained requirement. Files are
// written with a generated-by header followed by one entry per line sorted
// by name, either "name==version" or "name".
//
// Parsing is lenient. Comments, blank lines and pip option lines ("-r",
// "--index-url") are ignored, as are URL and VCS requirements. A line with
// "==" pins a version; any other requirement keeps only its name.
package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/matzehuels/autoreqs/pkg/errors"
	"github.com/matzehuels/autoreqs/pkg/integrations"
)

// DefaultFileName is the manifest file looked up at the project root.
const DefaultFileName = "requirements.txt"

// Header is the first line of every written manifest.
const Header = "# Automatically maintained by autoreqs"

var depNameRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)

// Manifest maps normalized names to pinned versions ("" means unpinned).
type Manifest map[string]string

// Names returns the manifest keys in sorted order.
func (m Manifest) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of m.
func (m Manifest) Clone() Manifest {
	out := make(Manifest, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Parse reads manifest entries from r.
func Parse(r io.Reader) (Manifest, error) {
	m := make(Manifest)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		name, version := line, ""
		if before, after, ok := strings.Cut(line, "=="); ok {
			name = before
			version = strings.TrimSpace(strings.SplitN(after, ";", 2)[0])
		}
		match := depNameRE.FindStringSubmatch(strings.TrimSpace(name))
		if len(match) < 2 {
			continue
		}
		m[integrations.NormalizePkgName(match[1])] = version
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest")
	}
	return m, nil
}

// Load reads the manifest at path. A missing file is an empty manifest.
func Load(path string) (Manifest, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return make(Manifest), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "open %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Format writes m to w: the header, then entries sorted by name.
func Format(w io.Writer, m Manifest) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Header)
	for _, name := range m.Names() {
		if v := m[name]; v != "" {
			fmt.Fprintf(bw, "%s==%s\n", name, v)
		} else {
			fmt.Fprintln(bw, name)
		}
	}
	return bw.Flush()
}

// Write replaces the file at path with the formatted manifest.
func Write(path string, m Manifest) error {
	var buf bytes.Buffer
	if err := Format(&buf, m); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "write %s", path)
	}
	return nil
}
