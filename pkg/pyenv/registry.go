package pyenv

import (
	"bufio"
	"net/textproto"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/autoreqs/pkg/integrations"
)

// Registry maps normalized distribution names to installed versions.
type Registry map[string]string

// Mapping maps normalized import names to the normalized names of the
// distributions that provide them.
type Mapping map[string][]string

// Lookup returns the distribution providing the import name. When several
// distributions provide it, one named like the import wins, otherwise the
// first in sorted order.
func (m Mapping) Lookup(importName string) (string, bool) {
	key := integrations.NormalizePkgName(importName)
	dists := m[key]
	if len(dists) == 0 {
		return "", false
	}
	for _, d := range dists {
		if d == key {
			return d, true
		}
	}
	return dists[0], true
}

func (m Mapping) add(importName, dist string) {
	key := integrations.NormalizePkgName(importName)
	if key == "" {
		return
	}
	for _, d := range m[key] {
		if d == dist {
			return
		}
	}
	m[key] = append(m[key], dist)
	sort.Strings(m[key])
}

// LoadRegistry reads *.dist-info and *.egg-info metadata from the given
// site-packages directories. Earlier directories win when a distribution is
// installed twice. Unreadable directories and entries are skipped.
func LoadRegistry(dirs ...string) (Registry, Mapping) {
	reg := make(Registry)
	mapping := make(Mapping)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			var meta string
			switch {
			case strings.HasSuffix(name, ".dist-info"):
				meta = "METADATA"
			case strings.HasSuffix(name, ".egg-info"):
				meta = "PKG-INFO"
			default:
				continue
			}
			path := filepath.Join(dir, name)
			dist, version := readDistribution(path, meta, entry.IsDir())
			if dist == "" {
				continue
			}
			if _, ok := reg[dist]; !ok {
				reg[dist] = version
			}
			if entry.IsDir() {
				for _, mod := range topLevel(path) {
					mapping.add(mod, dist)
				}
			}
		}
	}
	return reg, mapping
}

// readDistribution returns the normalized name and version of an installed
// distribution, falling back to the "name-version.dist-info" directory name
// when the metadata file is missing or incomplete.
func readDistribution(path, meta string, isDir bool) (string, string) {
	metaPath := path
	if isDir {
		metaPath = filepath.Join(path, meta)
	}
	name, version := readMetadata(metaPath)
	if name == "" || version == "" {
		base := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(path), ".dist-info"), ".egg-info")
		n, v, _ := strings.Cut(base, "-")
		if name == "" {
			name = n
		}
		if version == "" {
			version = strings.TrimSuffix(strings.SplitN(v, "-", 2)[0], ".")
		}
	}
	return integrations.NormalizePkgName(name), version
}

func readMetadata(path string) (string, string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	// Core metadata is an RFC 822 header block; a parse error still leaves
	// the fields read so far.
	hdr, _ := textproto.NewReader(bufio.NewReader(f)).ReadMIMEHeader()
	return strings.TrimSpace(hdr.Get("Name")), strings.TrimSpace(hdr.Get("Version"))
}

// topLevel lists the import names a distribution installs: top_level.txt
// when present, otherwise the top-level entries of RECORD.
func topLevel(path string) []string {
	if data, err := os.ReadFile(filepath.Join(path, "top_level.txt")); err == nil {
		var names []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				// Namespace entries such as "google/protobuf" map by their root.
				names = append(names, strings.SplitN(strings.ReplaceAll(line, "\\", "/"), "/", 2)[0])
			}
		}
		return names
	}
	data, err := os.ReadFile(filepath.Join(path, "RECORD"))
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		file, _, _ := strings.Cut(strings.TrimSpace(line), ",")
		if mod := recordModule(file); mod != "" && !seen[mod] {
			seen[mod] = true
			names = append(names, mod)
		}
	}
	return names
}

func recordModule(file string) string {
	file = strings.Trim(strings.ReplaceAll(file, "\\", "/"), "\"")
	if file == "" || strings.HasPrefix(file, "..") || strings.HasPrefix(file, "/") {
		return ""
	}
	first, rest, nested := strings.Cut(file, "/")
	if nested {
		if strings.HasSuffix(first, ".dist-info") || strings.HasSuffix(first, ".egg-info") ||
			strings.HasSuffix(first, ".data") || first == "__pycache__" || first == "bin" || rest == "" {
			return ""
		}
		return first
	}
	if mod, ok := strings.CutSuffix(first, ".py"); ok {
		return mod
	}
	// Compiled extension modules: name.cpython-312-x86_64-linux-gnu.so, name.pyd
	for _, ext := range []string{".so", ".pyd"} {
		if strings.HasSuffix(first, ext) {
			mod, _, _ := strings.Cut(first, ".")
			return mod
		}
	}
	return ""
}
