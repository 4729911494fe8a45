package reconcile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autoreqs/pkg/manifest"
	"github.com/matzehuels/autoreqs/pkg/project"
	"github.com/matzehuels/autoreqs/pkg/pyenv"
	"github.com/matzehuels/autoreqs/pkg/resolver"
	"github.com/matzehuels/autoreqs/pkg/stdlib"
)

func newReconciler(t *testing.T, root string, mapping pyenv.Mapping, logger *log.Logger) *Reconciler {
	t.Helper()
	if root == "" {
		root = t.TempDir()
	}
	return &Reconciler{
		Stdlib:   &stdlib.Classifier{Version: stdlib.Version{Major: 3, Minor: 12}},
		Local:    project.NewDetector(root),
		Resolver: resolver.New(mapping, nil, logger),
		Logger:   logger,
	}
}

func noVersion(context.Context, string) (string, bool) { return "", false }

func TestRunAddsInstalledRequirement(t *testing.T) {
	r := newReconciler(t, "", nil, nil)
	m := manifest.Manifest{}

	changes := r.Run(context.Background(), Input{
		Imports:       []string{"os", "requests", "collections"},
		Installed:     map[string]string{"requests": "2.31.0"},
		Manifest:      m,
		LatestVersion: noVersion,
	})

	want := []Addition{{Name: "requests", Version: "2.31.0", Import: "requests"}}
	if !reflect.DeepEqual(changes.Missing, want) {
		t.Errorf("Missing = %+v, want %+v", changes.Missing, want)
	}
	if len(changes.Unused) != 0 {
		t.Errorf("Unused = %v", changes.Unused)
	}
	if !reflect.DeepEqual(m, manifest.Manifest{"requests": "2.31.0"}) {
		t.Errorf("manifest = %v", m)
	}
}

func TestRunRemovesUnused(t *testing.T) {
	r := newReconciler(t, "", nil, nil)
	m := manifest.Manifest{"oldpkg": "0.9.0"}

	changes := r.Run(context.Background(), Input{
		Imports:  []string{"os"},
		Manifest: m,
	})

	if !reflect.DeepEqual(changes.Unused, []string{"oldpkg"}) {
		t.Errorf("Unused = %v, want [oldpkg]", changes.Unused)
	}
	if _, ok := m["oldpkg"]; ok {
		t.Error("oldpkg still in manifest")
	}
}

func TestRunWarnsOnUnresolvableVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	r := newReconciler(t, "", nil, logger)
	m := manifest.Manifest{}

	changes := r.Run(context.Background(), Input{
		Imports:       []string{"Flask"},
		Manifest:      m,
		LatestVersion: noVersion,
	})

	if len(changes.Missing) != 0 {
		t.Errorf("Missing = %+v, want none", changes.Missing)
	}
	if !reflect.DeepEqual(changes.Unresolved, []string{"flask"}) {
		t.Errorf("Unresolved = %v, want [flask]", changes.Unresolved)
	}
	if _, ok := m["flask"]; ok {
		t.Error("flask added without a version")
	}
	if out := buf.String(); !strings.Contains(out, "flask") || !strings.Contains(out, "Flask") {
		t.Errorf("warning should name flask/Flask, got %q", out)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	mapping := pyenv.Mapping{"yaml": {"pyyaml"}}
	r := newReconciler(t, "", mapping, nil)
	m := manifest.Manifest{"oldpkg": "1.0"}
	in := Input{
		Imports:       []string{"yaml", "requests", "Django", "json"},
		Installed:     map[string]string{"pyyaml": "6.0.1", "requests": "2.31.0"},
		Manifest:      m,
		LatestVersion: func(_ context.Context, name string) (string, bool) { return "5.0." + name, true },
	}

	first := r.Run(context.Background(), in)
	if len(first.Missing) != 3 || len(first.Unused) != 1 {
		t.Fatalf("first run = %+v", first)
	}
	snapshot := m.Clone()

	second := r.Run(context.Background(), in)
	if !second.Empty() || len(second.Missing) != 0 || len(second.Unused) != 0 {
		t.Errorf("second run = %+v, want no changes", second)
	}
	if !reflect.DeepEqual(m, snapshot) {
		t.Errorf("manifest changed on second run: %v -> %v", snapshot, m)
	}
}

func TestRunResolvesRenamedPackages(t *testing.T) {
	mapping := pyenv.Mapping{"bs4": {"beautifulsoup4"}}
	r := newReconciler(t, "", mapping, nil)
	m := manifest.Manifest{}
	var asked []string

	changes := r.Run(context.Background(), Input{
		Imports:   []string{"bs4"},
		Installed: map[string]string{"bs4": "0.0.1", "beautifulsoup4": "4.12.2"},
		Manifest:  m,
		LatestVersion: func(_ context.Context, name string) (string, bool) {
			asked = append(asked, name)
			return "", false
		},
	})

	want := []Addition{{Name: "beautifulsoup4", Version: "4.12.2", Import: "bs4"}}
	if !reflect.DeepEqual(changes.Missing, want) {
		t.Errorf("Missing = %+v, want %+v", changes.Missing, want)
	}
	if len(asked) != 0 {
		t.Errorf("version callback called for %v", asked)
	}
}

func TestRunCallbackUsesResolvedName(t *testing.T) {
	mapping := pyenv.Mapping{"jwt": {"pyjwt"}}
	r := newReconciler(t, "", mapping, nil)
	var asked []string

	r.Run(context.Background(), Input{
		Imports:  []string{"jwt"},
		Manifest: manifest.Manifest{},
		LatestVersion: func(_ context.Context, name string) (string, bool) {
			asked = append(asked, name)
			return "2.8.0", true
		},
	})
	if !reflect.DeepEqual(asked, []string{"pyjwt"}) {
		t.Errorf("callback names = %v, want [pyjwt]", asked)
	}
}

func TestRunSkipsLocalAndPrivate(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "helpers.py"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	r := newReconciler(t, root, nil, nil)
	var asked []string

	changes := r.Run(context.Background(), Input{
		Imports:  []string{"helpers", "_private", "", "__future__"},
		Manifest: manifest.Manifest{},
		LatestVersion: func(_ context.Context, name string) (string, bool) {
			asked = append(asked, name)
			return "1.0", true
		},
	})
	if len(changes.Missing) != 0 || len(asked) != 0 {
		t.Errorf("changes = %+v, asked = %v", changes, asked)
	}
}

func TestRunNormalizesVariants(t *testing.T) {
	r := newReconciler(t, "", nil, nil)
	m := manifest.Manifest{"typing-extensions": "4.9.0"}

	changes := r.Run(context.Background(), Input{
		Imports:  []string{"typing_extensions", "Typing_Extensions"},
		Manifest: m,
	})
	if !changes.Empty() {
		t.Errorf("changes = %+v, want none", changes)
	}
}

func TestRunUpgrade(t *testing.T) {
	r := newReconciler(t, "", nil, nil)
	m := manifest.Manifest{"requests": "2.25.0", "numpy": "", "flask": "2.0.0", "attrs": "23.1.0"}

	changes := r.Run(context.Background(), Input{
		Imports:   []string{"requests", "numpy", "flask", "attrs", "click"},
		Installed: map[string]string{"requests": "2.31.0", "attrs": "23.1.0"},
		Manifest:  m,
		LatestVersion: func(_ context.Context, name string) (string, bool) {
			return map[string]string{"flask": "3.0.0", "click": "8.1.7"}[name], name == "flask" || name == "click"
		},
		Upgrade: true,
	})

	wantUp := []Upgrade{
		{Name: "flask", From: "2.0.0", To: "3.0.0"},
		{Name: "requests", From: "2.25.0", To: "2.31.0"},
	}
	if !reflect.DeepEqual(changes.Upgraded, wantUp) {
		t.Errorf("Upgraded = %+v, want %+v", changes.Upgraded, wantUp)
	}
	wantManifest := manifest.Manifest{"requests": "2.31.0", "numpy": "", "flask": "3.0.0", "attrs": "23.1.0", "click": "8.1.7"}
	if !reflect.DeepEqual(m, wantManifest) {
		t.Errorf("manifest = %v, want %v", m, wantManifest)
	}
}

func TestRunNilManifest(t *testing.T) {
	r := newReconciler(t, "", nil, nil)
	changes := r.Run(context.Background(), Input{
		Imports:   []string{"requests"},
		Installed: map[string]string{"requests": "2.31.0"},
	})
	if len(changes.Missing) != 1 {
		t.Errorf("Missing = %+v", changes.Missing)
	}
}

type countingIndex struct{ names []string }

func (c *countingIndex) Exists(_ context.Context, name string) bool {
	c.names = append(c.names, name)
	return true
}

func TestRunInSyncManifestSkipsIndex(t *testing.T) {
	index := &countingIndex{}
	r := newReconciler(t, "", pyenv.Mapping{"yaml": {"PyYAML"}}, nil)
	r.Resolver = resolver.New(pyenv.Mapping{"yaml": {"PyYAML"}}, index, nil)
	m := manifest.Manifest{"requests": "2.31.0", "flask": "3.0.0", "pyyaml": "6.0.1"}
	snapshot := m.Clone()

	changes := r.Run(context.Background(), Input{
		Imports:   []string{"requests", "Flask", "yaml"},
		Installed: map[string]string{"requests": "2.31.0", "flask": "3.0.0", "pyyaml": "6.0.1"},
		Manifest:  m,
		LatestVersion: func(_ context.Context, name string) (string, bool) {
			t.Errorf("version callback called for %q", name)
			return "", false
		},
	})

	if !changes.Empty() {
		t.Errorf("changes = %+v, want none", changes)
	}
	if !reflect.DeepEqual(m, snapshot) {
		t.Errorf("manifest = %v, want %v", m, snapshot)
	}
	if len(index.names) != 0 {
		t.Errorf("index queried for %v", index.names)
	}
}

func TestRunQueriesIndexOnlyForNewImports(t *testing.T) {
	index := &countingIndex{}
	r := newReconciler(t, "", nil, nil)
	r.Resolver = resolver.New(nil, index, nil)

	r.Run(context.Background(), Input{
		Imports:   []string{"requests", "numpy"},
		Installed: map[string]string{"numpy": "1.26.0"},
		Manifest:  manifest.Manifest{"requests": "2.31.0"},
	})
	if !reflect.DeepEqual(index.names, []string{"numpy"}) {
		t.Errorf("index queried for %v, want [numpy]", index.names)
	}
}
