package pyenv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	autoerrors "github.com/matzehuels/autoreqs/pkg/errors"
)

const fakeReport = `{
  "version": "3.12",
  "stdlib": "/usr/lib/python3.12",
  "purelib": "/proj/.venv/lib/python3.12/site-packages",
  "platlib": "/proj/.venv/lib/python3.12/site-packages",
  "site_packages": ["/proj/.venv/lib/python3.12/site-packages"],
  "stdlib_names": ["collections", "json", "os"],
  "builtins": ["posix", "sys"]
}`

func fakeRun(origins map[string]string) runFunc {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		if len(args) >= 2 && args[0] == "-c" {
			return []byte(fakeReport), nil
		}
		name := args[len(args)-1]
		if name == "explode" {
			return nil, errors.New("exit status 1")
		}
		return []byte(origins[name] + "\n"), nil
	}
}

func TestQuery(t *testing.T) {
	interp, err := query(context.Background(), "/usr/bin/python3", fakeRun(nil), nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if interp.Version.String() != "3.12" {
		t.Errorf("Version = %s, want 3.12", interp.Version)
	}
	if interp.Paths.Stdlib != "/usr/lib/python3.12" {
		t.Errorf("Stdlib = %q", interp.Paths.Stdlib)
	}
	if len(interp.SitePackages) != 1 {
		t.Errorf("SitePackages = %v", interp.SitePackages)
	}
	if !interp.StdlibNames["json"] || !interp.Builtins["posix"] {
		t.Error("module names not recorded")
	}
}

func TestQueryErrors(t *testing.T) {
	failing := func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("not found")
	}
	if _, err := query(context.Background(), "python", failing, nil); !autoerrors.Is(err, autoerrors.ErrCodeInterpreterNotFound) {
		t.Errorf("err = %v, want interpreter not found", err)
	}

	garbage := func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Traceback"), nil
	}
	if _, err := query(context.Background(), "python", garbage, nil); !autoerrors.Is(err, autoerrors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want invalid format", err)
	}
}

func TestInterpreterClassifier(t *testing.T) {
	origins := map[string]string{
		"vendored": "/usr/lib/python3.12/vendored.py",
		"requests": "/proj/.venv/lib/python3.12/site-packages/requests/__init__.py",
	}
	interp, err := query(context.Background(), "/usr/bin/python3", fakeRun(origins), nil)
	if err != nil {
		t.Fatal(err)
	}
	c := interp.Classifier()
	ctx := context.Background()

	tests := []struct {
		name string
		want bool
	}{
		{"os", true},
		{"sys", true},
		{"vendored", true},
		{"requests", false},
		{"unknown", false},
		{"explode", false},
	}
	for _, tt := range tests {
		if got := c.IsStdlib(ctx, tt.name); got != tt.want {
			t.Errorf("IsStdlib(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestOriginUsesIsolatedMode(t *testing.T) {
	var gotArgs []string
	interp := &Interpreter{Path: "python3", run: func(_ context.Context, _ string, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte("/usr/lib/python3.12/json/__init__.py\n"), nil
	}}
	origin, err := interp.Origin(context.Background(), "json")
	if err != nil {
		t.Fatal(err)
	}
	if origin != "/usr/lib/python3.12/json/__init__.py" {
		t.Errorf("origin = %q", origin)
	}
	if len(gotArgs) == 0 || gotArgs[0] != "-I" || gotArgs[len(gotArgs)-1] != "json" {
		t.Errorf("args = %v", gotArgs)
	}
}

func TestFindPrefersProjectVenv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("venv layout differs on windows")
	}
	root := t.TempDir()
	python := filepath.Join(root, ".venv", "bin", "python3")
	if err := os.MkdirAll(filepath.Dir(python), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(python, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(root, "")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != python {
		t.Errorf("Find = %q, want %q", got, python)
	}
}

func TestFindExplicitMissing(t *testing.T) {
	_, err := Find(t.TempDir(), filepath.Join(t.TempDir(), "no-such-python"))
	if !autoerrors.Is(err, autoerrors.ErrCodeInterpreterNotFound) {
		t.Errorf("err = %v, want interpreter not found", err)
	}
	if err != nil && !strings.Contains(err.Error(), "no-such-python") {
		t.Errorf("error should name the interpreter: %v", err)
	}
}
