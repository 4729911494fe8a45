package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/autoreqs/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestValidate(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := Validate(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, errors.ErrCodeInvalidPath) {
			t.Errorf("err = %v, want invalid path", err)
		}
	})

	t.Run("file instead of directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "main.py")
		writeFile(t, file, "import os\n")
		_, err := Validate(file)
		if !errors.Is(err, errors.ErrCodeInvalidPath) {
			t.Errorf("err = %v, want invalid path", err)
		}
	})

	t.Run("no sources", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "README.md"), "# hi\n")
		abs, err := Validate(dir)
		if !errors.Is(err, errors.ErrCodeNoSources) {
			t.Errorf("err = %v, want no sources", err)
		}
		if abs != dir {
			t.Errorf("abs = %q, want %q", abs, dir)
		}
	})

	t.Run("nested sources", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "pkg", "mod.py"), "import os\n")
		abs, err := Validate(dir)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if !filepath.IsAbs(abs) {
			t.Errorf("abs = %q, want absolute path", abs)
		}
	})
}

func TestIsLocalModule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "utils.py"), "")
	writeFile(t, filepath.Join(root, "mypkg", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "data", "x.csv"), "")

	tests := []struct {
		name string
		want bool
	}{
		{"utils", true},
		{"mypkg", true},
		{"data", true},
		{"requests", false},
		{"", false},
		{"..", false},
	}
	for _, tt := range tests {
		if got := IsLocalModule(root, tt.name); got != tt.want {
			t.Errorf("IsLocalModule(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDetector(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pyproject.toml"), "[project]\nname = \"My_App\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(root, "src", "my_app", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "scripts.py"), "")

	d := NewDetector(root)
	if d.Name != "my-app" {
		t.Errorf("Name = %q, want my-app", d.Name)
	}
	for _, name := range []string{"my_app", "My-App", "scripts"} {
		if !d.IsLocal(name) {
			t.Errorf("IsLocal(%q) = false", name)
		}
	}
	if d.IsLocal("flask") {
		t.Error("IsLocal(flask) = true")
	}
}

func TestPyprojectName(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"pep621", "[project]\nname = \"app\"\n", "app"},
		{"poetry", "[tool.poetry]\nname = \"poetry-app\"\n", "poetry-app"},
		{"malformed", "[project\nname=", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, filepath.Join(root, "pyproject.toml"), tt.content)
			if got := PyprojectName(root); got != tt.want {
				t.Errorf("PyprojectName = %q, want %q", got, tt.want)
			}
		})
	}
	if got := PyprojectName(t.TempDir()); got != "" {
		t.Errorf("missing pyproject: got %q", got)
	}
}
