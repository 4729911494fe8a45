package report

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/autoreqs/pkg/reconcile"
)

func sampleReport() Report {
	return Report{
		Command:  "update",
		Root:     "/work/app",
		Manifest: "/work/app/requirements.txt",
		Files:    3,
		Imports:  []string{"os", "requests"},
		Changes: reconcile.Changes{
			Missing:    []reconcile.Addition{{Name: "requests", Version: "2.31.0", Import: "requests"}},
			Unused:     []string{"oldpkg"},
			Unresolved: []string{"flask"},
		},
		Written: true,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestRenderText(t *testing.T) {
	out, err := Render(sampleReport(), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	for _, want := range []string{
		"Added 1 new package:",
		"requests==2.31.0",
		"Removed 1 unused package:",
		"oldpkg",
		"flask",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "No changes required") {
		t.Error("text output claims no changes")
	}
}

func TestRenderTextNoChanges(t *testing.T) {
	out, err := Render(Report{Command: "scan", DryRun: true}, FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "No changes required.") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(string(out), "Dry run") {
		t.Errorf("dry run not announced: %q", out)
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(sampleReport(), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Command string `json:"command"`
		Changes struct {
			Missing []struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"missing"`
			Unused []string `json:"unused"`
		} `json:"changes"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.Command != "update" || len(decoded.Changes.Missing) != 1 || decoded.Changes.Unused[0] != "oldpkg" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestRenderYAML(t *testing.T) {
	out, err := Render(sampleReport(), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if decoded["manifest"] != "/work/app/requirements.txt" {
		t.Errorf("manifest = %v", decoded["manifest"])
	}
	if !strings.Contains(string(out), "dry_run: false") {
		t.Errorf("yaml output:\n%s", out)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render(sampleReport(), Format("xml")); err == nil {
		t.Error("expected error for unknown format")
	}
}
