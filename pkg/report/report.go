// Package report renders the outcome of a sync run as text, JSON or YAML.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/autoreqs/pkg/reconcile"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[Format]bool{
	FormatText: true,
	FormatJSON: true,
	FormatYAML: true,
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, nil
	}
	if !ValidFormats[f] {
		return "", fmt.Errorf("invalid format: %s (must be text, json, or yaml)", s)
	}
	return f, nil
}

// Report describes one scan, update or upgrade run.
type Report struct {
	Command  string            `json:"command" yaml:"command"`
	Root     string            `json:"root" yaml:"root"`
	Manifest string            `json:"manifest" yaml:"manifest"`
	Python   string            `json:"python,omitempty" yaml:"python,omitempty"`
	Files    int               `json:"files" yaml:"files"`
	Skipped  []string          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Imports  []string          `json:"imports" yaml:"imports"`
	Changes  reconcile.Changes `json:"changes" yaml:"changes"`
	DryRun   bool              `json:"dry_run" yaml:"dry_run"`
	Written  bool              `json:"written" yaml:"written"`
}

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleAdded   = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleRemoved = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Render encodes r in the given format.
func Render(r Report, format Format) ([]byte, error) {
	switch format {
	case FormatText, "":
		return []byte(renderText(r)), nil
	case FormatJSON:
		payload, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(payload, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("invalid format: %s", format)
	}
}

func renderText(r Report) string {
	var b strings.Builder
	c := r.Changes

	if r.DryRun {
		b.WriteString(styleDim.Render("Dry run: no changes will be saved.") + "\n")
	}
	if len(c.Missing) > 0 {
		b.WriteString("\n" + styleHeading.Render(fmt.Sprintf("Added %d new %s:", len(c.Missing), plural(len(c.Missing), "package"))) + "\n")
		for _, a := range c.Missing {
			b.WriteString("  " + styleAdded.Render("+ "+a.Name+"=="+a.Version) + "\n")
		}
	}
	if len(c.Unused) > 0 {
		b.WriteString("\n" + styleHeading.Render(fmt.Sprintf("Removed %d unused %s:", len(c.Unused), plural(len(c.Unused), "package"))) + "\n")
		for _, name := range c.Unused {
			b.WriteString("  " + styleRemoved.Render("- "+name) + "\n")
		}
	}
	if len(c.Upgraded) > 0 {
		b.WriteString("\n" + styleHeading.Render(fmt.Sprintf("Upgraded %d %s:", len(c.Upgraded), plural(len(c.Upgraded), "package"))) + "\n")
		for _, u := range c.Upgraded {
			b.WriteString(fmt.Sprintf("  %s %s → %s\n", u.Name, styleDim.Render(u.From), styleAdded.Render(u.To)))
		}
	}
	if len(c.Unresolved) > 0 {
		b.WriteString("\n" + styleWarning.Render(fmt.Sprintf("No version found for %d %s:", len(c.Unresolved), plural(len(c.Unresolved), "import"))) + "\n")
		for _, name := range c.Unresolved {
			b.WriteString("  " + styleWarning.Render("! "+name) + "\n")
		}
	}
	if c.Empty() {
		b.WriteString("\nNo changes required.\n")
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
