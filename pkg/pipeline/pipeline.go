// Package pipeline runs a complete autoreqs sync.
//
// A run validates the project path, loads the project config, scans the
// source tree, inspects the Python environment, reconciles the imports with
// the manifest and, unless it is a dry run, writes the manifest back:
//
//	runner := pipeline.NewRunner(nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Command: pipeline.CommandUpdate,
//	    Path:    "./myproject",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(result.Report.Changes.Missing), "added")
//
// The three commands share one algorithm. scan and update differ only in
// intent; upgrade additionally re-pins surviving pinned requirements.
package pipeline

import (
	"fmt"

	"github.com/matzehuels/autoreqs/pkg/errors"
	"github.com/matzehuels/autoreqs/pkg/integrations/pypi"
	"github.com/matzehuels/autoreqs/pkg/manifest"
)

// Commands accepted by Options.Command.
const (
	CommandScan    = "scan"
	CommandUpdate  = "update"
	CommandUpgrade = "upgrade"
)

// ValidCommands is the set of supported commands.
var ValidCommands = map[string]bool{
	CommandScan:    true,
	CommandUpdate:  true,
	CommandUpgrade: true,
}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures one run.
type Options struct {
	Command          string `json:"command"`
	Path             string `json:"path"`
	ManifestFilename string `json:"manifest_filename,omitempty"`
	Python           string `json:"python,omitempty"`    // explicit interpreter; discovered when empty
	IndexURL         string `json:"index_url,omitempty"` // PyPI JSON API root
	Offline          bool   `json:"offline,omitempty"`   // never contact the index
	DryRun           bool   `json:"dry_run,omitempty"`
}

// ValidateCommand checks that command is supported.
func ValidateCommand(command string) error {
	if !ValidCommands[command] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid command: %s (must be scan, update, or upgrade)", command)
	}
	return nil
}

// ValidateAndSetDefaults fills in defaults and validates the options.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Command == "" {
		o.Command = CommandScan
	}
	if err := ValidateCommand(o.Command); err != nil {
		return err
	}
	if o.Path == "" {
		o.Path = "."
	}
	if o.ManifestFilename == "" {
		o.ManifestFilename = manifest.DefaultFileName
	}
	if err := errors.ValidateManifestFilename(o.ManifestFilename); err != nil {
		return err
	}
	if o.IndexURL == "" {
		o.IndexURL = pypi.DefaultBaseURL
	}
	if err := errors.ValidateURL(o.IndexURL); err != nil {
		return fmt.Errorf("index url: %w", err)
	}
	return nil
}

// Upgrade reports whether pinned requirements should be re-pinned.
func (o *Options) Upgrade() bool {
	return o.Command == CommandUpgrade
}
