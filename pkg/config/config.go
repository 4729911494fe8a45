// Package config loads per-project settings.
//
// Settings come from three layers, later layers winning key by key:
// built-in defaults, the [tool.autoreqs] table of pyproject.toml, and the
// .auto-reqs.json file at the project root. A missing or malformed layer
// contributes no overrides; it never fails the run.
package config

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/matzehuels/autoreqs/pkg/errors"
	"github.com/matzehuels/autoreqs/pkg/scanner"
)

// FileName is the JSON config file looked up at the project root.
const FileName = ".auto-reqs.json"

//go:embed schema.json
var schemaJSON string

var schema = gojsonschema.NewStringLoader(schemaJSON)

// Config holds the effective project settings.
type Config struct {
	// Exclude lists directory names skipped while scanning.
	Exclude []string `json:"exclude" yaml:"exclude"`
	// Include is reserved and not used by the scanner.
	Include []string `json:"include" yaml:"include"`
	// IgnoreWarnings is reserved.
	IgnoreWarnings bool `json:"ignore_warnings" yaml:"ignore_warnings"`
}

// Overrides is a partial Config; nil fields leave the default in place.
type Overrides struct {
	Exclude        *[]string `json:"exclude" toml:"exclude"`
	Include        *[]string `json:"include" toml:"include"`
	IgnoreWarnings *bool     `json:"ignore_warnings" toml:"ignore_warnings"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Exclude:        slices.Clone(scanner.DefaultExclude),
		Include:        []string{},
		IgnoreWarnings: true,
	}
}

// Merge overlays o onto defaults. Neither argument is modified.
func Merge(defaults Config, o Overrides) Config {
	out := Config{
		Exclude:        slices.Clone(defaults.Exclude),
		Include:        slices.Clone(defaults.Include),
		IgnoreWarnings: defaults.IgnoreWarnings,
	}
	if o.Exclude != nil {
		out.Exclude = slices.Clone(*o.Exclude)
	}
	if o.Include != nil {
		out.Include = slices.Clone(*o.Include)
	}
	if o.IgnoreWarnings != nil {
		out.IgnoreWarnings = *o.IgnoreWarnings
	}
	return out
}

// Parse validates JSON config data against the config schema and decodes it.
// Invalid JSON or schema violations return ErrCodeInvalidConfig.
func Parse(data []byte) (Overrides, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Overrides{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config is not valid JSON")
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, item := range result.Errors() {
			messages = append(messages, item.String())
		}
		return Overrides{}, errors.New(errors.ErrCodeInvalidConfig, "config does not match schema: %s", strings.Join(messages, "; "))
	}
	var o Overrides
	if err := json.Unmarshal(data, &o); err != nil {
		return Overrides{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	return o, nil
}

// ParsePyproject decodes the [tool.autoreqs] table of pyproject.toml data.
func ParsePyproject(data []byte) (Overrides, error) {
	var doc struct {
		Tool struct {
			Autoreqs Overrides `toml:"autoreqs"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Overrides{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode pyproject.toml")
	}
	return doc.Tool.Autoreqs, nil
}

// Load returns the effective settings for the project at root. Problems
// with either file are logged at debug level and otherwise ignored.
func Load(root string, logger *log.Logger) Config {
	if logger == nil {
		logger = log.Default()
	}
	cfg := Default()
	layers := []struct {
		file  string
		parse func([]byte) (Overrides, error)
	}{
		{"pyproject.toml", ParsePyproject},
		{FileName, Parse},
	}
	for _, layer := range layers {
		path := filepath.Join(root, layer.file)
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Debug("config unreadable", "path", path, "err", err)
			}
			continue
		}
		o, err := layer.parse(data)
		if err != nil {
			logger.Debug("config ignored", "path", path, "err", err)
			continue
		}
		cfg = Merge(cfg, o)
	}
	return cfg
}
