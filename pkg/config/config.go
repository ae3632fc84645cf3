// Package config loads the optional YAML run file.
//
// A run file fixes the settings of one script run so that it can be repeated:
//
//	max_steps: 100000
//	encoding: shift_jis
//	log_level: debug
//	base_dir: ./data
//	seed: 42
//	inputs:
//	  count: 3
//	  name: "abc"
//	  samples: [1, 2.5, 3]
//
// Every key is optional. Unknown keys are rejected so that typos do not pass
// silently.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zurustar/bna/pkg/logger"
	"github.com/zurustar/bna/pkg/script"
	"github.com/zurustar/bna/pkg/value"
	"gopkg.in/yaml.v3"
)

// RunConfig is the decoded run file.
type RunConfig struct {
	MaxSteps int            `yaml:"max_steps"`
	Encoding string         `yaml:"encoding"`
	LogLevel string         `yaml:"log_level"`
	BaseDir  string         `yaml:"base_dir"`
	Seed     uint64         `yaml:"seed"`
	Inputs   map[string]any `yaml:"inputs"`

	// Path is the absolute path the file was loaded from; empty for Parse.
	Path string `yaml:"-"`
}

// ValidationError collects every problem found in a run file.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "config: " + strings.Join(e.Issues, "; ")
}

// Load reads and validates the run file at path. A relative base_dir is
// resolved against the directory of the file.
func Load(path string) (*RunConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, absPath)
	}
	cfg.Path = absPath
	if cfg.BaseDir != "" && !filepath.IsAbs(cfg.BaseDir) {
		cfg.BaseDir = filepath.Join(filepath.Dir(absPath), cfg.BaseDir)
	}
	return cfg, nil
}

// Parse decodes and validates a run file held in memory.
func Parse(data []byte) (*RunConfig, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var cfg RunConfig
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty file means all defaults.
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *RunConfig) validate() error {
	var errs ValidationError
	if c.MaxSteps < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_steps must be non-negative, got %d", c.MaxSteps))
	}
	if c.LogLevel != "" {
		if _, err := logger.ParseLevel(c.LogLevel); err != nil {
			errs.Issues = append(errs.Issues, err.Error())
		}
	}
	if _, err := script.LookupEncoding(c.Encoding); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	for _, name := range sortedKeys(c.Inputs) {
		if _, err := value.FromAny(c.Inputs[name]); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("inputs.%s: %v", name, err))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Values converts the inputs section into runtime values.
func (c *RunConfig) Values() (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(c.Inputs))
	for name, raw := range c.Inputs {
		v, err := value.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("config: inputs.%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
