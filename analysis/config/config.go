// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the taint model tooling.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:",inline"`

	sourceFile string

	// ModelFiles is a list of paths to json or yaml files containing model documents. Relative paths are resolved
	// against the directory of the config file.
	ModelFiles []string `yaml:"model-files"`

	// Heuristics bound the size of the models
	Heuristics Heuristics `yaml:"heuristics"`
}

// Options are the general options of the tools.
type Options struct {
	// LogLevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// StrictModels makes unexpected members of model documents a parse error. When false, unknown members are
	// ignored, which is what caches written by a newer version of the tool need.
	StrictModels bool `yaml:"strict-models"`

	// LenientModels drops facts that are not consistent with their method instead of failing. Dropped facts are
	// recorded as diagnostics.
	LenientModels bool `yaml:"lenient-models"`

	// EmitPositions adds the position of the method to the exported models
	EmitPositions bool `yaml:"emit-positions"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// Heuristics contains the bounds used to keep models finite.
type Heuristics struct {
	// MaxInputPathDepth is the maximum length of the path of sink and propagation input ports
	MaxInputPathDepth int `yaml:"max-input-path-depth"`

	// MaxOutputPathDepth is the maximum length of the path of generation ports
	MaxOutputPathDepth int `yaml:"max-output-path-depth"`

	// MaxTreeHeight is the height at which trees are collapsed by the widening
	MaxTreeHeight int `yaml:"max-tree-height"`

	// MaxTreeLeaves is the maximum number of leaves a tree may have after widening
	MaxTreeLeaves int `yaml:"max-tree-leaves"`

	// MaxSourceSinkDistance is the maximum number of calls a source or sink may be propagated through
	MaxSourceSinkDistance int `yaml:"max-source-sink-distance"`

	// MaxAccessPathDepth is the maximum path length kept when collapsing invalid paths
	MaxAccessPathDepth int `yaml:"max-access-path-depth"`

	// WideningThreshold is the number of iterations on a method after which its model is approximated at every
	// iteration (see model.Context.ShouldWiden)
	WideningThreshold int `yaml:"widening-threshold"`
}

// DefaultHeuristics returns the default bounds.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		MaxInputPathDepth:     DefaultMaxInputPathDepth,
		MaxOutputPathDepth:    DefaultMaxOutputPathDepth,
		MaxTreeHeight:         DefaultMaxTreeHeight,
		MaxTreeLeaves:         DefaultMaxTreeLeaves,
		MaxSourceSinkDistance: DefaultMaxSourceSinkDistance,
		MaxAccessPathDepth:    DefaultMaxAccessPathDepth,
		WideningThreshold:     DefaultWideningThreshold,
	}
}

// withDefaults replaces every non-positive bound by its default value
func (h Heuristics) withDefaults() Heuristics {
	d := DefaultHeuristics()
	pick := func(x, def int) int {
		if x <= 0 {
			return def
		}
		return x
	}
	return Heuristics{
		MaxInputPathDepth:     pick(h.MaxInputPathDepth, d.MaxInputPathDepth),
		MaxOutputPathDepth:    pick(h.MaxOutputPathDepth, d.MaxOutputPathDepth),
		MaxTreeHeight:         pick(h.MaxTreeHeight, d.MaxTreeHeight),
		MaxTreeLeaves:         pick(h.MaxTreeLeaves, d.MaxTreeLeaves),
		MaxSourceSinkDistance: pick(h.MaxSourceSinkDistance, d.MaxSourceSinkDistance),
		MaxAccessPathDepth:    pick(h.MaxAccessPathDepth, d.MaxAccessPathDepth),
		WideningThreshold:     pick(h.WideningThreshold, d.WideningThreshold),
	}
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		ModelFiles: []string{},
		Heuristics: DefaultHeuristics(),
		Options: Options{
			LogLevel:      int(InfoLevel),
			StrictModels:  true,
			LenientModels: false,
			EmitPositions: false,
			SilenceWarn:   false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := LoadFromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("could not load config file %s: %w", filename, err)
	}
	cfg.sourceFile = filename
	dir := filepath.Dir(filename)
	for i, modelFile := range cfg.ModelFiles {
		if !filepath.IsAbs(modelFile) {
			cfg.ModelFiles[i] = filepath.Join(dir, modelFile)
		}
	}
	return cfg, nil
}

// LoadFromBytes parses a configuration from its yaml content.
func LoadFromBytes(b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.LogLevel < int(ErrLevel) || cfg.LogLevel > int(TraceLevel) {
		return nil, fmt.Errorf("log-level must be between %d and %d, got %d", ErrLevel, TraceLevel, cfg.LogLevel)
	}
	cfg.Heuristics = cfg.Heuristics.withDefaults()
	return cfg, nil
}

// SourceFile returns the file the config has been loaded from, or the empty string for configs not loaded from
// a file.
func (c Config) SourceFile() string {
	return c.sourceFile
}
