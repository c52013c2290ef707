// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Default tunables. With these, spacing drift clears the threshold on any
// line, and one typo does on a line of seven or more characters.
const (
	DefaultAcceptThreshold      = 0.85
	DefaultAmbiguityMargin      = 0.10
	DefaultLengthSlack          = 2
	DefaultPrefilterRatio       = 0.34
	DefaultPrefilterMinDistance = 2
	DefaultScoreFloor           = 0.50
	DefaultTopK                 = 5
	DefaultContextLines         = 3

	// DefaultDiagnosticsDirName is created under the user's home directory.
	DefaultDiagnosticsDirName = ".fuzzpatch-debug"
)

// 🎯 Thresholds is the acceptance policy of the match selector.
type Thresholds struct {
	// AcceptThreshold is the minimum score for a candidate to be viable.
	AcceptThreshold float64 `json:"accept_threshold" yaml:"accept_threshold" validate:"gt=0,lte=1"`
	// AmbiguityMargin is the minimum gap between the best and second best
	// viable candidates needed to accept the best one.
	AmbiguityMargin float64 `json:"ambiguity_margin" yaml:"ambiguity_margin" validate:"gte=0,lte=1"`
}

// DefaultThresholds returns the built-in policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AcceptThreshold: DefaultAcceptThreshold,
		AmbiguityMargin: DefaultAmbiguityMargin,
	}
}

// Validate checks the policy on its own, without the rest of the config.
func (t Thresholds) Validate() error {
	if t.AcceptThreshold <= 0 || t.AcceptThreshold > 1 {
		return errors.Errorf("accept_threshold must be in (0, 1], got %v", t.AcceptThreshold)
	}
	if t.AmbiguityMargin < 0 || t.AmbiguityMargin > 1 {
		return errors.Errorf("ambiguity_margin must be in [0, 1], got %v", t.AmbiguityMargin)
	}
	return nil
}

// 🔎 Search tunes candidate generation and scoring cost.
type Search struct {
	// LengthSlack is how many lines shorter or longer than the pattern a
	// candidate span may be.
	LengthSlack int `json:"length_slack" yaml:"length_slack" validate:"gte=0,lte=64"`
	// PrefilterRatio and PrefilterMinDistance bound the edit distance between
	// the pattern's first line and a start line for it to be scanned first.
	PrefilterRatio       float64 `json:"prefilter_ratio" yaml:"prefilter_ratio" validate:"gte=0,lte=1"`
	PrefilterMinDistance int     `json:"prefilter_min_distance" yaml:"prefilter_min_distance" validate:"gte=0"`
	// ScoreFloor lets scoring stop early once a candidate cannot reach it.
	ScoreFloor float64 `json:"score_floor" yaml:"score_floor" validate:"gte=0,lt=1"`
	// TopK is how many ranked candidates a result carries.
	TopK int `json:"top_k" yaml:"top_k" validate:"gte=1,lte=100"`
	// Workers shards scoring; zero means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0,lte=256"`
}

// 🩺 Diagnostics configures where rejection records go.
type Diagnostics struct {
	Dir          string `json:"dir" yaml:"dir"`
	ContextLines int    `json:"context_lines" yaml:"context_lines" validate:"gte=0,lte=50"`
	Disabled     bool   `json:"disabled" yaml:"disabled"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Thresholds  Thresholds  `json:"thresholds" yaml:"thresholds"`
	Search      Search      `json:"search" yaml:"search"`
	Diagnostics Diagnostics `json:"diagnostics" yaml:"diagnostics"`

	location string
}

// Default returns a config with every value at its default. The diagnostics
// directory is left empty and resolved by Load.
func Default() *Config {
	return &Config{
		Thresholds: DefaultThresholds(),
		Search: Search{
			LengthSlack:          DefaultLengthSlack,
			PrefilterRatio:       DefaultPrefilterRatio,
			PrefilterMinDistance: DefaultPrefilterMinDistance,
			ScoreFloor:           DefaultScoreFloor,
			TopK:                 DefaultTopK,
		},
		Diagnostics: Diagnostics{
			ContextLines: DefaultContextLines,
		},
	}
}

// Location is the file the config was loaded from, empty for defaults.
func (cfg *Config) Location() string {
	return cfg.location
}

var validate = validator.New()

// 🔍 Validate checks the config as a whole.
func Validate(ctx context.Context, cfg *Config) error {
	if err := validate.StructCtx(ctx, cfg); err != nil {
		return errors.Errorf("invalid config: %w", err)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return err
	}
	if cfg.Search.ScoreFloor > cfg.Thresholds.AcceptThreshold {
		return errors.Errorf("score_floor (%v) must not exceed accept_threshold (%v)",
			cfg.Search.ScoreFloor, cfg.Thresholds.AcceptThreshold)
	}
	return nil
}

// DefaultDiagnosticsDir is the per-user directory for rejection records.
func DefaultDiagnosticsDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), DefaultDiagnosticsDirName)
	}
	return filepath.Join(home, DefaultDiagnosticsDirName)
}

// expandHome turns a leading "~/" into the user's home directory.
func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("accept>=%.2f margin>=%.2f slack=%d topk=%d diagnostics=%s",
		cfg.Thresholds.AcceptThreshold, cfg.Thresholds.AmbiguityMargin,
		cfg.Search.LengthSlack, cfg.Search.TopK, cfg.Diagnostics.Dir)
}

// YAML renders the effective config for tools that need the tunables.
func (cfg *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Errorf("marshaling config: %w", err)
	}
	return out, nil
}
