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
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser decodes one config format over an already defaulted config.
// Keys absent from the file keep the value they had.
type Parser interface {
	Parse(ctx context.Context, data []byte, cfg *Config) error
	CanParse(filename string) bool
}

var parsers []Parser

// Register adds a parser to the registry
func Register(p Parser) {
	parsers = append(parsers, p)
}

// GetParser returns the first registered parser that accepts filename.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📦 Load reads the config at path. Values are layered as defaults, then the
// file, then FUZZPATCH_* environment variables; the result is validated.
func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	parser := GetParser(path)
	if parser == nil {
		return nil, errors.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	cfg := Default()
	if err := parser.Parse(ctx, data, cfg); err != nil {
		return nil, errors.Errorf("parsing %s: %w", path, err)
	}
	cfg.location = path

	return finish(ctx, cfg)
}

// LoadOptional is Load, except a missing file yields the defaults.
func LoadOptional(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(ctx, path)
		} else if !os.IsNotExist(err) {
			return nil, errors.Errorf("checking config file: %w", err)
		}
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("no config file, using defaults")
	}
	return finish(ctx, Default())
}

func finish(ctx context.Context, cfg *Config) (*Config, error) {
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.Diagnostics.Dir = strings.TrimSpace(cfg.Diagnostics.Dir)
	if cfg.Diagnostics.Dir == "" {
		cfg.Diagnostics.Dir = DefaultDiagnosticsDir()
	} else {
		cfg.Diagnostics.Dir = expandHome(cfg.Diagnostics.Dir)
	}

	if err := Validate(ctx, cfg); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}
