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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// hclConfig is the flat HCL schema. gohcl leaves optional attributes that are
// absent untouched, so it is filled from the current config before decoding.
type hclConfig struct {
	AcceptThreshold      float64 `hcl:"accept_threshold,optional"`
	AmbiguityMargin      float64 `hcl:"ambiguity_margin,optional"`
	LengthSlack          int     `hcl:"length_slack,optional"`
	PrefilterRatio       float64 `hcl:"prefilter_ratio,optional"`
	PrefilterMinDistance int     `hcl:"prefilter_min_distance,optional"`
	ScoreFloor           float64 `hcl:"score_floor,optional"`
	TopK                 int     `hcl:"top_k,optional"`
	Workers              int     `hcl:"workers,optional"`
	DiagnosticsDir       string  `hcl:"diagnostics_dir,optional"`
	ContextLines         int     `hcl:"context_lines,optional"`
	DiagnosticsDisabled  bool    `hcl:"diagnostics_disabled,optional"`
}

// 📝 Parse parses the config from HCL. The expressions may reference
// env.HOME and env.TMPDIR.
func (p *HCLParser) Parse(ctx context.Context, data []byte, cfg *Config) error {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "fuzzpatch.hcl")
	if diags.HasErrors() {
		return errors.Errorf("parsing HCL: %s", diags.Error())
	}

	home, _ := os.UserHomeDir()
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(map[string]cty.Value{
				"HOME":   cty.StringVal(home),
				"TMPDIR": cty.StringVal(os.TempDir()),
			}),
		},
	}

	hclCfg := hclConfig{
		AcceptThreshold:      cfg.Thresholds.AcceptThreshold,
		AmbiguityMargin:      cfg.Thresholds.AmbiguityMargin,
		LengthSlack:          cfg.Search.LengthSlack,
		PrefilterRatio:       cfg.Search.PrefilterRatio,
		PrefilterMinDistance: cfg.Search.PrefilterMinDistance,
		ScoreFloor:           cfg.Search.ScoreFloor,
		TopK:                 cfg.Search.TopK,
		Workers:              cfg.Search.Workers,
		DiagnosticsDir:       cfg.Diagnostics.Dir,
		ContextLines:         cfg.Diagnostics.ContextLines,
		DiagnosticsDisabled:  cfg.Diagnostics.Disabled,
	}
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg.Thresholds.AcceptThreshold = hclCfg.AcceptThreshold
	cfg.Thresholds.AmbiguityMargin = hclCfg.AmbiguityMargin
	cfg.Search.LengthSlack = hclCfg.LengthSlack
	cfg.Search.PrefilterRatio = hclCfg.PrefilterRatio
	cfg.Search.PrefilterMinDistance = hclCfg.PrefilterMinDistance
	cfg.Search.ScoreFloor = hclCfg.ScoreFloor
	cfg.Search.TopK = hclCfg.TopK
	cfg.Search.Workers = hclCfg.Workers
	cfg.Diagnostics.Dir = hclCfg.DiagnosticsDir
	cfg.Diagnostics.ContextLines = hclCfg.ContextLines
	cfg.Diagnostics.Disabled = hclCfg.DiagnosticsDisabled

	return nil
}
