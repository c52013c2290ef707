package config

import (
	"strconv"

	"gitlab.com/tozd/go/errors"
)

// Environment variables that override file values.
const (
	EnvAcceptThreshold     = "FUZZPATCH_ACCEPT_THRESHOLD"
	EnvAmbiguityMargin     = "FUZZPATCH_AMBIGUITY_MARGIN"
	EnvLengthSlack         = "FUZZPATCH_LENGTH_SLACK"
	EnvTopK                = "FUZZPATCH_TOP_K"
	EnvWorkers             = "FUZZPATCH_WORKERS"
	EnvDiagnosticsDir      = "FUZZPATCH_DIAGNOSTICS_DIR"
	EnvDiagnosticsDisabled = "FUZZPATCH_DIAGNOSTICS_DISABLED"
)

// ApplyEnv overrides cfg with any set FUZZPATCH_* variable. lookup is usually
// os.LookupEnv. Empty values are ignored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAcceptThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Errorf("parsing %s: %w", EnvAcceptThreshold, err)
		}
		cfg.Thresholds.AcceptThreshold = f
	}
	if v, ok := get(EnvAmbiguityMargin); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Errorf("parsing %s: %w", EnvAmbiguityMargin, err)
		}
		cfg.Thresholds.AmbiguityMargin = f
	}
	for key, dst := range map[string]*int{
		EnvLengthSlack: &cfg.Search.LengthSlack,
		EnvTopK:        &cfg.Search.TopK,
		EnvWorkers:     &cfg.Search.Workers,
	} {
		v, ok := get(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Errorf("parsing %s: %w", key, err)
		}
		*dst = n
	}
	if v, ok := get(EnvDiagnosticsDir); ok {
		cfg.Diagnostics.Dir = v
	}
	if v, ok := get(EnvDiagnosticsDisabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Errorf("parsing %s: %w", EnvDiagnosticsDisabled, err)
		}
		cfg.Diagnostics.Disabled = b
	}
	return nil
}
