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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fuzzpatch/cmd/fuzzpatch/opts"
	"github.com/walteh/fuzzpatch/pkg/config"
)

// buildInfo describes the binary and the matching policy it runs with.
type buildInfo struct {
	Version    string            `json:"version"`
	Revision   string            `json:"revision,omitempty"`
	Modified   bool              `json:"modified,omitempty"`
	GoVersion  string            `json:"go_version"`
	Platform   string            `json:"platform"`
	Config     string            `json:"config"`
	Thresholds config.Thresholds `json:"thresholds"`
}

func readBuildInfo(cfg *config.Config) buildInfo {
	info := buildInfo{
		Version:    "dev",
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		Config:     "(defaults)",
		Thresholds: cfg.Thresholds,
	}
	if loc := cfg.Location(); loc != "" {
		info.Config = loc
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func writeBuildInfo(w io.Writer, info buildInfo) error {
	revision := info.Revision
	if revision == "" {
		revision = "unknown"
	}
	if info.Modified {
		revision += " (modified)"
	}
	_, err := fmt.Fprintf(w, `🚀 fuzzpatch %s
Revision:  %s
Go:        %s (%s)
Config:    %s
Accept:    score >= %.2f, lead >= %.2f
`, info.Version, revision, info.GoVersion, info.Platform, info.Config,
		info.Thresholds.AcceptThreshold, info.Thresholds.AmbiguityMargin)
	return err
}

func newVersionCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information and the acceptance policy in force",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := readBuildInfo(rootOpts.Config)
			if !asJSON {
				return writeBuildInfo(cmd.OutOrStdout(), info)
			}
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return errors.Errorf("marshaling version info: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as json")
	return cmd
}
