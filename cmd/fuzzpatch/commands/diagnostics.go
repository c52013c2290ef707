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

package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fuzzpatch/cmd/fuzzpatch/opts"
	"github.com/walteh/fuzzpatch/pkg/diag"
)

// NewDiagnosticsCmd creates the diagnostics command
func NewDiagnosticsCmd(rootOpts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "diagnostics",
		Aliases: []string{"diag"},
		Short:   "Inspect the records of refused edits",
	}

	cmd.AddCommand(
		newDiagnosticsListCmd(rootOpts),
		newDiagnosticsPruneCmd(rootOpts),
	)
	return cmd
}

func newDiagnosticsListCmd(rootOpts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List diagnostics records, newest first",
		Long: `List prints the diagnostics records in the diagnostics directory.
A query keeps only records whose target path contains its characters in
order, ignoring case.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := rootOpts.Config.Diagnostics.Dir

			entries, err := diag.List(ctx, dir)
			if err != nil {
				return errors.Errorf("listing diagnostics: %w", err)
			}
			if len(args) == 1 {
				entries = diag.Filter(entries, args[0])
			}

			if len(entries) == 0 {
				rootOpts.Console.Infof("no diagnostics in %s", dir)
				return nil
			}

			data := pterm.TableData{{"created", "reason", "target", "candidates", "best", "file"}}
			for _, e := range entries {
				best := "-"
				if len(e.Artifact.Candidates) > 0 {
					best = fmt.Sprintf("%.3f", e.Artifact.Candidates[0].Score)
				}
				data = append(data, []string{
					e.Artifact.CreatedAt.Local().Format(time.DateTime),
					e.Artifact.Reason,
					e.Artifact.Target,
					fmt.Sprintf("%d", len(e.Artifact.Candidates)),
					best,
					e.Path,
				})
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering table: %w", err)
			}
			_, err = fmt.Fprintln(rootOpts.Stdout, table)
			return err
		},
	}
}

func newDiagnosticsPruneCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var (
		olderThan time.Duration
		glob      string
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old diagnostics records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := diag.Prune(cmd.Context(), rootOpts.Config.Diagnostics.Dir, glob, olderThan)
			if err != nil {
				return errors.Errorf("pruning diagnostics: %w", err)
			}
			rootOpts.Console.Successf("removed %d diagnostics records", len(removed))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "remove records last modified before this long ago")
	cmd.Flags().StringVar(&glob, "glob", "*.json", "only consider files matching this pattern")

	return cmd
}
