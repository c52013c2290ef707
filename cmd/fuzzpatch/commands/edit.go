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
	"context"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fuzzpatch/cmd/fuzzpatch/opts"
	"github.com/walteh/fuzzpatch/pkg/edit"
	"github.com/walteh/fuzzpatch/pkg/log"
)

// NewEditCmd creates the edit command
func NewEditCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "edit <pattern-file> <replacement-file> <target-file>",
		Short: "Replace the region of target-file that pattern-file refers to",
		Long: `Edit locates the single region of the target file that best matches the
pattern and replaces it with the replacement file's contents.
It will:
1. Normalize whitespace in the pattern and the target
2. Score every candidate region of about the pattern's length
3. Accept the best region only if it clears the threshold and is unique
4. Write the target atomically, or leave it untouched and report why`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunEdit(cmd.Context(), rootOpts, args, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the edited target instead of writing it")

	return cmd
}

// RunEdit runs one edit and reports the outcome on the console.
func RunEdit(ctx context.Context, rootOpts *opts.RootOpts, args []string, dryRun bool) error {
	engine := edit.New(rootOpts.Config, rootOpts.Sink)
	if dryRun {
		engine.WithWriter(func(context.Context, string, []byte) error { return nil })
	}

	req := edit.Request{
		PatternPath:     args[0],
		ReplacementPath: args[1],
		TargetPath:      args[2],
	}

	out, err := engine.Run(ctx, req)
	if err != nil {
		reportFailure(ctx, rootOpts.Console, err)
		return err
	}

	status := "EDITED"
	if !out.Changed {
		status = "UNCHANGED"
	}
	rootOpts.Console.LogEditOperation(ctx, log.EditOperation{
		Target:   out.Target,
		Span:     out.Best.Span,
		HasSpan:  true,
		Score:    out.Best.Score,
		Status:   status,
		Accepted: true,
	})

	if dryRun {
		if _, err := rootOpts.Stdout.Write(out.Content); err != nil {
			return errors.Errorf("writing edited target: %w", err)
		}
	}
	return nil
}

// reportFailure prints a failed edit with its ranked candidates
func reportFailure(ctx context.Context, console *log.Logger, err error) {
	var editErr *edit.Error
	if !errors.As(err, &editErr) {
		return
	}

	op := log.EditOperation{
		Target:   editErr.Target,
		Status:   strings.ToUpper(editErr.Kind.String()),
		Artifact: editErr.Artifact,
	}
	if len(editErr.Candidates) > 0 {
		op.Span, op.HasSpan, op.Score = editErr.Candidates[0].Span, true, editErr.Candidates[0].Score
	}
	console.LogEditOperation(ctx, op)
	if editErr.Err != nil {
		console.Error(editErr.Err.Error())
	}

	if len(editErr.Candidates) == 0 {
		return
	}
	if err := console.CandidateTable(ctx, editErr.Candidates); err != nil {
		console.Warningf("rendering candidates: %v", err)
	}
	console.Diff(editErr.Pattern, editErr.Candidates[0].Normalized)
}
