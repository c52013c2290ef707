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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/walteh/fuzzpatch/pkg/match"
)

// 🎨 Display configuration
const (
	editIndent    = 2  // spaces to indent edit entries
	pathWidth     = 35 // Base width for the target path
	spanWidth     = 14 // Width for the line range
	statusWidth   = 12 // Width for status text
	previewLength = 48 // characters of a candidate shown in tables
)

// 🎯 EditOperation is one edit attempt for logging
type EditOperation struct {
	Target   string     // Target file path
	Span     match.Span // Matched or best candidate range
	HasSpan  bool       // Whether Span is meaningful
	Score    float64    // Score of the span
	Status   string     // Outcome (EDITED, NO MATCH, AMBIGUOUS, ...)
	Accepted bool       // Whether the edit was applied
	Artifact string     // Diagnostics record, if one was written
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger. Every console line is mirrored to zlog.
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatEditOperation formats an edit attempt for display
func (l *Logger) formatEditOperation(op EditOperation) string {
	symbol, symbolColor := '✗', color.FgRed
	if op.Accepted {
		symbol, symbolColor = '✓', color.FgGreen
	}

	span := "-"
	if op.HasSpan {
		span = op.Span.String()
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", editIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", pathWidth, op.Target),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", spanWidth, span)),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", statusWidth, op.Status)))
	if op.HasSpan {
		line += color.New(color.Faint).Sprintf(" score %.3f", op.Score)
	}
	return line
}

// 📝 LogEditOperation logs an edit attempt
func (l *Logger) LogEditOperation(ctx context.Context, op EditOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatEditOperation(op))
	if op.Artifact != "" {
		fmt.Fprintf(l.console, "%*s%s %s\n", editIndent+2, "",
			color.New(color.Faint).Sprint("diagnostics:"), op.Artifact)
	}

	event := l.zlog.Info()
	if !op.Accepted {
		event = l.zlog.Warn()
	}
	event.
		Str("target", op.Target).
		Str("status", op.Status).
		Bool("accepted", op.Accepted).
		Float64("score", op.Score).
		Str("artifact", op.Artifact).
		Msg("edit operation")
}

// 📊 CandidateTable prints ranked candidates as a table
func (l *Logger) CandidateTable(ctx context.Context, candidates []match.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	data := pterm.TableData{{"#", "lines", "score", "text"}}
	for i, c := range candidates {
		score := fmt.Sprintf("%.3f", c.Score)
		if c.Truncated {
			score = "<" + score
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i+1),
			c.Span.String(),
			score,
			preview(c.Normalized),
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, table)
	l.zlog.Debug().Int("candidates", len(candidates)).Msg("candidate table")
	return nil
}

// 🔀 Diff prints a character diff from the pattern to a candidate
func (l *Logger) Diff(pattern, candidate string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(pattern, candidate, false))

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, color.New(color.Faint).Sprint("pattern → best candidate:"))
	fmt.Fprintln(l.console, dmp.DiffPrettyText(diffs))
	l.zlog.Debug().Int("diffs", len(diffs)).Msg("pattern diff")
}

// preview is the first line of s, shortened for tables
func preview(s string) string {
	first, _, more := strings.Cut(strings.TrimSpace(s), "\n")
	r := []rune(first)
	if len(r) > previewLength {
		return string(r[:previewLength-1]) + "…"
	}
	if more {
		return first + " …"
	}
	return first
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("fuzzpatch")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
