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

package edit

import (
	"bytes"
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fuzzpatch/pkg/config"
	"github.com/walteh/fuzzpatch/pkg/diag"
	"github.com/walteh/fuzzpatch/pkg/match"
	"github.com/walteh/fuzzpatch/pkg/patch"
	"github.com/walteh/fuzzpatch/pkg/text"
)

// Request names the three files of an edit.
type Request struct {
	PatternPath     string
	ReplacementPath string
	TargetPath      string
}

// 📦 Outcome is a successful edit.
type Outcome struct {
	Target  string
	Best    match.Candidate
	Scanned int
	// Content is the edited target.
	Content []byte
	// Changed is false when the replacement reproduced the span exactly.
	Changed bool
}

// WriteFunc persists the edited target.
type WriteFunc func(ctx context.Context, path string, content []byte) error

// 🔧 Engine locates a pattern in a target and replaces it.
type Engine struct {
	matcher      *match.Matcher
	sink         diag.Sink
	thresholds   config.Thresholds
	contextLines int
	write        WriteFunc
}

// New creates an engine. A nil sink discards diagnostics.
func New(cfg *config.Config, sink diag.Sink) *Engine {
	if sink == nil {
		sink = diag.NopSink{}
	}
	return &Engine{
		matcher:      match.New(match.OptionsFromConfig(cfg)),
		sink:         sink,
		thresholds:   cfg.Thresholds,
		contextLines: cfg.Diagnostics.ContextLines,
		write:        patch.WriteFileAtomic,
	}
}

// WithWriter replaces how the edited target is written.
func (e *Engine) WithWriter(w WriteFunc) *Engine {
	e.write = w
	return e
}

// Run reads the request's files, edits the target in memory and writes it
// back atomically. On any error the target file is unchanged.
func (e *Engine) Run(ctx context.Context, req Request) (*Outcome, error) {
	pattern, err := os.ReadFile(req.PatternPath)
	if err != nil {
		return nil, &Error{Kind: IOFailure, Target: req.TargetPath, Err: errors.Errorf("reading pattern: %w", err)}
	}
	replacement, err := os.ReadFile(req.ReplacementPath)
	if err != nil {
		return nil, &Error{Kind: IOFailure, Target: req.TargetPath, Err: errors.Errorf("reading replacement: %w", err)}
	}
	content, err := os.ReadFile(req.TargetPath)
	if err != nil {
		return nil, &Error{Kind: IOFailure, Target: req.TargetPath, Err: errors.Errorf("reading target: %w", err)}
	}

	out, err := e.RunContent(ctx, req.TargetPath, string(pattern), string(replacement), content)
	if err != nil {
		return nil, err
	}

	if out.Changed {
		if err := e.write(ctx, req.TargetPath, out.Content); err != nil {
			return nil, &Error{Kind: IOFailure, Target: req.TargetPath, Err: errors.Errorf("writing target: %w", err)}
		}
	}
	return out, nil
}

// RunContent edits content in memory. target only names it in errors and
// diagnostics.
func (e *Engine) RunContent(ctx context.Context, target, pattern, replacement string, content []byte) (*Outcome, error) {
	logger := zerolog.Ctx(ctx).With().Str("target", target).Logger()

	p := text.NewPattern(pattern)
	if p.IsEmpty() {
		return nil, &Error{Kind: InvalidInput, Target: target, Err: errors.New("pattern is empty")}
	}
	if len(content) == 0 {
		return nil, &Error{Kind: InvalidInput, Target: target, Err: errors.New("target is empty")}
	}

	doc := text.NewDocument(content)
	res, err := e.matcher.Find(ctx, p, doc)
	if err != nil {
		return nil, errors.Errorf("matching pattern: %w", err)
	}

	// a numbered target line can look like a gutter
	if res.Reason == match.ReasonNoMatch && p.HadGutter() {
		literal := text.NewLiteralPattern(pattern)
		lres, err := e.matcher.Find(ctx, literal, doc)
		if err != nil {
			return nil, errors.Errorf("matching pattern: %w", err)
		}
		if lres.Reason != match.ReasonNoMatch {
			logger.Debug().Msg("pattern matched with its line numbers kept")
			p, res = literal, lres
		}
	}

	if !res.Accepted {
		return nil, e.reject(ctx, target, p, doc, res)
	}

	edited, err := patch.Apply(doc, res.Best.Span, replacement)
	if err != nil {
		return nil, &Error{Kind: InvalidInput, Target: target, Err: err}
	}

	logger.Info().
		Stringer("span", res.Best.Span).
		Float64("score", res.Best.Score).
		Int("scanned", res.Scanned).
		Msg("pattern located")

	return &Outcome{
		Target:  target,
		Best:    *res.Best,
		Scanned: res.Scanned,
		Content: edited,
		Changed: !bytes.Equal(edited, content),
	}, nil
}

// reject records diagnostics for a refused match and builds its error.
// A failure to record is logged and does not change the error.
func (e *Engine) reject(ctx context.Context, target string, p *text.Pattern, doc *text.Document, res *match.Result) error {
	kind, cause := NoMatch, errors.New("no region of the target is similar enough to the pattern")
	if res.Reason == match.ReasonAmbiguous {
		kind, cause = Ambiguous, errors.New("several regions of the target match the pattern equally well")
	}

	artifact := diag.NewArtifact(string(res.Reason), target, p, doc, res, e.thresholds, e.contextLines)
	location, err := e.sink.Emit(ctx, artifact)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("could not write diagnostics")
		location = ""
	}

	return &Error{
		Kind:       kind,
		Target:     target,
		Candidates: res.Candidates,
		Pattern:    p.NormalizedText(),
		Artifact:   location,
		Err:        cause,
	}
}
