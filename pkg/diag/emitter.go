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

package diag

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fuzzpatch/pkg/config"
	"github.com/walteh/fuzzpatch/pkg/match"
	"github.com/walteh/fuzzpatch/pkg/text"
)

// fileTimeLayout sorts lexically in time order.
const fileTimeLayout = "20060102T150405.000000000Z"

// 📋 Artifact is the record written when an edit is rejected.
type Artifact struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	Reason       string            `json:"reason"`
	Target       string            `json:"target"`
	Pattern      string            `json:"pattern"`
	PatternLines int               `json:"pattern_lines"`
	Thresholds   config.Thresholds `json:"thresholds"`
	Scanned      int               `json:"scanned"`
	Candidates   []Candidate       `json:"candidates"`
}

// Candidate is one ranked candidate of an Artifact. Lines are 1-based.
type Candidate struct {
	FirstLine int     `json:"first_line"`
	LastLine  int     `json:"last_line"`
	Score     float64 `json:"score"`
	Truncated bool    `json:"truncated,omitempty"`
	Text      string  `json:"text"`
	// Patch turns the normalized pattern into the normalized candidate.
	Patch string `json:"patch"`
	// Context holds the candidate and its surrounding lines as "<n>: <line>".
	Context []string `json:"context"`
}

// NewArtifact builds the record for a rejected match.
func NewArtifact(reason, target string, p *text.Pattern, doc *text.Document, res *match.Result, th config.Thresholds, contextLines int) *Artifact {
	a := &Artifact{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Reason:       reason,
		Target:       target,
		Pattern:      p.Text(),
		PatternLines: p.LineCount(),
		Thresholds:   th,
		Candidates:   []Candidate{},
	}
	if res == nil {
		return a
	}

	a.Scanned = res.Scanned
	dmp := diffmatchpatch.New()
	for _, c := range res.Candidates {
		a.Candidates = append(a.Candidates, Candidate{
			FirstLine: c.Start + 1,
			LastLine:  c.End,
			Score:     c.Score,
			Truncated: c.Truncated,
			Text:      c.Text,
			Patch:     dmp.PatchToText(dmp.PatchMake(p.NormalizedText(), c.Normalized)),
			Context:   contextOf(doc, c.Span, contextLines),
		})
	}
	return a
}

func contextOf(doc *text.Document, span match.Span, n int) []string {
	from, to := max(0, span.Start-n), min(doc.Len(), span.End+n)
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, fmt.Sprintf("%d: %s", i+1, doc.Line(i).Raw))
	}
	return out
}

// 🔌 Sink stores artifacts and reports where each one went.
type Sink interface {
	Emit(ctx context.Context, a *Artifact) (string, error)
}

// 📁 FileSink writes one JSON file per artifact into a directory that is
// created on first use.
type FileSink struct {
	dir string
}

var _ Sink = (*FileSink)(nil)

// NewFileSink creates a sink writing into dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Dir is where the sink writes.
func (s *FileSink) Dir() string { return s.dir }

// Emit writes a to "<UTC timestamp>-<id>.json". The file is created
// exclusively, so concurrent writers never share a name.
func (s *FileSink) Emit(ctx context.Context, a *Artifact) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", errors.Errorf("creating diagnostics directory: %w", err)
	}

	path := filepath.Join(s.dir, FileName(a))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", errors.Errorf("creating artifact: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Errorf("encoding artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", errors.Errorf("closing artifact: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("reason", a.Reason).Msg("wrote diagnostics artifact")
	return path, nil
}

// FileName is the name FileSink gives an artifact.
func FileName(a *Artifact) string {
	return a.CreatedAt.UTC().Format(fileTimeLayout) + "-" + a.ID + ".json"
}

// NopSink discards artifacts.
type NopSink struct{}

func (NopSink) Emit(context.Context, *Artifact) (string, error) { return "", nil }

// MemorySink keeps artifacts in memory.
type MemorySink struct {
	mu        sync.Mutex
	artifacts []*Artifact
}

func (s *MemorySink) Emit(_ context.Context, a *Artifact) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts = append(s.artifacts, a)
	return "memory:" + a.ID, nil
}

// Artifacts returns what was emitted so far.
func (s *MemorySink) Artifacts() []*Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Artifact(nil), s.artifacts...)
}
