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

package match

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/fuzzpatch/pkg/config"
	"github.com/walteh/fuzzpatch/pkg/text"
)

// shardsPerWorker keeps workers busy when some starts are cheaper than others.
const shardsPerWorker = 4

// Options configures a Matcher.
type Options struct {
	Thresholds config.Thresholds
	Search     config.Search
}

// DefaultOptions returns the built-in tunables.
func DefaultOptions() Options {
	cfg := config.Default()
	return Options{Thresholds: cfg.Thresholds, Search: cfg.Search}
}

// OptionsFromConfig picks the matcher tunables out of a loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{Thresholds: cfg.Thresholds, Search: cfg.Search}
}

// 🔍 Matcher locates a pattern in a document.
type Matcher struct {
	opts    Options
	workers int
}

// New creates a Matcher. Workers <= 0 means GOMAXPROCS.
func New(opts Options) *Matcher {
	workers := opts.Search.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if opts.Search.TopK <= 0 {
		opts.Search.TopK = config.DefaultTopK
	}
	return &Matcher{opts: opts, workers: workers}
}

// Options returns the tunables the matcher runs with.
func (m *Matcher) Options() Options { return m.opts }

// Find scores the candidate spans of doc against p and applies the
// acceptance policy. The outcome does not depend on the number of workers.
//
// Starts that pass the prefilter are scored first. The remaining starts are
// then scored too, with the floor raised to the lowest score that could
// still change the outcome, so the prefilter only saves work.
func (m *Matcher) Find(ctx context.Context, p *text.Pattern, doc *text.Document) (*Result, error) {
	if p.IsEmpty() {
		return nil, errors.New("empty pattern")
	}

	logger := zerolog.Ctx(ctx)
	started := time.Now()

	pl := newPlan(p, doc, m.opts.Search)
	floor := m.opts.Search.ScoreFloor

	candidates, err := m.scoreAll(ctx, p, doc, pl, pl.starts, floor)
	if err != nil {
		return nil, err
	}
	res := Select(candidates, p.LineCount(), m.opts.Thresholds, m.opts.Search.TopK)

	if pl.filtered() {
		rest := floor
		if res.Reason != ReasonNoMatch {
			rest = max(rest, m.relevantFloor(res))
		}
		more, err := m.scoreAll(ctx, p, doc, pl, pl.excluded, rest)
		if err != nil {
			return nil, err
		}
		logger.Debug().
			Int("prefiltered_starts", len(pl.starts)).
			Int("remaining_starts", len(pl.excluded)).
			Float64("remaining_floor", rest).
			Msg("scanning starts outside the prefilter")
		res = Select(append(candidates, more...), p.LineCount(), m.opts.Thresholds, m.opts.Search.TopK)
	}

	materialize(res, doc)

	event := logger.Debug().
		Int("pattern_lines", p.LineCount()).
		Int("document_lines", doc.Len()).
		Int("scanned", res.Scanned).
		Bool("accepted", res.Accepted).
		Str("reason", res.Reason.String()).
		Dur("took", time.Since(started))
	if res.Best != nil {
		event = event.Stringer("best_span", res.Best.Span).Float64("best_score", res.Best.Score)
	}
	event.Msg("match finished")

	return res, nil
}

// relevantFloor is the lowest score a new candidate needs to change an
// accepted or ambiguous result.
func (m *Matcher) relevantFloor(res *Result) float64 {
	need := m.opts.Thresholds.AcceptThreshold
	if res.Best != nil {
		need = max(need, res.Best.Score-m.opts.Thresholds.AmbiguityMargin)
	}
	return max(0, need-scoreEpsilon)
}

// scoreAll scores the spans at the given starts, sharded across workers.
func (m *Matcher) scoreAll(ctx context.Context, p *text.Pattern, doc *text.Document, pl plan, starts []int, floor float64) ([]Candidate, error) {
	if len(starts) == 0 {
		return nil, nil
	}

	shards := min(len(starts), m.workers*shardsPerWorker)
	size := (len(starts) + shards - 1) / shards
	results := make([][]Candidate, shards)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i := range shards {
		chunk := starts[min(i*size, len(starts)):min((i+1)*size, len(starts))]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var out []Candidate
			for _, s := range chunk {
				lo, hi := pl.lengths(s)
				out = append(out, scoreStart(p, doc, s, lo, hi, floor)...)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("scoring candidates: %w", err)
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	all := make([]Candidate, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// materialize fills in the text of the candidates a result reports.
func materialize(res *Result, doc *text.Document) {
	fill := func(c *Candidate) {
		c.Text = doc.RawText(c.Start, c.End)
		c.Normalized = doc.NormalizedText(c.Start, c.End)
	}
	for i := range res.Candidates {
		fill(&res.Candidates[i])
	}
	if res.Best != nil {
		fill(res.Best)
	}
}
