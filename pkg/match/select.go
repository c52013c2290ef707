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
	"cmp"
	"slices"

	"github.com/walteh/fuzzpatch/pkg/config"
)

// scoreEpsilon absorbs float rounding when comparing against thresholds.
const scoreEpsilon = 1e-9

// Reason says why a match was rejected.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonNoMatch   Reason = "no_match"
	ReasonAmbiguous Reason = "ambiguous"
)

func (r Reason) String() string {
	if r == ReasonNone {
		return "accepted"
	}
	return string(r)
}

// 📦 Result is the outcome of a match.
type Result struct {
	// Accepted is set when exactly one region cleared the policy.
	Accepted bool `json:"accepted"`
	// Best is the accepted candidate, or the top ranked one on rejection.
	// It is nil when nothing was scored.
	Best   *Candidate `json:"best,omitempty"`
	Reason Reason     `json:"reason,omitempty"`
	// Candidates are the top ranked region-distinct candidates.
	Candidates []Candidate `json:"candidates"`
	// Scanned counts every span that was scored.
	Scanned int `json:"scanned"`
}

// compareCandidates is the ranking order: score descending, then distance
// from the pattern length, then position. It is total, so ranking does not
// depend on the order candidates were found in.
func compareCandidates(patternLines int) func(a, b Candidate) int {
	return func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(absDiff(a.Len(), patternLines), absDiff(b.Len(), patternLines)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	}
}

// Select applies the acceptance policy to scored candidates. Candidates that
// are variants of an already ranked region are dropped first, so one region
// extended by a line never competes with itself. A candidate is viable when
// its score reaches AcceptThreshold; the best viable one is accepted only if
// it is the only one or leads the next by at least AmbiguityMargin. Ties are
// always ambiguous.
func Select(candidates []Candidate, patternLines int, th config.Thresholds, topK int) *Result {
	ranked := slices.Clone(candidates)
	slices.SortFunc(ranked, compareCandidates(patternLines))

	res := &Result{Scanned: len(candidates)}

	var kept, viable []Candidate
	for _, c := range ranked {
		if len(kept) >= topK && (len(viable) >= 2 || !isViable(c, th)) {
			break
		}
		if slices.ContainsFunc(kept, func(k Candidate) bool { return k.sameRegion(c.Span) }) {
			continue
		}
		kept = append(kept, c)
		if isViable(c, th) {
			viable = append(viable, c)
		}
	}

	res.Candidates = kept[:min(len(kept), topK)]

	switch {
	case len(viable) > 0:
		best := viable[0]
		res.Best = &best
	case len(kept) > 0:
		best := kept[0]
		res.Best = &best
	}

	switch len(viable) {
	case 0:
		res.Reason = ReasonNoMatch
	case 1:
		res.Accepted = true
	default:
		gap := viable[0].Score - viable[1].Score
		if gap < th.AmbiguityMargin-scoreEpsilon || gap <= scoreEpsilon {
			res.Reason = ReasonAmbiguous
		} else {
			res.Accepted = true
		}
	}
	return res
}

func isViable(c Candidate, th config.Thresholds) bool {
	return !c.Truncated && c.Score+scoreEpsilon >= th.AcceptThreshold
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
