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
	"math"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/walteh/fuzzpatch/pkg/text"
)

// Costs are counted in eighths of an edit. Two lines that differ only in
// spacing cost spaceCost.
const (
	editCost  = 8
	spaceCost = 1
)

// Score is the similarity of a pattern to a candidate, both given as
// normalized lines, in [0, 1]. Lines are aligned by position; each aligned
// pair costs its edit distance, ignoring indentation, and a fraction of an
// edit when only spacing differs. Each unaligned line costs its length plus
// its line break. The total is divided by the longer joined text.
func Score(pattern, candidate []string) float64 {
	s, _ := scoreBounded(pattern, candidate, runeLens(pattern), runeLens(candidate), 0)
	return s
}

// scoreBounded is Score that gives up once the result is known to be below
// floor. It then reports true and an upper bound that is below floor.
func scoreBounded(p, c []string, pr, cr []int, floor float64) (float64, bool) {
	denom := editCost * max(joinedLen(pr), joinedLen(cr))
	budget := budgetFor(denom, floor)

	total := 0
	aligned := min(len(p), len(c))
	for i := 0; i < aligned; i++ {
		limit := -1
		if budget >= 0 {
			limit = budget - total
		}
		total += lineCost(p[i], c[i], limit)
		if budget >= 0 && total > budget {
			return ratio(total, denom), true
		}
	}
	total += extraCost(pr, aligned) + extraCost(cr, aligned)

	return ratio(total, denom), budget >= 0 && total > budget
}

// scoreStart scores every span [s, s+l) for l in [lo, hi]. The aligned line
// distances are shared by all lengths and computed once.
func scoreStart(p *text.Pattern, doc *text.Document, s, lo, hi int, floor float64) []Candidate {
	if hi < lo {
		return nil
	}

	pn, pr := p.Normalized(), p.NormalizedRuneLens()
	dn, dr := doc.Normalized(), doc.NormalizedRuneLens()
	n, pLen := len(pn), p.NormalizedLen()

	maxBudget := -1
	if floor > 0 {
		for l := lo; l <= hi; l++ {
			maxBudget = max(maxBudget, budgetFor(editCost*max(pLen, doc.NormalizedSpanLen(s, s+l)), floor))
		}
	}

	aligned := min(n, hi)
	prefix := make([]int, 1, aligned+1)
	for i := 0; i < aligned; i++ {
		limit := -1
		if maxBudget >= 0 {
			limit = maxBudget - prefix[i]
		}
		prefix = append(prefix, prefix[i]+lineCost(pn[i], dn[s+i], limit))
		if maxBudget >= 0 && prefix[i+1] > maxBudget {
			break
		}
	}
	known := len(prefix) - 1

	out := make([]Candidate, 0, hi-lo+1)
	for l := lo; l <= hi; l++ {
		denom := editCost * max(pLen, doc.NormalizedSpanLen(s, s+l))
		a := min(n, l)

		total := prefix[min(a, known)]
		for i := a; i < n; i++ {
			total += editCost * (pr[i] + 1)
		}
		for i := a; i < l; i++ {
			total += editCost * (dr[s+i] + 1)
		}

		budget := budgetFor(denom, floor)
		out = append(out, Candidate{
			Span:      Span{Start: s, End: s + l},
			Score:     ratio(total, denom),
			Truncated: a > known || (budget >= 0 && total > budget),
		})
	}
	return out
}

// budgetFor is the largest total distance that still scores at least floor,
// or -1 when there is no floor.
func budgetFor(denom int, floor float64) int {
	if floor <= 0 {
		return -1
	}
	return int(math.Floor((1-floor)*float64(denom) + 1e-9))
}

func ratio(total, denom int) float64 {
	if denom == 0 {
		return 1
	}
	return min(1, max(0, 1-float64(total)/float64(denom)))
}

func extraCost(lens []int, from int) int {
	cost := 0
	for _, l := range lens[min(from, len(lens)):] {
		cost += editCost * (l + 1)
	}
	return cost
}

// lineCost compares two normalized lines in cost units. Leading indentation
// is ignored and lines that differ only in spacing cost spaceCost. With
// limit >= 0 the result is exact up to limit and otherwise only known to
// exceed it.
func lineCost(a, b string, limit int) int {
	a, b = strings.TrimLeft(a, " "), strings.TrimLeft(b, " ")
	switch {
	case a == b:
		return 0
	case equalIgnoringSpace(a, b):
		return spaceCost
	}
	edits := -1
	if limit >= 0 {
		edits = limit / editCost
	}
	return editCost * lineDistance(a, b, edits)
}

// equalIgnoringSpace reports whether a and b are equal once every space is
// removed. Normalized lines carry no other whitespace.
func equalIgnoringSpace(a, b string) bool {
	i, j := 0, 0
	for {
		for i < len(a) && a[i] == ' ' {
			i++
		}
		for j < len(b) && b[j] == ' ' {
			j++
		}
		if i == len(a) || j == len(b) {
			return i == len(a) && j == len(b)
		}
		if a[i] != b[j] {
			return false
		}
		i++
		j++
	}
}

// lineDistance is the Levenshtein distance of a and b in runes. With
// limit >= 0 a length difference above limit is returned as is, since it
// already bounds the distance from below.
func lineDistance(a, b string, limit int) int {
	if a == b {
		return 0
	}
	if limit >= 0 {
		if diff := absDiff(text.RuneLen(a), text.RuneLen(b)); diff > limit {
			return diff
		}
	}
	return levenshtein.Distance(a, b, nil)
}

func joinedLen(lens []int) int {
	if len(lens) == 0 {
		return 0
	}
	total := len(lens) - 1
	for _, l := range lens {
		total += l
	}
	return total
}

func runeLens(lines []string) []int {
	out := make([]int, len(lines))
	for i, line := range lines {
		out[i] = text.RuneLen(line)
	}
	return out
}
