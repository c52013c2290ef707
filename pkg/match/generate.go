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
	"iter"
	"math"

	"github.com/walteh/fuzzpatch/pkg/config"
	"github.com/walteh/fuzzpatch/pkg/text"
)

// plan is the set of start lines to scan and the span lengths to try at each.
type plan struct {
	starts   []int
	excluded []int
	minLen   int
	maxLen   int
	docLen   int
}

// filtered reports whether the prefilter narrowed the scan.
func (pl plan) filtered() bool { return len(pl.excluded) > 0 }

// lengths returns the span lengths to try at start s, clipped to the document.
func (pl plan) lengths(s int) (lo, hi int) {
	return pl.minLen, min(pl.maxLen, pl.docLen-s)
}

// spans yields every span of the given starts in start then length order.
func (pl plan) spans(starts []int) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for _, s := range starts {
			lo, hi := pl.lengths(s)
			for l := lo; l <= hi; l++ {
				if !yield(Span{Start: s, End: s + l}) {
					return
				}
			}
		}
	}
}

// Generate lazily enumerates the candidate spans for p in doc. Starts whose
// line is far from the pattern's first line are skipped, unless that would
// leave nothing to scan.
func Generate(p *text.Pattern, doc *text.Document, opts config.Search) iter.Seq[Span] {
	pl := newPlan(p, doc, opts)
	return pl.spans(pl.starts)
}

func newPlan(p *text.Pattern, doc *text.Document, opts config.Search) plan {
	n := p.LineCount()
	pl := plan{
		minLen: max(1, n-opts.LengthSlack),
		maxLen: n + opts.LengthSlack,
		docLen: doc.Len(),
	}
	if pl.docLen == 0 || n == 0 {
		return pl
	}
	// a document shorter than every allowed length is tried whole
	pl.minLen = min(pl.minLen, pl.docLen)

	last := pl.docLen - pl.minLen
	first := p.Normalized()[0]
	limit := prefilterLimit(first, opts)
	lines := doc.Normalized()

	for s := 0; s <= last; s++ {
		if withinDistance(first, lines[s], limit) {
			pl.starts = append(pl.starts, s)
		} else {
			pl.excluded = append(pl.excluded, s)
		}
	}

	if len(pl.starts) == 0 {
		pl.starts, pl.excluded = pl.excluded, nil
	}
	return pl
}

// prefilterLimit is the first-line edit distance a start may have.
func prefilterLimit(first string, opts config.Search) int {
	byRatio := int(math.Ceil(opts.PrefilterRatio * float64(text.RuneLen(first))))
	return max(opts.PrefilterMinDistance, byRatio)
}

// withinDistance reports whether a and b are at most limit edits apart,
// counting the way the scorer does.
func withinDistance(a, b string, limit int) bool {
	return lineCost(a, b, limit*editCost) <= limit*editCost
}
