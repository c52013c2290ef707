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
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/fuzzpatch/pkg/text"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		pattern   []string
		candidate []string
		want      float64
	}{
		{
			name:      "identical",
			pattern:   []string{"func a() {", " return 1", "}"},
			candidate: []string{"func a() {", " return 1", "}"},
			want:      1,
		},
		{
			name:      "both_empty",
			pattern:   []string{},
			candidate: []string{},
			want:      1,
		},
		{
			name:      "one_substitution",
			pattern:   []string{"line2"},
			candidate: []string{"line1"},
			want:      0.8,
		},
		{
			name:      "extra_blank_line_costs_its_break",
			pattern:   []string{"a"},
			candidate: []string{"a", ""},
			want:      0.5,
		},
		{
			name:      "missing_line",
			pattern:   []string{"abc", "def"},
			candidate: []string{"abc"},
			want:      1 - 4.0/7.0,
		},
		{
			name:      "indentation_is_free",
			pattern:   []string{"x := 1"},
			candidate: []string{" x := 1"},
			want:      1,
		},
		{
			name:      "spacing_is_nearly_free",
			pattern:   []string{"x:= 1"},
			candidate: []string{" x := 1"},
			want:      1 - 1.0/56.0,
		},
		{
			name:      "unrelated",
			pattern:   []string{"abc"},
			candidate: []string{"xyz"},
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.pattern, tt.candidate)
			assert.InDelta(t, tt.want, got, 1e-9, "score should match")
			assert.InDelta(t, got, Score(tt.candidate, tt.pattern), 1e-9, "score should be symmetric")
		})
	}
}

func TestScoreStart_AgreesWithScore(t *testing.T) {
	doc := text.NewDocument([]byte("alpha\n\tbeta  gamma\n\ndelta\nepsilon\n}\nalpha\nbeta gamma\n"))
	p := text.NewPattern("alpha\nbeta gamma\n\ndelta")

	for s := 0; s < doc.Len(); s++ {
		lo, hi := 1, min(6, doc.Len()-s)
		got := scoreStart(p, doc, s, lo, hi, 0)
		require.Len(t, got, hi-lo+1, "one candidate per length at start %d", s)

		for _, c := range got {
			want := Score(p.Normalized(), doc.Normalized()[c.Start:c.End])
			assert.InDelta(t, want, c.Score, 1e-9, "score of %s should match", c.Span)
			assert.False(t, c.Truncated, "no floor means no truncation")
		}
	}
}

func TestScoreStart_FloorTruncates(t *testing.T) {
	doc := text.NewDocument([]byte("completely unrelated\ncontent here\nfunc a() {\n\treturn 1\n}\n"))
	p := text.NewPattern("func a() {\n\treturn 1\n}")

	far := scoreStart(p, doc, 0, 3, 3, 0.5)
	require.Len(t, far, 1)
	assert.True(t, far[0].Truncated, "distant span should stop early")
	assert.Less(t, far[0].Score, 0.5, "truncated score is below the floor")
	assert.GreaterOrEqual(t, far[0].Score, Score(p.Normalized(), doc.Normalized()[0:3]), "truncated score is an upper bound")

	near := scoreStart(p, doc, 2, 3, 3, 0.5)
	require.Len(t, near, 1)
	assert.False(t, near[0].Truncated, "matching span is scored fully")
	assert.Equal(t, 1.0, near[0].Score, "matching span scores 1")
}

func TestScoreBounded(t *testing.T) {
	p := []string{"abcdef", "ghijkl"}
	c := []string{"zzzzzz", "ghijkl"}

	exact, truncated := scoreBounded(p, c, runeLens(p), runeLens(c), 0)
	assert.False(t, truncated, "no floor")
	assert.InDelta(t, 1-6.0/13.0, exact, 1e-9, "exact score")

	bounded, truncated := scoreBounded(p, c, runeLens(p), runeLens(c), 0.9)
	assert.True(t, truncated, "score is below the floor")
	assert.Less(t, bounded, 0.9, "reported score is below the floor")
	assert.GreaterOrEqual(t, bounded, exact, "reported score bounds the exact one")
}

func TestLineDistance(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		limit int
		want  int
	}{
		{name: "equal", a: "same", b: "same", limit: 0, want: 0},
		{name: "unbounded", a: "kitten", b: "sitting", limit: -1, want: 3},
		{name: "within_limit", a: "kitten", b: "sitting", limit: 5, want: 3},
		{name: "at_limit", a: "kitten", b: "sitting", limit: 3, want: 3},
		{name: "shifted_pair", a: "ab", b: "bc", limit: 1, want: 2},
		{name: "shifted_with_space", a: "ab", b: "b ", limit: 1, want: 2},
		{name: "length_gap_past_limit", a: "a", b: "abcdef", limit: 2, want: 5},
		{name: "multibyte", a: "héllo", b: "hello", limit: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lineDistance(tt.a, tt.b, tt.limit)
			assert.Equal(t, tt.want, got, "distance should match")
		})
	}

	assert.Greater(t, lineDistance("kitten", "sitting", 1), 1, "distance past the limit exceeds it")
	assert.Greater(t, lineDistance("a", "b", 0), 0, "zero limit with a difference exceeds it")
}

// editDistance is a plain two-row Levenshtein used to check lineDistance.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur := make([]int, len(rb)+1)
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			sub := prev[j-1]
			if ra[i-1] != rb[j-1] {
				sub++
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, sub)
		}
		prev = cur
	}
	return prev[len(rb)]
}

func TestLineDistance_AgreesWithUnbounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const alphabet = "ab c"
	word := func() string {
		b := make([]byte, rng.IntN(7))
		for i := range b {
			b[i] = alphabet[rng.IntN(len(alphabet))]
		}
		return string(b)
	}

	for range 5000 {
		a, b, limit := word(), word(), rng.IntN(5)
		want := editDistance(a, b)
		got := lineDistance(a, b, limit)
		if want <= limit {
			require.Equal(t, want, got, "distance of %q and %q within limit %d should be exact", a, b, limit)
		} else {
			require.Greater(t, got, limit, "distance of %q and %q should exceed limit %d", a, b, limit)
			require.LessOrEqual(t, got, want, "bounded distance of %q and %q should not overstate", a, b)
		}
		require.Equal(t, want, lineDistance(a, b, -1), "unbounded distance of %q and %q", a, b)
	}
}

func TestLineCost(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "equal", a: "x := 1", b: "x := 1", want: 0},
		{name: "indentation_is_free", a: " x := 1", b: "x := 1", want: 0},
		{name: "removed_space", a: "x:= 1", b: " x := 1", want: spaceCost},
		{name: "added_space", a: "if y {", b: "ify {", want: spaceCost},
		{name: "space_and_typo", a: "x:= 2", b: "x := 1", want: 2 * editCost},
		{name: "case_flip", a: "Return x", b: "return x", want: editCost},
		{name: "blank_against_text", a: "", b: "abc", want: 3 * editCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lineCost(tt.a, tt.b, -1), "cost should match")
			assert.Equal(t, tt.want, lineCost(tt.b, tt.a, -1), "cost should be symmetric")
		})
	}
}

func TestEqualIgnoringSpace(t *testing.T) {
	assert.True(t, equalIgnoringSpace("a b", "ab"))
	assert.True(t, equalIgnoringSpace(" ", ""))
	assert.False(t, equalIgnoringSpace("ab", "abc"))
	assert.False(t, equalIgnoringSpace("a b", "a c"))
}
