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
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/fuzzpatch/pkg/config"
	"github.com/walteh/fuzzpatch/pkg/text"
)

const goSource = `package main

import "fmt"

func main() {
	fmt.Println("hello")
}

func helper(x int) int {
	return x * 2
}
`

const clampBlock = `func helper(x int) int {
	if x < 0 {
		return -x
	}
	y := x * 2
	if y > 100 {
		y = 100
	}
	return y + 1
}`

const shortLines = "func f(x int) {\n\tx := 1\n\tif y {\n\t\treturn\n\t}\n\tz = 2\n}\n"

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

func find(t *testing.T, opts Options, pattern, target string) *Result {
	t.Helper()
	res, err := New(opts).Find(testContext(t), text.NewPattern(pattern), text.NewDocument([]byte(target)))
	require.NoError(t, err, "find should not fail")
	return res
}

func TestFind(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		target     string
		wantAccept bool
		wantReason Reason
		wantSpan   Span
		wantScore  float64
	}{
		{
			name:       "exact_match",
			pattern:    "func helper(x int) int {\n\treturn x * 2\n}",
			target:     goSource,
			wantAccept: true,
			wantSpan:   Span{8, 11},
			wantScore:  1,
		},
		{
			name:       "single_line",
			pattern:    "line2",
			target:     "line1\nline2\nline3\n",
			wantAccept: true,
			wantSpan:   Span{1, 2},
			wantScore:  1,
		},
		{
			name:       "extra_trailing_space",
			pattern:    "line2 ",
			target:     "line1\nline2\nline3\n",
			wantAccept: true,
			wantSpan:   Span{1, 2},
			wantScore:  1,
		},
		{
			name:       "whitespace_run_removed",
			pattern:    "func helper(x int)int {\n\treturn x * 2\n}",
			target:     goSource,
			wantAccept: true,
			wantSpan:   Span{8, 11},
		},
		{
			name:       "indentation_drift",
			pattern:    "    func helper(x int) int {\n        return x   * 2\n    }",
			target:     goSource,
			wantAccept: true,
			wantSpan:   Span{8, 11},
		},
		{
			name:       "case_flip",
			pattern:    "func helper(x int) int {\n\tReturn x * 2\n}",
			target:     goSource,
			wantAccept: true,
			wantSpan:   Span{8, 11},
		},
		{
			name:       "short_line_missing_space",
			pattern:    "x:= 1",
			target:     shortLines,
			wantAccept: true,
			wantSpan:   Span{1, 2},
		},
		{
			name:       "short_line_extra_space_removed",
			pattern:    "x :=1",
			target:     shortLines,
			wantAccept: true,
			wantSpan:   Span{1, 2},
		},
		{
			name:       "short_line_brace_space_removed",
			pattern:    "if y{",
			target:     shortLines,
			wantAccept: true,
			wantSpan:   Span{2, 3},
		},
		{
			name:       "short_line_inner_space_removed",
			pattern:    "ify {",
			target:     shortLines,
			wantAccept: true,
			wantSpan:   Span{2, 3},
		},
		{
			name:       "short_line_without_indent",
			pattern:    "x := 1",
			target:     shortLines,
			wantAccept: true,
			wantSpan:   Span{1, 2},
			wantScore:  1,
		},
		{
			name:       "duplicated_line",
			pattern:    "foo(a, b)",
			target:     "func one() {\n\tfoo(a, b)\n}\n\nfunc two() {\n\tfoo(a, b)\n}\n",
			wantReason: ReasonAmbiguous,
		},
		{
			name:       "unrelated_text",
			pattern:    "the quick brown fox\njumps over the lazy dog",
			target:     goSource,
			wantReason: ReasonNoMatch,
		},
		{
			name:       "numbered_view",
			pattern:    "9: func helper(x int) int {\n10: \treturn x * 2\n11: }",
			target:     goSource,
			wantAccept: true,
			wantSpan:   Span{8, 11},
			wantScore:  1,
		},
		{
			name:       "empty_target",
			pattern:    "anything",
			target:     "",
			wantReason: ReasonNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := find(t, DefaultOptions(), tt.pattern, tt.target)
			assert.Equal(t, tt.wantAccept, res.Accepted, "acceptance should match")
			assert.Equal(t, tt.wantReason, res.Reason, "reason should match")
			if !tt.wantAccept {
				return
			}
			require.NotNil(t, res.Best, "accepted result has a best candidate")
			assert.Equal(t, tt.wantSpan, res.Best.Span, "span should match")
			if tt.wantScore > 0 {
				assert.Equal(t, tt.wantScore, res.Best.Score, "score should match")
			}
		})
	}
}

func TestFind_FillsCandidateText(t *testing.T) {
	res := find(t, DefaultOptions(), "func helper(x int) int {\n\treturn x * 2\n}", goSource)
	require.True(t, res.Accepted)

	assert.Equal(t, "func helper(x int) int {\n\treturn x * 2\n}\n", res.Best.Text, "raw text keeps tabs and endings")
	assert.Equal(t, "func helper(x int) int {\n return x * 2\n}", res.Best.Normalized, "normalized text is joined")
	for _, c := range res.Candidates {
		assert.NotEmpty(t, c.Text, "reported candidate %s should carry text", c.Span)
	}
}

func TestFind_RejectionCarriesCandidates(t *testing.T) {
	res := find(t, DefaultOptions(), "foo(a, b)", "func one() {\n\tfoo(a, b)\n}\n\nfunc two() {\n\tfoo(a, b)\n}\n")
	require.Equal(t, ReasonAmbiguous, res.Reason)
	require.GreaterOrEqual(t, len(res.Candidates), 2, "both copies should be reported")

	spans := []Span{res.Candidates[0].Span, res.Candidates[1].Span}
	assert.ElementsMatch(t, []Span{{1, 2}, {5, 6}}, spans, "both copies should rank first")
}

func TestFind_DamagedFirstLine(t *testing.T) {
	// the damaged first line is too far from the real one to pass the prefilter
	target := "package main\n\n// fn helper(x: i32) -> i32 {\n\n" + clampBlock + "\n"
	pattern := strings.Replace(clampBlock, "func helper(x int) int {", "fn helper(x: i32) -> i32 {", 1)

	res := find(t, DefaultOptions(), pattern, target)
	require.True(t, res.Accepted, "match should be found outside the prefilter")
	assert.Equal(t, Span{4, 14}, res.Best.Span, "span should cover the block")
}

func TestFind_PrefilterDoesNotHideCompetitor(t *testing.T) {
	// the second copy's first line is too far from the pattern's to pass the
	// prefilter, but the rest of it is identical
	other := strings.Replace(clampBlock, "func helper(x int) int {", "func helperForNegative(x int) int {", 1)
	target := clampBlock + "\n\n" + other + "\n"

	res := find(t, DefaultOptions(), clampBlock, target)
	assert.False(t, res.Accepted, "near copy must not be ignored")
	assert.Equal(t, ReasonAmbiguous, res.Reason, "near copy makes the match ambiguous")
}

func TestFind_ShiftedShortLine(t *testing.T) {
	res := find(t, DefaultOptions(), "ab", "bc\n")
	assert.Equal(t, ReasonNoMatch, res.Reason, "unrelated short line should not match")
}

func TestFind_WorkersDoNotChangeOutcome(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(goSource)
		b.WriteString("\n// section\n")
	}
	b.WriteString(clampBlock)
	b.WriteString("\n")
	target := b.String()

	patterns := []string{
		clampBlock,
		"func helper(x int) int {\n\treturn x * 2\n}",
		"y := x * 2\nif y > 100 {",
		"not present anywhere\nat all",
	}

	for _, pattern := range patterns {
		serial := DefaultOptions()
		serial.Search.Workers = 1
		sharded := DefaultOptions()
		sharded.Search.Workers = 8

		want := find(t, serial, pattern, target)
		got := find(t, sharded, pattern, target)
		assert.Equal(t, want, got, "sharding should not change the result for %q", pattern)
	}
}

func TestFind_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := New(DefaultOptions()).Find(ctx, text.NewPattern("x"), text.NewDocument([]byte("x\ny\n")))
	require.Error(t, err, "cancelled context should fail")
	assert.ErrorIs(t, err, context.Canceled, "error should wrap the cancellation")
}

func TestFind_EmptyPattern(t *testing.T) {
	_, err := New(DefaultOptions()).Find(testContext(t), text.NewPattern(" \n"), text.NewDocument([]byte("x")))
	assert.Error(t, err, "empty pattern should fail")
}

func TestGenerate(t *testing.T) {
	doc := text.NewDocument([]byte(goSource))
	opts := config.Default().Search

	t.Run("prefiltered", func(t *testing.T) {
		got := slices.Collect(Generate(text.NewPattern("func helper(x int) int {\n\treturn x * 2\n}"), doc, opts))
		assert.Equal(t, []Span{{8, 9}, {8, 10}, {8, 11}}, got, "only the similar start should be scanned")
	})

	t.Run("falls_back_to_every_start", func(t *testing.T) {
		got := slices.Collect(Generate(text.NewPattern("zzzzzzzzzzzz\na\nb"), doc, opts))
		assert.Len(t, got, 45, "every start should be scanned")
		for _, s := range got {
			assert.True(t, s.Len() >= 1 && s.Len() <= 5, "length of %s should be within slack", s)
			assert.True(t, s.Start >= 0 && s.End <= doc.Len(), "%s should be in bounds", s)
		}
	})

	t.Run("short_document_is_tried_whole", func(t *testing.T) {
		short := text.NewDocument([]byte("a\nb\n"))
		got := slices.Collect(Generate(text.NewPattern("a\nb\nc\nd\ne\nf"), short, opts))
		assert.Equal(t, []Span{{0, 2}}, got, "whole document should be the only span")
	})

	t.Run("stops_early", func(t *testing.T) {
		n := 0
		for range Generate(text.NewPattern("zzzz"), doc, opts) {
			n++
			if n == 3 {
				break
			}
		}
		assert.Equal(t, 3, n, "iteration should stop when asked")
	})
}

func TestSpan(t *testing.T) {
	a := Span{2, 5}
	assert.Equal(t, 3, a.Len())
	assert.True(t, a.Contains(Span{3, 5}), "nested span is contained")
	assert.False(t, a.Contains(Span{1, 5}), "wider span is not contained")
	assert.True(t, a.Overlaps(Span{4, 8}), "shared line overlaps")
	assert.False(t, a.Overlaps(Span{5, 8}), "adjacent spans do not overlap")
	assert.True(t, a.sameRegion(Span{2, 9}), "shared start is the same region")
	assert.True(t, a.sameRegion(Span{0, 5}), "shared end is the same region")
	assert.False(t, a.sameRegion(Span{3, 6}), "shifted window is a different region")
	assert.Equal(t, "lines 3-5", a.String())
	assert.Equal(t, "line 1", Span{0, 1}.String())
}
