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

package text

import (
	"regexp"
	"strconv"
	"strings"
)

// gutterRe matches the "<n>: " prefix of numbered file views.
var gutterRe = regexp.MustCompile(`^(\d+):(?: |$)`)

// 🔍 Pattern is the text identifying the region to edit. It is immutable.
type Pattern struct {
	raw        []string
	normalized []string
	runes      []int
	joinedLen  int
	gutter     bool
}

// NewPattern builds a Pattern from the contents of a pattern file.
// Leading and trailing blank lines are dropped, and a line-number gutter is
// stripped when every non-blank line carries one with consecutive numbers.
// The result may be empty; see IsEmpty.
func NewPattern(content string) *Pattern {
	return newPattern(content, true)
}

// NewLiteralPattern is NewPattern without gutter stripping, for targets whose
// lines really do start with "<n>: ".
func NewLiteralPattern(content string) *Pattern {
	return newPattern(content, false)
}

func newPattern(content string, stripNumbers bool) *Pattern {
	lines := SplitLines(content)
	raw := make([]string, len(lines))
	for i, l := range lines {
		raw[i] = l.Raw
	}

	raw = trimBlankLines(raw)
	ok := false
	if stripNumbers {
		var stripped []string
		if stripped, ok = stripGutter(raw); ok {
			raw = trimBlankLines(stripped)
		}
	}

	p := &Pattern{
		raw:        raw,
		normalized: make([]string, len(raw)),
		runes:      make([]int, len(raw)),
		gutter:     ok,
	}
	for i, r := range raw {
		n := NormalizeLine(r)
		p.normalized[i] = n
		p.runes[i] = RuneLen(n)
		p.joinedLen += p.runes[i]
	}
	if len(raw) > 1 {
		p.joinedLen += len(raw) - 1
	}
	return p
}

// IsEmpty reports whether nothing but whitespace was supplied.
func (p *Pattern) IsEmpty() bool { return len(p.raw) == 0 }

// LineCount is the number of pattern lines after trimming.
func (p *Pattern) LineCount() int { return len(p.raw) }

// Lines returns the raw pattern lines.
func (p *Pattern) Lines() []string { return p.raw }

// Normalized returns the normalized pattern lines.
func (p *Pattern) Normalized() []string { return p.normalized }

// NormalizedRuneLens returns the rune length of every normalized line.
func (p *Pattern) NormalizedRuneLens() []int { return p.runes }

// NormalizedLen is the rune length of the normalized lines joined by "\n".
func (p *Pattern) NormalizedLen() int { return p.joinedLen }

// NormalizedText joins the normalized lines with "\n".
func (p *Pattern) NormalizedText() string { return strings.Join(p.normalized, "\n") }

// Text joins the raw lines with "\n".
func (p *Pattern) Text() string { return strings.Join(p.raw, "\n") }

// HadGutter reports whether a line-number gutter was removed.
func (p *Pattern) HadGutter() bool { return p.gutter }

func trimBlankLines(lines []string) []string {
	for len(lines) > 0 && IsBlank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && IsBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// stripGutter removes "<n>: " prefixes. It needs at least two numbered lines
// and the numbers must increase by one; blank lines may omit the prefix.
func stripGutter(lines []string) ([]string, bool) {
	out := make([]string, len(lines))
	numbered := 0
	prev := -1
	for i, l := range lines {
		m := gutterRe.FindStringSubmatchIndex(l)
		if m == nil {
			if !IsBlank(l) {
				return nil, false
			}
			out[i] = ""
			if prev >= 0 {
				prev++
			}
			continue
		}
		n, err := strconv.Atoi(l[m[2]:m[3]])
		if err != nil {
			return nil, false
		}
		if prev >= 0 && n != prev+1 {
			return nil, false
		}
		prev = n
		numbered++
		out[i] = l[m[1]:]
	}
	if numbered < 2 {
		return nil, false
	}
	return out, true
}
