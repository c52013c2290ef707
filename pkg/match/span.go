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

import "fmt"

// Span is a half-open line range [Start, End) of a document.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len is the number of lines in the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Overlaps reports whether s and o share at least one line.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// sameRegion reports whether two spans are variants of one region: one holds
// the other, or they share their first or last line.
func (s Span) sameRegion(o Span) bool {
	return s.Contains(o) || o.Contains(s) || s.Start == o.Start || s.End == o.End
}

// String renders the span with 1-based inclusive line numbers.
func (s Span) String() string {
	if s.Len() == 1 {
		return fmt.Sprintf("line %d", s.Start+1)
	}
	return fmt.Sprintf("lines %d-%d", s.Start+1, s.End)
}

// 🎯 Candidate is a scored span. Text and Normalized are only filled in for
// the candidates a Result reports.
type Candidate struct {
	Span
	Score float64 `json:"score"`
	// Truncated means scoring stopped once the score was known to be below
	// the floor; Score is then an upper bound.
	Truncated  bool   `json:"truncated,omitempty"`
	Text       string `json:"text,omitempty"`
	Normalized string `json:"normalized,omitempty"`
}
