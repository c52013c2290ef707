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
	"strings"
	"unicode"
	"unicode/utf8"
)

// 🧹 Normalize canonicalizes text for whitespace-insensitive comparison.
// Every run of horizontal whitespace becomes a single space, trailing
// whitespace is dropped per line and line boundaries are kept as "\n".
// Everything else, including case, is preserved.
func Normalize(s string) string {
	lines := SplitLines(s)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = NormalizeLine(l.Raw)
	}
	return strings.Join(out, "\n")
}

// 🧹 NormalizeLine is Normalize for a single line without a line ending.
func NormalizeLine(line string) string {
	var b strings.Builder
	b.Grow(len(line))

	pending := false
	for _, r := range line {
		if isHorizontalSpace(r) {
			pending = true
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}

	// a pending run at the end is trailing whitespace and is dropped
	return b.String()
}

// IsBlank reports whether a line holds nothing but whitespace.
func IsBlank(line string) bool {
	return strings.TrimFunc(line, unicode.IsSpace) == ""
}

// RuneLen is the length used by the similarity model.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

func isHorizontalSpace(r rune) bool {
	return r != '\n' && r != '\r' && unicode.IsSpace(r)
}
