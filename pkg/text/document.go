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
)

// Line endings recognised by SplitLines.
const (
	EndingNone = ""
	EndingLF   = "\n"
	EndingCRLF = "\r\n"
	EndingCR   = "\r"
)

// 📄 Line is one line of a document with its own terminator.
type Line struct {
	Raw    string // content without the terminator
	Ending string // one of the Ending* constants
}

// SplitLines splits s into lines, keeping each line's terminator so that
// concatenating Raw+Ending for every line gives back s. A final line without
// a terminator is kept; an empty input has no lines.
func SplitLines(s string) []Line {
	var lines []Line
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			lines = append(lines, Line{Raw: s[start:i], Ending: EndingLF})
			start = i + 1
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				lines = append(lines, Line{Raw: s[start:i], Ending: EndingCRLF})
				i++
			} else {
				lines = append(lines, Line{Raw: s[start:i], Ending: EndingCR})
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, Line{Raw: s[start:], Ending: EndingNone})
	}
	return lines
}

// 📚 Document is a target file decomposed into lines, with the normalized
// form of every line kept alongside. A Document is owned by one invocation.
type Document struct {
	lines      []Line
	normalized []string
	runes      []int
	prefix     []int // prefix[i] is the summed rune length of normalized[:i]
	size       int
}

// NewDocument parses content into a Document.
func NewDocument(content []byte) *Document {
	lines := SplitLines(string(content))
	d := &Document{
		lines:      lines,
		normalized: make([]string, len(lines)),
		runes:      make([]int, len(lines)),
		prefix:     make([]int, len(lines)+1),
		size:       len(content),
	}
	for i, l := range lines {
		n := NormalizeLine(l.Raw)
		d.normalized[i] = n
		d.runes[i] = RuneLen(n)
		d.prefix[i+1] = d.prefix[i] + d.runes[i]
	}
	return d
}

// Len is the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Size is the number of bytes the document was parsed from.
func (d *Document) Size() int { return d.size }

// IsEmpty reports whether the document has no lines at all.
func (d *Document) IsEmpty() bool { return len(d.lines) == 0 }

// Line returns line i.
func (d *Document) Line(i int) Line { return d.lines[i] }

// Normalized returns the normalized lines. The slice must not be modified.
func (d *Document) Normalized() []string { return d.normalized }

// NormalizedRuneLens returns the rune length of every normalized line.
func (d *Document) NormalizedRuneLens() []int { return d.runes }

// NormalizedSpanLen is the rune length of lines [start, end) joined by "\n".
func (d *Document) NormalizedSpanLen(start, end int) int {
	if end <= start {
		return 0
	}
	return d.prefix[end] - d.prefix[start] + (end - start - 1)
}

// RawText reconstructs lines [start, end) byte-for-byte, terminators included.
func (d *Document) RawText(start, end int) string {
	var b strings.Builder
	for _, l := range d.lines[start:end] {
		b.WriteString(l.Raw)
		b.WriteString(l.Ending)
	}
	return b.String()
}

// NormalizedText joins the normalized lines [start, end) with "\n".
func (d *Document) NormalizedText(start, end int) string {
	return strings.Join(d.normalized[start:end], "\n")
}

// Bytes reconstructs the whole document.
func (d *Document) Bytes() []byte {
	return []byte(d.RawText(0, len(d.lines)))
}
