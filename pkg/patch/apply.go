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

package patch

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fuzzpatch/pkg/match"
	"github.com/walteh/fuzzpatch/pkg/text"
)

// ✂️ Apply returns doc with the lines of span replaced by replacement.
//
// Bytes outside the span are copied unchanged and the replacement is inserted
// verbatim, except for its line breaks: one trailing break is dropped and the
// span's own last line ending is used in its place, so a span that ended the
// file without a newline still does. When the span uses "\r\n" or "\r" and
// the replacement only "\n", the replacement's inner breaks are converted.
// An empty replacement deletes the span's lines.
func Apply(doc *text.Document, span match.Span, replacement string) ([]byte, error) {
	if span.Start < 0 || span.End > doc.Len() || span.Len() < 1 {
		return nil, errors.Errorf("span %s is outside a document of %d lines", span, doc.Len())
	}

	before := doc.RawText(0, span.Start)
	after := doc.RawText(span.End, doc.Len())
	ending := doc.Line(span.End - 1).Ending

	var b strings.Builder
	b.Grow(len(before) + len(replacement) + len(ending) + len(after))

	if replacement == "" {
		// deleting the last lines of a file without a final newline leaves the
		// line before them last, so it loses its break too
		if span.End == doc.Len() && ending == text.EndingNone && span.Start > 0 {
			before = strings.TrimSuffix(before, doc.Line(span.Start-1).Ending)
		}
		b.WriteString(before)
		b.WriteString(after)
		return []byte(b.String()), nil
	}

	b.WriteString(before)
	b.WriteString(convertLineBreaks(TrimLineEnding(replacement), spanLineBreak(doc, span)))
	b.WriteString(ending)
	b.WriteString(after)
	return []byte(b.String()), nil
}

// TrimLineEnding removes one trailing "\r\n", "\n" or "\r".
func TrimLineEnding(s string) string {
	for _, e := range []string{text.EndingCRLF, text.EndingLF, text.EndingCR} {
		if strings.HasSuffix(s, e) {
			return s[:len(s)-len(e)]
		}
	}
	return s
}

// spanLineBreak is the first line ending used in span, or the one before it
// when every line of span is unterminated.
func spanLineBreak(doc *text.Document, span match.Span) string {
	for i := span.Start; i < span.End; i++ {
		if e := doc.Line(i).Ending; e != text.EndingNone {
			return e
		}
	}
	if span.Start > 0 {
		return doc.Line(span.Start - 1).Ending
	}
	return text.EndingNone
}

// convertLineBreaks rewrites the "\n" breaks of s to lineBreak. Text that
// already carries "\r" is left alone.
func convertLineBreaks(s, lineBreak string) string {
	if lineBreak == text.EndingNone || lineBreak == text.EndingLF || strings.Contains(s, "\r") {
		return s
	}
	return strings.ReplaceAll(s, "\n", lineBreak)
}
