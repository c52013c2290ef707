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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "already_normal",
			input: "foo(a, b)",
			want:  "foo(a, b)",
		},
		{
			name:  "collapses_inner_runs",
			input: "foo(a,   b)\t\t+ c",
			want:  "foo(a, b) + c",
		},
		{
			name:  "trims_trailing_whitespace",
			input: "return x  \t",
			want:  "return x",
		},
		{
			name:  "indentation_becomes_single_space",
			input: "\t\treturn x",
			want:  " return x",
		},
		{
			name:  "keeps_case",
			input: "Foo  BAR baz",
			want:  "Foo BAR baz",
		},
		{
			name:  "keeps_line_boundaries",
			input: "a  b\n\n  c\t\n",
			want:  "a b\n\n c",
		},
		{
			name:  "crlf_becomes_lf",
			input: "a\r\nb   c\r\n",
			want:  "a\nb c",
		},
		{
			name:  "unicode_spaces",
			input: "a  b",
			want:  "a b",
		},
		{
			name:  "whitespace_only_line",
			input: "   \t ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.want, got, "normalized text should match")
			assert.Equal(t, got, Normalize(got), "normalize should be idempotent")
		})
	}
}

func TestNormalizeLine_DistinguishesContent(t *testing.T) {
	assert.NotEqual(t, NormalizeLine("foo(a, b)"), NormalizeLine("foo(a,b)"), "removing a whole run is a content change")
	assert.NotEqual(t, NormalizeLine("Foo"), NormalizeLine("foo"), "case is preserved")
	assert.Equal(t, NormalizeLine("foo(a,  b)"), NormalizeLine("foo(a, b) "), "run width and trailing space are not")
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""), "empty is blank")
	assert.True(t, IsBlank(" \t "), "whitespace is blank")
	assert.False(t, IsBlank(" x "), "content is not blank")
}
