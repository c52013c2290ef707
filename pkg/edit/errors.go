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

package edit

import (
	"fmt"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fuzzpatch/pkg/match"
)

// Kind classifies why an edit failed.
type Kind int

const (
	KindUnknown Kind = iota
	// NoMatch means no candidate reached the acceptance threshold.
	NoMatch
	// Ambiguous means several regions reached it without enough separation.
	Ambiguous
	// InvalidInput means an empty pattern, or an empty target with a pattern.
	InvalidInput
	// IOFailure means an input could not be read or the target not written.
	IOFailure
)

func (k Kind) String() string {
	switch k {
	case NoMatch:
		return "no match"
	case Ambiguous:
		return "ambiguous"
	case InvalidInput:
		return "invalid input"
	case IOFailure:
		return "io failure"
	}
	return "unknown"
}

// ⚠️ Error is a failed edit. Every failure leaves the target untouched.
type Error struct {
	Kind   Kind
	Target string
	// Candidates are the ranked candidates of a rejected match.
	Candidates []match.Candidate
	// Pattern is the normalized pattern the candidates were scored against.
	Pattern string
	// Artifact is where diagnostics were written, if anywhere.
	Artifact string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Target)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Exit codes of the command line front end.
const (
	ExitOK           = 0
	ExitNoMatch      = 1
	ExitAmbiguous    = 2
	ExitInvalidInput = 3
	ExitIOFailure    = 4
	ExitOther        = 5
)

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case NoMatch:
		return ExitNoMatch
	case Ambiguous:
		return ExitAmbiguous
	case InvalidInput:
		return ExitInvalidInput
	case IOFailure:
		return ExitIOFailure
	}
	return ExitOther
}
