// Copyright 2018 The CUE Authors
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

package peg

import (
	"regexp"
	"strings"
)

// Literal matches an exact, literal substring.
type Literal struct {
	base
	Text string
}

// NewLiteral returns an unregistered Literal rule for text.
func NewLiteral(text string) *Literal { return &Literal{Text: text} }

func (r *Literal) Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError) {
	skip = effectiveSkip(r, skip)
	pos = skipWhitespace(input, pos, skip)
	if pos < len(input) && strings.HasPrefix(input[pos:], r.Text) {
		return &Match{Rule: r, Start: pos, End: pos + len(r.Text)}, nil
	}
	return nil, newMatchError(pos, r, nil, nil)
}

// Pattern matches a regular expression anchored at the current position.
type Pattern struct {
	base
	Regex *regexp.Regexp
}

// NewPattern returns an unregistered Pattern rule for re.
func NewPattern(re *regexp.Regexp) *Pattern { return &Pattern{Regex: re} }

func (r *Pattern) Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError) {
	skip = effectiveSkip(r, skip)
	pos = skipWhitespace(input, pos, skip)
	if pos > len(input) {
		return nil, newMatchError(pos, r, nil, nil)
	}
	loc := r.Regex.FindStringIndex(input[pos:])
	if loc != nil && loc[0] == 0 {
		return &Match{Rule: r, Start: pos, End: pos + loc[1]}, nil
	}
	return nil, newMatchError(pos, r, nil, nil)
}
