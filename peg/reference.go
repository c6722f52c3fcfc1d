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

import "regexp"

// Reference is a named indirection to another rule in the same Grammar. It
// is created unresolved (Target nil) at parse-time from the grammar text
// and filled in by Grammar.Resolve, which may require several passes if
// rules reference names not yet registered.
type Reference struct {
	base
	Name   string
	Target Rule
}

// NewReference returns an unresolved Reference to name.
func NewReference(name string) *Reference { return &Reference{Name: name} }

// Resolved reports whether Target has been filled in.
func (r *Reference) Resolved() bool { return r.Target != nil }

func (r *Reference) Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError) {
	skip = effectiveSkip(r, skip)
	if r.Target == nil {
		// A grammar that parses successfully never reaches this: Resolve
		// rejects every unresolved reference before a Grammar is usable.
		return nil, newMatchError(pos, r, nil, nil)
	}
	m, err := r.Target.Consume(input, pos, skip)
	if err != nil {
		return nil, newMatchError(pos, r, []*MatchError{err}, nil)
	}
	return &Match{Rule: r, Start: m.Start, End: m.End, Children: []*Match{m}}, nil
}
