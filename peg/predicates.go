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

// AndPredicate succeeds if its child matches at pos, but consumes no input.
type AndPredicate struct {
	base
	Child Rule
}

func NewAndPredicate(child Rule) *AndPredicate { return &AndPredicate{Child: child} }

func (r *AndPredicate) Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError) {
	skip = effectiveSkip(r, skip)
	m, err := r.Child.Consume(input, pos, skip)
	if err != nil {
		return nil, newMatchError(pos, r, []*MatchError{err}, nil)
	}
	_ = m
	return &Match{Rule: r, Start: pos, End: pos}, nil
}

// NotPredicate succeeds, consuming no input, exactly when its child fails.
type NotPredicate struct {
	base
	Child Rule
}

func NewNotPredicate(child Rule) *NotPredicate { return &NotPredicate{Child: child} }

func (r *NotPredicate) Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError) {
	skip = effectiveSkip(r, skip)
	m, err := r.Child.Consume(input, pos, skip)
	if err == nil {
		return nil, newMatchError(m.Start, r, nil, []*Match{m})
	}
	return &Match{Rule: r, Start: pos, End: pos}, nil
}
