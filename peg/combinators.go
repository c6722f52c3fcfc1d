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

// Sequence matches every child rule in order, each advancing pos. PEG
// sequences do not backtrack once a later child fails: the whole sequence
// fails, wrapping the failing child's error with the partial matches that
// preceded it.
type Sequence struct {
	base
	Children []Rule
}

func NewSequence(children ...Rule) *Sequence { return &Sequence{Children: children} }

func (r *Sequence) Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError) {
	skip = effectiveSkip(r, skip)
	start := pos
	var matches []*Match
	for _, child := range r.Children {
		m, err := child.Consume(input, pos, skip)
		if err != nil {
			return nil, newMatchError(pos, r, []*MatchError{err}, matches)
		}
		matches = append(matches, m)
		pos = m.End
	}
	return &Match{Rule: r, Start: start, End: pos, Children: matches}, nil
}

// Choice matches the first child that succeeds; PEG choice is ordered and
// does not consider later alternatives once an earlier one matches.
type Choice struct {
	base
	Children []Rule
}

func NewChoice(children ...Rule) *Choice { return &Choice{Children: children} }

func (r *Choice) Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError) {
	skip = effectiveSkip(r, skip)
	var unmatched []*MatchError
	for _, child := range r.Children {
		m, err := child.Consume(input, pos, skip)
		if err == nil {
			return &Match{Rule: r, Start: m.Start, End: m.End, Children: []*Match{m}}, nil
		}
		unmatched = append(unmatched, err)
	}
	return nil, newMatchError(pos, r, unmatched, nil)
}

// ZeroOrMore greedily matches its child as many times as possible,
// including zero. It never fails.
type ZeroOrMore struct {
	base
	Child Rule
}

func NewZeroOrMore(child Rule) *ZeroOrMore { return &ZeroOrMore{Child: child} }

func (r *ZeroOrMore) Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError) {
	skip = effectiveSkip(r, skip)
	start := pos
	var matches []*Match
	var lastErr *MatchError
	for pos < len(input) {
		m, err := r.Child.Consume(input, pos, skip)
		if err != nil {
			lastErr = err
			break
		}
		matches = append(matches, m)
		pos = m.End
	}
	return &Match{Rule: r, Start: start, End: pos, Children: matches, LastError: lastErr}, nil
}

// OneOrMore requires its child to match at least once, then behaves like
// ZeroOrMore for any further repetitions.
type OneOrMore struct {
	base
	Child Rule
}

func NewOneOrMore(child Rule) *OneOrMore { return &OneOrMore{Child: child} }

func (r *OneOrMore) Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError) {
	skip = effectiveSkip(r, skip)
	start := pos
	var matches []*Match
	var lastErr *MatchError
	for pos < len(input) {
		m, err := r.Child.Consume(input, pos, skip)
		if err != nil {
			lastErr = err
			if len(matches) > 0 {
				break
			}
			return nil, newMatchError(pos, r, []*MatchError{err}, nil)
		}
		matches = append(matches, m)
		pos = m.End
	}
	if len(matches) == 0 {
		return nil, newMatchError(pos, r, nil, nil)
	}
	return &Match{Rule: r, Start: start, End: pos, Children: matches, LastError: lastErr}, nil
}

// Optional matches its child zero or one time and never fails; on failure
// it returns a zero-width match recording the underlying error for later
// diagnosis.
type Optional struct {
	base
	Child Rule
}

func NewOptional(child Rule) *Optional { return &Optional{Child: child} }

func (r *Optional) Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError) {
	skip = effectiveSkip(r, skip)
	m, err := r.Child.Consume(input, pos, skip)
	if err != nil {
		return &Match{Rule: r, Start: pos, End: pos, LastError: err}, nil
	}
	return &Match{Rule: r, Start: m.Start, End: m.End, Children: []*Match{m}}, nil
}
