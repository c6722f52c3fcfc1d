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

// Package peg implements a Parsing Expression Grammar engine: rule
// primitives that consume raw input text directly (there is no separate
// tokenization phase), a Grammar that resolves named rule references and
// drives a top-level parse, and the Match/MatchError trees that result.
package peg

import "regexp"

// Rule is a single grammar production. Every variant (Literal, Pattern,
// Reference, Sequence, Choice, ZeroOrMore, OneOrMore, Optional,
// AndPredicate, NotPredicate) implements this interface.
//
// Consume attempts to match the rule against input starting at pos. skip is
// the grammar's whitespace pattern (nil if none); implementations must
// suspend it for their own match and propagate that suspension to children
// when the rule is strict.
type Rule interface {
	Consume(input string, pos int, skip *regexp.Regexp) (*Match, *MatchError)

	// Identity is the name under which this rule was registered in a
	// Grammar, or "" if the rule is anonymous scaffolding.
	Identity() string
	SetIdentity(name string)

	// Strict suspends skip-pattern consumption for this rule and its
	// descendants during a single match attempt.
	Strict() bool
	SetStrict(strict bool)
}

// base is embedded by every concrete Rule to provide the identity/strict
// bookkeeping common to all variants.
type base struct {
	identity string
	strict   bool
}

func (b *base) Identity() string     { return b.identity }
func (b *base) SetIdentity(n string) { b.identity = n }
func (b *base) Strict() bool         { return b.strict }
func (b *base) SetStrict(s bool)     { b.strict = s }

// effectiveSkip returns the skip pattern a rule should use for its own
// match and should hand down to its children: nil whenever the rule is
// strict, regardless of what the caller passed in.
func effectiveSkip(r Rule, skip *regexp.Regexp) *regexp.Regexp {
	if r.Strict() {
		return nil
	}
	return skip
}

// skipWhitespace advances pos past a single match of skip at pos, if any.
func skipWhitespace(input string, pos int, skip *regexp.Regexp) int {
	if skip == nil {
		return pos
	}
	loc := skip.FindStringIndex(input[pos:])
	if loc != nil && loc[0] == 0 {
		return pos + loc[1]
	}
	return pos
}
