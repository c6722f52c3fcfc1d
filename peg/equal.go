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

import "fmt"

// CompareError reports that two rules being compared by Equal diverge.
type CompareError struct {
	A, B Rule
}

func (e *CompareError) Error() string {
	return fmt.Sprintf("rule %q does not match rule %q", describeRule(e.A), describeRule(e.B))
}

func describeRule(r Rule) string {
	if r == nil {
		return "<nil>"
	}
	if id := r.Identity(); id != "" {
		return id
	}
	return fmt.Sprintf("%T", r)
}

// Equal reports whether two resolved grammars define structurally
// identical rule sets: same registered names, same rule shapes, same
// literal text and pattern source, same reference targets (by name,
// avoiding infinite recursion on self-referential rules).
func Equal(a, b *Grammar) (bool, error) {
	for name, ra := range a.rules {
		rb, ok := b.rules[name]
		if !ok {
			return false, &CompareError{A: ra, B: nil}
		}
		if err := compareRules(ra, rb, map[Rule]bool{}); err != nil {
			return false, err
		}
	}
	for name := range b.rules {
		if _, ok := a.rules[name]; !ok {
			return false, &CompareError{A: nil, B: b.rules[name]}
		}
	}
	return true, nil
}

func compareRules(a, b Rule, seen map[Rule]bool) error {
	if seen[a] {
		return nil
	}
	seen[a] = true

	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)
		if !ok || x.Text != y.Text {
			return &CompareError{A: a, B: b}
		}
	case *Pattern:
		y, ok := b.(*Pattern)
		if !ok || x.Regex.String() != y.Regex.String() {
			return &CompareError{A: a, B: b}
		}
	case *Reference:
		y, ok := b.(*Reference)
		if !ok || x.Name != y.Name {
			return &CompareError{A: a, B: b}
		}
		return nil
	case *Sequence:
		y, ok := b.(*Sequence)
		if !ok || len(x.Children) != len(y.Children) {
			return &CompareError{A: a, B: b}
		}
		for i := range x.Children {
			if err := compareRules(x.Children[i], y.Children[i], seen); err != nil {
				return err
			}
		}
	case *Choice:
		y, ok := b.(*Choice)
		if !ok || len(x.Children) != len(y.Children) {
			return &CompareError{A: a, B: b}
		}
		for i := range x.Children {
			if err := compareRules(x.Children[i], y.Children[i], seen); err != nil {
				return err
			}
		}
	case *ZeroOrMore:
		y, ok := b.(*ZeroOrMore)
		if !ok {
			return &CompareError{A: a, B: b}
		}
		return compareRules(x.Child, y.Child, seen)
	case *OneOrMore:
		y, ok := b.(*OneOrMore)
		if !ok {
			return &CompareError{A: a, B: b}
		}
		return compareRules(x.Child, y.Child, seen)
	case *Optional:
		y, ok := b.(*Optional)
		if !ok {
			return &CompareError{A: a, B: b}
		}
		return compareRules(x.Child, y.Child, seen)
	case *AndPredicate:
		y, ok := b.(*AndPredicate)
		if !ok {
			return &CompareError{A: a, B: b}
		}
		return compareRules(x.Child, y.Child, seen)
	case *NotPredicate:
		y, ok := b.(*NotPredicate)
		if !ok {
			return &CompareError{A: a, B: b}
		}
		return compareRules(x.Child, y.Child, seen)
	default:
		return &CompareError{A: a, B: b}
	}
	return nil
}
