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

package peg_test

import (
	"regexp"
	"testing"

	"github.com/hyomoto/firestarter/peg"
)

func id(name string, r peg.Rule) peg.Rule {
	r.SetIdentity(name)
	return r
}

func TestLiteralConsume(t *testing.T) {
	r := peg.NewLiteral("foo")

	m, err := r.Consume("foobar", 0, nil)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got := m.Slice("foobar"); got != "foo" {
		t.Errorf("Slice = %q, want %q", got, "foo")
	}

	if _, err := r.Consume("barfoo", 0, nil); err == nil {
		t.Fatal("expected a failed match against non-prefix input")
	}
}

func TestPatternConsume(t *testing.T) {
	r := peg.NewPattern(regexp.MustCompile(`[0-9]+`))

	m, err := r.Consume("123abc", 0, nil)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if got := m.Slice("123abc"); got != "123" {
		t.Errorf("Slice = %q, want %q", got, "123")
	}

	if _, err := r.Consume("abc123", 0, nil); err == nil {
		t.Fatal("expected a failed match against non-digit input")
	}
}

func TestChoiceIsOrderedNotLongest(t *testing.T) {
	// PEG choice takes the first alternative that matches, even when a
	// later alternative would consume more of the input.
	r := peg.NewChoice(peg.NewLiteral("a"), peg.NewLiteral("ab"))
	m, err := r.Consume("ab", 0, nil)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("matched length = %d, want 1 (first alternative wins)", m.Len())
	}
}

func TestZeroOrMoreNeverFails(t *testing.T) {
	r := peg.NewZeroOrMore(peg.NewPattern(regexp.MustCompile(`[0-9]`)))

	m, err := r.Consume("abc", 0, nil)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("matched length = %d, want 0", m.Len())
	}

	m, err = r.Consume("123abc", 0, nil)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if m.Len() != 3 || len(m.Children) != 3 {
		t.Errorf("m = %+v, want length 3 with 3 children", m)
	}
}

func TestOneOrMoreRequiresOneMatch(t *testing.T) {
	r := peg.NewOneOrMore(peg.NewPattern(regexp.MustCompile(`[0-9]`)))

	if _, err := r.Consume("abc", 0, nil); err == nil {
		t.Fatal("expected failure with zero matches")
	}

	m, err := r.Consume("123abc", 0, nil)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if m.Len() != 3 {
		t.Errorf("matched length = %d, want 3", m.Len())
	}
}

func TestOptionalNeverFails(t *testing.T) {
	r := peg.NewOptional(peg.NewLiteral("x"))

	m, err := r.Consume("y", 0, nil)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("matched length = %d, want 0", m.Len())
	}

	m, err = r.Consume("xy", 0, nil)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("matched length = %d, want 1", m.Len())
	}
}

func TestPredicatesConsumeNoInput(t *testing.T) {
	and := peg.NewAndPredicate(peg.NewLiteral("x"))
	m, err := and.Consume("xyz", 0, nil)
	if err != nil {
		t.Fatalf("AndPredicate Consume: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("AndPredicate matched length = %d, want 0", m.Len())
	}
	if _, err := and.Consume("abc", 0, nil); err == nil {
		t.Fatal("AndPredicate expected failure when child does not match")
	}

	not := peg.NewNotPredicate(peg.NewLiteral("x"))
	m, err = not.Consume("abc", 0, nil)
	if err != nil {
		t.Fatalf("NotPredicate Consume: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("NotPredicate matched length = %d, want 0", m.Len())
	}
	if _, err := not.Consume("xyz", 0, nil); err == nil {
		t.Fatal("NotPredicate expected failure when child matches")
	}
}

func TestSequenceSkipsWhitespaceBetweenChildren(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipSpaces, Flatten: true})
	g.Register("Pair", peg.NewSequence(peg.NewLiteral("a"), peg.NewLiteral("b")))

	if _, err := g.Parse("t", "a   b"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestResolveForwardReference(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipNone})
	g.Register("A", peg.NewSequence(peg.NewLiteral("a"), peg.NewReference("B")))
	g.Register("B", peg.NewOptional(peg.NewReference("A")))

	if err := g.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if _, err := g.Parse("t", "aaa"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestResolveMissingRule(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{})
	g.Register("A", peg.NewReference("Missing"))

	err := g.Resolve()
	var missing *peg.MissingRuleError
	if !asMissing(err, &missing) {
		t.Fatalf("Resolve error = %v, want *MissingRuleError", err)
	}
	if missing.Name != "Missing" {
		t.Errorf("Name = %q, want %q", missing.Name, "Missing")
	}
}

func asMissing(err error, out **peg.MissingRuleError) bool {
	m, ok := err.(*peg.MissingRuleError)
	if ok {
		*out = m
	}
	return ok
}

func TestResolveCircularReference(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{})
	g.Register("A", peg.NewReference("A"))

	err := g.Resolve()
	if _, ok := err.(*peg.CircularDependencyError); !ok {
		t.Fatalf("Resolve error = %v (%T), want *CircularDependencyError", err, err)
	}
}

func TestParseHoistErasesWrapperFromChildren(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipNone, Flatten: true})
	innerA := id("InnerA", peg.NewPattern(regexp.MustCompile(`[a-z]+`)))
	innerB := id("InnerB", peg.NewPattern(regexp.MustCompile(`[a-z]+`)))
	group := id("Group", peg.NewSequence(peg.NewLiteral("("), innerB, peg.NewLiteral(")")))
	g.Register("Root", peg.NewSequence(innerA, group))
	g.Hoist("Group")

	ast, err := g.Parse("t", "ab(cd)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := ast.Matches[0]
	if len(root.Children) != 2 {
		t.Fatalf("Root children = %d, want 2 (Group hoisted away)", len(root.Children))
	}
	if root.Children[0].Rule.Identity() != "InnerA" || root.Children[1].Rule.Identity() != "InnerB" {
		t.Errorf("children = %q, %q, want InnerA, InnerB", root.Children[0].Rule.Identity(), root.Children[1].Rule.Identity())
	}
}

func TestParseDiscardDropsMatchEntirely(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipNone, Flatten: true})
	innerA := id("InnerA", peg.NewPattern(regexp.MustCompile(`[a-z]+`)))
	innerB := id("InnerB", peg.NewPattern(regexp.MustCompile(`[a-z]+`)))
	comma := id("Comma", peg.NewLiteral(","))
	g.Register("List", peg.NewSequence(innerA, comma, innerB))
	g.Discard("Comma")

	ast, err := g.Parse("t", "ab,cd")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	list := ast.Matches[0]
	if len(list.Children) != 2 {
		t.Fatalf("List children = %d, want 2 (Comma discarded)", len(list.Children))
	}
}

func TestParseMergeAliasesChildOntoParentIdentity(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipNone, Flatten: true})
	num := id("Num", peg.NewPattern(regexp.MustCompile(`[0-9]+`)))
	g.Register("Expr", peg.NewSequence(num))
	g.Merge("Expr")

	ast, err := g.Parse("t", "42")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m := ast.Matches[0]
	if m.Rule.Identity() != "Expr" {
		t.Errorf("Identity = %q, want %q", m.Rule.Identity(), "Expr")
	}
	if m.Slice("42") != "42" {
		t.Errorf("Slice = %q, want %q (span of the merged child)", m.Slice("42"), "42")
	}
}

func TestParseConditionalCollapsesSingleChild(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipNone, Flatten: true})
	inner := id("Inner", peg.NewPattern(regexp.MustCompile(`[a-z]+`)))
	g.Register("Wrap", peg.NewSequence(inner))
	g.Conditional("Wrap")

	ast, err := g.Parse("t", "abc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := ast.Matches[0].Rule.Identity(); got != "Inner" {
		t.Errorf("Identity = %q, want %q (Wrap collapsed)", got, "Inner")
	}
}

func TestParseErrorReportsExpectedMacro(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipSpaces, Flatten: true})
	digits := id("Digits", peg.NewPattern(regexp.MustCompile(`[0-9]+`)))
	g.Register("Digits", digits)
	g.SetMacro("Digits", "a digit sequence")

	_, err := g.Parse("t", "abc")
	perr, ok := err.(*peg.ParseError)
	if !ok {
		t.Fatalf("err = %v (%T), want *ParseError", err, err)
	}
	found := false
	for _, e := range perr.Expected {
		if e == "a digit sequence" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected = %v, want to contain %q", perr.Expected, "a digit sequence")
	}
	if perr.Error() == "" {
		t.Error("Error() returned an empty diagnostic")
	}
}

func TestParseErrorOnZeroWidthRootMatch(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipNone})
	g.Register("Maybe", peg.NewOptional(peg.NewLiteral("zzz")))

	if _, err := g.Parse("t", "abc"); err == nil {
		t.Fatal("expected a ParseError when the root can only match zero-width")
	}
}

func TestMatchWalkVisitsEveryDescendant(t *testing.T) {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipNone})
	a := id("A", peg.NewLiteral("a"))
	b := id("B", peg.NewLiteral("b"))
	g.Register("AB", peg.NewSequence(a, b))

	ast, err := g.Parse("t", "ab")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var names []string
	ast.Matches[0].Walk(func(m *peg.Match) { names = append(names, m.Rule.Identity()) })
	if len(names) != 3 || names[0] != "AB" || names[1] != "A" || names[2] != "B" {
		t.Errorf("Walk order = %v, want [AB A B]", names)
	}
}
