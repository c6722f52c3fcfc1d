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

package bootstrap_test

import (
	"regexp"
	"testing"

	"github.com/hyomoto/firestarter/peg"
	"github.com/hyomoto/firestarter/peg/bootstrap"
)

func TestMakeGrammarBuildsEquivalentGrammarWithRuleReference(t *testing.T) {
	text := `Greeting <- "hello " Name
Name -- ~"[A-Za-z]+"
`
	got, err := bootstrap.MakeGrammar(text, peg.Flags{Skip: peg.SkipSpaces, Flatten: true})
	if err != nil {
		t.Fatalf("MakeGrammar: %v", err)
	}

	want := peg.NewGrammar(peg.Flags{Skip: peg.SkipSpaces, Flatten: true})
	want.Register("Greeting", peg.NewSequence(peg.NewLiteral("hello "), peg.NewReference("Name")))
	want.Register("Name", peg.NewPattern(regexp.MustCompile(`[A-Za-z]+`)))
	want.Discard("Name")
	if err := want.Resolve(); err != nil {
		t.Fatalf("hand-built grammar Resolve: %v", err)
	}

	equal, err := peg.Equal(got, want)
	if err != nil {
		t.Fatalf("Equal: %v", err)
	}
	if !equal {
		t.Error("MakeGrammar's output is not structurally equal to the hand-built grammar")
	}

	if _, err := got.Parse("t", "hello World"); err != nil {
		t.Errorf("Parse: %v", err)
	}
}

func TestMakeGrammarAppliesDirectiveMarkers(t *testing.T) {
	text := `Root <- A B
A -- "a"
B -> "b"
`
	g, err := bootstrap.MakeGrammar(text, peg.Flags{Skip: peg.SkipNone, Flatten: true})
	if err != nil {
		t.Fatalf("MakeGrammar: %v", err)
	}

	ast, err := g.Parse("t", "ab")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// A (discard, "--") disappears entirely; B (hoist, "->") vanishes but
	// leaves no children of its own (a bare Literal has none), so Root
	// ends up with no children at all.
	if len(ast.Matches[0].Children) != 0 {
		t.Errorf("Root children = %d, want 0 (A discarded, B hoisted)", len(ast.Matches[0].Children))
	}
}

func TestMakeGrammarRejectsEmptyText(t *testing.T) {
	if _, err := bootstrap.MakeGrammar("   ", peg.Flags{}); err == nil {
		t.Fatal("expected an error for empty grammar text")
	}
}

func TestMakeGrammarParsesTrailingCommentMacro(t *testing.T) {
	text := `Digits <- ~"[0-9]+" # a digit sequence
`
	g, err := bootstrap.MakeGrammar(text, peg.Flags{Skip: peg.SkipSpaces, Flatten: true})
	if err != nil {
		t.Fatalf("MakeGrammar: %v", err)
	}
	if _, err := g.Parse("t", "abc"); err == nil {
		t.Fatal("expected a parse failure on non-digit input")
	} else if perr, ok := err.(*peg.ParseError); ok {
		found := false
		for _, e := range perr.Expected {
			if e == "a digit sequence" {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected = %v, want to contain the comment macro", perr.Expected)
		}
	}
}
