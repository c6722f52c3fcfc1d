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

package resolver_test

import (
	"testing"

	"github.com/hyomoto/firestarter/crucible"
	"github.com/hyomoto/firestarter/firestarter"
	"github.com/hyomoto/firestarter/tinder"
	"github.com/hyomoto/firestarter/tinder/resolver"
	"github.com/hyomoto/firestarter/tinder/runtime"
)

func instrs(ops ...interface{}) []firestarter.Instruction {
	out := make([]firestarter.Instruction, len(ops))
	for i, op := range ops {
		out[i] = firestarter.Instruction{Line: i + 1, Operation: op}
	}
	return out
}

func TestResolveFoldsConstantArithmetic(t *testing.T) {
	script, err := resolver.Resolve(instrs(tinder.Add{Left: tinder.Number{Value: 2}, Right: tinder.Number{Value: 3}}),
		crucible.New(0, nil), map[string]bool{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	c, ok := script.Instructions[0].Node.(tinder.Constant)
	if !ok {
		t.Fatalf("Node = %T, want tinder.Constant (folded)", script.Instructions[0].Node)
	}
	if c.Value != 5 {
		t.Errorf("Value = %v, want 5", c.Value)
	}
}

func TestResolveFoldsConstantBoundIdentifier(t *testing.T) {
	constants := crucible.New(0, nil)
	constants.Variables["x"] = 10.0
	constants.Update(nil, []string{"x"})

	script, err := resolver.Resolve(instrs(tinder.Identifier{Name: "x"}), constants, map[string]bool{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	c, ok := script.Instructions[0].Node.(tinder.Constant)
	if !ok {
		t.Fatalf("Node = %T, want tinder.Constant (folded)", script.Instructions[0].Node)
	}
	if c.Value != 10.0 {
		t.Errorf("Value = %v, want 10.0", c.Value)
	}
}

func TestResolveLeavesNonConstantIdentifierUnfolded(t *testing.T) {
	constants := crucible.New(0, nil)
	constants.Variables["x"] = 10.0 // present, but never frozen as a constant

	script, err := resolver.Resolve(instrs(tinder.Identifier{Name: "x"}), constants, map[string]bool{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := script.Instructions[0].Node.(tinder.Identifier); !ok {
		t.Fatalf("Node = %T, want tinder.Identifier (left unfolded)", script.Instructions[0].Node)
	}
}

type doubler struct{}

func (doubler) Call(args []interface{}) (interface{}, error) {
	n, _ := args[1].(int)
	return n * 2, nil
}

func TestResolveFoldsPureFunctionCall(t *testing.T) {
	constants := crucible.New(0, nil)
	constants.Variables["double"] = doubler{}

	script, err := resolver.Resolve(
		instrs(tinder.Function{Ident: "double", Args: []runtime.Node{tinder.Number{Value: 2}}}),
		constants, map[string]bool{"double": true})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	c, ok := script.Instructions[0].Node.(tinder.Constant)
	if !ok {
		t.Fatalf("Node = %T, want tinder.Constant (pure call folded)", script.Instructions[0].Node)
	}
	if c.Value != 4 {
		t.Errorf("Value = %v, want 4", c.Value)
	}
}

func TestResolveDoesNotFoldImpureFunctionCall(t *testing.T) {
	constants := crucible.New(0, nil)
	constants.Variables["double"] = doubler{}

	script, err := resolver.Resolve(
		instrs(tinder.Function{Ident: "double", Args: []runtime.Node{tinder.Number{Value: 2}}}),
		constants, map[string]bool{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, ok := script.Instructions[0].Node.(tinder.Function); !ok {
		t.Fatalf("Node = %T, want tinder.Function (not in pureFuncs, left unfolded)", script.Instructions[0].Node)
	}
}

// TestResolveFoldsConstDeclaredInScript mirrors the canonical
// const-then-use shape: `const PI to 3.14` followed by
// `set area to PI * 2` leaves the second instruction holding a single
// already-computed Constant, not a live multiply.
func TestResolveFoldsConstDeclaredInScript(t *testing.T) {
	script, err := resolver.Resolve(instrs(
		tinder.Const{Ident: "PI", Value: tinder.Number{Value: 3.14}},
		tinder.Set{Idents: []string{"area"}, Values: []runtime.Node{
			tinder.Multiply{Left: tinder.Identifier{Name: "PI"}, Right: tinder.Number{Value: 2}},
		}},
	), crucible.New(0, nil), map[string]bool{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	set, ok := script.Instructions[1].Node.(tinder.Set)
	if !ok {
		t.Fatalf("Node = %T, want tinder.Set", script.Instructions[1].Node)
	}
	c, ok := set.Values[0].(tinder.Constant)
	if !ok {
		t.Fatalf("Values[0] = %T, want tinder.Constant (PI * 2 folded)", set.Values[0])
	}
	if c.Value != 6.28 {
		t.Errorf("Value = %v, want 6.28", c.Value)
	}
}

func TestResolveFoldsInsideIfCondition(t *testing.T) {
	ifNode := &tinder.If{Cond: tinder.Lt{Left: tinder.Number{Value: 1}, Right: tinder.Number{Value: 2}}}
	script, err := resolver.Resolve(instrs(ifNode, &tinder.EndIf{}), crucible.New(0, nil), map[string]bool{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	gotIf := script.Instructions[0].Node.(*tinder.If)
	c, ok := gotIf.Cond.(tinder.Constant)
	if !ok {
		t.Fatalf("Cond = %T, want tinder.Constant (1 < 2 folded)", gotIf.Cond)
	}
	if c.Value != true {
		t.Errorf("Cond value = %v, want true", c.Value)
	}
}

func TestResolveLinksIfElseEndIf(t *testing.T) {
	ifNode := &tinder.If{Cond: tinder.Constant{Value: true}}
	elseNode := &tinder.Else{}
	endIf := &tinder.EndIf{}

	script, err := resolver.Resolve(
		instrs(ifNode, tinder.Constant{Value: 1}, elseNode, tinder.Constant{Value: 2}, endIf),
		crucible.New(0, nil), map[string]bool{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	gotIf := script.Instructions[0].Node.(*tinder.If)
	if gotIf.Target != 3 {
		t.Errorf("If.Target = %d, want 3 (index of the else body)", gotIf.Target)
	}
	gotElse := script.Instructions[2].Node.(*tinder.Else)
	if gotElse.Target != 5 {
		t.Errorf("Else.Target = %d, want 5 (index after EndIf)", gotElse.Target)
	}
}

func TestResolveLinksForeachEndFor(t *testing.T) {
	foreach := &tinder.Foreach{Var: "v", Iterable: tinder.Array{}}
	endFor := &tinder.EndFor{}

	script, err := resolver.Resolve(
		instrs(foreach, tinder.Constant{Value: 1}, endFor),
		crucible.New(0, nil), map[string]bool{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	gotForeach := script.Instructions[0].Node.(*tinder.Foreach)
	if gotForeach.Exit != 3 {
		t.Errorf("Foreach.Exit = %d, want 3 (index after EndFor)", gotForeach.Exit)
	}
	gotEndFor := script.Instructions[2].Node.(*tinder.EndFor)
	if gotEndFor.ConditionIndex != 0 {
		t.Errorf("EndFor.ConditionIndex = %d, want 0 (the loop header)", gotEndFor.ConditionIndex)
	}
}

func TestResolveUnmatchedElseIsAnError(t *testing.T) {
	_, err := resolver.Resolve(instrs(&tinder.Else{}), crucible.New(0, nil), map[string]bool{})
	ub, ok := err.(*resolver.UnmatchedBlockError)
	if !ok {
		t.Fatalf("err = %v (%T), want *UnmatchedBlockError", err, err)
	}
	if ub.Kind != "Else" {
		t.Errorf("Kind = %q, want %q", ub.Kind, "Else")
	}
}

func TestResolveOpenBlockAtEndIsAnError(t *testing.T) {
	_, err := resolver.Resolve(instrs(&tinder.If{Cond: tinder.Constant{Value: true}}), crucible.New(0, nil), map[string]bool{})
	if _, ok := err.(*resolver.UnmatchedBlockError); !ok {
		t.Fatalf("err = %v (%T), want *UnmatchedBlockError", err, err)
	}
}

func TestResolveRejectsNonExecutableInstruction(t *testing.T) {
	_, err := resolver.Resolve(instrs("not a node"), crucible.New(0, nil), map[string]bool{})
	if err == nil {
		t.Fatal("expected an error for a non-Node operation")
	}
}
