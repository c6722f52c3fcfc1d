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

package runtime_test

import (
	"testing"

	"github.com/hyomoto/firestarter/crucible"
	"github.com/hyomoto/firestarter/tinder"
	"github.com/hyomoto/firestarter/tinder/runtime"
)

// fakeNode is a minimal runtime.Node whose behavior is supplied per test.
type fakeNode struct {
	eval func(env *runtime.Env) (interface{}, runtime.Outcome, error)
}

func (f fakeNode) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return f.eval(env)
}

func newScript(nodes ...runtime.Node) *runtime.Script {
	instrs := make([]runtime.Instruction, len(nodes))
	for i, n := range nodes {
		instrs[i] = runtime.Instruction{Line: i + 1, Node: n}
	}
	return &runtime.Script{Instructions: instrs, JumpTable: map[string]int{}, Interrupts: map[string]int{}}
}

func continueNode(visited *[]int, at int) runtime.Node {
	return fakeNode{eval: func(env *runtime.Env) (interface{}, runtime.Outcome, error) {
		*visited = append(*visited, at)
		return nil, runtime.ContinueOutcome(), nil
	}}
}

func TestRunFallsThroughToHalted(t *testing.T) {
	var visited []int
	script := newScript(continueNode(&visited, 0), continueNode(&visited, 1))
	env := runtime.NewEnv(crucible.New(0, nil))

	outcome, err := runtime.Run(script, env)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Kind != runtime.Halted {
		t.Errorf("Kind = %v, want Halted", outcome.Kind)
	}
	if len(visited) != 2 || visited[0] != 0 || visited[1] != 1 {
		t.Errorf("visited = %v, want [0 1]", visited)
	}
}

func TestRunJumpToSkipsInstructions(t *testing.T) {
	var visited []int
	jump := fakeNode{eval: func(env *runtime.Env) (interface{}, runtime.Outcome, error) {
		visited = append(visited, 0)
		return nil, runtime.JumpOutcome(2), nil
	}}
	script := newScript(jump, continueNode(&visited, 1), continueNode(&visited, 2))
	env := runtime.NewEnv(crucible.New(0, nil))

	if _, err := runtime.Run(script, env); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(visited) != 2 || visited[0] != 0 || visited[1] != 2 {
		t.Errorf("visited = %v, want [0 2] (instruction 1 skipped)", visited)
	}
}

func TestRunReturnsYieldedOutcomeWithoutAdvancing(t *testing.T) {
	var visited []int
	yield := fakeNode{eval: func(env *runtime.Env) (interface{}, runtime.Outcome, error) {
		return nil, runtime.YieldOutcome(map[string]interface{}{"k": "v"}), nil
	}}
	script := newScript(yield, continueNode(&visited, 1))
	env := runtime.NewEnv(crucible.New(0, nil))

	outcome, err := runtime.Run(script, env)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Kind != runtime.Yielded || outcome.Payload["k"] != "v" {
		t.Errorf("outcome = %+v, want Yielded with payload k=v", outcome)
	}
	if len(visited) != 0 {
		t.Errorf("visited = %v, want [] (Run returned at the yield)", visited)
	}
}

func TestRunDispatchesRegisteredInterruptByName(t *testing.T) {
	var handlerRan bool
	failing := fakeNode{eval: func(env *runtime.Env) (interface{}, runtime.Outcome, error) {
		return nil, runtime.ContinueOutcome(), &tinder.DivideByZeroError{}
	}}
	handler := fakeNode{eval: func(env *runtime.Env) (interface{}, runtime.Outcome, error) {
		handlerRan = true
		return nil, runtime.ContinueOutcome(), nil
	}}
	script := newScript(failing, handler)
	env := runtime.NewEnv(crucible.New(0, nil))
	env.Interrupts["DivideByZero"] = 1

	outcome, err := runtime.Run(script, env)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !handlerRan {
		t.Error("handler at the registered interrupt target did not run")
	}
	if outcome.Kind != runtime.Halted {
		t.Errorf("Kind = %v, want Halted", outcome.Kind)
	}
}

func TestRunPropagatesUnhandledErrorAsScriptError(t *testing.T) {
	failing := fakeNode{eval: func(env *runtime.Env) (interface{}, runtime.Outcome, error) {
		return nil, runtime.ContinueOutcome(), &tinder.DivideByZeroError{}
	}}
	script := newScript(failing)
	env := runtime.NewEnv(crucible.New(0, nil))

	_, err := runtime.Run(script, env)
	serr, ok := err.(*runtime.ScriptError)
	if !ok {
		t.Fatalf("err = %v (%T), want *ScriptError", err, err)
	}
	if serr.Line != 1 {
		t.Errorf("Line = %d, want 1", serr.Line)
	}
	if serr.Unwrap() == nil {
		t.Error("Unwrap() returned nil, want the underlying DivideByZeroError")
	}
}

func TestWriteJumpTableWritesLabelsAndScopeVariable(t *testing.T) {
	scope := crucible.New(0, nil)
	env := runtime.NewEnv(scope)
	script := &runtime.Script{JumpTable: map[string]int{"top": 3}}

	runtime.WriteJumpTable(env, script)

	if env.Labels["top"] != 3 {
		t.Errorf("env.Labels[top] = %d, want 3", env.Labels["top"])
	}
	v, err := scope.Get("top")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != float64(3) {
		t.Errorf("scope[top] = %v, want float64(3)", v)
	}
}
