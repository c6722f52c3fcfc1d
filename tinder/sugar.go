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

package tinder

import (
	"fmt"

	"github.com/hyomoto/firestarter/firestarter"
	"github.com/hyomoto/firestarter/tinder/runtime"
)

// If opens a structured conditional block. Target is patched by
// tinder/resolver once the matching Else or EndIf is found: it is the
// instruction to jump to when Cond evaluates falsy (the Else branch, or
// the instruction after EndIf when there is none).
type If struct {
	Cond   runtime.Node
	Target int
}

func NewIf(args []interface{}) (interface{}, error) {
	cond, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: If condition is not an expression: %T", args[0])
	}
	return &If{Cond: cond}, nil
}

func (i *If) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := i.Cond.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	if !truthy(v) {
		return nil, runtime.JumpOutcome(i.Target), nil
	}
	return nil, runtime.ContinueOutcome(), nil
}

// Else marks the boundary between an If's true branch and its false
// branch. Reaching it in sequence (i.e. the true branch ran to
// completion) always jumps past the false branch to Target, patched by
// the resolver once EndIf is found.
type Else struct {
	// Cond holds the optional expression written after "else"; nil for a
	// plain else. Eval never evaluates it, so the false branch runs
	// whenever the If's condition was falsy, as with a plain else.
	Cond   runtime.Node
	Target int
}

func NewElse(args []interface{}) (interface{}, error) {
	var cond runtime.Node
	if args[0] != nil {
		node, ok := args[0].(runtime.Node)
		if !ok {
			return nil, fmt.Errorf("tinder: Else condition is not an expression: %T", args[0])
		}
		cond = node
	}
	return &Else{Cond: cond}, nil
}

func (e *Else) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return nil, runtime.JumpOutcome(e.Target), nil
}

// EndIf closes a structured conditional block; it is a pure marker the
// resolver consults to patch dangling If/Else jump targets and is a
// no-op at run time.
type EndIf struct{}

func NewEndIf(args []interface{}) (interface{}, error) { return &EndIf{}, nil }

func (EndIf) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return nil, runtime.ContinueOutcome(), nil
}

// Foreach opens a loop over Iterable, binding each element to Var (and,
// if Key is set, its index/key to Key). It acts as its own loop
// condition: every time control reaches it (including the back-edge
// EndFor appends) it advances the iteration, or jumps to Exit once
// exhausted. Exit is patched by the resolver once EndFor is found.
type Foreach struct {
	Var, Key string
	Iterable runtime.Node
	Exit     int
}

func NewForeach(args []interface{}) (interface{}, error) {
	v, err := identifierName(args[0])
	if err != nil {
		return nil, err
	}
	iterable, ok := args[1].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Foreach iterable is not an expression: %T", args[1])
	}
	var key string
	if args[2] != nil {
		k, err := identifierName(args[2])
		if err != nil {
			return nil, err
		}
		key = k
	}
	return &Foreach{Var: v, Key: key, Iterable: iterable}, nil
}

func (f *Foreach) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	line := env.Line - 1
	v, _, err := f.Iterable.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	pos := env.Loops[line]

	advance := func(elem, key interface{}) error {
		if err := env.Scope.Set(f.Var, elem); err != nil {
			return err
		}
		if f.Key != "" {
			if err := env.Scope.Set(f.Key, key); err != nil {
				return err
			}
		}
		env.Loops[line] = pos + 1
		return nil
	}

	switch c := v.(type) {
	case []interface{}:
		if pos >= len(c) {
			delete(env.Loops, line)
			return nil, runtime.JumpOutcome(f.Exit), nil
		}
		if err := advance(c[pos], pos); err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
		return nil, runtime.ContinueOutcome(), nil
	case map[string]interface{}:
		keys := sortedKeys(c)
		if pos >= len(keys) {
			delete(env.Loops, line)
			return nil, runtime.JumpOutcome(f.Exit), nil
		}
		if err := advance(c[keys[pos]], keys[pos]); err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
		return nil, runtime.ContinueOutcome(), nil
	default:
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: Foreach requires a list or table, got %T", v)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// Foriter is the classical for-loop: Init runs exactly once, Cond is
// checked on every visit (including the back-edge EndFor appends), and
// Step is executed by EndFor after the body, before jumping back here.
type Foriter struct {
	Init runtime.Node
	Cond runtime.Node
	Step runtime.Node
	Exit int
}

func NewForiter(args []interface{}) (interface{}, error) {
	init, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Foriter init is not a statement: %T", args[0])
	}
	cond, ok := args[1].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Foriter condition is not an expression: %T", args[1])
	}
	step, ok := args[2].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Foriter step is not a statement: %T", args[2])
	}
	return &Foriter{Init: init, Cond: cond, Step: step}, nil
}

func (f *Foriter) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	line := env.Line - 1
	if _, started := env.Loops[line]; !started {
		if _, _, err := f.Init.Eval(env); err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
		env.Loops[line] = 1
	}
	v, _, err := f.Cond.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	if !truthy(v) {
		delete(env.Loops, line)
		return nil, runtime.JumpOutcome(f.Exit), nil
	}
	return nil, runtime.ContinueOutcome(), nil
}

// EndFor closes a Foreach/Foriter block: ConditionIndex is patched by
// the resolver to the loop header's instruction index. Step is nil for
// a Foreach (which has no per-iteration step expression) and the
// Foriter's Step node otherwise.
type EndFor struct {
	ConditionIndex int
	Step           runtime.Node
}

func NewEndFor(args []interface{}) (interface{}, error) { return &EndFor{}, nil }

func (e *EndFor) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	if e.Step != nil {
		if _, _, err := e.Step.Eval(env); err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
	}
	return nil, runtime.JumpOutcome(e.ConditionIndex), nil
}

// Statement wraps an operation with an optional guard condition. With no
// condition, the constructor collapses to the wrapped operation
// directly (via Replace); the wrapper only survives reduction when it
// actually gates execution on Cond.
type Statement struct {
	Op   runtime.Node
	Cond runtime.Node
}

func NewStatement(args []interface{}) (interface{}, error) {
	op, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Statement operation is not executable: %T", args[0])
	}
	if args[1] == nil {
		return nil, &firestarter.Replace{Nodes: []interface{}{op}}
	}
	cond, ok := args[1].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Statement condition is not an expression: %T", args[1])
	}
	return Statement{Op: op, Cond: cond}, nil
}

func (s Statement) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := s.Cond.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	if !truthy(v) {
		return nil, runtime.ContinueOutcome(), nil
	}
	return s.Op.Eval(env)
}
