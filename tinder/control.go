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

	"github.com/hyomoto/firestarter/tinder/runtime"
)

const jumpedKey = "__JUMPED__"
const lineKey = "__LINE__"

// Jump records the current instruction line into __JUMPED__ (for a
// later Return) and asks the runtime loop to resume at target's
// instruction index. A label identifier target resolves through the
// scope chain, where WriteJumpTable installed every label's index
// before the first Run call.
type Jump struct{ Target runtime.Node }

func NewJump(args []interface{}) (interface{}, error) {
	target, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Jump target is not an expression: %T", args[0])
	}
	return Jump{Target: target}, nil
}

func (j Jump) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := j.Target.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	line, ok := toFloat(v)
	if !ok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: Jump target did not resolve to a line number: %T", v)
	}
	env.Jumped = env.Line
	return nil, runtime.JumpOutcome(int(line)), nil
}

// JumpAhead advances __LINE__ by n instructions without touching
// __JUMPED__, for relative skips that Return should not unwind.
type JumpAhead struct{ N runtime.Node }

func NewJumpAhead(args []interface{}) (interface{}, error) {
	n, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: JumpAhead operand is not an expression: %T", args[0])
	}
	return JumpAhead{N: n}, nil
}

func (j JumpAhead) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := j.N.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	n, ok := toFloat(v)
	if !ok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: JumpAhead operand did not resolve to a number: %T", v)
	}
	return nil, runtime.JumpOutcome(env.Line + int(n)), nil
}

// Return resumes execution at the line recorded by the most recent Jump.
type Return struct{}

func NewReturn(args []interface{}) (interface{}, error) { return Return{}, nil }

func (r Return) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return nil, runtime.JumpOutcome(env.Jumped), nil
}

// Goto declares a label: a no-op at run time unless Otherwise is set,
// in which case reaching this instruction unconditionally jumps there
// (the "declare but also redirect" form used for default-case labels).
type Goto struct {
	Label     string
	Otherwise runtime.Node
}

func NewGoto(args []interface{}) (interface{}, error) {
	label, err := identifierName(args[0])
	if err != nil {
		return nil, err
	}
	var otherwise runtime.Node
	if args[1] != nil {
		node, ok := args[1].(runtime.Node)
		if !ok {
			return nil, fmt.Errorf("tinder: Goto otherwise is not an expression: %T", args[1])
		}
		otherwise = node
	}
	return Goto{Label: label, Otherwise: otherwise}, nil
}

func (g Goto) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	if g.Otherwise == nil {
		return nil, runtime.ContinueOutcome(), nil
	}
	v, _, err := g.Otherwise.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	line, ok := toFloat(v)
	if !ok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: Goto otherwise did not resolve to a line number: %T", v)
	}
	return nil, runtime.JumpOutcome(int(line)), nil
}

// Stop halts the script's execution stack.
type Stop struct{}

func NewStop(args []interface{}) (interface{}, error) { return Stop{}, nil }

func (s Stop) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return nil, runtime.HaltOutcome(), nil
}

// Yield suspends the script, optionally handing payload (a Table
// expression or nothing) to the host.
type Yield struct{ Payload runtime.Node }

func NewYield(args []interface{}) (interface{}, error) {
	var payload runtime.Node
	if args[0] != nil {
		node, ok := args[0].(runtime.Node)
		if !ok {
			return nil, fmt.Errorf("tinder: Yield payload is not an expression: %T", args[0])
		}
		payload = node
	}
	return Yield{Payload: payload}, nil
}

func (y Yield) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	if y.Payload == nil {
		return nil, runtime.YieldOutcome(nil), nil
	}
	v, _, err := y.Payload.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: Yield payload must be a table, got %T", v)
	}
	return nil, runtime.YieldOutcome(m), nil
}

// Interrupt registers a runtime handler: if an exception whose class
// name equals ExceptionName is raised by a later instruction, the loop
// jumps to Label's instruction instead of propagating to the host.
type Interrupt struct {
	ExceptionName string
	Label         string
}

func NewInterrupt(args []interface{}) (interface{}, error) {
	name, err := asLeaf(args[0])
	if err != nil {
		return nil, fmt.Errorf("tinder: Interrupt exception name is not a token: %w", err)
	}
	label, err := identifierName(args[1])
	if err != nil {
		return nil, err
	}
	return Interrupt{ExceptionName: unquote(name.Text), Label: label}, nil
}

func (i Interrupt) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	if line, ok := env.Labels[i.Label]; ok {
		env.Interrupts[i.ExceptionName] = line
	}
	return nil, runtime.ContinueOutcome(), nil
}

// Import asks the host to bind an entire library's exports into scope,
// optionally under an alias.
type Import struct {
	Library string
	Alias   string
}

func NewImport(args []interface{}) (interface{}, error) {
	library, err := identifierName(args[0])
	if err != nil {
		return nil, err
	}
	alias := library
	if args[1] != nil {
		a, err := identifierName(args[1])
		if err != nil {
			return nil, err
		}
		alias = a
	}
	return Import{Library: library, Alias: alias}, nil
}

func (i Import) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return nil, runtime.ImportOutcome(&runtime.ImportRequest{Library: i.Library, Alias: i.Alias}), nil
}

// FromImport asks the host to bind a selective set of symbols out of a
// library, rather than the whole thing. Despite sharing a keyword with
// the indexing access operator From, it is a distinct rule identity
// (FromImport) in the compiled grammar and never confused with it.
type FromImport struct {
	Library string
	Symbols []string
}

func NewFromImport(args []interface{}) (interface{}, error) {
	library, err := identifierName(args[0])
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		name, err := identifierName(a)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, name)
	}
	return FromImport{Library: library, Symbols: symbols}, nil
}

func (f FromImport) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return nil, runtime.ImportOutcome(&runtime.ImportRequest{Library: f.Library, Symbols: f.Symbols}), nil
}
