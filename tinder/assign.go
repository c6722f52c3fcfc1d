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

func identifierName(v interface{}) (string, error) {
	id, ok := v.(Identifier)
	if !ok {
		return "", fmt.Errorf("tinder: expected an identifier, got %T", v)
	}
	return id.Name, nil
}

// Set evaluates every value expression first, then writes each
// identifier in order — evaluating values before any write means
// `set a, b to b, a` performs a safe swap rather than clobbering b before
// it is read.
type Set struct {
	Idents []string
	Values []runtime.Node
}

func NewSet(args []interface{}) (interface{}, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("tinder: Set requires matching identifier/value counts")
	}
	n := len(args) / 2
	idents := make([]string, n)
	values := make([]runtime.Node, n)
	for i := 0; i < n; i++ {
		name, err := identifierName(args[i])
		if err != nil {
			return nil, err
		}
		idents[i] = name
		node, ok := args[n+i].(runtime.Node)
		if !ok {
			return nil, fmt.Errorf("tinder: Set value is not an expression: %T", args[n+i])
		}
		values[i] = node
	}
	return Set{Idents: idents, Values: values}, nil
}

func (s Set) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	evaluated := make([]interface{}, len(s.Values))
	for i, v := range s.Values {
		val, _, err := v.Eval(env)
		if err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
		evaluated[i] = val
	}
	for i, ident := range s.Idents {
		if err := env.Scope.Set(ident, evaluated[i]); err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
	}
	return nil, runtime.ContinueOutcome(), nil
}

// NewInc desugars `inc ident [by step]` into `Set(ident, ident + step)`.
func NewInc(args []interface{}) (interface{}, error) {
	return desugarStep(args, Add{}.stepCombine)
}

// NewDec desugars `dec ident [by step]` into `Set(ident, ident - step)`.
func NewDec(args []interface{}) (interface{}, error) {
	return desugarStep(args, Subtract{}.stepCombine)
}

func (Add) stepCombine(left, right runtime.Node) runtime.Node {
	return Add{Left: left, Right: right}
}

func (Subtract) stepCombine(left, right runtime.Node) runtime.Node {
	return Subtract{Left: left, Right: right}
}

func desugarStep(args []interface{}, combine func(left, right runtime.Node) runtime.Node) (interface{}, error) {
	ident, ok := args[0].(Identifier)
	if !ok {
		return nil, fmt.Errorf("tinder: expected an identifier, got %T", args[0])
	}
	var step runtime.Node = Number{Value: 1}
	if args[1] != nil {
		node, ok := args[1].(runtime.Node)
		if !ok {
			return nil, fmt.Errorf("tinder: step is not an expression: %T", args[1])
		}
		step = node
	}
	return nil, &firestarter.Replace{Nodes: []interface{}{Set{
		Idents: []string{ident.Name},
		Values: []runtime.Node{combine(ident, step)},
	}}}
}

// Swap exchanges two variables' values, computing both reads before
// either write so that aliased dotted paths into the same container
// still exchange correctly.
type Swap struct{ A, B string }

func NewSwap(args []interface{}) (interface{}, error) {
	a, err := identifierName(args[0])
	if err != nil {
		return nil, err
	}
	b, err := identifierName(args[1])
	if err != nil {
		return nil, err
	}
	return Swap{A: a, B: b}, nil
}

func (s Swap) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	av, err := env.Scope.Get(s.A)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	bv, err := env.Scope.Get(s.B)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	if err := env.Scope.Set(s.A, bv); err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	if err := env.Scope.Set(s.B, av); err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	return nil, runtime.ContinueOutcome(), nil
}

// Const is Set plus marking the identifier as constant on the Crucible
// it lands in, so a later plain Set targeting the same name fails.
type Const struct {
	Ident string
	Value runtime.Node
}

func NewConst(args []interface{}) (interface{}, error) {
	ident, err := identifierName(args[0])
	if err != nil {
		return nil, err
	}
	value, ok := args[1].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Const value is not an expression: %T", args[1])
	}
	return Const{Ident: ident, Value: value}, nil
}

func (c Const) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := c.Value.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	if err := env.Scope.Set(c.Ident, v); err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	env.Scope.Update(nil, []string{c.Ident})
	return nil, runtime.ContinueOutcome(), nil
}
