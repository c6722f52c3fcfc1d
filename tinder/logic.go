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

func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []interface{}:
		return len(x) > 0
	case map[string]interface{}:
		return len(x) > 0
	default:
		return true
	}
}

// And short-circuits: it stops at the first falsy operand and returns
// false, otherwise true.
type And struct{ Ops []runtime.Node }

func NewAnd(args []interface{}) (interface{}, error) {
	ops, err := asNodes(args)
	if err != nil {
		return nil, err
	}
	return And{Ops: ops}, nil
}

func (n And) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	for _, op := range n.Ops {
		v, _, err := op.Eval(env)
		if err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
		if !truthy(v) {
			return false, runtime.ContinueOutcome(), nil
		}
	}
	return true, runtime.ContinueOutcome(), nil
}

// Or short-circuits and returns the first truthy operand itself (not a
// boolean), or null if every operand was falsy.
type Or struct{ Ops []runtime.Node }

func NewOr(args []interface{}) (interface{}, error) {
	ops, err := asNodes(args)
	if err != nil {
		return nil, err
	}
	return Or{Ops: ops}, nil
}

func (n Or) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	for _, op := range n.Ops {
		v, _, err := op.Eval(env)
		if err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
		if truthy(v) {
			return v, runtime.ContinueOutcome(), nil
		}
	}
	return nil, runtime.ContinueOutcome(), nil
}

// Not negates the truthiness of its operand.
type Not struct{ Op runtime.Node }

func NewNot(args []interface{}) (interface{}, error) {
	op, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Not operand is not an expression: %T", args[0])
	}
	return Not{Op: op}, nil
}

func (n Not) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := n.Op.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	return !truthy(v), runtime.ContinueOutcome(), nil
}

// NewUnary replaces itself with a negation of its operand: "-" on a
// numeric literal collapses to a sign-flipped Number at construction time
// (so a literal "-3" resolver-folds exactly like any other constant), "-"
// on any other operand to an arithmetic Negate, and "not" to a boolean
// Not.
func NewUnary(args []interface{}) (interface{}, error) {
	leaf, err := asLeaf(args[0])
	if err != nil {
		return nil, fmt.Errorf("tinder: Unary operator slot is not a token: %w", err)
	}
	operand := args[1]
	if leaf.Text == "-" {
		if num, ok := operand.(Number); ok {
			return nil, &firestarter.Replace{Nodes: []interface{}{Number{Value: -num.Value}}}
		}
		node, ok := operand.(runtime.Node)
		if !ok {
			return nil, fmt.Errorf("tinder: Unary operand is not an expression: %T", operand)
		}
		return nil, &firestarter.Replace{Nodes: []interface{}{Negate{Op: node}}}
	}
	node, ok := operand.(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Unary operand is not an expression: %T", operand)
	}
	return nil, &firestarter.Replace{Nodes: []interface{}{Not{Op: node}}}
}

// Negate arithmetically negates a non-literal expression at run time.
type Negate struct{ Op runtime.Node }

func (n Negate) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := n.Op.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: cannot negate %T", v)
	}
	return Demote(-f), runtime.ContinueOutcome(), nil
}
