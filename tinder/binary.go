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

// precedence ranks each binary operator token; lower binds tighter.
// Multiplicative, additive, relational, equality, in that order.
var precedence = map[string]int{
	"*": 1, "/": 1,
	"+": 2, "-": 2,
	"<": 3, "<=": 3, ">": 3, ">=": 3,
	"==": 4, "!=": 4,
}

// NewBinary implements the "Binary(a op b op c ...)" construction step:
// it shunts the flat operand/operator sequence into a left-associative
// tree of concrete operator nodes via the standard precedence-climbing
// algorithm, then asks the reducer to substitute that tree for itself.
// This runs inside the firestarter reducer's construction step, so the
// operation tree firestarter.Compile ultimately returns is already in
// final, precedence-correct form — nothing downstream needs to know
// "Binary" ever existed.
func NewBinary(args []interface{}) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("tinder: Binary requires at least one operand")
	}
	if len(args)%2 == 0 {
		return nil, fmt.Errorf("tinder: Binary requires an odd argument count (operand (op operand)*)")
	}
	operand, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Binary operand is not an expression: %T", args[0])
	}

	var operands []runtime.Node
	var operators []string
	operands = append(operands, operand)
	for i := 1; i < len(args); i += 2 {
		leaf, err := asLeaf(args[i])
		if err != nil {
			return nil, fmt.Errorf("tinder: Binary operator slot is not a token: %w", err)
		}
		if _, ok := precedence[leaf.Text]; !ok {
			return nil, fmt.Errorf("tinder: unknown binary operator %q", leaf.Text)
		}
		node, ok := args[i+1].(runtime.Node)
		if !ok {
			return nil, fmt.Errorf("tinder: Binary operand is not an expression: %T", args[i+1])
		}
		operators = append(operators, leaf.Text)
		operands = append(operands, node)
	}

	tree, err := shuntingYard(operands, operators)
	if err != nil {
		return nil, err
	}
	return nil, &firestarter.Replace{Nodes: []interface{}{tree}}
}

// shuntingYard reduces operands/operators left-to-right, popping the
// operator stack whenever the incoming operator does not bind tighter
// than the one on top — the standard precedence-climbing shape, applied
// here at compile time instead of at parse time.
func shuntingYard(operands []runtime.Node, operators []string) (runtime.Node, error) {
	values := []runtime.Node{operands[0]}
	var ops []string

	apply := func() error {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		right := values[len(values)-1]
		left := values[len(values)-2]
		values = values[:len(values)-2]
		node, err := makeBinaryNode(op, left, right)
		if err != nil {
			return err
		}
		values = append(values, node)
		return nil
	}

	for i, op := range operators {
		for len(ops) > 0 && precedence[ops[len(ops)-1]] <= precedence[op] {
			if err := apply(); err != nil {
				return nil, err
			}
		}
		ops = append(ops, op)
		values = append(values, operands[i+1])
	}
	for len(ops) > 0 {
		if err := apply(); err != nil {
			return nil, err
		}
	}
	return values[0], nil
}

func makeBinaryNode(op string, left, right runtime.Node) (runtime.Node, error) {
	switch op {
	case "*":
		return Multiply{Left: left, Right: right}, nil
	case "/":
		return Divide{Left: left, Right: right}, nil
	case "+":
		return Add{Left: left, Right: right}, nil
	case "-":
		return Subtract{Left: left, Right: right}, nil
	case "<":
		return Lt{Left: left, Right: right}, nil
	case "<=":
		return Le{Left: left, Right: right}, nil
	case ">":
		return Gt{Left: left, Right: right}, nil
	case ">=":
		return Ge{Left: left, Right: right}, nil
	case "==":
		return Eq{Left: left, Right: right}, nil
	case "!=":
		return Ne{Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("tinder: unknown binary operator %q", op)
	}
}

func evalPair(env *runtime.Env, left, right runtime.Node) (interface{}, interface{}, error) {
	l, _, err := left.Eval(env)
	if err != nil {
		return nil, nil, err
	}
	r, _, err := right.Eval(env)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

type Multiply struct{ Left, Right runtime.Node }

func (n Multiply) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	l, r, err := evalPair(env, n.Left, n.Right)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: cannot multiply %T and %T", l, r)
	}
	return Demote(lf * rf), runtime.ContinueOutcome(), nil
}

// DivideByZeroError is raised by Divide when the right operand is zero.
// It is named, rather than a plain fmt.Errorf, so an `interrupt
// "DivideByZero" handler` statement (tinder.Interrupt, resolved into
// env.Interrupts) can dispatch on it by name at runtime.
type DivideByZeroError struct{}

func (e *DivideByZeroError) Error() string { return "division by zero" }

type Divide struct{ Left, Right runtime.Node }

func (n Divide) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	l, r, err := evalPair(env, n.Left, n.Right)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: cannot divide %T and %T", l, r)
	}
	if rf == 0 {
		return nil, runtime.ContinueOutcome(), &DivideByZeroError{}
	}
	return Demote(lf / rf), runtime.ContinueOutcome(), nil
}

type Add struct{ Left, Right runtime.Node }

func (n Add) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	l, r, err := evalPair(env, n.Left, n.Right)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			return ls + rs, runtime.ContinueOutcome(), nil
		}
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: cannot add %T and %T", l, r)
	}
	return Demote(lf + rf), runtime.ContinueOutcome(), nil
}

type Subtract struct{ Left, Right runtime.Node }

func (n Subtract) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	l, r, err := evalPair(env, n.Left, n.Right)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: cannot subtract %T and %T", l, r)
	}
	return Demote(lf - rf), runtime.ContinueOutcome(), nil
}

type Lt struct{ Left, Right runtime.Node }

func (n Lt) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	l, r, err := evalPair(env, n.Left, n.Right)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: cannot compare %T and %T", l, r)
	}
	return lf < rf, runtime.ContinueOutcome(), nil
}

type Le struct{ Left, Right runtime.Node }

func (n Le) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	l, r, err := evalPair(env, n.Left, n.Right)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: cannot compare %T and %T", l, r)
	}
	return lf <= rf, runtime.ContinueOutcome(), nil
}

type Gt struct{ Left, Right runtime.Node }

func (n Gt) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	l, r, err := evalPair(env, n.Left, n.Right)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: cannot compare %T and %T", l, r)
	}
	return lf > rf, runtime.ContinueOutcome(), nil
}

type Ge struct{ Left, Right runtime.Node }

func (n Ge) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	l, r, err := evalPair(env, n.Left, n.Right)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: cannot compare %T and %T", l, r)
	}
	return lf >= rf, runtime.ContinueOutcome(), nil
}

type Eq struct{ Left, Right runtime.Node }

func (n Eq) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	l, r, err := evalPair(env, n.Left, n.Right)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	return l == r, runtime.ContinueOutcome(), nil
}

type Ne struct{ Left, Right runtime.Node }

func (n Ne) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	l, r, err := evalPair(env, n.Left, n.Right)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	return l != r, runtime.ContinueOutcome(), nil
}
