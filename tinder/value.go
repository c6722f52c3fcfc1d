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

// Package tinder is the catalog of operations a compiled script is built
// from: values, arithmetic and comparison, logic, assignment, container
// mutation, I/O, control flow and its structured sugar, and function
// calls. Every operation implements runtime.Node; Eval either produces a
// value (an expression) or acts on the environment (a statement), and
// returns a non-Continue runtime.Outcome only when control flow changes
// (jump, yield, halt, import).
package tinder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyomoto/firestarter/firestarter"
	"github.com/hyomoto/firestarter/tinder/runtime"
)

// Value is implemented by every tinder node that carries a fixed
// intrinsic type, the equivalent of the Python original's Primitive
// marker.
type Value interface {
	IntrinsicType() string
}

// asLeaf extracts the firestarter.Leaf a value-constructing op expects
// as its sole argument.
func asLeaf(v interface{}) (firestarter.Leaf, error) {
	leaf, ok := v.(firestarter.Leaf)
	if !ok {
		return firestarter.Leaf{}, fmt.Errorf("tinder: expected a leaf token, got %T", v)
	}
	return leaf, nil
}

// IsLeaf is a firestarter.Check accepting only raw leaf tokens.
func IsLeaf(v interface{}) bool {
	_, ok := v.(firestarter.Leaf)
	return ok
}

// IsNode is a firestarter.Check accepting anything already reduced to a
// runtime.Node (i.e. anything but a bare leaf token).
func IsNode(v interface{}) bool {
	_, ok := v.(runtime.Node)
	return ok
}

// String is a literal string value; NewString strips the quotes and
// resolves escape sequences (via unquote) before storing Text.
type String struct{ Text string }

func NewString(args []interface{}) (interface{}, error) {
	leaf, err := asLeaf(args[0])
	if err != nil {
		return nil, err
	}
	return String{Text: unquote(leaf.Text)}, nil
}

func (s String) IntrinsicType() string { return "string" }
func (s String) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return s.Text, runtime.ContinueOutcome(), nil
}

// unquote strips the surrounding quote characters and resolves the
// small backslash-escape set Tinder string literals support.
func unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	inner := text[1 : len(text)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(inner[i])
			}
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

// Number stores a float, demoted to int when the value is whole.
type Number struct{ Value float64 }

func NewNumber(args []interface{}) (interface{}, error) {
	leaf, err := asLeaf(args[0])
	if err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(leaf.Text, 64)
	if err != nil {
		return nil, fmt.Errorf("tinder: invalid number literal %q", leaf.Text)
	}
	return Number{Value: f}, nil
}

func (n Number) IntrinsicType() string { return "number" }
func (n Number) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return Demote(n.Value), runtime.ContinueOutcome(), nil
}

// Demote converts a float64 holding a whole number to an int, the
// representation every arithmetic op and host-facing Get/Set call sees.
func Demote(f float64) interface{} {
	if f == float64(int64(f)) {
		return int(f)
	}
	return f
}

// Constant wraps the true/false/null literals into their Go values.
type Constant struct{ Value interface{} }

func NewConstant(args []interface{}) (interface{}, error) {
	leaf, err := asLeaf(args[0])
	if err != nil {
		return nil, err
	}
	switch leaf.Text {
	case "true", "True":
		return Constant{Value: true}, nil
	case "false", "False":
		return Constant{Value: false}, nil
	case "null", "Null", "nil":
		return Constant{Value: nil}, nil
	default:
		return nil, fmt.Errorf("tinder: unrecognized constant %q", leaf.Text)
	}
}

func (c Constant) IntrinsicType() string { return "constant" }
func (c Constant) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return c.Value, runtime.ContinueOutcome(), nil
}

// Identifier is a variable reference: evaluating it reads Name from the
// scope chain.
type Identifier struct{ Name string }

func NewIdentifier(args []interface{}) (interface{}, error) {
	leaf, err := asLeaf(args[0])
	if err != nil {
		return nil, err
	}
	return Identifier{Name: leaf.Text}, nil
}

func (id Identifier) IntrinsicType() string { return "identifier" }
func (id Identifier) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, err := env.Scope.Get(id.Name)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	return v, runtime.ContinueOutcome(), nil
}

// Array is an ordered list of element expressions.
type Array struct{ Elements []runtime.Node }

func NewArray(args []interface{}) (interface{}, error) {
	elems := make([]runtime.Node, 0, len(args))
	for _, a := range args {
		node, ok := a.(runtime.Node)
		if !ok {
			return nil, fmt.Errorf("tinder: array element is not an expression: %T", a)
		}
		elems = append(elems, node)
	}
	return Array{Elements: elems}, nil
}

func (a Array) IntrinsicType() string { return "array" }
func (a Array) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	out := make([]interface{}, 0, len(a.Elements))
	for _, e := range a.Elements {
		v, _, err := e.Eval(env)
		if err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
		out = append(out, v)
	}
	return out, runtime.ContinueOutcome(), nil
}

// KeyValuePair is one entry of a Table literal.
type KeyValuePair struct {
	Key   string
	Value runtime.Node
}

func NewKeyValuePair(args []interface{}) (interface{}, error) {
	var key string
	switch k := args[0].(type) {
	case firestarter.Leaf:
		key = unquote(k.Text)
	case String:
		key = k.Text
	case Identifier:
		key = k.Name
	default:
		return nil, fmt.Errorf("tinder: table key must be a string or identifier, got %T", args[0])
	}
	value, ok := args[1].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: table value is not an expression: %T", args[1])
	}
	return KeyValuePair{Key: key, Value: value}, nil
}

func (p KeyValuePair) IntrinsicType() string { return "keyvalue" }
func (p KeyValuePair) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := p.Value.Eval(env)
	return v, runtime.ContinueOutcome(), err
}

// Table is an ordered key -> operation map, evaluated to a plain
// map[string]interface{}.
type Table struct{ Pairs []KeyValuePair }

func NewTable(args []interface{}) (interface{}, error) {
	pairs := make([]KeyValuePair, 0, len(args))
	for _, a := range args {
		kv, ok := a.(KeyValuePair)
		if !ok {
			return nil, fmt.Errorf("tinder: table entry is not a key/value pair: %T", a)
		}
		pairs = append(pairs, kv)
	}
	return Table{Pairs: pairs}, nil
}

func (t Table) IntrinsicType() string { return "table" }
func (t Table) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	out := map[string]interface{}{}
	for _, p := range t.Pairs {
		v, _, err := p.Value.Eval(env)
		if err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
		out[p.Key] = v
	}
	return out, runtime.ContinueOutcome(), nil
}
