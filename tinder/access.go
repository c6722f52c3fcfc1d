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

// In is membership: it returns the left operand when found among the
// right operands, otherwise null (nil), mirroring the original source's
// In(value, *ops) kindling.
type In struct {
	Value runtime.Node
	Ops   []runtime.Node
}

func NewIn(args []interface{}) (interface{}, error) {
	value, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: In value is not an expression: %T", args[0])
	}
	ops, err := asNodes(args[1:])
	if err != nil {
		return nil, err
	}
	return In{Value: value, Ops: ops}, nil
}

func (n In) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	target, _, err := n.Value.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	for _, op := range n.Ops {
		v, _, err := op.Eval(env)
		if err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
		if containsValue(v, target) {
			return target, runtime.ContinueOutcome(), nil
		}
	}
	return nil, runtime.ContinueOutcome(), nil
}

// containsValue reports whether candidate holds target: a list is
// searched by element, a table by key, and anything else compared
// directly, so `2 in xs` and `2 in 1, 2, 3` both work.
func containsValue(candidate, target interface{}) bool {
	switch c := candidate.(type) {
	case []interface{}:
		for _, e := range c {
			if valuesEqual(e, target) {
				return true
			}
		}
		return false
	case map[string]interface{}:
		key, ok := target.(string)
		if !ok {
			return false
		}
		_, ok = c[key]
		return ok
	default:
		return valuesEqual(candidate, target)
	}
}

// valuesEqual compares two scope values, treating an int and a float64
// holding the same number as equal, the way the ordering operators
// (<, <=, >, >=) compare numbers; Eq and Ne compare with plain ==.
func valuesEqual(a, b interface{}) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	return a == b
}

// From indexes into the right operand using the left: lists by number,
// maps by key, with a map's special "_" key consulted as an "otherwise"
// default when the requested key is absent. Unlike At, a missing key
// yields null rather than an error.
type From struct {
	Container runtime.Node
	Index     runtime.Node
}

func NewFrom(args []interface{}) (interface{}, error) {
	index, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: From index is not an expression: %T", args[0])
	}
	container, ok := args[1].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: From container is not an expression: %T", args[1])
	}
	return From{Container: container, Index: index}, nil
}

func (n From) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, outcome, err := indexInto(env, n.Container, n.Index, false)
	return v, outcome, err
}

// At is From's strict cousin: a wrong-typed or missing key is an error
// rather than a null.
type At struct {
	Container runtime.Node
	Index     runtime.Node
}

func NewAt(args []interface{}) (interface{}, error) {
	index, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: At index is not an expression: %T", args[0])
	}
	container, ok := args[1].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: At container is not an expression: %T", args[1])
	}
	return At{Container: container, Index: index}, nil
}

func (n At) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	return indexInto(env, n.Container, n.Index, true)
}

func indexInto(env *runtime.Env, containerNode, indexNode runtime.Node, strict bool) (interface{}, runtime.Outcome, error) {
	container, _, err := containerNode.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	idx, _, err := indexNode.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	switch c := container.(type) {
	case []interface{}:
		i, ok := toFloat(idx)
		if !ok {
			if strict {
				return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: list index must be a number, got %T", idx)
			}
			return nil, runtime.ContinueOutcome(), nil
		}
		pos := int(i)
		if pos < 0 || pos >= len(c) {
			if strict {
				return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: list index %d out of range", pos)
			}
			return nil, runtime.ContinueOutcome(), nil
		}
		return c[pos], runtime.ContinueOutcome(), nil
	case map[string]interface{}:
		key, ok := idx.(string)
		if !ok {
			if strict {
				return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: map key must be a string, got %T", idx)
			}
			return nil, runtime.ContinueOutcome(), nil
		}
		if v, ok := c[key]; ok {
			return v, runtime.ContinueOutcome(), nil
		}
		if v, ok := c["_"]; ok {
			return v, runtime.ContinueOutcome(), nil
		}
		if strict {
			return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: key %q not found", key)
		}
		return nil, runtime.ContinueOutcome(), nil
	default:
		if strict {
			return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: cannot index into %T", container)
		}
		return nil, runtime.ContinueOutcome(), nil
	}
}

func asNodes(args []interface{}) ([]runtime.Node, error) {
	nodes := make([]runtime.Node, 0, len(args))
	for _, a := range args {
		n, ok := a.(runtime.Node)
		if !ok {
			return nil, fmt.Errorf("tinder: expected an expression, got %T", a)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
