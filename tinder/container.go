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

// Position selects which end of a list Put mutates.
type Position int

const (
	Before Position = iota
	After
)

// Put prepends or appends value to the list named by Ident, in place.
type Put struct {
	Value    runtime.Node
	Position Position
	Ident    string
}

func NewPut(args []interface{}) (interface{}, error) {
	value, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Put value is not an expression: %T", args[0])
	}
	leaf, err := asLeaf(args[1])
	if err != nil {
		return nil, fmt.Errorf("tinder: Put position slot is not a token: %w", err)
	}
	var pos Position
	switch leaf.Text {
	case "Before", "before":
		pos = Before
	case "After", "after":
		pos = After
	default:
		return nil, fmt.Errorf("tinder: Put position must be Before or After, got %q", leaf.Text)
	}
	ident, err := identifierName(args[2])
	if err != nil {
		return nil, err
	}
	return Put{Value: value, Position: pos, Ident: ident}, nil
}

func (p Put) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := p.Value.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	current, err := env.Scope.Get(p.Ident)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	list, ok := current.([]interface{})
	if !ok {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: %q is not a list", p.Ident)
	}
	var next []interface{}
	if p.Position == Before {
		next = append([]interface{}{v}, list...)
	} else {
		next = append(append([]interface{}{}, list...), v)
	}
	if err := env.Scope.Set(p.Ident, next); err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	return nil, runtime.ContinueOutcome(), nil
}
