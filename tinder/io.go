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

// Write appends str(text)+"\n" to the named variable, grounded on the
// original source's Write kindling; the target variable is read as a
// string and re-set rather than mutated in place, since Crucible values
// are plain Go values, not mutable buffers.
type Write struct {
	Text   runtime.Node
	Target string
}

func NewWrite(args []interface{}) (interface{}, error) {
	text, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Write text is not an expression: %T", args[0])
	}
	target, err := identifierName(args[1])
	if err != nil {
		return nil, err
	}
	return Write{Text: text, Target: target}, nil
}

func (w Write) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := w.Text.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	existing := ""
	if cur, err := env.Scope.Get(w.Target); err == nil {
		if s, ok := cur.(string); ok {
			existing = s
		}
	}
	if err := env.Scope.Set(w.Target, existing+fmt.Sprint(v)+"\n"); err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	return nil, runtime.ContinueOutcome(), nil
}

// Input assigns the prompt text to the target variable, then yields so
// the host can gather real input and resume the script.
type Input struct {
	Prompt runtime.Node
	Target string
}

func NewInput(args []interface{}) (interface{}, error) {
	prompt, ok := args[0].(runtime.Node)
	if !ok {
		return nil, fmt.Errorf("tinder: Input prompt is not an expression: %T", args[0])
	}
	target, err := identifierName(args[1])
	if err != nil {
		return nil, err
	}
	return Input{Prompt: prompt, Target: target}, nil
}

func (in Input) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	v, _, err := in.Prompt.Eval(env)
	if err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	if err := env.Scope.Set(in.Target, v); err != nil {
		return nil, runtime.ContinueOutcome(), err
	}
	return nil, runtime.YieldOutcome(nil), nil
}
