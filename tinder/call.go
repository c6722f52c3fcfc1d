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

// Function calls a host- or library-provided callable by name: Ident
// names the callable, Args are evaluated left to right, and the call is
// made with the current Crucible as the first argument followed by the
// evaluated arguments, per the host library protocol.
type Function struct {
	Ident string
	Args  []runtime.Node
}

func NewFunction(args []interface{}) (interface{}, error) {
	ident, err := identifierName(args[0])
	if err != nil {
		return nil, err
	}
	callArgs, err := asNodes(args[1:])
	if err != nil {
		return nil, err
	}
	return Function{Ident: ident, Args: callArgs}, nil
}

func (f Function) Eval(env *runtime.Env) (interface{}, runtime.Outcome, error) {
	evaluated := make([]interface{}, 0, len(f.Args)+1)
	evaluated = append(evaluated, env.Scope)
	for _, a := range f.Args {
		v, _, err := a.Eval(env)
		if err != nil {
			return nil, runtime.ContinueOutcome(), err
		}
		evaluated = append(evaluated, v)
	}
	v, err := env.Scope.Call(f.Ident, evaluated...)
	if err != nil {
		return nil, runtime.ContinueOutcome(), fmt.Errorf("tinder: call to %q failed: %w", f.Ident, err)
	}
	return v, runtime.ContinueOutcome(), nil
}
