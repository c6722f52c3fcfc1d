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

package stdlib

import (
	"fmt"
	"strings"

	"github.com/hyomoto/firestarter/tinder/library"
)

// Strings exports the subset of Go's strings package a Tinder script can
// call with its own string/number value model.
type Strings struct{}

func (Strings) Name() string { return "strings" }

// stringArgs unpacks a call made through tinder.Function, whose first
// argument is always the calling Crucible ahead of the n string operands
// the script actually passed.
func stringArgs(args []interface{}, n int) ([]string, error) {
	if len(args) != n+1 {
		return nil, fmt.Errorf("strings: expected %d arguments, got %d", n, len(args)-1)
	}
	out := make([]string, n)
	for i, a := range args[1:] {
		s, ok := a.(string)
		if !ok {
			return nil, fmt.Errorf("strings: expected a string argument, got %T", a)
		}
		out[i] = s
	}
	return out, nil
}

func (s Strings) Export(request []string) map[string]library.Export {
	all := map[string]library.Export{
		"toUpper": {Pure: true, Fn: library.Func(func(args []interface{}) (interface{}, error) {
			a, err := stringArgs(args, 1)
			if err != nil {
				return nil, err
			}
			return strings.ToUpper(a[0]), nil
		})},
		"toLower": {Pure: true, Fn: library.Func(func(args []interface{}) (interface{}, error) {
			a, err := stringArgs(args, 1)
			if err != nil {
				return nil, err
			}
			return strings.ToLower(a[0]), nil
		})},
		"trimSpace": {Pure: true, Fn: library.Func(func(args []interface{}) (interface{}, error) {
			a, err := stringArgs(args, 1)
			if err != nil {
				return nil, err
			}
			return strings.TrimSpace(a[0]), nil
		})},
		"contains": {Pure: true, Fn: library.Func(func(args []interface{}) (interface{}, error) {
			a, err := stringArgs(args, 2)
			if err != nil {
				return nil, err
			}
			return strings.Contains(a[0], a[1]), nil
		})},
		"join": {Pure: true, Fn: library.Func(func(args []interface{}) (interface{}, error) {
			if len(args) < 2 {
				return nil, fmt.Errorf("strings: join requires a separator and at least one value")
			}
			sep, ok := args[1].(string)
			if !ok {
				return nil, fmt.Errorf("strings: join separator must be a string, got %T", args[1])
			}
			parts := make([]string, 0, len(args)-2)
			for _, a := range args[2:] {
				switch v := a.(type) {
				case string:
					parts = append(parts, v)
				case []interface{}:
					for _, e := range v {
						es, ok := e.(string)
						if !ok {
							return nil, fmt.Errorf("strings: join list element must be a string, got %T", e)
						}
						parts = append(parts, es)
					}
				default:
					return nil, fmt.Errorf("strings: join argument must be a string or list, got %T", a)
				}
			}
			return strings.Join(parts, sep), nil
		})},
	}
	return filter(all, request)
}
