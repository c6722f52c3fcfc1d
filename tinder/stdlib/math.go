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

// Package stdlib bundles the small host libraries a Tinder script can
// Import or FromImport out of the box: math and strings, scaled down to
// what a script would plausibly call. Every export here is Pure, since
// none of them depend on anything but their arguments.
package stdlib

import (
	"fmt"
	"math"

	"github.com/hyomoto/firestarter/tinder"
	"github.com/hyomoto/firestarter/tinder/library"
)

// Math exports the subset of Go's math package a Tinder script can call
// with the numbers tinder.Demote already hands it (int or float64).
type Math struct{}

func (Math) Name() string { return "math" }

// arg1 unpacks a call made through tinder.Function, whose first argument
// is always the calling Crucible ahead of the script's own operand.
func arg1(args []interface{}) (float64, error) {
	if len(args) != 2 {
		return 0, fmt.Errorf("math: expected 1 argument, got %d", len(args)-1)
	}
	switch n := args[1].(type) {
	case int:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("math: expected a number, got %T", args[1])
	}
}

func (m Math) Export(request []string) map[string]library.Export {
	all := map[string]library.Export{
		"floor": {Pure: true, Fn: library.Func(func(args []interface{}) (interface{}, error) {
			x, err := arg1(args)
			if err != nil {
				return nil, err
			}
			return tinder.Demote(math.Floor(x)), nil
		})},
		"ceil": {Pure: true, Fn: library.Func(func(args []interface{}) (interface{}, error) {
			x, err := arg1(args)
			if err != nil {
				return nil, err
			}
			return tinder.Demote(math.Ceil(x)), nil
		})},
		"round": {Pure: true, Fn: library.Func(func(args []interface{}) (interface{}, error) {
			x, err := arg1(args)
			if err != nil {
				return nil, err
			}
			return tinder.Demote(math.Round(x)), nil
		})},
		"sqrt": {Pure: true, Fn: library.Func(func(args []interface{}) (interface{}, error) {
			x, err := arg1(args)
			if err != nil {
				return nil, err
			}
			if x < 0 {
				return nil, fmt.Errorf("math: sqrt of negative number %v", x)
			}
			return tinder.Demote(math.Sqrt(x)), nil
		})},
		"abs": {Pure: true, Fn: library.Func(func(args []interface{}) (interface{}, error) {
			x, err := arg1(args)
			if err != nil {
				return nil, err
			}
			return tinder.Demote(math.Abs(x)), nil
		})},
	}
	return filter(all, request)
}

func filter(all map[string]library.Export, request []string) map[string]library.Export {
	if request == nil {
		return all
	}
	out := make(map[string]library.Export, len(request))
	for _, name := range request {
		if exp, ok := all[name]; ok {
			out[name] = exp
		}
	}
	return out
}
