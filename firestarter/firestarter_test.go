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

package firestarter_test

import (
	"testing"

	"github.com/hyomoto/firestarter/firestarter"
	"github.com/hyomoto/firestarter/peg"
	"github.com/hyomoto/firestarter/token"
)

func idRule(name string, r peg.Rule) peg.Rule {
	r.SetIdentity(name)
	return r
}

func isString(v interface{}) bool { _, ok := v.(string); return ok }

func TestBindArgsThroughCompile(t *testing.T) {
	// bindArgs has no exported entry point of its own; exercise it via
	// Compile, the only caller.
	num := idRule("Num", peg.NewLiteral("42"))
	double := idRule("Double", peg.NewSequence(num))

	litMatch := &peg.Match{Rule: num, Start: 0, End: 2}
	topMatch := &peg.Match{Rule: double, Start: 0, End: 2, Children: []*peg.Match{litMatch}}
	ast := &peg.AST{Matches: []*peg.Match{topMatch}, LineNumbers: []int{1}, SourceText: "42"}
	file := token.NewFile("t", []byte("42"))

	t.Run("required satisfied", func(t *testing.T) {
		reg := firestarter.NewRegistry()
		reg.Register("Double", firestarter.OpEntry{
			Schema: firestarter.Schema{firestarter.Req("num", nil)},
			New: func(args []interface{}) (interface{}, error) {
				leaf := args[0].(firestarter.Leaf)
				return nil, &firestarter.Replace{Nodes: []interface{}{"doubled:" + leaf.Text}}
			},
		})
		instrs, err := firestarter.Compile(reg, ast, file)
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if len(instrs) != 1 || instrs[0].Operation != "doubled:42" {
			t.Errorf("instrs = %+v, want one instruction \"doubled:42\"", instrs)
		}
	})

	t.Run("required missing reports schema error", func(t *testing.T) {
		reg := firestarter.NewRegistry()
		reg.Register("Double", firestarter.OpEntry{
			Schema: firestarter.Schema{firestarter.Req("num", nil), firestarter.Req("extra", nil)},
			New: func(args []interface{}) (interface{}, error) {
				return "unreachable", nil
			},
		})
		if _, err := firestarter.Compile(reg, ast, file); err == nil {
			t.Fatal("expected an error for a missing required argument")
		}
	})

	t.Run("optional substitutes registered default", func(t *testing.T) {
		reg := firestarter.NewRegistry()
		reg.Register("Double", firestarter.OpEntry{
			Schema: firestarter.Schema{firestarter.Req("num", nil), firestarter.Opt("step", nil)},
			New: func(args []interface{}) (interface{}, error) {
				if args[1] != "default-step" {
					t.Errorf("step = %v, want default substituted", args[1])
				}
				return nil, &firestarter.Replace{Nodes: []interface{}{"ok"}}
			},
		})
		if err := reg.RegisterDefaults("Double", nil, "default-step"); err != nil {
			t.Fatalf("RegisterDefaults: %v", err)
		}
		if _, err := firestarter.Compile(reg, ast, file); err != nil {
			t.Fatalf("Compile: %v", err)
		}
	})

	t.Run("rest collects every remaining argument", func(t *testing.T) {
		reg := firestarter.NewRegistry()
		reg.Register("Double", firestarter.OpEntry{
			Schema: firestarter.Schema{firestarter.RestOf("all", nil)},
			New: func(args []interface{}) (interface{}, error) {
				if len(args) != 1 {
					t.Errorf("len(args) = %d, want 1", len(args))
				}
				return nil, &firestarter.Replace{Nodes: []interface{}{"ok"}}
			},
		})
		if _, err := firestarter.Compile(reg, ast, file); err != nil {
			t.Fatalf("Compile: %v", err)
		}
	})

	t.Run("multi-node replace flattens into separate instructions", func(t *testing.T) {
		reg := firestarter.NewRegistry()
		reg.Register("Double", firestarter.OpEntry{
			Schema: firestarter.Schema{firestarter.Req("num", nil)},
			New: func(args []interface{}) (interface{}, error) {
				return nil, &firestarter.Replace{Nodes: []interface{}{"a", "b"}}
			},
		})
		instrs, err := firestarter.Compile(reg, ast, file)
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if len(instrs) != 2 || instrs[0].Operation != "a" || instrs[1].Operation != "b" {
			t.Errorf("instrs = %+v, want [a b]", instrs)
		}
	})

	t.Run("unregistered identity is an error", func(t *testing.T) {
		reg := firestarter.NewRegistry()
		if _, err := firestarter.Compile(reg, ast, file); err == nil {
			t.Fatal("expected an error for an unregistered operation")
		}
	})

	t.Run("type check rejects wrong-typed argument", func(t *testing.T) {
		reg := firestarter.NewRegistry()
		reg.Register("Double", firestarter.OpEntry{
			Schema: firestarter.Schema{firestarter.Req("num", isString)},
			New: func(args []interface{}) (interface{}, error) {
				return "unreachable", nil
			},
		})
		if _, err := firestarter.Compile(reg, ast, file); err == nil {
			t.Fatal("expected a type-check error: a Leaf is not a string")
		}
	})
}

func TestCompileReducesPrimitiveMatchToLeafWithoutRegistryLookup(t *testing.T) {
	num := idRule("Num", peg.NewLiteral("42"))
	m := &peg.Match{Rule: num, Start: 0, End: 2}
	ast := &peg.AST{Matches: []*peg.Match{m}, LineNumbers: []int{1}, SourceText: "42"}
	file := token.NewFile("t", []byte("42"))

	instrs, err := firestarter.Compile(firestarter.NewRegistry(), ast, file)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	leaf, ok := instrs[0].Operation.(firestarter.Leaf)
	if !ok {
		t.Fatalf("Operation = %T, want firestarter.Leaf", instrs[0].Operation)
	}
	if leaf.Identity != "Num" || leaf.Text != "42" {
		t.Errorf("leaf = %+v, want Identity=Num Text=42", leaf)
	}
}
