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

package firestarter

import (
	"github.com/hyomoto/firestarter/peg"
	"github.com/hyomoto/firestarter/token"
)

// Instruction pairs a reduced operation with the source line it came
// from, for runtime diagnostics.
type Instruction struct {
	Line      int
	Operation interface{}
}

// Compile reduces every top-level match in ast into an Instruction list,
// post-order: a match's children are fully reduced into operations (or
// Leaf values, for primitive rule matches) before the match's own rule
// identity is looked up in reg and its constructor invoked.
func Compile(reg *Registry, ast *peg.AST, file *token.File) ([]Instruction, error) {
	var out []Instruction
	for i, m := range ast.Matches {
		line := ast.LineNumbers[i]
		v, err := reduce(reg, m, ast.SourceText, line, file)
		if err != nil {
			return nil, err
		}
		for _, op := range flattenReplace(v) {
			out = append(out, Instruction{Line: line, Operation: op})
		}
	}
	return out, nil
}

// flattenReplace expands a reduce() result that came from a multi-node
// Replace into its component operations; anything else is a single
// operation.
func flattenReplace(v interface{}) []interface{} {
	if multi, ok := v.([]interface{}); ok {
		return multi
	}
	return []interface{}{v}
}

// reduce performs the post-order AST-to-operation walk: children first,
// then this node's own opcode lookup and construction, honoring any
// Replace signal the constructor raises.
func reduce(reg *Registry, m *peg.Match, source string, line int, file *token.File) (interface{}, error) {
	switch m.Rule.(type) {
	case *peg.Literal, *peg.Pattern:
		return Leaf{Identity: m.Rule.Identity(), Text: m.Slice(source), Line: line}, nil
	}

	var args []interface{}
	for _, c := range m.Children {
		v, err := reduce(reg, c, source, line, file)
		if err != nil {
			return nil, err
		}
		args = append(args, flattenReplace(v)...)
	}

	identity := m.Rule.Identity()
	entry, ok := reg.Lookup(identity)
	if !ok {
		return nil, &Error{Pos: file.Pos(m.Start), Msg: "operation \"" + identity + "\" not registered"}
	}

	bound, err := bindArgs(entry.Schema, args, entry.Defaults)
	if err != nil {
		return nil, &Error{Pos: file.Pos(m.Start), Msg: err.Error()}
	}

	result, err := entry.New(bound)
	if err != nil {
		if rep, isReplace := err.(*Replace); isReplace {
			if len(rep.Nodes) == 1 {
				return rep.Nodes[0], nil
			}
			return rep.Nodes, nil
		}
		return nil, &Error{Pos: file.Pos(m.Start), Msg: err.Error()}
	}
	return result, nil
}
