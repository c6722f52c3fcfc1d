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

// Package debug formats the three tree shapes a Firestarter/Tinder
// toolchain run produces — a peg.Match parse tree, a peg.AST's
// top-level match list, and a compiled firestarter.Instruction list —
// for CLI --dump flags and test failure output. Operation dumps lean on
// github.com/kr/pretty, the same library the CLI go.mod already carries
// for Go-syntax-like struct formatting; Match/AST dumps are a small
// custom indented walk, since a Match's useful shape (identity and
// span, not its full Rule subtree) isn't what %#v would show.
package debug

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"

	"github.com/hyomoto/firestarter/firestarter"
	"github.com/hyomoto/firestarter/peg"
)

// Match renders a parse match and its descendants as an indented tree
// of "identity [start:end]" lines.
func Match(m *peg.Match) string {
	var b strings.Builder
	dumpMatch(&b, m, 0)
	return b.String()
}

func dumpMatch(b *strings.Builder, m *peg.Match, depth int) {
	if m == nil {
		return
	}
	fmt.Fprintf(b, "%s%s [%d:%d]\n", strings.Repeat("  ", depth), identityOf(m), m.Start, m.End)
	for _, c := range m.Children {
		dumpMatch(b, c, depth+1)
	}
}

func identityOf(m *peg.Match) string {
	if id := m.Rule.Identity(); id != "" {
		return id
	}
	return fmt.Sprintf("%T", m.Rule)
}

// AST renders every top-level match an ast holds, grouped by the source
// line each one started on.
func AST(ast *peg.AST) string {
	var b strings.Builder
	for i, m := range ast.Matches {
		line := 0
		if i < len(ast.LineNumbers) {
			line = ast.LineNumbers[i]
		}
		fmt.Fprintf(&b, "-- line %d --\n", line)
		b.WriteString(Match(m))
	}
	return b.String()
}

// Operations pretty-prints a compiled instruction list, one line number
// prefix and kr/pretty struct dump per instruction, for a CLI's
// --dump-ops flag or a compile-stage test failure message.
func Operations(instrs []firestarter.Instruction) string {
	var b strings.Builder
	for _, instr := range instrs {
		fmt.Fprintf(&b, "%4d: %s\n", instr.Line, strings.TrimSpace(pretty.Sprint(instr.Operation)))
	}
	return b.String()
}
