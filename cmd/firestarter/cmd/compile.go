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

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hyomoto/firestarter/firestarter"
	"github.com/hyomoto/firestarter/internal/debug"
	"github.com/hyomoto/firestarter/token"
)

func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <script>",
		Short: "parse and compile a script and print its instruction list",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}
}

func runCompile(cmd *cobra.Command, args []string) error {
	instrs, err := compileFile(args[0])
	if err != nil {
		return err
	}
	cmd.Print(debug.Operations(instrs))
	return nil
}

// compileFile parses and compiles the script at path against the
// selected grammar and the full Tinder operation registry, the shared
// first half of both the compile and run subcommands.
func compileFile(path string) ([]firestarter.Instruction, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	g, err := resolveGrammar()
	if err != nil {
		return nil, err
	}

	ast, err := g.Parse(path, string(source))
	if err != nil {
		return nil, err
	}

	reg := newTinderRegistry()
	file := token.NewFile(path, []byte(source))
	return firestarter.Compile(reg, ast, file)
}
