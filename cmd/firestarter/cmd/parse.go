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

	"github.com/hyomoto/firestarter/internal/debug"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <script>",
		Short: "parse a script and print its match tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	g, err := resolveGrammar()
	if err != nil {
		return err
	}

	ast, err := g.Parse(path, string(source))
	if err != nil {
		return err
	}

	cmd.Print(debug.AST(ast))
	return nil
}
