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
	"github.com/hyomoto/firestarter/peg"
)

func newGrammarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grammars <grammarset.yaml>",
		Short: "list the versions a grammar-set document registers, with their content digests",
		Args:  cobra.ExactArgs(1),
		RunE:  runGrammars,
	}
}

func runGrammars(cmd *cobra.Command, args []string) error {
	doc, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	set, err := firestarter.LoadGrammarSet(doc, peg.Flags{Skip: peg.SkipSpaces, Flatten: true})
	if err != nil {
		return err
	}
	for _, version := range set.Versions() {
		d, _ := set.Digest(version)
		cmd.Printf("%s\t%s\n", version, d)
	}
	return nil
}
