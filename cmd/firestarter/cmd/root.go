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

// Package cmd wires the firestarter CLI's cobra command tree: parse,
// compile, run, and grammars, all sharing the same grammar-selection
// flags so a user can point any of them at an alternate grammar-set
// document instead of the built-in Tinder surface syntax.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	grammarSetPath string
	grammarVersion string
)

var rootCmd = &cobra.Command{
	Use:           "firestarter",
	Short:         "Parse, compile, and run Tinder scripts",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the firestarter command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&grammarSetPath, "grammarset", "", "YAML file mapping semver labels to grammar text (default: built-in Tinder grammar)")
	rootCmd.PersistentFlags().StringVar(&grammarVersion, "grammar-version", "", "version label to select from --grammarset (default: latest)")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newCompileCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newGrammarsCmd())
}
