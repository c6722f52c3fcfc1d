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
	"fmt"
	"os"

	"github.com/hyomoto/firestarter/firestarter"
	"github.com/hyomoto/firestarter/peg"
	"github.com/hyomoto/firestarter/tinder"
	"github.com/hyomoto/firestarter/tinder/grammar"
	"github.com/hyomoto/firestarter/tinder/library"
	"github.com/hyomoto/firestarter/tinder/stdlib"
)

// builtinLibraries lists the host extensions every firestarter CLI
// invocation makes available to a script's Import/FromImport, keyed by
// the name a script names them by.
var builtinLibraries = map[string]library.Library{
	"math":    stdlib.Math{},
	"strings": stdlib.Strings{},
}

// resolveGrammar returns the grammar a command should parse with: the
// built-in Tinder surface grammar, unless --grammarset names a YAML
// document, in which case --grammar-version (or the set's latest label)
// selects one of its entries.
func resolveGrammar() (*peg.Grammar, error) {
	if grammarSetPath == "" {
		return grammar.Grammar, nil
	}
	doc, err := os.ReadFile(grammarSetPath)
	if err != nil {
		return nil, fmt.Errorf("reading grammar set: %w", err)
	}
	set, err := firestarter.LoadGrammarSet(doc, peg.Flags{Skip: peg.SkipSpaces, Flatten: true})
	if err != nil {
		return nil, err
	}
	if grammarVersion != "" {
		g, ok := set.Get(grammarVersion)
		if !ok {
			return nil, fmt.Errorf("grammar set %q has no version %q", grammarSetPath, grammarVersion)
		}
		return g, nil
	}
	version, g, ok := set.Latest()
	if !ok {
		return nil, fmt.Errorf("grammar set %q is empty", grammarSetPath)
	}
	fmt.Fprintf(os.Stderr, "firestarter: using grammar version %s\n", version)
	return g, nil
}

// newTinderRegistry returns a firestarter.Registry wired with the Tinder
// operation catalog, the one registry every subcommand compiles against
// regardless of which grammar text produced the AST.
func newTinderRegistry() *firestarter.Registry {
	reg := firestarter.NewRegistry()
	tinder.Register(reg)
	return reg
}
