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
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/hyomoto/firestarter/crucible"
	"github.com/hyomoto/firestarter/internal/debug"
	"github.com/hyomoto/firestarter/tinder"
	"github.com/hyomoto/firestarter/tinder/library"
	"github.com/hyomoto/firestarter/tinder/resolver"
	"github.com/hyomoto/firestarter/tinder/runtime"
)

var (
	runDumpOps     bool
	runPermissions []string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "compile, resolve, and execute a script",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	cmd.Flags().BoolVar(&runDumpOps, "dump-ops", false, "print the compiled instruction list before running")
	cmd.Flags().StringSliceVar(&runPermissions, "permit", nil, "permission tags granted to the script for gated library imports")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	instrs, err := compileFile(args[0])
	if err != nil {
		return err
	}
	if runDumpOps {
		cmd.Print(debug.Operations(instrs))
	}

	constants := crucible.New(0, nil)
	for name, lib := range builtinLibraries {
		if err := library.BindLibrary(constants, lib, name); err != nil {
			return err
		}
	}
	pure := library.PureNames(builtinLibraries["math"], builtinLibraries["strings"])

	script, err := resolver.Resolve(instrs, constants, pure)
	if err != nil {
		return err
	}

	// The running scope starts empty: unlike constants (seeded above so
	// the resolver can fold pure calls at compile time), a script must
	// reach its libraries through its own Import/FromImport statements,
	// serviced below as Imported outcomes arrive.
	scope := crucible.New(0, nil)
	env := runtime.NewEnv(scope)
	runtime.WriteJumpTable(env, script)

	stdin := bufio.NewReader(os.Stdin)
	for {
		outcome, err := runtime.Run(script, env)
		if err != nil {
			return err
		}
		flushOutput(cmd, scope)

		switch outcome.Kind {
		case runtime.Halted:
			return nil
		case runtime.Yielded:
			if err := handleYield(cmd, script, env, stdin); err != nil {
				return err
			}
		case runtime.Imported:
			if err := handleImport(scope, outcome.Request); err != nil {
				return err
			}
		}
	}
}

// flushOutput prints and clears the conventional "__OUTPUT__" variable a
// script writes to via `write ... to __OUTPUT__`, so a script need not
// know it is talking to a terminal rather than some other host.
func flushOutput(cmd *cobra.Command, scope *crucible.Crucible) {
	v, err := scope.Get("__OUTPUT__")
	if err != nil {
		return
	}
	if s, ok := v.(string); ok && s != "" {
		cmd.Print(s)
		_ = scope.Set("__OUTPUT__", "")
	}
}

// handleYield services one suspension: an Input instruction needs a real
// line read from stdin in place of the prompt text it wrote to its
// target variable; any other Yield (a bare `yield` or one carrying a
// table payload) is ignored and the script resumes on its own, since this
// subcommand has no external driver to hand control back to.
func handleYield(cmd *cobra.Command, script *runtime.Script, env *runtime.Env, stdin *bufio.Reader) error {
	idx := env.Line - 1
	if idx < 0 || idx >= len(script.Instructions) {
		return nil
	}
	inp, ok := script.Instructions[idx].Node.(tinder.Input)
	if !ok {
		return nil
	}

	prompt, _ := env.Scope.Get(inp.Target)
	cmd.Print(fmt.Sprint(prompt))

	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return err
	}
	line = strings.TrimRight(line, "\r\n")

	// A line starting with ":" is a meta-command rather than a value for
	// the script: split it with the same shell-word rules a user's shell
	// would apply, so `:set greeting "hi there"` passes one three-word
	// command instead of four space-split fields.
	if strings.HasPrefix(line, ":") {
		words, err := shlex.Split(strings.TrimPrefix(line, ":"))
		if err != nil {
			return fmt.Errorf("firestarter: bad meta-command: %w", err)
		}
		return runMetaCommand(env, words)
	}

	return env.Scope.Set(inp.Target, line)
}

// runMetaCommand implements the small set of REPL commands a script's
// Input prompt can be answered with instead of a plain value.
func runMetaCommand(env *runtime.Env, words []string) error {
	if len(words) == 0 {
		return nil
	}
	switch words[0] {
	case "set":
		if len(words) != 3 {
			return fmt.Errorf("firestarter: :set requires a name and a value")
		}
		return env.Scope.Set(words[1], words[2])
	case "get":
		if len(words) != 2 {
			return fmt.Errorf("firestarter: :get requires a name")
		}
		v, err := env.Scope.Get(words[1])
		if err != nil {
			return err
		}
		fmt.Printf("%v\n", v)
		return nil
	default:
		return fmt.Errorf("firestarter: unknown meta-command %q", words[0])
	}
}

// handleImport services an Imported outcome by binding the requested
// library into scope: the whole export set under Alias for a plain
// Import, or just the named Symbols, unnamespaced, for a FromImport. A
// permission-gated library binds only when the script was granted its
// tags via --permit.
func handleImport(scope *crucible.Crucible, req *runtime.ImportRequest) error {
	lib, ok := builtinLibraries[req.Library]
	if !ok {
		return fmt.Errorf("firestarter: no such library %q", req.Library)
	}
	if err := library.Check(lib, library.PermissionHolder{Permissions: runPermissions}); err != nil {
		return err
	}
	if len(req.Symbols) > 0 {
		return library.BindSymbols(scope, lib, req.Symbols)
	}
	return library.BindLibrary(scope, lib, req.Alias)
}
