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

// Package runtime executes a compiled, resolved Tinder script: a linear
// instruction list, a jump table, and an interrupt table, driven in a
// loop against a crucible.Crucible scope. Where the Python original
// threaded control flow (jump/return/yield/halt/import) through raised
// exceptions caught by the driving loop, this package returns an Outcome
// value instead — ordinary Go control flow for what is, in this
// language, an entirely ordinary (non-error) outcome of running a line.
package runtime

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/hyomoto/firestarter/crucible"
)

// Kind discriminates the variants of Outcome.
type Kind int

const (
	// Continue means the node produced a value (possibly nil) and
	// execution should fall through to the next instruction.
	Continue Kind = iota
	// JumpTo means execution should resume at instruction index Target.
	JumpTo
	// Yielded means the script is cooperatively suspending, optionally
	// handing Payload to the host.
	Yielded
	// Halted means the script's execution stack should terminate.
	Halted
	// Imported means the host must bind a library's exports into scope
	// per Request before the script resumes.
	Imported
)

// ImportRequest describes a library import or selective from-import a
// host must service before resuming a script.
type ImportRequest struct {
	Library string
	Alias   string
	Symbols []string
}

// Outcome is the sum-type result of evaluating one Node: a plain
// continuation carrying a value, or one of Tinder's control-flow
// signals.
type Outcome struct {
	Kind    Kind
	Target  int
	Payload map[string]interface{}
	Request *ImportRequest
}

func ContinueOutcome() Outcome { return Outcome{Kind: Continue} }

func JumpOutcome(target int) Outcome { return Outcome{Kind: JumpTo, Target: target} }

func YieldOutcome(payload map[string]interface{}) Outcome {
	return Outcome{Kind: Yielded, Payload: payload}
}

func HaltOutcome() Outcome { return Outcome{Kind: Halted} }

func ImportOutcome(req *ImportRequest) Outcome { return Outcome{Kind: Imported, Request: req} }

// Node is implemented by every Tinder operation, expression or
// statement alike. Eval returns the node's value (nil for pure
// statements) together with an Outcome; a non-Continue Outcome asks the
// driving loop to act (jump, yield, halt, import) instead of simply
// moving to the next instruction.
type Node interface {
	Eval(env *Env) (interface{}, Outcome, error)
}

// Env is the execution context threaded through a running script: the
// variable scope, the synthetic __LINE__/__JUMPED__ bookkeeping that
// Jump/Return use, and the label/interrupt tables a resolved script
// carries.
type Env struct {
	Scope      *crucible.Crucible
	Line       int
	Jumped     int
	Labels     map[string]int
	Interrupts map[string]int
	// Loops holds per-instruction iteration state for the Foreach/Foriter
	// sugar: a list position for Foreach, a "has Init run" marker for
	// Foriter, keyed by the loop header's instruction index.
	Loops     map[int]int
	SessionID uuid.UUID
}

// NewEnv returns a fresh Env bound to scope, stamped with a new session
// id so a host juggling many concurrently running scripts can correlate
// Yielded/Imported callbacks back to the right one.
func NewEnv(scope *crucible.Crucible) *Env {
	return &Env{Scope: scope, Labels: map[string]int{}, Interrupts: map[string]int{}, Loops: map[int]int{}, SessionID: uuid.New()}
}

// Script is the resolved, runnable form of a compiled Tinder program.
type Script struct {
	Instructions []Instruction
	JumpTable    map[string]int
	Interrupts   map[string]int
}

// WriteJumpTable copies script's label->instruction-index table into
// env; the host must write a script's jump table into the environment
// before the first Run call. Labels are recorded twice, for the two ways a script refers to
// them: env.Labels (consulted by the Interrupt instruction, which never
// goes through a Crucible lookup) and as ordinary Crucible variables
// (consulted by Jump, whose target is evaluated as an arbitrary
// identifier expression like any other) so that `jump label_name`
// resolves the same way `set x to label_name` would.
func WriteJumpTable(env *Env, script *Script) {
	for label, index := range script.JumpTable {
		env.Labels[label] = index
		_ = env.Scope.Set(label, float64(index))
	}
}

// Instruction pairs a Node with the source line it came from, used for
// ScriptError's diagnostics.
type Instruction struct {
	Line int
	Node Node
}

// ScriptError wraps a runtime failure with the source line it occurred
// on and the session id of the script that raised it.
type ScriptError struct {
	Line    int
	Session uuid.UUID
	Cause   error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Cause)
}

func (e *ScriptError) Unwrap() error { return e.Cause }

// Named is implemented by errors that carry their own interrupt-dispatch
// name, for the rare case where the Go type name (see exceptionName)
// would not match the name a script's `interrupt "X" handler` statement
// expects.
type Named interface {
	Name() string
}

// exceptionName derives the name a runtime error is matched against in
// env.Interrupts, mirroring the Python original's dispatch by exception
// class name. A Named error supplies its own name; otherwise the error's
// concrete Go type name is used with a trailing "Error" suffix trimmed,
// so e.g. *tinder.DivideByZeroError dispatches as "DivideByZero".
func exceptionName(err error) string {
	if n, ok := err.(Named); ok {
		return n.Name()
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return strings.TrimSuffix(t.Name(), "Error")
}

// Run drives script against env in a loop, honoring __LINE__'s
// pre-increment semantics: line is incremented before the instruction at
// the new line executes, so Jump's target+1 convention (jump records the
// *current* line, not the line after) lines up with Goto/If/EndIf's
// resolver-assigned targets. Run returns when the script halts, yields,
// requests an import, or a node errors.
//
// A node error is first checked against env.Interrupts by the raising
// exception's name: if a handler was registered (via an Interrupt
// instruction), the loop jumps to its label instead of propagating the
// error to the host. Only an unhandled error is wrapped as a ScriptError
// and returned to the host.
func Run(script *Script, env *Env) (Outcome, error) {
	for env.Line < len(script.Instructions) {
		instr := script.Instructions[env.Line]
		env.Line++
		_, outcome, err := instr.Node.Eval(env)
		if err != nil {
			if label, ok := env.Interrupts[exceptionName(err)]; ok {
				env.Line = label
				continue
			}
			return Outcome{}, &ScriptError{Line: instr.Line, Session: env.SessionID, Cause: err}
		}
		switch outcome.Kind {
		case Continue:
			continue
		case JumpTo:
			env.Line = outcome.Target
		case Yielded, Halted, Imported:
			return outcome, nil
		}
	}
	return HaltOutcome(), nil
}
