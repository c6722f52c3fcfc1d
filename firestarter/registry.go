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
	"fmt"

	"github.com/hyomoto/firestarter/token"
)

// New constructs an operation from bound arguments. It returns a *Replace
// in place of a normal error to ask the reducer to substitute a different
// node (or nodes) for the one currently being built; any other error
// aborts reduction.
type New func(args []interface{}) (interface{}, error)

// OpEntry is one registered operation class: its constructor, its static
// argument schema, and any defaults registered for its Optional slots.
type OpEntry struct {
	New      New
	Schema   Schema
	Defaults []interface{}
}

// Replace asks the reducer to substitute Nodes for the node currently
// under construction. A single node collapses the current position; more
// than one flattens into the parent's argument list. This is how an op
// constructor performs operator-to-node transforms, e.g. a flat Binary
// AST node building a concrete Add/Subtract expression tree.
type Replace struct {
	Nodes []interface{}
}

func (r *Replace) Error() string { return "firestarter: node replaced" }

// Leaf is the synthetic argument produced for a primitive (Literal or
// Pattern) rule match: its rule identity and the raw matched text. Ops
// whose schema expects a leaf argument receive one of these directly,
// without an intervening opcode lookup.
type Leaf struct {
	Identity string
	Text     string
	Line     int
}

func (l Leaf) IntrinsicType() string { return "leaf" }

// Error is raised when reduction cannot proceed: an unregistered
// operation, a schema mismatch, or a Replace misuse.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// Registry holds the operation classes a Compile call reduces an AST
// against, plus the defaults registered for their Optional slots.
type Registry struct {
	ops map[string]*OpEntry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ops: map[string]*OpEntry{}}
}

// Register records entry under the rule identity name. Registering twice
// under the same name replaces the previous entry.
func (r *Registry) Register(name string, entry OpEntry) {
	e := entry
	r.ops[name] = &e
}

// RegisterDefaults stores defaults aligned 1:1 with name's schema slots;
// during reduction a missing Optional argument substitutes the default
// at its slot index.
func (r *Registry) RegisterDefaults(name string, defaults ...interface{}) error {
	entry, ok := r.ops[name]
	if !ok {
		return fmt.Errorf("firestarter: cannot register defaults for unknown op %q", name)
	}
	entry.Defaults = defaults
	return nil
}

// Lookup returns the entry registered for name, if any.
func (r *Registry) Lookup(name string) (*OpEntry, bool) {
	e, ok := r.ops[name]
	return e, ok
}
