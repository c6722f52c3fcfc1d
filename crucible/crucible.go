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

// Package crucible implements the hierarchical, access-controlled
// variable scope shared by Tinder's compile-time resolver and its
// runtime: dotted-path traversal over nested maps and slices, a
// configurable read/write policy, and serialization to a tagged-union
// tree so scripts can persist a running script's state.
package crucible

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Access is a bitmask of the policies governing one Crucible scope.
type Access int

const (
	// ReadFromBase tries the parent scope before self on a read.
	ReadFromBase Access = 1 << iota
	// WriteToBase routes writes to the parent chain first.
	WriteToBase
	// ReadOnly refuses every write directed at this scope.
	ReadOnly
	// Protected requires a write's value to match the existing value's
	// runtime type, and refuses to create new top-level keys.
	Protected
	// NoShadowing refuses to create a local binding that shadows a name
	// already defined in an ancestor scope, preferring a base write.
	NoShadowing
)

// Crucible is one scope in a chain: a flat variable map, an optional
// parent, an access policy, and the set of top-level keys the resolver
// has frozen as constants.
type Crucible struct {
	Variables map[string]interface{}
	Parent    *Crucible
	Access    Access
	Constants []string
}

// New returns an empty Crucible with the given access policy and parent
// (nil for a root scope).
func New(access Access, parent *Crucible) *Crucible {
	return &Crucible{Variables: map[string]interface{}{}, Access: access, Parent: parent}
}

// ValueNotFoundError reports that path could not be located by a read.
type ValueNotFoundError struct{ Path string }

func (e *ValueNotFoundError) Error() string {
	return fmt.Sprintf("variable %q not found in the crucible", e.Path)
}

// KeyNotFoundError reports that a path component could not be walked.
type KeyNotFoundError struct {
	Key     string
	Walked  string
	IsIndex bool
}

func (e *KeyNotFoundError) Error() string {
	kind := "Key"
	if e.IsIndex {
		kind = "Index"
	}
	return fmt.Sprintf("%s %q not found at %q in the crucible", kind, e.Key, e.Walked)
}

// WriteError is the base for every reason a set() can be refused.
type WriteError struct {
	Path   string
	Reason string
}

func (e *WriteError) Error() string { return fmt.Sprintf("cannot write %q: %s", e.Path, e.Reason) }

func readOnlyError(path string) error {
	return &WriteError{Path: path, Reason: "scope is read-only and cannot be written to"}
}

func protectedError(path, wantType, gotType string) error {
	return &WriteError{Path: path, Reason: fmt.Sprintf("variable is %s and cannot be mutated to %s", wantType, gotType)}
}

func constantError(path string) error {
	return &WriteError{Path: path, Reason: "variable is constant and cannot be mutated"}
}

func shadowingError(path string) error {
	return &WriteError{Path: path, Reason: "shadowing is not allowed in this scope"}
}

// NotCallableError reports that call() targeted a non-function value.
type NotCallableError struct{ Path string }

func (e *NotCallableError) Error() string { return fmt.Sprintf("%q is not callable", e.Path) }

// splitPath turns a dotted path string into its components; a numeric
// component addresses a slice index rather than a map key.
func splitPath(path string) []string { return strings.Split(path, ".") }

func joinPath(parts []string) string {
	if len(parts) == 0 {
		return "root"
	}
	return strings.Join(parts, ".")
}

// walk descends self.Variables following parts, indexing maps by key and
// slices by integer position.
func (c *Crucible) walk(parts []string) (interface{}, error) {
	var cur interface{} = c.Variables
	for i, p := range parts {
		switch container := cur.(type) {
		case map[string]interface{}:
			v, ok := container[p]
			if !ok {
				return nil, &KeyNotFoundError{Key: p, Walked: joinPath(parts[:i])}
			}
			cur = v
		case []interface{}:
			idx, err := strconv.Atoi(p)
			if err != nil || idx < 0 || idx >= len(container) {
				return nil, &KeyNotFoundError{Key: p, Walked: joinPath(parts[:i]), IsIndex: true}
			}
			cur = container[idx]
		default:
			return nil, &KeyNotFoundError{Key: p, Walked: joinPath(parts[:i])}
		}
	}
	return cur, nil
}

// Contains reports whether path resolves to a value in this scope alone
// (it does not consult the parent chain).
func (c *Crucible) Contains(path string) bool {
	_, err := c.walk(splitPath(path))
	return err == nil
}

// Get reads path, honoring ReadFromBase: if set, the parent is consulted
// first and this scope only on failure; otherwise the order is reversed.
func (c *Crucible) Get(path string) (interface{}, error) {
	parts := splitPath(path)
	fromBase := func() (interface{}, error) {
		if c.Parent == nil {
			return nil, &ValueNotFoundError{Path: path}
		}
		return c.Parent.Get(path)
	}
	if c.Access&ReadFromBase != 0 {
		if v, err := fromBase(); err == nil {
			return v, nil
		}
		return c.walk(parts)
	}
	if v, err := c.walk(parts); err == nil {
		return v, nil
	}
	return fromBase()
}

// Update merges source into this scope's variables and appends constants
// (deduplicated) to the constants list the resolver consults.
func (c *Crucible) Update(source map[string]interface{}, constants []string) {
	for k, v := range source {
		c.Variables[k] = v
	}
	if len(constants) == 0 {
		return
	}
	c.Constants = append(c.Constants, constants...)
	sort.Strings(c.Constants)
	c.Constants = slices.Compact(c.Constants)
}

// Set writes value at path. WriteToBase routes
// to the parent chain first; failing that, NoShadowing checks whether the
// first path component already exists in an ancestor and, if so, forces a
// base write (raising ShadowingError if that also fails); otherwise the
// write lands in this scope, subject to ReadOnly/Protected/constant
// checks and auto-creation of missing intermediate map components.
func (c *Crucible) Set(path string, value interface{}) error {
	parts := splitPath(path)
	key := parts[0]

	writeToBase := func() error {
		if c.Parent == nil {
			return &WriteError{Path: key, Reason: "no parent scope available"}
		}
		return c.Parent.Set(path, value)
	}

	if c.Access&WriteToBase != 0 {
		if err := writeToBase(); err == nil {
			return nil
		}
	}
	if c.Access&NoShadowing != 0 && c.isShadowing(key) {
		if err := writeToBase(); err != nil {
			return shadowingError(key)
		}
		return nil
	}
	return c.writeToSelf(parts, value)
}

func (c *Crucible) isShadowing(key string) bool {
	for scope := c.Parent; scope != nil; scope = scope.Parent {
		if _, ok := scope.Variables[key]; ok {
			return true
		}
	}
	return false
}

func (c *Crucible) writeToSelf(parts []string, value interface{}) error {
	path := joinPath(parts)
	if len(parts) == 1 {
		for _, k := range c.Constants {
			if k == parts[0] {
				return constantError(path)
			}
		}
	}
	if c.Access&ReadOnly != 0 {
		return readOnlyError(path)
	}

	target, err := c.resolveContainer(parts[:len(parts)-1])
	if err != nil {
		return err
	}
	key := parts[len(parts)-1]

	switch container := target.(type) {
	case map[string]interface{}:
		if c.Access&Protected != 0 {
			existing, ok := container[key]
			if !ok {
				return &WriteError{Path: path, Reason: "scope is protected"}
			}
			if !sameType(existing, value) {
				return protectedError(path, typeName(existing), typeName(value))
			}
		}
		container[key] = value
		return nil
	case []interface{}:
		idx, numErr := strconv.Atoi(key)
		if numErr != nil {
			return &KeyNotFoundError{Key: key, Walked: joinPath(parts[:len(parts)-1])}
		}
		if idx < 0 || idx >= len(container) {
			return fmt.Errorf("index %q out of range for list", key)
		}
		if c.Access&Protected != 0 && !sameType(container[idx], value) {
			return protectedError(path, typeName(container[idx]), typeName(value))
		}
		container[idx] = value
		return nil
	default:
		return fmt.Errorf("cannot write to %q: scope is not a list or map", path)
	}
}

// resolveContainer walks to the map holding the leaf key being set,
// auto-creating missing intermediate map components unless the scope is
// ReadOnly or Protected.
func (c *Crucible) resolveContainer(parts []string) (interface{}, error) {
	if len(parts) == 0 {
		return c.Variables, nil
	}
	var cur interface{} = c.Variables
	for i, p := range parts {
		switch container := cur.(type) {
		case map[string]interface{}:
			next, ok := container[p]
			if !ok {
				if c.Access&(ReadOnly|Protected) != 0 {
					return nil, &KeyNotFoundError{Key: p, Walked: joinPath(parts[:i])}
				}
				next = map[string]interface{}{}
				container[p] = next
			}
			cur = next
		case []interface{}:
			idx, err := strconv.Atoi(p)
			if err != nil || idx < 0 || idx >= len(container) {
				return nil, &KeyNotFoundError{Key: p, Walked: joinPath(parts[:i]), IsIndex: true}
			}
			cur = container[idx]
		default:
			return nil, &KeyNotFoundError{Key: p, Walked: joinPath(parts[:i])}
		}
	}
	return cur, nil
}

func sameType(a, b interface{}) bool {
	switch a.(type) {
	case int:
		_, ok := b.(int)
		return ok
	case float64:
		_, ok := b.(float64)
		return ok
	case string:
		_, ok := b.(string)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	default:
		return fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
	}
}

func typeName(v interface{}) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

// Callable is implemented by values that Call can invoke.
type Callable interface {
	Call(args []interface{}) (interface{}, error)
}

// Call fetches path and invokes it with args; path must resolve to a
// value implementing Callable.
func (c *Crucible) Call(path string, args ...interface{}) (interface{}, error) {
	v, err := c.Get(path)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(Callable)
	if !ok {
		return nil, &NotCallableError{Path: path}
	}
	return fn.Call(args)
}
