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

// Package library is the host-extension protocol a Tinder script reaches
// through Import/FromImport: a Library exports a flat set of named
// callables, each optionally marked Pure so tinder/resolver can fold a
// call to it at compile time. A library may require permissions that a
// PermissionHolder must carry before Check lets it be bound.
package library

import (
	"fmt"

	"github.com/hyomoto/firestarter/crucible"
)

// Func adapts a plain Go function to crucible.Callable, the interface
// Crucible.Call expects a resolved value to implement.
type Func func(args []interface{}) (interface{}, error)

func (f Func) Call(args []interface{}) (interface{}, error) { return f(args) }

// Export is one named entry in a Library's export set.
type Export struct {
	Fn   crucible.Callable
	Pure bool
}

// Library is implemented by a host extension. Export returns every entry
// whose name is in request, or every entry if request is nil.
type Library interface {
	Name() string
	Export(request []string) map[string]Export
}

// PermissionHolder carries the permissions a caller has been granted.
type PermissionHolder struct{ Permissions []string }

// PermissionRequirer lists permissions a holder must carry; HasPermission
// checks them. Check, which gates binding, uses Requirer instead.
type PermissionRequirer struct{ Permissions []string }

// HasPermission reports whether holder carries every permission r
// requires. A requirer with no permissions listed always passes.
func (r PermissionRequirer) HasPermission(holder PermissionHolder) bool {
	for _, want := range r.Permissions {
		found := false
		for _, have := range holder.Permissions {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Requirer is implemented by a Library whose exports are gated behind
// permission tags; Check consults it before either Bind installs
// anything into a scope.
type Requirer interface {
	Requires() []string
}

// PermissionError reports a bind refused because the calling holder
// lacks a permission the library requires.
type PermissionError struct {
	Library    string
	Permission string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("library: %q requires permission %q", e.Library, e.Permission)
}

// Check verifies holder carries every permission lib requires. A library
// that does not implement Requirer requires none and always passes.
func Check(lib Library, holder PermissionHolder) error {
	r, ok := lib.(Requirer)
	if !ok {
		return nil
	}
	for _, want := range r.Requires() {
		found := false
		for _, have := range holder.Permissions {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return &PermissionError{Library: lib.Name(), Permission: want}
		}
	}
	return nil
}

// PureNames collects, across libs, the export names tinder/resolver may
// treat as safe to fold at compile time: qualified as "lib.name" (the
// form a namespaced Import produces) and bare "name" (the form a
// FromImport produces).
func PureNames(libs ...Library) map[string]bool {
	out := map[string]bool{}
	for _, lib := range libs {
		for name, exp := range lib.Export(nil) {
			if !exp.Pure {
				continue
			}
			out[name] = true
			out[lib.Name()+"."+name] = true
		}
	}
	return out
}

// BindLibrary installs lib's entire export set into scope under alias,
// the shape tinder.Import produces: a single namespaced table a script
// reaches as "alias.funcName".
func BindLibrary(scope *crucible.Crucible, lib Library, alias string) error {
	if alias == "" {
		alias = lib.Name()
	}
	ns := make(map[string]interface{})
	for name, exp := range lib.Export(nil) {
		ns[name] = exp.Fn
	}
	scope.Update(map[string]interface{}{alias: ns}, nil)
	return nil
}

// BindSymbols installs only the named exports of lib directly into
// scope, unnamespaced, the shape tinder.FromImport produces.
func BindSymbols(scope *crucible.Crucible, lib Library, symbols []string) error {
	exported := lib.Export(symbols)
	flat := make(map[string]interface{}, len(symbols))
	for _, name := range symbols {
		exp, ok := exported[name]
		if !ok {
			return fmt.Errorf("library: %q exports no symbol %q", lib.Name(), name)
		}
		flat[name] = exp.Fn
	}
	scope.Update(flat, nil)
	return nil
}
