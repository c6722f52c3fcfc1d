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

package library_test

import (
	"testing"

	"github.com/hyomoto/firestarter/crucible"
	"github.com/hyomoto/firestarter/tinder/library"
)

type fakeMath struct{}

func (fakeMath) Name() string { return "math" }

func (fakeMath) Export(request []string) map[string]library.Export {
	all := map[string]library.Export{
		"add": {Fn: library.Func(func(args []interface{}) (interface{}, error) {
			return args[0].(int) + args[1].(int), nil
		}), Pure: true},
		"secret": {Fn: library.Func(func(args []interface{}) (interface{}, error) {
			return "shh", nil
		}), Pure: false},
	}
	if request == nil {
		return all
	}
	out := map[string]library.Export{}
	for _, name := range request {
		if exp, ok := all[name]; ok {
			out[name] = exp
		}
	}
	return out
}

func TestPureNamesCollectsBareAndQualified(t *testing.T) {
	names := library.PureNames(fakeMath{})
	if !names["add"] || !names["math.add"] {
		t.Errorf("names = %v, want add and math.add present", names)
	}
	if names["secret"] || names["math.secret"] {
		t.Errorf("names = %v, want secret absent (not Pure)", names)
	}
}

func TestBindLibraryInstallsNamespacedTable(t *testing.T) {
	scope := crucible.New(0, nil)
	if err := library.BindLibrary(scope, fakeMath{}, ""); err != nil {
		t.Fatalf("BindLibrary: %v", err)
	}
	v, err := scope.Call("math.add", 2, 3)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != 5 {
		t.Errorf("v = %v, want 5", v)
	}
}

func TestBindLibraryDefaultsAliasToLibraryName(t *testing.T) {
	scope := crucible.New(0, nil)
	if err := library.BindLibrary(scope, fakeMath{}, ""); err != nil {
		t.Fatalf("BindLibrary: %v", err)
	}
	if !scope.Contains("math") {
		t.Error("expected the export table bound under the library's own name")
	}
}

func TestBindSymbolsInstallsFlatUnnamespaced(t *testing.T) {
	scope := crucible.New(0, nil)
	if err := library.BindSymbols(scope, fakeMath{}, []string{"add"}); err != nil {
		t.Fatalf("BindSymbols: %v", err)
	}
	v, err := scope.Call("add", 4, 5)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != 9 {
		t.Errorf("v = %v, want 9", v)
	}
}

func TestBindSymbolsErrorsOnMissingExport(t *testing.T) {
	scope := crucible.New(0, nil)
	if err := library.BindSymbols(scope, fakeMath{}, []string{"nope"}); err == nil {
		t.Fatal("expected an error for a symbol the library does not export")
	}
}

// gatedLib requires a "net" permission for any of its exports to bind.
type gatedLib struct{ fakeMath }

func (gatedLib) Name() string       { return "gated" }
func (gatedLib) Requires() []string { return []string{"net"} }

func TestCheckRefusesMissingPermission(t *testing.T) {
	err := library.Check(gatedLib{}, library.PermissionHolder{Permissions: []string{"fs"}})
	perr, ok := err.(*library.PermissionError)
	if !ok {
		t.Fatalf("err = %v (%T), want *PermissionError", err, err)
	}
	if perr.Library != "gated" || perr.Permission != "net" {
		t.Errorf("perr = %+v, want Library=gated Permission=net", perr)
	}
}

func TestCheckPassesWithPermissionOrNoRequirements(t *testing.T) {
	if err := library.Check(gatedLib{}, library.PermissionHolder{Permissions: []string{"net"}}); err != nil {
		t.Errorf("Check with the required permission: %v", err)
	}
	if err := library.Check(fakeMath{}, library.PermissionHolder{}); err != nil {
		t.Errorf("Check on a library with no requirements: %v", err)
	}
}

func TestPermissionRequirerHasPermission(t *testing.T) {
	r := library.PermissionRequirer{Permissions: []string{"net"}}
	if r.HasPermission(library.PermissionHolder{Permissions: []string{"fs"}}) {
		t.Error("HasPermission = true, want false: holder lacks \"net\"")
	}
	if !r.HasPermission(library.PermissionHolder{Permissions: []string{"net", "fs"}}) {
		t.Error("HasPermission = false, want true: holder carries every required permission")
	}

	empty := library.PermissionRequirer{}
	if !empty.HasPermission(library.PermissionHolder{}) {
		t.Error("a requirer with no permissions listed should always pass")
	}
}
