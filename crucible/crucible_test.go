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

package crucible_test

import (
	"testing"

	"github.com/hyomoto/firestarter/crucible"
)

func TestGetReadsOwnScopeByDefault(t *testing.T) {
	c := crucible.New(0, nil)
	c.Variables["x"] = 1.0

	v, err := c.Get("x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 1.0 {
		t.Errorf("v = %v, want 1.0", v)
	}

	if _, err := c.Get("missing"); err == nil {
		t.Fatal("expected ValueNotFoundError")
	}
}

func TestGetReadFromBasePrefersParent(t *testing.T) {
	parent := crucible.New(0, nil)
	parent.Variables["x"] = "from-parent"
	child := crucible.New(crucible.ReadFromBase, parent)
	child.Variables["x"] = "from-child"

	v, err := child.Get("x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "from-parent" {
		t.Errorf("v = %v, want from-parent (ReadFromBase consults parent first)", v)
	}

	// Falls back to self when the parent doesn't have it.
	child.Variables["y"] = "only-child"
	v, err = child.Get("y")
	if err != nil || v != "only-child" {
		t.Errorf("Get(y) = %v, %v, want only-child, nil", v, err)
	}
}

func TestSetAutoCreatesIntermediateMapComponents(t *testing.T) {
	c := crucible.New(0, nil)
	if err := c.Set("a.b.c", 42.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := c.Get("a.b.c")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 42.0 {
		t.Errorf("v = %v, want 42.0", v)
	}
}

func TestSetReadOnlyRefusesWrite(t *testing.T) {
	c := crucible.New(crucible.ReadOnly, nil)
	if err := c.Set("x", 1.0); err == nil {
		t.Fatal("expected a write error on a read-only scope")
	}
}

func TestSetProtectedRequiresExistingKeyAndMatchingType(t *testing.T) {
	c := crucible.New(crucible.Protected, nil)
	c.Variables["x"] = 1.0

	if err := c.Set("y", "new-key"); err == nil {
		t.Fatal("expected a write error: protected scopes refuse new top-level keys")
	}
	if err := c.Set("x", "wrong-type"); err == nil {
		t.Fatal("expected a write error: protected scopes refuse a type change")
	}
	if err := c.Set("x", 2.0); err != nil {
		t.Errorf("Set with matching type: %v", err)
	}
}

func TestSetWriteToBaseRoutesToParentFirst(t *testing.T) {
	parent := crucible.New(0, nil)
	child := crucible.New(crucible.WriteToBase, parent)

	if err := child.Set("x", 1.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := child.Variables["x"]; ok {
		t.Error("x was written to the child scope, want it routed to the parent")
	}
	if v := parent.Variables["x"]; v != 1.0 {
		t.Errorf("parent.Variables[x] = %v, want 1.0", v)
	}
}

func TestSetNoShadowingForcesBaseWrite(t *testing.T) {
	parent := crucible.New(0, nil)
	parent.Variables["x"] = 1.0
	child := crucible.New(crucible.NoShadowing, parent)

	if err := child.Set("x", 2.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := child.Variables["x"]; ok {
		t.Error("x was written to the child scope, want it routed to the parent to avoid shadowing")
	}
	if parent.Variables["x"] != 2.0 {
		t.Errorf("parent.Variables[x] = %v, want 2.0", parent.Variables["x"])
	}

	// A name the parent doesn't have is free to shadow locally.
	if err := child.Set("y", 3.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if child.Variables["y"] != 3.0 {
		t.Errorf("child.Variables[y] = %v, want 3.0", child.Variables["y"])
	}
}

func TestSetConstantRefusesMutation(t *testing.T) {
	c := crucible.New(0, nil)
	c.Variables["x"] = 1.0
	c.Update(nil, []string{"x"})

	if err := c.Set("x", 2.0); err == nil {
		t.Fatal("expected a write error: x is frozen as a constant")
	}
}

func TestUpdateMergesVariablesAndDedupesConstants(t *testing.T) {
	c := crucible.New(0, nil)
	c.Update(map[string]interface{}{"a": 1.0}, []string{"a"})
	c.Update(map[string]interface{}{"b": 2.0}, []string{"a", "b"})

	if len(c.Constants) != 2 {
		t.Errorf("Constants = %v, want [a b] deduped", c.Constants)
	}
	if c.Variables["a"] != 1.0 || c.Variables["b"] != 2.0 {
		t.Errorf("Variables = %v", c.Variables)
	}
}

func TestContainsDoesNotConsultParent(t *testing.T) {
	parent := crucible.New(0, nil)
	parent.Variables["x"] = 1.0
	child := crucible.New(0, parent)

	if child.Contains("x") {
		t.Error("Contains(x) = true, want false (parent is not consulted)")
	}
	child.Variables["x"] = 2.0
	if !child.Contains("x") {
		t.Error("Contains(x) = false, want true")
	}
}

type addOne struct{}

func (addOne) Call(args []interface{}) (interface{}, error) {
	return args[0].(float64) + 1, nil
}

func TestCallInvokesCallableValue(t *testing.T) {
	c := crucible.New(0, nil)
	c.Variables["inc"] = addOne{}

	v, err := c.Call("inc", 1.0)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != 2.0 {
		t.Errorf("v = %v, want 2.0", v)
	}

	c.Variables["notfn"] = 1.0
	if _, err := c.Call("notfn"); err == nil {
		t.Fatal("expected NotCallableError")
	}
}

func TestSetIndexesIntoLists(t *testing.T) {
	c := crucible.New(0, nil)
	c.Variables["items"] = []interface{}{1.0, 2.0, 3.0}

	if err := c.Set("items.1", 99.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	list := c.Variables["items"].([]interface{})
	if list[1] != 99.0 {
		t.Errorf("items[1] = %v, want 99.0", list[1])
	}

	if err := c.Set("items.9", 1.0); err == nil {
		t.Fatal("expected an out-of-range index error")
	}
}
