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

// Package resolver runs the post-compile pass over a Firestarter
// instruction list: constant folding against a compile-time Crucible
// seeded with the host's pure library exports, and linking the
// structured If/Else/EndIf and Foreach/Foriter/EndFor sugar into the
// plain conditional/unconditional jumps tinder/runtime actually
// executes. Where the Python original dispatched per node kind with
// singledispatchmethod, this package uses an ordinary Go type switch —
// the "dispatches on the variant tag via a match/switch" design note.
package resolver

import (
	"fmt"
	"slices"

	"github.com/hyomoto/firestarter/crucible"
	"github.com/hyomoto/firestarter/firestarter"
	"github.com/hyomoto/firestarter/tinder"
	"github.com/hyomoto/firestarter/tinder/runtime"
)

// UnmatchedBlockError reports a structured block marker with no partner:
// an Else or EndIf with no open If, an EndFor with no open loop, or a
// block left open at the end of the instruction list.
type UnmatchedBlockError struct {
	Kind string
	Line int
}

func (e *UnmatchedBlockError) Error() string {
	return fmt.Sprintf("line %d: unmatched %s", e.Line, e.Kind)
}

// Resolve links structured blocks and folds constants over instrs,
// returning a runnable Script. constants is a Crucible pre-seeded with
// the host's pure/resolvable library exports (see tinder/library); it is
// never mutated — script-declared constants accumulate in a child scope
// layered over it. pureFuncs names the Function idents safe to fold at
// compile time when every argument itself folds.
func Resolve(instrs []firestarter.Instruction, constants *crucible.Crucible, pureFuncs map[string]bool) (*runtime.Script, error) {
	nodes := make([]runtime.Node, len(instrs))
	lines := make([]int, len(instrs))
	labels := map[string]int{}
	for i, ins := range instrs {
		node, ok := ins.Operation.(runtime.Node)
		if !ok {
			return nil, fmt.Errorf("resolver: instruction at line %d is not executable: %T", ins.Line, ins.Operation)
		}
		nodes[i] = node
		lines[i] = ins.Line
		if g, isGoto := node.(tinder.Goto); isGoto {
			labels[g.Label] = i
		}
	}

	if err := linkBlocks(nodes, lines); err != nil {
		return nil, err
	}

	// Instructions fold in source order so that a `const` declaration is
	// visible to every instruction after it: once a Const's value has
	// folded to a literal, the binding is installed (and frozen) in the
	// compile scope, and later Identifier references to it fold in turn.
	compile := crucible.New(0, constants)
	env := runtime.NewEnv(compile)
	for i, n := range nodes {
		folded := fold(n, env, compile, pureFuncs)
		nodes[i] = folded
		if c, ok := folded.(tinder.Const); ok {
			if v, isLit := literal(c.Value); isLit {
				if err := compile.Set(c.Ident, v); err == nil {
					compile.Update(nil, []string{c.Ident})
				}
			}
		}
	}

	script := &runtime.Script{JumpTable: labels, Interrupts: map[string]int{}, Instructions: make([]runtime.Instruction, len(nodes))}
	for i, n := range nodes {
		script.Instructions[i] = runtime.Instruction{Line: lines[i], Node: n}
	}
	return script, nil
}

// blockFrame is one open structured block on the linking stack.
type blockFrame struct {
	kind    string // "if" or "loop"
	index   int
	ifNode  *tinder.If
	sawElse bool
	elseN   *tinder.Else

	foreachNode *tinder.Foreach
	foriterNode *tinder.Foriter
}

// linkBlocks walks nodes once, maintaining a strict block stack: an
// If pushes a frame; its Else (at most one) rewrites the If's jump
// target to just past itself; EndIf pops the frame and patches whichever
// terminator is dangling (the If itself, if no Else appeared, or the
// Else) to the instruction after EndIf. Foreach/Foriter and EndFor work
// the same way, with EndFor additionally wiring the loop's back-edge and
// (for Foriter) installing the per-iteration Step.
func linkBlocks(nodes []runtime.Node, lines []int) error {
	var stack []*blockFrame
	for i, n := range nodes {
		switch node := n.(type) {
		case *tinder.If:
			stack = append(stack, &blockFrame{kind: "if", index: i, ifNode: node})
		case *tinder.Else:
			if len(stack) == 0 || stack[len(stack)-1].kind != "if" {
				return &UnmatchedBlockError{Kind: "Else", Line: lines[i]}
			}
			top := stack[len(stack)-1]
			if top.sawElse {
				return &UnmatchedBlockError{Kind: "Else", Line: lines[i]}
			}
			top.ifNode.Target = i + 1
			top.sawElse = true
			top.elseN = node
		case *tinder.EndIf:
			if len(stack) == 0 || stack[len(stack)-1].kind != "if" {
				return &UnmatchedBlockError{Kind: "EndIf", Line: lines[i]}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.sawElse {
				top.elseN.Target = i + 1
			} else {
				top.ifNode.Target = i + 1
			}
		case *tinder.Foreach:
			stack = append(stack, &blockFrame{kind: "loop", index: i, foreachNode: node})
		case *tinder.Foriter:
			stack = append(stack, &blockFrame{kind: "loop", index: i, foriterNode: node})
		case *tinder.EndFor:
			if len(stack) == 0 || stack[len(stack)-1].kind != "loop" {
				return &UnmatchedBlockError{Kind: "EndFor", Line: lines[i]}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			node.ConditionIndex = top.index
			if top.foriterNode != nil {
				node.Step = top.foriterNode.Step
				top.foriterNode.Exit = i + 1
			} else {
				top.foreachNode.Exit = i + 1
			}
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return &UnmatchedBlockError{Kind: top.kind, Line: lines[top.index]}
	}
	return nil
}

// literal reports the constant Go value a node already holds, if any.
func literal(n runtime.Node) (interface{}, bool) {
	switch v := n.(type) {
	case tinder.Number:
		return tinder.Demote(v.Value), true
	case tinder.String:
		return v.Text, true
	case tinder.Constant:
		return v.Value, true
	default:
		return nil, false
	}
}

func asConstant(v interface{}) runtime.Node { return tinder.Constant{Value: v} }

// fold recurses through the operation tree, replacing any sub-tree whose
// inputs are already constant with a single tinder.Constant holding the
// value the sub-tree would produce at run time. Identifiers named in a
// Constants list anywhere on the scope chain fold to the identifier's
// current value, since a constant binding cannot change between
// resolution and execution. Container literals (Array, Table) fold their
// element expressions but are never themselves collapsed to a Constant:
// a script may mutate the value a container literal produced, and a
// shared folded instance would leak those mutations across iterations.
func fold(n runtime.Node, env *runtime.Env, scope *crucible.Crucible, pureFuncs map[string]bool) runtime.Node {
	switch node := n.(type) {
	case tinder.Identifier:
		for s := scope; s != nil; s = s.Parent {
			if slices.Contains(s.Constants, node.Name) {
				if v, err := scope.Get(node.Name); err == nil {
					return asConstant(v)
				}
				break
			}
		}
		return node

	case tinder.Add:
		return foldBinary(node.Left, node.Right, env, scope, pureFuncs, func(l, r runtime.Node) runtime.Node { return tinder.Add{Left: l, Right: r} })
	case tinder.Subtract:
		return foldBinary(node.Left, node.Right, env, scope, pureFuncs, func(l, r runtime.Node) runtime.Node { return tinder.Subtract{Left: l, Right: r} })
	case tinder.Multiply:
		return foldBinary(node.Left, node.Right, env, scope, pureFuncs, func(l, r runtime.Node) runtime.Node { return tinder.Multiply{Left: l, Right: r} })
	case tinder.Divide:
		return foldBinary(node.Left, node.Right, env, scope, pureFuncs, func(l, r runtime.Node) runtime.Node { return tinder.Divide{Left: l, Right: r} })
	case tinder.Lt:
		return foldBinary(node.Left, node.Right, env, scope, pureFuncs, func(l, r runtime.Node) runtime.Node { return tinder.Lt{Left: l, Right: r} })
	case tinder.Le:
		return foldBinary(node.Left, node.Right, env, scope, pureFuncs, func(l, r runtime.Node) runtime.Node { return tinder.Le{Left: l, Right: r} })
	case tinder.Gt:
		return foldBinary(node.Left, node.Right, env, scope, pureFuncs, func(l, r runtime.Node) runtime.Node { return tinder.Gt{Left: l, Right: r} })
	case tinder.Ge:
		return foldBinary(node.Left, node.Right, env, scope, pureFuncs, func(l, r runtime.Node) runtime.Node { return tinder.Ge{Left: l, Right: r} })
	case tinder.Eq:
		return foldBinary(node.Left, node.Right, env, scope, pureFuncs, func(l, r runtime.Node) runtime.Node { return tinder.Eq{Left: l, Right: r} })
	case tinder.Ne:
		return foldBinary(node.Left, node.Right, env, scope, pureFuncs, func(l, r runtime.Node) runtime.Node { return tinder.Ne{Left: l, Right: r} })

	case tinder.Not:
		operand := fold(node.Op, env, scope, pureFuncs)
		if _, ok := literal(operand); ok {
			v, _, err := (tinder.Not{Op: operand}).Eval(env)
			if err == nil {
				return asConstant(v)
			}
		}
		return tinder.Not{Op: operand}

	case tinder.Negate:
		operand := fold(node.Op, env, scope, pureFuncs)
		if _, ok := literal(operand); ok {
			v, _, err := (tinder.Negate{Op: operand}).Eval(env)
			if err == nil {
				return asConstant(v)
			}
		}
		return tinder.Negate{Op: operand}

	case tinder.And:
		ops, allConst := foldAll(node.Ops, env, scope, pureFuncs)
		if allConst {
			if v, _, err := (tinder.And{Ops: ops}).Eval(env); err == nil {
				return asConstant(v)
			}
		}
		return tinder.And{Ops: ops}

	case tinder.Or:
		ops, allConst := foldAll(node.Ops, env, scope, pureFuncs)
		if allConst {
			if v, _, err := (tinder.Or{Ops: ops}).Eval(env); err == nil {
				return asConstant(v)
			}
		}
		return tinder.Or{Ops: ops}

	case tinder.Function:
		args, allConst := foldAll(node.Args, env, scope, pureFuncs)
		folded := tinder.Function{Ident: node.Ident, Args: args}
		if !pureFuncs[node.Ident] || !allConst {
			return folded
		}
		v, _, err := folded.Eval(env)
		if err != nil {
			return folded
		}
		return asConstant(v)

	case tinder.Statement:
		return tinder.Statement{Op: fold(node.Op, env, scope, pureFuncs), Cond: fold(node.Cond, env, scope, pureFuncs)}

	case tinder.Set:
		values := make([]runtime.Node, len(node.Values))
		for i, v := range node.Values {
			values[i] = fold(v, env, scope, pureFuncs)
		}
		return tinder.Set{Idents: node.Idents, Values: values}

	case tinder.Const:
		return tinder.Const{Ident: node.Ident, Value: fold(node.Value, env, scope, pureFuncs)}

	case tinder.Array:
		elems := make([]runtime.Node, len(node.Elements))
		for i, e := range node.Elements {
			elems[i] = fold(e, env, scope, pureFuncs)
		}
		return tinder.Array{Elements: elems}

	case tinder.Table:
		pairs := make([]tinder.KeyValuePair, len(node.Pairs))
		for i, p := range node.Pairs {
			pairs[i] = tinder.KeyValuePair{Key: p.Key, Value: fold(p.Value, env, scope, pureFuncs)}
		}
		return tinder.Table{Pairs: pairs}

	case tinder.In:
		ops, _ := foldAll(node.Ops, env, scope, pureFuncs)
		return tinder.In{Value: fold(node.Value, env, scope, pureFuncs), Ops: ops}

	case tinder.From:
		return tinder.From{Container: fold(node.Container, env, scope, pureFuncs), Index: fold(node.Index, env, scope, pureFuncs)}

	case tinder.At:
		return tinder.At{Container: fold(node.Container, env, scope, pureFuncs), Index: fold(node.Index, env, scope, pureFuncs)}

	case tinder.Put:
		return tinder.Put{Value: fold(node.Value, env, scope, pureFuncs), Position: node.Position, Ident: node.Ident}

	case tinder.Write:
		return tinder.Write{Text: fold(node.Text, env, scope, pureFuncs), Target: node.Target}

	case tinder.Input:
		return tinder.Input{Prompt: fold(node.Prompt, env, scope, pureFuncs), Target: node.Target}

	case tinder.Jump:
		return tinder.Jump{Target: fold(node.Target, env, scope, pureFuncs)}

	case tinder.JumpAhead:
		return tinder.JumpAhead{N: fold(node.N, env, scope, pureFuncs)}

	case tinder.Goto:
		if node.Otherwise == nil {
			return node
		}
		return tinder.Goto{Label: node.Label, Otherwise: fold(node.Otherwise, env, scope, pureFuncs)}

	case tinder.Yield:
		if node.Payload == nil {
			return node
		}
		return tinder.Yield{Payload: fold(node.Payload, env, scope, pureFuncs)}

	case *tinder.If:
		node.Cond = fold(node.Cond, env, scope, pureFuncs)
		return node

	case *tinder.Else:
		if node.Cond != nil {
			node.Cond = fold(node.Cond, env, scope, pureFuncs)
		}
		return node

	case *tinder.Foreach:
		node.Iterable = fold(node.Iterable, env, scope, pureFuncs)
		return node

	case *tinder.Foriter:
		node.Init = fold(node.Init, env, scope, pureFuncs)
		node.Cond = fold(node.Cond, env, scope, pureFuncs)
		node.Step = fold(node.Step, env, scope, pureFuncs)
		return node

	case *tinder.EndFor:
		if node.Step != nil {
			node.Step = fold(node.Step, env, scope, pureFuncs)
		}
		return node

	default:
		return n
	}
}

func foldBinary(left, right runtime.Node, env *runtime.Env, scope *crucible.Crucible, pureFuncs map[string]bool, rebuild func(l, r runtime.Node) runtime.Node) runtime.Node {
	l := fold(left, env, scope, pureFuncs)
	r := fold(right, env, scope, pureFuncs)
	_, lok := literal(l)
	_, rok := literal(r)
	rebuilt := rebuild(l, r)
	if lok && rok {
		if v, _, err := rebuilt.Eval(env); err == nil {
			return asConstant(v)
		}
	}
	return rebuilt
}

func foldAll(nodes []runtime.Node, env *runtime.Env, scope *crucible.Crucible, pureFuncs map[string]bool) ([]runtime.Node, bool) {
	out := make([]runtime.Node, len(nodes))
	allConst := true
	for i, n := range nodes {
		folded := fold(n, env, scope, pureFuncs)
		out[i] = folded
		if _, ok := literal(folded); !ok {
			allConst = false
		}
	}
	return out, allConst
}
