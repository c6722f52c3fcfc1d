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

package tinder

import "github.com/hyomoto/firestarter/firestarter"

// Register populates reg with every operation in the catalog, keyed by
// the rule identity a Tinder grammar is expected to produce for it. A
// host assembling a Tinder grammar registers these rule identities
// against the same names used here.
func Register(reg *firestarter.Registry) {
	reg.Register("String", firestarter.OpEntry{New: NewString, Schema: firestarter.Schema{
		firestarter.Req("text", IsLeaf),
	}})
	reg.Register("Number", firestarter.OpEntry{New: NewNumber, Schema: firestarter.Schema{
		firestarter.Req("text", IsLeaf),
	}})
	reg.Register("Constant", firestarter.OpEntry{New: NewConstant, Schema: firestarter.Schema{
		firestarter.Req("text", IsLeaf),
	}})
	reg.Register("Identifier", firestarter.OpEntry{New: NewIdentifier, Schema: firestarter.Schema{
		firestarter.Req("name", IsLeaf),
	}})
	reg.Register("Array", firestarter.OpEntry{New: NewArray, Schema: firestarter.Schema{
		firestarter.RestOf("elements", IsNode),
	}})
	reg.Register("KeyValuePair", firestarter.OpEntry{New: NewKeyValuePair, Schema: firestarter.Schema{
		firestarter.Req("key", firestarter.Any),
		firestarter.Req("value", IsNode),
	}})
	reg.Register("Table", firestarter.OpEntry{New: NewTable, Schema: firestarter.Schema{
		firestarter.RestOf("pairs", firestarter.Any),
	}})

	reg.Register("Binary", firestarter.OpEntry{New: NewBinary, Schema: firestarter.Schema{
		firestarter.RestOf("operands", firestarter.Any),
	}})
	reg.Register("Unary", firestarter.OpEntry{New: NewUnary, Schema: firestarter.Schema{
		firestarter.Req("op", IsLeaf),
		firestarter.Req("operand", firestarter.Any),
	}})

	reg.Register("In", firestarter.OpEntry{New: NewIn, Schema: firestarter.Schema{
		firestarter.Req("value", IsNode),
		firestarter.RestOf("ops", IsNode),
	}})
	// "From" is the indexing access operator (the left operand indexes
	// into the right); the import-from-library sugar is registered
	// separately as "FromImport" below despite sharing a surface keyword,
	// since the grammar routes them through distinct rule identities.
	reg.Register("From", firestarter.OpEntry{New: NewFrom, Schema: firestarter.Schema{
		firestarter.Req("index", IsNode),
		firestarter.Req("container", IsNode),
	}})
	reg.Register("At", firestarter.OpEntry{New: NewAt, Schema: firestarter.Schema{
		firestarter.Req("index", IsNode),
		firestarter.Req("container", IsNode),
	}})

	reg.Register("And", firestarter.OpEntry{New: NewAnd, Schema: firestarter.Schema{
		firestarter.RestOf("ops", IsNode),
	}})
	reg.Register("Or", firestarter.OpEntry{New: NewOr, Schema: firestarter.Schema{
		firestarter.RestOf("ops", IsNode),
	}})
	reg.Register("Not", firestarter.OpEntry{New: NewNot, Schema: firestarter.Schema{
		firestarter.Req("op", IsNode),
	}})

	reg.Register("Set", firestarter.OpEntry{New: NewSet, Schema: firestarter.Schema{
		firestarter.RestOf("args", firestarter.Any),
	}})
	reg.Register("Inc", firestarter.OpEntry{New: NewInc, Schema: firestarter.Schema{
		firestarter.Req("ident", firestarter.Any),
		firestarter.Opt("step", IsNode),
	}})
	reg.Register("Dec", firestarter.OpEntry{New: NewDec, Schema: firestarter.Schema{
		firestarter.Req("ident", firestarter.Any),
		firestarter.Opt("step", IsNode),
	}})
	reg.Register("Swap", firestarter.OpEntry{New: NewSwap, Schema: firestarter.Schema{
		firestarter.Req("a", firestarter.Any),
		firestarter.Req("b", firestarter.Any),
	}})
	reg.Register("Const", firestarter.OpEntry{New: NewConst, Schema: firestarter.Schema{
		firestarter.Req("ident", firestarter.Any),
		firestarter.Req("value", IsNode),
	}})

	reg.Register("Put", firestarter.OpEntry{New: NewPut, Schema: firestarter.Schema{
		firestarter.Req("value", IsNode),
		firestarter.Req("position", IsLeaf),
		firestarter.Req("ident", firestarter.Any),
	}})

	reg.Register("Write", firestarter.OpEntry{New: NewWrite, Schema: firestarter.Schema{
		firestarter.Req("text", IsNode),
		firestarter.Req("target", firestarter.Any),
	}})
	reg.Register("Input", firestarter.OpEntry{New: NewInput, Schema: firestarter.Schema{
		firestarter.Req("prompt", IsNode),
		firestarter.Req("target", firestarter.Any),
	}})

	reg.Register("Jump", firestarter.OpEntry{New: NewJump, Schema: firestarter.Schema{
		firestarter.Req("target", IsNode),
	}})
	reg.Register("JumpAhead", firestarter.OpEntry{New: NewJumpAhead, Schema: firestarter.Schema{
		firestarter.Req("n", IsNode),
	}})
	reg.Register("Return", firestarter.OpEntry{New: NewReturn, Schema: firestarter.Schema{}})
	reg.Register("Goto", firestarter.OpEntry{New: NewGoto, Schema: firestarter.Schema{
		firestarter.Req("label", firestarter.Any),
		firestarter.Opt("otherwise", IsNode),
	}})
	reg.Register("Stop", firestarter.OpEntry{New: NewStop, Schema: firestarter.Schema{}})
	reg.Register("Yield", firestarter.OpEntry{New: NewYield, Schema: firestarter.Schema{
		firestarter.Opt("payload", IsNode),
	}})
	reg.Register("Interrupt", firestarter.OpEntry{New: NewInterrupt, Schema: firestarter.Schema{
		firestarter.Req("exceptionName", IsLeaf),
		firestarter.Req("label", firestarter.Any),
	}})
	reg.Register("Import", firestarter.OpEntry{New: NewImport, Schema: firestarter.Schema{
		firestarter.Req("library", firestarter.Any),
		firestarter.Opt("alias", firestarter.Any),
	}})
	reg.Register("FromImport", firestarter.OpEntry{New: NewFromImport, Schema: firestarter.Schema{
		firestarter.Req("library", firestarter.Any),
		firestarter.RestOf("symbols", firestarter.Any),
	}})

	reg.Register("If", firestarter.OpEntry{New: NewIf, Schema: firestarter.Schema{
		firestarter.Req("cond", IsNode),
	}})
	reg.Register("Else", firestarter.OpEntry{New: NewElse, Schema: firestarter.Schema{
		firestarter.Opt("cond", IsNode),
	}})
	reg.Register("EndIf", firestarter.OpEntry{New: NewEndIf, Schema: firestarter.Schema{}})
	// key is declared last, not between var and iterable: bindArgs'
	// Optional slot greedily consumes whatever argument sits at its
	// position, so an Opt sandwiched between two Req slots would, when
	// key is omitted, swallow the iterable argument and leave iterable's
	// Req slot starved. A trailing Optional has no such ambiguity.
	reg.Register("Foreach", firestarter.OpEntry{New: NewForeach, Schema: firestarter.Schema{
		firestarter.Req("var", firestarter.Any),
		firestarter.Req("iterable", IsNode),
		firestarter.Opt("key", firestarter.Any),
	}})
	reg.Register("Foriter", firestarter.OpEntry{New: NewForiter, Schema: firestarter.Schema{
		firestarter.Req("init", IsNode),
		firestarter.Req("cond", IsNode),
		firestarter.Req("step", IsNode),
	}})
	reg.Register("EndFor", firestarter.OpEntry{New: NewEndFor, Schema: firestarter.Schema{}})

	reg.Register("Statement", firestarter.OpEntry{New: NewStatement, Schema: firestarter.Schema{
		firestarter.Req("op", IsNode),
		firestarter.Opt("cond", IsNode),
	}})

	reg.Register("Function", firestarter.OpEntry{New: NewFunction, Schema: firestarter.Schema{
		firestarter.Req("ident", firestarter.Any),
		firestarter.RestOf("args", IsNode),
	}})
}
