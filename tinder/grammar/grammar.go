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

// Package grammar builds the concrete Tinder surface syntax: the one
// peg.Grammar whose rule identities line up, one for one, with the op
// catalog tinder.Register installs into a firestarter.Registry. Where
// peg/bootstrap builds the grammar-of-grammars by hand in Go (it has no
// earlier grammar to parse itself with), this package does the same
// thing one level up: Tinder's own surface syntax is assembled directly
// from peg combinators rather than written as grammar text, since no
// bootstrap grammar for Tinder itself exists to parse one.
package grammar

import (
	"regexp"

	"github.com/hyomoto/firestarter/peg"
)

// id sets rule's identity to name and returns it, for assigning an
// op's rule identity inline at the point a production is built.
func id(name string, rule peg.Rule) peg.Rule {
	rule.SetIdentity(name)
	return rule
}

// kw matches a bare keyword with a trailing word boundary, so "in"
// never matches the first two letters of "index". It carries no
// identity: flatten erases it from its parent's children once matched.
func kw(word string) *peg.Pattern {
	return peg.NewPattern(regexp.MustCompile(regexp.QuoteMeta(word) + `\b`))
}

// leaf matches pattern and tags the resulting token with identity, for
// the schema slots (Put's position, Interrupt's exception name, every
// operator token) that want the raw firestarter.Leaf rather than a
// constructed value op.
func leaf(identity, pattern string) *peg.Pattern {
	p := peg.NewPattern(regexp.MustCompile(pattern))
	p.SetIdentity(identity)
	return p
}

// commaSeparated matches item (comma item)*, flattening to one match
// per item with no trace of the separators or grouping left behind.
func commaSeparated(item peg.Rule) *peg.Sequence {
	return peg.NewSequence(item, peg.NewZeroOrMore(peg.NewSequence(peg.NewLiteral(","), item)))
}

// zeroOrMoreCommaSeparated is commaSeparated, but the whole list may be
// absent (an empty call's arg list, an empty array or table literal).
func zeroOrMoreCommaSeparated(item peg.Rule) *peg.Optional {
	return peg.NewOptional(commaSeparated(item))
}

// Grammar is the resolved Tinder grammar: Parse it once per script and
// feed the AST to firestarter.Compile against a registry built by
// tinder.Register.
var Grammar = build()

func build() *peg.Grammar {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipSpaces, Flatten: true})

	// --- literals and identifiers ---

	numberText := leaf("NumberText", `[0-9]+(?:\.[0-9]+)?`)
	number := id("Number", peg.NewSequence(numberText))

	stringText := leaf("StringText", `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)
	str := id("String", peg.NewSequence(stringText))

	constantText := leaf("ConstantText", `(?:true|True|false|False|null|Null|nil)\b`)
	constant := id("Constant", peg.NewSequence(constantText))

	identText := leaf("IdentifierText", `[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*`)
	identifier := id("Identifier", peg.NewSequence(identText))

	g.SetMacro("Number", "a number")
	g.SetMacro("String", "a quoted string")
	g.SetMacro("Identifier", "an identifier")

	// exprRef stands in for the as-yet-unbuilt top-level expression
	// wherever Primary needs to recurse into one (grouping, call
	// arguments, array elements, table values). It resolves once
	// "ExpressionEntry" is registered below, the same forward-reference
	// mechanism a named grammar rule uses, borrowed here to close the
	// Primary -> Group -> Expression -> ... -> Primary cycle.
	exprRef := peg.NewReference("ExpressionEntry")

	group := peg.NewSequence(peg.NewLiteral("("), exprRef, peg.NewLiteral(")"))

	kvKey := peg.NewChoice(str, identifier)
	kvPair := id("KeyValuePair", peg.NewSequence(kvKey, peg.NewLiteral(":"), exprRef))
	table := id("Table", peg.NewSequence(peg.NewLiteral("{"), zeroOrMoreCommaSeparated(kvPair), peg.NewLiteral("}")))
	array := id("Array", peg.NewSequence(peg.NewLiteral("["), zeroOrMoreCommaSeparated(exprRef), peg.NewLiteral("]")))

	funcCall := id("Function", peg.NewSequence(identifier, peg.NewLiteral("("), zeroOrMoreCommaSeparated(exprRef), peg.NewLiteral(")")))

	primary := peg.NewChoice(number, str, constant, funcCall, array, table, group, identifier)

	// --- unary, access, binary, logic ---

	unaryOp := leaf("UnaryOp", `-|not\b`)
	unary := id("Unary", peg.NewSequence(unaryOp, primary))
	unaryExpr := peg.NewChoice(unary, primary)

	inForm := id("In", peg.NewSequence(unaryExpr, kw("in"), commaSeparated(unaryExpr)))
	fromForm := id("From", peg.NewSequence(unaryExpr, kw("from"), unaryExpr))
	atForm := id("At", peg.NewSequence(unaryExpr, kw("at"), unaryExpr))
	accessExpr := peg.NewChoice(inForm, fromForm, atForm, unaryExpr)

	// binOp lists longer operators before their single-character
	// prefixes (<=, >=, ==, != before <, >) since Go's regexp chooses
	// alternatives in the order written, not by longest match.
	binOp := leaf("BinOp", `<=|>=|==|!=|\+|-|\*|/|<|>`)
	binaryExpr := id("Binary", peg.NewSequence(accessExpr, peg.NewZeroOrMore(peg.NewSequence(binOp, accessExpr))))

	// And/Or only construct their op when the keyword genuinely chains
	// two or more operands (OneOrMore); a lone operand falls through
	// unwrapped; And/Or's own Eval has no such collapse (unlike Binary's
	// NewBinary), so wrapping unconditionally would boolean-coerce every
	// plain value passed through it.
	andExpr := peg.NewChoice(
		id("And", peg.NewSequence(binaryExpr, peg.NewOneOrMore(peg.NewSequence(kw("and"), binaryExpr)))),
		binaryExpr,
	)
	orExpr := peg.NewChoice(
		id("Or", peg.NewSequence(andExpr, peg.NewOneOrMore(peg.NewSequence(kw("or"), andExpr)))),
		andExpr,
	)

	exprEntry := peg.NewSequence(orExpr)
	expr := orExpr

	// --- statements ---

	identList := commaSeparated(identifier)
	exprList := commaSeparated(expr)
	setStmt := id("Set", peg.NewSequence(kw("set"), identList, kw("to"), exprList))

	stepClause := peg.NewOptional(peg.NewSequence(kw("by"), expr))
	incStmt := id("Inc", peg.NewSequence(kw("inc"), identifier, stepClause))
	decStmt := id("Dec", peg.NewSequence(kw("dec"), identifier, stepClause))
	swapStmt := id("Swap", peg.NewSequence(kw("swap"), identifier, peg.NewLiteral(","), identifier))
	constStmt := id("Const", peg.NewSequence(kw("const"), identifier, kw("to"), expr))

	putPos := leaf("Position", `[Bb]efore\b|[Aa]fter\b`)
	putStmt := id("Put", peg.NewSequence(kw("put"), expr, putPos, identifier))

	writeStmt := id("Write", peg.NewSequence(kw("write"), expr, kw("to"), identifier))
	inputStmt := id("Input", peg.NewSequence(kw("input"), expr, kw("to"), identifier))

	// gotoOtherwise supplies Goto's optional second argument: reaching the
	// label unconditionally falls through as a no-op unless the
	// declaration itself names a line to redirect to, in which case
	// Goto.Eval jumps there instead.
	gotoOtherwise := peg.NewOptional(peg.NewSequence(kw("otherwise"), expr))
	gotoStmt := id("Goto", peg.NewSequence(peg.NewLiteral("#"), identifier, gotoOtherwise))

	jumpAheadStmt := id("JumpAhead", peg.NewSequence(kw("jumpahead"), expr))
	jumpStmt := id("Jump", peg.NewSequence(kw("jump"), expr))
	returnStmt := id("Return", peg.NewSequence(kw("return")))
	stopStmt := id("Stop", peg.NewSequence(kw("stop")))
	yieldStmt := id("Yield", peg.NewSequence(kw("yield"), peg.NewOptional(expr)))

	exceptionName := leaf("ExceptionName", `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)
	interruptStmt := id("Interrupt", peg.NewSequence(kw("interrupt"), exceptionName, identifier))

	importAlias := peg.NewOptional(peg.NewSequence(kw("as"), identifier))
	importStmt := id("Import", peg.NewSequence(kw("import"), identifier, importAlias))
	fromImportStmt := id("FromImport", peg.NewSequence(kw("from"), identifier, kw("import"), commaSeparated(identifier)))

	ifStmt := id("If", peg.NewSequence(kw("if"), expr))
	elseStmt := id("Else", peg.NewSequence(kw("else"), peg.NewOptional(expr)))
	endIfStmt := id("EndIf", peg.NewSequence(kw("endif")))

	// key trails iterable, not var: Foreach's schema declares its
	// Optional key slot last (see tinder/register.go), so the grammar
	// must present arguments in the same [var, iterable, key?] order.
	foreachKey := peg.NewOptional(peg.NewSequence(peg.NewLiteral(","), identifier))
	foreachStmt := id("Foreach", peg.NewSequence(kw("foreach"), identifier, kw("in"), expr, foreachKey))

	// assignFragment fills Foriter's init/step slots: a bare Set/Inc/Dec
	// node, not a line-level Statement. It uses a single-target Set form
	// rather than setStmt, whose greedy value list would swallow the
	// `, cond, step` clauses that follow it inside a for header.
	singleSet := id("Set", peg.NewSequence(kw("set"), identifier, kw("to"), expr))
	assignFragment := peg.NewChoice(singleSet, incStmt, decStmt)
	foriterStmt := id("Foriter", peg.NewSequence(kw("for"), assignFragment, peg.NewLiteral(","), expr, peg.NewLiteral(","), assignFragment))
	endForStmt := id("EndFor", peg.NewSequence(kw("endfor")))

	exprStmt := expr

	innerStatement := peg.NewChoice(
		gotoStmt, interruptStmt,
		foriterStmt, foreachStmt, endForStmt,
		ifStmt, elseStmt, endIfStmt,
		constStmt, incStmt, decStmt, swapStmt, setStmt,
		putStmt, writeStmt, inputStmt,
		jumpAheadStmt, jumpStmt, returnStmt, stopStmt, yieldStmt,
		importStmt, fromImportStmt,
		exprStmt,
	)

	ifSuffix := peg.NewOptional(peg.NewSequence(kw("if"), expr))
	lineBody := id("Statement", peg.NewSequence(innerStatement, ifSuffix))

	blankLines := peg.NewZeroOrMore(peg.NewPattern(regexp.MustCompile(`[\n\r]`)))
	terminator := peg.NewPattern(regexp.MustCompile(`\r\n|\n|\r|\z`))
	lineSeq := peg.NewSequence(blankLines, peg.NewOptional(peg.NewSequence(lineBody, terminator)))

	// "Line" must be the first rule registered: Grammar.Register makes
	// the first-registered rule the parse root, and Parse drives the
	// script one Line at a time. "ExpressionEntry" is registered only so
	// exprRef (the Reference planted back in Primary's Group production)
	// has something to resolve against; it is never itself a root.
	g.Register("Line", lineSeq)
	g.Hoist("Line")
	g.Register("ExpressionEntry", exprEntry)
	g.Hoist("ExpressionEntry")

	if err := g.Resolve(); err != nil {
		panic("tinder/grammar: " + err.Error())
	}
	return g
}
