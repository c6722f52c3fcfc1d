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

// Package bootstrap defines the PEG-of-PEG grammar: a Grammar, built by
// hand from peg's own rule primitives, capable of parsing grammar-text
// descriptions of other grammars. MakeGrammar is the public entry point:
// it parses text with the bootstrap grammar, walks the resulting AST, and
// emits a fresh peg.Grammar.
package bootstrap

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyomoto/firestarter/peg"
)

// PEG is the bootstrap grammar for PEG grammar text itself. Its shape
// mirrors a classic PEG-of-PEG: a Grammar is one or more Rule/Comment
// lines; a Rule is an optional strict marker, an identifier, a priority
// marker, an expression, and an optional trailing comment macro.
var PEG = buildBootstrap()

func buildBootstrap() *peg.Grammar {
	g := peg.NewGrammar(peg.Flags{Skip: peg.SkipSpaces, Flatten: true})

	ref := peg.NewReference

	g.Register("Grammar", peg.NewOneOrMore(peg.NewChoice(ref("Rule"), ref("Newline"), ref("Comment"))))
	g.Register("Rule", peg.NewSequence(
		peg.NewChoice(ref("Strict"), ref("Identifier")),
		ref("Priority"),
		ref("Expression"),
		peg.NewOptional(ref("Comment")),
	))
	g.Register("Priority", peg.NewChoice(
		peg.NewLiteral("<-"),
		peg.NewLiteral("--"),
		peg.NewLiteral("->"),
		peg.NewLiteral("<>"),
		peg.NewLiteral("~>"),
	))
	g.Register("Comment", peg.NewSequence(peg.NewLiteral("#"), peg.NewPattern(regexp.MustCompile(`[^\n]*`))))
	g.Register("Expression", ref("Choice"))
	g.Register("Choice", peg.NewSequence(ref("Sequence"), peg.NewZeroOrMore(peg.NewSequence(peg.NewLiteral("/"), ref("Sequence")))))
	g.Register("Sequence", peg.NewZeroOrMore(peg.NewChoice(ref("Prefix"), ref("Suffix"))))
	g.Register("Prefix", peg.NewSequence(ref("Primary"), peg.NewOptional(ref("Quantifier"))))
	g.Register("Suffix", peg.NewSequence(ref("Predicate"), ref("Primary")))
	g.Register("Primary", peg.NewChoice(ref("String"), ref("RegEx"), ref("Identifier"), ref("Group")))
	g.Register("Group", peg.NewSequence(peg.NewLiteral("("), ref("Expression"), peg.NewLiteral(")")))
	g.Register("Predicate", peg.NewChoice(peg.NewLiteral("&"), peg.NewLiteral("!")))
	g.Register("Quantifier", peg.NewChoice(peg.NewLiteral("*"), peg.NewLiteral("+"), peg.NewLiteral("?")))
	g.Register("String", peg.NewPattern(regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)))
	// Go's RE2 engine has no backreferences, so unlike the original's
	// `~(['"])(?:\\.|(?!\1).)*\1`, the two quote styles are spelled out
	// as separate alternatives instead of matched against a captured
	// opening delimiter.
	g.Register("RegEx", peg.NewPattern(regexp.MustCompile(`~(?:"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*')`)))
	g.Register("Strict", peg.NewSequence(peg.NewLiteral("["), ref("Identifier"), peg.NewLiteral("]")))
	g.Register("Identifier", peg.NewPattern(regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*`)))
	g.Register("Newline", peg.NewPattern(regexp.MustCompile(`\n|\r\n|\r`)))

	g.Discard("Newline")
	if err := g.Resolve(); err != nil {
		panic(fmt.Sprintf("bootstrap: %v", err))
	}
	return g
}

// ParseError wraps a failure encountered while parsing or building a
// grammar from text, carrying enough context to render a diagnostic
// without the caller needing to know about the bootstrap grammar.
type ParseError struct {
	msg string
}

func (e *ParseError) Error() string { return e.msg }

func errf(format string, args ...interface{}) error {
	return &ParseError{msg: fmt.Sprintf(format, args...)}
}

// MakeGrammar parses text with the bootstrap grammar and walks the result
// into a fresh, resolved peg.Grammar using flags for whitespace handling
// and AST flattening.
func MakeGrammar(text string, flags peg.Flags) (*peg.Grammar, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errf("empty grammar definition")
	}
	ast, err := PEG.Parse("grammar", text)
	if err != nil {
		return nil, errf("failed to parse grammar text: %v", err)
	}
	if len(ast.Matches) == 0 {
		return nil, errf("grammar text produced no rules")
	}

	v := &visitor{source: text}
	g := peg.NewGrammar(flags)
	rules := ast.Matches
	if len(rules) == 1 && rules[0].Rule.Identity() == "Grammar" {
		rules = rules[0].Children
	}
	for _, top := range rules {
		if top.Rule.Identity() == "Comment" {
			continue
		}
		name, rule := v.visitRule(top)
		g.Register(name, rule)
	}
	for name, macro := range v.macros {
		g.SetMacro(name, macro)
	}
	for name := range v.discard {
		g.Discard(name)
	}
	for name := range v.hoist {
		g.Hoist(name)
	}
	for name := range v.merge {
		g.Merge(name)
	}
	for name := range v.conditional {
		g.Conditional(name)
	}
	if err := g.Resolve(); err != nil {
		return nil, err
	}
	return g, nil
}

// visitor walks a bootstrap AST, collecting the directive sets alongside
// building concrete rule trees.
type visitor struct {
	source      string
	macros      map[string]string
	discard     map[string]bool
	hoist       map[string]bool
	merge       map[string]bool
	conditional map[string]bool
}

func (v *visitor) slice(m *peg.Match) string { return m.Slice(v.source) }

func (v *visitor) visit(m *peg.Match) interface{} {
	switch m.Rule.Identity() {
	case "Expression":
		// Expression is a pure alias for Choice; unwrap the Reference's
		// single wrapped child rather than dispatching on its own identity.
		return v.visit(m.Children[0])
	case "Priority":
		return v.slice(m)
	case "Strict":
		return v.visitIdentifier(m.Children[0])
	case "Comment":
		// The match span can begin with the whitespace skipped before "#".
		text := strings.TrimSpace(v.slice(m))
		return peg.NewLiteral(strings.TrimSpace(strings.TrimPrefix(text, "#")))
	case "Choice":
		return v.visitChoice(m)
	case "Sequence":
		return v.visitSequence(m)
	case "Prefix":
		return v.visitPrefix(m)
	case "Suffix":
		return v.visitSuffix(m)
	case "Quantifier":
		return v.visitQuantifier(m)
	case "Primary":
		// A bare identifier here names another rule, unlike the same
		// "Identifier" node appearing directly under a Rule (its own
		// name, handled by visitRule without going through Primary):
		// build the reference by hand rather than falling through to
		// the generic dispatch, which returns a plain string.
		child := m.Children[0]
		if child.Rule.Identity() == "Identifier" {
			return peg.Rule(peg.NewReference(v.visitIdentifier(child)))
		}
		return v.visit(child)
	case "Group":
		return v.visit(m.Children[0])
	case "Predicate":
		return v.visitPredicate(m)
	case "Identifier":
		return v.visitIdentifier(m)
	case "String":
		return v.visitString(m)
	case "RegEx":
		return v.visitRegex(m)
	default:
		panic(errf("bootstrap: unknown node identity %q", m.Rule.Identity()))
	}
}

func (v *visitor) visitRule(m *peg.Match) (string, peg.Rule) {
	if v.macros == nil {
		v.macros = map[string]string{}
		v.discard = map[string]bool{}
		v.hoist = map[string]bool{}
		v.merge = map[string]bool{}
		v.conditional = map[string]bool{}
	}
	strict := m.Children[0].Rule.Identity() == "Strict"
	name := v.visit(m.Children[0]).(string)
	switch v.visit(m.Children[1]).(string) {
	case "--":
		v.discard[name] = true
	case "->":
		v.hoist[name] = true
	case "<>":
		v.merge[name] = true
	case "~>":
		v.conditional[name] = true
	}
	rule := v.visit(m.Children[2]).(peg.Rule)
	rule.SetStrict(strict)
	if len(m.Children) > 3 {
		macro := v.visit(m.Children[3]).(*peg.Literal)
		v.macros[name] = macro.Text
	}
	return name, rule
}

func (v *visitor) visitChoice(m *peg.Match) peg.Rule {
	rules := make([]peg.Rule, len(m.Children))
	for i, c := range m.Children {
		rules[i] = v.visit(c).(peg.Rule)
	}
	if len(rules) == 1 {
		return rules[0]
	}
	return peg.NewChoice(rules...)
}

func (v *visitor) visitSequence(m *peg.Match) peg.Rule {
	rules := make([]peg.Rule, len(m.Children))
	for i, c := range m.Children {
		rules[i] = v.visit(c).(peg.Rule)
	}
	if len(rules) == 1 {
		return rules[0]
	}
	return peg.NewSequence(rules...)
}

func (v *visitor) visitPrefix(m *peg.Match) peg.Rule {
	rule := v.visit(m.Children[0]).(peg.Rule)
	if len(m.Children) == 2 {
		wrap := v.visit(m.Children[1]).(func(peg.Rule) peg.Rule)
		return wrap(rule)
	}
	return rule
}

func (v *visitor) visitSuffix(m *peg.Match) peg.Rule {
	wrap := v.visit(m.Children[0]).(func(peg.Rule) peg.Rule)
	rule := v.visit(m.Children[1]).(peg.Rule)
	return wrap(rule)
}

func (v *visitor) visitQuantifier(m *peg.Match) func(peg.Rule) peg.Rule {
	switch v.slice(m) {
	case "+":
		return func(r peg.Rule) peg.Rule { return peg.NewOneOrMore(r) }
	case "*":
		return func(r peg.Rule) peg.Rule { return peg.NewZeroOrMore(r) }
	case "?":
		return func(r peg.Rule) peg.Rule { return peg.NewOptional(r) }
	}
	panic(errf("bootstrap: unknown quantifier %q", v.slice(m)))
}

func (v *visitor) visitPredicate(m *peg.Match) func(peg.Rule) peg.Rule {
	switch v.slice(m) {
	case "&":
		return func(r peg.Rule) peg.Rule { return peg.NewAndPredicate(r) }
	case "!":
		return func(r peg.Rule) peg.Rule { return peg.NewNotPredicate(r) }
	}
	panic(errf("bootstrap: unknown predicate %q", v.slice(m)))
}

func (v *visitor) visitIdentifier(m *peg.Match) string { return v.slice(m) }

func (v *visitor) visitString(m *peg.Match) peg.Rule {
	text := v.slice(m)
	return peg.NewLiteral(unescape(text[1 : len(text)-1]))
}

// unescape interprets backslash escapes inside a grammar string literal,
// mirroring Python's str.encode().decode("unicode_escape") for the small
// set of escapes grammar text actually uses.
func unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '\'', '"':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func (v *visitor) visitRegex(m *peg.Match) peg.Rule {
	text := v.slice(m)
	pattern := text[2 : len(text)-1]
	return peg.NewPattern(regexp.MustCompile(pattern))
}
