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

package peg

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyomoto/firestarter/token"
)

// Whitespace selects which class of whitespace a Grammar skips between
// primitive matches.
type Whitespace int

const (
	SkipNone Whitespace = iota
	SkipSpaces
	SkipNewlines
	SkipAny
)

var skipPatterns = map[Whitespace]*regexp.Regexp{
	SkipSpaces:   regexp.MustCompile(`[ \t]+`),
	SkipNewlines: regexp.MustCompile(`\n|\r\n|\r`),
	SkipAny:      regexp.MustCompile(`\s+`),
}

// Flags configures a Grammar's whitespace handling and whether post-parse
// AST flattening is applied.
type Flags struct {
	Skip    Whitespace
	Flatten bool
}

// Grammar is a registry of named rules together with the post-processing
// directives and whitespace policy that govern a top-level Parse.
type Grammar struct {
	Flags Flags

	root     Rule
	rootName string
	rules    map[string]Rule
	order    []string // registration order, for resolve()'s deterministic passes
	macros   map[string]string

	discardSet     map[string]bool
	hoistSet       map[string]bool
	mergeSet       map[string]bool
	conditionalSet map[string]bool

	resolved bool
}

// NewGrammar returns an empty Grammar with the given flags.
func NewGrammar(flags Flags) *Grammar {
	return &Grammar{
		Flags:          flags,
		rules:          map[string]Rule{},
		macros:         map[string]string{},
		discardSet:     map[string]bool{},
		hoistSet:       map[string]bool{},
		mergeSet:       map[string]bool{},
		conditionalSet: map[string]bool{},
	}
}

// Register records rule under name; the first rule registered becomes the
// grammar's root. Registering marks the grammar dirty, requiring a
// subsequent Resolve before Parse.
func (g *Grammar) Register(name string, rule Rule) {
	rule.SetIdentity(name)
	if _, exists := g.rules[name]; !exists {
		g.order = append(g.order, name)
	}
	g.rules[name] = rule
	if g.root == nil {
		g.root = rule
		g.rootName = name
	}
	g.resolved = false
}

// SetMacro records the "Expected X" diagnostic text for name.
func (g *Grammar) SetMacro(name, macro string) { g.macros[name] = macro }

// Discard, Hoist, Merge, and Conditional add name to the corresponding
// post-parse directive set.
func (g *Grammar) Discard(name string)     { g.discardSet[name] = true }
func (g *Grammar) Hoist(name string)       { g.hoistSet[name] = true }
func (g *Grammar) Merge(name string)       { g.mergeSet[name] = true }
func (g *Grammar) Conditional(name string) { g.conditionalSet[name] = true }

// CircularDependencyError reports that resolve could not make progress
// because some set of rules refer only to each other or to missing names.
type CircularDependencyError struct {
	Name string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("peg: circular or unresolved reference to %q", e.Name)
}

// MissingRuleError reports a Reference to a name never registered.
type MissingRuleError struct {
	Name string
}

func (e *MissingRuleError) Error() string {
	return fmt.Sprintf("peg: reference to undefined rule %q", e.Name)
}

// Resolve replaces every Reference in the grammar with the rule it names,
// making as many passes as necessary for forward references. It is a
// no-op if the grammar is already resolved.
func (g *Grammar) Resolve() error {
	if g.resolved {
		return nil
	}
	for progress := true; progress; {
		progress = false
		allResolved := true
		for _, name := range g.order {
			if resolveRule(g, g.rules[name], map[Rule]bool{}, &progress) {
				continue
			}
			allResolved = false
		}
		if allResolved {
			g.resolved = true
			return nil
		}
	}
	for _, name := range g.order {
		if err := g.findUnresolved(g.rules[name], map[Rule]bool{}); err != nil {
			return err
		}
	}
	return nil
}

// resolveRule walks rule's structure, resolving any direct Reference
// children it can. It returns true if rule (and everything reachable
// through already-resolved references) is now fully resolved.
func resolveRule(g *Grammar, rule Rule, seen map[Rule]bool, progress *bool) bool {
	if seen[rule] {
		return true
	}
	seen[rule] = true
	switch r := rule.(type) {
	case *Reference:
		if r.Target != nil {
			return resolveRule(g, r.Target, seen, progress)
		}
		target, ok := g.rules[r.Name]
		if !ok {
			return false
		}
		if ref, isRef := target.(*Reference); isRef && ref.Target == nil {
			return false
		}
		r.Target = target
		*progress = true
		return resolveRule(g, target, seen, progress)
	case *Sequence:
		ok := true
		for _, c := range r.Children {
			if !resolveRule(g, c, seen, progress) {
				ok = false
			}
		}
		return ok
	case *Choice:
		ok := true
		for _, c := range r.Children {
			if !resolveRule(g, c, seen, progress) {
				ok = false
			}
		}
		return ok
	case *ZeroOrMore:
		return resolveRule(g, r.Child, seen, progress)
	case *OneOrMore:
		return resolveRule(g, r.Child, seen, progress)
	case *Optional:
		return resolveRule(g, r.Child, seen, progress)
	case *AndPredicate:
		return resolveRule(g, r.Child, seen, progress)
	case *NotPredicate:
		return resolveRule(g, r.Child, seen, progress)
	default:
		return true
	}
}

// findUnresolved walks rule looking for a Reference that never resolved,
// distinguishing a name that was never registered (MissingRuleError) from
// one that exists but forms a reference cycle with no non-Reference base
// case (CircularDependencyError).
func (g *Grammar) findUnresolved(rule Rule, seen map[Rule]bool) error {
	if seen[rule] {
		return nil
	}
	seen[rule] = true
	switch r := rule.(type) {
	case *Reference:
		if r.Target != nil {
			return g.findUnresolved(r.Target, seen)
		}
		if _, ok := g.rules[r.Name]; !ok {
			return &MissingRuleError{Name: r.Name}
		}
		return &CircularDependencyError{Name: r.Name}
	case *Sequence:
		for _, c := range r.Children {
			if err := g.findUnresolved(c, seen); err != nil {
				return err
			}
		}
	case *Choice:
		for _, c := range r.Children {
			if err := g.findUnresolved(c, seen); err != nil {
				return err
			}
		}
	case *ZeroOrMore:
		return g.findUnresolved(r.Child, seen)
	case *OneOrMore:
		return g.findUnresolved(r.Child, seen)
	case *Optional:
		return g.findUnresolved(r.Child, seen)
	case *AndPredicate:
		return g.findUnresolved(r.Child, seen)
	case *NotPredicate:
		return g.findUnresolved(r.Child, seen)
	}
	return nil
}

// ParseError is raised when parse fails to consume the entire input; it
// carries enough of the failure trace to render a caret diagnostic.
type ParseError struct {
	Pos      token.Position
	Source   string
	Trail    []string // rule identities from deepest failure up to the root
	Expected []string // macro strings of rules that could have matched here
	Negated  bool     // true if the deepest failure was a NotPredicate
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", e.Pos)
	if e.Negated {
		b.WriteString("unexpected token here\n")
	} else if len(e.Expected) > 0 {
		fmt.Fprintf(&b, "expected %s\n", strings.Join(e.Expected, " or "))
	} else {
		b.WriteString("parse error\n")
	}
	if line := lineText(e.Source, e.Pos.Offset); line != "" {
		fmt.Fprintf(&b, "    %s\n    %s^\n", line, strings.Repeat(" ", e.Pos.Column-1))
	}
	if len(e.Trail) > 0 {
		fmt.Fprintf(&b, "    while matching %s\n", strings.Join(e.Trail, " -> "))
	}
	return b.String()
}

func lineText(source string, offset int) string {
	if offset < 0 || offset > len(source) {
		return ""
	}
	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := strings.IndexByte(source[offset:], '\n')
	if end < 0 {
		return source[start:]
	}
	return source[start : offset+end]
}

// Parse resolves the grammar if necessary, then repeatedly matches the
// root rule against input starting at 0, accumulating one top-level Match
// per repetition until the entire input is consumed.
func (g *Grammar) Parse(name, input string) (*AST, error) {
	if err := g.Resolve(); err != nil {
		return nil, err
	}
	skip := skipPatterns[g.Flags.Skip]
	file := token.NewFile(name, []byte(input))

	var matches []*Match
	var lines []int
	pos := 0
	for pos < len(input) {
		m, matchErr := g.root.Consume(input, pos, skip)
		if matchErr != nil {
			return nil, g.synthesizeParseError(matchErr, input, file)
		}
		if m.End == pos {
			return nil, &ParseError{
				Pos:    file.Pos(pos),
				Source: input,
				Trail:  []string{g.rootName},
			}
		}
		if g.Flags.Flatten {
			for _, flat := range g.flatten(m) {
				matches = append(matches, flat)
				lines = append(lines, file.Pos(flat.Start).Line)
			}
		} else {
			matches = append(matches, m)
			lines = append(lines, file.Pos(m.Start).Line)
		}
		pos = m.End
	}
	return &AST{LineNumbers: lines, Matches: matches, SourceText: input}, nil
}

// synthesizeParseError finds the deepest, most informative node in err's
// tree and renders it as a ParseError.
func (g *Grammar) synthesizeParseError(err *MatchError, input string, file *token.File) *ParseError {
	deepest := deepestError(err)
	pos := file.Pos(deepest.Pos)

	var trail []string
	for e := deepest; e != nil; e = e.Parent {
		if name := e.Expected.Identity(); name != "" {
			trail = append(trail, name)
		}
	}

	if _, negated := deepest.Expected.(*NotPredicate); negated {
		return &ParseError{Pos: pos, Source: input, Trail: trail, Negated: true}
	}

	expected := g.expectedMacros(deepest)
	return &ParseError{Pos: pos, Source: input, Trail: trail, Expected: expected}
}

// deepestError finds the failure with the greatest position, preferring
// branches that recorded partial matches.
func deepestError(err *MatchError) *MatchError {
	best := err
	var walk func(*MatchError)
	walk = func(e *MatchError) {
		if e.Pos > best.Pos || (e.Pos == best.Pos && len(e.Matched) > len(best.Matched)) {
			best = e
		}
		for _, c := range e.Children {
			walk(c)
		}
	}
	walk(err)
	return best
}

func (g *Grammar) expectedMacros(err *MatchError) []string {
	var names []string
	seen := map[string]bool{}
	var collect func(*MatchError)
	collect = func(e *MatchError) {
		identity := e.Expected.Identity()
		macro, ok := g.macros[identity]
		if !ok {
			macro = identity
		}
		if macro != "" && !seen[macro] {
			seen[macro] = true
			names = append(names, macro)
		}
		for _, c := range e.Children {
			collect(c)
		}
	}
	collect(err)
	return names
}
