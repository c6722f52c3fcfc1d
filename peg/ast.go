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

// AST is the result of a top-level Grammar.Parse: a sequence of matches of
// the root rule against successive spans of the source, each annotated
// with the 1-based source line it started on for use in later diagnostics.
type AST struct {
	LineNumbers []int
	Matches     []*Match
	SourceText  string
}

// flatten applies a Grammar's discard/hoist/merge/conditional directives to
// m, returning the replacement list for m's position among its siblings
// (zero, one, or many matches). It is depth first: children are always
// processed before the directives for m itself are applied, so a discard
// or hoist lower in the tree is visible by the time an ancestor's merge or
// conditional directive inspects its child count.
func (g *Grammar) flatten(m *Match) []*Match {
	var children []*Match
	for _, c := range m.Children {
		children = append(children, g.flatten(c)...)
	}
	m.Children = children

	identity := m.Rule.Identity()

	if g.mergeSet[identity] {
		if len(children) > 0 {
			first := children[0]
			return []*Match{{Rule: identityAlias{Rule: first.Rule, identity: identity}, Start: first.Start, End: first.End, Children: first.Children, LastError: first.LastError}}
		}
		return []*Match{m}
	}
	if identity == "" || g.hoistSet[identity] {
		return children
	}
	if g.discardSet[identity] {
		return nil
	}
	if g.conditionalSet[identity] && len(children) == 1 {
		return children
	}
	return []*Match{m}
}

// identityAlias wraps another Rule, reporting a different Identity. It is
// used by merge directives to retain a parent rule's name on a match built
// from a child's span and children.
type identityAlias struct {
	Rule
	identity string
}

func (a identityAlias) Identity() string { return a.identity }
