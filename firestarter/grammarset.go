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

package firestarter

import (
	"fmt"
	"sort"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/hyomoto/firestarter/internal/digest"
	"github.com/hyomoto/firestarter/peg"
	"github.com/hyomoto/firestarter/peg/bootstrap"
)

// GrammarSet is the host's versioned grammar catalog: every version a
// running host can select between (per a script's own declared
// version, or an operator's explicit choice) is a resolved grammar
// already compiled from text, keyed by its semver label. This is the
// "global mutable state" design note's concrete home: a host builds
// one explicitly rather than Firestarter scanning a directory at
// import time.
type GrammarSet struct {
	grammars map[string]*peg.Grammar
	digests  map[string]digest.Digest
}

// NewGrammarSet returns an empty GrammarSet.
func NewGrammarSet() *GrammarSet {
	return &GrammarSet{grammars: map[string]*peg.Grammar{}, digests: map[string]digest.Digest{}}
}

// VersionError reports a grammar-set version label that isn't valid
// semver.
type VersionError struct {
	Version string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("firestarter: grammar version %q is not valid semver", e.Version)
}

// Add compiles text with flags and records the result under version,
// which must be a valid semver string (e.g. "v1.2.0"). If an identical
// digest is already registered under version, the existing compiled
// grammar is reused instead of re-parsing and re-resolving text, so
// reloading the same grammar-set document is cheap.
func (s *GrammarSet) Add(version, text string, flags peg.Flags) error {
	if !semver.IsValid(version) {
		return &VersionError{Version: version}
	}
	d := digest.Of(text)
	if existing, ok := s.digests[version]; ok && existing == d {
		return nil
	}
	g, err := bootstrap.MakeGrammar(text, flags)
	if err != nil {
		return fmt.Errorf("firestarter: grammar %q: %w", version, err)
	}
	s.grammars[version] = g
	s.digests[version] = d
	return nil
}

// Get returns the grammar registered under version.
func (s *GrammarSet) Get(version string) (*peg.Grammar, bool) {
	g, ok := s.grammars[version]
	return g, ok
}

// Digest returns the content digest of the grammar text registered
// under version, for a host that wants to confirm a cached compile is
// still fresh before reusing it.
func (s *GrammarSet) Digest(version string) (digest.Digest, bool) {
	d, ok := s.digests[version]
	return d, ok
}

// Versions returns every registered version label, sorted by semver
// precedence (oldest first).
func (s *GrammarSet) Versions() []string {
	out := make([]string, 0, len(s.grammars))
	for v := range s.grammars {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return semver.Compare(out[i], out[j]) < 0 })
	return out
}

// Latest returns the grammar with the highest semver precedence
// registered, for a host that wants "whatever is newest" rather than
// pinning to a specific label.
func (s *GrammarSet) Latest() (version string, g *peg.Grammar, ok bool) {
	versions := s.Versions()
	if len(versions) == 0 {
		return "", nil, false
	}
	v := versions[len(versions)-1]
	return v, s.grammars[v], true
}

// LoadGrammarSet parses a YAML document mapping version labels to
// grammar-text bodies (the format a host hand-authors or generates
// to ship several grammar revisions together) and compiles each entry
// with flags into a GrammarSet.
func LoadGrammarSet(yamlDoc []byte, flags peg.Flags) (*GrammarSet, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(yamlDoc, &raw); err != nil {
		return nil, fmt.Errorf("firestarter: decoding grammar set: %w", err)
	}
	set := NewGrammarSet()
	for version, text := range raw {
		if err := set.Add(version, text, flags); err != nil {
			return nil, err
		}
	}
	return set, nil
}
