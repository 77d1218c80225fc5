// Package match finds keyword patterns in SQL bodies using an
// Aho-Corasick automaton, so scanning stays linear in the text length
// however many patterns are registered.
package match

import (
	"errors"

	ahocorasick "github.com/BobuSumisu/aho-corasick"
)

// ErrNoPatterns is returned when no non-empty pattern is supplied.
var ErrNoPatterns = errors.New("no patterns provided")

// NotFound marks a pattern with no occurrence in FirstPositions output.
const NotFound = -1

// Matcher matches a fixed set of patterns against texts. Safe for
// concurrent use once built.
type Matcher struct {
	trie     *ahocorasick.Trie
	patterns []string
}

// New builds a matcher over the given patterns. Empty patterns are
// dropped; pattern order is preserved for FirstPositions.
func New(patterns []string) (*Matcher, error) {
	kept := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoPatterns
	}
	trie := ahocorasick.NewTrieBuilder().AddStrings(kept).Build()
	return &Matcher{trie: trie, patterns: kept}, nil
}

// Patterns returns the patterns the matcher was built with, in order.
func (m *Matcher) Patterns() []string {
	return m.patterns
}

// FirstPositions returns, per pattern and in pattern order, the byte
// offset of its first occurrence in text, or NotFound.
func (m *Matcher) FirstPositions(text string) []int {
	pos := make([]int, len(m.patterns))
	for i := range pos {
		pos[i] = NotFound
	}
	for _, hit := range m.trie.MatchString(text) {
		p := int(hit.Pattern())
		at := int(hit.Pos())
		if pos[p] == NotFound || at < pos[p] {
			pos[p] = at
		}
	}
	return pos
}

// MatchesAny reports whether any pattern occurs in text.
func (m *Matcher) MatchesAny(text string) bool {
	return m.trie.MatchFirstString(text) != nil
}
