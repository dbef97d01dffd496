// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ignore

import (
	"fmt"
	"sort"
	"sync"
)

// Backend is a persistence store for ignore rules. Save must replace
// the complete word set of the scope atomically.
type Backend interface {
	// Scopes returns all scopes held by the backend.
	Scopes() ([]Scope, error)
	// Load returns the words held for a scope.
	Load(Scope) ([]string, error)
	// Save replaces the words held for a scope.
	Save(Scope, []string) error
}

// PersistenceError is an error from a Backend.
type PersistenceError struct {
	Op    string
	Scope Scope
	Err   error
}

func (e *PersistenceError) Error() string {
	switch e.Op {
	case "load", "save":
		return fmt.Sprintf("ignore store %s %v: %v", e.Op, e.Scope, e.Err)
	default:
		return fmt.Sprintf("ignore store %s: %v", e.Op, e.Err)
	}
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is a mapping from scopes to sets of words. A word may be held by
// any number of scopes.
type Store struct {
	scopes map[Scope]map[string]bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{scopes: make(map[Scope]map[string]bool)}
}

// Load returns a Store populated with all the scopes held by b.
func Load(b Backend) (*Store, error) {
	scopes, err := b.Scopes()
	if err != nil {
		return nil, &PersistenceError{Op: "scopes", Err: err}
	}
	s := NewStore()
	for _, sc := range scopes {
		words, err := b.Load(sc)
		if err != nil {
			return nil, &PersistenceError{Op: "load", Scope: sc, Err: err}
		}
		for _, w := range words {
			s.add(w, sc)
		}
	}
	return s, nil
}

// Has returns whether word is held in scope.
func (s *Store) Has(word string, scope Scope) bool {
	return s.scopes[scope][word]
}

// Words returns the sorted words held in scope.
func (s *Store) Words(scope Scope) []string {
	return sortedKeys(s.scopes[scope])
}

// Scopes returns the sorted set of scopes that hold words.
func (s *Store) Scopes() []Scope {
	scopes := make([]Scope, 0, len(s.scopes))
	for sc, words := range s.scopes {
		if len(words) != 0 {
			scopes = append(scopes, sc)
		}
	}
	sort.Slice(scopes, func(i, j int) bool { return scopes[i].less(scopes[j]) })
	return scopes
}

// add adds word to scope and returns whether the store was changed.
func (s *Store) add(word string, scope Scope) bool {
	words, ok := s.scopes[scope]
	if !ok {
		words = make(map[string]bool)
		s.scopes[scope] = words
	}
	if words[word] {
		return false
	}
	words[word] = true
	return true
}

// remove removes word from scope and returns whether the store was
// changed.
func (s *Store) remove(word string, scope Scope) bool {
	words := s.scopes[scope]
	if !words[word] {
		return false
	}
	delete(words, word)
	if len(words) == 0 {
		delete(s.scopes, scope)
	}
	return true
}

// Snapshot returns an immutable Resolver holding the current state of
// the store. Later changes to the store are not visible to the Resolver.
func (s *Store) Snapshot() *Resolver {
	r := &Resolver{
		exact:    make(map[Scope]map[string]bool, len(s.scopes)),
		folded:   make(map[Scope]map[string]bool, len(s.scopes)),
		matchers: make(map[string]*patternMatcher),
	}
	for sc, words := range s.scopes {
		if len(words) == 0 {
			continue
		}
		switch sc.Kind {
		case Token:
			r.tokens = append(r.tokens, tokenRule{scope: sc, words: sortedKeys(words)})
			continue
		case Pattern:
			r.matchers[sc.Project] = newPatternMatcher(sc.Project, sortedKeys(words))
			continue
		}
		exact := make(map[string]bool, len(words))
		folded := make(map[string]bool, len(words))
		for w := range words {
			exact[w] = true
			folded[fold(w)] = true
		}
		r.exact[sc] = exact
		r.folded[sc] = folded
	}
	sort.Slice(r.tokens, func(i, j int) bool { return r.tokens[i].scope.less(r.tokens[j].scope) })
	return r
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MemoryBackend is a Backend that holds ignore rules in memory.
type MemoryBackend struct {
	mu     sync.Mutex
	scopes map[Scope][]string
}

// NewMemoryBackend returns a MemoryBackend holding the provided rules.
func NewMemoryBackend(rules map[Scope][]string) *MemoryBackend {
	b := &MemoryBackend{scopes: make(map[Scope][]string, len(rules))}
	for sc, words := range rules {
		b.scopes[sc] = append([]string(nil), words...)
	}
	return b
}

func (b *MemoryBackend) Scopes() ([]Scope, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	scopes := make([]Scope, 0, len(b.scopes))
	for sc := range b.scopes {
		scopes = append(scopes, sc)
	}
	sort.Slice(scopes, func(i, j int) bool { return scopes[i].less(scopes[j]) })
	return scopes, nil
}

func (b *MemoryBackend) Load(scope Scope) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.scopes[scope]...), nil
}

func (b *MemoryBackend) Save(scope Scope, words []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(words) == 0 {
		delete(b.scopes, scope)
		return nil
	}
	b.scopes[scope] = append([]string(nil), words...)
	return nil
}
