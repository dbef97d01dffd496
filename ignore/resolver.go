// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ignore

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
	"golang.org/x/text/cases"
)

// Context is the context of a word being checked.
type Context struct {
	// Lang is the language tag of the file.
	Lang string
	// Project is the absolute path of the project root.
	Project string
	// Path is the slash separated path of the file
	// relative to Project.
	Path string
}

// scopes returns the word scopes that apply to the context, most
// general first.
func (c Context) scopes() []Scope {
	scopes := []Scope{GlobalScope()}
	if c.Lang != "" {
		scopes = append(scopes, LanguageScope(c.Lang))
	}
	if c.Project != "" {
		scopes = append(scopes, ProjectScope(c.Project))
		if c.Path != "" {
			scopes = append(scopes, PathScope(c.Project, c.Path))
		}
	}
	return scopes
}

// Resolver is an immutable snapshot of a Store. It is safe for
// concurrent use.
type Resolver struct {
	exact  map[Scope]map[string]bool
	folded map[Scope]map[string]bool

	tokens   []tokenRule
	matchers map[string]*patternMatcher
}

// tokenRule is a set of literal tokens skipped in files matching a
// Token scope path.
type tokenRule struct {
	scope Scope
	words []string
}

// Ignored returns whether word is ignored in the given context. A word
// is ignored if any of the Global, Language, Project or Path scopes
// that apply to the context hold it. Exact matches are tested first,
// then matches under Unicode case folding.
func (r *Resolver) Ignored(word string, ctx Context) bool {
	if r == nil {
		return false
	}
	scopes := ctx.scopes()
	for _, sc := range scopes {
		if r.exact[sc][word] {
			return true
		}
	}
	f := fold(word)
	for _, sc := range scopes {
		if r.folded[sc][f] {
			return true
		}
	}
	return false
}

// SkippedTokens returns the literal tokens that are skipped in the file
// described by ctx. Token scope paths are matched as doublestar globs.
func (r *Resolver) SkippedTokens(ctx Context) []string {
	if r == nil {
		return nil
	}
	var skip []string
	for _, t := range r.tokens {
		if t.scope.Project != ctx.Project {
			continue
		}
		ok, err := doublestar.Match(t.scope.Path, ctx.Path)
		if err != nil {
			ok = t.scope.Path == ctx.Path
		}
		if ok {
			skip = append(skip, t.words...)
		}
	}
	return skip
}

// SkipFile returns whether the path rel relative to the project root
// matches the project's skip patterns. Patterns use .gitignore syntax.
func (r *Resolver) SkipFile(project, rel string, isDir bool) bool {
	if r == nil {
		return false
	}
	m, ok := r.matchers[project]
	if !ok {
		return false
	}
	return m.match(rel, isDir)
}

// patternMatcher matches paths against a set of .gitignore patterns.
type patternMatcher struct {
	gitignore.GitIgnore
}

func newPatternMatcher(project string, patterns []string) *patternMatcher {
	r := strings.NewReader(strings.Join(patterns, "\n"))
	return &patternMatcher{gitignore.New(r, project, nil)}
}

func (m *patternMatcher) match(rel string, isDir bool) bool {
	match := m.Relative(rel, isDir)
	return match != nil && match.Ignore()
}

// fold returns the case folded form of s.
func fold(s string) string {
	// A Caser is not safe for concurrent use.
	return cases.Fold().String(s)
}
