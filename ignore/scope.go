// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ignore implements layered ignore rules for spell checking.
//
// Ignore rules are held in a Store keyed by Scope. A Store is read
// through an immutable Resolver snapshot and changed only through an
// Editor, which persists each change through a Backend and records the
// most recent change so that it can be undone.
package ignore

import (
	"fmt"
	"path"
	"strings"
)

// ScopeKind is the kind of an ignore scope.
type ScopeKind int

const (
	Global   ScopeKind = iota // Words ignored everywhere.
	Language                  // Words ignored in files of a language.
	Project                   // Words ignored in a project.
	Path                      // Words ignored in a single project file.
	Token                     // Literal tokens skipped in matching project files.
	Pattern                   // Project files that are not checked.
)

var scopeKindNames = [...]string{
	Global:   "global",
	Language: "lang",
	Project:  "project",
	Path:     "path",
	Token:    "token",
	Pattern:  "pattern",
}

func (k ScopeKind) String() string {
	if k < 0 || int(k) >= len(scopeKindNames) {
		return fmt.Sprintf("ScopeKind(%d)", int(k))
	}
	return scopeKindNames[k]
}

func (k ScopeKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(scopeKindNames) {
		return nil, fmt.Errorf("invalid scope kind: %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *ScopeKind) UnmarshalText(b []byte) error { return k.Set(string(b)) }

// Set sets the receiver to the scope kind named by val. It allows a
// ScopeKind to be used as a flag.Value.
func (k *ScopeKind) Set(val string) error {
	for i, n := range scopeKindNames {
		if val == n {
			*k = ScopeKind(i)
			return nil
		}
	}
	return fmt.Errorf("invalid scope kind %q: valid kinds are %s", val, strings.Join(scopeKindNames[:], ", "))
}

// Scope is a context in which ignore rules apply. The fields in use
// depend on Kind: Lang for Language, Project for Project and Pattern,
// and both Project and Path for Path and Token. Project is the
// absolute path of the project root and Path is a slash separated
// path relative to it. The Path of a Token scope may be a glob.
type Scope struct {
	Kind    ScopeKind `toml:"kind"`
	Lang    string    `toml:"lang,omitempty"`
	Project string    `toml:"project,omitempty"`
	Path    string    `toml:"path,omitempty"`
}

func GlobalScope() Scope                   { return Scope{Kind: Global} }
func LanguageScope(lang string) Scope      { return Scope{Kind: Language, Lang: lang} }
func ProjectScope(project string) Scope    { return Scope{Kind: Project, Project: project} }
func PathScope(project, rel string) Scope  { return Scope{Kind: Path, Project: project, Path: rel} }
func TokenScope(project, rel string) Scope { return Scope{Kind: Token, Project: project, Path: rel} }
func PatternScope(project string) Scope    { return Scope{Kind: Pattern, Project: project} }

// Validate returns an error if the fields required by the scope's kind
// are not set or fields that are not used are set.
func (s Scope) Validate() error {
	var lang, project, rel bool
	switch s.Kind {
	case Global:
	case Language:
		lang = true
	case Project, Pattern:
		project = true
	case Path, Token:
		project, rel = true, true
	default:
		return fmt.Errorf("invalid scope kind: %d", int(s.Kind))
	}
	if (s.Lang != "") != lang {
		return fmt.Errorf("%v scope: language %s", s.Kind, needed(lang))
	}
	if (s.Project != "") != project {
		return fmt.Errorf("%v scope: project %s", s.Kind, needed(project))
	}
	if (s.Path != "") != rel {
		return fmt.Errorf("%v scope: path %s", s.Kind, needed(rel))
	}
	if rel && !local(s.Path) {
		return fmt.Errorf("%v scope: path %q is not within the project", s.Kind, s.Path)
	}
	return nil
}

// local returns whether the slash separated path p is within its root.
func local(p string) bool {
	if path.IsAbs(p) {
		return false
	}
	p = path.Clean(p)
	return p != ".." && !strings.HasPrefix(p, "../")
}

func needed(ok bool) string {
	if ok {
		return "required"
	}
	return "not allowed"
}

func (s Scope) String() string {
	switch s.Kind {
	case Language:
		return fmt.Sprintf("%v(%s)", s.Kind, s.Lang)
	case Project, Pattern:
		return fmt.Sprintf("%v(%s)", s.Kind, s.Project)
	case Path, Token:
		return fmt.Sprintf("%v(%s, %s)", s.Kind, s.Project, s.Path)
	default:
		return s.Kind.String()
	}
}

// less returns whether s sorts before b.
func (s Scope) less(b Scope) bool {
	if s.Kind != b.Kind {
		return s.Kind < b.Kind
	}
	if s.Lang != b.Lang {
		return s.Lang < b.Lang
	}
	if s.Project != b.Project {
		return s.Project < b.Project
	}
	return s.Path < b.Path
}
