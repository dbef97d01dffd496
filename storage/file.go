// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storage provides persistence backends for ignore rules.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/kortschak/srcspell/ignore"
)

// LocalName is the name of the ignore file held at a project root.
const LocalName = "srcspell-ignore.toml"

// document is the on-disk form of an ignore file. Global and Extensions
// are held in the global file, and the remaining fields in the local
// file at the project root.
type document struct {
	Patterns   []string            `toml:"patterns,omitempty"`
	Global     []string            `toml:"global,omitempty"`
	Project    []string            `toml:"project,omitempty"`
	Extensions map[string][]string `toml:"extensions,omitempty"`
	Paths      map[string][]string `toml:"paths,omitempty"`
	Skipped    map[string][]string `toml:"skipped,omitempty"`
}

// File is an ignore.Backend that stores rules in TOML files. Global and
// Language scopes are held in a global file shared by all projects and
// the remaining scopes are held in LocalName at the project root.
type File struct {
	project string
	global  string
	local   string

	mu   sync.Mutex
	docs map[string]*document
}

// NewFile returns a File backend for the project rooted at the absolute
// path project. If global is empty, Global and Language scopes are held
// in the local file.
func NewFile(project, global string) *File {
	local := filepath.Join(project, LocalName)
	if global == "" {
		global = local
	}
	return &File{
		project: project,
		global:  global,
		local:   local,
		docs:    make(map[string]*document),
	}
}

// Scopes returns the scopes held in the global and local files.
func (f *File) Scopes() ([]ignore.Scope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var scopes []ignore.Scope
	g, err := f.read(f.global)
	if err != nil {
		return nil, err
	}
	if len(g.Global) != 0 {
		scopes = append(scopes, ignore.GlobalScope())
	}
	for _, lang := range keys(g.Extensions) {
		scopes = append(scopes, ignore.LanguageScope(lang))
	}

	l, err := f.read(f.local)
	if err != nil {
		return nil, err
	}
	if len(l.Project) != 0 {
		scopes = append(scopes, ignore.ProjectScope(f.project))
	}
	for _, p := range keys(l.Paths) {
		scopes = append(scopes, ignore.PathScope(f.project, p))
	}
	for _, p := range keys(l.Skipped) {
		scopes = append(scopes, ignore.TokenScope(f.project, p))
	}
	if len(l.Patterns) != 0 {
		scopes = append(scopes, ignore.PatternScope(f.project))
	}
	return scopes, nil
}

// Load returns the words held for scope.
func (f *File) Load(scope ignore.Scope) ([]string, error) {
	path, err := f.pathFor(scope)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read(path)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), doc.words(scope)...), nil
}

// Save replaces the words held for scope. The file holding the scope is
// written to a temporary file that is then renamed over the original.
func (f *File) Save(scope ignore.Scope, words []string) error {
	path, err := f.pathFor(scope)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read(path)
	if err != nil {
		return err
	}
	upd := doc.clone()
	upd.setWords(scope, words)
	err = writeTOML(path, upd)
	if err != nil {
		return err
	}
	f.docs[path] = upd
	return nil
}

// pathFor returns the file path holding scope.
func (f *File) pathFor(scope ignore.Scope) (string, error) {
	switch scope.Kind {
	case ignore.Global, ignore.Language:
		return f.global, nil
	case ignore.Project, ignore.Path, ignore.Token, ignore.Pattern:
		if scope.Project != f.project {
			return "", fmt.Errorf("scope %v is not in project %s", scope, f.project)
		}
		return f.local, nil
	default:
		return "", fmt.Errorf("invalid scope kind: %v", scope.Kind)
	}
}

// read returns the document at path, reading it if it is not already
// cached. A missing file is an empty document.
func (f *File) read(path string) (*document, error) {
	if doc, ok := f.docs[path]; ok {
		return doc, nil
	}
	var doc document
	_, err := toml.DecodeFile(path, &doc)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	f.docs[path] = &doc
	return &doc, nil
}

// words returns the word list for scope.
func (d *document) words(scope ignore.Scope) []string {
	switch scope.Kind {
	case ignore.Global:
		return d.Global
	case ignore.Language:
		return d.Extensions[scope.Lang]
	case ignore.Project:
		return d.Project
	case ignore.Path:
		return d.Paths[scope.Path]
	case ignore.Token:
		return d.Skipped[scope.Path]
	case ignore.Pattern:
		return d.Patterns
	default:
		return nil
	}
}

// setWords replaces the word list for scope with a sorted copy of words.
// Empty map entries are removed.
func (d *document) setWords(scope ignore.Scope, words []string) {
	words = sorted(words)
	switch scope.Kind {
	case ignore.Global:
		d.Global = words
	case ignore.Language:
		d.Extensions = setEntry(d.Extensions, scope.Lang, words)
	case ignore.Project:
		d.Project = words
	case ignore.Path:
		d.Paths = setEntry(d.Paths, scope.Path, words)
	case ignore.Token:
		d.Skipped = setEntry(d.Skipped, scope.Path, words)
	case ignore.Pattern:
		d.Patterns = words
	}
}

func setEntry(m map[string][]string, key string, words []string) map[string][]string {
	if len(words) == 0 {
		delete(m, key)
		return m
	}
	if m == nil {
		m = make(map[string][]string)
	}
	m[key] = words
	return m
}

// clone returns a deep copy of the document.
func (d *document) clone() *document {
	c := document{
		Patterns: append([]string(nil), d.Patterns...),
		Global:   append([]string(nil), d.Global...),
		Project:  append([]string(nil), d.Project...),
	}
	c.Extensions = cloneMap(d.Extensions)
	c.Paths = cloneMap(d.Paths)
	c.Skipped = cloneMap(d.Skipped)
	return &c
}

func cloneMap(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	c := make(map[string][]string, len(m))
	for k, v := range m {
		c[k] = append([]string(nil), v...)
	}
	return c
}

// sorted returns a sorted copy of words, or nil if words is empty.
func sorted(words []string) []string {
	if len(words) == 0 {
		return nil
	}
	words = append([]string(nil), words...)
	sort.Strings(words)
	return words
}

func keys(m map[string][]string) []string {
	k := make([]string, 0, len(m))
	for key, words := range m {
		if len(words) != 0 {
			k = append(k, key)
		}
	}
	sort.Strings(k)
	return k
}

// writeTOML atomically writes v as TOML to path.
func writeTOML(path string, v interface{}) (err error) {
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	err = toml.NewEncoder(f).Encode(v)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", path, err)
	}
	err = f.Close()
	if err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
