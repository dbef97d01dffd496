// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"

	"github.com/kortschak/srcspell/ignore"
)

// rules returns a set of rules covering every scope kind in project.
func rules(project string) map[ignore.Scope][]string {
	return map[ignore.Scope][]string{
		ignore.GlobalScope():                       {"kortschak", "srcspell"},
		ignore.LanguageScope("go"):                 {"goroutine"},
		ignore.LanguageScope("py"):                 {"kwargs"},
		ignore.ProjectScope(project):               {"hunspell"},
		ignore.PathScope(project, "cmd/main.go"):   {"frobnicate"},
		ignore.TokenScope(project, "**/*.txt"):     {"aGVsbG8gd29ybGQ="},
		ignore.PatternScope(project):               {"*.gen.go", "vendor/"},
		ignore.PathScope(project, "docs/intro.md"): {"README", "asciidoc"},
	}
}

// save writes all rules to b.
func save(t *testing.T, b ignore.Backend, rules map[ignore.Scope][]string) {
	t.Helper()
	for sc, words := range rules {
		err := b.Save(sc, words)
		if err != nil {
			t.Fatalf("unexpected error saving %v: %v", sc, err)
		}
	}
}

// loadAll returns all the rules held by b.
func loadAll(t *testing.T, b ignore.Backend) map[ignore.Scope][]string {
	t.Helper()
	store, err := ignore.Load(b)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	got := make(map[ignore.Scope][]string)
	for _, sc := range store.Scopes() {
		got[sc] = store.Words(sc)
	}
	return got
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "project")
	global := filepath.Join(dir, "data", "global.toml")

	want := rules(project)
	save(t, NewFile(project, global), want)

	// Use a new backend so nothing is cached.
	got := loadAll(t, NewFile(project, global))
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected rules after round trip:\n--- got:\n+++ want:\n%s", cmp.Diff(got, want))
	}

	var local document
	_, err := toml.DecodeFile(filepath.Join(project, LocalName), &local)
	if err != nil {
		t.Fatalf("unexpected error reading local file: %v", err)
	}
	if len(local.Global) != 0 || len(local.Extensions) != 0 {
		t.Errorf("global rules written to local file: %+v", local)
	}
	wantLocal := document{
		Patterns: []string{"*.gen.go", "vendor/"},
		Project:  []string{"hunspell"},
		Paths: map[string][]string{
			"cmd/main.go":   {"frobnicate"},
			"docs/intro.md": {"README", "asciidoc"},
		},
		Skipped: map[string][]string{
			"**/*.txt": {"aGVsbG8gd29ybGQ="},
		},
	}
	if !cmp.Equal(local, wantLocal) {
		t.Errorf("unexpected local file:\n--- got:\n+++ want:\n%s", cmp.Diff(local, wantLocal))
	}

	entries, err := os.ReadDir(project)
	if err != nil {
		t.Fatalf("unexpected error reading project directory: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "."+LocalName) {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestFileLocalOnly(t *testing.T) {
	project := t.TempDir()
	f := NewFile(project, "")
	save(t, f, map[ignore.Scope][]string{
		ignore.GlobalScope():         {"kortschak"},
		ignore.ProjectScope(project): {"srcspell"},
	})
	var local document
	_, err := toml.DecodeFile(filepath.Join(project, LocalName), &local)
	if err != nil {
		t.Fatalf("unexpected error reading local file: %v", err)
	}
	want := document{Global: []string{"kortschak"}, Project: []string{"srcspell"}}
	if !cmp.Equal(local, want) {
		t.Errorf("unexpected local file:\n--- got:\n+++ want:\n%s", cmp.Diff(local, want))
	}
}

func TestFileOtherProject(t *testing.T) {
	f := NewFile(t.TempDir(), "")
	err := f.Save(ignore.ProjectScope("/elsewhere"), []string{"word"})
	if err == nil {
		t.Error("expected error saving scope for another project")
	}
}

func TestFileEditorUndo(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "project")
	backend := NewFile(project, filepath.Join(dir, "global.toml"))
	recorder := StateFile{Path: filepath.Join(dir, "state.toml")}

	store, err := ignore.Load(backend)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	err = ignore.NewEditor(store, backend, recorder).Add("missstake", ignore.PathScope(project, "a.txt"))
	if err != nil {
		t.Fatalf("unexpected error adding word: %v", err)
	}

	// Undo from a new invocation.
	backend = NewFile(project, filepath.Join(dir, "global.toml"))
	store, err = ignore.Load(backend)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if !store.Has("missstake", ignore.PathScope(project, "a.txt")) {
		t.Fatal("added word not persisted")
	}
	op, err := ignore.NewEditor(store, backend, recorder).Undo()
	if err != nil {
		t.Fatalf("unexpected error undoing: %v", err)
	}
	want := &ignore.Operation{Op: ignore.OpAdd, Word: "missstake", Scope: ignore.PathScope(project, "a.txt"), Changed: true}
	if !cmp.Equal(op, want) {
		t.Errorf("unexpected undone operation:\n--- got:\n+++ want:\n%s", cmp.Diff(op, want))
	}
	got := loadAll(t, NewFile(project, filepath.Join(dir, "global.toml")))
	if len(got) != 0 {
		t.Errorf("unexpected rules after undo: %v", got)
	}
	op, err = recorder.LastOperation()
	if err != nil || op != nil {
		t.Errorf("unexpected recorded operation after undo: op=%v err=%v", op, err)
	}
}

func TestFileUndoOtherProject(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global.toml")
	recorder := StateFile{Path: filepath.Join(dir, "state.toml")}
	projA := filepath.Join(dir, "a")
	projB := filepath.Join(dir, "b")

	editor := func(project string) *ignore.Editor {
		t.Helper()
		backend := NewFile(project, global)
		store, err := ignore.Load(backend)
		if err != nil {
			t.Fatalf("unexpected error loading %s: %v", project, err)
		}
		return ignore.NewEditor(store, backend, recorder)
	}

	err := editor(projA).Add("wurd", ignore.ProjectScope(projA))
	if err != nil {
		t.Fatalf("unexpected error adding word: %v", err)
	}

	op, err := editor(projB).Undo()
	if err == nil {
		t.Errorf("expected error undoing another project's operation: op=%v", op)
	}
	got := loadAll(t, NewFile(projA, global))
	want := map[ignore.Scope][]string{ignore.ProjectScope(projA): {"wurd"}}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected rules after failed undo:\n--- got:\n+++ want:\n%s", cmp.Diff(got, want))
	}
	op, err = recorder.LastOperation()
	if err != nil || op == nil {
		t.Fatalf("operation record lost after failed undo: op=%v err=%v", op, err)
	}

	_, err = editor(projA).Undo()
	if err != nil {
		t.Fatalf("unexpected error undoing in own project: %v", err)
	}
	got = loadAll(t, NewFile(projA, global))
	if len(got) != 0 {
		t.Errorf("unexpected rules after undo: %v", got)
	}
}

func TestStateFileMissing(t *testing.T) {
	s := StateFile{Path: filepath.Join(t.TempDir(), "none", "state.toml")}
	op, err := s.LastOperation()
	if err != nil || op != nil {
		t.Errorf("unexpected result for missing state: op=%v err=%v", op, err)
	}
}

func TestDBRoundTrip(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "project")
	path := filepath.Join(dir, "data", "srcspell.db")

	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("unexpected error opening database: %v", err)
	}
	want := rules(project)
	save(t, db, want)
	err = db.Close()
	if err != nil {
		t.Fatalf("unexpected error closing database: %v", err)
	}

	db, err = OpenDB(path)
	if err != nil {
		t.Fatalf("unexpected error reopening database: %v", err)
	}
	defer db.Close()
	got := loadAll(t, db)
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected rules after round trip:\n--- got:\n+++ want:\n%s", cmp.Diff(got, want))
	}

	// Saving an empty set removes the scope.
	err = db.Save(ignore.LanguageScope("py"), nil)
	if err != nil {
		t.Fatalf("unexpected error clearing scope: %v", err)
	}
	scopes, err := db.Scopes()
	if err != nil {
		t.Fatalf("unexpected error listing scopes: %v", err)
	}
	for _, sc := range scopes {
		if sc == ignore.LanguageScope("py") {
			t.Error("cleared scope still listed")
		}
	}
}

func TestDBRecorder(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "srcspell.db"))
	if err != nil {
		t.Fatalf("unexpected error opening database: %v", err)
	}
	defer db.Close()

	e := ignore.NewEditor(ignore.NewStore(), db, db)
	err = e.Add("iota", ignore.LanguageScope("go"))
	if err != nil {
		t.Fatalf("unexpected error adding word: %v", err)
	}
	op, err := db.LastOperation()
	if err != nil {
		t.Fatalf("unexpected error reading last operation: %v", err)
	}
	want := &ignore.Operation{Op: ignore.OpAdd, Word: "iota", Scope: ignore.LanguageScope("go"), Changed: true}
	if !cmp.Equal(op, want) {
		t.Errorf("unexpected recorded operation:\n--- got:\n+++ want:\n%s", cmp.Diff(op, want))
	}
	_, err = e.Undo()
	if err != nil {
		t.Fatalf("unexpected error undoing: %v", err)
	}
	words, err := db.Load(ignore.LanguageScope("go"))
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("unexpected words after undo: %q", words)
	}
}

func TestDBUndoOtherProject(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenDB(filepath.Join(dir, "srcspell.db"))
	if err != nil {
		t.Fatalf("unexpected error opening database: %v", err)
	}
	defer db.Close()

	projA := filepath.Join(dir, "a")
	err = ignore.NewEditor(ignore.NewStore(), db, db).Add("wurd", ignore.ProjectScope(projA))
	if err != nil {
		t.Fatalf("unexpected error adding word: %v", err)
	}

	// An editor started with none of the scope's words still
	// reverts the operation held by the database.
	op, err := ignore.NewEditor(ignore.NewStore(), db, db).Undo()
	if err != nil {
		t.Fatalf("unexpected error undoing: %v", err)
	}
	if op.Word != "wurd" {
		t.Errorf("unexpected undone operation: %v", op)
	}
	words, err := db.Load(ignore.ProjectScope(projA))
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("unexpected words after undo: %q", words)
	}
}
