// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package checker

import (
	"errors"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kortschak/srcspell/dictionary"
	"github.com/kortschak/srcspell/ignore"
	"github.com/kortschak/srcspell/tokens"
)

const words = `
the
here
is
word
words
text
file
files
comment
author
mistake
blob
todo
`

func newDict(t *testing.T) dictionary.Dictionary {
	t.Helper()
	d, err := dictionary.NewWordList(strings.NewReader(words), "en_US")
	if err != nil {
		t.Fatalf("unexpected error building dictionary: %v", err)
	}
	return d
}

// writeFiles writes the files in the map to dir.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(path, []byte(content), 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func pos(name string, offset, line, col int) token.Position {
	return token.Position{Filename: name, Offset: offset, Line: line, Column: col}
}

func TestCheckFileSingle(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "missstake\n"})
	path := filepath.Join(dir, "a.txt")

	c := New(newDict(t), nil, Options{Project: dir})
	got := c.CheckFile(path)
	want := FileReport{
		Path:    path,
		Rel:     "a.txt",
		State:   Done,
		Results: []Result{{Word: "missstake", Pos: pos(path, 0, 1, 1), Rel: "a.txt"}},
	}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected report:\n--- got:\n+++ want:\n%s", cmp.Diff(got, want))
	}
}

func TestCheckFilePositions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.go": "package a\n\n// The wurd is here, see https://example.com/wurd.\nvar fooWurd = 0x1f\n"})
	path := filepath.Join(dir, "a.go")

	c := New(newDict(t), nil, Options{Project: dir})
	got := c.CheckFile(path)
	if got.State != Done {
		t.Fatalf("unexpected state: got:%v want:%v err:%v", got.State, Done, got.Err)
	}
	want := []Result{
		{Word: "package", Pos: pos(path, 0, 1, 1), Rel: "a.go"},
		{Word: "wurd", Pos: pos(path, 18, 3, 8), Rel: "a.go"},
		{Word: "see", Pos: pos(path, 32, 3, 22), Rel: "a.go"},
		{Word: "var", Pos: pos(path, 62, 4, 1), Rel: "a.go"},
		{Word: "foo", Pos: pos(path, 66, 4, 5), Rel: "a.go"},
		{Word: "Wurd", Pos: pos(path, 69, 4, 8), Rel: "a.go"},
	}
	if !cmp.Equal(got.Results, want) {
		t.Errorf("unexpected results:\n--- got:\n+++ want:\n%s", cmp.Diff(got.Results, want))
	}
}

func TestCheckIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":       "missstake Frobnicate HTTP\n",
		"b.txt":       "frobnicate\n",
		"gen/x.txt":   "missstake\n",
		"blob.txt":    "the blob is aGVsbG8gd29ybGQ+/=\n",
		"notes/n.txt": "TODO(kortschak): the word\n",
	})
	store, err := ignore.Load(ignore.NewMemoryBackend(map[ignore.Scope][]string{
		ignore.GlobalScope():                 {"http"},
		ignore.LanguageScope("txt"):          {"missstake"},
		ignore.PathScope(dir, "b.txt"):       {"frobnicate"},
		ignore.PatternScope(dir):             {"gen/"},
		ignore.TokenScope(dir, "blob.txt"):   {"aGVsbG8gd29ybGQ+/="},
		ignore.PathScope(dir, "missing.txt"): {"nothing"},
		ignore.LanguageScope("go"):           {"Frobnicate"},
	}))
	if err != nil {
		t.Fatalf("unexpected error loading rules: %v", err)
	}

	c := New(newDict(t), store.Snapshot(), Options{Project: dir})
	rep := c.Check([]string{dir})
	want := []Result{
		{Word: "Frobnicate", Pos: pos(filepath.Join(dir, "a.txt"), 10, 1, 11), Rel: "a.txt"},
	}
	if !cmp.Equal(rep.Results, want) {
		t.Errorf("unexpected results:\n--- got:\n+++ want:\n%s", cmp.Diff(rep.Results, want))
	}
	if rep.Checked != 4 || rep.Skipped != 0 || len(rep.Failures) != 0 {
		t.Errorf("unexpected counts: checked=%d skipped=%d failures=%v", rep.Checked, rep.Skipped, rep.Failures)
	}
}

func TestCheckOrderAndFailures(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.txt":     "wurd\nmistake wurd\n",
		"a.txt":     "the wurd\n",
		"c/d.txt":   "wurd\n",
		"bin.dat":   "\x00\x01\x02wurd",
		".git/HEAD": "wurd\n",
		"bad.txt":   "the \xff wurd\n",
	})

	c := New(newDict(t), nil, Options{Project: dir, Workers: 3})
	missing := filepath.Join(dir, "missing.txt")
	rep := c.Check([]string{filepath.Join(dir, "c"), dir, missing})

	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	d := filepath.Join(dir, "c", "d.txt")
	want := []Result{
		{Word: "wurd", Pos: pos(a, 4, 1, 5), Rel: "a.txt"},
		{Word: "wurd", Pos: pos(b, 0, 1, 1), Rel: "b.txt"},
		{Word: "wurd", Pos: pos(b, 13, 2, 9), Rel: "b.txt"},
		{Word: "wurd", Pos: pos(d, 0, 1, 1), Rel: "c/d.txt"},
	}
	if !cmp.Equal(rep.Results, want) {
		t.Errorf("unexpected results:\n--- got:\n+++ want:\n%s", cmp.Diff(rep.Results, want))
	}
	if rep.Checked != 3 {
		t.Errorf("unexpected checked count: got:%d want:3", rep.Checked)
	}
	if rep.Skipped != 1 {
		t.Errorf("unexpected skipped count: got:%d want:1", rep.Skipped)
	}

	if len(rep.Failures) != 2 {
		t.Fatalf("unexpected failures: %v", rep.Failures)
	}
	var encErr *tokens.EncodingError
	if rep.Failures[0].Path != filepath.Join(dir, "bad.txt") || !errors.As(rep.Failures[0].Err, &encErr) || encErr.Line != 1 {
		t.Errorf("unexpected encoding failure: %+v", rep.Failures[0])
	}
	var ioErr *IOError
	if rep.Failures[1].Path != missing || !errors.As(rep.Failures[1].Err, &ioErr) || !errors.Is(ioErr, fs.ErrNotExist) {
		t.Errorf("unexpected missing file failure: %+v", rep.Failures[1])
	}
}

var stateTests = []struct {
	name    string
	content string
	want    []State
}{
	{
		name:    "good.txt",
		content: "the frob missstake\n",
		want: []State{
			Tokenizing,
			Classifying, Resolving, Dictionary, Tokenizing, // the
			Classifying, Resolving, Tokenizing, // frob
			Classifying, Resolving, Dictionary, Tokenizing, // missstake
			Done,
		},
	},
	{
		name:    "bad.txt",
		content: "\xff\n",
		want:    []State{Tokenizing, Failed},
	},
}

func TestCheckFileStates(t *testing.T) {
	store, err := ignore.Load(ignore.NewMemoryBackend(map[ignore.Scope][]string{
		ignore.GlobalScope(): {"frob"},
	}))
	if err != nil {
		t.Fatalf("unexpected error loading rules: %v", err)
	}
	for _, test := range stateTests {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{test.name: test.content})
		c := New(newDict(t), store.Snapshot(), Options{Project: dir})
		var got []State
		c.trace = func(_ string, s State) { got = append(got, s) }
		c.CheckFile(filepath.Join(dir, test.name))
		if !cmp.Equal(got, test.want) {
			t.Errorf("unexpected state transitions for %s:\n--- got:\n+++ want:\n%s", test.name, cmp.Diff(got, test.want))
		}
	}
}

func TestStateString(t *testing.T) {
	for s := Unopened; s <= Skipped; s++ {
		if strings.HasPrefix(s.String(), "State(") {
			t.Errorf("state %d has no name", int(s))
		}
	}
	if got := State(-1).String(); got != "State(-1)" {
		t.Errorf("unexpected name for invalid state: %q", got)
	}
}

func TestCheckFileBinary(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bin.dat": "\x00\x01\x02wurd"})
	path := filepath.Join(dir, "bin.dat")

	got := New(newDict(t), nil, Options{Project: dir}).CheckFile(path)
	var encErr *tokens.EncodingError
	if got.State != Failed || !errors.As(got.Err, &encErr) || encErr.Line != 0 {
		t.Errorf("unexpected report for binary file: %+v", got)
	}
}

func TestCheckDeterministic(t *testing.T) {
	dir := t.TempDir()
	files := make(map[string]string)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files[name+"/x.txt"] = "wurd the blarg\nthe fnord is here\n"
	}
	writeFiles(t, dir, files)

	c := New(newDict(t), nil, Options{Project: dir, Workers: 4})
	first := c.Check([]string{dir})
	if len(first.Results) != 3*len(files) {
		t.Fatalf("unexpected number of results: got:%d want:%d", len(first.Results), 3*len(files))
	}
	for i := 0; i < 5; i++ {
		got := c.Check([]string{dir})
		if !cmp.Equal(got, first) {
			t.Fatalf("non-deterministic results:\n--- got:\n+++ want:\n%s", cmp.Diff(got, first))
		}
	}
}

func TestCheckGitIgnoreExclude(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		".gitignore":           "build/\n*.log\n",
		"build/out.txt":        "wurd\n",
		"run.log":              "wurd\n",
		"docs/a.md":            "wurd\n",
		"docs/b.txt":           "wurd\n",
		"srcspell-ignore.toml": "project = [\"wurd\"]\n",
	})

	c := New(newDict(t), nil, Options{Project: dir, Exclude: []string{"docs/*.md"}})
	rep := c.Check([]string{dir})
	var got []string
	for _, r := range rep.Results {
		if r.Word == "wurd" {
			got = append(got, r.Rel)
		}
	}
	want := []string{"docs/b.txt"}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected checked files:\n--- got:\n+++ want:\n%s", cmp.Diff(got, want))
	}
}

func TestNoteAuthors(t *testing.T) {
	got := noteAuthors([]byte("// TODO(kortschak): fix\n# BUG(a.person, other): x\nx := NOTE(lower)\n  x := f(y)\n"))
	want := map[string]bool{"kortschak": true, "a.person": true, "other": true}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected note authors:\n--- got:\n+++ want:\n%s", cmp.Diff(got, want))
	}
}

var structTagTests = []struct {
	src  string
	want map[string]bool
}{
	{
		src: "type T struct {\n\tA int `json:\"aaa,omitempty\" yaml:\"bbb\"`\n}\n",
		want: map[string]bool{
			"json": true, "aaa": true, "omitempty": true,
			"yaml": true, "bbb": true,
		},
	},
	{
		src:  "var s = `not a tag`\n",
		want: map[string]bool{},
	},
	{
		src:  "var s = `key:unquoted`\n",
		want: map[string]bool{},
	},
}

func TestStructTagWords(t *testing.T) {
	for _, test := range structTagTests {
		got := structTagWords([]byte(test.src))
		if !cmp.Equal(got, test.want) {
			t.Errorf("unexpected tag words for %q:\n--- got:\n+++ want:\n%s", test.src, cmp.Diff(got, test.want))
		}
	}
}

func TestCheckStructTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	err := os.WriteFile(path, []byte("type T struct {\n\tA int `json:\"omitempty\"` // wurd\n}\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	c := New(newDict(t), nil, Options{Project: dir})
	r := c.CheckFile(path)
	var got []string
	for _, res := range r.Results {
		got = append(got, res.Word)
	}
	for _, w := range got {
		if w == "omitempty" || w == "json" {
			t.Errorf("struct tag word %q reported", w)
		}
	}
	if !slices.Contains(got, "wurd") {
		t.Errorf("expected misspelling in comment to be reported: got:%q", got)
	}
}

func TestSuggest(t *testing.T) {
	c := New(newDict(t), nil, Options{})
	got := c.Suggest("mistke")
	if len(got) == 0 || got[0] != "mistake" {
		t.Errorf("unexpected suggestions: %q", got)
	}
}
