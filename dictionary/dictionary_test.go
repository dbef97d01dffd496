// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dictionary

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const words = `6
# comment
mistake/MS
spelling
word/S

London
`

func TestWordList(t *testing.T) {
	l, err := NewWordList(strings.NewReader(words), "en_US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Lang() != "en_US" {
		t.Errorf("unexpected language: got:%q want:%q", l.Lang(), "en_US")
	}
	for _, test := range []struct {
		word string
		want bool
	}{
		{word: "mistake", want: true},
		{word: "Mistake", want: true},
		{word: "MISTAKE", want: true},
		{word: "MisTake", want: false},
		{word: "missstake", want: false},
		{word: "London", want: true},
		{word: "london", want: false},
		{word: "goroutine", want: true},
		{word: "6", want: false},
		{word: "comment", want: false},
	} {
		got := l.IsCorrect(test.word)
		if got != test.want {
			t.Errorf("unexpected result for IsCorrect(%q): got:%t want:%t", test.word, got, test.want)
		}
	}
}

func TestWordListSuggest(t *testing.T) {
	l, err := NewWordList(strings.NewReader(words), "en_US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := l.Suggest("missstake")
	if len(got) == 0 || got[0] != "mistake" {
		t.Errorf("unexpected suggestions: got:%q want first:%q", got, "mistake")
	}
	got = l.Suggest("Spellling")
	if len(got) == 0 || got[0] != "Spelling" {
		t.Errorf("unexpected suggestions: got:%q want first:%q", got, "Spelling")
	}
}

func TestWordListAdd(t *testing.T) {
	l, err := NewWordList(strings.NewReader(words), "en_US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	AddAll(l, []string{"BSD", "Kortschak", "mistake"})
	for _, w := range []string{"bsd", "BSD", "Kortschak"} {
		if !l.IsCorrect(w) {
			t.Errorf("expected %q to be correct after adding", w)
		}
	}
}

func TestOpenWordListMissing(t *testing.T) {
	_, err := OpenWordList(filepath.Join(t.TempDir(), "none.txt"), "en_US")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrUnavailable)
	}
}

var readDicTests = []struct {
	name    string
	text    string
	want    []entry
	wantErr string
}{
	{
		name: "dic",
		text: "3\nword/S\tpo:noun\nhttp://example.com/a/b\n12\n",
		want: []entry{{word: "word", flags: "S"}, {word: "12"}},
	},
	{
		name: "list",
		text: "# words\n\nalpha\n  beta  \n",
		want: []entry{{word: "alpha"}, {word: "beta"}},
	},
	{
		name:    "invalid",
		text:    "alpha\nbad/entry/x\n",
		wantErr: `invalid dictionary entry "bad/entry/x" at invalid:2`,
	},
}

func TestReadDic(t *testing.T) {
	for _, test := range readDicTests {
		var got []entry
		err := readDic(strings.NewReader(test.text), test.name, func(e entry) {
			got = append(got, e)
		})
		if test.wantErr != "" {
			if err == nil || err.Error() != test.wantErr {
				t.Errorf("unexpected error for %s: got:%v want:%s", test.name, err, test.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("unexpected error for %s: %v", test.name, err)
		}
		if !cmp.Equal(got, test.want, cmp.AllowUnexported(entry{})) {
			t.Errorf("unexpected entries for %s:\n--- got:\n+++ want:\n%s", test.name, cmp.Diff(got, test.want, cmp.AllowUnexported(entry{})))
		}
	}
}

func TestMergeRules(t *testing.T) {
	for _, test := range []struct {
		a, b string
		want string
	}{
		{a: "", b: "", want: ""},
		{a: "MS", b: "", want: "MS"},
		{a: "", b: "DG", want: "DG"},
		{a: "SM", b: "DGS", want: "DGMS"},
	} {
		got := mergeRules(test.a, test.b)
		if got != test.want {
			t.Errorf("unexpected result for mergeRules(%q, %q): got:%q want:%q", test.a, test.b, got, test.want)
		}
	}
}

func TestLibrarian(t *testing.T) {
	dir := t.TempDir()
	aff := filepath.Join(dir, "xx.aff")
	dic := filepath.Join(dir, "xx.dic")
	err := os.WriteFile(aff, nil, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(dic, []byte("3\nword/S\nword/M\nhttp://example.com/x\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	l, err := newLibrarian(aff, dic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"word": "MS"}
	if !cmp.Equal(l.rules, want) {
		t.Errorf("unexpected rules:\n--- got:\n+++ want:\n%s", cmp.Diff(l.rules, want))
	}
	err = l.addWord("bad/entry/x")
	if err == nil {
		t.Error("expected error for invalid entry")
	}
}

func TestOpenHunspellMissing(t *testing.T) {
	_, err := OpenHunspell([]string{t.TempDir()}, "xx_XX")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("unexpected error: got:%v want:%v", err, ErrUnavailable)
	}
}

func TestHunspell(t *testing.T) {
	h, err := OpenHunspell([]string{"/usr/share/hunspell", "/usr/share/myspell", "/Library/Spelling"}, "en_US")
	if err != nil {
		t.Skipf("no system dictionary: %v", err)
	}
	for _, w := range []string{"mistake", "goroutine"} {
		if !h.IsCorrect(w) {
			t.Errorf("expected %q to be correct", w)
		}
	}
	if h.IsCorrect("missstake") {
		t.Error("expected missstake to be incorrect")
	}
	h.Add("missstake")
	if !h.IsCorrect("missstake") {
		t.Error("expected added word to be correct")
	}
}
