// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dictionary

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/vellum"
	"github.com/sajari/fuzzy"
)

// WordList is a dictionary built from a plain list of words, one per
// line. Lines may be in hunspell .dic format, in which case affix flags
// are ignored. Membership is tested with a finite state transducer and
// suggestions are made by a fuzzy spelling model.
type WordList struct {
	lang string

	fst   *vellum.FST
	model *fuzzy.Model

	mu    sync.RWMutex
	added map[string]bool
}

// OpenWordList returns a WordList for lang read from the file at path.
func OpenWordList(path, lang string) (*WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()
	return NewWordList(f, lang)
}

// NewWordList returns a WordList for lang read from r.
func NewWordList(r io.Reader, lang string) (*WordList, error) {
	words, err := readWords(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for _, w := range knownWords {
		e, ok, err := parseEntry(w)
		if err != nil {
			return nil, fmt.Errorf("%w in internal dictionary", err)
		}
		if ok {
			words = append(words, e.word)
		}
	}
	sort.Strings(words)
	words = dedup(words)

	var buf bytes.Buffer
	b, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, err
	}
	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(2)
	for _, w := range words {
		err = b.Insert([]byte(w), 0)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to build word list: %w", err)
		}
		model.TrainWord(strings.ToLower(w))
	}
	err = b.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to build word list: %w", err)
	}
	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}
	return &WordList{lang: lang, fst: fst, model: model, added: make(map[string]bool)}, nil
}

// readWords returns the words in r, a word list or hunspell .dic file.
func readWords(r io.Reader) ([]string, error) {
	var words []string
	err := readDic(r, "word list", func(e entry) {
		words = append(words, e.word)
	})
	return words, err
}

// dedup removes adjacent duplicates from the sorted slice s.
func dedup(s []string) []string {
	if len(s) < 2 {
		return s
	}
	i := 0
	for _, v := range s[1:] {
		if v != s[i] {
			i++
			s[i] = v
		}
	}
	return s[:i+1]
}

func (l *WordList) Lang() string { return l.lang }

// IsCorrect returns whether word is in the list. Capitalised and all
// upper case forms of listed lower case words are correct.
func (l *WordList) IsCorrect(word string) bool {
	if l.has(word) {
		return true
	}
	if isCapitalised(word) || isUpper(word) {
		return l.has(strings.ToLower(word))
	}
	return false
}

func (l *WordList) has(word string) bool {
	l.mu.RLock()
	ok := l.added[word]
	l.mu.RUnlock()
	if ok {
		return true
	}
	_, ok, err := l.fst.Get([]byte(word))
	return ok && err == nil
}

// Suggest returns up to five suggested spellings for word.
func (l *WordList) Suggest(word string) []string {
	sugg := l.model.SpellCheckSuggestions(strings.ToLower(word), 5)
	if isCapitalised(word) {
		for i, s := range sugg {
			sugg[i] = capitalise(s)
		}
	}
	return sugg
}

// Add adds word to the list.
func (l *WordList) Add(word string) {
	l.mu.Lock()
	l.added[word] = true
	l.mu.Unlock()
	l.model.TrainWord(strings.ToLower(word))
}

// isUpper returns whether s has letters and all of them are upper case.
func isUpper(s string) bool {
	var letter bool
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		letter = letter || unicode.IsLetter(r)
	}
	return letter
}
