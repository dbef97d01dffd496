// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kortschak/hunspell"
)

// Hunspell is a hunspell dictionary.
type Hunspell struct {
	lang string

	// hunspell handles are not safe for
	// concurrent use.
	mu    sync.Mutex
	spell *hunspell.Spell
}

// OpenHunspell returns a hunspell dictionary for lang found in the first
// of the directories in paths that holds one. Paths starting with "~/"
// are relative to the user's home directory. The dictionary is merged
// with common programming words and with the hunspell .dic files in
// extra that exist.
func OpenHunspell(paths []string, lang string, extra ...string) (*Hunspell, error) {
	var (
		ook      librarian
		aff, dic string
		err      error
	)
	for _, p := range paths {
		p, err = expandTilde(p)
		if err != nil {
			return nil, err
		}
		aff, dic, err = hunspell.Paths(p, lang)
		if err != nil {
			continue
		}
		ook, err = newLibrarian(aff, dic)
		if err == nil {
			break
		}
	}
	if ook.rules == nil {
		return nil, fmt.Errorf("%w: no %s dictionary found in: %s", ErrUnavailable, lang, strings.Join(paths, string(filepath.ListSeparator)))
	}
	for _, w := range knownWords {
		err = ook.addWord(w)
		if err != nil {
			return nil, fmt.Errorf("%w in internal dictionary", err)
		}
	}
	for _, path := range extra {
		err = ook.addDictionary(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// hunspell does not allow dictionaries to be loaded from
	// memory, so write the merged dictionary to disk.
	kw, err := os.CreateTemp("", "srcspell-*.dic")
	if err != nil {
		return nil, fmt.Errorf("failed to create merged dictionary: %w", err)
	}
	defer func() {
		// Close before removal for operating systems
		// that do not allow removing open files.
		kw.Close()
		os.Remove(kw.Name())
	}()
	err = ook.writeTo(kw)
	if err != nil {
		return nil, err
	}
	err = kw.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to write merged dictionary: %w", err)
	}
	spell, err := hunspell.NewSpellPaths(aff, kw.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Hunspell{lang: lang, spell: spell}, nil
}

func (h *Hunspell) Lang() string { return h.lang }

func (h *Hunspell) IsCorrect(word string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.spell.IsCorrect(word)
}

func (h *Hunspell) Suggest(word string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.spell.Suggest(word)
}

func (h *Hunspell) Add(word string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.spell.Add(word)
}

// expandTilde expands a leading "~/" in path to the user's home directory.
func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not expand tilde: %w", err)
	}
	return filepath.Join(dir, path[2:]), nil
}

// librarian collects the words of hunspell dictionaries and the union
// of the affix flags given to each word.
type librarian struct {
	rules map[string]string
}

// newLibrarian returns a librarian holding the words of the .dic file at
// dic. The affix file aff must exist for the dictionary to be usable.
func newLibrarian(aff, dic string) (librarian, error) {
	_, err := os.Stat(aff)
	if err != nil {
		return librarian{}, err
	}
	l := librarian{rules: make(map[string]string)}
	err = l.addDictionary(dic)
	if err != nil {
		return librarian{}, err
	}
	return l, nil
}

// addDictionary adds the words of the .dic or word list file at path.
func (l librarian) addDictionary(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return readDic(f, path, l.add)
}

// addWord adds a single .dic entry.
func (l librarian) addWord(line string) error {
	e, ok, err := parseEntry(line)
	if ok {
		l.add(e)
	}
	return err
}

func (l librarian) add(e entry) {
	l.rules[e.word] = mergeRules(l.rules[e.word], e.flags)
}

// mergeRules returns the sorted union of the affix flags in a and b.
func mergeRules(a, b string) string {
	if a == "" || b == "" {
		return a + b
	}
	set := make(map[rune]bool)
	for _, r := range a + b {
		set[r] = true
	}
	flags := make([]rune, 0, len(set))
	for r := range set {
		flags = append(flags, r)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })
	return string(flags)
}

// writeTo writes the librarian's words to w in sorted hunspell .dic
// format.
func (l librarian) writeTo(w io.Writer) error {
	words := make([]string, 0, len(l.rules))
	for word := range l.rules {
		words = append(words, word)
	}
	sort.Strings(words)

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, len(words))
	for _, word := range words {
		if r := l.rules[word]; r != "" {
			word += "/" + r
		}
		fmt.Fprintln(bw, word)
	}
	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("failed to write merged dictionary: %w", err)
	}
	return nil
}
