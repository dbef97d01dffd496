// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dictionary provides spelling dictionaries for srcspell.
package dictionary

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnavailable is returned when a dictionary cannot be opened.
var ErrUnavailable = errors.New("dictionary unavailable")

// Dictionary is a spelling dictionary. Implementations must be safe for
// concurrent use.
type Dictionary interface {
	// IsCorrect returns whether word is correctly spelled.
	IsCorrect(word string) bool
	// Suggest returns suggested spellings for word,
	// best first.
	Suggest(word string) []string
	// Add adds word to the run-time dictionary.
	Add(word string)
	// Lang returns the language of the dictionary.
	Lang() string
}

// AddAll adds each of words that d does not already know. Words
// that are all uppercase are added in lower case.
func AddAll(d Dictionary, words []string) {
	for _, w := range words {
		w = quietly(w)
		if w == "" || d.IsCorrect(w) {
			continue
		}
		d.Add(w)
	}
}

// quietly returns the provided string lower cased if it is all upper case.
func quietly(s string) string {
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return s
		}
	}
	return strings.ToLower(s)
}

// isCapitalised returns whether s is an upper case letter followed
// only by lower case letters.
func isCapitalised(s string) bool {
	r, n := utf8.DecodeRuneInString(s)
	if !unicode.IsUpper(r) {
		return false
	}
	for _, r := range s[n:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// capitalise returns s with its first rune in upper case.
func capitalise(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
