// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokens

import "strings"

// prefixSet is a set of string literal prefixes for a language.
type prefixSet struct {
	prefixes map[string]bool
	fold     bool
}

func newPrefixSet(fold bool, prefixes ...string) *prefixSet {
	s := prefixSet{prefixes: make(map[string]bool), fold: fold}
	for _, p := range prefixes {
		s.prefixes[p] = true
	}
	return &s
}

func (s *prefixSet) has(p string) bool {
	if s.fold {
		p = strings.ToLower(p)
	}
	return s.prefixes[p]
}

// stringPrefixes holds the string literal prefixes for languages that
// have them, keyed by language tag.
var stringPrefixes = map[string]*prefixSet{
	"py":  python,
	"pyi": python,
	"pyw": python,

	"rs": newPrefixSet(false, "b", "r", "br"),

	"c":   cFamily,
	"h":   cFamily,
	"cc":  cFamily,
	"cpp": cFamily,
	"cxx": cFamily,
	"hpp": cFamily,
	"hxx": cFamily,
}

var (
	python  = newPrefixSet(true, "r", "u", "f", "b", "fr", "rf", "br", "rb")
	cFamily = newPrefixSet(false, "u8", "u", "U", "L", "R", "u8R", "uR", "UR", "LR")
)

// prefixLen returns the length of the string literal prefix at the start
// of text, or zero if there is none. A prefix must be immediately
// followed by a quote.
func (s *Scanner) prefixLen(text string) int {
	if s.prefixes == nil {
		return 0
	}
	var n int
	for n < len(text) && isASCIIAlnum(text[n]) {
		n++
	}
	if n == 0 || n == len(text) || (text[n] != '\'' && text[n] != '"') {
		return 0
	}
	if !s.prefixes.has(text[:n]) {
		return 0
	}
	return n
}

func isASCIIAlnum(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
