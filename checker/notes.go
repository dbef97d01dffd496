// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package checker

import (
	"regexp"
	"strings"
	"unicode"
)

// noteRx matches a note marker, "MARKER(uid):", at the start of a
// comment or line, in the manner of go/doc. The MARKER is at least two
// upper case letters and the uid at least one character.
var noteRx = regexp.MustCompile(`(?m)^[ \t]*(?:(?://|/\*|#|--|;+|%|\*)[ \t]*)?[A-Z][A-Z]+\(([^)]+)\):?`)

// noteAuthors returns the set of words in the uids of notes in text,
// so that "// TODO(kortschak): ..." does not report the author's name.
func noteAuthors(text []byte) map[string]bool {
	authors := make(map[string]bool)
	for _, m := range noteRx.FindAllSubmatch(text, -1) {
		uid := strings.FieldsFunc(string(m[1]), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.'
		})
		for _, w := range uid {
			authors[w] = true
		}
	}
	return authors
}
