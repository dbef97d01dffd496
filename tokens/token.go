// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tokens splits source text into positioned tokens and
// classifies them into words that are worth spell checking.
package tokens

import (
	"fmt"
	"go/token"
)

// Kind is the lexical kind of a raw token.
type Kind int

const (
	Word   Kind = iota // Text that may contain checkable words.
	URL                // A URL with a scheme.
	Email              // An email address or @mention.
	Hash               // A run of hex digits, such as a commit hash or UUID.
	Number             // A numeric literal.
)

var kindNames = [...]string{
	Word:   "word",
	URL:    "url",
	Email:  "email",
	Hash:   "hash",
	Number: "number",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Token is a span of text and its position in the source. Pos.Line and
// Pos.Column are 1-based and Pos.Column is a byte count, following the
// go/token convention.
type Token struct {
	Text string
	Pos  token.Position
	Kind Kind
}

// sub returns the word at byte offset off within t.
func (t Token) sub(text string, off int) Token {
	pos := t.Pos
	pos.Offset += off
	pos.Column += off
	return Token{Text: text, Pos: pos, Kind: Word}
}

func (t Token) String() string {
	return fmt.Sprintf("%v: %q (%v)", t.Pos, t.Text, t.Kind)
}

// EncodingError is returned when source text is not valid UTF-8 text.
// A zero Line indicates the whole file was rejected as binary data.
type EncodingError struct {
	Filename string
	Line     int
}

func (e *EncodingError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: binary content", e.Filename)
	}
	return fmt.Sprintf("%s:%d: invalid UTF-8", e.Filename, e.Line)
}
