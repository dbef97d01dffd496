// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokens

import (
	"bufio"
	"errors"
	"go/token"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"mvdan.cc/xurls/v2"
)

// GitScissors is the line after which git ignores commit message text.
const GitScissors = "# ------------------------ >8 ------------------------"

// DefaultMinHex is the default shortest run of hex digits that is
// considered to be a hash.
const DefaultMinHex = 7

// urls is used for finding URLs in lines.
var urls = xurls.Strict()

// Options holds tokenizer options.
type Options struct {
	// Lang is the language tag of the text, the file
	// extension without the dot. If Lang is empty, it
	// is derived from the name passed to NewScanner.
	Lang string

	// Skip is the set of literal texts to remove
	// from the input before it is split.
	Skip []string

	// MinHex is the shortest run of hex digits that
	// will be treated as a hash. If zero, DefaultMinHex
	// is used.
	MinHex int
}

// Scanner provides a lazy token scanner over a text stream in the manner
// of a bufio.Scanner. Successive calls to Scan step through the tokens of
// the text. Scanning stops at the end of the input, at the first read
// error or at the first line that is not valid UTF-8.
type Scanner struct {
	r    *bufio.Reader
	name string

	lang     string
	skip     []string
	minHex   int
	prefixes *prefixSet
	latex    bool
	commit   bool

	line   int
	offset int

	pending []Token
	tok     Token
	err     error
	done    bool
}

// NewScanner returns a new Scanner reading from r. The name is used for
// token positions and, when opts.Lang is empty, to determine the language
// of the text.
func NewScanner(r io.Reader, name string, opts Options) *Scanner {
	lang := opts.Lang
	if lang == "" {
		lang = LangOf(name)
	}
	min := opts.MinHex
	if min <= 0 {
		min = DefaultMinHex
	}
	var skip []string
	for _, s := range opts.Skip {
		if s != "" {
			skip = append(skip, s)
		}
	}
	// Mask longer literals first so that literals that
	// are substrings of other literals don't split them.
	sort.SliceStable(skip, func(i, j int) bool { return len(skip[i]) > len(skip[j]) })
	return &Scanner{
		r:        bufio.NewReader(r),
		name:     name,
		lang:     lang,
		skip:     skip,
		minHex:   min,
		prefixes: stringPrefixes[lang],
		latex:    lang == "tex",
		commit:   filepath.Base(name) == "COMMIT_EDITMSG",
	}
}

// LangOf returns the language tag for the named file, the lower case
// extension without the leading dot.
func LangOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Scan advances the Scanner to the next token, which will then be
// available through the Token method. It returns false when the scan
// stops, either by reaching the end of the input or an error.
func (s *Scanner) Scan() bool {
	for len(s.pending) == 0 {
		if s.done {
			return false
		}
		s.readLine()
	}
	s.tok, s.pending = s.pending[0], s.pending[1:]
	return true
}

// Token returns the most recent token generated by a call to Scan.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the first non-EOF error that was encountered by the Scanner.
func (s *Scanner) Err() error { return s.err }

// readLine reads the next line of input and splits it into tokens.
func (s *Scanner) readLine() {
	text, err := s.r.ReadString('\n')
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = err
			return
		}
		if text == "" {
			return
		}
	}
	s.line++
	start := s.offset
	s.offset += len(text)

	line := strings.TrimSuffix(text, "\n")
	if !utf8.ValidString(line) {
		s.err = &EncodingError{Filename: s.name, Line: s.line}
		s.done = true
		return
	}
	if s.commit && strings.TrimSpace(line) == GitScissors {
		s.done = true
		return
	}
	s.pending = s.split(line, start)
}

// split returns the tokens in line. The start parameter is the offset of
// the line in the input.
func (s *Scanner) split(line string, start int) []Token {
	var toks []Token

	// Masking replaces bytes with spaces so all offsets
	// into masked are valid offsets into line.
	masked := []byte(line)
	for _, loc := range urls.FindAllStringIndex(line, -1) {
		toks = append(toks, s.token(line[loc[0]:loc[1]], URL, start, loc[0]))
		mask(masked, loc[0], loc[1])
	}
	for _, lit := range s.skip {
		maskLiteral(masked, lit)
	}

	m := string(masked)
	for i := 0; i < len(m); {
		r, width := utf8.DecodeRuneInString(m[i:])
		if r == '\\' {
			i += s.escapeWidth(m[i:])
			continue
		}
		if !startsRun(r, m[i+width:]) {
			i += width
			continue
		}
		if n := s.prefixLen(m[i:]); n != 0 {
			// Drop the string prefix. The quote
			// is a boundary and will be skipped.
			i += n
			continue
		}
		end := i + runLen(m[i:])
		text := line[i:end]
		toks = append(toks, s.token(text, s.kindOf(text), start, i))
		i = end
	}

	sort.SliceStable(toks, func(i, j int) bool { return toks[i].Pos.Offset < toks[j].Pos.Offset })
	return toks
}

// token returns a token of the given kind at byte column col of the
// line starting at offset start.
func (s *Scanner) token(text string, kind Kind, start, col int) Token {
	return Token{
		Text: text,
		Kind: kind,
		Pos: token.Position{
			Filename: s.name,
			Offset:   start + col,
			Line:     s.line,
			Column:   col + 1,
		},
	}
}

// kindOf returns the kind of a run of word characters.
func (s *Scanner) kindOf(text string) Kind {
	switch {
	case strings.ContainsRune(text, '@'):
		return Email
	case isNumber(text):
		return Number
	case isHash(text, s.minHex):
		return Hash
	default:
		return Word
	}
}

// mask replaces b[i:j] with spaces.
func mask(b []byte, i, j int) {
	for k := i; k < j; k++ {
		b[k] = ' '
	}
}

// maskLiteral masks all occurrences of lit in b that are not part of a
// longer run of word characters.
func maskLiteral(b []byte, lit string) {
	for off := 0; off < len(b); {
		idx := strings.Index(string(b[off:]), lit)
		if idx < 0 {
			return
		}
		i := off + idx
		j := i + len(lit)
		before, _ := utf8.DecodeLastRune(b[:i])
		after, _ := utf8.DecodeRune(b[j:])
		if (i == 0 || !isWordRune(before)) && (j == len(b) || !isWordRune(after)) {
			mask(b, i, j)
			off = j
			continue
		}
		_, width := utf8.DecodeRune(b[i:])
		off = i + width
	}
}

// isWordRune returns whether r is part of a word.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_'
}

// isAlnum returns whether r is a letter or a digit.
func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// startsRun returns whether r followed by next starts a run of word
// characters. A leading '@' starts a run when it is followed by a letter.
func startsRun(r rune, next string) bool {
	if isWordRune(r) {
		return true
	}
	if r != '@' {
		return false
	}
	n, _ := utf8.DecodeRuneInString(next)
	return unicode.IsLetter(n)
}

// runLen returns the length in bytes of the run of word characters at the
// start of s. Within a run, an apostrophe joins two letters, and a dash, a
// dot or an at sign joins two letters or digits. An exponent sign is also
// joined when the run starts with a digit.
func runLen(s string) int {
	var prev rune
	for i := 0; i < len(s); {
		r, width := utf8.DecodeRuneInString(s[i:])
		next, _ := utf8.DecodeRuneInString(s[i+width:])
		switch {
		case isWordRune(r):
		case r == '@' && i == 0:
		case r == '\'' && unicode.IsLetter(prev) && unicode.IsLetter(next):
		case (r == '-' || r == '.' || r == '@') && isAlnum(prev) && isAlnum(next):
		case isExponentSign(prev, r, next) && s[0] >= '0' && s[0] <= '9':
		default:
			return i
		}
		prev = r
		i += width
	}
	return len(s)
}

// isExponentSign returns whether the current rune is an exponent sign, the
// heuristic is that the last rune is an e and the next is a digit.
func isExponentSign(last, curr, next rune) bool {
	if curr != '-' && curr != '+' {
		return false
	}
	last |= 'a' - 'A'
	return last == 'e' && unicode.IsDigit(next)
}

// escapeWidth returns the width of the escape sequence at the start of
// s, which must start with a backslash. Unrecognised escapes and all
// backslashes in LaTeX have a width of one.
func (s *Scanner) escapeWidth(text string) int {
	if s.latex || len(text) < 2 {
		return 1
	}
	switch text[1] {
	case 'a', 'b', 'f', 'n', 'r', 't', 'v', '0', '\\', '\'', '"':
		return 2
	case 'x':
		return hexEscapeWidth(text, 2)
	case 'u':
		return hexEscapeWidth(text, 4)
	case 'U':
		return hexEscapeWidth(text, 8)
	default:
		return 1
	}
}

// hexEscapeWidth returns the width of a \x, \u or \U escape with n hex
// digits at the start of text, or one if the digits are not present.
func hexEscapeWidth(text string, n int) int {
	if len(text) < 2+n || !isHex(text[2:2+n]) {
		return 1
	}
	return 2 + n
}
