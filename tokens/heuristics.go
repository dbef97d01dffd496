// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokens

import (
	"go/scanner"
	"go/token"
	"math"
	"strings"
	"unicode"
)

// allUpper returns whether all runes in s are uppercase. As a special
// case, a final 's' is also considered uppercase to allow plurals of
// initialisms and acronyms.
func allUpper(s string) bool {
	s = strings.TrimSuffix(s, "s")
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// allDigits returns whether s is a non-empty run of decimal digits,
// optionally grouped with underscores.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	var digit bool
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case r == '_':
		default:
			return false
		}
	}
	return digit
}

// isHex returns whether all bytes of s are hex digits.
func isHex(s string) bool {
	for _, b := range s {
		b |= 'a' - 'A' // Lower case in the relevant range.
		if (b < '0' || '9' < b) && (b < 'a' || 'f' < b) {
			return false
		}
	}
	return true
}

// isHash returns whether s looks like a hash: dash separated groups of
// hex digits with at least min digits in total, at least one of them a
// decimal digit. This matches abbreviated commit hashes and UUIDs.
func isHash(s string, min int) bool {
	var n int
	var digit bool
	for _, g := range strings.Split(s, "-") {
		if g == "" || !isHex(g) {
			return false
		}
		n += len(g)
		if !digit {
			digit = strings.ContainsAny(g, "0123456789")
		}
	}
	return digit && n >= min
}

// isNumber abuses the go/scanner to check whether word is a number.
func isNumber(word string) bool {
	if word == "" || (word[0] != '.' && (word[0] < '0' || '9' < word[0])) {
		return false
	}
	var errored bool
	eh := func(_ token.Position, _ string) {
		errored = true
	}
	fset := token.NewFileSet()
	var scan scanner.Scanner
	scan.Init(fset.AddFile("", fset.Base(), len(word)), []byte(word), eh, 0)
	_, tok, lit := scan.Scan()
	return !errored && lit == word && (tok == token.INT || tok == token.FLOAT || tok == token.IMAG)
}

// entropy returns the entropy of the provided text in bits.
func entropy(text string) float64 {
	if text == "" {
		return 0
	}

	var counts [256]float64
	for _, b := range []byte(text) {
		counts[b]++
	}
	n := len(text)

	// e = -∑i=1..k((p_i)*log(p_i))
	var e float64
	for _, cnt := range counts {
		if cnt == 0 {
			continue
		}
		p := cnt / float64(n)
		e += p * math.Log2(p)
	}
	if e == 0 {
		// Don't negate zero.
		return 0
	}
	return -e
}

// expectedEntropy returns the expected entropy for a sequence of n letters
// uniformly chosen from an alphabet of s letters.
func expectedEntropy(n, s int) float64 {
	if n > s {
		n = s
	}
	if n < 2 {
		return 0
	}
	return -math.Log2(1 / float64(n))
}
