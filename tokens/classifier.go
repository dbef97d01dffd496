// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tokens

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kortschak/camel"
)

// Action is a classification decision for a raw token.
type Action int

const (
	Keep  Action = iota // The token holds a single word.
	Skip                // The token holds nothing to check.
	Split               // The token holds more than one word.
)

func (a Action) String() string {
	switch a {
	case Keep:
		return "keep"
	case Skip:
		return "skip"
	case Split:
		return "split"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Decision is the result of classifying a token. Words holds the words
// to check, each with its own position.
type Decision struct {
	Action Action
	Words  []Token
}

// ClassifierConfig holds the word filtering parameters for a Classifier.
type ClassifierConfig struct {
	// MinWordLen is the shortest word in runes that
	// will be checked. Values less than two check
	// all words.
	MinWordLen int

	// MaxWordLen is the longest word in runes that
	// will be checked. Zero checks all words.
	MaxWordLen int

	// IgnoreUpper drops words that are all uppercase.
	IgnoreUpper bool

	// Known is a set of words that must not be split
	// on case changes, for example "IPv4".
	Known []string

	// Accept is a set of regular expressions matching
	// words that are never checked.
	Accept []string

	// Entropy specifies filtering of tokens by their
	// character entropy.
	Entropy EntropyFilter
}

// EntropyFilter specifies behaviour of the entropy filter.
type EntropyFilter struct {
	Filter bool `toml:"filter"`

	// MinLenFiltered is the shortest token
	// length that will be considered by
	// the entropy filter.
	MinLenFiltered int `toml:"min_len_filtered"`

	// Accept is the range of effective
	// alphabet sizes that are acceptable
	// as text that may contain words
	// needing spell checking.
	Accept IntRange `toml:"accept"`
}

// IntRange is an int interval.
type IntRange struct {
	Low  int `toml:"low"`
	High int `toml:"high"`
}

// DefaultClassifierConfig is the default classifier configuration.
var DefaultClassifierConfig = ClassifierConfig{
	MinWordLen: 3,
	MaxWordLen: 40,
	Entropy: EntropyFilter{
		Filter:         false,
		MinLenFiltered: 24,
		Accept:         IntRange{Low: 2, High: 20},
	},
}

// Classifier decides which words in a raw token should be checked.
// A Classifier is safe for concurrent use.
type Classifier struct {
	cfg    ClassifierConfig
	camel  camel.Splitter
	accept []*regexp.Regexp
}

// NewClassifier returns a new Classifier using the provided configuration.
func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	c := &Classifier{
		cfg:   cfg,
		camel: camel.NewSplitter(cfg.Known),
	}
	for _, p := range cfg.Accept {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid accept pattern: %w", err)
		}
		c.accept = append(c.accept, re)
	}
	return c, nil
}

// Classify returns the classification of the raw token t. Tokens that
// are not words, that are all digits or that are in the skip set are
// skipped. Otherwise the token is split into words at separators, digits
// and case changes, and words rejected by the configured filters are
// dropped.
func (c *Classifier) Classify(t Token, skip map[string]bool) Decision {
	if t.Kind != Word || skip[t.Text] || allDigits(t.Text) || c.unexpectedEntropy(t.Text) {
		return Decision{Action: Skip}
	}

	var words []Token
	for _, seg := range segments(t.Text) {
		for _, w := range c.splitCase(seg.text) {
			if c.rejected(w.text) {
				continue
			}
			words = append(words, t.sub(w.text, seg.off+w.off))
		}
	}
	switch len(words) {
	case 0:
		return Decision{Action: Skip}
	case 1:
		return Decision{Action: Keep, Words: words}
	default:
		return Decision{Action: Split, Words: words}
	}
}

// part is a substring and its byte offset in its parent.
type part struct {
	text string
	off  int
}

// segments returns the runs of letters in s. Apostrophes between two
// letters are part of a run. All other characters separate runs.
func segments(s string) []part {
	var (
		parts []part
		prev  rune
	)
	start := -1
	for i, r := range s {
		letter := unicode.IsLetter(r) || (unicode.IsMark(r) && start >= 0)
		if r == '\'' && start >= 0 && unicode.IsLetter(prev) {
			next, _ := utf8.DecodeRuneInString(s[i+1:])
			letter = unicode.IsLetter(next)
		}
		switch {
		case letter && start < 0:
			start = i
		case !letter && start >= 0:
			parts = append(parts, part{text: s[start:i], off: start})
			start = -1
		}
		prev = r
	}
	if start >= 0 {
		parts = append(parts, part{text: s[start:], off: start})
	}
	return parts
}

// splitCase splits a run of letters at case changes. A run that is all
// uppercase, optionally followed by a plural 's', is a single word
// without the 's'.
func (c *Classifier) splitCase(s string) []part {
	if allUpper(s) {
		return []part{{text: strings.TrimSuffix(s, "s")}}
	}
	if !hasInnerUpper(s) {
		return []part{{text: s}}
	}
	words := c.camel.Split(s)
	if strings.Join(words, "") != s {
		// Don't lose track of positions.
		return []part{{text: s}}
	}
	parts := make([]part, 0, len(words))
	var off int
	for _, w := range words {
		parts = append(parts, part{text: w, off: off})
		off += len(w)
	}
	return parts
}

// hasInnerUpper returns whether s has an uppercase rune after its first.
func hasInnerUpper(s string) bool {
	_, width := utf8.DecodeRuneInString(s)
	return strings.IndexFunc(s[width:], unicode.IsUpper) >= 0
}

// rejected returns whether the word should not be checked.
func (c *Classifier) rejected(word string) bool {
	n := utf8.RuneCountInString(word)
	if n < c.cfg.MinWordLen || (c.cfg.MaxWordLen > 0 && n > c.cfg.MaxWordLen) {
		return true
	}
	if c.cfg.IgnoreUpper && allUpper(word) {
		return true
	}
	for _, re := range c.accept {
		if re.MatchString(word) {
			return true
		}
	}
	return false
}

// unexpectedEntropy returns whether the text falls outside the expected
// ranges for text.
func (c *Classifier) unexpectedEntropy(text string) bool {
	f := c.cfg.Entropy
	if !f.Filter || len(text) < f.MinLenFiltered {
		return false
	}
	e := entropy(text)
	low := expectedEntropy(len(text), f.Accept.Low)
	high := expectedEntropy(len(text), f.Accept.High)
	return e < low || high < e
}
