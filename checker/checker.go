// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package checker implements the srcspell file checking pipeline.
//
// Each file is read, tokenized and its tokens are classified into words.
// Words that are not ignored by the rule snapshot are checked against a
// dictionary. Files are checked in parallel and their results are merged
// in path order, so the results of a run are ordered by file, line and
// column.
package checker

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go/token"

	"golang.org/x/text/unicode/norm"

	"github.com/kortschak/srcspell/dictionary"
	"github.com/kortschak/srcspell/ignore"
	"github.com/kortschak/srcspell/storage"
	"github.com/kortschak/srcspell/tokens"
)

// State is the state of a file in the checking pipeline. A file moves
// from Unopened to Tokenizing, then through Classifying, Resolving and
// Dictionary for each token, and ends in Done, Failed or Skipped.
type State int

const (
	Unopened State = iota
	Tokenizing
	Classifying
	Resolving
	Dictionary
	Done
	Failed
	Skipped
)

var stateNames = [...]string{
	Unopened:    "unopened",
	Tokenizing:  "tokenizing",
	Classifying: "classifying",
	Resolving:   "resolving",
	Dictionary:  "dictionary",
	Done:        "done",
	Failed:      "failed",
	Skipped:     "skipped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Result is a misspelled word.
type Result struct {
	// Word is the misspelled word.
	Word string
	// Pos is the position of the word.
	Pos token.Position
	// Rel is the slash-separated path of the
	// file relative to the project root.
	Rel string
}

func (r Result) String() string {
	return fmt.Sprintf("%v: %q is misspelled", r.Pos, r.Word)
}

// FileReport is the outcome of checking a single file.
type FileReport struct {
	Path    string
	Rel     string
	State   State
	Results []Result

	// Err is the reason for a Failed state.
	Err error
}

// Report is the outcome of checking a set of files.
type Report struct {
	// Results holds all misspellings ordered
	// by file, line and column.
	Results []Result
	// Failures holds the reports of files
	// that could not be checked, in path order.
	Failures []FileReport

	Checked int
	Skipped int
}

// IOError is a failure to read a file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// Options holds checker options.
type Options struct {
	// Project is the absolute path of the project root.
	Project string

	// Workers is the number of files checked
	// concurrently. If zero, GOMAXPROCS is used.
	Workers int

	// Classifier is the token classifier. If nil,
	// tokens.DefaultClassifierConfig is used.
	Classifier *tokens.Classifier

	// MinHex is the shortest hex run treated as a hash.
	MinHex int

	// Exclude is a set of doublestar glob patterns of
	// project-relative paths that are not checked.
	Exclude []string
}

// Checker checks files for misspelled words. A Checker is safe for
// concurrent use when its dictionary is.
type Checker struct {
	dict     dictionary.Dictionary
	resolver *ignore.Resolver
	classify *tokens.Classifier
	opts     Options

	// trace, if not nil, is called on each
	// state transition of a checked file.
	trace func(path string, s State)
}

// New returns a new Checker using the provided dictionary and ignore rule
// snapshot. A nil resolver ignores nothing.
func New(dict dictionary.Dictionary, resolver *ignore.Resolver, opts Options) *Checker {
	c := &Checker{
		dict:     dict,
		resolver: resolver,
		classify: opts.Classifier,
		opts:     opts,
	}
	if c.classify == nil {
		// The default configuration has no patterns to fail.
		c.classify, _ = tokens.NewClassifier(tokens.DefaultClassifierConfig)
	}
	if c.opts.Workers <= 0 {
		c.opts.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Suggest returns suggested spellings for word, best first.
func (c *Checker) Suggest(word string) []string {
	return c.dict.Suggest(word)
}

// Check checks the files at the provided paths. Directories are walked.
// Failures to check individual files are collected in the report and do
// not stop the run.
func (c *Checker) Check(paths []string) Report {
	var rep Report
	files, failures := c.collect(paths)
	rep.Failures = failures

	reports := make([]FileReport, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < c.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				reports[j] = c.checkFile(files[j].path, files[j].explicit)
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, r := range reports {
		switch r.State {
		case Done:
			rep.Checked++
			rep.Results = append(rep.Results, r.Results...)
		case Skipped:
			rep.Skipped++
		case Failed:
			rep.Failures = append(rep.Failures, r)
		}
	}
	sortFailures(rep.Failures)
	return rep
}

// CheckFile checks the file at path. If the file cannot be read or is not
// text, the returned report is in the Failed state and holds the reason.
func (c *Checker) CheckFile(path string) FileReport {
	return c.checkFile(path, true)
}

// checkFile checks the file at path. Binary files found by walking a
// directory are skipped rather than failed.
func (c *Checker) checkFile(path string, explicit bool) FileReport {
	rel := c.rel(path)
	r := FileReport{Path: path, Rel: rel, State: Unopened}
	if c.skip(rel, false) {
		c.step(&r, Skipped)
		return r
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return c.failed(r, &IOError{Path: path, Err: err})
	}
	if isBinary(b) {
		if !explicit {
			c.step(&r, Skipped)
			return r
		}
		return c.failed(r, &tokens.EncodingError{Filename: path})
	}

	c.step(&r, Tokenizing)
	ctx := ignore.Context{Lang: tokens.LangOf(path), Project: c.opts.Project, Path: rel}
	literals := c.resolver.SkippedTokens(ctx)
	skip := noteAuthors(b)
	if ctx.Lang == "go" {
		for w := range structTagWords(b) {
			skip[w] = true
		}
	}
	for _, l := range literals {
		skip[l] = true
	}
	sc := tokens.NewScanner(bytes.NewReader(b), path, tokens.Options{
		Lang:   ctx.Lang,
		Skip:   literals,
		MinHex: c.opts.MinHex,
	})
	for sc.Scan() {
		c.step(&r, Classifying)
		d := c.classify.Classify(sc.Token(), skip)
		for _, w := range d.Words {
			word := norm.NFC.String(w.Text)
			c.step(&r, Resolving)
			if c.resolver.Ignored(word, ctx) {
				continue
			}
			c.step(&r, Dictionary)
			if c.isCorrect(word) {
				continue
			}
			r.Results = append(r.Results, Result{Word: w.Text, Pos: w.Pos, Rel: rel})
		}
		c.step(&r, Tokenizing)
	}
	err = sc.Err()
	if err != nil {
		var encErr *tokens.EncodingError
		if !errors.As(err, &encErr) {
			err = &IOError{Path: path, Err: err}
		}
		return c.failed(r, err)
	}
	c.step(&r, Done)
	return r
}

// step moves r to state s.
func (c *Checker) step(r *FileReport, s State) {
	r.State = s
	if c.trace != nil {
		c.trace(r.Path, s)
	}
}

// isCorrect returns whether the dictionary accepts word, allowing
// a possessive suffix.
func (c *Checker) isCorrect(word string) bool {
	if c.dict.IsCorrect(word) {
		return true
	}
	for _, suffix := range []string{"'s", "’s"} {
		if stem, ok := strings.CutSuffix(word, suffix); ok && stem != "" {
			return c.dict.IsCorrect(stem)
		}
	}
	return false
}

// failed returns r in the Failed state with the provided reason.
// Partial results are discarded.
func (c *Checker) failed(r FileReport, err error) FileReport {
	c.step(&r, Failed)
	r.Err = err
	r.Results = nil
	return r
}

// rel returns the slash-separated path of path relative to the project
// root, or the slash-separated path itself if it is outside the project.
func (c *Checker) rel(path string) string {
	if c.opts.Project == "" {
		return filepath.ToSlash(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(c.opts.Project, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// isBinary returns whether b holds bytes never found in text files.
func isBinary(b []byte) bool {
	for _, c := range b {
		if neverInText[c] {
			return true
		}
	}
	return false
}

// neverInText is the set of bytes never found in ASCII/UTF-8 text files.
var neverInText = [256]bool{
	// First row minus BEL BS TAB LF VT FF CR.
	0x00: true, 0x01: true, 0x02: true, 0x03: true, 0x04: true,
	0x05: true, 0x06: true, 0x0e: true, 0x0f: true,

	// Second row minus ESC.
	0x10: true, 0x11: true, 0x12: true, 0x13: true, 0x14: true,
	0x15: true, 0x16: true, 0x17: true, 0x18: true, 0x19: true,
	0x1a: true, 0x1c: true, 0x1d: true, 0x1e: true, 0x1f: true,

	// DEL.
	0x7f: true,
}

// skipNames are files that are never checked.
var skipNames = map[string]bool{
	storage.LocalName: true,
}
