// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kortschak/ct"

	"github.com/kortschak/srcspell/checker"
	"github.com/kortschak/srcspell/tokens"
)

// reporter writes misspelling reports.
type reporter struct {
	out  io.Writer
	json bool
	show bool

	mode      suggest
	suggester interface{ Suggest(string) []string }
	suggested map[string][]string

	// warn is the decoration for incorrectly spelled words.
	warn func(...interface{}) fmt.Formatter
	// hint is the decoration for suggested words.
	hint func(...interface{}) fmt.Formatter

	// lines is a cache of file lines used to show
	// the context of misspellings.
	lines map[string][]string
}

// newReporter returns a reporter writing to out configured by cfg. The
// suggester is used to make suggestions when cfg requests them.
func newReporter(out io.Writer, cfg config, s interface{ Suggest(string) []string }) *reporter {
	r := &reporter{
		out:       out,
		json:      cfg.json,
		show:      cfg.Show && !cfg.json,
		mode:      cfg.MakeSuggestions,
		suggester: s,
		warn:      ct.Mode(0).Paint,
		hint:      ct.Mode(0).Paint,
	}
	if cfg.color && !cfg.json {
		r.warn = (ct.Italic | ct.Fg(ct.BoldRed)).Paint
		r.hint = (ct.Italic | ct.Fg(ct.BoldGreen)).Paint
	}
	if r.mode != never {
		r.suggested = make(map[string][]string)
	}
	if r.show {
		r.lines = make(map[string][]string)
	}
	return r
}

// empty is a word suggestion sentinel indicating that a previous
// suggestion has been made.
var empty = []string{}

// jsonResult is the JSON representation of a misspelling.
type jsonResult struct {
	Path        string   `json:"path"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	Offset      int      `json:"offset"`
	Word        string   `json:"word"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// report writes the results in order.
func (r *reporter) report(results []checker.Result) error {
	enc := json.NewEncoder(r.out)
	for _, res := range results {
		suggestions := r.suggestions(res.Word)
		if r.json {
			err := enc.Encode(jsonResult{
				Path:        rel(res.Pos.Filename),
				Line:        res.Pos.Line,
				Column:      res.Pos.Column,
				Offset:      res.Pos.Offset,
				Word:        res.Word,
				Suggestions: suggestions,
			})
			if err != nil {
				return err
			}
			continue
		}

		p := res.Pos
		var buf strings.Builder
		fmt.Fprintf(&buf, "%s:%d:%d: %q is misspelled", rel(p.Filename), p.Line, p.Column, res.Word)
		if len(suggestions) != 0 {
			buf.WriteString(" (suggest: ")
			for i, s := range suggestions {
				if i != 0 {
					buf.WriteString(", ")
				}
				fmt.Fprintf(&buf, "%s", r.hint(s))
			}
			buf.WriteString(")")
		}
		buf.WriteByte('\n')
		if r.show {
			if line, ok := r.line(p.Filename, p.Line); ok && p.Column-1+len(res.Word) <= len(line) {
				start := p.Column - 1
				end := start + len(res.Word)
				fmt.Fprintf(&buf, "\t%s%s%s\n", line[:start], r.warn(line[start:end]), line[end:])
			}
		}
		_, err := io.WriteString(r.out, buf.String())
		if err != nil {
			return err
		}
	}
	return nil
}

// suggestions returns the suggestions to make for word according to the
// reporter's suggestion mode.
func (r *reporter) suggestions(word string) []string {
	switch r.mode {
	case once:
		if r.suggested[word] != nil {
			return nil
		}
		r.suggested[word] = empty
		return r.suggester.Suggest(word)
	case each:
		return r.suggester.Suggest(word)
	case always:
		s, ok := r.suggested[word]
		if !ok {
			s = r.suggester.Suggest(word)
			// Cache suggestions.
			r.suggested[word] = s
		}
		return s
	default:
		return nil
	}
}

// line returns the 1-based line n of the file at path.
func (r *reporter) line(path string, n int) (string, bool) {
	lines, ok := r.lines[path]
	if !ok {
		b, err := os.ReadFile(path)
		if err == nil {
			lines = strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
		}
		r.lines[path] = lines
	}
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimSuffix(lines[n-1], "\r"), true
}

// failures writes the reasons for file failures to w.
func failures(w io.Writer, failed []checker.FileReport) {
	for _, f := range failed {
		fmt.Fprintf(w, "%s: %v\n", rel(f.Path), unwrapPath(f.Err))
	}
}

// unwrapPath returns the error underlying a file error so that the path
// is not repeated.
func unwrapPath(err error) error {
	switch err := err.(type) {
	case *checker.IOError:
		if pe, ok := err.Err.(*os.PathError); ok {
			return pe.Err
		}
		return err.Err
	case *tokens.EncodingError:
		if err.Line == 0 {
			return errors.New("binary content")
		}
		return fmt.Errorf("line %d: invalid UTF-8", err.Line)
	default:
		return err
	}
}

// summary writes a summary of the check to w.
func summary(w io.Writer, rep checker.Report, misspelled int) {
	fmt.Fprintf(w, "%d files checked, %d misspelled %s, %d files failed\n",
		rep.Checked, misspelled, plural(misspelled, "word", "words"), len(rep.Failures))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// rel returns the wd-relative path for the input if possible.
func rel(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return rel
}
