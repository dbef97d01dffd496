// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sys/execabs"

	"github.com/kortschak/srcspell/checker"
)

// changeFilter is a filter to exclude misspellings that are not in a set
// of code changes. It is keyed by project-relative path.
type changeFilter map[string][]lineRange

// filter returns the results that are in changes in the filter. If f is
// nil all results are returned.
func (f changeFilter) filter(results []checker.Result) []checker.Result {
	if f == nil {
		return results
	}
	kept := results[:0:0]
	for _, r := range results {
		if f.isInChange(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

// isInChange returns whether r is in changes in the filter.
func (f changeFilter) isInChange(r checker.Result) bool {
	for _, l := range f[r.Rel] {
		if l.start <= r.Pos.Line && r.Pos.Line <= l.end {
			return true
		}
	}
	return false
}

// lineRange is a range of lines in a file, [start,end].
type lineRange struct{ start, end int }

// gitAdditionsSince returns the line additions in the git repo holding
// the project at root since the specified ref. The context parameter
// specifies how many context lines are to be considered in an addition.
func gitAdditionsSince(root, ref string, context int) (changeFilter, error) {
	gitDiff := execabs.Command("git", "diff", "--relative", fmt.Sprintf("-U%d", context), ref)
	gitDiff.Dir = root
	var buf bytes.Buffer
	gitDiff.Stdout = &buf
	err := gitDiff.Run()
	if err != nil {
		return nil, fmt.Errorf("git diff: %w", err)
	}
	return additions(&buf)
}

// additions returns the line additions calculated from unified diff data
// in r.
func additions(r io.Reader) (changeFilter, error) {
	const (
		fileAdditionPrefix = "+++ b/"
		hunkPrefix         = "@@ "
	)

	adds := make(changeFilter)
	sc := bufio.NewScanner(r)
	var path string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, fileAdditionPrefix):
			path = strings.TrimPrefix(line, fileAdditionPrefix)
		case strings.HasPrefix(line, hunkPrefix):
			f := strings.SplitN(line, " ", 4)
			if len(f) < 3 || !strings.HasPrefix(f[2], "+") {
				return nil, fmt.Errorf("malformed diff line: %s", line)
			}
			lr, ok, err := hunkRange(f[2][1:])
			if err != nil {
				return nil, err
			}
			if ok {
				adds[path] = append(adds[path], lr)
			}
		}
	}
	return adds, sc.Err()
}

// hunkRange returns the line range of a hunk's new file range, "l,s" or
// "l". It returns false if the hunk adds no lines.
func hunkRange(r string) (_ lineRange, ok bool, err error) {
	start, size, found := strings.Cut(r, ",")
	n := 1
	if found {
		n, err = strconv.Atoi(size)
		if err != nil {
			return lineRange{}, false, fmt.Errorf("could not parse line range end: %w", err)
		}
		if n == 0 {
			return lineRange{}, false, nil
		}
	}
	l, err := strconv.Atoi(start)
	if err != nil {
		return lineRange{}, false, fmt.Errorf("could not parse line range start: %w", err)
	}
	return lineRange{start: l, end: l + n - 1}, true, nil
}
