// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// entry is a word and its hunspell affix flags.
type entry struct {
	word  string
	flags string
}

// parseEntry returns the entry held in a line of a word list or hunspell
// .dic file. Morphological fields after a tab are ignored. Blank lines
// and URLs hold no entry.
func parseEntry(line string) (e entry, ok bool, err error) {
	line, _, _ = strings.Cut(line, "\t")
	line = strings.TrimSpace(line)
	if line == "" || strings.Contains(line, "://") {
		return entry{}, false, nil
	}
	word, flags, _ := strings.Cut(line, "/")
	if word == "" {
		return entry{}, false, nil
	}
	if strings.Contains(flags, "/") {
		return entry{}, false, fmt.Errorf("invalid dictionary entry %q", line)
	}
	return entry{word: word, flags: flags}, true, nil
}

// readDic calls fn for each entry in r. Lines starting with '#' and a
// leading word count are skipped. Errors are annotated with name and the
// line number.
func readDic(r io.Reader, name string, fn func(entry)) error {
	sc := bufio.NewScanner(r)
	counted := false
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if !counted {
			counted = true
			if _, err := strconv.Atoi(text); err == nil {
				continue
			}
		}
		e, ok, err := parseEntry(text)
		if err != nil {
			return fmt.Errorf("%w at %s:%d", err, name, line)
		}
		if ok {
			fn(e)
		}
	}
	return sc.Err()
}
