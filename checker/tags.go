// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package checker

import (
	"regexp"
	"strconv"
	"strings"
)

// rawString matches Go raw string literals, the form used for struct tags.
var rawString = regexp.MustCompile("`([^`]*)`")

// structTagWords returns the keys and value elements of all canonically
// formatted struct tags in the Go source src.
func structTagWords(src []byte) map[string]bool {
	words := make(map[string]bool)
	for _, m := range rawString.FindAllSubmatch(src, -1) {
		for _, w := range tagWords(string(m[1])) {
			for _, f := range strings.FieldsFunc(w, isTagSep) {
				words[f] = true
			}
		}
	}
	return words
}

func isTagSep(r rune) bool {
	return r == ' ' || r == '=' || r == ':' || r == ';'
}

// tagWords is derived from golang.org/x/tools/go/analysis/passes/structtag.
//
// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// tagWords parses tag and returns its keys and the comma-separated
// elements of its values. It returns nil if tag is not in the canonical
// space-separated key:"value" format.
func tagWords(tag string) []string {
	var kv []string
	for n := 0; tag != ""; n++ {
		if n > 0 && tag[0] != ' ' {
			return nil
		}
		tag = strings.TrimLeft(tag, " ")
		if tag == "" {
			break
		}

		// A space, a quote or a control character in a key is a syntax error.
		i := 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			return nil
		}
		kv = append(kv, tag[:i])
		tag = tag[i+1:]

		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			return nil
		}
		value, err := strconv.Unquote(tag[:i+1])
		if err != nil {
			return nil
		}
		tag = tag[i+1:]
		kv = append(kv, strings.Split(value, ",")...)
	}
	return kv
}
