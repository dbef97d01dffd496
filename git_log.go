// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"

	"golang.org/x/sys/execabs"

	"github.com/kortschak/srcspell/tokens"
)

// gitLogWords returns author names from the git log of the repository
// at root. Errors running git are ignored.
func gitLogWords(root string, c *tokens.Classifier) []string {
	cmd := execabs.Command("git", "log", "--format=%an %ae")
	cmd.Dir = root
	var buf bytes.Buffer
	cmd.Stdout = &buf
	err := cmd.Run()
	if err != nil {
		return nil
	}
	// Partial results are still useful.
	words, _ := harvest(&buf, "git-log", c)
	return words
}
