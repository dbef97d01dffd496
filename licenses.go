// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/licensecheck"

	"github.com/kortschak/srcspell/tokens"
)

// licenseWords returns the words in licenses under root that satisfy the
// licensecheck threshold provided.
func licenseWords(root string, thresh float64, c *tokens.Classifier) ([]string, error) {
	texts, err := licenses(root, thresh)
	if err != nil {
		return nil, err
	}
	var words []string
	for path, text := range texts {
		w, err := harvest(strings.NewReader(text), path, c)
		if err != nil {
			return nil, err
		}
		words = append(words, w...)
	}
	return words, nil
}

// harvest returns the words in r as seen by the checker.
func harvest(r io.Reader, name string, c *tokens.Classifier) ([]string, error) {
	var words []string
	sc := tokens.NewScanner(r, name, tokens.Options{Lang: "txt"})
	for sc.Scan() {
		for _, w := range c.Classify(sc.Token(), nil).Words {
			words = append(words, w.Text)
		}
	}
	return words, sc.Err()
}

// licenses returns the text of all files matching licenses using
// licensecheck.Scan with at least a thresh match, keyed by path.
func licenses(root string, thresh float64) (map[string]string, error) {
	maybeLicense := make(map[string]bool)
	for _, c := range candidates {
		maybeLicense[strings.ToLower(c)] = true
	}

	texts := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		if !maybeLicense[strings.ToLower(name)] {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if licensecheck.Scan(b).Percent >= thresh {
			texts[path] = string(b)
		}
		return nil
	})
	return texts, err
}

var candidates = []string{
	"COPYING",
	"COPYRIGHT",
	"LICENCE",
	"LICENSE",
	"LICENSE-2.0",
	"LICENCE-2.0",
	"LICENSE-APACHE",
	"LICENCE-APACHE",
	"LICENSE-APACHE-2.0",
	"LICENCE-APACHE-2.0",
	"LICENSE-MIT",
	"LICENCE-MIT",
	"MIT-LICENSE",
	"MIT-LICENCE",
	"MIT_LICENSE",
	"MIT_LICENCE",
	"UNLICENSE",
	"UNLICENCE",
}
