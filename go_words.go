// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"go/ast"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/tools/go/packages"

	"github.com/kortschak/srcspell/tokens"
)

// goWords returns the words of names the Go module at root uses but does
// not declare: the elements of imported package paths, the identifiers
// selected from imported packages and the words of directive comments.
// It returns nil if root does not hold a go.mod file.
func goWords(root string, c *tokens.Classifier) ([]string, error) {
	_, err := os.Stat(filepath.Join(root, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:   root,
		Tests: true,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool)
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for path := range importPaths(p.Syntax) {
			for _, e := range strings.Split(path, "/") {
				names[e] = true
			}
		}
		for _, w := range directiveWords(p.Syntax) {
			names[w] = true
		}
		for n := range importedIdents(p) {
			names[n] = true
		}
	})

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	return harvest(strings.NewReader(strings.Join(sorted, "\n")), "go-packages", c)
}

// importPaths returns the set of paths imported by files.
func importPaths(files []*ast.File) map[string]bool {
	paths := make(map[string]bool)
	for _, f := range files {
		for _, imp := range f.Imports {
			path := strings.Trim(imp.Path.Value, "`\"")
			if path != "C" {
				paths[path] = true
			}
		}
	}
	return paths
}

// importedIdents returns the names selected from imported packages in p,
// so "os.Getwd" contributes "Getwd".
func importedIdents(p *packages.Package) map[string]bool {
	idents := make(map[string]bool)
	if p.TypesInfo == nil {
		return idents
	}
	for _, f := range p.Syntax {
		ast.Inspect(f, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			x, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}
			if _, ok := p.TypesInfo.Uses[x].(*types.PkgName); ok {
				idents[sel.Sel.Name] = true
			}
			return true
		})
	}
	return idents
}

// directiveWords returns words used in directive comments such as
// "//go:generate" and "//nolint:errcheck".
func directiveWords(files []*ast.File) []string {
	var words []string
	for _, f := range files {
		for _, cg := range f.Comments {
			for _, c := range cg.List {
				text, ok := strings.CutPrefix(c.Text, "//")
				if !ok || strings.HasPrefix(text, " ") {
					continue
				}
				idx := strings.Index(text, ":")
				if idx < 1 || strings.HasPrefix(text[idx+1:], " ") {
					continue
				}
				directive, _, _ := strings.Cut(text, " ")
				words = append(words, strings.FieldsFunc(directive, func(r rune) bool {
					return unicode.IsSpace(r) || unicode.IsSymbol(r) || unicode.IsPunct(r)
				})...)
			}
		}
	}
	return words
}
