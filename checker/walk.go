// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package checker

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// file is a file to be checked.
type file struct {
	path string
	// explicit is whether the file was
	// named rather than found by a walk.
	explicit bool
}

// skipDirs are directories that are never walked.
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true, ".bzr": true,
	"node_modules": true, "__pycache__": true,
	".venv": true, ".idea": true, ".vscode": true,
	".mypy_cache": true, ".pytest_cache": true,
}

// collect returns the sorted set of files to check from paths,
// walking directories, and the reports of paths that could not be
// read.
func (c *Checker) collect(paths []string) ([]file, []FileReport) {
	var (
		failures []FileReport
		seen     = make(map[string]int)
		files    []file
	)
	add := func(p string, explicit bool) {
		p = filepath.Clean(p)
		if i, ok := seen[p]; ok {
			files[i].explicit = files[i].explicit || explicit
			return
		}
		seen[p] = len(files)
		files = append(files, file{path: p, explicit: explicit})
	}
	fail := func(p string, err error) {
		failures = append(failures, FileReport{Path: p, Rel: c.rel(p), State: Failed, Err: &IOError{Path: p, Err: err}})
	}

	ignored := c.gitIgnore()
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			fail(p, err)
			continue
		}
		if !fi.IsDir() {
			add(p, true)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				fail(path, err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			rel := c.rel(path)
			if d.IsDir() {
				if path != p && (skipDirs[d.Name()] || c.skip(rel, true) || matches(ignored, rel, true)) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || matches(ignored, rel, false) {
				return nil
			}
			add(path, false)
			return nil
		})
		if err != nil {
			fail(p, err)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })
	return files, failures
}

// skip returns whether the project-relative path rel is excluded from
// checking by name, by the rule snapshot's skip patterns or by the
// configured exclusion globs.
func (c *Checker) skip(rel string, isDir bool) bool {
	if !isDir && skipNames[path.Base(rel)] {
		return true
	}
	if c.resolver.SkipFile(c.opts.Project, rel, isDir) {
		return true
	}
	for _, pat := range c.opts.Exclude {
		ok, err := doublestar.Match(pat, rel)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// gitIgnore returns the .gitignore rules of the project, or nil if the
// project has none.
func (c *Checker) gitIgnore() gitignore.GitIgnore {
	if c.opts.Project == "" {
		return nil
	}
	f, err := os.Open(filepath.Join(c.opts.Project, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()
	return gitignore.New(f, c.opts.Project, nil)
}

// matches returns whether rel is ignored by the .gitignore rules in g.
func matches(g gitignore.GitIgnore, rel string, isDir bool) bool {
	if g == nil || filepath.IsAbs(rel) || rel == "." {
		return false
	}
	m := g.Relative(rel, isDir)
	return m != nil && m.Ignore()
}

// sortFailures sorts failures by path.
func sortFailures(f []FileReport) {
	sort.SliceStable(f, func(i, j int) bool { return f[i].Path < f[j].Path })
}
