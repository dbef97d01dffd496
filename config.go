// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/kortschak/srcspell/storage"
	"github.com/kortschak/srcspell/tokens"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
	fileError
	spellingError
)

// config holds application-wide user configuration values.
type config struct {
	Lang         string   `toml:"lang"`         // language to use.
	DictPaths    []string `toml:"dict_paths"`   // directories to search for hunspell dictionaries.
	WordList     string   `toml:"word_list"`    // plain word list to use instead of hunspell.
	Dictionaries []string `toml:"dictionaries"` // additional hunspell .dic files relative to the project root.

	Show            bool     `toml:"show"`             // show the line holding a misspelling.
	IgnoreUpper     bool     `toml:"ignore_upper"`     // ignore words that are all uppercase.
	MinWordLen      int      `toml:"min_word_len"`     // ignore words shorter than this.
	MaxWordLen      int      `toml:"max_word_len"`     // ignore words longer than this.
	MinHex          int      `toml:"min_hex"`          // treat hex runs at least this long as hashes.
	CamelKnown      []string `toml:"camel_known"`      // words not split on case changes.
	Patterns        []string `toml:"patterns"`         // acceptable words defined by regexp.
	Exclude         []string `toml:"exclude"`          // paths not checked, doublestar globs.
	ReadLicenses    bool     `toml:"read_licenses"`    // ignore all words found in license files.
	GitLog          bool     `toml:"read_git_log"`     // ignore all author names and emails found in git log.
	GoPackages      bool     `toml:"read_go_packages"` // ignore names used from imported Go packages.
	MakeSuggestions suggest  `toml:"suggest"`          // make suggestions for misspelled words.
	DiffContext     int      `toml:"diff_context"`     // number of lines of change context to include.
	UseDB           bool     `toml:"use_db"`           // store ignore rules in a database.
	Workers         int      `toml:"workers"`          // number of files checked concurrently.
	Debounce        duration `toml:"watch_debounce"`   // quiet period before re-checking in watch mode.

	EntropyFilter tokens.EntropyFilter `toml:"entropy_filter"` // specify entropy filter behaviour (experimental).

	since string
	color bool
	json  bool
	watch bool
}

var defaults = config{
	// Dictionary options.
	Lang: "en_US",
	DictPaths: []string{
		"/usr/share/hunspell",
		"/usr/share/myspell",
		"/usr/share/myspell/dicts",
		"/Library/Spelling",
		"~/Library/Spelling",
	},

	// Checker options.
	Show:            false,
	IgnoreUpper:     false,
	MinWordLen:      tokens.DefaultClassifierConfig.MinWordLen,
	MaxWordLen:      tokens.DefaultClassifierConfig.MaxWordLen,
	MinHex:          tokens.DefaultMinHex,
	ReadLicenses:    true,
	GitLog:          true,
	GoPackages:      true,
	MakeSuggestions: never,
	DiffContext:     0,
	Debounce:        duration{defaultDebounce},

	// Experimental options.
	EntropyFilter: tokens.DefaultClassifierConfig.Entropy,
}

// classifierConfig returns the token classifier configuration held by c.
func (c *config) classifierConfig() tokens.ClassifierConfig {
	return tokens.ClassifierConfig{
		MinWordLen:  c.MinWordLen,
		MaxWordLen:  c.MaxWordLen,
		IgnoreUpper: c.IgnoreUpper,
		Known:       c.CamelKnown,
		Accept:      c.Patterns,
		Entropy:     c.EntropyFilter,
	}
}

// Suggestion behaviour.
const (
	never suggest = iota
	once
	each
	always
)

type suggest int

var suggestNames = [...]string{
	never:  "never",
	once:   "once",
	each:   "each",
	always: "always",
}

func (s suggest) String() string {
	if s < never || always < s {
		return fmt.Sprintf("suggest(%d)", int(s))
	}
	return suggestNames[s]
}

func (s suggest) MarshalText() ([]byte, error)  { return []byte(s.String()), nil }
func (s *suggest) UnmarshalText(b []byte) error { return s.Set(string(b)) }

func (s *suggest) Set(val string) error {
	for i := never; i <= always; i++ {
		if val == i.String() {
			*s = i
			return nil
		}
	}
	return fmt.Errorf(`valid options are "never", "once", "each" and "always"`)
}

// list is a flag.Value holding a list of separated strings.
type list struct {
	sep  string
	vals *[]string
}

func (l list) String() string {
	if l.vals == nil {
		return ""
	}
	return strings.Join(*l.vals, l.sep)
}

func (l list) Set(val string) error {
	*l.vals = nil
	for _, v := range strings.Split(val, l.sep) {
		if v != "" {
			*l.vals = append(*l.vals, v)
		}
	}
	return nil
}

const (
	configFile = ".srcspell.conf"

	// dataDirEnv is the environment variable used to
	// specify the directory holding user-wide state.
	dataDirEnv = "SRCSPELL_DATA_DIR"
)

// loadConfig returns a config if one can be found in the root of the
// project containing the working directory, and the project root. It
// also returns a status and error for user information.
func loadConfig(args []string) (_ config, root string, status int, err error) {
	wd, err := os.Getwd()
	if err != nil {
		return config{}, "", internalError, err
	}
	root = projectRoot(wd)

	// Using to the flag package to get this information early results
	// in horrific convolutions, and while it works, it is sludgy. So
	// do the work ourselves.
	useConfig := true // Default to true.
loop:
	for _, arg := range args {
		if strings.HasPrefix(arg, "--") {
			arg = arg[1:]
		}
		if !strings.HasPrefix(arg, "-config") {
			continue
		}
		val := strings.TrimPrefix(arg, "-config")
		switch val {
		case "", "=true":
			useConfig = true
			break loop
		case "=false":
			useConfig = false
			break loop
		default:
			// Let command-line flag parser handle this.
			return defaults, root, success, nil
		}
	}
	cfg := defaults
	if !useConfig {
		return cfg, root, success, nil
	}
	_, err = toml.DecodeFile(filepath.Join(root, configFile), &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, root, success, nil
		}
		return config{}, root, invocationError, err
	}
	return cfg, root, success, nil
}

// rootMarkers are the names of files that mark a project root.
var rootMarkers = []string{configFile, storage.LocalName, ".git", "go.mod"}

// projectRoot returns the project root for dir. This is the nearest
// ancestor of dir holding a root marker, or dir itself.
func projectRoot(dir string) string {
	for d := dir; ; {
		for _, m := range rootMarkers {
			_, err := os.Stat(filepath.Join(d, m))
			if err == nil {
				return d
			}
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	return dir
}

// dataDir returns the directory holding user-wide srcspell state.
func dataDir() (string, error) {
	if dir := os.Getenv(dataDirEnv); dir != "" {
		return dir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not find data directory: %w; set %s", err, dataDirEnv)
	}
	return filepath.Join(dir, "srcspell"), nil
}
