// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The srcspell command finds misspelled words in source code and other
// technical text.
//
// Text is split into tokens, and tokens into words at separators and
// case changes. URLs, email addresses, hashes and numbers are not
// checked. Words are checked against a hunspell dictionary or a plain
// word list after removing words that are ignored by the user's ignore
// rules. Ignore rules are held in a global file in the user's data
// directory and in a srcspell-ignore.toml file at the project root, or
// in a database, and may be edited with the add, remove and undo
// commands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/kortschak/srcspell/checker"
	"github.com/kortschak/srcspell/dictionary"
	"github.com/kortschak/srcspell/ignore"
	"github.com/kortschak/srcspell/tokens"
)

func main() {
	os.Exit(srcspell())
}

// commands are the srcspell subcommands.
var commands = map[string]func(cfg config, root string, args []string) int{
	"check":   check,
	"add":     edit(ignore.OpAdd),
	"remove":  edit(ignore.OpRemove),
	"undo":    undo,
	"suggest": suggestions,
}

func srcspell() int {
	cfg, root, status, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "srcspell: %v\n", err)
		return status
	}

	flag.Bool("config", true, "parse "+configFile+" config file")
	flag.StringVar(&cfg.Lang, "lang", cfg.Lang, "language to use")
	flag.Var(list{sep: string(filepath.ListSeparator), vals: &cfg.DictPaths}, "dict-path", "directories containing hunspell dictionaries")
	flag.StringVar(&cfg.WordList, "word-list", cfg.WordList, "word list to use instead of hunspell")
	flag.BoolVar(&cfg.Show, "show", cfg.Show, "print the line holding each misspelling")
	flag.BoolVar(&cfg.IgnoreUpper, "ignore-upper", cfg.IgnoreUpper, "ignore all-uppercase words")
	flag.IntVar(&cfg.MinWordLen, "min-word-len", cfg.MinWordLen, "ignore words shorter than this")
	flag.IntVar(&cfg.MaxWordLen, "max-word-len", cfg.MaxWordLen, "ignore words longer than this")
	flag.IntVar(&cfg.MinHex, "min-hex", cfg.MinHex, "treat hex runs at least this long as hashes")
	flag.Var(list{sep: ",", vals: &cfg.Exclude}, "exclude", "comma separated glob patterns of paths not to check")
	flag.BoolVar(&cfg.ReadLicenses, "read-licenses", cfg.ReadLicenses, "ignore words found in license files")
	flag.BoolVar(&cfg.GitLog, "read-git-log", cfg.GitLog, "ignore author names found in git log")
	flag.BoolVar(&cfg.GoPackages, "read-go-packages", cfg.GoPackages, "ignore names used from imported Go packages")
	flag.Var(&cfg.MakeSuggestions, "suggest", "make suggestions for misspellings (never, once, each, always)")
	flag.StringVar(&cfg.since, "since", "", "only report misspellings in lines added since this git ref")
	flag.IntVar(&cfg.DiffContext, "diff-context", cfg.DiffContext, "lines of context around changes when using -since")
	flag.BoolVar(&cfg.UseDB, "db", cfg.UseDB, "store ignore rules in a database")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of files checked concurrently (0 is GOMAXPROCS)")
	flag.BoolVar(&cfg.color, "color", false, "colour output")
	flag.BoolVar(&cfg.json, "json", false, "print misspellings as JSON objects")
	flag.BoolVar(&cfg.watch, "watch", false, "re-check files when they change")
	flag.DurationVar(&cfg.Debounce.Duration, "watch-debounce", cfg.Debounce.Duration, "quiet period before re-checking changed files")
	v := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `usage: %s [options] [check] [paths...]
       %s [options] add|remove -scope <scope> [-lang <ext>] [-path <path>] words...
       %s [options] undo
       %s [options] suggest words...

The srcspell program will report misspellings in source code and text.

With no paths, the project holding the working directory is checked.
The project root is the nearest directory holding a %s,
%s, .git or go.mod file.

Ignore rule scopes are global, lang, project, path, token and pattern.
Words added to token scopes are exact literal texts that are not checked
in files matching the glob given by -path, and pattern scope entries are
.gitignore style patterns of files that are not checked.

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], configFile, "srcspell-ignore.toml")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *v {
		if !version() {
			return internalError
		}
		return success
	}

	args := flag.Args()
	cmd := "check"
	if len(args) != 0 {
		if _, ok := commands[args[0]]; ok {
			cmd = args[0]
			args = args[1:]
		}
	}
	return commands[cmd](cfg, root, args)
}

// check checks the files in paths, or the project if paths is empty.
func check(cfg config, root string, paths []string) int {
	classifier, err := tokens.NewClassifier(cfg.classifierConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "srcspell: %v\n", err)
		return invocationError
	}
	dict, err := openDictionary(cfg, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "srcspell: %v\n", err)
		return internalError
	}
	if cfg.ReadLicenses {
		words, err := licenseWords(root, 80, classifier)
		if err != nil {
			fmt.Fprintf(os.Stderr, "srcspell: licenses: %v\n", err)
			return internalError
		}
		dictionary.AddAll(dict, words)
	}
	if cfg.GitLog {
		dictionary.AddAll(dict, gitLogWords(root, classifier))
	}
	if cfg.GoPackages {
		words, err := goWords(root, classifier)
		if err != nil {
			// Partial results are still useful.
			fmt.Fprintf(os.Stderr, "warning: go packages: %v\n", err)
		}
		dictionary.AddAll(dict, words)
	}

	var changes changeFilter
	if cfg.since != "" {
		changes, err = gitAdditionsSince(root, cfg.since, cfg.DiffContext)
		if err != nil {
			fmt.Fprintf(os.Stderr, "srcspell: %v\n", err)
			return invocationError
		}
	}

	if len(paths) == 0 {
		paths = []string{root}
	}
	c := checker.New(dict, snapshot(cfg, root), checker.Options{
		Project:    root,
		Workers:    cfg.Workers,
		Classifier: classifier,
		MinHex:     cfg.MinHex,
		Exclude:    cfg.Exclude,
	})
	run := func(paths []string) int {
		rep := c.Check(paths)
		results := changes.filter(rep.Results)
		err := newReporter(os.Stdout, cfg, c).report(results)
		if err != nil {
			fmt.Fprintf(os.Stderr, "srcspell: %v\n", err)
			return internalError
		}
		failures(os.Stderr, rep.Failures)
		if !cfg.json {
			summary(os.Stderr, rep, len(results))
		}
		status := success
		if len(rep.Failures) != 0 {
			status |= fileError
		}
		if len(results) != 0 {
			status |= spellingError
		}
		return status
	}
	status := run(paths)
	if !cfg.watch {
		return status
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = watch(ctx, paths, cfg.Debounce.Duration, func(changed []string) {
		status = run(changed)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "srcspell: watch: %v\n", err)
		return internalError
	}
	return status
}

// openDictionary returns the dictionary configured by cfg.
func openDictionary(cfg config, root string) (dictionary.Dictionary, error) {
	if cfg.WordList != "" {
		path := cfg.WordList
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		l, err := dictionary.OpenWordList(path, cfg.Lang)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	extra := make([]string, len(cfg.Dictionaries))
	for i, d := range cfg.Dictionaries {
		if !filepath.IsAbs(d) {
			d = filepath.Join(root, d)
		}
		extra[i] = d
	}
	h, err := dictionary.OpenHunspell(cfg.DictPaths, cfg.Lang, extra...)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// edit returns a command that adds or removes ignore rule words.
func edit(op ignore.Op) func(cfg config, root string, args []string) int {
	return func(cfg config, root string, args []string) int {
		name := op.String()
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		kind := ignore.Global
		fs.Var(&kind, "scope", "rule scope (global, lang, project, path, token or pattern)")
		lang := fs.String("lang", "", "language tag for lang scope, the file extension without dot")
		path := fs.String("path", "", "file path for path scope, or file glob for token scope")
		err := fs.Parse(args)
		if err != nil {
			return invocationError
		}
		words := fs.Args()
		if len(words) == 0 {
			fmt.Fprintf(os.Stderr, "srcspell %s: no words\n", name)
			return invocationError
		}
		scope, err := scopeFor(kind, root, *lang, *path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "srcspell %s: %v\n", name, err)
			return invocationError
		}

		e, closeRules, err := editor(cfg, root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "srcspell %s: %v\n", name, err)
			return internalError
		}
		defer closeRules()
		for _, w := range words {
			switch op {
			case ignore.OpAdd:
				err = e.Add(w, scope)
			case ignore.OpRemove:
				err = e.Remove(w, scope)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "srcspell %s: %v\n", name, err)
				if errors.Is(err, ignore.ErrNotIgnored) {
					return invocationError
				}
				return internalError
			}
		}
		return success
	}
}

// scopeFor returns the scope of the given kind for the project at root.
// Path scope paths are interpreted relative to the working directory.
func scopeFor(kind ignore.ScopeKind, root, lang, path string) (ignore.Scope, error) {
	var scope ignore.Scope
	switch kind {
	case ignore.Global:
		scope = ignore.GlobalScope()
	case ignore.Language:
		scope = ignore.LanguageScope(strings.TrimPrefix(lang, "."))
	case ignore.Project:
		scope = ignore.ProjectScope(root)
	case ignore.Path:
		if path == "" {
			return scope, errors.New("path scope needs a path")
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return scope, err
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return scope, err
		}
		scope = ignore.PathScope(root, filepath.ToSlash(rel))
	case ignore.Token:
		scope = ignore.TokenScope(root, filepath.ToSlash(path))
	case ignore.Pattern:
		scope = ignore.PatternScope(root)
	}
	return scope, scope.Validate()
}

// editor returns an ignore rule editor for the project at root and a
// function to release its resources.
func editor(cfg config, root string) (*ignore.Editor, func() error, error) {
	r, err := openRules(cfg, root)
	if err != nil {
		return nil, nil, err
	}
	store, err := ignore.Load(r.backend)
	if err != nil {
		r.close()
		return nil, nil, err
	}
	return ignore.NewEditor(store, r.backend, r.recorder), r.close, nil
}

// undo reverts the last add or remove.
func undo(cfg config, root string, args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "srcspell undo: unexpected arguments")
		return invocationError
	}
	e, closeRules, err := editor(cfg, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "srcspell undo: %v\n", err)
		return internalError
	}
	defer closeRules()
	op, err := e.Undo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "srcspell undo: %v\n", err)
		if errors.Is(err, ignore.ErrNothingToUndo) {
			return invocationError
		}
		return internalError
	}
	fmt.Printf("undid %v\n", op)
	return success
}

// suggestions prints suggested spellings for each word in args.
func suggestions(cfg config, root string, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "srcspell suggest: no words")
		return invocationError
	}
	dict, err := openDictionary(cfg, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "srcspell: %v\n", err)
		return internalError
	}
	status := success
	for _, w := range args {
		if dict.IsCorrect(w) {
			fmt.Printf("%s: correct\n", w)
			continue
		}
		status |= spellingError
		fmt.Printf("%s: %s\n", w, strings.Join(dict.Suggest(w), ", "))
	}
	return status
}

// version prints the module version and build settings.
func version() bool {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Fprintln(os.Stderr, "srcspell: no build information")
		return false
	}
	fmt.Printf("%s %s\n", info.Main.Path, info.Main.Version)
	buildSettings(info)
	return true
}
