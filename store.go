// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kortschak/srcspell/ignore"
	"github.com/kortschak/srcspell/storage"
)

// rules is an opened ignore rule persistence layer.
type rules struct {
	backend  ignore.Backend
	recorder ignore.Recorder
	close    func() error
}

// openRules opens the ignore rule persistence layer configured by cfg for
// the project at root.
func openRules(cfg config, root string) (*rules, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	if cfg.UseDB {
		db, err := storage.OpenDB(filepath.Join(dir, "srcspell.db"))
		if err != nil {
			return nil, &ignore.PersistenceError{Op: "open", Err: err}
		}
		return &rules{backend: db, recorder: db, close: db.Close}, nil
	}
	return &rules{
		backend:  storage.NewFile(root, filepath.Join(dir, "global.toml")),
		recorder: storage.StateFile{Path: filepath.Join(dir, "state.toml")},
		close:    func() error { return nil },
	}, nil
}

// snapshot returns the ignore rules for a check. Failure to load the
// rules is not fatal; a warning is printed and no words are ignored.
func snapshot(cfg config, root string) *ignore.Resolver {
	r, err := openRules(cfg, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignore rules unavailable: %v\n", err)
		return ignore.NewStore().Snapshot()
	}
	defer r.close()
	store, err := ignore.Load(r.backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignore rules unavailable: %v\n", err)
		return ignore.NewStore().Snapshot()
	}
	return store.Snapshot()
}
