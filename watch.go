// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// duration is a time.Duration that can be decoded from text.
type duration struct {
	time.Duration
}

func (d duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// debouncer collects changed paths and emits them as a sorted batch
// after a quiet period. Repeated changes to a path within the period
// are collapsed.
type debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	output  chan []string
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		pending:  make(map[string]bool),
		output:   make(chan []string, 16),
	}
}

// batches returns the channel that receives batches of changed paths.
func (d *debouncer) batches() <-chan []string {
	return d.output
}

// add adds a changed path and restarts the quiet period.
func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[path] = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

// flush sends the pending paths as a batch. The send happens without
// holding the lock so a slow reader does not block add.
func (d *debouncer) flush() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(d.pending))
	for p := range d.pending {
		batch = append(batch, p)
	}
	d.pending = make(map[string]bool)
	d.mu.Unlock()

	sort.Strings(batch)
	d.output <- batch
}

// watch calls check with the files that change under paths until ctx is
// cancelled. Directories are watched recursively.
func watch(ctx context.Context, paths []string, interval time.Duration, check func([]string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, p := range paths {
		err = addTree(w, p)
		if err != nil {
			return err
		}
	}

	d := newDebouncer(interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			fi, err := os.Stat(ev.Name)
			if err != nil {
				continue
			}
			if fi.IsDir() {
				if ev.Has(fsnotify.Create) {
					err = addTree(w, ev.Name)
					if err != nil {
						fmt.Fprintf(os.Stderr, "watch: %v\n", err)
					}
				}
				continue
			}
			if fi.Mode().IsRegular() {
				d.add(ev.Name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		case batch := <-d.batches():
			check(batch)
		}
	}
}

// addTree adds path and, if it is a directory, all its subdirectories
// to w. Hidden directories are not watched.
func addTree(w *fsnotify.Watcher, path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return w.Add(path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
