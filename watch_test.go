// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const testInterval = 50 * time.Millisecond

func receiveBatch(t *testing.T, ch <-chan []string, timeout time.Duration) []string {
	t.Helper()
	select {
	case batch := <-ch:
		return batch
	case <-time.After(timeout):
		t.Fatal("timed out waiting for batch")
		return nil
	}
}

func TestDebouncer(t *testing.T) {
	d := newDebouncer(testInterval)
	d.add("b.go")
	d.add("a.go")
	d.add("b.go")

	got := receiveBatch(t, d.batches(), time.Second)
	want := []string{"a.go", "b.go"}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected batch:\n--- got:\n+++ want:\n%s", cmp.Diff(got, want))
	}

	select {
	case batch := <-d.batches():
		t.Errorf("unexpected second batch: %q", batch)
	case <-time.After(3 * testInterval):
	}
}

func TestDebouncerSlowReader(t *testing.T) {
	const interval = 5 * time.Millisecond
	d := newDebouncer(interval)

	// Fill the output buffer and leave further flushes waiting
	// to send while nothing reads batches.
	n := 2 * cap(d.output)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			d.add(fmt.Sprintf("%02d.go", i))
			time.Sleep(3 * interval)
		}
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("add blocked while batches were not being read")
	}

	seen := make(map[string]bool)
	for len(seen) < n {
		for _, p := range receiveBatch(t, d.batches(), time.Second) {
			seen[p] = true
		}
	}
	for i := 0; i < n; i++ {
		p := fmt.Sprintf("%02d.go", i)
		if !seen[p] {
			t.Errorf("missing path %s", p)
		}
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	err := os.Mkdir(sub, 0o755)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	checked := make(chan []string, 1)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, []string{dir}, testInterval, func(paths []string) {
			select {
			case checked <- paths:
			default:
			}
		})
	}()

	// Give the watcher time to register directories.
	time.Sleep(2 * testInterval)
	path := filepath.Join(sub, "a.txt")
	err = os.WriteFile(path, []byte("wurd\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	got := receiveBatch(t, checked, 5*time.Second)
	want := []string{path}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected checked paths:\n--- got:\n+++ want:\n%s", cmp.Diff(got, want))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error from watch: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("watch did not stop after cancellation")
	}
}
