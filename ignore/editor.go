// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ignore

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNothingToUndo is returned by Undo when there is no
	// recorded operation.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNotIgnored is returned by Remove when the word is not
	// held by the scope.
	ErrNotIgnored = errors.New("word not held in scope")
)

// Op is a mutation operation.
type Op int

const (
	OpAdd Op = iota
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

func (o Op) MarshalText() ([]byte, error) {
	switch o {
	case OpAdd, OpRemove:
		return []byte(o.String()), nil
	default:
		return nil, fmt.Errorf("invalid operation: %d", int(o))
	}
}

func (o *Op) UnmarshalText(b []byte) error {
	switch string(b) {
	case "add":
		*o = OpAdd
	case "remove":
		*o = OpRemove
	default:
		return fmt.Errorf("invalid operation: %q", b)
	}
	return nil
}

// Operation is a record of a mutation of a Store.
type Operation struct {
	Op    Op     `toml:"op"`
	Word  string `toml:"word"`
	Scope Scope  `toml:"scope"`

	// Changed is whether the operation changed the store.
	// Undoing an unchanged operation does not change the
	// store.
	Changed bool `toml:"changed"`
}

func (o *Operation) String() string {
	return fmt.Sprintf("%v %q %v", o.Op, o.Word, o.Scope)
}

// Recorder holds the most recent operation.
type Recorder interface {
	// LastOperation returns the recorded operation or
	// nil if there is none.
	LastOperation() (*Operation, error)
	// SetLastOperation replaces the recorded operation.
	// A nil operation clears the record.
	SetLastOperation(*Operation) error
}

// memoryRecorder is a Recorder that does not persist.
type memoryRecorder struct {
	op *Operation
}

func (r *memoryRecorder) LastOperation() (*Operation, error) { return r.op, nil }
func (r *memoryRecorder) SetLastOperation(op *Operation) error {
	r.op = op
	return nil
}

// Editor is the single writer for a Store. Each mutation is saved to
// the backend before it returns and replaces the recorded last
// operation. Editor methods are serialised.
type Editor struct {
	mu       sync.Mutex
	store    *Store
	backend  Backend
	recorder Recorder
}

// NewEditor returns a new Editor for store, saving changes to backend and
// recording the last operation with recorder. If recorder is nil the last
// operation is held in memory.
func NewEditor(store *Store, backend Backend, recorder Recorder) *Editor {
	if recorder == nil {
		recorder = &memoryRecorder{}
	}
	return &Editor{store: store, backend: backend, recorder: recorder}
}

// Snapshot returns a Resolver holding the current state of the store.
func (e *Editor) Snapshot() *Resolver {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Snapshot()
}

// Add adds word to scope. Adding a word that is already held is not an
// error, and undoing it does not remove the word.
func (e *Editor) Add(word string, scope Scope) error {
	err := check(word, scope)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	changed := e.store.add(word, scope)
	if changed {
		err = e.save(scope)
		if err != nil {
			e.store.remove(word, scope)
			return err
		}
	}
	return e.record(&Operation{Op: OpAdd, Word: word, Scope: scope, Changed: changed})
}

// Remove removes word from scope. It returns an error wrapping
// ErrNotIgnored if the word is not held by the scope.
func (e *Editor) Remove(word string, scope Scope) error {
	err := check(word, scope)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.store.remove(word, scope) {
		return fmt.Errorf("%w: %q in %v", ErrNotIgnored, word, scope)
	}
	err = e.save(scope)
	if err != nil {
		e.store.add(word, scope)
		return err
	}
	return e.record(&Operation{Op: OpRemove, Word: word, Scope: scope, Changed: true})
}

// Undo reverts the most recent operation and clears the record, so a
// second call returns ErrNothingToUndo. The reverted operation is
// returned. If the backend cannot hold the operation's scope, an error
// is returned and the record is kept.
func (e *Editor) Undo() (*Operation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op, err := e.recorder.LastOperation()
	if err != nil {
		return nil, &PersistenceError{Op: "read last operation", Err: err}
	}
	if op == nil {
		return nil, ErrNothingToUndo
	}
	if op.Changed {
		// The record may come from another project's editor.
		err = e.reload(op.Scope)
		if err != nil {
			return nil, err
		}
		switch op.Op {
		case OpAdd:
			if e.store.remove(op.Word, op.Scope) {
				err = e.save(op.Scope)
				if err != nil {
					e.store.add(op.Word, op.Scope)
					return nil, err
				}
			}
		case OpRemove:
			if e.store.add(op.Word, op.Scope) {
				err = e.save(op.Scope)
				if err != nil {
					e.store.remove(op.Word, op.Scope)
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("invalid recorded operation: %v", op.Op)
		}
	}
	return op, e.record(nil)
}

// reload replaces the words of scope in the store with those held by
// the backend.
func (e *Editor) reload(scope Scope) error {
	words, err := e.backend.Load(scope)
	if err != nil {
		return &PersistenceError{Op: "load", Scope: scope, Err: err}
	}
	delete(e.store.scopes, scope)
	for _, w := range words {
		e.store.add(w, scope)
	}
	return nil
}

// save writes the words of scope to the backend.
func (e *Editor) save(scope Scope) error {
	err := e.backend.Save(scope, e.store.Words(scope))
	if err != nil {
		return &PersistenceError{Op: "save", Scope: scope, Err: err}
	}
	return nil
}

// record replaces the recorded last operation.
func (e *Editor) record(op *Operation) error {
	err := e.recorder.SetLastOperation(op)
	if err != nil {
		return &PersistenceError{Op: "record last operation", Err: err}
	}
	return nil
}

// check returns an error if the word or scope are not valid for a
// mutation.
func check(word string, scope Scope) error {
	if word == "" {
		return errors.New("empty word")
	}
	return scope.Validate()
}
