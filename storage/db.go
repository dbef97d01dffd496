// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	bolt "go.etcd.io/bbolt"

	"github.com/kortschak/srcspell/ignore"
)

// DB is an ignore.Backend and ignore.Recorder that stores rules in a
// bbolt database. Each scope kind has a bucket holding a nested bucket
// for each scope, and each word is a key in the scope's bucket. A Save
// is a single transaction.
type DB struct {
	db *bolt.DB
}

var (
	stateBucket = []byte("state")
	lastOpKey   = []byte("last_operation")

	// globalKey is the nested bucket name of the Global scope.
	globalKey = []byte("*")
	present   = []byte{1}
)

// OpenDB opens the database at path, creating it and its directory if
// they do not exist.
func OpenDB(path string) (*DB, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open database %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Scopes returns all scopes held in the database.
func (d *DB) Scopes() ([]ignore.Scope, error) {
	var scopes []ignore.Scope
	err := d.db.View(func(tx *bolt.Tx) error {
		for k := ignore.Global; k <= ignore.Pattern; k++ {
			b := tx.Bucket(kindBucket(k))
			if b == nil {
				continue
			}
			err := b.ForEach(func(name, v []byte) error {
				if v != nil {
					// Not a nested bucket.
					return nil
				}
				sc, err := scopeFor(k, name)
				if err != nil {
					return err
				}
				scopes = append(scopes, sc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return scopes, err
}

// Load returns the words held for scope.
func (d *DB) Load(scope ignore.Scope) ([]string, error) {
	var words []string
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(kindBucket(scope.Kind))
		if b == nil {
			return nil
		}
		b = b.Bucket(scopeKey(scope))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			words = append(words, string(k))
			return nil
		})
	})
	return words, err
}

// Save replaces the words held for scope.
func (d *DB) Save(scope ignore.Scope, words []string) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(kindBucket(scope.Kind))
		if err != nil {
			return err
		}
		key := scopeKey(scope)
		if b.Bucket(key) != nil {
			err = b.DeleteBucket(key)
			if err != nil {
				return err
			}
		}
		if len(words) == 0 {
			return nil
		}
		b, err = b.CreateBucket(key)
		if err != nil {
			return err
		}
		for _, w := range words {
			err = b.Put([]byte(w), present)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LastOperation returns the recorded operation.
func (d *DB) LastOperation() (*ignore.Operation, error) {
	var op *ignore.Operation
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(stateBucket)
		if b == nil {
			return nil
		}
		v := b.Get(lastOpKey)
		if v == nil {
			return nil
		}
		op = &ignore.Operation{}
		_, err := toml.Decode(string(v), op)
		return err
	})
	return op, err
}

// SetLastOperation replaces the recorded operation.
func (d *DB) SetLastOperation(op *ignore.Operation) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(stateBucket)
		if err != nil {
			return err
		}
		if op == nil {
			return b.Delete(lastOpKey)
		}
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(op)
		if err != nil {
			return err
		}
		return b.Put(lastOpKey, buf.Bytes())
	})
}

// kindBucket returns the bucket name for a scope kind.
func kindBucket(k ignore.ScopeKind) []byte {
	return []byte(k.String())
}

// scopeKey returns the nested bucket name for a scope.
func scopeKey(scope ignore.Scope) []byte {
	switch scope.Kind {
	case ignore.Global:
		return globalKey
	case ignore.Language:
		return []byte(scope.Lang)
	case ignore.Project, ignore.Pattern:
		return []byte(scope.Project)
	default:
		return []byte(scope.Project + "\x00" + scope.Path)
	}
}

// scopeFor returns the scope of kind k with the nested bucket name.
func scopeFor(k ignore.ScopeKind, name []byte) (ignore.Scope, error) {
	switch k {
	case ignore.Global:
		return ignore.GlobalScope(), nil
	case ignore.Language:
		return ignore.LanguageScope(string(name)), nil
	case ignore.Project:
		return ignore.ProjectScope(string(name)), nil
	case ignore.Pattern:
		return ignore.PatternScope(string(name)), nil
	}
	project, rel, ok := strings.Cut(string(name), "\x00")
	if !ok {
		return ignore.Scope{}, errors.New("malformed scope key")
	}
	return ignore.Scope{Kind: k, Project: project, Path: rel}, nil
}
