// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"

	"github.com/kortschak/srcspell/ignore"
)

// StateFile is an ignore.Recorder that holds the last operation in a
// TOML file so that it can be undone by a later invocation.
type StateFile struct {
	Path string
}

// state is the on-disk form of a StateFile.
type state struct {
	LastOperation *ignore.Operation `toml:"last_operation,omitempty"`
}

// LastOperation returns the recorded operation. A missing file holds no
// operation.
func (s StateFile) LastOperation() (*ignore.Operation, error) {
	var st state
	_, err := toml.DecodeFile(s.Path, &st)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read state: %w", err)
	}
	return st.LastOperation, nil
}

// SetLastOperation replaces the recorded operation.
func (s StateFile) SetLastOperation(op *ignore.Operation) error {
	return writeTOML(s.Path, state{LastOperation: op})
}
