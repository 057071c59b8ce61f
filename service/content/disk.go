// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"github.com/optakt/cid-vault/models/vault"
)

// Disk is a content store on the local filesystem. Objects are written once,
// sharded into sub-directories by the end of their identifier.
type Disk struct {
	root string
}

// NewDisk creates a disk content store rooted at the given directory, which is
// created if it does not exist.
func NewDisk(root string) (*Disk, error) {
	if root == "" {
		return nil, fmt.Errorf("content directory is required: %w", vault.ErrMissingField)
	}

	err := os.MkdirAll(root, 0o755)
	if err != nil {
		return nil, fmt.Errorf("could not create content directory: %w", err)
	}

	d := Disk{
		root: root,
	}

	return &d, nil
}

// Put stores the data and returns its identifier. Storing the same data twice
// is a no-op.
func (d *Disk) Put(data []byte) (cid.Cid, error) {
	id, err := Reference(data)
	if err != nil {
		return cid.Undef, err
	}

	path := d.path(id)
	err = os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return cid.Undef, fmt.Errorf("could not create shard directory: %s: %w", err, vault.ErrStorageUnavailable)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if errors.Is(err, os.ErrExist) {
		existing, err := os.ReadFile(path)
		if err != nil {
			return cid.Undef, fmt.Errorf("could not read existing object: %s: %w", err, vault.ErrStorageUnavailable)
		}
		if !bytes.Equal(existing, data) {
			return cid.Undef, fmt.Errorf("existing object differs (cid: %s): %w", id, vault.ErrContentMismatch)
		}
		return id, nil
	}
	if err != nil {
		return cid.Undef, fmt.Errorf("could not create object: %s: %w", err, vault.ErrStorageUnavailable)
	}

	_, err = file.Write(data)
	if err == nil {
		err = file.Sync()
	}
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return cid.Undef, fmt.Errorf("could not write object: %s: %w", err, vault.ErrStorageUnavailable)
	}

	err = file.Close()
	if err != nil {
		_ = os.Remove(path)
		return cid.Undef, fmt.Errorf("could not close object: %s: %w", err, vault.ErrStorageUnavailable)
	}

	return id, nil
}

// Get returns the data for the given identifier, after checking that it still
// hashes to it.
func (d *Disk) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, fmt.Errorf("undefined content identifier: %w", vault.ErrNotFound)
	}

	data, err := os.ReadFile(d.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("unknown content (cid: %s): %w", id, vault.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read object: %s: %w", err, vault.ErrStorageUnavailable)
	}

	err = verify(id, data)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// Has returns whether an object exists for the given identifier.
func (d *Disk) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}

	_, err := os.Stat(d.path(id))
	return err == nil
}

func (d *Disk) path(id cid.Cid) string {
	name := id.String()
	if len(name) < 3 {
		return filepath.Join(d.root, name)
	}
	return filepath.Join(d.root, name[len(name)-3:len(name)-1], name)
}
