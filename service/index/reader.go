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

package index

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/optakt/cid-vault/models/vault"
	"github.com/optakt/cid-vault/service/storage"
)

// Reader reads sealed blocks and account records from the index database.
type Reader struct {
	db  *badger.DB
	lib *storage.Library
}

// NewReader creates a new index reader on the given Badger database.
func NewReader(db *badger.DB, lib *storage.Library) *Reader {

	r := Reader{
		db:  db,
		lib: lib,
	}

	return &r
}

// Last returns the height of the last indexed block.
func (r *Reader) Last() (uint64, error) {
	var height uint64
	err := r.db.View(r.lib.RetrieveLast(&height))
	if err != nil {
		return 0, convert(err)
	}
	return height, nil
}

// Block returns the block at the given height.
func (r *Reader) Block(height uint64) (*vault.Block, error) {
	var block vault.Block
	err := r.db.View(r.lib.RetrieveBlock(height, &block))
	if err != nil {
		return nil, convert(err)
	}
	return &block, nil
}

// Blocks returns every indexed block in chain order. An empty index returns an
// empty slice.
func (r *Reader) Blocks() ([]*vault.Block, error) {
	var blocks []*vault.Block
	err := r.db.View(func(tx *badger.Txn) error {
		var last uint64
		err := r.lib.RetrieveLast(&last)(tx)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not retrieve last height: %w", err)
		}

		blocks = make([]*vault.Block, 0, last)
		for height := uint64(1); height <= last; height++ {
			var block vault.Block
			err = r.lib.RetrieveBlock(height, &block)(tx)
			if err != nil {
				return fmt.Errorf("could not retrieve block (height: %d): %w", height, err)
			}
			blocks = append(blocks, &block)
		}

		return nil
	})
	if err != nil {
		return nil, convert(err)
	}

	return blocks, nil
}

// Find returns the block identified by the given reference, which is either a
// block digest or the content reference of one of its transactions.
func (r *Reader) Find(ref string) (*vault.Block, error) {
	var block vault.Block
	err := r.db.View(func(tx *badger.Txn) error {
		var height uint64
		err := storage.Fallback(
			r.lib.LookupHeightForDigest(ref, &height),
			r.lib.LookupHeightForContent(ref, &height),
		)(tx)
		if err != nil {
			return fmt.Errorf("could not look up height (ref: %s): %w", ref, err)
		}
		return r.lib.RetrieveBlock(height, &block)(tx)
	})
	if err != nil {
		return nil, convert(err)
	}
	return &block, nil
}

// Accounts returns every indexed account record.
func (r *Reader) Accounts() ([]*vault.Account, error) {
	var accounts []*vault.Account
	err := r.db.View(r.lib.IterateAccounts(func(account *vault.Account) error {
		accounts = append(accounts, account)
		return nil
	}))
	if err != nil {
		return nil, convert(err)
	}
	return accounts, nil
}

// convert maps missing keys onto the vault sentinel, so that callers do not
// need to know about Badger.
func convert(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", vault.ErrNotFound, err)
	}
	return err
}
