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

// Writer writes sealed blocks and account records to the index database. The
// block log is append-only: a block is only accepted if it directly follows
// the last indexed block.
type Writer struct {
	db  *badger.DB
	lib *storage.Library
}

// NewWriter creates a new index writer that writes to the given Badger
// database.
func NewWriter(db *badger.DB, lib *storage.Library) *Writer {

	w := Writer{
		db:  db,
		lib: lib,
	}

	return &w
}

// Block indexes the given block, along with the lookups for its digest and the
// content referenced by its transactions.
func (w *Writer) Block(block *vault.Block) error {
	err := w.db.Update(func(tx *badger.Txn) error {

		// Figure out what the block must link to. On an empty index, only the
		// genesis block is accepted.
		var last uint64
		previous := vault.GenesisPrevious
		err := w.lib.RetrieveLast(&last)(tx)
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("could not retrieve last height: %w", err)
		}
		if err == nil {
			var tip vault.Block
			err = w.lib.RetrieveBlock(last, &tip)(tx)
			if err != nil {
				return fmt.Errorf("could not retrieve last block (height: %d): %w", last, err)
			}
			previous = tip.Digest
		}

		if block.Index != last+1 {
			return fmt.Errorf("invalid block height (last: %d, block: %d): %w", last, block.Index, vault.ErrNotAppendOnly)
		}
		if block.Previous != previous {
			return fmt.Errorf("invalid previous digest (want: %s, have: %s): %w", previous, block.Previous, vault.ErrBrokenLink)
		}

		ops := []func(*badger.Txn) error{
			w.lib.SaveBlock(block),
			w.lib.IndexHeightForDigest(block.Digest, block.Index),
		}
		for _, transaction := range block.Transactions {
			ops = append(ops, w.lib.IndexHeightForContent(transaction.Content, block.Index))
		}
		ops = append(ops, w.lib.SaveLast(block.Index))

		return storage.Combine(ops...)(tx)
	})
	if err != nil {
		return fmt.Errorf("could not index block: %w", err)
	}

	return nil
}

// Account indexes the given account record.
func (w *Writer) Account(account *vault.Account) error {
	err := w.db.Update(w.lib.SaveAccount(account))
	if err != nil {
		return fmt.Errorf("could not index account: %w", err)
	}
	return nil
}
