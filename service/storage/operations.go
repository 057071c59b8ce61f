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

package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/OneOfOne/xxhash"
	"github.com/dgraph-io/badger/v2"

	"github.com/optakt/cid-vault/models/vault"
)

func (l *Library) SaveLast(height uint64) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixLast), height)
}

func (l *Library) RetrieveLast(height *uint64) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixLast), height)
}

func (l *Library) SaveBlock(block *vault.Block) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixBlock, block.Index), block)
}

func (l *Library) RetrieveBlock(height uint64, block *vault.Block) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixBlock, height), block)
}

func (l *Library) IndexHeightForDigest(digest string, height uint64) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixHeightForDigest, digest), height)
}

func (l *Library) LookupHeightForDigest(digest string, height *uint64) func(*badger.Txn) error {
	return l.retrieve(EncodeKey(PrefixHeightForDigest, digest), height)
}

// IndexHeightForContent indexes the height of a block that contains a
// transaction for the given content reference. Content references are hashed
// into the key, so several heights can live under the same hash.
func (l *Library) IndexHeightForContent(content string, height uint64) func(*badger.Txn) error {
	hash := xxhash.ChecksumString64(content)
	return l.save(EncodeKey(PrefixHeightForContent, hash, height), height)
}

// LookupHeightForContent looks up the lowest height of a block containing a
// transaction for the given content reference. Hash collisions are resolved by
// checking the transactions of each candidate block.
func (l *Library) LookupHeightForContent(content string, height *uint64) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {

		hash := xxhash.ChecksumString64(content)
		prefix := EncodeKey(PrefixHeightForContent, hash)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			candidate := binary.BigEndian.Uint64(it.Item().Key()[1+8:])

			var block vault.Block
			err := l.RetrieveBlock(candidate, &block)(tx)
			if err != nil {
				return fmt.Errorf("could not retrieve candidate block (height: %d): %w", candidate, err)
			}

			for _, transaction := range block.Transactions {
				if transaction.Content == content {
					*height = candidate
					return nil
				}
			}
		}

		return fmt.Errorf("could not find content (ref: %s): %w", content, badger.ErrKeyNotFound)
	}
}

func (l *Library) SaveAccount(account *vault.Account) func(*badger.Txn) error {
	return l.save(EncodeKey(PrefixAccount, account.ID), account)
}

// IterateAccounts calls process for every stored account, in key order.
func (l *Library) IterateAccounts(process func(account *vault.Account) error) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {

		prefix := EncodeKey(PrefixAccount)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// The account must be a fresh variable on every iteration, as the
			// callback may hold on to it.
			var account vault.Account
			err := it.Item().Value(func(val []byte) error {
				return l.codec.Unmarshal(val, &account)
			})
			if err != nil {
				return fmt.Errorf("could not decode account (key: %x): %w", it.Item().Key(), err)
			}

			err = process(&account)
			if err != nil {
				return fmt.Errorf("could not process account (id: %s): %w", account.ID, err)
			}
		}

		return nil
	}
}
