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

package storage_test

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/cid-vault/models/vault"
	"github.com/optakt/cid-vault/testing/helpers"
	"github.com/optakt/cid-vault/testing/mocks"
)

func TestSaveAndRetrieve_Last(t *testing.T) {
	db := helpers.InMemoryDB(t)
	defer db.Close()
	lib := helpers.Library(t)

	t.Run("save last height", func(t *testing.T) {
		err := db.Update(lib.SaveLast(mocks.GenericHeight))
		assert.NoError(t, err)
	})

	t.Run("retrieve last height", func(t *testing.T) {
		var got uint64
		err := db.View(lib.RetrieveLast(&got))

		assert.NoError(t, err)
		assert.Equal(t, mocks.GenericHeight, got)
	})
}

func TestSaveAndRetrieve_Block(t *testing.T) {
	db := helpers.InMemoryDB(t)
	defer db.Close()
	lib := helpers.Library(t)

	block := mocks.GenericBlock(3)

	t.Run("save block", func(t *testing.T) {
		err := db.Update(lib.SaveBlock(block))
		assert.NoError(t, err)
	})

	t.Run("retrieve block", func(t *testing.T) {
		var got vault.Block
		err := db.View(lib.RetrieveBlock(block.Index, &got))

		require.NoError(t, err)
		assert.Equal(t, block.Digest, got.Digest)
		assert.Len(t, got.Transactions, 3)
	})

	t.Run("retrieve missing block", func(t *testing.T) {
		var got vault.Block
		err := db.View(lib.RetrieveBlock(block.Index+1, &got))

		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
	})
}

func TestIndexAndLookup_Digest(t *testing.T) {
	db := helpers.InMemoryDB(t)
	defer db.Close()
	lib := helpers.Library(t)

	block := mocks.GenericBlock(1)

	err := db.Update(lib.IndexHeightForDigest(block.Digest, block.Index))
	require.NoError(t, err)

	var got uint64
	err = db.View(lib.LookupHeightForDigest(block.Digest, &got))

	assert.NoError(t, err)
	assert.Equal(t, block.Index, got)
}

func TestIndexAndLookup_Content(t *testing.T) {
	db := helpers.InMemoryDB(t)
	defer db.Close()
	lib := helpers.Library(t)

	chain := mocks.GenericChain(4, 2)
	for _, block := range chain {
		err := db.Update(lib.SaveBlock(block))
		require.NoError(t, err)
		for _, transaction := range block.Transactions {
			err = db.Update(lib.IndexHeightForContent(transaction.Content, block.Index))
			require.NoError(t, err)
		}
	}

	t.Run("nominal case", func(t *testing.T) {
		content := chain[2].Transactions[1].Content

		var got uint64
		err := db.View(lib.LookupHeightForContent(content, &got))

		assert.NoError(t, err)
		assert.Equal(t, chain[2].Index, got)
	})

	t.Run("lowest height wins for repeated content", func(t *testing.T) {
		content := chain[1].Transactions[0].Content
		err := db.Update(lib.IndexHeightForContent(content, chain[3].Index))
		require.NoError(t, err)

		var got uint64
		err = db.View(lib.LookupHeightForContent(content, &got))

		assert.NoError(t, err)
		assert.Equal(t, chain[1].Index, got)
	})

	t.Run("unknown content", func(t *testing.T) {
		var got uint64
		err := db.View(lib.LookupHeightForContent("unknown", &got))

		assert.ErrorIs(t, err, badger.ErrKeyNotFound)
	})
}

func TestSaveAndIterate_Accounts(t *testing.T) {
	db := helpers.InMemoryDB(t)
	defer db.Close()
	lib := helpers.Library(t)

	alice := mocks.GenericAccount.Copy()
	bob := mocks.GenericAccount.Copy()
	bob.ID = "0xb0b"
	bob.FirstName = "Bob"

	err := db.Update(lib.SaveAccount(alice))
	require.NoError(t, err)
	err = db.Update(lib.SaveAccount(bob))
	require.NoError(t, err)

	t.Run("iterate accounts", func(t *testing.T) {
		var got []*vault.Account
		err := db.View(lib.IterateAccounts(func(account *vault.Account) error {
			got = append(got, account)
			return nil
		}))

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, alice.ID, got[0].ID)
		assert.Equal(t, bob.ID, got[1].ID)
		assert.Equal(t, "Bob", got[1].FirstName)
	})

	t.Run("iterate accounts stops on callback error", func(t *testing.T) {
		err := db.View(lib.IterateAccounts(func(account *vault.Account) error {
			return mocks.GenericError
		}))

		assert.ErrorIs(t, err, mocks.GenericError)
	})
}
