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

package index_test

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/cid-vault/models/vault"
	"github.com/optakt/cid-vault/service/index"
	"github.com/optakt/cid-vault/testing/helpers"
	"github.com/optakt/cid-vault/testing/mocks"
)

func TestIndex(t *testing.T) {
	t.Run("empty index", func(t *testing.T) {
		t.Parallel()

		reader, _, db := setupIndex(t)
		defer db.Close()

		_, err := reader.Last()
		assert.ErrorIs(t, err, vault.ErrNotFound)

		blocks, err := reader.Blocks()
		require.NoError(t, err)
		assert.Empty(t, blocks)
	})

	t.Run("blocks round trip", func(t *testing.T) {
		t.Parallel()

		reader, writer, db := setupIndex(t)
		defer db.Close()

		chain := mocks.GenericChain(4, 2)
		for _, block := range chain {
			require.NoError(t, writer.Block(block))
		}

		last, err := reader.Last()
		require.NoError(t, err)
		assert.Equal(t, uint64(4), last)

		got, err := reader.Blocks()
		require.NoError(t, err)
		require.Len(t, got, len(chain))
		for i, block := range got {
			assert.Equal(t, chain[i].Digest, block.Digest)
			assert.Equal(t, chain[i].Previous, block.Previous)
			assert.Equal(t, chain[i].Payload, block.Payload)
			assert.Len(t, block.Transactions, len(chain[i].Transactions))
		}

		block, err := reader.Block(3)
		require.NoError(t, err)
		assert.Equal(t, chain[2].Digest, block.Digest)

		_, err = reader.Block(5)
		assert.ErrorIs(t, err, vault.ErrNotFound)
	})

	t.Run("writer refuses gaps and broken links", func(t *testing.T) {
		t.Parallel()

		_, writer, db := setupIndex(t)
		defer db.Close()

		chain := mocks.GenericChain(3, 1)

		err := writer.Block(chain[1])
		assert.ErrorIs(t, err, vault.ErrNotAppendOnly)

		require.NoError(t, writer.Block(chain[0]))

		err = writer.Block(chain[0])
		assert.ErrorIs(t, err, vault.ErrNotAppendOnly)

		broken := chain[1].Copy()
		broken.Previous = "deadbeef"
		err = writer.Block(broken)
		assert.ErrorIs(t, err, vault.ErrBrokenLink)

		assert.NoError(t, writer.Block(chain[1]))
		assert.NoError(t, writer.Block(chain[2]))
	})

	t.Run("genesis must use the sentinel", func(t *testing.T) {
		t.Parallel()

		_, writer, db := setupIndex(t)
		defer db.Close()

		genesis := mocks.GenericChain(1, 0)[0]
		genesis.Previous = "1"

		err := writer.Block(genesis)
		assert.ErrorIs(t, err, vault.ErrBrokenLink)
	})

	t.Run("find by digest and by content", func(t *testing.T) {
		t.Parallel()

		reader, writer, db := setupIndex(t)
		defer db.Close()

		chain := mocks.GenericChain(3, 2)
		for _, block := range chain {
			require.NoError(t, writer.Block(block))
		}

		got, err := reader.Find(chain[2].Digest)
		require.NoError(t, err)
		assert.Equal(t, chain[2].Index, got.Index)

		got, err = reader.Find(chain[1].Transactions[1].Content)
		require.NoError(t, err)
		assert.Equal(t, chain[1].Index, got.Index)

		_, err = reader.Find("unknown")
		assert.ErrorIs(t, err, vault.ErrNotFound)
	})

	t.Run("accounts", func(t *testing.T) {
		t.Parallel()

		reader, writer, db := setupIndex(t)
		defer db.Close()

		require.NoError(t, writer.Account(mocks.GenericAccount))

		all, err := reader.Accounts()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, mocks.GenericAccount.FirstName, all[0].FirstName)
	})
}

func TestMetricsWriter(t *testing.T) {
	reg := prometheus.NewRegistry()
	write := mocks.BaselineWriter(t)
	writer := index.NewMetricsWriter(write, reg)

	chain := mocks.GenericChain(3, 2)
	for _, block := range chain {
		require.NoError(t, writer.Block(block))
	}
	require.NoError(t, writer.Account(mocks.GenericAccount))

	write.BlockFunc = func(*vault.Block) error {
		return mocks.GenericError
	}
	err := writer.Block(mocks.GenericBlock(5))
	assert.ErrorIs(t, err, mocks.GenericError)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)

	assert.Equal(t, float64(3), counterValue(t, reg, "indexed_blocks"))
	assert.Equal(t, float64(4), counterValue(t, reg, "indexed_transactions"))
	assert.Equal(t, float64(1), counterValue(t, reg, "indexed_accounts"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}

	t.Fatalf("metric %s not found", name)
	return 0
}

func setupIndex(t *testing.T) (*index.Reader, *index.Writer, *badger.DB) {
	t.Helper()

	db := helpers.InMemoryDB(t)
	lib := helpers.Library(t)

	reader := index.NewReader(db, lib)
	writer := index.NewWriter(db, lib)

	return reader, writer, db
}
