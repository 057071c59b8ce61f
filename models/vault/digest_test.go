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

package vault_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optakt/cid-vault/models/vault"
)

func TestDigest(t *testing.T) {
	got := vault.Digest(vault.GenesisPayload, vault.GenesisPrevious)

	assert.Equal(t, "8500b59bb5271135cd9bcbf0afd693028d76df3b9c7da58d412b13fc8a8f9394", got)
	assert.NotEqual(t, got, vault.Digest(vault.GenesisPayload, "1"))
}

func TestVerificationError(t *testing.T) {
	var err error = &vault.VerificationError{Height: 3, Reason: "digest mismatch"}

	assert.True(t, errors.Is(err, vault.ErrChainVerification))
	assert.False(t, errors.Is(err, vault.ErrNotFound))
	assert.Contains(t, err.Error(), "height 3")

	var verr *vault.VerificationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, uint64(3), verr.Height)
}

func TestBlock_Copy(t *testing.T) {
	block := &vault.Block{
		Index:        2,
		Transactions: []vault.Transaction{{Account: "alice", Content: "cid1"}},
	}

	dup := block.Copy()
	dup.Transactions[0].Content = "changed"

	assert.Equal(t, "cid1", block.Transactions[0].Content)
}
