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

package mocks

import (
	"testing"

	"github.com/optakt/cid-vault/models/vault"
)

type Chain struct {
	SubmitFunc       func(account string, content string, meta vault.Metadata) (vault.Transaction, error)
	SealFunc         func(payload string) (*vault.Block, error)
	SealWithFunc     func(derive func([]vault.Transaction) (string, error)) (*vault.Block, error)
	CommitFunc       func(account string, content string, meta vault.Metadata, payload string) (vault.Transaction, *vault.Block, error)
	VerifyFunc       func() error
	LengthFunc       func() uint64
	LastFunc         func() *vault.Block
	BlockFunc        func(height uint64) (*vault.Block, error)
	BlocksFunc       func() []*vault.Block
	PendingFunc      func() []vault.Transaction
	TransactionsFunc func(account string) []vault.Transaction
}

func BaselineChain(t *testing.T) *Chain {
	t.Helper()

	c := Chain{
		SubmitFunc: func(account string, content string, meta vault.Metadata) (vault.Transaction, error) {
			return GenericTransaction(0), nil
		},
		SealFunc: func(payload string) (*vault.Block, error) {
			return GenericBlock(2), nil
		},
		SealWithFunc: func(derive func([]vault.Transaction) (string, error)) (*vault.Block, error) {
			return GenericBlock(2), nil
		},
		CommitFunc: func(account string, content string, meta vault.Metadata, payload string) (vault.Transaction, *vault.Block, error) {
			return GenericTransaction(0), GenericBlock(2), nil
		},
		VerifyFunc: func() error {
			return nil
		},
		LengthFunc: func() uint64 {
			return 3
		},
		LastFunc: func() *vault.Block {
			return GenericChain(3, 2)[2]
		},
		BlockFunc: func(height uint64) (*vault.Block, error) {
			return GenericBlock(2), nil
		},
		BlocksFunc: func() []*vault.Block {
			return GenericChain(3, 2)
		},
		PendingFunc: func() []vault.Transaction {
			return nil
		},
		TransactionsFunc: func(account string) []vault.Transaction {
			return GenericTransactions(2)
		},
	}

	return &c
}

func (c *Chain) Submit(account string, content string, meta vault.Metadata) (vault.Transaction, error) {
	return c.SubmitFunc(account, content, meta)
}

func (c *Chain) Seal(payload string) (*vault.Block, error) {
	return c.SealFunc(payload)
}

func (c *Chain) SealWith(derive func([]vault.Transaction) (string, error)) (*vault.Block, error) {
	return c.SealWithFunc(derive)
}

func (c *Chain) Commit(account string, content string, meta vault.Metadata, payload string) (vault.Transaction, *vault.Block, error) {
	return c.CommitFunc(account, content, meta, payload)
}

func (c *Chain) Verify() error {
	return c.VerifyFunc()
}

func (c *Chain) Length() uint64 {
	return c.LengthFunc()
}

func (c *Chain) Last() *vault.Block {
	return c.LastFunc()
}

func (c *Chain) Block(height uint64) (*vault.Block, error) {
	return c.BlockFunc(height)
}

func (c *Chain) Blocks() []*vault.Block {
	return c.BlocksFunc()
}

func (c *Chain) Pending() []vault.Transaction {
	return c.PendingFunc()
}

func (c *Chain) Transactions(account string) []vault.Transaction {
	return c.TransactionsFunc(account)
}
