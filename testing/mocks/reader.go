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

type Reader struct {
	LastFunc     func() (uint64, error)
	BlockFunc    func(height uint64) (*vault.Block, error)
	BlocksFunc   func() ([]*vault.Block, error)
	FindFunc     func(ref string) (*vault.Block, error)
	AccountsFunc func() ([]*vault.Account, error)
}

func BaselineReader(t *testing.T) *Reader {
	t.Helper()

	r := Reader{
		LastFunc: func() (uint64, error) {
			return GenericHeight, nil
		},
		BlockFunc: func(height uint64) (*vault.Block, error) {
			return GenericBlock(2), nil
		},
		BlocksFunc: func() ([]*vault.Block, error) {
			return GenericChain(3, 2), nil
		},
		FindFunc: func(ref string) (*vault.Block, error) {
			return GenericBlock(2), nil
		},
		AccountsFunc: func() ([]*vault.Account, error) {
			return []*vault.Account{GenericAccount.Copy()}, nil
		},
	}

	return &r
}

func (r *Reader) Last() (uint64, error) {
	return r.LastFunc()
}

func (r *Reader) Block(height uint64) (*vault.Block, error) {
	return r.BlockFunc(height)
}

func (r *Reader) Blocks() ([]*vault.Block, error) {
	return r.BlocksFunc()
}

func (r *Reader) Find(ref string) (*vault.Block, error) {
	return r.FindFunc(ref)
}

func (r *Reader) Accounts() ([]*vault.Account, error) {
	return r.AccountsFunc()
}
