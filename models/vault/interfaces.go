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

package vault

import (
	"github.com/ipfs/go-cid"
)

// Codec encodes and decodes values for storage.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(b []byte, v interface{}) error
}

// Content is a content-addressable store. Put must be idempotent, and Get must
// only ever return bytes that hash to the requested CID.
type Content interface {
	Put(data []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// Reader represents something that can read from a ledger index.
type Reader interface {
	Last() (uint64, error)
	Block(height uint64) (*Block, error)
	Blocks() ([]*Block, error)
	Find(ref string) (*Block, error)
	Accounts() ([]*Account, error)
}

// Writer represents something that can write on a ledger index.
type Writer interface {
	Block(block *Block) error
	Account(account *Account) error
}

// Chain gives access to the ledger.
type Chain interface {
	Submit(account string, content string, meta Metadata) (Transaction, error)
	Seal(payload string) (*Block, error)
	SealWith(derive func(transactions []Transaction) (string, error)) (*Block, error)
	Commit(account string, content string, meta Metadata, payload string) (Transaction, *Block, error)
	Verify() error
	Length() uint64
	Last() *Block
	Block(height uint64) (*Block, error)
	Blocks() []*Block
	Pending() []Transaction
	Transactions(account string) []Transaction
}

// Directory gives access to the registered accounts.
type Directory interface {
	Register(first string, last string, id string, password string) (*Account, error)
	Authenticate(id string, password string) (*Account, error)
	Lookup(id string) (*Account, error)
}

// Files stores and retrieves files on behalf of accounts.
type Files interface {
	Upload(id string, password string, name string, data []byte, encrypt bool) (*Receipt, error)
	Retrieve(id string, password string, ref string) ([]byte, *Transaction, error)
	History(id string, password string) ([]Transaction, error)
}
