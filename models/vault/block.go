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
	"time"
)

// Sentinel values used for the first block of every chain.
const (
	GenesisPayload  = "Genesis Block"
	GenesisPrevious = "0"
)

// Block is a sealed set of transactions, linked to its predecessor through the
// digest of the previous block. The digest of a block only covers its payload
// and the previous digest; the transaction list is not part of it.
type Block struct {
	Index        uint64        `cbor:"1,keyasint" json:"index"`
	Timestamp    time.Time     `cbor:"2,keyasint" json:"timestamp"`
	Transactions []Transaction `cbor:"3,keyasint" json:"transactions"`
	Payload      string        `cbor:"4,keyasint" json:"payload"`
	Previous     string        `cbor:"5,keyasint" json:"previous_digest"`
	Digest       string        `cbor:"6,keyasint" json:"digest"`
}

// Copy returns a deep copy of the block, so that the caller can not modify
// blocks held by the ledger.
func (b *Block) Copy() *Block {
	dup := *b
	dup.Transactions = make([]Transaction, len(b.Transactions))
	copy(dup.Transactions, b.Transactions)
	return &dup
}

// Transaction records that an account stored a piece of content.
type Transaction struct {
	Account   string    `cbor:"1,keyasint" json:"account_id"`
	Content   string    `cbor:"2,keyasint" json:"content"`
	Metadata  Metadata  `cbor:"3,keyasint" json:"metadata"`
	Timestamp time.Time `cbor:"4,keyasint" json:"timestamp"`
}

// Metadata is the free-form description of submitted content.
type Metadata struct {
	Name      string `cbor:"1,keyasint" json:"name"`
	Size      uint64 `cbor:"2,keyasint" json:"size"`
	Encrypted bool   `cbor:"3,keyasint" json:"encrypted"`
}

// Receipt is returned to the uploader of a file.
type Receipt struct {
	Content     string      `json:"cid"`
	Transaction Transaction `json:"transaction"`
	Block       *Block      `json:"block,omitempty"`
}
