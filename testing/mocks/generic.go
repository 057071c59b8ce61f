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
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/rs/zerolog"

	"github.com/optakt/cid-vault/models/vault"
)

// Global variables that can be used for testing. They are non-nil valid values
// for the types commonly needed to test vault components.
var (
	NoopLogger = zerolog.New(io.Discard)

	GenericError = errors.New("dummy error")

	GenericHeight = uint64(42)

	GenericBytes = []byte(`test`)

	GenericAccountID = "0x7338410F9c4335422e63ace32b4f7C7abb5C7C8A"

	GenericPassword = "secret"

	GenericTime = time.Date(1972, 11, 12, 13, 14, 15, 16, time.UTC)

	GenericAccount = &vault.Account{
		ID:        GenericAccountID,
		FirstName: "Alice",
		LastName:  "Liddell",
		Created:   GenericTime,
	}
)

// GenericCID returns a deterministic CID for the given index.
func GenericCID(index int) cid.Cid {
	sum, err := multihash.Sum([]byte(fmt.Sprintf("content-%d", index)), multihash.SHA2_256, -1)
	if err != nil {
		panic(err)
	}
	return cid.NewCidV1(cid.Raw, sum)
}

func GenericTransaction(index int) vault.Transaction {
	return vault.Transaction{
		Account: GenericAccountID,
		Content: GenericCID(index).String(),
		Metadata: vault.Metadata{
			Name: fmt.Sprintf("file-%d.txt", index),
			Size: uint64(100 + index),
		},
		Timestamp: GenericTime.Add(time.Duration(index) * time.Second),
	}
}

func GenericTransactions(number int) []vault.Transaction {
	var transactions []vault.Transaction
	for i := 0; i < number; i++ {
		transactions = append(transactions, GenericTransaction(i))
	}
	return transactions
}

// GenericBlock returns a block following the genesis block, which holds the
// given number of transactions.
func GenericBlock(number int) *vault.Block {
	return GenericChain(2, number)[1]
}

// GenericChain returns a valid chain of the given length, starting with the
// genesis block. Every block after the genesis block holds the given number
// of transactions.
func GenericChain(length int, number int) []*vault.Block {
	genesis := &vault.Block{
		Index:        1,
		Timestamp:    GenericTime,
		Transactions: []vault.Transaction{},
		Payload:      vault.GenesisPayload,
		Previous:     vault.GenesisPrevious,
		Digest:       vault.Digest(vault.GenesisPayload, vault.GenesisPrevious),
	}
	blocks := []*vault.Block{genesis}

	for i := 1; i < length; i++ {
		previous := blocks[i-1]
		transactions := make([]vault.Transaction, 0, number)
		for j := 0; j < number; j++ {
			transactions = append(transactions, GenericTransaction(i*number+j))
		}
		payload := GenericCID(i * 1000).String()
		block := vault.Block{
			Index:        previous.Index + 1,
			Timestamp:    GenericTime.Add(time.Duration(i) * time.Minute),
			Transactions: transactions,
			Payload:      payload,
			Previous:     previous.Digest,
			Digest:       vault.Digest(payload, previous.Digest),
		}
		blocks = append(blocks, &block)
	}

	return blocks
}
