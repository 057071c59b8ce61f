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

package ledger

import (
	"fmt"
	"sync"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog"

	"github.com/optakt/cid-vault/models/vault"
)

// Ledger is an append-only chain of blocks, each one linked to its predecessor
// by digest, together with a buffer of pending transactions that is flushed
// into every new block.
//
// Submitting and sealing are serialized by a single mutex. When an index
// writer is configured, sealed blocks are handed to it in chain order by
// whichever seal gets to flush first; the mutex is never held while waiting on
// the writer, so submissions and reads are never blocked on disk.
type Ledger struct {
	log zerolog.Logger
	cfg Config

	mutex   sync.Mutex
	blocks  []*vault.Block
	pending *deque.Deque

	// persist guards persisted and serializes calls to the writer. It must
	// never be acquired while holding the state mutex.
	persist   sync.Mutex
	persisted int
}

// New creates a new ledger. Unless a persisted chain is restored, the chain
// starts with the genesis block.
func New(log zerolog.Logger, options ...func(*Config)) (*Ledger, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	l := Ledger{
		log:     log.With().Str("component", "ledger").Logger(),
		cfg:     cfg,
		pending: deque.New(),
	}

	if len(cfg.Blocks) > 0 {
		err := VerifyChain(cfg.Blocks)
		if err != nil {
			return nil, fmt.Errorf("could not restore chain: %w", err)
		}
		for _, block := range cfg.Blocks {
			l.blocks = append(l.blocks, block.Copy())
		}
		l.persisted = len(l.blocks)
		l.log.Info().Int("length", len(l.blocks)).Str("digest", l.tip().Digest).Msg("chain restored")
		return &l, nil
	}

	genesis := vault.Block{
		Index:        1,
		Timestamp:    cfg.Clock(),
		Transactions: []vault.Transaction{},
		Payload:      vault.GenesisPayload,
		Previous:     vault.GenesisPrevious,
		Digest:       vault.Digest(vault.GenesisPayload, vault.GenesisPrevious),
	}
	l.blocks = append(l.blocks, &genesis)

	err := l.flush()
	if err != nil {
		return nil, fmt.Errorf("could not persist genesis block: %w", err)
	}

	return &l, nil
}

// Submit adds a transaction to the pending buffer. It only fails when the
// account or the content reference is missing.
func (l *Ledger) Submit(account string, content string, meta vault.Metadata) (vault.Transaction, error) {
	if account == "" {
		return vault.Transaction{}, fmt.Errorf("account is required: %w", vault.ErrMissingField)
	}
	if content == "" {
		return vault.Transaction{}, fmt.Errorf("content is required: %w", vault.ErrMissingField)
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.push(account, content, meta), nil
}

// Seal seals a new block over the pending transactions with the given payload
// reference. The block digest covers the payload and the previous digest only.
// The block is always appended in memory; an error is only returned when it
// could not be persisted, in which case persisting is retried on the next seal.
func (l *Ledger) Seal(payload string) (*vault.Block, error) {
	return l.SealWith(func([]vault.Transaction) (string, error) {
		return payload, nil
	})
}

// SealWith works like Seal, but derives the payload from the exact set of
// transactions that are moved into the block. If derive fails, nothing is
// sealed and the pending transactions stay in the buffer.
func (l *Ledger) SealWith(derive func(transactions []vault.Transaction) (string, error)) (*vault.Block, error) {

	l.mutex.Lock()
	block, err := l.seal(derive)
	l.mutex.Unlock()
	if err != nil {
		return nil, err
	}

	return block, l.flush()
}

// Commit submits a transaction and seals it, together with anything else that
// was pending, into a new block with the given payload. No other submission or
// seal can happen in between. As with Seal, a returned block means the seal
// happened even when an error reports that it could not be persisted yet.
func (l *Ledger) Commit(account string, content string, meta vault.Metadata, payload string) (vault.Transaction, *vault.Block, error) {
	if account == "" {
		return vault.Transaction{}, nil, fmt.Errorf("account is required: %w", vault.ErrMissingField)
	}
	if content == "" {
		return vault.Transaction{}, nil, fmt.Errorf("content is required: %w", vault.ErrMissingField)
	}

	l.mutex.Lock()
	transaction := l.push(account, content, meta)
	block, err := l.seal(func([]vault.Transaction) (string, error) {
		return payload, nil
	})
	l.mutex.Unlock()
	if err != nil {
		return vault.Transaction{}, nil, err
	}

	return transaction, block, l.flush()
}

// Verify verifies the chain; see VerifyChain.
func (l *Ledger) Verify() error {
	l.mutex.Lock()
	blocks := l.blocks
	l.mutex.Unlock()

	return VerifyChain(blocks)
}

// Length returns the number of blocks in the chain, genesis block included.
func (l *Ledger) Length() uint64 {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return uint64(len(l.blocks))
}

// Last returns the most recently sealed block.
func (l *Ledger) Last() *vault.Block {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.tip().Copy()
}

// Block returns the block at the given height, starting at one for the
// genesis block.
func (l *Ledger) Block(height uint64) (*vault.Block, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if height == 0 || height > uint64(len(l.blocks)) {
		return nil, fmt.Errorf("no block at height %d: %w", height, vault.ErrNotFound)
	}

	return l.blocks[height-1].Copy(), nil
}

// Blocks returns a copy of the whole chain.
func (l *Ledger) Blocks() []*vault.Block {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	blocks := make([]*vault.Block, 0, len(l.blocks))
	for _, block := range l.blocks {
		blocks = append(blocks, block.Copy())
	}

	return blocks
}

// Pending returns the transactions waiting for the next block.
func (l *Ledger) Pending() []vault.Transaction {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	transactions := make([]vault.Transaction, 0, l.pending.Len())
	for i := 0; i < l.pending.Len(); i++ {
		transactions = append(transactions, l.pending.At(i).(vault.Transaction))
	}

	return transactions
}

// Transactions returns all transactions of the given account, sealed ones
// first in chain order, followed by pending ones.
func (l *Ledger) Transactions(account string) []vault.Transaction {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var transactions []vault.Transaction
	for _, block := range l.blocks {
		for _, transaction := range block.Transactions {
			if transaction.Account == account {
				transactions = append(transactions, transaction)
			}
		}
	}
	for i := 0; i < l.pending.Len(); i++ {
		transaction := l.pending.At(i).(vault.Transaction)
		if transaction.Account == account {
			transactions = append(transactions, transaction)
		}
	}

	return transactions
}

func (l *Ledger) tip() *vault.Block {
	return l.blocks[len(l.blocks)-1]
}

// push must be called with the state mutex held.
func (l *Ledger) push(account string, content string, meta vault.Metadata) vault.Transaction {
	transaction := vault.Transaction{
		Account:   account,
		Content:   content,
		Metadata:  meta,
		Timestamp: l.cfg.Clock(),
	}
	l.pending.PushBack(transaction)

	return transaction
}

// seal must be called with the state mutex held. It returns a copy of the new
// block.
func (l *Ledger) seal(derive func(transactions []vault.Transaction) (string, error)) (*vault.Block, error) {

	transactions := make([]vault.Transaction, 0, l.pending.Len())
	for i := 0; i < l.pending.Len(); i++ {
		transactions = append(transactions, l.pending.At(i).(vault.Transaction))
	}

	payload, err := derive(transactions)
	if err != nil {
		return nil, fmt.Errorf("could not derive payload: %w", err)
	}
	l.pending.Clear()

	previous := l.tip()
	block := vault.Block{
		Index:        previous.Index + 1,
		Timestamp:    l.cfg.Clock(),
		Transactions: transactions,
		Payload:      payload,
		Previous:     previous.Digest,
		Digest:       vault.Digest(payload, previous.Digest),
	}
	l.blocks = append(l.blocks, &block)

	l.log.Debug().
		Uint64("index", block.Index).
		Str("digest", block.Digest).
		Int("transactions", len(transactions)).
		Msg("block sealed")

	return block.Copy(), nil
}

// flush hands every block that was not persisted yet to the writer, in chain
// order. The state mutex is only held to take a snapshot of those blocks, never
// while the writer is called.
func (l *Ledger) flush() error {
	l.persist.Lock()
	defer l.persist.Unlock()

	l.mutex.Lock()
	blocks := make([]*vault.Block, 0, len(l.blocks)-l.persisted)
	blocks = append(blocks, l.blocks[l.persisted:]...)
	l.mutex.Unlock()

	if l.cfg.Writer == nil {
		l.persisted += len(blocks)
		return nil
	}

	for _, block := range blocks {
		err := l.cfg.Writer.Block(block.Copy())
		if err != nil {
			l.log.Error().Err(err).Uint64("index", block.Index).Msg("could not persist block")
			return fmt.Errorf("could not persist block (index: %d): %w", block.Index, err)
		}
		l.persisted++
	}

	return nil
}
