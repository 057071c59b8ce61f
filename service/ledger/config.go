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
	"time"

	"github.com/optakt/cid-vault/models/vault"
)

// DefaultConfig is the default configuration for the ledger.
var DefaultConfig = Config{
	Clock: func() time.Time {
		return time.Now().UTC()
	},
	Writer: nil,
	Blocks: nil,
}

// Config contains the optional parameters of a ledger.
type Config struct {
	Clock  func() time.Time
	Writer vault.Writer
	Blocks []*vault.Block
}

// WithClock sets the function used to timestamp transactions and blocks.
func WithClock(clock func() time.Time) func(*Config) {
	return func(cfg *Config) {
		cfg.Clock = clock
	}
}

// WithWriter makes the ledger hand every sealed block to the given index
// writer, in chain order.
func WithWriter(writer vault.Writer) func(*Config) {
	return func(cfg *Config) {
		cfg.Writer = writer
	}
}

// WithBlocks restores the ledger from a previously persisted chain, instead of
// starting a new chain from the genesis block. The blocks are assumed to be
// persisted already.
func WithBlocks(blocks []*vault.Block) func(*Config) {
	return func(cfg *Config) {
		cfg.Blocks = blocks
	}
}
