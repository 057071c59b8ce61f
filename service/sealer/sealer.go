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

package sealer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/optakt/cid-vault/models/vault"
	"github.com/optakt/cid-vault/service/content"
)

var errNothingPending = errors.New("no pending transactions")

// Sealer periodically seals the pending transactions of a chain into a new
// block. The payload of each block is the content identifier of the list of
// content references it contains, one per line.
type Sealer struct {
	log   zerolog.Logger
	cfg   Config
	chain vault.Chain
}

// New creates a new timed sealer for the given chain.
func New(log zerolog.Logger, chain vault.Chain, options ...func(*Config)) *Sealer {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	s := Sealer{
		log:   log.With().Str("component", "sealer").Logger(),
		cfg:   cfg,
		chain: chain,
	}

	return &s
}

// Run seals pending transactions at every interval until the context is
// canceled.
func (s *Sealer) Run(ctx context.Context) error {

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.cfg.Interval).Msg("sealer started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("sealer stopped")
			return nil
		case <-ticker.C:
		}

		_, err := s.Seal()
		if errors.Is(err, errNothingPending) {
			continue
		}
		if err != nil {
			s.log.Error().Err(err).Msg("could not seal block")
			continue
		}
	}
}

// Seal seals the currently pending transactions, if there are any.
func (s *Sealer) Seal() (*vault.Block, error) {

	block, err := s.chain.SealWith(Payload)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint64("index", block.Index).
		Str("digest", block.Digest).
		Str("payload", block.Payload).
		Int("transactions", len(block.Transactions)).
		Msg("block sealed")

	return block, nil
}

// Payload derives the payload of a block from its transactions.
func Payload(transactions []vault.Transaction) (string, error) {
	if len(transactions) == 0 {
		return "", errNothingPending
	}

	refs := make([]string, 0, len(transactions))
	for _, transaction := range transactions {
		refs = append(refs, transaction.Content)
	}

	id, err := content.Reference([]byte(strings.Join(refs, "\n")))
	if err != nil {
		return "", err
	}

	return id.String(), nil
}
