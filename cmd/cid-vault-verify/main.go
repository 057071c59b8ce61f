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

package main

import (
	"errors"
	"os"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/cid-vault/encoding/zbor"
	"github.com/optakt/cid-vault/models/vault"
	"github.com/optakt/cid-vault/service/index"
	"github.com/optakt/cid-vault/service/ledger"
	"github.com/optakt/cid-vault/service/storage"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run())
}

func run() int {

	// Command line parameter initialization.
	var (
		flagData  string
		flagFind  []string
		flagLevel string
	)

	pflag.StringVarP(&flagData, "data", "d", "data", "directory of the ledger index")
	pflag.StringSliceVarP(&flagFind, "find", "f", nil, "block digests or file CIDs to locate in the verified chain")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")

	pflag.Parse()

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)

	db, err := badger.Open(vault.DefaultOptions(flagData).WithReadOnly(true))
	if err != nil {
		log.Error().Str("data", flagData).Err(err).Msg("could not open index database")
		return failure
	}
	defer db.Close()

	codec, err := zbor.NewCodec()
	if err != nil {
		log.Error().Err(err).Msg("could not initialize storage codec")
		return failure
	}
	read := index.NewReader(db, storage.New(codec))

	last, err := read.Last()
	if errors.Is(err, vault.ErrNotFound) {
		log.Error().Str("data", flagData).Msg("index is empty")
		return failure
	}
	if err != nil {
		log.Error().Err(err).Msg("could not read last height")
		return failure
	}
	blocks, err := read.Blocks()
	if err != nil {
		log.Error().Err(err).Msg("could not load blocks")
		return failure
	}
	if uint64(len(blocks)) != last {
		log.Error().Uint64("last", last).Int("blocks", len(blocks)).Msg("index is missing blocks")
		return failure
	}

	err = ledger.VerifyChain(blocks)
	var verr *vault.VerificationError
	if errors.As(err, &verr) {
		log.Error().Uint64("height", verr.Height).Str("reason", verr.Reason).Msg("chain verification failed")
		return failure
	}
	if err != nil {
		log.Error().Err(err).Msg("could not verify chain")
		return failure
	}

	var transactions int
	for _, block := range blocks {
		transactions += len(block.Transactions)
	}

	log.Info().
		Uint64("height", last).
		Int("transactions", transactions).
		Str("digest", blocks[len(blocks)-1].Digest).
		Msg("chain verified")

	for _, ref := range flagFind {
		block, err := read.Find(ref)
		if errors.Is(err, vault.ErrNotFound) {
			log.Error().Str("ref", ref).Msg("reference not found in index")
			return failure
		}
		if err != nil {
			log.Error().Str("ref", ref).Err(err).Msg("could not look up reference")
			return failure
		}
		log.Info().
			Str("ref", ref).
			Uint64("height", block.Index).
			Str("payload", block.Payload).
			Str("digest", block.Digest).
			Msg("reference located")
	}

	return success
}
