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

package files

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/optakt/cid-vault/models/vault"
	"github.com/optakt/cid-vault/service/content"
	"github.com/optakt/cid-vault/service/envelope"
)

// Service ties together the account directory, the content store and the
// ledger to upload and retrieve files on behalf of authenticated accounts.
type Service struct {
	log        zerolog.Logger
	cfg        Config
	directory  vault.Directory
	chain      vault.Chain
	store      vault.Content
	extensions map[string]struct{}
}

// New creates a new files service.
func New(log zerolog.Logger, directory vault.Directory, chain vault.Chain, store vault.Content, options ...func(*Config)) *Service {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	extensions := make(map[string]struct{}, len(cfg.Extensions))
	for _, extension := range cfg.Extensions {
		extensions[strings.ToLower(extension)] = struct{}{}
	}

	s := Service{
		log:        log.With().Str("component", "files").Logger(),
		cfg:        cfg,
		directory:  directory,
		chain:      chain,
		store:      store,
		extensions: extensions,
	}

	return &s
}

// Upload stores a file for the given account and records a transaction for it
// on the ledger. If encryption is requested, the file is sealed for the
// account's public key before it leaves the service.
func (s *Service) Upload(id string, password string, name string, data []byte, encrypt bool) (*vault.Receipt, error) {

	account, err := s.directory.Authenticate(id, password)
	if err != nil {
		return nil, fmt.Errorf("could not authenticate: %w", err)
	}

	if !s.allowed(name) {
		return nil, fmt.Errorf("file type not allowed (name: %s): %w", name, vault.ErrFileType)
	}

	stored := data
	if encrypt {
		if len(account.PublicKey) == 0 {
			return nil, fmt.Errorf("could not encrypt file (account: %s): %w", account.ID, vault.ErrNoKeyPair)
		}
		stored, err = envelope.Seal(account.PublicKey, data)
		if err != nil {
			return nil, fmt.Errorf("could not encrypt file: %w", err)
		}
	}

	ref, err := s.store.Put(stored)
	if err != nil {
		return nil, fmt.Errorf("could not store file: %w", err)
	}

	meta := vault.Metadata{
		Name:      filepath.Base(name),
		Size:      uint64(len(data)),
		Encrypted: encrypt,
	}
	receipt := vault.Receipt{
		Content: ref.String(),
	}

	// With immediate sealing, the transaction goes into a block whose payload
	// is its own content reference, so submission and seal happen in one step.
	switch {
	case s.cfg.Immediate:
		transaction, block, err := s.chain.Commit(account.ID, ref.String(), meta, ref.String())
		if block == nil {
			return nil, fmt.Errorf("could not commit transaction: %w", err)
		}
		if err != nil {
			s.log.Warn().Err(err).Uint64("index", block.Index).Msg("sealed block not persisted yet")
		}
		receipt.Transaction = transaction
		receipt.Block = block

	default:
		transaction, err := s.chain.Submit(account.ID, ref.String(), meta)
		if err != nil {
			return nil, fmt.Errorf("could not submit transaction: %w", err)
		}
		receipt.Transaction = transaction
	}

	s.log.Info().
		Str("account", account.ID).
		Str("cid", ref.String()).
		Bool("encrypted", encrypt).
		Bool("sealed", receipt.Block != nil).
		Msg("file uploaded")

	return &receipt, nil
}

// Retrieve returns a file previously uploaded by the given account, along
// with the transaction that recorded it.
func (s *Service) Retrieve(id string, password string, ref string) ([]byte, *vault.Transaction, error) {

	account, err := s.directory.Authenticate(id, password)
	if err != nil {
		return nil, nil, fmt.Errorf("could not authenticate: %w", err)
	}

	transaction, ok := s.find(account.ID, ref)
	if !ok {
		return nil, nil, fmt.Errorf("no file for account (account: %s, cid: %s): %w", account.ID, ref, vault.ErrNotFound)
	}

	key, err := content.Parse(ref)
	if err != nil {
		return nil, nil, fmt.Errorf("could not parse content identifier: %w", err)
	}

	data, err := s.store.Get(key)
	if err != nil {
		return nil, nil, fmt.Errorf("could not fetch file: %w", err)
	}

	if !transaction.Metadata.Encrypted {
		return data, &transaction, nil
	}

	if len(account.PrivateKey) == 0 {
		return nil, nil, fmt.Errorf("could not decrypt file (account: %s): %w", account.ID, vault.ErrNoKeyPair)
	}
	data, err = envelope.Open(account.PrivateKey, data)
	if err != nil {
		return nil, nil, fmt.Errorf("could not decrypt file: %w", err)
	}

	return data, &transaction, nil
}

// History returns the transactions of the given account, sealed ones first.
func (s *Service) History(id string, password string) ([]vault.Transaction, error) {

	account, err := s.directory.Authenticate(id, password)
	if err != nil {
		return nil, fmt.Errorf("could not authenticate: %w", err)
	}

	return s.chain.Transactions(account.ID), nil
}

func (s *Service) allowed(name string) bool {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := s.extensions[extension]
	return ok
}

func (s *Service) find(account string, ref string) (vault.Transaction, bool) {
	for _, transaction := range s.chain.Transactions(account) {
		if transaction.Content == ref {
			return transaction, true
		}
	}
	return vault.Transaction{}, false
}
