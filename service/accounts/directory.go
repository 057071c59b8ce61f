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

package accounts

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/optakt/cid-vault/models/vault"
)

// bcrypt only looks at the first 72 bytes of a password.
const maxPasswordLength = 72

// Directory maps account IDs to credential records. Records are never
// updated once registered.
type Directory struct {
	log zerolog.Logger
	cfg Config

	mutex    sync.RWMutex
	accounts map[string]*vault.Account
}

// New creates a new account directory. If an index is configured, the
// accounts it holds are loaded before the directory is returned.
func New(log zerolog.Logger, options ...func(*Config)) (*Directory, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	d := Directory{
		log:      log.With().Str("component", "accounts").Logger(),
		cfg:      cfg,
		accounts: make(map[string]*vault.Account),
	}

	if cfg.Reader == nil {
		return &d, nil
	}

	accounts, err := cfg.Reader.Accounts()
	if err != nil {
		return nil, fmt.Errorf("could not load accounts: %w", err)
	}
	for _, account := range accounts {
		d.accounts[account.ID] = account.Copy()
	}

	d.log.Info().Int("accounts", len(d.accounts)).Msg("accounts loaded")

	return &d, nil
}

// Register creates a new account. It fails with vault.ErrDuplicateAccount if
// the ID is already taken, in which case the existing record is left as is.
func (d *Directory) Register(first string, last string, id string, password string) (*vault.Account, error) {

	switch {
	case id == "":
		return nil, fmt.Errorf("account ID is required: %w", vault.ErrMissingField)
	case password == "":
		return nil, fmt.Errorf("password is required: %w", vault.ErrMissingField)
	case first == "" || last == "":
		return nil, fmt.Errorf("first and last name are required: %w", vault.ErrMissingField)
	case len(password) > maxPasswordLength:
		return nil, fmt.Errorf("password is longer than %d bytes: %w", maxPasswordLength, vault.ErrInvalidField)
	}

	if d.exists(id) {
		return nil, fmt.Errorf("could not register account (id: %s): %w", id, vault.ErrDuplicateAccount)
	}

	// Hashing and key generation run outside of the write lock.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cfg.Cost)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	account := vault.Account{
		ID:           id,
		FirstName:    first,
		LastName:     last,
		PasswordHash: hash,
		Created:      d.cfg.Clock(),
	}

	if d.cfg.Bits > 0 {
		account.PublicKey, account.PrivateKey, err = generateKeyPair(d.cfg.Bits)
		if err != nil {
			return nil, fmt.Errorf("could not generate key pair: %w", err)
		}
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	_, ok := d.accounts[id]
	if ok {
		return nil, fmt.Errorf("could not register account (id: %s): %w", id, vault.ErrDuplicateAccount)
	}

	if d.cfg.Writer != nil {
		err = d.cfg.Writer.Account(account.Copy())
		if err != nil {
			return nil, fmt.Errorf("could not persist account (id: %s): %w", id, err)
		}
	}

	d.accounts[id] = &account

	d.log.Info().Str("account", id).Bool("keys", account.HasKeyPair()).Msg("account registered")

	dup := account.Copy()
	dup.PasswordHash = nil

	return dup, nil
}

// Authenticate checks the password of the given account and returns a copy
// of the account without its password hash.
func (d *Directory) Authenticate(id string, password string) (*vault.Account, error) {

	d.mutex.RLock()
	account, ok := d.accounts[id]
	d.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown account (id: %s): %w", id, vault.ErrAccountNotFound)
	}
	if len(password) > maxPasswordLength {
		return nil, fmt.Errorf("wrong password (id: %s): %w", id, vault.ErrInvalidCredentials)
	}

	// Stored accounts are never mutated, so comparing without the lock is safe.
	err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, fmt.Errorf("wrong password (id: %s): %w", id, vault.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("could not compare password hash: %w", err)
	}

	dup := account.Copy()
	dup.PasswordHash = nil

	return dup, nil
}

// Lookup returns the public part of an account.
func (d *Directory) Lookup(id string) (*vault.Account, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	account, ok := d.accounts[id]
	if !ok {
		return nil, fmt.Errorf("unknown account (id: %s): %w", id, vault.ErrAccountNotFound)
	}

	dup := account.Copy()
	dup.PasswordHash = nil
	dup.PrivateKey = nil

	return dup, nil
}

func (d *Directory) exists(id string) bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	_, ok := d.accounts[id]
	return ok
}

// generateKeyPair returns a PKCS #1 DER encoded RSA key pair.
func generateKeyPair(bits int) ([]byte, []byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, err
	}

	public := x509.MarshalPKCS1PublicKey(&key.PublicKey)
	private := x509.MarshalPKCS1PrivateKey(key)

	return public, private, nil
}
