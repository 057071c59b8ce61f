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

package accounts_test

import (
	"crypto/x509"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/optakt/cid-vault/models/vault"
	"github.com/optakt/cid-vault/service/accounts"
	"github.com/optakt/cid-vault/service/index"
	"github.com/optakt/cid-vault/testing/helpers"
	"github.com/optakt/cid-vault/testing/mocks"
)

func TestDirectory_Register(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		dir := setupDirectory(t)

		account, err := dir.Register("Alice", "Liddell", "alice", "secret")
		require.NoError(t, err)

		assert.Equal(t, "alice", account.ID)
		assert.Equal(t, "Alice", account.FirstName)
		assert.Equal(t, "Liddell", account.LastName)
		assert.Equal(t, mocks.GenericTime, account.Created)
		assert.Empty(t, account.PasswordHash)
		assert.False(t, account.HasKeyPair())
	})

	t.Run("duplicate account leaves record untouched", func(t *testing.T) {
		t.Parallel()

		dir := setupDirectory(t)

		_, err := dir.Register("Alice", "Liddell", "alice", "secret")
		require.NoError(t, err)

		_, err = dir.Register("Mallory", "Evil", "alice", "other")
		assert.ErrorIs(t, err, vault.ErrDuplicateAccount)

		account, err := dir.Authenticate("alice", "secret")
		require.NoError(t, err)
		assert.Equal(t, "Alice", account.FirstName)

		_, err = dir.Authenticate("alice", "other")
		assert.ErrorIs(t, err, vault.ErrInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		dir := setupDirectory(t)

		_, err := dir.Register("Alice", "Liddell", "", "secret")
		assert.ErrorIs(t, err, vault.ErrMissingField)
		_, err = dir.Register("Alice", "Liddell", "alice", "")
		assert.ErrorIs(t, err, vault.ErrMissingField)
		_, err = dir.Register("", "Liddell", "alice", "secret")
		assert.ErrorIs(t, err, vault.ErrMissingField)

		_, err = dir.Lookup("alice")
		assert.ErrorIs(t, err, vault.ErrAccountNotFound)
	})

	t.Run("generates key pairs", func(t *testing.T) {
		t.Parallel()

		dir, err := accounts.New(mocks.NoopLogger, accounts.WithCost(bcrypt.MinCost), accounts.WithKeyPairs(1024))
		require.NoError(t, err)

		_, err = dir.Register("Alice", "Liddell", "alice", "secret")
		require.NoError(t, err)

		account, err := dir.Authenticate("alice", "secret")
		require.NoError(t, err)
		require.True(t, account.HasKeyPair())

		public, err := x509.ParsePKCS1PublicKey(account.PublicKey)
		require.NoError(t, err)
		private, err := x509.ParsePKCS1PrivateKey(account.PrivateKey)
		require.NoError(t, err)
		assert.Equal(t, 1024, public.N.BitLen())
		assert.True(t, private.PublicKey.Equal(public))
	})

	t.Run("persistence failure does not register", func(t *testing.T) {
		t.Parallel()

		writer := mocks.BaselineWriter(t)
		writer.AccountFunc = func(*vault.Account) error {
			return mocks.GenericError
		}

		dir, err := accounts.New(mocks.NoopLogger,
			accounts.WithCost(bcrypt.MinCost),
			accounts.WithIndex(mocks.BaselineReader(t), writer),
		)
		require.NoError(t, err)

		_, err = dir.Register("Alice", "Liddell", "alice", "secret")
		assert.ErrorIs(t, err, mocks.GenericError)

		_, err = dir.Lookup("alice")
		assert.ErrorIs(t, err, vault.ErrAccountNotFound)
	})

	t.Run("concurrent registrations of the same ID", func(t *testing.T) {
		t.Parallel()

		dir := setupDirectory(t)

		var (
			wg      sync.WaitGroup
			mutex   sync.Mutex
			success int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := dir.Register("Alice", "Liddell", "alice", fmt.Sprintf("secret-%d", i))
				if err == nil {
					mutex.Lock()
					success++
					mutex.Unlock()
					return
				}
				assert.ErrorIs(t, err, vault.ErrDuplicateAccount)
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, success)
	})
}

func TestDirectory_Authenticate(t *testing.T) {
	dir := setupDirectory(t)

	_, err := dir.Register("Alice", "Liddell", "alice", "secret")
	require.NoError(t, err)

	long := strings.Repeat("x", 72)
	_, err = dir.Register("Carol", "Long", "carol", long)
	require.NoError(t, err)

	tests := []struct {
		name     string
		id       string
		password string
		checkErr assert.ErrorAssertionFunc
	}{
		{
			name:     "nominal case",
			id:       "alice",
			password: "secret",
			checkErr: assert.NoError,
		},
		{
			name:     "wrong password",
			id:       "alice",
			password: "wrong",
			checkErr: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, vault.ErrInvalidCredentials)
			},
		},
		{
			name:     "password at the length limit",
			id:       "carol",
			password: long,
			checkErr: assert.NoError,
		},
		{
			name:     "password sharing the first 72 bytes",
			id:       "carol",
			password: long + "y",
			checkErr: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, vault.ErrInvalidCredentials)
			},
		},
		{
			name:     "unknown account",
			id:       "bob",
			password: "secret",
			checkErr: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, vault.ErrAccountNotFound)
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			account, err := dir.Authenticate(test.id, test.password)
			test.checkErr(t, err)
			if err == nil {
				assert.Equal(t, test.id, account.ID)
				assert.Empty(t, account.PasswordHash)
			}
		})
	}
}

func TestDirectory_RegisterLongPassword(t *testing.T) {
	dir := setupDirectory(t)

	_, err := dir.Register("Alice", "Liddell", "alice", strings.Repeat("x", 73))
	assert.ErrorIs(t, err, vault.ErrInvalidField)

	_, err = dir.Lookup("alice")
	assert.ErrorIs(t, err, vault.ErrAccountNotFound)
}

func TestDirectory_Lookup(t *testing.T) {
	dir, err := accounts.New(mocks.NoopLogger, accounts.WithCost(bcrypt.MinCost), accounts.WithKeyPairs(1024))
	require.NoError(t, err)

	_, err = dir.Register("Alice", "Liddell", "alice", "secret")
	require.NoError(t, err)

	account, err := dir.Lookup("alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", account.ID)
	assert.NotEmpty(t, account.PublicKey)
	assert.Empty(t, account.PrivateKey)
	assert.Empty(t, account.PasswordHash)
}

func TestDirectory_Restore(t *testing.T) {
	db := helpers.InMemoryDB(t)
	defer db.Close()

	lib := helpers.Library(t)
	reader := index.NewReader(db, lib)
	writer := index.NewWriter(db, lib)

	dir, err := accounts.New(mocks.NoopLogger, accounts.WithCost(bcrypt.MinCost), accounts.WithIndex(reader, writer))
	require.NoError(t, err)

	_, err = dir.Register("Alice", "Liddell", "alice", "secret")
	require.NoError(t, err)
	_, err = dir.Register("Bob", "Builder", "bob", "hunter2")
	require.NoError(t, err)

	restored, err := accounts.New(mocks.NoopLogger, accounts.WithCost(bcrypt.MinCost), accounts.WithIndex(reader, writer))
	require.NoError(t, err)

	_, err = restored.Authenticate("alice", "secret")
	assert.NoError(t, err)
	_, err = restored.Authenticate("bob", "hunter2")
	assert.NoError(t, err)

	_, err = restored.Register("Alice", "Other", "alice", "secret")
	assert.ErrorIs(t, err, vault.ErrDuplicateAccount)
}

func TestNew_LoadFailure(t *testing.T) {
	reader := mocks.BaselineReader(t)
	reader.AccountsFunc = func() ([]*vault.Account, error) {
		return nil, mocks.GenericError
	}

	_, err := accounts.New(mocks.NoopLogger, accounts.WithIndex(reader, mocks.BaselineWriter(t)))
	assert.ErrorIs(t, err, mocks.GenericError)
}

func setupDirectory(t *testing.T) *accounts.Directory {
	t.Helper()

	dir, err := accounts.New(mocks.NoopLogger,
		accounts.WithCost(bcrypt.MinCost),
		accounts.WithClock(func() time.Time { return mocks.GenericTime }),
	)
	require.NoError(t, err)

	return dir
}
