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

package envelope_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/cid-vault/service/envelope"
)

func TestEnvelope(t *testing.T) {
	public, private := keyPair(t)
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		sealed, err := envelope.Seal(public, plaintext)
		require.NoError(t, err)
		assert.NotContains(t, string(sealed), string(plaintext))

		opened, err := envelope.Open(private, sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	})

	t.Run("empty plaintext", func(t *testing.T) {
		t.Parallel()

		sealed, err := envelope.Seal(public, nil)
		require.NoError(t, err)

		opened, err := envelope.Open(private, sealed)
		require.NoError(t, err)
		assert.Empty(t, opened)
	})

	t.Run("sealing is randomized", func(t *testing.T) {
		t.Parallel()

		first, err := envelope.Seal(public, plaintext)
		require.NoError(t, err)
		second, err := envelope.Seal(public, plaintext)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("rejects tampered ciphertext", func(t *testing.T) {
		t.Parallel()

		sealed, err := envelope.Seal(public, plaintext)
		require.NoError(t, err)
		sealed[len(sealed)-1] ^= 0xff

		_, err = envelope.Open(private, sealed)
		assert.ErrorIs(t, err, envelope.ErrMalformed)
	})

	t.Run("rejects tampered key", func(t *testing.T) {
		t.Parallel()

		sealed, err := envelope.Seal(public, plaintext)
		require.NoError(t, err)
		sealed[2] ^= 0xff

		_, err = envelope.Open(private, sealed)
		assert.ErrorIs(t, err, envelope.ErrMalformed)
	})

	t.Run("rejects truncated envelopes", func(t *testing.T) {
		t.Parallel()

		sealed, err := envelope.Seal(public, plaintext)
		require.NoError(t, err)

		for _, size := range []int{0, 1, 2, 100} {
			_, err = envelope.Open(private, sealed[:size])
			assert.ErrorIs(t, err, envelope.ErrMalformed)
		}
	})

	t.Run("rejects the wrong key", func(t *testing.T) {
		t.Parallel()

		_, other := keyPair(t)
		sealed, err := envelope.Seal(public, plaintext)
		require.NoError(t, err)

		_, err = envelope.Open(other, sealed)
		assert.ErrorIs(t, err, envelope.ErrMalformed)
	})

	t.Run("rejects invalid keys", func(t *testing.T) {
		t.Parallel()

		_, err := envelope.Seal([]byte("garbage"), plaintext)
		assert.Error(t, err)
		_, err = envelope.Open([]byte("garbage"), []byte("garbage"))
		assert.Error(t, err)
	})
}

func keyPair(t *testing.T) ([]byte, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	return x509.MarshalPKCS1PublicKey(&key.PublicKey), x509.MarshalPKCS1PrivateKey(key)
}
