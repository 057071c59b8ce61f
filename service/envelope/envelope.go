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

package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrMalformed is returned when a sealed envelope can not be decoded or
// authenticated.
var ErrMalformed = errors.New("malformed envelope")

// Seal encrypts the plaintext for the owner of the given PKCS #1 DER encoded
// RSA public key. A random data key encrypts the plaintext with
// XChaCha20-Poly1305 and is itself wrapped with RSA-OAEP.
//
// The envelope is laid out as the big-endian length of the wrapped key on two
// bytes, the wrapped key, the nonce and finally the ciphertext.
func Seal(public []byte, plaintext []byte) ([]byte, error) {

	key, err := x509.ParsePKCS1PublicKey(public)
	if err != nil {
		return nil, fmt.Errorf("could not parse public key: %w", err)
	}

	secret := make([]byte, chacha20poly1305.KeySize)
	_, err = rand.Read(secret)
	if err != nil {
		return nil, fmt.Errorf("could not generate data key: %w", err)
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, key, secret, nil)
	if err != nil {
		return nil, fmt.Errorf("could not wrap data key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(secret)
	if err != nil {
		return nil, fmt.Errorf("could not initialize cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	_, err = rand.Read(nonce)
	if err != nil {
		return nil, fmt.Errorf("could not generate nonce: %w", err)
	}

	sealed := make([]byte, 2, 2+len(wrapped)+len(nonce)+len(plaintext)+aead.Overhead())
	binary.BigEndian.PutUint16(sealed, uint16(len(wrapped)))
	sealed = append(sealed, wrapped...)
	sealed = append(sealed, nonce...)
	sealed = aead.Seal(sealed, nonce, plaintext, nil)

	return sealed, nil
}

// Open decrypts an envelope created by Seal with the matching PKCS #1 DER
// encoded RSA private key.
func Open(private []byte, sealed []byte) ([]byte, error) {

	key, err := x509.ParsePKCS1PrivateKey(private)
	if err != nil {
		return nil, fmt.Errorf("could not parse private key: %w", err)
	}

	if len(sealed) < 2 {
		return nil, fmt.Errorf("missing key length: %w", ErrMalformed)
	}
	size := int(binary.BigEndian.Uint16(sealed))
	sealed = sealed[2:]

	if len(sealed) < size+chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("envelope too short (length: %d): %w", len(sealed), ErrMalformed)
	}
	wrapped := sealed[:size]
	nonce := sealed[size : size+chacha20poly1305.NonceSizeX]
	ciphertext := sealed[size+chacha20poly1305.NonceSizeX:]

	secret, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, key, wrapped, nil)
	if err != nil {
		return nil, fmt.Errorf("could not unwrap data key: %s: %w", err, ErrMalformed)
	}

	aead, err := chacha20poly1305.NewX(secret)
	if err != nil {
		return nil, fmt.Errorf("could not initialize cipher: %s: %w", err, ErrMalformed)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("could not decrypt content: %s: %w", err, ErrMalformed)
	}

	return plaintext, nil
}
