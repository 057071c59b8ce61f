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

package vault

import (
	"time"
)

// Account is the credential record of a registered user. The account ID is a
// wallet-style string and the primary key of the directory.
type Account struct {
	ID           string    `cbor:"1,keyasint" json:"account_id"`
	FirstName    string    `cbor:"2,keyasint" json:"first_name"`
	LastName     string    `cbor:"3,keyasint" json:"last_name"`
	PasswordHash []byte    `cbor:"4,keyasint" json:"-"`
	PublicKey    []byte    `cbor:"5,keyasint" json:"public_key,omitempty"`
	PrivateKey   []byte    `cbor:"6,keyasint" json:"-"`
	Created      time.Time `cbor:"7,keyasint" json:"created"`
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	dup := *a
	dup.PasswordHash = append([]byte(nil), a.PasswordHash...)
	dup.PublicKey = append([]byte(nil), a.PublicKey...)
	dup.PrivateKey = append([]byte(nil), a.PrivateKey...)
	return &dup
}

// HasKeyPair returns whether a key pair was generated for the account.
func (a *Account) HasKeyPair() bool {
	return len(a.PublicKey) > 0 && len(a.PrivateKey) > 0
}
