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
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/optakt/cid-vault/models/vault"
)

// DefaultConfig is the default configuration for the account directory.
var DefaultConfig = Config{
	Cost:  bcrypt.DefaultCost,
	Bits:  0,
	Clock: func() time.Time { return time.Now().UTC() },
}

// Config contains the configuration options for the account directory.
type Config struct {
	Cost   int
	Bits   int
	Clock  func() time.Time
	Reader vault.Reader
	Writer vault.Writer
}

// WithCost sets the bcrypt cost used to hash passwords.
func WithCost(cost int) func(*Config) {
	return func(cfg *Config) {
		cfg.Cost = cost
	}
}

// WithKeyPairs makes the directory generate an RSA key pair of the given size
// for every registered account. A size of zero disables key generation.
func WithKeyPairs(bits int) func(*Config) {
	return func(cfg *Config) {
		cfg.Bits = bits
	}
}

// WithClock sets the clock used to timestamp new accounts.
func WithClock(clock func() time.Time) func(*Config) {
	return func(cfg *Config) {
		cfg.Clock = clock
	}
}

// WithIndex makes the directory load its accounts from the given reader on
// startup and persist new registrations with the given writer.
func WithIndex(read vault.Reader, write vault.Writer) func(*Config) {
	return func(cfg *Config) {
		cfg.Reader = read
		cfg.Writer = write
	}
}
