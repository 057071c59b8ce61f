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

package mocks

import (
	"testing"

	"github.com/optakt/cid-vault/models/vault"
)

type Directory struct {
	RegisterFunc     func(first string, last string, id string, password string) (*vault.Account, error)
	AuthenticateFunc func(id string, password string) (*vault.Account, error)
	LookupFunc       func(id string) (*vault.Account, error)
}

func BaselineDirectory(t *testing.T) *Directory {
	t.Helper()

	d := Directory{
		RegisterFunc: func(first string, last string, id string, password string) (*vault.Account, error) {
			return GenericAccount.Copy(), nil
		},
		AuthenticateFunc: func(id string, password string) (*vault.Account, error) {
			return GenericAccount.Copy(), nil
		},
		LookupFunc: func(id string) (*vault.Account, error) {
			return GenericAccount.Copy(), nil
		},
	}

	return &d
}

func (d *Directory) Register(first string, last string, id string, password string) (*vault.Account, error) {
	return d.RegisterFunc(first, last, id, password)
}

func (d *Directory) Authenticate(id string, password string) (*vault.Account, error) {
	return d.AuthenticateFunc(id, password)
}

func (d *Directory) Lookup(id string) (*vault.Account, error) {
	return d.LookupFunc(id)
}
