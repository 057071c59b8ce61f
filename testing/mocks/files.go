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

type Files struct {
	UploadFunc   func(id string, password string, name string, data []byte, encrypt bool) (*vault.Receipt, error)
	RetrieveFunc func(id string, password string, ref string) ([]byte, *vault.Transaction, error)
	HistoryFunc  func(id string, password string) ([]vault.Transaction, error)
}

func BaselineFiles(t *testing.T) *Files {
	t.Helper()

	f := Files{
		UploadFunc: func(id string, password string, name string, data []byte, encrypt bool) (*vault.Receipt, error) {
			transaction := GenericTransaction(0)
			receipt := vault.Receipt{
				Content:     transaction.Content,
				Transaction: transaction,
			}
			return &receipt, nil
		},
		RetrieveFunc: func(id string, password string, ref string) ([]byte, *vault.Transaction, error) {
			transaction := GenericTransaction(0)
			return GenericBytes, &transaction, nil
		},
		HistoryFunc: func(id string, password string) ([]vault.Transaction, error) {
			return GenericTransactions(2), nil
		},
	}

	return &f
}

func (f *Files) Upload(id string, password string, name string, data []byte, encrypt bool) (*vault.Receipt, error) {
	return f.UploadFunc(id, password, name, data, encrypt)
}

func (f *Files) Retrieve(id string, password string, ref string) ([]byte, *vault.Transaction, error) {
	return f.RetrieveFunc(id, password, ref)
}

func (f *Files) History(id string, password string) ([]vault.Transaction, error) {
	return f.HistoryFunc(id, password)
}
