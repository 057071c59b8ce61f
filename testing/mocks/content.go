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

	"github.com/ipfs/go-cid"
)

type Content struct {
	PutFunc func(data []byte) (cid.Cid, error)
	GetFunc func(id cid.Cid) ([]byte, error)
	HasFunc func(id cid.Cid) bool
}

func BaselineContent(t *testing.T) *Content {
	t.Helper()

	c := Content{
		PutFunc: func(data []byte) (cid.Cid, error) {
			return GenericCID(0), nil
		},
		GetFunc: func(id cid.Cid) ([]byte, error) {
			return GenericBytes, nil
		},
		HasFunc: func(id cid.Cid) bool {
			return true
		},
	}

	return &c
}

func (c *Content) Put(data []byte) (cid.Cid, error) {
	return c.PutFunc(data)
}

func (c *Content) Get(id cid.Cid) ([]byte, error) {
	return c.GetFunc(id)
}

func (c *Content) Has(id cid.Cid) bool {
	return c.HasFunc(id)
}
