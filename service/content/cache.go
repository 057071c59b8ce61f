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

package content

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/ipfs/go-cid"

	"github.com/optakt/cid-vault/models/vault"
)

// Cache is a read-through cache in front of another content store.
type Cache struct {
	store vault.Content
	cache *ristretto.Cache
}

// NewCache wraps the given store with a cache holding up to size bytes.
func NewCache(store vault.Content, size uint64) (*Cache, error) {

	// Ristretto recommends keeping ten times as many counters as items in the
	// cache when full. Assuming an average object size of 1 kilobyte, this is
	// what we get.
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(size) / 1000 * 10,
		MaxCost:     int64(size),
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("could not initialize cache: %w", err)
	}

	c := Cache{
		store: store,
		cache: cache,
	}

	return &c, nil
}

// Put stores the data in the underlying store and caches a private copy of it.
func (c *Cache) Put(data []byte) (cid.Cid, error) {
	id, err := c.store.Put(data)
	if err != nil {
		return cid.Undef, err
	}

	_ = c.cache.Set(id.KeyString(), clone(data), int64(len(data)))

	return id, nil
}

// Get returns the cached data, or loads it from the underlying store. Callers
// always get their own copy, so mutating it never reaches the cache.
func (c *Cache) Get(id cid.Cid) ([]byte, error) {
	cached, ok := c.cache.Get(id.KeyString())
	if ok {
		return clone(cached.([]byte)), nil
	}

	data, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}

	_ = c.cache.Set(id.KeyString(), clone(data), int64(len(data)))

	return data, nil
}

// Has returns whether the data is cached or held by the underlying store.
func (c *Cache) Has(id cid.Cid) bool {
	_, ok := c.cache.Get(id.KeyString())
	if ok {
		return true
	}

	return c.store.Has(id)
}

func clone(data []byte) []byte {
	dup := make([]byte, len(data))
	copy(dup, data)
	return dup
}
