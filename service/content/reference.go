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

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/optakt/cid-vault/models/vault"
)

// Reference computes the content identifier of the given data without storing
// it. Identifiers are CIDv1 with the raw codec and a SHA2-256 multihash.
func Reference(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("could not hash content: %w", err)
	}

	return cid.NewCidV1(cid.Raw, sum), nil
}

// Parse decodes a content identifier from its string form.
func Parse(ref string) (cid.Cid, error) {
	id, err := cid.Decode(ref)
	if err != nil {
		return cid.Undef, fmt.Errorf("could not decode content identifier (%s): %w", ref, err)
	}

	return id, nil
}

func verify(id cid.Cid, data []byte) error {
	got, err := id.Prefix().Sum(data)
	if err != nil {
		return fmt.Errorf("could not hash content: %w", err)
	}
	if !got.Equals(id) {
		return fmt.Errorf("content does not match identifier (want: %s, have: %s): %w", id, got, vault.ErrContentMismatch)
	}

	return nil
}
