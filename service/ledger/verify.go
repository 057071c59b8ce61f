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

package ledger

import (
	"github.com/optakt/cid-vault/models/vault"
)

// VerifyChain walks the given blocks once and checks, for each block, that it
// links to the digest of its predecessor (or to the genesis sentinel for the
// first block) and that its digest matches its payload and previous digest.
// It returns a *vault.VerificationError for the first block failing a check.
//
// The transactions of a block are not covered by its digest, so changing them
// is not detected here.
func VerifyChain(blocks []*vault.Block) error {
	previous := vault.GenesisPrevious
	for i, block := range blocks {
		height := uint64(i + 1)
		if block.Previous != previous {
			return &vault.VerificationError{Height: height, Reason: "previous digest mismatch"}
		}
		if vault.Digest(block.Payload, block.Previous) != block.Digest {
			return &vault.VerificationError{Height: height, Reason: "digest mismatch"}
		}
		previous = block.Digest
	}

	return nil
}
