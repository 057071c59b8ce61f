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
	"crypto/sha256"
	"encoding/hex"
)

// Digest computes the digest of a block from its payload and the digest of the
// previous block, as the hex-encoded SHA-256 hash of their concatenation.
func Digest(payload string, previous string) string {
	sum := sha256.Sum256([]byte(payload + previous))
	return hex.EncodeToString(sum[:])
}
