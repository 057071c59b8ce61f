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
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrMissingField       = errors.New("missing field")
	ErrInvalidField       = errors.New("invalid field")
	ErrDuplicateAccount   = errors.New("duplicate account")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrChainVerification  = errors.New("chain verification failure")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrContentMismatch    = errors.New("content mismatch")
	ErrNotAppendOnly      = errors.New("not append-only")
	ErrBrokenLink         = errors.New("broken link")
	ErrFileType           = errors.New("file type not allowed")
	ErrNoKeyPair          = errors.New("no key pair")
)

// VerificationError is returned when a chain fails verification. It carries
// the height of the first block that failed.
type VerificationError struct {
	Height uint64 `json:"height"`
	Reason string `json:"reason"`
}

func (v *VerificationError) Error() string {
	return fmt.Sprintf("%v at height %d: %s", ErrChainVerification, v.Height, v.Reason)
}

// Is makes the error match ErrChainVerification.
func (v *VerificationError) Is(target error) bool {
	return target == ErrChainVerification
}
