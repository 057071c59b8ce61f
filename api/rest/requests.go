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

package rest

import (
	"github.com/go-playground/validator/v10"

	"github.com/optakt/cid-vault/models/vault"
)

// RegisterRequest describes the input data needed to register an account.
type RegisterRequest struct {
	ID        string `json:"account_id" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// SealRequest describes the input data needed to seal a block.
type SealRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// ChainResponse describes the result of a chain verification.
type ChainResponse struct {
	Valid   bool     `json:"valid"`
	Height  uint64   `json:"height"`
	Failure *Failure `json:"failure,omitempty"`
}

// Failure describes the first block that failed verification.
type Failure struct {
	Height uint64 `json:"height"`
	Reason string `json:"reason"`
}

// HistoryResponse lists the transactions of an account.
type HistoryResponse struct {
	Account      string              `json:"account_id"`
	Transactions []vault.Transaction `json:"transactions"`
}

// Validator validates request bodies for echo.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a request validator.
func NewValidator() *Validator {
	v := Validator{
		validate: validator.New(),
	}

	return &v
}

// Validate validates the given request against its struct tags.
func (v *Validator) Validate(request interface{}) error {
	return v.validate.Struct(request)
}
