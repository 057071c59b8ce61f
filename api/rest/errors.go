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
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/optakt/cid-vault/models/vault"
	"github.com/optakt/cid-vault/service/envelope"
)

type httpError struct {
	Message string `json:"message"`
	Err     string `json:"error,omitempty"`
}

func (e httpError) Error() string {
	if e.Err == "" {
		return e.Message
	}
	return fmt.Sprintf("%v (err: %v)", e.Message, e.Err)
}

func newHTTPError(code int, message string, err error) *echo.HTTPError {
	e := httpError{
		Message: message,
	}
	if err != nil {
		e.Err = err.Error()
	}

	return echo.NewHTTPError(code, e)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, vault.ErrMissingField), errors.Is(err, vault.ErrInvalidField):
		return http.StatusBadRequest
	case errors.Is(err, vault.ErrInvalidCredentials), errors.Is(err, vault.ErrAccountNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, vault.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, vault.ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, vault.ErrFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, vault.ErrNoKeyPair):
		return http.StatusUnprocessableEntity
	case errors.Is(err, vault.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, vault.ErrContentMismatch), errors.Is(err, envelope.ErrMalformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
