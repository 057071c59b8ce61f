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
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/optakt/cid-vault/models/vault"
)

// Controller serves the JSON API of the vault.
type Controller struct {
	directory vault.Directory
	chain     vault.Chain
	files     vault.Files
	index     vault.Reader
}

// NewController creates a controller on top of the given services. The index
// reader serves lookups of persisted blocks.
func NewController(directory vault.Directory, chain vault.Chain, files vault.Files, index vault.Reader) *Controller {
	c := Controller{
		directory: directory,
		chain:     chain,
		files:     files,
		index:     index,
	}

	return &c
}

// Routes registers the controller's handlers on the given server.
func (c *Controller) Routes(server *echo.Echo) {
	server.POST("/accounts", c.CreateAccount)
	server.GET("/accounts/:id/transactions", c.GetTransactions)
	server.POST("/files", c.UploadFile)
	server.GET("/files/:cid", c.DownloadFile)
	server.GET("/blocks", c.GetBlocks)
	server.POST("/blocks", c.SealBlock)
	server.GET("/blocks/:height", c.GetBlock)
	server.GET("/blocks/find/:ref", c.FindBlock)
	server.GET("/chain", c.GetChain)
}

// CreateAccount registers a new account.
func (c *Controller) CreateAccount(ctx echo.Context) error {

	var req RegisterRequest
	err := ctx.Bind(&req)
	if err != nil {
		return newHTTPError(http.StatusBadRequest, "could not unmarshal request", err)
	}
	err = ctx.Validate(&req)
	if err != nil {
		return newHTTPError(http.StatusBadRequest, "invalid request", err)
	}

	account, err := c.directory.Register(req.FirstName, req.LastName, req.ID, req.Password)
	if err != nil {
		return newHTTPError(statusFor(err), "could not register account", err)
	}

	return ctx.JSON(http.StatusCreated, account)
}

// GetTransactions returns the transaction history of the authenticated
// account. Accounts can only read their own history.
func (c *Controller) GetTransactions(ctx echo.Context) error {

	id, password, err := credentials(ctx)
	if err != nil {
		return err
	}
	if ctx.Param("id") != id {
		return newHTTPError(http.StatusForbidden, "access to foreign history denied", nil)
	}

	transactions, err := c.files.History(id, password)
	if err != nil {
		return newHTTPError(statusFor(err), "could not retrieve history", err)
	}
	if transactions == nil {
		transactions = []vault.Transaction{}
	}

	res := HistoryResponse{
		Account:      id,
		Transactions: transactions,
	}

	return ctx.JSON(http.StatusOK, res)
}

// UploadFile stores the multipart file field of the request on behalf of the
// authenticated account.
func (c *Controller) UploadFile(ctx echo.Context) error {

	id, password, err := credentials(ctx)
	if err != nil {
		return err
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		return newHTTPError(http.StatusBadRequest, "missing file", err)
	}

	encrypt := false
	param := ctx.FormValue("encrypt")
	if param != "" {
		encrypt, err = strconv.ParseBool(param)
		if err != nil {
			return newHTTPError(http.StatusBadRequest, "invalid encryption flag", err)
		}
	}

	file, err := header.Open()
	if err != nil {
		return newHTTPError(http.StatusBadRequest, "could not open file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return newHTTPError(http.StatusBadRequest, "could not read file", err)
	}

	receipt, err := c.files.Upload(id, password, header.Filename, data, encrypt)
	if err != nil {
		return newHTTPError(statusFor(err), "could not upload file", err)
	}

	return ctx.JSON(http.StatusCreated, receipt)
}

// DownloadFile returns the content of a file owned by the authenticated
// account.
func (c *Controller) DownloadFile(ctx echo.Context) error {

	id, password, err := credentials(ctx)
	if err != nil {
		return err
	}

	data, transaction, err := c.files.Retrieve(id, password, ctx.Param("cid"))
	if err != nil {
		return newHTTPError(statusFor(err), "could not retrieve file", err)
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": transaction.Metadata.Name})
	ctx.Response().Header().Set(echo.HeaderContentDisposition, disposition)

	return ctx.Blob(http.StatusOK, echo.MIMEOctetStream, data)
}

// GetBlocks returns the whole chain.
func (c *Controller) GetBlocks(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.chain.Blocks())
}

// GetBlock returns the block at the given height.
func (c *Controller) GetBlock(ctx echo.Context) error {

	height, err := strconv.ParseUint(ctx.Param("height"), 10, 64)
	if err != nil {
		return newHTTPError(http.StatusBadRequest, "invalid height", err)
	}

	block, err := c.chain.Block(height)
	if err != nil {
		return newHTTPError(statusFor(err), "could not retrieve block", err)
	}

	return ctx.JSON(http.StatusOK, block)
}

// FindBlock returns the persisted block identified by the given reference,
// which is either a block digest or the CID of a file recorded in it.
func (c *Controller) FindBlock(ctx echo.Context) error {

	ref := ctx.Param("ref")
	if ref == "" {
		return newHTTPError(http.StatusBadRequest, "missing reference", nil)
	}

	block, err := c.index.Find(ref)
	if err != nil {
		return newHTTPError(statusFor(err), "could not find block", err)
	}

	return ctx.JSON(http.StatusOK, block)
}

// SealBlock seals the pending transactions into a new block with the given
// payload. Any registered account may seal.
func (c *Controller) SealBlock(ctx echo.Context) error {

	id, password, err := credentials(ctx)
	if err != nil {
		return err
	}
	_, err = c.directory.Authenticate(id, password)
	if err != nil {
		return newHTTPError(statusFor(err), "could not authenticate", err)
	}

	var req SealRequest
	err = ctx.Bind(&req)
	if err != nil {
		return newHTTPError(http.StatusBadRequest, "could not unmarshal request", err)
	}
	err = ctx.Validate(&req)
	if err != nil {
		return newHTTPError(http.StatusBadRequest, "invalid request", err)
	}

	block, err := c.chain.Seal(req.Payload)
	if err != nil {
		return newHTTPError(statusFor(err), "could not seal block", err)
	}

	return ctx.JSON(http.StatusCreated, block)
}

// GetChain verifies the chain and reports the first failure, if any.
func (c *Controller) GetChain(ctx echo.Context) error {

	res := ChainResponse{
		Valid:  true,
		Height: c.chain.Length(),
	}

	err := c.chain.Verify()
	var verr *vault.VerificationError
	switch {
	case errors.As(err, &verr):
		res.Valid = false
		res.Failure = &Failure{
			Height: verr.Height,
			Reason: verr.Reason,
		}
	case err != nil:
		return newHTTPError(http.StatusInternalServerError, "could not verify chain", err)
	}

	return ctx.JSON(http.StatusOK, res)
}

func credentials(ctx echo.Context) (string, string, error) {
	id, password, ok := ctx.Request().BasicAuth()
	if !ok {
		ctx.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="vault"`)
		return "", "", newHTTPError(http.StatusUnauthorized, "missing credentials", nil)
	}

	return id, password, nil
}
