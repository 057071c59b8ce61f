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
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/ipfs/go-cid"

	"github.com/optakt/cid-vault/models/vault"
)

// Bucket is a content store backed by a Google Cloud Storage bucket, where
// each object is named after its content identifier.
type Bucket struct {
	bucket  *storage.BucketHandle
	timeout time.Duration
}

// NewBucket creates a content store on top of the given bucket handle. Each
// operation is bounded by the given timeout.
func NewBucket(bucket *storage.BucketHandle, timeout time.Duration) *Bucket {
	b := Bucket{
		bucket:  bucket,
		timeout: timeout,
	}

	return &b
}

// Put uploads the data unless an object with the same identifier exists.
func (b *Bucket) Put(data []byte) (cid.Cid, error) {
	id, err := Reference(data)
	if err != nil {
		return cid.Undef, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	object := b.bucket.Object(id.String())
	_, err = object.Attrs(ctx)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, storage.ErrObjectNotExist) {
		return cid.Undef, fmt.Errorf("could not check object: %s: %w", err, vault.ErrStorageUnavailable)
	}

	upload := object.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	upload.ContentType = "application/octet-stream"
	_, err = upload.Write(data)
	if err != nil {
		_ = upload.Close()
		return cid.Undef, fmt.Errorf("could not upload object: %s: %w", err, vault.ErrStorageUnavailable)
	}
	err = upload.Close()
	if err != nil {
		return cid.Undef, fmt.Errorf("could not finalize upload: %s: %w", err, vault.ErrStorageUnavailable)
	}

	return id, nil
}

// Get downloads the object for the given identifier and verifies it.
func (b *Bucket) Get(id cid.Cid) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	download, err := b.bucket.Object(id.String()).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("unknown content (cid: %s): %w", id, vault.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not create object reader: %s: %w", err, vault.ErrStorageUnavailable)
	}
	defer download.Close()

	data, err := io.ReadAll(download)
	if err != nil {
		return nil, fmt.Errorf("could not download object: %s: %w", err, vault.ErrStorageUnavailable)
	}

	err = verify(id, data)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// Has returns whether the bucket holds an object for the given identifier.
func (b *Bucket) Has(id cid.Cid) bool {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	_, err := b.bucket.Object(id.String()).Attrs(ctx)
	return err == nil
}
