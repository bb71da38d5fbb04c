/*
 * Copyright 2024 Precog, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package precog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"golang.org/x/text/encoding/unicode"
)

// ingestAPI defines interfaces under /ingest/v1.
type ingestAPI interface {
	// AppendRaw appends pre-encoded content to a storage path.
	AppendRaw(ctx context.Context, path string, format AppendFormat, content []byte, opts *AppendOptions) (*AppendResult, error)
	// AppendStream appends content read from a stream to a storage path.
	AppendStream(ctx context.Context, path string, format AppendFormat, content io.Reader, contentLength int64, opts *AppendOptions) (*AppendResult, error)
	// AppendFile appends the contents of a file to a storage path.
	AppendFile(ctx context.Context, path string, format AppendFormat, filePath string, opts *AppendOptions) (*AppendResult, error)
	// UploadFile replaces the data at a storage path with the contents of a file.
	UploadFile(ctx context.Context, path string, format AppendFormat, filePath string, opts *AppendOptions) (*AppendResult, error)
	// Delete deletes all data at a storage path.
	Delete(ctx context.Context, path string) error
}

var _ ingestAPI = (*Client)(nil)

// AppendOptions carries optional parameters for append operations. A nil
// *AppendOptions is valid and means defaults.
type AppendOptions struct {
	// OwnerAccountID identifies the owner of the target path. It is only
	// needed when the API key does not resolve to exactly one account.
	OwnerAccountID string
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// AppendRaw appends pre-encoded content to the given storage path.
//
// The append is a synchronous batch with receipt: the server responds after
// ingestion counts are known, and the result reports per-record failures.
func (c *Client) AppendRaw(ctx context.Context, path string, format AppendFormat, content []byte, opts *AppendOptions) (*AppendResult, error) {
	if len(content) == 0 {
		return nil, &ArgumentError{Name: "content", Reason: "must not be empty"}
	}

	u, err := c.appendURL(path, format, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Post(ctx, u, format.ContentType(), content)
	if err != nil {
		return nil, err
	}
	return readAppendResult(resp)
}

// AppendStream appends content read from a stream to the given storage
// path. A positive contentLength declares the exact body length upfront;
// otherwise the content is sent with chunked transfer encoding.
func (c *Client) AppendStream(ctx context.Context, path string, format AppendFormat, content io.Reader, contentLength int64, opts *AppendOptions) (*AppendResult, error) {
	if content == nil {
		return nil, &ArgumentError{Name: "content", Reason: "must not be nil"}
	}

	u, err := c.appendURL(path, format, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.PostStream(ctx, u, format.ContentType(), content, contentLength)
	if err != nil {
		return nil, err
	}
	return readAppendResult(resp)
}

// AppendFile appends the contents of the named file to the given storage
// path. The file must be non-empty UTF-8 text; a leading byte-order mark is
// stripped before transmission.
func (c *Client) AppendFile(ctx context.Context, path string, format AppendFormat, filePath string, opts *AppendOptions) (*AppendResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(f)

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()

	if size >= int64(len(utf8BOM)) {
		var prefix [3]byte
		if _, err := io.ReadFull(f, prefix[:]); err != nil {
			return nil, err
		}
		if bytes.Equal(prefix[:], utf8BOM) {
			size -= int64(len(utf8BOM))
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}
	if size == 0 {
		return nil, &ArgumentError{Name: "filePath", Reason: fmt.Sprintf("file %q is empty", filePath)}
	}

	content := unicode.UTF8BOM.NewDecoder().Reader(f)
	return c.AppendStream(ctx, path, format, content, size, opts)
}

// UploadFile replaces the data at the given storage path with the contents
// of the named file: it deletes all existing data at the path, then appends
// the file.
//
// The two steps are not atomic. If the append fails after the delete
// succeeded, the path is left empty.
func (c *Client) UploadFile(ctx context.Context, path string, format AppendFormat, filePath string, opts *AppendOptions) (*AppendResult, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, &ArgumentError{Name: "filePath", Reason: fmt.Sprintf("file %q is empty", filePath)}
	}

	if err := c.Delete(ctx, path); err != nil {
		return nil, err
	}
	return c.AppendFile(ctx, path, format, filePath, opts)
}

// Append serializes a single record to JSON and appends it to the given
// storage path.
func Append[T any](ctx context.Context, c *Client, path string, record T, opts *AppendOptions) (*AppendResult, error) {
	content, err := json.Marshal(record)
	if err != nil {
		return nil, &ArgumentError{Name: "record", Reason: err.Error()}
	}
	return c.AppendRaw(ctx, path, JSONFormat, content, opts)
}

// AppendAll serializes each record to JSON, joins them with newlines, and
// appends them to the given storage path.
func AppendAll[T any](ctx context.Context, c *Client, path string, records []T, opts *AppendOptions) (*AppendResult, error) {
	if len(records) == 0 {
		return nil, &ArgumentError{Name: "records", Reason: "must not be empty"}
	}

	var buf bytes.Buffer
	for i, record := range records {
		content, err := json.Marshal(record)
		if err != nil {
			return nil, &ArgumentError{Name: "records", Reason: fmt.Sprintf("record %d: %v", i, err)}
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(content)
	}
	return c.AppendRaw(ctx, path, JSONFormat, buf.Bytes(), opts)
}

// Delete deletes all data at the given storage path.
//
// Deletion is eventually consistent: the server may acknowledge before the
// effect is visible to subsequent queries.
func (c *Client) Delete(ctx context.Context, path string) error {
	cp, err := canonicalPath(path)
	if err != nil {
		return err
	}

	u, err := c.ingestURL(cp)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("apiKey", c.config.APIKey)
	u.RawQuery = q.Encode()

	resp, err := c.http.Delete(ctx, u)
	if err != nil {
		return err
	}
	defer sneakyBodyClose(resp.Body)
	return checkStatusCodeOK(resp)
}

func (c *Client) appendURL(path string, format AppendFormat, opts *AppendOptions) (*url.URL, error) {
	cp, err := canonicalPath(path)
	if err != nil {
		return nil, err
	}

	u, err := c.ingestURL(cp)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("apiKey", c.config.APIKey)
	q.Set("mode", "batch")
	q.Set("receipt", "true")
	if opts != nil && opts.OwnerAccountID != "" {
		q.Set("ownerAccountId", opts.OwnerAccountID)
	}
	// Format parameters are appended verbatim: the server reads the
	// delimiter, quote, and escape characters literally.
	u.RawQuery = q.Encode() + format.QueryParameters()
	return u, nil
}

func readAppendResult(resp *http.Response) (*AppendResult, error) {
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return decodeAppendResult(data)
}
