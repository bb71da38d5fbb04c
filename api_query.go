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
	"context"
	"encoding/json"
	"io"
	"strconv"
)

// SortOrder is the direction applied to the sort fields of a query.
type SortOrder string

const (
	// SortAscending sorts the result in ascending order.
	SortAscending SortOrder = "asc"
	// SortDescending sorts the result in descending order.
	SortDescending SortOrder = "desc"
)

// QueryOptions carries optional paging and sorting parameters for a
// synchronous query. A nil *QueryOptions is valid and means defaults.
type QueryOptions struct {
	// Limit caps the number of results. Zero means unlimited.
	Limit int
	// Skip skips the first results.
	Skip int
	// SortFields lists dotted field paths to sort on, in order of
	// precedence.
	SortFields []string
	// SortOrder is the direction for SortFields. Defaults to ascending.
	SortOrder SortOrder
}

func (o *QueryOptions) validate() error {
	if o == nil {
		return nil
	}
	if o.Limit < 0 {
		return &ArgumentError{Name: "limit", Reason: "must not be negative"}
	}
	if o.Skip < 0 {
		return &ArgumentError{Name: "skip", Reason: "must not be negative"}
	}
	return nil
}

// QueryRaw evaluates a query against the given path and returns the
// undecoded response body. This is useful for callers with their own
// deserialization.
//
// The query string is opaque to the client and passed to the server
// unmodified.
func (c *Client) QueryRaw(ctx context.Context, path, query string, opts *QueryOptions) (string, error) {
	cp, err := canonicalPath(path)
	if err != nil {
		return "", err
	}
	if err := opts.validate(); err != nil {
		return "", err
	}

	u, err := c.analyticsURL(cp)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("apiKey", c.config.APIKey)
	q.Set("q", query)
	q.Set("format", "detailed")
	if opts != nil {
		if opts.Limit > 0 {
			q.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Skip != 0 {
			q.Set("skip", strconv.Itoa(opts.Skip))
		}
		if len(opts.SortFields) > 0 {
			sortOn, err := json.Marshal(opts.SortFields)
			if err != nil {
				return "", err
			}
			q.Set("sortOn", string(sortOn))
			order := opts.SortOrder
			if order == "" {
				order = SortAscending
			}
			q.Set("sortOrder", string(order))
		}
	}
	u.RawQuery = q.Encode()

	resp, err := c.http.Get(ctx, u)
	if err != nil {
		return "", err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Query evaluates a query against the given path and decodes each element
// of the result data into T.
func Query[T any](ctx context.Context, c *Client, path, query string, opts *QueryOptions) (*QueryResult[T], error) {
	body, err := c.QueryRaw(ctx, path, query, opts)
	if err != nil {
		return nil, err
	}
	return decodeQueryResult[T]([]byte(body))
}
