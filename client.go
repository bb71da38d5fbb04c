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
	"net/url"
	"strings"
)

const (
	ingestServicePath    = "/ingest/v1/fs"
	analyticsServicePath = "/analytics/v1/fs"
	queriesServicePath   = "/analytics/v1/queries"
	accountsServicePath  = "/accounts/v1/accounts"
)

// Client is the entry point for interacting with the Precog platform.
//
// A Client holds only immutable configuration, so a single instance is safe
// for concurrent use. Every operation issues one blocking HTTP request and
// releases its resources before returning.
type Client struct {
	config *Config
	http   HTTPClient

	// basePath is the canonical form of config.BasePath: empty for the
	// root path, otherwise absolute with no trailing slash.
	basePath string
}

// NewClient creates a client for the configured endpoint, API key, and base
// path.
func NewClient(config *Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, &ArgumentError{Name: "apiKey", Reason: "must not be empty"}
	}
	if _, err := url.Parse(config.Endpoint); err != nil {
		return nil, &ArgumentError{Name: "endpoint", Reason: err.Error()}
	}

	base := config.BasePath
	if base == "" {
		base = "/"
	}
	basePath, err := canonicalBasePath(base)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:   config,
		http:     NewHTTPClient(),
		basePath: basePath,
	}, nil
}

// Close closes idle connections held by the client's transport.
//
// You don't typically need to call this as the garbage collector will
// release the resources when the client is no longer referenced. However,
// it can be useful to call this if you want to release the resources
// immediately.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// BasePath returns the canonical base path of the client: empty for the
// root path, otherwise absolute with no trailing slash.
func (c *Client) BasePath() string {
	return c.basePath
}

func (c *Client) ingestURL(path string) (*url.URL, error) {
	return url.Parse(c.config.Endpoint + ingestServicePath + c.basePath + path)
}

func (c *Client) analyticsURL(path string) (*url.URL, error) {
	return url.Parse(c.config.Endpoint + analyticsServicePath + c.basePath + path)
}

func (c *Client) queriesURL(jobID string) (*url.URL, error) {
	u := c.config.Endpoint + queriesServicePath
	if jobID != "" {
		u += "/" + jobID
	}
	return url.Parse(u)
}

func accountsURL(endpoint, accountID string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return nil, ErrInsecureEndpoint
	}
	raw := endpoint + accountsServicePath
	if accountID != "" {
		raw += "/" + accountID
	}
	return url.Parse(raw)
}
