package precog

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
)

// HTTPClient is the interface for the HTTP transport beneath the client.
type HTTPClient interface {
	// Get sends a GET request to the Precog server.
	Get(context.Context, *url.URL) (*http.Response, error)
	// GetBasicAuth sends a GET request authenticated with HTTP basic auth.
	GetBasicAuth(ctx context.Context, u *url.URL, user, password string) (*http.Response, error)
	// Post sends a POST request with the given content type and body.
	Post(ctx context.Context, u *url.URL, contentType string, body []byte) (*http.Response, error)
	// PostStream sends a POST request reading the body from a stream. A
	// positive contentLength declares the exact body length upfront;
	// otherwise the body is sent with chunked transfer encoding.
	PostStream(ctx context.Context, u *url.URL, contentType string, body io.Reader, contentLength int64) (*http.Response, error)
	// Delete sends a DELETE request to the Precog server.
	Delete(context.Context, *url.URL) (*http.Response, error)
	// CloseIdleConnections closes idle connections held by the transport.
	CloseIdleConnections()
}

type httpClient struct {
	client *http.Client
}

// NewHTTPClient creates a new internal HTTP client.
func NewHTTPClient() HTTPClient {
	return &httpClient{
		client: http.DefaultClient,
	}
}

// Ensure httpClient implements HTTPClient.
var _ HTTPClient = (*httpClient)(nil)

func (c *httpClient) Get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

func (c *httpClient) GetBasicAuth(ctx context.Context, u *url.URL, user, password string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(user, password)
	return c.client.Do(req)
}

func (c *httpClient) Post(ctx context.Context, u *url.URL, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.client.Do(req)
}

func (c *httpClient) PostStream(ctx context.Context, u *url.URL, contentType string, body io.Reader, contentLength int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if contentLength > 0 {
		req.ContentLength = contentLength
	}
	return c.client.Do(req)
}

func (c *httpClient) Delete(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

func (c *httpClient) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}
