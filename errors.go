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
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrInsecureEndpoint is returned by account operations when the endpoint
// does not use the https scheme. Account requests carry credentials and are
// refused before any network call is attempted.
var ErrInsecureEndpoint = errors.New("precog: account operations require an https endpoint")

// ArgumentError reports an invalid caller-supplied argument. No request is
// issued when an ArgumentError is returned.
type ArgumentError struct {
	// Name is the name of the offending argument.
	Name string
	// Reason describes why the argument was rejected.
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("precog: invalid argument %q: %s", e.Name, e.Reason)
}

// RemoteError reports an unexpected HTTP status from the server, carrying
// the raw response body as diagnostic text.
type RemoteError struct {
	// StatusCode is the HTTP status code the server responded with.
	StatusCode int
	// Body is the raw response body.
	Body string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("precog: unexpected status %d: %s", e.StatusCode, e.Body)
}

// AuthError reports that the server rejected the supplied credentials on an
// account-details lookup.
type AuthError struct {
	// Body is the raw response body.
	Body string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("precog: authentication failed: %s", e.Body)
}

// ResponseError reports a response body missing required fields or of an
// unexpected shape.
type ResponseError struct {
	// Reason describes what was wrong with the response body.
	Reason string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("precog: malformed response: %s", e.Reason)
}

func checkStatusCodeOK(resp *http.Response) error {
	return checkStatusCode(resp, http.StatusOK)
}

func checkStatusCode(resp *http.Response, expected int) error {
	if resp.StatusCode == expected {
		return nil
	}

	data, _ := io.ReadAll(resp.Body)
	return &RemoteError{
		StatusCode: resp.StatusCode,
		Body:       string(data),
	}
}

// sneakyBodyClose closes the body and ignores the error.
// This is useful to close the HTTP response body when we don't care about the error.
func sneakyBodyClose(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}
