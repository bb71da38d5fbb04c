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
	"net/http"
	"os"
)

// QueryJob is a handle to a query submitted for asynchronous execution.
//
// The handle is only a job identifier. The server owns the job lifecycle;
// a job may be fetched any number of times, and fetching does not consume
// it.
type QueryJob struct {
	c  *Client
	id string
}

type submitQueryResponse struct {
	JobID *string `json:"jobId"`
}

// SubmitQuery submits a query for asynchronous execution against the given
// path and returns a handle to the job.
func (c *Client) SubmitQuery(ctx context.Context, path, query string) (*QueryJob, error) {
	cp, err := canonicalPath(path)
	if err != nil {
		return nil, err
	}

	u, err := c.queriesURL("")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("apiKey", c.config.APIKey)
	q.Set("q", query)
	q.Set("prefixPath", wirePrefixPath(c.basePath, cp))
	u.RawQuery = q.Encode()

	resp, err := c.http.Post(ctx, u, "application/json", nil)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)
	// Async submission acknowledges with 202, not 200.
	if err := checkStatusCode(resp, http.StatusAccepted); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var respData submitQueryResponse
	if err := json.Unmarshal(data, &respData); err != nil {
		return nil, &ResponseError{Reason: "decode job submission: " + err.Error()}
	}
	if respData.JobID == nil {
		return nil, &ResponseError{Reason: "job submission response is missing jobId"}
	}
	return &QueryJob{c: c, id: *respData.JobID}, nil
}

// QueryJob creates a handle for a previously submitted job with the given
// ID.
func (c *Client) QueryJob(id string) *QueryJob {
	return &QueryJob{c: c, id: id}
}

// ID returns the server-side identifier of the job.
func (j *QueryJob) ID() string {
	return j.id
}

// FetchRaw fetches the job's result once and returns the undecoded body.
//
// There is no wait-for-completion logic: the body reflects whatever the
// server currently has for the job. Callers wanting completed results are
// responsible for their own retry loop.
func (j *QueryJob) FetchRaw(ctx context.Context) (string, error) {
	resp, err := j.fetch(ctx, "")
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

// Download fetches the job's result in simple format and writes the raw
// byte stream to a new file at filePath. The file must not already exist.
func (j *QueryJob) Download(ctx context.Context, filePath string) error {
	resp, err := j.fetch(ctx, "simple")
	if err != nil {
		return err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return err
	}

	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}

func (j *QueryJob) fetch(ctx context.Context, format string) (*http.Response, error) {
	u, err := j.c.queriesURL(j.id)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("apiKey", j.c.config.APIKey)
	if format != "" {
		q.Set("format", format)
	}
	u.RawQuery = q.Encode()

	return j.c.http.Get(ctx, u)
}

// QueryJobResults fetches the job's result once and decodes each element of
// the result data into T. Like FetchRaw, it does not wait for the job to
// finish.
func QueryJobResults[T any](ctx context.Context, j *QueryJob) (*QueryResult[T], error) {
	body, err := j.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}
	return decodeQueryResult[T]([]byte(body))
}
