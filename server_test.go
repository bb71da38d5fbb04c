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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakePlatform is an in-process server honoring the platform wire contract,
// backed by an in-memory record store. Queries understand just enough of
// the query language for the tests: load("<path>") and
// count(load("<path>")).
type fakePlatform struct {
	apiKey string

	mu      sync.Mutex
	records map[string][]json.RawMessage
	jobs    map[string]*fakeJob

	// calls records "<METHOD> <path>" in arrival order.
	calls []string
	// lastIngest captures the most recent ingest request for assertions.
	lastIngest fakeIngestCall

	server *httptest.Server
}

type fakeJob struct {
	prefixPath string
	query      string
	done       bool
}

type fakeIngestCall struct {
	rawQuery    string
	contentType string
	body        []byte
}

var (
	countLoadRe = regexp.MustCompile(`^count\(load\("([^"]+)"\)\)$`)
	loadRe      = regexp.MustCompile(`^load\("([^"]+)"\)$`)
)

func newFakePlatform(t *testing.T, apiKey string) *fakePlatform {
	p := &fakePlatform{
		apiKey:  apiKey,
		records: make(map[string][]json.RawMessage),
		jobs:    make(map[string]*fakeJob),
	}
	p.server = httptest.NewServer(http.HandlerFunc(p.handle))
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePlatform) endpoint() string {
	return p.server.URL
}

func (p *fakePlatform) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePlatform) storedRecords(path string) []json.RawMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]json.RawMessage(nil), p.records[path]...)
}

func (p *fakePlatform) lastIngestCall() fakeIngestCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastIngest
}

func (p *fakePlatform) finishJob(jobID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs[jobID].done = true
}

func (p *fakePlatform) jobPrefix(jobID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jobs[jobID].prefixPath
}

func (p *fakePlatform) handle(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.calls = append(p.calls, r.Method+" "+r.URL.Path)
	p.mu.Unlock()

	switch {
	case strings.HasPrefix(r.URL.Path, ingestServicePath):
		p.handleIngest(w, r, strings.TrimPrefix(r.URL.Path, ingestServicePath))
	case r.URL.Path == queriesServicePath && r.Method == http.MethodPost:
		p.handleSubmitQuery(w, r)
	case strings.HasPrefix(r.URL.Path, queriesServicePath+"/"):
		p.handleFetchJob(w, r, strings.TrimPrefix(r.URL.Path, queriesServicePath+"/"))
	case strings.HasPrefix(r.URL.Path, analyticsServicePath):
		p.handleQuery(w, r, strings.TrimPrefix(r.URL.Path, analyticsServicePath))
	default:
		http.Error(w, "unknown path", http.StatusNotFound)
	}
}

func (p *fakePlatform) checkAPIKey(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("apiKey") != p.apiKey {
		http.Error(w, "bad api key", http.StatusUnauthorized)
		return false
	}
	return true
}

func (p *fakePlatform) handleIngest(w http.ResponseWriter, r *http.Request, path string) {
	if !p.checkAPIKey(w, r) {
		return
	}

	switch r.Method {
	case http.MethodDelete:
		p.mu.Lock()
		delete(p.records, path)
		p.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		q := r.URL.Query()
		if q.Get("mode") != "batch" || q.Get("receipt") != "true" {
			http.Error(w, "expected mode=batch and receipt=true", http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		p.mu.Lock()
		p.lastIngest = fakeIngestCall{
			rawQuery:    r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			body:        body,
		}
		p.mu.Unlock()

		var ingested []json.RawMessage
		var failed []AppendError
		lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
		if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
			// Header row carries field names; every further row is one
			// record.
			for _, line := range lines[1:] {
				record, _ := json.Marshal(line)
				ingested = append(ingested, record)
			}
		} else {
			for i, line := range lines {
				if json.Valid([]byte(line)) {
					ingested = append(ingested, json.RawMessage(line))
				} else {
					failed = append(failed, AppendError{Line: i + 1, Reason: "malformed record"})
				}
			}
		}

		p.mu.Lock()
		p.records[path] = append(p.records[path], ingested...)
		p.mu.Unlock()

		if failed == nil {
			failed = []AppendError{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"total":    len(lines),
			"ingested": len(ingested),
			"failed":   len(failed),
			"ingestId": uuid.NewString(),
			"errors":   failed,
		})
	default:
		http.Error(w, "bad method", http.StatusMethodNotAllowed)
	}
}

func (p *fakePlatform) handleQuery(w http.ResponseWriter, r *http.Request, path string) {
	if !p.checkAPIKey(w, r) {
		return
	}
	q := r.URL.Query()
	if q.Get("format") != "detailed" {
		http.Error(w, "expected format=detailed", http.StatusBadRequest)
		return
	}

	data := p.evaluate(q.Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{
		"data":     data,
		"errors":   []QueryMessage{},
		"warnings": []QueryMessage{},
	})
}

func (p *fakePlatform) handleSubmitQuery(w http.ResponseWriter, r *http.Request) {
	if !p.checkAPIKey(w, r) {
		return
	}
	q := r.URL.Query()
	if q.Get("prefixPath") == "" {
		http.Error(w, "missing prefixPath", http.StatusBadRequest)
		return
	}

	jobID := uuid.NewString()
	p.mu.Lock()
	p.jobs[jobID] = &fakeJob{
		prefixPath: q.Get("prefixPath"),
		query:      q.Get("q"),
	}
	p.mu.Unlock()

	writeJSON(w, http.StatusAccepted, map[string]any{"jobId": jobID})
}

func (p *fakePlatform) handleFetchJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if !p.checkAPIKey(w, r) {
		return
	}

	p.mu.Lock()
	job, ok := p.jobs[jobID]
	p.mu.Unlock()
	if !ok {
		http.Error(w, "no such job", http.StatusNotFound)
		return
	}

	// An unfinished job reports whatever the server has so far, which is
	// nothing.
	data := []json.RawMessage{}
	if job.done {
		data = p.evaluate(job.query)
	}

	if r.URL.Query().Get("format") == "simple" {
		body, err := json.Marshal(data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":     data,
		"errors":   []QueryMessage{},
		"warnings": []QueryMessage{},
	})
}

func (p *fakePlatform) evaluate(query string) []json.RawMessage {
	query = strings.TrimSpace(query)
	p.mu.Lock()
	defer p.mu.Unlock()

	if m := countLoadRe.FindStringSubmatch(query); m != nil {
		count, _ := json.Marshal(len(p.records[m[1]]))
		return []json.RawMessage{count}
	}
	if m := loadRe.FindStringSubmatch(query); m != nil {
		return append([]json.RawMessage{}, p.records[m[1]]...)
	}
	return []json.RawMessage{}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

const testAPIKey = "test-api-key"

// newTestClient starts a fake platform and returns a client pointed at it.
func newTestClient(t *testing.T) (*Client, *fakePlatform) {
	p := newFakePlatform(t, testAPIKey)
	c, err := NewClient(&Config{
		Endpoint: p.endpoint(),
		APIKey:   testAPIKey,
		BasePath: "/",
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, p
}

func requireArgumentError(t *testing.T, err error, name string) {
	t.Helper()
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	require.Equal(t, name, argErr.Name, "unexpected argument name in %v", err)
}
