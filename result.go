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
	"fmt"
)

// AppendError reports a single record the server failed to ingest.
type AppendError struct {
	// Line is the line of the payload the record was read from.
	Line int `json:"line"`
	// Reason describes why the record was rejected.
	Reason string `json:"reason"`
}

// AppendResult stores the server-reported outcome of an append operation.
//
// Failed and Errors describe per-record failures reported by the server;
// they do not indicate a transport failure, which surfaces as an error from
// the append call instead.
type AppendResult struct {
	// Total is the number of records the server saw.
	Total int
	// Ingested is the number of records ingested.
	Ingested int
	// Failed is the number of records rejected.
	Failed int
	// IngestID identifies the ingest batch on the server. May be empty.
	IngestID string
	// Errors lists the rejected records in server order.
	Errors []AppendError
}

// QueryMessagePosition locates a compile message in the query text.
type QueryMessagePosition struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	// Text is the fragment of query text the message points at.
	Text string `json:"text"`
}

// QueryMessage is a single compile error or warning for a query.
type QueryMessage struct {
	Message  string               `json:"message"`
	Position QueryMessagePosition `json:"position"`
}

// QueryResult stores the decoded result of a query.
type QueryResult[T any] struct {
	// Data holds the result values in server order.
	Data []T
	// RawData is the raw JSON text of the data array.
	RawData json.RawMessage
	// Errors lists compile errors. A query can return both data and
	// compile messages.
	Errors []QueryMessage
	// Warnings lists compile warnings.
	Warnings []QueryMessage
	// ServerErrors lists runtime errors reported by the server. The field
	// is optional on the wire; absence decodes to an empty list.
	ServerErrors []string
}

type appendErrorData struct {
	Line   *int    `json:"line"`
	Reason *string `json:"reason"`
}

type appendResultData struct {
	Total    *int               `json:"total"`
	Ingested *int               `json:"ingested"`
	Failed   *int               `json:"failed"`
	IngestID string             `json:"ingestId"`
	Errors   *[]appendErrorData `json:"errors"`
}

// decodeAppendResult decodes an append/ingest response body. The decode is
// all-or-nothing: a missing required field or a malformed error entry fails
// the whole result.
func decodeAppendResult(body []byte) (*AppendResult, error) {
	var data appendResultData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &ResponseError{Reason: fmt.Sprintf("decode append result: %v", err)}
	}
	if data.Total == nil || data.Ingested == nil || data.Failed == nil || data.Errors == nil {
		return nil, &ResponseError{Reason: "append result is missing one of total, ingested, failed, errors"}
	}

	result := &AppendResult{
		Total:    *data.Total,
		Ingested: *data.Ingested,
		Failed:   *data.Failed,
		IngestID: data.IngestID,
		Errors:   make([]AppendError, 0, len(*data.Errors)),
	}
	for i, e := range *data.Errors {
		if e.Line == nil || e.Reason == nil {
			return nil, &ResponseError{Reason: fmt.Sprintf("append result error entry %d is missing line or reason", i)}
		}
		result.Errors = append(result.Errors, AppendError{Line: *e.Line, Reason: *e.Reason})
	}
	return result, nil
}

type queryResultData struct {
	Data         *json.RawMessage `json:"data"`
	Errors       *[]QueryMessage  `json:"errors"`
	Warnings     *[]QueryMessage  `json:"warnings"`
	ServerErrors []string         `json:"serverErrors"`
}

// decodeQueryResult decodes a query response body. Every element of the
// data array is decoded independently into T; one failing element fails the
// whole result.
func decodeQueryResult[T any](body []byte) (*QueryResult[T], error) {
	var data queryResultData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &ResponseError{Reason: fmt.Sprintf("decode query result: %v", err)}
	}
	if data.Data == nil || data.Errors == nil || data.Warnings == nil {
		return nil, &ResponseError{Reason: "query result is missing one of data, errors, warnings"}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(*data.Data, &elements); err != nil {
		return nil, &ResponseError{Reason: fmt.Sprintf("query result data is not an array: %v", err)}
	}

	values := make([]T, 0, len(elements))
	for i, e := range elements {
		var v T
		if err := json.Unmarshal(e, &v); err != nil {
			return nil, &ResponseError{Reason: fmt.Sprintf("decode query result data element %d: %v", i, err)}
		}
		values = append(values, v)
	}

	serverErrors := data.ServerErrors
	if serverErrors == nil {
		serverErrors = []string{}
	}
	return &QueryResult[T]{
		Data:         values,
		RawData:      *data.Data,
		Errors:       *data.Errors,
		Warnings:     *data.Warnings,
		ServerErrors: serverErrors,
	}, nil
}
