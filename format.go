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

import "fmt"

// AppendFormat describes the wire format of an append payload: the content
// type of the request and any format-specific query parameters.
//
// The set of formats is open: new formats are new AppendFormat values, and
// every append operation accepts any of them.
type AppendFormat struct {
	contentType string
	// parameters is the raw query-string suffix appended verbatim to the
	// request URL. The server parses these characters literally, so they
	// bypass URL encoding.
	parameters string
}

// ContentType returns the MIME content type of the append payload.
func (f AppendFormat) ContentType() string {
	return f.contentType
}

// QueryParameters returns the format-specific query-string suffix, empty
// for formats that need none.
func (f AppendFormat) QueryParameters() string {
	return f.parameters
}

var (
	// JSONFormat appends a single JSON value or a JSON array of values.
	JSONFormat = AppendFormat{contentType: "application/json"}
	// JSONStreamFormat appends whitespace-separated JSON values.
	JSONStreamFormat = AppendFormat{contentType: "application/x-json-stream"}
	// CSVFormat appends comma-delimited rows.
	CSVFormat = DelimitedFormat(',')
	// TSVFormat appends tab-delimited rows.
	TSVFormat = DelimitedFormat('\t')
	// SSVFormat appends semicolon-delimited rows.
	SSVFormat = DelimitedFormat(';')
)

// DelimitedFormat returns the append format for delimited rows with the
// given delimiter. Quote and escape characters default to '"'.
func DelimitedFormat(delimiter rune) AppendFormat {
	return DelimitedFormatWith(delimiter, '"', '"')
}

// DelimitedFormatWith returns the append format for delimited rows with
// explicit delimiter, quote, and escape characters.
//
// The content type is text/csv for every delimiter; the server tells the
// variants apart by the query parameters.
func DelimitedFormatWith(delimiter, quote, escape rune) AppendFormat {
	return AppendFormat{
		contentType: "text/csv",
		parameters:  fmt.Sprintf("&delimiter=%c&quote=%c&escape=%c", delimiter, quote, escape),
	}
}
