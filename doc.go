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

/*
Package precog provides a lightweight and easy-to-use client for the Precog
analytics platform.

# Client

Use NewClient to create a client struct. This is the major entrance to every
ingest and query operation:

	client, err := precog.NewClient(&precog.Config{
		Endpoint: "https://api.precog.io",
		APIKey:   "<api-key>",
		BasePath: "/<account-id>",
	})

# Append Data

Append serialized records, raw content, or files to a storage path:

	result, err := precog.AppendAll(ctx, client, "/events", events, nil)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		log.Printf("%d of %d records rejected", result.Failed, result.Total)
	}

# Query Data

Evaluate a query synchronously and decode the result data:

	result, err := precog.Query[Event](ctx, client, "/", `load("/events")`, nil)

Or submit it for asynchronous execution and fetch the result later by job
handle:

	job, err := client.SubmitQuery(ctx, "/", `load("/events")`)
	...
	body, err := job.FetchRaw(ctx)

Fetching does not wait for the job to finish; the body reflects whatever the
server has at that moment.
*/
package precog
