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

import "strings"

// canonicalPath rewrites a storage/query path into canonical absolute form:
// a single leading slash, no trailing slash, no empty segments. The root
// path "/" canonicalizes to itself.
func canonicalPath(p string) (string, error) {
	if p == "" {
		return "", &ArgumentError{Name: "path", Reason: "must not be empty"}
	}
	if !strings.HasPrefix(p, "/") {
		return "", &ArgumentError{Name: "path", Reason: "must start with '/'"}
	}

	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(segments, "/"), nil
}

// canonicalBasePath canonicalizes a base path. The root base path becomes
// the empty string so that concatenating it with a canonical relative path
// yields a single leading slash.
func canonicalBasePath(p string) (string, error) {
	cp, err := canonicalPath(p)
	if err != nil {
		return "", err
	}
	if cp == "/" {
		return "", nil
	}
	return cp, nil
}

// wirePrefixPath builds the prefix path sent on the wire for async query
// submission. The root prefix is escaped as "//" to defeat path
// normalization between the client and the server.
func wirePrefixPath(base, path string) string {
	full := base + path
	if full == "" || full == "/" {
		return "//"
	}
	return full
}
