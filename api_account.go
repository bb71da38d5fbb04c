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
)

// AccountInfo stores the details of a platform account.
type AccountInfo struct {
	// AccountID identifies the account.
	AccountID string
	// Email is the account's login email.
	Email string
	// APIKey is the account's root API key.
	APIKey string
	// RootPath is the account's root storage path.
	RootPath string
	// CreatedAt is the account creation time, in the server's own string
	// form.
	CreatedAt string
	// LastPasswordChangeAt is the time of the last password change, in the
	// server's own string form.
	LastPasswordChangeAt string
	// Profile is the raw JSON profile supplied at creation. Empty when the
	// account has none.
	Profile json.RawMessage
	// Plan is the account's plan type.
	Plan string
}

// CreateAccount creates a new account on the platform and returns its full
// details. The endpoint must use HTTPS.
//
// profile is an optional raw JSON document attached to the account; pass
// the empty string for none.
//
// Account creation responds with only the new account's identifier, so this
// performs a second request for the details.
func CreateAccount(ctx context.Context, endpoint, email, password, profile string) (*AccountInfo, error) {
	return createAccount(ctx, NewHTTPClient(), endpoint, email, password, profile)
}

// AccountDetails fetches the details of an account, authenticating with the
// account's email and password over HTTP basic auth. The endpoint must use
// HTTPS.
func AccountDetails(ctx context.Context, endpoint, email, password, accountID string) (*AccountInfo, error) {
	return accountDetails(ctx, NewHTTPClient(), endpoint, email, password, accountID)
}

type createAccountRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Profile  json.RawMessage `json:"profile,omitempty"`
}

type createAccountResponse struct {
	AccountID *string `json:"accountId"`
}

func createAccount(ctx context.Context, hc HTTPClient, endpoint, email, password, profile string) (*AccountInfo, error) {
	u, err := accountsURL(endpoint, "")
	if err != nil {
		return nil, err
	}

	request := createAccountRequest{Email: email, Password: password}
	if profile != "" {
		request.Profile = json.RawMessage(profile)
	}
	body, err := json.Marshal(&request)
	if err != nil {
		return nil, err
	}

	resp, err := hc.Post(ctx, u, "application/json", body)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)
	if err := checkStatusCodeOK(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var respData createAccountResponse
	if err := json.Unmarshal(data, &respData); err != nil {
		return nil, &ResponseError{Reason: "decode account creation: " + err.Error()}
	}
	if respData.AccountID == nil {
		return nil, &ResponseError{Reason: "account creation response is missing accountId"}
	}

	return accountDetails(ctx, hc, endpoint, email, password, *respData.AccountID)
}

func accountDetails(ctx context.Context, hc HTTPClient, endpoint, email, password, accountID string) (*AccountInfo, error) {
	if accountID == "" {
		return nil, &ArgumentError{Name: "accountID", Reason: "must not be empty"}
	}

	u, err := accountsURL(endpoint, accountID)
	if err != nil {
		return nil, err
	}

	resp, err := hc.GetBasicAuth(ctx, u, email, password)
	if err != nil {
		return nil, err
	}
	defer sneakyBodyClose(resp.Body)
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		data, _ := io.ReadAll(resp.Body)
		return nil, &AuthError{Body: string(data)}
	default:
		return nil, checkStatusCodeOK(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return decodeAccountInfo(data)
}

type accountData struct {
	AccountID            *string         `json:"accountId"`
	Email                string          `json:"email"`
	APIKey               string          `json:"apiKey"`
	RootPath             string          `json:"rootPath"`
	CreatedAt            string          `json:"accountCreationDate"`
	LastPasswordChangeAt string          `json:"lastPasswordChangeTime"`
	Profile              json.RawMessage `json:"profile"`
	Plan                 json.RawMessage `json:"plan"`
}

func decodeAccountInfo(body []byte) (*AccountInfo, error) {
	var data accountData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &ResponseError{Reason: "decode account details: " + err.Error()}
	}
	if data.AccountID == nil {
		return nil, &ResponseError{Reason: "account details response is missing accountId"}
	}

	return &AccountInfo{
		AccountID:            *data.AccountID,
		Email:                data.Email,
		APIKey:               data.APIKey,
		RootPath:             data.RootPath,
		CreatedAt:            data.CreatedAt,
		LastPasswordChangeAt: data.LastPasswordChangeAt,
		Profile:              data.Profile,
		Plan:                 resolvePlan(data.Plan),
	}, nil
}

// resolvePlan resolves the raw plan value once at decode time. The server
// reports plan as an object with a "type" field; older deployments report a
// bare string.
func resolvePlan(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var obj struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Type != nil {
		return *obj.Type
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
