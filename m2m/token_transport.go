// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package m2m

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

// maxTokenBody matches the limit oauth2 applies when reading token replies.
const maxTokenBody = 1 << 20

// tokenTransport adjusts successful token endpoint replies before oauth2
// parses them. The token endpoint always answers with JSON, whatever
// Content-Type it sends, and a reply with an empty or absent access_token is
// an ErrMissingAccessToken. Unsuccessful replies pass through untouched so oauth2
// still builds its RetrieveError.
type tokenTransport struct {
	base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBody))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	var reply struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &reply); err == nil && reply.Error == "" && reply.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header = resp.Header.Clone()
	if resp.Header == nil {
		resp.Header = http.Header{}
	}
	resp.Header.Set("Content-Type", "application/json")
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	return resp, nil
}

// tokenClient returns a copy of c whose transport is wrapped in a
// tokenTransport.
func tokenClient(c *http.Client) *http.Client {
	tc := *c
	tc.Transport = &tokenTransport{base: c.Transport}
	return &tc
}
