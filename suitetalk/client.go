// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package suitetalk is a minimal client for the NetSuite SuiteTalk REST
// record API, authenticated with tokens from an m2m.TokenHolder.
package suitetalk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/suitetalk/m2m"
)

const (
	// CustomerRecord is the record type for customers.
	CustomerRecord = "customer"

	maxErrorBody = 4096
)

// Client issues authenticated requests against the record API.
type Client struct {
	config *m2m.Config
	tokens *m2m.TokenHolder
	client *http.Client
	logger hclog.Logger
}

// NewClient creates a Client.
// Supported options:
//
//	WithHTTPClient
//	WithLogger
func NewClient(c *m2m.Config, tokens *m2m.TokenHolder, opt ...Option) (*Client, error) {
	const op = "NewClient"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if tokens == nil {
		return nil, fmt.Errorf("%s: token holder is nil: %w", op, ErrNilParameter)
	}
	opts := getClientOpts(opt...)
	client := opts.withHTTPClient
	if client == nil {
		var err error
		if client, err = c.HTTPClient(); err != nil {
			return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
		}
	}
	return &Client{
		config: c,
		tokens: tokens,
		client: client,
		logger: opts.withLogger,
	}, nil
}

// Ref is one entry of a record collection listing.
type Ref struct {
	ID string `json:"id"`
}

// listResponse is the collection document returned by the record API.
type listResponse struct {
	Count        int   `json:"count"`
	HasMore      bool  `json:"hasMore"`
	Offset       int   `json:"offset"`
	TotalResults int   `json:"totalResults"`
	Items        []Ref `json:"items"`
}

// ListRecordIDs lists at most limit records of recordType and returns their
// ids. The result is empty, not nil, when there are no records.
func (c *Client) ListRecordIDs(ctx context.Context, recordType string, limit int) ([]string, error) {
	const op = "Client.ListRecordIDs"
	if recordType == "" {
		return nil, fmt.Errorf("%s: record type is empty: %w", op, ErrInvalidParameter)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%s: limit must be positive: %w", op, ErrInvalidParameter)
	}

	u := c.config.RecordRoot() + "/" + url.PathEscape(recordType) + "?" +
		url.Values{"limit": {strconv.Itoa(limit)}}.Encode()

	var resp listResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		ids = append(ids, item.ID)
	}
	c.logger.Debug("listed records", "type", recordType, "count", len(ids), "has_more", resp.HasMore)
	return ids, nil
}

// FindCustomerIDs lists at most limit customer ids.
func (c *Client) FindCustomerIDs(ctx context.Context, limit int) ([]string, error) {
	return c.ListRecordIDs(ctx, CustomerRecord, limit)
}

func (c *Client) get(ctx context.Context, u string, out interface{}) error {
	const op = "Client.get"
	tk, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s: unable to get access token: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	tk.OAuth2().SetAuthHeader(req)

	c.logger.Debug("sending request", "url", u)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusUnauthorized {
			// the token was revoked or outlived its expiry; don't reuse it
			c.tokens.Invalidate()
		}
		c.logger.Error("record api request failed", "url", u, "status", resp.StatusCode)
		return fmt.Errorf("%s: %w", op, &APIError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: unable to decode response: %w", op, err)
	}
	return nil
}
